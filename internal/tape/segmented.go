package tape

// SegmentedTapeConfig configures a SegmentedTape. BlockSize is the fixed
// size of each allocated block; zero selects a default. Limit caps how
// many cells each fan may span from zero, counted in whole blocks; zero
// means unlimited.
type SegmentedTapeConfig struct {
	BlockSize uint
	Limit     uint
}

const defaultBlockSize = 512

// SegmentedTape indexes memory as a directory of fixed-size blocks split
// into two fans: pos holds blocks for indices >= 0, neg holds blocks for
// indices < 0. Both fans grow their directory by doubling; blocks
// themselves are allocated lazily on first touch and are never freed
// until the tape itself is discarded.
type SegmentedTape struct {
	blockSize uint
	limit     uint
	pos       []*[]byte
	neg       []*[]byte
}

// NewSegmentedTapeFromConfig builds a SegmentedTape with empty fans.
func NewSegmentedTapeFromConfig(cfg *SegmentedTapeConfig) *SegmentedTape {
	bs := cfg.BlockSize
	if bs == 0 {
		bs = defaultBlockSize
	}
	return &SegmentedTape{blockSize: bs, limit: cfg.Limit}
}

// locate returns the fan, block index, and in-block offset for pos.
func (t *SegmentedTape) locate(pos int) (fan *[]*[]byte, blockIdx int, offset uint) {
	bs := int(t.blockSize)
	if pos >= 0 {
		return &t.pos, pos / bs, uint(pos % bs)
	}
	j := -pos - 1
	return &t.neg, j / bs, uint(j % bs)
}

func (t *SegmentedTape) block(pos int) (*[]byte, error) {
	fan, idx, _ := t.locate(pos)

	if want := uint(idx+1) * t.blockSize; t.limit > 0 && want > t.limit {
		return nil, &MemoryLimitExceededError{Requested: want, Limit: t.limit}
	}
	if idx >= len(*fan) {
		newLen := len(*fan)
		if newLen == 0 {
			newLen = 1
		}
		for idx >= newLen {
			newLen *= 2
		}
		grown := make([]*[]byte, newLen)
		copy(grown, *fan)
		*fan = grown
	}
	if (*fan)[idx] == nil {
		blk := make([]byte, t.blockSize)
		(*fan)[idx] = &blk
	}
	return (*fan)[idx], nil
}

func (t *SegmentedTape) Read(pos int) (byte, error) {
	blk, err := t.block(pos)
	if err != nil {
		return 0, err
	}
	_, _, offset := t.locate(pos)
	return (*blk)[offset], nil
}

func (t *SegmentedTape) Write(pos int, val byte) error {
	blk, err := t.block(pos)
	if err != nil {
		return err
	}
	_, _, offset := t.locate(pos)
	(*blk)[offset] = val
	return nil
}

// Capacity returns the total cell count across every block actually
// allocated so far in both fans; directory slots reserved but not yet
// backed by a block don't count.
func (t *SegmentedTape) Capacity() int {
	count := 0
	for _, b := range t.pos {
		if b != nil {
			count++
		}
	}
	for _, b := range t.neg {
		if b != nil {
			count++
		}
	}
	return count * int(t.blockSize)
}
