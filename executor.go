package bfopt

import (
	"bufio"
	"fmt"
	"io"
	"log"

	"bfopt/internal/tape"
)

// ErrMaxInstructionExecutionCountReached mirrors the reference toolchain's
// package-level sentinel for a context-free halt condition.
var ErrMaxInstructionExecutionCountReached error = fmt.Errorf("instruction execution count limit reached")

// ExecutorConfig configures a Executor the way MachineConfig configures
// the reference toolchain's brainfuck.Machine.
type ExecutorConfig struct {
	InitialTapeSize uint
	TapeLimit       uint
	Segmented       bool // use SegmentedTape instead of FlatTape
	MaxInstructions uint // 0 means unlimited
}

// Executor walks a semantic IR tree against a tape and a pair of byte
// streams.
type Executor struct {
	tape             tape.Tape
	ptr              int
	in               *bufio.Reader
	out              io.Writer
	config           *ExecutorConfig
	instructionCount uint
	highWater        int
}

// NewExecutorFromConfig builds an Executor bound to the given input and
// output streams.
func NewExecutorFromConfig(cfg *ExecutorConfig, in io.Reader, out io.Writer) *Executor {
	var t tape.Tape
	if cfg.Segmented {
		bs := cfg.InitialTapeSize
		if bs == 0 {
			bs = 512
		}
		t = tape.NewSegmentedTapeFromConfig(&tape.SegmentedTapeConfig{BlockSize: bs, Limit: cfg.TapeLimit})
	} else {
		size := cfg.InitialTapeSize
		if size == 0 {
			size = 2048
		}
		t = tape.NewFlatTapeFromConfig(&tape.FlatTapeConfig{Size: size, Limit: cfg.TapeLimit})
	}

	return &Executor{
		tape:   t,
		in:     bufio.NewReader(in),
		out:    out,
		config: cfg,
	}
}

// HighWaterMark returns the furthest pointer offset the executor reached
// while walking the IR during Run. Pointer motion that the analyzer folds
// into a single net MovePtr counts only at its net position.
func (e *Executor) HighWaterMark() int {
	return e.highWater
}

// AllocatedCapacity returns the number of cells the underlying tape has
// actually backed with storage, as opposed to the size requested at
// construction.
func (e *Executor) AllocatedCapacity() int {
	return e.tape.Capacity()
}

// Run walks root, executing side effects against the executor's tape and
// streams. It returns the first error encountered, if any.
func (e *Executor) Run(root *IRNode) error {
	return e.execChildren(root.Children)
}

func (e *Executor) execChildren(children []*IRNode) error {
	for _, n := range children {
		if err := e.exec(n); err != nil {
			return err
		}
	}
	return nil
}

func (e *Executor) step() error {
	if e.config.MaxInstructions == 0 {
		return nil
	}
	e.instructionCount++
	if e.instructionCount >= e.config.MaxInstructions {
		return ErrMaxInstructionExecutionCountReached
	}
	return nil
}

func (e *Executor) trackPtr() {
	if e.ptr > e.highWater {
		e.highWater = e.ptr
	}
}

func (e *Executor) exec(n *IRNode) error {
	if err := e.step(); err != nil {
		return err
	}
	if DEBUG {
		log.Printf("executor: exec kind=%v ptr=%d", n.Kind, e.ptr)
	}

	switch n.Kind {
	case IRAdd:
		cur, err := e.tape.Read(e.ptr)
		if err != nil {
			return err
		}
		return e.tape.Write(e.ptr, cur+n.AddValue)

	case IRVecAdd:
		if err := applyVecAdd(e.tape, e.ptr, n.VecValue); err != nil {
			return err
		}
		return nil

	case IRMovePtr:
		e.ptr += n.MoveDelta
		e.trackPtr()
		return nil

	case IRRead:
		for i := uint(0); i < n.Count-1; i++ {
			if _, err := e.in.ReadByte(); err != nil {
				return &InputExhaustedError{}
			}
		}
		b, err := e.in.ReadByte()
		if err != nil {
			return &InputExhaustedError{}
		}
		return e.tape.Write(e.ptr, b)

	case IRWrite:
		cur, err := e.tape.Read(e.ptr)
		if err != nil {
			return err
		}
		for i := uint(0); i < n.Count; i++ {
			if _, err := e.out.Write([]byte{cur}); err != nil {
				return &OutputFailedError{Cause: err}
			}
		}
		return nil

	case IRLoop:
		for {
			cur, err := e.tape.Read(e.ptr)
			if err != nil {
				return err
			}
			if cur == 0 {
				return nil
			}
			if err := e.execChildren(n.Children); err != nil {
				return err
			}
		}

	case IRCountedLoop:
		cur, err := e.tape.Read(e.ptr)
		if err != nil {
			return err
		}
		if cur == 0 {
			return nil
		}

		iters, err := countedLoopIters(cur, n.FlagStep)
		if err != nil {
			return err
		}
		for i := 0; i < iters; i++ {
			if err := e.step(); err != nil {
				return err
			}
			if err := e.execChildren(n.Body); err != nil {
				return err
			}
		}
		return e.execChildren(n.Tail)

	case IREmptyLoop:
		cur, err := e.tape.Read(e.ptr)
		if err != nil {
			return err
		}
		if cur == 0 {
			return nil
		}
		return &DeadLoopError{FlagValue: cur, FlagStep: 0}

	case IRSetZero:
		return e.tape.Write(e.ptr, 0)

	case IRJumpToNextZero:
		for {
			cur, err := e.tape.Read(e.ptr)
			if err != nil {
				return err
			}
			if cur == 0 {
				return nil
			}
			e.ptr += n.MoveDelta
			e.trackPtr()
			if err := e.step(); err != nil {
				return err
			}
		}

	default:
		return fmt.Errorf("executor: unhandled IR kind %v", n.Kind)
	}
}

// countedLoopIters computes the smallest k in [0, 255] such that
// start + k*step ≡ 0 (mod 256), or a DeadLoopError if none exists.
func countedLoopIters(start, step byte) (int, error) {
	g := gcdInt(int(step), 256)
	target := (256 - int(start)) % 256
	if target%g != 0 {
		return 0, &DeadLoopError{FlagValue: start, FlagStep: step}
	}
	for k := 0; k < 256; k++ {
		if wrapByte(int(start)+k*int(step)) == 0 {
			return k, nil
		}
	}
	return 0, &DeadLoopError{FlagValue: start, FlagStep: step}
}
