// Package history persists and queries Run records, following the
// reference toolchain's persistence.go NewPersistence/AutoMigrate/Shutdown
// shape, sharded across N SQLite files by source digest the way the
// toolchain shards Population data by unit ID.
package history

import (
	"fmt"
	"hash/fnv"
	"log"
	"path/filepath"

	sqlite "github.com/glebarez/sqlite"
	gorm "gorm.io/gorm"
)

// Run is a single archived program execution.
type Run struct {
	ID              uint `gorm:"primarykey"`
	CreatedAtUnix   int64
	SourceDigest    string
	SourceLength    uint
	CompileSeconds  float64
	ExecuteSeconds  float64
	MemoryAllocated uint64
	MemoryUsed      uint64
	Outcome         string
	ErrorDetail     string
}

// Config configures a History store.
type Config struct {
	Path      string
	NumShards uint
}

// History fans Run persistence and querying out across NumShards SQLite
// databases, each holding a disjoint slice of runs keyed by source digest.
type History struct {
	Config *Config
	Shards []*gorm.DB
}

// NewHistoryFromConfig opens (creating if absent) NumShards SQLite
// databases under Config.Path and migrates the Run schema into each.
func NewHistoryFromConfig(cfg *Config) (*History, error) {
	if cfg == nil {
		return nil, fmt.Errorf("config cannot be nil")
	}
	if len(cfg.Path) == 0 {
		return nil, fmt.Errorf("path to database directory must be defined")
	}
	if cfg.NumShards == 0 {
		cfg.NumShards = 1
	}

	h := &History{Config: cfg, Shards: make([]*gorm.DB, cfg.NumShards)}
	for i := uint(0); i < cfg.NumShards; i++ {
		name := fmt.Sprintf("history_%d.db", i)
		db, err := gorm.Open(sqlite.Open(filepath.Join(cfg.Path, name)), &gorm.Config{})
		if err != nil {
			return nil, fmt.Errorf("failed to open shard %d: %w", i, err)
		}
		if err := db.AutoMigrate(&Run{}); err != nil {
			return nil, fmt.Errorf("failed to migrate shard %d: %w", i, err)
		}
		h.Shards[i] = db
	}
	return h, nil
}

// Shutdown closes every shard's underlying connection.
func (h *History) Shutdown() {
	for i, db := range h.Shards {
		sqldb, err := db.DB()
		if err != nil {
			log.Fatalf("failed to retrieve raw DB for shard %d: %v", i, err)
			continue
		}
		sqldb.Close()
	}
}

// shardFor picks the shard a digest lands in, matching the toolchain's
// unit-ID modulo sharding.
func (h *History) shardFor(digest string) *gorm.DB {
	f := fnv.New32a()
	f.Write([]byte(digest))
	return h.Shards[uint(f.Sum32())%uint(len(h.Shards))]
}

// Create archives a Run in the shard its SourceDigest hashes to.
func (h *History) Create(r *Run) (uint, error) {
	if r == nil {
		return 0, fmt.Errorf("run cannot be nil")
	}
	db := h.shardFor(r.SourceDigest)
	if result := db.Create(r); result.Error != nil {
		return 0, fmt.Errorf("failed to call gorm.Create(): %w", result.Error)
	}
	return r.ID, nil
}
