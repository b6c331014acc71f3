package history

import (
	"database/sql"
	"fmt"
	"sync"
)

// Stats holds aggregate run metrics across every shard.
type Stats struct {
	RunCount        uint
	OKCount         uint
	AvgCompileSecs  float64
	AvgExecuteSecs  float64
	WorstMemoryUsed uint64
}

// shardStats holds per-shard partial aggregates merged into Stats.
type shardStats struct {
	count           uint
	okCount         uint
	sumCompile      float64
	sumExecute      float64
	worstMemoryUsed uint64
}

// Stats computes aggregate run metrics across all shards in parallel,
// mirroring the reference toolchain's QueryMetrics/queryShardMetrics
// shape in metrics.go, optionally filtered to runs archived at or after
// sinceUnix (0 means no filter).
func (h *History) Stats(sinceUnix int64) (*Stats, error) {
	results := make([]shardStats, len(h.Shards))
	errs := make([]error, len(h.Shards))
	var wg sync.WaitGroup

	for i := range h.Shards {
		wg.Add(1)
		go func(shard int) {
			defer wg.Done()
			sqldb, err := h.Shards[shard].DB()
			if err != nil {
				errs[shard] = fmt.Errorf("shard %d: %w", shard, err)
				return
			}
			ss, err := queryShardStats(sqldb, sinceUnix)
			if err != nil {
				errs[shard] = fmt.Errorf("shard %d: %w", shard, err)
				return
			}
			results[shard] = ss
		}(i)
	}
	wg.Wait()

	for _, err := range errs {
		if err != nil {
			return nil, err
		}
	}

	s := &Stats{}
	var totalCompile, totalExecute float64
	for _, ss := range results {
		s.RunCount += ss.count
		s.OKCount += ss.okCount
		totalCompile += ss.sumCompile
		totalExecute += ss.sumExecute
		if ss.worstMemoryUsed > s.WorstMemoryUsed {
			s.WorstMemoryUsed = ss.worstMemoryUsed
		}
	}
	if s.RunCount > 0 {
		s.AvgCompileSecs = totalCompile / float64(s.RunCount)
		s.AvgExecuteSecs = totalExecute / float64(s.RunCount)
	}
	return s, nil
}

func queryShardStats(db *sql.DB, sinceUnix int64) (shardStats, error) {
	var ss shardStats

	query := `SELECT COUNT(*),
		COALESCE(SUM(CASE WHEN outcome = 'ok' THEN 1 ELSE 0 END), 0),
		COALESCE(SUM(compile_seconds), 0),
		COALESCE(SUM(execute_seconds), 0),
		COALESCE(MAX(memory_used), 0)
		FROM runs`
	args := []any{}
	if sinceUnix > 0 {
		query += ` WHERE created_at_unix >= ?`
		args = append(args, sinceUnix)
	}

	row := db.QueryRow(query, args...)
	var count, ok int64
	var worst int64
	if err := row.Scan(&count, &ok, &ss.sumCompile, &ss.sumExecute, &worst); err != nil {
		return ss, err
	}
	ss.count = uint(count)
	ss.okCount = uint(ok)
	ss.worstMemoryUsed = uint64(worst)
	return ss, nil
}
