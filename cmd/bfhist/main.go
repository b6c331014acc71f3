// Command bfhist prints aggregate run-history stats across all shards,
// following the reference toolchain's cmd/prune report-printing style.
package main

import (
	"flag"
	"fmt"
	"log"
	"os"
	"time"

	"bfopt"
	"bfopt/internal/history"
)

var (
	configPath = flag.String("config", "./config.toml", "Tool config path")
	since      = flag.String("since", "", "Only count runs archived at or after this RFC3339 timestamp")
)

func main() {
	flag.Parse()
	log.SetOutput(os.Stderr)

	conffile, err := os.Open(*configPath)
	if err != nil {
		log.Fatalf("Unable to load tool config: %v", err)
	}
	var toolConfig bfopt.ToolConfig
	if err := bfopt.DecodeTOML(conffile, &toolConfig); err != nil {
		log.Fatalf("Failed to unmarshal tool config: %v", err)
	}
	conffile.Close()

	var sinceUnix int64
	if *since != "" {
		t, err := time.Parse(time.RFC3339, *since)
		if err != nil {
			log.Fatalf("Invalid -since timestamp: %v", err)
		}
		sinceUnix = t.Unix()
	}

	h, err := history.NewHistoryFromConfig(&history.Config{
		Path:      toolConfig.History.Path,
		NumShards: toolConfig.History.NumShards,
	})
	if err != nil {
		log.Fatalf("Failed to open run history: %v", err)
	}
	defer h.Shutdown()

	stats, err := h.Stats(sinceUnix)
	if err != nil {
		log.Fatalf("Stats query failed: %v", err)
	}

	fmt.Printf("Run history stats (%d shards):\n", toolConfig.History.NumShards)
	fmt.Printf("  Total runs:          %d\n", stats.RunCount)
	fmt.Printf("  Successful runs:     %d\n", stats.OKCount)
	fmt.Printf("  Avg compile time:    %.6fs\n", stats.AvgCompileSecs)
	fmt.Printf("  Avg execute time:    %.6fs\n", stats.AvgExecuteSecs)
	fmt.Printf("  Worst memory used:   %d\n", stats.WorstMemoryUsed)
}
