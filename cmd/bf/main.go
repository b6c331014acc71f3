// Command bf compiles and runs a Brainfuck source file, printing timing
// and memory-usage stats after execution, following the reference
// toolchain's cmd/*-config-plus-flag.Parse() convention.
package main

import (
	"crypto/sha256"
	"encoding/hex"
	"flag"
	"fmt"
	"log"
	"os"
	"time"

	"bfopt"
	"bfopt/internal/history"
)

var configPath = flag.String("config", "", "Tool config path (TOML, optional)")

func main() {
	flag.Parse()
	log.SetOutput(os.Stderr)

	args := flag.Args()
	if len(args) < 1 {
		fmt.Println("Usage: bf <.bf filepath>")
		os.Exit(0)
	}

	toolConfig := bfopt.DefaultToolConfig()
	if *configPath != "" {
		if err := decodeToolConfig(*configPath, &toolConfig); err != nil {
			log.Fatalf("Unable to load tool config: %v", err)
		}
	}

	source, err := os.ReadFile(args[0])
	if err != nil {
		log.Fatalf("Failed to read source file: %v", err)
	}

	compileStart := time.Now()
	tokens := bfopt.Lex(source)
	tree, err := bfopt.Parse(tokens)
	if err != nil {
		log.Fatalf("Parse error: %v", err)
	}
	ir, err := bfopt.Analyze(tree)
	if err != nil {
		log.Fatalf("Analysis error: %v", err)
	}
	compileSeconds := time.Since(compileStart).Seconds()

	exec := bfopt.NewExecutorFromConfig(&bfopt.ExecutorConfig{
		InitialTapeSize: toolConfig.Tape.InitialSize,
		TapeLimit:       toolConfig.Tape.Limit,
		Segmented:       toolConfig.Tape.Segmented,
		MaxInstructions: toolConfig.Tape.MaxInstructions,
	}, os.Stdin, os.Stdout)

	executeStart := time.Now()
	runErr := exec.Run(ir)
	executeSeconds := time.Since(executeStart).Seconds()

	if toolConfig.History.Enabled {
		archiveRun(&toolConfig, source, compileStart, compileSeconds, executeSeconds, exec, runErr)
	}

	if runErr != nil {
		log.Fatalf("Execution error: %v", runErr)
	}

	fmt.Printf("compile time usage: %.6fs\n", compileSeconds)
	fmt.Printf("execute time usage: %.6fs\n", executeSeconds)
	fmt.Printf("bf memory allocated: %d\n", exec.AllocatedCapacity())
	fmt.Printf("bf memory used: %d\n", exec.HighWaterMark())
}

func decodeToolConfig(path string, cfg *bfopt.ToolConfig) error {
	f, err := os.Open(path)
	if err != nil {
		return err
	}
	defer f.Close()
	return bfopt.DecodeTOML(f, cfg)
}

func archiveRun(cfg *bfopt.ToolConfig, source []byte, startedAt time.Time, compileSeconds, executeSeconds float64, exec *bfopt.Executor, runErr error) {
	h, err := history.NewHistoryFromConfig(&history.Config{Path: cfg.History.Path, NumShards: cfg.History.NumShards})
	if err != nil {
		log.Printf("Failed to open run history: %v", err)
		return
	}
	defer h.Shutdown()

	sum := sha256.Sum256(source)
	run := &history.Run{
		CreatedAtUnix:   startedAt.Unix(),
		SourceDigest:    hex.EncodeToString(sum[:]),
		SourceLength:    uint(len(source)),
		CompileSeconds:  compileSeconds,
		ExecuteSeconds:  executeSeconds,
		MemoryAllocated: uint64(exec.AllocatedCapacity()),
		MemoryUsed:      uint64(exec.HighWaterMark()),
		Outcome:         "ok",
	}
	if runErr != nil {
		run.Outcome = "error"
		run.ErrorDetail = runErr.Error()
	}
	if _, err := h.Create(run); err != nil {
		log.Printf("Failed to archive run: %v", err)
	}
}
