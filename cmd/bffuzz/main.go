// Command bffuzz generates random syntactically-valid Brainfuck programs
// and checks that the optimizing executor agrees with a naive
// byte-by-byte interpreter on every one, following the reference
// toolchain's cmd/optimize trial-loop shape (load config, loop N trials,
// log outcome per trial) repointed at interpreter equivalence instead of
// genetic-algorithm convergence.
package main

import (
	"bytes"
	"flag"
	"log"
	"os"

	"bfopt"
	"bfopt/internal/equiv"
)

var (
	configPath = flag.String("config", "", "Tool config path (TOML, optional)")
	trials     = flag.Int("trials", 100, "Number of random programs to try")
	maxLen     = flag.Int("max-len", 200, "Max generated program length in bytes")
	seed       = flag.Int64("seed", 0, "RNG seed (0 = time-based)")
	maxSteps   = flag.Uint64("max-steps", 200000, "Step cap per interpreter run (guards against dead loops)")
)

func main() {
	flag.Parse()
	log.SetOutput(os.Stderr)

	toolConfig := bfopt.DefaultToolConfig()
	if *configPath != "" {
		f, err := os.Open(*configPath)
		if err != nil {
			log.Fatalf("Unable to load tool config: %v", err)
		}
		if err := bfopt.DecodeTOML(f, &toolConfig); err != nil {
			log.Fatalf("Failed to unmarshal tool config: %v", err)
		}
		f.Close()
	}

	bfopt.InitRNG(*seed)

	var passed, failed, skipped int
	for trial := 0; trial < *trials; trial++ {
		source := bfopt.GenerateRandomProgram(*maxLen)
		fixedInput := bytes.Repeat([]byte{0x2a}, 64)

		outcome, err := runTrial(&toolConfig, source, fixedInput, *maxSteps)
		switch outcome {
		case trialSkipped:
			skipped++
		case trialPassed:
			passed++
		case trialFailed:
			failed++
			log.Printf("trial %d FAILED: %v\nsource: %s", trial+1, err, source)
		}
	}

	log.Printf("========== FUZZ SUMMARY ==========")
	log.Printf("passed=%d failed=%d skipped=%d total=%d", passed, failed, skipped, *trials)
	if failed > 0 {
		os.Exit(1)
	}
}

type trialOutcome int

const (
	trialPassed trialOutcome = iota
	trialFailed
	trialSkipped
)

func runTrial(cfg *bfopt.ToolConfig, source, input []byte, maxSteps uint64) (trialOutcome, error) {
	naive, err := equiv.NewNaiveInterpreter(source)
	if err != nil {
		// The generator is bracket-balanced by construction; a mismatch
		// here would be a generator bug, not a fuzz finding.
		return trialSkipped, err
	}

	var naiveOut bytes.Buffer
	naiveTape, naiveErr := naive.Run(bytes.NewReader(input), &naiveOut, maxSteps)

	tokens := bfopt.Lex(source)
	tree, err := bfopt.Parse(tokens)
	if err != nil {
		return trialSkipped, err
	}
	ir, err := bfopt.Analyze(tree)
	if err != nil {
		return trialSkipped, err
	}

	var optOut bytes.Buffer
	exec := bfopt.NewExecutorFromConfig(&bfopt.ExecutorConfig{
		InitialTapeSize: cfg.Tape.InitialSize,
		TapeLimit:       cfg.Tape.Limit,
		MaxInstructions: uint(maxSteps),
	}, bytes.NewReader(input), &optOut)
	optErr := exec.Run(ir)

	if (naiveErr == nil) != (optErr == nil) {
		report := equiv.Compare("error-agreement", naiveOut.Bytes(), optOut.Bytes())
		return trialFailed, error(&mismatchError{naiveErr: naiveErr, optErr: optErr, report: report})
	}
	if naiveErr != nil {
		// Both sides errored (dead loop, step limit, etc.) — that counts
		// as agreement for equivalence purposes.
		return trialSkipped, nil
	}

	report := equiv.Compare("output", naiveOut.Bytes(), optOut.Bytes())
	if !report.Identical {
		return trialFailed, error(&mismatchError{report: report, tape: naiveTape[:min(len(naiveTape), 64)]})
	}
	return trialPassed, nil
}

type mismatchError struct {
	naiveErr error
	optErr   error
	report   equiv.Report
	tape     []byte
}

func (e *mismatchError) Error() string {
	return e.report.Message
}

func min(a, b int) int {
	if a < b {
		return a
	}
	return b
}
