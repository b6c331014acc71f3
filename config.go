package bfopt

import (
	"io"

	"github.com/BurntSushi/toml"
)

// DecodeTOML decodes a TOML config file into cfg, exactly the way every
// cmd/* binary in the reference toolchain loads its ToolConfig.
func DecodeTOML(r io.Reader, cfg *ToolConfig) error {
	_, err := toml.NewDecoder(r).Decode(cfg)
	return err
}

// ToolConfig is the TOML-decoded configuration shared by every cmd/*
// binary in this repository, mirroring the reference toolchain's
// ToolConfig/PopulationConfig pattern: one struct per concern, decoded
// with github.com/BurntSushi/toml and passed a "-config <path>" flag.
type ToolConfig struct {
	Tape    TapeConfig
	History HistoryConfig
}

// TapeConfig configures the executor's tape.
type TapeConfig struct {
	InitialSize     uint `toml:"initial_size"`
	Limit           uint `toml:"limit"`
	Segmented       bool `toml:"segmented"`
	MaxInstructions uint `toml:"max_instructions"`
}

// HistoryConfig configures whether and where runs are archived.
type HistoryConfig struct {
	Enabled   bool   `toml:"enabled"`
	Path      string `toml:"path"`
	NumShards uint   `toml:"num_shards"`
}

// DefaultToolConfig returns the configuration used when no -config flag
// is given, matching §6's stated defaults. A -config file that cannot be
// read or decoded is a fatal startup error, not a fallback to these.
func DefaultToolConfig() ToolConfig {
	return ToolConfig{
		Tape: TapeConfig{
			InitialSize: 2048,
			Limit:       0,
		},
		History: HistoryConfig{
			Enabled:   false,
			NumShards: 1,
		},
	}
}
