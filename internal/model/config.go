package model

import "fmt"

// Config carries the configuration input described by the external
// interfaces design: the list of bitcode paths to load, and the optional
// C/C++ AST frontend settings the Junk Detector consults.
type Config struct {
	BitcodePaths          []string `mapstructure:"bitcode-paths"`
	CXXCompilationDBDir   string   `mapstructure:"cxx-compdb-dir"`
	CXXCompilationFlags   string   `mapstructure:"cxx-compilation-flags"`
	Threads               int      `mapstructure:"threads"`
	MutationTimeoutMillis int64    `mapstructure:"mutation-timeout-ms"`
	OutputPath            string   `mapstructure:"output"`
	ShardIndex            int      `mapstructure:"shard-index"`
	ShardTotal            int      `mapstructure:"shard-total"`
	CacheDir              string   `mapstructure:"cache-dir"`
	NoCache               bool     `mapstructure:"no-cache"`
}

// Validate checks the configuration invariants spec §6 names: bitcode
// paths are required and must not contain duplicates.
func (c *Config) Validate() error {
	if len(c.BitcodePaths) == 0 {
		return &ConfigError{Reason: "bitcodePaths must not be empty"}
	}

	seen := make(map[string]bool, len(c.BitcodePaths))
	for _, p := range c.BitcodePaths {
		if seen[p] {
			return &ConfigError{Reason: fmt.Sprintf("duplicate bitcode path: %s", p)}
		}

		seen[p] = true
	}

	if c.ShardTotal < 0 {
		return &ConfigError{Reason: "shard-total must not be negative"}
	}

	if c.ShardTotal > 0 && (c.ShardIndex < 0 || c.ShardIndex >= c.ShardTotal) {
		return &ConfigError{Reason: fmt.Sprintf("shard-index %d out of range for shard-total %d", c.ShardIndex, c.ShardTotal)}
	}

	return nil
}
