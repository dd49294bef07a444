package adapter

import (
	"fmt"
	"strings"

	"github.com/spf13/pflag"
	"github.com/spf13/viper"

	"crucible.dev/pkg/crucible/internal/model"
)

// LoadConfig builds a model.Config from (in ascending precedence) a config
// file, environment variables prefixed CRUCIBLE_, and command-line flags
// already registered on fs. Flag binding mirrors the teacher's
// bindFlagToConfig convention: every flag name maps to the mapstructure
// tag of the same name on model.Config.
func LoadConfig(configPath string, fs *pflag.FlagSet) (*model.Config, error) {
	v := viper.New()

	v.SetEnvPrefix("CRUCIBLE")
	v.SetEnvKeyReplacer(strings.NewReplacer("-", "_"))
	v.AutomaticEnv()

	if configPath != "" {
		v.SetConfigFile(configPath)

		if err := v.ReadInConfig(); err != nil {
			return nil, &model.ConfigError{Reason: fmt.Sprintf("reading config file %s: %v", configPath, err)}
		}
	}

	if fs != nil {
		if err := v.BindPFlags(fs); err != nil {
			return nil, &model.ConfigError{Reason: fmt.Sprintf("binding flags: %v", err)}
		}
	}

	var cfg model.Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, &model.ConfigError{Reason: fmt.Sprintf("unmarshalling config: %v", err)}
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	return &cfg, nil
}

// RegisterFlags installs every Config flag onto fs, matching the
// mapstructure tags LoadConfig binds against.
func RegisterFlags(fs *pflag.FlagSet) {
	fs.StringSlice("bitcode-paths", nil, "paths to the modules under test")
	fs.String("cxx-compdb-dir", "", "directory containing compile_commands.json, consulted by the junk detector")
	fs.String("cxx-compilation-flags", "", "fallback compilation flags when no compilation database is found")
	fs.Int("threads", 1, "number of concurrent pipeline workers")
	fs.Int64("mutation-timeout-ms", 5000, "per-test timeout applied to every mutant run, in milliseconds")
	fs.String("output", "", "path to write the YAML result report to")
	fs.Int("shard-index", 0, "this run's shard index, 0-based")
	fs.Int("shard-total", 0, "total number of shards; 0 disables sharding")
	fs.String("cache-dir", "", "directory used for the baseline object disk cache")
	fs.Bool("no-cache", false, "disable the baseline object disk cache")
}
