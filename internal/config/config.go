// Package config loads the registry's external configuration (spec.md
// §6): a `.gto` file plus `GTO_`-prefixed environment variables,
// following the teacher's Cobra/Viper conventions in cmd/root.go.
package config

import (
	"fmt"
	"os"

	"github.com/spf13/viper"

	"github.com/pocketfuldev/artag/internal/registry"
)

// File is the base name Load searches for, without extension.
const File = ".gto"

// EnvPrefix is prepended to every environment variable Load recognises
// (e.g. GTO_VERSION_CONVENTION).
const EnvPrefix = "GTO"

// Options are the boundary-only settings spec.md §6 names but the core
// never consumes: `emojis` toggles decorative glyphs in CLI output.
type Options struct {
	Emojis bool
}

// Load reads .gto (from cfgFile if set, else the working directory and
// the user's home directory) and the environment, and returns the typed
// registry.Config plus the CLI-only Options. A config file absent from
// the search path is not an error — defaults apply, matching the
// teacher's initConfig, which tolerates "config file not found" and
// falls through to flags and environment alone. An explicit cfgFile
// that cannot be read is a ConfigError.
func Load(cfgFile string) (registry.Config, Options, error) {
	v := viper.New()
	v.SetEnvPrefix(EnvPrefix)
	v.AutomaticEnv()

	if cfgFile != "" {
		v.SetConfigFile(cfgFile)
	} else {
		v.AddConfigPath(".")
		if home, err := os.UserHomeDir(); err == nil {
			v.AddConfigPath(home)
		}
		v.SetConfigType("yaml")
		v.SetConfigName(File)
	}

	cfg := registry.DefaultConfig()
	opts := Options{}

	if err := v.ReadInConfig(); err != nil {
		if _, ok := err.(viper.ConfigFileNotFoundError); !ok && cfgFile != "" {
			return cfg, opts, registry.ConfigError(cfgFile, "reading config: %v", err)
		}
	}

	if v.IsSet("types") {
		cfg.Types = v.GetStringSlice("types")
	}
	if v.IsSet("stages") {
		cfg.Stages = v.GetStringSlice("stages")
	}
	if v.IsSet("version_convention") {
		switch conv := v.GetString("version_convention"); conv {
		case string(registry.ConventionNumbered), string(registry.ConventionSemver):
			cfg.VersionConvention = registry.Convention(conv)
		default:
			return cfg, opts, registry.ConfigError(conv, "unknown version_convention %q", conv)
		}
	}
	if v.IsSet("sort") {
		switch sortMode := v.GetString("sort"); sortMode {
		case string(registry.SortByTime), string(registry.SortBySemver):
			cfg.Sort = registry.SortMode(sortMode)
		default:
			return cfg, opts, registry.ConfigError(sortMode, "unknown sort %q", sortMode)
		}
	}
	if v.IsSet("index") {
		cfg.IndexPath = v.GetString("index")
	}
	if v.IsSet("kanban") {
		cfg.Kanban = v.GetBool("kanban")
	}
	if v.IsSet("multi_version_stage") {
		cfg.MultiVersionStage = v.GetBool("multi_version_stage")
	}
	opts.Emojis = v.GetBool("emojis")

	return cfg, opts, nil
}

// ConfigFileUsed reports which file Load actually read, for diagnostic
// output, mirroring the teacher's "Using config file: ..." message.
func ConfigFileUsed(cfgFile string) string {
	v := viper.New()
	if cfgFile != "" {
		v.SetConfigFile(cfgFile)
	} else {
		v.AddConfigPath(".")
		v.SetConfigType("yaml")
		v.SetConfigName(File)
	}
	_ = v.ReadInConfig()
	return v.ConfigFileUsed()
}

// Describe renders the effective configuration for `--help`-adjacent
// diagnostics.
func Describe(cfg registry.Config) string {
	return fmt.Sprintf(
		"version_convention=%s sort=%s index=%s kanban=%t multi_version_stage=%t",
		cfg.VersionConvention, cfg.Sort, cfg.IndexPath, cfg.Kanban, cfg.MultiVersionStage,
	)
}
