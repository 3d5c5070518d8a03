package config

import (
	"log/slog"
	"os"
	"path/filepath"
	"strings"

	"github.com/cockroachdb/errors"
	"github.com/spf13/viper"
)

// EnvPrefix is the prefix of environment variables overriding the config file.
const EnvPrefix = "MAPGEN"

// Load reads the configuration. An explicit path must exist; an empty path
// searches for ConfigFileName from dir upwards and falls back to defaults.
// Environment variables (MAPGEN_ORDER, MAPGEN_KNOWN_VALUE_TYPES, ...) override the file.
func Load(path, dir string) (*Config, error) {
	v := viper.New()
	v.SetEnvPrefix(EnvPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()
	SetDefaults(v)

	if path == "" {
		path = findConfigFile(dir)
	}
	if path != "" {
		v.SetConfigFile(path)
		v.SetConfigType("yaml")
		if err := v.ReadInConfig(); err != nil {
			return nil, errors.Wrapf(err, "read config file %s", path)
		}
		slog.Debug("Loaded config file", "path", path)
	}

	cfg := &Config{}
	if err := v.Unmarshal(cfg); err != nil {
		return nil, errors.Wrap(err, "unmarshal config")
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// SetDefaults registers every configuration key with its default value.
func SetDefaults(v *viper.Viper) {
	def := NewConfig()
	v.SetDefault("known_value_types", def.KnownValueTypes)
	v.SetDefault("order", string(def.Order))
	v.SetDefault("ignore_tag", def.IgnoreTag)
}

// findConfigFile walks up from dir looking for ConfigFileName.
func findConfigFile(dir string) string {
	if dir == "" {
		wd, err := os.Getwd()
		if err != nil {
			return ""
		}
		dir = wd
	}
	dir, err := filepath.Abs(dir)
	if err != nil {
		return ""
	}
	for {
		candidate := filepath.Join(dir, ConfigFileName)
		if _, err := os.Stat(candidate); err == nil {
			return candidate
		}
		parent := filepath.Dir(dir)
		if parent == dir {
			return ""
		}
		dir = parent
	}
}
