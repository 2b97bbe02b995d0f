// Package config loads attrcheck settings from attrcheck.yaml and ATTRCHECK_* variables
package config

import (
	"strings"

	"github.com/cockroachdb/errors"
	"github.com/spf13/viper"
	"github.com/viant/attrcheck/checker/cache"
	"github.com/viant/attrcheck/checker/report"
)

// EnvPrefix prefixes environment overrides, e.g. ATTRCHECK_CACHE_BACKEND
const EnvPrefix = "ATTRCHECK"

// PluginPynamoDB is the name of the PynamoDB attribute plugin
const PluginPynamoDB = "pynamodb"

// Config represents the attrcheck configuration
type Config struct {
	Plugins []string     `mapstructure:"plugins"`
	Cache   CacheConfig  `mapstructure:"cache"`
	Output  OutputConfig `mapstructure:"output"`
	Log     LogConfig    `mapstructure:"log"`
}

// CacheConfig represents the incremental cache settings
type CacheConfig struct {
	Enabled bool   `mapstructure:"enabled"`
	Backend string `mapstructure:"backend"`
	// Dir is a base URL for the fs backend or a database path for sqlite
	Dir string `mapstructure:"dir"`
}

// OutputConfig represents report settings
type OutputConfig struct {
	Format string `mapstructure:"format"`
	Color  bool   `mapstructure:"color"`
}

// LogConfig represents logger settings
type LogConfig struct {
	Level  string `mapstructure:"level"`
	Format string `mapstructure:"format"`
}

// HasPlugin returns true if the named plugin is enabled
func (c *Config) HasPlugin(name string) bool {
	for _, candidate := range c.Plugins {
		if candidate == name {
			return true
		}
	}
	return false
}

// Load reads the configuration; with an empty path attrcheck.yaml is looked up in the
// working directory and a missing file leaves the defaults in place
func Load(path string) (*Config, error) {
	v := viper.New()
	setDefaults(v)

	if path != "" {
		v.SetConfigFile(path)
	} else {
		v.SetConfigName("attrcheck")
		v.SetConfigType("yaml")
		v.AddConfigPath(".")
	}
	v.SetEnvPrefix(EnvPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	if err := v.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if path != "" || !errors.As(err, &notFound) {
			return nil, errors.Wrap(err, "failed to read config file")
		}
	}

	var config Config
	if err := v.Unmarshal(&config); err != nil {
		return nil, errors.Wrap(err, "failed to unmarshal config")
	}
	if err := config.Validate(); err != nil {
		return nil, err
	}
	return &config, nil
}

func setDefaults(v *viper.Viper) {
	v.SetDefault("plugins", []string{PluginPynamoDB})
	v.SetDefault("cache.enabled", true)
	v.SetDefault("cache.backend", cache.BackendFS)
	v.SetDefault("cache.dir", ".attrcheck_cache")
	v.SetDefault("output.format", string(report.FormatText))
	v.SetDefault("output.color", true)
	v.SetDefault("log.level", "warn")
	v.SetDefault("log.format", "console")
}

// Validate checks option values
func (c *Config) Validate() error {
	for _, name := range c.Plugins {
		if name != PluginPynamoDB {
			return errors.WithHint(errors.Newf("unknown plugin %q", name), "supported plugins: "+PluginPynamoDB)
		}
	}
	switch c.Cache.Backend {
	case cache.BackendFS, cache.BackendSQLite:
	default:
		return errors.WithHint(errors.Newf("unsupported cache.backend %q", c.Cache.Backend), "use fs or sqlite")
	}
	if c.Cache.Enabled && c.Cache.Dir == "" {
		return errors.New("cache.dir is required when the cache is enabled")
	}
	switch report.Format(c.Output.Format) {
	case report.FormatText, report.FormatJSON:
	default:
		return errors.WithHint(errors.Newf("unsupported output.format %q", c.Output.Format), "use text or json")
	}
	switch c.Log.Format {
	case "console", "json":
	default:
		return errors.WithHint(errors.Newf("unsupported log.format %q", c.Log.Format), "use console or json")
	}
	return nil
}
