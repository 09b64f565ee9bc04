// Package config loads the issvm CLI's ambient defaults (row-cache
// size, optimization tolerance, iteration cap, PRNG seed) from an
// optional YAML config file, environment variables, and command-line
// flags, with flags taking precedence over the file.
package config

import (
	"fmt"
	"io"
	"strings"

	"github.com/spf13/pflag"
	"github.com/spf13/viper"
	"gopkg.in/yaml.v3"
)

// Config carries every tunable the CLI verbs share. Per-verb inputs
// (dataset paths, kernel and optimizer selection) stay on the verbs'
// own flags; only cross-cutting defaults live here.
type Config struct {
	CacheSize int     `mapstructure:"cache_size" yaml:"cache_size"`
	Tolerance float64 `mapstructure:"tolerance" yaml:"tolerance"`
	MaxIter   int     `mapstructure:"max_iter" yaml:"max_iter"`
	Seed      int64   `mapstructure:"seed" yaml:"seed"`
	Compress  bool    `mapstructure:"compress" yaml:"compress"`
	LogLevel  string  `mapstructure:"log_level" yaml:"log_level"`
}

// DefaultConfig returns the built-in defaults applied beneath any
// config file, environment, or flag overrides.
func DefaultConfig() Config {
	return Config{
		CacheSize: 1024,
		Tolerance: 1e-3,
		MaxIter:   100000,
		Seed:      1,
		Compress:  false,
		LogLevel:  "info",
	}
}

// RegisterFlags declares the shared flags on fs with defaults as their
// fallback values.
func RegisterFlags(fs *pflag.FlagSet, defaults Config) {
	fs.IntP("cache-size", "c", defaults.CacheSize, "Kernel row-cache capacity (0 disables caching)")
	fs.Float64P("tolerance", "t", defaults.Tolerance, "Optimality-gap threshold for optimize")
	fs.Int("max-iter", defaults.MaxIter, "Maximum Iterate calls per optimize run")
	fs.Int64("seed", defaults.Seed, "PRNG seed (deterministic runs share alpha trajectories)")
	fs.BoolP("compress", "z", defaults.Compress, "gzip-wrap written model files")
	fs.String("log-level", defaults.LogLevel, "Log level (debug|info|warn|error)")
}

// LoadOptions carries Load's inputs.
type LoadOptions struct {
	Flags      *pflag.FlagSet
	ConfigFile string
	Defaults   Config
}

// Load resolves the effective Config: built-in defaults, overlaid by an
// optional config file (explicit path or ./issvm.yaml), then ISSVM_*
// environment variables, then flags — flags win.
func Load(opts LoadOptions) (Config, error) {
	v := viper.New()
	setDefaults(v, opts.Defaults)
	if opts.Flags != nil {
		if err := v.BindPFlags(opts.Flags); err != nil {
			return Config{}, fmt.Errorf("config: bind flags: %w", err)
		}
	}

	v.SetEnvPrefix("ISSVM")
	v.SetEnvKeyReplacer(strings.NewReplacer("-", "_", ".", "_"))
	v.AutomaticEnv()

	if opts.ConfigFile != "" {
		v.SetConfigFile(opts.ConfigFile)
		if err := v.ReadInConfig(); err != nil {
			return Config{}, fmt.Errorf("config: read %s: %w", opts.ConfigFile, err)
		}
	} else {
		v.SetConfigName("issvm")
		v.AddConfigPath(".")
		if err := v.ReadInConfig(); err != nil {
			if _, ok := err.(viper.ConfigFileNotFoundError); !ok {
				return Config{}, fmt.Errorf("config: read: %w", err)
			}
		}
	}
	// Aliases are registered after the file is read so RegisterAlias
	// carries the file's snake_case values over to the flag keys.
	registerAliases(v)

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return Config{}, fmt.Errorf("config: decode: %w", err)
	}
	return cfg, nil
}

func setDefaults(v *viper.Viper, c Config) {
	v.SetDefault("cache_size", c.CacheSize)
	v.SetDefault("tolerance", c.Tolerance)
	v.SetDefault("max_iter", c.MaxIter)
	v.SetDefault("seed", c.Seed)
	v.SetDefault("compress", c.Compress)
	v.SetDefault("log_level", c.LogLevel)
}

func registerAliases(v *viper.Viper) {
	v.RegisterAlias("cache_size", "cache-size")
	v.RegisterAlias("max_iter", "max-iter")
	v.RegisterAlias("log_level", "log-level")
}

// WriteDefault renders DefaultConfig as a YAML document suitable as a
// starting issvm.yaml.
func WriteDefault(w io.Writer) error {
	out, err := yaml.Marshal(DefaultConfig())
	if err != nil {
		return fmt.Errorf("config: marshal defaults: %w", err)
	}
	if _, err := w.Write(out); err != nil {
		return fmt.Errorf("config: write defaults: %w", err)
	}
	return nil
}
