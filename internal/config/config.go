// Package config loads cppfacts settings from flags, CPPFACTS_ environment
// variables, an optional .env file and an optional .cppfacts.yaml file, in
// that order of precedence.
package config

import (
	"errors"
	"fmt"
	"io/fs"
	"log/slog"
	"os"
	"path/filepath"
	"strings"

	"github.com/joho/godotenv"
	"github.com/spf13/viper"
	"gopkg.in/yaml.v3"

	"github.com/phobologic/cppfacts/internal/resolve"
)

// FileName is the config file looked up in the analysed root.
const FileName = ".cppfacts.yaml"

// EnvPrefix prefixes every environment override.
const EnvPrefix = "CPPFACTS"

// Config holds every setting of a run. Keys match the CLI flag names.
type Config struct {
	MaxFiles    int      `mapstructure:"max-files" yaml:"max-files"`
	MaxFileSize int64    `mapstructure:"max-file-size" yaml:"max-file-size"`
	Workers     int      `mapstructure:"workers" yaml:"workers"`
	CacheSize   int      `mapstructure:"oracle-cache" yaml:"oracle-cache"`
	NoHeaders   bool     `mapstructure:"no-headers" yaml:"no-headers"`
	NoTests     bool     `mapstructure:"no-tests" yaml:"no-tests"`
	Exclude     []string `mapstructure:"exclude" yaml:"exclude,omitempty"`
	LogLevel    string   `mapstructure:"log-level" yaml:"log-level"`

	// TopLevelContainers creates containers missed by a recursive search at
	// top level.
	TopLevelContainers bool `mapstructure:"top-level-containers" yaml:"top-level-containers"`
	// ClassContainers creates classes for containers under non-namespaces.
	ClassContainers bool `mapstructure:"class-containers" yaml:"class-containers"`
}

// Default returns the built-in settings.
func Default() Config {
	p := resolve.DefaultPolicy()
	return Config{
		MaxFileSize:        1_000_000,
		CacheSize:          4096,
		LogLevel:           "warn",
		TopLevelContainers: p.TopLevelOnRecursiveMiss,
		ClassContainers:    p.ClassUnderNonNamespace,
	}
}

// SetDefaults registers the defaults on v so environment variables and the
// config file can override keys that have no flag.
func SetDefaults(v *viper.Viper) {
	d := Default()
	v.SetDefault("max-files", d.MaxFiles)
	v.SetDefault("max-file-size", d.MaxFileSize)
	v.SetDefault("workers", d.Workers)
	v.SetDefault("oracle-cache", d.CacheSize)
	v.SetDefault("no-headers", d.NoHeaders)
	v.SetDefault("no-tests", d.NoTests)
	v.SetDefault("exclude", d.Exclude)
	v.SetDefault("log-level", d.LogLevel)
	v.SetDefault("top-level-containers", d.TopLevelContainers)
	v.SetDefault("class-containers", d.ClassContainers)
}

// Load reads the settings for the tree at root into a Config. Flags must
// already be bound on v.
func Load(v *viper.Viper, root string) (*Config, error) {
	if err := godotenv.Load(filepath.Join(root, ".env")); err != nil && !errors.Is(err, fs.ErrNotExist) {
		return nil, fmt.Errorf("loading .env: %w", err)
	}

	SetDefaults(v)
	v.SetEnvPrefix(EnvPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer("-", "_"))
	v.AutomaticEnv()

	v.SetConfigFile(filepath.Join(root, FileName))
	v.SetConfigType("yaml")
	if err := v.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if !errors.As(err, &notFound) && !errors.Is(err, fs.ErrNotExist) {
			return nil, fmt.Errorf("reading %s: %w", FileName, err)
		}
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("decoding config: %w", err)
	}
	if _, err := cfg.Level(); err != nil {
		return nil, err
	}
	return &cfg, nil
}

// Level parses LogLevel.
func (c *Config) Level() (slog.Level, error) {
	var l slog.Level
	if err := l.UnmarshalText([]byte(c.LogLevel)); err != nil {
		return 0, fmt.Errorf("invalid log level %q: %w", c.LogLevel, err)
	}
	return l, nil
}

// Policy returns the container creation heuristics.
func (c *Config) Policy() resolve.Policy {
	return resolve.Policy{
		TopLevelOnRecursiveMiss: c.TopLevelContainers,
		ClassUnderNonNamespace:  c.ClassContainers,
	}
}

// Marshal renders c as YAML.
func Marshal(c Config) ([]byte, error) {
	out, err := yaml.Marshal(c)
	if err != nil {
		return nil, fmt.Errorf("encoding config: %w", err)
	}
	return out, nil
}

// WriteDefault writes the default config to path. An existing file is only
// replaced when force is set.
func WriteDefault(path string, force bool) error {
	if !force {
		if _, err := os.Stat(path); err == nil {
			return fmt.Errorf("%s already exists", path)
		}
	}
	out, err := Marshal(Default())
	if err != nil {
		return err
	}
	if err := os.WriteFile(path, out, 0o644); err != nil {
		return fmt.Errorf("writing %s: %w", path, err)
	}
	return nil
}
