package crate

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/spf13/viper"
	"go.uber.org/zap/zapcore"

	"github.com/aigotowork/crate/internal/codec"
	"github.com/aigotowork/crate/internal/compress"
)

// DefaultDirName is the directory under the user's home used when no root is configured.
const DefaultDirName = "FileStorage"

// EnvPrefix prefixes the environment variables read by LoadConfig.
const EnvPrefix = "CRATE"

// Config holds the settings a Store is built from.
type Config struct {
	// Root is the storage root. Must be non-empty and must not end in a path separator.
	// Default: <user home>/FileStorage
	Root string `mapstructure:"root" yaml:"root"`

	// Codec names the serialization for new files.
	// Default: "msgpack"
	Codec string `mapstructure:"codec" yaml:"codec"`

	// Compression names the stream compressor for new files.
	// Default: "gzip"
	Compression string `mapstructure:"compression" yaml:"compression"`

	// LogLevel is one of debug, info, warn, error.
	// Default: "info"
	LogLevel string `mapstructure:"log_level" yaml:"log_level"`
}

// DefaultRoot returns <user home>/FileStorage, falling back to the
// temporary directory when no home directory is known.
func DefaultRoot() string {
	home, err := os.UserHomeDir()
	if err != nil || home == "" {
		home = os.TempDir()
	}
	return filepath.Join(home, DefaultDirName)
}

// DefaultConfig returns the default configuration.
func DefaultConfig() Config {
	return Config{
		Root:        DefaultRoot(),
		Codec:       codec.Default,
		Compression: compress.Default,
		LogLevel:    "info",
	}
}

// ValidateRoot checks a storage root before any I/O happens.
// It rejects the empty string and values ending in '/' or '\'.
func ValidateRoot(root string) error {
	if root == "" {
		return newError("configure", "", ErrConfiguration, errors.New("storage root is empty"))
	}
	if strings.HasSuffix(root, "/") || strings.HasSuffix(root, `\`) {
		return newError("configure", root, ErrConfiguration, errors.New("storage root ends with a path separator"))
	}
	return nil
}

// SetRoot validates and sets the storage root.
// The config is left unchanged when root is rejected.
func (c *Config) SetRoot(root string) error {
	if err := ValidateRoot(root); err != nil {
		return err
	}
	c.Root = root
	return nil
}

// Validate checks if the configuration is valid.
func (c Config) Validate() error {
	if err := ValidateRoot(c.Root); err != nil {
		return err
	}
	if _, err := codec.ByName(c.Codec); err != nil {
		return newError("configure", "", ErrConfiguration, err)
	}
	if _, err := compress.ByName(c.Compression); err != nil {
		return newError("configure", "", ErrConfiguration, err)
	}
	if c.LogLevel != "" {
		var lvl zapcore.Level
		if err := lvl.UnmarshalText([]byte(c.LogLevel)); err != nil {
			return newError("configure", "", ErrConfiguration, err)
		}
	}
	return nil
}

// LoadConfig reads configuration from (in decreasing priority):
//  1. environment variables (CRATE_ROOT, CRATE_CODEC, CRATE_COMPRESSION, CRATE_LOG_LEVEL)
//  2. the YAML file at path, or ./crate.yaml if path is empty and the file exists
//  3. DefaultConfig
//
// The result is validated.
func LoadConfig(path string) (Config, error) {
	def := DefaultConfig()

	v := viper.New()
	v.SetDefault("root", def.Root)
	v.SetDefault("codec", def.Codec)
	v.SetDefault("compression", def.Compression)
	v.SetDefault("log_level", def.LogLevel)

	v.SetEnvPrefix(EnvPrefix)
	v.AutomaticEnv()

	if path != "" {
		v.SetConfigFile(path)
		if err := v.ReadInConfig(); err != nil {
			return Config{}, newError("configure", path, ErrConfiguration, err)
		}
	} else {
		v.SetConfigName("crate")
		v.SetConfigType("yaml")
		v.AddConfigPath(".")
		if err := v.ReadInConfig(); err != nil {
			var notFound viper.ConfigFileNotFoundError
			if !errors.As(err, &notFound) {
				return Config{}, newError("configure", "", ErrConfiguration, err)
			}
		}
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return Config{}, newError("configure", "", ErrConfiguration, fmt.Errorf("cannot decode config: %w", err))
	}

	if err := cfg.Validate(); err != nil {
		return Config{}, err
	}

	return cfg, nil
}
