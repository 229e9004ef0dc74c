// Package config loads the panmirror CLI configuration.
//
// Sources are layered, lowest precedence first: built-in defaults, the YAML
// file (panmirror.yaml), PANMIRROR_ environment variables and flags that
// were set explicitly on the command line.
package config

import (
	"encoding/hex"
	"fmt"
	"time"

	"github.com/aretw0/panmirror/pkg/domain"
)

// DefaultFile is the configuration file looked up in the working directory.
const DefaultFile = "panmirror.yaml"

// EnvPrefix prefixes every environment variable. A double underscore
// separates nested keys: PANMIRROR_CACHE__REDIS_ADDR sets cache.redis_addr.
const EnvPrefix = "PANMIRROR_"

// PandocConfig selects how markdown becomes a pandoc AST.
type PandocConfig struct {
	Command string        `koanf:"command"`
	Args    []string      `koanf:"args"`
	Timeout time.Duration `koanf:"timeout"`
	// URL points at a remote panmirror server. When set, the local
	// executable is not used.
	URL string `koanf:"url"`
}

// CacheConfig configures the converted document cache. Redis wins over the
// directory when both are set; neither disables caching.
type CacheConfig struct {
	RedisAddr     string        `koanf:"redis_addr"`
	RedisPassword string        `koanf:"redis_password"`
	RedisDB       int           `koanf:"redis_db"`
	TTL           time.Duration `koanf:"ttl"`
	Prefix        string        `koanf:"prefix"`
	Dir           string        `koanf:"dir"`
	// EncryptionKey is a hex encoded AES-256 key. When set, cached documents
	// are encrypted at rest.
	EncryptionKey string `koanf:"encryption_key"`
}

// Key decodes EncryptionKey. It returns nil when no key is configured.
func (c CacheConfig) Key() ([]byte, error) {
	if c.EncryptionKey == "" {
		return nil, nil
	}
	key, err := hex.DecodeString(c.EncryptionKey)
	if err != nil {
		return nil, fmt.Errorf("cache.encryption_key: %w", err)
	}
	if len(key) != 32 {
		return nil, fmt.Errorf("cache.encryption_key must be 32 bytes, got %d", len(key))
	}
	return key, nil
}

// ServerConfig configures `panmirror serve`.
type ServerConfig struct {
	Port    int  `koanf:"port"`
	Metrics bool `koanf:"metrics"`
}

// Config holds all CLI configuration options.
type Config struct {
	Format         string       `koanf:"format"`
	MismatchPolicy string       `koanf:"mismatch_policy"`
	SchemaFile     string       `koanf:"schema_file"`
	Concurrency    int          `koanf:"concurrency"`
	Debug          bool         `koanf:"debug"`
	Pandoc         PandocConfig `koanf:"pandoc"`
	Cache          CacheConfig  `koanf:"cache"`
	Server         ServerConfig `koanf:"server"`

	// File is the configuration file that was read, if any.
	File string `koanf:"-"`
}

// Policy parses MismatchPolicy.
func (c *Config) Policy() (domain.MismatchPolicy, error) {
	return domain.ParseMismatchPolicy(c.MismatchPolicy)
}

// Validate reports configuration values that cannot work.
func (c *Config) Validate() error {
	if _, err := c.Policy(); err != nil {
		return err
	}
	if c.Concurrency < 0 {
		return fmt.Errorf("concurrency must not be negative, got %d", c.Concurrency)
	}
	if c.Server.Port < 0 || c.Server.Port > 65535 {
		return fmt.Errorf("server port out of range: %d", c.Server.Port)
	}
	if _, err := c.Cache.Key(); err != nil {
		return err
	}
	if c.Pandoc.Timeout < 0 || c.Cache.TTL < 0 {
		return fmt.Errorf("durations must not be negative")
	}
	return nil
}
