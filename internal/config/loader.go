package config

import (
	"fmt"
	"os"
	"strings"

	"github.com/knadh/koanf/parsers/yaml"
	"github.com/knadh/koanf/providers/confmap"
	"github.com/knadh/koanf/providers/env"
	"github.com/knadh/koanf/providers/file"
	"github.com/knadh/koanf/providers/posflag"
	"github.com/knadh/koanf/v2"
	"github.com/spf13/pflag"

	"github.com/aretw0/panmirror/pkg/adapters/redis"
	"github.com/aretw0/panmirror/pkg/ports"
)

// flagKeys maps flag names to configuration keys where they differ.
var flagKeys = map[string]string{
	"pandoc":         "pandoc.command",
	"pandoc-url":     "pandoc.url",
	"pandoc-timeout": "pandoc.timeout",
	"redis-addr":     "cache.redis_addr",
	"cache-dir":      "cache.dir",
	"cache-ttl":      "cache.ttl",
	"cache-prefix":   "cache.prefix",
	"schema":         "schema_file",
	"port":           "server.port",
	"metrics":        "server.metrics",
}

func defaults() map[string]any {
	return map[string]any{
		"format":          ports.DefaultFormat,
		"mismatch_policy": "fail",
		"concurrency":     0,
		"debug":           false,
		"pandoc.command":  "pandoc",
		"pandoc.args":     []string{},
		"pandoc.timeout":  "30s",
		"cache.ttl":       "0s",
		"cache.prefix":    redis.DefaultPrefix,
		"server.port":     8080,
		"server.metrics":  false,
	}
}

// findConfigFile returns the explicit path, or DefaultFile when it exists.
func findConfigFile(explicit string) string {
	if explicit != "" {
		return explicit
	}
	if _, err := os.Stat(DefaultFile); err == nil {
		return DefaultFile
	}
	return ""
}

// Load reads the configuration. cfgFile may be empty; flags may be nil.
// Precedence (highest to lowest): flags > env vars > config file > defaults
func Load(cfgFile string, flags *pflag.FlagSet) (*Config, error) {
	k := koanf.New(".")

	if err := k.Load(confmap.Provider(defaults(), "."), nil); err != nil {
		return nil, fmt.Errorf("failed to load defaults: %w", err)
	}

	used := findConfigFile(cfgFile)
	if used != "" {
		if err := k.Load(file.Provider(used), yaml.Parser()); err != nil {
			return nil, fmt.Errorf("error reading config file %s: %w", used, err)
		}
	}

	// PANMIRROR_CACHE__REDIS_ADDR -> cache.redis_addr
	if err := k.Load(env.Provider(EnvPrefix, ".", func(s string) string {
		key := strings.ToLower(strings.TrimPrefix(s, EnvPrefix))
		return strings.ReplaceAll(key, "__", ".")
	}), nil); err != nil {
		return nil, fmt.Errorf("failed to load env vars: %w", err)
	}

	if flags != nil {
		if err := k.Load(posflag.ProviderWithFlag(flags, ".", k, func(f *pflag.Flag) (string, any) {
			if !f.Changed {
				return "", nil
			}
			key, ok := flagKeys[f.Name]
			if !ok {
				key = strings.ReplaceAll(f.Name, "-", "_")
			}
			return key, posflag.FlagVal(flags, f)
		}), nil); err != nil {
			return nil, fmt.Errorf("failed to load flags: %w", err)
		}
	}

	var cfg Config
	if err := k.Unmarshal("", &cfg); err != nil {
		return nil, fmt.Errorf("unable to decode config: %w", err)
	}
	cfg.File = used

	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid configuration: %w", err)
	}
	return &cfg, nil
}
