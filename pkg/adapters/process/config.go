package process

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"gopkg.in/yaml.v3"
)

// Config describes how the pandoc executable is invoked.
type Config struct {
	// Command is the executable, "pandoc" by default.
	Command string `yaml:"command" json:"command"`
	// Args are passed before the "-f <format> -t json" arguments the source appends.
	Args        []string          `yaml:"args" json:"args"`
	Environment map[string]string `yaml:"env" json:"env"`
	Dir         string            `yaml:"dir" json:"dir"`
	// Timeout bounds a single invocation. Zero means no limit beyond the caller's context.
	Timeout time.Duration `yaml:"timeout" json:"timeout"`
}

// DefaultConfig runs "pandoc" from PATH.
func DefaultConfig() Config {
	return Config{Command: "pandoc"}
}

// ConfigFile represents the structure of pandoc.yaml.
type ConfigFile struct {
	Pandoc Config `yaml:"pandoc" json:"pandoc"`
}

// LoadConfig reads a configuration file (YAML or JSON). A missing file yields
// DefaultConfig.
func LoadConfig(path string) (Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return DefaultConfig(), nil
		}
		return Config{}, fmt.Errorf("failed to read pandoc config: %w", err)
	}

	cfg := ConfigFile{Pandoc: DefaultConfig()}
	ext := strings.ToLower(filepath.Ext(path))

	if ext == ".json" {
		if err := json.Unmarshal(data, &cfg); err != nil {
			return Config{}, fmt.Errorf("failed to parse %s: %w", filepath.Base(path), err)
		}
	} else {
		if err := yaml.Unmarshal(data, &cfg); err != nil {
			return Config{}, fmt.Errorf("failed to parse %s: %w", filepath.Base(path), err)
		}
	}

	if cfg.Pandoc.Command == "" {
		cfg.Pandoc.Command = "pandoc"
	}
	return cfg.Pandoc, nil
}
