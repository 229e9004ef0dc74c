package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/spf13/pflag"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/aretw0/panmirror/pkg/domain"
)

func writeConfig(t *testing.T, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "panmirror.yaml")
	require.NoError(t, os.WriteFile(path, []byte(content), 0o644))
	return path
}

func TestLoad_Defaults(t *testing.T) {
	t.Chdir(t.TempDir())

	cfg, err := Load("", nil)
	require.NoError(t, err)

	assert.Equal(t, "commonmark", cfg.Format)
	assert.Equal(t, "pandoc", cfg.Pandoc.Command)
	assert.Equal(t, 30*time.Second, cfg.Pandoc.Timeout)
	assert.Equal(t, "panmirror:doc:", cfg.Cache.Prefix)
	assert.Equal(t, 8080, cfg.Server.Port)
	assert.Empty(t, cfg.File)

	policy, err := cfg.Policy()
	require.NoError(t, err)
	assert.Equal(t, domain.MismatchFail, policy)
}

func TestLoad_Precedence(t *testing.T) {
	t.Chdir(t.TempDir())
	path := writeConfig(t, `
format: gfm
mismatch_policy: drop
pandoc:
  command: /opt/pandoc
  args: ["--wrap=none"]
cache:
  redis_addr: localhost:6379
  ttl: 1h
server:
  port: 9000
`)

	t.Run("File over defaults", func(t *testing.T) {
		cfg, err := Load(path, nil)
		require.NoError(t, err)
		assert.Equal(t, path, cfg.File)
		assert.Equal(t, "gfm", cfg.Format)
		assert.Equal(t, "/opt/pandoc", cfg.Pandoc.Command)
		assert.Equal(t, []string{"--wrap=none"}, cfg.Pandoc.Args)
		assert.Equal(t, "localhost:6379", cfg.Cache.RedisAddr)
		assert.Equal(t, time.Hour, cfg.Cache.TTL)
		assert.Equal(t, 9000, cfg.Server.Port)
	})

	t.Run("Env over file", func(t *testing.T) {
		t.Setenv("PANMIRROR_FORMAT", "markdown")
		t.Setenv("PANMIRROR_CACHE__REDIS_ADDR", "cache:6380")
		cfg, err := Load(path, nil)
		require.NoError(t, err)
		assert.Equal(t, "markdown", cfg.Format)
		assert.Equal(t, "cache:6380", cfg.Cache.RedisAddr)
	})

	t.Run("Changed flags over env", func(t *testing.T) {
		t.Setenv("PANMIRROR_FORMAT", "markdown")
		flags := pflag.NewFlagSet("test", pflag.ContinueOnError)
		flags.String("format", "commonmark", "")
		flags.Int("port", 8080, "")
		flags.String("redis-addr", "", "")
		require.NoError(t, flags.Parse([]string{"--format", "commonmark_x", "--redis-addr", "flag:1"}))

		cfg, err := Load(path, flags)
		require.NoError(t, err)
		assert.Equal(t, "commonmark_x", cfg.Format)
		assert.Equal(t, "flag:1", cfg.Cache.RedisAddr)
		assert.Equal(t, 9000, cfg.Server.Port, "unchanged flag keeps the file value")
	})
}

func TestLoad_DefaultFileInWorkingDir(t *testing.T) {
	dir := t.TempDir()
	require.NoError(t, os.WriteFile(filepath.Join(dir, DefaultFile), []byte("format: gfm\n"), 0o644))
	t.Chdir(dir)

	cfg, err := Load("", nil)
	require.NoError(t, err)
	assert.Equal(t, DefaultFile, cfg.File)
	assert.Equal(t, "gfm", cfg.Format)
}

func TestLoad_Invalid(t *testing.T) {
	t.Chdir(t.TempDir())

	tests := []struct {
		name    string
		content string
		errSub  string
	}{
		{"unknown policy", "mismatch_policy: ignore\n", "unsupported mismatch policy"},
		{"negative concurrency", "concurrency: -1\n", "concurrency"},
		{"port range", "server:\n  port: 70000\n", "port"},
		{"short key", "cache:\n  encryption_key: abcd\n", "32 bytes"},
		{"non-hex key", "cache:\n  encryption_key: zz\n", "encryption_key"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := Load(writeConfig(t, tt.content), nil)
			require.Error(t, err)
			assert.Contains(t, err.Error(), tt.errSub)
		})
	}

	t.Run("Missing explicit file", func(t *testing.T) {
		_, err := Load(filepath.Join(t.TempDir(), "nope.yaml"), nil)
		assert.Error(t, err)
	})
}
