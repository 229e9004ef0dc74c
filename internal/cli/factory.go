package cli

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"

	"github.com/aretw0/panmirror"
	"github.com/aretw0/panmirror/internal/config"
	"github.com/aretw0/panmirror/pkg/adapters/file"
	"github.com/aretw0/panmirror/pkg/adapters/memory"
	httpAdapter "github.com/aretw0/panmirror/pkg/adapters/http"
	"github.com/aretw0/panmirror/pkg/adapters/process"
	"github.com/aretw0/panmirror/pkg/adapters/redis"
	"github.com/aretw0/panmirror/pkg/domain"
	"github.com/aretw0/panmirror/pkg/observability"
	"github.com/aretw0/panmirror/pkg/persistence/middleware"
	"github.com/aretw0/panmirror/pkg/ports"
	"github.com/aretw0/panmirror/pkg/schema"
)

// Stack is a converter wired from configuration, plus what it owns.
type Stack struct {
	Converter *panmirror.Converter
	Source    ports.ASTSource
	// Metrics and Registry are nil unless metrics were requested.
	Metrics  *observability.Metrics
	Registry *prometheus.Registry

	store   ports.DocumentStore
	closers []func() error
}

// Close releases connections opened by NewStack.
func (s *Stack) Close() error {
	var errs []error
	for _, c := range s.closers {
		errs = append(errs, c())
	}
	return errors.Join(errs...)
}

// StackOptions selects optional parts of the stack.
type StackOptions struct {
	// Metrics registers Prometheus collectors and the metric hooks.
	Metrics bool
	// NoCache ignores the cache settings.
	NoCache bool
}

// NewStack wires a Converter from cfg: schema file, pandoc source (local
// process or remote server), document cache (redis or directory), lifecycle
// hooks and, when redis is used, the distributed lock.
func NewStack(ctx context.Context, cfg *config.Config, logger *slog.Logger, opts StackOptions) (*Stack, error) {
	policy, err := cfg.Policy()
	if err != nil {
		return nil, err
	}

	st := &Stack{}
	convOpts := []panmirror.Option{
		panmirror.WithLogger(logger),
		panmirror.WithMismatchPolicy(policy),
		panmirror.WithFormat(cfg.Format),
	}

	s, err := LoadSchema(cfg.SchemaFile)
	if err != nil {
		return nil, err
	}
	convOpts = append(convOpts, panmirror.WithSchema(s))

	st.Source = newSource(cfg, logger)
	convOpts = append(convOpts, panmirror.WithASTSource(st.Source))

	hooks := domain.LifecycleHooks{}
	if cfg.Debug {
		hooks = hooks.Merge(observability.LoggingHooks(logger))
	}
	if opts.Metrics {
		st.Registry = prometheus.NewRegistry()
		st.Registry.MustRegister(collectors.NewGoCollector(), collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}))
		st.Metrics, err = observability.NewMetrics(st.Registry)
		if err != nil {
			return nil, fmt.Errorf("register metrics: %w", err)
		}
		hooks = hooks.Merge(st.Metrics.Hooks())
	}
	convOpts = append(convOpts, panmirror.WithLifecycleHooks(hooks))

	if !opts.NoCache {
		cacheOpts, err := st.cache(ctx, cfg, logger)
		if err != nil {
			_ = st.Close()
			return nil, err
		}
		convOpts = append(convOpts, cacheOpts...)
	}

	st.Converter, err = panmirror.New(convOpts...)
	if err != nil {
		_ = st.Close()
		return nil, err
	}
	return st, nil
}

func (st *Stack) cache(ctx context.Context, cfg *config.Config, logger *slog.Logger) ([]panmirror.Option, error) {
	opts, err := st.cacheBackend(ctx, cfg, logger)
	if err != nil || opts == nil {
		return nil, err
	}

	key, err := cfg.Cache.Key()
	if err != nil || key == nil {
		return opts, err
	}
	encrypt, err := middleware.NewEncryptionMiddleware(middleware.EncryptionConfig{ActiveKey: key})
	if err != nil {
		return nil, err
	}
	logger.Debug("Document cache encrypted")
	// A later WithDocumentStore replaces the plain one.
	return append(opts, panmirror.WithDocumentStore(encrypt(st.store))), nil
}

func (st *Stack) cacheBackend(ctx context.Context, cfg *config.Config, logger *slog.Logger) ([]panmirror.Option, error) {
	switch {
	case cfg.Cache.RedisAddr != "":
		store := redis.New(cfg.Cache.RedisAddr, cfg.Cache.RedisPassword, cfg.Cache.RedisDB,
			redis.WithPrefix(cfg.Cache.Prefix),
			redis.WithTTL(cfg.Cache.TTL),
		)
		st.closers = append(st.closers, store.Close)

		pingCtx, cancel := context.WithTimeout(ctx, 5*time.Second)
		defer cancel()
		if err := store.Ping(pingCtx); err != nil {
			return nil, fmt.Errorf("connect to redis at %s: %w", cfg.Cache.RedisAddr, err)
		}
		logger.Debug("Document cache enabled", "backend", "redis", "addr", cfg.Cache.RedisAddr)
		st.store = store
		return []panmirror.Option{
			panmirror.WithDocumentStore(store),
			panmirror.WithLocker(redis.NewLocker(store.Client(), cfg.Cache.Prefix), panmirror.DefaultLockTTL),
		}, nil
	case cfg.Cache.Dir != "":
		logger.Debug("Document cache enabled", "backend", "file", "dir", cfg.Cache.Dir)
		st.store = file.New(cfg.Cache.Dir)
		return []panmirror.Option{
			panmirror.WithDocumentStore(st.store),
			panmirror.WithLocker(memory.NewLocker(), panmirror.DefaultLockTTL),
		}, nil
	default:
		return nil, nil
	}
}

func newSource(cfg *config.Config, logger *slog.Logger) ports.ASTSource {
	if cfg.Pandoc.URL != "" {
		return httpAdapter.NewClient(cfg.Pandoc.URL)
	}
	pc := process.DefaultConfig()
	if cfg.Pandoc.Command != "" {
		pc.Command = cfg.Pandoc.Command
	}
	pc.Args = cfg.Pandoc.Args
	pc.Timeout = cfg.Pandoc.Timeout
	return process.NewSource(process.WithConfig(pc), process.WithLogger(logger))
}

// LoadSchema compiles the YAML schema at path, or returns schema.Basic when
// path is empty.
func LoadSchema(path string) (*schema.Schema, error) {
	if path == "" {
		return schema.Basic(), nil
	}
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("open schema file: %w", err)
	}
	defer f.Close()

	spec, err := schema.LoadSpec(f)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", path, err)
	}
	return schema.New(spec)
}
