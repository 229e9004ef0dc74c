package process

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"os/exec"
	"regexp"
	"sort"
	"strings"
	"time"

	"github.com/aretw0/panmirror/pkg/domain"
	"github.com/aretw0/panmirror/pkg/ports"
)

// ErrInvalidFormat is returned for reader names that could be mistaken for flags.
var ErrInvalidFormat = fmt.Errorf("%w: pandoc reader name", domain.ErrInvalidFormat)

// formatPattern accepts reader names with extensions, e.g. "markdown+smart-raw_html".
var formatPattern = regexp.MustCompile(`^[a-z0-9_]+([+-][a-z0-9_]+)*$`)

// Source implements ports.ASTSource by running pandoc as a child process.
// Markdown is written to stdin and the JSON AST is read from stdout.
type Source struct {
	cfg    Config
	logger *slog.Logger
}

// SourceOption configures the source.
type SourceOption func(*Source)

// WithConfig replaces the invocation settings.
func WithConfig(cfg Config) SourceOption {
	return func(s *Source) {
		s.cfg = cfg
	}
}

// WithCommand sets the executable and its leading arguments.
func WithCommand(command string, args ...string) SourceOption {
	return func(s *Source) {
		s.cfg.Command = command
		s.cfg.Args = args
	}
}

// WithLogger sets a custom structured logger.
func WithLogger(logger *slog.Logger) SourceOption {
	return func(s *Source) {
		s.logger = logger
	}
}

// NewSource creates a pandoc process source.
func NewSource(opts ...SourceOption) *Source {
	s := &Source{
		cfg:    DefaultConfig(),
		logger: slog.New(slog.NewTextHandler(io.Discard, nil)),
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Config returns the effective invocation settings.
func (s *Source) Config() Config { return s.cfg }

// FetchAST runs `pandoc -f <format> -t json` over req.Markdown.
func (s *Source) FetchAST(ctx context.Context, req ports.ASTRequest) ([]byte, error) {
	format := req.FormatOrDefault()
	if !formatPattern.MatchString(format) {
		return nil, fmt.Errorf("%w: %q", ErrInvalidFormat, format)
	}

	args := append(append([]string(nil), s.cfg.Args...), "-f", format, "-t", "json")
	out, err := s.run(ctx, strings.NewReader(req.Markdown), args...)
	if err != nil {
		return nil, err
	}
	return out, nil
}

// InputFormats lists the readers supported by the configured pandoc.
func (s *Source) InputFormats(ctx context.Context) ([]string, error) {
	out, err := s.run(ctx, nil, "--list-input-formats")
	if err != nil {
		return nil, err
	}
	formats := strings.Fields(string(out))
	sort.Strings(formats)
	return formats, nil
}

func (s *Source) run(ctx context.Context, stdin io.Reader, args ...string) ([]byte, error) {
	if s.cfg.Timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, s.cfg.Timeout)
		defer cancel()
	}

	cmd := exec.CommandContext(ctx, s.cfg.Command, args...)
	cmd.Dir = s.cfg.Dir
	cmd.WaitDelay = time.Second
	cmd.Stdin = stdin
	if len(s.cfg.Environment) > 0 {
		env := cmd.Environ()
		for k, v := range s.cfg.Environment {
			env = append(env, k+"="+v)
		}
		cmd.Env = env
	}

	var stdout, stderr bytes.Buffer
	cmd.Stdout = &stdout
	cmd.Stderr = &stderr

	s.logger.Debug("running pandoc", "command", s.cfg.Command, "args", args)
	if err := cmd.Run(); err != nil {
		if ctxErr := ctx.Err(); ctxErr != nil {
			return nil, ctxErr
		}
		if errors.Is(err, exec.ErrNotFound) {
			return nil, fmt.Errorf("%w: %v", domain.ErrSourceUnavailable, err)
		}
		msg := strings.TrimSpace(stderr.String())
		s.logger.Debug("pandoc failed", "err", err, "stderr", msg)
		return nil, fmt.Errorf("%w: %s: %v: %s", domain.ErrSourceFailed, s.cfg.Command, err, msg)
	}
	return stdout.Bytes(), nil
}
