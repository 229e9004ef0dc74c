package cli

import (
	"context"
	"errors"
	"fmt"
	"os"
	"os/signal"
	"sync"
	"syscall"
)

// InterruptError is the cancellation cause of a context stopped by SIGINT or
// SIGTERM. Step names the unit of work that was running at that moment.
type InterruptError struct {
	Signal os.Signal
	Step   string
}

func (e *InterruptError) Error() string {
	if e.Step == "" {
		return fmt.Sprintf("interrupted by %v", e.Signal)
	}
	return fmt.Sprintf("interrupted by %v while %s", e.Signal, e.Step)
}

type interruptKey struct{}

type interruptState struct {
	mu     sync.Mutex
	step   string
	cancel context.CancelCauseFunc
}

func (s *interruptState) setStep(step string) {
	s.mu.Lock()
	s.step = step
	s.mu.Unlock()
}

func (s *interruptState) interrupt(sig os.Signal) {
	s.mu.Lock()
	step := s.step
	s.mu.Unlock()
	s.cancel(&InterruptError{Signal: sig, Step: step})
}

// NotifyContext returns a context cancelled on SIGINT or SIGTERM with an
// *InterruptError cause. The returned stop function releases the signal handler.
func NotifyContext(parent context.Context) (context.Context, context.CancelFunc) {
	ctx, cancel := context.WithCancelCause(parent)
	state := &interruptState{cancel: cancel}
	ctx = context.WithValue(ctx, interruptKey{}, state)

	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, os.Interrupt, syscall.SIGTERM)
	go func() {
		defer signal.Stop(sigCh)
		select {
		case sig := <-sigCh:
			state.interrupt(sig)
		case <-ctx.Done():
		}
	}()

	return ctx, func() { cancel(context.Canceled) }
}

// SetStep records what the command is doing, so an interrupt can report it.
// It does nothing on contexts not created by NotifyContext.
func SetStep(ctx context.Context, format string, args ...any) {
	if state, ok := ctx.Value(interruptKey{}).(*interruptState); ok {
		state.setStep(fmt.Sprintf(format, args...))
	}
}

// Interruption reports whether ctx was cancelled by a signal.
func Interruption(ctx context.Context) (*InterruptError, bool) {
	var ie *InterruptError
	if errors.As(context.Cause(ctx), &ie) {
		return ie, true
	}
	return nil, false
}
