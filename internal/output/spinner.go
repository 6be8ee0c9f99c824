package output

import (
	"context"
	"fmt"
	"os"

	"github.com/charmbracelet/huh/spinner"
	"golang.org/x/term"
)

// IsTTY reports whether stdout is attached to a terminal.
func IsTTY() bool {
	return term.IsTerminal(int(os.Stdout.Fd()))
}

// SpinnerOption configures a spinner.
type SpinnerOption func(*spinnerConfig)

type spinnerConfig struct {
	title string
}

// WithTitle sets the spinner title.
func WithTitle(title string) SpinnerOption {
	return func(c *spinnerConfig) {
		c.title = title
	}
}

// RunWithSpinner executes an action with a spinner and returns the action's
// error. It returns only after the action has returned, even when ctx is
// cancelled or the spinner is dismissed first, so values the action stores
// are safe to read afterwards.
func RunWithSpinner(ctx context.Context, action func(context.Context) error, opts ...SpinnerOption) error {
	cfg := &spinnerConfig{
		title: "Working...",
	}

	for _, opt := range opts {
		opt(cfg)
	}

	// If not a TTY, just run the action directly
	if !IsTTY() {
		return action(ctx)
	}

	return runAndWait(ctx, action, func(ctx context.Context, finished <-chan struct{}) error {
		return spinner.New().Title(cfg.title).Action(func() {
			select {
			case <-ctx.Done():
			case <-finished:
			}
		}).Run()
	})
}

// runAndWait runs action in the background while wait blocks. Once wait
// returns the action's context is cancelled and the action is waited for.
func runAndWait(ctx context.Context, action func(context.Context) error,
	wait func(ctx context.Context, finished <-chan struct{}) error,
) error {
	actionCtx, cancel := context.WithCancel(ctx)
	defer cancel()

	var actionErr error
	finished := make(chan struct{})
	go func() {
		defer close(finished)
		actionErr = action(actionCtx)
	}()

	waitErr := wait(actionCtx, finished)
	cancel()
	<-finished

	if waitErr != nil {
		return fmt.Errorf("spinner error: %w", waitErr)
	}
	return actionErr
}
