package cmdutil

import (
	"fmt"

	"github.com/dvmodel/dvctl/internal/cmdtypes"
	"github.com/dvmodel/dvctl/internal/config"
	oerrors "github.com/dvmodel/dvctl/internal/errors"
	"github.com/dvmodel/dvctl/internal/output"
	"github.com/dvmodel/dvctl/internal/platform"
	"github.com/dvmodel/dvctl/internal/platform/rest"
)

// Exit codes and error type, re-exported for command code.
const (
	ExitGeneralError    = cmdtypes.ExitGeneralError
	ExitValidationError = cmdtypes.ExitValidationError
)

// ExitError is a type alias to internal/errors.ExitError.
type ExitError = cmdtypes.ExitError

// NewPlatformClient creates the platform client from the resolved config or
// returns an *ExitError whose code follows the failure.
func NewPlatformClient(g *cmdtypes.GlobalConfig) (platform.Client, error) {
	if g == nil || (g.Config == nil && g.LoadErr == nil) {
		return nil, &ExitError{Code: ExitGeneralError, Err: fmt.Errorf("configuration not loaded")}
	}
	if g.LoadErr != nil {
		return nil, Fail(fmt.Errorf("loading configuration: %w", g.LoadErr))
	}

	factory := g.NewClient
	if factory == nil {
		factory = NewRESTClient
	}

	client, err := factory(g.Config)
	if err != nil {
		return nil, Fail(err)
	}
	return client, nil
}

// NewRESTClient is the default ClientFactory.
func NewRESTClient(cfg *config.Config) (platform.Client, error) {
	timeout, err := cfg.RequestTimeout()
	if err != nil {
		return nil, oerrors.NewValidationError(err.Error(), "", "platform.timeout", "Use a Go duration such as 30s or 5m.")
	}

	output.Debug("creating platform client", "url", cfg.Platform.URL, "user", cfg.Platform.Username, "timeout", timeout)
	return rest.New(rest.Config{
		BaseURL:  cfg.Platform.URL,
		Username: cfg.Platform.Username,
		Password: cfg.Platform.Password,
		Caller:   cfg.Platform.Caller,
		Timeout:  timeout,
	})
}
