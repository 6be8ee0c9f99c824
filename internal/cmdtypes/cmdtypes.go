// Package cmdtypes provides shared types for the cmd package and cmdutil.
// It is separate from internal/cmd to avoid import cycles between internal/cmd
// and internal/cmdutil.
package cmdtypes

import (
	"github.com/dvmodel/dvctl/internal/config"
	oerrors "github.com/dvmodel/dvctl/internal/errors"
	"github.com/dvmodel/dvctl/internal/platform"
)

// ClientFactory builds a platform client from the loaded configuration.
type ClientFactory func(cfg *config.Config) (platform.Client, error)

// GlobalConfig holds CLI-wide configuration resolved during PersistentPreRunE.
// It is populated once at startup and passed explicitly into every sub-command
// constructor.
type GlobalConfig struct {
	Config     *config.Config
	Resolved   *config.Resolved
	ConfigPath string // resolved --config path
	ConfigFlag string // raw --config flag value (needed by config vet)
	Verbose    bool

	// LoadErr is the error from loading the config file. Commands that do not
	// talk to the platform run without a valid config.
	LoadErr error

	// NewClient overrides the REST client, used by tests.
	NewClient ClientFactory
}

// Exit codes, aliased from internal/errors.
const (
	ExitSuccess           = oerrors.ExitSuccess
	ExitGeneralError      = oerrors.ExitGeneralError
	ExitValidationError   = oerrors.ExitValidationError
	ExitConnectivityError = oerrors.ExitConnectivityError
	ExitPermissionDenied  = oerrors.ExitPermissionDenied
	ExitNotFound          = oerrors.ExitNotFound
	ExitReleaseState      = oerrors.ExitReleaseState
)

// ExitError is a type alias to internal/errors.ExitError.
type ExitError = oerrors.ExitError
