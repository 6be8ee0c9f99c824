package errors

import "errors"

// Sentinel errors for known conditions.
var (
	// ErrValidation indicates invalid input: flags, config, or CSV rows.
	ErrValidation = errors.New("validation error")

	// ErrConnectivity indicates the platform API could not be reached.
	ErrConnectivity = errors.New("connectivity error")

	// ErrPermission indicates the platform rejected the configured credentials.
	ErrPermission = errors.New("permission denied")

	// ErrNotFound indicates a project, data vault, release, or other object was not found.
	ErrNotFound = errors.New("not found")

	// ErrNotLocked indicates an operation requires a locked release that is not locked.
	ErrNotLocked = errors.New("release not locked")

	// ErrReleaseLocked indicates an operation requires an editable release that is already locked.
	ErrReleaseLocked = errors.New("release locked")

	// ErrNoLockedRelease indicates no locked release exists when none was named.
	ErrNoLockedRelease = errors.New("no locked release")

	// ErrNoUnlockedRelease indicates no editable release exists when none was named.
	ErrNoUnlockedRelease = errors.New("no unlocked release")

	// ErrRemoteGeneration indicates the platform failed to generate code for a flow.
	ErrRemoteGeneration = errors.New("remote generation failed")
)
