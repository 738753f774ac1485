package loadorder

import (
	"errors"
	"fmt"
)

// Errors returned by load-order operations.
var (
	// ErrPluginNotFound is returned when an operation names a plugin
	// that is neither in the load order nor installed.
	ErrPluginNotFound = errors.New("plugin not found")

	// ErrInvalidPlugin is returned when a named file is not a valid
	// plugin.
	ErrInvalidPlugin = errors.New("invalid plugin")

	// ErrDuplicatePlugin is returned when a bulk operation names the
	// same plugin twice.
	ErrDuplicatePlugin = errors.New("duplicate plugin")

	// ErrUnorderedMasters is returned when a requested order or move
	// would put a non-master plugin before a master.
	ErrUnorderedMasters = errors.New("master plugins must load before all non-master plugins")

	// ErrTooManyActivePlugins is returned when activation would exceed
	// the per-game ceiling.
	ErrTooManyActivePlugins = errors.New("too many active plugins")

	// ErrImplicitlyActive is returned when deactivating a plugin the
	// game engine always loads, or when a bulk activation omits one.
	ErrImplicitlyActive = errors.New("plugin is implicitly active")
)

// EncodeError is returned when a plugin name cannot be represented in
// the active-plugin file's Windows-1252 encoding.
type EncodeError struct {
	// Name is the plugin name that failed to encode.
	Name string
	// Err is the underlying transform error.
	Err error
}

// Error implements the error interface.
func (e *EncodeError) Error() string {
	return fmt.Sprintf("plugin name %q cannot be encoded in Windows-1252", e.Name)
}

// Unwrap returns the underlying error.
func (e *EncodeError) Unwrap() error {
	return e.Err
}
