package plugin

import "errors"

// Validation errors returned by New.
var (
	// ErrInvalidExtension is returned for filenames that are not .esm
	// or .esp files.
	ErrInvalidExtension = errors.New("plugin filename has no .esm or .esp extension")

	// ErrNotFound is returned when neither the plain nor the ghosted
	// form of the file exists.
	ErrNotFound = errors.New("plugin file not found")

	// ErrInvalidHeader is returned when the file's header record
	// cannot be read or has the wrong record type for the game.
	ErrInvalidHeader = errors.New("invalid plugin header")
)
