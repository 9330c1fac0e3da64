package session

import "errors"

// Error kinds shared by the restore, archive and recovery operations. Callers
// wrap them with context and test them with errors.Is.
var (
	// ErrValidation marks bad input detected before any mutation.
	ErrValidation = errors.New("validation failed")
	// ErrNotFound marks a missing session or archive.
	ErrNotFound = errors.New("not found")
	// ErrAlreadyExists marks a target name that is already in use.
	ErrAlreadyExists = errors.New("already exists")
	// ErrFilesystem marks a permission, space or path failure during a mutation.
	ErrFilesystem = errors.New("filesystem error")
	// ErrExternalCommand marks a failed window-manager command.
	ErrExternalCommand = errors.New("external command failed")
)
