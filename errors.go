package flagship

import "errors"

var (
	// ErrInvalid reports user-supplied fields that fail validation.
	ErrInvalid = errors.New("invalid input")
	// ErrNotFound reports an unknown device, sale, model or storage key.
	ErrNotFound = errors.New("not found")
	// ErrConflict reports a record whose status forbids the operation.
	ErrConflict = errors.New("conflict")
	// ErrNotConfigured reports a missing optional collaborator.
	ErrNotConfigured = errors.New("not configured")
	// ErrClosed is returned by a Shop whose loop has stopped.
	ErrClosed = errors.New("shop is closed")
	// ErrUnchanged is returned by a command that leaves the state as is.
	// Apply and the Shop treat it as a success that needs no saving.
	ErrUnchanged = errors.New("unchanged")
)
