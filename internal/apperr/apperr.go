// Package apperr defines the error taxonomy shared by the store, the
// access-control rules and the HTTP layer. Callers classify failures with
// errors.Is against these sentinels; wrapping adds detail without changing
// the class.
package apperr

import "errors"

var (
	// ErrNotFound covers absent entities and malformed identifiers.
	ErrNotFound = errors.New("not found")

	// ErrForbidden is an authorization failure for a known principal.
	ErrForbidden = errors.New("forbidden")

	// ErrConflict covers duplicate emails and duplicate collaborators.
	ErrConflict = errors.New("conflict")

	// ErrInvalidToken means a confirmation/reset token is unknown or
	// already consumed.
	ErrInvalidToken = errors.New("invalid token")

	// ErrValidation is a malformed or incomplete request.
	ErrValidation = errors.New("validation failed")
)
