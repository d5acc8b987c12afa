// Package apperr defines the sentinel errors components return across
// their boundaries, per the error taxonomy in SPEC_FULL §7. The REST
// layer checks these with errors.Is/errors.As to pick a status code;
// no other package needs to know the HTTP mapping.
//
// This is the one ambient concern built directly on the standard
// library rather than a third-party errors package: no such library
// appears anywhere in the example pack, so wrapping with fmt.Errorf's
// %w and checking with errors.Is is the idiom this corpus actually
// uses (see DESIGN.md).
package apperr

import "errors"

var (
	// ErrNotFound is returned when a requested entity does not exist.
	ErrNotFound = errors.New("not found")
	// ErrConflict is returned for state conflicts (duplicate, already assigned).
	ErrConflict = errors.New("conflict")
	// ErrValidation is returned for malformed input.
	ErrValidation = errors.New("validation failed")
	// ErrDecrypt is returned when a credential cannot be decrypted.
	ErrDecrypt = errors.New("decryption failed")
	// ErrTokenInvalid is returned for an unknown access token.
	ErrTokenInvalid = errors.New("invalid token")
	// ErrTokenExpired is returned for a recognized but expired access token.
	ErrTokenExpired = errors.New("expired token")
)
