package domain

import "errors"

var (
	// ErrBankNotFound indicates the question bank could not be loaded.
	ErrBankNotFound = errors.New("question bank not found")
	// ErrUnknownTier is returned for a tier outside the four known classifications.
	ErrUnknownTier = errors.New("unknown score tier")
	// ErrUnauthorized is returned when an identity-scoped query has no verified identity.
	ErrUnauthorized = errors.New("unauthorized")
	// ErrInvalidToken indicates an identity token failed verification.
	ErrInvalidToken = errors.New("invalid identity token")
	// ErrStoreUnavailable wraps failures of the score store backend.
	ErrStoreUnavailable = errors.New("score store unavailable")
)
