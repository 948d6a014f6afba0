package entity

import "errors"

// Standard domain errors
var (
	ErrProviderUnavailable = errors.New("answer provider unavailable")
	ErrProviderTimeout     = errors.New("answer provider timed out")
	ErrProviderRejected    = errors.New("answer provider returned a rejection response")
	ErrRecipeNotFound      = errors.New("recipe not found in any collection")
	ErrTransportFailure    = errors.New("reply delivery failed")
	ErrPersistenceFailure  = errors.New("persistence operation failed")

	ErrSessionNotFound = errors.New("user session not found")
	ErrVersionConflict = errors.New("session version conflict")

	ErrReplyWindowExpired = errors.New("reply token window expired")
)
