package auth

import "errors"

var (
	ErrInvalidJWT      = errors.New("invalid JWT token")
	ErrIncompleteOAuth = errors.New("incomplete oauth configuration")
	ErrTokenExpired    = errors.New("access token expired; issue a new one")
)
