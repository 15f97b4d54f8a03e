package auth

import "errors"

var (
	ErrAccountAlreadyExists = errors.New("account with that email or username already exists")
	ErrInvalidCredentials   = errors.New("invalid email or password")
	ErrInvalidToken         = errors.New("invalid or expired token")
	ErrRefreshTokenRevoked  = errors.New("refresh token is not recognized")
	ErrSessionNotFound      = errors.New("session not found")
)
