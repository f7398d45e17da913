package domain

import "errors"

// Domain errors
var (
	ErrAnnotationsNotFound = errors.New("annotations not found")
	ErrInvalidToken        = errors.New("invalid token")
	ErrSessionExpired      = errors.New("session expired")
)
