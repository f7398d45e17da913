package domain

import (
	"context"
	"time"
)

// AnnotationBackend is the remote collaborator that stores annotation blobs.
// Fetch returns ErrAnnotationsNotFound when nothing was saved for the document.
type AnnotationBackend interface {
	Fetch(ctx context.Context, documentID string) (*Annotations, error)
	Store(ctx context.Context, documentID string, annotations *Annotations) error
}

// TokenSource supplies the bearer token attached to every backend call.
type TokenSource interface {
	Token() (string, error)
}

// StaticToken is a TokenSource that always returns the same token.
type StaticToken string

// Token returns the token.
func (t StaticToken) Token() (string, error) {
	return string(t), nil
}

// Logger defines the interface for logging operations
type Logger interface {
	Info(msg string, fields ...interface{})
	Error(msg string, err error, fields ...interface{})
	Debug(msg string, fields ...interface{})
	Warn(msg string, fields ...interface{})
}

// Config defines the interface for configuration management
type Config interface {
	GetServerPort() string
	GetLogLevel() string
	GetLogFormat() string
	GetEnvironment() string

	GetStorageBackend() string
	GetBadgerPath() string
	GetSupabaseURL() string
	GetSupabaseKey() string
	GetDevToken() string

	GetAllowedOrigins() []string
	GetRateLimitRPS() float64
	GetRateLimitBurst() int

	GetAPIBaseURL() string
	GetAPIToken() string
	GetAutosaveDelay() time.Duration
	GetUndoLimit() int
	GetMarkerRadius() float64
	GetRehydrateTimeout() time.Duration
}
