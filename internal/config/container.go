package config

import (
	"fmt"
	"io"

	"pdf-annotator/internal/domain"
	"pdf-annotator/internal/infra/supabase"
	"pdf-annotator/internal/ratelimit"
	"pdf-annotator/internal/repository"
	"pdf-annotator/internal/service"
	"pdf-annotator/pkg/logger"
)

// Container holds all application dependencies
type Container struct {
	Config               *AppConfig
	Logger               domain.Logger
	SupabaseClient       domain.SupabaseClient
	AnnotationRepository domain.AnnotationRepository
	AnnotationService    domain.AnnotationService
	AuthService          domain.AuthService
	RateLimiter          *ratelimit.KeyedRateLimiter

	closers []io.Closer
}

// NewContainer creates a new dependency injection container
func NewContainer(config *AppConfig) (*Container, error) {
	appLogger := logger.NewLogger(config.GetLogLevel(), config.GetLogFormat())
	c := &Container{Config: config, Logger: appLogger}

	if config.GetSupabaseURL() != "" && config.GetSupabaseKey() != "" {
		client := supabase.NewClient(config, appLogger)
		if err := client.Initialize(); err != nil {
			return nil, err
		}
		c.SupabaseClient = client
	}

	if c.SupabaseClient == nil && config.GetDevToken() == "" {
		return nil, fmt.Errorf("either Supabase credentials or DEV_TOKEN must be configured")
	}

	switch config.GetStorageBackend() {
	case StorageSupabase:
		if c.SupabaseClient == nil {
			return nil, fmt.Errorf("storage backend %q requires SUPABASE_URL and SUPABASE_ANON_KEY", StorageSupabase)
		}
		c.AnnotationRepository = repository.NewSupabaseAnnotationRepository(c.SupabaseClient, appLogger)
	case StorageBadger:
		repo, err := repository.OpenBadgerAnnotationRepository(config.GetBadgerPath(), appLogger)
		if err != nil {
			return nil, err
		}
		c.AnnotationRepository = repo
		c.closers = append(c.closers, repo)
	default:
		return nil, fmt.Errorf("unknown storage backend %q", config.GetStorageBackend())
	}

	if c.SupabaseClient != nil {
		c.AuthService = service.NewAuthService(c.SupabaseClient, config.GetDevToken(), appLogger)
	} else {
		appLogger.Warn("Supabase not configured, accepting DEV_TOKEN only")
		c.AuthService = service.NewAuthService(nil, config.GetDevToken(), appLogger)
	}

	c.AnnotationService = service.NewAnnotationService(c.AnnotationRepository, appLogger)
	c.RateLimiter = ratelimit.New(config.GetRateLimitRPS(), config.GetRateLimitBurst())
	return c, nil
}

// Close releases the storage and limiter resources.
func (c *Container) Close() error {
	if c.RateLimiter != nil {
		c.RateLimiter.Stop()
	}
	var firstErr error
	for _, cl := range c.closers {
		if err := cl.Close(); err != nil && firstErr == nil {
			firstErr = err
		}
	}
	return firstErr
}
