package service

import (
	"crypto/subtle"
	"fmt"
	"sync"
	"time"

	"pdf-annotator/internal/domain"
)

const tokenCacheTTL = 30 * time.Second

// DevUserID is the user a matching DEV_TOKEN authenticates as.
const DevUserID = "dev-user"

type tokenCacheEntry struct {
	user      *domain.SupabaseUser
	expiresAt time.Time
}

type authService struct {
	supabaseClient domain.SupabaseClient
	devToken       string
	logger         domain.Logger
	now            func() time.Time

	cacheMu sync.RWMutex
	cache   map[string]tokenCacheEntry
}

// NewAuthService validates tokens against Supabase. When devToken is set
// it is accepted as well; supabaseClient may be nil in that case.
func NewAuthService(
	supabaseClient domain.SupabaseClient,
	devToken string,
	logger domain.Logger,
) *authService {
	return &authService{
		supabaseClient: supabaseClient,
		devToken:       devToken,
		logger:         logger,
		now:            time.Now,
		cache:          make(map[string]tokenCacheEntry),
	}
}

// ValidateToken resolves a bearer token to a user. Successful lookups are
// cached briefly so every autosave does not round-trip to Supabase.
func (s *authService) ValidateToken(token string) (*domain.SupabaseUser, error) {
	if token == "" {
		return nil, fmt.Errorf("invalid token: %w", domain.ErrInvalidToken)
	}
	if s.devToken != "" && subtle.ConstantTimeCompare([]byte(token), []byte(s.devToken)) == 1 {
		return &domain.SupabaseUser{ID: DevUserID, Email: "dev@localhost"}, nil
	}

	now := s.now()
	s.cacheMu.RLock()
	entry, ok := s.cache[token]
	s.cacheMu.RUnlock()
	if ok && now.Before(entry.expiresAt) {
		return entry.user, nil
	}

	if s.supabaseClient == nil {
		return nil, fmt.Errorf("invalid token: %w", domain.ErrInvalidToken)
	}
	user, err := s.supabaseClient.ValidateToken(token)
	if err != nil {
		s.logger.Error("Failed to validate token with Supabase", err)
		return nil, fmt.Errorf("invalid token: %w", err)
	}

	s.cacheMu.Lock()
	s.cache[token] = tokenCacheEntry{user: user, expiresAt: now.Add(tokenCacheTTL)}
	s.cacheMu.Unlock()

	return user, nil
}
