package supabase

import (
	"fmt"
	"time"

	"pdf-annotator/internal/domain"

	"github.com/supabase-community/supabase-go"
)

// Client implements domain.SupabaseClient.
type Client struct {
	client *supabase.Client
	url    string
	key    string
	logger domain.Logger
}

// NewClient creates a Supabase client for the configured project. Call
// Initialize before use.
func NewClient(config domain.Config, logger domain.Logger) *Client {
	return &Client{
		url:    config.GetSupabaseURL(),
		key:    config.GetSupabaseKey(),
		logger: logger,
	}
}

// DB returns the anonymous client.
func (s *Client) DB() *supabase.Client {
	return s.client
}

// Initialize establishes a connection to Supabase
func (s *Client) Initialize() error {
	if s.url == "" || s.key == "" {
		return fmt.Errorf("supabase URL and key must be provided")
	}

	client, err := supabase.NewClient(s.url, s.key, &supabase.ClientOptions{})
	if err != nil {
		return fmt.Errorf("failed to create Supabase client: %w", err)
	}

	s.client = client
	s.logger.Info("Supabase client initialized successfully", "url", s.url)
	return nil
}

// GetClientWithToken returns a client whose PostgREST requests carry the
// user's access token, so row level security applies to them.
func (s *Client) GetClientWithToken(token string) (*supabase.Client, error) {
	if s.client == nil {
		return nil, fmt.Errorf("supabase client not initialized")
	}
	if token == "" {
		return s.client, nil
	}

	client, err := supabase.NewClient(s.url, s.key, &supabase.ClientOptions{
		Headers: map[string]string{"Authorization": "Bearer " + token},
	})
	if err != nil {
		return nil, fmt.Errorf("failed to create Supabase client with token: %w", err)
	}
	return client, nil
}

// ValidateToken resolves an access token to its Supabase user.
func (s *Client) ValidateToken(token string) (*domain.SupabaseUser, error) {
	if s.client == nil {
		return nil, fmt.Errorf("supabase client not initialized")
	}

	// Headers set on the client do not reach GoTrue, so the token is passed
	// to the auth client directly.
	user, err := s.client.Auth.WithToken(token).GetUser()
	if err != nil {
		s.logger.Debug("Supabase rejected token", "error", err.Error())
		return nil, fmt.Errorf("%w: %v", domain.ErrInvalidToken, err)
	}
	if user == nil {
		return nil, domain.ErrInvalidToken
	}

	return &domain.SupabaseUser{
		ID:           user.ID.String(),
		Email:        user.Email,
		UserMetadata: user.UserMetadata,
		CreatedAt:    user.CreatedAt.Format(time.RFC3339),
		UpdatedAt:    user.UpdatedAt.Format(time.RFC3339),
	}, nil
}
