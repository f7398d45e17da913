package handler

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/google/uuid"

	"pdf-annotator/internal/domain"
	"pdf-annotator/internal/ratelimit"
)

type mockAuthService struct {
	user      *domain.SupabaseUser
	err       error
	lastToken string
}

func (m *mockAuthService) ValidateToken(token string) (*domain.SupabaseUser, error) {
	m.lastToken = token
	if m.err != nil {
		return nil, m.err
	}
	return m.user, nil
}

func TestAuthMiddleware_Rejections(t *testing.T) {
	tests := []struct {
		name     string
		header   string
		authErr  error
		wantBody string
	}{
		{name: "missing header", header: "", wantBody: "Authorization header required"},
		{name: "invalid format", header: "Token abc", wantBody: "Invalid authorization header format"},
		{name: "empty token", header: "Bearer ", wantBody: "Token required"},
		{name: "invalid token", header: "Bearer bad", authErr: errors.New("invalid token"), wantBody: "Invalid token"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			authService := &mockAuthService{err: tt.authErr}
			middleware := NewAuthMiddleware(authService, NewMockHandlerLogger()).Middleware
			h := middleware(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
				t.Fatalf("expected handler not to be called")
			}))

			req := httptest.NewRequest(http.MethodGet, "/", nil)
			if tt.header != "" {
				req.Header.Set("Authorization", tt.header)
			}
			rr := httptest.NewRecorder()

			h.ServeHTTP(rr, req)

			if rr.Code != http.StatusUnauthorized {
				t.Fatalf("expected status %d, got %d", http.StatusUnauthorized, rr.Code)
			}
			if !strings.Contains(rr.Body.String(), tt.wantBody) {
				t.Fatalf("unexpected response body: %s", rr.Body.String())
			}
		})
	}
}

func TestAuthMiddleware_Success(t *testing.T) {
	authService := &mockAuthService{user: &domain.SupabaseUser{ID: "user-1", Email: "test@example.com"}}

	called := false
	middleware := NewAuthMiddleware(authService, NewMockHandlerLogger()).Middleware
	h := middleware(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		called = true
		user, ok := GetUserFromContext(r)
		if !ok || user.ID != "user-1" {
			t.Fatalf("expected user in context")
		}
		token, ok := GetTokenFromContext(r)
		if !ok || token != "good" {
			t.Fatalf("expected token in context")
		}
		w.WriteHeader(http.StatusOK)
	}))

	req := httptest.NewRequest(http.MethodGet, "/", nil)
	req.Header.Set("Authorization", "Bearer good")
	rr := httptest.NewRecorder()

	h.ServeHTTP(rr, req)

	if rr.Code != http.StatusOK {
		t.Fatalf("expected status %d, got %d", http.StatusOK, rr.Code)
	}
	if !called {
		t.Fatalf("expected next handler to be called")
	}
	if authService.lastToken != "good" {
		t.Fatalf("expected token to be validated, got %q", authService.lastToken)
	}
}

func TestRequestIDMiddleware(t *testing.T) {
	var seen string
	h := RequestIDMiddleware(NewMockHandlerLogger())(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		seen = GetRequestID(r)
		w.WriteHeader(http.StatusNoContent)
	}))

	rr := httptest.NewRecorder()
	h.ServeHTTP(rr, httptest.NewRequest(http.MethodGet, "/", nil))

	if _, err := uuid.Parse(seen); err != nil {
		t.Fatalf("expected a uuid request id, got %q", seen)
	}
	if rr.Header().Get("X-Request-ID") != seen {
		t.Fatalf("expected X-Request-ID %q, got %q", seen, rr.Header().Get("X-Request-ID"))
	}

	incoming := uuid.NewString()
	req := httptest.NewRequest(http.MethodGet, "/", nil)
	req.Header.Set("X-Request-ID", incoming)
	h.ServeHTTP(httptest.NewRecorder(), req)
	if seen != incoming {
		t.Fatalf("expected incoming request id to be kept, got %q", seen)
	}
}

func withUser(r *http.Request, id string) *http.Request {
	return r.WithContext(context.WithValue(r.Context(), userContextKey, &domain.SupabaseUser{ID: id}))
}

func TestRateLimitMiddleware(t *testing.T) {
	limiter := ratelimit.New(0.001, 2)
	defer limiter.Stop()

	h := RateLimitMiddleware(limiter, NewMockHandlerLogger())(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusNoContent)
	}))

	codes := make([]int, 0, 3)
	for i := 0; i < 3; i++ {
		rr := httptest.NewRecorder()
		h.ServeHTTP(rr, withUser(httptest.NewRequest(http.MethodPut, "/", nil), "user-1"))
		codes = append(codes, rr.Code)
	}
	if codes[0] != http.StatusNoContent || codes[1] != http.StatusNoContent || codes[2] != http.StatusTooManyRequests {
		t.Fatalf("unexpected status sequence %v", codes)
	}

	rr := httptest.NewRecorder()
	h.ServeHTTP(rr, withUser(httptest.NewRequest(http.MethodPut, "/", nil), "user-2"))
	if rr.Code != http.StatusNoContent {
		t.Fatalf("expected independent bucket for user-2, got %d", rr.Code)
	}

	rr = httptest.NewRecorder()
	h.ServeHTTP(rr, withUser(httptest.NewRequest(http.MethodGet, "/", nil), "user-1"))
	if rr.Code != http.StatusNoContent {
		t.Fatalf("expected reads to bypass the limiter, got %d", rr.Code)
	}
}
