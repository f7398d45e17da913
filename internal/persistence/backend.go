// Package persistence loads and saves annotation payloads through a backend
// and debounces automatic saves while the user edits.
package persistence

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	"pdf-annotator/internal/domain"
	apperrors "pdf-annotator/pkg/errors"
)

const defaultTimeout = 15 * time.Second

// maxErrorBody bounds how much of a failed response is kept in the error.
const maxErrorBody = 512

// HTTPBackend talks to the annotation endpoint
// {baseURL}/annotations/{documentId}.
type HTTPBackend struct {
	baseURL string
	tokens  domain.TokenSource
	http    *http.Client

	// OnSessionExpired is called when the backend rejects the token.
	OnSessionExpired func()
}

// NewHTTPBackend creates a backend client. A nil client selects one with a
// default timeout.
func NewHTTPBackend(baseURL string, tokens domain.TokenSource, client *http.Client) *HTTPBackend {
	if client == nil {
		client = &http.Client{Timeout: defaultTimeout}
	}
	if tokens == nil {
		tokens = domain.StaticToken("")
	}
	return &HTTPBackend{
		baseURL: strings.TrimRight(baseURL, "/"),
		tokens:  tokens,
		http:    client,
	}
}

// Fetch implements domain.AnnotationBackend.
func (b *HTTPBackend) Fetch(ctx context.Context, documentID string) (*domain.Annotations, error) {
	resp, err := b.do(ctx, http.MethodGet, documentID, nil)
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()

	var a domain.Annotations
	if err := json.NewDecoder(resp.Body).Decode(&a); err != nil {
		return nil, apperrors.NewInternalError("decode annotations", err)
	}
	a.Normalize()
	return &a, nil
}

// Store implements domain.AnnotationBackend.
func (b *HTTPBackend) Store(ctx context.Context, documentID string, a *domain.Annotations) error {
	body, err := json.Marshal(a)
	if err != nil {
		return apperrors.NewInternalError("encode annotations", err)
	}
	resp, err := b.do(ctx, http.MethodPut, documentID, body)
	if err != nil {
		return err
	}
	_, _ = io.Copy(io.Discard, resp.Body)
	resp.Body.Close()
	return nil
}

// do performs one authenticated request. Non-2xx responses are converted
// into errors and their body is closed.
func (b *HTTPBackend) do(ctx context.Context, method, documentID string, body []byte) (*http.Response, error) {
	token, err := b.tokens.Token()
	if err != nil {
		return nil, apperrors.NewUnauthorizedError("obtain token", err)
	}

	endpoint := b.baseURL + "/annotations/" + url.PathEscape(documentID)
	var rdr io.Reader
	if body != nil {
		rdr = bytes.NewReader(body)
	}
	req, err := http.NewRequestWithContext(ctx, method, endpoint, rdr)
	if err != nil {
		return nil, apperrors.NewInternalError("create request", err)
	}
	req.Header.Set("Accept", "application/json")
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}

	resp, err := b.http.Do(req)
	if err != nil {
		return nil, apperrors.NewNetworkError("annotation backend unreachable", err)
	}
	if resp.StatusCode >= 200 && resp.StatusCode < 300 {
		return resp, nil
	}

	defer resp.Body.Close()
	snippet, _ := io.ReadAll(io.LimitReader(resp.Body, maxErrorBody))

	switch {
	case resp.StatusCode == http.StatusNotFound:
		return nil, apperrors.NewNotFoundError("annotations not found", domain.ErrAnnotationsNotFound)
	case resp.StatusCode == http.StatusUnauthorized:
		if b.OnSessionExpired != nil {
			b.OnSessionExpired()
		}
		return nil, apperrors.NewUnauthorizedError("backend rejected token", domain.ErrSessionExpired)
	case resp.StatusCode == http.StatusTooManyRequests:
		return nil, apperrors.NewRateLimitedError("annotation backend rate limit exceeded")
	case resp.StatusCode >= 500:
		return nil, apperrors.NewNetworkError(fmt.Sprintf("annotation backend returned %d", resp.StatusCode),
			fmt.Errorf("%s", bytes.TrimSpace(snippet)))
	default:
		return nil, apperrors.NewInternalError(fmt.Sprintf("unexpected status %d", resp.StatusCode),
			fmt.Errorf("%s", bytes.TrimSpace(snippet)))
	}
}
