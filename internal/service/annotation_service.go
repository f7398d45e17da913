package service

import (
	"errors"
	"strings"
	"time"
	"unicode/utf8"

	"pdf-annotator/internal/domain"
	"pdf-annotator/internal/validation"
	apperrors "pdf-annotator/pkg/errors"
)

// AnnotationService stores one annotation payload per user and document.
type AnnotationService struct {
	repo      domain.AnnotationRepository
	validator *validation.Validator
	logger    domain.Logger
	now       func() time.Time
}

func NewAnnotationService(repo domain.AnnotationRepository, logger domain.Logger) *AnnotationService {
	return &AnnotationService{
		repo:      repo,
		validator: validation.New(),
		logger:    logger,
		now:       time.Now,
	}
}

// GetAnnotations returns the stored payload, or a not-found AppError.
func (s *AnnotationService) GetAnnotations(userID, documentID, token string) (*domain.Annotations, error) {
	if documentID == "" {
		return nil, apperrors.NewValidationError("document id is required", nil)
	}
	a, err := s.repo.Get(userID, documentID, token)
	if err != nil {
		if errors.Is(err, domain.ErrAnnotationsNotFound) {
			return nil, apperrors.NewNotFoundError("annotations not found", err)
		}
		return nil, apperrors.NewInternalError("failed to load annotations", err)
	}
	a.Normalize()
	return a, nil
}

// SaveAnnotations validates, cleans and upserts a payload. The stored
// payload, with the server's lastModified, is returned.
func (s *AnnotationService) SaveAnnotations(userID, documentID string, a *domain.Annotations, token string) (*domain.Annotations, error) {
	if documentID == "" {
		return nil, apperrors.NewValidationError("document id is required", nil)
	}
	if a == nil {
		return nil, apperrors.NewValidationError("annotations are required", nil)
	}
	a.Normalize()
	if err := s.validator.Validate(a); err != nil {
		return nil, err
	}

	for i := range a.Highlights {
		a.Highlights[i].Text = sanitizeText(a.Highlights[i].Text)
	}
	a.LastModified = s.now().UTC()

	if err := s.repo.Put(userID, documentID, a, token); err != nil {
		return nil, apperrors.NewInternalError("failed to save annotations", err)
	}
	s.logger.Info("Annotations saved",
		"user_id", userID,
		"document_id", documentID,
		"highlights", len(a.Highlights),
		"markers", len(a.NumberMarkers))
	return a, nil
}

// DeleteAnnotations removes the stored payload.
func (s *AnnotationService) DeleteAnnotations(userID, documentID, token string) error {
	if documentID == "" {
		return apperrors.NewValidationError("document id is required", nil)
	}
	if err := s.repo.Delete(userID, documentID, token); err != nil {
		if errors.Is(err, domain.ErrAnnotationsNotFound) {
			return apperrors.NewNotFoundError("annotations not found", err)
		}
		return apperrors.NewInternalError("failed to delete annotations", err)
	}
	s.logger.Info("Annotations deleted", "user_id", userID, "document_id", documentID)
	return nil
}

// sanitizeText drops NUL bytes and invalid UTF-8, which PostgreSQL JSONB
// rejects with 22P05.
func sanitizeText(text string) string {
	if !strings.ContainsRune(text, 0) && utf8.ValidString(text) {
		return text
	}
	var b strings.Builder
	b.Grow(len(text))
	for _, r := range text {
		if r == 0 || r == utf8.RuneError {
			continue
		}
		b.WriteRune(r)
	}
	return b.String()
}
