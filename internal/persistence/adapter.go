package persistence

import (
	"context"
	"errors"
	"time"

	"pdf-annotator/internal/domain"
)

// Adapter is the engine-facing side of persistence.
type Adapter struct {
	backend domain.AnnotationBackend
	logger  domain.Logger
	now     func() time.Time
}

// NewAdapter creates an adapter over backend.
func NewAdapter(backend domain.AnnotationBackend, logger domain.Logger) *Adapter {
	return &Adapter{backend: backend, logger: logger, now: time.Now}
}

// Load fetches the saved annotations for a document. It never fails: a
// missing document or any backend error yields an empty payload, the latter
// with a warning.
func (a *Adapter) Load(ctx context.Context, documentID string) *domain.Annotations {
	saved, err := a.backend.Fetch(ctx, documentID)
	if err != nil {
		if !errors.Is(err, domain.ErrAnnotationsNotFound) {
			a.logger.Warn("Failed to load annotations, starting empty", "document_id", documentID, "error", err.Error())
		}
		return domain.EmptyAnnotations()
	}
	if saved == nil {
		return domain.EmptyAnnotations()
	}
	saved.Normalize()
	return saved
}

// Save stamps the modification time and stores the payload.
func (a *Adapter) Save(ctx context.Context, documentID string, annotations *domain.Annotations) error {
	payload := *annotations
	payload.Normalize()
	payload.LastModified = a.now().UTC()

	if err := a.backend.Store(ctx, documentID, &payload); err != nil {
		return err
	}
	a.logger.Debug("Annotations saved",
		"document_id", documentID,
		"highlights", len(payload.Highlights),
		"markers", len(payload.NumberMarkers))
	return nil
}
