package repository

import (
	"encoding/json"
	"fmt"
	"time"

	"github.com/supabase-community/postgrest-go"

	"pdf-annotator/internal/domain"
)

const annotationsTable = "document_annotations"

// SupabaseAnnotationRepository stores payloads in the document_annotations
// table: (user_id, document_id) unique, payload jsonb, updated_at.
type SupabaseAnnotationRepository struct {
	supabaseClient domain.SupabaseClient
	logger         domain.Logger
}

func NewSupabaseAnnotationRepository(supabaseClient domain.SupabaseClient, logger domain.Logger) *SupabaseAnnotationRepository {
	return &SupabaseAnnotationRepository{
		supabaseClient: supabaseClient,
		logger:         logger,
	}
}

type annotationRow struct {
	UserID     string             `json:"user_id"`
	DocumentID string             `json:"document_id"`
	Payload    domain.Annotations `json:"payload"`
	UpdatedAt  time.Time          `json:"updated_at"`
}

// Get implements domain.AnnotationRepository.
func (r *SupabaseAnnotationRepository) Get(userID, documentID, token string) (*domain.Annotations, error) {
	client, err := r.supabaseClient.GetClientWithToken(token)
	if err != nil {
		return nil, fmt.Errorf("failed to get client with token: %w", err)
	}

	data, _, err := client.From(annotationsTable).
		Select("payload", "", false).
		Eq("user_id", userID).
		Eq("document_id", documentID).
		Order("updated_at", &postgrest.OrderOpts{Ascending: false}).
		Limit(1, "").
		Execute()
	if err != nil {
		return nil, fmt.Errorf("failed to get annotations: %w", err)
	}

	var rows []annotationRow
	if err := json.Unmarshal(data, &rows); err != nil {
		return nil, fmt.Errorf("failed to unmarshal response: %w", err)
	}
	if len(rows) == 0 {
		return nil, domain.ErrAnnotationsNotFound
	}
	return &rows[0].Payload, nil
}

// Put implements domain.AnnotationRepository.
func (r *SupabaseAnnotationRepository) Put(userID, documentID string, a *domain.Annotations, token string) error {
	client, err := r.supabaseClient.GetClientWithToken(token)
	if err != nil {
		return fmt.Errorf("failed to get client with token: %w", err)
	}

	row := annotationRow{
		UserID:     userID,
		DocumentID: documentID,
		Payload:    *a,
		UpdatedAt:  a.LastModified,
	}
	_, _, err = client.From(annotationsTable).
		Upsert(row, "user_id,document_id", "minimal", "").
		Execute()
	if err != nil {
		return fmt.Errorf("failed to upsert annotations: %w", err)
	}

	r.logger.Debug("Annotations upserted", "user_id", userID, "document_id", documentID)
	return nil
}

// Delete implements domain.AnnotationRepository.
func (r *SupabaseAnnotationRepository) Delete(userID, documentID, token string) error {
	client, err := r.supabaseClient.GetClientWithToken(token)
	if err != nil {
		return fmt.Errorf("failed to get client with token: %w", err)
	}

	data, _, err := client.From(annotationsTable).
		Delete("representation", "").
		Eq("user_id", userID).
		Eq("document_id", documentID).
		Execute()
	if err != nil {
		return fmt.Errorf("failed to delete annotations: %w", err)
	}

	var rows []map[string]interface{}
	if err := json.Unmarshal(data, &rows); err == nil && len(rows) == 0 {
		return domain.ErrAnnotationsNotFound
	}
	return nil
}
