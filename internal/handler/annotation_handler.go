package handler

import (
	"encoding/json"
	"net/http"

	"github.com/gorilla/mux"

	"pdf-annotator/internal/domain"
)

// maxPayloadBytes bounds an annotations PUT body.
const maxPayloadBytes = 4 << 20

// AnnotationHandler serves /annotations/{documentId}.
type AnnotationHandler struct {
	annotationService domain.AnnotationService
	logger            domain.Logger
}

func NewAnnotationHandler(annotationService domain.AnnotationService, logger domain.Logger) *AnnotationHandler {
	return &AnnotationHandler{annotationService: annotationService, logger: logger}
}

// GetAnnotations handles GET /annotations/{documentId}
func (h *AnnotationHandler) GetAnnotations(w http.ResponseWriter, r *http.Request) {
	user, token, ok := h.caller(w, r)
	if !ok {
		return
	}
	documentID := mux.Vars(r)["documentId"]

	a, err := h.annotationService.GetAnnotations(user.ID, documentID, token)
	if err != nil {
		h.logFailure("Failed to get annotations", err, r, user.ID, documentID)
		writeAppError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, a)
}

// PutAnnotations handles PUT /annotations/{documentId}
func (h *AnnotationHandler) PutAnnotations(w http.ResponseWriter, r *http.Request) {
	user, token, ok := h.caller(w, r)
	if !ok {
		return
	}
	documentID := mux.Vars(r)["documentId"]

	var payload domain.Annotations
	dec := json.NewDecoder(http.MaxBytesReader(w, r.Body, maxPayloadBytes))
	if err := dec.Decode(&payload); err != nil {
		writeError(w, http.StatusBadRequest, "Invalid request body")
		return
	}

	if _, err := h.annotationService.SaveAnnotations(user.ID, documentID, &payload, token); err != nil {
		h.logFailure("Failed to save annotations", err, r, user.ID, documentID)
		writeAppError(w, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

// DeleteAnnotations handles DELETE /annotations/{documentId}
func (h *AnnotationHandler) DeleteAnnotations(w http.ResponseWriter, r *http.Request) {
	user, token, ok := h.caller(w, r)
	if !ok {
		return
	}
	documentID := mux.Vars(r)["documentId"]

	if err := h.annotationService.DeleteAnnotations(user.ID, documentID, token); err != nil {
		h.logFailure("Failed to delete annotations", err, r, user.ID, documentID)
		writeAppError(w, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func (h *AnnotationHandler) caller(w http.ResponseWriter, r *http.Request) (*domain.SupabaseUser, string, bool) {
	user, ok := GetUserFromContext(r)
	if !ok {
		writeError(w, http.StatusUnauthorized, "User not found in context")
		return nil, "", false
	}
	token, _ := GetTokenFromContext(r)
	return user, token, true
}

func (h *AnnotationHandler) logFailure(msg string, err error, r *http.Request, userID, documentID string) {
	h.logger.Error(msg, err,
		"request_id", GetRequestID(r),
		"user_id", userID,
		"document_id", documentID)
}
