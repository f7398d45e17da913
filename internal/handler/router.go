package handler

import (
	"net/http"

	"github.com/gorilla/mux"
	"github.com/rs/cors"
)

// RouterOptions carries everything NewRouter wires together.
type RouterOptions struct {
	Annotations    *AnnotationHandler
	Auth           func(http.Handler) http.Handler
	RateLimit      func(http.Handler) http.Handler
	RequestID      func(http.Handler) http.Handler
	AllowedOrigins []string
}

// NewRouter creates a new HTTP router with all routes configured
func NewRouter(opts RouterOptions) http.Handler {
	router := mux.NewRouter()
	if opts.RequestID != nil {
		router.Use(opts.RequestID)
	}

	// Health check endpoint (no auth required)
	router.HandleFunc("/health", func(w http.ResponseWriter, r *http.Request) {
		writeJSON(w, http.StatusOK, map[string]string{"status": "ok", "service": "pdf-annotator"})
	}).Methods(http.MethodGet)

	api := router.PathPrefix("/api/v1").Subrouter()
	protected := api.PathPrefix("").Subrouter()
	if opts.Auth != nil {
		protected.Use(opts.Auth)
	}
	if opts.RateLimit != nil {
		protected.Use(opts.RateLimit)
	}

	protected.HandleFunc("/annotations/{documentId}", opts.Annotations.GetAnnotations).Methods(http.MethodGet)
	protected.HandleFunc("/annotations/{documentId}", opts.Annotations.PutAnnotations).Methods(http.MethodPut)
	protected.HandleFunc("/annotations/{documentId}", opts.Annotations.DeleteAnnotations).Methods(http.MethodDelete)

	origins := opts.AllowedOrigins
	if len(origins) == 0 {
		origins = []string{
			"http://localhost:5173", // SvelteKit dev server
			"http://localhost:4173", // SvelteKit preview
			"http://localhost:3000",
		}
	}
	c := cors.New(cors.Options{
		AllowedOrigins: origins,
		AllowedMethods: []string{
			http.MethodGet,
			http.MethodPut,
			http.MethodDelete,
			http.MethodOptions,
		},
		AllowedHeaders: []string{
			"Accept",
			"Authorization",
			"Content-Type",
			"X-Request-ID",
		},
		ExposedHeaders:   []string{"X-Request-ID"},
		AllowCredentials: true,
		MaxAge:           300, // Maximum value not ignored by any of major browsers
	})

	return c.Handler(router)
}
