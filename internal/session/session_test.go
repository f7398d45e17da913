package session_test

import (
	"context"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"pdf-annotator/internal/domain"
	"pdf-annotator/internal/engine"
	"pdf-annotator/internal/persistence"
	"pdf-annotator/internal/session"
	"pdf-annotator/internal/surface"
	apperrors "pdf-annotator/pkg/errors"
)

type memoryBackend struct {
	mu   sync.Mutex
	docs map[string]domain.Annotations
}

func (m *memoryBackend) Fetch(_ context.Context, id string) (*domain.Annotations, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	a, ok := m.docs[id]
	if !ok {
		return nil, apperrors.NewNotFoundError("annotations not found", domain.ErrAnnotationsNotFound)
	}
	return &a, nil
}

func (m *memoryBackend) Store(_ context.Context, id string, a *domain.Annotations) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.docs[id] = *a
	return nil
}

func (m *memoryBackend) get(id string) (domain.Annotations, bool) {
	m.mu.Lock()
	defer m.mu.Unlock()
	a, ok := m.docs[id]
	return a, ok
}

type nopLogger struct{}

func (nopLogger) Info(string, ...interface{})         {}
func (nopLogger) Error(string, error, ...interface{}) {}
func (nopLogger) Debug(string, ...interface{})        {}
func (nopLogger) Warn(string, ...interface{})         {}

var page = engine.PageDimensions{Width: 600, Height: 800}

func newSession(backend *memoryBackend, opts session.Options) *session.Session {
	return session.New(persistence.NewAdapter(backend, nopLogger{}), "doc-1", opts)
}

func TestSession_OpenUnknownDocument(t *testing.T) {
	s := newSession(&memoryBackend{docs: map[string]domain.Annotations{}}, session.Options{})

	require.NoError(t, s.Open(context.Background()))

	assert.Empty(t, s.Engine().Highlights())
	assert.Empty(t, s.Engine().Markers())
	assert.False(t, s.Dirty())
}

func TestSession_OpenRestoresSavedState(t *testing.T) {
	backend := &memoryBackend{docs: map[string]domain.Annotations{
		"doc-1": {
			Highlights: []domain.Highlight{{ID: "hl-a", Color: "#ff0", Areas: []domain.Area{{PageIndex: 0, Width: 10, Height: 1}}}},
			NumberMarkers: []domain.NumberMarker{
				{Number: 1, X: 10, Y: 10, PageNumber: 1},
				{Number: 5, X: 40, Y: 40, PageNumber: 2},
			},
		},
	}}
	surf := surface.NewHeadless()
	s := newSession(backend, session.Options{Engine: engine.Options{Surface: surf}})
	s.Engine().PagesMounted(surface.Pages(0, 2, page)...)

	require.NoError(t, s.Open(context.Background()))

	eng := s.Engine()
	assert.Len(t, eng.Highlights(), 1)
	assert.Len(t, eng.Markers(), 2)
	assert.Equal(t, 6, eng.NextMarkerNumber())
	assert.False(t, eng.Status().CanUndo)
	assert.False(t, s.Dirty())

	frame, ok := surf.Latest()
	require.True(t, ok)
	p1, ok := frame.Page(1)
	require.True(t, ok)
	assert.Len(t, p1.Markers, 1)
}

func TestSession_OpenToleratesUnmountedPages(t *testing.T) {
	backend := &memoryBackend{docs: map[string]domain.Annotations{
		"doc-1": {NumberMarkers: []domain.NumberMarker{{Number: 2, PageNumber: 9}}},
	}}
	s := newSession(backend, session.Options{Engine: engine.Options{RehydrateTimeout: 20 * time.Millisecond}})

	require.NoError(t, s.Open(context.Background()))

	assert.Len(t, s.Engine().Markers(), 1)
	assert.Equal(t, 3, s.Engine().NextMarkerNumber())
}

func TestSession_OpenCanceled(t *testing.T) {
	backend := &memoryBackend{docs: map[string]domain.Annotations{
		"doc-1": {NumberMarkers: []domain.NumberMarker{{Number: 1, PageNumber: 1}}},
	}}
	s := newSession(backend, session.Options{})
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	assert.ErrorIs(t, s.Open(ctx), context.Canceled)
}

func TestSession_EditsAreSavedOnClose(t *testing.T) {
	backend := &memoryBackend{docs: map[string]domain.Annotations{}}
	changes := 0
	s := newSession(backend, session.Options{
		AutosaveDelay: time.Hour,
		Engine:        engine.Options{Hooks: engine.Hooks{OnChange: func() { changes++ }}},
	})
	require.NoError(t, s.Open(context.Background()))

	_, err := s.Engine().CreateHighlight("#ffff00", []domain.Area{{PageIndex: 0, Width: 5, Height: 5}}, "x")
	require.NoError(t, err)
	s.Engine().PlaceMarker(1, 3, 4)
	assert.True(t, s.Dirty())
	assert.Equal(t, 2, changes)

	require.NoError(t, s.Close(context.Background()))

	saved, ok := backend.get("doc-1")
	require.True(t, ok)
	assert.Len(t, saved.Highlights, 1)
	assert.Len(t, saved.NumberMarkers, 1)
	assert.False(t, saved.LastModified.IsZero())
	assert.Equal(t, 1, s.SaveCount())
}

func TestSession_AutosaveAfterQuietPeriod(t *testing.T) {
	backend := &memoryBackend{docs: map[string]domain.Annotations{}}
	s := newSession(backend, session.Options{AutosaveDelay: 30 * time.Millisecond})
	require.NoError(t, s.Open(context.Background()))
	defer s.Close(context.Background())

	s.Engine().PlaceMarker(1, 1, 1)

	require.Eventually(t, func() bool { return s.SaveCount() == 1 }, time.Second, 5*time.Millisecond)
	saved, _ := backend.get("doc-1")
	assert.Len(t, saved.NumberMarkers, 1)
}
