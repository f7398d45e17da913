package persistence

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"pdf-annotator/internal/domain"
)

type fakeTimer struct {
	delay   time.Duration
	fn      func()
	stopped bool
}

func (t *fakeTimer) Stop() bool {
	was := !t.stopped
	t.stopped = true
	return was
}

// fakeClock records scheduled timers so tests decide when they fire.
type fakeClock struct {
	mu     sync.Mutex
	timers []*fakeTimer
}

func (c *fakeClock) AfterFunc(d time.Duration, fn func()) stopper {
	c.mu.Lock()
	defer c.mu.Unlock()
	t := &fakeTimer{delay: d, fn: fn}
	c.timers = append(c.timers, t)
	return t
}

func (c *fakeClock) active() []*fakeTimer {
	c.mu.Lock()
	defer c.mu.Unlock()
	var out []*fakeTimer
	for _, t := range c.timers {
		if !t.stopped {
			out = append(out, t)
		}
	}
	return out
}

func newTestSaver(t *testing.T, backend *memoryBackend, opts AutoSaveOptions) (*AutoSaver, *fakeClock) {
	t.Helper()
	adapter := NewAdapter(backend, &warnLogger{})
	s := NewAutoSaver(adapter, "doc", domain.EmptyAnnotations, opts)
	clock := &fakeClock{}
	s.afterFunc = clock.AfterFunc
	return s, clock
}

func TestAutoSaver_CoalescesEdits(t *testing.T) {
	backend := newMemoryBackend()
	s, clock := newTestSaver(t, backend, AutoSaveOptions{})

	s.Touch()
	s.Touch()
	s.Touch()

	active := clock.active()
	require.Len(t, active, 1)
	assert.Equal(t, DefaultAutosaveDelay, active[0].delay)
	assert.Len(t, clock.timers, 3)
	assert.True(t, s.Dirty())
	assert.Zero(t, backend.storeCount())

	active[0].fn()

	assert.Equal(t, 1, backend.storeCount())
	assert.Equal(t, 1, s.SaveCount())
	assert.False(t, s.Dirty())
}

func TestAutoSaver_RealTimerSavesOnceAfterQuietPeriod(t *testing.T) {
	backend := newMemoryBackend()
	s := NewAutoSaver(NewAdapter(backend, &warnLogger{}), "doc", domain.EmptyAnnotations,
		AutoSaveOptions{Delay: 40 * time.Millisecond})
	defer s.Close()

	for i := 0; i < 5; i++ {
		s.Touch()
		time.Sleep(10 * time.Millisecond)
	}
	assert.Zero(t, backend.storeCount())

	require.Eventually(t, func() bool { return backend.storeCount() == 1 }, time.Second, 5*time.Millisecond)
	time.Sleep(60 * time.Millisecond)
	assert.Equal(t, 1, backend.storeCount())
}

func TestAutoSaver_FailureKeepsDirty(t *testing.T) {
	backend := newMemoryBackend()
	backend.storeErr = errors.New("offline")
	errs := make(chan error, 1)
	s, clock := newTestSaver(t, backend, AutoSaveOptions{OnSaveError: func(err error) { errs <- err }})

	s.Touch()
	clock.active()[0].fn()

	select {
	case err := <-errs:
		assert.EqualError(t, err, "offline")
	case <-time.After(time.Second):
		t.Fatal("OnSaveError was not called")
	}
	assert.True(t, s.Dirty())
	assert.Zero(t, s.SaveCount())

	backend.mu.Lock()
	backend.storeErr = nil
	backend.mu.Unlock()
	require.NoError(t, s.Flush(context.Background()))
	assert.False(t, s.Dirty())
}

func TestAutoSaver_EditDuringSaveStaysDirty(t *testing.T) {
	backend := newMemoryBackend()
	adapter := NewAdapter(backend, &warnLogger{})
	var s *AutoSaver
	touched := false
	s = NewAutoSaver(adapter, "doc", func() *domain.Annotations {
		if !touched {
			touched = true
			s.Touch()
		}
		return domain.EmptyAnnotations()
	}, AutoSaveOptions{})
	clock := &fakeClock{}
	s.afterFunc = clock.AfterFunc

	s.Touch()
	require.NoError(t, s.Flush(context.Background()))

	assert.Equal(t, 1, s.SaveCount())
	assert.True(t, s.Dirty())
	assert.Len(t, clock.active(), 1)
}

func TestAutoSaver_FlushWhenClean(t *testing.T) {
	backend := newMemoryBackend()
	s, _ := newTestSaver(t, backend, AutoSaveOptions{})

	require.NoError(t, s.Flush(context.Background()))

	assert.Zero(t, backend.storeCount())
}

func TestAutoSaver_CloseStopsTimer(t *testing.T) {
	backend := newMemoryBackend()
	s, clock := newTestSaver(t, backend, AutoSaveOptions{})

	s.Touch()
	timer := clock.active()[0]
	s.Close()

	assert.True(t, timer.stopped)
	timer.fn()
	s.Touch()
	assert.Zero(t, backend.storeCount())
	assert.Len(t, clock.timers, 1)
}
