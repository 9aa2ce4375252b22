package service

import (
	"context"
	"fmt"
	"sync"

	"github.com/rs/zerolog"

	"github.com/greenloop/progress-engine/internal/api/metrics"
	"github.com/greenloop/progress-engine/internal/core/domain"
	"github.com/greenloop/progress-engine/internal/core/ports"
)

// SyncState is the subscription lifecycle state for one identity.
type SyncState int

const (
	StateUnsubscribed SyncState = iota
	StateSubscribing
	StateActive
)

func (s SyncState) String() string {
	switch s {
	case StateSubscribing:
		return "subscribing"
	case StateActive:
		return "active"
	default:
		return "unsubscribed"
	}
}

const syncBuffer = 16

// SyncManager owns the remote listeners for one subscriber session. It
// guarantees at most one active listener per (user, path), tears all
// listeners down on identity change before re-subscribing, and surfaces
// listener failures as typed sync errors while pinning the last known good
// snapshot per path instead of clearing it.
type SyncManager struct {
	watcher ports.Watcher
	log     zerolog.Logger

	mu      sync.Mutex
	state   SyncState
	userID  string
	cancels map[ports.SyncPath]context.CancelFunc
	last    map[ports.SyncPath]ports.SyncEvent

	out    chan ports.SyncEvent
	wg     sync.WaitGroup
	closed bool
}

func NewSyncManager(watcher ports.Watcher, log zerolog.Logger) *SyncManager {
	return &SyncManager{
		watcher: watcher,
		log:     log,
		state:   StateUnsubscribed,
		cancels: make(map[ports.SyncPath]context.CancelFunc),
		last:    make(map[ports.SyncPath]ports.SyncEvent),
		out:     make(chan ports.SyncEvent, syncBuffer),
	}
}

// Subscribe attaches listeners for every tracked path of the identity and
// returns the event channel. Subscribing while already subscribed (same or
// different identity) first tears down the previous listeners, so duplicate
// update storms cannot occur.
func (m *SyncManager) Subscribe(ctx context.Context, userID string) (<-chan ports.SyncEvent, error) {
	if userID == "" {
		return nil, domain.ErrNotAuthenticated
	}

	m.mu.Lock()
	if m.closed {
		m.mu.Unlock()
		return nil, fmt.Errorf("%w: manager closed", domain.ErrSyncFailed)
	}
	if m.state != StateUnsubscribed {
		m.teardownLocked()
	}
	m.state = StateSubscribing
	m.userID = userID
	m.mu.Unlock()

	for _, path := range ports.SyncPaths {
		watchCtx, cancel := context.WithCancel(ctx)
		ch, err := m.watcher.Watch(watchCtx, userID, path)
		if err != nil {
			cancel()
			m.mu.Lock()
			m.teardownLocked()
			m.mu.Unlock()
			return nil, fmt.Errorf("%w: attach %s listener: %v", domain.ErrSyncFailed, path, err)
		}

		m.mu.Lock()
		m.cancels[path] = cancel
		m.mu.Unlock()
		metrics.ActiveListeners.WithLabelValues(string(path)).Inc()

		m.wg.Add(1)
		go m.pump(path, ch)
	}

	m.mu.Lock()
	m.state = StateActive
	m.mu.Unlock()
	m.log.Debug().Str("user_id", userID).Msg("subscriptions active")
	return m.out, nil
}

// SetIdentity reacts to an identity change. The same id is a no-op; a
// different id tears down every listener and re-subscribes for the new id.
func (m *SyncManager) SetIdentity(ctx context.Context, userID string) error {
	m.mu.Lock()
	same := m.state != StateUnsubscribed && m.userID == userID
	m.mu.Unlock()
	if same {
		return nil
	}
	if userID == "" {
		m.Unsubscribe()
		return nil
	}
	_, err := m.Subscribe(ctx, userID)
	return err
}

// Unsubscribe tears down all listeners regardless of current state. The
// event channel stays open (the manager can re-subscribe); Close ends the
// session for good.
func (m *SyncManager) Unsubscribe() {
	m.mu.Lock()
	m.teardownLocked()
	m.mu.Unlock()
	m.wg.Wait()
}

// Close tears down the session and closes the event channel once the pump
// goroutines have drained.
func (m *SyncManager) Close() {
	m.mu.Lock()
	if m.closed {
		m.mu.Unlock()
		return
	}
	m.closed = true
	m.teardownLocked()
	m.mu.Unlock()

	m.wg.Wait()
	close(m.out)
}

// State returns the current lifecycle state.
func (m *SyncManager) State() SyncState {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.state
}

// LastKnownGood returns the most recent successful snapshot for a path.
// Retained across listener errors so the UI can keep rendering stale data.
func (m *SyncManager) LastKnownGood(path ports.SyncPath) (ports.SyncEvent, bool) {
	m.mu.Lock()
	defer m.mu.Unlock()
	ev, ok := m.last[path]
	return ev, ok
}

// teardownLocked cancels every listener. Callers hold m.mu. In-flight
// remote writes are not rolled back; cancellation only stops future
// delivery.
func (m *SyncManager) teardownLocked() {
	for path, cancel := range m.cancels {
		cancel()
		delete(m.cancels, path)
		metrics.ActiveListeners.WithLabelValues(string(path)).Dec()
	}
	m.state = StateUnsubscribed
	m.userID = ""
}

// pump forwards watcher events to the session channel. Error events are
// wrapped as typed sync errors and never replace the pinned snapshot.
func (m *SyncManager) pump(path ports.SyncPath, ch <-chan ports.SyncEvent) {
	defer m.wg.Done()
	for ev := range ch {
		if ev.Err != nil {
			metrics.SyncErrorsTotal.WithLabelValues(string(path)).Inc()
			m.log.Warn().Err(ev.Err).Str("path", string(path)).Msg("listener error, keeping last known good state")
			m.deliver(ports.SyncEvent{Path: path, Err: fmt.Errorf("%w: %v", domain.ErrSyncFailed, ev.Err)})
			continue
		}
		m.mu.Lock()
		m.last[path] = ev
		m.mu.Unlock()
		m.deliver(ev)
	}
}

// deliver drops events when the subscriber cannot keep up; each snapshot is
// complete, so a newer one fully supersedes a dropped one.
func (m *SyncManager) deliver(ev ports.SyncEvent) {
	select {
	case m.out <- ev:
	default:
		m.log.Debug().Str("path", string(ev.Path)).Msg("subscriber slow, dropping snapshot")
	}
}
