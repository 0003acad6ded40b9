package session

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"sync"
	"time"

	"github.com/aretw0/waypoint/internal/logging"
	"github.com/aretw0/waypoint/internal/runtime"
	"github.com/aretw0/waypoint/pkg/adapters/memory"
	"github.com/aretw0/waypoint/pkg/domain"
	"github.com/aretw0/waypoint/pkg/ports"
	"github.com/google/uuid"
)

// DefaultLockTTL bounds how long a distributed session lock is held.
const DefaultLockTTL = 30 * time.Second

// RouterFactory builds the router of a session bound to loc.
type RouterFactory func(loc ports.Location) (*runtime.Router, error)

// Snapshot is the externally visible state of a session.
type Snapshot struct {
	SessionID string             `json:"session_id"`
	URL       string             `json:"url"`
	Title     string             `json:"title,omitempty"`
	Index     int                `json:"index"`
	Length    int                `json:"length"`
	Navigated bool               `json:"navigated"`
	RouteTree *runtime.RouteTree `json:"route_tree"`
}

type live struct {
	router  *runtime.Router
	history *memory.History
	context map[string]any
	started bool
}

// lockEntry holds the mutex and the reference count.
type lockEntry struct {
	mu   sync.Mutex
	refs int
}

// Manager owns the live sessions and their persistence.
type Manager struct {
	store   ports.StateStore
	factory RouterFactory

	mu    sync.Mutex
	locks map[string]*lockEntry

	liveMu   sync.Mutex
	sessions map[string]*live

	locker  ports.DistributedLocker
	lockTTL time.Duration
	logger  *slog.Logger
}

// Option configures the Manager.
type Option func(*Manager)

// WithLocker enables distributed locking.
func WithLocker(locker ports.DistributedLocker) Option {
	return func(m *Manager) { m.locker = locker }
}

// WithLockTTL overrides DefaultLockTTL.
func WithLockTTL(ttl time.Duration) Option {
	return func(m *Manager) { m.lockTTL = ttl }
}

// WithLogger configures a logger for the Manager.
func WithLogger(logger *slog.Logger) Option {
	return func(m *Manager) { m.logger = logger }
}

// NewManager creates a Manager that builds session routers with factory and
// persists their history in store.
func NewManager(store ports.StateStore, factory RouterFactory, opts ...Option) *Manager {
	m := &Manager{
		store:    store,
		factory:  factory,
		locks:    make(map[string]*lockEntry),
		sessions: make(map[string]*live),
		lockTTL:  DefaultLockTTL,
		logger:   logging.NewNop(),
	}
	for _, opt := range opts {
		opt(m)
	}
	return m
}

// acquire gets or creates a lock entry and increments its reference count.
// The caller must call release after unlocking entry.mu.
func (m *Manager) acquire(sessionID string) *lockEntry {
	m.mu.Lock()
	defer m.mu.Unlock()

	entry, ok := m.locks[sessionID]
	if !ok {
		entry = &lockEntry{}
		m.locks[sessionID] = entry
	}
	entry.refs++
	return entry
}

// release decrements the reference count and drops the entry at zero.
func (m *Manager) release(sessionID string) {
	m.mu.Lock()
	defer m.mu.Unlock()

	entry, ok := m.locks[sessionID]
	if !ok {
		return
	}
	entry.refs--
	if entry.refs <= 0 {
		delete(m.locks, sessionID)
	}
}

// WithLock runs fn while holding the local lock and, when configured, the
// distributed lock of the session.
func (m *Manager) WithLock(ctx context.Context, sessionID string, fn func(context.Context) error) error {
	entry := m.acquire(sessionID)
	entry.mu.Lock()
	defer func() {
		entry.mu.Unlock()
		m.release(sessionID)
	}()

	if m.locker != nil {
		unlock, err := m.locker.Lock(ctx, sessionID, m.lockTTL)
		if err != nil {
			return fmt.Errorf("failed to acquire distributed lock: %w", err)
		}
		defer func() {
			if err := unlock(context.WithoutCancel(ctx)); err != nil {
				m.logger.Warn("failed to release distributed lock (will expire via TTL)",
					"session_id", sessionID,
					"err", err,
				)
			}
		}()
	}

	return fn(ctx)
}

// Create starts a new session with a generated ID and navigates it to
// initial.
func (m *Manager) Create(ctx context.Context, initial string) (*Snapshot, error) {
	id := uuid.NewString()
	var snap *Snapshot
	err := m.WithLock(ctx, id, func(ctx context.Context) error {
		st := domain.NewState(id)
		if initial != "" {
			st.History = []domain.HistoryEntry{{URL: initial}}
			st.Index = 0
		}
		s, err := m.start(ctx, id, st)
		if err != nil {
			return err
		}
		snap, err = m.persist(ctx, id, s, s.started)
		return err
	})
	return snap, err
}

// Navigate loads target in the session, creating the session when it does
// not exist yet. A navigation that a guard cancels still returns a snapshot
// with Navigated false.
func (m *Manager) Navigate(ctx context.Context, sessionID, target string, opts ...domain.NavigationOption) (*Snapshot, error) {
	var snap *Snapshot
	err := m.WithLock(ctx, sessionID, func(ctx context.Context) error {
		s, err := m.open(ctx, sessionID, true)
		if err != nil {
			return err
		}
		ok, navErr := s.router.Load(ctx, target, opts...)
		snap, err = m.persist(ctx, sessionID, s, ok)
		return errors.Join(navErr, err)
	})
	return snap, err
}

// Back moves the session one history entry back.
func (m *Manager) Back(ctx context.Context, sessionID string) (*Snapshot, error) {
	return m.traverse(ctx, sessionID, -1)
}

// Forward moves the session one history entry forward.
func (m *Manager) Forward(ctx context.Context, sessionID string) (*Snapshot, error) {
	return m.traverse(ctx, sessionID, 1)
}

func (m *Manager) traverse(ctx context.Context, sessionID string, delta int) (*Snapshot, error) {
	var snap *Snapshot
	err := m.WithLock(ctx, sessionID, func(ctx context.Context) error {
		s, err := m.open(ctx, sessionID, false)
		if err != nil {
			return err
		}
		// The router hears the popstate synchronously and starts the
		// transition before Go returns.
		moved := s.history.Go(delta)
		if err := s.router.WaitIdle(ctx); err != nil {
			return err
		}
		snap, err = m.persist(ctx, sessionID, s, moved)
		return err
	})
	return snap, err
}

// State returns the snapshot of an existing session.
func (m *Manager) State(ctx context.Context, sessionID string) (*Snapshot, error) {
	var snap *Snapshot
	err := m.WithLock(ctx, sessionID, func(ctx context.Context) error {
		s, err := m.open(ctx, sessionID, false)
		if err != nil {
			return err
		}
		snap = snapshotOf(sessionID, s, false)
		return nil
	})
	return snap, err
}

// SetContext stores application data with the session.
func (m *Manager) SetContext(ctx context.Context, sessionID, key string, value any) error {
	return m.WithLock(ctx, sessionID, func(ctx context.Context) error {
		s, err := m.open(ctx, sessionID, false)
		if err != nil {
			return err
		}
		s.context[key] = value
		_, err = m.persist(ctx, sessionID, s, false)
		return err
	})
}

// Load returns the persisted state of a session.
func (m *Manager) Load(ctx context.Context, sessionID string) (*domain.State, error) {
	var st *domain.State
	err := m.WithLock(ctx, sessionID, func(ctx context.Context) error {
		var err error
		st, err = m.store.Load(ctx, sessionID)
		return err
	})
	return st, err
}

// Delete stops the session router and removes the session from the store.
func (m *Manager) Delete(ctx context.Context, sessionID string) error {
	return m.WithLock(ctx, sessionID, func(ctx context.Context) error {
		m.evict(sessionID)
		return m.store.Delete(ctx, sessionID)
	})
}

// List delegates to the store.
func (m *Manager) List(ctx context.Context) ([]string, error) {
	return m.store.List(ctx)
}

// Store returns the underlying state store.
func (m *Manager) Store() ports.StateStore {
	return m.store
}

// Close stops every live router. Persisted sessions are kept.
func (m *Manager) Close() {
	m.liveMu.Lock()
	sessions := m.sessions
	m.sessions = make(map[string]*live)
	m.liveMu.Unlock()
	for _, s := range sessions {
		s.router.Stop()
	}
}

// Forget stops the live router of a session without deleting it, so the
// next operation restores it from the store.
func (m *Manager) Forget(sessionID string) {
	m.evict(sessionID)
}

func (m *Manager) evict(sessionID string) {
	m.liveMu.Lock()
	s, ok := m.sessions[sessionID]
	delete(m.sessions, sessionID)
	m.liveMu.Unlock()
	if ok {
		s.router.Stop()
	}
}

// open returns the live session, restoring it from the store when needed.
// Must be called with the session lock held.
func (m *Manager) open(ctx context.Context, sessionID string, create bool) (*live, error) {
	m.liveMu.Lock()
	s, ok := m.sessions[sessionID]
	m.liveMu.Unlock()
	if ok {
		return s, nil
	}

	st, err := m.store.Load(ctx, sessionID)
	switch {
	case errors.Is(err, domain.ErrSessionNotFound) && create:
		st = domain.NewState(sessionID)
	case err != nil:
		return nil, err
	}
	return m.start(ctx, sessionID, st)
}

func (m *Manager) start(ctx context.Context, sessionID string, st *domain.State) (*live, error) {
	h := memory.FromState(st)
	router, err := m.factory(h)
	if err != nil {
		return nil, fmt.Errorf("session %s: %w", sessionID, err)
	}
	s := &live{router: router, history: h, context: st.Clone().Context}

	// A URL that no longer resolves leaves the session empty but usable.
	ok, err := router.Start(ctx)
	s.started = ok && err == nil
	if err != nil {
		m.logger.Warn("session restored without its last location",
			"session_id", sessionID,
			"url", h.Path(),
			"err", err,
		)
	}

	m.liveMu.Lock()
	m.sessions[sessionID] = s
	m.liveMu.Unlock()
	m.logger.Debug("session started", "session_id", sessionID, "url", h.Path())
	return s, nil
}

func (m *Manager) persist(ctx context.Context, sessionID string, s *live, navigated bool) (*Snapshot, error) {
	st := s.history.Snapshot(sessionID)
	for k, v := range s.context {
		st.Context[k] = v
	}
	if err := m.store.Save(ctx, sessionID, st); err != nil {
		return nil, fmt.Errorf("failed to save session: %w", err)
	}
	return snapshotOf(sessionID, s, navigated), nil
}

func snapshotOf(sessionID string, s *live, navigated bool) *Snapshot {
	return &Snapshot{
		SessionID: sessionID,
		URL:       s.history.Path(),
		Title:     s.history.Title(),
		Index:     s.history.Index(),
		Length:    s.history.Len(),
		Navigated: navigated,
		RouteTree: s.router.RouteTree(),
	}
}
