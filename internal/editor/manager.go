// Package editor keeps one editable resume per signed-in user and saves it
// through a debounce after every change.
package editor

import (
	"context"
	"errors"
	"sync"
	"time"

	"cv-builder/internal/adapter/repository"
	"cv-builder/internal/apperr"
	"cv-builder/internal/auth"
	"cv-builder/internal/metrics"
	"cv-builder/internal/model"

	"go.uber.org/zap"
)

// Store loads and saves one document per user.
type Store interface {
	Load(ctx context.Context, userID string) (*model.Resume, error)
	Save(ctx context.Context, userID string, doc *model.Resume) error
}

// Timer is the part of *time.Timer the debounce needs.
type Timer interface {
	Stop() bool
}

type Options struct {
	Debounce    time.Duration
	SaveTimeout time.Duration

	// AfterFunc and Now default to the time package.
	AfterFunc func(d time.Duration, f func()) Timer
	Now       func() time.Time
}

const (
	DefaultDebounce    = 1500 * time.Millisecond
	DefaultSaveTimeout = 10 * time.Second
)

type Manager struct {
	store   Store
	opts    Options
	logger  *zap.Logger
	metrics *metrics.Metrics

	mu       sync.Mutex
	sessions map[string]*Session
}

func NewManager(store Store, opts Options, logger *zap.Logger, m *metrics.Metrics) *Manager {
	if opts.Debounce <= 0 {
		opts.Debounce = DefaultDebounce
	}
	if opts.SaveTimeout <= 0 {
		opts.SaveTimeout = DefaultSaveTimeout
	}
	if opts.AfterFunc == nil {
		opts.AfterFunc = func(d time.Duration, f func()) Timer { return time.AfterFunc(d, f) }
	}
	if opts.Now == nil {
		opts.Now = time.Now
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Manager{
		store:    store,
		opts:     opts,
		logger:   logger,
		metrics:  m,
		sessions: map[string]*Session{},
	}
}

func (m *Manager) after(d time.Duration, f func()) Timer { return m.opts.AfterFunc(d, f) }
func (m *Manager) now() time.Time                        { return m.opts.Now() }

// Open returns the user's session, loading the stored document on first
// use. A user without a stored document starts from the placeholder, which
// is not written back until the first change. Any other load failure is
// returned and nothing is cached, so the next Open tries again.
func (m *Manager) Open(ctx context.Context, userID string) (*Session, error) {
	if s := m.Get(userID); s != nil {
		return s, nil
	}

	doc, err := m.store.Load(ctx, userID)
	switch {
	case errors.Is(err, repository.ErrNotFound):
		doc = model.Placeholder()
		m.logger.Info("starting from placeholder", zap.String("user_id", userID))
	case err != nil:
		return nil, apperr.Persistence("load", err)
	}

	m.mu.Lock()
	defer m.mu.Unlock()
	if s, ok := m.sessions[userID]; ok {
		return s, nil
	}
	s := newSession(m, userID, doc)
	m.sessions[userID] = s
	m.metrics.SessionOpened()
	return s, nil
}

// Get returns the open session for userID or nil.
func (m *Manager) Get(userID string) *Session {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.sessions[userID]
}

// Close drops the user's session. A save already scheduled still runs.
func (m *Manager) Close(userID string) {
	m.mu.Lock()
	_, ok := m.sessions[userID]
	delete(m.sessions, userID)
	m.mu.Unlock()
	if ok {
		m.metrics.SessionClosed()
		m.logger.Debug("editor session closed", zap.String("user_id", userID))
	}
}

// Flush saves every pending change now. It is called on shutdown.
func (m *Manager) Flush(ctx context.Context) error {
	m.mu.Lock()
	open := make([]*Session, 0, len(m.sessions))
	for _, s := range m.sessions {
		open = append(open, s)
	}
	m.mu.Unlock()

	var errs []error
	for _, s := range open {
		if err := s.flush(ctx); err != nil {
			errs = append(errs, err)
		}
	}
	return errors.Join(errs...)
}

// Watch closes sessions when their user signs out. The returned func stops
// watching.
func (m *Manager) Watch(state *auth.State) func() {
	return state.Subscribe(func(ev auth.Event) {
		if ev.Kind == auth.SignedOut {
			m.Close(ev.UserID)
		}
	})
}
