package agenda

import (
	"context"
	"sync"
	"time"

	"github.com/simplygenda/backend/internal/calendar"
	"github.com/simplygenda/backend/internal/editflow"
	"github.com/simplygenda/backend/internal/grid"
	"github.com/simplygenda/backend/internal/metrics"
	"github.com/simplygenda/backend/internal/render"
	"github.com/simplygenda/backend/internal/storage/models"
)

// Options tunes a Registry. Zero values select defaults.
type Options struct {
	DefaultZoom int
	Clock       func() time.Time
}

// Registry holds the live sessions keyed by user ID.
type Registry struct {
	mu       sync.RWMutex
	sessions map[string]*Session

	store    EventStore
	engine   *render.Engine
	notifier Notifier
	metrics  *metrics.Metrics

	defaultZoom int
	clock       func() time.Time
}

// NewRegistry creates an empty registry.
func NewRegistry(store EventStore, engine *render.Engine, notifier Notifier, m *metrics.Metrics, opts Options) *Registry {
	if opts.DefaultZoom == 0 {
		opts.DefaultZoom = grid.DefaultZoom
	}
	if opts.Clock == nil {
		opts.Clock = time.Now
	}
	return &Registry{
		sessions:    make(map[string]*Session),
		store:       store,
		engine:      engine,
		notifier:    notifier,
		metrics:     m,
		defaultZoom: grid.ClampZoom(opts.DefaultZoom),
		clock:       opts.Clock,
	}
}

// Init is the initialization entry point: it stores the identity and
// metadata as given, loads the user's events, shows the current week and
// returns the first render. An existing session of the user is replaced.
func (r *Registry) Init(ctx context.Context, user models.User) (*Session, render.WeekView, error) {
	s, view, err := r.start(ctx, user)
	r.register(user.ID, s, true)
	return s, view, err
}

func (r *Registry) start(ctx context.Context, user models.User) (*Session, render.WeekView, error) {
	now := r.clock()
	state := calendar.NewState(now)
	state.SetZoom(r.defaultZoom)

	s := &Session{
		user:     user,
		state:    state,
		flow:     editflow.New(r.store, user.ID),
		engine:   r.engine,
		store:    r.store,
		notifier: r.notifier,
		metrics:  r.metrics,
		clock:    r.clock,
		lastTick: now,
		reminded: make(map[string]bool),
	}

	s.mu.Lock()
	s.reload(ctx)
	view, err := s.render()
	s.mu.Unlock()
	return s, view, err
}

// register records s for the user and returns the live session. Without
// replace, a session registered meanwhile wins over s.
func (r *Registry) register(userID string, s *Session, replace bool) *Session {
	r.mu.Lock()
	if cur, ok := r.sessions[userID]; ok && !replace {
		r.mu.Unlock()
		return cur
	}
	r.sessions[userID] = s
	n := len(r.sessions)
	r.mu.Unlock()
	r.metrics.SetActiveSessions(n)
	return s
}

// Get returns the live session of a user.
func (r *Registry) Get(userID string) (*Session, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	s, ok := r.sessions[userID]
	return s, ok
}

// Ensure returns the user's session, initializing one if none is live.
func (r *Registry) Ensure(ctx context.Context, user models.User) (*Session, error) {
	if s, ok := r.Get(user.ID); ok {
		return s, nil
	}
	s, _, err := r.start(ctx, user)
	return r.register(user.ID, s, false), err
}

// Drop discards the session of a user.
func (r *Registry) Drop(userID string) {
	r.mu.Lock()
	delete(r.sessions, userID)
	n := len(r.sessions)
	r.mu.Unlock()
	r.metrics.SetActiveSessions(n)
}

// Len returns the number of live sessions.
func (r *Registry) Len() int {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return len(r.sessions)
}

func (r *Registry) all() []*Session {
	r.mu.RLock()
	defer r.mu.RUnlock()
	out := make([]*Session, 0, len(r.sessions))
	for _, s := range r.sessions {
		out = append(out, s)
	}
	return out
}

// Tick runs the minute update of every live session at now.
func (r *Registry) Tick(now time.Time) {
	for _, s := range r.all() {
		s.tick(now)
	}
}
