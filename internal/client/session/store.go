// Package session holds the client's single source of truth about who is
// signed in.
//
// A Store starts Unresolved, resolves once against the API at startup and
// from then on moves between Authenticated and Anonymous as the user logs in
// and out. Every transition is mirrored into the local cache while the
// store's lock is held, so the cached snapshot never disagrees with the
// in-memory state once a transition returns. The one exception is a startup
// resolution abandoned on teardown, which keeps the snapshot for the next run.
package session

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/dmitrijs2005/gophsocial/internal/client/client"
	"github.com/dmitrijs2005/gophsocial/internal/client/metrics"
	"github.com/dmitrijs2005/gophsocial/internal/client/models"
	"github.com/dmitrijs2005/gophsocial/internal/logging"
)

// DefaultCookieName is the credential cookie the API issues.
const DefaultCookieName = "token"

// Gateway is the part of the API the store needs.
type Gateway interface {
	CurrentUser(ctx context.Context) (*models.Identity, error)
}

// Cache persists the identity snapshot and answers the cookie half of the
// prior-session hint.
type Cache interface {
	LoadIdentity(ctx context.Context) (*models.Identity, error)
	SaveIdentity(ctx context.Context, id *models.Identity) error
	ClearIdentity(ctx context.Context) error
	// ClearSession drops the snapshot and the persisted cookies atomically.
	ClearSession(ctx context.Context) error
	SessionCookie(ctx context.Context, name string) (string, bool, error)
}

// Snapshot is a consistent view of the state and identity.
type Snapshot struct {
	State    models.SessionState
	Identity *models.Identity
}

type Store struct {
	gw         Gateway
	cache      Cache
	log        logging.Logger
	metrics    *metrics.Metrics
	cookieName string
	now        func() time.Time

	mu       sync.RWMutex
	state    models.SessionState
	identity *models.Identity
	// gen counts applied transitions. A resolution that started under an
	// older generation drops its result.
	gen  uint64
	hint bool

	startOnce sync.Once
	started   bool
	done      chan struct{}
	cancel    context.CancelFunc
}

type Option func(*Store)

func WithLogger(l logging.Logger) Option {
	return func(s *Store) {
		if l != nil {
			s.log = l
		}
	}
}

func WithMetrics(m *metrics.Metrics) Option {
	return func(s *Store) { s.metrics = m }
}

// WithCookieName sets the cookie consulted for the prior-session hint.
func WithCookieName(name string) Option {
	return func(s *Store) {
		if name != "" {
			s.cookieName = name
		}
	}
}

// WithClock replaces time.Now, used when checking cookie expiry.
func WithClock(now func() time.Time) Option {
	return func(s *Store) { s.now = now }
}

func New(gw Gateway, cache Cache, opts ...Option) *Store {
	s := &Store{
		gw:         gw,
		cache:      cache,
		log:        logging.Discard(),
		cookieName: DefaultCookieName,
		now:        time.Now,
		state:      models.Unresolved,
		done:       make(chan struct{}),
	}
	for _, opt := range opts {
		opt(s)
	}
	s.log = s.log.With("component", "session")
	return s
}

// Start computes the prior-session hint and resolves the session in the
// background. Only the first call has any effect.
func (s *Store) Start(ctx context.Context) {
	s.startOnce.Do(func() {
		hint := s.computeHint(ctx)

		rctx, cancel := context.WithCancel(ctx)
		s.mu.Lock()
		s.hint = hint
		s.started = true
		s.cancel = cancel
		gen := s.gen
		s.mu.Unlock()

		s.log.Debug(ctx, "resolving session", "prior_session_hint", hint)
		go func() {
			defer close(s.done)
			defer cancel()
			s.resolve(rctx, gen)
		}()
	})
}

// Done is closed once the startup resolution has landed or been abandoned.
func (s *Store) Done() <-chan struct{} {
	return s.done
}

// Close cancels a startup resolution still in flight and waits for it.
func (s *Store) Close() error {
	s.mu.RLock()
	started, cancel := s.started, s.cancel
	s.mu.RUnlock()
	if !started {
		return nil
	}
	cancel()
	<-s.done
	return nil
}

// Resolve asks the API who is signed in and settles the state. Any failure
// means Anonymous. The result is dropped when another transition was applied
// while the request was in flight.
func (s *Store) Resolve(ctx context.Context) models.SessionState {
	s.mu.RLock()
	gen := s.gen
	s.mu.RUnlock()
	return s.resolve(ctx, gen)
}

// resolve settles the state from a request issued under generation gen.
func (s *Store) resolve(ctx context.Context, gen uint64) models.SessionState {
	id, err := s.gw.CurrentUser(ctx)

	s.mu.Lock()
	defer s.mu.Unlock()

	if s.gen != gen {
		s.log.Debug(ctx, "dropping stale session resolution", "state", s.state)
		s.metrics.ObserveStaleResolution()
		return s.state
	}

	switch {
	case err == nil && id != nil:
		s.applyLocked(ctx, id)
	case ctx.Err() != nil:
		// Teardown only: the request says nothing about the session, so
		// the snapshot is kept for the next run's hint while this process
		// reports Anonymous. No other transition leaves them apart.
		s.log.Debug(ctx, "session resolution cancelled")
		s.transitionLocked(models.Anonymous, nil)
	default:
		if err == nil {
			err = fmt.Errorf("%w: no user", client.ErrMalformedResponse)
		}
		s.log.Info(ctx, "session not resolved", "error", err)
		s.applyLocked(ctx, nil)
	}
	return s.state
}

// SetIdentity forces a transition: a non-nil identity signs the user in, nil
// signs them out and forgets the persisted cookies too. The in-memory state
// always changes; a cache failure is returned.
func (s *Store) SetIdentity(ctx context.Context, id *models.Identity) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if id != nil {
		return s.applyLocked(ctx, id)
	}

	s.transitionLocked(models.Anonymous, nil)
	if err := s.cache.ClearSession(ctx); err != nil {
		s.log.Warn(ctx, "could not clear session cache", "error", err)
		return fmt.Errorf("clear cached session: %w", err)
	}
	return nil
}

// Refresh refetches the current user. It replaces the identity on success and
// signs out when the API rejects the credentials; other errors leave the
// state alone.
func (s *Store) Refresh(ctx context.Context) error {
	s.mu.RLock()
	gen := s.gen
	s.mu.RUnlock()

	id, err := s.gw.CurrentUser(ctx)

	s.mu.Lock()
	defer s.mu.Unlock()

	if s.gen != gen {
		s.metrics.ObserveStaleResolution()
		return nil
	}
	switch {
	case err == nil && id != nil:
		return s.applyLocked(ctx, id)
	case errors.Is(err, client.ErrUnauthorized):
		s.applyLocked(ctx, nil)
		return err
	case err == nil:
		return fmt.Errorf("%w: no user", client.ErrMalformedResponse)
	default:
		return err
	}
}

// applyLocked moves to Authenticated(id) or, for nil, Anonymous, and writes
// or clears the snapshot to match.
func (s *Store) applyLocked(ctx context.Context, id *models.Identity) error {
	if id == nil {
		s.transitionLocked(models.Anonymous, nil)
		if err := s.cache.ClearIdentity(ctx); err != nil {
			s.log.Warn(ctx, "could not clear identity snapshot", "error", err)
			return fmt.Errorf("clear identity snapshot: %w", err)
		}
		return nil
	}

	s.transitionLocked(models.Authenticated, id.Clone())
	if err := s.cache.SaveIdentity(ctx, id); err != nil {
		s.log.Warn(ctx, "could not write identity snapshot", "error", err)
		// An old snapshot for another user must not survive.
		if cerr := s.cache.ClearIdentity(ctx); cerr != nil {
			s.log.Warn(ctx, "could not clear identity snapshot", "error", cerr)
		}
		return fmt.Errorf("write identity snapshot: %w", err)
	}
	return nil
}

func (s *Store) transitionLocked(state models.SessionState, id *models.Identity) {
	s.gen++
	s.state = state
	s.identity = id
	s.metrics.ObserveTransition(state.String())
}

func (s *Store) State() models.SessionState {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.state
}

// Identity returns a copy of the signed-in user, or nil.
func (s *Store) Identity() *models.Identity {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.identity.Clone()
}

func (s *Store) Snapshot() Snapshot {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return Snapshot{State: s.state, Identity: s.identity.Clone()}
}

// HasPriorSessionHint reports whether the previous run left evidence of a
// session. It is fixed at Start and never grants access by itself.
func (s *Store) HasPriorSessionHint() bool {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.hint
}
