// Package session holds the process wide authentication state of the portal.
//
// A Session starts unresolved. Init restores a stored token (if any) and
// resolves the session as authenticated or anonymous. Login and Logout move
// between the two, and any 401 from either backend forces a Logout through
// the Dispatcher the HTTP clients were built with.
package session

import (
	"context"
	"errors"
	"slices"
	"sync"
	"time"

	"github.com/rs/zerolog/log"

	"github.com/sparkrunner/portal/internal/authapi"
	"github.com/sparkrunner/portal/internal/models"
	"github.com/sparkrunner/portal/internal/telemetry"
)

var (
	// ErrNotAuthenticated is returned by callers that need a logged in user.
	ErrNotAuthenticated = errors.New("not authenticated")

	// ErrLoginInProgress is returned when a login is attempted while one is running.
	ErrLoginInProgress = errors.New("login already in progress")

	// ErrLoginSuperseded is returned when the session was cleared while a
	// login was in flight.
	ErrLoginSuperseded = errors.New("session cleared during login")
)

// Authenticator is the part of the auth adapter a session drives.
type Authenticator interface {
	Login(ctx context.Context, creds authapi.Credentials) (*authapi.LoginResponse, error)
	Logout() error
	Token() (string, bool)
}

var _ Authenticator = (*authapi.API)(nil)

// State is a snapshot of the session.
type State struct {
	Identity *models.Identity
	Token    string
	// Ready is set once the stored token has been looked at.
	Ready bool
	// Busy is set while a login is in flight.
	Busy bool
}

// IsAuthenticated reports whether the snapshot holds a decoded identity.
func (s State) IsAuthenticated() bool {
	return s.Identity != nil && s.Token != ""
}

// Session is safe for concurrent use. Every transition is applied under a
// single lock so observers never see a half cleared session.
type Session struct {
	auth       Authenticator
	dispatcher *Dispatcher
	now        func() time.Time

	initOnce sync.Once

	mu        sync.RWMutex
	state     State
	listeners []listener
	nextID    int
}

type listener struct {
	id int
	fn func(State)
}

// Option customises a Session.
type Option func(*Session)

// WithClock overrides the clock used to check token expiry.
func WithClock(now func() time.Time) Option {
	return func(s *Session) {
		s.now = now
	}
}

// New creates an unresolved session. dispatcher is the one the HTTP clients
// notify on 401; Init registers the forced logout on it.
func New(auth Authenticator, dispatcher *Dispatcher, opts ...Option) *Session {
	s := &Session{
		auth:       auth,
		dispatcher: dispatcher,
		now:        time.Now,
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Init restores the session from the stored token. It runs once; later
// calls return the current state. A stored token that does not decode, or
// has expired, leaves the session anonymous and is only logged.
func (s *Session) Init() State {
	s.initOnce.Do(func() {
		var (
			identity *models.Identity
			token    string
		)

		if saved, ok := s.auth.Token(); ok && saved != "" {
			id, err := DecodeAt(saved, s.now())
			if err != nil {
				log.Warn().Err(err).Msg("ignoring stored session token")
			} else {
				identity = id
				token = saved
			}
		}

		s.mu.Lock()
		s.state.Identity = identity
		s.state.Token = token
		s.state.Ready = true
		snapshot := s.state
		s.mu.Unlock()

		if s.dispatcher != nil {
			s.dispatcher.Register(s.forceLogout)
		}

		log.Debug().Bool("authenticated", snapshot.IsAuthenticated()).Msg("session restored")

		s.publish(snapshot)
	})

	return s.State()
}

// Login authenticates with the auth service. Errors from the service are
// returned unchanged and leave the session as it was.
func (s *Session) Login(ctx context.Context, email, password string) (*authapi.LoginResponse, error) {
	s.mu.Lock()
	if s.state.Busy {
		s.mu.Unlock()
		return nil, ErrLoginInProgress
	}
	s.state.Busy = true
	snapshot := s.state
	s.mu.Unlock()
	s.publish(snapshot)

	resp, err := s.auth.Login(ctx, authapi.Credentials{Email: email, Password: password})

	var identity *models.Identity
	if err == nil {
		id, decodeErr := Decode(resp.Token)
		if decodeErr != nil {
			log.Warn().Err(decodeErr).Msg("login returned a token that does not decode")
		} else {
			identity = id
		}
	}

	s.mu.Lock()
	if identity != nil {
		// A forced logout may have removed the new token while the login
		// was in flight; memory must never hold a token the store lacks.
		if stored, ok := s.auth.Token(); ok && stored == resp.Token {
			s.state.Identity = identity
			s.state.Token = resp.Token
		} else {
			err = ErrLoginSuperseded
		}
	}
	s.state.Busy = false
	snapshot = s.state
	s.mu.Unlock()
	s.publish(snapshot)

	m := telemetry.GetMetrics()
	if err != nil {
		m.LoginFailures.Add(ctx, 1)
		return nil, err
	}
	m.LoginsTotal.Add(ctx, 1)

	return resp, nil
}

// Logout clears the stored token and the in-memory session. It sends no
// request and is safe to call when already logged out.
func (s *Session) Logout() {
	s.logout("user")
}

func (s *Session) forceLogout() {
	s.logout("unauthorized")
}

func (s *Session) logout(reason string) {
	if err := s.auth.Logout(); err != nil {
		log.Warn().Err(err).Msg("failed to remove stored token")
	}

	s.mu.Lock()
	changed := s.state.Identity != nil || s.state.Token != ""
	s.state.Identity = nil
	s.state.Token = ""
	snapshot := s.state
	s.mu.Unlock()

	if !changed {
		return
	}

	log.Debug().Str("reason", reason).Msg("session cleared")
	telemetry.GetMetrics().LogoutsTotal.Add(context.Background(), 1)

	s.publish(snapshot)
}

// State returns a snapshot of the session.
func (s *Session) State() State {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.state
}

// Identity returns the logged in identity, or nil.
func (s *Session) Identity() *models.Identity {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.state.Identity
}

// IsAuthenticated reports whether a decoded identity is loaded.
func (s *Session) IsAuthenticated() bool {
	return s.State().IsAuthenticated()
}

// RequireIdentity returns the identity or ErrNotAuthenticated.
func (s *Session) RequireIdentity() (*models.Identity, error) {
	if id := s.Identity(); id != nil {
		return id, nil
	}
	return nil, ErrNotAuthenticated
}

// Subscribe registers fn to receive a snapshot after every transition.
// Listeners run in registration order. The returned func removes the subscription.
func (s *Session) Subscribe(fn func(State)) func() {
	s.mu.Lock()
	id := s.nextID
	s.nextID++
	s.listeners = append(s.listeners, listener{id: id, fn: fn})
	s.mu.Unlock()

	return func() {
		s.mu.Lock()
		s.listeners = slices.DeleteFunc(s.listeners, func(l listener) bool { return l.id == id })
		s.mu.Unlock()
	}
}

func (s *Session) publish(snapshot State) {
	s.mu.RLock()
	listeners := slices.Clone(s.listeners)
	s.mu.RUnlock()

	for _, l := range listeners {
		l.fn(snapshot)
	}
}
