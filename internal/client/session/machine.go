// Package session tracks whether the client is signed in.
//
// The Machine derives its state from the token store: a missing or expired
// token is Anonymous, anything else is Authenticated with the user read
// from the token's claims. Transitions are pushed to subscribers.
package session

import (
	"context"
	"sync"

	"github.com/authkeeper/authkeeper/internal/api"
	"github.com/authkeeper/authkeeper/internal/client/persistence"
	"github.com/authkeeper/authkeeper/internal/logging"
)

// State is Anonymous when Authenticated is false; User is then zero.
type State struct {
	Authenticated bool
	User          api.UserDetail
}

var Anonymous = State{}

func authenticated(u api.UserDetail) State {
	return State{Authenticated: true, User: u}
}

// TokenStore is the in-memory token holder.
type TokenStore interface {
	SetToken(tok string)
	Token() string
	IsExpired() bool
	Clear()
}

type Machine struct {
	store       TokenStore
	persistence persistence.TokenPersistence
	user        *UserSession
	logger      logging.Logger

	mu     sync.Mutex
	cached *State

	restore sync.Once

	subMu   sync.Mutex
	nextSub int
	subs    map[int]func(State)
}

func New(store TokenStore, p persistence.TokenPersistence, user *UserSession, l logging.Logger) *Machine {
	return &Machine{
		store:       store,
		persistence: p,
		user:        user,
		logger:      l.With("module", "session"),
		subs:        map[int]func(State){},
	}
}

// State returns the current state, recomputing it from the token store
// when nothing is cached.
func (m *Machine) State() State {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.stateLocked()
}

func (m *Machine) stateLocked() State {
	tok := m.store.Token()
	if tok == "" || m.store.IsExpired() {
		m.resetLocked()
		return Anonymous
	}

	if m.cached != nil && m.cached.Authenticated {
		if _, ok := m.user.CurrentUser(); !ok {
			m.user.Set(m.cached.User)
		}
		return *m.cached
	}

	u, err := userFromToken(tok)
	if err != nil {
		m.logger.Warn(context.Background(), "unreadable token claims", "error", err)
		m.resetLocked()
		return Anonymous
	}

	st := authenticated(u)
	m.cached = &st
	m.user.Set(u)
	return st
}

func (m *Machine) resetLocked() {
	m.cached = nil
	m.user.Clear()
}

// RestoreOnce loads a persisted token the first time it is called. Later
// and concurrent callers wait for that first attempt and do nothing else.
func (m *Machine) RestoreOnce(ctx context.Context) {
	m.restore.Do(func() {
		tok, ok := m.persistence.Load(ctx)
		if !ok {
			return
		}

		m.persistence.Save(ctx, tok)
		m.store.SetToken(tok)

		m.mu.Lock()
		m.cached = nil
		st := m.stateLocked()
		m.mu.Unlock()

		m.logger.Debug(ctx, "session restored", "authenticated", st.Authenticated)
		m.notify(st)
	})
}

// MarkAuthenticated adopts tok as the current session.
func (m *Machine) MarkAuthenticated(ctx context.Context, tok string) State {
	m.persistence.Save(ctx, tok)
	m.store.SetToken(tok)

	m.mu.Lock()
	m.cached = nil
	st := m.stateLocked()
	m.mu.Unlock()

	m.notify(st)
	return st
}

// MarkLoggedOut forgets the token everywhere.
func (m *Machine) MarkLoggedOut(ctx context.Context) {
	m.persistence.Clear(ctx)
	m.store.Clear()

	m.mu.Lock()
	m.resetLocked()
	m.mu.Unlock()

	m.notify(Anonymous)
}

// Subscribe registers fn for every transition. Callbacks run synchronously
// on the goroutine that caused the transition.
func (m *Machine) Subscribe(fn func(State)) (unsubscribe func()) {
	m.subMu.Lock()
	id := m.nextSub
	m.nextSub++
	m.subs[id] = fn
	m.subMu.Unlock()

	return func() {
		m.subMu.Lock()
		delete(m.subs, id)
		m.subMu.Unlock()
	}
}

func (m *Machine) notify(st State) {
	m.subMu.Lock()
	fns := make([]func(State), 0, len(m.subs))
	for _, fn := range m.subs {
		fns = append(fns, fn)
	}
	m.subMu.Unlock()

	for _, fn := range fns {
		fn(st)
	}
}
