// Package session holds the signed-in state of the client.
//
// A Context is created once and passed to whatever needs it. It starts in
// StateLoading, settles after Init, and follows changes made to the
// persisted credentials by other processes while Watch runs.
package session

import (
	"context"
	"net/url"
	"sync"

	"github.com/dmitrijs2005/jara/internal/client/kv"
	"github.com/dmitrijs2005/jara/internal/common"
	"github.com/dmitrijs2005/jara/internal/logging"
)

type State int

const (
	StateLoading State = iota
	StateAuthenticated
	StateUnauthenticated
)

func (s State) String() string {
	switch s {
	case StateLoading:
		return "loading"
	case StateAuthenticated:
		return "authenticated"
	case StateUnauthenticated:
		return "unauthenticated"
	default:
		return "unknown"
	}
}

// User is the signed-in identity. ID may be empty.
type User struct {
	Email string
	ID    string
}

// Snapshot is the session state at one moment.
type Snapshot struct {
	State State
	User  *User
	Token string
}

func (s Snapshot) equal(o Snapshot) bool {
	if s.State != o.State || s.Token != o.Token || (s.User == nil) != (o.User == nil) {
		return false
	}
	return s.User == nil || *s.User == *o.User
}

var credentialKeys = []string{common.KeyAuthToken, common.KeyAuthEmail, common.KeyAuthUserID}

// Context is the process-wide session.
type Context struct {
	store  kv.Store
	logger logging.Logger

	mu     sync.RWMutex
	snap   Snapshot
	nextID int
	subs   map[int]chan Snapshot
}

func New(store kv.Store, logger logging.Logger) *Context {
	return &Context{
		store:  store,
		logger: logger.With("module", "session"),
		snap:   Snapshot{State: StateLoading},
		subs:   make(map[int]chan Snapshot),
	}
}

// Init reads the persisted credentials. Unreadable storage leaves the
// session unauthenticated.
func (c *Context) Init(ctx context.Context) {
	c.sync(ctx)
}

// Snapshot returns the current state.
func (c *Context) Snapshot() Snapshot {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.snap
}

func (c *Context) State() State {
	return c.Snapshot().State
}

// Token returns the bearer token, or "" when there is none.
func (c *Context) Token() string {
	return c.Snapshot().Token
}

// SignIn persists the credentials and marks the session authenticated.
// Storage failures are logged; the in-memory state changes regardless.
func (c *Context) SignIn(ctx context.Context, email, token, id string) {
	b := kv.Batch{Set: map[string]string{
		common.KeyAuthToken: token,
		common.KeyAuthEmail: email,
	}}
	if id != "" {
		b.Set[common.KeyAuthUserID] = id
	} else {
		b.Delete = []string{common.KeyAuthUserID}
	}
	c.persist(ctx, b)

	c.set(Snapshot{State: StateAuthenticated, User: &User{Email: email, ID: id}, Token: token})
	c.logger.Info(ctx, "signed in", "email", email)
}

// SignOut clears the persisted credentials.
func (c *Context) SignOut(ctx context.Context) {
	c.persist(ctx, kv.Batch{Delete: credentialKeys})
	c.set(Snapshot{State: StateUnauthenticated})
	c.logger.Info(ctx, "signed out")
}

// Watch re-reads the credentials whenever another writer changes them,
// until ctx ends. It also re-reads once on start, so writes made between
// Init and Watch are not missed.
func (c *Context) Watch(ctx context.Context) error {
	changes, cancel := c.store.Subscribe(credentialKeys...)
	defer cancel()

	c.sync(ctx)

	for {
		select {
		case <-ctx.Done():
			return ctx.Err()
		case _, ok := <-changes:
			if !ok {
				return nil
			}
			c.sync(ctx)
		}
	}
}

// Subscribe delivers every state change. Slow readers only see the latest
// snapshot.
func (c *Context) Subscribe() (<-chan Snapshot, func()) {
	ch := make(chan Snapshot, 1)

	c.mu.Lock()
	c.nextID++
	id := c.nextID
	c.subs[id] = ch
	c.mu.Unlock()

	var once sync.Once
	return ch, func() {
		once.Do(func() {
			c.mu.Lock()
			delete(c.subs, id)
			c.mu.Unlock()
			close(ch)
		})
	}
}

// GateAction tells a protected view what to do.
type GateAction int

const (
	GateWait GateAction = iota
	GateRedirect
	GateRender
)

// GateResult is the decision for one protected view.
type GateResult struct {
	Action GateAction
	// RedirectURL is set for GateRedirect.
	RedirectURL string
}

// Gate decides how to treat a protected destination (path plus query).
func (c *Context) Gate(destination string) GateResult {
	switch c.State() {
	case StateLoading:
		return GateResult{Action: GateWait}
	case StateAuthenticated:
		return GateResult{Action: GateRender}
	default:
		return GateResult{Action: GateRedirect, RedirectURL: LoginURL(destination)}
	}
}

// LoginURL is the sign-in path carrying destination as the return path.
func LoginURL(destination string) string {
	if destination == "" {
		return common.LoginPath
	}
	return common.LoginPath + "?" + url.Values{"next": {destination}}.Encode()
}

func (c *Context) sync(ctx context.Context) {
	token, _, terr := c.store.Get(ctx, common.KeyAuthToken)
	email, _, eerr := c.store.Get(ctx, common.KeyAuthEmail)
	id, _, ierr := c.store.Get(ctx, common.KeyAuthUserID)
	if terr != nil || eerr != nil || ierr != nil {
		c.logger.Warn(ctx, "credentials unreadable", "error", common.ErrStorageUnavailable)
		c.set(Snapshot{State: StateUnauthenticated})
		return
	}

	if email == "" {
		c.set(Snapshot{State: StateUnauthenticated, Token: token})
		return
	}
	c.set(Snapshot{State: StateAuthenticated, User: &User{Email: email, ID: id}, Token: token})
}

func (c *Context) set(s Snapshot) {
	c.mu.Lock()
	defer c.mu.Unlock()

	if c.snap.equal(s) {
		return
	}
	c.snap = s
	for _, ch := range c.subs {
		select {
		case ch <- s:
		default:
			select {
			case <-ch:
			default:
			}
			ch <- s
		}
	}
}

func (c *Context) persist(ctx context.Context, b kv.Batch) {
	if err := kv.Apply(ctx, c.store, b); err != nil {
		c.logger.Warn(ctx, "credentials not persisted", "error", err)
	}
}
