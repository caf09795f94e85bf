package session

import (
	"context"
	"errors"
	"path/filepath"
	"testing"
	"time"

	"github.com/dmitrijs2005/jara/internal/client/kv"
	"github.com/dmitrijs2005/jara/internal/client/migrations"
	"github.com/dmitrijs2005/jara/internal/common"
	"github.com/dmitrijs2005/jara/internal/dbx"
	"github.com/dmitrijs2005/jara/internal/logging"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func waitState(t *testing.T, c *Context, want State) {
	t.Helper()
	require.Eventually(t, func() bool { return c.State() == want }, 2*time.Second, 10*time.Millisecond)
}

func TestLifecycle(t *testing.T) {
	store := kv.NewMemoryStore()
	ctx := context.Background()
	c := New(store, logging.Discard())

	assert.Equal(t, StateLoading, c.State())
	assert.Equal(t, GateResult{Action: GateWait}, c.Gate("/movies"))

	c.Init(ctx)
	assert.Equal(t, StateUnauthenticated, c.State())

	c.SignIn(ctx, "a@example.com", "local.u1.abc", "u1")
	snap := c.Snapshot()
	assert.Equal(t, StateAuthenticated, snap.State)
	assert.Equal(t, &User{Email: "a@example.com", ID: "u1"}, snap.User)
	assert.Equal(t, "local.u1.abc", c.Token())
	assert.Equal(t, GateResult{Action: GateRender}, c.Gate("/movies"))

	for key, want := range map[string]string{
		common.KeyAuthToken:  "local.u1.abc",
		common.KeyAuthEmail:  "a@example.com",
		common.KeyAuthUserID: "u1",
	} {
		v, ok, err := store.Get(ctx, key)
		require.NoError(t, err)
		require.True(t, ok, key)
		assert.Equal(t, want, v)
	}

	c.SignOut(ctx)
	assert.Equal(t, StateUnauthenticated, c.State())
	assert.Empty(t, c.Token())
	for _, key := range credentialKeys {
		_, ok, err := store.Get(ctx, key)
		require.NoError(t, err)
		assert.False(t, ok, key)
	}
}

func TestInitRestoresPersistedSession(t *testing.T) {
	store := kv.NewMemoryStore()
	ctx := context.Background()
	require.NoError(t, store.Set(ctx, common.KeyAuthToken, "tok"))
	require.NoError(t, store.Set(ctx, common.KeyAuthEmail, "b@example.com"))

	c := New(store, logging.Discard())
	c.Init(ctx)

	snap := c.Snapshot()
	assert.Equal(t, StateAuthenticated, snap.State)
	assert.Equal(t, "b@example.com", snap.User.Email)
	assert.Empty(t, snap.User.ID)
	assert.Equal(t, "tok", snap.Token)
}

func TestSignInWithoutIDClearsStaleID(t *testing.T) {
	store := kv.NewMemoryStore()
	ctx := context.Background()
	c := New(store, logging.Discard())

	c.SignIn(ctx, "a@example.com", "t1", "old")
	c.SignIn(ctx, "b@example.com", "t2", "")

	_, ok, err := store.Get(ctx, common.KeyAuthUserID)
	require.NoError(t, err)
	assert.False(t, ok)
}

type failingStore struct{ *kv.MemoryStore }

func (failingStore) Get(context.Context, string) (string, bool, error) {
	return "", false, errors.New("denied")
}
func (failingStore) Set(context.Context, string, string) error { return errors.New("denied") }

func TestStorageUnavailable(t *testing.T) {
	c := New(failingStore{kv.NewMemoryStore()}, logging.Discard())
	ctx := context.Background()

	c.Init(ctx)
	assert.Equal(t, StateUnauthenticated, c.State())

	// sign-in still takes effect in memory
	c.SignIn(ctx, "a@example.com", "tok", "")
	assert.Equal(t, StateAuthenticated, c.State())
}

func TestGateRedirectPreservesDestination(t *testing.T) {
	c := New(kv.NewMemoryStore(), logging.Discard())
	c.Init(context.Background())

	res := c.Gate("/subscriptions?tab=active&x=1")
	assert.Equal(t, GateRedirect, res.Action)
	assert.Equal(t, "/auth/login?next=%2Fsubscriptions%3Ftab%3Dactive%26x%3D1", res.RedirectURL)

	assert.Equal(t, "/auth/login", LoginURL(""))
}

func TestSubscribe(t *testing.T) {
	c := New(kv.NewMemoryStore(), logging.Discard())
	ctx := context.Background()
	ch, cancel := c.Subscribe()
	defer cancel()

	c.Init(ctx)
	assert.Equal(t, StateUnauthenticated, (<-ch).State)

	c.SignIn(ctx, "a@example.com", "t", "")
	c.SignOut(ctx)

	// the reader was slow; only the latest state is pending
	snap := <-ch
	assert.Equal(t, StateUnauthenticated, snap.State)
	select {
	case s := <-ch:
		t.Fatalf("unexpected snapshot %+v", s)
	default:
	}

	cancel()
	cancel()
	_, ok := <-ch
	assert.False(t, ok)
}

func TestWatchFollowsOtherWriters(t *testing.T) {
	store := kv.NewMemoryStore()
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	c := New(store, logging.Discard())
	c.Init(ctx)

	done := make(chan error, 1)
	go func() { done <- c.Watch(ctx) }()

	// another tab writes through its own handle on the same state
	other := New(store, logging.Discard())
	other.SignIn(ctx, "x@example.com", "tok", "id")
	waitState(t, c, StateAuthenticated)
	assert.Equal(t, "tok", c.Token())

	other.SignOut(ctx)
	waitState(t, c, StateUnauthenticated)

	cancel()
	require.ErrorIs(t, <-done, context.Canceled)
}

func TestWatchAcrossDatabaseHandles(t *testing.T) {
	path := filepath.Join(t.TempDir(), "jara.db")
	open := func() *kv.SQLiteStore {
		db, err := dbx.OpenSQLite(context.Background(), dbx.SQLiteDSN(path), migrations.Migrations)
		require.NoError(t, err)
		t.Cleanup(func() { _ = db.Close() })
		s := kv.NewSQLiteStore(db, 20*time.Millisecond, logging.Discard())
		t.Cleanup(s.Close)
		return s
	}
	storeA, storeB := open(), open()

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	a := New(storeA, logging.Discard())
	a.Init(ctx)
	go func() { _ = a.Watch(ctx) }()

	b := New(storeB, logging.Discard())
	b.Init(ctx)

	b.SignIn(ctx, "z@example.com", "local.z.1", "z")
	waitState(t, a, StateAuthenticated)
	assert.Equal(t, "z@example.com", a.Snapshot().User.Email)

	b.SignOut(ctx)
	waitState(t, a, StateUnauthenticated)
}
