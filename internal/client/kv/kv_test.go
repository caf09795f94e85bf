package kv

import (
	"context"
	"database/sql"
	"fmt"
	"path/filepath"
	"testing"
	"time"

	"github.com/dmitrijs2005/jara/internal/client/migrations"
	"github.com/dmitrijs2005/jara/internal/dbx"
	"github.com/dmitrijs2005/jara/internal/logging"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func openFileDB(t *testing.T, path string) *sql.DB {
	t.Helper()
	db, err := dbx.OpenSQLite(context.Background(), dbx.SQLiteDSN(path), migrations.Migrations)
	require.NoError(t, err)
	t.Cleanup(func() { _ = db.Close() })
	return db
}

func waitChange(t *testing.T, ch <-chan Change) Change {
	t.Helper()
	select {
	case c, ok := <-ch:
		require.True(t, ok, "channel closed")
		return c
	case <-time.After(2 * time.Second):
		t.Fatal("no change notification")
		return Change{}
	}
}

func assertNoChange(t *testing.T, ch <-chan Change) {
	t.Helper()
	select {
	case c := <-ch:
		t.Fatalf("unexpected change %+v", c)
	case <-time.After(60 * time.Millisecond):
	}
}

func testCRUD(t *testing.T, s Store) {
	ctx := context.Background()

	_, ok, err := s.Get(ctx, "k")
	require.NoError(t, err)
	assert.False(t, ok)

	require.NoError(t, s.Set(ctx, "k", "v1"))
	require.NoError(t, s.Set(ctx, "k", "v2"))

	v, ok, err := s.Get(ctx, "k")
	require.NoError(t, err)
	assert.True(t, ok)
	assert.Equal(t, "v2", v)

	require.NoError(t, s.Delete(ctx, "k"))
	require.NoError(t, s.Delete(ctx, "k"))

	_, ok, err = s.Get(ctx, "k")
	require.NoError(t, err)
	assert.False(t, ok)
}

func TestMemoryStore_CRUD(t *testing.T) {
	testCRUD(t, NewMemoryStore())
}

func TestSQLiteStore_CRUD(t *testing.T) {
	db := openFileDB(t, filepath.Join(t.TempDir(), "kv.db"))
	s := NewSQLiteStore(db, 0, logging.Discard())
	defer s.Close()
	testCRUD(t, s)
}

func TestMemoryStore_SubscribeFiltersKeys(t *testing.T) {
	ctx := context.Background()
	s := NewMemoryStore()

	ch, cancel := s.Subscribe("auth_token")
	defer cancel()

	require.NoError(t, s.Set(ctx, "other", "x"))
	require.NoError(t, s.Set(ctx, "auth_token", "t1"))

	c := waitChange(t, ch)
	assert.Equal(t, Change{Key: "auth_token", Value: "t1", Present: true}, c)

	// same value: no notification
	require.NoError(t, s.Set(ctx, "auth_token", "t1"))
	assertNoChange(t, ch)

	require.NoError(t, s.Delete(ctx, "auth_token"))
	assert.Equal(t, Change{Key: "auth_token"}, waitChange(t, ch))

	cancel()
	cancel()
	_, open := <-ch
	assert.False(t, open)
}

func TestSQLiteStore_ReportsWritesFromAnotherHandle(t *testing.T) {
	ctx := context.Background()
	path := filepath.Join(t.TempDir(), "shared.db")

	tabA := NewSQLiteStore(openFileDB(t, path), 10*time.Millisecond, logging.Discard())
	tabB := NewSQLiteStore(openFileDB(t, path), 10*time.Millisecond, logging.Discard())
	defer tabA.Close()
	defer tabB.Close()

	require.NoError(t, tabA.Set(ctx, "auth_email", "before@example.com"))

	ch, cancel := tabB.Subscribe("auth_email", "auth_token")
	defer cancel()

	// value present at subscribe time is the baseline
	assertNoChange(t, ch)

	require.NoError(t, tabA.Set(ctx, "auth_email", "a@example.com"))
	assert.Equal(t, Change{Key: "auth_email", Value: "a@example.com", Present: true}, waitChange(t, ch))

	require.NoError(t, tabA.Delete(ctx, "auth_email"))
	assert.Equal(t, Change{Key: "auth_email"}, waitChange(t, ch))
}

func TestSQLiteStore_CloseClosesSubscriptions(t *testing.T) {
	db := openFileDB(t, filepath.Join(t.TempDir(), "kv.db"))
	s := NewSQLiteStore(db, 10*time.Millisecond, logging.Discard())

	ch, cancel := s.Subscribe("k")
	s.Close()

	_, open := <-ch
	assert.False(t, open)
	cancel()
}

func testApply(t *testing.T, s Store) {
	ctx := context.Background()
	require.NoError(t, s.Set(ctx, "stale", "x"))

	require.NoError(t, Apply(ctx, s, Batch{
		Set:    map[string]string{"a": "1", "b": "2"},
		Delete: []string{"stale", "missing"},
	}))

	for k, want := range map[string]string{"a": "1", "b": "2"} {
		v, ok, err := s.Get(ctx, k)
		require.NoError(t, err)
		assert.True(t, ok, k)
		assert.Equal(t, want, v)
	}
	_, ok, err := s.Get(ctx, "stale")
	require.NoError(t, err)
	assert.False(t, ok)
}

func TestApply(t *testing.T) {
	t.Run("memory", func(t *testing.T) { testApply(t, NewMemoryStore()) })
	t.Run("sqlite", func(t *testing.T) {
		s := NewSQLiteStore(openFileDB(t, filepath.Join(t.TempDir(), "kv.db")), 0, logging.Discard())
		defer s.Close()
		testApply(t, s)
	})
	t.Run("foreign store", func(t *testing.T) { testApply(t, plainStore{NewMemoryStore()}) })
}

func TestSQLiteStore_ApplyRollsBackOnError(t *testing.T) {
	db := openFileDB(t, filepath.Join(t.TempDir(), "kv.db"))
	s := NewSQLiteStore(db, 0, logging.Discard())
	defer s.Close()

	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	require.Error(t, Apply(ctx, s, Batch{Set: map[string]string{"a": "1"}}))

	_, ok, err := s.Get(context.Background(), "a")
	require.NoError(t, err)
	assert.False(t, ok)
}

func TestMemoryStore_ApplyPublishesOnlyChanges(t *testing.T) {
	s := NewMemoryStore()
	ctx := context.Background()
	require.NoError(t, s.Set(ctx, "a", "1"))

	ch, cancel := s.Subscribe("a", "b")
	defer cancel()

	require.NoError(t, Apply(ctx, s, Batch{Set: map[string]string{"a": "1", "b": "2"}}))
	c := waitChange(t, ch)
	assert.Equal(t, Change{Key: "b", Value: "2", Present: true}, c)
	assertNoChange(t, ch)
}

// plainStore hides the batch support of the wrapped store.
type plainStore struct{ m *MemoryStore }

func (p plainStore) Get(ctx context.Context, key string) (string, bool, error) {
	return p.m.Get(ctx, key)
}
func (p plainStore) Set(ctx context.Context, key, value string) error { return p.m.Set(ctx, key, value) }
func (p plainStore) Delete(ctx context.Context, key string) error     { return p.m.Delete(ctx, key) }
func (p plainStore) Subscribe(keys ...string) (<-chan Change, func()) { return p.m.Subscribe(keys...) }

func TestSQLiteStore_ResubscribeWhileLastUnsubscribes(t *testing.T) {
	ctx := context.Background()
	path := filepath.Join(t.TempDir(), "shared.db")
	writer := NewSQLiteStore(openFileDB(t, path), 0, logging.Discard())
	defer writer.Close()

	for i := 0; i < 20; i++ {
		s := NewSQLiteStore(openFileDB(t, path), 5*time.Millisecond, logging.Discard())

		_, cancelOld := s.Subscribe("k")
		subscribed := make(chan (<-chan Change))
		go func() {
			ch, _ := s.Subscribe("k")
			subscribed <- ch
		}()
		cancelOld()
		ch := <-subscribed

		require.NoError(t, writer.Set(ctx, "k", fmt.Sprint(i)))
		assert.Equal(t, fmt.Sprint(i), waitChange(t, ch).Value)
		s.Close()
	}
}
