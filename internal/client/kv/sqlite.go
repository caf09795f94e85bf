package kv

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"
	"sync"
	"time"

	"github.com/dmitrijs2005/jara/internal/dbx"
	"github.com/dmitrijs2005/jara/internal/logging"
)

// DefaultPollInterval is how often SQLiteStore looks for foreign writes.
const DefaultPollInterval = 500 * time.Millisecond

type entry struct {
	value   string
	present bool
}

// SQLiteStore implements Store on the kv table.
type SQLiteStore struct {
	db       *sql.DB
	interval time.Duration
	logger   logging.Logger

	hub hub

	mu     sync.Mutex
	last   map[string]entry
	cancel context.CancelFunc
	done   chan struct{}
}

// NewSQLiteStore returns a store bound to db. interval <= 0 selects
// DefaultPollInterval.
func NewSQLiteStore(db *sql.DB, interval time.Duration, logger logging.Logger) *SQLiteStore {
	if interval <= 0 {
		interval = DefaultPollInterval
	}
	return &SQLiteStore{
		db:       db,
		interval: interval,
		logger:   logger.With("module", "kv"),
		last:     make(map[string]entry),
	}
}

func (s *SQLiteStore) Get(ctx context.Context, key string) (string, bool, error) {
	var value string
	err := s.db.QueryRowContext(ctx, `SELECT value FROM kv WHERE key = ?`, key).Scan(&value)
	if errors.Is(err, sql.ErrNoRows) {
		return "", false, nil
	}
	if err != nil {
		return "", false, fmt.Errorf("failed to get kv[%s]: %w", key, err)
	}
	return value, true, nil
}

func (s *SQLiteStore) Set(ctx context.Context, key, value string) error {
	return setKey(ctx, s.db, key, value)
}

func (s *SQLiteStore) Delete(ctx context.Context, key string) error {
	return deleteKey(ctx, s.db, key)
}

func (s *SQLiteStore) apply(ctx context.Context, b Batch) error {
	return dbx.WithTx(ctx, s.db, nil, func(ctx context.Context, tx dbx.DBTX) error {
		for _, k := range sortedKeys(b.Set) {
			if err := setKey(ctx, tx, k, b.Set[k]); err != nil {
				return err
			}
		}
		for _, k := range b.Delete {
			if err := deleteKey(ctx, tx, k); err != nil {
				return err
			}
		}
		return nil
	})
}

func setKey(ctx context.Context, db dbx.DBTX, key, value string) error {
	_, err := db.ExecContext(ctx, `
		INSERT INTO kv (key, value) VALUES (?, ?)
		ON CONFLICT(key) DO UPDATE SET value = excluded.value
	`, key, value)
	if err != nil {
		return fmt.Errorf("failed to set kv[%s]: %w", key, err)
	}
	return nil
}

func deleteKey(ctx context.Context, db dbx.DBTX, key string) error {
	if _, err := db.ExecContext(ctx, `DELETE FROM kv WHERE key = ?`, key); err != nil {
		return fmt.Errorf("failed to delete kv[%s]: %w", key, err)
	}
	return nil
}

// Subscribe snapshots the current values of keys and starts the poller if
// it is not running. Writes made before Subscribe returns are not reported.
func (s *SQLiteStore) Subscribe(keys ...string) (<-chan Change, func()) {
	ctx := context.Background()
	snap, err := s.read(ctx, keys)
	if err != nil {
		s.logger.Warn(ctx, "kv snapshot failed", "error", err)
	}

	s.mu.Lock()
	for _, k := range keys {
		if _, ok := s.last[k]; !ok {
			s.last[k] = snap[k]
		}
	}
	id, sub := s.hub.add(keys)
	if s.cancel == nil {
		pctx, cancel := context.WithCancel(context.Background())
		s.cancel = cancel
		s.done = make(chan struct{})
		go s.poll(pctx, s.done)
	}
	s.mu.Unlock()

	var once sync.Once
	return sub.ch, func() { once.Do(func() { s.unsubscribe(id) }) }
}

// Close stops the poller and closes every subscription channel.
func (s *SQLiteStore) Close() {
	s.mu.Lock()
	stop := s.detachPoller()
	s.mu.Unlock()
	stop()
	s.hub.closeAll()
}

// unsubscribe removes the subscription and stops the poller once nobody
// listens. Both steps run under s.mu so a concurrent Subscribe either sees
// the running poller or starts a new one.
func (s *SQLiteStore) unsubscribe(id int) {
	s.mu.Lock()
	stop := func() {}
	if s.hub.remove(id) == 0 {
		stop = s.detachPoller()
	}
	s.mu.Unlock()
	stop()
}

// detachPoller must be called with s.mu held. The returned func cancels the
// detached poller and waits for it; call it after releasing s.mu.
func (s *SQLiteStore) detachPoller() func() {
	cancel, done := s.cancel, s.done
	s.cancel, s.done = nil, nil
	s.last = make(map[string]entry)
	if cancel == nil {
		return func() {}
	}
	return func() {
		cancel()
		<-done
	}
}

func (s *SQLiteStore) poll(ctx context.Context, done chan struct{}) {
	defer close(done)

	ticker := time.NewTicker(s.interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			s.tick(ctx, done)
		}
	}
}

func (s *SQLiteStore) tick(ctx context.Context, done chan struct{}) {
	keys := s.hub.watched()
	if len(keys) == 0 {
		return
	}

	cur, err := s.read(ctx, keys)
	if err != nil {
		if ctx.Err() == nil {
			s.logger.Warn(ctx, "kv poll failed", "error", err)
		}
		return
	}

	var changes []Change
	s.mu.Lock()
	if s.done != done {
		// detached by an unsubscribe; a newer poller owns s.last
		s.mu.Unlock()
		return
	}
	for _, k := range keys {
		if prev, ok := s.last[k]; ok && prev == cur[k] {
			continue
		}
		s.last[k] = cur[k]
		changes = append(changes, Change{Key: k, Value: cur[k].value, Present: cur[k].present})
	}
	s.mu.Unlock()

	for _, c := range changes {
		s.hub.publish(c)
	}
}

func (s *SQLiteStore) read(ctx context.Context, keys []string) (map[string]entry, error) {
	out := make(map[string]entry, len(keys))
	if len(keys) == 0 {
		return out, nil
	}

	args := make([]any, len(keys))
	for i, k := range keys {
		args[i] = k
	}
	query := `SELECT key, value FROM kv WHERE key IN (?` + strings.Repeat(", ?", len(keys)-1) + `)`

	rows, err := s.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to read kv: %w", err)
	}
	defer rows.Close()

	for rows.Next() {
		var k, v string
		if err := rows.Scan(&k, &v); err != nil {
			return nil, fmt.Errorf("failed to scan kv row: %w", err)
		}
		out[k] = entry{value: v, present: true}
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to iterate kv rows: %w", err)
	}
	return out, nil
}
