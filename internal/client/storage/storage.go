// Package storage opens the client's persisted state: the key/value store
// and the video repository, both in one SQLite file under the data
// directory.
//
// When the database cannot be opened the client keeps running on
// in-memory stores; nothing is persisted until the next start.
package storage

import (
	"context"
	"database/sql"
	"fmt"
	"path/filepath"
	"time"

	"github.com/dmitrijs2005/jara/internal/client/kv"
	"github.com/dmitrijs2005/jara/internal/client/migrations"
	"github.com/dmitrijs2005/jara/internal/client/repositories/videos"
	"github.com/dmitrijs2005/jara/internal/common"
	"github.com/dmitrijs2005/jara/internal/dbx"
	"github.com/dmitrijs2005/jara/internal/filex"
	"github.com/dmitrijs2005/jara/internal/logging"
	"github.com/gofrs/flock"
)

const (
	DatabaseFile = "jara.db"
	UsersLock    = "auth_users.lock"
)

type Repositories struct {
	KV     kv.Store
	Videos videos.Repository
	// UsersLock guards the user list across processes. It is nil in
	// memory mode.
	UsersLock *flock.Flock
	// Degraded is set when the stores are in-memory fallbacks.
	Degraded bool

	db      *sql.DB
	closeKV func()
}

// Open prepares the stores under dataDir. It does not fail: an unusable
// database is logged with common.ErrStorageUnavailable and replaced by
// in-memory stores.
func Open(ctx context.Context, dataDir string, pollInterval time.Duration, logger logging.Logger) *Repositories {
	logger = logger.With("module", "storage")

	repos, err := openSQLite(ctx, dataDir, pollInterval, logger)
	if err == nil {
		return repos
	}

	logger.Warn(ctx, "local database unavailable, running in memory",
		"error", fmt.Errorf("%w: %v", common.ErrStorageUnavailable, err))
	return Memory()
}

// Memory returns in-memory stores.
func Memory() *Repositories {
	return &Repositories{
		KV:       kv.NewMemoryStore(),
		Videos:   videos.NewMemoryRepository(),
		Degraded: true,
		closeKV:  func() {},
	}
}

func openSQLite(ctx context.Context, dataDir string, pollInterval time.Duration, logger logging.Logger) (*Repositories, error) {
	dir, err := filex.EnsureDir(dataDir)
	if err != nil {
		return nil, err
	}

	db, err := dbx.OpenSQLite(ctx, dbx.SQLiteDSN(filepath.Join(dir, DatabaseFile)), migrations.Migrations)
	if err != nil {
		return nil, err
	}

	version, err := dbx.SchemaVersion(ctx, db, migrations.Migrations)
	if err != nil {
		_ = db.Close()
		return nil, err
	}
	logger.Debug(ctx, "local database ready", "dir", dir, "schema_version", version)

	store := kv.NewSQLiteStore(db, pollInterval, logger)
	return &Repositories{
		KV:        store,
		Videos:    videos.NewSQLiteRepository(db),
		UsersLock: flock.New(filepath.Join(dir, UsersLock)),
		db:        db,
		closeKV:   store.Close,
	}, nil
}

// Close stops the store pollers and closes the database.
func (r *Repositories) Close() error {
	r.closeKV()
	if r.UsersLock != nil {
		_ = r.UsersLock.Close()
	}
	if r.db != nil {
		return r.db.Close()
	}
	return nil
}
