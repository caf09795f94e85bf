// Package videos provides the client-side persistence layer for locally
// uploaded videos.
//
// # Overview
//
// Each record holds the raw video bytes, an optional poster image and their
// metadata, keyed by a generated id. The store is append-only: records are
// created and read, never updated or deleted. A SQLite-backed implementation
// (SQLiteRepository) persists data via a dbx.DBTX (*sql.DB or *sql.Tx).
//
// Typical Usage
//
//	repo := videos.NewSQLiteRepository(db)
//	_ = repo.Create(ctx, rec)
//	list, _ := repo.GetAll(ctx)   // summaries, newest first
//	rec, _ := repo.GetByID(ctx, id)
package videos
