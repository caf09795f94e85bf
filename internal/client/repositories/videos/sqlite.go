package videos

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/dmitrijs2005/jara/internal/client/models"
	"github.com/dmitrijs2005/jara/internal/common"
	"github.com/dmitrijs2005/jara/internal/dbx"
)

type SQLiteRepository struct {
	db dbx.DBTX
}

func NewSQLiteRepository(db dbx.DBTX) *SQLiteRepository {
	return &SQLiteRepository{db: db}
}

func (r *SQLiteRepository) Create(ctx context.Context, v *models.VideoRecord) error {
	query := `INSERT INTO videos (id, title, description, created_at, video_blob, video_type, image_blob, image_type, size)
			VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?)`

	var imageBlob []byte
	var imageType sql.NullString
	if v.Image != nil {
		imageBlob = v.Image.Data
		imageType = sql.NullString{String: v.Image.Type, Valid: true}
	}

	_, err := r.db.ExecContext(ctx, query,
		v.ID, v.Title, nullString(v.Description), v.CreatedAt.UnixMilli(),
		v.Video.Data, v.Video.Type, imageBlob, imageType, v.Size)
	if err != nil {
		return fmt.Errorf("failed to insert video: %w", err)
	}
	return nil
}

func (r *SQLiteRepository) GetAll(ctx context.Context) ([]models.VideoSummary, error) {
	query := `SELECT id, title, description, created_at, size, image_type IS NOT NULL, video_type
			FROM videos ORDER BY created_at DESC, rowid DESC`
	rows, err := r.db.QueryContext(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("failed to select videos: %w", err)
	}
	defer rows.Close()

	result := make([]models.VideoSummary, 0)
	for rows.Next() {
		var (
			item      models.VideoSummary
			desc      sql.NullString
			createdAt int64
		)
		if err := rows.Scan(&item.ID, &item.Title, &desc, &createdAt, &item.Size, &item.HasImage, &item.VideoType); err != nil {
			return nil, fmt.Errorf("failed to scan video row: %w", err)
		}
		item.Description = stringPtr(desc)
		item.CreatedAt = time.UnixMilli(createdAt)
		result = append(result, item)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to iterate video rows: %w", err)
	}
	return result, nil
}

func (r *SQLiteRepository) GetByID(ctx context.Context, id string) (*models.VideoRecord, error) {
	query := `SELECT id, title, description, created_at, video_blob, video_type, image_blob, image_type, size
			FROM videos WHERE id = ?`
	row := r.db.QueryRowContext(ctx, query, id)

	var (
		v         models.VideoRecord
		desc      sql.NullString
		createdAt int64
		imageBlob []byte
		imageType sql.NullString
	)
	err := row.Scan(&v.ID, &v.Title, &desc, &createdAt, &v.Video.Data, &v.Video.Type, &imageBlob, &imageType, &v.Size)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, fmt.Errorf("video %s: %w", id, common.ErrNotFound)
	}
	if err != nil {
		return nil, fmt.Errorf("query row scan failed: %w", err)
	}

	v.Description = stringPtr(desc)
	v.CreatedAt = time.UnixMilli(createdAt)
	if v.Video.Data == nil {
		v.Video.Data = []byte{}
	}
	if imageType.Valid {
		if imageBlob == nil {
			imageBlob = []byte{}
		}
		v.Image = &models.Blob{Type: imageType.String, Data: imageBlob}
	}
	return &v, nil
}

func nullString(s *string) sql.NullString {
	if s == nil {
		return sql.NullString{}
	}
	return sql.NullString{String: *s, Valid: true}
}

func stringPtr(ns sql.NullString) *string {
	if !ns.Valid {
		return nil
	}
	s := ns.String
	return &s
}
