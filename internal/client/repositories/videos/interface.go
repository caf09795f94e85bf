package videos

import (
	"context"

	"github.com/dmitrijs2005/jara/internal/client/models"
)

// Repository describes the append-only video record store.
type Repository interface {
	// Create inserts a new record. Ids are never reused.
	Create(ctx context.Context, v *models.VideoRecord) error

	// GetAll returns metadata of every record, newest first, without payloads.
	GetAll(ctx context.Context) ([]models.VideoSummary, error)

	// GetByID returns the full record or common.ErrNotFound.
	GetByID(ctx context.Context, id string) (*models.VideoRecord, error)
}
