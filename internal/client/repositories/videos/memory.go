package videos

import (
	"context"
	"fmt"
	"sort"
	"sync"

	"github.com/dmitrijs2005/jara/internal/client/models"
	"github.com/dmitrijs2005/jara/internal/common"
)

// MemoryRepository keeps records in process memory. It backs the media
// store when the local database is unavailable.
type MemoryRepository struct {
	mu      sync.RWMutex
	records map[string]*models.VideoRecord
	order   []string
}

func NewMemoryRepository() *MemoryRepository {
	return &MemoryRepository{records: make(map[string]*models.VideoRecord)}
}

func (r *MemoryRepository) Create(_ context.Context, v *models.VideoRecord) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if _, ok := r.records[v.ID]; ok {
		return fmt.Errorf("failed to insert video: duplicate id %s", v.ID)
	}
	cp := *v
	r.records[v.ID] = &cp
	r.order = append(r.order, v.ID)
	return nil
}

func (r *MemoryRepository) GetAll(_ context.Context) ([]models.VideoSummary, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	result := make([]models.VideoSummary, 0, len(r.order))
	// reverse insertion order breaks created_at ties like rowid DESC
	for i := len(r.order) - 1; i >= 0; i-- {
		result = append(result, r.records[r.order[i]].Summary())
	}
	sort.SliceStable(result, func(i, j int) bool {
		return result[i].CreatedAt.After(result[j].CreatedAt)
	})
	return result, nil
}

func (r *MemoryRepository) GetByID(_ context.Context, id string) (*models.VideoRecord, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	v, ok := r.records[id]
	if !ok {
		return nil, fmt.Errorf("video %s: %w", id, common.ErrNotFound)
	}
	cp := *v
	return &cp, nil
}
