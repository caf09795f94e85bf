package posters

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/dmitrijs2005/jara/internal/client/kv"
	"github.com/dmitrijs2005/jara/internal/common"
)

// CacheVersion tags the cached list. Lists with any other version are
// ignored, which forces rediscovery.
const CacheVersion = 4

type cacheEntry struct {
	Version int      `json:"version"`
	List    []string `json:"list"`
}

// Cache persists the poster pool under common.KeyPosterCache.
type Cache struct {
	store kv.Store
}

func NewCache(store kv.Store) *Cache {
	return &Cache{store: store}
}

// Load returns the cached list. A missing, stale or unreadable entry is
// a miss (ok false, nil error); only storage failures are errors.
func (c *Cache) Load(ctx context.Context) ([]string, bool, error) {
	raw, ok, err := c.store.Get(ctx, common.KeyPosterCache)
	if err != nil {
		return nil, false, fmt.Errorf("%w: %v", common.ErrStorageUnavailable, err)
	}
	if !ok {
		return nil, false, nil
	}

	var e cacheEntry
	if err := json.Unmarshal([]byte(raw), &e); err != nil {
		return nil, false, nil
	}
	if e.Version != CacheVersion || e.List == nil {
		return nil, false, nil
	}
	return Dedupe(e.List), true, nil
}

// Save stores list, deduplicated, under the current version.
func (c *Cache) Save(ctx context.Context, list []string) error {
	b, err := json.Marshal(cacheEntry{Version: CacheVersion, List: Dedupe(list)})
	if err != nil {
		return err
	}
	if err := c.store.Set(ctx, common.KeyPosterCache, string(b)); err != nil {
		return fmt.Errorf("%w: %v", common.ErrStorageUnavailable, err)
	}
	return nil
}
