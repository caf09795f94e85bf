package shuffle

import (
	"context"
	"crypto/rand"
	"encoding/binary"
	"fmt"
	"strconv"

	"github.com/dmitrijs2005/jara/internal/client/kv"
	"github.com/dmitrijs2005/jara/internal/common"
)

// NewSeed draws a seed from crypto/rand.
func NewSeed() (uint32, error) {
	var b [4]byte
	if _, err := rand.Read(b[:]); err != nil {
		return 0, err
	}
	return binary.BigEndian.Uint32(b[:]), nil
}

// LoadOrCreateSeed returns the device seed stored under
// common.KeyShuffleSeed, creating it on first use. An unparsable value is
// replaced. When the seed cannot be persisted it is still returned, with an
// error wrapping common.ErrStorageUnavailable.
func LoadOrCreateSeed(ctx context.Context, store kv.Store) (uint32, error) {
	raw, ok, err := store.Get(ctx, common.KeyShuffleSeed)
	if err == nil && ok {
		if v, perr := strconv.ParseUint(raw, 10, 32); perr == nil {
			return uint32(v), nil
		}
	}

	seed, genErr := NewSeed()
	if genErr != nil {
		return 0, fmt.Errorf("generate seed: %w", genErr)
	}
	if err != nil {
		return seed, fmt.Errorf("%w: %v", common.ErrStorageUnavailable, err)
	}
	if err := store.Set(ctx, common.KeyShuffleSeed, strconv.FormatUint(uint64(seed), 10)); err != nil {
		return seed, fmt.Errorf("%w: %v", common.ErrStorageUnavailable, err)
	}
	return seed, nil
}
