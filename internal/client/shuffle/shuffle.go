package shuffle

import (
	"math"

	"github.com/dmitrijs2005/jara/internal/client/models"
)

// ShuffleInPlace permutes items with Fisher-Yates driven by rng.
func ShuffleInPlace[T any](items []T, rng Source) {
	for i := len(items) - 1; i > 0; i-- {
		j := int(math.Floor(rng.Float64() * float64(i+1)))
		items[i], items[j] = items[j], items[i]
	}
}

// Shuffle returns a permuted copy of items; items is left untouched.
func Shuffle[T any](items []T, rng Source) []T {
	out := make([]T, len(items))
	copy(out, items)
	ShuffleInPlace(out, rng)
	return out
}

// AssignPoster picks the pool entry for the item at index:
// (index + floor(rng*1000)) mod len(pool). It returns "" for an empty pool.
// One value is drawn from rng either way, so the sequence does not depend
// on the pool size.
func AssignPoster(index int, pool []string, rng Source) string {
	offset := int(math.Floor(rng.Float64() * 1000))
	n := max(1, len(pool))
	i := (index + offset) % n
	if i < 0 {
		i += n
	}
	if len(pool) == 0 {
		return ""
	}
	return pool[i]
}

// Arrange shuffles the rows, then the movies of each row, then assigns
// posters in display order, all from one generator seeded with seed.
// The input catalog is not modified. Movies keep their own poster when
// the pool is empty.
func Arrange(c models.Catalog, pool []string, seed uint32) models.Catalog {
	rng := NewRNG(seed)
	out := c.Clone()

	ShuffleInPlace(out.Rows, rng)
	for i := range out.Rows {
		ShuffleInPlace(out.Rows[i].Movies, rng)
	}

	index := 0
	for i := range out.Rows {
		for j := range out.Rows[i].Movies {
			if p := AssignPoster(index, pool, rng); p != "" {
				out.Rows[i].Movies[j].Poster = p
			}
			index++
		}
	}
	return out
}
