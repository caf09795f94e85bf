package posters

import "math/rand/v2"

// RemoteSeedPosters is used when discovery finds nothing.
var RemoteSeedPosters = []string{
	"https://images.unsplash.com/photo-1513343041531-166e4c681b78?auto=format&fit=crop&w=700&q=80",
	"https://images.unsplash.com/photo-1525186402429-b4ff38bedbec?auto=format&fit=crop&w=700&q=80",
	"https://images.unsplash.com/photo-1520813792240-56fc4a3765a7?auto=format&fit=crop&w=700&q=80",
	"https://images.unsplash.com/photo-1517602302552-471fe67acf66?auto=format&fit=crop&w=700&q=80",
	"https://images.unsplash.com/photo-1500530855697-b586d89ba3ee?auto=format&fit=crop&w=700&q=80",
	"https://images.unsplash.com/photo-1497366216548-37526070297c?auto=format&fit=crop&w=700&q=80",
	"https://images.unsplash.com/photo-1492486166140-c5f7b90fbbe0?auto=format&fit=crop&w=700&q=80",
	"https://images.unsplash.com/photo-1497032628192-86f99bcd76bc?auto=format&fit=crop&w=700&q=80",
	"https://images.unsplash.com/photo-1460472178825-e5240623afd5?auto=format&fit=crop&w=700&q=80",
	"https://images.unsplash.com/photo-1499951360447-b19be8fe80f5?auto=format&fit=crop&w=700&q=80",
	"https://images.unsplash.com/photo-1517694712202-14dd9538aa97?auto=format&fit=crop&w=700&q=80",
	"https://images.unsplash.com/photo-1495461199391-8c39f6c6f75b?auto=format&fit=crop&w=700&q=80",
}

// LCG parameters of SeededIndex.
const (
	lcgA = 1664525
	lcgC = 1013904223
)

// SeededIndex maps seed to an index in [0,n) with one LCG step
// modulo 2^32. n must be positive.
func SeededIndex(n int, seed uint32) int {
	next := lcgA*seed + lcgC
	return int(next % uint32(n))
}

// RandomPoster picks one entry of pool: stable for a given seed, random
// when seed is nil. It returns "" for an empty pool.
func RandomPoster(pool []string, seed *uint32) string {
	if len(pool) == 0 {
		return ""
	}
	if seed == nil {
		return pool[rand.IntN(len(pool))]
	}
	return pool[SeededIndex(len(pool), *seed)]
}
