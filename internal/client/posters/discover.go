package posters

import (
	"context"
	"fmt"
	"sync"

	"golang.org/x/sync/errgroup"
)

// Discovery constants.
const (
	BasePath = "/moviePosters/"
	MaxIndex = 80

	// MinTries is how many indices of a pattern are always tried.
	MinTries = 12
	// MaxConsecutiveMisses ends a pattern once MinTries is reached.
	MaxConsecutiveMisses = 6

	// DefaultMax caps a discovery run when the caller gives no limit.
	DefaultMax = 32
)

// Patterns are tried in order; each is formatted with the index.
var Patterns = []string{"p%d", "image%d"}

// Extensions are tried in order for each index; the first hit wins.
var Extensions = []string{"webp", "jpg", "jpeg", "png", "avif"}

// CandidatePath returns the path probed for pattern, index n and ext.
func CandidatePath(pattern string, n int, ext string) string {
	return BasePath + fmt.Sprintf(pattern, n) + "." + ext
}

// Discoverer walks the candidate namespace with a Prober.
type Discoverer struct {
	prober Prober
	// concurrency bounds how many extensions of one index are probed at
	// once. 1 probes them one by one and stops at the first hit.
	concurrency int
}

func NewDiscoverer(p Prober, concurrency int) *Discoverer {
	if concurrency < 1 {
		concurrency = 1
	}
	return &Discoverer{prober: p, concurrency: concurrency}
}

// Discover returns up to max loadable poster paths, deduplicated and in
// probe order. A probe failure is a miss, never an error; the only error
// is ctx ending, returned with whatever was found so far.
func (d *Discoverer) Discover(ctx context.Context, max int) ([]string, error) {
	if max <= 0 {
		max = DefaultMax
	}

	found := make([]string, 0, max)
	for _, pattern := range Patterns {
		misses := 0
		for n := 1; n <= MaxIndex && len(found) < max; n++ {
			if err := ctx.Err(); err != nil {
				return Dedupe(found), err
			}

			if path, ok := d.probeIndex(ctx, pattern, n); ok {
				found = append(found, path)
				misses = 0
			} else {
				misses++
			}

			if n >= MinTries && misses >= MaxConsecutiveMisses {
				break
			}
		}
	}

	found = Dedupe(found)
	if len(found) > max {
		found = found[:max]
	}
	return found, nil
}

// probeIndex returns the first extension of index n that loads.
func (d *Discoverer) probeIndex(ctx context.Context, pattern string, n int) (string, bool) {
	if d.concurrency == 1 {
		for _, ext := range Extensions {
			path := CandidatePath(pattern, n, ext)
			if d.prober.Probe(ctx, path) == nil {
				return path, true
			}
		}
		return "", false
	}

	var (
		mu   sync.Mutex
		hits = make([]bool, len(Extensions))
	)
	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(d.concurrency)
	for i, ext := range Extensions {
		path := CandidatePath(pattern, n, ext)
		g.Go(func() error {
			if d.prober.Probe(gctx, path) == nil {
				mu.Lock()
				hits[i] = true
				mu.Unlock()
			}
			return nil
		})
	}
	_ = g.Wait()

	for i, ext := range Extensions {
		if hits[i] {
			return CandidatePath(pattern, n, ext), true
		}
	}
	return "", false
}

// Dedupe drops repeated entries, keeping the first occurrence.
func Dedupe(list []string) []string {
	seen := make(map[string]struct{}, len(list))
	out := make([]string, 0, len(list))
	for _, s := range list {
		if _, ok := seen[s]; ok {
			continue
		}
		seen[s] = struct{}{}
		out = append(out, s)
	}
	return out
}
