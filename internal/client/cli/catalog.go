package cli

import (
	"context"
	"fmt"
	"strconv"

	"github.com/dmitrijs2005/jara/internal/client/posters"
	"github.com/dmitrijs2005/jara/internal/client/shuffle"
)

// Catalog prints the catalog in this profile's stable shuffled order, with
// posters drawn from the discovered pool.
func (a *App) Catalog(ctx context.Context) error {
	seed, err := shuffle.LoadOrCreateSeed(ctx, a.repos.KV)
	if err != nil {
		a.logger.Warn(ctx, "shuffle seed not persisted", "error", err)
	}

	pool := a.posters.Pool(ctx)
	arranged := shuffle.Arrange(a.catalog, pool, seed)

	featured := arranged.Featured
	if hero := posters.RandomPoster(pool, &seed); hero != "" {
		featured.Backdrop = hero
	}
	fmt.Fprintf(a.out, "Featured: %s (%d)\n  %s\n  %s\n\n", featured.Title, featured.Year, featured.Overview, featured.Backdrop)

	for _, row := range arranged.Rows {
		fmt.Fprintln(a.out, row.Title)
		rows := make([][]string, 0, len(row.Movies))
		for i, m := range row.Movies {
			year := ""
			if m.Year > 0 {
				year = strconv.Itoa(m.Year)
			}
			rows = append(rows, []string{strconv.Itoa(i + 1), m.Title, year, m.Rating, m.Poster})
		}
		fmt.Fprintln(a.out, renderTable(
			[]string{"#", "Title", "Year", "Rating", "Poster"},
			rows,
			[]columnAlignment{alignRight},
		))
	}
	return nil
}

// Posters prints the poster pool. With refresh, discovery runs first and
// its result replaces the cache.
func (a *App) Posters(ctx context.Context, refresh bool) error {
	var pool []string
	if refresh {
		found, err := a.posters.Rediscover(ctx)
		if err != nil {
			return err
		}
		fmt.Fprintf(a.out, "Discovered %d posters\n", len(found))
		if len(found) > 0 {
			pool = found
		}
	}
	if pool == nil {
		pool = a.posters.Pool(ctx)
	}

	rows := make([][]string, len(pool))
	for i, p := range pool {
		rows[i] = []string{strconv.Itoa(i + 1), p}
	}
	fmt.Fprintln(a.out, renderTable([]string{"#", "Poster"}, rows, []columnAlignment{alignRight}))
	return nil
}
