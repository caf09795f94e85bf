package models

import (
	"errors"
	"fmt"
)

var ErrInvalidCatalog = errors.New("invalid catalog")

// Movie is one catalog item.
type Movie struct {
	ID       string   `json:"id"`
	Title    string   `json:"title"`
	Overview string   `json:"overview"`
	Year     int      `json:"year,omitempty"`
	Rating   string   `json:"rating,omitempty"`
	Duration string   `json:"duration,omitempty"`
	Poster   string   `json:"poster"`
	Backdrop string   `json:"backdrop"`
	Genres   []string `json:"genres,omitempty"`
	Trailer  string   `json:"trailer,omitempty"`
}

// Row is a titled, ordered list of movies.
type Row struct {
	Title  string  `json:"title"`
	Movies []Movie `json:"movies"`
}

// Catalog is the browsable arrangement: a featured movie and its rows.
type Catalog struct {
	Featured Movie `json:"featured"`
	Rows     []Row `json:"rows"`
}

// Validate checks that every movie has an id and that ids are unique.
func (c Catalog) Validate() error {
	seen := make(map[string]struct{})
	for ri, row := range c.Rows {
		if row.Title == "" {
			return fmt.Errorf("%w: row %d has no title", ErrInvalidCatalog, ri)
		}
		for _, m := range row.Movies {
			if m.ID == "" {
				return fmt.Errorf("%w: movie without id in row %q", ErrInvalidCatalog, row.Title)
			}
			if _, dup := seen[m.ID]; dup {
				return fmt.Errorf("%w: duplicate movie id %q", ErrInvalidCatalog, m.ID)
			}
			seen[m.ID] = struct{}{}
		}
	}
	return nil
}

// Clone deep-copies the rows so callers can reorder them freely.
func (c Catalog) Clone() Catalog {
	out := Catalog{Featured: c.Featured, Rows: make([]Row, len(c.Rows))}
	for i, r := range c.Rows {
		movies := make([]Movie, len(r.Movies))
		copy(movies, r.Movies)
		out.Rows[i] = Row{Title: r.Title, Movies: movies}
	}
	return out
}
