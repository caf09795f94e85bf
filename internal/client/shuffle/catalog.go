package shuffle

import (
	_ "embed"
	"encoding/json"
	"fmt"

	"github.com/dmitrijs2005/jara/internal/client/models"
)

//go:embed catalog.json
var catalogJSON []byte

// LoadCatalog returns the built-in base catalog.
func LoadCatalog() (models.Catalog, error) {
	return ParseCatalog(catalogJSON)
}

// ParseCatalog decodes and validates a catalog document.
func ParseCatalog(b []byte) (models.Catalog, error) {
	var c models.Catalog
	if err := json.Unmarshal(b, &c); err != nil {
		return models.Catalog{}, fmt.Errorf("%w: %v", models.ErrInvalidCatalog, err)
	}
	if err := c.Validate(); err != nil {
		return models.Catalog{}, err
	}
	return c, nil
}
