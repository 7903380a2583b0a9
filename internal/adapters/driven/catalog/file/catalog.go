// Package file loads the font catalog from a TOML file, falling back to
// a built-in catalog when none is configured.
package file

import (
	_ "embed"
	"fmt"
	"os"

	"github.com/pelletier/go-toml/v2"

	"github.com/typetide/typetide/internal/core/domain"
)

//go:embed default.toml
var defaultCatalog []byte

// catalogFile is the TOML schema of a catalog definition.
type catalogFile struct {
	Families []catalogFamily `toml:"family"`
}

type catalogFamily struct {
	Name      string `toml:"name"`
	Category  string `toml:"category"`
	Weights   []int  `toml:"weights"`
	HasItalic bool   `toml:"italic"`
}

// Load reads a catalog definition from path. An empty path returns the
// built-in catalog.
func Load(path string) (*domain.Catalog, error) {
	if path == "" {
		return Default(), nil
	}
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("reading catalog: %w", err)
	}
	return parse(data)
}

// Default returns the built-in catalog shipped with the binary.
func Default() *domain.Catalog {
	c, err := parse(defaultCatalog)
	if err != nil {
		// The embedded catalog is validated by tests; this cannot happen
		// at runtime.
		panic(fmt.Sprintf("built-in catalog is invalid: %v", err))
	}
	return c
}

func parse(data []byte) (*domain.Catalog, error) {
	var parsed catalogFile
	if err := toml.Unmarshal(data, &parsed); err != nil {
		return nil, fmt.Errorf("parsing catalog: %w", err)
	}
	if len(parsed.Families) == 0 {
		return nil, fmt.Errorf("catalog defines no families: %w", domain.ErrInvalidInput)
	}

	families := make([]domain.CatalogFamily, 0, len(parsed.Families))
	for _, f := range parsed.Families {
		if f.Name == "" {
			continue
		}
		families = append(families, domain.CatalogFamily{
			Name:      f.Name,
			Category:  f.Category,
			Weights:   f.Weights,
			HasItalic: f.HasItalic,
		})
	}
	if len(families) == 0 {
		return nil, fmt.Errorf("catalog defines no named families: %w", domain.ErrInvalidInput)
	}
	return domain.NewCatalog(families), nil
}
