package domain

import (
	"strings"

	"github.com/agnivade/levenshtein"
)

// Font categories as used by the catalog and the inference guidance.
const (
	CategorySans        = "sans-serif"
	CategorySerif       = "serif"
	CategoryDisplay     = "display"
	CategoryHandwriting = "handwriting"
	CategoryMonospace   = "monospace"
)

// DefaultFamily is the final fallback when no catalog entry can be matched.
const DefaultFamily = "Inter"

// CatalogFamily describes one font family available for styling.
type CatalogFamily struct {
	// Name is the family name as served by the font delivery service.
	Name string

	// Category groups the family (serif, sans-serif, display, ...).
	Category string

	// Weights lists the weights the family actually supports, ascending.
	Weights []int

	// HasItalic reports whether an italic face exists for the family.
	HasItalic bool
}

// SnapWeight returns the supported weight closest to the requested one.
// Ties resolve to the lighter weight. An empty weight list returns the
// request unchanged.
func (f CatalogFamily) SnapWeight(weight int) int {
	if len(f.Weights) == 0 {
		return weight
	}
	best := f.Weights[0]
	for _, w := range f.Weights[1:] {
		if abs(w-weight) < abs(best-weight) {
			best = w
		}
	}
	return best
}

// Catalog is the immutable set of font families a validated variant may
// name. Lookup is case-insensitive on the trimmed family name.
type Catalog struct {
	families []CatalogFamily
	byName   map[string]int
}

// NewCatalog builds a catalog from a family list. Later duplicates of a
// name replace earlier ones.
func NewCatalog(families []CatalogFamily) *Catalog {
	c := &Catalog{
		families: families,
		byName:   make(map[string]int, len(families)),
	}
	for i, f := range families {
		c.byName[canonicalFamily(f.Name)] = i
	}
	return c
}

// Families returns all catalog entries in definition order.
func (c *Catalog) Families() []CatalogFamily {
	return c.families
}

// Len returns the number of families in the catalog.
func (c *Catalog) Len() int {
	return len(c.families)
}

// Lookup finds a family by exact (case-insensitive, trimmed) name.
func (c *Catalog) Lookup(name string) (CatalogFamily, bool) {
	i, ok := c.byName[canonicalFamily(name)]
	if !ok {
		return CatalogFamily{}, false
	}
	return c.families[i], true
}

// fuzzyThreshold scales the acceptable edit distance with name length:
// short names tolerate fewer edits than long ones.
func fuzzyThreshold(name string) int {
	if len(name) <= 8 {
		return 2
	}
	return 3
}

// FuzzyLookup finds the catalog family with the smallest edit distance to
// the requested name, provided the distance is within the length-scaled
// threshold. Used to repair near-miss family names from inference.
func (c *Catalog) FuzzyLookup(name string) (CatalogFamily, bool) {
	want := canonicalFamily(name)
	limit := fuzzyThreshold(want)

	best := -1
	bestDist := limit + 1
	for i, f := range c.families {
		d := levenshtein.ComputeDistance(want, canonicalFamily(f.Name))
		if d < bestDist {
			best = i
			bestDist = d
		}
	}
	if best < 0 || bestDist > limit {
		return CatalogFamily{}, false
	}
	return c.families[best], true
}

// AnyInCategory returns the first catalog family in the given category.
func (c *Catalog) AnyInCategory(category string) (CatalogFamily, bool) {
	for _, f := range c.families {
		if f.Category == category {
			return f, true
		}
	}
	return CatalogFamily{}, false
}

func canonicalFamily(name string) string {
	return strings.ToLower(strings.TrimSpace(name))
}

func abs(v int) int {
	if v < 0 {
		return -v
	}
	return v
}
