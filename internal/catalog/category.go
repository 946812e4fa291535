package catalog

import "fmt"

// Category is the numeric product category code.
type Category int

const (
	CategoryFashion           Category = 1
	CategoryFurniture         Category = 2
	CategoryHomeAndGarden     Category = 3
	CategoryHealthAndBeauty   Category = 4
	CategoryComputerAndOffice Category = 5
)

// The two lookup tables are fixed at compile time; no reflection involved.
var categoryDescriptions = map[Category]string{
	CategoryFashion:           "Fashion",
	CategoryFurniture:         "Furniture",
	CategoryHomeAndGarden:     "Home & Garden",
	CategoryHealthAndBeauty:   "Health & Beauty",
	CategoryComputerAndOffice: "Computer & Office",
}

var categoriesByDescription = func() map[string]Category {
	m := make(map[string]Category, len(categoryDescriptions))
	for c, d := range categoryDescriptions {
		m[d] = c
	}
	return m
}()

// Valid reports whether the code names a known category.
func (c Category) Valid() bool {
	_, ok := categoryDescriptions[c]
	return ok
}

// Description returns the display string for the category. Unknown codes fall
// back to the numeric form so a bad row never breaks a listing.
func (c Category) Description() string {
	if d, ok := categoryDescriptions[c]; ok {
		return d
	}
	return fmt.Sprintf("%d", int(c))
}

// CategoryFromDescription resolves a display string back to its code.
func CategoryFromDescription(description string) (Category, error) {
	if c, ok := categoriesByDescription[description]; ok {
		return c, nil
	}
	return 0, fmt.Errorf("catalog: no matching category for description %q", description)
}
