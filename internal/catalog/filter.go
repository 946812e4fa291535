package catalog

import (
	"strconv"
	"strings"

	"github.com/shopspring/decimal"
)

const (
	defaultPage     = 1
	defaultPageSize = 10
)

// Filter is the optional constraint set of a filtered listing. Every field
// left at its zero value contributes no predicate.
type Filter struct {
	SearchText        string
	Category          *Category
	MinWholesalePrice *decimal.Decimal
	MaxWholesalePrice *decimal.Decimal
	MinRetailPrice    *decimal.Decimal
	MaxRetailPrice    *decimal.Decimal
	MinQuantity       *int
	SortDescending    bool
	Page              int
	PageSize          int
}

// Normalize applies the paging defaults.
func (f *Filter) Normalize() {
	if f.Page < 1 {
		f.Page = defaultPage
	}
	if f.PageSize < 1 {
		f.PageSize = defaultPageSize
	}
}

// Offset returns the row offset of the requested page.
func (f Filter) Offset() int {
	offset := (f.Page - 1) * f.PageSize
	if offset < 0 {
		return 0
	}
	return offset
}

// whereClause builds the conjunction shared by the row query and the count
// query, so the two can never drift apart. Placeholders are numbered from $1.
func (f Filter) whereClause() (string, []any) {
	clauses := []string{"is_active = TRUE"}
	var args []any

	bind := func(v any) string {
		args = append(args, v)
		return "$" + strconv.Itoa(len(args))
	}

	if f.SearchText != "" {
		p := bind("%" + f.SearchText + "%")
		clauses = append(clauses, "(product_code ILIKE "+p+" OR product_name ILIKE "+p+" OR description ILIKE "+p+")")
	}
	if f.Category != nil {
		clauses = append(clauses, "category = "+bind(*f.Category))
	}
	if f.MinWholesalePrice != nil {
		clauses = append(clauses, "wholesale_price >= "+bind(*f.MinWholesalePrice))
	}
	if f.MaxWholesalePrice != nil {
		clauses = append(clauses, "wholesale_price <= "+bind(*f.MaxWholesalePrice))
	}
	if f.MinRetailPrice != nil {
		clauses = append(clauses, "retail_price >= "+bind(*f.MinRetailPrice))
	}
	if f.MaxRetailPrice != nil {
		clauses = append(clauses, "retail_price <= "+bind(*f.MaxRetailPrice))
	}
	if f.MinQuantity != nil {
		clauses = append(clauses, "quantity >= "+bind(*f.MinQuantity))
	}

	return strings.Join(clauses, " AND "), args
}

// orderClause sorts by product name only; the direction flag is the single
// sort control the API exposes.
func (f Filter) orderClause() string {
	if f.SortDescending {
		return "product_name DESC"
	}
	return "product_name ASC"
}
