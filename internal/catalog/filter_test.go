package catalog

import (
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"

	_ "github.com/stockroom-app/stockroom/testing"
)

func decPtr(s string) *decimal.Decimal {
	d := decimal.RequireFromString(s)
	return &d
}

func intPtr(n int) *int {
	return &n
}

func TestFilterNormalizeDefaults(t *testing.T) {
	var f Filter
	f.Normalize()
	assert.Equal(t, 1, f.Page)
	assert.Equal(t, 10, f.PageSize)

	f = Filter{Page: 3, PageSize: 25}
	f.Normalize()
	assert.Equal(t, 3, f.Page)
	assert.Equal(t, 25, f.PageSize)
}

func TestFilterOffset(t *testing.T) {
	f := Filter{Page: 1, PageSize: 10}
	assert.Equal(t, 0, f.Offset())

	f = Filter{Page: 4, PageSize: 10}
	assert.Equal(t, 30, f.Offset())
}

func TestWhereClauseNoFilters(t *testing.T) {
	where, args := Filter{}.whereClause()
	assert.Equal(t, "is_active = TRUE", where)
	assert.Empty(t, args)
}

func TestWhereClauseSearchTextBindsOnce(t *testing.T) {
	where, args := Filter{SearchText: "Laptop"}.whereClause()
	assert.Equal(t, "is_active = TRUE AND (product_code ILIKE $1 OR product_name ILIKE $1 OR description ILIKE $1)", where)
	assert.Equal(t, []any{"%Laptop%"}, args)
}

func TestWhereClauseComposesAllPredicates(t *testing.T) {
	category := CategoryFurniture
	f := Filter{
		SearchText:        "chair",
		Category:          &category,
		MinWholesalePrice: decPtr("10"),
		MaxWholesalePrice: decPtr("100"),
		MinRetailPrice:    decPtr("20"),
		MaxRetailPrice:    decPtr("200"),
		MinQuantity:       intPtr(30),
	}

	where, args := f.whereClause()

	assert.Contains(t, where, "category = $2")
	assert.Contains(t, where, "wholesale_price >= $3")
	assert.Contains(t, where, "wholesale_price <= $4")
	assert.Contains(t, where, "retail_price >= $5")
	assert.Contains(t, where, "retail_price <= $6")
	assert.Contains(t, where, "quantity >= $7")
	assert.Len(t, args, 7)
}

func TestOrderClause(t *testing.T) {
	assert.Equal(t, "product_name ASC", Filter{}.orderClause())
	assert.Equal(t, "product_name DESC", Filter{SortDescending: true}.orderClause())
}
