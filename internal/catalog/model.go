// Package catalog implements the product catalog domain: entities, DTO
// mapping, filtered listing, persistence, and the HTTP surface.
package catalog

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// Product is a catalog record. Deletion is logical: IsActive is cleared and
// the row stays. Monetary fields are fixed-point decimals; the three-letter
// currency codes are ISO 4217.
type Product struct {
	ProductID         uuid.UUID
	ProductCode       string
	ManufacturerID    *uuid.UUID
	ProductName       string
	Description       string
	Category          Category
	WholesalePrice    decimal.NullDecimal
	RetailPrice       decimal.NullDecimal
	Quantity          *int
	RetailCurrency    string
	WholesaleCurrency string
	ShippingCost      decimal.NullDecimal
	CreatedOn         time.Time
	UpdatedOn         time.Time
	IsActive          bool
}

// ProductImage references an uploaded file belonging to a product. Images are
// created alongside the product and never updated afterwards.
type ProductImage struct {
	ImageID         uuid.UUID
	ProductID       uuid.UUID
	ProductImageURL string
	FileName        string
	FileExtension   string
}
