package catalog

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// ProductDTO is the response shape for a product. Category travels as its
// display string, never the numeric code.
type ProductDTO struct {
	ProductID         uuid.UUID           `json:"ProductID"`
	ProductCode       string              `json:"ProductCode"`
	ManufacturerID    *uuid.UUID          `json:"ManufacturerID"`
	ProductName       string              `json:"ProductName"`
	Description       string              `json:"Description"`
	Category          string              `json:"Category"`
	WholesalePrice    decimal.NullDecimal `json:"WholesalePrice"`
	RetailPrice       decimal.NullDecimal `json:"RetailPrice"`
	Quantity          *int                `json:"Quantity"`
	RetailCurrency    string              `json:"RetailCurrency"`
	WholesaleCurrency string              `json:"WholesaleCurrency"`
	ShippingCost      decimal.NullDecimal `json:"ShippingCost"`
	CreatedOn         time.Time           `json:"CreatedOn"`
	UpdatedOn         time.Time           `json:"UpdatedOn"`
	IsActive          bool                `json:"IsActive"`
	ProductImage      []ProductImageDTO   `json:"ProductImage"`
}

// ProductImageDTO exposes only the public URL of a stored image.
type ProductImageDTO struct {
	ProductImageURL string `json:"ProductImageURL"`
}

// NewProductDTO maps an entity and its images to the response shape.
func NewProductDTO(p Product, images []ProductImage) ProductDTO {
	imageDTOs := make([]ProductImageDTO, 0, len(images))
	for _, img := range images {
		if img.ProductID == p.ProductID {
			imageDTOs = append(imageDTOs, ProductImageDTO{ProductImageURL: img.ProductImageURL})
		}
	}
	return ProductDTO{
		ProductID:         p.ProductID,
		ProductCode:       p.ProductCode,
		ManufacturerID:    p.ManufacturerID,
		ProductName:       p.ProductName,
		Description:       p.Description,
		Category:          p.Category.Description(),
		WholesalePrice:    p.WholesalePrice,
		RetailPrice:       p.RetailPrice,
		Quantity:          p.Quantity,
		RetailCurrency:    p.RetailCurrency,
		WholesaleCurrency: p.WholesaleCurrency,
		ShippingCost:      p.ShippingCost,
		CreatedOn:         p.CreatedOn,
		UpdatedOn:         p.UpdatedOn,
		IsActive:          p.IsActive,
		ProductImage:      imageDTOs,
	}
}

// NewProductDTOs maps a product list, attaching each product's images.
func NewProductDTOs(products []Product, images []ProductImage) []ProductDTO {
	dtos := make([]ProductDTO, 0, len(products))
	for _, p := range products {
		dtos = append(dtos, NewProductDTO(p, images))
	}
	return dtos
}

// CreateProductRequest carries the multipart form fields of a create call.
type CreateProductRequest struct {
	ManufacturerID    *uuid.UUID
	ProductName       string `validate:"required,max=255"`
	Description       string `validate:"max=500"`
	Category          Category
	WholesalePrice    decimal.NullDecimal
	RetailPrice       decimal.NullDecimal
	Quantity          *int
	RetailCurrency    string `validate:"omitempty,len=3"`
	WholesaleCurrency string `validate:"omitempty,len=3"`
	ShippingCost      decimal.NullDecimal
}

// ToProduct builds a fresh entity from the request. Identity, code and
// timestamps are filled in by the repository.
func (r CreateProductRequest) ToProduct() Product {
	return Product{
		ManufacturerID:    r.ManufacturerID,
		ProductName:       r.ProductName,
		Description:       r.Description,
		Category:          r.Category,
		WholesalePrice:    r.WholesalePrice,
		RetailPrice:       r.RetailPrice,
		Quantity:          r.Quantity,
		RetailCurrency:    r.RetailCurrency,
		WholesaleCurrency: r.WholesaleCurrency,
		ShippingCost:      r.ShippingCost,
		IsActive:          true,
	}
}

// UpdateProductRequest is the JSON body of a full update. Category arrives as
// its display string, mirroring the response shape.
type UpdateProductRequest struct {
	ProductName         string              `json:"ProductName" validate:"required,max=255"`
	Description         string              `json:"Description" validate:"max=500"`
	CategoryDescription string              `json:"CategoryDescription" validate:"required"`
	WholesalePrice      decimal.NullDecimal `json:"WholesalePrice"`
	RetailPrice         decimal.NullDecimal `json:"RetailPrice"`
	Quantity            *int                `json:"Quantity"`
	RetailCurrency      string              `json:"RetailCurrency" validate:"omitempty,len=3"`
	WholesaleCurrency   string              `json:"WholesaleCurrency" validate:"omitempty,len=3"`
	ShippingCost        decimal.NullDecimal `json:"ShippingCost"`
	IsActive            bool                `json:"IsActive"`
}

// Apply overwrites the mutable fields of an existing entity. Identity, code
// and CreatedOn are left untouched; UpdatedOn is advanced by the repository.
func (r UpdateProductRequest) Apply(p *Product) error {
	category, err := CategoryFromDescription(r.CategoryDescription)
	if err != nil {
		return err
	}
	p.ProductName = r.ProductName
	p.Description = r.Description
	p.Category = category
	p.WholesalePrice = r.WholesalePrice
	p.RetailPrice = r.RetailPrice
	p.Quantity = r.Quantity
	p.RetailCurrency = r.RetailCurrency
	p.WholesaleCurrency = r.WholesaleCurrency
	p.ShippingCost = r.ShippingCost
	p.IsActive = r.IsActive
	return nil
}

// NewUpdateProductRequest expresses an entity as its update body, used when
// internal flows (soft delete) funnel through the general update path.
func NewUpdateProductRequest(p Product) UpdateProductRequest {
	return UpdateProductRequest{
		ProductName:         p.ProductName,
		Description:         p.Description,
		CategoryDescription: p.Category.Description(),
		WholesalePrice:      p.WholesalePrice,
		RetailPrice:         p.RetailPrice,
		Quantity:            p.Quantity,
		RetailCurrency:      p.RetailCurrency,
		WholesaleCurrency:   p.WholesaleCurrency,
		ShippingCost:        p.ShippingCost,
		IsActive:            p.IsActive,
	}
}

// QuantityUpdateRequest is the narrow PATCH body for quantity-only changes.
type QuantityUpdateRequest struct {
	Quantity *int `json:"Quantity" validate:"required,gte=0"`
}
