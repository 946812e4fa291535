package catalog

import (
	"context"
	"fmt"

	"github.com/google/uuid"

	"github.com/stockroom-app/stockroom/internal/platform/httpx"
	"github.com/stockroom-app/stockroom/internal/shared"
	"github.com/stockroom-app/stockroom/internal/upload"
)

// Service coordinates catalog operations between the HTTP layer and the
// repositories.
type Service struct {
	repo   Repository
	images ImageRepository
}

// NewService constructs a Service.
func NewService(repo Repository, images ImageRepository) *Service {
	return &Service{repo: repo, images: images}
}

func productIDs(products []Product) []uuid.UUID {
	ids := make([]uuid.UUID, 0, len(products))
	for _, p := range products {
		ids = append(ids, p.ProductID)
	}
	return ids
}

// ListProducts returns every active product with its images.
func (s *Service) ListProducts(ctx context.Context) ([]Product, []ProductImage, error) {
	products, err := s.repo.GetAllProducts(ctx)
	if err != nil {
		return nil, nil, err
	}
	if len(products) == 0 {
		return nil, nil, nil
	}
	images, err := s.images.GetProductImages(ctx, productIDs(products)...)
	if err != nil {
		return nil, nil, err
	}
	return products, images, nil
}

// ListFilteredProducts returns one page of matching products, their images,
// and the pagination metadata derived from the total match count.
func (s *Service) ListFilteredProducts(ctx context.Context, filter Filter) ([]Product, []ProductImage, shared.Pagination, error) {
	filter.Normalize()
	products, total, err := s.repo.GetFilteredProducts(ctx, filter)
	if err != nil {
		return nil, nil, shared.Pagination{}, err
	}
	pagination := shared.NewPagination(filter.Page, filter.PageSize, total)
	if len(products) == 0 {
		return nil, nil, pagination, nil
	}
	images, err := s.images.GetProductImages(ctx, productIDs(products)...)
	if err != nil {
		return nil, nil, shared.Pagination{}, err
	}
	return products, images, pagination, nil
}

// GetProduct returns a single active product and its images, or
// httpx.ErrNotFound.
func (s *Service) GetProduct(ctx context.Context, id uuid.UUID) (*Product, []ProductImage, error) {
	product, err := s.repo.GetProductByID(ctx, id)
	if err != nil {
		return nil, nil, err
	}
	images, err := s.images.GetProductImages(ctx, product.ProductID)
	if err != nil {
		return nil, nil, err
	}
	return product, images, nil
}

// CreateProduct validates the request, persists the product, and records the
// image metadata when an upload accompanied the call.
func (s *Service) CreateProduct(ctx context.Context, req CreateProductRequest, image *upload.SavedFile) (Product, error) {
	if err := s.validateCreate(req); err != nil {
		return Product{}, err
	}

	product, err := s.repo.CreateProduct(ctx, req.ToProduct())
	if err != nil {
		return Product{}, err
	}

	if image != nil {
		record := ProductImage{
			ImageID:         uuid.New(),
			ProductID:       product.ProductID,
			ProductImageURL: image.URL,
			FileName:        image.FileName,
			FileExtension:   image.Extension,
		}
		if err := s.images.InsertProductImage(ctx, record); err != nil {
			return Product{}, err
		}
	}
	return product, nil
}

// UpdateProduct loads the product, applies the full update body, and saves.
func (s *Service) UpdateProduct(ctx context.Context, id uuid.UUID, req UpdateProductRequest) (Product, error) {
	if err := s.validateUpdate(req); err != nil {
		return Product{}, err
	}
	existing, err := s.repo.GetProductByID(ctx, id)
	if err != nil {
		return Product{}, err
	}
	if err := req.Apply(existing); err != nil {
		return Product{}, fmt.Errorf("%w: %v", httpx.ErrValidation, err)
	}
	return s.repo.UpdateProduct(ctx, id, *existing)
}

// UpdateProductQuantity applies the narrow quantity-only update.
func (s *Service) UpdateProductQuantity(ctx context.Context, id uuid.UUID, req QuantityUpdateRequest) (Product, error) {
	if err := validate.Struct(req); err != nil {
		return Product{}, fmt.Errorf("%w: %v", httpx.ErrValidation, err)
	}
	if _, err := s.repo.GetProductByID(ctx, id); err != nil {
		return Product{}, err
	}
	return s.repo.UpdateProductQuantity(ctx, id, *req.Quantity)
}

// DeleteProduct is logical: the active flag is cleared through the general
// update path and the row, its images, and any files stay behind.
func (s *Service) DeleteProduct(ctx context.Context, id uuid.UUID) (Product, error) {
	existing, err := s.repo.GetProductByID(ctx, id)
	if err != nil {
		return Product{}, err
	}
	existing.IsActive = false
	return s.repo.UpdateProduct(ctx, id, *existing)
}
