package catalog

import (
	"context"
	"fmt"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5/pgxpool"
)

// ImageRepository defines persistence operations for product images.
type ImageRepository interface {
	InsertProductImage(ctx context.Context, image ProductImage) error
	GetProductImages(ctx context.Context, productIDs ...uuid.UUID) ([]ProductImage, error)
}

// PGImageRepository implements ImageRepository using PostgreSQL.
type PGImageRepository struct {
	pool *pgxpool.Pool
}

// NewImageRepository constructs a PostgreSQL image repository.
func NewImageRepository(pool *pgxpool.Pool) *PGImageRepository {
	return &PGImageRepository{pool: pool}
}

// InsertProductImage stores the image record for a product.
func (r *PGImageRepository) InsertProductImage(ctx context.Context, image ProductImage) error {
	_, err := r.pool.Exec(ctx,
		`INSERT INTO product_images (image_id, product_id, product_image_url, file_name, file_extension)
		 VALUES ($1, $2, $3, $4, $5)`,
		image.ImageID, image.ProductID, image.ProductImageURL, image.FileName, image.FileExtension,
	)
	if err != nil {
		return fmt.Errorf("catalog: saving product image: %w", err)
	}
	return nil
}

// GetProductImages returns the images belonging to any of the given products.
func (r *PGImageRepository) GetProductImages(ctx context.Context, productIDs ...uuid.UUID) ([]ProductImage, error) {
	if len(productIDs) == 0 {
		return nil, nil
	}
	rows, err := r.pool.Query(ctx,
		`SELECT image_id, product_id, product_image_url, file_name, file_extension
		 FROM product_images WHERE product_id = ANY($1)`,
		productIDs,
	)
	if err != nil {
		return nil, fmt.Errorf("catalog: list product images: %w", err)
	}
	defer rows.Close()

	var images []ProductImage
	for rows.Next() {
		var img ProductImage
		if err := rows.Scan(&img.ImageID, &img.ProductID, &img.ProductImageURL, &img.FileName, &img.FileExtension); err != nil {
			return nil, err
		}
		images = append(images, img)
	}
	return images, rows.Err()
}

var _ ImageRepository = (*PGImageRepository)(nil)
