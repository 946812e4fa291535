package catalog

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"
	"golang.org/x/sync/errgroup"

	"github.com/stockroom-app/stockroom/internal/platform/db"
	"github.com/stockroom-app/stockroom/internal/platform/httpx"
)

// Repository defines persistence operations for products.
type Repository interface {
	GetAllProducts(ctx context.Context) ([]Product, error)
	GetFilteredProducts(ctx context.Context, filter Filter) ([]Product, int, error)
	GetProductByID(ctx context.Context, id uuid.UUID) (*Product, error)
	CreateProduct(ctx context.Context, product Product) (Product, error)
	UpdateProduct(ctx context.Context, id uuid.UUID, product Product) (Product, error)
	UpdateProductQuantity(ctx context.Context, id uuid.UUID, quantity int) (Product, error)
}

const productColumns = `product_id, product_code, manufacturer_id, product_name, description, category,
	wholesale_price, retail_price, quantity, retail_currency, wholesale_currency, shipping_cost,
	created_on, updated_on, is_active`

// PGRepository implements Repository using PostgreSQL.
type PGRepository struct {
	pool *pgxpool.Pool
}

// NewRepository constructs a PostgreSQL repository.
func NewRepository(pool *pgxpool.Pool) *PGRepository {
	return &PGRepository{pool: pool}
}

type rowScanner interface {
	Scan(dest ...any) error
}

func scanProduct(row rowScanner) (Product, error) {
	var p Product
	err := row.Scan(
		&p.ProductID, &p.ProductCode, &p.ManufacturerID, &p.ProductName, &p.Description, &p.Category,
		&p.WholesalePrice, &p.RetailPrice, &p.Quantity, &p.RetailCurrency, &p.WholesaleCurrency, &p.ShippingCost,
		&p.CreatedOn, &p.UpdatedOn, &p.IsActive,
	)
	return p, err
}

func collectProducts(rows pgx.Rows) ([]Product, error) {
	defer rows.Close()
	var products []Product
	for rows.Next() {
		p, err := scanProduct(rows)
		if err != nil {
			return nil, err
		}
		products = append(products, p)
	}
	return products, rows.Err()
}

// GetAllProducts returns every active product, oldest first.
func (r *PGRepository) GetAllProducts(ctx context.Context) ([]Product, error) {
	query := `SELECT ` + productColumns + ` FROM products WHERE is_active = TRUE ORDER BY created_on ASC`
	rows, err := r.pool.Query(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("catalog: list products: %w", err)
	}
	return collectProducts(rows)
}

// GetFilteredProducts returns one page of matching active products along with
// the total match count. The row query and the count query share the same
// predicate set and run concurrently.
func (r *PGRepository) GetFilteredProducts(ctx context.Context, filter Filter) ([]Product, int, error) {
	filter.Normalize()
	where, args := filter.whereClause()

	listQuery := fmt.Sprintf(
		`SELECT %s FROM products WHERE %s ORDER BY %s LIMIT %d OFFSET %d`,
		productColumns, where, filter.orderClause(), filter.PageSize, filter.Offset(),
	)
	countQuery := `SELECT COUNT(*) FROM products WHERE ` + where

	var (
		products []Product
		total    int
	)
	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		rows, err := r.pool.Query(gctx, listQuery, args...)
		if err != nil {
			return fmt.Errorf("catalog: filtered products: %w", err)
		}
		products, err = collectProducts(rows)
		return err
	})
	g.Go(func() error {
		if err := r.pool.QueryRow(gctx, countQuery, args...).Scan(&total); err != nil {
			return fmt.Errorf("catalog: count products: %w", err)
		}
		return nil
	})
	if err := g.Wait(); err != nil {
		return nil, 0, err
	}
	return products, total, nil
}

// GetProductByID returns the active product with the given id, or ErrNotFound.
// The id is the primary key, so the result cardinality is 0 or 1 by
// construction.
func (r *PGRepository) GetProductByID(ctx context.Context, id uuid.UUID) (*Product, error) {
	query := `SELECT ` + productColumns + ` FROM products WHERE product_id = $1 AND is_active = TRUE`
	p, err := scanProduct(r.pool.QueryRow(ctx, query, id))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, httpx.ErrNotFound
		}
		return nil, fmt.Errorf("catalog: get product: %w", err)
	}
	return &p, nil
}

// CreateProduct persists a new product. The sequential code is taken from the
// counter row inside the same transaction as the insert, so concurrent
// creations can never observe the same value.
func (r *PGRepository) CreateProduct(ctx context.Context, product Product) (Product, error) {
	now := time.Now().UTC()
	product.ProductID = uuid.New()
	product.CreatedOn = now
	product.UpdatedOn = now

	err := db.WithTx(ctx, r.pool, func(tx pgx.Tx) error {
		var seq int
		if err := tx.QueryRow(ctx,
			`UPDATE product_code_counter SET last_value = last_value + 1 WHERE id = 1 RETURNING last_value`,
		).Scan(&seq); err != nil {
			return fmt.Errorf("catalog: next product code: %w", err)
		}
		product.ProductCode = fmt.Sprintf("P%03d", seq)

		_, err := tx.Exec(ctx,
			`INSERT INTO products (`+productColumns+`)
			 VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13, $14, $15)`,
			product.ProductID, product.ProductCode, product.ManufacturerID, product.ProductName,
			product.Description, product.Category, product.WholesalePrice, product.RetailPrice,
			product.Quantity, product.RetailCurrency, product.WholesaleCurrency, product.ShippingCost,
			product.CreatedOn, product.UpdatedOn, product.IsActive,
		)
		if err != nil {
			var pgErr *pgconn.PgError
			if errors.As(err, &pgErr) && pgErr.Code == "23505" {
				return fmt.Errorf("catalog: insert product: %w", httpx.ErrDuplicate)
			}
			return fmt.Errorf("catalog: insert product: %w", err)
		}
		return nil
	})
	if err != nil {
		return Product{}, err
	}
	return product, nil
}

// UpdateProduct overwrites all mutable fields and advances UpdatedOn. Returns
// ErrNotFound when the id does not exist.
func (r *PGRepository) UpdateProduct(ctx context.Context, id uuid.UUID, product Product) (Product, error) {
	query := `UPDATE products SET
		manufacturer_id = $1, product_name = $2, description = $3, category = $4,
		wholesale_price = $5, retail_price = $6, quantity = $7, retail_currency = $8,
		wholesale_currency = $9, shipping_cost = $10, is_active = $11, updated_on = $12
		WHERE product_id = $13
		RETURNING ` + productColumns
	row := r.pool.QueryRow(ctx, query,
		product.ManufacturerID, product.ProductName, product.Description, product.Category,
		product.WholesalePrice, product.RetailPrice, product.Quantity, product.RetailCurrency,
		product.WholesaleCurrency, product.ShippingCost, product.IsActive, time.Now().UTC(), id,
	)
	updated, err := scanProduct(row)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return Product{}, httpx.ErrNotFound
		}
		return Product{}, fmt.Errorf("catalog: update product: %w", err)
	}
	return updated, nil
}

// UpdateProductQuantity changes only the quantity and UpdatedOn.
func (r *PGRepository) UpdateProductQuantity(ctx context.Context, id uuid.UUID, quantity int) (Product, error) {
	query := `UPDATE products SET quantity = $1, updated_on = $2 WHERE product_id = $3 RETURNING ` + productColumns
	updated, err := scanProduct(r.pool.QueryRow(ctx, query, quantity, time.Now().UTC(), id))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return Product{}, httpx.ErrNotFound
		}
		return Product{}, fmt.Errorf("catalog: update product quantity: %w", err)
	}
	return updated, nil
}

var _ Repository = (*PGRepository)(nil)
