package postgres

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/go-faster/errors"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/freshkart/storefront/internal/domain/product"
)

var _ product.Repository = (*ProductRepository)(nil)

const productColumns = `id, name, slug, description, images, price, original_price,
	discount_percentage, unit, quantity, min_order_quantity, max_order_quantity,
	in_stock, low_stock_threshold, category, tags, customizations, label,
	label_color, is_active, is_featured, created_at, updated_at`

// ProductRepository implements product.Repository backed by PostgreSQL.
type ProductRepository struct {
	pool *pgxpool.Pool
}

// NewProductRepository returns a ProductRepository that uses the given pool.
func NewProductRepository(pool *pgxpool.Pool) *ProductRepository {
	return &ProductRepository{pool: pool}
}

// List returns all active products ordered by name.
func (r *ProductRepository) List(ctx context.Context) ([]product.Product, error) {
	rows, err := r.pool.Query(ctx,
		`SELECT `+productColumns+` FROM products WHERE is_active ORDER BY name, id`)
	if err != nil {
		return nil, fmt.Errorf("listing products: %w", err)
	}
	defer rows.Close()

	return scanProducts(rows)
}

// GetByID returns a single product by its identifier, inactive ones included
// so the admin surface can see them. Returns product.ErrNotFound when no
// matching product exists.
func (r *ProductRepository) GetByID(ctx context.Context, id string) (*product.Product, error) {
	row := r.pool.QueryRow(ctx,
		`SELECT `+productColumns+` FROM products WHERE id = $1`, id)

	p, err := scanProduct(row)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, product.ErrNotFound
		}
		return nil, fmt.Errorf("getting product %q: %w", id, err)
	}
	return &p, nil
}

// GetByIDs returns the active products matching the given ids in one query.
// Missing ids are simply absent from the result; an empty id list returns
// nil without touching the database.
func (r *ProductRepository) GetByIDs(ctx context.Context, ids []string) ([]product.Product, error) {
	if len(ids) == 0 {
		return nil, nil
	}

	rows, err := r.pool.Query(ctx,
		`SELECT `+productColumns+` FROM products WHERE id = ANY($1) AND is_active`, ids)
	if err != nil {
		return nil, fmt.Errorf("getting products by ids: %w", err)
	}
	defer rows.Close()

	return scanProducts(rows)
}

// Update replaces the stored product. The discount percentage is recomputed
// before writing so it can never drift from the price fields.
func (r *ProductRepository) Update(ctx context.Context, p *product.Product) error {
	p.RecomputeDiscount()

	custJSON, err := json.Marshal(p.Customizations)
	if err != nil {
		return fmt.Errorf("marshaling customizations: %w", err)
	}

	tag, err := r.pool.Exec(ctx, `
		UPDATE products SET
			name = $2, slug = $3, description = $4, images = $5, price = $6,
			original_price = $7, discount_percentage = $8, unit = $9,
			quantity = $10, min_order_quantity = $11, max_order_quantity = $12,
			in_stock = $13, low_stock_threshold = $14, category = $15,
			tags = $16, customizations = $17, label = $18, label_color = $19,
			is_active = $20, is_featured = $21, updated_at = now()
		WHERE id = $1`,
		p.ID, p.Name, p.Slug, p.Description, p.Images, p.Price,
		p.OriginalPrice, p.DiscountPercentage, p.Unit,
		p.Quantity, p.MinOrderQuantity, p.MaxOrderQuantity,
		p.InStock, p.LowStockThreshold, p.Category,
		p.Tags, custJSON, p.Label, p.LabelColor,
		p.IsActive, p.IsFeatured)
	if err != nil {
		return fmt.Errorf("updating product %q: %w", p.ID, err)
	}
	if tag.RowsAffected() == 0 {
		return product.ErrNotFound
	}
	return nil
}

// Upsert inserts the product or replaces an existing row with the same id.
// Used by seeding and the catalog feed importer.
func (r *ProductRepository) Upsert(ctx context.Context, p *product.Product) error {
	p.RecomputeDiscount()

	custJSON, err := json.Marshal(p.Customizations)
	if err != nil {
		return fmt.Errorf("marshaling customizations: %w", err)
	}

	_, err = r.pool.Exec(ctx, `
		INSERT INTO products (
			id, name, slug, description, images, price, original_price,
			discount_percentage, unit, quantity, min_order_quantity,
			max_order_quantity, in_stock, low_stock_threshold, category, tags,
			customizations, label, label_color, is_active, is_featured
		) VALUES (
			$1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11,
			$12, $13, $14, $15, $16, $17, $18, $19, $20, $21
		)
		ON CONFLICT (id) DO UPDATE SET
			name = EXCLUDED.name, slug = EXCLUDED.slug,
			description = EXCLUDED.description, images = EXCLUDED.images,
			price = EXCLUDED.price, original_price = EXCLUDED.original_price,
			discount_percentage = EXCLUDED.discount_percentage,
			unit = EXCLUDED.unit, quantity = EXCLUDED.quantity,
			min_order_quantity = EXCLUDED.min_order_quantity,
			max_order_quantity = EXCLUDED.max_order_quantity,
			in_stock = EXCLUDED.in_stock,
			low_stock_threshold = EXCLUDED.low_stock_threshold,
			category = EXCLUDED.category, tags = EXCLUDED.tags,
			customizations = EXCLUDED.customizations, label = EXCLUDED.label,
			label_color = EXCLUDED.label_color, is_active = EXCLUDED.is_active,
			is_featured = EXCLUDED.is_featured, updated_at = now()`,
		p.ID, p.Name, p.Slug, p.Description, p.Images, p.Price, p.OriginalPrice,
		p.DiscountPercentage, p.Unit, p.Quantity, p.MinOrderQuantity,
		p.MaxOrderQuantity, p.InStock, p.LowStockThreshold, p.Category, p.Tags,
		custJSON, p.Label, p.LabelColor, p.IsActive, p.IsFeatured)
	if err != nil {
		return fmt.Errorf("upserting product %q: %w", p.ID, err)
	}
	return nil
}

type rowScanner interface {
	Scan(dest ...any) error
}

func scanProduct(row rowScanner) (product.Product, error) {
	var (
		p        product.Product
		custJSON []byte
	)
	err := row.Scan(
		&p.ID, &p.Name, &p.Slug, &p.Description, &p.Images, &p.Price,
		&p.OriginalPrice, &p.DiscountPercentage, &p.Unit, &p.Quantity,
		&p.MinOrderQuantity, &p.MaxOrderQuantity, &p.InStock,
		&p.LowStockThreshold, &p.Category, &p.Tags, &custJSON, &p.Label,
		&p.LabelColor, &p.IsActive, &p.IsFeatured, &p.CreatedAt, &p.UpdatedAt,
	)
	if err != nil {
		return product.Product{}, err
	}

	if len(custJSON) > 0 {
		if err := json.Unmarshal(custJSON, &p.Customizations); err != nil {
			return product.Product{}, fmt.Errorf("unmarshaling customizations for %q: %w", p.ID, err)
		}
	}
	return p, nil
}

func scanProducts(rows pgx.Rows) ([]product.Product, error) {
	var products []product.Product
	for rows.Next() {
		p, err := scanProduct(rows)
		if err != nil {
			return nil, fmt.Errorf("scanning product: %w", err)
		}
		products = append(products, p)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("reading products: %w", err)
	}
	return products, nil
}
