package postgres

import (
	"context"
	"database/sql"
	"encoding/json"

	"github.com/google/uuid"
	"github.com/lib/pq"
	"go.uber.org/zap"

	"github.com/ikonicity-airban/geek-creations-sub000/internal/domain"
	"github.com/ikonicity-airban/geek-creations-sub000/pkg/errors"
)

type productRepository struct {
	db     *sql.DB
	logger *zap.Logger
}

// NewProductRepository creates a new product repository
func NewProductRepository(db *sql.DB, logger *zap.Logger) *productRepository {
	return &productRepository{
		db:     db,
		logger: logger,
	}
}

func (r *productRepository) GetByHandle(ctx context.Context, handle string) (*domain.Product, error) {
	query := `
		SELECT id, handle, title, description, images, metadata, is_active, created_at, updated_at
		FROM products
		WHERE handle = $1 AND is_active = true
	`

	product, err := r.scanProduct(r.db.QueryRowContext(ctx, query, handle))
	if err == sql.ErrNoRows {
		return nil, &errors.ErrNotFound{Resource: "product", ID: handle}
	}
	if err != nil {
		r.logger.Error("Failed to get product by handle", zap.Error(err), zap.String("handle", handle))
		return nil, err
	}

	if err := r.loadVariants(ctx, product); err != nil {
		return nil, err
	}

	return product, nil
}

// GetBySKU resolves a product through one of its variant SKUs. Used to look
// up the fulfillment-provider hint for a webhook line item.
func (r *productRepository) GetBySKU(ctx context.Context, sku string) (*domain.Product, error) {
	query := `
		SELECT p.id, p.handle, p.title, p.description, p.images, p.metadata, p.is_active, p.created_at, p.updated_at
		FROM products p
		JOIN product_variants v ON v.product_id = p.id
		WHERE v.sku = $1
		LIMIT 1
	`

	product, err := r.scanProduct(r.db.QueryRowContext(ctx, query, sku))
	if err == sql.ErrNoRows {
		return nil, &errors.ErrNotFound{Resource: "product", ID: sku}
	}
	if err != nil {
		r.logger.Error("Failed to get product by SKU", zap.Error(err), zap.String("sku", sku))
		return nil, err
	}

	if err := r.loadVariants(ctx, product); err != nil {
		return nil, err
	}

	return product, nil
}

func (r *productRepository) List(ctx context.Context, limit, offset int) ([]*domain.Product, error) {
	query := `
		SELECT id, handle, title, description, images, metadata, is_active, created_at, updated_at
		FROM products
		WHERE is_active = true
		ORDER BY created_at DESC
		LIMIT $1 OFFSET $2
	`

	rows, err := r.db.QueryContext(ctx, query, limit, offset)
	if err != nil {
		r.logger.Error("Failed to list products", zap.Error(err))
		return nil, err
	}
	defer rows.Close()

	var products []*domain.Product
	for rows.Next() {
		product, err := r.scanProduct(rows)
		if err != nil {
			return nil, err
		}
		products = append(products, product)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}

	for _, p := range products {
		if err := r.loadVariants(ctx, p); err != nil {
			return nil, err
		}
	}

	return products, nil
}

func (r *productRepository) ListDesigns(ctx context.Context, limit, offset int) ([]*domain.Design, error) {
	query := `
		SELECT id, title, preview_url, product_id, created_at
		FROM designs
		ORDER BY created_at DESC
		LIMIT $1 OFFSET $2
	`

	rows, err := r.db.QueryContext(ctx, query, limit, offset)
	if err != nil {
		r.logger.Error("Failed to list designs", zap.Error(err))
		return nil, err
	}
	defer rows.Close()

	var designs []*domain.Design
	for rows.Next() {
		var design domain.Design
		var productID uuid.NullUUID

		err := rows.Scan(
			&design.ID,
			&design.Title,
			&design.PreviewURL,
			&productID,
			&design.CreatedAt,
		)
		if err != nil {
			return nil, err
		}

		if productID.Valid {
			design.ProductID = &productID.UUID
		}

		designs = append(designs, &design)
	}

	return designs, rows.Err()
}

func (r *productRepository) scanProduct(row rowScanner) (*domain.Product, error) {
	var product domain.Product
	var images pq.StringArray
	var metadataJSON []byte

	err := row.Scan(
		&product.ID,
		&product.Handle,
		&product.Title,
		&product.Description,
		&images,
		&metadataJSON,
		&product.IsActive,
		&product.CreatedAt,
		&product.UpdatedAt,
	)
	if err != nil {
		return nil, err
	}

	product.Images = images
	if len(metadataJSON) > 0 {
		if err := json.Unmarshal(metadataJSON, &product.Metadata); err != nil {
			return nil, err
		}
	}

	return &product, nil
}

func (r *productRepository) loadVariants(ctx context.Context, product *domain.Product) error {
	query := `
		SELECT id, product_id, title, sku, price, compare_at_price, inventory_quantity,
			option1, option2, option3, position
		FROM product_variants
		WHERE product_id = $1
		ORDER BY position ASC
	`

	rows, err := r.db.QueryContext(ctx, query, product.ID)
	if err != nil {
		r.logger.Error("Failed to load product variants", zap.Error(err), zap.String("product_id", product.ID.String()))
		return err
	}
	defer rows.Close()

	for rows.Next() {
		var v domain.Variant
		var compareAt sql.NullFloat64
		var option1, option2, option3 sql.NullString

		err := rows.Scan(
			&v.ID,
			&v.ProductID,
			&v.Title,
			&v.SKU,
			&v.Price,
			&compareAt,
			&v.InventoryQuantity,
			&option1,
			&option2,
			&option3,
			&v.Position,
		)
		if err != nil {
			return err
		}

		if compareAt.Valid {
			v.CompareAtPrice = &compareAt.Float64
		}
		if option1.Valid {
			v.Option1 = &option1.String
		}
		if option2.Valid {
			v.Option2 = &option2.String
		}
		if option3.Valid {
			v.Option3 = &option3.String
		}

		product.Variants = append(product.Variants, &v)
	}

	return rows.Err()
}
