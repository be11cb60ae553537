package postgres

import (
	"context"
	"database/sql"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/ikonicity-airban/geek-creations-sub000/internal/domain"
)

type lineItemRepository struct {
	db     *sql.DB
	logger *zap.Logger
}

// NewLineItemRepository creates a new line item repository
func NewLineItemRepository(db *sql.DB, logger *zap.Logger) *lineItemRepository {
	return &lineItemRepository{
		db:     db,
		logger: logger,
	}
}

func (r *lineItemRepository) CreateBatch(ctx context.Context, items []*domain.LineItem) error {
	if len(items) == 0 {
		return nil
	}

	tx, err := r.db.BeginTx(ctx, nil)
	if err != nil {
		return err
	}
	defer tx.Rollback()

	query := `
		INSERT INTO order_line_items (
			id, order_id, title, variant_title, sku, quantity, unit_price,
			variant_id, product_id, preview_url, provider, created_at
		)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12)
	`

	now := time.Now()
	for _, item := range items {
		if item.ID == uuid.Nil {
			item.ID = uuid.New()
		}
		if item.CreatedAt.IsZero() {
			item.CreatedAt = now
		}
		_, err := tx.ExecContext(ctx, query,
			item.ID,
			item.OrderID,
			item.Title,
			item.VariantTitle,
			item.SKU,
			item.Quantity,
			item.UnitPrice,
			item.VariantID,
			item.ProductID,
			item.PreviewURL,
			item.Provider,
			item.CreatedAt,
		)
		if err != nil {
			r.logger.Error("Failed to create order line item", zap.Error(err), zap.String("sku", item.SKU))
			return err
		}
	}

	return tx.Commit()
}

func (r *lineItemRepository) GetByOrderID(ctx context.Context, orderID uuid.UUID) ([]*domain.LineItem, error) {
	query := `
		SELECT id, order_id, title, variant_title, sku, quantity, unit_price,
			variant_id, product_id, preview_url, provider, created_at
		FROM order_line_items
		WHERE order_id = $1
		ORDER BY created_at ASC
	`

	rows, err := r.db.QueryContext(ctx, query, orderID)
	if err != nil {
		r.logger.Error("Failed to get line items by order ID", zap.Error(err))
		return nil, err
	}
	defer rows.Close()

	var items []*domain.LineItem
	for rows.Next() {
		var item domain.LineItem
		var variantID sql.NullInt64
		var productID sql.NullInt64
		var previewURL sql.NullString
		var provider sql.NullString

		err := rows.Scan(
			&item.ID,
			&item.OrderID,
			&item.Title,
			&item.VariantTitle,
			&item.SKU,
			&item.Quantity,
			&item.UnitPrice,
			&variantID,
			&productID,
			&previewURL,
			&provider,
			&item.CreatedAt,
		)
		if err != nil {
			return nil, err
		}

		if variantID.Valid {
			item.VariantID = &variantID.Int64
		}
		if productID.Valid {
			item.ProductID = &productID.Int64
		}
		if previewURL.Valid {
			item.PreviewURL = &previewURL.String
		}
		if provider.Valid {
			item.Provider = &provider.String
		}

		items = append(items, &item)
	}

	return items, rows.Err()
}

func (r *lineItemRepository) UpdateProvider(ctx context.Context, id uuid.UUID, provider string) error {
	query := `UPDATE order_line_items SET provider = $2 WHERE id = $1`

	_, err := r.db.ExecContext(ctx, query, id, provider)
	if err != nil {
		r.logger.Error("Failed to update line item provider", zap.Error(err), zap.String("line_item_id", id.String()))
		return err
	}
	return nil
}
