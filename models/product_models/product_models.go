package product_models

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/nexkart/marketplace/logger"
	"github.com/nexkart/marketplace/utils"
)

// Product listing status constants
const (
	ProductStatusPending  = "pending"
	ProductStatusApproved = "approved"
	ProductStatusRejected = "rejected"
)

// Product is a digital-goods listing. Prices are stored in paise.
type Product struct {
	ID              uuid.UUID `json:"id"`
	SellerID        uuid.UUID `json:"seller_id"`
	Name            string    `json:"name"`
	PricePaise      int64     `json:"price_paise"`
	DiscountPercent int       `json:"discount_percent"`
	Status          string    `json:"status"`
	CreatedAt       time.Time `json:"created_at"`
	UpdatedAt       time.Time `json:"updated_at"`
}

func IsValidProductStatus(status string) bool {
	switch status {
	case ProductStatusPending, ProductStatusApproved, ProductStatusRejected:
		return true
	default:
		return false
	}
}

// GetProductByID fetches a single product.
func GetProductByID(ctx context.Context, db *pgxpool.Pool, productID uuid.UUID) (*Product, error) {
	p := &Product{}
	query := `
		SELECT id, seller_id, name, price_paise, discount_percent, status, created_at, updated_at
		FROM products
		WHERE id = $1`

	err := db.QueryRow(ctx, query, productID).Scan(
		&p.ID, &p.SellerID, &p.Name, &p.PricePaise, &p.DiscountPercent,
		&p.Status, &p.CreatedAt, &p.UpdatedAt,
	)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, fmt.Errorf("product %s: %w", productID, utils.ErrNotFound)
		}
		logger.ErrorLogger.Errorf("Failed to fetch product %s: %v", productID, err)
		return nil, fmt.Errorf("database error fetching product: %w", err)
	}
	return p, nil
}

// SetProductStatus moves a listing to the given moderation status.
func SetProductStatus(ctx context.Context, db *pgxpool.Pool, productID uuid.UUID, status string) error {
	if !IsValidProductStatus(status) {
		return fmt.Errorf("%w: unknown product status %q", utils.ErrValidation, status)
	}

	cmdTag, err := db.Exec(ctx,
		`UPDATE products SET status = $1, updated_at = NOW() WHERE id = $2`,
		status, productID)
	if err != nil {
		logger.ErrorLogger.Errorf("Failed to update product %s status: %v", productID, err)
		return fmt.Errorf("failed to update product status: %w", err)
	}
	if cmdTag.RowsAffected() == 0 {
		return fmt.Errorf("product %s: %w", productID, utils.ErrNotFound)
	}

	logger.InfoLogger.Infof("Product %s moved to status %s", productID, status)
	return nil
}
