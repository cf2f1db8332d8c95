package order_models

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/nexkart/marketplace/logger"
	"github.com/nexkart/marketplace/pricing"
	"github.com/nexkart/marketplace/utils"
)

// Querier is the subset of *pgxpool.Pool the single-record operations use.
// pgx.Tx satisfies it too.
type Querier interface {
	Exec(ctx context.Context, sql string, args ...any) (pgconn.CommandTag, error)
	QueryRow(ctx context.Context, sql string, args ...any) pgx.Row
}

// Order status constants
const (
	OrderStatusCreated = "created"
	OrderStatusPaid    = "paid"
	OrderStatusFailed  = "failed"
)

// Order is one purchase transaction. AmountPaise is the portion split between
// seller and platform (AmountPaise = SellerPaise + PlatformFeePaise); the
// buyer GST sits on top of it, so the buyer is charged AmountPaise + GSTPaise.
// Orders are immutable after leaving the created status.
type Order struct {
	ID               uuid.UUID  `json:"id"`
	BuyerID          uuid.UUID  `json:"buyer_id"`
	SellerID         uuid.UUID  `json:"seller_id"`
	ProductID        uuid.UUID  `json:"product_id"`
	AmountPaise      int64      `json:"amount_paise"`
	PlatformFeePaise int64      `json:"platform_fee_paise"`
	GSTPaise         int64      `json:"gst_paise"`
	SellerPaise      int64      `json:"seller_paise"`
	Status           string     `json:"status"`
	GatewayOrderID   string     `json:"gateway_order_id"`
	GatewayPaymentID *string    `json:"gateway_payment_id,omitempty"`
	PaidAt           *time.Time `json:"paid_at,omitempty"`
	CreatedAt        time.Time  `json:"created_at"`
	UpdatedAt        time.Time  `json:"updated_at"`
}

// NewOrder builds an Order in created status from a price quote.
func NewOrder(buyerID, sellerID, productID uuid.UUID, q pricing.Quote, gatewayOrderID string) (*Order, error) {
	id, err := uuid.NewV7()
	if err != nil {
		return nil, fmt.Errorf("failed to generate order UUID: %w", err)
	}
	now := time.Now()
	return &Order{
		ID:               id,
		BuyerID:          buyerID,
		SellerID:         sellerID,
		ProductID:        productID,
		AmountPaise:      q.PriceAfterDiscountPaise + q.PlatformFeePaise,
		PlatformFeePaise: q.PlatformFeePaise,
		GSTPaise:         q.GSTPaise,
		SellerPaise:      q.PriceAfterDiscountPaise,
		Status:           OrderStatusCreated,
		GatewayOrderID:   gatewayOrderID,
		CreatedAt:        now,
		UpdatedAt:        now,
	}, nil
}

// CreateOrder inserts a new order record.
func CreateOrder(ctx context.Context, db Querier, o *Order) (*Order, error) {
	logger.InfoLogger.Infof("Creating order %s for buyer %s, product %s", o.ID, o.BuyerID, o.ProductID)

	query := `
		INSERT INTO orders (
			id, buyer_id, seller_id, product_id,
			amount_paise, platform_fee_paise, gst_paise, seller_paise,
			status, gateway_order_id, created_at, updated_at
		) VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12)
		RETURNING id`

	var insertedID uuid.UUID
	err := db.QueryRow(ctx, query,
		o.ID, o.BuyerID, o.SellerID, o.ProductID,
		o.AmountPaise, o.PlatformFeePaise, o.GSTPaise, o.SellerPaise,
		o.Status, o.GatewayOrderID, o.CreatedAt, o.UpdatedAt,
	).Scan(&insertedID)
	if err != nil {
		logger.ErrorLogger.Errorf("Failed to insert order for buyer %s: %v", o.BuyerID, err)
		return nil, fmt.Errorf("failed to create order: %w", err)
	}

	o.ID = insertedID
	return o, nil
}

// GetOrderByID fetches a single order.
func GetOrderByID(ctx context.Context, db Querier, orderID uuid.UUID) (*Order, error) {
	return scanOrder(db.QueryRow(ctx, selectOrder+` WHERE id = $1`, orderID), orderID.String())
}

// GetOrderByGatewayOrderID fetches an order by the payment-gateway order handle.
func GetOrderByGatewayOrderID(ctx context.Context, db Querier, gatewayOrderID string) (*Order, error) {
	return scanOrder(db.QueryRow(ctx, selectOrder+` WHERE gateway_order_id = $1`, gatewayOrderID), gatewayOrderID)
}

const selectOrder = `
	SELECT id, buyer_id, seller_id, product_id,
	       amount_paise, platform_fee_paise, gst_paise, seller_paise,
	       status, gateway_order_id, gateway_payment_id, paid_at, created_at, updated_at
	FROM orders`

func scanOrder(row pgx.Row, key string) (*Order, error) {
	o := &Order{}
	err := row.Scan(
		&o.ID, &o.BuyerID, &o.SellerID, &o.ProductID,
		&o.AmountPaise, &o.PlatformFeePaise, &o.GSTPaise, &o.SellerPaise,
		&o.Status, &o.GatewayOrderID, &o.GatewayPaymentID, &o.PaidAt, &o.CreatedAt, &o.UpdatedAt,
	)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, fmt.Errorf("order %s: %w", key, utils.ErrNotFound)
		}
		logger.ErrorLogger.Errorf("Failed to fetch order %s: %v", key, err)
		return nil, fmt.Errorf("database error fetching order: %w", err)
	}
	return o, nil
}

// ListOrdersByBuyer returns the buyer's purchase history, newest first.
func ListOrdersByBuyer(ctx context.Context, db *pgxpool.Pool, buyerID uuid.UUID) ([]Order, error) {
	rows, err := db.Query(ctx, selectOrder+` WHERE buyer_id = $1 ORDER BY created_at DESC`, buyerID)
	if err != nil {
		logger.ErrorLogger.Errorf("Failed to list orders for buyer %s: %v", buyerID, err)
		return nil, fmt.Errorf("database error listing orders: %w", err)
	}
	defer rows.Close()

	orders := []Order{}
	for rows.Next() {
		o := Order{}
		if err := rows.Scan(
			&o.ID, &o.BuyerID, &o.SellerID, &o.ProductID,
			&o.AmountPaise, &o.PlatformFeePaise, &o.GSTPaise, &o.SellerPaise,
			&o.Status, &o.GatewayOrderID, &o.GatewayPaymentID, &o.PaidAt, &o.CreatedAt, &o.UpdatedAt,
		); err != nil {
			return nil, fmt.Errorf("failed to scan order row: %w", err)
		}
		orders = append(orders, o)
	}
	return orders, rows.Err()
}

// MarkPaid transitions an order from created to paid. The guarded update makes
// duplicate gateway confirmations a no-op, so at-least-once webhook delivery
// cannot double-count earnings.
func MarkPaid(ctx context.Context, db Querier, gatewayOrderID, gatewayPaymentID string) error {
	cmdTag, err := db.Exec(ctx,
		`UPDATE orders
		 SET status = $1, gateway_payment_id = $2, paid_at = NOW(), updated_at = NOW()
		 WHERE gateway_order_id = $3 AND status = $4`,
		OrderStatusPaid, gatewayPaymentID, gatewayOrderID, OrderStatusCreated)
	if err != nil {
		logger.ErrorLogger.Errorf("Failed to mark order %s paid: %v", gatewayOrderID, err)
		return fmt.Errorf("failed to mark order paid: %w", err)
	}

	if cmdTag.RowsAffected() == 0 {
		o, err := GetOrderByGatewayOrderID(ctx, db, gatewayOrderID)
		if err != nil {
			return err
		}
		if o.Status == OrderStatusPaid {
			logger.InfoLogger.Infof("Duplicate payment confirmation for order %s ignored", gatewayOrderID)
			return nil
		}
		return fmt.Errorf("%w: order %s is %s and cannot be marked paid", utils.ErrValidation, gatewayOrderID, o.Status)
	}

	logger.InfoLogger.Infof("Payment success processed for order: %s", gatewayOrderID)
	return nil
}

// MarkFailed transitions an order from created to failed. Failed orders are
// terminal and never count toward seller earnings. A late failure callback for
// an order that already left created is ignored.
func MarkFailed(ctx context.Context, db Querier, gatewayOrderID string) error {
	cmdTag, err := db.Exec(ctx,
		`UPDATE orders SET status = $1, updated_at = NOW()
		 WHERE gateway_order_id = $2 AND status = $3`,
		OrderStatusFailed, gatewayOrderID, OrderStatusCreated)
	if err != nil {
		logger.ErrorLogger.Errorf("Failed to mark order %s failed: %v", gatewayOrderID, err)
		return fmt.Errorf("failed to mark order failed: %w", err)
	}

	if cmdTag.RowsAffected() == 0 {
		if _, err := GetOrderByGatewayOrderID(ctx, db, gatewayOrderID); err != nil {
			return err
		}
		logger.WarnLogger.Warnf("Failure callback for non-created order %s ignored", gatewayOrderID)
		return nil
	}

	logger.InfoLogger.Infof("Payment failure processed for order: %s", gatewayOrderID)
	return nil
}
