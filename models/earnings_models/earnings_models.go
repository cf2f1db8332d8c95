package earnings_models

import (
	"context"
	"fmt"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/nexkart/marketplace/logger"
)

// Querier is satisfied by both *pgxpool.Pool and pgx.Tx, so the balance can be
// read standalone or inside the payout reservation transaction.
type Querier interface {
	QueryRow(ctx context.Context, sql string, args ...any) pgx.Row
}

// SellerEarnings is the derived financial summary for a seller. Gross is the
// sum of seller shares over paid orders; reserved is the sum of requested
// amounts over pending and approved payouts. Rejected payouts release their
// reservation by being excluded here.
type SellerEarnings struct {
	SellerID       uuid.UUID `json:"seller_id"`
	GrossPaise     int64     `json:"gross_paise"`
	ReservedPaise  int64     `json:"reserved_paise"`
	AvailablePaise int64     `json:"available_paise"`
	PaidOrders     int64     `json:"paid_orders"`
}

// GetSellerEarnings computes the seller's earnings summary.
func GetSellerEarnings(ctx context.Context, q Querier, sellerID uuid.UUID) (*SellerEarnings, error) {
	e := &SellerEarnings{SellerID: sellerID}

	err := q.QueryRow(ctx,
		`SELECT COALESCE(SUM(seller_paise), 0), COUNT(*)
		 FROM orders
		 WHERE seller_id = $1 AND status = 'paid'`,
		sellerID).Scan(&e.GrossPaise, &e.PaidOrders)
	if err != nil {
		logger.ErrorLogger.Errorf("Failed to sum earnings for seller %s: %v", sellerID, err)
		return nil, fmt.Errorf("database error computing earnings: %w", err)
	}

	err = q.QueryRow(ctx,
		`SELECT COALESCE(SUM(requested_paise), 0)
		 FROM payout_requests
		 WHERE seller_id = $1 AND status IN ('pending', 'approved')`,
		sellerID).Scan(&e.ReservedPaise)
	if err != nil {
		logger.ErrorLogger.Errorf("Failed to sum reservations for seller %s: %v", sellerID, err)
		return nil, fmt.Errorf("database error computing reservations: %w", err)
	}

	e.AvailablePaise = e.GrossPaise - e.ReservedPaise
	return e, nil
}
