package payout_models

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/nexkart/marketplace/logger"
	"github.com/nexkart/marketplace/models/earnings_models"
	"github.com/nexkart/marketplace/pricing"
	"github.com/nexkart/marketplace/utils"
)

// Payout status constants
const (
	PayoutStatusPending  = "pending"
	PayoutStatusApproved = "approved"
	PayoutStatusRejected = "rejected"
)

// Querier is the subset of *pgxpool.Pool the single-record operations use.
// pgx.Tx satisfies it too.
type Querier interface {
	Exec(ctx context.Context, sql string, args ...any) (pgconn.CommandTag, error)
	QueryRow(ctx context.Context, sql string, args ...any) pgx.Row
}

// TxBeginner is the subset of *pgxpool.Pool the reservation transaction uses.
type TxBeginner interface {
	Begin(ctx context.Context) (pgx.Tx, error)
}

func IsValidPayoutStatus(status string) bool {
	switch status {
	case PayoutStatusPending, PayoutStatusApproved, PayoutStatusRejected:
		return true
	default:
		return false
	}
}

// PayoutRequest is a seller withdrawal against accumulated earnings. Once
// approved or rejected it is terminal; a rejected request releases its
// reservation (see earnings_models).
type PayoutRequest struct {
	ID               uuid.UUID               `json:"id"`
	SellerID         uuid.UUID               `json:"seller_id"`
	RequestedPaise   int64                   `json:"requested_paise"`
	Breakdown        pricing.PayoutBreakdown `json:"financial_breakdown"`
	Status           string                  `json:"status"`
	PaymentReference *string                 `json:"payment_reference,omitempty"`
	PaymentNotes     *string                 `json:"payment_notes,omitempty"`
	RejectionReason  *string                 `json:"rejection_reason,omitempty"`
	ProcessedBy      *uuid.UUID              `json:"processed_by,omitempty"`
	ProcessedAt      *time.Time              `json:"processed_at,omitempty"`
	CreatedAt        time.Time               `json:"created_at"`
	UpdatedAt        time.Time               `json:"updated_at"`
}

// NewPayoutRequest validates the requested amount against the configured
// minimum and builds a pending request with its deduction breakdown.
func NewPayoutRequest(sellerID uuid.UUID, requestedPaise, minPayoutPaise int64) (*PayoutRequest, error) {
	breakdown, err := pricing.NewPayoutBreakdown(requestedPaise)
	if err != nil {
		return nil, err
	}
	if requestedPaise < minPayoutPaise {
		return nil, fmt.Errorf("minimum payout is %d paise: %w", minPayoutPaise, utils.ErrBelowMinimumThreshold)
	}

	id, err := uuid.NewV7()
	if err != nil {
		return nil, fmt.Errorf("failed to generate payout UUID: %w", err)
	}
	now := time.Now()
	return &PayoutRequest{
		ID:             id,
		SellerID:       sellerID,
		RequestedPaise: requestedPaise,
		Breakdown:      breakdown,
		Status:         PayoutStatusPending,
		CreatedAt:      now,
		UpdatedAt:      now,
	}, nil
}

// CreatePayoutRequest runs the balance check and reservation atomically. The
// seller row is locked FOR UPDATE for the duration of the transaction, so two
// concurrent requests against the same balance serialize and the second one
// sees the first one's reservation.
func CreatePayoutRequest(ctx context.Context, db TxBeginner, sellerID uuid.UUID, requestedPaise, minPayoutPaise int64) (*PayoutRequest, error) {
	req, err := NewPayoutRequest(sellerID, requestedPaise, minPayoutPaise)
	if err != nil {
		return nil, err
	}

	tx, err := db.Begin(ctx)
	if err != nil {
		return nil, fmt.Errorf("tx begin failed: %w", err)
	}
	defer tx.Rollback(ctx)

	var lockedID uuid.UUID
	err = tx.QueryRow(ctx, `SELECT id FROM users WHERE id = $1 FOR UPDATE`, sellerID).Scan(&lockedID)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, fmt.Errorf("seller %s: %w", sellerID, utils.ErrNotFound)
		}
		return nil, fmt.Errorf("seller lock acquisition failed: %w", err)
	}

	earnings, err := earnings_models.GetSellerEarnings(ctx, tx, sellerID)
	if err != nil {
		return nil, err
	}
	if requestedPaise > earnings.AvailablePaise {
		return nil, fmt.Errorf("available balance is %d paise: %w", earnings.AvailablePaise, utils.ErrInsufficientBalance)
	}

	_, err = tx.Exec(ctx,
		`INSERT INTO payout_requests (
			id, seller_id, requested_paise,
			platform_commission_paise, gst_on_commission_paise, total_deductions_paise, net_payable_paise,
			status, created_at, updated_at
		) VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10)`,
		req.ID, req.SellerID, req.RequestedPaise,
		req.Breakdown.PlatformCommissionPaise, req.Breakdown.GSTOnCommissionPaise,
		req.Breakdown.TotalDeductionsPaise, req.Breakdown.NetPayablePaise,
		req.Status, req.CreatedAt, req.UpdatedAt)
	if err != nil {
		logger.ErrorLogger.Errorf("Failed to insert payout request for seller %s: %v", sellerID, err)
		return nil, fmt.Errorf("failed to create payout request: %w", err)
	}

	if err := tx.Commit(ctx); err != nil {
		return nil, fmt.Errorf("tx commit failed: %w", err)
	}

	logger.InfoLogger.Infof("Payout request %s created for seller %s (%d paise, net payable %d)",
		req.ID, sellerID, req.RequestedPaise, req.Breakdown.NetPayablePaise)
	return req, nil
}

const selectPayout = `
	SELECT id, seller_id, requested_paise,
	       platform_commission_paise, gst_on_commission_paise, total_deductions_paise, net_payable_paise,
	       status, payment_reference, payment_notes, rejection_reason,
	       processed_by, processed_at, created_at, updated_at
	FROM payout_requests`

func scanPayout(row pgx.Row, key string) (*PayoutRequest, error) {
	p := &PayoutRequest{}
	err := row.Scan(
		&p.ID, &p.SellerID, &p.RequestedPaise,
		&p.Breakdown.PlatformCommissionPaise, &p.Breakdown.GSTOnCommissionPaise,
		&p.Breakdown.TotalDeductionsPaise, &p.Breakdown.NetPayablePaise,
		&p.Status, &p.PaymentReference, &p.PaymentNotes, &p.RejectionReason,
		&p.ProcessedBy, &p.ProcessedAt, &p.CreatedAt, &p.UpdatedAt,
	)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, fmt.Errorf("payout %s: %w", key, utils.ErrNotFound)
		}
		logger.ErrorLogger.Errorf("Failed to fetch payout %s: %v", key, err)
		return nil, fmt.Errorf("database error fetching payout: %w", err)
	}
	p.Breakdown.RequestedPaise = p.RequestedPaise
	return p, nil
}

// GetPayoutByID fetches a single payout request.
func GetPayoutByID(ctx context.Context, db Querier, payoutID uuid.UUID) (*PayoutRequest, error) {
	return scanPayout(db.QueryRow(ctx, selectPayout+` WHERE id = $1`, payoutID), payoutID.String())
}

// ListPayoutsBySeller returns the seller's payout history, newest first.
func ListPayoutsBySeller(ctx context.Context, db *pgxpool.Pool, sellerID uuid.UUID) ([]PayoutRequest, error) {
	rows, err := db.Query(ctx, selectPayout+` WHERE seller_id = $1 ORDER BY created_at DESC`, sellerID)
	if err != nil {
		logger.ErrorLogger.Errorf("Failed to list payouts for seller %s: %v", sellerID, err)
		return nil, fmt.Errorf("database error listing payouts: %w", err)
	}
	defer rows.Close()
	return collectPayouts(rows)
}

// ListPayoutsByStatus returns the admin queue for a status, oldest first.
func ListPayoutsByStatus(ctx context.Context, db *pgxpool.Pool, status string) ([]PayoutRequest, error) {
	if !IsValidPayoutStatus(status) {
		return nil, fmt.Errorf("%w: unknown payout status %q", utils.ErrValidation, status)
	}
	rows, err := db.Query(ctx, selectPayout+` WHERE status = $1 ORDER BY created_at ASC`, status)
	if err != nil {
		logger.ErrorLogger.Errorf("Failed to list payouts with status %s: %v", status, err)
		return nil, fmt.Errorf("database error listing payouts: %w", err)
	}
	defer rows.Close()
	return collectPayouts(rows)
}

func collectPayouts(rows pgx.Rows) ([]PayoutRequest, error) {
	payouts := []PayoutRequest{}
	for rows.Next() {
		p := PayoutRequest{}
		if err := rows.Scan(
			&p.ID, &p.SellerID, &p.RequestedPaise,
			&p.Breakdown.PlatformCommissionPaise, &p.Breakdown.GSTOnCommissionPaise,
			&p.Breakdown.TotalDeductionsPaise, &p.Breakdown.NetPayablePaise,
			&p.Status, &p.PaymentReference, &p.PaymentNotes, &p.RejectionReason,
			&p.ProcessedBy, &p.ProcessedAt, &p.CreatedAt, &p.UpdatedAt,
		); err != nil {
			return nil, fmt.Errorf("failed to scan payout row: %w", err)
		}
		p.Breakdown.RequestedPaise = p.RequestedPaise
		payouts = append(payouts, p)
	}
	return payouts, rows.Err()
}

// ApprovePayout moves a pending request to approved, stamping the bank
// transfer reference and the resolving admin. The status guard on the update
// is the optimistic check: a request resolved by a concurrent admin yields
// ErrAlreadyResolved instead of double-processing.
func ApprovePayout(ctx context.Context, db Querier, payoutID, adminID uuid.UUID, paymentReference, notes string) (*PayoutRequest, error) {
	if strings.TrimSpace(paymentReference) == "" {
		return nil, utils.ErrMissingReference
	}

	var notesPtr *string
	if notes != "" {
		notesPtr = &notes
	}

	cmdTag, err := db.Exec(ctx,
		`UPDATE payout_requests
		 SET status = $1, payment_reference = $2, payment_notes = $3,
		     processed_by = $4, processed_at = NOW(), updated_at = NOW()
		 WHERE id = $5 AND status = $6`,
		PayoutStatusApproved, paymentReference, notesPtr, adminID, payoutID, PayoutStatusPending)
	if err != nil {
		logger.ErrorLogger.Errorf("Failed to approve payout %s: %v", payoutID, err)
		return nil, fmt.Errorf("failed to approve payout: %w", err)
	}
	if err := requireResolved(ctx, db, payoutID, cmdTag.RowsAffected()); err != nil {
		return nil, err
	}

	logger.InfoLogger.Infof("Payout %s approved by admin %s (reference %s)", payoutID, adminID, paymentReference)
	return GetPayoutByID(ctx, db, payoutID)
}

// RejectPayout moves a pending request to rejected with the given reason,
// releasing the reserved balance back to the seller's available pool.
func RejectPayout(ctx context.Context, db Querier, payoutID, adminID uuid.UUID, reason string) (*PayoutRequest, error) {
	if strings.TrimSpace(reason) == "" {
		return nil, fmt.Errorf("%w: rejection reason required", utils.ErrValidation)
	}

	cmdTag, err := db.Exec(ctx,
		`UPDATE payout_requests
		 SET status = $1, rejection_reason = $2,
		     processed_by = $3, processed_at = NOW(), updated_at = NOW()
		 WHERE id = $4 AND status = $5`,
		PayoutStatusRejected, reason, adminID, payoutID, PayoutStatusPending)
	if err != nil {
		logger.ErrorLogger.Errorf("Failed to reject payout %s: %v", payoutID, err)
		return nil, fmt.Errorf("failed to reject payout: %w", err)
	}
	if err := requireResolved(ctx, db, payoutID, cmdTag.RowsAffected()); err != nil {
		return nil, err
	}

	logger.InfoLogger.Infof("Payout %s rejected by admin %s: %s", payoutID, adminID, reason)
	return GetPayoutByID(ctx, db, payoutID)
}

// requireResolved distinguishes a missing payout from one already resolved
// when a guarded status update touched no rows.
func requireResolved(ctx context.Context, db Querier, payoutID uuid.UUID, rowsAffected int64) error {
	if rowsAffected > 0 {
		return nil
	}
	if _, err := GetPayoutByID(ctx, db, payoutID); err != nil {
		return err
	}
	return fmt.Errorf("payout %s: %w", payoutID, utils.ErrAlreadyResolved)
}
