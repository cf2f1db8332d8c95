package payout_models

import (
	"context"
	"errors"
	"os"
	"strings"
	"sync"
	"testing"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/nexkart/marketplace/logger"
	"github.com/nexkart/marketplace/utils"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const minPayout = 50000 // ₹500

func TestNewPayoutRequest(t *testing.T) {
	sellerID := uuid.New()

	t.Run("BuildsPendingRequestWithBreakdown", func(t *testing.T) {
		req, err := NewPayoutRequest(sellerID, 500000, minPayout)
		require.NoError(t, err)

		assert.Equal(t, PayoutStatusPending, req.Status)
		assert.Equal(t, sellerID, req.SellerID)
		assert.Equal(t, int64(500000), req.RequestedPaise)
		assert.Equal(t, req.RequestedPaise-req.Breakdown.TotalDeductionsPaise, req.Breakdown.NetPayablePaise)
		assert.NotEqual(t, uuid.Nil, req.ID)
		assert.Nil(t, req.PaymentReference)
		assert.Nil(t, req.RejectionReason)
	})

	t.Run("BelowMinimumThreshold", func(t *testing.T) {
		_, err := NewPayoutRequest(sellerID, minPayout-1, minPayout)
		assert.True(t, errors.Is(err, utils.ErrBelowMinimumThreshold))
	})

	t.Run("ExactlyMinimumAllowed", func(t *testing.T) {
		req, err := NewPayoutRequest(sellerID, minPayout, minPayout)
		require.NoError(t, err)
		assert.Equal(t, int64(minPayout), req.RequestedPaise)
	})

	t.Run("NonPositiveAmount", func(t *testing.T) {
		_, err := NewPayoutRequest(sellerID, 0, minPayout)
		assert.True(t, errors.Is(err, utils.ErrValidation))

		_, err = NewPayoutRequest(sellerID, -1000, minPayout)
		assert.True(t, errors.Is(err, utils.ErrValidation))
	})
}

func TestIsValidPayoutStatus(t *testing.T) {
	assert.True(t, IsValidPayoutStatus(PayoutStatusPending))
	assert.True(t, IsValidPayoutStatus(PayoutStatusApproved))
	assert.True(t, IsValidPayoutStatus(PayoutStatusRejected))
	assert.False(t, IsValidPayoutStatus("processed"))
	assert.False(t, IsValidPayoutStatus(""))
}

func TestMain(m *testing.M) {
	logger.InitLoggers()
	os.Exit(m.Run())
}

// payoutRow satisfies pgx.Row for the payout select, filling only the status.
type payoutRow struct {
	status string
	err    error
}

func (r payoutRow) Scan(dest ...any) error {
	if r.err != nil {
		return r.err
	}
	*(dest[7].(*string)) = r.status
	return nil
}

// fakePayoutDB drives the guarded resolution updates without a database.
type fakePayoutDB struct {
	execTag pgconn.CommandTag
	row     payoutRow
	execs   int
}

func (f *fakePayoutDB) Exec(_ context.Context, _ string, _ ...any) (pgconn.CommandTag, error) {
	f.execs++
	return f.execTag, nil
}

func (f *fakePayoutDB) QueryRow(_ context.Context, _ string, _ ...any) pgx.Row {
	return f.row
}

func TestApprovePayout(t *testing.T) {
	ctx := context.Background()
	payoutID := uuid.New()
	adminID := uuid.New()

	t.Run("PendingRequestApproves", func(t *testing.T) {
		db := &fakePayoutDB{
			execTag: pgconn.NewCommandTag("UPDATE 1"),
			row:     payoutRow{status: PayoutStatusApproved},
		}
		p, err := ApprovePayout(ctx, db, payoutID, adminID, "NEFT-20260831-001", "batch 12")
		require.NoError(t, err)
		assert.Equal(t, PayoutStatusApproved, p.Status)
	})

	t.Run("AlreadyResolvedConflicts", func(t *testing.T) {
		db := &fakePayoutDB{
			execTag: pgconn.NewCommandTag("UPDATE 0"),
			row:     payoutRow{status: PayoutStatusApproved},
		}
		_, err := ApprovePayout(ctx, db, payoutID, adminID, "NEFT-20260831-002", "")
		assert.True(t, errors.Is(err, utils.ErrAlreadyResolved))
	})

	t.Run("UnknownPayout", func(t *testing.T) {
		db := &fakePayoutDB{
			execTag: pgconn.NewCommandTag("UPDATE 0"),
			row:     payoutRow{err: pgx.ErrNoRows},
		}
		_, err := ApprovePayout(ctx, db, payoutID, adminID, "NEFT-20260831-003", "")
		assert.True(t, errors.Is(err, utils.ErrNotFound))
	})

	t.Run("BlankReferenceRejectedBeforeDB", func(t *testing.T) {
		db := &fakePayoutDB{}
		_, err := ApprovePayout(ctx, db, payoutID, adminID, "   ", "")
		assert.True(t, errors.Is(err, utils.ErrMissingReference))
		assert.Zero(t, db.execs)
	})
}

func TestRejectPayout(t *testing.T) {
	ctx := context.Background()
	payoutID := uuid.New()
	adminID := uuid.New()

	t.Run("PendingRequestRejects", func(t *testing.T) {
		db := &fakePayoutDB{
			execTag: pgconn.NewCommandTag("UPDATE 1"),
			row:     payoutRow{status: PayoutStatusRejected},
		}
		p, err := RejectPayout(ctx, db, payoutID, adminID, "bank details mismatch")
		require.NoError(t, err)
		assert.Equal(t, PayoutStatusRejected, p.Status)
	})

	t.Run("AlreadyResolvedConflicts", func(t *testing.T) {
		db := &fakePayoutDB{
			execTag: pgconn.NewCommandTag("UPDATE 0"),
			row:     payoutRow{status: PayoutStatusRejected},
		}
		_, err := RejectPayout(ctx, db, payoutID, adminID, "duplicate request")
		assert.True(t, errors.Is(err, utils.ErrAlreadyResolved))
	})

	t.Run("BlankReasonRejectedBeforeDB", func(t *testing.T) {
		db := &fakePayoutDB{}
		_, err := RejectPayout(ctx, db, payoutID, adminID, "")
		assert.True(t, errors.Is(err, utils.ErrValidation))
		assert.Zero(t, db.execs)
	})
}

// fakeLedger emulates the seller row lock and reservation bookkeeping so the
// concurrent withdrawal path can run without Postgres. Each transaction holds
// the seller lock from the FOR UPDATE read until commit or rollback, the same
// serialization the real row lock provides.
type fakeLedger struct {
	mu       sync.Mutex
	sellerID uuid.UUID
	gross    int64
	reserved int64
	inserts  int
}

func (l *fakeLedger) Begin(_ context.Context) (pgx.Tx, error) {
	return &fakeLedgerTx{ledger: l}, nil
}

type fakeLedgerTx struct {
	pgx.Tx
	ledger         *fakeLedger
	locked         bool
	pendingReserve int64
}

func (t *fakeLedgerTx) QueryRow(_ context.Context, sql string, _ ...any) pgx.Row {
	switch {
	case strings.Contains(sql, "FOR UPDATE"):
		t.ledger.mu.Lock()
		t.locked = true
		return idRow{id: t.ledger.sellerID}
	case strings.Contains(sql, "FROM orders"):
		return sumRow{values: []int64{t.ledger.gross, 1}}
	default:
		return sumRow{values: []int64{t.ledger.reserved}}
	}
}

func (t *fakeLedgerTx) Exec(_ context.Context, _ string, args ...any) (pgconn.CommandTag, error) {
	t.pendingReserve = args[2].(int64)
	return pgconn.NewCommandTag("INSERT 0 1"), nil
}

func (t *fakeLedgerTx) Commit(_ context.Context) error {
	t.ledger.reserved += t.pendingReserve
	t.ledger.inserts++
	t.unlock()
	return nil
}

func (t *fakeLedgerTx) Rollback(_ context.Context) error {
	t.unlock()
	return nil
}

func (t *fakeLedgerTx) unlock() {
	if t.locked {
		t.locked = false
		t.ledger.mu.Unlock()
	}
}

type idRow struct{ id uuid.UUID }

func (r idRow) Scan(dest ...any) error {
	*(dest[0].(*uuid.UUID)) = r.id
	return nil
}

type sumRow struct{ values []int64 }

func (r sumRow) Scan(dest ...any) error {
	for i := range dest {
		*(dest[i].(*int64)) = r.values[i]
	}
	return nil
}

func TestCreatePayoutRequest(t *testing.T) {
	ctx := context.Background()
	sellerID := uuid.New()

	t.Run("InsufficientBalance", func(t *testing.T) {
		ledger := &fakeLedger{sellerID: sellerID, gross: 40000}
		_, err := CreatePayoutRequest(ctx, ledger, sellerID, 50000, minPayout)
		assert.True(t, errors.Is(err, utils.ErrInsufficientBalance))
		assert.Zero(t, ledger.inserts)
	})

	t.Run("ReservationDebitsAvailableBalance", func(t *testing.T) {
		ledger := &fakeLedger{sellerID: sellerID, gross: 200000}
		req, err := CreatePayoutRequest(ctx, ledger, sellerID, 150000, minPayout)
		require.NoError(t, err)
		assert.Equal(t, int64(150000), req.RequestedPaise)
		assert.Equal(t, int64(150000), ledger.reserved)

		_, err = CreatePayoutRequest(ctx, ledger, sellerID, 100000, minPayout)
		assert.True(t, errors.Is(err, utils.ErrInsufficientBalance))
	})

	t.Run("ConcurrentRequestsReserveAtMostOnce", func(t *testing.T) {
		ledger := &fakeLedger{sellerID: sellerID, gross: 100000}

		const workers = 8
		errs := make(chan error, workers)
		var wg sync.WaitGroup
		for i := 0; i < workers; i++ {
			wg.Add(1)
			go func() {
				defer wg.Done()
				_, err := CreatePayoutRequest(ctx, ledger, sellerID, 100000, minPayout)
				errs <- err
			}()
		}
		wg.Wait()
		close(errs)

		succeeded := 0
		for err := range errs {
			if err == nil {
				succeeded++
			} else {
				assert.True(t, errors.Is(err, utils.ErrInsufficientBalance))
			}
		}
		assert.Equal(t, 1, succeeded)
		assert.Equal(t, 1, ledger.inserts)
		assert.Equal(t, int64(100000), ledger.reserved)
	})
}
