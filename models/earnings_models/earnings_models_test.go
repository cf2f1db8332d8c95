package earnings_models

import (
	"context"
	"strings"
	"testing"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// fakeRow satisfies pgx.Row for a fixed set of values.
type fakeRow struct {
	values []int64
}

func (r fakeRow) Scan(dest ...any) error {
	for i, d := range dest {
		if v, ok := d.(*int64); ok {
			*v = r.values[i]
		}
	}
	return nil
}

// stubQuerier routes the earnings and reservation queries to canned sums.
type stubQuerier struct {
	gross      int64
	paidOrders int64
	reserved   int64
}

func (q stubQuerier) QueryRow(_ context.Context, sql string, _ ...any) pgx.Row {
	if strings.Contains(sql, "FROM orders") {
		return fakeRow{values: []int64{q.gross, q.paidOrders}}
	}
	return fakeRow{values: []int64{q.reserved}}
}

func TestGetSellerEarnings(t *testing.T) {
	sellerID := uuid.New()

	t.Run("AvailableIsGrossMinusReserved", func(t *testing.T) {
		e, err := GetSellerEarnings(context.Background(), stubQuerier{gross: 300000, paidOrders: 3, reserved: 100000}, sellerID)
		require.NoError(t, err)
		assert.Equal(t, int64(300000), e.GrossPaise)
		assert.Equal(t, int64(100000), e.ReservedPaise)
		assert.Equal(t, int64(200000), e.AvailablePaise)
		assert.Equal(t, int64(3), e.PaidOrders)
	})

	t.Run("NoActivityYieldsZeroes", func(t *testing.T) {
		e, err := GetSellerEarnings(context.Background(), stubQuerier{}, sellerID)
		require.NoError(t, err)
		assert.Zero(t, e.GrossPaise)
		assert.Zero(t, e.AvailablePaise)
	})

	t.Run("FullyReservedBalanceIsZero", func(t *testing.T) {
		e, err := GetSellerEarnings(context.Background(), stubQuerier{gross: 50000, paidOrders: 1, reserved: 50000}, sellerID)
		require.NoError(t, err)
		assert.Zero(t, e.AvailablePaise)
	})
}
