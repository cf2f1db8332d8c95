// Package pricing holds the marketplace money arithmetic. All amounts are
// int64 paise; percentages are applied with half-up integer rounding so the
// stored totals always equal the displayed totals.
package pricing

import (
	"fmt"

	"github.com/nexkart/marketplace/utils"
)

// Charge percentages. These mirror the marketplace fee schedule and are fixed
// at compile time, not configuration.
const (
	BuyerGSTPercent      = 5  // GST on the buyer's purchase total
	PlatformFeePercent   = 2  // marketplace commission per sale
	CommissionGSTPercent = 18 // GST on the platform commission, charged at payout
)

// Quote is the buyer-facing price breakdown for a single product purchase.
type Quote struct {
	BasePricePaise          int64 `json:"base_price_paise"`
	DiscountPercent         int   `json:"discount_percent"`
	PriceAfterDiscountPaise int64 `json:"price_after_discount_paise"`
	GSTPaise                int64 `json:"gst_paise"`
	PlatformFeePaise        int64 `json:"platform_fee_paise"`
	FinalTotalPaise         int64 `json:"final_total_paise"`
}

// PayoutBreakdown is the deduction schedule applied to a seller withdrawal.
// The platform commission was already retained per order; at payout time the
// seller bears only the GST on that commission.
type PayoutBreakdown struct {
	RequestedPaise          int64 `json:"requested_paise"`
	PlatformCommissionPaise int64 `json:"platform_commission_paise"`
	GSTOnCommissionPaise    int64 `json:"gst_on_commission_paise"`
	TotalDeductionsPaise    int64 `json:"total_deductions_paise"`
	NetPayablePaise         int64 `json:"net_payable_paise"`
}

// percentOf applies pct to amount with half-up rounding. amount must be
// non-negative.
func percentOf(amount int64, pct int64) int64 {
	return (amount*pct + 50) / 100
}

// NewQuote computes the full buyer price breakdown for a base price and
// discount percentage.
func NewQuote(basePricePaise int64, discountPercent int) (Quote, error) {
	if basePricePaise <= 0 {
		return Quote{}, fmt.Errorf("%w: base price must be positive", utils.ErrValidation)
	}
	if discountPercent < 0 || discountPercent > 100 {
		return Quote{}, fmt.Errorf("%w: discount percent must be between 0 and 100", utils.ErrValidation)
	}

	priceAfterDiscount := percentOf(basePricePaise, int64(100-discountPercent))
	gst := percentOf(priceAfterDiscount, BuyerGSTPercent)
	platformFee := percentOf(priceAfterDiscount, PlatformFeePercent)

	return Quote{
		BasePricePaise:          basePricePaise,
		DiscountPercent:         discountPercent,
		PriceAfterDiscountPaise: priceAfterDiscount,
		GSTPaise:                gst,
		PlatformFeePaise:        platformFee,
		FinalTotalPaise:         priceAfterDiscount + gst + platformFee,
	}, nil
}

// NewPayoutBreakdown computes the deduction schedule for a withdrawal of the
// given amount.
func NewPayoutBreakdown(requestedPaise int64) (PayoutBreakdown, error) {
	if requestedPaise <= 0 {
		return PayoutBreakdown{}, fmt.Errorf("%w: requested amount must be positive", utils.ErrValidation)
	}

	commission := percentOf(requestedPaise, PlatformFeePercent)
	gstOnCommission := percentOf(commission, CommissionGSTPercent)

	return PayoutBreakdown{
		RequestedPaise:          requestedPaise,
		PlatformCommissionPaise: commission,
		GSTOnCommissionPaise:    gstOnCommission,
		TotalDeductionsPaise:    gstOnCommission,
		NetPayablePaise:         requestedPaise - gstOnCommission,
	}, nil
}
