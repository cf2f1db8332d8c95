package payout_controller

import (
	"context"
	"net/http"
	"os"
	"strconv"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/nexkart/marketplace/logger"
	"github.com/nexkart/marketplace/models/earnings_models"
	"github.com/nexkart/marketplace/models/payout_models"
	"github.com/nexkart/marketplace/models/user_models"
	"github.com/nexkart/marketplace/utils"
	"github.com/nexkart/marketplace/utils/mail"
)

// DefaultMinPayoutPaise is used when MIN_PAYOUT_PAISE is not configured (₹500).
const DefaultMinPayoutPaise = 50000

// Notifier is invoked after a payout is resolved. Overridable in tests.
type Notifier func(toEmail, sellerName string, payout *payout_models.PayoutRequest)

// PayoutController handles seller withdrawal requests and admin resolution.
type PayoutController struct {
	DB             *pgxpool.Pool
	MinPayoutPaise int64
	Notify         Notifier
}

func NewPayoutController(db *pgxpool.Pool) *PayoutController {
	minPaise := int64(DefaultMinPayoutPaise)
	if env := os.Getenv("MIN_PAYOUT_PAISE"); env != "" {
		parsed, err := strconv.ParseInt(env, 10, 64)
		if err != nil || parsed <= 0 {
			logger.WarnLogger.Warnf("Invalid MIN_PAYOUT_PAISE %q, using default %d", env, DefaultMinPayoutPaise)
		} else {
			minPaise = parsed
		}
	}

	return &PayoutController{
		DB:             db,
		MinPayoutPaise: minPaise,
		Notify:         mail.SendPayoutResolvedEmail,
	}
}

// RequestPayoutBody is the seller withdrawal payload.
type RequestPayoutBody struct {
	AmountPaise int64 `json:"amount_paise" binding:"required,gt=0"`
}

// RequestPayout - POST /sellers/payouts
func (pc *PayoutController) RequestPayout(c *gin.Context) {
	sellerID, err := utils.GetUserIDFromContext(c)
	if err != nil {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "unauthorized"})
		return
	}

	var req RequestPayoutBody
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid request: " + err.Error()})
		return
	}

	payout, err := payout_models.CreatePayoutRequest(c.Request.Context(), pc.DB, sellerID, req.AmountPaise, pc.MinPayoutPaise)
	if err != nil {
		logger.ErrorLogger.Errorf("Payout request failed for seller %s: %v", sellerID, err)
		c.JSON(utils.StatusForError(err), gin.H{"error": err.Error()})
		return
	}

	c.JSON(http.StatusCreated, gin.H{"payout": payout})
}

// GetEarnings - GET /sellers/earnings
func (pc *PayoutController) GetEarnings(c *gin.Context) {
	sellerID, err := utils.GetUserIDFromContext(c)
	if err != nil {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "unauthorized"})
		return
	}

	earnings, err := earnings_models.GetSellerEarnings(c.Request.Context(), pc.DB, sellerID)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to compute earnings"})
		return
	}

	c.JSON(http.StatusOK, gin.H{"earnings": earnings, "min_payout_paise": pc.MinPayoutPaise})
}

// ListMyPayouts - GET /sellers/payouts
func (pc *PayoutController) ListMyPayouts(c *gin.Context) {
	sellerID, err := utils.GetUserIDFromContext(c)
	if err != nil {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "unauthorized"})
		return
	}

	payouts, err := payout_models.ListPayoutsBySeller(c.Request.Context(), pc.DB, sellerID)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to list payouts"})
		return
	}

	c.JSON(http.StatusOK, gin.H{"payouts": payouts})
}

// ListPayouts - GET /admin/payouts?status=pending
func (pc *PayoutController) ListPayouts(c *gin.Context) {
	status := c.DefaultQuery("status", payout_models.PayoutStatusPending)

	payouts, err := payout_models.ListPayoutsByStatus(c.Request.Context(), pc.DB, status)
	if err != nil {
		c.JSON(utils.StatusForError(err), gin.H{"error": err.Error()})
		return
	}

	c.JSON(http.StatusOK, gin.H{"payouts": payouts})
}

// ApprovePayoutBody carries the manual bank transfer reference recorded by
// the admin. The service never moves money itself.
type ApprovePayoutBody struct {
	PaymentReference string `json:"payment_reference" binding:"required"`
	Notes            string `json:"notes,omitempty"`
}

// ApprovePayout - PATCH /admin/payouts/:payout_id/approve
func (pc *PayoutController) ApprovePayout(c *gin.Context) {
	adminID, err := utils.GetUserIDFromContext(c)
	if err != nil {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "unauthorized"})
		return
	}

	payoutID, err := uuid.Parse(c.Param("payout_id"))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "valid payout_id required"})
		return
	}

	var req ApprovePayoutBody
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "payment_reference required"})
		return
	}

	payout, err := payout_models.ApprovePayout(c.Request.Context(), pc.DB, payoutID, adminID, req.PaymentReference, req.Notes)
	if err != nil {
		c.JSON(utils.StatusForError(err), gin.H{"error": err.Error()})
		return
	}

	pc.notifySeller(c.Request.Context(), payout)
	c.JSON(http.StatusOK, gin.H{"payout": payout})
}

// RejectPayoutBody carries the admin's rejection reason.
type RejectPayoutBody struct {
	Reason string `json:"reason" binding:"required"`
}

// RejectPayout - PATCH /admin/payouts/:payout_id/reject
func (pc *PayoutController) RejectPayout(c *gin.Context) {
	adminID, err := utils.GetUserIDFromContext(c)
	if err != nil {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "unauthorized"})
		return
	}

	payoutID, err := uuid.Parse(c.Param("payout_id"))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "valid payout_id required"})
		return
	}

	var req RejectPayoutBody
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "reason required"})
		return
	}

	payout, err := payout_models.RejectPayout(c.Request.Context(), pc.DB, payoutID, adminID, req.Reason)
	if err != nil {
		c.JSON(utils.StatusForError(err), gin.H{"error": err.Error()})
		return
	}

	pc.notifySeller(c.Request.Context(), payout)
	c.JSON(http.StatusOK, gin.H{"payout": payout})
}

// notifySeller looks up the seller and dispatches the resolution notification
// in the background.
func (pc *PayoutController) notifySeller(ctx context.Context, payout *payout_models.PayoutRequest) {
	seller, err := user_models.GetUserByID(ctx, pc.DB, payout.SellerID)
	if err != nil {
		logger.ErrorLogger.Errorf("Failed to load seller %s for payout notification: %v", payout.SellerID, err)
		return
	}
	go pc.Notify(seller.Email, seller.Name, payout)
}
