package order_controller

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/nexkart/marketplace/clients"
	"github.com/nexkart/marketplace/logger"
	"github.com/nexkart/marketplace/models/order_models"
	"github.com/nexkart/marketplace/models/product_models"
	"github.com/nexkart/marketplace/pricing"
	"github.com/nexkart/marketplace/utils"
)

// OrderController handles checkout creation and payment confirmation.
type OrderController struct {
	DB      *pgxpool.Pool
	Gateway clients.RazorpayClientWrapper
}

func NewOrderController(db *pgxpool.Pool, gateway clients.RazorpayClientWrapper) *OrderController {
	return &OrderController{DB: db, Gateway: gateway}
}

// CreateOrderRequest is the checkout initiation payload.
type CreateOrderRequest struct {
	ProductID string `json:"product_id" binding:"required,uuid"`
}

// CreateOrder - POST /orders
// Validates the product, prices the purchase, registers a gateway order and
// persists the ledger record in created status.
func (oc *OrderController) CreateOrder(c *gin.Context) {
	buyerID, err := utils.GetUserIDFromContext(c)
	if err != nil {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "unauthorized"})
		return
	}

	var req CreateOrderRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid request: " + err.Error()})
		return
	}
	productID, err := uuid.Parse(req.ProductID)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid product_id"})
		return
	}

	product, err := product_models.GetProductByID(c.Request.Context(), oc.DB, productID)
	if err != nil {
		c.JSON(utils.StatusForError(err), gin.H{"error": "product not found"})
		return
	}
	if product.Status != product_models.ProductStatusApproved {
		c.JSON(http.StatusUnprocessableEntity, gin.H{"error": "product is not available for purchase"})
		return
	}

	quote, err := pricing.NewQuote(product.PricePaise, product.DiscountPercent)
	if err != nil {
		logger.ErrorLogger.Errorf("Failed to price product %s: %v", productID, err)
		c.JSON(utils.StatusForError(err), gin.H{"error": "failed to price order"})
		return
	}

	// The gateway collects the full buyer total including GST.
	gatewayOrder, err := oc.Gateway.CreateOrder(map[string]interface{}{
		"amount":   quote.FinalTotalPaise,
		"currency": "INR",
		"receipt":  "rcpt_" + uuid.NewString(),
		"notes": map[string]interface{}{
			"product_id": productID.String(),
			"buyer_id":   buyerID.String(),
		},
	})
	if err != nil {
		logger.ErrorLogger.Errorf("Gateway order creation failed for product %s: %v", productID, err)
		c.JSON(http.StatusBadGateway, gin.H{"error": "payment gateway error"})
		return
	}

	gatewayOrderID, ok := gatewayOrder["id"].(string)
	if !ok || gatewayOrderID == "" {
		logger.ErrorLogger.Errorf("Gateway returned no order id for product %s", productID)
		c.JSON(http.StatusBadGateway, gin.H{"error": "invalid response from gateway"})
		return
	}

	order, err := order_models.NewOrder(buyerID, product.SellerID, productID, quote, gatewayOrderID)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to create order"})
		return
	}
	if _, err := order_models.CreateOrder(c.Request.Context(), oc.DB, order); err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to create order"})
		return
	}

	c.JSON(http.StatusCreated, gin.H{
		"order":            order,
		"gateway_order_id": gatewayOrderID,
		"payable_paise":    quote.FinalTotalPaise,
		"currency":         "INR",
	})
}

// VerifyPaymentRequest is the checkout callback payload posted by the client
// after the hosted checkout completes.
type VerifyPaymentRequest struct {
	RazorpayOrderID   string `json:"razorpay_order_id" binding:"required"`
	RazorpayPaymentID string `json:"razorpay_payment_id" binding:"required"`
	RazorpaySignature string `json:"razorpay_signature" binding:"required"`
}

// VerifyPayment - POST /orders/verify
// Confirms a payment from the checkout callback. The signature check is the
// security boundary: no transition happens on a bad signature.
func (oc *OrderController) VerifyPayment(c *gin.Context) {
	var req VerifyPaymentRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid request: " + err.Error()})
		return
	}

	if !oc.Gateway.VerifyCheckoutSignature(req.RazorpayOrderID, req.RazorpayPaymentID, req.RazorpaySignature) {
		logger.ErrorLogger.Errorf("Checkout signature verification failed for order %s", req.RazorpayOrderID)
		c.JSON(utils.StatusForError(utils.ErrInvalidSignature), gin.H{"error": "invalid signature"})
		return
	}

	if err := order_models.MarkPaid(c.Request.Context(), oc.DB, req.RazorpayOrderID, req.RazorpayPaymentID); err != nil {
		c.JSON(utils.StatusForError(err), gin.H{"error": err.Error()})
		return
	}

	c.JSON(http.StatusOK, gin.H{"status": order_models.OrderStatusPaid, "gateway_order_id": req.RazorpayOrderID})
}

type webhookEvent struct {
	Event   string `json:"event"`
	Payload struct {
		Payment struct {
			Entity struct {
				ID      string `json:"id"`
				OrderID string `json:"order_id"`
			} `json:"entity"`
		} `json:"payment"`
	} `json:"payload"`
}

// PaymentWebhook - POST /payments/webhook
// Single entry point for gateway webhooks. Deliveries are at-least-once with
// no ordering guarantee; the status-guarded transitions in order_models make
// replays harmless.
func (oc *OrderController) PaymentWebhook(c *gin.Context) {
	bodyBytes, err := io.ReadAll(c.Request.Body)
	if err != nil {
		logger.ErrorLogger.Errorf("Failed to read webhook body: %v", err)
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid body"})
		return
	}

	signature := c.GetHeader("X-Razorpay-Signature")
	if signature == "" || !oc.Gateway.VerifyWebhookSignature(string(bodyBytes), signature) {
		logger.ErrorLogger.Error("Webhook signature verification failed")
		c.JSON(http.StatusUnauthorized, gin.H{"error": "invalid signature"})
		return
	}

	var event webhookEvent
	if err := json.Unmarshal(bodyBytes, &event); err != nil {
		logger.ErrorLogger.Errorf("Invalid webhook payload: %v", err)
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid payload"})
		return
	}

	ctx := c.Request.Context()

	// Record the raw event for audit and replay.
	if _, err := oc.DB.Exec(ctx,
		`INSERT INTO gateway_events (event_type, raw_payload) VALUES ($1, $2)`,
		event.Event, string(bodyBytes)); err != nil {
		logger.ErrorLogger.Errorf("Failed to log gateway event: %v", err)
	}

	switch event.Event {
	case "payment.captured", "order.paid":
		oc.handlePaymentCaptured(ctx, event)
	case "payment.failed":
		oc.handlePaymentFailed(ctx, event)
	default:
		logger.InfoLogger.Infof("Unhandled webhook event type received: %s", event.Event)
	}

	c.JSON(http.StatusOK, gin.H{"status": "processed"})
}

func (oc *OrderController) handlePaymentCaptured(ctx context.Context, event webhookEvent) {
	entity := event.Payload.Payment.Entity
	if entity.OrderID == "" {
		logger.ErrorLogger.Error("payment.captured event missing order id")
		return
	}
	if err := order_models.MarkPaid(ctx, oc.DB, entity.OrderID, entity.ID); err != nil {
		logger.ErrorLogger.Errorf("Failed to process payment.captured for %s: %v", entity.OrderID, err)
	}
}

func (oc *OrderController) handlePaymentFailed(ctx context.Context, event webhookEvent) {
	entity := event.Payload.Payment.Entity
	if entity.OrderID == "" {
		logger.ErrorLogger.Error("payment.failed event missing order id")
		return
	}
	if err := order_models.MarkFailed(ctx, oc.DB, entity.OrderID); err != nil {
		logger.ErrorLogger.Errorf("Failed to process payment.failed for %s: %v", entity.OrderID, err)
	}
}

// GetOrder - GET /orders/:order_id
func (oc *OrderController) GetOrder(c *gin.Context) {
	userID, err := utils.GetUserIDFromContext(c)
	if err != nil {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "unauthorized"})
		return
	}

	orderID, err := uuid.Parse(c.Param("order_id"))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "valid order_id required"})
		return
	}

	order, err := order_models.GetOrderByID(c.Request.Context(), oc.DB, orderID)
	if err != nil {
		c.JSON(utils.StatusForError(err), gin.H{"error": responseMessage(err)})
		return
	}
	if order.BuyerID != userID && order.SellerID != userID {
		c.JSON(http.StatusNotFound, gin.H{"error": "order not found"})
		return
	}

	c.JSON(http.StatusOK, gin.H{"order": order})
}

// ListOrders - GET /orders
func (oc *OrderController) ListOrders(c *gin.Context) {
	buyerID, err := utils.GetUserIDFromContext(c)
	if err != nil {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "unauthorized"})
		return
	}

	orders, err := order_models.ListOrdersByBuyer(c.Request.Context(), oc.DB, buyerID)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to list orders"})
		return
	}

	c.JSON(http.StatusOK, gin.H{"orders": orders})
}

func responseMessage(err error) string {
	if errors.Is(err, utils.ErrNotFound) {
		return "order not found"
	}
	return "failed to fetch order"
}
