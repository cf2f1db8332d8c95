package routes

import (
	"os"

	"github.com/gin-gonic/gin"
	"github.com/nexkart/marketplace/clients"
	"github.com/nexkart/marketplace/config/db"
	"github.com/nexkart/marketplace/controllers/order_controller"
	"github.com/nexkart/marketplace/logger"
	"github.com/nexkart/marketplace/middlewares/auth"
)

// RegisterOrderRoutes registers checkout, confirmation and history routes.
func RegisterOrderRoutes(r *gin.Engine) {
	keyID := os.Getenv("RAZORPAY_KEY_ID")
	keySecret := os.Getenv("RAZORPAY_KEY_SECRET")
	webhookSecret := os.Getenv("RAZORPAY_WEBHOOK_SECRET")
	if keyID == "" || keySecret == "" || webhookSecret == "" {
		logger.ErrorLogger.Fatal("Required Razorpay credentials not set")
	}

	gateway := clients.NewRazorpayClient(keyID, keySecret, webhookSecret)
	controller := order_controller.NewOrderController(db.DB, gateway)

	protected := r.Group("/orders")
	protected.Use(auth.AuthMiddleware())
	{
		protected.POST("", controller.CreateOrder)
		protected.POST("/verify", controller.VerifyPayment)
		protected.GET("", controller.ListOrders)
		protected.GET("/:order_id", controller.GetOrder)
	}

	// Webhook route has no auth middleware; authenticity comes from the
	// gateway signature.
	r.POST("/payments/webhook", controller.PaymentWebhook)
}
