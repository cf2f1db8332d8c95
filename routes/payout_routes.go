package routes

import (
	"github.com/gin-gonic/gin"
	"github.com/nexkart/marketplace/config/db"
	"github.com/nexkart/marketplace/controllers/payout_controller"
	middleware "github.com/nexkart/marketplace/middlewares"
	"github.com/nexkart/marketplace/middlewares/auth"
)

// RegisterPayoutRoutes registers seller earnings/withdrawal routes and the
// admin resolution queue.
func RegisterPayoutRoutes(r *gin.Engine) {
	controller := payout_controller.NewPayoutController(db.DB)

	seller := r.Group("/sellers")
	seller.Use(auth.AuthMiddleware())
	{
		seller.GET("/earnings", controller.GetEarnings)
		seller.GET("/payouts", controller.ListMyPayouts)
		seller.POST("/payouts", middleware.NewRateLimiter("5-M", "requestPayout"), controller.RequestPayout)
	}

	admin := r.Group("/admin/payouts")
	admin.Use(auth.AuthMiddleware(), auth.AdminOnly())
	{
		admin.GET("", controller.ListPayouts)
		admin.PATCH("/:payout_id/approve", controller.ApprovePayout)
		admin.PATCH("/:payout_id/reject", controller.RejectPayout)
	}
}
