package routes

import (
	"github.com/gin-gonic/gin"
	"github.com/nexkart/marketplace/config/db"
	"github.com/nexkart/marketplace/controllers/product_controller"
	"github.com/nexkart/marketplace/middlewares/auth"
)

// RegisterProductRoutes registers product lookup and admin moderation routes.
func RegisterProductRoutes(r *gin.Engine) {
	controller := product_controller.NewProductController(db.DB)

	r.GET("/products/:product_id", controller.GetProduct)

	admin := r.Group("/admin/products")
	admin.Use(auth.AuthMiddleware(), auth.AdminOnly())
	{
		admin.PATCH("/:product_id/approve", controller.ApproveProduct)
		admin.PATCH("/:product_id/reject", controller.RejectProduct)
	}
}
