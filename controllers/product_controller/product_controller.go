package product_controller

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/nexkart/marketplace/models/product_models"
	"github.com/nexkart/marketplace/utils"
)

// ProductController handles listing moderation.
type ProductController struct {
	DB *pgxpool.Pool
}

func NewProductController(db *pgxpool.Pool) *ProductController {
	return &ProductController{DB: db}
}

// GetProduct - GET /products/:product_id
func (pc *ProductController) GetProduct(c *gin.Context) {
	productID, err := uuid.Parse(c.Param("product_id"))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "valid product_id required"})
		return
	}

	product, err := product_models.GetProductByID(c.Request.Context(), pc.DB, productID)
	if err != nil {
		c.JSON(utils.StatusForError(err), gin.H{"error": "product not found"})
		return
	}

	c.JSON(http.StatusOK, gin.H{"product": product})
}

// ApproveProduct - PATCH /admin/products/:product_id/approve
func (pc *ProductController) ApproveProduct(c *gin.Context) {
	pc.moderate(c, product_models.ProductStatusApproved)
}

// RejectProduct - PATCH /admin/products/:product_id/reject
func (pc *ProductController) RejectProduct(c *gin.Context) {
	pc.moderate(c, product_models.ProductStatusRejected)
}

func (pc *ProductController) moderate(c *gin.Context, status string) {
	productID, err := uuid.Parse(c.Param("product_id"))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "valid product_id required"})
		return
	}

	if err := product_models.SetProductStatus(c.Request.Context(), pc.DB, productID, status); err != nil {
		c.JSON(utils.StatusForError(err), gin.H{"error": err.Error()})
		return
	}

	c.JSON(http.StatusOK, gin.H{"product_id": productID, "status": status})
}
