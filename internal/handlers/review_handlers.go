package handlers

import (
	"database/sql"
	"net/http"
	"strings"
	"time"

	"github.com/gildgrove/gildgrove-golang/internal/models"
	"github.com/gildgrove/gildgrove-golang/internal/rules"
	"github.com/gin-gonic/gin"
)

//
// --- Review Handlers ---
//

type CreateReviewInput struct {
	OrderID int64  `json:"orderId" binding:"required"`
	Rating  int    `json:"rating" binding:"required,min=1,max=5"`
	Comment string `json:"comment"`
}

// CreateReview is the handler for POST /v1/reviews/products/:id
// Purchase-verified: the review must point at one of the customer's own
// completed orders that actually contains this product. One review per
// (product, user, order).
func (h *Handlers) CreateReview(c *gin.Context) {
	userID_raw, _ := c.Get("userID")
	userID := userID_raw.(int64)
	productID := c.Param("id")

	var input CreateReviewInput
	if err := c.ShouldBindJSON(&input); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	var status rules.Status
	err := h.DB.QueryRow(
		"SELECT status FROM orders WHERE id = ? AND user_id = ?",
		input.OrderID, userID).Scan(&status)
	if err != nil {
		if err == sql.ErrNoRows {
			c.JSON(http.StatusNotFound, gin.H{"error": "Order not found"})
			return
		}
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to verify order"})
		return
	}
	if status != rules.StatusCompleted {
		c.JSON(http.StatusForbidden, gin.H{"error": "You can only review products from completed orders"})
		return
	}

	var itemCount int
	err = h.DB.QueryRow(
		"SELECT COUNT(*) FROM order_items WHERE order_id = ? AND product_id = ?",
		input.OrderID, productID).Scan(&itemCount)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to verify purchase"})
		return
	}
	if itemCount == 0 {
		c.JSON(http.StatusForbidden, gin.H{"error": "This order does not contain that product"})
		return
	}

	_, err = h.DB.Exec(
		"INSERT INTO reviews (product_id, user_id, order_id, rating, comment, created_at) VALUES (?, ?, ?, ?, ?, ?)",
		productID, userID, input.OrderID, input.Rating, input.Comment, time.Now())
	if err != nil {
		if strings.Contains(err.Error(), "1062") {
			c.JSON(http.StatusConflict, gin.H{"error": "You have already reviewed this product for this order"})
			return
		}
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to save review"})
		return
	}

	c.JSON(http.StatusCreated, gin.H{"message": "Review submitted"})
}

// ListProductReviews is the handler for GET /v1/products/:slug/reviews
func (h *Handlers) ListProductReviews(c *gin.Context) {
	var productID int64
	err := h.DB.QueryRow("SELECT id FROM products WHERE slug = ?", c.Param("slug")).Scan(&productID)
	if err != nil {
		if err == sql.ErrNoRows {
			c.JSON(http.StatusNotFound, gin.H{"error": "Product not found"})
			return
		}
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to find product"})
		return
	}

	query := `
		SELECT r.id, r.product_id, r.user_id, r.order_id, r.rating, r.comment, r.created_at,
		       u.full_name
		FROM reviews r
		JOIN users u ON r.user_id = u.id
		WHERE r.product_id = ?
		ORDER BY r.created_at DESC`

	rows, err := h.DB.Query(query, productID)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to fetch reviews"})
		return
	}
	defer rows.Close()

	var reviews []models.Review
	for rows.Next() {
		var r models.Review
		if err := rows.Scan(&r.ID, &r.ProductID, &r.UserID, &r.OrderID, &r.Rating, &r.Comment, &r.CreatedAt, &r.CustomerName); err != nil {
			c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to scan review"})
			return
		}
		reviews = append(reviews, r)
	}

	var summary struct {
		Average sql.NullFloat64
		Count   int
	}
	err = h.DB.QueryRow(
		"SELECT AVG(rating), COUNT(*) FROM reviews WHERE product_id = ?", productID).
		Scan(&summary.Average, &summary.Count)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to summarize reviews"})
		return
	}

	if reviews == nil {
		reviews = []models.Review{}
	}
	c.JSON(http.StatusOK, gin.H{
		"reviews":       reviews,
		"averageRating": summary.Average.Float64,
		"reviewCount":   summary.Count,
	})
}
