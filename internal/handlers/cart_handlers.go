package handlers

import (
	"database/sql"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
)

//
// --- Cart Handlers ---
//

// getOrCreateCartID finds a user's active cart or creates one.
// This is a helper function to be used within a transaction.
func (h *Handlers) getOrCreateCartID(tx *sql.Tx, userID int64) (int64, error) {
	var cartID int64

	err := tx.QueryRow("SELECT id FROM carts WHERE user_id = ?", userID).Scan(&cartID)
	if err == nil {
		return cartID, nil
	}

	if err == sql.ErrNoRows {
		now := time.Now()
		result, err := tx.Exec("INSERT INTO carts (user_id, created_at, updated_at) VALUES (?, ?, ?)", userID, now, now)
		if err != nil {
			return 0, err
		}
		return result.LastInsertId()
	}

	return 0, err
}

// availableStock returns the sellable stock for a product or, when
// variantID is set, the chosen variant. A variable product must be
// bought through one of its variants.
func availableStock(q Querier, productID int64, variantID *int64) (int, error) {
	if variantID != nil {
		var stock int
		err := q.QueryRow(
			"SELECT stock FROM product_variants WHERE id = ? AND product_id = ? AND status = 'Active'",
			*variantID, productID).Scan(&stock)
		return stock, err
	}

	var stock sql.NullInt64
	var isVariable bool
	err := q.QueryRow(
		"SELECT stock, is_variable FROM products WHERE id = ? AND status = 'Active'",
		productID).Scan(&stock, &isVariable)
	if err != nil {
		return 0, err
	}
	if isVariable || !stock.Valid {
		return 0, sql.ErrNoRows // a variant must be picked
	}
	return int(stock.Int64), nil
}

// Querier is the common subset of *sql.DB and *sql.Tx our helpers need.
type Querier interface {
	QueryRow(query string, args ...interface{}) *sql.Row
}

type AddToCartInput struct {
	ProductID int64  `json:"productId" binding:"required"`
	VariantID *int64 `json:"variantId"`
	Quantity  int    `json:"quantity" binding:"required,gt=0"`
}

// AddToCart is the handler for POST /v1/cart/items
func (h *Handlers) AddToCart(c *gin.Context) {
	userID_raw, _ := c.Get("userID")
	userID := userID_raw.(int64)

	var input AddToCartInput
	if err := c.ShouldBindJSON(&input); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid input: " + err.Error()})
		return
	}

	tx, err := h.DB.Begin()
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Transaction failed"})
		return
	}
	defer tx.Rollback()

	cartID, err := h.getOrCreateCartID(tx, userID)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Cart initialization failed"})
		return
	}

	stock, err := availableStock(tx, input.ProductID, input.VariantID)
	if err != nil {
		if err == sql.ErrNoRows {
			c.JSON(http.StatusNotFound, gin.H{"error": "Product or variant not found, inactive, or requires a variant"})
			return
		}
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Database error"})
		return
	}

	// Cap the merged quantity at available stock rather than letting
	// repeated adds overshoot it.
	var existingQty int
	err = tx.QueryRow(
		"SELECT quantity FROM cart_items WHERE cart_id = ? AND product_id = ? AND variant_id <=> ?",
		cartID, input.ProductID, input.VariantID).Scan(&existingQty)
	if err != nil && err != sql.ErrNoRows {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Database error"})
		return
	}
	if existingQty+input.Quantity > stock {
		c.JSON(http.StatusConflict, gin.H{"error": "Insufficient stock"})
		return
	}

	_, err = tx.Exec(`
		INSERT INTO cart_items (cart_id, product_id, variant_id, quantity, selected, created_at, updated_at)
		VALUES (?, ?, ?, ?, 1, NOW(), NOW())
		ON DUPLICATE KEY UPDATE
			quantity = quantity + VALUES(quantity),
			updated_at = NOW()`,
		cartID, input.ProductID, input.VariantID, input.Quantity)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to update cart"})
		return
	}

	if err := tx.Commit(); err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Commit failed"})
		return
	}

	c.JSON(http.StatusCreated, gin.H{"message": "Item added to cart"})
}

// CartLineResponse is one row of the cart page.
type CartLineResponse struct {
	ItemID       int64   `json:"itemId"`
	ProductID    int64   `json:"productId"`
	VariantID    *int64  `json:"variantId,omitempty"`
	Name         string  `json:"name"`
	VariantLabel string  `json:"variantLabel,omitempty"`
	Price        float64 `json:"price"`
	Quantity     int     `json:"quantity"`
	Selected     bool    `json:"selected"`
	LineTotal    float64 `json:"lineTotal"`
	Stock        int     `json:"stock"`
}

// GetCart is the handler for GET /v1/cart
func (h *Handlers) GetCart(c *gin.Context) {
	userID_raw, _ := c.Get("userID")
	userID := userID_raw.(int64)

	var cartID int64
	err := h.DB.QueryRow("SELECT id FROM carts WHERE user_id = ?", userID).Scan(&cartID)
	if err != nil {
		if err == sql.ErrNoRows {
			c.JSON(http.StatusOK, gin.H{"items": []CartLineResponse{}, "subtotal": 0.0, "totalItems": 0})
			return
		}
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to find cart"})
		return
	}

	// Variant price/stock win over the product's own when a variant is chosen.
	query := `
		SELECT ci.id, ci.product_id, ci.variant_id, p.name,
		       COALESCE(v.label, ''),
		       COALESCE(v.price, p.price),
		       ci.quantity, ci.selected,
		       COALESCE(v.stock, p.stock, 0)
		FROM cart_items ci
		JOIN products p ON ci.product_id = p.id
		LEFT JOIN product_variants v ON ci.variant_id = v.id
		WHERE ci.cart_id = ? AND p.status = 'Active'
		ORDER BY ci.created_at ASC`

	rows, err := h.DB.Query(query, cartID)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to query cart items"})
		return
	}
	defer rows.Close()

	var items []CartLineResponse
	var subtotal float64
	var totalItems int

	for rows.Next() {
		var line CartLineResponse
		if err := rows.Scan(
			&line.ItemID, &line.ProductID, &line.VariantID, &line.Name,
			&line.VariantLabel, &line.Price, &line.Quantity, &line.Selected, &line.Stock,
		); err != nil {
			c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to scan cart item"})
			return
		}
		line.LineTotal = line.Price * float64(line.Quantity)
		// Subtotal only counts ticked lines; unticked lines stay visible
		// but don't price into the checkout.
		if line.Selected {
			subtotal += line.LineTotal
			totalItems += line.Quantity
		}
		items = append(items, line)
	}
	if err = rows.Err(); err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Error iterating cart items"})
		return
	}

	if items == nil {
		items = []CartLineResponse{}
	}
	c.JSON(http.StatusOK, gin.H{
		"items":      items,
		"subtotal":   subtotal,
		"totalItems": totalItems,
	})
}

type UpdateCartItemInput struct {
	Quantity *int  `json:"quantity" binding:"omitempty,gte=0"`
	Selected *bool `json:"selected"`
}

// UpdateCartItem is the handler for PUT /v1/cart/items/:item_id
// Quantity 0 removes the line: a zero-quantity line is never stored.
// Raising the quantity past available stock is rejected.
func (h *Handlers) UpdateCartItem(c *gin.Context) {
	userID_raw, _ := c.Get("userID")
	userID := userID_raw.(int64)
	itemID := c.Param("item_id")

	var input UpdateCartItemInput
	if err := c.ShouldBindJSON(&input); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	if input.Quantity == nil && input.Selected == nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Nothing to update"})
		return
	}

	var cartID int64
	err := h.DB.QueryRow("SELECT id FROM carts WHERE user_id = ?", userID).Scan(&cartID)
	if err != nil {
		c.JSON(http.StatusNotFound, gin.H{"error": "Cart not found"})
		return
	}

	var productID int64
	var variantID *int64
	err = h.DB.QueryRow(
		"SELECT product_id, variant_id FROM cart_items WHERE id = ? AND cart_id = ?",
		itemID, cartID).Scan(&productID, &variantID)
	if err != nil {
		c.JSON(http.StatusNotFound, gin.H{"error": "Item not found in cart"})
		return
	}

	if input.Quantity != nil {
		if *input.Quantity == 0 {
			h.deleteCartItem(c, cartID, itemID)
			return
		}

		stock, err := availableStock(h.DB, productID, variantID)
		if err != nil {
			c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to check stock"})
			return
		}
		if *input.Quantity > stock {
			c.JSON(http.StatusConflict, gin.H{"error": "Not enough stock available for this quantity"})
			return
		}

		_, err = h.DB.Exec(
			"UPDATE cart_items SET quantity = ?, updated_at = ? WHERE id = ? AND cart_id = ?",
			*input.Quantity, time.Now(), itemID, cartID)
		if err != nil {
			c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to update item"})
			return
		}
	}

	if input.Selected != nil {
		_, err = h.DB.Exec(
			"UPDATE cart_items SET selected = ?, updated_at = ? WHERE id = ? AND cart_id = ?",
			*input.Selected, time.Now(), itemID, cartID)
		if err != nil {
			c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to update selection"})
			return
		}
	}

	c.JSON(http.StatusOK, gin.H{"message": "Cart item updated"})
}

// DeleteCartItem is the handler for DELETE /v1/cart/items/:item_id
func (h *Handlers) DeleteCartItem(c *gin.Context) {
	userID_raw, _ := c.Get("userID")
	userID := userID_raw.(int64)
	itemID := c.Param("item_id")

	var cartID int64
	err := h.DB.QueryRow("SELECT id FROM carts WHERE user_id = ?", userID).Scan(&cartID)
	if err != nil {
		c.JSON(http.StatusNotFound, gin.H{"error": "Cart not found"})
		return
	}

	h.deleteCartItem(c, cartID, itemID)
}

// deleteCartItem is a helper to DRY up the delete logic
func (h *Handlers) deleteCartItem(c *gin.Context, cartID int64, itemID string) {
	result, err := h.DB.Exec("DELETE FROM cart_items WHERE cart_id = ? AND id = ?", cartID, itemID)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to delete item"})
		return
	}

	if n, _ := result.RowsAffected(); n == 0 {
		c.JSON(http.StatusNotFound, gin.H{"error": "Item not found in cart"})
		return
	}

	c.JSON(http.StatusOK, gin.H{"message": "Cart item removed"})
}
