package handlers

import (
	"database/sql"
	"errors"
	"fmt"
	"net/http"
	"strings"
	"time"

	"github.com/gildgrove/gildgrove-golang/internal/models"
	"github.com/gildgrove/gildgrove-golang/internal/rules"
	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
)

//
// --- Checkout ---
//

// checkoutLine is a cart line locked inside the checkout transaction.
type checkoutLine struct {
	rules.Line
	Stock int
}

// loadSelectedLines fetches the selected cart lines with current prices
// and locks the backing stock rows for this transaction.
func (h *Handlers) loadSelectedLines(tx *sql.Tx, cartID int64) ([]checkoutLine, error) {
	query := `
		SELECT ci.product_id, ci.variant_id,
		       CONCAT(p.name, IF(v.label IS NULL, '', CONCAT(' ', v.label))),
		       COALESCE(v.price, p.price),
		       ci.quantity,
		       COALESCE(v.stock, p.stock, 0)
		FROM cart_items ci
		JOIN products p ON ci.product_id = p.id
		LEFT JOIN product_variants v ON ci.variant_id = v.id
		WHERE ci.cart_id = ? AND ci.selected = 1 AND p.status = 'Active'
		FOR UPDATE`

	rows, err := tx.Query(query, cartID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var lines []checkoutLine
	for rows.Next() {
		var l checkoutLine
		if err := rows.Scan(&l.ProductID, &l.VariantID, &l.Name, &l.UnitPrice, &l.Quantity, &l.Stock); err != nil {
			return nil, err
		}
		l.Selected = true
		lines = append(lines, l)
	}
	return lines, rows.Err()
}

// resolveVoucher validates one voucher code for a checkout inside the
// transaction: code exists, correct class, validity window, claimed by
// this user and unused, usage limit not exhausted. The voucher row is
// locked so two concurrent checkouts cannot both take the last use.
func (h *Handlers) resolveVoucher(tx *sql.Tx, userID int64, code string, wantProductClass bool, now time.Time) (*models.Voucher, int, string) {
	var v models.Voucher
	query := `
		SELECT id, code, description, discount_type, discount_value, max_discount,
		       min_purchase, usage_limit, used_count, start_date, end_date
		FROM vouchers WHERE UPPER(code) = ? FOR UPDATE`

	err := tx.QueryRow(query, strings.ToUpper(code)).Scan(
		&v.ID, &v.Code, &v.Description, &v.DiscountType, &v.DiscountValue, &v.MaxDiscount,
		&v.MinPurchase, &v.UsageLimit, &v.UsedCount, &v.StartDate, &v.EndDate,
	)
	if err != nil {
		if err == sql.ErrNoRows {
			return nil, http.StatusNotFound, fmt.Sprintf("Voucher '%s' not found", code)
		}
		return nil, http.StatusInternalServerError, "Failed to look up voucher"
	}

	if v.DiscountType.ProductVoucher() != wantProductClass {
		if wantProductClass {
			return nil, http.StatusBadRequest, "A free-shipping voucher cannot be used as the product voucher"
		}
		return nil, http.StatusBadRequest, "Only a free-shipping voucher can be used as the shipping voucher"
	}

	if !rules.Active(v.Terms(), now) {
		return nil, http.StatusUnprocessableEntity, fmt.Sprintf("Voucher '%s' is not currently active", v.Code)
	}

	if v.UsageLimit != nil && v.UsedCount >= *v.UsageLimit {
		return nil, http.StatusConflict, fmt.Sprintf("Voucher '%s' has been fully redeemed", v.Code)
	}

	var claimID int64
	err = tx.QueryRow(
		"SELECT id FROM voucher_claims WHERE voucher_id = ? AND user_id = ? AND used_at IS NULL FOR UPDATE",
		v.ID, userID).Scan(&claimID)
	if err != nil {
		if err == sql.ErrNoRows {
			return nil, http.StatusUnprocessableEntity, fmt.Sprintf("Voucher '%s' is not claimed by this account or was already used", v.Code)
		}
		return nil, http.StatusInternalServerError, "Failed to check voucher claim"
	}

	return &v, 0, ""
}

// redeemVoucher marks the claim used and bumps the redemption counter.
// Must run in the same transaction that created the order.
func redeemVoucher(tx *sql.Tx, voucherID, userID int64, now time.Time) error {
	if _, err := tx.Exec(
		"UPDATE voucher_claims SET used_at = ? WHERE voucher_id = ? AND user_id = ? AND used_at IS NULL",
		now, voucherID, userID); err != nil {
		return err
	}
	_, err := tx.Exec("UPDATE vouchers SET used_count = used_count + 1, updated_at = ? WHERE id = ?", now, voucherID)
	return err
}

type CheckoutInput struct {
	PaymentMethod       string `json:"paymentMethod" binding:"required,oneof=cod card gcash maya"`
	VoucherCode         string `json:"voucherCode"`         // percentage or fixed
	ShippingVoucherCode string `json:"shippingVoucherCode"` // free_shipping only
}

// QuoteCheckout is the handler for POST /v1/checkout/quote
// It prices the selected cart lines without persisting anything, so the
// UI can render the breakdown as the customer edits. An ineligible
// voucher comes back as a warning, not an error, and is NOT dropped:
// removal stays an explicit customer action.
func (h *Handlers) QuoteCheckout(c *gin.Context) {
	userID_raw, _ := c.Get("userID")
	userID := userID_raw.(int64)

	var input struct {
		VoucherCode         string `json:"voucherCode"`
		ShippingVoucherCode string `json:"shippingVoucherCode"`
	}
	if err := c.ShouldBindJSON(&input); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	tx, err := h.DB.Begin()
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to start transaction"})
		return
	}
	defer tx.Rollback() // read-only; always rolled back

	var cartID int64
	if err := tx.QueryRow("SELECT id FROM carts WHERE user_id = ?", userID).Scan(&cartID); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Your cart is empty"})
		return
	}

	lines, err := h.loadSelectedLines(tx, cartID)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to load cart"})
		return
	}

	now := time.Now()
	var warnings []string
	var productVoucher, shippingVoucher *models.Voucher

	if input.VoucherCode != "" {
		v, status, msg := h.resolveVoucher(tx, userID, input.VoucherCode, true, now)
		if v == nil && status >= http.StatusInternalServerError {
			c.JSON(status, gin.H{"error": msg})
			return
		}
		if v == nil {
			warnings = append(warnings, msg)
		} else {
			productVoucher = v
		}
	}
	if input.ShippingVoucherCode != "" {
		v, status, msg := h.resolveVoucher(tx, userID, input.ShippingVoucherCode, false, now)
		if v == nil && status >= http.StatusInternalServerError {
			c.JSON(status, gin.H{"error": msg})
			return
		}
		if v == nil {
			warnings = append(warnings, msg)
		} else {
			shippingVoucher = v
		}
	}

	ruleLines := make([]rules.Line, len(lines))
	for i, l := range lines {
		ruleLines[i] = l.Line
	}

	// The quote flags a voucher that fell below its minimum purchase but
	// still excludes it from the math; the voucher stays selected.
	subtotal := 0.0
	for _, l := range ruleLines {
		subtotal += l.LineTotal()
	}
	if productVoucher != nil && !rules.Eligible(productVoucher.Terms(), subtotal) {
		warnings = append(warnings, fmt.Sprintf(
			"Voucher '%s' needs a minimum purchase of %.2f", productVoucher.Code, *productVoucher.MinPurchase))
		productVoucher = nil
	}
	if shippingVoucher != nil && !rules.Eligible(shippingVoucher.Terms(), subtotal) {
		warnings = append(warnings, fmt.Sprintf(
			"Voucher '%s' needs a minimum purchase of %.2f", shippingVoucher.Code, *shippingVoucher.MinPurchase))
		shippingVoucher = nil
	}

	totals := rules.ComputeTotal(ruleLines, FlatShippingFee, productVoucher.Terms(), shippingVoucher.Terms())

	c.JSON(http.StatusOK, gin.H{
		"totals":   totals,
		"warnings": warnings,
	})
}

// Checkout is the handler for POST /v1/checkout
// Everything happens in one serializable transaction: stock re-check
// under row locks, voucher redemption, order creation, stock decrement,
// cart cleanup. A voucher must not be double-spent and stock must not
// go negative under concurrent checkouts; those guarantees live here.
func (h *Handlers) Checkout(c *gin.Context) {
	userID_raw, _ := c.Get("userID")
	userID := userID_raw.(int64)

	var input CheckoutInput
	if err := c.ShouldBindJSON(&input); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	tx, err := h.DB.BeginTx(c, &sql.TxOptions{Isolation: sql.LevelSerializable})
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to start transaction"})
		return
	}
	defer tx.Rollback() // Safety net

	// 1. --- Cart & Selected Lines ---
	var cartID int64
	err = tx.QueryRow("SELECT id FROM carts WHERE user_id = ?", userID).Scan(&cartID)
	if err != nil {
		if err == sql.ErrNoRows {
			c.JSON(http.StatusBadRequest, gin.H{"error": "Your cart is empty"})
			return
		}
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to find cart"})
		return
	}

	lines, err := h.loadSelectedLines(tx, cartID)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to load cart items"})
		return
	}
	if len(lines) == 0 {
		c.JSON(http.StatusBadRequest, gin.H{"error": "No cart lines are selected for checkout"})
		return
	}

	// 2. --- Stock Check (rows are already locked) ---
	for _, l := range lines {
		if l.Stock < l.Quantity {
			c.JSON(http.StatusConflict, gin.H{"error": fmt.Sprintf("Not enough stock for '%s'", l.Name)})
			return
		}
	}

	// 3. --- Shipping Address Snapshot ---
	var addr struct {
		Line1, Line2, City, Province, Postcode sql.NullString
	}
	err = tx.QueryRow(
		"SELECT address_line1, address_line2, city, province, postcode FROM users WHERE id = ?",
		userID).Scan(&addr.Line1, &addr.Line2, &addr.City, &addr.Province, &addr.Postcode)
	if err != nil || !addr.Line1.Valid {
		c.JSON(http.StatusBadRequest, gin.H{"error": "A shipping address is required before checkout"})
		return
	}
	shippingAddress := strings.Join(nonEmpty(
		addr.Line1.String, addr.Line2.String, addr.City.String, addr.Province.String, addr.Postcode.String), ", ")

	// 4. --- Vouchers (at most one per class) ---
	now := time.Now()
	var productVoucher, shippingVoucher *models.Voucher

	if input.VoucherCode != "" {
		v, status, msg := h.resolveVoucher(tx, userID, input.VoucherCode, true, now)
		if v == nil {
			c.JSON(status, gin.H{"error": msg})
			return
		}
		productVoucher = v
	}
	if input.ShippingVoucherCode != "" {
		v, status, msg := h.resolveVoucher(tx, userID, input.ShippingVoucherCode, false, now)
		if v == nil {
			c.JSON(status, gin.H{"error": msg})
			return
		}
		shippingVoucher = v
	}

	// 5. --- Totals (confirmation hard-fails on an ineligible voucher,
	// unlike the quote which only warns) ---
	ruleLines := make([]rules.Line, len(lines))
	for i, l := range lines {
		ruleLines[i] = l.Line
	}
	subtotal := 0.0
	for _, l := range ruleLines {
		subtotal += l.LineTotal()
	}
	if productVoucher != nil && !rules.Eligible(productVoucher.Terms(), subtotal) {
		c.JSON(http.StatusUnprocessableEntity, gin.H{
			"error": fmt.Sprintf("Voucher '%s' needs a minimum purchase of %.2f", productVoucher.Code, *productVoucher.MinPurchase),
		})
		return
	}
	if shippingVoucher != nil && !rules.Eligible(shippingVoucher.Terms(), subtotal) {
		c.JSON(http.StatusUnprocessableEntity, gin.H{
			"error": fmt.Sprintf("Voucher '%s' needs a minimum purchase of %.2f", shippingVoucher.Code, *shippingVoucher.MinPurchase),
		})
		return
	}

	totals := rules.ComputeTotal(ruleLines, FlatShippingFee, productVoucher.Terms(), shippingVoucher.Terms())

	// 6. --- Create the Order ---
	orderNumber := "GG-" + strings.ToUpper(uuid.NewString()[:8])
	orderQuery := `
		INSERT INTO orders (order_number, user_id, status, payment_method,
			subtotal, shipping_fee, product_discount, shipping_discount, total,
			product_voucher_id, shipping_voucher_id, shipping_address, created_at, updated_at)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`

	result, err := tx.Exec(orderQuery,
		orderNumber, userID, rules.StatusPending, input.PaymentMethod,
		totals.Subtotal, FlatShippingFee, totals.ProductDiscount, totals.ShippingDiscount, totals.Total,
		voucherID(productVoucher), voucherID(shippingVoucher), shippingAddress, now, now)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to create order"})
		return
	}
	orderID, err := result.LastInsertId()
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to get new order ID"})
		return
	}

	// 7. --- Snapshot Items & Deduct Stock ---
	itemQuery := `
		INSERT INTO order_items (order_id, product_id, variant_id, name, unit_price, quantity, created_at)
		VALUES (?, ?, ?, ?, ?, ?, ?)`

	for _, l := range lines {
		if _, err := tx.Exec(itemQuery, orderID, l.ProductID, l.VariantID, l.Name, l.UnitPrice, l.Quantity, now); err != nil {
			c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to save order item"})
			return
		}

		if l.VariantID != nil {
			_, err = tx.Exec("UPDATE product_variants SET stock = stock - ? WHERE id = ?", l.Quantity, *l.VariantID)
		} else {
			_, err = tx.Exec("UPDATE products SET stock = stock - ? WHERE id = ?", l.Quantity, l.ProductID)
		}
		if err != nil {
			c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to deduct stock"})
			return
		}
	}

	// 8. --- Redeem Vouchers ---
	if productVoucher != nil {
		if err := redeemVoucher(tx, productVoucher.ID, userID, now); err != nil {
			c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to redeem voucher"})
			return
		}
	}
	if shippingVoucher != nil {
		if err := redeemVoucher(tx, shippingVoucher.ID, userID, now); err != nil {
			c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to redeem voucher"})
			return
		}
	}

	// 9. --- Clear the Checked-Out Lines (unselected lines survive) ---
	if _, err := tx.Exec("DELETE FROM cart_items WHERE cart_id = ? AND selected = 1", cartID); err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to clear cart"})
		return
	}

	if err := tx.Commit(); err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to commit final transaction"})
		return
	}

	c.JSON(http.StatusCreated, gin.H{
		"message":     "Order placed",
		"orderId":     orderID,
		"orderNumber": orderNumber,
		"totals":      totals,
		"status":      rules.DisplayStatus(rules.StatusPending, rules.PaymentMethod(input.PaymentMethod)),
	})
}

func voucherID(v *models.Voucher) *int64 {
	if v == nil {
		return nil
	}
	return &v.ID
}

func nonEmpty(parts ...string) []string {
	out := make([]string, 0, len(parts))
	for _, p := range parts {
		if p != "" {
			out = append(out, p)
		}
	}
	return out
}

//
// --- Customer Order Retrieval ---
//

const orderColumns = `
	id, order_number, user_id, status, payment_method,
	subtotal, shipping_fee, product_discount, shipping_discount, total,
	product_voucher_id, shipping_voucher_id, shipping_address,
	refund_requested, refund_reason, created_at, updated_at`

func scanOrder(row interface {
	Scan(dest ...interface{}) error
}) (models.Order, error) {
	var o models.Order
	err := row.Scan(
		&o.ID, &o.OrderNumber, &o.UserID, &o.Status, &o.PaymentMethod,
		&o.Subtotal, &o.ShippingFee, &o.ProductDiscount, &o.ShippingDiscount, &o.Total,
		&o.ProductVoucherID, &o.ShippingVoucherID, &o.ShippingAddress,
		&o.RefundRequested, &o.RefundReason, &o.CreatedAt, &o.UpdatedAt,
	)
	o.DisplayStatus = rules.DisplayStatus(o.Status, o.PaymentMethod)
	return o, err
}

// GetMyOrders is the handler for GET /v1/orders
// Supports ?status= for the customer order tabs. The tab key "toShip"
// maps to COD orders still pending.
func (h *Handlers) GetMyOrders(c *gin.Context) {
	userID_raw, _ := c.Get("userID")
	userID := userID_raw.(int64)

	query := "SELECT " + orderColumns + " FROM orders WHERE user_id = ?"
	args := []interface{}{userID}

	switch status := c.Query("status"); status {
	case "":
		// all tabs
	case "toShip":
		query += " AND status = 'pending' AND payment_method = 'cod'"
	default:
		query += " AND status = ?"
		args = append(args, status)
	}
	query += " ORDER BY created_at DESC"

	rows, err := h.DB.Query(query, args...)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to fetch orders"})
		return
	}
	defer rows.Close()

	var orders []models.Order
	for rows.Next() {
		o, err := scanOrder(rows)
		if err != nil {
			c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to scan order"})
			return
		}
		orders = append(orders, o)
	}

	if orders == nil {
		orders = []models.Order{}
	}
	c.JSON(http.StatusOK, gin.H{"orders": orders})
}

// GetOrderDetails is the handler for GET /v1/orders/:id
func (h *Handlers) GetOrderDetails(c *gin.Context) {
	userID_raw, _ := c.Get("userID")
	userID := userID_raw.(int64)
	orderID := c.Param("id")

	row := h.DB.QueryRow("SELECT "+orderColumns+" FROM orders WHERE id = ? AND user_id = ?", orderID, userID)
	o, err := scanOrder(row)
	if err != nil {
		if err == sql.ErrNoRows {
			c.JSON(http.StatusNotFound, gin.H{"error": "Order not found"})
			return
		}
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to fetch order"})
		return
	}

	items, err := h.fetchOrderItems(o.ID)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to fetch order items"})
		return
	}
	o.Items = items

	c.JSON(http.StatusOK, gin.H{"order": o})
}

func (h *Handlers) fetchOrderItems(orderID int64) ([]models.OrderItem, error) {
	rows, err := h.DB.Query(
		"SELECT id, order_id, product_id, variant_id, name, unit_price, quantity, created_at FROM order_items WHERE order_id = ?",
		orderID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	items := []models.OrderItem{}
	for rows.Next() {
		var it models.OrderItem
		if err := rows.Scan(&it.ID, &it.OrderID, &it.ProductID, &it.VariantID, &it.Name, &it.UnitPrice, &it.Quantity, &it.CreatedAt); err != nil {
			return nil, err
		}
		items = append(items, it)
	}
	return items, rows.Err()
}

//
// --- Customer Order Actions ---
//

// transitionOrder applies one status change under the transition table.
// It locks the order row, validates with the rule engine, and persists
// only on success; a rejection leaves the stored status untouched and
// returns 409 with the reason.
func (h *Handlers) transitionOrder(c *gin.Context, orderID string, ownerID *int64, requested rules.Status) {
	tx, err := h.DB.Begin()
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to start transaction"})
		return
	}
	defer tx.Rollback()

	var current rules.Status
	var orderUserID int64
	var query = "SELECT status, user_id FROM orders WHERE id = ? FOR UPDATE"
	err = tx.QueryRow(query, orderID).Scan(&current, &orderUserID)
	if err != nil {
		if err == sql.ErrNoRows {
			c.JSON(http.StatusNotFound, gin.H{"error": "Order not found"})
			return
		}
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to fetch order"})
		return
	}
	if ownerID != nil && orderUserID != *ownerID {
		c.JSON(http.StatusNotFound, gin.H{"error": "Order not found"})
		return
	}

	if err := rules.ValidateTransition(current, requested); err != nil {
		var ite *rules.InvalidTransitionError
		if errors.As(err, &ite) {
			c.JSON(http.StatusConflict, gin.H{"error": ite.Reason, "currentStatus": current})
			return
		}
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Status validation failed"})
		return
	}

	if _, err := tx.Exec("UPDATE orders SET status = ?, updated_at = ? WHERE id = ?", requested, time.Now(), orderID); err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to update order status"})
		return
	}

	msg := fmt.Sprintf("Your order is now '%s'", requested)
	if err := h.AddNotification(tx, orderUserID, msg, fmt.Sprintf("/orders/%s", orderID)); err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to record notification"})
		return
	}

	if err := tx.Commit(); err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to commit transaction"})
		return
	}

	c.JSON(http.StatusOK, gin.H{"message": "Order status updated", "newStatus": requested})
}

// PayOrder is the handler for POST /v1/orders/:id/pay
// Confirms payment for a non-COD order: pending -> paid.
func (h *Handlers) PayOrder(c *gin.Context) {
	userID_raw, _ := c.Get("userID")
	userID := userID_raw.(int64)
	h.transitionOrder(c, c.Param("id"), &userID, rules.StatusPaid)
}

// CancelOrder is the handler for POST /v1/orders/:id/cancel
// Legal from pending and paid; the transition table rejects the rest.
func (h *Handlers) CancelOrder(c *gin.Context) {
	userID_raw, _ := c.Get("userID")
	userID := userID_raw.(int64)
	h.transitionOrder(c, c.Param("id"), &userID, rules.StatusCancelled)
}

// ConfirmReceipt is the handler for POST /v1/orders/:id/complete
// The customer confirms delivery: shipping -> completed.
func (h *Handlers) ConfirmReceipt(c *gin.Context) {
	userID_raw, _ := c.Get("userID")
	userID := userID_raw.(int64)
	h.transitionOrder(c, c.Param("id"), &userID, rules.StatusCompleted)
}

type RefundRequestInput struct {
	Reason string `json:"reason" binding:"required"`
}

// RequestRefund is the handler for POST /v1/orders/:id/refund-request
// This flags the order for review; it is NOT a status transition. The
// transition table has no edge into 'refunded' — moving an order there
// is done by the payment collaborator once the money actually moves.
func (h *Handlers) RequestRefund(c *gin.Context) {
	userID_raw, _ := c.Get("userID")
	userID := userID_raw.(int64)
	orderID := c.Param("id")

	var input RefundRequestInput
	if err := c.ShouldBindJSON(&input); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	tx, err := h.DB.Begin()
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to start transaction"})
		return
	}
	defer tx.Rollback()

	var status rules.Status
	err = tx.QueryRow("SELECT status FROM orders WHERE id = ? AND user_id = ? FOR UPDATE", orderID, userID).Scan(&status)
	if err != nil {
		if err == sql.ErrNoRows {
			c.JSON(http.StatusNotFound, gin.H{"error": "Order not found"})
			return
		}
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to fetch order"})
		return
	}

	if status != rules.StatusCompleted {
		c.JSON(http.StatusConflict, gin.H{"error": "Only completed orders can be refunded"})
		return
	}

	result, err := tx.Exec(
		"UPDATE orders SET refund_requested = 1, refund_reason = ?, updated_at = ? WHERE id = ? AND refund_requested = 0",
		input.Reason, time.Now(), orderID)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to record refund request"})
		return
	}
	if n, _ := result.RowsAffected(); n == 0 {
		c.JSON(http.StatusConflict, gin.H{"error": "A refund has already been requested for this order"})
		return
	}

	if err := h.notifyAdmins(tx, fmt.Sprintf("Refund requested for order #%s", orderID), fmt.Sprintf("/admin/orders/%s", orderID)); err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to notify admins"})
		return
	}

	if err := tx.Commit(); err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to commit transaction"})
		return
	}

	c.JSON(http.StatusOK, gin.H{"message": "Refund request submitted"})
}

//
// --- Admin Order Management ---
//

// GetAdminOrders is the handler for GET /v1/admin/orders
// The queue is ranked by attention priority; the FIELD() ordering here
// mirrors rules.SortRank.
func (h *Handlers) GetAdminOrders(c *gin.Context) {
	query := `
		SELECT ` + orderColumns + `
		FROM orders
		ORDER BY FIELD(status, 'pending', 'shipping', 'paid', 'completed', 'refunded', 'cancelled'), created_at DESC`

	rows, err := h.DB.Query(query)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to fetch orders"})
		return
	}
	defer rows.Close()

	var orders []models.Order
	for rows.Next() {
		o, err := scanOrder(rows)
		if err != nil {
			c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to scan order"})
			return
		}
		orders = append(orders, o)
	}

	if orders == nil {
		orders = []models.Order{}
	}
	c.JSON(http.StatusOK, gin.H{"orders": orders})
}

type UpdateOrderStatusInput struct {
	Status rules.Status `json:"status" binding:"required"`
}

// UpdateOrderStatus is the handler for PATCH /v1/admin/orders/:id/status
func (h *Handlers) UpdateOrderStatus(c *gin.Context) {
	var input UpdateOrderStatusInput
	if err := c.ShouldBindJSON(&input); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	h.transitionOrder(c, c.Param("id"), nil, input.Status)
}
