package models

import (
	"time"

	"github.com/gildgrove/gildgrove-golang/internal/rules"
)

// Order is the model for the 'orders' table. Status only ever moves
// through rules.ValidateTransition; orders are never deleted, only
// status-terminated.
type Order struct {
	ID            int64               `json:"id" db:"id"`
	OrderNumber   string              `json:"orderNumber" db:"order_number"`
	UserID        int64               `json:"userId" db:"user_id"`
	Status        rules.Status        `json:"status" db:"status"`
	PaymentMethod rules.PaymentMethod `json:"paymentMethod" db:"payment_method"`

	Subtotal         float64 `json:"subtotal" db:"subtotal"`
	ShippingFee      float64 `json:"shippingFee" db:"shipping_fee"`
	ProductDiscount  float64 `json:"productDiscount" db:"product_discount"`
	ShippingDiscount float64 `json:"shippingDiscount" db:"shipping_discount"`
	Total            float64 `json:"total" db:"total"`

	ProductVoucherID  *int64 `json:"productVoucherId,omitempty" db:"product_voucher_id"`
	ShippingVoucherID *int64 `json:"shippingVoucherId,omitempty" db:"shipping_voucher_id"`

	ShippingAddress string    `json:"shippingAddress" db:"shipping_address"`
	CreatedAt       time.Time `json:"createdAt" db:"created_at"`
	UpdatedAt       time.Time `json:"updatedAt" db:"updated_at"`

	// A refund request is a review flag, not a status transition; the
	// order stays 'completed' while it is looked at.
	RefundRequested bool    `json:"refundRequested" db:"refund_requested"`
	RefundReason    *string `json:"refundReason,omitempty" db:"refund_reason"`

	// What the customer sees: COD + pending reads "toShip". Derived at
	// serialization time, never persisted.
	DisplayStatus string `json:"displayStatus" db:"-"`

	// Joins (populated manually)
	Items        []OrderItem `json:"items,omitempty" db:"-"`
	CustomerName string      `json:"customerName,omitempty" db:"-"`
}

// OrderItem is the model for the 'order_items' table. Name and
// UnitPrice are snapshots taken at checkout so later product edits
// don't rewrite order history.
type OrderItem struct {
	ID        int64     `json:"id" db:"id"`
	OrderID   int64     `json:"orderId" db:"order_id"`
	ProductID int64     `json:"productId" db:"product_id"`
	VariantID *int64    `json:"variantId,omitempty" db:"variant_id"`
	Name      string    `json:"name" db:"name"`
	UnitPrice float64   `json:"unitPrice" db:"unit_price"`
	Quantity  int       `json:"quantity" db:"quantity"`
	CreatedAt time.Time `json:"createdAt" db:"created_at"`
}
