package models

import "time"

// Review is the model for the 'reviews' table. A customer may review a
// product once per completed order that contained it.
type Review struct {
	ID        int64     `json:"id" db:"id"`
	ProductID int64     `json:"productId" db:"product_id"`
	UserID    int64     `json:"userId" db:"user_id"`
	OrderID   int64     `json:"orderId" db:"order_id"`
	Rating    int       `json:"rating" db:"rating"` // 1-5
	Comment   string    `json:"comment" db:"comment"`
	CreatedAt time.Time `json:"createdAt" db:"created_at"`

	// Joins (populated manually)
	CustomerName string `json:"customerName,omitempty" db:"-"`
}
