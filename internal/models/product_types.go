package models

import (
	"time"
)

// Product is the model for the 'products' table. A product either
// carries its own stock (Stock set, no variants) or spreads it across
// variants (Stock NULL, stock lives on product_variants rows).
type Product struct {
	ID          int64  `json:"id" db:"id"`
	Name        string `json:"name" db:"name"`
	Slug        string `json:"slug" db:"slug"`
	Description string `json:"description" db:"description"`
	CategoryID  *int64 `json:"categoryId,omitempty" db:"category_id"`

	// --- Pricing & Stock ---
	Price float64 `json:"price" db:"price"`
	Stock *int    `json:"stock,omitempty" db:"stock"` // NULL when all stock lives on variants

	// --- Configuration ---
	IsVariable bool   `json:"isVariable" db:"is_variable"`
	Status     string `json:"status" db:"status"` // 'Active' or 'Inactive'

	// --- Media ---
	Images []string `json:"images" db:"-"` // Stored as JSON in the 'images' column

	CreatedAt time.Time `json:"createdAt" db:"created_at"`
	UpdatedAt time.Time `json:"updatedAt" db:"updated_at"`

	// Joins (Not in DB table, populated manually)
	Variants     []ProductVariant `json:"variants,omitempty" db:"-"`
	CategoryName string           `json:"categoryName,omitempty" db:"-"`
	AvgRating    float64          `json:"avgRating" db:"-"`
	ReviewCount  int              `json:"reviewCount" db:"-"`
}

// ProductVariant is the model for the 'product_variants' table.
// Label is the volume/size the customer picks (e.g. "50ml", "100ml").
type ProductVariant struct {
	ID        int64     `json:"id" db:"id"`
	ProductID int64     `json:"productId" db:"product_id"`
	Label     string    `json:"label" db:"label"`
	Price     float64   `json:"price" db:"price"`
	Stock     int       `json:"stock" db:"stock"`
	Status    string    `json:"status" db:"status"` // 'Active' or 'Inactive'
	CreatedAt time.Time `json:"createdAt" db:"created_at"`
	UpdatedAt time.Time `json:"updatedAt" db:"updated_at"`
}

// Category is the model for the 'categories' table (scent families,
// body care lines, gift sets).
type Category struct {
	ID   int64  `json:"id" db:"id"`
	Name string `json:"name" db:"name"`
	Slug string `json:"slug" db:"slug"`
}
