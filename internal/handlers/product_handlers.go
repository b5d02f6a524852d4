package handlers

import (
	"database/sql"
	"encoding/json"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/gildgrove/gildgrove-golang/internal/models"
	"github.com/gildgrove/gildgrove-golang/internal/rules"
	"github.com/gin-gonic/gin"
	"github.com/gosimple/slug"
)

//
// --- Catalog (Public) ---
//

// GetProducts is the handler for GET /v1/products
// Supports ?category=<slug>, ?q=<search>, ?sort=price_asc|price_desc|newest
func (h *Handlers) GetProducts(c *gin.Context) {
	query := `
		SELECT p.id, p.name, p.slug, p.description, p.category_id, p.price, p.stock,
		       p.is_variable, p.status, p.images, p.created_at, p.updated_at,
		       COALESCE(c.name, ''),
		       COALESCE(r.avg_rating, 0), COALESCE(r.review_count, 0)
		FROM products p
		LEFT JOIN categories c ON p.category_id = c.id
		LEFT JOIN (
			SELECT product_id, AVG(rating) AS avg_rating, COUNT(*) AS review_count
			FROM reviews GROUP BY product_id
		) r ON r.product_id = p.id
		WHERE p.status = 'Active'`

	args := []interface{}{}

	if category := c.Query("category"); category != "" {
		query += " AND c.slug = ?"
		args = append(args, category)
	}
	if q := c.Query("q"); q != "" {
		query += " AND (p.name LIKE ? OR p.description LIKE ?)"
		like := "%" + q + "%"
		args = append(args, like, like)
	}

	switch c.Query("sort") {
	case "price_asc":
		query += " ORDER BY p.price ASC"
	case "price_desc":
		query += " ORDER BY p.price DESC"
	default:
		query += " ORDER BY p.created_at DESC"
	}

	rows, err := h.DB.Query(query, args...)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to fetch products"})
		return
	}
	defer rows.Close()

	products, err := h.scanProducts(rows)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to scan products"})
		return
	}

	c.JSON(http.StatusOK, gin.H{"products": products})
}

// GetProductBySlug is the handler for GET /v1/products/:slug
// Returns the product with its variants and review summary.
func (h *Handlers) GetProductBySlug(c *gin.Context) {
	productSlug := c.Param("slug")

	query := `
		SELECT p.id, p.name, p.slug, p.description, p.category_id, p.price, p.stock,
		       p.is_variable, p.status, p.images, p.created_at, p.updated_at,
		       COALESCE(c.name, ''),
		       COALESCE(r.avg_rating, 0), COALESCE(r.review_count, 0)
		FROM products p
		LEFT JOIN categories c ON p.category_id = c.id
		LEFT JOIN (
			SELECT product_id, AVG(rating) AS avg_rating, COUNT(*) AS review_count
			FROM reviews GROUP BY product_id
		) r ON r.product_id = p.id
		WHERE p.slug = ? AND p.status = 'Active'`

	var p models.Product
	var imagesJSON sql.NullString
	err := h.DB.QueryRow(query, productSlug).Scan(
		&p.ID, &p.Name, &p.Slug, &p.Description, &p.CategoryID, &p.Price, &p.Stock,
		&p.IsVariable, &p.Status, &imagesJSON, &p.CreatedAt, &p.UpdatedAt,
		&p.CategoryName, &p.AvgRating, &p.ReviewCount,
	)
	if err != nil {
		if err == sql.ErrNoRows {
			c.JSON(http.StatusNotFound, gin.H{"error": "Product not found"})
			return
		}
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to fetch product"})
		return
	}
	p.Images = decodeImages(imagesJSON)

	variants, err := h.fetchVariants(p.ID)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to fetch variants"})
		return
	}
	p.Variants = variants

	c.JSON(http.StatusOK, gin.H{"product": p})
}

//
// --- Admin: Product CRUD ---
//

type VariantInput struct {
	Label  string  `json:"label" binding:"required"`
	Price  float64 `json:"price" binding:"gte=0"`
	Stock  int     `json:"stock" binding:"gte=0"`
	Status string  `json:"status" binding:"omitempty,oneof=Active Inactive"`
}

type CreateProductInput struct {
	Name        string         `json:"name" binding:"required"`
	Description string         `json:"description" binding:"required"`
	CategoryID  *int64         `json:"categoryId"`
	Price       float64        `json:"price" binding:"gte=0"`
	Stock       *int           `json:"stock" binding:"omitempty,gte=0"`
	IsVariable  bool           `json:"isVariable"`
	Status      string         `json:"status" binding:"required,oneof=Active Inactive"`
	Images      []string       `json:"images"`
	Variants    []VariantInput `json:"variants,omitempty"`
}

// CreateProduct is the handler for POST /v1/admin/products
func (h *Handlers) CreateProduct(c *gin.Context) {
	var input CreateProductInput
	if err := c.ShouldBindJSON(&input); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	if input.IsVariable && len(input.Variants) == 0 {
		c.JSON(http.StatusBadRequest, gin.H{"error": "A variable product needs at least one variant"})
		return
	}
	if !input.IsVariable && input.Stock == nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "A simple product needs a stock count"})
		return
	}

	tx, err := h.DB.Begin()
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Transaction failed"})
		return
	}
	defer tx.Rollback()

	imagesJSON, _ := json.Marshal(input.Images)
	now := time.Now()

	productQuery := `
		INSERT INTO products (name, slug, description, category_id, price, stock, is_variable, status, images, created_at, updated_at)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`

	result, err := tx.Exec(productQuery,
		input.Name, h.uniqueSlug(tx, input.Name), input.Description, input.CategoryID,
		input.Price, input.Stock, input.IsVariable, input.Status, string(imagesJSON), now, now)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to create product"})
		return
	}
	productID, _ := result.LastInsertId()

	for _, v := range input.Variants {
		status := v.Status
		if status == "" {
			status = "Active"
		}
		_, err := tx.Exec(
			"INSERT INTO product_variants (product_id, label, price, stock, status, created_at, updated_at) VALUES (?, ?, ?, ?, ?, ?, ?)",
			productID, v.Label, v.Price, v.Stock, status, now, now)
		if err != nil {
			c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to create variant"})
			return
		}
	}

	if err := tx.Commit(); err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Commit failed"})
		return
	}

	c.JSON(http.StatusCreated, gin.H{"message": "Product created", "productId": productID})
}

// UpdateProduct is the handler for PUT /v1/admin/products/:id
// Variants are replaced wholesale: the admin form always submits the
// full variant list.
func (h *Handlers) UpdateProduct(c *gin.Context) {
	productID := c.Param("id")

	var input CreateProductInput
	if err := c.ShouldBindJSON(&input); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	tx, err := h.DB.Begin()
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Transaction failed"})
		return
	}
	defer tx.Rollback()

	imagesJSON, _ := json.Marshal(input.Images)
	query := `
		UPDATE products
		SET name = ?, description = ?, category_id = ?, price = ?, stock = ?,
		    is_variable = ?, status = ?, images = ?, updated_at = ?
		WHERE id = ?`

	result, err := tx.Exec(query,
		input.Name, input.Description, input.CategoryID, input.Price, input.Stock,
		input.IsVariable, input.Status, string(imagesJSON), time.Now(), productID)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to update product"})
		return
	}
	if n, _ := result.RowsAffected(); n == 0 {
		c.JSON(http.StatusNotFound, gin.H{"error": "Product not found"})
		return
	}

	if _, err := tx.Exec("DELETE FROM product_variants WHERE product_id = ?", productID); err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to replace variants"})
		return
	}
	now := time.Now()
	for _, v := range input.Variants {
		status := v.Status
		if status == "" {
			status = "Active"
		}
		_, err := tx.Exec(
			"INSERT INTO product_variants (product_id, label, price, stock, status, created_at, updated_at) VALUES (?, ?, ?, ?, ?, ?, ?)",
			productID, v.Label, v.Price, v.Stock, status, now, now)
		if err != nil {
			c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to create variant"})
			return
		}
	}

	if err := tx.Commit(); err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Commit failed"})
		return
	}

	c.JSON(http.StatusOK, gin.H{"message": "Product updated"})
}

// DeleteProduct is the handler for DELETE /v1/admin/products/:id
// Order items snapshot product data, so a hard delete would not corrupt
// history, but we deactivate instead to keep review pages alive.
func (h *Handlers) DeleteProduct(c *gin.Context) {
	productID := c.Param("id")

	result, err := h.DB.Exec(
		"UPDATE products SET status = 'Inactive', updated_at = ? WHERE id = ?",
		time.Now(), productID)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to delete product"})
		return
	}
	if n, _ := result.RowsAffected(); n == 0 {
		c.JSON(http.StatusNotFound, gin.H{"error": "Product not found"})
		return
	}

	c.JSON(http.StatusOK, gin.H{"message": "Product deactivated"})
}

// GetAdminProducts is the handler for GET /v1/admin/products
// Same listing as the storefront but includes Inactive products and a
// stock alert level per product for the inventory table badges.
func (h *Handlers) GetAdminProducts(c *gin.Context) {
	query := `
		SELECT p.id, p.name, p.slug, p.description, p.category_id, p.price, p.stock,
		       p.is_variable, p.status, p.images, p.created_at, p.updated_at,
		       COALESCE(c.name, ''), 0, 0
		FROM products p
		LEFT JOIN categories c ON p.category_id = c.id
		ORDER BY p.created_at DESC`

	rows, err := h.DB.Query(query)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to fetch products"})
		return
	}
	defer rows.Close()

	products, err := h.scanProducts(rows)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to scan products"})
		return
	}

	type adminProduct struct {
		models.Product
		StockLevel string `json:"stockLevel"`
	}

	out := make([]adminProduct, 0, len(products))
	for _, p := range products {
		variants, err := h.fetchVariants(p.ID)
		if err != nil {
			c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to fetch variants"})
			return
		}
		p.Variants = variants

		variantStocks := make([]int, 0, len(variants))
		for _, v := range variants {
			variantStocks = append(variantStocks, v.Stock)
		}
		level := rules.ProductLevel(p.Stock, variantStocks,
			rules.DefaultLowStockThreshold, rules.DefaultWarningStockThreshold)

		out = append(out, adminProduct{Product: p, StockLevel: level.String()})
	}

	c.JSON(http.StatusOK, gin.H{"products": out})
}

//
// --- Helpers ---
//

func decodeImages(imagesJSON sql.NullString) []string {
	images := []string{}
	if imagesJSON.Valid && imagesJSON.String != "" {
		_ = json.Unmarshal([]byte(imagesJSON.String), &images)
	}
	return images
}

func (h *Handlers) scanProducts(rows *sql.Rows) ([]models.Product, error) {
	var products []models.Product
	for rows.Next() {
		var p models.Product
		var imagesJSON sql.NullString
		if err := rows.Scan(
			&p.ID, &p.Name, &p.Slug, &p.Description, &p.CategoryID, &p.Price, &p.Stock,
			&p.IsVariable, &p.Status, &imagesJSON, &p.CreatedAt, &p.UpdatedAt,
			&p.CategoryName, &p.AvgRating, &p.ReviewCount,
		); err != nil {
			return nil, err
		}
		p.Images = decodeImages(imagesJSON)
		products = append(products, p)
	}
	if products == nil {
		products = []models.Product{}
	}
	return products, rows.Err()
}

func (h *Handlers) fetchVariants(productID int64) ([]models.ProductVariant, error) {
	rows, err := h.DB.Query(
		"SELECT id, product_id, label, price, stock, status, created_at, updated_at FROM product_variants WHERE product_id = ? ORDER BY price ASC",
		productID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	variants := []models.ProductVariant{}
	for rows.Next() {
		var v models.ProductVariant
		if err := rows.Scan(&v.ID, &v.ProductID, &v.Label, &v.Price, &v.Stock, &v.Status, &v.CreatedAt, &v.UpdatedAt); err != nil {
			return nil, err
		}
		variants = append(variants, v)
	}
	return variants, rows.Err()
}

// uniqueSlug makes a URL slug from the name, suffixing a counter when
// the plain slug is taken.
func (h *Handlers) uniqueSlug(tx *sql.Tx, name string) string {
	base := slug.Make(name)
	candidate := base
	for i := 2; ; i++ {
		var existing int64
		err := tx.QueryRow("SELECT id FROM products WHERE slug = ?", candidate).Scan(&existing)
		if err == sql.ErrNoRows {
			return candidate
		}
		if err != nil {
			// Fall back to a timestamped slug rather than failing the insert.
			return base + "-" + strings.ToLower(time.Now().Format("20060102150405"))
		}
		candidate = base + "-" + strconv.Itoa(i)
	}
}
