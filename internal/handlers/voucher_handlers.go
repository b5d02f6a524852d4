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
// --- Admin: Voucher Management ---
//

type VoucherInput struct {
	Code          string   `json:"code" binding:"required"`
	Description   string   `json:"description"`
	DiscountType  string   `json:"discountType" binding:"required,oneof=percentage fixed free_shipping"`
	DiscountValue float64  `json:"discountValue"`
	MaxDiscount   *float64 `json:"maxDiscount"`
	MinPurchase   *float64 `json:"minPurchase"`
	UsageLimit    *int     `json:"usageLimit"`
	StartDate     string   `json:"startDate" binding:"required"` // YYYY-MM-DD
	EndDate       string   `json:"endDate"`                      // empty = never expires
}

func (in *VoucherInput) validate() (start time.Time, end *time.Time, errMsg string) {
	var err error
	start, err = time.Parse("2006-01-02", in.StartDate)
	if err != nil {
		return start, end, "startDate must be YYYY-MM-DD"
	}
	if in.EndDate != "" {
		parsed, err := time.Parse("2006-01-02", in.EndDate)
		if err != nil {
			return start, end, "endDate must be YYYY-MM-DD"
		}
		if parsed.Before(start) {
			return start, end, "endDate must not be before startDate"
		}
		end = &parsed
	}

	switch rules.DiscountType(in.DiscountType) {
	case rules.DiscountPercentage:
		if in.DiscountValue <= 0 || in.DiscountValue > 100 {
			return start, end, "A percentage voucher needs a discountValue between 0 and 100"
		}
	case rules.DiscountFixed:
		if in.DiscountValue <= 0 {
			return start, end, "A fixed voucher needs a positive discountValue"
		}
	case rules.DiscountFreeShipping:
		// discountValue ignored
	}
	return start, end, ""
}

// CreateVoucher is the handler for POST /v1/admin/vouchers
func (h *Handlers) CreateVoucher(c *gin.Context) {
	var input VoucherInput
	if err := c.ShouldBindJSON(&input); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	start, end, errMsg := input.validate()
	if errMsg != "" {
		c.JSON(http.StatusBadRequest, gin.H{"error": errMsg})
		return
	}

	now := time.Now()
	query := `
		INSERT INTO vouchers (code, description, discount_type, discount_value, max_discount,
			min_purchase, usage_limit, used_count, start_date, end_date, created_at, updated_at)
		VALUES (?, ?, ?, ?, ?, ?, ?, 0, ?, ?, ?, ?)`

	result, err := h.DB.Exec(query,
		strings.ToUpper(input.Code), input.Description, input.DiscountType, input.DiscountValue,
		input.MaxDiscount, input.MinPurchase, input.UsageLimit, start, end, now, now)
	if err != nil {
		if strings.Contains(err.Error(), "1062") {
			c.JSON(http.StatusConflict, gin.H{"error": "A voucher with this code already exists"})
			return
		}
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to create voucher"})
		return
	}

	id, _ := result.LastInsertId()
	c.JSON(http.StatusCreated, gin.H{"message": "Voucher created", "voucherId": id})
}

// UpdateVoucher is the handler for PUT /v1/admin/vouchers/:id
// The code itself is immutable once customers can hold claims on it.
func (h *Handlers) UpdateVoucher(c *gin.Context) {
	voucherID := c.Param("id")

	var input VoucherInput
	if err := c.ShouldBindJSON(&input); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	start, end, errMsg := input.validate()
	if errMsg != "" {
		c.JSON(http.StatusBadRequest, gin.H{"error": errMsg})
		return
	}

	query := `
		UPDATE vouchers
		SET description = ?, discount_type = ?, discount_value = ?, max_discount = ?,
		    min_purchase = ?, usage_limit = ?, start_date = ?, end_date = ?, updated_at = ?
		WHERE id = ?`

	result, err := h.DB.Exec(query,
		input.Description, input.DiscountType, input.DiscountValue, input.MaxDiscount,
		input.MinPurchase, input.UsageLimit, start, end, time.Now(), voucherID)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to update voucher"})
		return
	}
	if n, _ := result.RowsAffected(); n == 0 {
		c.JSON(http.StatusNotFound, gin.H{"error": "Voucher not found"})
		return
	}

	c.JSON(http.StatusOK, gin.H{"message": "Voucher updated"})
}

// GetAdminVouchers is the handler for GET /v1/admin/vouchers
func (h *Handlers) GetAdminVouchers(c *gin.Context) {
	query := `
		SELECT id, code, description, discount_type, discount_value, max_discount,
		       min_purchase, usage_limit, used_count, start_date, end_date, created_at, updated_at
		FROM vouchers
		ORDER BY created_at DESC`

	rows, err := h.DB.Query(query)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to fetch vouchers"})
		return
	}
	defer rows.Close()

	var vouchers []models.Voucher
	for rows.Next() {
		var v models.Voucher
		if err := rows.Scan(
			&v.ID, &v.Code, &v.Description, &v.DiscountType, &v.DiscountValue, &v.MaxDiscount,
			&v.MinPurchase, &v.UsageLimit, &v.UsedCount, &v.StartDate, &v.EndDate, &v.CreatedAt, &v.UpdatedAt,
		); err != nil {
			c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to scan voucher"})
			return
		}
		vouchers = append(vouchers, v)
	}

	if vouchers == nil {
		vouchers = []models.Voucher{}
	}
	c.JSON(http.StatusOK, gin.H{"vouchers": vouchers})
}

// DeleteVoucher is the handler for DELETE /v1/admin/vouchers/:id
// Refused once the voucher has been redeemed; existing orders reference it.
func (h *Handlers) DeleteVoucher(c *gin.Context) {
	voucherID := c.Param("id")

	var usedCount int
	err := h.DB.QueryRow("SELECT used_count FROM vouchers WHERE id = ?", voucherID).Scan(&usedCount)
	if err != nil {
		if err == sql.ErrNoRows {
			c.JSON(http.StatusNotFound, gin.H{"error": "Voucher not found"})
			return
		}
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to fetch voucher"})
		return
	}
	if usedCount > 0 {
		c.JSON(http.StatusConflict, gin.H{"error": "Voucher has been redeemed and cannot be deleted"})
		return
	}

	if _, err := h.DB.Exec("DELETE FROM vouchers WHERE id = ?", voucherID); err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to delete voucher"})
		return
	}

	c.JSON(http.StatusOK, gin.H{"message": "Voucher deleted"})
}

//
// --- Customer: Claimable Vouchers ---
//

// ClaimableVoucher is a voucher as shown on the customer voucher page.
type ClaimableVoucher struct {
	models.Voucher
	Claimed bool `json:"claimed"`
	Used    bool `json:"used"`
}

// GetClaimableVouchers is the handler for GET /v1/vouchers
// Default: vouchers inside their validity window with uses left that
// this customer has NOT claimed yet. ?claimed=true flips to the
// customer's claimed-but-unused wallet instead. Either way this list is
// advisory; the checkout transaction re-checks everything.
func (h *Handlers) GetClaimableVouchers(c *gin.Context) {
	userID_raw, _ := c.Get("userID")
	userID := userID_raw.(int64)

	claimFilter := "c.id IS NULL"
	if c.Query("claimed") == "true" {
		claimFilter = "c.id IS NOT NULL AND c.used_at IS NULL"
	}

	// A NULL end_date means the voucher never expires.
	query := `
		SELECT v.id, v.code, v.description, v.discount_type, v.discount_value, v.max_discount,
		       v.min_purchase, v.usage_limit, v.used_count, v.start_date, v.end_date,
		       v.created_at, v.updated_at,
		       c.id IS NOT NULL AS claimed,
		       c.used_at IS NOT NULL AS used
		FROM vouchers v
		LEFT JOIN voucher_claims c ON c.voucher_id = v.id AND c.user_id = ?
		WHERE v.start_date <= NOW()
		  AND (v.end_date IS NULL OR v.end_date >= NOW())
		  AND (v.usage_limit IS NULL OR v.used_count < v.usage_limit)
		  AND ` + claimFilter + `
		ORDER BY v.end_date ASC, v.created_at DESC`

	rows, err := h.DB.Query(query, userID)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to fetch vouchers"})
		return
	}
	defer rows.Close()

	var vouchers []ClaimableVoucher
	for rows.Next() {
		var v ClaimableVoucher
		if err := rows.Scan(
			&v.ID, &v.Code, &v.Description, &v.DiscountType, &v.DiscountValue, &v.MaxDiscount,
			&v.MinPurchase, &v.UsageLimit, &v.UsedCount, &v.StartDate, &v.EndDate,
			&v.CreatedAt, &v.UpdatedAt, &v.Claimed, &v.Used,
		); err != nil {
			c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to scan voucher"})
			return
		}
		vouchers = append(vouchers, v)
	}

	if vouchers == nil {
		vouchers = []ClaimableVoucher{}
	}
	c.JSON(http.StatusOK, gin.H{"vouchers": vouchers})
}

// ClaimVoucher is the handler for POST /v1/vouchers/:id/claim
// A customer can claim each voucher once; the unique (voucher, user)
// index backs that up.
func (h *Handlers) ClaimVoucher(c *gin.Context) {
	userID_raw, _ := c.Get("userID")
	userID := userID_raw.(int64)
	voucherID := c.Param("id")

	var v models.Voucher
	err := h.DB.QueryRow(
		"SELECT id, code, usage_limit, used_count, start_date, end_date FROM vouchers WHERE id = ?",
		voucherID).Scan(&v.ID, &v.Code, &v.UsageLimit, &v.UsedCount, &v.StartDate, &v.EndDate)
	if err != nil {
		if err == sql.ErrNoRows {
			c.JSON(http.StatusNotFound, gin.H{"error": "Voucher not found"})
			return
		}
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to fetch voucher"})
		return
	}

	if !rules.Active(v.Terms(), time.Now()) {
		c.JSON(http.StatusUnprocessableEntity, gin.H{"error": "Voucher is not currently active"})
		return
	}
	if v.UsageLimit != nil && v.UsedCount >= *v.UsageLimit {
		c.JSON(http.StatusConflict, gin.H{"error": "Voucher has been fully redeemed"})
		return
	}

	_, err = h.DB.Exec(
		"INSERT INTO voucher_claims (voucher_id, user_id, created_at) VALUES (?, ?, ?)",
		v.ID, userID, time.Now())
	if err != nil {
		if strings.Contains(err.Error(), "1062") {
			c.JSON(http.StatusConflict, gin.H{"error": "You have already claimed this voucher"})
			return
		}
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to claim voucher"})
		return
	}

	c.JSON(http.StatusCreated, gin.H{"message": "Voucher claimed", "code": v.Code})
}
