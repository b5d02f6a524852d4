package models

import (
	"time"

	"github.com/gildgrove/gildgrove-golang/internal/rules"
)

// Voucher is the model for the 'vouchers' table. Codes are stored
// uppercase and compared case-insensitively.
type Voucher struct {
	ID            int64              `json:"id" db:"id"`
	Code          string             `json:"code" db:"code"`
	Description   string             `json:"description" db:"description"`
	DiscountType  rules.DiscountType `json:"discountType" db:"discount_type"`
	DiscountValue float64            `json:"discountValue" db:"discount_value"` // ignored for free_shipping
	MaxDiscount   *float64           `json:"maxDiscount,omitempty" db:"max_discount"`
	MinPurchase   *float64           `json:"minPurchase,omitempty" db:"min_purchase"`
	UsageLimit    *int               `json:"usageLimit,omitempty" db:"usage_limit"`
	UsedCount     int                `json:"usedCount" db:"used_count"`
	StartDate     time.Time          `json:"startDate" db:"start_date"`
	EndDate       *time.Time         `json:"endDate,omitempty" db:"end_date"` // nil = never expires
	CreatedAt     time.Time          `json:"createdAt" db:"created_at"`
	UpdatedAt     time.Time          `json:"updatedAt" db:"updated_at"`
}

// Terms converts the stored row into the value type the rule engine
// consumes. The engine never sees the database record itself.
func (v *Voucher) Terms() *rules.Voucher {
	if v == nil {
		return nil
	}
	terms := &rules.Voucher{
		Code:          v.Code,
		DiscountType:  v.DiscountType,
		DiscountValue: v.DiscountValue,
		MaxDiscount:   v.MaxDiscount,
		MinPurchase:   v.MinPurchase,
		StartDate:     v.StartDate,
	}
	// A NULL end_date maps to the engine's zero time: no expiry.
	if v.EndDate != nil {
		terms.EndDate = *v.EndDate
	}
	return terms
}

// VoucherClaim is the model for the 'voucher_claims' table. One row per
// (user, voucher): a customer can claim a voucher at most once. Total
// redemptions against usage_limit are enforced inside the checkout
// transaction, not here.
type VoucherClaim struct {
	ID        int64      `json:"id" db:"id"`
	VoucherID int64      `json:"voucherId" db:"voucher_id"`
	UserID    int64      `json:"userId" db:"user_id"`
	UsedAt    *time.Time `json:"usedAt,omitempty" db:"used_at"`
	CreatedAt time.Time  `json:"createdAt" db:"created_at"`
}
