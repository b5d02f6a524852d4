package rules

import "time"

// DiscountType tells the engine how to read a voucher's DiscountValue.
type DiscountType string

const (
	DiscountPercentage   DiscountType = "percentage"
	DiscountFixed        DiscountType = "fixed"
	DiscountFreeShipping DiscountType = "free_shipping"
)

// ProductVoucher reports whether the type discounts the item subtotal.
// A checkout may hold at most one of these plus at most one
// free-shipping voucher; never two of the same class.
func (t DiscountType) ProductVoucher() bool {
	return t == DiscountPercentage || t == DiscountFixed
}

// Voucher carries exactly the fields discount math needs. Handlers build
// one from the stored models.Voucher row; the engine never sees the
// database record itself.
type Voucher struct {
	Code          string
	DiscountType  DiscountType
	DiscountValue float64  // percent 0-100 or currency amount; ignored for free_shipping
	MaxDiscount   *float64 // cap, percentage type only
	MinPurchase   *float64 // eligibility floor against subtotal
	StartDate     time.Time
	EndDate       time.Time
}

// ProductDiscount computes the subtotal discount for a voucher. It
// returns 0 for a nil voucher, a free-shipping voucher, or a
// non-positive subtotal. A percentage discount is clamped to
// MaxDiscount when set. A fixed discount is NOT clamped to the
// subtotal here; ComputeTotal floors the payable total at zero.
func ProductDiscount(subtotal float64, v *Voucher) float64 {
	if v == nil || subtotal <= 0 || !v.DiscountType.ProductVoucher() {
		return 0
	}
	switch v.DiscountType {
	case DiscountPercentage:
		discount := subtotal * v.DiscountValue / 100
		if v.MaxDiscount != nil && discount > *v.MaxDiscount {
			discount = *v.MaxDiscount
		}
		return discount
	case DiscountFixed:
		return v.DiscountValue
	}
	return 0
}

// ShippingDiscount returns the full shipping fee for a free-shipping
// voucher and 0 for anything else.
func ShippingDiscount(shippingFee float64, v *Voucher) float64 {
	if v != nil && v.DiscountType == DiscountFreeShipping {
		return shippingFee
	}
	return 0
}

// Eligible reports whether the subtotal meets the voucher's minimum
// purchase. A voucher that turns ineligible after the customer selected
// it is flagged, not auto-removed: removing it mid-edit would surprise
// the user, so the UI shows a warning and removal stays an explicit
// action. Checkout confirmation re-checks and hard-fails instead.
func Eligible(v *Voucher, subtotal float64) bool {
	if v == nil {
		return false
	}
	if v.MinPurchase == nil || *v.MinPurchase <= 0 {
		return true
	}
	return subtotal >= *v.MinPurchase
}

// Active reports whether now falls inside the voucher's validity window.
// A zero EndDate means no expiry.
func Active(v *Voucher, now time.Time) bool {
	if v == nil {
		return false
	}
	if !v.StartDate.IsZero() && now.Before(v.StartDate) {
		return false
	}
	if !v.EndDate.IsZero() && now.After(v.EndDate) {
		return false
	}
	return true
}
