package rules

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func floatPtr(f float64) *float64 { return &f }

func TestProductDiscount(t *testing.T) {
	tests := []struct {
		name     string
		subtotal float64
		voucher  *Voucher
		want     float64
	}{
		{"nil voucher", 1000, nil, 0},
		{"zero subtotal", 0, &Voucher{DiscountType: DiscountPercentage, DiscountValue: 20}, 0},
		{"negative subtotal", -5, &Voucher{DiscountType: DiscountFixed, DiscountValue: 50}, 0},
		{"free shipping gives no product discount", 1000, &Voucher{DiscountType: DiscountFreeShipping}, 0},
		{"plain percentage", 1000, &Voucher{DiscountType: DiscountPercentage, DiscountValue: 10}, 100},
		{"percentage clamped to cap", 1000, &Voucher{DiscountType: DiscountPercentage, DiscountValue: 20, MaxDiscount: floatPtr(150)}, 150},
		{"percentage under cap untouched", 500, &Voucher{DiscountType: DiscountPercentage, DiscountValue: 20, MaxDiscount: floatPtr(150)}, 100},
		{"fixed amount", 1000, &Voucher{DiscountType: DiscountFixed, DiscountValue: 75}, 75},
		// Fixed discounts are not clamped to the subtotal here; the total
		// computation floors at zero instead.
		{"fixed larger than subtotal passes through", 50, &Voucher{DiscountType: DiscountFixed, DiscountValue: 200}, 200},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.InDelta(t, tt.want, ProductDiscount(tt.subtotal, tt.voucher), 1e-9)
		})
	}
}

func TestPercentageDiscountNeverExceedsCap(t *testing.T) {
	v := &Voucher{DiscountType: DiscountPercentage, DiscountValue: 20, MaxDiscount: floatPtr(100)}
	for subtotal := 0.0; subtotal <= 5000; subtotal += 37.5 {
		d := ProductDiscount(subtotal, v)
		assert.GreaterOrEqual(t, d, 0.0)
		assert.LessOrEqual(t, d, 100.0, "subtotal=%v", subtotal)
	}
}

func TestShippingDiscount(t *testing.T) {
	assert.Equal(t, 0.0, ShippingDiscount(50, nil))
	assert.Equal(t, 0.0, ShippingDiscount(50, &Voucher{DiscountType: DiscountPercentage, DiscountValue: 20}))
	assert.Equal(t, 50.0, ShippingDiscount(50, &Voucher{DiscountType: DiscountFreeShipping}))
}

func TestEligible(t *testing.T) {
	noFloor := &Voucher{DiscountType: DiscountFixed, DiscountValue: 30}
	floor := &Voucher{DiscountType: DiscountFixed, DiscountValue: 30, MinPurchase: floatPtr(500)}

	assert.False(t, Eligible(nil, 1000))
	assert.True(t, Eligible(noFloor, 0))
	assert.True(t, Eligible(floor, 500))
	assert.True(t, Eligible(floor, 501))
	assert.False(t, Eligible(floor, 499.99))
}

func TestActive(t *testing.T) {
	now := time.Date(2026, 3, 15, 12, 0, 0, 0, time.UTC)
	window := &Voucher{
		StartDate: now.AddDate(0, 0, -7),
		EndDate:   now.AddDate(0, 0, 7),
	}

	assert.False(t, Active(nil, now))
	assert.True(t, Active(window, now))
	assert.False(t, Active(window, now.AddDate(0, 1, 0)))
	assert.False(t, Active(window, now.AddDate(0, -1, 0)))
	// Zero end date means no expiry.
	assert.True(t, Active(&Voucher{StartDate: now.AddDate(0, 0, -1)}, now))
}
