package rules

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func selected(price float64, qty int) Line {
	return Line{UnitPrice: price, Quantity: qty, Selected: true}
}

func TestComputeTotalCappedPercentage(t *testing.T) {
	// subtotal 1000, 20% capped at 150: discount is 150 not 200,
	// total = 1000 + 50 - 150 = 900.
	lines := []Line{selected(250, 4)}
	voucher := &Voucher{DiscountType: DiscountPercentage, DiscountValue: 20, MaxDiscount: floatPtr(150)}

	got := ComputeTotal(lines, 50, voucher, nil)

	assert.InDelta(t, 1000.0, got.Subtotal, 1e-9)
	assert.InDelta(t, 150.0, got.ProductDiscount, 1e-9)
	assert.InDelta(t, 0.0, got.ShippingDiscount, 1e-9)
	assert.InDelta(t, 900.0, got.Total, 1e-9)
}

func TestComputeTotalFreeShipping(t *testing.T) {
	// subtotal 500, free shipping zeroes the 50 fee: total = 500.
	lines := []Line{selected(100, 5)}
	voucher := &Voucher{DiscountType: DiscountFreeShipping}

	got := ComputeTotal(lines, 50, nil, voucher)

	assert.InDelta(t, 500.0, got.Subtotal, 1e-9)
	assert.InDelta(t, 50.0, got.ShippingDiscount, 1e-9)
	assert.InDelta(t, 500.0, got.Total, 1e-9)
}

func TestComputeTotalRespectsSelection(t *testing.T) {
	lines := []Line{
		selected(120, 2),
		{UnitPrice: 999, Quantity: 3, Selected: false},
		selected(60, 1),
	}

	got := ComputeTotal(lines, 50, nil, nil)

	assert.InDelta(t, 300.0, got.Subtotal, 1e-9)
	assert.InDelta(t, 350.0, got.Total, 1e-9)
}

func TestComputeTotalNeverNegative(t *testing.T) {
	lines := []Line{selected(30, 1)}
	oversized := &Voucher{DiscountType: DiscountFixed, DiscountValue: 500}

	got := ComputeTotal(lines, 50, oversized, &Voucher{DiscountType: DiscountFreeShipping})

	assert.InDelta(t, 0.0, got.Total, 1e-9)
}

func TestComputeTotalNonNegativeSweep(t *testing.T) {
	vouchers := []*Voucher{
		nil,
		{DiscountType: DiscountPercentage, DiscountValue: 100},
		{DiscountType: DiscountPercentage, DiscountValue: 20, MaxDiscount: floatPtr(100)},
		{DiscountType: DiscountFixed, DiscountValue: 10000},
	}
	shippingVouchers := []*Voucher{nil, {DiscountType: DiscountFreeShipping}}

	for qty := 0; qty <= 20; qty += 5 {
		for _, pv := range vouchers {
			for _, sv := range shippingVouchers {
				got := ComputeTotal([]Line{selected(49.5, qty)}, 50, pv, sv)
				assert.GreaterOrEqual(t, got.Total, 0.0)
				assert.GreaterOrEqual(t, got.ProductDiscount, 0.0)
				assert.GreaterOrEqual(t, got.ShippingDiscount, 0.0)
			}
		}
	}
}

func TestEmptySelection(t *testing.T) {
	got := ComputeTotal(nil, 50, nil, nil)
	assert.InDelta(t, 0.0, got.Subtotal, 1e-9)
	assert.InDelta(t, 50.0, got.Total, 1e-9)
}

func TestLineTotal(t *testing.T) {
	assert.InDelta(t, 897.0, Line{UnitPrice: 299, Quantity: 3}.LineTotal(), 1e-9)
}
