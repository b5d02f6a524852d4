package rules

// Line is one cart/order line as seen by the totals computation. Only
// selected lines count toward the subtotal: the storefront lets the
// customer tick which cart lines go into this checkout, and that
// selection is respected here rather than re-filtered by every caller.
type Line struct {
	ProductID int64
	VariantID *int64
	Name      string
	UnitPrice float64
	Quantity  int
	Selected  bool
}

// LineTotal is UnitPrice * Quantity.
func (l Line) LineTotal() float64 {
	return l.UnitPrice * float64(l.Quantity)
}

// Totals is the checkout breakdown returned to the UI and persisted on
// the order at confirmation.
type Totals struct {
	Subtotal         float64 `json:"subtotal"`
	ProductDiscount  float64 `json:"productDiscount"`
	ShippingDiscount float64 `json:"shippingDiscount"`
	Total            float64 `json:"total"`
}

// ComputeTotal composes subtotal, shipping and the two voucher classes
// into the final payable total:
//
//	total = max(0, subtotal + shippingFee - productDiscount - shippingDiscount)
//
// productVoucher must be a percentage/fixed voucher, shippingVoucher a
// free_shipping voucher; either may be nil. The zero floor is what keeps
// an oversized fixed voucher from producing a negative total.
func ComputeTotal(lines []Line, shippingFee float64, productVoucher, shippingVoucher *Voucher) Totals {
	t := Totals{}
	for _, l := range lines {
		if !l.Selected {
			continue
		}
		t.Subtotal += l.LineTotal()
	}
	t.ProductDiscount = ProductDiscount(t.Subtotal, productVoucher)
	t.ShippingDiscount = ShippingDiscount(shippingFee, shippingVoucher)
	t.Total = t.Subtotal + shippingFee - t.ProductDiscount - t.ShippingDiscount
	if t.Total < 0 {
		t.Total = 0
	}
	return t
}
