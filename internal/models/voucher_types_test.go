package models

import (
	"testing"
	"time"

	"github.com/gildgrove/gildgrove-golang/internal/rules"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestVoucherTerms(t *testing.T) {
	t.Run("nil voucher converts to nil terms", func(t *testing.T) {
		var v *Voucher
		assert.Nil(t, v.Terms())
	})

	t.Run("fields carry over", func(t *testing.T) {
		maxDiscount := 150.0
		minPurchase := 500.0
		end := time.Date(2026, 12, 31, 0, 0, 0, 0, time.UTC)

		v := &Voucher{
			Code:          "GLOW20",
			DiscountType:  rules.DiscountPercentage,
			DiscountValue: 20,
			MaxDiscount:   &maxDiscount,
			MinPurchase:   &minPurchase,
			StartDate:     time.Date(2026, 1, 1, 0, 0, 0, 0, time.UTC),
			EndDate:       &end,
		}

		terms := v.Terms()
		require.NotNil(t, terms)
		assert.Equal(t, "GLOW20", terms.Code)
		assert.Equal(t, rules.DiscountPercentage, terms.DiscountType)
		assert.Equal(t, 20.0, terms.DiscountValue)
		assert.Equal(t, &maxDiscount, terms.MaxDiscount)
		assert.Equal(t, &minPurchase, terms.MinPurchase)
		assert.Equal(t, end, terms.EndDate)
	})

	t.Run("NULL end date becomes the engine's no-expiry zero time", func(t *testing.T) {
		v := &Voucher{
			Code:         "EVERGREEN",
			DiscountType: rules.DiscountFreeShipping,
			StartDate:    time.Date(2026, 1, 1, 0, 0, 0, 0, time.UTC),
			EndDate:      nil,
		}

		terms := v.Terms()
		require.NotNil(t, terms)
		assert.True(t, terms.EndDate.IsZero())
		assert.True(t, rules.Active(terms, time.Date(2099, 1, 1, 0, 0, 0, 0, time.UTC)))
	})
}
