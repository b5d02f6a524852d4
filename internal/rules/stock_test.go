package rules

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestClassify(t *testing.T) {
	tests := []struct {
		name  string
		stock int
		want  Level
	}{
		{"zero is out", 0, LevelOut},
		{"one is critical", 1, LevelCritical},
		{"at low threshold is critical", 5, LevelCritical},
		{"just above low is warning", 6, LevelWarning},
		{"at warn threshold is warning", 10, LevelWarning},
		{"above warn is healthy", 11, LevelHealthy},
		{"plenty is healthy", 500, LevelHealthy},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := Classify(tt.stock, DefaultLowStockThreshold, DefaultWarningStockThreshold)
			assert.Equal(t, tt.want, got)
		})
	}
}

// Exactly one of the four bands must fire for every non-negative count.
func TestClassifyExhaustive(t *testing.T) {
	for stock := 0; stock <= 200; stock++ {
		lv := Classify(stock, 5, 10)

		matches := 0
		if stock == 0 {
			assert.Equal(t, LevelOut, lv, "stock=%d", stock)
			matches++
		}
		if stock > 0 && stock <= 5 {
			assert.Equal(t, LevelCritical, lv, "stock=%d", stock)
			matches++
		}
		if stock > 5 && stock <= 10 {
			assert.Equal(t, LevelWarning, lv, "stock=%d", stock)
			matches++
		}
		if stock > 10 {
			assert.Equal(t, LevelHealthy, lv, "stock=%d", stock)
			matches++
		}
		assert.Equal(t, 1, matches, "stock=%d must fall in exactly one band", stock)
	}
}

func intPtr(n int) *int { return &n }

func TestProductLevel(t *testing.T) {
	tests := []struct {
		name          string
		productStock  *int
		variantStocks []int
		want          Level
	}{
		// Product stock 0 governs even when a variant alone would only be critical.
		{"out product beats critical variant", intPtr(0), []int{3}, LevelOut},
		{"worst variant governs", nil, []int{50, 7, 2}, LevelCritical},
		{"all healthy", intPtr(40), []int{30, 25}, LevelHealthy},
		{"variant out beats healthy product", intPtr(40), []int{0}, LevelOut},
		{"product only", intPtr(8), nil, LevelWarning},
		{"no counts at all means nothing to sell", nil, nil, LevelOut},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := ProductLevel(tt.productStock, tt.variantStocks, DefaultLowStockThreshold, DefaultWarningStockThreshold)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestLevelString(t *testing.T) {
	assert.Equal(t, "out", LevelOut.String())
	assert.Equal(t, "critical", LevelCritical.String())
	assert.Equal(t, "warning", LevelWarning.String())
	assert.Equal(t, "healthy", LevelHealthy.String())
}
