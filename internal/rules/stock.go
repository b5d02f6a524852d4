// Package rules is the shared business-rule core for GILD + GROVE.
// Every function here is pure: no database access, no clock reads unless
// the caller passes one in, no globals. The admin pages, the customer
// order pages and the dashboard all import this package instead of
// carrying their own copy of the same arithmetic.
package rules

// Default stock thresholds used across the store. A product at or below
// the low threshold is considered critical; between low and warning it
// is a warning.
const (
	DefaultLowStockThreshold     = 5
	DefaultWarningStockThreshold = 10
)

// Level is the stock severity level shown as a badge in the admin UI.
// Higher values are more severe, so the worst level of a set is simply
// the maximum.
type Level int

const (
	LevelHealthy Level = iota
	LevelWarning
	LevelCritical
	LevelOut
)

func (l Level) String() string {
	switch l {
	case LevelOut:
		return "out"
	case LevelCritical:
		return "critical"
	case LevelWarning:
		return "warning"
	default:
		return "healthy"
	}
}

// Classify maps a stock count to a severity level. First match wins:
//
//	stock == 0                      -> Out
//	0 < stock <= lowThreshold       -> Critical
//	lowThreshold < stock <= warn    -> Warning
//	otherwise                       -> Healthy
//
// Precondition: stock >= 0. A negative count means corrupted upstream
// data and is not handled here.
func Classify(stock, lowThreshold, warnThreshold int) Level {
	switch {
	case stock == 0:
		return LevelOut
	case stock <= lowThreshold:
		return LevelCritical
	case stock <= warnThreshold:
		return LevelWarning
	default:
		return LevelHealthy
	}
}

// ProductLevel returns the alert level for a whole product: the most
// severe level among the product's own stock (nil when all stock lives
// on variants) and every variant stock. A product with no stock counts
// at all has nothing to sell, so it reports Out.
func ProductLevel(productStock *int, variantStocks []int, lowThreshold, warnThreshold int) Level {
	worst := Level(-1)
	if productStock != nil {
		worst = Classify(*productStock, lowThreshold, warnThreshold)
	}
	for _, s := range variantStocks {
		if lv := Classify(s, lowThreshold, warnThreshold); lv > worst {
			worst = lv
		}
	}
	if worst < LevelHealthy {
		return LevelOut
	}
	return worst
}
