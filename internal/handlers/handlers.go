package handlers

import (
	"database/sql"

	"github.com/gildgrove/gildgrove-golang/internal/ai"
)

// Handlers struct holds all dependencies for our handlers.
type Handlers struct {
	DB         *sql.DB       // Primary Read/Write connection
	DBReadOnly *sql.DB       // Read-Only connection for the AI assistant
	AIService  *ai.AIService // nil when no Gemini key is configured
}

// FlatShippingFee is the store-wide shipping fee. Shipping vouchers
// zero it; nothing else changes it.
const FlatShippingFee = 50.0
