package models

import (
	"time"

	"github.com/shopspring/decimal"
)

// Order is the hand-off a checkout passes to the external purchase flow
type Order struct {
	ID        string          `json:"id"`
	SessionID string          `json:"-"`
	Items     []Product       `json:"items"`
	Total     decimal.Decimal `json:"total"`
	CreatedAt time.Time       `json:"created_at"`
}
