package models

import (
	"time"

	"github.com/shopspring/decimal"
	"gorm.io/gorm"
)

// Holding is a user's position in one symbol. Price is the last trade
// price and Total is always Shares * Price; selling a position down to
// zero keeps the row with Shares = 0.
type Holding struct {
	gorm.Model
	UserID uint            `gorm:"index:idx_holdings_user_symbol,unique" json:"user_id"`
	Symbol string          `gorm:"index:idx_holdings_user_symbol,unique" json:"symbol"`
	Name   string          `json:"name"`
	Shares int64           `json:"shares"`
	Price  decimal.Decimal `gorm:"type:numeric" json:"price"`
	Total  decimal.Decimal `gorm:"type:numeric" json:"total"`
}

// Transaction is an append-only history entry. Shares is a signed
// delta: positive for buys, negative for sells.
type Transaction struct {
	gorm.Model
	UserID    uint            `gorm:"index" json:"user_id"`
	Symbol    string          `json:"symbol"`
	Shares    int64           `json:"shares"`
	Price     decimal.Decimal `gorm:"type:numeric" json:"price"`
	Timestamp time.Time       `gorm:"default:CURRENT_TIMESTAMP" json:"timestamp"`
}
