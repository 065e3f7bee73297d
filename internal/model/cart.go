package model

import (
	"time"

	"github.com/shopspring/decimal"
)

// CartLine is one staged purchase in a caller's cart. It references the
// product but never snapshots its price.
type CartLine struct {
	ID        uint            `gorm:"primaryKey" json:"id"`
	SessionID string          `gorm:"type:varchar(64);not null;index" json:"session_id"`
	ProductID uint            `gorm:"not null" json:"product_id"`
	Product   *Product        `gorm:"constraint:OnDelete:CASCADE" json:"-"`
	Quantity  decimal.Decimal `gorm:"type:decimal(12,3);not null" json:"quantity"`
	CreatedAt time.Time       `json:"created_at"`
}

// CartLineView is a cart line joined with the current catalog data
type CartLineView struct {
	LineID    uint            `json:"line_id"`
	ProductID uint            `json:"product_id"`
	Name      string          `json:"name"`
	Unit      string          `json:"unit"`
	Price     decimal.Decimal `json:"price"` // current catalog price, not a snapshot
	Quantity  decimal.Decimal `json:"quantity"`
	LineTotal decimal.Decimal `json:"line_total"`
}
