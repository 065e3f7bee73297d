package model

import (
	"time"

	"github.com/shopspring/decimal"
)

// Bill is the immutable record of a completed sale
type Bill struct {
	ID              uint            `gorm:"primaryKey" json:"id"`
	CustomerName    *string         `gorm:"type:varchar(255)" json:"customer_name"`
	DiscountPercent decimal.Decimal `gorm:"type:decimal(5,2);not null;default:0" json:"discount_percent"`
	Subtotal        decimal.Decimal `gorm:"type:decimal(12,2);not null" json:"subtotal"`
	DiscountAmount  decimal.Decimal `gorm:"type:decimal(12,2);not null" json:"discount_amount"`
	Total           decimal.Decimal `gorm:"type:decimal(12,2);not null" json:"total"`
	CreatedAt       time.Time       `gorm:"index" json:"created_at"`

	Items []BillItem `gorm:"foreignKey:BillID;constraint:OnDelete:CASCADE" json:"items,omitempty"`
}

// BillItem is one line of a bill. UnitPrice is the catalog price at sale time.
type BillItem struct {
	ID        uint            `gorm:"primaryKey" json:"id"`
	BillID    uint            `gorm:"not null;index" json:"bill_id"`
	ProductID uint            `gorm:"not null;index" json:"product_id"`
	Product   *Product        `gorm:"constraint:OnDelete:RESTRICT" json:"product,omitempty"`
	Quantity  decimal.Decimal `gorm:"type:decimal(12,3);not null" json:"quantity"`
	UnitPrice decimal.Decimal `gorm:"type:decimal(12,2);not null" json:"unit_price"`
	LineTotal decimal.Decimal `gorm:"type:decimal(12,2);not null" json:"line_total"`
}

// BillLine is a requested {product, quantity} pair handed to the billing engine
type BillLine struct {
	ProductID uint            `json:"product_id" validate:"required"`
	Quantity  decimal.Decimal `json:"quantity" validate:"gt=0,lt=1000000000"`
}

// All lists every persisted model, in dependency order, for migrations
func All() []interface{} {
	return []interface{}{&Product{}, &CartLine{}, &Bill{}, &BillItem{}}
}
