package model

import "github.com/shopspring/decimal"

type Product struct {
	BaseModel
	Name  string          `gorm:"type:varchar(255);not null;index" json:"name"`
	Unit  string          `gorm:"type:varchar(20)" json:"unit"`
	Price decimal.Decimal `gorm:"type:decimal(12,2);not null;default:0" json:"price"`
	Stock decimal.Decimal `gorm:"type:decimal(12,3);not null;default:0" json:"stock"`
}
