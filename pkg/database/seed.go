package database

import (
	"go-pos-billing/internal/model"

	"github.com/rs/zerolog/log"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"
)

// SampleProducts is the starter catalog of a fresh grocery install
var SampleProducts = []model.Product{
	{Name: "Rice", Unit: "kg", Price: decimal.NewFromInt(50), Stock: decimal.NewFromInt(20)},
	{Name: "Sugar", Unit: "kg", Price: decimal.NewFromInt(40), Stock: decimal.NewFromInt(15)},
	{Name: "Tea Powder", Unit: "kg", Price: decimal.NewFromInt(200), Stock: decimal.NewFromInt(5)},
	{Name: "Eggs", Unit: "piece", Price: decimal.NewFromInt(6), Stock: decimal.NewFromInt(100)},
}

// Seed inserts the sample products that are not present yet (matched by name).
// It returns how many rows were created.
func Seed(db *gorm.DB) (int, error) {
	created := 0
	err := db.Transaction(func(tx *gorm.DB) error {
		for _, p := range SampleProducts {
			var count int64
			if err := tx.Model(&model.Product{}).Where("name = ?", p.Name).Count(&count).Error; err != nil {
				return err
			}
			if count > 0 {
				continue
			}
			product := p
			if err := tx.Create(&product).Error; err != nil {
				return err
			}
			created++
		}
		return nil
	})
	if err != nil {
		return 0, err
	}
	if created > 0 {
		log.Info().Int("created", created).Msg("sample products seeded")
	}
	return created, nil
}
