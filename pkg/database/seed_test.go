package database

import (
	"testing"

	"go-pos-billing/internal/model"

	"github.com/stretchr/testify/require"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
)

func TestSeedIdempotent(t *testing.T) {
	db, err := gorm.Open(sqlite.Open("file:seed_test?mode=memory&cache=shared"), &gorm.Config{})
	require.NoError(t, err)
	require.NoError(t, AutoMigrate(db))

	n, err := Seed(db)
	require.NoError(t, err)
	require.Equal(t, len(SampleProducts), n)

	n, err = Seed(db)
	require.NoError(t, err)
	require.Zero(t, n)

	var rice model.Product
	require.NoError(t, db.First(&rice, "name = ?", "Rice").Error)
	require.Equal(t, "kg", rice.Unit)
	require.Equal(t, "50", rice.Price.String())
	require.Equal(t, "20", rice.Stock.String())
}
