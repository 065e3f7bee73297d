package service

import (
	"context"
	"fmt"
	"strings"
	"testing"

	"go-pos-billing/internal/events"
	"go-pos-billing/internal/model"
	"go-pos-billing/internal/repository"
	"go-pos-billing/pkg/database"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/require"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

// newTestDB opens a private in-memory sqlite database. One connection keeps
// the shared-cache database alive and serialises writers like production
// sqlite does.
func newTestDB(t *testing.T) *gorm.DB {
	t.Helper()
	name := strings.NewReplacer("/", "_", " ", "_").Replace(t.Name())
	dsn := fmt.Sprintf("file:%s?mode=memory&cache=shared", name)
	db, err := gorm.Open(sqlite.Open(dsn), &gorm.Config{Logger: logger.Default.LogMode(logger.Silent)})
	require.NoError(t, err)

	sqlDB, err := db.DB()
	require.NoError(t, err)
	sqlDB.SetMaxOpenConns(1)
	t.Cleanup(func() { sqlDB.Close() })

	require.NoError(t, database.AutoMigrate(db))
	return db
}

type fixture struct {
	db       *gorm.DB
	products repository.ProductRepository
	bills    repository.BillRepository
	carts    repository.CartRepository
	events   *events.Recorder
	catalog  CatalogService
	billing  BillingService
	cart     CartService
}

func newFixture(t *testing.T, policy DiscountPolicy) *fixture {
	t.Helper()
	db := newTestDB(t)
	f := &fixture{
		db:       db,
		products: repository.NewProductRepo(db),
		bills:    repository.NewBillRepo(db),
		carts:    repository.NewCartRepo(db),
		events:   &events.Recorder{},
	}
	f.catalog = NewCatalogService(f.products, db, f.events)
	f.billing = NewBillingService(f.products, f.bills, db, f.events, policy)
	f.cart = NewCartService(f.carts, f.products, f.billing)
	return f
}

func (f *fixture) addProduct(t *testing.T, name, unit, price, stock string) uint {
	t.Helper()
	id, err := f.catalog.AddProduct(context.Background(), ProductInput{Name: name, Unit: unit, Price: price, Stock: stock})
	require.NoError(t, err)
	return id
}

func (f *fixture) stockOf(t *testing.T, id uint) decimal.Decimal {
	t.Helper()
	var p model.Product
	require.NoError(t, f.db.First(&p, id).Error)
	return p.Stock
}

func (f *fixture) count(t *testing.T, m interface{}) int64 {
	t.Helper()
	var n int64
	require.NoError(t, f.db.Model(m).Count(&n).Error)
	return n
}

func line(productID uint, qty string) model.BillLine {
	return model.BillLine{ProductID: productID, Quantity: dec(qty)}
}

func pct(s string) *decimal.Decimal {
	d := dec(s)
	return &d
}
