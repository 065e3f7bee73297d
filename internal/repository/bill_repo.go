package repository

import (
	"context"
	"time"

	"go-pos-billing/internal/model"

	"github.com/shopspring/decimal"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

type BillRepository interface {
	// Create inserts the bill row only; items are written one by one with
	// CreateItem so they can interleave with stock decrements.
	Create(tx *gorm.DB, bill *model.Bill) error
	CreateItem(tx *gorm.DB, item *model.BillItem) error

	FindByID(ctx context.Context, id uint) (*model.Bill, error)
	FindRecent(ctx context.Context, limit int) ([]model.Bill, error)
	GetDashboardStats(ctx context.Context, lowStock decimal.Decimal, since time.Time) (*DashboardStats, error)
	GetSalesSummary(ctx context.Context, startDate, endDate time.Time) ([]SalesData, error)
}

// SalesData is one day of sales for charts
type SalesData struct {
	Date    string          `json:"date"`
	Bills   int64           `json:"bills"`
	Revenue decimal.Decimal `json:"revenue"`
}

// DashboardStats is the overview shown on the dashboard
type DashboardStats struct {
	TotalProducts  int64           `json:"total_products"`
	LowStockCount  int64           `json:"low_stock_count"`
	TotalValuation decimal.Decimal `json:"total_valuation"`
	BillsToday     int64           `json:"bills_today"`
	SalesToday     decimal.Decimal `json:"sales_today"`
}

type billRepo struct {
	db *gorm.DB
}

func NewBillRepo(db *gorm.DB) BillRepository {
	return &billRepo{db}
}

func (r *billRepo) Create(tx *gorm.DB, bill *model.Bill) error {
	return tx.Omit(clause.Associations).Create(bill).Error
}

func (r *billRepo) CreateItem(tx *gorm.DB, item *model.BillItem) error {
	return tx.Omit(clause.Associations).Create(item).Error
}

func (r *billRepo) FindByID(ctx context.Context, id uint) (*model.Bill, error) {
	var bill model.Bill
	err := r.db.WithContext(ctx).
		Preload("Items", func(db *gorm.DB) *gorm.DB { return db.Order("bill_items.id ASC") }).
		Preload("Items.Product").
		First(&bill, "id = ?", id).Error
	if err != nil {
		return nil, err
	}
	return &bill, nil
}

func (r *billRepo) FindRecent(ctx context.Context, limit int) ([]model.Bill, error) {
	var bills []model.Bill
	err := r.db.WithContext(ctx).Order("created_at DESC").Order("id DESC").Limit(limit).Find(&bills).Error
	return bills, err
}

func (r *billRepo) GetDashboardStats(ctx context.Context, lowStock decimal.Decimal, since time.Time) (*DashboardStats, error) {
	var stats DashboardStats
	db := r.db.WithContext(ctx)

	if err := db.Model(&model.Product{}).Count(&stats.TotalProducts).Error; err != nil {
		return nil, err
	}
	if err := db.Model(&model.Product{}).Where("stock < ?", lowStock).Count(&stats.LowStockCount).Error; err != nil {
		return nil, err
	}

	// Row().Scan hands the raw SUM to decimal's sql.Scanner, which accepts
	// postgres numeric strings as well as sqlite integers/floats.
	var valuation, sales decimal.Decimal
	if err := db.Model(&model.Product{}).Select("COALESCE(SUM(stock * price), 0)").Row().Scan(&valuation); err != nil {
		return nil, err
	}
	stats.TotalValuation = valuation.Round(2)

	if err := db.Model(&model.Bill{}).Where("created_at >= ?", since).Count(&stats.BillsToday).Error; err != nil {
		return nil, err
	}
	if err := db.Model(&model.Bill{}).Where("created_at >= ?", since).Select("COALESCE(SUM(total), 0)").Row().Scan(&sales); err != nil {
		return nil, err
	}
	stats.SalesToday = sales.Round(2)

	return &stats, nil
}

func (r *billRepo) GetSalesSummary(ctx context.Context, startDate, endDate time.Time) ([]SalesData, error) {
	var bills []model.Bill
	err := r.db.WithContext(ctx).
		Select("id", "total", "created_at").
		Where("created_at BETWEEN ? AND ?", startDate, endDate).
		Order("created_at ASC").
		Find(&bills).Error
	if err != nil {
		return nil, err
	}

	// grouped in Go: DATE() differs between postgres and sqlite timestamp storage
	results := []SalesData{}
	index := map[string]int{}
	for _, b := range bills {
		day := b.CreatedAt.Format("2006-01-02")
		i, ok := index[day]
		if !ok {
			results = append(results, SalesData{Date: day, Revenue: decimal.Zero})
			i = len(results) - 1
			index[day] = i
		}
		results[i].Bills++
		results[i].Revenue = results[i].Revenue.Add(b.Total)
	}
	return results, nil
}
