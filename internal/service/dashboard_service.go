package service

import (
	"context"
	"time"

	"go-pos-billing/internal/repository"

	"github.com/shopspring/decimal"
)

type DashboardService interface {
	GetSalesSummary(ctx context.Context, days int) ([]repository.SalesData, error)
	GetDashboardStats(ctx context.Context) (*repository.DashboardStats, error)
}

type dashboardService struct {
	billRepo repository.BillRepository
	lowStock decimal.Decimal
	now      func() time.Time
}

func NewDashboardService(billRepo repository.BillRepository, lowStock decimal.Decimal) DashboardService {
	return &dashboardService{billRepo: billRepo, lowStock: lowStock, now: time.Now}
}

func (s *dashboardService) GetSalesSummary(ctx context.Context, days int) ([]repository.SalesData, error) {
	endDate := s.now()
	startDate := startOfDay(endDate).AddDate(0, 0, -(days - 1))

	return s.billRepo.GetSalesSummary(ctx, startDate, endDate)
}

func (s *dashboardService) GetDashboardStats(ctx context.Context) (*repository.DashboardStats, error) {
	return s.billRepo.GetDashboardStats(ctx, s.lowStock, startOfDay(s.now()))
}

func startOfDay(t time.Time) time.Time {
	y, m, d := t.Date()
	return time.Date(y, m, d, 0, 0, 0, 0, t.Location())
}
