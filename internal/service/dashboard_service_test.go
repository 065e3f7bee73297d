package service

import (
	"context"
	"testing"

	"go-pos-billing/internal/model"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDashboardStats(t *testing.T) {
	f := newFixture(t, DiscountPolicy{})
	ctx := context.Background()
	rice := f.addProduct(t, "Rice", "kg", "50", "20")
	f.addProduct(t, "Tea Powder", "kg", "200", "5")

	_, err := f.billing.CreateBill(ctx, "", pct("10"), []model.BillLine{line(rice, "5")})
	require.NoError(t, err)

	dash := NewDashboardService(f.bills, dec("10"))
	stats, err := dash.GetDashboardStats(ctx)
	require.NoError(t, err)
	assert.Equal(t, int64(2), stats.TotalProducts)
	assert.Equal(t, int64(1), stats.LowStockCount)
	assertDec(t, "1750", stats.TotalValuation) // 15*50 + 5*200
	assert.Equal(t, int64(1), stats.BillsToday)
	assertDec(t, "225", stats.SalesToday)

	sales, err := dash.GetSalesSummary(ctx, 7)
	require.NoError(t, err)
	require.Len(t, sales, 1)
	assert.Equal(t, int64(1), sales[0].Bills)
	assertDec(t, "225", sales[0].Revenue)
}
