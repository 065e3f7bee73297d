package service

import (
	"context"
	"sync"
	"testing"

	"go-pos-billing/internal/events"
	"go-pos-billing/internal/model"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestCreateBillRiceExample(t *testing.T) {
	f := newFixture(t, DiscountPolicy{})
	ctx := context.Background()
	rice := f.addProduct(t, "Rice", "kg", "50", "20")

	billID, err := f.billing.CreateBill(ctx, "", pct("10"), []model.BillLine{line(rice, "5")})
	require.NoError(t, err)

	bill, items, err := f.billing.GetBill(ctx, billID)
	require.NoError(t, err)
	require.NotNil(t, bill)
	assert.Nil(t, bill.CustomerName)
	assertDec(t, "10", bill.DiscountPercent)
	assertDec(t, "250", bill.Subtotal)
	assertDec(t, "25", bill.DiscountAmount)
	assertDec(t, "225", bill.Total)
	assert.False(t, bill.CreatedAt.IsZero())

	require.Len(t, items, 1)
	assert.Equal(t, rice, items[0].ProductID)
	assertDec(t, "5", items[0].Quantity)
	assertDec(t, "50", items[0].UnitPrice)
	assertDec(t, "250", items[0].LineTotal)
	require.NotNil(t, items[0].Product)
	assert.Equal(t, "Rice", items[0].Product.Name)

	assertDec(t, "15", f.stockOf(t, rice))

	last := f.events.Events[len(f.events.Events)-1]
	assert.Equal(t, events.ActionBillCreated, last.Action)
	require.NotNil(t, last.Bill)
	assert.Equal(t, billID, last.Bill.ID)
	require.Len(t, last.Bill.Stocks, 1)
	assertDec(t, "15", last.Bill.Stocks[0].Stock)
}

func TestCreateBillKeepsCustomerName(t *testing.T) {
	f := newFixture(t, DiscountPolicy{})
	ctx := context.Background()
	eggs := f.addProduct(t, "Eggs", "piece", "6", "100")

	billID, err := f.billing.CreateBill(ctx, "  Asha ", nil, []model.BillLine{line(eggs, "12")})
	require.NoError(t, err)

	bill, _, err := f.billing.GetBill(ctx, billID)
	require.NoError(t, err)
	require.NotNil(t, bill.CustomerName)
	assert.Equal(t, "Asha", *bill.CustomerName)
	assertDec(t, "0", bill.DiscountPercent)
	assertDec(t, "72", bill.Total)
}

func TestCreateBillEmpty(t *testing.T) {
	f := newFixture(t, DiscountPolicy{})

	_, err := f.billing.CreateBill(context.Background(), "", pct("0"), nil)
	assert.ErrorIs(t, err, ErrEmptyBill)
	assert.Zero(t, f.count(t, &model.Bill{}))
}

func TestCreateBillRejectsInvalidInput(t *testing.T) {
	f := newFixture(t, DiscountPolicy{})
	ctx := context.Background()
	rice := f.addProduct(t, "Rice", "kg", "50", "20")

	cases := map[string]struct {
		discount *decimal.Decimal
		items    []model.BillLine
	}{
		"discount above 100": {pct("100.5"), []model.BillLine{line(rice, "1")}},
		"negative discount":  {pct("-1"), []model.BillLine{line(rice, "1")}},
		"zero quantity":      {nil, []model.BillLine{line(rice, "0")}},
		"negative quantity":  {nil, []model.BillLine{line(rice, "1"), line(rice, "-2")}},
	}
	for name, tc := range cases {
		_, err := f.billing.CreateBill(ctx, "", tc.discount, tc.items)
		assert.ErrorIs(t, err, ErrValidation, name)
	}
	assert.Zero(t, f.count(t, &model.Bill{}))
	assertDec(t, "20", f.stockOf(t, rice))
}

func TestCreateBillRollsBackOnMissingProduct(t *testing.T) {
	f := newFixture(t, DiscountPolicy{})
	rice := f.addProduct(t, "Rice", "kg", "50", "20")

	_, err := f.billing.CreateBill(context.Background(), "", nil, []model.BillLine{line(rice, "5"), line(9999, "1")})
	assert.ErrorIs(t, err, ErrNotFound)

	assert.Zero(t, f.count(t, &model.Bill{}))
	assert.Zero(t, f.count(t, &model.BillItem{}))
	assertDec(t, "20", f.stockOf(t, rice))
}

func TestCreateBillRollsBackOnInsufficientStock(t *testing.T) {
	f := newFixture(t, DiscountPolicy{})
	rice := f.addProduct(t, "Rice", "kg", "50", "20")
	sugar := f.addProduct(t, "Sugar", "kg", "40", "15")

	_, err := f.billing.CreateBill(context.Background(), "", nil, []model.BillLine{line(rice, "5"), line(sugar, "16")})
	assert.ErrorIs(t, err, ErrInsufficientStock)

	assert.Zero(t, f.count(t, &model.Bill{}))
	assert.Zero(t, f.count(t, &model.BillItem{}))
	assertDec(t, "20", f.stockOf(t, rice))
	assertDec(t, "15", f.stockOf(t, sugar))
	for _, e := range f.events.Events {
		assert.NotEqual(t, events.ActionBillCreated, e.Action)
	}
}

func TestCreateBillGuardsRepeatedProduct(t *testing.T) {
	f := newFixture(t, DiscountPolicy{})
	rice := f.addProduct(t, "Rice", "kg", "50", "20")

	// each line alone fits the stock, together they do not
	_, err := f.billing.CreateBill(context.Background(), "", nil, []model.BillLine{line(rice, "15"), line(rice, "10")})
	assert.ErrorIs(t, err, ErrInsufficientStock)
	assert.Zero(t, f.count(t, &model.Bill{}))
	assertDec(t, "20", f.stockOf(t, rice))

	// while a combined quantity within stock is fine
	_, err = f.billing.CreateBill(context.Background(), "", nil, []model.BillLine{line(rice, "15"), line(rice, "5")})
	require.NoError(t, err)
	assertDec(t, "0", f.stockOf(t, rice))
}

func TestConcurrentBillsForFullStock(t *testing.T) {
	f := newFixture(t, DiscountPolicy{})
	rice := f.addProduct(t, "Rice", "kg", "50", "20")

	var wg sync.WaitGroup
	errs := make([]error, 2)
	for i := range errs {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			_, errs[i] = f.billing.CreateBill(context.Background(), "", nil, []model.BillLine{line(rice, "20")})
		}(i)
	}
	wg.Wait()

	succeeded := 0
	for _, err := range errs {
		if err == nil {
			succeeded++
			continue
		}
		assert.ErrorIs(t, err, ErrInsufficientStock)
	}
	assert.Equal(t, 1, succeeded)
	assert.Equal(t, int64(1), f.count(t, &model.Bill{}))
	assertDec(t, "0", f.stockOf(t, rice))
}

func TestGetBillRoundTripTotals(t *testing.T) {
	f := newFixture(t, DiscountPolicy{})
	ctx := context.Background()
	eggs := f.addProduct(t, "Eggs", "piece", "6", "100")
	tea := f.addProduct(t, "Tea Powder", "kg", "200", "5")
	sugar := f.addProduct(t, "Sugar", "kg", "40.35", "15")

	billID, err := f.billing.CreateBill(ctx, "", pct("12.5"), []model.BillLine{
		line(eggs, "7"), line(tea, "0.25"), line(sugar, "1.5"),
	})
	require.NoError(t, err)

	bill, items, err := f.billing.GetBill(ctx, billID)
	require.NoError(t, err)
	require.Len(t, items, 3)

	// items come back in input order
	assert.Equal(t, []uint{eggs, tea, sugar}, []uint{items[0].ProductID, items[1].ProductID, items[2].ProductID})

	sum := decimal.Zero
	for _, it := range items {
		sum = sum.Add(it.LineTotal)
		assert.LessOrEqual(t, int(-it.LineTotal.Exponent()), 2, "line total keeps at most 2 places")
	}
	assertDec(t, "42", items[0].LineTotal)
	assertDec(t, "50", items[1].LineTotal)
	assertDec(t, "60.53", items[2].LineTotal) // 60.525

	assertDec(t, sum.String(), bill.Subtotal)
	assertDec(t, "152.53", bill.Subtotal)
	assertDec(t, "19.07", bill.DiscountAmount) // 19.06625
	assertDec(t, "133.46", bill.Total)
	assert.True(t, bill.Total.Equal(bill.Subtotal.Sub(bill.DiscountAmount)))

	assertDec(t, "93", f.stockOf(t, eggs))
	assertDec(t, "4.75", f.stockOf(t, tea))
	assertDec(t, "13.5", f.stockOf(t, sugar))
}

func TestLineTotalRoundsHalfUp(t *testing.T) {
	f := newFixture(t, DiscountPolicy{})
	ctx := context.Background()
	chilli := f.addProduct(t, "Chilli", "g", "0.05", "10")

	billID, err := f.billing.CreateBill(ctx, "", nil, []model.BillLine{line(chilli, "0.5")})
	require.NoError(t, err)

	bill, items, err := f.billing.GetBill(ctx, billID)
	require.NoError(t, err)
	assertDec(t, "0.03", items[0].LineTotal) // 0.025, banker's rounding would give 0.02
	assertDec(t, "0.03", bill.Total)
}

func TestBillKeepsPriceSnapshot(t *testing.T) {
	f := newFixture(t, DiscountPolicy{})
	ctx := context.Background()
	rice := f.addProduct(t, "Rice", "kg", "50", "20")

	billID, err := f.billing.CreateBill(ctx, "", nil, []model.BillLine{line(rice, "2")})
	require.NoError(t, err)

	_, err = f.catalog.UpdateProduct(ctx, rice, ProductInput{Name: "Rice", Price: "99", Stock: "18"})
	require.NoError(t, err)

	bill, items, err := f.billing.GetBill(ctx, billID)
	require.NoError(t, err)
	assertDec(t, "50", items[0].UnitPrice)
	assertDec(t, "100", bill.Total)
}

func TestAutomaticDiscountTier(t *testing.T) {
	f := newFixture(t, DiscountPolicy{Threshold: dec("500"), AutoPercent: dec("10")})
	ctx := context.Background()
	rice := f.addProduct(t, "Rice", "kg", "50", "100")

	get := func(id uint) *model.Bill {
		bill, _, err := f.billing.GetBill(ctx, id)
		require.NoError(t, err)
		return bill
	}

	// above threshold, no manual discount
	id, err := f.billing.CreateBill(ctx, "", nil, []model.BillLine{line(rice, "11")})
	require.NoError(t, err)
	bill := get(id)
	assertDec(t, "10", bill.DiscountPercent)
	assertDec(t, "55", bill.DiscountAmount)
	assertDec(t, "495", bill.Total)

	// exactly at threshold
	id, err = f.billing.CreateBill(ctx, "", nil, []model.BillLine{line(rice, "10")})
	require.NoError(t, err)
	bill = get(id)
	assertDec(t, "0", bill.DiscountPercent)
	assertDec(t, "500", bill.Total)

	// manual overrides automatic
	id, err = f.billing.CreateBill(ctx, "", pct("5"), []model.BillLine{line(rice, "11")})
	require.NoError(t, err)
	bill = get(id)
	assertDec(t, "5", bill.DiscountPercent)
	assertDec(t, "27.5", bill.DiscountAmount)
	assertDec(t, "522.5", bill.Total)
}

func TestGetBillMissing(t *testing.T) {
	f := newFixture(t, DiscountPolicy{})

	bill, items, err := f.billing.GetBill(context.Background(), 42)
	assert.NoError(t, err)
	assert.Nil(t, bill)
	assert.Empty(t, items)
}

func TestListBillsNewestFirst(t *testing.T) {
	f := newFixture(t, DiscountPolicy{})
	ctx := context.Background()
	eggs := f.addProduct(t, "Eggs", "piece", "6", "100")

	var ids []uint
	for i := 0; i < 3; i++ {
		id, err := f.billing.CreateBill(ctx, "", nil, []model.BillLine{line(eggs, "1")})
		require.NoError(t, err)
		ids = append(ids, id)
	}

	bills, err := f.billing.ListBills(ctx, 2)
	require.NoError(t, err)
	require.Len(t, bills, 2)
	assert.Equal(t, ids[2], bills[0].ID)
	assert.Equal(t, ids[1], bills[1].ID)
}
