package service

import (
	"context"
	"testing"

	"go-pos-billing/internal/model"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const (
	sessionA = "8b0f5bb5-3d1c-4e67-9a53-5d1a0e6a9c11"
	sessionB = "e1c3b7a2-7c44-4a0e-8f6e-0f3f1b2d9a77"
)

func TestAddToCartChecksStockWithoutReserving(t *testing.T) {
	f := newFixture(t, DiscountPolicy{})
	ctx := context.Background()
	rice := f.addProduct(t, "Rice", "kg", "50", "20")

	_, err := f.cart.AddToCart(ctx, sessionA, rice, dec("25"))
	assert.ErrorIs(t, err, ErrInsufficientStock)

	lines, err := f.cart.ListCart(ctx, sessionA)
	require.NoError(t, err)
	assert.Empty(t, lines)

	l, err := f.cart.AddToCart(ctx, sessionA, rice, dec("20"))
	require.NoError(t, err)
	assert.NotZero(t, l.ID)
	assertDec(t, "20", f.stockOf(t, rice), "cart does not decrement stock")
}

func TestAddToCartRejectsBadInput(t *testing.T) {
	f := newFixture(t, DiscountPolicy{})
	ctx := context.Background()
	rice := f.addProduct(t, "Rice", "kg", "50", "20")

	_, err := f.cart.AddToCart(ctx, sessionA, 404, dec("1"))
	assert.ErrorIs(t, err, ErrNotFound)

	_, err = f.cart.AddToCart(ctx, sessionA, rice, dec("0"))
	assert.ErrorIs(t, err, ErrValidation)

	_, err = f.cart.AddToCart(ctx, sessionA, rice, dec("-1"))
	assert.ErrorIs(t, err, ErrValidation)
}

func TestRemoveFromCartIsIdempotent(t *testing.T) {
	f := newFixture(t, DiscountPolicy{})
	ctx := context.Background()
	rice := f.addProduct(t, "Rice", "kg", "50", "20")

	l, err := f.cart.AddToCart(ctx, sessionA, rice, dec("1"))
	require.NoError(t, err)

	require.NoError(t, f.cart.RemoveFromCart(ctx, sessionA, l.ID))
	require.NoError(t, f.cart.RemoveFromCart(ctx, sessionA, l.ID))
	require.NoError(t, f.cart.RemoveFromCart(ctx, sessionA, 777))
	require.NoError(t, f.cart.ClearCart(ctx, sessionB))

	lines, err := f.cart.ListCart(ctx, sessionA)
	require.NoError(t, err)
	assert.Empty(t, lines)
}

func TestCartsAreScopedPerSession(t *testing.T) {
	f := newFixture(t, DiscountPolicy{})
	ctx := context.Background()
	rice := f.addProduct(t, "Rice", "kg", "50", "20")

	a, err := f.cart.AddToCart(ctx, sessionA, rice, dec("1"))
	require.NoError(t, err)
	_, err = f.cart.AddToCart(ctx, sessionB, rice, dec("2"))
	require.NoError(t, err)

	// B cannot remove A's line
	require.NoError(t, f.cart.RemoveFromCart(ctx, sessionB, a.ID))
	linesA, err := f.cart.ListCart(ctx, sessionA)
	require.NoError(t, err)
	require.Len(t, linesA, 1)

	require.NoError(t, f.cart.ClearCart(ctx, sessionA))
	linesB, err := f.cart.ListCart(ctx, sessionB)
	require.NoError(t, err)
	require.Len(t, linesB, 1)
	assertDec(t, "2", linesB[0].Quantity)
}

func TestListCartShowsCurrentCatalogData(t *testing.T) {
	f := newFixture(t, DiscountPolicy{})
	ctx := context.Background()
	rice := f.addProduct(t, "Rice", "kg", "50", "20")
	eggs := f.addProduct(t, "Eggs", "piece", "6", "100")

	_, err := f.cart.AddToCart(ctx, sessionA, rice, dec("1.5"))
	require.NoError(t, err)
	_, err = f.cart.AddToCart(ctx, sessionA, eggs, dec("6"))
	require.NoError(t, err)

	_, err = f.catalog.UpdateProduct(ctx, rice, ProductInput{Name: "Basmati Rice", Price: "60", Stock: "20"})
	require.NoError(t, err)

	lines, err := f.cart.ListCart(ctx, sessionA)
	require.NoError(t, err)
	require.Len(t, lines, 2)
	assert.Equal(t, "Basmati Rice", lines[0].Name)
	assert.Equal(t, "kg", lines[0].Unit)
	assertDec(t, "60", lines[0].Price)
	assertDec(t, "90", lines[0].LineTotal)
	assertDec(t, "36", lines[1].LineTotal)

	// a deleted product drops out of the listing
	require.NoError(t, f.catalog.DeleteProduct(ctx, eggs))
	lines, err = f.cart.ListCart(ctx, sessionA)
	require.NoError(t, err)
	require.Len(t, lines, 1)
	assert.Equal(t, rice, lines[0].ProductID)
}

func TestCheckoutBillsCartAndClearsIt(t *testing.T) {
	f := newFixture(t, DiscountPolicy{})
	ctx := context.Background()
	rice := f.addProduct(t, "Rice", "kg", "50", "20")
	sugar := f.addProduct(t, "Sugar", "kg", "40", "15")

	_, err := f.cart.AddToCart(ctx, sessionA, rice, dec("5"))
	require.NoError(t, err)
	_, err = f.cart.AddToCart(ctx, sessionA, sugar, dec("2"))
	require.NoError(t, err)

	billID, err := f.cart.Checkout(ctx, sessionA, "Ravi", pct("10"))
	require.NoError(t, err)

	bill, items, err := f.billing.GetBill(ctx, billID)
	require.NoError(t, err)
	require.Len(t, items, 2)
	assertDec(t, "330", bill.Subtotal)
	assertDec(t, "297", bill.Total)
	assertDec(t, "15", f.stockOf(t, rice))
	assertDec(t, "13", f.stockOf(t, sugar))

	lines, err := f.cart.ListCart(ctx, sessionA)
	require.NoError(t, err)
	assert.Empty(t, lines)
}

func TestCheckoutFailureKeepsCart(t *testing.T) {
	f := newFixture(t, DiscountPolicy{})
	ctx := context.Background()
	rice := f.addProduct(t, "Rice", "kg", "50", "20")

	_, err := f.cart.Checkout(ctx, sessionA, "", nil)
	assert.ErrorIs(t, err, ErrEmptyBill)

	_, err = f.cart.AddToCart(ctx, sessionA, rice, dec("15"))
	require.NoError(t, err)

	// another till sells most of the rice before this cart is billed
	_, err = f.billing.CreateBill(ctx, "", nil, []model.BillLine{line(rice, "10")})
	require.NoError(t, err)

	_, err = f.cart.Checkout(ctx, sessionA, "", nil)
	assert.ErrorIs(t, err, ErrInsufficientStock)

	lines, err := f.cart.ListCart(ctx, sessionA)
	require.NoError(t, err)
	assert.Len(t, lines, 1)
	assertDec(t, "10", f.stockOf(t, rice))
	assert.Equal(t, int64(1), f.count(t, &model.Bill{}))
}
