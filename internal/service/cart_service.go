package service

import (
	"context"
	"errors"
	"fmt"

	"go-pos-billing/internal/model"
	"go-pos-billing/internal/repository"

	"github.com/rs/zerolog/log"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"
)

// CartService stages purchases per session. Stock is only checked here;
// it is reserved and decremented by the billing engine.
type CartService interface {
	AddToCart(ctx context.Context, sessionID string, productID uint, quantity decimal.Decimal) (*model.CartLine, error)
	RemoveFromCart(ctx context.Context, sessionID string, lineID uint) error
	ClearCart(ctx context.Context, sessionID string) error
	ListCart(ctx context.Context, sessionID string) ([]model.CartLineView, error)
	Checkout(ctx context.Context, sessionID, customerName string, discountPercent *decimal.Decimal) (uint, error)
}

type cartService struct {
	cartRepo    repository.CartRepository
	productRepo repository.ProductRepository
	billing     BillingService
}

func NewCartService(cRepo repository.CartRepository, pRepo repository.ProductRepository, billing BillingService) CartService {
	return &cartService{
		cartRepo:    cRepo,
		productRepo: pRepo,
		billing:     billing,
	}
}

func (s *cartService) AddToCart(ctx context.Context, sessionID string, productID uint, quantity decimal.Decimal) (*model.CartLine, error) {
	if err := checkLine(model.BillLine{ProductID: productID, Quantity: quantity}); err != nil {
		return nil, err
	}

	product, err := s.productRepo.FindByID(ctx, productID)
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, fmt.Errorf("%w: product %d", ErrNotFound, productID)
	}
	if err != nil {
		return nil, err
	}
	if quantity.GreaterThan(product.Stock) {
		return nil, fmt.Errorf("%w: %s has %s %s left, requested %s",
			ErrInsufficientStock, product.Name, product.Stock, product.Unit, quantity)
	}

	line := &model.CartLine{SessionID: sessionID, ProductID: productID, Quantity: quantity}
	if err := s.cartRepo.Add(ctx, line); err != nil {
		return nil, err
	}
	return line, nil
}

func (s *cartService) RemoveFromCart(ctx context.Context, sessionID string, lineID uint) error {
	return s.cartRepo.Remove(ctx, sessionID, lineID)
}

func (s *cartService) ClearCart(ctx context.Context, sessionID string) error {
	return s.cartRepo.Clear(ctx, sessionID)
}

// ListCart joins the cart with the current catalog. Lines whose product
// has since been deleted are left out.
func (s *cartService) ListCart(ctx context.Context, sessionID string) ([]model.CartLineView, error) {
	lines, err := s.cartRepo.FindBySession(ctx, sessionID)
	if err != nil {
		return nil, err
	}

	ids := make([]uint, 0, len(lines))
	for _, l := range lines {
		ids = append(ids, l.ProductID)
	}
	products, err := s.productRepo.FindByIDs(ctx, ids)
	if err != nil {
		return nil, err
	}

	views := make([]model.CartLineView, 0, len(lines))
	for _, l := range lines {
		p, ok := products[l.ProductID]
		if !ok {
			continue
		}
		views = append(views, model.CartLineView{
			LineID:    l.ID,
			ProductID: p.ID,
			Name:      p.Name,
			Unit:      p.Unit,
			Price:     p.Price,
			Quantity:  l.Quantity,
			LineTotal: RoundMoney(p.Price.Mul(l.Quantity)),
		})
	}
	return views, nil
}

// Checkout bills the session's cart and empties it once the bill is committed
func (s *cartService) Checkout(ctx context.Context, sessionID, customerName string, discountPercent *decimal.Decimal) (uint, error) {
	lines, err := s.cartRepo.FindBySession(ctx, sessionID)
	if err != nil {
		return 0, err
	}

	items := make([]model.BillLine, 0, len(lines))
	for _, l := range lines {
		items = append(items, model.BillLine{ProductID: l.ProductID, Quantity: l.Quantity})
	}

	billID, err := s.billing.CreateBill(ctx, customerName, discountPercent, items)
	if err != nil {
		return 0, err
	}

	if err := s.cartRepo.Clear(ctx, sessionID); err != nil {
		// the bill stands; a stale cart is only a display problem
		log.Warn().Err(err).Str("session", sessionID).Uint("bill_id", billID).Msg("cart not cleared after checkout")
	}
	return billID, nil
}
