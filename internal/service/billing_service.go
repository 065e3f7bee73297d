package service

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"go-pos-billing/internal/events"
	"go-pos-billing/internal/model"
	"go-pos-billing/internal/repository"

	"github.com/rs/zerolog/log"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"
)

const maxListBills = 500

type BillingService interface {
	CreateBill(ctx context.Context, customerName string, discountPercent *decimal.Decimal, items []model.BillLine) (uint, error)
	GetBill(ctx context.Context, id uint) (*model.Bill, []model.BillItem, error)
	ListBills(ctx context.Context, limit int) ([]model.Bill, error)
}

type billingService struct {
	productRepo repository.ProductRepository
	billRepo    repository.BillRepository
	db          *gorm.DB
	events      events.Publisher
	policy      DiscountPolicy
	now         func() time.Time
}

func NewBillingService(pRepo repository.ProductRepository, bRepo repository.BillRepository, db *gorm.DB, pub events.Publisher, policy DiscountPolicy) BillingService {
	return &billingService{
		productRepo: pRepo,
		billRepo:    bRepo,
		db:          db,
		events:      pub,
		policy:      policy,
		now:         time.Now,
	}
}

// CreateBill turns items into a persisted bill in one transaction: every
// product is re-read under lock, priced at its current price, and its stock
// decremented with a guarded update. Any failure rolls the whole bill back.
// A nil discountPercent lets the automatic discount tier decide.
func (s *billingService) CreateBill(ctx context.Context, customerName string, discountPercent *decimal.Decimal, items []model.BillLine) (uint, error) {
	if len(items) == 0 {
		return 0, ErrEmptyBill
	}
	if err := checkDiscount(discountPercent); err != nil {
		return 0, err
	}
	for i, it := range items {
		if err := checkLine(it); err != nil {
			return 0, fmt.Errorf("item %d: %w", i+1, err)
		}
	}

	var bill model.Bill
	var stocks []events.StockLevel

	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		// lock every product up front in id order so concurrent bills
		// listing the same products in different orders cannot deadlock
		products, err := s.productRepo.LockForUpdate(tx, productIDs(items))
		if err != nil {
			return err
		}

		lines := make([]model.BillItem, 0, len(items))
		subtotal := decimal.Zero

		for _, it := range items {
			product, ok := products[it.ProductID]
			if !ok {
				return fmt.Errorf("%w: product %d", ErrNotFound, it.ProductID)
			}
			if product.Stock.LessThan(it.Quantity) {
				return fmt.Errorf("%w: %s has %s left, requested %s", ErrInsufficientStock, product.Name, product.Stock, it.Quantity)
			}

			// line totals are rounded before summing so the stored lines add
			// up to the stored subtotal exactly
			lineTotal := RoundMoney(product.Price.Mul(it.Quantity))
			subtotal = subtotal.Add(lineTotal)
			if err := checkMoney("bill subtotal", subtotal); err != nil {
				return err
			}
			lines = append(lines, model.BillItem{
				ProductID: product.ID,
				Quantity:  it.Quantity,
				UnitPrice: product.Price,
				LineTotal: lineTotal,
			})
		}

		percent := s.policy.Resolve(subtotal, discountPercent)
		totals := ComputeTotals(subtotal, percent)

		bill = model.Bill{
			CustomerName:    optionalName(customerName),
			DiscountPercent: percent,
			Subtotal:        totals.Subtotal,
			DiscountAmount:  totals.DiscountAmount,
			Total:           totals.Total,
			CreatedAt:       s.now(),
		}
		if err := s.billRepo.Create(tx, &bill); err != nil {
			return err
		}

		for i := range lines {
			lines[i].BillID = bill.ID
			if err := s.billRepo.CreateItem(tx, &lines[i]); err != nil {
				return err
			}
			ok, err := s.productRepo.DecrementStock(tx, lines[i].ProductID, lines[i].Quantity)
			if err != nil {
				return err
			}
			if !ok {
				// stock moved since the read above, or the product is listed twice
				return fmt.Errorf("%w: product %d", ErrInsufficientStock, lines[i].ProductID)
			}
		}

		stocks, err = s.stockLevels(tx, lines)
		if err != nil {
			return err
		}
		bill.Items = lines
		return nil
	})
	if err != nil {
		return 0, err
	}

	log.Info().Uint("bill_id", bill.ID).Str("total", bill.Total.StringFixed(2)).Int("items", len(bill.Items)).Msg("bill created")
	s.publishBill(ctx, &bill, stocks)
	return bill.ID, nil
}

// GetBill returns nil, nil, nil when the bill does not exist
func (s *billingService) GetBill(ctx context.Context, id uint) (*model.Bill, []model.BillItem, error) {
	bill, err := s.billRepo.FindByID(ctx, id)
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, nil, nil
	}
	if err != nil {
		return nil, nil, err
	}
	return bill, bill.Items, nil
}

func (s *billingService) ListBills(ctx context.Context, limit int) ([]model.Bill, error) {
	switch {
	case limit <= 0:
		limit = 50
	case limit > maxListBills:
		limit = maxListBills
	}
	return s.billRepo.FindRecent(ctx, limit)
}

func productIDs(items []model.BillLine) []uint {
	ids := make([]uint, 0, len(items))
	for _, it := range items {
		ids = append(ids, it.ProductID)
	}
	return ids
}

func (s *billingService) stockLevels(tx *gorm.DB, lines []model.BillItem) ([]events.StockLevel, error) {
	seen := map[uint]bool{}
	levels := make([]events.StockLevel, 0, len(lines))
	for _, l := range lines {
		if seen[l.ProductID] {
			continue
		}
		seen[l.ProductID] = true
		p, err := s.productRepo.FindForUpdate(tx, l.ProductID)
		if err != nil {
			return nil, err
		}
		levels = append(levels, events.StockLevel{ProductID: p.ID, Stock: p.Stock})
	}
	return levels, nil
}

func (s *billingService) publishBill(ctx context.Context, bill *model.Bill, stocks []events.StockLevel) {
	evt := events.Event{
		Type:   events.TypeStockUpdate,
		Action: events.ActionBillCreated,
		Bill: &events.BillEvent{
			ID:     bill.ID,
			Total:  bill.Total,
			Items:  len(bill.Items),
			Stocks: stocks,
		},
		Message:    fmt.Sprintf("bill #%d created, total %s", bill.ID, bill.Total.StringFixed(2)),
		OccurredAt: bill.CreatedAt,
	}
	if err := s.events.Publish(ctx, evt); err != nil {
		log.Warn().Err(err).Uint("bill_id", bill.ID).Msg("event publish failed")
	}
}

func optionalName(name string) *string {
	name = strings.TrimSpace(name)
	if name == "" {
		return nil
	}
	return &name
}
