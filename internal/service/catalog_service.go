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
	"go-pos-billing/pkg/validator"

	"github.com/rs/zerolog/log"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"
)

// ProductInput is the raw operator input for creating or editing a product.
// Price and stock arrive as text and must parse as non-negative decimals.
type ProductInput struct {
	Name  string `json:"name" validate:"required,max=255"`
	Unit  string `json:"unit" validate:"max=20"`
	Price string `json:"price" validate:"required,nonneg_decimal"`
	Stock string `json:"stock" validate:"required,nonneg_decimal"`
}

func (in ProductInput) parse() (name, unit string, price, stock decimal.Decimal, err error) {
	in.Name = strings.TrimSpace(in.Name)
	in.Unit = strings.TrimSpace(in.Unit)
	in.Price = strings.TrimSpace(in.Price)
	in.Stock = strings.TrimSpace(in.Stock)
	if errs := validator.ValidateStruct(&in); len(errs) > 0 {
		return "", "", decimal.Zero, decimal.Zero, validationError(errs)
	}
	// validated above
	price = RoundMoney(decimal.RequireFromString(in.Price))
	stock = decimal.RequireFromString(in.Stock)
	if err := checkMoney("price", price); err != nil {
		return "", "", decimal.Zero, decimal.Zero, err
	}
	if err := checkStock(stock); err != nil {
		return "", "", decimal.Zero, decimal.Zero, err
	}
	return in.Name, in.Unit, price, stock, nil
}

type CatalogService interface {
	AddProduct(ctx context.Context, in ProductInput) (uint, error)
	GetProduct(ctx context.Context, id uint) (*model.Product, error)
	ListProducts(ctx context.Context) ([]model.Product, error)
	UpdateProduct(ctx context.Context, id uint, in ProductInput) (*model.Product, error)
	DeleteProduct(ctx context.Context, id uint) error
}

type catalogService struct {
	productRepo repository.ProductRepository
	db          *gorm.DB
	events      events.Publisher
}

func NewCatalogService(pRepo repository.ProductRepository, db *gorm.DB, pub events.Publisher) CatalogService {
	return &catalogService{
		productRepo: pRepo,
		db:          db,
		events:      pub,
	}
}

func (s *catalogService) AddProduct(ctx context.Context, in ProductInput) (uint, error) {
	name, unit, price, stock, err := in.parse()
	if err != nil {
		return 0, err
	}

	product := &model.Product{Name: name, Unit: unit, Price: price, Stock: stock}
	if err := s.productRepo.Create(ctx, product); err != nil {
		return 0, err
	}

	s.publish(ctx, events.ActionProductCreated, product, nil, fmt.Sprintf("product '%s' created", product.Name))
	return product.ID, nil
}

// GetProduct returns nil, nil when the product does not exist
func (s *catalogService) GetProduct(ctx context.Context, id uint) (*model.Product, error) {
	product, err := s.productRepo.FindByID(ctx, id)
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, nil
	}
	return product, err
}

func (s *catalogService) ListProducts(ctx context.Context) ([]model.Product, error) {
	return s.productRepo.FindAll(ctx)
}

// UpdateProduct edits a product under a row lock. An empty unit keeps the
// current one.
func (s *catalogService) UpdateProduct(ctx context.Context, id uint, in ProductInput) (*model.Product, error) {
	name, unit, price, stock, err := in.parse()
	if err != nil {
		return nil, err
	}

	var updated model.Product
	var oldStock decimal.Decimal
	err = s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		existing, err := s.productRepo.FindForUpdate(tx, id)
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return fmt.Errorf("%w: product %d", ErrNotFound, id)
		}
		if err != nil {
			return err
		}

		oldStock = existing.Stock
		existing.Name = name
		if unit != "" {
			existing.Unit = unit
		}
		existing.Price = price
		existing.Stock = stock

		if err := s.productRepo.Save(tx, existing); err != nil {
			return err
		}
		updated = *existing
		return nil
	})
	if err != nil {
		return nil, err
	}

	s.publish(ctx, events.ActionProductUpdated, &updated, &oldStock, fmt.Sprintf("product '%s' updated", updated.Name))
	return &updated, nil
}

// DeleteProduct refuses products that appear on any bill, so historical
// bills keep their product reference. The product row stays locked from
// the reference count to the delete, so no bill can slip in between.
func (s *catalogService) DeleteProduct(ctx context.Context, id uint) error {
	var deleted *model.Product
	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		product, err := s.productRepo.FindForUpdate(tx, id)
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return fmt.Errorf("%w: product %d", ErrNotFound, id)
		}
		if err != nil {
			return err
		}

		refs, err := s.productRepo.CountBillReferences(tx, id)
		if err != nil {
			return err
		}
		if refs > 0 {
			return fmt.Errorf("%w: product %d appears on %d bill item(s)", ErrProductInUse, id, refs)
		}

		affected, err := s.productRepo.Delete(tx, id)
		if errors.Is(err, gorm.ErrForeignKeyViolated) {
			return fmt.Errorf("%w: product %d", ErrProductInUse, id)
		}
		if err != nil {
			return err
		}
		if affected == 0 {
			return fmt.Errorf("%w: product %d", ErrNotFound, id)
		}
		deleted = product
		return nil
	})
	if err != nil {
		return err
	}

	s.publish(ctx, events.ActionProductDeleted, deleted, nil, fmt.Sprintf("product '%s' deleted", deleted.Name))
	return nil
}

func (s *catalogService) publish(ctx context.Context, action string, p *model.Product, oldStock *decimal.Decimal, msg string) {
	evt := events.Event{
		Type:   events.TypeStockUpdate,
		Action: action,
		Product: &events.ProductEvent{
			ID:       p.ID,
			Name:     p.Name,
			Price:    p.Price,
			OldStock: oldStock,
			Stock:    p.Stock,
		},
		Message:    msg,
		OccurredAt: time.Now(),
	}
	if err := s.events.Publish(ctx, evt); err != nil {
		log.Warn().Err(err).Str("action", action).Uint("product_id", p.ID).Msg("event publish failed")
	}
}
