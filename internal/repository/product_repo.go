package repository

import (
	"context"

	"go-pos-billing/internal/model"

	"github.com/shopspring/decimal"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

type ProductRepository interface {
	Create(ctx context.Context, product *model.Product) error
	FindAll(ctx context.Context) ([]model.Product, error)
	FindByID(ctx context.Context, id uint) (*model.Product, error)
	FindByIDs(ctx context.Context, ids []uint) (map[uint]model.Product, error)

	// Transactional helpers, run on the caller's tx
	FindForUpdate(tx *gorm.DB, id uint) (*model.Product, error)
	LockForUpdate(tx *gorm.DB, ids []uint) (map[uint]model.Product, error)
	CountBillReferences(tx *gorm.DB, id uint) (int64, error)
	Delete(tx *gorm.DB, id uint) (int64, error)
	Save(tx *gorm.DB, product *model.Product) error
	DecrementStock(tx *gorm.DB, id uint, qty decimal.Decimal) (bool, error)
}

type productRepo struct {
	db *gorm.DB
}

func NewProductRepo(db *gorm.DB) ProductRepository {
	return &productRepo{db}
}

func (r *productRepo) Create(ctx context.Context, product *model.Product) error {
	return r.db.WithContext(ctx).Create(product).Error
}

// FindAll returns the catalog ordered by name, ties broken by id
func (r *productRepo) FindAll(ctx context.Context) ([]model.Product, error) {
	var products []model.Product
	err := r.db.WithContext(ctx).Order("name ASC").Order("id ASC").Find(&products).Error
	return products, err
}

func (r *productRepo) FindByID(ctx context.Context, id uint) (*model.Product, error) {
	var product model.Product
	if err := r.db.WithContext(ctx).First(&product, "id = ?", id).Error; err != nil {
		return nil, err
	}
	return &product, nil
}

func (r *productRepo) FindByIDs(ctx context.Context, ids []uint) (map[uint]model.Product, error) {
	out := make(map[uint]model.Product, len(ids))
	if len(ids) == 0 {
		return out, nil
	}
	var products []model.Product
	if err := r.db.WithContext(ctx).Where("id IN ?", ids).Find(&products).Error; err != nil {
		return nil, err
	}
	for _, p := range products {
		out[p.ID] = p
	}
	return out, nil
}

func (r *productRepo) Delete(tx *gorm.DB, id uint) (int64, error) {
	res := tx.Delete(&model.Product{}, id)
	return res.RowsAffected, res.Error
}

func (r *productRepo) CountBillReferences(tx *gorm.DB, id uint) (int64, error) {
	var count int64
	err := tx.Model(&model.BillItem{}).Where("product_id = ?", id).Count(&count).Error
	return count, err
}

// FindForUpdate reads the product under a row lock (SELECT ... FOR UPDATE).
// The sqlite dialect drops the locking clause; there the single writer
// connection provides the same serialisation.
func (r *productRepo) FindForUpdate(tx *gorm.DB, id uint) (*model.Product, error) {
	var product model.Product
	if err := tx.Clauses(clause.Locking{Strength: "UPDATE"}).First(&product, "id = ?", id).Error; err != nil {
		return nil, err
	}
	return &product, nil
}

// LockForUpdate locks the distinct products in ids in ascending id order,
// so every caller acquires row locks in the same order. Missing ids are
// simply absent from the map.
func (r *productRepo) LockForUpdate(tx *gorm.DB, ids []uint) (map[uint]model.Product, error) {
	out := make(map[uint]model.Product, len(ids))
	if len(ids) == 0 {
		return out, nil
	}
	var products []model.Product
	err := tx.Clauses(clause.Locking{Strength: "UPDATE"}).
		Where("id IN ?", ids).
		Order("id ASC").
		Find(&products).Error
	if err != nil {
		return nil, err
	}
	for _, p := range products {
		out[p.ID] = p
	}
	return out, nil
}

func (r *productRepo) Save(tx *gorm.DB, product *model.Product) error {
	return tx.Save(product).Error
}

// DecrementStock subtracts qty only while enough stock remains. It reports
// false when the guarded update touched no row.
func (r *productRepo) DecrementStock(tx *gorm.DB, id uint, qty decimal.Decimal) (bool, error) {
	res := tx.Model(&model.Product{}).
		Where("id = ? AND stock >= ?", id, qty).
		Updates(map[string]interface{}{
			"stock":      gorm.Expr("stock - ?", qty),
			"updated_at": gorm.Expr("CURRENT_TIMESTAMP"),
		})
	if res.Error != nil {
		return false, res.Error
	}
	return res.RowsAffected == 1, nil
}
