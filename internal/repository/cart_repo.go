package repository

import (
	"context"

	"go-pos-billing/internal/model"

	"gorm.io/gorm"
)

// CartRepository stores cart lines per session. Remove and Clear are
// idempotent: touching a missing line or an empty cart is not an error.
type CartRepository interface {
	Add(ctx context.Context, line *model.CartLine) error
	FindBySession(ctx context.Context, sessionID string) ([]model.CartLine, error)
	Remove(ctx context.Context, sessionID string, lineID uint) error
	Clear(ctx context.Context, sessionID string) error
}

type cartRepo struct {
	db *gorm.DB
}

func NewCartRepo(db *gorm.DB) CartRepository {
	return &cartRepo{db}
}

func (r *cartRepo) Add(ctx context.Context, line *model.CartLine) error {
	return r.db.WithContext(ctx).Omit("Product").Create(line).Error
}

func (r *cartRepo) FindBySession(ctx context.Context, sessionID string) ([]model.CartLine, error) {
	var lines []model.CartLine
	err := r.db.WithContext(ctx).Where("session_id = ?", sessionID).Order("id ASC").Find(&lines).Error
	return lines, err
}

func (r *cartRepo) Remove(ctx context.Context, sessionID string, lineID uint) error {
	return r.db.WithContext(ctx).
		Where("id = ? AND session_id = ?", lineID, sessionID).
		Delete(&model.CartLine{}).Error
}

func (r *cartRepo) Clear(ctx context.Context, sessionID string) error {
	return r.db.WithContext(ctx).Where("session_id = ?", sessionID).Delete(&model.CartLine{}).Error
}
