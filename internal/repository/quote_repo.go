package repository

import (
	"context"

	"gorm.io/gorm"

	"flex_inventory_admin/internal/model"
)

// QuoteRepository 询价单仓储 (导出流程只读)
type QuoteRepository interface {
	GetByID(ctx context.Context, id string) (*model.Quote, error)
	GetWithItems(ctx context.Context, id string) (*model.Quote, error)
}

type quoteRepo struct {
	db *gorm.DB
}

// NewQuoteRepository 创建询价单仓储
func NewQuoteRepository(db *gorm.DB) QuoteRepository {
	return &quoteRepo{db: db}
}

func (r *quoteRepo) GetByID(ctx context.Context, id string) (*model.Quote, error) {
	var quote model.Quote
	if err := r.db.WithContext(ctx).First(&quote, "id = ?", id).Error; err != nil {
		return nil, err
	}
	return &quote, nil
}

func (r *quoteRepo) GetWithItems(ctx context.Context, id string) (*model.Quote, error) {
	var quote model.Quote
	err := r.db.WithContext(ctx).
		Preload("QuoteItems").
		First(&quote, "id = ?", id).Error
	if err != nil {
		return nil, err
	}
	return &quote, nil
}
