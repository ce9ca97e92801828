package repository

import (
	"context"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"flex_inventory_admin/internal/model"
)

// SizeRepository 尺寸仓储接口
type SizeRepository interface {
	UpsertByValue(ctx context.Context, value string) (*model.Size, error)
	GetByValue(ctx context.Context, value string) (*model.Size, error)
	List(ctx context.Context) ([]model.Size, error)
	Count(ctx context.Context) (int64, error)
	DeleteNotIn(ctx context.Context, ids []string) (int64, error)
}

type sizeRepo struct {
	db *gorm.DB
}

// NewSizeRepository 创建尺寸仓储
func NewSizeRepository(db *gorm.DB) SizeRepository {
	return &sizeRepo{db: db}
}

func (r *sizeRepo) UpsertByValue(ctx context.Context, value string) (*model.Size, error) {
	s := &model.Size{Value: value}
	err := r.db.WithContext(ctx).Clauses(clause.OnConflict{
		Columns:   []clause.Column{{Name: "value"}},
		DoUpdates: clause.AssignmentColumns([]string{"updated_at"}),
	}).Create(s).Error
	if err != nil {
		return nil, err
	}
	return r.GetByValue(ctx, value)
}

func (r *sizeRepo) GetByValue(ctx context.Context, value string) (*model.Size, error) {
	var s model.Size
	if err := r.db.WithContext(ctx).Where("value = ?", value).First(&s).Error; err != nil {
		return nil, err
	}
	return &s, nil
}

func (r *sizeRepo) List(ctx context.Context) ([]model.Size, error) {
	var list []model.Size
	err := r.db.WithContext(ctx).Order("value ASC").Find(&list).Error
	return list, err
}

func (r *sizeRepo) Count(ctx context.Context) (int64, error) {
	var total int64
	err := r.db.WithContext(ctx).Model(&model.Size{}).Count(&total).Error
	return total, err
}

func (r *sizeRepo) DeleteNotIn(ctx context.Context, ids []string) (int64, error) {
	result := r.db.WithContext(ctx).
		Scopes(notInScope("id", ids)).
		Delete(&model.Size{})
	return result.RowsAffected, result.Error
}
