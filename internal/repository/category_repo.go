package repository

import (
	"context"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"flex_inventory_admin/internal/model"
)

// ==================== 接口定义 ====================

// CategoryRepository 分类仓储接口
type CategoryRepository interface {
	Upsert(ctx context.Context, category *model.Category) error
	GetByID(ctx context.Context, id string) (*model.Category, error)
	List(ctx context.Context) ([]model.Category, error)
	Count(ctx context.Context) (int64, error)

	// DeleteNotIn 物理删除 ID 不在 ids 中的分类
	DeleteNotIn(ctx context.Context, ids []string) (int64, error)
}

// ==================== 仓储实现 ====================

type categoryRepo struct {
	db *gorm.DB
}

// NewCategoryRepository 创建分类仓储
func NewCategoryRepository(db *gorm.DB) CategoryRepository {
	return &categoryRepo{db: db}
}

func (r *categoryRepo) Upsert(ctx context.Context, category *model.Category) error {
	return r.db.WithContext(ctx).Clauses(clause.OnConflict{
		Columns: []clause.Column{{Name: "id"}},
		DoUpdates: clause.AssignmentColumns([]string{
			"name", "parent_id", "ordinal", "global_sort_ordinal", "updated_at",
		}),
	}).Create(category).Error
}

func (r *categoryRepo) GetByID(ctx context.Context, id string) (*model.Category, error) {
	var category model.Category
	if err := r.db.WithContext(ctx).First(&category, "id = ?", id).Error; err != nil {
		return nil, err
	}
	return &category, nil
}

func (r *categoryRepo) List(ctx context.Context) ([]model.Category, error) {
	var categories []model.Category
	err := r.db.WithContext(ctx).
		Order("global_sort_ordinal ASC").
		Find(&categories).Error
	return categories, err
}

func (r *categoryRepo) Count(ctx context.Context) (int64, error) {
	var total int64
	err := r.db.WithContext(ctx).Model(&model.Category{}).Count(&total).Error
	return total, err
}

func (r *categoryRepo) DeleteNotIn(ctx context.Context, ids []string) (int64, error) {
	result := r.db.WithContext(ctx).
		Scopes(notInScope("id", ids)).
		Delete(&model.Category{})
	return result.RowsAffected, result.Error
}
