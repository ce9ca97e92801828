package repository

import (
	"context"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"flex_inventory_admin/internal/model"
)

// ManufacturerRepository 制造商仓储接口
type ManufacturerRepository interface {
	// UpsertByName 按名称 (唯一键) 写入，返回持久化后的记录
	UpsertByName(ctx context.Context, name string, country *string) (*model.Manufacturer, error)
	GetByName(ctx context.Context, name string) (*model.Manufacturer, error)
	List(ctx context.Context) ([]model.Manufacturer, error)
	Count(ctx context.Context) (int64, error)
	DeleteNotIn(ctx context.Context, ids []string) (int64, error)
}

type manufacturerRepo struct {
	db *gorm.DB
}

// NewManufacturerRepository 创建制造商仓储
func NewManufacturerRepository(db *gorm.DB) ManufacturerRepository {
	return &manufacturerRepo{db: db}
}

func (r *manufacturerRepo) UpsertByName(ctx context.Context, name string, country *string) (*model.Manufacturer, error) {
	m := &model.Manufacturer{Name: name, Country: country}
	err := r.db.WithContext(ctx).Clauses(clause.OnConflict{
		Columns:   []clause.Column{{Name: "name"}},
		DoUpdates: clause.AssignmentColumns([]string{"country", "updated_at"}),
	}).Create(m).Error
	if err != nil {
		return nil, err
	}
	// 冲突时新生成的 ID 被丢弃，回查拿到真实 ID
	return r.GetByName(ctx, name)
}

func (r *manufacturerRepo) GetByName(ctx context.Context, name string) (*model.Manufacturer, error) {
	var m model.Manufacturer
	if err := r.db.WithContext(ctx).Where("name = ?", name).First(&m).Error; err != nil {
		return nil, err
	}
	return &m, nil
}

func (r *manufacturerRepo) List(ctx context.Context) ([]model.Manufacturer, error) {
	var list []model.Manufacturer
	err := r.db.WithContext(ctx).Order("name ASC").Find(&list).Error
	return list, err
}

func (r *manufacturerRepo) Count(ctx context.Context) (int64, error) {
	var total int64
	err := r.db.WithContext(ctx).Model(&model.Manufacturer{}).Count(&total).Error
	return total, err
}

func (r *manufacturerRepo) DeleteNotIn(ctx context.Context, ids []string) (int64, error) {
	result := r.db.WithContext(ctx).
		Scopes(notInScope("id", ids)).
		Delete(&model.Manufacturer{})
	return result.RowsAffected, result.Error
}
