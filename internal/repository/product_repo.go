package repository

import (
	"context"
	"errors"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"flex_inventory_admin/internal/model"
)

// ==================== 接口定义 ====================

// ProductRepository 商品仓储接口
type ProductRepository interface {
	// 基础操作
	Upsert(ctx context.Context, product *model.Product) error
	GetByID(ctx context.Context, id string) (*model.Product, error)
	List(ctx context.Context, filter ProductFilter) ([]model.Product, int64, error)
	Count(ctx context.Context) (int64, error)

	// ArchiveNotIn 归档 ID 不在 ids 中的商品 (软下架，不删除)
	ArchiveNotIn(ctx context.Context, ids []string) (int64, error)

	// 图片操作
	FindImage(ctx context.Context, productID, url string) (*model.Image, error)
	CreateImage(ctx context.Context, image *model.Image) error
	GetImagesByProductID(ctx context.Context, productID string) ([]model.Image, error)
}

// ==================== 过滤条件 ====================

// ProductFilter 商品过滤条件
type ProductFilter struct {
	CategoryID      string
	IncludeArchived bool
	FeaturedOnly    bool
	Keyword         string
	Page            int
	PageSize        int
}

// ==================== 仓储实现 ====================

type productRepo struct {
	db *gorm.DB
}

// NewProductRepository 创建商品仓储
func NewProductRepository(db *gorm.DB) ProductRepository {
	return &productRepo{db: db}
}

func (r *productRepo) Upsert(ctx context.Context, product *model.Product) error {
	return r.db.WithContext(ctx).
		Omit(clause.Associations).
		Clauses(clause.OnConflict{
			Columns: []clause.Column{{Name: "id"}},
			DoUpdates: clause.AssignmentColumns([]string{
				"name", "description", "weight", "dimensions", "barcode",
				"ordinal", "is_featured", "is_archived",
				"category_id", "manufacturer_id", "size_id",
				"updated_at",
			}),
		}).Create(product).Error
}

func (r *productRepo) GetByID(ctx context.Context, id string) (*model.Product, error) {
	var product model.Product
	err := r.db.WithContext(ctx).
		Preload("Images").
		First(&product, "id = ?", id).Error
	if err != nil {
		return nil, err
	}
	return &product, nil
}

func (r *productRepo) List(ctx context.Context, filter ProductFilter) ([]model.Product, int64, error) {
	var products []model.Product
	var total int64

	query := r.db.WithContext(ctx).Model(&model.Product{})

	if filter.CategoryID != "" {
		query = query.Where("category_id = ?", filter.CategoryID)
	}
	if !filter.IncludeArchived {
		query = query.Where("is_archived = ?", false)
	}
	if filter.FeaturedOnly {
		query = query.Where("is_featured = ?", true)
	}
	if filter.Keyword != "" {
		query = query.Where("LOWER(name) LIKE LOWER(?)", "%"+filter.Keyword+"%")
	}

	if err := query.Count(&total).Error; err != nil {
		return nil, 0, err
	}

	if filter.Page <= 0 {
		filter.Page = 1
	}
	if filter.PageSize <= 0 {
		filter.PageSize = 20
	}

	offset := (filter.Page - 1) * filter.PageSize
	err := query.
		Order("ordinal ASC").
		Order("id ASC").
		Limit(filter.PageSize).
		Offset(offset).
		Find(&products).Error

	return products, total, err
}

func (r *productRepo) Count(ctx context.Context) (int64, error) {
	var total int64
	err := r.db.WithContext(ctx).Model(&model.Product{}).Count(&total).Error
	return total, err
}

func (r *productRepo) ArchiveNotIn(ctx context.Context, ids []string) (int64, error) {
	result := r.db.WithContext(ctx).
		Model(&model.Product{}).
		Scopes(notInScope("id", ids)).
		Update("is_archived", true)
	return result.RowsAffected, result.Error
}

// FindImage 未找到时返回 (nil, nil)
func (r *productRepo) FindImage(ctx context.Context, productID, url string) (*model.Image, error) {
	var image model.Image
	err := r.db.WithContext(ctx).
		Where("product_id = ? AND url = ?", productID, url).
		First(&image).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &image, nil
}

func (r *productRepo) CreateImage(ctx context.Context, image *model.Image) error {
	return r.db.WithContext(ctx).Create(image).Error
}

func (r *productRepo) GetImagesByProductID(ctx context.Context, productID string) ([]model.Image, error) {
	var images []model.Image
	err := r.db.WithContext(ctx).
		Where("product_id = ?", productID).
		Order("created_at ASC").
		Find(&images).Error
	return images, err
}
