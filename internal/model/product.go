package model

import (
	"github.com/google/uuid"
	"gorm.io/gorm"
)

// Product 商品 (主键为 Flex Item ID)
// 清理阶段只归档 (IsArchived)，从不物理删除
type Product struct {
	ID          string  `gorm:"primaryKey;size:64" json:"id"`
	Name        string  `gorm:"size:255;not null" json:"name"`
	Description string  `gorm:"type:text" json:"description"`
	Weight      *string `gorm:"size:100" json:"weight"`
	Dimensions  *string `gorm:"size:100" json:"dimensions"`
	Barcode     *string `gorm:"size:100;index" json:"barcode"`
	Ordinal     int     `gorm:"default:0" json:"ordinal"`
	IsFeatured  bool    `gorm:"default:false;index" json:"is_featured"`
	IsArchived  bool    `gorm:"default:false;index" json:"is_archived"`

	// --- 引用 (不建外键约束，允许分类晚于商品出现) ---
	CategoryID     string  `gorm:"size:64;index;not null" json:"category_id"`
	ManufacturerID *string `gorm:"size:36;index" json:"manufacturer_id"`
	SizeID         *string `gorm:"size:36;index" json:"size_id"`

	Images []Image `gorm:"foreignKey:ProductID" json:"images,omitempty"`
	Timestamps
}

func (Product) TableName() string {
	return "products"
}

// Image 商品图片，(ProductID, URL) 唯一
// 同步流程只插入缺失的记录，不更新也不删除
type Image struct {
	ID        string `gorm:"primaryKey;size:36" json:"id"`
	ProductID string `gorm:"size:64;not null;uniqueIndex:idx_image_product_url" json:"product_id"`
	URL       string `gorm:"size:1024;not null;uniqueIndex:idx_image_product_url" json:"url"`
	Timestamps
}

func (*Image) TableName() string {
	return "images"
}

func (i *Image) BeforeCreate(tx *gorm.DB) error {
	if i.ID == "" {
		i.ID = uuid.NewString()
	}
	return nil
}
