package model

// HomeCategoryName 目录树根节点名称
const HomeCategoryName = "Home"

// websiteCartName Flex 中目录根节点的原始名称
const websiteCartName = "Website Cart"

// Category 商品分类 (主键为 Flex 分组 ID)
// ParentID 只是引用，不建外键：上游数据不保证拓扑有序，也不保证无环
type Category struct {
	ID                string  `gorm:"primaryKey;size:64" json:"id"`
	Name              string  `gorm:"size:255;not null" json:"name"`
	ParentID          *string `gorm:"size:64;index" json:"parent_id"`
	Ordinal           int     `gorm:"default:0" json:"ordinal"`
	GlobalSortOrdinal int     `gorm:"default:0;index" json:"global_sort_ordinal"`
	Timestamps
}

func (Category) TableName() string {
	return "categories"
}

// NormalizeCategoryName 入库前的名称转换："Website Cart" -> "Home"
func NormalizeCategoryName(name string) string {
	if name == websiteCartName {
		return HomeCategoryName
	}
	return name
}
