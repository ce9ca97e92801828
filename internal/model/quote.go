package model

import "time"

// DeliveryMethod 提货方式
type DeliveryMethod string

const (
	DeliveryMethodDelivery DeliveryMethod = "DELIVERY"
	DeliveryMethodPickup   DeliveryMethod = "PICKUP"
)

// Quote 客户询价单
// 由上游 (网站表单) 写入，导出流程只读
type Quote struct {
	ID             string         `gorm:"primaryKey;size:36" json:"id"`
	Company        *string        `gorm:"size:255" json:"company"`
	FirstName      string         `gorm:"size:100;not null" json:"first_name"`
	LastName       string         `gorm:"size:100;not null" json:"last_name"`
	Email          string         `gorm:"size:255;not null" json:"email"`
	Phone          string         `gorm:"size:50" json:"phone"`
	StartDate      time.Time      `json:"start_date"`
	EndDate        time.Time      `json:"end_date"`
	DeliveryMethod DeliveryMethod `gorm:"size:20;not null" json:"delivery_method"`
	Notes          *string        `gorm:"type:text" json:"notes"`

	// --- 送货联系人 ---
	DeliveryContactName  *string `gorm:"size:255" json:"delivery_contact_name"`
	DeliveryContactPhone *string `gorm:"size:50" json:"delivery_contact_phone"`

	QuoteItems []QuoteItem `gorm:"foreignKey:QuoteID" json:"quote_items"`
	Timestamps
}

func (Quote) TableName() string {
	return "quotes"
}

// FullName 联系人全名，用于 Flex 联系人搜索与匹配
func (q *Quote) FullName() string {
	return q.FirstName + " " + q.LastName
}

// QuoteItem 询价单行项目
type QuoteItem struct {
	ID        string `gorm:"primaryKey;size:36" json:"id"`
	QuoteID   string `gorm:"size:36;index;not null" json:"quote_id"`
	ProductID string `gorm:"size:64;index;not null" json:"product_id"`
	Quantity  int    `gorm:"not null;default:1" json:"quantity"`
}

func (QuoteItem) TableName() string {
	return "quote_items"
}
