package model

import (
	"github.com/google/uuid"
	"gorm.io/gorm"
)

// Manufacturer 制造商，业务唯一键为 Name
type Manufacturer struct {
	ID      string  `gorm:"primaryKey;size:36" json:"id"`
	Name    string  `gorm:"size:255;uniqueIndex;not null" json:"name"`
	Country *string `gorm:"size:100" json:"country"`
	Timestamps
}

func (Manufacturer) TableName() string {
	return "manufacturers"
}

// BeforeCreate 生成代理主键
func (m *Manufacturer) BeforeCreate(tx *gorm.DB) error {
	if m.ID == "" {
		m.ID = uuid.NewString()
	}
	return nil
}
