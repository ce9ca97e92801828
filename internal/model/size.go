package model

import (
	"github.com/google/uuid"
	"gorm.io/gorm"
)

// Size 尺寸，业务唯一键为 Value (自由文本，如 "10ft")
type Size struct {
	ID    string `gorm:"primaryKey;size:36" json:"id"`
	Value string `gorm:"size:255;uniqueIndex;not null" json:"value"`
	Timestamps
}

func (Size) TableName() string {
	return "sizes"
}

func (s *Size) BeforeCreate(tx *gorm.DB) error {
	if s.ID == "" {
		s.ID = uuid.NewString()
	}
	return nil
}
