package model

import (
	"time"

	"gorm.io/datatypes"
)

// SyncRunStatus 库存同步执行状态
type SyncRunStatus string

const (
	SyncRunStatusRunning SyncRunStatus = "running"
	SyncRunStatusSuccess SyncRunStatus = "success"
	SyncRunStatusFailed  SyncRunStatus = "failed"
)

// SyncTrigger 触发来源
type SyncTrigger string

const (
	SyncTriggerManual   SyncTrigger = "manual"
	SyncTriggerSchedule SyncTrigger = "schedule"
	SyncTriggerCLI      SyncTrigger = "cli"
)

// SyncRun 库存同步执行记录
type SyncRun struct {
	BaseModel
	Trigger    SyncTrigger    `gorm:"size:20;index" json:"trigger"`
	Status     SyncRunStatus  `gorm:"size:20;index" json:"status"`
	StartedAt  time.Time      `json:"started_at"`
	FinishedAt *time.Time     `json:"finished_at"`
	ErrorMsg   string         `gorm:"size:2048" json:"error_msg"`
	Stats      datatypes.JSON `json:"stats"`
}

func (SyncRun) TableName() string {
	return "sync_runs"
}

// SyncRunStats 单次同步统计 (存入 Stats 字段)
type SyncRunStats struct {
	TotalRows            int   `json:"total_rows"`
	ProcessedRows        int   `json:"processed_rows"`
	Categories           int   `json:"categories"`
	Manufacturers        int   `json:"manufacturers"`
	Sizes                int   `json:"sizes"`
	Products             int   `json:"products"`
	ArchivedProducts     int64 `json:"archived_products"`
	DeletedCategories    int64 `json:"deleted_categories"`
	DeletedManufacturers int64 `json:"deleted_manufacturers"`
	DeletedSizes         int64 `json:"deleted_sizes"`
}
