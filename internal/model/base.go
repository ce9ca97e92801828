package model

import "time"

// Timestamps 外部主键实体的通用时间字段
// 与 BaseModel 不同：不带 DeletedAt，清理阶段需要物理删除
type Timestamps struct {
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}
