package dto

import (
	"encoding/json"
	"time"

	"flex_inventory_admin/internal/model"
)

// ==================== 凭证校验 ====================

// VerifyCredentialsReq 校验 Flex 凭证，空字段使用当前配置
type VerifyCredentialsReq struct {
	FlexURL  string `json:"flex_url"`
	APIKey   string `json:"api_key"`
	ReportID string `json:"report_id"`
}

// VerifyCredentialsResp 校验结果
type VerifyCredentialsResp struct {
	Valid bool `json:"valid"`
}

// ==================== 同步记录 ====================

// SyncRunResp 同步记录
type SyncRunResp struct {
	ID         int64               `json:"id"`
	Trigger    model.SyncTrigger   `json:"trigger"`
	Status     model.SyncRunStatus `json:"status"`
	StartedAt  time.Time           `json:"started_at"`
	FinishedAt *time.Time          `json:"finished_at"`
	Duration   string              `json:"duration,omitempty"`
	ErrorMsg   string              `json:"error_msg,omitempty"`
	Stats      *model.SyncRunStats `json:"stats,omitempty"`
}

// ToSyncRunResp 模型转响应
func ToSyncRunResp(run *model.SyncRun) SyncRunResp {
	resp := SyncRunResp{
		ID:         run.ID,
		Trigger:    run.Trigger,
		Status:     run.Status,
		StartedAt:  run.StartedAt,
		FinishedAt: run.FinishedAt,
		ErrorMsg:   run.ErrorMsg,
	}
	if run.FinishedAt != nil {
		resp.Duration = run.FinishedAt.Sub(run.StartedAt).Round(time.Millisecond).String()
	}
	if len(run.Stats) > 0 {
		var stats model.SyncRunStats
		if err := json.Unmarshal(run.Stats, &stats); err == nil {
			resp.Stats = &stats
		}
	}
	return resp
}

// ==================== 目录 ====================

// ProductListResp 商品列表
type ProductListResp struct {
	Code     int             `json:"code"`
	Message  string          `json:"message"`
	Data     []model.Product `json:"data"`
	Total    int64           `json:"total"`
	Page     int             `json:"page"`
	PageSize int             `json:"page_size"`
}

// ==================== 询价单 ====================

// ExportQuoteResp 导出结果
type ExportQuoteResp struct {
	QuoteID string `json:"quote_id"`
	Company string `json:"company,omitempty"`
	Name    string `json:"name"`
	Items   int    `json:"items"`
}
