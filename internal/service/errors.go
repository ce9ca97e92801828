package service

import (
	"errors"
	"fmt"
	"strings"

	"go.uber.org/multierr"
)

// ErrQuoteNotFound 询价单不存在
var ErrQuoteNotFound = errors.New("invalid quote id")

// ==================== 同步阶段 ====================

// Stage 对账失败所在的阶段
type Stage string

const (
	StageCategory     Stage = "category"
	StageManufacturer Stage = "manufacturer"
	StageSize         Stage = "size"
	StageProduct      Stage = "product"
	StageImage        Stage = "image"
)

// ParseError 报表解析失败，携带遇到的第一个错误
type ParseError struct {
	Line int // 1-based，0 表示未知
	Err  error
}

func (e *ParseError) Error() string {
	if e.Line > 0 {
		return fmt.Sprintf("parse report: line %d: %v", e.Line, e.Err)
	}
	return fmt.Sprintf("parse report: %v", e.Err)
}

func (e *ParseError) Unwrap() error { return e.Err }

// ReconciliationError 逐行对账中任一写入失败，整轮中止
type ReconciliationError struct {
	Stage Stage
	Row   int
	Cause error
}

func (e *ReconciliationError) Error() string {
	return fmt.Sprintf("reconcile %s (row %d): %v", e.Stage, e.Row, e.Cause)
}

func (e *ReconciliationError) Unwrap() error { return e.Cause }

// CleanupError 清理阶段的失败汇总
// 四个清理动作互不阻塞，Failures 保存全部失败
type CleanupError struct {
	Failures error
}

func (e *CleanupError) Error() string {
	return fmt.Sprintf("orphan cleanup: %v", e.Failures)
}

func (e *CleanupError) Unwrap() []error { return multierr.Errors(e.Failures) }

// MatchError 联系人搜索 / 创建失败
type MatchError struct {
	Op    string
	Cause error
}

func (e *MatchError) Error() string {
	return fmt.Sprintf("match contact (%s): %v", e.Op, e.Cause)
}

func (e *MatchError) Unwrap() error { return e.Cause }

// ==================== 导出 ====================

// 导出阶段
const (
	ExportStageElement  = "element"
	ExportStageHeader   = "header_update"
	ExportStageAddress  = "address_data"
	ExportStageLineItem = "line_item"
)

// FailedLineItem 添加失败的行项目
type FailedLineItem struct {
	ProductID string
	Quantity  int
	Err       error
}

// ExportError 工单导出失败
type ExportError struct {
	Stage       string
	Cause       error
	FailedItems []FailedLineItem
}

func (e *ExportError) Error() string {
	if len(e.FailedItems) > 0 {
		ids := make([]string, 0, len(e.FailedItems))
		for _, item := range e.FailedItems {
			ids = append(ids, item.ProductID)
		}
		return fmt.Sprintf("export quote (%s): %d line items failed [%s]: %v",
			e.Stage, len(e.FailedItems), strings.Join(ids, ", "), e.Cause)
	}
	return fmt.Sprintf("export quote (%s): %v", e.Stage, e.Cause)
}

func (e *ExportError) Unwrap() error { return e.Cause }
