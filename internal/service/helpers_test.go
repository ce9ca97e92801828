package service

import (
	"bytes"
	"context"
	"encoding/csv"
	"sync"
	"testing"

	"go.uber.org/zap"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"

	"flex_inventory_admin/internal/model"
	"flex_inventory_admin/internal/repository"
	"flex_inventory_admin/pkg/database"
)

// ==================== 测试数据库 ====================

func setupTestDB(t *testing.T) *gorm.DB {
	t.Helper()
	db, err := database.Open(database.Options{
		Driver:  database.DriverSQLite,
		DSN:     ":memory:",
		LogMode: logger.Silent,
	})
	if err != nil {
		t.Fatalf("连接测试数据库失败: %v", err)
	}
	if err := db.AutoMigrate(model.All()...); err != nil {
		t.Fatalf("数据库迁移失败: %v", err)
	}
	return db
}

// ==================== 报表构造 ====================

// buildReport 按固定表头生成 CSV，未给出的列填 "null"
func buildReport(t *testing.T, rows ...map[string]string) string {
	t.Helper()
	var buf bytes.Buffer
	w := csv.NewWriter(&buf)
	if err := w.Write(ReportColumns); err != nil {
		t.Fatal(err)
	}
	for _, row := range rows {
		record := make([]string, len(ReportColumns))
		for i, col := range ReportColumns {
			v, ok := row[col]
			if !ok {
				v = nullMarker
			}
			record[i] = v
		}
		if err := w.Write(record); err != nil {
			t.Fatal(err)
		}
	}
	w.Flush()
	return buf.String()
}

func categoryRow(id, name, parent string) map[string]string {
	return map[string]string{
		ColCategoryID:          id,
		ColCategoryName:        name,
		ColParentGroupID:       parent,
		ColCategoryOrdinal:     "1",
		ColCategoryGlobalOrder: "1,000",
	}
}

func productRow(categoryID, itemID, display string, extra map[string]string) map[string]string {
	row := map[string]string{
		ColCategoryID:          categoryID,
		ColCategoryName:        "ignored",
		ColParentGroupID:       "",
		ColCategoryOrdinal:     "1",
		ColCategoryGlobalOrder: "1",
		ColItemID:              itemID,
		ColDisplayString:       display,
		ColItemOrdinal:         "3",
	}
	for k, v := range extra {
		row[k] = v
	}
	return row
}

// ==================== 假实现 ====================

type fakeReport struct {
	text string
	err  error
}

func (f *fakeReport) FetchReport(context.Context) (string, error) {
	return f.text, f.err
}

// recordingNotifier 记录全部事件
type recordingNotifier struct {
	mu     sync.Mutex
	logs   []string
	json   []any
	errs   []error
	closed int
}

func (n *recordingNotifier) Log(msg string) {
	n.mu.Lock()
	defer n.mu.Unlock()
	n.logs = append(n.logs, msg)
}

func (n *recordingNotifier) JSON(v any) {
	n.mu.Lock()
	defer n.mu.Unlock()
	n.json = append(n.json, v)
}

func (n *recordingNotifier) Error(err error) {
	n.mu.Lock()
	defer n.mu.Unlock()
	n.errs = append(n.errs, err)
}

func (n *recordingNotifier) Close() {
	n.mu.Lock()
	defer n.mu.Unlock()
	n.closed++
}

func (n *recordingNotifier) progress() []string {
	var out []string
	for _, v := range n.json {
		if p, ok := v.(Progress); ok {
			out = append(out, p.Progress)
		}
	}
	return out
}

func newInventoryService(db *gorm.DB, report ReportSource) *InventoryService {
	return NewInventoryService(
		report,
		repository.NewCategoryRepository(db),
		repository.NewManufacturerRepository(db),
		repository.NewSizeRepository(db),
		repository.NewProductRepository(db),
		repository.NewSyncRunRepository(db),
		zap.NewNop(),
	)
}

func strPtr(s string) *string { return &s }
