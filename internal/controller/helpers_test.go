package controller

import (
	"bytes"
	"context"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"

	"flex_inventory_admin/internal/model"
	"flex_inventory_admin/pkg/database"
	"flex_inventory_admin/pkg/flex"
)

func init() {
	gin.SetMode(gin.TestMode)
}

// ==================== 测试辅助 ====================

func setupCtlTestDB(t *testing.T) *gorm.DB {
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

func performRequest(r http.Handler, method, path string, body []byte) *httptest.ResponseRecorder {
	req, _ := http.NewRequest(method, path, bytes.NewBuffer(body))
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)
	return w
}

func strPtr(s string) *string { return &s }

// ==================== Flex 假实现 ====================

type stubDirectory struct {
	contacts []flex.Contact
}

func (s *stubDirectory) SearchContacts(_ context.Context, q flex.ContactQuery) (*flex.ContactSearchResult, error) {
	if q.OnlyOrganizations {
		return &flex.ContactSearchResult{Empty: true}, nil
	}
	return &flex.ContactSearchResult{
		Empty:         len(s.contacts) == 0,
		TotalElements: len(s.contacts),
		Content:       s.contacts,
	}, nil
}

func (s *stubDirectory) CreateContact(_ context.Context, req *flex.CreateContactRequest) (*flex.Contact, error) {
	return &flex.Contact{ID: "created", Organization: req.Organization}, nil
}

type stubElements struct {
	failProduct string
	clientIDs   []string
}

func (s *stubElements) CreateElement(_ context.Context, req *flex.CreateElementRequest) (*flex.Element, error) {
	s.clientIDs = append(s.clientIDs, req.ClientID)
	return &flex.Element{ElementID: "E1"}, nil
}

func (s *stubElements) UpdateElementHeader(context.Context, string, *flex.HeaderUpdateRequest) error {
	return nil
}

func (s *stubElements) UpdateElementAddress(context.Context, string, *flex.HeaderUpdateRequest) error {
	return nil
}

func (s *stubElements) AddResource(_ context.Context, _ string, productID string, _ int) error {
	if productID == s.failProduct {
		return &flex.TransportError{Status: 500, Message: "rejected"}
	}
	return nil
}
