package main

import (
	"bytes"
	"encoding/base64"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"flex_inventory_admin/internal/config"
	"flex_inventory_admin/internal/model"
	"flex_inventory_admin/internal/service"
)

func init() {
	gin.SetMode(gin.TestMode)
}

// ==================== Flex 模拟服务 ====================

type flexStub struct {
	mu        sync.Mutex
	report    string
	elements  int
	resources map[string]string
}

func reportCSV(rows ...map[string]string) string {
	var b strings.Builder
	b.WriteString(strings.Join(service.ReportColumns, ","))
	b.WriteString("\n")
	for _, row := range rows {
		values := make([]string, len(service.ReportColumns))
		for i, col := range service.ReportColumns {
			v, ok := row[col]
			if !ok {
				v = "null"
			}
			values[i] = v
		}
		b.WriteString(strings.Join(values, ","))
		b.WriteString("\n")
	}
	return b.String()
}

func newFlexStub(t *testing.T, report string) (*flexStub, *httptest.Server) {
	t.Helper()
	stub := &flexStub{report: report, resources: make(map[string]string)}

	mux := http.NewServeMux()
	mux.HandleFunc("GET /f5/api/report/generate/{id}", func(w http.ResponseWriter, r *http.Request) {
		_, _ = io.WriteString(w, base64.StdEncoding.EncodeToString([]byte(stub.report)))
	})
	mux.HandleFunc("GET /f5/api/report/custom-report", func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		_, _ = io.WriteString(w, `[{"id":"rpt-1","name":"Inventory"}]`)
	})
	mux.HandleFunc("GET /f5/api/contact/search", func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		_, _ = io.WriteString(w, `{"empty":true,"content":[]}`)
	})
	mux.HandleFunc("POST /f5/api/contact", func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		_, _ = io.WriteString(w, `{"id":"contact-new"}`)
	})
	mux.HandleFunc("POST /f5/api/element", func(w http.ResponseWriter, r *http.Request) {
		stub.mu.Lock()
		stub.elements++
		stub.mu.Unlock()
		w.Header().Set("Content-Type", "application/json")
		_, _ = io.WriteString(w, `{"elementId":"E1","name":"quote"}`)
	})
	mux.HandleFunc("POST /f5/api/element/{id}/header-update", func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
	})
	mux.HandleFunc("POST /f5/api/financial-document-line-item/{id}/add-resource/{product}", func(w http.ResponseWriter, r *http.Request) {
		stub.mu.Lock()
		stub.resources[r.PathValue("product")] = r.URL.Query().Get("quantity")
		stub.mu.Unlock()
		w.WriteHeader(http.StatusOK)
	})

	srv := httptest.NewServer(mux)
	t.Cleanup(srv.Close)
	return stub, srv
}

func newTestDeps(t *testing.T, flexURL string) *Dependencies {
	t.Helper()
	cfg := &config.Config{
		DBDriver:             "sqlite",
		DatabaseDSN:          ":memory:",
		FlexURL:              flexURL,
		FlexAPIKey:           "key",
		ReportID:             "rpt-1",
		FlexTimeout:          5 * time.Second,
		InventorySyncTimeout: time.Minute,
		SyncRunRetention:     24 * time.Hour,
	}
	log := zap.NewNop()
	deps := initDependencies(cfg, initDatabase(cfg, log), log)
	t.Cleanup(deps.TaskManager.Stop)
	return deps
}

// ==================== 全链路 ====================

func TestServer_InventoryThenExport(t *testing.T) {
	report := reportCSV(
		map[string]string{
			service.ColCategoryID: "C1", service.ColCategoryName: "Website Cart",
			service.ColCategoryOrdinal: "1", service.ColCategoryGlobalOrder: "1",
		},
		map[string]string{
			service.ColCategoryID: "C1", service.ColCategoryName: "Website Cart",
			service.ColCategoryOrdinal: "1", service.ColCategoryGlobalOrder: "1",
			service.ColItemID: "P1", service.ColDisplayString: "Folding Chair",
			service.ColManufacturer: "Lifetime", service.ColSize: "Small",
			service.ColIsFeatured: "TRUE", service.ColIsArchived: "false",
			service.ColItemOrdinal: "2", service.ColImageURL: "https://img.test/chair.jpg",
		},
	)
	stub, srv := newFlexStub(t, report)
	deps := newTestDeps(t, srv.URL)
	r := newRouter(deps)

	// 1. 同步库存
	w := httptest.NewRecorder()
	req, _ := http.NewRequest(http.MethodGet, "/api/inventory/update", nil)
	r.ServeHTTP(w, req)
	require.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Body.String(), "data:Inventory Update Complete")

	// 2. 目录可查
	w = httptest.NewRecorder()
	req, _ = http.NewRequest(http.MethodGet, "/api/products/P1", nil)
	r.ServeHTTP(w, req)
	require.Equal(t, http.StatusOK, w.Code)

	var productResp struct {
		Data model.Product `json:"data"`
	}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &productResp))
	assert.Equal(t, "Folding Chair", productResp.Data.Name)
	assert.True(t, productResp.Data.IsFeatured)
	require.Len(t, productResp.Data.Images, 1)

	w = httptest.NewRecorder()
	req, _ = http.NewRequest(http.MethodGet, "/api/categories", nil)
	r.ServeHTTP(w, req)
	assert.Contains(t, w.Body.String(), `"name":"Home"`)

	// 3. 导出询价单
	quote := &model.Quote{
		ID: "Q1", FirstName: "Jane", LastName: "Doe", Email: "jane@example.com",
		StartDate:      time.Date(2025, 6, 1, 9, 0, 0, 0, time.UTC),
		EndDate:        time.Date(2025, 6, 2, 9, 0, 0, 0, time.UTC),
		DeliveryMethod: model.DeliveryMethodPickup,
		QuoteItems:     []model.QuoteItem{{ID: "I1", ProductID: "P1", Quantity: 4}},
	}
	require.NoError(t, deps.DB.Create(quote).Error)

	w = httptest.NewRecorder()
	req, _ = http.NewRequest(http.MethodPatch, "/api/quotes/Q1/export", nil)
	r.ServeHTTP(w, req)
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())

	stub.mu.Lock()
	defer stub.mu.Unlock()
	assert.Equal(t, 1, stub.elements)
	assert.Equal(t, map[string]string{"P1": "4"}, stub.resources)
}

func TestServer_VerifySettings(t *testing.T) {
	_, srv := newFlexStub(t, "")
	deps := newTestDeps(t, srv.URL)
	r := newRouter(deps)

	w := httptest.NewRecorder()
	req, _ := http.NewRequest(http.MethodPost, "/api/settings/verify", nil)
	r.ServeHTTP(w, req)

	assert.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Body.String(), `"valid":true`)
}

func TestRunVerify(t *testing.T) {
	_, srv := newFlexStub(t, "")
	deps := newTestDeps(t, srv.URL)

	var out bytes.Buffer
	require.NoError(t, runVerify(t.Context(), deps.FlexClient, &out, zap.NewNop()))
	assert.Contains(t, out.String(), "Flex 凭证有效")

	out.Reset()
	other := deps.FlexClient.WithCredentials(srv.URL+"/missing", "")
	assert.Error(t, runVerify(t.Context(), other, &out, zap.NewNop()))
}
