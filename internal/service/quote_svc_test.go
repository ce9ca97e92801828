package service

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"flex_inventory_admin/internal/model"
	"flex_inventory_admin/internal/repository"
	"flex_inventory_admin/pkg/flex"
)

// fakeElements 记录工单接口调用
type fakeElements struct {
	mu sync.Mutex

	createErr  error
	headerErr  error
	addressErr error
	failItems  map[string]bool

	created   []*flex.CreateElementRequest
	headers   []*flex.HeaderUpdateRequest
	addresses []*flex.HeaderUpdateRequest
	resources map[string]int
}

func (f *fakeElements) CreateElement(_ context.Context, req *flex.CreateElementRequest) (*flex.Element, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.createErr != nil {
		return nil, f.createErr
	}
	f.created = append(f.created, req)
	return &flex.Element{ElementID: "E1", Name: req.Name}, nil
}

func (f *fakeElements) UpdateElementHeader(_ context.Context, _ string, req *flex.HeaderUpdateRequest) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.headers = append(f.headers, req)
	return f.headerErr
}

func (f *fakeElements) UpdateElementAddress(_ context.Context, _ string, req *flex.HeaderUpdateRequest) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.addresses = append(f.addresses, req)
	return f.addressErr
}

func (f *fakeElements) AddResource(_ context.Context, elementID, productID string, quantity int) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.failItems[productID] {
		return errors.New("rejected")
	}
	if f.resources == nil {
		f.resources = make(map[string]int)
	}
	f.resources[elementID+"/"+productID] = quantity
	return nil
}

func seedQuote(t *testing.T, method model.DeliveryMethod) (*QuoteService, *fakeElements, *fakeDirectory) {
	t.Helper()
	db := setupTestDB(t)

	quote := testQuote()
	quote.DeliveryMethod = method
	quote.StartDate = time.Date(2025, 6, 1, 9, 0, 0, 0, time.UTC)
	quote.EndDate = time.Date(2025, 6, 3, 17, 30, 0, 0, time.UTC)
	quote.Notes = strPtr("Back gate")
	quote.DeliveryContactName = strPtr("Sam")
	quote.DeliveryContactPhone = strPtr("555-0199")
	quote.QuoteItems = []model.QuoteItem{
		{ID: "I1", ProductID: "P1", Quantity: 2},
		{ID: "I2", ProductID: "P2", Quantity: 10},
		{ID: "I3", ProductID: "P3", Quantity: 1},
	}
	require.NoError(t, db.Create(quote).Error)

	quoteRepo := repository.NewQuoteRepository(db)
	dir := &fakeDirectory{}
	elements := &fakeElements{}
	contactSvc := NewContactService(quoteRepo, dir, zap.NewNop())
	return NewQuoteService(quoteRepo, contactSvc, elements, zap.NewNop()), elements, dir
}

func TestExportQuote_Pickup(t *testing.T) {
	svc, elements, _ := seedQuote(t, model.DeliveryMethodPickup)

	elementID, err := svc.ExportQuote(context.Background(), "Q1", "client-1")
	require.NoError(t, err)
	assert.Equal(t, "E1", elementID)

	require.Len(t, elements.created, 1)
	req := elements.created[0]
	assert.Equal(t, "e08b60c8-ba18-11e1-8260-22000afc4ec4", req.DepartmentID)
	assert.Equal(t, "client-1", req.ClientID)
	assert.Equal(t, "client-1", req.BillToID)
	assert.Equal(t, "Acme - Jane Doe", req.Name)
	assert.Equal(t, "2025-06-01T09:00:00.000Z", req.PlannedStartDate)
	assert.Equal(t, "2025-06-03T17:30:00.000Z", req.PlannedEndDate)
	assert.Equal(t, "Back gate", *req.Notes)
	assert.Equal(t, flexCreatedByUserID, req.AssignedToUserID)
	assert.Len(t, req.CustomFieldValues, 4)
	require.NotNil(t, req.CustomFieldValues[elementEmptyCustomField])
	assert.Equal(t, "", *req.CustomFieldValues[elementEmptyCustomField])

	require.Len(t, elements.headers, 1)
	assert.Equal(t, "customContactOneId", elements.headers[0].FieldType)
	assert.Equal(t, "Sam - 555-0199", elements.headers[0].DisplayValue)
	assert.Empty(t, elements.addresses)

	assert.Equal(t, map[string]int{"E1/P1": 2, "E1/P2": 10, "E1/P3": 1}, elements.resources)
}

func TestExportQuote_DeliveryUpdatesAddress(t *testing.T) {
	svc, elements, _ := seedQuote(t, model.DeliveryMethodDelivery)

	_, err := svc.ExportQuote(context.Background(), "Q1", "client-1")
	require.NoError(t, err)

	assert.Equal(t, "e6ca12fc-065a-11e2-8e64-22000afc4ec4", elements.created[0].DepartmentID)
	require.Len(t, elements.addresses, 1)
	assert.Equal(t, elements.headers[0], elements.addresses[0])
}

func TestExportQuote_LineItemFailuresAggregated(t *testing.T) {
	svc, elements, _ := seedQuote(t, model.DeliveryMethodPickup)
	elements.failItems = map[string]bool{"P1": true, "P3": true}

	_, err := svc.ExportQuote(context.Background(), "Q1", "client-1")
	require.Error(t, err)

	var ee *ExportError
	require.True(t, errors.As(err, &ee))
	assert.Equal(t, ExportStageLineItem, ee.Stage)
	require.Len(t, ee.FailedItems, 2)

	failed := []string{ee.FailedItems[0].ProductID, ee.FailedItems[1].ProductID}
	assert.ElementsMatch(t, []string{"P1", "P3"}, failed)

	// 其余行项目仍然添加
	assert.Equal(t, map[string]int{"E1/P2": 10}, elements.resources)
}

func TestExportQuote_StageErrors(t *testing.T) {
	tests := []struct {
		name      string
		method    model.DeliveryMethod
		setup     func(f *fakeElements)
		wantStage string
	}{
		{"创建工单失败", model.DeliveryMethodPickup, func(f *fakeElements) { f.createErr = errors.New("x") }, ExportStageElement},
		{"联系人更新失败", model.DeliveryMethodPickup, func(f *fakeElements) { f.headerErr = errors.New("x") }, ExportStageHeader},
		{"地址更新失败", model.DeliveryMethodDelivery, func(f *fakeElements) { f.addressErr = errors.New("x") }, ExportStageAddress},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			svc, elements, _ := seedQuote(t, tt.method)
			tt.setup(elements)

			_, err := svc.ExportQuote(context.Background(), "Q1", "client-1")

			var ee *ExportError
			require.True(t, errors.As(err, &ee))
			assert.Equal(t, tt.wantStage, ee.Stage)
			assert.Empty(t, elements.resources)
		})
	}
}

func TestExport_MatchesThenExports(t *testing.T) {
	svc, elements, dir := seedQuote(t, model.DeliveryMethodPickup)
	dir.people = []flex.Contact{
		contact("jane", strPtr("Jane Doe"), strPtr("Acme"), strPtr("jane@acme.com")),
	}

	quote, err := svc.Export(context.Background(), "Q1")
	require.NoError(t, err)
	assert.Equal(t, "Q1", quote.ID)
	assert.Equal(t, "jane", elements.created[0].ClientID)
}

func TestExport_QuoteNotFound(t *testing.T) {
	svc, elements, _ := seedQuote(t, model.DeliveryMethodPickup)

	_, err := svc.Export(context.Background(), "nope")
	assert.ErrorIs(t, err, ErrQuoteNotFound)
	assert.Empty(t, elements.created)
}

func TestBuildElementRequest_NoCompany(t *testing.T) {
	quote := testQuote()
	quote.Company = nil
	quote.DeliveryMethod = "UNKNOWN"

	req := BuildElementRequest(quote, "c1")
	assert.Equal(t, "Jane Doe", req.Name)
	assert.Equal(t, defaultDepartmentID, req.DepartmentID)
}
