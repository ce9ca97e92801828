package service

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/sourcegraph/conc/pool"
	"go.uber.org/multierr"
	"go.uber.org/zap"
	"gorm.io/gorm"

	"flex_inventory_admin/internal/model"
	"flex_inventory_admin/internal/repository"
	"flex_inventory_admin/pkg/flex"
)

// 工单固定参数
const (
	elementDefinitionID   = "9bfb850c-b117-11df-b8d5-00e08175e43e"
	elementStatusID       = "ddde5e2c-aee7-11df-b8d5-00e08175e43e"
	personResponsibleID   = "58a97bc8-f9e5-4483-b8d9-90e401adb69e"
	elementLocationID     = "2f49c62c-b139-11df-b8d5-00e08175e43e"
	defaultPricingModelID = "af4a35ac-aedf-11df-b8d5-00e08175e43e"
	pointOfContactFieldID = "823a1c9e-9741-11e0-96b4-12314000fae9"
)

// departmentByDelivery 提货方式 -> 部门
var departmentByDelivery = map[model.DeliveryMethod]string{
	model.DeliveryMethodDelivery: "e6ca12fc-065a-11e2-8e64-22000afc4ec4",
	model.DeliveryMethodPickup:   "e08b60c8-ba18-11e1-8260-22000afc4ec4",
}

const defaultDepartmentID = "e08b60c8-ba18-11e1-8260-22000afc4ec4"

// elementCustomFields 工单自定义字段 (只有最后一个是空字符串)
var elementCustomFields = []string{
	"1b6dc30a-3a34-11ed-8074-0a505d6e1818",
	"7a6302a0-5b20-48df-b344-bd2a0c632d2c",
	"91a0d4b5-2900-4c1d-b201-e1ae4764eacb",
}

const elementEmptyCustomField = "f891d295-e96a-4062-a129-e1134ebd7d2a"

// flexTimeLayout Flex 接收的日期格式
const flexTimeLayout = "2006-01-02T15:04:05.000Z"

// lineItemConcurrency 同时添加的行项目数
const lineItemConcurrency = 4

// ElementAPI Flex 工单接口 (flex.Client)
type ElementAPI interface {
	CreateElement(ctx context.Context, req *flex.CreateElementRequest) (*flex.Element, error)
	UpdateElementHeader(ctx context.Context, elementID string, req *flex.HeaderUpdateRequest) error
	UpdateElementAddress(ctx context.Context, elementID string, req *flex.HeaderUpdateRequest) error
	AddResource(ctx context.Context, elementID, productID string, quantity int) error
}

// QuoteService 询价单导出为 Flex 工单
type QuoteService struct {
	quoteRepo  repository.QuoteRepository
	contactSvc *ContactService
	elements   ElementAPI
	logger     *zap.Logger
}

// NewQuoteService 创建导出服务
func NewQuoteService(quoteRepo repository.QuoteRepository, contactSvc *ContactService, elements ElementAPI, logger *zap.Logger) *QuoteService {
	return &QuoteService{
		quoteRepo:  quoteRepo,
		contactSvc: contactSvc,
		elements:   elements,
		logger:     logger,
	}
}

// Export 匹配客户后导出工单，返回询价单
func (s *QuoteService) Export(ctx context.Context, quoteID string) (*model.Quote, error) {
	quote, err := s.loadQuote(ctx, quoteID)
	if err != nil {
		return nil, err
	}

	match, err := s.contactSvc.MatchClient(ctx, quote)
	if err != nil {
		return nil, err
	}

	if _, err := s.exportQuote(ctx, quote, match.ClientID); err != nil {
		return nil, err
	}
	return quote, nil
}

// ExportQuote 按已确定的客户 ID 创建工单，返回工单 ID
func (s *QuoteService) ExportQuote(ctx context.Context, quoteID, clientID string) (string, error) {
	quote, err := s.loadQuote(ctx, quoteID)
	if err != nil {
		return "", err
	}
	return s.exportQuote(ctx, quote, clientID)
}

func (s *QuoteService) exportQuote(ctx context.Context, quote *model.Quote, clientID string) (string, error) {
	// 1. 创建工单
	element, err := s.elements.CreateElement(ctx, BuildElementRequest(quote, clientID))
	if err != nil {
		return "", &ExportError{Stage: ExportStageElement, Cause: err}
	}
	elementID := element.ElementID

	// 2. 现场联系人
	contactData := buildContactData(quote)
	if err := s.elements.UpdateElementHeader(ctx, elementID, contactData); err != nil {
		return elementID, &ExportError{Stage: ExportStageHeader, Cause: err}
	}

	// 3. 送货地址 (与现场联系人共用同一份数据)
	if quote.DeliveryMethod == model.DeliveryMethodDelivery {
		if err := s.elements.UpdateElementAddress(ctx, elementID, contactData); err != nil {
			return elementID, &ExportError{Stage: ExportStageAddress, Cause: err}
		}
	}

	// 4. 行项目
	if err := s.attachLineItems(ctx, elementID, quote.QuoteItems); err != nil {
		return elementID, err
	}

	s.logger.Info("[QuoteService] 工单导出完成",
		zap.String("quote_id", quote.ID),
		zap.String("element_id", elementID),
		zap.Int("line_items", len(quote.QuoteItems)),
	)
	return elementID, nil
}

// attachLineItems 并发添加全部行项目并等待结束，失败汇总为一个 ExportError
func (s *QuoteService) attachLineItems(ctx context.Context, elementID string, items []model.QuoteItem) error {
	var (
		mu     sync.Mutex
		failed []FailedLineItem
		errs   error
	)

	p := pool.New().WithMaxGoroutines(lineItemConcurrency)
	for _, item := range items {
		p.Go(func() {
			err := s.elements.AddResource(ctx, elementID, item.ProductID, item.Quantity)
			if err == nil {
				return
			}
			mu.Lock()
			defer mu.Unlock()
			failed = append(failed, FailedLineItem{ProductID: item.ProductID, Quantity: item.Quantity, Err: err})
			errs = multierr.Append(errs, fmt.Errorf("product %s: %w", item.ProductID, err))
		})
	}
	p.Wait()

	if len(failed) == 0 {
		return nil
	}
	s.logger.Warn("[QuoteService] 部分行项目添加失败",
		zap.String("element_id", elementID),
		zap.Int("failed", len(failed)),
		zap.Error(errs),
	)
	return &ExportError{Stage: ExportStageLineItem, Cause: errs, FailedItems: failed}
}

func (s *QuoteService) loadQuote(ctx context.Context, quoteID string) (*model.Quote, error) {
	quote, err := s.quoteRepo.GetWithItems(ctx, quoteID)
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, ErrQuoteNotFound
	}
	return quote, err
}

// BuildElementRequest 组装工单请求
func BuildElementRequest(quote *model.Quote, clientID string) *flex.CreateElementRequest {
	departmentID, ok := departmentByDelivery[quote.DeliveryMethod]
	if !ok {
		departmentID = defaultDepartmentID
	}

	customFields := make(map[string]*string, len(elementCustomFields)+1)
	for _, id := range elementCustomFields {
		customFields[id] = nil
	}
	empty := ""
	customFields[elementEmptyCustomField] = &empty

	return &flex.CreateElementRequest{
		DefinitionID:          elementDefinitionID,
		Open:                  false,
		Name:                  elementName(quote),
		StatusID:              elementStatusID,
		PlannedStartDate:      formatFlexTime(quote.StartDate),
		PlannedEndDate:        formatFlexTime(quote.EndDate),
		PersonResponsibleID:   personResponsibleID,
		AssignedToUserID:      flexCreatedByUserID,
		LocationID:            elementLocationID,
		DepartmentID:          departmentID,
		ClientID:              clientID,
		BillToID:              clientID,
		DefaultTime:           1,
		DefaultPricingModelID: defaultPricingModelID,
		Notes:                 quote.Notes,
		PrintNotes:            true,
		Deposit:               0,
		ColorCode:             "ccffee",
		TextColor:             "000000",
		CustomFieldValues:     customFields,
	}
}

// elementName "公司 - 姓名"，没有公司时只用姓名
func elementName(quote *model.Quote) string {
	if quote.Company == nil || *quote.Company == "" {
		return quote.FullName()
	}
	return *quote.Company + " - " + quote.FullName()
}

func buildContactData(quote *model.Quote) *flex.HeaderUpdateRequest {
	return &flex.HeaderUpdateRequest{
		FieldType:    "customContactOneId",
		PayloadValue: pointOfContactFieldID,
		DisplayValue: deref(quote.DeliveryContactName) + " - " + deref(quote.DeliveryContactPhone),
	}
}

func formatFlexTime(t time.Time) string {
	return t.UTC().Format(flexTimeLayout)
}

func deref(p *string) string {
	if p == nil {
		return ""
	}
	return *p
}
