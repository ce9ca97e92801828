package service

import (
	"context"
	"errors"

	"go.uber.org/zap"
	"gorm.io/gorm"

	"flex_inventory_admin/internal/model"
	"flex_inventory_admin/internal/repository"
	"flex_inventory_admin/pkg/flex"
)

// Flex 固定引用
const (
	flexCreatedByUserID   = "ab459c8e-8c9b-40b0-a4f1-3df62095f968"
	flexContactResourceID = "4ab827cc-abef-11df-b8d5-00e08175e43e"
)

// contactPageSize 单页搜索条数，超过时按总数再查一次
const contactPageSize = 100

// ContactDirectory Flex 联系人目录 (flex.Client)
type ContactDirectory interface {
	SearchContacts(ctx context.Context, q flex.ContactQuery) (*flex.ContactSearchResult, error)
	CreateContact(ctx context.Context, req *flex.CreateContactRequest) (*flex.Contact, error)
}

// MatchResult 联系人匹配结果
// CompanyID 只做记录，不参与后续导出
type MatchResult struct {
	ClientID  string
	CompanyID string
	Created   bool
}

// ContactService 询价单 -> Flex 联系人匹配
type ContactService struct {
	quoteRepo repository.QuoteRepository
	directory ContactDirectory
	logger    *zap.Logger
}

// NewContactService 创建联系人匹配服务
func NewContactService(quoteRepo repository.QuoteRepository, directory ContactDirectory, logger *zap.Logger) *ContactService {
	return &ContactService{
		quoteRepo: quoteRepo,
		directory: directory,
		logger:    logger,
	}
}

// ClientSearch 按询价单 ID 查找或创建 Flex 客户，返回客户 ID
func (s *ContactService) ClientSearch(ctx context.Context, quoteID string) (*MatchResult, error) {
	quote, err := s.quoteRepo.GetByID(ctx, quoteID)
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, ErrQuoteNotFound
	}
	if err != nil {
		return nil, err
	}
	return s.MatchClient(ctx, quote)
}

// MatchClient 查找与询价单匹配的联系人，找不到则新建
func (s *ContactService) MatchClient(ctx context.Context, quote *model.Quote) (*MatchResult, error) {
	result := &MatchResult{}

	if quote.Company != nil && *quote.Company != "" {
		company, err := s.findCompany(ctx, *quote.Company)
		if err != nil {
			return nil, err
		}
		result.CompanyID = company.ID
		s.logger.Info("[ContactService] 机构联系人",
			zap.String("quote_id", quote.ID),
			zap.String("company_id", company.ID),
		)
	}

	contacts, err := s.searchAll(ctx, quote.FullName())
	if err != nil {
		return nil, err
	}

	if contact := FilterContacts(quote, contacts); contact != nil {
		result.ClientID = contact.ID
		return result, nil
	}

	created, err := s.createPerson(ctx, quote)
	if err != nil {
		return nil, err
	}
	result.ClientID = created.ID
	result.Created = true
	s.logger.Info("[ContactService] 新建联系人",
		zap.String("quote_id", quote.ID),
		zap.String("client_id", created.ID),
	)
	return result, nil
}

// FilterContacts 按优先级匹配，返回第一条命中规则的第一个联系人
//  1. 公司 + 姓名 + 邮箱
//  2. 公司 + 姓名
//  3. 姓名 + 邮箱
//  4. 无公司 + 姓名
func FilterContacts(quote *model.Quote, contacts []flex.Contact) *flex.Contact {
	name := quote.FullName()
	rules := []func(c *flex.Contact) bool{
		func(c *flex.Contact) bool {
			return samePtr(c.Company, quote.Company) && eq(c.Name, name) && eq(c.Email, quote.Email)
		},
		func(c *flex.Contact) bool {
			return samePtr(c.Company, quote.Company) && eq(c.Name, name)
		},
		func(c *flex.Contact) bool {
			return eq(c.Name, name) && eq(c.Email, quote.Email)
		},
		func(c *flex.Contact) bool {
			return c.Company == nil && eq(c.Name, name)
		},
	}

	for _, match := range rules {
		for i := range contacts {
			if match(&contacts[i]) {
				return &contacts[i]
			}
		}
	}
	return nil
}

// ==================== 私有方法 ====================

// searchPage 只取第一页
func (s *ContactService) searchPage(ctx context.Context, text string, organizations bool) (*flex.ContactSearchResult, error) {
	resp, err := s.directory.SearchContacts(ctx, flex.ContactQuery{
		SearchText:        text,
		OnlyOrganizations: organizations,
		Page:              0,
		Size:              contactPageSize,
	})
	if err != nil {
		return nil, &MatchError{Op: "search", Cause: err}
	}
	return resp, nil
}

// searchAll 第一页 100 条，总数更多时按总数重查一次
func (s *ContactService) searchAll(ctx context.Context, text string) ([]flex.Contact, error) {
	resp, err := s.searchPage(ctx, text, false)
	if err != nil {
		return nil, err
	}
	if resp.Empty {
		return nil, nil
	}

	if resp.TotalElements > contactPageSize {
		resp, err = s.directory.SearchContacts(ctx, flex.ContactQuery{
			SearchText: text,
			Page:       0,
			Size:       resp.TotalElements,
		})
		if err != nil {
			return nil, &MatchError{Op: "search", Cause: err}
		}
	}
	return resp.Content, nil
}

// findCompany 机构名称与公司字段都要完全一致，否则新建机构
// 机构只看第一页，不按总数重查
func (s *ContactService) findCompany(ctx context.Context, company string) (*flex.Contact, error) {
	resp, err := s.searchPage(ctx, company, true)
	if err != nil {
		return nil, err
	}

	results := resp.Content
	for i := range results {
		if eq(results[i].Company, company) && eq(results[i].Name, company) {
			return &results[i], nil
		}
	}

	created, err := s.directory.CreateContact(ctx, &flex.CreateContactRequest{
		CreatedByUserID:      flexCreatedByUserID,
		Organization:         true,
		Company:              &company,
		DefaultBillToContact: true,
		ResourceTypes:        []flex.ResourceTypeRef{{ID: flexContactResourceID}},
	})
	if err != nil {
		return nil, &MatchError{Op: "create_company", Cause: err}
	}
	return created, nil
}

func (s *ContactService) createPerson(ctx context.Context, quote *model.Quote) (*flex.Contact, error) {
	created, err := s.directory.CreateContact(ctx, &flex.CreateContactRequest{
		CreatedByUserID:      flexCreatedByUserID,
		FirstName:            quote.FirstName,
		LastName:             quote.LastName,
		Organization:         false,
		Company:              quote.Company,
		DefaultBillToContact: true,
		InternetAddresses: []flex.InternetAddress{{
			Name:            "Email",
			CreatedByUserID: flexCreatedByUserID,
			URL:             quote.Email,
			DefaultEmail:    true,
		}},
		PhoneNumbers: []flex.PhoneNumber{{
			Name:            "Phone",
			CreatedByUserID: flexCreatedByUserID,
			DialNumber:      quote.Phone,
			DefaultPhone:    true,
			DefaultFax:      false,
		}},
		ResourceTypes: []flex.ResourceTypeRef{{ID: flexContactResourceID}},
	})
	if err != nil {
		return nil, &MatchError{Op: "create_contact", Cause: err}
	}
	return created, nil
}

func eq(p *string, v string) bool {
	return p != nil && *p == v
}

// samePtr 两边都为空也算相同
func samePtr(a, b *string) bool {
	if a == nil || b == nil {
		return a == nil && b == nil
	}
	return *a == *b
}
