package flex

import (
	"context"
	"encoding/base64"
	"errors"
	"fmt"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/go-resty/resty/v2"
)

// ==================== 配置 ====================

// Config Flex 接口配置
type Config struct {
	BaseURL  string // e.g. https://example.flexrentalsolutions.com
	APIKey   string
	ReportID string
	Timeout  time.Duration
}

// ==================== 错误定义 ====================

// ErrInvalidAPIKey 凭证校验返回 401
var ErrInvalidAPIKey = errors.New("invalid API key")

// TransportError Flex 返回非 2xx 或网络失败
type TransportError struct {
	Status  int
	Message string
	Err     error
}

func (e *TransportError) Error() string {
	if e.Status == 0 {
		return fmt.Sprintf("flex transport error: %s", e.Message)
	}
	return fmt.Sprintf("flex transport error [%d]: %s", e.Status, e.Message)
}

func (e *TransportError) Unwrap() error { return e.Err }

// ==================== 客户端 ====================

// Client Flex API 客户端
// 不做重试：失败直接上报，由调用方决定是否整体重跑
type Client struct {
	config Config
	http   *resty.Client
}

// NewClient 创建客户端
func NewClient(cfg Config) *Client {
	if cfg.Timeout == 0 {
		cfg.Timeout = 60 * time.Second
	}
	cfg.BaseURL = strings.TrimRight(cfg.BaseURL, "/")

	client := resty.New().
		SetBaseURL(cfg.BaseURL).
		SetTimeout(cfg.Timeout).
		SetHeader("X-Auth-Token", cfg.APIKey).
		SetHeader("Accept", "application/json")

	return &Client{config: cfg, http: client}
}

// ReportID 当前配置的库存报表 ID
func (c *Client) ReportID() string {
	return c.config.ReportID
}

// ==================== 报表 ====================

// FetchReport 拉取库存报表并 base64 解码为 CSV 文本
func (c *Client) FetchReport(ctx context.Context) (string, error) {
	resp, err := c.http.R().
		SetContext(ctx).
		SetPathParam("reportId", c.config.ReportID).
		SetQueryParams(map[string]string{
			"parameterSubmission": "true",
			"REPORT_FORMAT":       "csv",
			"REPORT_ORIENTATION":  "portrait",
		}).
		Get("/f5/api/report/generate/{reportId}")
	if err := checkResponse(resp, err); err != nil {
		return "", err
	}

	raw := strings.TrimSpace(resp.String())
	decoded, err := base64.StdEncoding.DecodeString(raw)
	if err != nil {
		return "", &TransportError{Status: resp.StatusCode(), Message: "报表 base64 解码失败", Err: err}
	}
	return string(decoded), nil
}

// VerifyCredentials 校验 API Key 以及报表 ID 是否可见
func (c *Client) VerifyCredentials(ctx context.Context, reportID string) (bool, error) {
	var reports []Report
	resp, err := c.http.R().
		SetContext(ctx).
		SetResult(&reports).
		Get("/f5/api/report/custom-report")
	if err == nil && resp.StatusCode() == http.StatusUnauthorized {
		return false, ErrInvalidAPIKey
	}
	if err := checkResponse(resp, err); err != nil {
		return false, err
	}

	for _, r := range reports {
		if r.ID == reportID {
			return true, nil
		}
	}
	return false, nil
}

// WithCredentials 用另一组凭证派生客户端 (设置页校验用)
func (c *Client) WithCredentials(baseURL, apiKey string) *Client {
	cfg := c.config
	if baseURL != "" {
		cfg.BaseURL = baseURL
	}
	if apiKey != "" {
		cfg.APIKey = apiKey
	}
	return NewClient(cfg)
}

// ==================== 联系人 ====================

// SearchContacts 搜索联系人 (分页)
func (c *Client) SearchContacts(ctx context.Context, q ContactQuery) (*ContactSearchResult, error) {
	var result ContactSearchResult
	resp, err := c.http.R().
		SetContext(ctx).
		SetQueryParams(map[string]string{
			"searchText":        q.SearchText,
			"onlyOrganizations": strconv.FormatBool(q.OnlyOrganizations),
			"page":              strconv.Itoa(q.Page),
			"size":              strconv.Itoa(q.Size),
		}).
		SetResult(&result).
		Get("/f5/api/contact/search")
	if err := checkResponse(resp, err); err != nil {
		return nil, err
	}
	return &result, nil
}

// CreateContact 创建联系人 (个人或机构)
func (c *Client) CreateContact(ctx context.Context, req *CreateContactRequest) (*Contact, error) {
	var contact Contact
	resp, err := c.http.R().
		SetContext(ctx).
		SetHeader("Content-Type", "application/json").
		SetBody(req).
		SetResult(&contact).
		Post("/f5/api/contact")
	if err := checkResponse(resp, err); err != nil {
		return nil, err
	}
	return &contact, nil
}

// ==================== 工单 (element) ====================

// CreateElement 创建工单
func (c *Client) CreateElement(ctx context.Context, req *CreateElementRequest) (*Element, error) {
	var element Element
	resp, err := c.http.R().
		SetContext(ctx).
		SetHeader("Content-Type", "application/json").
		SetBody(req).
		SetResult(&element).
		Post("/f5/api/element")
	if err := checkResponse(resp, err); err != nil {
		return nil, err
	}
	if element.ElementID == "" {
		return nil, &TransportError{Status: resp.StatusCode(), Message: "响应缺少 elementId"}
	}
	return &element, nil
}

// UpdateElementHeader 更新工单表头字段
func (c *Client) UpdateElementHeader(ctx context.Context, elementID string, req *HeaderUpdateRequest) error {
	resp, err := c.http.R().
		SetContext(ctx).
		SetHeader("Content-Type", "application/json").
		SetPathParam("id", elementID).
		SetBody(req).
		Post("/f5/api/element/{id}/header-update")
	return checkResponse(resp, err)
}

// UpdateElementAddress 更新工单地址数据
func (c *Client) UpdateElementAddress(ctx context.Context, elementID string, req *HeaderUpdateRequest) error {
	resp, err := c.http.R().
		SetContext(ctx).
		SetHeader("Content-Type", "application/json").
		SetPathParam("id", elementID).
		SetBody(req).
		Post("/f5/api/element/{id}/address-data")
	return checkResponse(resp, err)
}

// AddResource 向工单添加库存型号行项目
func (c *Client) AddResource(ctx context.Context, elementID, productID string, quantity int) error {
	resp, err := c.http.R().
		SetContext(ctx).
		SetPathParams(map[string]string{
			"id":        elementID,
			"productId": productID,
		}).
		SetQueryParams(map[string]string{
			"managedResourceLineItemType": "inventory-model",
			"quantity":                    strconv.Itoa(quantity),
		}).
		Post("/f5/api/financial-document-line-item/{id}/add-resource/{productId}")
	return checkResponse(resp, err)
}

// ==================== 响应处理 ====================

func checkResponse(resp *resty.Response, err error) error {
	if err != nil {
		return &TransportError{Message: err.Error(), Err: err}
	}
	if resp.IsError() || resp.StatusCode() < 200 || resp.StatusCode() >= 300 {
		msg := strings.TrimSpace(resp.String())
		if msg == "" {
			msg = http.StatusText(resp.StatusCode())
		}
		return &TransportError{Status: resp.StatusCode(), Message: msg}
	}
	return nil
}
