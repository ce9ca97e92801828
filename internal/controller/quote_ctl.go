package controller

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"flex_inventory_admin/internal/api/dto"
	"flex_inventory_admin/internal/service"
)

// QuoteController 询价单控制器
type QuoteController struct {
	quoteService *service.QuoteService
	logger       *zap.Logger
}

// NewQuoteController 创建询价单控制器
func NewQuoteController(quoteService *service.QuoteService, logger *zap.Logger) *QuoteController {
	return &QuoteController{quoteService: quoteService, logger: logger}
}

// ExportQuote 匹配 Flex 客户并导出为工单
// @Summary 导出询价单到 Flex
// @Tags Quote
// @Param id path string true "询价单ID"
// @Success 200 {object} dto.ExportQuoteResp
// @Failure 400 {object} map[string]interface{} "Invalid quote Id"
// @Router /api/quotes/{id}/export [patch]
func (ctrl *QuoteController) ExportQuote(c *gin.Context) {
	quoteID := c.Param("id")
	if quoteID == "" {
		c.JSON(http.StatusBadRequest, gin.H{"code": 400, "message": "Invalid quote Id"})
		return
	}

	quote, err := ctrl.quoteService.Export(c.Request.Context(), quoteID)
	if err != nil {
		ctrl.handleExportError(c, quoteID, err)
		return
	}

	resp := dto.ExportQuoteResp{
		QuoteID: quote.ID,
		Name:    quote.FullName(),
		Items:   len(quote.QuoteItems),
	}
	if quote.Company != nil {
		resp.Company = *quote.Company
	}

	c.JSON(http.StatusOK, gin.H{
		"code":    0,
		"message": "success",
		"data":    resp,
	})
}

func (ctrl *QuoteController) handleExportError(c *gin.Context, quoteID string, err error) {
	ctrl.logger.Error("[QuoteController] 导出失败", zap.String("quote_id", quoteID), zap.Error(err))

	if errors.Is(err, service.ErrQuoteNotFound) {
		c.JSON(http.StatusBadRequest, gin.H{"code": 400, "message": "Invalid quote Id"})
		return
	}

	var exportErr *service.ExportError
	if errors.As(err, &exportErr) && len(exportErr.FailedItems) > 0 {
		failed := make([]string, 0, len(exportErr.FailedItems))
		for _, item := range exportErr.FailedItems {
			failed = append(failed, item.ProductID)
		}
		c.JSON(http.StatusBadGateway, gin.H{
			"code":    502,
			"message": err.Error(),
			"data":    gin.H{"failed_products": failed},
		})
		return
	}

	var matchErr *service.MatchError
	if errors.As(err, &matchErr) || errors.As(err, &exportErr) {
		c.JSON(http.StatusBadGateway, gin.H{"code": 502, "message": err.Error()})
		return
	}

	c.JSON(http.StatusInternalServerError, gin.H{"code": 500, "message": err.Error()})
}
