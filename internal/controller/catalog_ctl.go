package controller

import (
	"errors"
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"
	"gorm.io/gorm"

	"flex_inventory_admin/internal/api/dto"
	"flex_inventory_admin/internal/repository"
	"flex_inventory_admin/internal/service"
)

// CatalogController 目录查询 (同步结果只读)
type CatalogController struct {
	catalogService *service.CatalogService
}

func NewCatalogController(catalogService *service.CatalogService) *CatalogController {
	return &CatalogController{catalogService: catalogService}
}

// GetProducts 商品列表
// @Summary 商品列表
// @Tags Catalog
// @Param category_id query string false "分类ID"
// @Param featured query bool false "仅精选"
// @Param archived query bool false "包含已归档"
// @Param keyword query string false "名称搜索"
// @Param page query int false "页码" default(1)
// @Param page_size query int false "每页数量" default(20)
// @Success 200 {object} dto.ProductListResp
// @Router /api/products [get]
func (ctrl *CatalogController) GetProducts(c *gin.Context) {
	page, _ := strconv.Atoi(c.DefaultQuery("page", "1"))
	pageSize, _ := strconv.Atoi(c.DefaultQuery("page_size", "20"))
	if page <= 0 {
		page = 1
	}
	if pageSize <= 0 || pageSize > 200 {
		pageSize = 20
	}

	products, total, err := ctrl.catalogService.ListProducts(c.Request.Context(), repository.ProductFilter{
		CategoryID:      c.Query("category_id"),
		FeaturedOnly:    c.Query("featured") == "true",
		IncludeArchived: c.Query("archived") == "true",
		Keyword:         c.Query("keyword"),
		Page:            page,
		PageSize:        pageSize,
	})
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"code": 500, "message": "查询失败: " + err.Error()})
		return
	}

	c.JSON(http.StatusOK, dto.ProductListResp{
		Code:     0,
		Message:  "success",
		Data:     products,
		Total:    total,
		Page:     page,
		PageSize: pageSize,
	})
}

// GetProduct 商品详情 (含图片)
// @Summary 商品详情
// @Tags Catalog
// @Param id path string true "商品ID"
// @Router /api/products/{id} [get]
func (ctrl *CatalogController) GetProduct(c *gin.Context) {
	product, err := ctrl.catalogService.GetProduct(c.Request.Context(), c.Param("id"))
	if errors.Is(err, gorm.ErrRecordNotFound) {
		c.JSON(http.StatusNotFound, gin.H{"code": 404, "message": "商品不存在"})
		return
	}
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"code": 500, "message": err.Error()})
		return
	}
	c.JSON(http.StatusOK, gin.H{"code": 0, "message": "success", "data": product})
}

// GetCategories 分类列表 (按全局排序)
// @Router /api/categories [get]
func (ctrl *CatalogController) GetCategories(c *gin.Context) {
	list, err := ctrl.catalogService.ListCategories(c.Request.Context())
	respondList(c, list, err)
}

// GetManufacturers 制造商列表
// @Router /api/manufacturers [get]
func (ctrl *CatalogController) GetManufacturers(c *gin.Context) {
	list, err := ctrl.catalogService.ListManufacturers(c.Request.Context())
	respondList(c, list, err)
}

// GetSizes 尺寸列表
// @Router /api/sizes [get]
func (ctrl *CatalogController) GetSizes(c *gin.Context) {
	list, err := ctrl.catalogService.ListSizes(c.Request.Context())
	respondList(c, list, err)
}

// ==================== 工具函数 ====================

func respondList[T any](c *gin.Context, list []T, err error) {
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"code": 500, "message": "查询失败: " + err.Error()})
		return
	}
	if list == nil {
		list = []T{}
	}
	c.JSON(http.StatusOK, gin.H{"code": 0, "message": "success", "data": list, "total": len(list)})
}
