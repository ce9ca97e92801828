package router

import (
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"flex_inventory_admin/internal/controller"
	"flex_inventory_admin/internal/middleware"
)

// Controllers 控制器集合
type Controllers struct {
	Inventory *controller.InventoryController
	Quote     *controller.QuoteController
	Settings  *controller.SettingsController
	Catalog   *controller.CatalogController
}

// Options 路由选项
type Options struct {
	Logger *zap.Logger
	// InventoryCooldown 两次手动库存同步的最小间隔，0 使用默认值
	InventoryCooldown time.Duration
}

// SetupRouter 创建 gin 引擎并注册所有路由
func SetupRouter(ctrls *Controllers, opts Options) *gin.Engine {
	if opts.Logger == nil {
		opts.Logger = zap.NewNop()
	}

	r := gin.New()
	r.Use(gin.Recovery())
	r.Use(middleware.RequestLogger(opts.Logger))

	r.GET("/health", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"status": "ok"})
	})

	api := r.Group("/api")
	{
		// 库存同步
		inventory := api.Group("/inventory")
		{
			// GET /api/inventory/update (SSE)
			inventory.GET("/update",
				middleware.GlobalSyncRateLimit(middleware.SyncTypeInventory, opts.InventoryCooldown),
				ctrls.Inventory.UpdateInventory,
			)
			inventory.GET("/runs", ctrls.Inventory.ListRuns)
		}

		// 询价单导出
		quotes := api.Group("/quotes")
		{
			// PATCH /api/quotes/:id/export
			quotes.PATCH("/:id/export",
				middleware.ResourceRateLimit("quote", middleware.SyncTypeQuoteExport, 0),
				ctrls.Quote.ExportQuote,
			)
		}

		// 设置
		settings := api.Group("/settings")
		{
			settings.POST("/verify", ctrls.Settings.VerifyCredentials)
		}

		// 目录 (只读)
		products := api.Group("/products")
		{
			products.GET("", ctrls.Catalog.GetProducts)
			products.GET("/:id", ctrls.Catalog.GetProduct)
		}
		api.GET("/categories", ctrls.Catalog.GetCategories)
		api.GET("/manufacturers", ctrls.Catalog.GetManufacturers)
		api.GET("/sizes", ctrls.Catalog.GetSizes)
	}

	return r
}
