package main

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/spf13/cobra"
	"go.uber.org/zap"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"

	"flex_inventory_admin/internal/config"
	"flex_inventory_admin/internal/controller"
	"flex_inventory_admin/internal/model"
	"flex_inventory_admin/internal/repository"
	"flex_inventory_admin/internal/router"
	"flex_inventory_admin/internal/service"
	"flex_inventory_admin/internal/task"
	"flex_inventory_admin/pkg/database"
	"flex_inventory_admin/pkg/flex"
	applog "flex_inventory_admin/pkg/logger"
)

func main() {
	rootCmd := &cobra.Command{
		Use:   "flex-inventory",
		Short: "Flex 库存同步与询价单导出服务",
		Long: `flex-inventory 从 Flex 拉取库存报表同步到本地目录，
并把网站询价单导出为 Flex 工单。

不带子命令时等同于 serve。`,
		SilenceUsage: true,
		RunE:         runServe,
	}
	rootCmd.PersistentFlags().String("env-file", "", ".env 文件路径 (默认 ./.env)")

	rootCmd.AddCommand(serveCmd())
	rootCmd.AddCommand(syncCmd())
	rootCmd.AddCommand(verifyCmd())

	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

func serveCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "serve",
		Short: "启动 HTTP 服务与定时同步",
		RunE:  runServe,
	}
}

// ==================== 依赖容器 ====================

// Dependencies 依赖容器
type Dependencies struct {
	Config      *config.Config
	Logger      *zap.Logger
	DB          *gorm.DB
	FlexClient  *flex.Client
	Repos       *Repositories
	Services    *Services
	TaskManager *task.TaskManager
	Controllers *router.Controllers
}

// Repositories 仓库集合
type Repositories struct {
	Category     repository.CategoryRepository
	Manufacturer repository.ManufacturerRepository
	Size         repository.SizeRepository
	Product      repository.ProductRepository
	Quote        repository.QuoteRepository
	SyncRun      repository.SyncRunRepository
}

// Services 服务集合
type Services struct {
	Inventory *service.InventoryService
	Contact   *service.ContactService
	Quote     *service.QuoteService
	Catalog   *service.CatalogService
}

// ==================== 初始化函数 ====================

// bootstrap 读取配置并创建日志
func bootstrap(cmd *cobra.Command) (*config.Config, *zap.Logger, error) {
	envFile, _ := cmd.Flags().GetString("env-file")
	cfg, err := config.Load(envFile)
	if err != nil {
		return nil, nil, err
	}
	if err := cfg.Validate(); err != nil {
		return nil, nil, err
	}

	log, err := applog.New(cfg.LogLevel, cfg.IsDevelopment())
	if err != nil {
		return nil, nil, err
	}
	return cfg, log, nil
}

// initDatabase 初始化数据库
func initDatabase(cfg *config.Config, log *zap.Logger) *gorm.DB {
	logMode := logger.Warn
	if cfg.IsDevelopment() {
		logMode = logger.Info
	}
	return database.InitDB(database.Options{
		Driver:  cfg.DBDriver,
		DSN:     cfg.DatabaseDSN,
		LogMode: logMode,
	}, log, model.All()...)
}

// initDependencies 初始化所有依赖
func initDependencies(cfg *config.Config, db *gorm.DB, log *zap.Logger) *Dependencies {
	// -------- Repo 层 --------
	repos := initRepositories(db)

	// -------- Flex 客户端 --------
	flexClient := flex.NewClient(flex.Config{
		BaseURL:  cfg.FlexURL,
		APIKey:   cfg.FlexAPIKey,
		ReportID: cfg.ReportID,
		Timeout:  cfg.FlexTimeout,
	})

	// -------- 业务服务 --------
	services := &Services{}
	services.Inventory = service.NewInventoryService(
		flexClient,
		repos.Category, repos.Manufacturer, repos.Size, repos.Product,
		repos.SyncRun,
		log,
	)
	services.Contact = service.NewContactService(repos.Quote, flexClient, log)
	services.Quote = service.NewQuoteService(repos.Quote, services.Contact, flexClient, log)
	services.Catalog = service.NewCatalogService(repos.Category, repos.Manufacturer, repos.Size, repos.Product)

	// -------- 后台任务 --------
	taskManager := task.NewTaskManager(services.Inventory, repos.SyncRun, &task.TaskManagerConfig{
		InventoryEnabled: cfg.InventorySyncEnabled,
		InventorySpec:    cfg.InventorySyncCron,
		InventoryTimeout: cfg.InventorySyncTimeout,
		RunRetention:     cfg.SyncRunRetention,
	}, log)

	deps := &Dependencies{
		Config:      cfg,
		Logger:      log,
		DB:          db,
		FlexClient:  flexClient,
		Repos:       repos,
		Services:    services,
		TaskManager: taskManager,
	}

	// -------- Controller 层 --------
	deps.Controllers = initControllers(deps)
	return deps
}

// initRepositories 初始化所有仓库
func initRepositories(db *gorm.DB) *Repositories {
	return &Repositories{
		Category:     repository.NewCategoryRepository(db),
		Manufacturer: repository.NewManufacturerRepository(db),
		Size:         repository.NewSizeRepository(db),
		Product:      repository.NewProductRepository(db),
		Quote:        repository.NewQuoteRepository(db),
		SyncRun:      repository.NewSyncRunRepository(db),
	}
}

// initControllers 初始化所有控制器
func initControllers(deps *Dependencies) *router.Controllers {
	return &router.Controllers{
		Inventory: controller.NewInventoryController(deps.TaskManager, deps.Services.Inventory, deps.Logger),
		Quote:     controller.NewQuoteController(deps.Services.Quote, deps.Logger),
		Settings:  controller.NewSettingsController(deps.FlexClient),
		Catalog:   controller.NewCatalogController(deps.Services.Catalog),
	}
}

// newRouter 创建路由
func newRouter(deps *Dependencies) *gin.Engine {
	return router.SetupRouter(deps.Controllers, router.Options{
		Logger:            deps.Logger,
		InventoryCooldown: deps.Config.InventorySyncCooldown,
	})
}

// ==================== 服务启动 ====================

func runServe(cmd *cobra.Command, _ []string) error {
	cfg, log, err := bootstrap(cmd)
	if err != nil {
		return err
	}
	defer func() { _ = log.Sync() }()

	if !cfg.IsDevelopment() {
		gin.SetMode(gin.ReleaseMode)
	}

	// 1. 初始化数据库
	db := initDatabase(cfg, log)

	// 2. 初始化依赖
	deps := initDependencies(cfg, db, log)

	// 3. 启动定时任务
	if err := deps.TaskManager.Start(); err != nil {
		return fmt.Errorf("定时任务启动失败: %w", err)
	}

	// 4. 启动服务
	startServer(newRouter(deps), deps)
	return nil
}

// startServer 启动服务，收到退出信号后优雅关闭
func startServer(r *gin.Engine, deps *Dependencies) {
	log := deps.Logger
	port := deps.Config.ServerPort

	srv := &http.Server{
		Addr:    ":" + port,
		Handler: r,
	}

	// 异步启动服务
	go func() {
		log.Info("服务启动", zap.String("addr", srv.Addr))
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.Fatal("服务启动失败", zap.Error(err))
		}
	}()

	// 等待退出信号
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	log.Info("正在关闭服务...")

	// 优雅关闭，最多等待 30 秒
	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	if err := srv.Shutdown(ctx); err != nil {
		log.Error("服务强制关闭", zap.Error(err))
	}

	// 等待进行中的同步结束
	deps.TaskManager.Stop()

	log.Info("服务已退出")
}
