package task

import (
	"context"
	"time"

	"go.uber.org/zap"

	"flex_inventory_admin/internal/model"
	"flex_inventory_admin/internal/repository"
	"flex_inventory_admin/internal/service"
)

// ==================== TaskManager 后台任务管理器 ====================

// TaskManager 统一管理后台任务
// 库存同步的手动触发也经过这里，与定时任务共用互斥
type TaskManager struct {
	inventoryTask *InventorySyncTask
	historyTask   *RunHistoryTask
	scheduled     bool
	logger        *zap.Logger
}

// TaskManagerConfig 任务管理器配置
type TaskManagerConfig struct {
	InventoryEnabled bool   // 是否启用定时同步
	InventorySpec    string // cron 表达式 (带秒)
	InventoryTimeout time.Duration
	RunRetention     time.Duration // 同步记录保留时长
}

// DefaultConfig 默认配置
func DefaultConfig() *TaskManagerConfig {
	return &TaskManagerConfig{
		InventoryEnabled: true,
		InventorySpec:    "0 0 3 * * *",
		InventoryTimeout: 30 * time.Minute,
		RunRetention:     30 * 24 * time.Hour,
	}
}

// NewTaskManager 创建任务管理器
// runs 为 nil 时不清理同步记录
func NewTaskManager(updater InventoryUpdater, runs repository.SyncRunRepository, cfg *TaskManagerConfig, logger *zap.Logger) *TaskManager {
	if cfg == nil {
		cfg = DefaultConfig()
	}
	tm := &TaskManager{
		inventoryTask: NewInventorySyncTask(updater, cfg.InventorySpec, cfg.InventoryTimeout, logger),
		scheduled:     cfg.InventoryEnabled,
		logger:        logger,
	}
	if runs != nil {
		tm.historyTask = NewRunHistoryTask(runs, logger, WithRetention(cfg.RunRetention))
	}
	return tm
}

// ==================== 生命周期管理 ====================

// Start 启动定时任务
func (tm *TaskManager) Start() error {
	if tm.historyTask != nil {
		tm.historyTask.Start()
	}
	if !tm.scheduled {
		tm.logger.Info("[TaskManager] 定时库存同步未启用")
		return nil
	}
	return tm.inventoryTask.Start()
}

// Stop 停止所有任务
func (tm *TaskManager) Stop() {
	tm.logger.Info("[TaskManager] 正在停止后台任务...")
	tm.inventoryTask.Stop()
	if tm.historyTask != nil {
		tm.historyTask.Stop()
	}
}

// ==================== 手动触发接口 ====================

// TriggerInventorySync 后台执行一次库存同步，进度写入 n
func (tm *TaskManager) TriggerInventorySync(n service.Notifier) error {
	return tm.inventoryTask.Trigger(n)
}

// RunInventorySync 在当前 goroutine 执行一次库存同步 (命令行)
func (tm *TaskManager) RunInventorySync(ctx context.Context, trigger model.SyncTrigger, n service.Notifier) error {
	return tm.inventoryTask.RunNow(ctx, trigger, n)
}

// ==================== 状态查询 ====================

// Status 获取任务状态
func (tm *TaskManager) Status() map[string]bool {
	return map[string]bool{
		"inventory_scheduled": tm.scheduled,
		"inventory_running":   tm.inventoryTask.Running(),
	}
}

var _ InventoryUpdater = (*service.InventoryService)(nil)
