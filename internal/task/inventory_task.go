package task

import (
	"context"
	"errors"
	"sync"
	"sync/atomic"
	"time"

	"github.com/robfig/cron/v3"
	"go.uber.org/zap"

	"flex_inventory_admin/internal/model"
	"flex_inventory_admin/internal/service"
)

// ErrSyncInProgress 已有同步在执行
var ErrSyncInProgress = errors.New("inventory sync already in progress")

// ==================== InventorySyncTask 库存同步任务 ====================

// InventoryUpdater 执行一次完整库存同步 (service.InventoryService)
type InventoryUpdater interface {
	UpdateInventory(ctx context.Context, trigger model.SyncTrigger, n service.Notifier) error
}

// InventorySyncTask 库存同步定时任务
// 定时与手动触发共用同一把锁，任意时刻最多一轮对账
type InventorySyncTask struct {
	updater InventoryUpdater
	cron    *cron.Cron
	spec    string
	timeout time.Duration
	logger  *zap.Logger

	running atomic.Bool
	wg      sync.WaitGroup
}

// NewInventorySyncTask 创建库存同步任务
// spec 为带秒的 cron 表达式，默认每日凌晨 3 点
func NewInventorySyncTask(updater InventoryUpdater, spec string, timeout time.Duration, logger *zap.Logger) *InventorySyncTask {
	if spec == "" {
		spec = "0 0 3 * * *"
	}
	if timeout <= 0 {
		timeout = 30 * time.Minute
	}
	return &InventorySyncTask{
		updater: updater,
		cron:    cron.New(cron.WithSeconds()),
		spec:    spec,
		timeout: timeout,
		logger:  logger,
	}
}

// Start 启动定时任务
func (t *InventorySyncTask) Start() error {
	_, err := t.cron.AddFunc(t.spec, t.runScheduled)
	if err != nil {
		return err
	}
	t.cron.Start()
	t.logger.Info("[InventorySyncTask] 已启动", zap.String("spec", t.spec))
	return nil
}

// Stop 停止任务并等待进行中的同步结束
func (t *InventorySyncTask) Stop() {
	ctx := t.cron.Stop()
	<-ctx.Done()
	t.wg.Wait()
	t.logger.Info("[InventorySyncTask] 已停止")
}

// Running 是否有同步在执行
func (t *InventorySyncTask) Running() bool {
	return t.running.Load()
}

// ==================== 触发 ====================

// RunNow 同步执行一次
func (t *InventorySyncTask) RunNow(ctx context.Context, trigger model.SyncTrigger, n service.Notifier) error {
	if !t.running.CompareAndSwap(false, true) {
		return ErrSyncInProgress
	}
	t.wg.Add(1)
	defer t.wg.Done()
	defer t.running.Store(false)

	return t.updater.UpdateInventory(ctx, trigger, n)
}

// Trigger 后台执行一次手动同步，进度写入 n
// 已有同步在执行时立即返回 ErrSyncInProgress，n 不会收到任何事件
func (t *InventorySyncTask) Trigger(n service.Notifier) error {
	if !t.running.CompareAndSwap(false, true) {
		return ErrSyncInProgress
	}
	t.wg.Add(1)

	go func() {
		defer t.wg.Done()
		defer t.running.Store(false)

		// 与请求生命周期解耦：客户端断开后同步继续
		ctx, cancel := context.WithTimeout(context.Background(), t.timeout)
		defer cancel()

		if err := t.updater.UpdateInventory(ctx, model.SyncTriggerManual, n); err != nil {
			t.logger.Warn("[InventorySyncTask] 手动同步失败", zap.Error(err))
		}
	}()
	return nil
}

func (t *InventorySyncTask) runScheduled() {
	ctx, cancel := context.WithTimeout(context.Background(), t.timeout)
	defer cancel()

	t.logger.Info("[InventorySyncTask] 开始定时库存同步...")
	n := service.NewLogNotifier(t.logger)
	err := t.RunNow(ctx, model.SyncTriggerSchedule, n)
	if errors.Is(err, ErrSyncInProgress) {
		t.logger.Info("[InventorySyncTask] 已有同步在执行，跳过本次")
		return
	}
	if err != nil {
		t.logger.Error("[InventorySyncTask] 定时同步失败", zap.Error(err))
		return
	}
	t.logger.Info("[InventorySyncTask] 定时同步完成")
}
