package task

import (
	"context"
	"sync"
	"time"

	"go.uber.org/zap"

	"flex_inventory_admin/internal/repository"
)

// RunHistoryTask 同步记录清理任务，定期删除超过保留期的 SyncRun
type RunHistoryTask struct {
	runs      repository.SyncRunRepository
	retention time.Duration
	interval  time.Duration
	logger    *zap.Logger

	stopCh  chan struct{}
	wg      sync.WaitGroup
	running bool
	mu      sync.Mutex
}

// RunHistoryOption 任务选项
type RunHistoryOption func(*RunHistoryTask)

// WithRetention 设置保留时长
func WithRetention(d time.Duration) RunHistoryOption {
	return func(t *RunHistoryTask) {
		if d > 0 {
			t.retention = d
		}
	}
}

// WithInterval 设置执行间隔
func WithInterval(d time.Duration) RunHistoryOption {
	return func(t *RunHistoryTask) {
		if d > 0 {
			t.interval = d
		}
	}
}

// NewRunHistoryTask 创建清理任务，默认保留 30 天、每 24 小时执行一次
func NewRunHistoryTask(runs repository.SyncRunRepository, logger *zap.Logger, opts ...RunHistoryOption) *RunHistoryTask {
	t := &RunHistoryTask{
		runs:      runs,
		retention: 30 * 24 * time.Hour,
		interval:  24 * time.Hour,
		logger:    logger,
		stopCh:    make(chan struct{}),
	}
	for _, opt := range opts {
		opt(t)
	}
	return t
}

// Start 启动任务
func (t *RunHistoryTask) Start() {
	t.mu.Lock()
	if t.running {
		t.mu.Unlock()
		return
	}
	t.running = true
	t.mu.Unlock()

	t.wg.Add(1)
	go t.run()

	t.logger.Info("[RunHistoryTask] 已启动",
		zap.Duration("interval", t.interval),
		zap.Duration("retention", t.retention),
	)
}

// Stop 停止任务
func (t *RunHistoryTask) Stop() {
	t.mu.Lock()
	if !t.running {
		t.mu.Unlock()
		return
	}
	t.running = false
	t.mu.Unlock()

	close(t.stopCh)
	t.wg.Wait()
	t.logger.Info("[RunHistoryTask] 已停止")
}

func (t *RunHistoryTask) run() {
	defer t.wg.Done()

	// 启动时立即执行
	t.RunOnce()

	ticker := time.NewTicker(t.interval)
	defer ticker.Stop()

	for {
		select {
		case <-ticker.C:
			t.RunOnce()
		case <-t.stopCh:
			return
		}
	}
}

// RunOnce 手动执行一次，返回删除条数
func (t *RunHistoryTask) RunOnce() int64 {
	ctx, cancel := context.WithTimeout(context.Background(), time.Minute)
	defer cancel()

	cutoff := time.Now().Add(-t.retention)
	deleted, err := t.runs.DeleteFinishedBefore(ctx, cutoff)
	if err != nil {
		t.logger.Error("[RunHistoryTask] 清理同步记录失败", zap.Error(err))
		return 0
	}
	if deleted > 0 {
		t.logger.Info("[RunHistoryTask] 已删除过期同步记录",
			zap.Int64("deleted", deleted),
			zap.Time("cutoff", cutoff),
		)
	}
	return deleted
}
