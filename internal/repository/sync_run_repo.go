package repository

import (
	"context"
	"encoding/json"
	"time"

	"gorm.io/datatypes"
	"gorm.io/gorm"

	"flex_inventory_admin/internal/model"
)

// SyncRunRepository 库存同步记录仓储
type SyncRunRepository interface {
	Create(ctx context.Context, run *model.SyncRun) error
	Finish(ctx context.Context, id int64, status model.SyncRunStatus, errMsg string, stats *model.SyncRunStats) error
	GetByID(ctx context.Context, id int64) (*model.SyncRun, error)
	ListRecent(ctx context.Context, limit int) ([]model.SyncRun, error)

	// DeleteFinishedBefore 物理删除 cutoff 之前开始且已结束的记录
	DeleteFinishedBefore(ctx context.Context, cutoff time.Time) (int64, error)
}

type syncRunRepo struct {
	db *gorm.DB
}

// NewSyncRunRepository 创建同步记录仓储
func NewSyncRunRepository(db *gorm.DB) SyncRunRepository {
	return &syncRunRepo{db: db}
}

func (r *syncRunRepo) Create(ctx context.Context, run *model.SyncRun) error {
	return r.db.WithContext(ctx).Create(run).Error
}

func (r *syncRunRepo) Finish(ctx context.Context, id int64, status model.SyncRunStatus, errMsg string, stats *model.SyncRunStats) error {
	fields := map[string]interface{}{
		"status":      status,
		"error_msg":   errMsg,
		"finished_at": time.Now(),
	}
	if stats != nil {
		raw, err := json.Marshal(stats)
		if err != nil {
			return err
		}
		fields["stats"] = datatypes.JSON(raw)
	}
	return r.db.WithContext(ctx).
		Model(&model.SyncRun{}).
		Where("id = ?", id).
		Updates(fields).Error
}

func (r *syncRunRepo) GetByID(ctx context.Context, id int64) (*model.SyncRun, error) {
	var run model.SyncRun
	if err := r.db.WithContext(ctx).First(&run, id).Error; err != nil {
		return nil, err
	}
	return &run, nil
}

func (r *syncRunRepo) ListRecent(ctx context.Context, limit int) ([]model.SyncRun, error) {
	if limit <= 0 {
		limit = 20
	}
	var runs []model.SyncRun
	err := r.db.WithContext(ctx).
		Order("id DESC").
		Limit(limit).
		Find(&runs).Error
	return runs, err
}

func (r *syncRunRepo) DeleteFinishedBefore(ctx context.Context, cutoff time.Time) (int64, error) {
	result := r.db.WithContext(ctx).
		Unscoped().
		Where("started_at < ? AND status <> ?", cutoff, model.SyncRunStatusRunning).
		Delete(&model.SyncRun{})
	return result.RowsAffected, result.Error
}
