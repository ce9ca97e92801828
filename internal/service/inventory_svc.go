package service

import (
	"context"
	"fmt"
	"strconv"
	"strings"
	"time"

	"go.uber.org/multierr"
	"go.uber.org/zap"

	"flex_inventory_admin/internal/model"
	"flex_inventory_admin/internal/repository"
)

// ReportSource 库存报表来源 (flex.Client)
type ReportSource interface {
	FetchReport(ctx context.Context) (string, error)
}

// InventoryService 库存同步：拉取报表 -> 解析 -> 逐行对账 -> 清理孤儿数据
type InventoryService struct {
	report           ReportSource
	categoryRepo     repository.CategoryRepository
	manufacturerRepo repository.ManufacturerRepository
	sizeRepo         repository.SizeRepository
	productRepo      repository.ProductRepository
	syncRunRepo      repository.SyncRunRepository
	logger           *zap.Logger
}

// NewInventoryService 创建库存同步服务
func NewInventoryService(
	report ReportSource,
	categoryRepo repository.CategoryRepository,
	manufacturerRepo repository.ManufacturerRepository,
	sizeRepo repository.SizeRepository,
	productRepo repository.ProductRepository,
	syncRunRepo repository.SyncRunRepository,
	logger *zap.Logger,
) *InventoryService {
	return &InventoryService{
		report:           report,
		categoryRepo:     categoryRepo,
		manufacturerRepo: manufacturerRepo,
		sizeRepo:         sizeRepo,
		productRepo:      productRepo,
		syncRunRepo:      syncRunRepo,
		logger:           logger,
	}
}

// SeenSets 本轮写入过的实体 ID
type SeenSets struct {
	Categories    []string
	Manufacturers []string
	Sizes         []string
	Products      []string

	categories    map[string]struct{}
	manufacturers map[string]struct{}
	sizes         map[string]struct{}
	products      map[string]struct{}
}

func newSeenSets() *SeenSets {
	return &SeenSets{
		categories:    make(map[string]struct{}),
		manufacturers: make(map[string]struct{}),
		sizes:         make(map[string]struct{}),
		products:      make(map[string]struct{}),
	}
}

func record(set map[string]struct{}, list *[]string, id string) {
	if _, ok := set[id]; ok {
		return
	}
	set[id] = struct{}{}
	*list = append(*list, id)
}

// HasCategory 分类是否已写入
func (s *SeenSets) HasCategory(id string) bool {
	_, ok := s.categories[id]
	return ok
}

// ReconcileResult 对账结果
type ReconcileResult struct {
	Seen      *SeenSets
	Total     int
	Processed int
}

// CleanupResult 清理结果
type CleanupResult struct {
	ArchivedProducts     int64
	DeletedCategories    int64
	DeletedManufacturers int64
	DeletedSizes         int64
}

// ==================== 整体流程 ====================

// UpdateInventory 执行一次完整同步，全程通过 notifier 推送进度
// 结束时 notifier 恰好收到一个终止事件 (Close 或 Error)
func (s *InventoryService) UpdateInventory(ctx context.Context, trigger model.SyncTrigger, n Notifier) error {
	run := s.startRun(ctx, trigger)
	stats := &model.SyncRunStats{}

	err := s.update(ctx, n, stats)
	if err != nil {
		s.logger.Error("[InventoryService] 库存同步失败", zap.Error(err))
		n.Error(err)
		s.finishRun(run, model.SyncRunStatusFailed, err.Error(), stats)
		return err
	}

	n.Log("Inventory Update Complete")
	n.Close()
	s.finishRun(run, model.SyncRunStatusSuccess, "", stats)
	s.logger.Info("[InventoryService] 库存同步完成",
		zap.Int("rows", stats.ProcessedRows),
		zap.Int("products", stats.Products),
		zap.Int64("archived_products", stats.ArchivedProducts),
	)
	return nil
}

func (s *InventoryService) update(ctx context.Context, n Notifier, stats *model.SyncRunStats) error {
	n.Log("Starting Inventory Update")

	n.Log("Fetching Inventory Report")
	text, err := s.report.FetchReport(ctx)
	if err != nil {
		return fmt.Errorf("failed to fetch inventory report: %w", err)
	}

	n.Log("Reading Report")
	rows, err := ParseReport(text)
	if err != nil {
		return err
	}

	result, err := s.Reconcile(ctx, rows, n)
	if result != nil {
		stats.TotalRows = result.Total
		stats.ProcessedRows = result.Processed
		stats.Categories = len(result.Seen.Categories)
		stats.Manufacturers = len(result.Seen.Manufacturers)
		stats.Sizes = len(result.Seen.Sizes)
		stats.Products = len(result.Seen.Products)
	}
	if err != nil {
		return err
	}

	n.Log("Cleaning Up")
	cleaned, err := s.Cleanup(ctx, result.Seen)
	stats.ArchivedProducts = cleaned.ArchivedProducts
	stats.DeletedCategories = cleaned.DeletedCategories
	stats.DeletedManufacturers = cleaned.DeletedManufacturers
	stats.DeletedSizes = cleaned.DeletedSizes
	return err
}

// ==================== 逐行对账 ====================

// Reconcile 按顺序处理每一行，任一阶段失败立即返回 ReconciliationError
// 返回的 result 在出错时也有效，反映已处理的部分
func (s *InventoryService) Reconcile(ctx context.Context, rows []ParsedRow, n Notifier) (*ReconcileResult, error) {
	result := &ReconcileResult{Seen: newSeenSets()}
	for _, row := range rows {
		if !row.IsHeaderRepeat() {
			result.Total++
		}
	}

	lastCategoryID := ""
	for _, row := range rows {
		if row.IsHeaderRepeat() {
			continue
		}
		if err := ctx.Err(); err != nil {
			return result, &ReconciliationError{Stage: StageCategory, Row: row.Line, Cause: err}
		}

		if err := s.reconcileRow(ctx, row, result.Seen, &lastCategoryID); err != nil {
			return result, err
		}

		result.Processed++
		n.JSON(NewProgress(result.Processed, result.Total))
	}
	return result, nil
}

func (s *InventoryService) reconcileRow(ctx context.Context, row ParsedRow, seen *SeenSets, lastCategoryID *string) error {
	fail := func(stage Stage, err error) error {
		return &ReconciliationError{Stage: stage, Row: row.Line, Cause: err}
	}

	// 1. 分类 (相邻重复的分类行跳过)
	categoryID := row.Get(ColCategoryID)
	if categoryID.Present() && categoryID.Value != "" &&
		categoryID.Value != *lastCategoryID && !seen.HasCategory(categoryID.Value) {
		category, err := buildCategory(row)
		if err != nil {
			return fail(StageCategory, err)
		}
		if err := s.categoryRepo.Upsert(ctx, category); err != nil {
			return fail(StageCategory, err)
		}
		record(seen.categories, &seen.Categories, category.ID)
		*lastCategoryID = category.ID
	}

	// 2. 只有分类信息的行 (Item Id 为 null 或空)
	itemID := row.Get(ColItemID)
	if !itemID.Present() || itemID.Value == "" {
		return nil
	}

	// 3. 制造商
	var manufacturerID *string
	if name := row.Get(ColManufacturer); name.Present() && name.Value != "" {
		m, err := s.manufacturerRepo.UpsertByName(ctx, name.Value, row.Get(ColManufacturerCountry).Ptr())
		if err != nil {
			return fail(StageManufacturer, err)
		}
		record(seen.manufacturers, &seen.Manufacturers, m.ID)
		manufacturerID = &m.ID
	}

	// 4. 尺寸
	var sizeID *string
	if value := row.Get(ColSize); value.Present() && value.Value != "" {
		size, err := s.sizeRepo.UpsertByValue(ctx, value.Value)
		if err != nil {
			return fail(StageSize, err)
		}
		record(seen.sizes, &seen.Sizes, size.ID)
		sizeID = &size.ID
	}

	// 5. 商品
	product, err := buildProduct(row)
	if err != nil {
		return fail(StageProduct, err)
	}
	product.ManufacturerID = manufacturerID
	product.SizeID = sizeID
	if err := s.productRepo.Upsert(ctx, product); err != nil {
		return fail(StageProduct, err)
	}
	record(seen.products, &seen.Products, product.ID)

	// 6. 图片 (只补缺失的)
	if url := row.Get(ColImageURL); url.Present() && url.Value != "" {
		existing, err := s.productRepo.FindImage(ctx, product.ID, url.Value)
		if err != nil {
			return fail(StageImage, err)
		}
		if existing == nil {
			if err := s.productRepo.CreateImage(ctx, &model.Image{ProductID: product.ID, URL: url.Value}); err != nil {
				return fail(StageImage, err)
			}
		}
	}

	return nil
}

func buildCategory(row ParsedRow) (*model.Category, error) {
	ordinal, err := parseOrdinal(row.Get(ColCategoryOrdinal))
	if err != nil {
		return nil, fmt.Errorf("%s: %w", ColCategoryOrdinal, err)
	}
	globalOrdinal, err := parseOrdinal(row.Get(ColCategoryGlobalOrder))
	if err != nil {
		return nil, fmt.Errorf("%s: %w", ColCategoryGlobalOrder, err)
	}

	var parentID *string
	if parent := row.Get(ColParentGroupID); parent.Present() && parent.Value != "" {
		parentID = parent.Ptr()
	}

	return &model.Category{
		ID:                row.Get(ColCategoryID).Value,
		Name:              model.NormalizeCategoryName(row.Get(ColCategoryName).OrEmpty()),
		ParentID:          parentID,
		Ordinal:           ordinal,
		GlobalSortOrdinal: globalOrdinal,
	}, nil
}

func buildProduct(row ParsedRow) (*model.Product, error) {
	categoryID := row.Get(ColCategoryID)
	if !categoryID.Present() || categoryID.Value == "" {
		return nil, fmt.Errorf("item %s has no category", row.Get(ColItemID).Value)
	}
	ordinal, err := parseOrdinal(row.Get(ColItemOrdinal))
	if err != nil {
		return nil, fmt.Errorf("%s: %w", ColItemOrdinal, err)
	}

	return &model.Product{
		ID:          row.Get(ColItemID).Value,
		Name:        row.Get(ColDisplayString).OrEmpty(),
		Description: row.Get(ColDescription).OrEmpty(),
		Weight:      row.Get(ColWeight).Ptr(),
		Dimensions:  row.Get(ColDimensions).Ptr(),
		Barcode:     row.Get(ColItemBarcode).Ptr(),
		Ordinal:     ordinal,
		IsFeatured:  parseFlag(row.Get(ColIsFeatured)),
		IsArchived:  parseFlag(row.Get(ColIsArchived)),
		CategoryID:  categoryID.Value,
	}, nil
}

// parseOrdinal 去掉千分位逗号后解析整数，null 与空值视为 0
func parseOrdinal(f Field) (int, error) {
	if !f.Present() {
		return 0, nil
	}
	v := strings.TrimSpace(strings.ReplaceAll(f.Value, ",", ""))
	if v == "" {
		return 0, nil
	}
	return strconv.Atoi(v)
}

// parseFlag 只有 "true" (不区分大小写) 为真
func parseFlag(f Field) bool {
	if !f.Present() {
		return false
	}
	return strings.EqualFold(strings.TrimSpace(f.Value), "true")
}

// ==================== 孤儿清理 ====================

// Cleanup 处理本轮未出现的实体：商品归档，分类 / 制造商 / 尺寸物理删除
// 四个动作都会执行，失败汇总为 CleanupError
func (s *InventoryService) Cleanup(ctx context.Context, seen *SeenSets) (CleanupResult, error) {
	var (
		result CleanupResult
		errs   error
		err    error
	)

	if result.ArchivedProducts, err = s.productRepo.ArchiveNotIn(ctx, seen.Products); err != nil {
		errs = multierr.Append(errs, fmt.Errorf("archive products: %w", err))
	}
	if result.DeletedCategories, err = s.categoryRepo.DeleteNotIn(ctx, seen.Categories); err != nil {
		errs = multierr.Append(errs, fmt.Errorf("delete categories: %w", err))
	}
	if result.DeletedManufacturers, err = s.manufacturerRepo.DeleteNotIn(ctx, seen.Manufacturers); err != nil {
		errs = multierr.Append(errs, fmt.Errorf("delete manufacturers: %w", err))
	}
	if result.DeletedSizes, err = s.sizeRepo.DeleteNotIn(ctx, seen.Sizes); err != nil {
		errs = multierr.Append(errs, fmt.Errorf("delete sizes: %w", err))
	}

	if errs != nil {
		return result, &CleanupError{Failures: errs}
	}

	s.logger.Info("[InventoryService] 孤儿数据清理完成",
		zap.Int64("archived_products", result.ArchivedProducts),
		zap.Int64("deleted_categories", result.DeletedCategories),
		zap.Int64("deleted_manufacturers", result.DeletedManufacturers),
		zap.Int64("deleted_sizes", result.DeletedSizes),
	)
	return result, nil
}

// ==================== 同步记录 ====================

func (s *InventoryService) startRun(ctx context.Context, trigger model.SyncTrigger) *model.SyncRun {
	if s.syncRunRepo == nil {
		return nil
	}
	run := &model.SyncRun{
		Trigger:   trigger,
		Status:    model.SyncRunStatusRunning,
		StartedAt: time.Now(),
	}
	if err := s.syncRunRepo.Create(ctx, run); err != nil {
		s.logger.Warn("[InventoryService] 写入同步记录失败", zap.Error(err))
		return nil
	}
	return run
}

func (s *InventoryService) finishRun(run *model.SyncRun, status model.SyncRunStatus, errMsg string, stats *model.SyncRunStats) {
	if run == nil {
		return
	}
	// 订阅方断开不影响记录落库
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := s.syncRunRepo.Finish(ctx, run.ID, status, errMsg, stats); err != nil {
		s.logger.Warn("[InventoryService] 更新同步记录失败", zap.Int64("run_id", run.ID), zap.Error(err))
	}
}

// ListRuns 最近的同步记录
func (s *InventoryService) ListRuns(ctx context.Context, limit int) ([]model.SyncRun, error) {
	return s.syncRunRepo.ListRecent(ctx, limit)
}
