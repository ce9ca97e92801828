package controller

import (
	"errors"
	"net/http"
	"strconv"
	"time"

	"github.com/gin-contrib/sse"
	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"flex_inventory_admin/internal/api/dto"
	"flex_inventory_admin/internal/service"
	"flex_inventory_admin/internal/task"
)

// heartbeatInterval SSE 心跳间隔
var heartbeatInterval = 30 * time.Second

// InventoryController 库存同步控制器
type InventoryController struct {
	taskManager      *task.TaskManager
	inventoryService *service.InventoryService
	logger           *zap.Logger
}

// NewInventoryController 创建库存同步控制器
func NewInventoryController(taskManager *task.TaskManager, inventoryService *service.InventoryService, logger *zap.Logger) *InventoryController {
	return &InventoryController{
		taskManager:      taskManager,
		inventoryService: inventoryService,
		logger:           logger,
	}
}

// UpdateInventory 触发库存同步并以 SSE 推送进度
// 每条消息为一帧 "data: <payload>"，成功时最后一条为 "Inventory Update Complete"
// @Summary 同步库存 (SSE)
// @Tags Inventory
// @Produce text/event-stream
// @Failure 409 {object} map[string]interface{} "已有同步在执行"
// @Failure 429 {object} map[string]interface{} "冷却中"
// @Router /api/inventory/update [get]
func (ctrl *InventoryController) UpdateInventory(c *gin.Context) {
	notifier := service.NewStreamNotifier(c.Request.Context(), 64)

	if err := ctrl.taskManager.TriggerInventorySync(notifier); err != nil {
		if errors.Is(err, task.ErrSyncInProgress) {
			c.JSON(http.StatusConflict, gin.H{
				"code":    409,
				"message": "库存同步正在执行，请稍后再试",
			})
			return
		}
		c.JSON(http.StatusInternalServerError, gin.H{"code": 500, "message": err.Error()})
		return
	}

	// 设置 SSE 响应头
	c.Header("Content-Type", "text/event-stream")
	c.Header("Cache-Control", "no-cache")
	c.Header("Connection", "keep-alive")
	c.Header("X-Accel-Buffering", "no")
	c.Status(http.StatusOK)

	ticker := time.NewTicker(heartbeatInterval)
	defer ticker.Stop()

	clientGone := c.Request.Context().Done()
	events := notifier.Events()

	for {
		select {
		case <-clientGone:
			ctrl.logger.Info("[InventoryController] 客户端断开，同步在后台继续")
			return
		case <-ticker.C:
			c.Render(-1, sse.Event{Event: "heartbeat", Data: time.Now().Unix()})
			c.Writer.Flush()
		case evt, ok := <-events:
			if !ok {
				return
			}
			if evt.Kind == service.EventClose {
				return
			}
			c.Render(-1, sse.Event{Data: evt.Data})
			c.Writer.Flush()
			if evt.Terminal() {
				return
			}
		}
	}
}

// ListRuns 最近的同步记录
// @Summary 库存同步记录
// @Tags Inventory
// @Param limit query int false "条数" default(20)
// @Success 200 {object} map[string]interface{}
// @Router /api/inventory/runs [get]
func (ctrl *InventoryController) ListRuns(c *gin.Context) {
	limit, _ := strconv.Atoi(c.DefaultQuery("limit", "20"))
	if limit <= 0 || limit > 100 {
		limit = 20
	}

	runs, err := ctrl.inventoryService.ListRuns(c.Request.Context(), limit)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"code": 500, "message": "查询失败: " + err.Error()})
		return
	}

	list := make([]dto.SyncRunResp, 0, len(runs))
	for i := range runs {
		list = append(list, dto.ToSyncRunResp(&runs[i]))
	}

	c.JSON(http.StatusOK, gin.H{
		"code":    0,
		"message": "success",
		"data":    list,
		"running": ctrl.taskManager.Status()["inventory_running"],
	})
}
