package middleware

import (
	"fmt"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
)

// ==================== 同步限流中间件 ====================

// ResourceRateLimit 按路径参数 :id 限流
//
//	quotes.PATCH("/:id/export",
//	    middleware.ResourceRateLimit("quote", middleware.SyncTypeQuoteExport, 0),
//	    quoteCtl.ExportQuote,
//	)
//
// interval 为 0 时使用默认值
func ResourceRateLimit(resource string, syncType SyncType, interval time.Duration) gin.HandlerFunc {
	if interval == 0 {
		interval = GetInterval(syncType)
	}

	return func(c *gin.Context) {
		key := GlobalSyncKey(syncType)
		if id := c.Param("id"); id != "" {
			key = ResourceSyncKey(resource, id, syncType)
		}
		limit(c, key, syncType, interval)
	}
}

// GlobalSyncRateLimit 全局限流，用于库存同步这类整体操作
func GlobalSyncRateLimit(syncType SyncType, interval time.Duration) gin.HandlerFunc {
	if interval == 0 {
		interval = GetInterval(syncType)
	}

	return func(c *gin.Context) {
		limit(c, GlobalSyncKey(syncType), syncType, interval)
	}
}

func limit(c *gin.Context, key string, syncType SyncType, interval time.Duration) {
	result := GetLimiter().Check(key, interval)
	if !result.Allowed {
		c.Header("Retry-After", fmt.Sprintf("%d", retrySeconds(result.RetryAfter)))
		c.AbortWithStatusJSON(http.StatusTooManyRequests, gin.H{
			"code":    429,
			"message": formatRetryMessage(result.RetryAfter),
			"data": gin.H{
				"retry_after": retrySeconds(result.RetryAfter),
				"sync_type":   syncType,
			},
		})
		return
	}
	c.Next()
}

// ==================== 辅助函数 ====================

// retrySeconds 向上取整到秒
func retrySeconds(d time.Duration) int {
	s := int(d / time.Second)
	if d > time.Duration(s)*time.Second {
		s++
	}
	return s
}

// formatRetryMessage 格式化重试提示
func formatRetryMessage(d time.Duration) string {
	seconds := retrySeconds(d)
	if seconds < 60 {
		return fmt.Sprintf("操作冷却中，请 %d 秒后重试", seconds)
	}

	minutes := seconds / 60
	remainingSeconds := seconds % 60
	if remainingSeconds == 0 {
		return fmt.Sprintf("操作冷却中，请 %d 分钟后重试", minutes)
	}
	return fmt.Sprintf("操作冷却中，请 %d 分 %d 秒后重试", minutes, remainingSeconds)
}
