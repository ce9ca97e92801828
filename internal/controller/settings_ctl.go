package controller

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"

	"flex_inventory_admin/internal/api/dto"
	"flex_inventory_admin/pkg/flex"
)

// SettingsController 设置页
type SettingsController struct {
	flexClient *flex.Client
}

// NewSettingsController 创建设置控制器
func NewSettingsController(flexClient *flex.Client) *SettingsController {
	return &SettingsController{flexClient: flexClient}
}

// VerifyCredentials 校验 Flex 地址 / API Key / 报表 ID
// @Summary 校验 Flex 凭证
// @Tags Settings
// @Param body body dto.VerifyCredentialsReq false "留空使用当前配置"
// @Success 200 {object} dto.VerifyCredentialsResp
// @Failure 401 {object} map[string]interface{} "API Key 无效"
// @Router /api/settings/verify [post]
func (ctrl *SettingsController) VerifyCredentials(c *gin.Context) {
	var req dto.VerifyCredentialsReq
	if c.Request.ContentLength > 0 {
		if err := c.ShouldBindJSON(&req); err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"code": 400, "message": "参数错误: " + err.Error()})
			return
		}
	}

	client := ctrl.flexClient
	if req.FlexURL != "" || req.APIKey != "" {
		client = client.WithCredentials(req.FlexURL, req.APIKey)
	}
	reportID := req.ReportID
	if reportID == "" {
		reportID = client.ReportID()
	}

	valid, err := client.VerifyCredentials(c.Request.Context(), reportID)
	if errors.Is(err, flex.ErrInvalidAPIKey) {
		c.JSON(http.StatusUnauthorized, gin.H{
			"code":    401,
			"message": "Invalid API Key",
			"data":    dto.VerifyCredentialsResp{Valid: false},
		})
		return
	}
	if err != nil {
		c.JSON(http.StatusBadGateway, gin.H{"code": 502, "message": err.Error()})
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"code":    0,
		"message": "success",
		"data":    dto.VerifyCredentialsResp{Valid: valid},
	})
}
