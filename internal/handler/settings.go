package handler

import (
	"context"

	"github.com/cloudwego/hertz/pkg/app"

	"AquaLink/internal/model/dto"
	"AquaLink/internal/service"
	"AquaLink/pkg/response"
)

// GetEmergencySettings 读取 SOS 设置
// GET /v1/settings/emergency
func GetEmergencySettings(ctx context.Context, c *app.RequestContext) {
	userID, ok := currentUserID(ctx, c)
	if !ok {
		return
	}

	item, err := service.Settings().GetSettings(ctx, userID)
	if err != nil {
		response.Error(ctx, c, err)
		return
	}

	response.Success(ctx, c, item)
}

// UpdateEmergencySettings 更新 SOS 设置
// PUT /v1/settings/emergency
func UpdateEmergencySettings(ctx context.Context, c *app.RequestContext) {
	userID, ok := currentUserID(ctx, c)
	if !ok {
		return
	}

	var req dto.UpdateEmergencySettingsRequest
	if err := c.Bind(&req); err != nil {
		response.BindError(ctx, c, err)
		return
	}

	item, err := service.Settings().UpdateSettings(ctx, userID, req)
	if err != nil {
		response.Error(ctx, c, err)
		return
	}

	response.Success(ctx, c, item)
}
