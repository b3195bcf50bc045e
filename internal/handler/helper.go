package handler

import (
	"context"
	"strconv"

	"github.com/cloudwego/hertz/pkg/app"

	"AquaLink/internal/middleware"
	pkgerrors "AquaLink/pkg/errors"
	"AquaLink/pkg/response"
)

// currentUserID 从认证上下文取用户 ID，失败时已写好响应
func currentUserID(ctx context.Context, c *app.RequestContext) (int64, bool) {
	uid, exists := middleware.GetUserID(ctx, c)
	if !exists {
		response.Error(ctx, c, pkgerrors.Unauthorized)
		return 0, false
	}

	userID, err := strconv.ParseInt(uid, 10, 64)
	if err != nil {
		response.Error(ctx, c, pkgerrors.InvalidUserID)
		return 0, false
	}

	return userID, true
}

// pathID 解析路径里的数字 ID，失败时已写好响应
func pathID(ctx context.Context, c *app.RequestContext, name string) (int64, bool) {
	raw := c.Param(name)
	id, err := strconv.ParseInt(raw, 10, 64)
	if err != nil || id <= 0 {
		response.Error(ctx, c, pkgerrors.Definition{
			Code:    "INVALID_REQUEST",
			Message: "Invalid " + name + " path parameter",
		})
		return 0, false
	}

	return id, true
}
