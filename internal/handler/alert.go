package handler

import (
	"context"
	"errors"
	"strconv"

	"github.com/cloudwego/hertz/pkg/app"

	"AquaLink/internal/model/dto"
	"AquaLink/internal/service"
	pkgerrors "AquaLink/pkg/errors"
	"AquaLink/pkg/response"
)

// DispatchAlert 触发一次紧急报警
// POST /v1/alerts
func DispatchAlert(ctx context.Context, c *app.RequestContext) {
	userID, ok := currentUserID(ctx, c)
	if !ok {
		return
	}

	var req dto.DispatchRequest
	if err := c.Bind(&req); err != nil {
		response.BindError(ctx, c, err)
		return
	}

	// 请求体带 user_id 时必须和登录身份一致
	if req.UserID != "" {
		if reqUserID, err := strconv.ParseInt(req.UserID, 10, 64); err != nil || reqUserID != userID {
			response.Error(ctx, c, pkgerrors.Unauthorized)
			return
		}
	}

	summary, err := service.Dispatch().Dispatch(ctx, userID, req)
	if err != nil {
		var limited *service.RateLimitedError
		if errors.As(err, &limited) {
			response.ErrorWithDetails(ctx, c, pkgerrors.TooManyRequests, map[string]interface{}{
				"retry_after_seconds": limited.RetryAfter,
			})
			return
		}
		response.Error(ctx, c, err)
		return
	}

	response.Success(ctx, c, summary)
}

// ResolveAlert 解除报警
// POST /v1/alerts/:alert_id/resolve
func ResolveAlert(ctx context.Context, c *app.RequestContext) {
	userID, ok := currentUserID(ctx, c)
	if !ok {
		return
	}
	alertID, ok := pathID(ctx, c, "alert_id")
	if !ok {
		return
	}

	alert, err := service.Alert().Resolve(ctx, userID, alertID)
	if err != nil {
		response.Error(ctx, c, err)
		return
	}

	response.Success(ctx, c, alert)
}

// ResendAlert 对失败的投递重新入队
// POST /v1/alerts/:alert_id/resend
func ResendAlert(ctx context.Context, c *app.RequestContext) {
	userID, ok := currentUserID(ctx, c)
	if !ok {
		return
	}
	alertID, ok := pathID(ctx, c, "alert_id")
	if !ok {
		return
	}

	resp, err := service.Alert().Resend(ctx, userID, alertID)
	if err != nil {
		response.Error(ctx, c, err)
		return
	}

	response.Success(ctx, c, resp)
}

// GetActiveAlert 当前活跃报警，没有时 data 为 null
// GET /v1/alerts/active
func GetActiveAlert(ctx context.Context, c *app.RequestContext) {
	userID, ok := currentUserID(ctx, c)
	if !ok {
		return
	}

	alert, err := service.Alert().GetActive(ctx, userID)
	if err != nil {
		response.Error(ctx, c, err)
		return
	}

	response.Success(ctx, c, alert)
}

// GetLatestAlert 最近一条报警，不论状态
// GET /v1/alerts/latest
func GetLatestAlert(ctx context.Context, c *app.RequestContext) {
	userID, ok := currentUserID(ctx, c)
	if !ok {
		return
	}

	alert, err := service.Alert().GetLatest(ctx, userID)
	if err != nil {
		response.Error(ctx, c, err)
		return
	}

	response.Success(ctx, c, alert)
}

// ListAlerts 报警历史，分页
// GET /v1/alerts?limit=&offset=
func ListAlerts(ctx context.Context, c *app.RequestContext) {
	userID, ok := currentUserID(ctx, c)
	if !ok {
		return
	}

	limit, _ := strconv.Atoi(c.DefaultQuery("limit", "20"))
	offset, _ := strconv.Atoi(c.DefaultQuery("offset", "0"))

	items, total, err := service.Alert().History(ctx, userID, limit, offset)
	if err != nil {
		response.Error(ctx, c, err)
		return
	}

	response.SuccessWithMeta(ctx, c, items, map[string]interface{}{
		"total":  total,
		"limit":  limit,
		"offset": offset,
	})
}
