package router

import (
	"github.com/cloudwego/hertz/pkg/app/server"

	"AquaLink/internal/handler"
	"AquaLink/internal/middleware"
)

func Register(h *server.Hertz) {

	h.Use(middleware.RecoverMiddleware())
	h.Use(middleware.RequestIDMiddleware())
	h.Use(middleware.CORSMiddleware())
	h.Use(middleware.OpenTelemetryMiddleware())
	h.Use(middleware.GeneralRateLimitMiddleware())

	v1 := h.Group("/v1")

	// 报警路由
	alerts := v1.Group("/alerts")
	alerts.Use(middleware.AuthMiddleware())
	{
		// 真正的限流准入在 service 层，这里只是边缘兜底
		alerts.POST("", middleware.DispatchRateLimitMiddleware(), handler.DispatchAlert)
		alerts.GET("", handler.ListAlerts)
		alerts.GET("/active", handler.GetActiveAlert)
		alerts.GET("/latest", handler.GetLatestAlert)
		alerts.POST("/:alert_id/resolve", handler.ResolveAlert)
		alerts.POST("/:alert_id/resend", handler.ResendAlert)
	}

	// 紧急联系人路由
	contacts := v1.Group("/contacts")
	contacts.Use(middleware.AuthMiddleware())
	{
		contacts.GET("", handler.ListContacts)
		contacts.POST("", handler.CreateContact)
		contacts.PUT("/:contact_id", handler.UpdateContact)
		contacts.DELETE("/:contact_id", handler.DeleteContact)
	}

	// SOS 设置路由
	settings := v1.Group("/settings")
	settings.Use(middleware.AuthMiddleware())
	{
		settings.GET("/emergency", handler.GetEmergencySettings)
		settings.PUT("/emergency", handler.UpdateEmergencySettings)
	}
}
