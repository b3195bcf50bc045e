package dto

import "time"

// ========== Alert 相关 DTO ==========

// DispatchRequest 触发报警请求
// user_id 可省略；携带时必须与登录身份一致。
type DispatchRequest struct {
	UserID    string   `json:"user_id,omitempty"`
	Latitude  float64  `json:"latitude" binding:"required"`
	Longitude float64  `json:"longitude" binding:"required"`
	Accuracy  *float64 `json:"accuracy,omitempty"`
	IsTest    bool     `json:"is_test,omitempty"`
	// 短信正文里展示的用户资料，身份系统是外部协作方，资料随请求带过来
	UserName  string   `json:"user_name,omitempty"`
	UserPhone string   `json:"user_phone,omitempty"`
}

// ContactError 单个联系人的投递失败信息
type ContactError struct {
	ContactID int64  `json:"contact_id"`
	Error     string `json:"error"`
}

// DispatchSummary 派发结果汇总
// ContactsNotified < TotalContacts 时调用方应提示"部分联系人未送达"，
// 但派发本身仍算成功。
type DispatchSummary struct {
	AlertID          int64          `json:"alert_id"`
	IsTest           bool           `json:"is_test"`
	ContactsNotified int            `json:"contacts_notified"`
	TotalContacts    int            `json:"total_contacts"`
	Errors           []ContactError `json:"errors,omitempty"`
	Message          string         `json:"message"`
	Timestamp        time.Time      `json:"timestamp"`
}

// AlertItem 报警记录响应
type AlertItem struct {
	AlertID          int64      `json:"alert_id"`
	Status           string     `json:"status"`
	IsTest           bool       `json:"is_test"`
	Latitude         float64    `json:"latitude"`
	Longitude        float64    `json:"longitude"`
	Accuracy         *float64   `json:"accuracy,omitempty"`
	ContactsNotified int        `json:"contacts_notified"`
	CreatedAt        time.Time  `json:"created_at"`
	ResolvedAt       *time.Time `json:"resolved_at,omitempty"`
}

// ResendResponse 重发请求响应
type ResendResponse struct {
	AlertID  int64  `json:"alert_id"`
	Enqueued int    `json:"enqueued"` // 重新入队的失败投递条数
	Message  string `json:"message"`
}
