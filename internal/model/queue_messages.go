package model

// AlertResendMessage 重发消息：把某条报警里投递失败的联系人重新过一遍网关。
// MessageID 用于消费端幂等性检查。
type AlertResendMessage struct {
	MessageID string `json:"message_id"`
	AlertID   int64  `json:"alert_id"` // public id
	UserID    int64  `json:"user_id"`
	Requested string `json:"requested_at"`
}
