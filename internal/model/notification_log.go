package model

// NotificationChannel 通知渠道枚举
type NotificationChannel string

const (
	NotificationChannelSMS NotificationChannel = "sms"
)

// DeliveryStatus 单个联系人的投递状态枚举
type DeliveryStatus string

const (
	DeliveryStatusPending   DeliveryStatus = "pending"
	DeliveryStatusDelivered DeliveryStatus = "delivered"
	DeliveryStatusFailed    DeliveryStatus = "failed"
)

// NotificationLog 每次派发中对每个联系人的一次投递记录。
// 扇出结果据此可审计，重发时也不用重新推导哪些联系人已经尝试过。
// 测试报警不会产生任何记录。
type NotificationLog struct {
	BaseModel
	AlertID           int64               `gorm:"not null;index:idx_notification_logs_alert" json:"alert_id"`
	UserID            int64               `gorm:"not null" json:"user_id"`
	ContactID         int64               `gorm:"not null;index:idx_notification_logs_contact" json:"contact_id"`
	Channel           NotificationChannel `gorm:"type:varchar(16);not null;default:'sms'" json:"channel"`
	Message           string              `gorm:"type:text;not null" json:"message"`
	Status            DeliveryStatus      `gorm:"type:varchar(16);not null;default:'pending';index:idx_notification_logs_status" json:"status"`
	Error             *string             `gorm:"type:varchar(255)" json:"error,omitempty"`
	ProviderMessageID *string             `gorm:"type:varchar(64)" json:"provider_message_id,omitempty"`
}

// TableName 指定表名
func (NotificationLog) TableName() string {
	return "notification_logs"
}
