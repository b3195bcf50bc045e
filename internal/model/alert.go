package model

import "time"

// AlertStatus 报警状态枚举
type AlertStatus string

const (
	AlertStatusActive   AlertStatus = "active"   // 生效中，联系人已被通知
	AlertStatusResolved AlertStatus = "resolved" // 已解除
	AlertStatusTest     AlertStatus = "test"     // 测试报警，不通知真实联系人
)

// EmergencyAlert 紧急报警记录
//
// 不变式：每个用户在任意时刻最多只有一条 active 报警；新的派发会在同一事务里
// 先解除旧的 active 报警再插入（取代策略）。
// contacts_notified 只在派发结束后写入一次，之后不会被覆盖。
type EmergencyAlert struct {
	BaseModel
	PublicID         int64       `gorm:"uniqueIndex;not null" json:"alert_id"`
	UserID           int64       `gorm:"not null;index:idx_emergency_alerts_user" json:"user_id"`
	Latitude         float64     `gorm:"not null" json:"latitude"`
	Longitude        float64     `gorm:"not null" json:"longitude"`
	Accuracy         *float64    `json:"accuracy,omitempty"` // 米，定位平台未提供时为空
	Status           AlertStatus `gorm:"type:varchar(16);not null;default:'active';index:idx_emergency_alerts_user" json:"status"`
	IsTest           bool        `gorm:"not null;default:false" json:"is_test"` // 与 status 冗余，方便按布尔查询，创建后保持一致
	ContactsNotified int         `gorm:"not null;default:0" json:"contacts_notified"`
	ResolvedAt       *time.Time  `gorm:"type:timestamptz" json:"resolved_at,omitempty"`
}

// TableName 指定表名
func (EmergencyAlert) TableName() string {
	return "emergency_alerts"
}

// Resolved 报警是否已解除
func (a *EmergencyAlert) Resolved() bool {
	return a.Status == AlertStatusResolved
}
