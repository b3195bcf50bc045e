package model

// EmergencySettings 每用户的 SOS 自定义设置
type EmergencySettings struct {
	BaseModel
	UserID            int64 `gorm:"uniqueIndex;not null" json:"user_id"`
	AutoSendLocation  bool  `gorm:"not null;default:true" json:"auto_send_location"`
	SendSMS           bool  `gorm:"not null;default:true" json:"send_sms"`
	MakeEmergencyCall bool  `gorm:"not null;default:false" json:"make_emergency_call"`
	ShareLiveLocation bool  `gorm:"not null;default:true" json:"share_live_location"`
	CountdownSeconds  int   `gorm:"not null;default:5" json:"countdown_seconds"` // 1-30
}

// TableName 指定表名
func (EmergencySettings) TableName() string {
	return "emergency_settings"
}

// DefaultEmergencySettings 用户没有保存过设置时的安全默认值：
// 倒计时 5 秒，短信开，外呼关。
func DefaultEmergencySettings(userID int64) *EmergencySettings {
	return &EmergencySettings{
		UserID:            userID,
		AutoSendLocation:  true,
		SendSMS:           true,
		MakeEmergencyCall: false,
		ShareLiveLocation: true,
		CountdownSeconds:  5,
	}
}
