package dto

// ========== Settings 相关 DTO ==========

// EmergencySettingsItem 设置响应
type EmergencySettingsItem struct {
	AutoSendLocation  bool `json:"auto_send_location"`
	SendSMS           bool `json:"send_sms"`
	MakeEmergencyCall bool `json:"make_emergency_call"`
	ShareLiveLocation bool `json:"share_live_location"`
	CountdownSeconds  int  `json:"countdown_seconds"`
}

// UpdateEmergencySettingsRequest 更新设置请求，nil 字段保持不变
type UpdateEmergencySettingsRequest struct {
	AutoSendLocation  *bool `json:"auto_send_location,omitempty"`
	SendSMS           *bool `json:"send_sms,omitempty"`
	MakeEmergencyCall *bool `json:"make_emergency_call,omitempty"`
	ShareLiveLocation *bool `json:"share_live_location,omitempty"`
	CountdownSeconds  *int  `json:"countdown_seconds,omitempty"`
}
