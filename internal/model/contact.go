package model

// EmergencyContact 紧急联系人，归属于唯一用户
//
// Phone 为 E.164 规范格式（+国家码+号码），短信网关直接可投递。
// IsPrimary 只是 UI 上的提示位，模型层不强制唯一。
type EmergencyContact struct {
	BaseModel
	PublicID     int64   `gorm:"uniqueIndex;not null" json:"contact_id"`
	UserID       int64   `gorm:"not null;index:idx_emergency_contacts_user" json:"user_id"`
	Name         string  `gorm:"type:varchar(64);not null" json:"name"`
	Phone        string  `gorm:"type:varchar(20);not null" json:"phone"`
	Email        *string `gorm:"type:varchar(255)" json:"email,omitempty"`
	Relationship *string `gorm:"type:varchar(32)" json:"relationship,omitempty"`
	IsPrimary    bool    `gorm:"not null;default:false" json:"is_primary"`
}

// TableName 指定表名
func (EmergencyContact) TableName() string {
	return "emergency_contacts"
}
