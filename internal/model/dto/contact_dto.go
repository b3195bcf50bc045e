package dto

import "time"

// ========== Contact 相关 DTO ==========

// ContactItem 紧急联系人项
type ContactItem struct {
	ContactID    int64     `json:"contact_id"`
	Name         string    `json:"name"`
	Phone        string    `json:"phone"`
	Email        *string   `json:"email,omitempty"`
	Relationship *string   `json:"relationship,omitempty"`
	IsPrimary    bool      `json:"is_primary"`
	CreatedAt    time.Time `json:"created_at"`
}

// CreateContactRequest 创建联系人请求
type CreateContactRequest struct {
	Name         string  `json:"name" binding:"required"`
	Phone        string  `json:"phone" binding:"required"`
	Email        *string `json:"email,omitempty"`
	Relationship *string `json:"relationship,omitempty"`
	IsPrimary    bool    `json:"is_primary,omitempty"`
}

// UpdateContactRequest 更新联系人请求，零值字段不更新
type UpdateContactRequest struct {
	Name         *string `json:"name,omitempty"`
	Phone        *string `json:"phone,omitempty"`
	Email        *string `json:"email,omitempty"`
	Relationship *string `json:"relationship,omitempty"`
	IsPrimary    *bool   `json:"is_primary,omitempty"`
}
