package handler

import (
	"context"

	"github.com/cloudwego/hertz/pkg/app"

	"AquaLink/internal/model/dto"
	"AquaLink/internal/service"
	"AquaLink/pkg/response"
)

// ListContacts 列出当前用户的紧急联系人
// GET /v1/contacts
func ListContacts(ctx context.Context, c *app.RequestContext) {
	userID, ok := currentUserID(ctx, c)
	if !ok {
		return
	}

	items, err := service.Contact().ListContacts(ctx, userID)
	if err != nil {
		response.Error(ctx, c, err)
		return
	}

	response.Success(ctx, c, items)
}

// CreateContact 新增紧急联系人
// POST /v1/contacts
func CreateContact(ctx context.Context, c *app.RequestContext) {
	userID, ok := currentUserID(ctx, c)
	if !ok {
		return
	}

	var req dto.CreateContactRequest
	if err := c.Bind(&req); err != nil {
		response.BindError(ctx, c, err)
		return
	}

	item, err := service.Contact().CreateContact(ctx, userID, req)
	if err != nil {
		response.Error(ctx, c, err)
		return
	}

	response.Success(ctx, c, item)
}

// UpdateContact 更新紧急联系人
// PUT /v1/contacts/:contact_id
func UpdateContact(ctx context.Context, c *app.RequestContext) {
	userID, ok := currentUserID(ctx, c)
	if !ok {
		return
	}
	contactID, ok := pathID(ctx, c, "contact_id")
	if !ok {
		return
	}

	var req dto.UpdateContactRequest
	if err := c.Bind(&req); err != nil {
		response.BindError(ctx, c, err)
		return
	}

	item, err := service.Contact().UpdateContact(ctx, userID, contactID, req)
	if err != nil {
		response.Error(ctx, c, err)
		return
	}

	response.Success(ctx, c, item)
}

// DeleteContact 删除紧急联系人
// DELETE /v1/contacts/:contact_id
func DeleteContact(ctx context.Context, c *app.RequestContext) {
	userID, ok := currentUserID(ctx, c)
	if !ok {
		return
	}
	contactID, ok := pathID(ctx, c, "contact_id")
	if !ok {
		return
	}

	if err := service.Contact().DeleteContact(ctx, userID, contactID); err != nil {
		response.Error(ctx, c, err)
		return
	}

	response.NoContent(ctx, c)
}
