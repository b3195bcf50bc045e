package service

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"AquaLink/internal/model/dto"
	pkgerrors "AquaLink/pkg/errors"
)

func TestCreateContactRejectsBadPhone(t *testing.T) {
	svc := NewContactService(newTestDB(t))

	_, err := svc.CreateContact(context.Background(), 1, dto.CreateContactRequest{
		Name:  "Bob",
		Phone: "91234567", // 缺少 + 前缀
	})
	assert.ErrorIs(t, err, pkgerrors.InvalidPhone)
}

func TestContactCRUD(t *testing.T) {
	svc := NewContactService(newTestDB(t))
	ctx := context.Background()

	created, err := svc.CreateContact(ctx, 1, dto.CreateContactRequest{
		Name:      "Bob",
		Phone:     "+6591234567",
		IsPrimary: true,
	})
	require.NoError(t, err)
	assert.NotZero(t, created.ContactID)

	items, err := svc.ListContacts(ctx, 1)
	require.NoError(t, err)
	require.Len(t, items, 1)
	assert.Equal(t, "Bob", items[0].Name)

	newName := "Robert"
	updated, err := svc.UpdateContact(ctx, 1, created.ContactID, dto.UpdateContactRequest{
		Name: &newName,
	})
	require.NoError(t, err)
	assert.Equal(t, "Robert", updated.Name)
	assert.Equal(t, "+6591234567", updated.Phone) // 未提交的字段不变

	require.NoError(t, svc.DeleteContact(ctx, 1, created.ContactID))

	items, err = svc.ListContacts(ctx, 1)
	require.NoError(t, err)
	assert.Empty(t, items)
}

func TestContactOperationsScopedToUser(t *testing.T) {
	svc := NewContactService(newTestDB(t))
	ctx := context.Background()

	created, err := svc.CreateContact(ctx, 1, dto.CreateContactRequest{
		Name:  "Bob",
		Phone: "+6591234567",
	})
	require.NoError(t, err)

	name := "Mallory"
	_, err = svc.UpdateContact(ctx, 2, created.ContactID, dto.UpdateContactRequest{Name: &name})
	assert.ErrorIs(t, err, pkgerrors.ContactNotFound)

	err = svc.DeleteContact(ctx, 2, created.ContactID)
	assert.ErrorIs(t, err, pkgerrors.ContactNotFound)
}

func TestListContactsPrimaryFirst(t *testing.T) {
	svc := NewContactService(newTestDB(t))
	ctx := context.Background()

	_, err := svc.CreateContact(ctx, 1, dto.CreateContactRequest{Name: "Second", Phone: "+6591230001"})
	require.NoError(t, err)
	_, err = svc.CreateContact(ctx, 1, dto.CreateContactRequest{Name: "First", Phone: "+6591230002", IsPrimary: true})
	require.NoError(t, err)

	items, err := svc.ListContacts(ctx, 1)
	require.NoError(t, err)
	require.Len(t, items, 2)
	assert.Equal(t, "First", items[0].Name)
}
