package service

import (
	"context"
	"errors"
	"fmt"
	"sync"

	"go.uber.org/zap"
	"gorm.io/gorm"

	"AquaLink/internal/model"
	"AquaLink/internal/model/dto"
	"AquaLink/internal/repository"
	pkgerrors "AquaLink/pkg/errors"
	"AquaLink/pkg/logger"
	"AquaLink/pkg/snowflake"
	"AquaLink/storage/database"
	"AquaLink/utils"
)

var (
	contactService *ContactService
	contactOnce    sync.Once
)

func Contact() *ContactService {
	contactOnce.Do(func() {
		contactService = NewContactService(database.DB())
	})

	return contactService
}

type ContactService struct {
	contacts *repository.ContactRepository
}

func NewContactService(db *gorm.DB) *ContactService {
	return &ContactService{
		contacts: repository.NewContactRepository(db),
	}
}

// CreateContact 创建联系人，号码必须是 E.164
func (s *ContactService) CreateContact(ctx context.Context, userID int64, req dto.CreateContactRequest) (*dto.ContactItem, error) {
	if !utils.ValidatePhone(req.Phone) {
		return nil, pkgerrors.InvalidPhone
	}

	publicID, err := snowflake.NextID()
	if err != nil {
		return nil, fmt.Errorf("failed to generate contact ID: %w", err)
	}

	contact := &model.EmergencyContact{
		PublicID:     publicID,
		UserID:       userID,
		Name:         req.Name,
		Phone:        req.Phone,
		Email:        req.Email,
		Relationship: req.Relationship,
		IsPrimary:    req.IsPrimary,
	}

	if err := s.contacts.Create(ctx, contact); err != nil {
		return nil, fmt.Errorf("failed to create contact: %w", err)
	}

	logger.Logger.Info("Emergency contact created",
		zap.Int64("contact_id", contact.PublicID),
		zap.Int64("user_id", userID),
	)

	return toContactItem(contact), nil
}

func (s *ContactService) ListContacts(ctx context.Context, userID int64) ([]dto.ContactItem, error) {
	contacts, err := s.contacts.ListByUser(ctx, userID)
	if err != nil {
		return nil, fmt.Errorf("failed to list contacts: %w", err)
	}

	items := make([]dto.ContactItem, 0, len(contacts))
	for i := range contacts {
		items = append(items, *toContactItem(&contacts[i]))
	}

	return items, nil
}

// UpdateContact 更新联系人，nil 字段保持不变
func (s *ContactService) UpdateContact(ctx context.Context, userID int64, contactPublicID int64, req dto.UpdateContactRequest) (*dto.ContactItem, error) {
	updates := make(map[string]interface{})

	if req.Name != nil {
		updates["name"] = *req.Name
	}
	if req.Phone != nil {
		if !utils.ValidatePhone(*req.Phone) {
			return nil, pkgerrors.InvalidPhone
		}
		updates["phone"] = *req.Phone
	}
	if req.Email != nil {
		updates["email"] = *req.Email
	}
	if req.Relationship != nil {
		updates["relationship"] = *req.Relationship
	}
	if req.IsPrimary != nil {
		updates["is_primary"] = *req.IsPrimary
	}

	if len(updates) > 0 {
		if err := s.contacts.Update(ctx, userID, contactPublicID, updates); err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return nil, pkgerrors.ContactNotFound
			}
			return nil, fmt.Errorf("failed to update contact: %w", err)
		}
	}

	contact, err := s.contacts.GetByPublicID(ctx, userID, contactPublicID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, pkgerrors.ContactNotFound
		}
		return nil, fmt.Errorf("failed to reload contact: %w", err)
	}

	return toContactItem(contact), nil
}

func (s *ContactService) DeleteContact(ctx context.Context, userID int64, contactPublicID int64) error {
	if err := s.contacts.Delete(ctx, userID, contactPublicID); err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return pkgerrors.ContactNotFound
		}
		return fmt.Errorf("failed to delete contact: %w", err)
	}

	logger.Logger.Info("Emergency contact deleted",
		zap.Int64("contact_id", contactPublicID),
		zap.Int64("user_id", userID),
	)

	return nil
}

func toContactItem(contact *model.EmergencyContact) *dto.ContactItem {
	return &dto.ContactItem{
		ContactID:    contact.PublicID,
		Name:         contact.Name,
		Phone:        contact.Phone,
		Email:        contact.Email,
		Relationship: contact.Relationship,
		IsPrimary:    contact.IsPrimary,
		CreatedAt:    contact.CreatedAt,
	}
}
