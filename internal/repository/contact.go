package repository

import (
	"context"

	"gorm.io/gorm"

	"AquaLink/internal/model"
)

type ContactRepository struct {
	db *gorm.DB
}

func NewContactRepository(db *gorm.DB) *ContactRepository {
	return &ContactRepository{db: db}
}

func (r *ContactRepository) Create(ctx context.Context, contact *model.EmergencyContact) error {
	return r.db.WithContext(ctx).Create(contact).Error
}

// ListByUser 返回用户所有联系人，主联系人排在最前
func (r *ContactRepository) ListByUser(ctx context.Context, userID int64) ([]model.EmergencyContact, error) {
	var contacts []model.EmergencyContact
	err := r.db.WithContext(ctx).
		Where("user_id = ?", userID).
		Order("is_primary DESC, created_at ASC").
		Find(&contacts).Error
	if err != nil {
		return nil, err
	}
	return contacts, nil
}

// GetByInternalIDs 按内部主键批量查联系人，重发时已软删的联系人也要能取到号码
func (r *ContactRepository) GetByInternalIDs(ctx context.Context, ids []int64) ([]model.EmergencyContact, error) {
	if len(ids) == 0 {
		return nil, nil
	}

	var contacts []model.EmergencyContact
	err := r.db.WithContext(ctx).Unscoped().
		Where("id IN ?", ids).
		Find(&contacts).Error
	if err != nil {
		return nil, err
	}
	return contacts, nil
}

func (r *ContactRepository) GetByPublicID(ctx context.Context, userID int64, publicID int64) (*model.EmergencyContact, error) {
	var contact model.EmergencyContact
	err := r.db.WithContext(ctx).
		Where("user_id = ? AND public_id = ?", userID, publicID).
		First(&contact).Error
	if err != nil {
		return nil, err
	}
	return &contact, nil
}

func (r *ContactRepository) Update(ctx context.Context, userID int64, publicID int64, updates map[string]interface{}) error {
	result := r.db.WithContext(ctx).
		Model(&model.EmergencyContact{}).
		Where("user_id = ? AND public_id = ?", userID, publicID).
		Updates(updates)
	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		return gorm.ErrRecordNotFound
	}
	return nil
}

// Delete 软删除联系人，历史 notification_logs 仍可回溯到它
func (r *ContactRepository) Delete(ctx context.Context, userID int64, publicID int64) error {
	result := r.db.WithContext(ctx).
		Where("user_id = ? AND public_id = ?", userID, publicID).
		Delete(&model.EmergencyContact{})
	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		return gorm.ErrRecordNotFound
	}
	return nil
}
