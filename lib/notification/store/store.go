package notificationstore

import (
	dbmodels "policy-portal-backend/models/db"
	"time"

	"gorm.io/gorm"
)

type Provider interface {
	Create(rec dbmodels.Notification) (id string, err error)
	List(userID string, onlyUnseen bool) (list []dbmodels.Notification, err error)
	// MarkSeen reports false when the notification does not belong to the user.
	MarkSeen(userID, id string) (found bool, err error)
	MarkAllSeen(userID string) error
	DeleteSeenBefore(before time.Time) (count int64, err error)
}

func NewInstance(DB *gorm.DB) Provider {
	return &impl{
		db: DB,
	}
}

type impl struct {
	db *gorm.DB
}

func (i impl) Create(rec dbmodels.Notification) (id string, err error) {
	err = i.db.
		Create(&rec).
		Error
	if err != nil {
		return "", err
	}
	return rec.ID, nil
}

func (i impl) List(userID string, onlyUnseen bool) (list []dbmodels.Notification, err error) {
	list = []dbmodels.Notification{}
	tx := i.db.
		Where("recipient_user_id = ?", userID)
	if onlyUnseen {
		tx = tx.Where("is_seen = ?", false)
	}
	err = tx.
		Order("created_at DESC").
		Find(&list).
		Error
	if err != nil {
		return nil, err
	}
	return list, nil
}

func (i impl) MarkSeen(userID, id string) (bool, error) {
	result := i.db.
		Model(&dbmodels.Notification{}).
		Where("id = ?", id).
		Where("recipient_user_id = ?", userID).
		Update("is_seen", true)
	if result.Error != nil {
		return false, result.Error
	}
	return result.RowsAffected > 0, nil
}

func (i impl) MarkAllSeen(userID string) error {
	return i.db.
		Model(&dbmodels.Notification{}).
		Where("recipient_user_id = ?", userID).
		Where("is_seen = ?", false).
		Update("is_seen", true).
		Error
}

func (i impl) DeleteSeenBefore(before time.Time) (int64, error) {
	result := i.db.
		Where("is_seen = ?", true).
		Where("created_at < ?", before).
		Delete(&dbmodels.Notification{})
	return result.RowsAffected, result.Error
}
