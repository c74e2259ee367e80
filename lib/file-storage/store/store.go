package filesdbstorage

import (
	dbmodels "policy-portal-backend/models/db"

	"github.com/pkg/errors"
	"gorm.io/gorm"
)

type Provider interface {
	SaveFile(rec dbmodels.Attachment) (id string, err error)
	GetByID(id string) (rec *dbmodels.Attachment, err error)
	GetByPath(objectPath string) (rec *dbmodels.Attachment, err error)
	ListByRequest(requestID string) (list []dbmodels.Attachment, err error)
}

type impl struct {
	db *gorm.DB
}

func NewInstance(db *gorm.DB) Provider {
	return &impl{db: db}
}

func (i impl) SaveFile(rec dbmodels.Attachment) (id string, err error) {
	err = i.db.Save(&rec).Error
	if err != nil {
		return "", err
	}
	return rec.ID, nil
}

func (i impl) GetByID(id string) (*dbmodels.Attachment, error) {
	return i.first(i.db.Where("id = ?", id))
}

func (i impl) GetByPath(objectPath string) (*dbmodels.Attachment, error) {
	return i.first(i.db.Where("object_path = ?", objectPath))
}

func (i impl) first(tx *gorm.DB) (*dbmodels.Attachment, error) {
	rec := dbmodels.Attachment{}
	err := tx.First(&rec).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, err
	}
	return &rec, nil
}

func (i impl) ListByRequest(requestID string) (list []dbmodels.Attachment, err error) {
	list = []dbmodels.Attachment{}
	err = i.db.
		Where("request_id = ?", requestID).
		Order("created_at ASC").
		Find(&list).
		Error
	if err != nil {
		return nil, err
	}
	return list, nil
}
