package userstore

import (
	dbmodels "policy-portal-backend/models/db"

	"github.com/pkg/errors"
	"gorm.io/gorm"
)

type Provider interface {
	Create(rec dbmodels.User) (id string, err error)
	GetByID(id string) (rec *dbmodels.User, err error)
	ExistByEmail(email string) (bool, error)
	List(page, limit int) (list []dbmodels.User, err error)
	ListCount() (count int64, err error)
	ListByRole(roleID string) (list []dbmodels.User, err error)
	CountByRole(roleID string) (count int64, err error)
	ListIDs() (ids []string, err error)
	Update(id string, updMap map[string]interface{}) error
	Delete(id string) error
}

func NewInstance(DB *gorm.DB) Provider {
	return &impl{
		db: DB,
	}
}

type impl struct {
	db *gorm.DB
}

func (i impl) Create(rec dbmodels.User) (id string, err error) {
	err = i.db.
		Omit("Role").
		Save(&rec).
		Error
	if err != nil {
		return "", err
	}
	return rec.ID, nil
}

func (i impl) GetByID(id string) (*dbmodels.User, error) {
	rec := dbmodels.User{}
	err := i.db.
		Where("id = ?", id).
		Preload("Role").
		First(&rec).
		Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, err
	}
	return &rec, nil
}

func (i impl) ExistByEmail(email string) (bool, error) {
	var count int64
	err := i.db.
		Model(&dbmodels.User{}).
		Where("email = ?", email).
		Count(&count).
		Error
	if err != nil {
		return false, err
	}
	return count > 0, nil
}

func (i impl) List(page, limit int) (list []dbmodels.User, err error) {
	list = []dbmodels.User{}
	tx := i.db.
		Model(&dbmodels.User{}).
		Order("name ASC").
		Preload("Role")
	i.setPage(tx, page, limit)
	err = tx.Find(&list).Error
	if err != nil {
		return nil, err
	}
	return list, nil
}

func (i impl) ListCount() (count int64, err error) {
	err = i.db.
		Model(&dbmodels.User{}).
		Count(&count).
		Error
	return count, err
}

func (i impl) ListByRole(roleID string) (list []dbmodels.User, err error) {
	list = []dbmodels.User{}
	err = i.db.
		Where("role_id = ?", roleID).
		Preload("Role").
		Find(&list).
		Error
	if err != nil {
		return nil, err
	}
	return list, nil
}

func (i impl) CountByRole(roleID string) (count int64, err error) {
	err = i.db.
		Model(&dbmodels.User{}).
		Where("role_id = ?", roleID).
		Count(&count).
		Error
	return count, err
}

func (i impl) ListIDs() (ids []string, err error) {
	ids = []string{}
	err = i.db.
		Model(&dbmodels.User{}).
		Pluck("id", &ids).
		Error
	if err != nil {
		return nil, err
	}
	return ids, nil
}

func (i impl) Update(id string, updMap map[string]interface{}) error {
	if len(updMap) == 0 {
		return nil
	}
	return i.db.
		Model(&dbmodels.User{}).
		Where("id = ?", id).
		Updates(updMap).
		Error
}

func (i impl) Delete(id string) error {
	return i.db.
		Where("id = ?", id).
		Delete(&dbmodels.User{}).
		Error
}

func (i impl) setPage(tx *gorm.DB, page, limit int) {
	if page == 0 {
		page = 1
	}
	switch {
	case limit > 100:
		limit = 100
	case limit <= 0:
		limit = 10
	}
	offset := (page - 1) * limit
	tx.Offset(offset).Limit(limit)
}
