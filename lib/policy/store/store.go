package policystore

import (
	dbmodels "policy-portal-backend/models/db"

	"github.com/pkg/errors"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

type Provider interface {
	Create(rec dbmodels.Policy) (id string, err error)
	GetByID(id string) (rec *dbmodels.Policy, err error)
	// GetForUpdate locks the policy row until the surrounding transaction ends.
	// Steps are not loaded.
	GetForUpdate(id string) (rec *dbmodels.Policy, err error)
	List(onlyActive bool) (list []dbmodels.Policy, err error)
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

func (i impl) Create(rec dbmodels.Policy) (id string, err error) {
	err = i.db.
		Omit("CreatedBy", "Steps").
		Save(&rec).
		Error
	if err != nil {
		return "", err
	}
	return rec.ID, nil
}

func (i impl) GetByID(id string) (*dbmodels.Policy, error) {
	rec := dbmodels.Policy{}
	err := i.db.
		Where("id = ?", id).
		Preload("CreatedBy").
		Preload("Steps", func(db *gorm.DB) *gorm.DB {
			return db.Order("step_order ASC")
		}).
		Preload("Steps.Role").
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

func (i impl) GetForUpdate(id string) (*dbmodels.Policy, error) {
	rec := dbmodels.Policy{}
	err := i.db.
		Clauses(clause.Locking{Strength: "UPDATE"}).
		Where("id = ?", id).
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

func (i impl) List(onlyActive bool) (list []dbmodels.Policy, err error) {
	list = []dbmodels.Policy{}
	tx := i.db.
		Model(&dbmodels.Policy{}).
		Preload("CreatedBy").
		Order("created_at DESC")
	if onlyActive {
		tx = tx.Where("is_active = ?", true)
	}
	err = tx.Find(&list).Error
	if err != nil {
		return nil, err
	}
	return list, nil
}

func (i impl) Update(id string, updMap map[string]interface{}) error {
	if len(updMap) == 0 {
		return nil
	}
	return i.db.
		Model(&dbmodels.Policy{}).
		Where("id = ?", id).
		Updates(updMap).
		Error
}

func (i impl) Delete(id string) error {
	return i.db.Transaction(func(tx *gorm.DB) error {
		err := tx.
			Where("policy_id = ?", id).
			Delete(&dbmodels.WorkflowStep{}).
			Error
		if err != nil {
			return err
		}
		return tx.
			Where("id = ?", id).
			Delete(&dbmodels.Policy{}).
			Error
	})
}
