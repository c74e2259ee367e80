package workflowstepstore

import (
	dbmodels "policy-portal-backend/models/db"

	"github.com/pkg/errors"
	"gorm.io/gorm"
)

type Provider interface {
	Create(rec dbmodels.WorkflowStep) (id string, err error)
	GetByID(id string) (rec *dbmodels.WorkflowStep, err error)
	ListByPolicy(policyID string) (list []dbmodels.WorkflowStep, err error)
	List() (list []dbmodels.WorkflowStep, err error)
	CountByRole(roleID string) (count int64, err error)
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

func (i impl) Create(rec dbmodels.WorkflowStep) (id string, err error) {
	err = i.db.
		Omit("Role").
		Save(&rec).
		Error
	if err != nil {
		return "", err
	}
	return rec.ID, nil
}

func (i impl) GetByID(id string) (*dbmodels.WorkflowStep, error) {
	rec := dbmodels.WorkflowStep{}
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

func (i impl) ListByPolicy(policyID string) (list []dbmodels.WorkflowStep, err error) {
	list = []dbmodels.WorkflowStep{}
	err = i.db.
		Where("policy_id = ?", policyID).
		Order("step_order ASC").
		Preload("Role").
		Find(&list).
		Error
	if err != nil {
		return nil, err
	}
	return list, nil
}

func (i impl) List() (list []dbmodels.WorkflowStep, err error) {
	list = []dbmodels.WorkflowStep{}
	err = i.db.
		Order("policy_id ASC, step_order ASC").
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
		Model(&dbmodels.WorkflowStep{}).
		Where("role_id = ?", roleID).
		Count(&count).
		Error
	return count, err
}

func (i impl) Delete(id string) error {
	return i.db.
		Where("id = ?", id).
		Delete(&dbmodels.WorkflowStep{}).
		Error
}
