package requeststore

import (
	"policy-portal-backend/models"
	requestapimodels "policy-portal-backend/models/api/request"
	dbmodels "policy-portal-backend/models/db"

	"github.com/pkg/errors"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

type Provider interface {
	// Create stores the request together with its step snapshot.
	Create(rec dbmodels.Request) (id string, err error)
	GetByID(id string) (rec *dbmodels.Request, err error)
	// GetForUpdate locks the request row until the surrounding transaction ends.
	GetForUpdate(id string) (rec *dbmodels.Request, err error)
	// CompareAndSwapStatus changes the status only while it still equals expected.
	CompareAndSwapStatus(id string, expected, status models.RequestStatus) (swapped bool, err error)
	List(filter requestapimodels.RequestFilter) (list []dbmodels.Request, err error)
	ListCount(filter requestapimodels.RequestFilter) (count int64, err error)
	// ListByStatus returns requests with steps and approvals loaded for evaluation.
	ListByStatus(status models.RequestStatus) (list []dbmodels.Request, err error)
	CountByPolicy(policyID string) (count int64, err error)
	// CountPendingByRole counts pending requests that have a step for the role.
	CountPendingByRole(roleID string) (count int64, err error)
	// Delete removes a request that has no decided approvals.
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

func (i impl) Create(rec dbmodels.Request) (id string, err error) {
	err = i.db.
		Omit("Policy", "CreatedBy", "Approvals", "Steps.Role").
		Create(&rec).
		Error
	if err != nil {
		return "", err
	}
	return rec.ID, nil
}

func (i impl) GetByID(id string) (*dbmodels.Request, error) {
	return i.get(i.db, id)
}

func (i impl) GetForUpdate(id string) (*dbmodels.Request, error) {
	return i.get(i.db.Clauses(clause.Locking{Strength: "UPDATE"}), id)
}

func (i impl) get(tx *gorm.DB, id string) (*dbmodels.Request, error) {
	rec := dbmodels.Request{}
	err := tx.
		Where("id = ?", id).
		Preload("Policy").
		Preload("CreatedBy").
		Preload("Steps", func(db *gorm.DB) *gorm.DB {
			return db.Order("step_order ASC")
		}).
		Preload("Steps.Role").
		Preload("Approvals", func(db *gorm.DB) *gorm.DB {
			return db.Order("created_at ASC")
		}).
		Preload("Approvals.ApproverUser").
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

func (i impl) CompareAndSwapStatus(id string, expected, status models.RequestStatus) (bool, error) {
	result := i.db.
		Model(&dbmodels.Request{}).
		Where("id = ?", id).
		Where("status = ?", expected).
		Update("status", status)
	if result.Error != nil {
		return false, result.Error
	}
	return result.RowsAffected == 1, nil
}

func (i impl) List(filter requestapimodels.RequestFilter) (list []dbmodels.Request, err error) {
	list = []dbmodels.Request{}
	tx := i.filter(filter).
		Preload("Policy").
		Preload("CreatedBy").
		Preload("Approvals", func(db *gorm.DB) *gorm.DB {
			return db.Order("created_at ASC")
		}).
		Order("created_at DESC")
	page, limit := filter.GetPage()
	tx = tx.Offset((page - 1) * limit).Limit(limit)
	err = tx.Find(&list).Error
	if err != nil {
		return nil, err
	}
	return list, nil
}

func (i impl) ListCount(filter requestapimodels.RequestFilter) (count int64, err error) {
	err = i.filter(filter).Count(&count).Error
	return count, err
}

func (i impl) ListByStatus(status models.RequestStatus) (list []dbmodels.Request, err error) {
	list = []dbmodels.Request{}
	err = i.db.
		Where("status = ?", status).
		Preload("Policy").
		Preload("CreatedBy").
		Preload("Steps", func(db *gorm.DB) *gorm.DB {
			return db.Order("step_order ASC")
		}).
		Preload("Steps.Role").
		Preload("Approvals", func(db *gorm.DB) *gorm.DB {
			return db.Order("created_at ASC")
		}).
		Preload("Approvals.ApproverUser").
		Order("created_at ASC").
		Find(&list).
		Error
	if err != nil {
		return nil, err
	}
	return list, nil
}

func (i impl) CountByPolicy(policyID string) (count int64, err error) {
	err = i.db.
		Model(&dbmodels.Request{}).
		Where("policy_id = ?", policyID).
		Count(&count).
		Error
	return count, err
}

func (i impl) CountPendingByRole(roleID string) (count int64, err error) {
	err = i.db.
		Model(&dbmodels.RequestStep{}).
		Joins("JOIN requests ON requests.id = request_steps.request_id").
		Where("request_steps.role_id = ?", roleID).
		Where("requests.status = ?", models.RequestStatusPending).
		Distinct("request_steps.request_id").
		Count(&count).
		Error
	return count, err
}

func (i impl) Delete(id string) error {
	return i.db.Transaction(func(tx *gorm.DB) error {
		var decided int64
		err := tx.
			Model(&dbmodels.Approval{}).
			Where("request_id = ?", id).
			Where("action_date IS NOT NULL OR status <> ?", models.ApprovalStatusPending).
			Count(&decided).
			Error
		if err != nil {
			return err
		}
		if decided > 0 {
			return errors.Errorf("request %v has %v decided approvals", id, decided)
		}
		err = tx.
			Where("request_id = ?", id).
			Delete(&dbmodels.Approval{}).
			Error
		if err != nil {
			return err
		}
		err = tx.
			Where("request_id = ?", id).
			Delete(&dbmodels.RequestStep{}).
			Error
		if err != nil {
			return err
		}
		return tx.
			Where("id = ?", id).
			Delete(&dbmodels.Request{}).
			Error
	})
}

func (i impl) filter(filter requestapimodels.RequestFilter) *gorm.DB {
	tx := i.db.Model(&dbmodels.Request{})
	if filter.CreatedByUserID != "" {
		tx = tx.Where("created_by_user_id = ?", filter.CreatedByUserID)
	}
	if filter.PolicyID != "" {
		tx = tx.Where("policy_id = ?", filter.PolicyID)
	}
	if filter.Status != "" {
		tx = tx.Where("status = ?", filter.Status)
	}
	return tx
}
