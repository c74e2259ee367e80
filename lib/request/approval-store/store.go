package approvalstore

import (
	dbmodels "policy-portal-backend/models/db"

	"gorm.io/gorm"
)

// Approvals are append-only and load with their request.
type Provider interface {
	Create(rec dbmodels.Approval) (id string, err error)
}

func NewInstance(DB *gorm.DB) Provider {
	return &impl{
		db: DB,
	}
}

type impl struct {
	db *gorm.DB
}

func (i impl) Create(rec dbmodels.Approval) (id string, err error) {
	err = i.db.
		Omit("ApproverUser").
		Create(&rec).
		Error
	if err != nil {
		return "", err
	}
	return rec.ID, nil
}
