package dbmodels

import (
	"policy-portal-backend/models"
	"time"
)

type Request struct {
	BaseModel
	PolicyID        string `gorm:"type:varchar(36);index"`
	Policy          *Policy
	CreatedByUserID string               `gorm:"type:varchar(36);index"`
	CreatedBy       *User                `gorm:"foreignKey:CreatedByUserID"`
	Status          models.RequestStatus `gorm:"type:varchar(20);index"`
	AttachmentPath  *string
	Steps           []RequestStep `gorm:"foreignKey:RequestID"`
	Approvals       []Approval    `gorm:"foreignKey:RequestID"`
}

type Approval struct {
	BaseModel
	RequestID      string `gorm:"type:varchar(36);index"`
	ApproverUserID string `gorm:"type:varchar(36)"`
	ApproverUser   *User  `gorm:"foreignKey:ApproverUserID"`
	// ApproverRoleID is the approver's role at the moment of the decision.
	ApproverRoleID string                `gorm:"type:varchar(36)"`
	Status         models.ApprovalStatus `gorm:"type:varchar(20)"`
	Comment        string
	ActionDate     *time.Time
	AttachmentPath *string
}
