package dbmodels

type WorkflowStep struct {
	BaseModel
	PolicyID    string `gorm:"type:varchar(36);uniqueIndex:idx_policy_step_order"`
	StepOrder   int    `gorm:"uniqueIndex:idx_policy_step_order"`
	RoleID      string `gorm:"type:varchar(36);index"`
	Role        *Role
	IsFinalStep bool
}

// RequestStep is the copy of a policy step taken when the request was created.
// Later edits of the policy workflow do not touch requests already in flight.
type RequestStep struct {
	BaseModel
	RequestID   string `gorm:"type:varchar(36);uniqueIndex:idx_request_step_order"`
	StepOrder   int    `gorm:"uniqueIndex:idx_request_step_order"`
	RoleID      string `gorm:"type:varchar(36)"`
	Role        *Role
	IsFinalStep bool
}
