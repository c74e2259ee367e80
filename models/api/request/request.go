package requestapimodels

import (
	"policy-portal-backend/lib/workflow"
	"policy-portal-backend/models"
	apimodels "policy-portal-backend/models/api"
	dbmodels "policy-portal-backend/models/db"
	"strings"
	"time"

	"github.com/pkg/errors"
)

type RequestCreateData struct {
	PolicyID       string  `json:"policy_id" validate:"required"`
	AttachmentPath *string `json:"attachment_path" validate:"omitempty,max=512"`
}

func (r RequestCreateData) Validate() error {
	return apimodels.ValidateStruct(r)
}

type DecisionData struct {
	Decision       models.Decision `json:"decision" validate:"required,oneof=Approve Reject"`
	Comment        string          `json:"comment" validate:"max=2000"`
	AttachmentPath *string         `json:"attachment_path" validate:"omitempty,max=512"`
}

func (d DecisionData) Validate() error {
	if err := apimodels.ValidateStruct(d); err != nil {
		return err
	}
	if d.Decision == models.DecisionReject && strings.TrimSpace(d.Comment) == "" {
		return errors.New("a comment is required to reject a request")
	}
	return nil
}

type RequestFilter struct {
	apimodels.Pagination
	CreatedByUserID string               `json:"created_by_user_id"`
	PolicyID        string               `json:"policy_id"`
	Status          models.RequestStatus `json:"status"`
}

func (f RequestFilter) Validate() error {
	if f.Status != "" {
		return f.Status.Validate()
	}
	return nil
}

type ApprovalView struct {
	ID               string                `json:"id"`
	ApproverUserID   string                `json:"approver_user_id"`
	ApproverUserName string                `json:"approver_user_name"`
	ApproverRoleID   string                `json:"approver_role_id"`
	Status           models.ApprovalStatus `json:"status"`
	Comment          string                `json:"comment"`
	ActionDate       *time.Time            `json:"action_date"`
	AttachmentPath   *string               `json:"attachment_path"`
}

func ApprovalConvert(rec dbmodels.Approval) ApprovalView {
	result := ApprovalView{
		ID:             rec.ID,
		ApproverUserID: rec.ApproverUserID,
		ApproverRoleID: rec.ApproverRoleID,
		Status:         rec.Status,
		Comment:        rec.Comment,
		ActionDate:     rec.ActionDate,
		AttachmentPath: rec.AttachmentPath,
	}
	if rec.ApproverUser != nil {
		result.ApproverUserName = rec.ApproverUser.Name
	}
	return result
}

type StepProgressView struct {
	StepOrder   int    `json:"step_order"`
	RoleID      string `json:"role_id"`
	RoleName    string `json:"role_name"`
	IsFinalStep bool   `json:"is_final_step"`
	State       string `json:"state"` // done/current/waiting/rejected
}

const (
	StepStateDone     = "done"
	StepStateCurrent  = "current"
	StepStateWaiting  = "waiting"
	StepStateRejected = "rejected"
)

type ProgressView struct {
	CurrentStepOrder      int                `json:"current_step_order"` // -1 when no step is awaited
	CurrentApproverRoleID string             `json:"current_approver_role_id"`
	IsComplete            bool               `json:"is_complete"`
	IsRejected            bool               `json:"is_rejected"`
	Steps                 []StepProgressView `json:"steps"`
}

func ProgressConvert(steps []dbmodels.RequestStep, state workflow.State) ProgressView {
	done := map[int]bool{}
	for _, order := range state.Approved {
		done[order] = true
	}
	result := ProgressView{
		CurrentStepOrder:      state.CurrentStepOrder(),
		CurrentApproverRoleID: state.CurrentApproverRoleID(),
		IsComplete:            state.IsComplete,
		IsRejected:            state.IsRejected,
		Steps:                 make([]StepProgressView, 0, len(steps)),
	}
	rejectedMarked := false
	for _, step := range steps {
		view := StepProgressView{
			StepOrder:   step.StepOrder,
			RoleID:      step.RoleID,
			IsFinalStep: step.IsFinalStep,
			State:       StepStateWaiting,
		}
		if step.Role != nil {
			view.RoleName = step.Role.Name
		}
		switch {
		case done[step.StepOrder]:
			view.State = StepStateDone
		case state.IsRejected && !rejectedMarked:
			view.State = StepStateRejected
			rejectedMarked = true
		case state.Current != nil && state.Current.Order == step.StepOrder:
			view.State = StepStateCurrent
		}
		result.Steps = append(result.Steps, view)
	}
	return result
}

type RequestView struct {
	ID                string               `json:"id"`
	PolicyID          string               `json:"policy_id"`
	PolicyName        string               `json:"policy_name"`
	CreatedByUserID   string               `json:"created_by_user_id"`
	CreatedByUserName string               `json:"created_by_user_name"`
	Status            models.RequestStatus `json:"status"`
	CreatedAt         time.Time            `json:"created_at"`
	AttachmentPath    *string              `json:"attachment_path"`
	Approvals         []ApprovalView       `json:"approvals"`
	Progress          *ProgressView        `json:"progress,omitempty"`
}

// RequestConvert expects rec.Steps ordered by step order.
func RequestConvert(rec dbmodels.Request, state *workflow.State) RequestView {
	result := RequestView{
		ID:              rec.ID,
		PolicyID:        rec.PolicyID,
		CreatedByUserID: rec.CreatedByUserID,
		Status:          rec.Status,
		CreatedAt:       rec.CreatedAt,
		AttachmentPath:  rec.AttachmentPath,
		Approvals:       make([]ApprovalView, 0, len(rec.Approvals)),
	}
	if rec.Policy != nil {
		result.PolicyName = rec.Policy.Name
	}
	if rec.CreatedBy != nil {
		result.CreatedByUserName = rec.CreatedBy.Name
	}
	for _, approval := range rec.Approvals {
		result.Approvals = append(result.Approvals, ApprovalConvert(approval))
	}
	if state != nil {
		progress := ProgressConvert(rec.Steps, *state)
		result.Progress = &progress
	}
	return result
}
