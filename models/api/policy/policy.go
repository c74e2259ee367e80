package policyapimodels

import (
	apimodels "policy-portal-backend/models/api"
	dbmodels "policy-portal-backend/models/db"
	"strings"
	"time"

	"github.com/pkg/errors"
)

type PolicyData struct {
	Name        string `json:"name"`
	Description string `json:"description"`
	IsActive    bool   `json:"is_active"`
}

func (p PolicyData) Validate() error {
	if strings.TrimSpace(p.Name) == "" {
		return errors.New("policy name is required")
	}
	return nil
}

type PolicyActivity struct {
	IsActive bool `json:"is_active"`
}

type PolicyView struct {
	PolicyData
	ID                string             `json:"id"`
	CreatedAt         time.Time          `json:"created_at"`
	CreatedByUserID   string             `json:"created_by_user_id"`
	CreatedByUserName string             `json:"created_by_user_name"`
	Steps             []WorkflowStepView `json:"steps,omitempty"`
}

func PolicyConvert(rec dbmodels.Policy) PolicyView {
	result := PolicyView{
		PolicyData: PolicyData{
			Name:        rec.Name,
			Description: rec.Description,
			IsActive:    rec.IsActive,
		},
		ID:              rec.ID,
		CreatedAt:       rec.CreatedAt,
		CreatedByUserID: rec.CreatedByUserID,
	}
	if rec.CreatedBy != nil {
		result.CreatedByUserName = rec.CreatedBy.Name
	}
	for _, step := range rec.Steps {
		result.Steps = append(result.Steps, WorkflowStepConvert(step))
	}
	return result
}

type WorkflowStepData struct {
	PolicyID    string `json:"policy_id" validate:"required"`
	RoleID      string `json:"role_id" validate:"required"`
	StepOrder   int    `json:"step_order" validate:"min=0"`
	IsFinalStep bool   `json:"is_final_step"`
}

func (s WorkflowStepData) Validate() error {
	if s.StepOrder < 0 {
		return errors.New("step order must not be negative")
	}
	return apimodels.ValidateStruct(s)
}

type WorkflowStepView struct {
	WorkflowStepData
	ID       string `json:"id"`
	RoleName string `json:"role_name"`
}

func WorkflowStepConvert(rec dbmodels.WorkflowStep) WorkflowStepView {
	result := WorkflowStepView{
		WorkflowStepData: WorkflowStepData{
			PolicyID:    rec.PolicyID,
			RoleID:      rec.RoleID,
			StepOrder:   rec.StepOrder,
			IsFinalStep: rec.IsFinalStep,
		},
		ID: rec.ID,
	}
	if rec.Role != nil {
		result.RoleName = rec.Role.Name
	}
	return result
}
