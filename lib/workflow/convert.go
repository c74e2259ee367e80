package workflow

import dbmodels "policy-portal-backend/models/db"

func FromWorkflowSteps(list []dbmodels.WorkflowStep) []Step {
	result := make([]Step, 0, len(list))
	for _, rec := range list {
		result = append(result, Step{Order: rec.StepOrder, RoleID: rec.RoleID, IsFinal: rec.IsFinalStep})
	}
	return result
}

func FromRequestSteps(list []dbmodels.RequestStep) []Step {
	result := make([]Step, 0, len(list))
	for _, rec := range list {
		result = append(result, Step{Order: rec.StepOrder, RoleID: rec.RoleID, IsFinal: rec.IsFinalStep})
	}
	return result
}

func FromApprovals(list []dbmodels.Approval) []Decision {
	result := make([]Decision, 0, len(list))
	for _, rec := range list {
		result = append(result, Decision{
			ApproverUserID: rec.ApproverUserID,
			ApproverRoleID: rec.ApproverRoleID,
			Status:         rec.Status,
			ActionDate:     rec.ActionDate,
		})
	}
	return result
}
