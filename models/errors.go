package models

import "github.com/pkg/errors"

// Domain failures surfaced to the presentation layer. Callers wrap them with
// context and compare with errors.Is.
var (
	ErrInvalidState         = errors.New("request is not pending")
	ErrUnauthorizedApprover = errors.New("approver role does not match the current workflow step")
	ErrInvalidWorkflow      = errors.New("invalid workflow configuration")
	ErrPolicyInactive       = errors.New("policy is inactive")
	ErrNotFound             = errors.New("record not found")

	// ErrBusy means another decision on the same request held the lock for too long.
	ErrBusy = errors.New("request is being processed, try again later")
)
