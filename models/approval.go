package models

import "github.com/pkg/errors"

type RequestStatus string

const (
	RequestStatusPending  RequestStatus = "Pending"
	RequestStatusApproved RequestStatus = "Approved"
	RequestStatusRejected RequestStatus = "Rejected"
)

var requestStatusHumanName = map[RequestStatus]string{
	RequestStatusPending:  "Pending approval",
	RequestStatusApproved: "Approved",
	RequestStatusRejected: "Rejected",
}

func (s RequestStatus) ToHuman() string {
	if human, exist := requestStatusHumanName[s]; exist {
		return human
	}
	return string(s)
}

func (s RequestStatus) IsTerminal() bool {
	return s == RequestStatusApproved || s == RequestStatusRejected
}

func (s RequestStatus) Validate() error {
	if _, ok := requestStatusHumanName[s]; !ok {
		return errors.Errorf("unknown request status: %v", s)
	}
	return nil
}

type ApprovalStatus string

const (
	ApprovalStatusPending  ApprovalStatus = "Pending"
	ApprovalStatusApproved ApprovalStatus = "Approved"
	ApprovalStatusRejected ApprovalStatus = "Rejected"
)

func (s ApprovalStatus) IsDecided() bool {
	return s == ApprovalStatusApproved || s == ApprovalStatusRejected
}

type Decision string

const (
	DecisionApprove Decision = "Approve"
	DecisionReject  Decision = "Reject"
)

func (d Decision) Validate() error {
	switch d {
	case DecisionApprove, DecisionReject:
		return nil
	}
	return errors.Errorf("unknown decision: %v", d)
}

// ApprovalStatus is the status recorded on the Approval appended for this decision.
func (d Decision) ApprovalStatus() ApprovalStatus {
	if d == DecisionReject {
		return ApprovalStatusRejected
	}
	return ApprovalStatusApproved
}

type NotificationType string

const (
	NotificationPendingRequest  NotificationType = "PendingRequest"
	NotificationApprovedRequest NotificationType = "ApprovedRequest"
	NotificationRejected        NotificationType = "Rejected"
	NotificationSystem          NotificationType = "System"
)

var notificationTypeHumanName = map[NotificationType]string{
	NotificationPendingRequest:  "Pending request",
	NotificationApprovedRequest: "Request approved",
	NotificationRejected:        "Request rejected",
	NotificationSystem:          "System",
}

func (t NotificationType) ToHuman() string {
	if human, exist := notificationTypeHumanName[t]; exist {
		return human
	}
	return string(t)
}

const SystemUser = "System"
