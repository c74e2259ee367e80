package requesthandler

import (
	"context"
	"fmt"
	"policy-portal-backend/config"
	"policy-portal-backend/db"
	notificationdispatcher "policy-portal-backend/lib/notification/dispatcher"
	policystore "policy-portal-backend/lib/policy/store"
	approvalstore "policy-portal-backend/lib/request/approval-store"
	requeststore "policy-portal-backend/lib/request/store"
	userstore "policy-portal-backend/lib/user/store"
	"policy-portal-backend/lib/utils/lock"
	"policy-portal-backend/lib/workflow"
	"policy-portal-backend/models"
	notificationapimodels "policy-portal-backend/models/api/notification"
	requestapimodels "policy-portal-backend/models/api/request"
	dbmodels "policy-portal-backend/models/db"
	"time"

	"github.com/pkg/errors"
	log "github.com/sirupsen/logrus"
	"gorm.io/gorm"
)

type Provider interface {
	Create(ctx context.Context, creatorUserID string, data requestapimodels.RequestCreateData) (*requestapimodels.RequestView, error)
	SubmitDecision(ctx context.Context, requestID, approverUserID string, data requestapimodels.DecisionData) (*requestapimodels.RequestView, error)
	GetByID(id string) (*requestapimodels.RequestView, error)
	List(filter requestapimodels.RequestFilter) (list []requestapimodels.RequestView, rowCount int64, err error)
	// ListAwaiting returns the pending requests whose current step waits for the user's role.
	ListAwaiting(userID string) ([]requestapimodels.RequestView, error)
	Progress(id string) (*requestapimodels.ProgressView, error)
	// Delete refuses requests that already carry a decision.
	Delete(id string) (hMsg string, err error)
}

var Instance Provider

func NewHandler() {
	Instance = impl{
		stores: newStores(db.DB),
		inTx: func(fn func(s stores) error) error {
			return db.DB.Transaction(func(tx *gorm.DB) error {
				return fn(newStores(tx))
			})
		},
		notifier: func() notificationdispatcher.Provider { return notificationdispatcher.Instance },
		lockWait: time.Duration(config.Conf.App.DecisionLockWaitSec) * time.Second,
		now:      time.Now,
	}
}

// NewHandlerWithTx binds the handler to an outer transaction. Notifications are not sent.
func NewHandlerWithTx(tx *gorm.DB) Provider {
	return impl{
		stores: newStores(tx),
		inTx: func(fn func(s stores) error) error {
			return fn(newStores(tx))
		},
		notifier: func() notificationdispatcher.Provider { return nil },
		lockWait: time.Duration(config.Conf.App.DecisionLockWaitSec) * time.Second,
		now:      time.Now,
	}
}

type stores struct {
	request  requeststore.Provider
	approval approvalstore.Provider
	policy   policystore.Provider
	user     userstore.Provider
}

func newStores(tx *gorm.DB) stores {
	return stores{
		request:  requeststore.NewInstance(tx),
		approval: approvalstore.NewInstance(tx),
		policy:   policystore.NewInstance(tx),
		user:     userstore.NewInstance(tx),
	}
}

type impl struct {
	stores
	inTx     func(fn func(s stores) error) error
	notifier func() notificationdispatcher.Provider
	lockWait time.Duration
	now      func() time.Time
}

func (i impl) getLogger(requestID, userID string) *log.Entry {
	logger := log.WithField("request_id", requestID)
	if userID != "" {
		logger = logger.WithField("user_id", userID)
	}
	return logger
}

func (i impl) Create(ctx context.Context, creatorUserID string, data requestapimodels.RequestCreateData) (*requestapimodels.RequestView, error) {
	policy, err := i.policy.GetByID(data.PolicyID)
	if err != nil {
		return nil, errors.Wrap(err, "failed to get policy")
	}
	if policy == nil {
		return nil, errors.Wrapf(models.ErrNotFound, "policy %v", data.PolicyID)
	}
	if !policy.IsActive {
		return nil, errors.Wrapf(models.ErrPolicyInactive, "policy %q", policy.Name)
	}
	creator, err := i.user.GetByID(creatorUserID)
	if err != nil {
		return nil, errors.Wrap(err, "failed to get request creator")
	}
	if creator == nil {
		return nil, errors.Wrapf(models.ErrNotFound, "user %v", creatorUserID)
	}
	steps := workflow.FromWorkflowSteps(policy.Steps)
	if err = workflow.ValidateComplete(steps); err != nil {
		return nil, errors.Wrapf(err, "policy %q", policy.Name)
	}
	state, err := workflow.Evaluate(steps, nil)
	if err != nil {
		return nil, err
	}

	rec := dbmodels.Request{
		PolicyID:        policy.ID,
		CreatedByUserID: creator.ID,
		Status:          state.Status(),
		AttachmentPath:  data.AttachmentPath,
		Steps:           snapshotSteps(policy.Steps),
	}
	id, err := i.request.Create(rec)
	if err != nil {
		return nil, errors.Wrap(err, "failed to create request")
	}
	logger := i.getLogger(id, creator.ID)
	logger.WithField("status", rec.Status).Info("request created")

	created, err := i.request.GetByID(id)
	if err != nil {
		return nil, errors.Wrap(err, "failed to get created request")
	}
	if created == nil {
		return nil, errors.Wrapf(models.ErrNotFound, "request %v", id)
	}
	result, state, err := i.view(*created)
	if err != nil {
		return nil, err
	}
	i.notifyCreated(*created, state)
	return result, nil
}

func (i impl) SubmitDecision(ctx context.Context, requestID, approverUserID string, data requestapimodels.DecisionData) (*requestapimodels.RequestView, error) {
	logger := i.getLogger(requestID, approverUserID).WithField("decision", data.Decision)
	if err := data.Decision.Validate(); err != nil {
		return nil, err
	}
	var updated *dbmodels.Request
	var prevState workflow.State
	locked, err := lock.WithDelay(ctx, "request:"+requestID, i.lockWait, func() error {
		return i.inTx(func(s stores) error {
			var txErr error
			updated, prevState, txErr = i.decide(s, requestID, approverUserID, data)
			return txErr
		})
	})
	if !locked && err == nil {
		return nil, errors.Wrapf(models.ErrBusy, "request %v", requestID)
	}
	if err != nil {
		return nil, err
	}
	result, state, err := i.view(*updated)
	if err != nil {
		return nil, err
	}
	logger.WithField("status", updated.Status).Info("decision recorded")
	i.notifyDecided(*updated, prevState, state)
	return result, nil
}

// decide runs inside the request transaction. It returns the stored request
// after the decision together with the state the decision was made against.
func (i impl) decide(s stores, requestID, approverUserID string, data requestapimodels.DecisionData) (*dbmodels.Request, workflow.State, error) {
	rec, err := s.request.GetForUpdate(requestID)
	if err != nil {
		return nil, workflow.State{}, errors.Wrap(err, "failed to get request")
	}
	if rec == nil {
		return nil, workflow.State{}, errors.Wrapf(models.ErrNotFound, "request %v", requestID)
	}
	if rec.Status != models.RequestStatusPending {
		return nil, workflow.State{}, errors.Wrapf(models.ErrInvalidState, "request %v is %v", requestID, rec.Status)
	}
	approver, err := s.user.GetByID(approverUserID)
	if err != nil {
		return nil, workflow.State{}, errors.Wrap(err, "failed to get approver")
	}
	if approver == nil {
		return nil, workflow.State{}, errors.Wrapf(models.ErrNotFound, "user %v", approverUserID)
	}

	steps := workflow.FromRequestSteps(rec.Steps)
	state, err := workflow.Evaluate(steps, workflow.FromApprovals(rec.Approvals))
	if err != nil {
		return nil, workflow.State{}, err
	}
	if state.Current == nil {
		// evaluation is already terminal while the stored status is not
		return nil, workflow.State{}, errors.Wrapf(models.ErrInvalidState, "request %v has no step awaiting a decision", requestID)
	}
	if approver.RoleID != state.CurrentApproverRoleID() {
		return nil, workflow.State{}, errors.Wrapf(models.ErrUnauthorizedApprover,
			"step %v waits for role %v, approver has role %v", state.CurrentStepOrder(), state.CurrentApproverRoleID(), approver.RoleID)
	}

	actionDate := i.now()
	approval := dbmodels.Approval{
		RequestID:      rec.ID,
		ApproverUserID: approver.ID,
		ApproverRoleID: approver.RoleID,
		Status:         data.Decision.ApprovalStatus(),
		Comment:        data.Comment,
		ActionDate:     &actionDate,
		AttachmentPath: data.AttachmentPath,
	}
	approval.ID, err = s.approval.Create(approval)
	if err != nil {
		return nil, workflow.State{}, errors.Wrap(err, "failed to store approval")
	}
	approvals := append(rec.Approvals, approval)
	newState, err := workflow.Evaluate(steps, workflow.FromApprovals(approvals))
	if err != nil {
		return nil, workflow.State{}, err
	}
	swapped, err := s.request.CompareAndSwapStatus(rec.ID, models.RequestStatusPending, newState.Status())
	if err != nil {
		return nil, workflow.State{}, errors.Wrap(err, "failed to update request status")
	}
	if !swapped {
		return nil, workflow.State{}, errors.Wrapf(models.ErrInvalidState, "request %v was decided concurrently", requestID)
	}

	updated, err := s.request.GetByID(rec.ID)
	if err != nil {
		return nil, workflow.State{}, errors.Wrap(err, "failed to get updated request")
	}
	if updated == nil {
		return nil, workflow.State{}, errors.Wrapf(models.ErrNotFound, "request %v", requestID)
	}
	return updated, state, nil
}

func (i impl) GetByID(id string) (*requestapimodels.RequestView, error) {
	rec, err := i.request.GetByID(id)
	if err != nil {
		return nil, err
	}
	if rec == nil {
		return nil, errors.Wrapf(models.ErrNotFound, "request %v", id)
	}
	result, _, err := i.view(*rec)
	return result, err
}

func (i impl) List(filter requestapimodels.RequestFilter) (list []requestapimodels.RequestView, rowCount int64, err error) {
	rowCount, err = i.request.ListCount(filter)
	if err != nil {
		return nil, 0, err
	}
	recList, err := i.request.List(filter)
	if err != nil {
		return nil, 0, err
	}
	list = make([]requestapimodels.RequestView, 0, len(recList))
	for _, rec := range recList {
		list = append(list, requestapimodels.RequestConvert(rec, nil))
	}
	return list, rowCount, nil
}

func (i impl) ListAwaiting(userID string) ([]requestapimodels.RequestView, error) {
	user, err := i.user.GetByID(userID)
	if err != nil {
		return nil, err
	}
	if user == nil {
		return nil, errors.Wrapf(models.ErrNotFound, "user %v", userID)
	}
	recList, err := i.request.ListByStatus(models.RequestStatusPending)
	if err != nil {
		return nil, err
	}
	result := []requestapimodels.RequestView{}
	for _, rec := range recList {
		view, state, err := i.view(rec)
		if err != nil {
			i.getLogger(rec.ID, userID).WithError(err).Warn("request skipped, workflow cannot be evaluated")
			continue
		}
		if state.CurrentApproverRoleID() == user.RoleID {
			result = append(result, *view)
		}
	}
	return result, nil
}

func (i impl) Progress(id string) (*requestapimodels.ProgressView, error) {
	rec, err := i.request.GetByID(id)
	if err != nil {
		return nil, err
	}
	if rec == nil {
		return nil, errors.Wrapf(models.ErrNotFound, "request %v", id)
	}
	state, err := evaluate(*rec)
	if err != nil {
		return nil, err
	}
	result := requestapimodels.ProgressConvert(rec.Steps, state)
	return &result, nil
}

func (i impl) Delete(id string) (hMsg string, err error) {
	err = i.inTx(func(s stores) error {
		rec, err := s.request.GetForUpdate(id)
		if err != nil {
			return err
		}
		if rec == nil {
			return errors.Wrapf(models.ErrNotFound, "request %v", id)
		}
		if decided := countDecided(rec.Approvals); decided > 0 {
			hMsg = fmt.Sprintf("Request already has %v decisions and cannot be deleted", decided)
			return nil
		}
		return s.request.Delete(id)
	})
	if err != nil {
		if errors.Is(err, models.ErrNotFound) {
			return "", err
		}
		return "", errors.Wrap(err, "failed to delete request")
	}
	if hMsg != "" {
		return hMsg, nil
	}
	i.getLogger(id, "").Info("request deleted")
	return "", nil
}

func countDecided(list []dbmodels.Approval) int {
	count := 0
	for _, approval := range list {
		if approval.ActionDate != nil || approval.Status != models.ApprovalStatusPending {
			count++
		}
	}
	return count
}

func (i impl) view(rec dbmodels.Request) (*requestapimodels.RequestView, workflow.State, error) {
	state, err := evaluate(rec)
	if err != nil {
		return nil, workflow.State{}, err
	}
	result := requestapimodels.RequestConvert(rec, &state)
	return &result, state, nil
}

func evaluate(rec dbmodels.Request) (workflow.State, error) {
	return workflow.Evaluate(workflow.FromRequestSteps(rec.Steps), workflow.FromApprovals(rec.Approvals))
}

func snapshotSteps(list []dbmodels.WorkflowStep) []dbmodels.RequestStep {
	result := make([]dbmodels.RequestStep, 0, len(list))
	for _, step := range list {
		result = append(result, dbmodels.RequestStep{
			StepOrder:   step.StepOrder,
			RoleID:      step.RoleID,
			IsFinalStep: step.IsFinalStep,
		})
	}
	return result
}

func (i impl) notifyCreated(rec dbmodels.Request, state workflow.State) {
	notifier := i.notifier()
	if notifier == nil {
		return
	}
	policyName := getPolicyName(rec)
	if state.IsComplete {
		notifier.Dispatch(notificationapimodels.Message{
			RecipientUserID: rec.CreatedByUserID,
			Title:           "Request approved",
			Description:     fmt.Sprintf("Your request under %q was approved automatically, the policy has no approval steps", policyName),
			ReferenceID:     rec.ID,
			Type:            models.NotificationApprovedRequest,
		})
		return
	}
	notifier.DispatchToRole(state.CurrentApproverRoleID(), pendingMessage(rec, policyName))
}

// notifyDecided sends the outcome to the creator and, while the request is still
// pending, asks the next role for a decision.
func (i impl) notifyDecided(rec dbmodels.Request, prevState, state workflow.State) {
	notifier := i.notifier()
	if notifier == nil {
		return
	}
	policyName := getPolicyName(rec)
	outcome := notificationapimodels.Message{
		RecipientUserID: rec.CreatedByUserID,
		ReferenceID:     rec.ID,
	}
	switch rec.Status {
	case models.RequestStatusApproved:
		outcome.Title = "Request approved"
		outcome.Description = fmt.Sprintf("Your request under %q was approved", policyName)
		outcome.Type = models.NotificationApprovedRequest
	case models.RequestStatusRejected:
		outcome.Title = "Request rejected"
		outcome.Description = fmt.Sprintf("Your request under %q was rejected at %v", policyName, stepLabel(rec, prevState.CurrentStepOrder()))
		if comment := lastComment(rec); comment != "" {
			outcome.Description += ": " + comment
		}
		outcome.Type = models.NotificationRejected
	default:
		outcome.Title = "Request step approved"
		outcome.Description = fmt.Sprintf("Your request under %q was approved at %v, waiting for %v",
			policyName, stepLabel(rec, prevState.CurrentStepOrder()), stepLabel(rec, state.CurrentStepOrder()))
		outcome.Type = models.NotificationPendingRequest
	}
	notifier.Dispatch(outcome)
	if rec.Status == models.RequestStatusPending {
		notifier.DispatchToRole(state.CurrentApproverRoleID(), pendingMessage(rec, policyName))
	}
}

func pendingMessage(rec dbmodels.Request, policyName string) notificationapimodels.Message {
	creatorName := rec.CreatedByUserID
	if rec.CreatedBy != nil {
		creatorName = rec.CreatedBy.Name
	}
	return notificationapimodels.Message{
		Title:       "Request awaiting your approval",
		Description: fmt.Sprintf("%v submitted a request under %q", creatorName, policyName),
		ReferenceID: rec.ID,
		Type:        models.NotificationPendingRequest,
	}
}

// stepLabel names a step by its position in the ordered snapshot, since step orders may have gaps.
func stepLabel(rec dbmodels.Request, order int) string {
	for idx, step := range rec.Steps {
		if step.StepOrder != order {
			continue
		}
		if step.Role != nil {
			return fmt.Sprintf("step %v (%v)", idx+1, step.Role.Name)
		}
		return fmt.Sprintf("step %v", idx+1)
	}
	return fmt.Sprintf("step with order %v", order)
}

func getPolicyName(rec dbmodels.Request) string {
	if rec.Policy != nil {
		return rec.Policy.Name
	}
	return rec.PolicyID
}

func lastComment(rec dbmodels.Request) string {
	if len(rec.Approvals) == 0 {
		return ""
	}
	return rec.Approvals[len(rec.Approvals)-1].Comment
}
