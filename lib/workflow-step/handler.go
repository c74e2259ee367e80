package workflowstephandler

import (
	"policy-portal-backend/db"
	policystore "policy-portal-backend/lib/policy/store"
	rolestore "policy-portal-backend/lib/role/store"
	workflowstepstore "policy-portal-backend/lib/workflow-step/store"
	"policy-portal-backend/lib/workflow"
	"policy-portal-backend/models"
	policyapimodels "policy-portal-backend/models/api/policy"
	dbmodels "policy-portal-backend/models/db"

	"github.com/pkg/errors"
	log "github.com/sirupsen/logrus"
	"gorm.io/gorm"
)

// Provider builds the ordered approval chain of a policy. Requests already
// created keep the chain they were created with.
type Provider interface {
	Add(data policyapimodels.WorkflowStepData) (id string, err error)
	Delete(id string) error
	ListByPolicy(policyID string) ([]policyapimodels.WorkflowStepView, error)
	List() ([]policyapimodels.WorkflowStepView, error)
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
	}
}

func NewHandlerWithTx(tx *gorm.DB) Provider {
	return impl{
		stores: newStores(tx),
		inTx: func(fn func(s stores) error) error {
			return fn(newStores(tx))
		},
	}
}

type stores struct {
	store       workflowstepstore.Provider
	policyStore policystore.Provider
	roleStore   rolestore.Provider
}

func newStores(tx *gorm.DB) stores {
	return stores{
		store:       workflowstepstore.NewInstance(tx),
		policyStore: policystore.NewInstance(tx),
		roleStore:   rolestore.NewInstance(tx),
	}
}

// Every change of a chain runs in a transaction holding the policy row lock,
// and validates the steps read under that lock.
type impl struct {
	stores
	inTx func(fn func(s stores) error) error
}

func (i impl) getLogger(policyID string) *log.Entry {
	return log.WithField("policy_id", policyID)
}

func (i impl) Add(data policyapimodels.WorkflowStepData) (id string, err error) {
	rec := dbmodels.WorkflowStep{
		StepOrder:   data.StepOrder,
		IsFinalStep: data.IsFinalStep,
	}
	err = i.inTx(func(s stores) error {
		policy, err := s.policyStore.GetForUpdate(data.PolicyID)
		if err != nil {
			return err
		}
		if policy == nil {
			return errors.Wrapf(models.ErrNotFound, "policy %v", data.PolicyID)
		}
		role, err := s.roleStore.GetByID(data.RoleID)
		if err != nil {
			return err
		}
		if role == nil {
			return errors.Wrapf(models.ErrNotFound, "role %v", data.RoleID)
		}
		current, err := s.store.ListByPolicy(policy.ID)
		if err != nil {
			return err
		}
		rec.PolicyID = policy.ID
		rec.RoleID = role.ID
		candidate := workflow.FromWorkflowSteps(append(current, rec))
		if err = validate(policy.IsActive, candidate); err != nil {
			return err
		}
		id, err = s.store.Create(rec)
		if err != nil {
			return errors.Wrap(err, "failed to create workflow step")
		}
		return nil
	})
	if err != nil {
		return "", err
	}
	i.getLogger(rec.PolicyID).
		WithField("step_order", rec.StepOrder).
		WithField("role_id", rec.RoleID).
		Info("workflow step added")
	return id, nil
}

func (i impl) Delete(id string) error {
	var rec *dbmodels.WorkflowStep
	err := i.inTx(func(s stores) error {
		var err error
		rec, err = s.store.GetByID(id)
		if err != nil {
			return err
		}
		if rec == nil {
			return errors.Wrapf(models.ErrNotFound, "workflow step %v", id)
		}
		policy, err := s.policyStore.GetForUpdate(rec.PolicyID)
		if err != nil {
			return err
		}
		if policy != nil {
			current, err := s.store.ListByPolicy(policy.ID)
			if err != nil {
				return err
			}
			rest := []dbmodels.WorkflowStep{}
			for _, step := range current {
				if step.ID != id {
					rest = append(rest, step)
				}
			}
			if err = validate(policy.IsActive, workflow.FromWorkflowSteps(rest)); err != nil {
				return err
			}
		}
		err = s.store.Delete(id)
		if err != nil {
			return errors.Wrap(err, "failed to delete workflow step")
		}
		return nil
	})
	if err != nil {
		return err
	}
	i.getLogger(rec.PolicyID).WithField("step_order", rec.StepOrder).Info("workflow step deleted")
	return nil
}

func (i impl) ListByPolicy(policyID string) ([]policyapimodels.WorkflowStepView, error) {
	list, err := i.store.ListByPolicy(policyID)
	if err != nil {
		return nil, err
	}
	return convertList(list), nil
}

func (i impl) List() ([]policyapimodels.WorkflowStepView, error) {
	list, err := i.store.List()
	if err != nil {
		return nil, err
	}
	return convertList(list), nil
}

// validate keeps an active policy publishable while an inactive one may be mid-edit.
func validate(isActive bool, steps []workflow.Step) error {
	if isActive {
		return workflow.ValidateComplete(steps)
	}
	return workflow.Validate(steps)
}

func convertList(list []dbmodels.WorkflowStep) []policyapimodels.WorkflowStepView {
	result := make([]policyapimodels.WorkflowStepView, 0, len(list))
	for _, rec := range list {
		result = append(result, policyapimodels.WorkflowStepConvert(rec))
	}
	return result
}
