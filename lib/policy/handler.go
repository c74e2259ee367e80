package policyhandler

import (
	"fmt"
	"policy-portal-backend/db"
	policystore "policy-portal-backend/lib/policy/store"
	requeststore "policy-portal-backend/lib/request/store"
	userstore "policy-portal-backend/lib/user/store"
	"policy-portal-backend/lib/workflow"
	"policy-portal-backend/models"
	policyapimodels "policy-portal-backend/models/api/policy"
	dbmodels "policy-portal-backend/models/db"

	"github.com/pkg/errors"
	log "github.com/sirupsen/logrus"
	"gorm.io/gorm"
)

type Provider interface {
	Create(userID string, data policyapimodels.PolicyData) (id string, err error)
	GetByID(id string) (*policyapimodels.PolicyView, error)
	List(onlyActive bool) ([]policyapimodels.PolicyView, error)
	// SetActive is the only change a policy accepts after creation.
	SetActive(id string, isActive bool) error
	Delete(id string) (hMsg string, err error)
}

var Instance Provider

func NewHandler() {
	Instance = impl{
		store:        policystore.NewInstance(db.DB),
		userStore:    userstore.NewInstance(db.DB),
		requestStore: requeststore.NewInstance(db.DB),
		inTx: func(fn func(store policystore.Provider) error) error {
			return db.DB.Transaction(func(tx *gorm.DB) error {
				return fn(policystore.NewInstance(tx))
			})
		},
	}
}

func NewHandlerWithTx(tx *gorm.DB) Provider {
	return impl{
		store:        policystore.NewInstance(tx),
		userStore:    userstore.NewInstance(tx),
		requestStore: requeststore.NewInstance(tx),
		inTx: func(fn func(store policystore.Provider) error) error {
			return fn(policystore.NewInstance(tx))
		},
	}
}

type impl struct {
	store        policystore.Provider
	userStore    userstore.Provider
	requestStore requeststore.Provider
	inTx         func(fn func(store policystore.Provider) error) error
}

func (i impl) getLogger(policyID string) *log.Entry {
	return log.WithField("policy_id", policyID)
}

func (i impl) Create(userID string, data policyapimodels.PolicyData) (id string, err error) {
	user, err := i.userStore.GetByID(userID)
	if err != nil {
		return "", err
	}
	if user == nil {
		return "", errors.Wrapf(models.ErrNotFound, "user %v", userID)
	}
	rec := dbmodels.Policy{
		Name:            data.Name,
		Description:     data.Description,
		IsActive:        data.IsActive,
		CreatedByUserID: user.ID,
	}
	id, err = i.store.Create(rec)
	if err != nil {
		return "", errors.Wrap(err, "failed to create policy")
	}
	i.getLogger(id).WithField("user_id", userID).Info("policy created")
	return id, nil
}

func (i impl) GetByID(id string) (*policyapimodels.PolicyView, error) {
	rec, err := i.store.GetByID(id)
	if err != nil {
		return nil, err
	}
	if rec == nil {
		return nil, errors.Wrapf(models.ErrNotFound, "policy %v", id)
	}
	result := policyapimodels.PolicyConvert(*rec)
	return &result, nil
}

func (i impl) List(onlyActive bool) ([]policyapimodels.PolicyView, error) {
	list, err := i.store.List(onlyActive)
	if err != nil {
		return nil, err
	}
	result := make([]policyapimodels.PolicyView, 0, len(list))
	for _, rec := range list {
		result = append(result, policyapimodels.PolicyConvert(rec))
	}
	return result, nil
}

// SetActive holds the policy row lock, the same one workflow step changes take.
func (i impl) SetActive(id string, isActive bool) error {
	changed := false
	err := i.inTx(func(store policystore.Provider) error {
		locked, err := store.GetForUpdate(id)
		if err != nil {
			return err
		}
		if locked == nil {
			return errors.Wrapf(models.ErrNotFound, "policy %v", id)
		}
		if locked.IsActive == isActive {
			return nil
		}
		if isActive {
			rec, err := store.GetByID(id)
			if err != nil {
				return err
			}
			err = workflow.ValidateComplete(workflow.FromWorkflowSteps(rec.Steps))
			if err != nil {
				return errors.Wrapf(err, "policy %q cannot be activated", rec.Name)
			}
		}
		err = store.Update(id, map[string]interface{}{"is_active": isActive})
		if err != nil {
			return errors.Wrap(err, "failed to update policy")
		}
		changed = true
		return nil
	})
	if err != nil {
		return err
	}
	if changed {
		i.getLogger(id).WithField("is_active", isActive).Info("policy activity changed")
	}
	return nil
}

func (i impl) Delete(id string) (hMsg string, err error) {
	rec, err := i.store.GetByID(id)
	if err != nil {
		return "", err
	}
	if rec == nil {
		return "", errors.Wrapf(models.ErrNotFound, "policy %v", id)
	}
	count, err := i.requestStore.CountByPolicy(id)
	if err != nil {
		return "", err
	}
	if count > 0 {
		return fmt.Sprintf("Policy %q has %v requests, deactivate it instead", rec.Name, count), nil
	}
	err = i.store.Delete(id)
	if err != nil {
		return "", errors.Wrap(err, "failed to delete policy")
	}
	i.getLogger(id).Info("policy deleted")
	return "", nil
}
