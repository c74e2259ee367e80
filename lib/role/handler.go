package rolehandler

import (
	"fmt"
	"policy-portal-backend/db"
	requeststore "policy-portal-backend/lib/request/store"
	rolestore "policy-portal-backend/lib/role/store"
	userstore "policy-portal-backend/lib/user/store"
	workflowstepstore "policy-portal-backend/lib/workflow-step/store"
	"policy-portal-backend/models"
	userapimodels "policy-portal-backend/models/api/user"
	dbmodels "policy-portal-backend/models/db"
	"strings"

	"github.com/pkg/errors"
	log "github.com/sirupsen/logrus"
)

type Provider interface {
	Create(data userapimodels.RoleData) (id, hMsg string, err error)
	List() ([]userapimodels.RoleView, error)
	Delete(id string) (hMsg string, err error)
}

var Instance Provider

func NewHandler() {
	Instance = impl{
		store:        rolestore.NewInstance(db.DB),
		userStore:    userstore.NewInstance(db.DB),
		stepStore:    workflowstepstore.NewInstance(db.DB),
		requestStore: requeststore.NewInstance(db.DB),
	}
}

type impl struct {
	store        rolestore.Provider
	userStore    userstore.Provider
	stepStore    workflowstepstore.Provider
	requestStore requeststore.Provider
}

func (i impl) Create(data userapimodels.RoleData) (id, hMsg string, err error) {
	name := strings.TrimSpace(data.Name)
	exist, err := i.store.GetByName(name)
	if err != nil {
		return "", "", err
	}
	if exist != nil {
		return "", fmt.Sprintf("Role %q already exists", name), nil
	}
	id, err = i.store.Create(dbmodels.Role{Name: name})
	if err != nil {
		return "", "", errors.Wrap(err, "failed to create role")
	}
	log.WithField("role_id", id).WithField("role_name", name).Info("role created")
	return id, "", nil
}

func (i impl) List() ([]userapimodels.RoleView, error) {
	list, err := i.store.List()
	if err != nil {
		return nil, err
	}
	result := make([]userapimodels.RoleView, 0, len(list))
	for _, rec := range list {
		result = append(result, userapimodels.RoleConvert(rec))
	}
	return result, nil
}

// Delete refuses while users, workflow steps or pending requests depend on the role.
func (i impl) Delete(id string) (hMsg string, err error) {
	rec, err := i.store.GetByID(id)
	if err != nil {
		return "", err
	}
	if rec == nil {
		return "", errors.Wrapf(models.ErrNotFound, "role %v", id)
	}
	count, err := i.userStore.CountByRole(id)
	if err != nil {
		return "", err
	}
	if count > 0 {
		return fmt.Sprintf("Role %q is assigned to %v users", rec.Name, count), nil
	}
	count, err = i.stepStore.CountByRole(id)
	if err != nil {
		return "", err
	}
	if count > 0 {
		return fmt.Sprintf("Role %q is used in %v workflow steps", rec.Name, count), nil
	}
	count, err = i.requestStore.CountPendingByRole(id)
	if err != nil {
		return "", err
	}
	if count > 0 {
		return fmt.Sprintf("Role %q still has to approve %v pending requests", rec.Name, count), nil
	}
	err = i.store.Delete(id)
	if err != nil {
		return "", errors.Wrap(err, "failed to delete role")
	}
	log.WithField("role_id", id).Info("role deleted")
	return "", nil
}
