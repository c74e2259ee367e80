package userhandler

import (
	"fmt"
	"policy-portal-backend/config"
	"policy-portal-backend/db"
	rolestore "policy-portal-backend/lib/role/store"
	userstore "policy-portal-backend/lib/user/store"
	"policy-portal-backend/models"
	apimodels "policy-portal-backend/models/api"
	userapimodels "policy-portal-backend/models/api/user"
	dbmodels "policy-portal-backend/models/db"
	"strings"

	"github.com/pkg/errors"
	log "github.com/sirupsen/logrus"
)

type Provider interface {
	Create(data userapimodels.UserData) (id, hMsg string, err error)
	GetByID(id string) (*userapimodels.UserView, error)
	List(pagination apimodels.Pagination) (list []userapimodels.UserView, rowCount int64, err error)
	ListByRole(roleID string) ([]userapimodels.UserView, error)
	Delete(id string) error
	// AssignRole replaces the user's role. The new role applies to the next decision.
	AssignRole(id, roleID string) error
}

var Instance Provider

func NewHandler() {
	Instance = impl{
		store:           userstore.NewInstance(db.DB),
		roleStore:       rolestore.NewInstance(db.DB),
		defaultRoleName: config.Conf.App.DefaultRoleName,
	}
}

type impl struct {
	store           userstore.Provider
	roleStore       rolestore.Provider
	defaultRoleName string
}

func (i impl) getLogger(userID string) *log.Entry {
	return log.WithField("user_id", userID)
}

func (i impl) Create(data userapimodels.UserData) (id, hMsg string, err error) {
	email := strings.ToLower(strings.TrimSpace(data.Email))
	exist, err := i.store.ExistByEmail(email)
	if err != nil {
		return "", "", err
	}
	if exist {
		return "", fmt.Sprintf("User with email %v already exists", email), nil
	}
	role, err := i.resolveRole(data.RoleID)
	if err != nil {
		return "", "", err
	}
	rec := dbmodels.User{
		Name:   strings.TrimSpace(data.Name),
		Email:  email,
		RoleID: role.ID,
	}
	id, err = i.store.Create(rec)
	if err != nil {
		return "", "", errors.Wrap(err, "failed to create user")
	}
	i.getLogger(id).WithField("role_id", role.ID).Info("user created")
	return id, "", nil
}

func (i impl) resolveRole(roleID string) (*dbmodels.Role, error) {
	if roleID != "" {
		role, err := i.roleStore.GetByID(roleID)
		if err != nil {
			return nil, err
		}
		if role == nil {
			return nil, errors.Wrapf(models.ErrNotFound, "role %v", roleID)
		}
		return role, nil
	}
	role, err := i.roleStore.GetByName(i.defaultRoleName)
	if err != nil {
		return nil, err
	}
	if role == nil {
		return nil, errors.Wrapf(models.ErrNotFound, "default role %q", i.defaultRoleName)
	}
	return role, nil
}

func (i impl) GetByID(id string) (*userapimodels.UserView, error) {
	rec, err := i.store.GetByID(id)
	if err != nil {
		return nil, err
	}
	if rec == nil {
		return nil, errors.Wrapf(models.ErrNotFound, "user %v", id)
	}
	result := userapimodels.UserConvert(*rec)
	return &result, nil
}

func (i impl) List(pagination apimodels.Pagination) (list []userapimodels.UserView, rowCount int64, err error) {
	rowCount, err = i.store.ListCount()
	if err != nil {
		return nil, 0, err
	}
	page, limit := pagination.GetPage()
	recList, err := i.store.List(page, limit)
	if err != nil {
		return nil, 0, err
	}
	return convertList(recList), rowCount, nil
}

func (i impl) ListByRole(roleID string) ([]userapimodels.UserView, error) {
	recList, err := i.store.ListByRole(roleID)
	if err != nil {
		return nil, err
	}
	return convertList(recList), nil
}

func (i impl) Delete(id string) error {
	rec, err := i.store.GetByID(id)
	if err != nil {
		return err
	}
	if rec == nil {
		return errors.Wrapf(models.ErrNotFound, "user %v", id)
	}
	err = i.store.Delete(id)
	if err != nil {
		return errors.Wrap(err, "failed to delete user")
	}
	i.getLogger(id).Info("user deleted")
	return nil
}

func (i impl) AssignRole(id, roleID string) error {
	rec, err := i.store.GetByID(id)
	if err != nil {
		return err
	}
	if rec == nil {
		return errors.Wrapf(models.ErrNotFound, "user %v", id)
	}
	role, err := i.resolveRole(roleID)
	if err != nil {
		return err
	}
	err = i.store.Update(id, map[string]interface{}{"role_id": role.ID})
	if err != nil {
		return errors.Wrap(err, "failed to assign role")
	}
	i.getLogger(id).
		WithField("old_role_id", rec.RoleID).
		WithField("role_id", role.ID).
		Info("role assigned")
	return nil
}

func convertList(list []dbmodels.User) []userapimodels.UserView {
	result := make([]userapimodels.UserView, 0, len(list))
	for _, rec := range list {
		result = append(result, userapimodels.UserConvert(rec))
	}
	return result
}
