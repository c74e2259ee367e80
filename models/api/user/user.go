package userapimodels

import (
	apimodels "policy-portal-backend/models/api"
	dbmodels "policy-portal-backend/models/db"
	"strings"

	"github.com/pkg/errors"
)

type UserData struct {
	Name  string `json:"name" validate:"required"`
	Email string `json:"email" validate:"required,email"`
	// RoleID is optional, the default role is assigned when empty
	RoleID string `json:"role_id"`
}

func (u UserData) Validate() error {
	if strings.TrimSpace(u.Name) == "" {
		return errors.New("user name is required")
	}
	return apimodels.ValidateStruct(u)
}

type AssignRoleData struct {
	RoleID string `json:"role_id" validate:"required"`
}

func (a AssignRoleData) Validate() error {
	return apimodels.ValidateStruct(a)
}

type UserView struct {
	UserData
	ID       string `json:"id"`
	RoleName string `json:"role_name"`
}

func UserConvert(rec dbmodels.User) UserView {
	return UserView{
		UserData: UserData{
			Name:   rec.Name,
			Email:  rec.Email,
			RoleID: rec.RoleID,
		},
		ID:       rec.ID,
		RoleName: rec.GetRoleName(),
	}
}

type RoleData struct {
	Name string `json:"name"`
}

func (r RoleData) Validate() error {
	if strings.TrimSpace(r.Name) == "" {
		return errors.New("role name is required")
	}
	return nil
}

type RoleView struct {
	RoleData
	ID string `json:"id"`
}

func RoleConvert(rec dbmodels.Role) RoleView {
	return RoleView{
		RoleData: RoleData{Name: rec.Name},
		ID:       rec.ID,
	}
}
