package dbmodels

type User struct {
	BaseModel
	Name   string `gorm:"type:varchar(255)"`
	Email  string `gorm:"type:varchar(255);uniqueIndex"`
	RoleID string `gorm:"type:varchar(36);index"`
	Role   *Role
}

func (r User) GetRoleName() string {
	if r.Role == nil {
		return ""
	}
	return r.Role.Name
}
