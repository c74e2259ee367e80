package dbmodels

type Policy struct {
	BaseModel
	Name            string         `gorm:"type:varchar(255)"`
	Description     string
	IsActive        bool
	CreatedByUserID string         `gorm:"type:varchar(36)"`
	CreatedBy       *User          `gorm:"foreignKey:CreatedByUserID"`
	Steps           []WorkflowStep `gorm:"foreignKey:PolicyID"`
}
