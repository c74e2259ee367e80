package dbmodels

type Role struct {
	BaseModel
	Name string `gorm:"type:varchar(150);uniqueIndex"`
}
