package dbmodels

import "policy-portal-backend/models"

type Notification struct {
	BaseModel
	RecipientUserID string `gorm:"type:varchar(36);index:idx_recipient"`
	Title           string `gorm:"type:varchar(255)"`
	Description     string
	ReferenceID     string                  `gorm:"type:varchar(36)"`
	IsSeen          bool                    `gorm:"index"`
	Type            models.NotificationType `gorm:"type:varchar(50)"`
}
