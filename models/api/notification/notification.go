package notificationapimodels

import (
	"policy-portal-backend/models"
	apimodels "policy-portal-backend/models/api"
	dbmodels "policy-portal-backend/models/db"
	"strings"
	"time"

	"github.com/pkg/errors"
)

// Message is what the core hands to the dispatcher. Delivery is best effort.
type Message struct {
	RecipientUserID string                  `json:"recipient_user_id"`
	Title           string                  `json:"title"`
	Description     string                  `json:"description"`
	ReferenceID     string                  `json:"reference_id"`
	Type            models.NotificationType `json:"type"`
}

type NotificationView struct {
	ID          string                  `json:"id"`
	Title       string                  `json:"title"`
	Description string                  `json:"description"`
	ReferenceID string                  `json:"reference_id"`
	IsSeen      bool                    `json:"is_seen"`
	Type        models.NotificationType `json:"type"`
	CreatedAt   time.Time               `json:"created_at"`
}

func NotificationConvert(rec dbmodels.Notification) NotificationView {
	return NotificationView{
		ID:          rec.ID,
		Title:       rec.Title,
		Description: rec.Description,
		ReferenceID: rec.ReferenceID,
		IsSeen:      rec.IsSeen,
		Type:        rec.Type,
		CreatedAt:   rec.CreatedAt,
	}
}

type NotificationFilter struct {
	OnlyUnseen bool `json:"only_unseen"`
}

type SystemNotificationData struct {
	Title       string `json:"title" validate:"required,max=255"`
	Description string `json:"description" validate:"max=2000"`
	ReferenceID string `json:"reference_id"`
}

func (s SystemNotificationData) Validate() error {
	if strings.TrimSpace(s.Title) == "" {
		return errors.New("notification title is required")
	}
	return apimodels.ValidateStruct(s)
}
