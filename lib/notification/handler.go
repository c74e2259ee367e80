package notificationhandler

import (
	"policy-portal-backend/db"
	notificationdispatcher "policy-portal-backend/lib/notification/dispatcher"
	notificationstore "policy-portal-backend/lib/notification/store"
	userstore "policy-portal-backend/lib/user/store"
	"policy-portal-backend/models"
	notificationapimodels "policy-portal-backend/models/api/notification"

	"github.com/pkg/errors"
	log "github.com/sirupsen/logrus"
)

type Provider interface {
	List(userID string, filter notificationapimodels.NotificationFilter) ([]notificationapimodels.NotificationView, error)
	MarkAsRead(userID, id string) error
	MarkAllAsRead(userID string) error
	CreateSystem(data notificationapimodels.SystemNotificationData) error
}

var Instance Provider

func NewHandler() {
	Instance = impl{
		store:      notificationstore.NewInstance(db.DB),
		userStore:  userstore.NewInstance(db.DB),
		dispatcher: func() notificationdispatcher.Provider { return notificationdispatcher.Instance },
	}
}

type impl struct {
	store      notificationstore.Provider
	userStore  userstore.Provider
	dispatcher func() notificationdispatcher.Provider
}

func (i impl) List(userID string, filter notificationapimodels.NotificationFilter) ([]notificationapimodels.NotificationView, error) {
	list, err := i.store.List(userID, filter.OnlyUnseen)
	if err != nil {
		return nil, err
	}
	result := make([]notificationapimodels.NotificationView, 0, len(list))
	for _, rec := range list {
		result = append(result, notificationapimodels.NotificationConvert(rec))
	}
	return result, nil
}

func (i impl) MarkAsRead(userID, id string) error {
	found, err := i.store.MarkSeen(userID, id)
	if err != nil {
		return err
	}
	if !found {
		return errors.Wrapf(models.ErrNotFound, "notification %v", id)
	}
	return nil
}

func (i impl) MarkAllAsRead(userID string) error {
	return i.store.MarkAllSeen(userID)
}

// CreateSystem broadcasts a System notification to every user.
func (i impl) CreateSystem(data notificationapimodels.SystemNotificationData) error {
	dispatcher := i.dispatcher()
	if dispatcher == nil {
		return errors.New("notification dispatcher is not initialized")
	}
	ids, err := i.userStore.ListIDs()
	if err != nil {
		return err
	}
	for _, id := range ids {
		dispatcher.Dispatch(notificationapimodels.Message{
			RecipientUserID: id,
			Title:           data.Title,
			Description:     data.Description,
			ReferenceID:     data.ReferenceID,
			Type:            models.NotificationSystem,
		})
	}
	log.WithField("recipients", len(ids)).Info("system notification dispatched")
	return nil
}
