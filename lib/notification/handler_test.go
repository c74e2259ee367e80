package notificationhandler

import (
	"testing"
	"time"

	notificationdispatcher "policy-portal-backend/lib/notification/dispatcher"
	notificationstore "policy-portal-backend/lib/notification/store"
	userstore "policy-portal-backend/lib/user/store"
	"policy-portal-backend/models"
	notificationapimodels "policy-portal-backend/models/api/notification"
	dbmodels "policy-portal-backend/models/db"

	"github.com/pkg/errors"
	"github.com/stretchr/testify/require"
)

type fakeStore struct {
	notificationstore.Provider
	list    []dbmodels.Notification
	seenAll []string
}

func (f *fakeStore) List(userID string, onlyUnseen bool) ([]dbmodels.Notification, error) {
	result := []dbmodels.Notification{}
	for _, rec := range f.list {
		if rec.RecipientUserID != userID || (onlyUnseen && rec.IsSeen) {
			continue
		}
		result = append(result, rec)
	}
	return result, nil
}

func (f *fakeStore) MarkSeen(userID, id string) (bool, error) {
	for idx, rec := range f.list {
		if rec.ID == id && rec.RecipientUserID == userID {
			f.list[idx].IsSeen = true
			return true, nil
		}
	}
	return false, nil
}

func (f *fakeStore) MarkAllSeen(userID string) error {
	f.seenAll = append(f.seenAll, userID)
	return nil
}

type fakeUserStore struct {
	userstore.Provider
	ids []string
	err error
}

func (f fakeUserStore) ListIDs() ([]string, error) {
	return f.ids, f.err
}

type fakeDispatcher struct {
	notificationdispatcher.Provider
	sent []notificationapimodels.Message
}

func (f *fakeDispatcher) Dispatch(msg notificationapimodels.Message) {
	f.sent = append(f.sent, msg)
}

func newTestStore() *fakeStore {
	return &fakeStore{list: []dbmodels.Notification{
		{BaseModel: dbmodels.BaseModel{ID: "n1", CreatedAt: time.Now()}, RecipientUserID: "u1", Title: "one"},
		{BaseModel: dbmodels.BaseModel{ID: "n2", CreatedAt: time.Now()}, RecipientUserID: "u1", Title: "two", IsSeen: true},
		{BaseModel: dbmodels.BaseModel{ID: "n3", CreatedAt: time.Now()}, RecipientUserID: "u2", Title: "three"},
	}}
}

func TestList(t *testing.T) {
	h := impl{store: newTestStore()}
	t.Run("all of the user", func(t *testing.T) {
		list, err := h.List("u1", notificationapimodels.NotificationFilter{})
		require.NoError(t, err)
		require.Len(t, list, 2)
	})
	t.Run("only unseen", func(t *testing.T) {
		list, err := h.List("u1", notificationapimodels.NotificationFilter{OnlyUnseen: true})
		require.NoError(t, err)
		require.Len(t, list, 1)
		require.Equal(t, "n1", list[0].ID)
	})
}

func TestMarkAsRead(t *testing.T) {
	t.Run("own notification", func(t *testing.T) {
		store := newTestStore()
		h := impl{store: store}
		require.NoError(t, h.MarkAsRead("u1", "n1"))
		require.True(t, store.list[0].IsSeen)
	})
	t.Run("other user's notification", func(t *testing.T) {
		store := newTestStore()
		h := impl{store: store}
		err := h.MarkAsRead("u1", "n3")
		require.ErrorIs(t, err, models.ErrNotFound)
		require.False(t, store.list[2].IsSeen)
	})
	t.Run("all", func(t *testing.T) {
		store := newTestStore()
		h := impl{store: store}
		require.NoError(t, h.MarkAllAsRead("u1"))
		require.Equal(t, []string{"u1"}, store.seenAll)
	})
}

func TestCreateSystem(t *testing.T) {
	data := notificationapimodels.SystemNotificationData{Title: "Maintenance", Description: "Portal is down tonight"}
	t.Run("broadcast", func(t *testing.T) {
		dispatcher := &fakeDispatcher{}
		h := impl{
			userStore:  fakeUserStore{ids: []string{"u1", "u2"}},
			dispatcher: func() notificationdispatcher.Provider { return dispatcher },
		}
		require.NoError(t, h.CreateSystem(data))
		require.Len(t, dispatcher.sent, 2)
		for _, msg := range dispatcher.sent {
			require.Equal(t, models.NotificationSystem, msg.Type)
			require.Equal(t, "Maintenance", msg.Title)
		}
	})
	t.Run("user list failure", func(t *testing.T) {
		h := impl{
			userStore:  fakeUserStore{err: errors.New("db down")},
			dispatcher: func() notificationdispatcher.Provider { return &fakeDispatcher{} },
		}
		require.Error(t, h.CreateSystem(data))
	})
}
