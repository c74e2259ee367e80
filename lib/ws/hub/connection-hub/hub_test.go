package connectionhub

import (
	"testing"
	"time"

	"github.com/gofiber/contrib/websocket"
	"github.com/stretchr/testify/require"
	notificationstore "policy-portal-backend/lib/notification/store"
	"policy-portal-backend/models"
	dbmodels "policy-portal-backend/models/db"
)

type fakeNotificationStore struct {
	notificationstore.Provider
	calls chan string
}

func (f *fakeNotificationStore) List(userID string, onlyUnseen bool) ([]dbmodels.Notification, error) {
	f.calls <- userID
	return nil, nil
}

func newTestHub() (*impl, *fakeNotificationStore) {
	store := &fakeNotificationStore{calls: make(chan string, 4)}
	return &impl{clients: map[string]clientSession{}, store: store}, store
}

func TestHub(t *testing.T) {
	t.Run("reconnect keeps the newest session", func(t *testing.T) {
		hub, store := newTestHub()
		first := &websocket.Conn{}
		second := &websocket.Conn{}

		hub.AddClient("u1", first)
		hub.AddClient("u1", second)
		hub.DeleteClient("u1", first)

		hub.mu.RLock()
		sess, ok := hub.clients["u1"]
		hub.mu.RUnlock()
		require.True(t, ok)
		require.Same(t, second, sess.conn)

		hub.DeleteClient("u1", second)
		hub.mu.RLock()
		_, ok = hub.clients["u1"]
		hub.mu.RUnlock()
		require.False(t, ok)

		for idx := 0; idx < 2; idx++ {
			select {
			case userID := <-store.calls:
				require.Equal(t, "u1", userID)
			case <-time.After(time.Second):
				t.Fatal("unseen notifications were not replayed")
			}
		}
	})
	t.Run("connection without socket is not connected", func(t *testing.T) {
		hub, _ := newTestHub()
		require.False(t, hub.IsConnected("u2"))
		hub.AddClient("u2", &websocket.Conn{})
		require.False(t, hub.IsConnected("u2"))
		// no socket to write to, must not block
		hub.SendMessage(NotificationMessage(dbmodels.Notification{RecipientUserID: "u2", Type: models.NotificationSystem}))
		hub.SendClose("u2")
	})
}
