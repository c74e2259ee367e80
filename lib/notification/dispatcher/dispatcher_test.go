package notificationdispatcher

import (
	"context"
	"sync"
	"testing"
	"time"

	notificationstore "policy-portal-backend/lib/notification/store"
	"policy-portal-backend/lib/smtp"
	userstore "policy-portal-backend/lib/user/store"
	connectionhub "policy-portal-backend/lib/ws/hub/connection-hub"
	"policy-portal-backend/models"
	notificationapimodels "policy-portal-backend/models/api/notification"
	dbmodels "policy-portal-backend/models/db"
	wsmodels "policy-portal-backend/models/ws"

	"github.com/pkg/errors"
	"github.com/stretchr/testify/require"
)

type recordingSink struct {
	mu   sync.Mutex
	msgs []notificationapimodels.Message
	err  error
}

func (s *recordingSink) Deliver(msg notificationapimodels.Message) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.msgs = append(s.msgs, msg)
	return s.err
}

func (s *recordingSink) recipients() []string {
	s.mu.Lock()
	defer s.mu.Unlock()
	result := []string{}
	for _, msg := range s.msgs {
		result = append(result, msg.RecipientUserID)
	}
	return result
}

type fakeUserStore struct {
	userstore.Provider
	users   map[string]dbmodels.User
	listErr error
}

func (f fakeUserStore) ListByRole(roleID string) ([]dbmodels.User, error) {
	if f.listErr != nil {
		return nil, f.listErr
	}
	result := []dbmodels.User{}
	for _, user := range f.users {
		if user.RoleID == roleID {
			result = append(result, user)
		}
	}
	return result, nil
}

func (f fakeUserStore) GetByID(id string) (*dbmodels.User, error) {
	user, ok := f.users[id]
	if !ok {
		return nil, nil
	}
	return &user, nil
}

type fakeNotificationStore struct {
	notificationstore.Provider
	created []dbmodels.Notification
	err     error
}

func (f *fakeNotificationStore) Create(rec dbmodels.Notification) (string, error) {
	if f.err != nil {
		return "", f.err
	}
	f.created = append(f.created, rec)
	return "n-1", nil
}

type fakeHub struct {
	connectionhub.Provider
	sent []wsmodels.ServerMessage
}

func (f *fakeHub) SendMessage(msg wsmodels.ServerMessage) {
	f.sent = append(f.sent, msg)
}

type fakeMailer struct {
	configured bool
	to         []string
}

func (f *fakeMailer) SendEMail(from, to, message, subject string) error {
	f.to = append(f.to, to)
	return nil
}

func (f *fakeMailer) IsConfigured() bool {
	return f.configured
}

func testUsers() fakeUserStore {
	return fakeUserStore{users: map[string]dbmodels.User{
		"u1": {BaseModel: dbmodels.BaseModel{ID: "u1"}, Email: "u1@test.local", RoleID: "finance"},
		"u2": {BaseModel: dbmodels.BaseModel{ID: "u2"}, Email: "u2@test.local", RoleID: "finance"},
		"u3": {BaseModel: dbmodels.BaseModel{ID: "u3"}, RoleID: "lead"},
	}}
}

func TestDispatcher(t *testing.T) {
	msg := notificationapimodels.Message{
		Title:       "New request",
		Description: "A request is waiting for your approval",
		ReferenceID: "r1",
		Type:        models.NotificationPendingRequest,
	}

	t.Run("dispatch reaches the sink", func(t *testing.T) {
		ctx, cancel := context.WithCancel(context.Background())
		defer cancel()
		sink := &recordingSink{}
		d, err := newDispatcher(ctx, 10, testUsers(), sink)
		require.NoError(t, err)
		defer d.Close()

		one := msg
		one.RecipientUserID = "u3"
		d.Dispatch(one)
		require.Eventually(t, func() bool {
			return len(sink.recipients()) == 1
		}, time.Second, 10*time.Millisecond)
		require.Equal(t, []string{"u3"}, sink.recipients())
		sink.mu.Lock()
		require.Equal(t, "r1", sink.msgs[0].ReferenceID)
		sink.mu.Unlock()
	})

	t.Run("dispatch to role fans out to members", func(t *testing.T) {
		ctx, cancel := context.WithCancel(context.Background())
		defer cancel()
		sink := &recordingSink{}
		d, err := newDispatcher(ctx, 10, testUsers(), sink)
		require.NoError(t, err)
		defer d.Close()

		d.DispatchToRole("finance", msg)
		require.Eventually(t, func() bool {
			return len(sink.recipients()) == 2
		}, time.Second, 10*time.Millisecond)
		require.ElementsMatch(t, []string{"u1", "u2"}, sink.recipients())
	})

	t.Run("role member lookup failure is swallowed", func(t *testing.T) {
		ctx, cancel := context.WithCancel(context.Background())
		defer cancel()
		sink := &recordingSink{}
		d, err := newDispatcher(ctx, 10, fakeUserStore{listErr: errors.New("db down")}, sink)
		require.NoError(t, err)
		defer d.Close()

		require.NotPanics(t, func() { d.DispatchToRole("finance", msg) })
		require.Empty(t, sink.recipients())
	})

	t.Run("failed delivery does not stop the consumer", func(t *testing.T) {
		ctx, cancel := context.WithCancel(context.Background())
		defer cancel()
		sink := &recordingSink{err: errors.New("smtp down")}
		d, err := newDispatcher(ctx, 10, testUsers(), sink)
		require.NoError(t, err)
		defer d.Close()

		d.DispatchToRole("finance", msg)
		require.Eventually(t, func() bool {
			return len(sink.recipients()) == 2
		}, time.Second, 10*time.Millisecond)
	})

	t.Run("dispatch after close is logged only", func(t *testing.T) {
		sink := &recordingSink{}
		d, err := newDispatcher(context.Background(), 10, testUsers(), sink)
		require.NoError(t, err)
		require.NoError(t, d.Close())
		require.NotPanics(t, func() { d.Dispatch(msg) })
	})
}

func TestDelivery(t *testing.T) {
	msg := notificationapimodels.Message{
		RecipientUserID: "u1",
		Title:           "Request approved",
		Description:     "Your request was approved",
		ReferenceID:     "r1",
		Type:            models.NotificationApprovedRequest,
	}

	t.Run("stores, pushes and mails", func(t *testing.T) {
		store := &fakeNotificationStore{}
		hub := &fakeHub{}
		mailer := &fakeMailer{configured: true}
		d := &delivery{
			store:     store,
			userStore: testUsers(),
			hub:       func() connectionhub.Provider { return hub },
			mailer:    func() smtp.Provider { return mailer },
			from:      "noreply@test.local",
		}
		require.NoError(t, d.Deliver(msg))
		require.Len(t, store.created, 1)
		require.Equal(t, "u1", store.created[0].RecipientUserID)
		require.False(t, store.created[0].IsSeen)
		require.Len(t, hub.sent, 1)
		require.Equal(t, "n-1", hub.sent[0].ID)
		require.Equal(t, "u1", hub.sent[0].ToUserID)
		require.Equal(t, []string{"u1@test.local"}, mailer.to)
	})

	t.Run("no hub and no smtp configured", func(t *testing.T) {
		store := &fakeNotificationStore{}
		mailer := &fakeMailer{}
		d := &delivery{
			store:     store,
			userStore: testUsers(),
			hub:       func() connectionhub.Provider { return nil },
			mailer:    func() smtp.Provider { return mailer },
		}
		require.NoError(t, d.Deliver(msg))
		require.Len(t, store.created, 1)
		require.Empty(t, mailer.to)
	})

	t.Run("recipient without email", func(t *testing.T) {
		mailer := &fakeMailer{configured: true}
		d := &delivery{
			store:     &fakeNotificationStore{},
			userStore: testUsers(),
			hub:       func() connectionhub.Provider { return nil },
			mailer:    func() smtp.Provider { return mailer },
		}
		one := msg
		one.RecipientUserID = "u3"
		require.NoError(t, d.Deliver(one))
		require.Empty(t, mailer.to)
	})

	t.Run("store failure stops delivery", func(t *testing.T) {
		hub := &fakeHub{}
		d := &delivery{
			store:     &fakeNotificationStore{err: errors.New("db down")},
			userStore: testUsers(),
			hub:       func() connectionhub.Provider { return hub },
			mailer:    func() smtp.Provider { return nil },
		}
		require.Error(t, d.Deliver(msg))
		require.Empty(t, hub.sent)
	})
}
