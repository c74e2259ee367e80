package notificationdispatcher

import (
	"context"
	"encoding/json"
	"policy-portal-backend/config"
	"policy-portal-backend/db"
	notificationstore "policy-portal-backend/lib/notification/store"
	"policy-portal-backend/lib/smtp"
	userstore "policy-portal-backend/lib/user/store"
	connectionhub "policy-portal-backend/lib/ws/hub/connection-hub"
	notificationapimodels "policy-portal-backend/models/api/notification"
	dbmodels "policy-portal-backend/models/db"
	"time"

	"github.com/ThreeDotsLabs/watermill"
	"github.com/ThreeDotsLabs/watermill/message"
	"github.com/ThreeDotsLabs/watermill/pubsub/gochannel"
	"github.com/pkg/errors"
	log "github.com/sirupsen/logrus"
)

const topic = "notifications"

// Provider is the fire-and-forget entry point for notifications.
// None of its methods report delivery errors to the caller.
type Provider interface {
	Dispatch(msg notificationapimodels.Message)
	DispatchToRole(roleID string, msg notificationapimodels.Message)
	Close() error
}

var Instance Provider

func NewHandler(ctx context.Context) error {
	d, err := newDispatcher(ctx, config.Conf.Notification.BufferSize, userstore.NewInstance(db.DB), &delivery{
		store:     notificationstore.NewInstance(db.DB),
		userStore: userstore.NewInstance(db.DB),
		hub:       func() connectionhub.Provider { return connectionhub.Instance },
		mailer:    func() smtp.Provider { return smtp.Instance },
		from:      config.Conf.Smtp.From,
	})
	if err != nil {
		return err
	}
	Instance = d
	return nil
}

type deliverer interface {
	Deliver(msg notificationapimodels.Message) error
}

type impl struct {
	pubSub    *gochannel.GoChannel
	userStore userstore.Provider
}

func newDispatcher(ctx context.Context, bufferSize int64, userStore userstore.Provider, sink deliverer) (*impl, error) {
	pubSub := gochannel.NewGoChannel(
		gochannel.Config{
			OutputChannelBuffer:            bufferSize,
			Persistent:                     false,
			BlockPublishUntilSubscriberAck: false,
		},
		newLogger(),
	)
	messages, err := pubSub.Subscribe(ctx, topic)
	if err != nil {
		return nil, errors.Wrap(err, "failed to subscribe to notification topic")
	}
	go consume(messages, sink)
	return &impl{
		pubSub:    pubSub,
		userStore: userStore,
	}, nil
}

func (i impl) getLogger(msg notificationapimodels.Message) *log.Entry {
	return log.
		WithField("recipient_user_id", msg.RecipientUserID).
		WithField("reference_id", msg.ReferenceID).
		WithField("notification_type", msg.Type)
}

func (i impl) Dispatch(msg notificationapimodels.Message) {
	logger := i.getLogger(msg)
	payload, err := json.Marshal(msg)
	if err != nil {
		logger.WithError(err).Error("failed to encode notification")
		return
	}
	wmMsg := message.NewMessage(watermill.NewULID(), payload)
	wmMsg.Metadata.Set("recipient_user_id", msg.RecipientUserID)
	wmMsg.Metadata.Set("type", string(msg.Type))
	if err = i.pubSub.Publish(topic, wmMsg); err != nil {
		logger.WithError(err).Error("failed to publish notification")
	}
}

func (i impl) DispatchToRole(roleID string, msg notificationapimodels.Message) {
	users, err := i.userStore.ListByRole(roleID)
	if err != nil {
		i.getLogger(msg).
			WithField("role_id", roleID).
			WithError(err).
			Error("failed to list role members for notification")
		return
	}
	for _, user := range users {
		msg.RecipientUserID = user.ID
		i.Dispatch(msg)
	}
}

func (i impl) Close() error {
	return i.pubSub.Close()
}

// consume acks every message: a failed delivery is logged and never redelivered.
func consume(messages <-chan *message.Message, sink deliverer) {
	for wmMsg := range messages {
		msg := notificationapimodels.Message{}
		if err := json.Unmarshal(wmMsg.Payload, &msg); err != nil {
			log.WithField("message_uuid", wmMsg.UUID).WithError(err).Error("failed to decode notification")
			wmMsg.Ack()
			continue
		}
		if err := sink.Deliver(msg); err != nil {
			log.
				WithField("message_uuid", wmMsg.UUID).
				WithField("recipient_user_id", msg.RecipientUserID).
				WithError(err).
				Error("failed to deliver notification")
		}
		wmMsg.Ack()
	}
}

type delivery struct {
	store     notificationstore.Provider
	userStore userstore.Provider
	hub       func() connectionhub.Provider
	mailer    func() smtp.Provider
	from      string
}

// Deliver persists the notification first; push and email are attempted only for a stored record.
func (d *delivery) Deliver(msg notificationapimodels.Message) error {
	rec := dbmodels.Notification{
		RecipientUserID: msg.RecipientUserID,
		Title:           msg.Title,
		Description:     msg.Description,
		ReferenceID:     msg.ReferenceID,
		Type:            msg.Type,
	}
	id, err := d.store.Create(rec)
	if err != nil {
		return errors.Wrap(err, "failed to store notification")
	}
	rec.ID = id
	rec.CreatedAt = time.Now()
	if hub := d.hub(); hub != nil {
		hub.SendMessage(connectionhub.NotificationMessage(rec))
	}
	mailer := d.mailer()
	if mailer == nil || !mailer.IsConfigured() {
		return nil
	}
	user, err := d.userStore.GetByID(msg.RecipientUserID)
	if err != nil {
		return errors.Wrap(err, "failed to get notification recipient")
	}
	if user == nil || user.Email == "" {
		return nil
	}
	return mailer.SendEMail(d.from, user.Email, msg.Description, msg.Title)
}
