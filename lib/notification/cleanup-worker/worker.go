package notificationcleanupworker

import (
	"context"
	"policy-portal-backend/config"
	"policy-portal-backend/db"
	notificationstore "policy-portal-backend/lib/notification/store"
	baseworker "policy-portal-backend/lib/utils/base-worker"
	"policy-portal-backend/lib/utils/helpers"
	"time"
)

func StartWorker(ctx context.Context) {
	i := &impl{
		BaseImpl:      *baseworker.NewInstance("NotificationCleanupWorker", 30*time.Second, time.Duration(config.Conf.Notification.CleanupIntervalHour)*time.Hour),
		store:         notificationstore.NewInstance(db.DB),
		retentionDays: config.Conf.Notification.RetentionDays,
		now:           time.Now,
	}
	go i.Run(ctx, i.handle)
}

type impl struct {
	baseworker.BaseImpl
	store         notificationstore.Provider
	retentionDays int
	now           func() time.Time
}

// handle removes seen notifications older than the retention period. Unseen ones are kept.
func (i impl) handle(ctx context.Context) {
	if helpers.IsContextDone(ctx) || i.retentionDays <= 0 {
		return
	}
	logger := i.GetLogger()
	before := i.now().AddDate(0, 0, -i.retentionDays)
	count, err := i.store.DeleteSeenBefore(before)
	if err != nil {
		logger.WithError(err).Error("failed to remove old notifications")
		return
	}
	logger.WithField("removed", count).Info("old notifications removed")
}
