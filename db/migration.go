package db

import (
	"github.com/pkg/errors"
	log "github.com/sirupsen/logrus"
	dbmodels "policy-portal-backend/models/db"
)

func AutoMigrateDB() error {
	log.Info("Running migrations")
	if err := DB.AutoMigrate(&dbmodels.Role{}); err != nil {
		return errors.Wrap(err, "failed to migrate Role")
	}
	if err := DB.AutoMigrate(&dbmodels.User{}); err != nil {
		return errors.Wrap(err, "failed to migrate User")
	}
	if err := DB.AutoMigrate(&dbmodels.Policy{}); err != nil {
		return errors.Wrap(err, "failed to migrate Policy")
	}
	if err := DB.AutoMigrate(&dbmodels.WorkflowStep{}); err != nil {
		return errors.Wrap(err, "failed to migrate WorkflowStep")
	}
	if err := DB.AutoMigrate(&dbmodels.Request{}); err != nil {
		return errors.Wrap(err, "failed to migrate Request")
	}
	if err := DB.AutoMigrate(&dbmodels.RequestStep{}); err != nil {
		return errors.Wrap(err, "failed to migrate RequestStep")
	}
	if err := DB.AutoMigrate(&dbmodels.Approval{}); err != nil {
		return errors.Wrap(err, "failed to migrate Approval")
	}
	if err := DB.AutoMigrate(&dbmodels.Notification{}); err != nil {
		return errors.Wrap(err, "failed to migrate Notification")
	}
	if err := DB.AutoMigrate(&dbmodels.Attachment{}); err != nil {
		return errors.Wrap(err, "failed to migrate Attachment")
	}
	log.Info("Migrations finished")
	return nil
}
