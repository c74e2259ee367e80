package db

import (
	rolestore "policy-portal-backend/lib/role/store"
	dbmodels "policy-portal-backend/models/db"

	log "github.com/sirupsen/logrus"
)

var defaultRoles = []string{"Admin", "Manager", "HR Director", "Employee"}

func InitPreload() {
	addDefaultRoles(rolestore.NewInstance(DB), defaultRoles)
}

func addDefaultRoles(store rolestore.Provider, names []string) {
	for _, name := range names {
		logger := log.WithField("role_name", name)
		existedRec, err := store.GetByName(name)
		if err != nil {
			logger.WithError(err).Error("error adding default role")
			return
		}
		if existedRec != nil {
			continue
		}
		if _, err = store.Create(dbmodels.Role{Name: name}); err != nil {
			logger.WithError(err).Error("error adding default role")
			return
		}
		logger.Info("default role added")
	}
}
