package initializers

import (
	"context"
	"policy-portal-backend/config"
	"policy-portal-backend/fiberlog"
	xlsexport "policy-portal-backend/lib/export/xls"
	filestorage "policy-portal-backend/lib/file-storage"
	notificationhandler "policy-portal-backend/lib/notification"
	notificationcleanupworker "policy-portal-backend/lib/notification/cleanup-worker"
	notificationdispatcher "policy-portal-backend/lib/notification/dispatcher"
	policyhandler "policy-portal-backend/lib/policy"
	requesthandler "policy-portal-backend/lib/request"
	rolehandler "policy-portal-backend/lib/role"
	userhandler "policy-portal-backend/lib/user"
	"policy-portal-backend/lib/utils/lock"
	workflowstephandler "policy-portal-backend/lib/workflow-step"
	connectionhub "policy-portal-backend/lib/ws/hub/connection-hub"
)

var LoggerConfig *fiberlog.Config

func InitAllServices(ctx context.Context) {
	LoggerConfig = InitLogger()
	config.InitConfig()
	InitDBConnection()
	InitS3(ctx)
	InitSmtp()
	connectionhub.Init()
	lock.InitResourceLock(ctx, config.Conf.App.ExportConcurrency)
	if err := notificationdispatcher.NewHandler(ctx); err != nil {
		panic(err.Error())
	}
	rolehandler.NewHandler()
	userhandler.NewHandler()
	policyhandler.NewHandler()
	workflowstephandler.NewHandler()
	requesthandler.NewHandler()
	notificationhandler.NewHandler()
	filestorage.NewHandler()
	xlsexport.NewHandler()
	go initWorkers(ctx)
}

func initWorkers(ctx context.Context) {
	notificationcleanupworker.StartWorker(ctx)
}
