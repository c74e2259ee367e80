package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"policy-portal-backend/config"
	apiv1 "policy-portal-backend/controllers/v1"
	"policy-portal-backend/fiberlog"
	"policy-portal-backend/initializers"
	notificationdispatcher "policy-portal-backend/lib/notification/dispatcher"
	"policy-portal-backend/lib/ws"
	"policy-portal-backend/middleware"
	"sync"
	"syscall"
	"time"

	"github.com/gofiber/contrib/swagger"
	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/cors"
	fiberRecover "github.com/gofiber/fiber/v2/middleware/recover"
	"github.com/gofiber/fiber/v2/middleware/requestid"
	log "github.com/sirupsen/logrus"
)

const megabyte = 1024 * 1024

func main() {
	ctx, cancel := context.WithCancel(context.Background())

	initializers.InitAllServices(ctx)

	app := fiber.New(fiber.Config{
		BodyLimit: config.Conf.App.AttachmentLimitMB * megabyte,
	})
	app.Use(fiberRecover.New())
	app.Use(requestid.New())

	swaggerCfg := swagger.Config{
		Path:     "/swagger",
		FilePath: "./docs/swagger.json",
	}
	app.Use(swagger.New(swaggerCfg))

	//api
	apiV1 := fiber.New()
	apiV1.Use(fiberlog.New(*initializers.LoggerConfig))
	apiV1.Use(middleware.ErrNotify(config.Conf.ErrNotifyAddr))
	apiV1.Use(middleware.WithBodyLimit(int64(config.Conf.App.BodyLimitMB*megabyte), "/attachment"))
	apiV1.Use(cors.New(cors.Config{
		AllowHeaders: "Origin, Content-Type, Accept, Authorization",
		AllowMethods: "GET, POST, PATCH, DELETE, PUT",
	}))
	app.Mount("/api/v1", apiV1)
	apiV1.Use(middleware.AuthorizationRequired())
	apiv1.InitRoleApiRouters(apiV1)
	apiv1.InitUserApiRouters(apiV1)
	apiv1.InitPolicyApiRouters(apiV1)
	apiv1.InitWorkflowStepApiRouters(apiV1)
	apiv1.InitRequestApiRouters(apiV1)
	apiv1.InitNotificationApiRouters(apiV1)
	ws.InitWs(apiV1.Group("/ws"))

	// gracefully shutdown
	c := make(chan os.Signal, 1)
	signal.Notify(c, os.Interrupt, syscall.SIGTERM)
	wg := sync.WaitGroup{}
	wg.Add(1)
	go func() {
		defer wg.Done()
		select {
		case <-c:
		case <-ctx.Done():
			return
		}
		log.Info("Gracefully shutting down...")
		cancel()
		if err := app.ShutdownWithTimeout(10 * time.Second); err != nil {
			log.WithError(err).Error("Error when try gracefully shutting down")
		}
		if err := notificationdispatcher.Instance.Close(); err != nil {
			log.WithError(err).Error("Error closing notification dispatcher")
		}
		log.Info("Gracefully shutting down finished")
	}()

	// run HTTP server
	if err := app.Listen(fmt.Sprintf("%s:%d", config.Conf.App.ListenAddr, config.Conf.App.Port)); err != nil {
		log.Fatal(err)
	}

	wg.Wait()
	log.Info("HTTP server successfully stopped")
}
