package apiv1

import (
	"policy-portal-backend/controllers"
	notificationhandler "policy-portal-backend/lib/notification"
	"policy-portal-backend/middleware"
	apimodels "policy-portal-backend/models/api"
	notificationapimodels "policy-portal-backend/models/api/notification"

	"github.com/gofiber/fiber/v2"
)

type notificationApiController struct {
	controllers.BaseAPIController
}

func InitNotificationApiRouters(app *fiber.App) {
	controller := notificationApiController{}
	app.Route("notification", func(router fiber.Router) {
		router.Get("list", controller.list)
		router.Put("read_all", controller.readAll)
		router.Post("system", controller.system)
		router.Put(":id/read", controller.read)
	})
}

// @Summary Notification list
// @Tags Notification
// @Description Notifications of the current user, newest first
// @Param   Authorization		header		string	true	"Authorization token"
// @Param   only_unseen			query		bool	false	"unseen only"
// @Success 200 {object} apimodels.Response{data=[]notificationapimodels.NotificationView}
// @Failure 401
// @Failure 500 {object} apimodels.Response
// @router /api/v1/notification/list [get]
func (c *notificationApiController) list(ctx *fiber.Ctx) error {
	filter := notificationapimodels.NotificationFilter{
		OnlyUnseen: ctx.QueryBool("only_unseen", false),
	}
	list, err := notificationhandler.Instance.List(middleware.GetUserID(ctx), filter)
	if err != nil {
		return c.SendError(ctx, c.GetLogger(ctx), err, "Error getting notifications")
	}
	return ctx.Status(fiber.StatusOK).JSON(apimodels.NewResponse(list))
}

// @Summary Mark notification as read
// @Tags Notification
// @Description Mark notification as read
// @Param   Authorization		header		string	true	"Authorization token"
// @Param   id          		path    	string  true    "notification ID"
// @Success 200 {object} apimodels.Response
// @Failure 400 {object} apimodels.Response
// @Failure 401
// @Failure 404 {object} apimodels.Response
// @Failure 500 {object} apimodels.Response
// @router /api/v1/notification/{id}/read [put]
func (c *notificationApiController) read(ctx *fiber.Ctx) error {
	id, err := c.GetID(ctx)
	if err != nil {
		return ctx.Status(fiber.StatusBadRequest).JSON(apimodels.NewError(err.Error()))
	}
	err = notificationhandler.Instance.MarkAsRead(middleware.GetUserID(ctx), id)
	if err != nil {
		return c.SendError(ctx, c.GetLogger(ctx), err, "Error updating notification")
	}
	return ctx.Status(fiber.StatusOK).JSON(apimodels.NewResponse(nil))
}

// @Summary Mark all notifications as read
// @Tags Notification
// @Description Mark all notifications of the current user as read
// @Param   Authorization		header		string	true	"Authorization token"
// @Success 200 {object} apimodels.Response
// @Failure 401
// @Failure 500 {object} apimodels.Response
// @router /api/v1/notification/read_all [put]
func (c *notificationApiController) readAll(ctx *fiber.Ctx) error {
	err := notificationhandler.Instance.MarkAllAsRead(middleware.GetUserID(ctx))
	if err != nil {
		return c.SendError(ctx, c.GetLogger(ctx), err, "Error updating notifications")
	}
	return ctx.Status(fiber.StatusOK).JSON(apimodels.NewResponse(nil))
}

// @Summary System notification
// @Tags Notification
// @Description Broadcast a system notification to every user
// @Param   Authorization		header		string	true	"Authorization token"
// @Param	body body	 notificationapimodels.SystemNotificationData	true	"request body"
// @Success 200 {object} apimodels.Response
// @Failure 400 {object} apimodels.Response
// @Failure 401
// @Failure 500 {object} apimodels.Response
// @router /api/v1/notification/system [post]
func (c *notificationApiController) system(ctx *fiber.Ctx) error {
	var payload notificationapimodels.SystemNotificationData
	if err := c.BodyParser(ctx, &payload); err != nil {
		return ctx.Status(fiber.StatusBadRequest).JSON(apimodels.NewError(err.Error()))
	}

	if err := payload.Validate(); err != nil {
		return ctx.Status(fiber.StatusBadRequest).JSON(apimodels.NewError(err.Error()))
	}
	err := notificationhandler.Instance.CreateSystem(payload)
	if err != nil {
		return c.SendError(ctx, c.GetLogger(ctx), err, "Error sending system notification")
	}
	return ctx.Status(fiber.StatusOK).JSON(apimodels.NewResponse(nil))
}
