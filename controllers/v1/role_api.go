package apiv1

import (
	"policy-portal-backend/controllers"
	rolehandler "policy-portal-backend/lib/role"
	apimodels "policy-portal-backend/models/api"
	userapimodels "policy-portal-backend/models/api/user"

	"github.com/gofiber/fiber/v2"
)

type roleApiController struct {
	controllers.BaseAPIController
}

func InitRoleApiRouters(app *fiber.App) {
	controller := roleApiController{}
	app.Route("role", func(router fiber.Router) {
		router.Post("", controller.create)
		router.Get("list", controller.list)
		router.Delete(":id", controller.delete)
	})
}

// @Summary Create role
// @Tags Role
// @Description Create role
// @Param   Authorization		header		string	true	"Authorization token"
// @Param	body body	 userapimodels.RoleData	true	"request body"
// @Success 200 {object} apimodels.Response{data=string}
// @Failure 400 {object} apimodels.Response
// @Failure 401
// @Failure 500 {object} apimodels.Response
// @router /api/v1/role [post]
func (c *roleApiController) create(ctx *fiber.Ctx) error {
	var payload userapimodels.RoleData
	if err := c.BodyParser(ctx, &payload); err != nil {
		return ctx.Status(fiber.StatusBadRequest).JSON(apimodels.NewError(err.Error()))
	}

	if err := payload.Validate(); err != nil {
		return ctx.Status(fiber.StatusBadRequest).JSON(apimodels.NewError(err.Error()))
	}
	id, hMsg, err := rolehandler.Instance.Create(payload)
	if err != nil {
		return c.SendError(ctx, c.GetLogger(ctx), err, "Error creating role")
	}
	if hMsg != "" {
		return ctx.Status(fiber.StatusBadRequest).JSON(apimodels.NewError(hMsg))
	}
	return ctx.Status(fiber.StatusOK).JSON(apimodels.NewResponse(id))
}

// @Summary Role list
// @Tags Role
// @Description Role list
// @Param   Authorization		header		string	true	"Authorization token"
// @Success 200 {object} apimodels.Response{data=[]userapimodels.RoleView}
// @Failure 401
// @Failure 500 {object} apimodels.Response
// @router /api/v1/role/list [get]
func (c *roleApiController) list(ctx *fiber.Ctx) error {
	list, err := rolehandler.Instance.List()
	if err != nil {
		return c.SendError(ctx, c.GetLogger(ctx), err, "Error getting role list")
	}
	return ctx.Status(fiber.StatusOK).JSON(apimodels.NewResponse(list))
}

// @Summary Delete role
// @Tags Role
// @Description Roles held by users or referenced by workflow steps cannot be deleted
// @Param   Authorization		header		string	true	"Authorization token"
// @Param   id          		path    	string  true    "role ID"
// @Success 200 {object} apimodels.Response
// @Failure 400 {object} apimodels.Response
// @Failure 401
// @Failure 404 {object} apimodels.Response
// @Failure 500 {object} apimodels.Response
// @router /api/v1/role/{id} [delete]
func (c *roleApiController) delete(ctx *fiber.Ctx) error {
	id, err := c.GetID(ctx)
	if err != nil {
		return ctx.Status(fiber.StatusBadRequest).JSON(apimodels.NewError(err.Error()))
	}
	hMsg, err := rolehandler.Instance.Delete(id)
	if err != nil {
		return c.SendError(ctx, c.GetLogger(ctx), err, "Error deleting role")
	}
	if hMsg != "" {
		return ctx.Status(fiber.StatusBadRequest).JSON(apimodels.NewError(hMsg))
	}
	return ctx.Status(fiber.StatusOK).JSON(apimodels.NewResponse(nil))
}
