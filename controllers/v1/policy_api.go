package apiv1

import (
	"policy-portal-backend/controllers"
	policyhandler "policy-portal-backend/lib/policy"
	workflowstephandler "policy-portal-backend/lib/workflow-step"
	"policy-portal-backend/middleware"
	apimodels "policy-portal-backend/models/api"
	policyapimodels "policy-portal-backend/models/api/policy"

	"github.com/gofiber/fiber/v2"
)

type policyApiController struct {
	controllers.BaseAPIController
}

func InitPolicyApiRouters(app *fiber.App) {
	controller := policyApiController{}
	app.Route("policy", func(router fiber.Router) {
		router.Post("", controller.create)
		router.Get("list", controller.list)
		router.Route(":id", func(idRoute fiber.Router) {
			idRoute.Get("", controller.get)
			idRoute.Delete("", controller.delete)
			idRoute.Put("active", controller.setActive)
			idRoute.Get("steps", controller.steps)
		})
	})
}

// @Summary Create policy
// @Tags Policy
// @Description Create a policy. Name and description cannot be changed afterwards
// @Param   Authorization		header		string	true	"Authorization token"
// @Param	body body	 policyapimodels.PolicyData	true	"request body"
// @Success 200 {object} apimodels.Response{data=string}
// @Failure 400 {object} apimodels.Response
// @Failure 401
// @Failure 404 {object} apimodels.Response
// @Failure 500 {object} apimodels.Response
// @router /api/v1/policy [post]
func (c *policyApiController) create(ctx *fiber.Ctx) error {
	var payload policyapimodels.PolicyData
	if err := c.BodyParser(ctx, &payload); err != nil {
		return ctx.Status(fiber.StatusBadRequest).JSON(apimodels.NewError(err.Error()))
	}

	if err := payload.Validate(); err != nil {
		return ctx.Status(fiber.StatusBadRequest).JSON(apimodels.NewError(err.Error()))
	}
	userID := middleware.GetUserID(ctx)
	id, err := policyhandler.Instance.Create(userID, payload)
	if err != nil {
		return c.SendError(ctx, c.GetLogger(ctx), err, "Error creating policy")
	}
	return ctx.Status(fiber.StatusOK).JSON(apimodels.NewResponse(id))
}

// @Summary Policy list
// @Tags Policy
// @Description Policy list
// @Param   Authorization		header		string	true	"Authorization token"
// @Param   only_active			query		bool	false	"active policies only"
// @Success 200 {object} apimodels.Response{data=[]policyapimodels.PolicyView}
// @Failure 401
// @Failure 500 {object} apimodels.Response
// @router /api/v1/policy/list [get]
func (c *policyApiController) list(ctx *fiber.Ctx) error {
	onlyActive := ctx.QueryBool("only_active", false)
	list, err := policyhandler.Instance.List(onlyActive)
	if err != nil {
		return c.SendError(ctx, c.GetLogger(ctx), err, "Error getting policy list")
	}
	return ctx.Status(fiber.StatusOK).JSON(apimodels.NewResponse(list))
}

// @Summary Get policy
// @Tags Policy
// @Description Get policy with its workflow steps
// @Param   Authorization		header		string	true	"Authorization token"
// @Param   id          		path    	string  true    "policy ID"
// @Success 200 {object} apimodels.Response{data=policyapimodels.PolicyView}
// @Failure 400 {object} apimodels.Response
// @Failure 401
// @Failure 404 {object} apimodels.Response
// @Failure 500 {object} apimodels.Response
// @router /api/v1/policy/{id} [get]
func (c *policyApiController) get(ctx *fiber.Ctx) error {
	id, err := c.GetID(ctx)
	if err != nil {
		return ctx.Status(fiber.StatusBadRequest).JSON(apimodels.NewError(err.Error()))
	}
	result, err := policyhandler.Instance.GetByID(id)
	if err != nil {
		return c.SendError(ctx, c.GetLogger(ctx), err, "Error getting policy")
	}
	return ctx.Status(fiber.StatusOK).JSON(apimodels.NewResponse(result))
}

// @Summary Activate or deactivate policy
// @Tags Policy
// @Description Activation requires a complete workflow
// @Param   Authorization		header		string	true	"Authorization token"
// @Param   id          		path    	string  true    "policy ID"
// @Param	body body	 policyapimodels.PolicyActivity	true	"request body"
// @Success 200 {object} apimodels.Response
// @Failure 400 {object} apimodels.Response
// @Failure 401
// @Failure 404 {object} apimodels.Response
// @Failure 422 {object} apimodels.Response
// @Failure 500 {object} apimodels.Response
// @router /api/v1/policy/{id}/active [put]
func (c *policyApiController) setActive(ctx *fiber.Ctx) error {
	id, err := c.GetID(ctx)
	if err != nil {
		return ctx.Status(fiber.StatusBadRequest).JSON(apimodels.NewError(err.Error()))
	}
	var payload policyapimodels.PolicyActivity
	if err = c.BodyParser(ctx, &payload); err != nil {
		return ctx.Status(fiber.StatusBadRequest).JSON(apimodels.NewError(err.Error()))
	}
	err = policyhandler.Instance.SetActive(id, payload.IsActive)
	if err != nil {
		return c.SendError(ctx, c.GetLogger(ctx), err, "Error changing policy activity")
	}
	return ctx.Status(fiber.StatusOK).JSON(apimodels.NewResponse(nil))
}

// @Summary Delete policy
// @Tags Policy
// @Description Policies referenced by requests cannot be deleted
// @Param   Authorization		header		string	true	"Authorization token"
// @Param   id          		path    	string  true    "policy ID"
// @Success 200 {object} apimodels.Response
// @Failure 400 {object} apimodels.Response
// @Failure 401
// @Failure 404 {object} apimodels.Response
// @Failure 500 {object} apimodels.Response
// @router /api/v1/policy/{id} [delete]
func (c *policyApiController) delete(ctx *fiber.Ctx) error {
	id, err := c.GetID(ctx)
	if err != nil {
		return ctx.Status(fiber.StatusBadRequest).JSON(apimodels.NewError(err.Error()))
	}
	hMsg, err := policyhandler.Instance.Delete(id)
	if err != nil {
		return c.SendError(ctx, c.GetLogger(ctx), err, "Error deleting policy")
	}
	if hMsg != "" {
		return ctx.Status(fiber.StatusBadRequest).JSON(apimodels.NewError(hMsg))
	}
	return ctx.Status(fiber.StatusOK).JSON(apimodels.NewResponse(nil))
}

// @Summary Policy workflow steps
// @Tags Policy
// @Description Workflow steps ordered by step order
// @Param   Authorization		header		string	true	"Authorization token"
// @Param   id          		path    	string  true    "policy ID"
// @Success 200 {object} apimodels.Response{data=[]policyapimodels.WorkflowStepView}
// @Failure 400 {object} apimodels.Response
// @Failure 401
// @Failure 404 {object} apimodels.Response
// @Failure 500 {object} apimodels.Response
// @router /api/v1/policy/{id}/steps [get]
func (c *policyApiController) steps(ctx *fiber.Ctx) error {
	id, err := c.GetID(ctx)
	if err != nil {
		return ctx.Status(fiber.StatusBadRequest).JSON(apimodels.NewError(err.Error()))
	}
	list, err := workflowstephandler.Instance.ListByPolicy(id)
	if err != nil {
		return c.SendError(ctx, c.GetLogger(ctx), err, "Error getting workflow steps")
	}
	return ctx.Status(fiber.StatusOK).JSON(apimodels.NewResponse(list))
}
