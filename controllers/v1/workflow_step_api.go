package apiv1

import (
	"policy-portal-backend/controllers"
	workflowstephandler "policy-portal-backend/lib/workflow-step"
	apimodels "policy-portal-backend/models/api"
	policyapimodels "policy-portal-backend/models/api/policy"

	"github.com/gofiber/fiber/v2"
)

type workflowStepApiController struct {
	controllers.BaseAPIController
}

func InitWorkflowStepApiRouters(app *fiber.App) {
	controller := workflowStepApiController{}
	app.Route("workflow_step", func(router fiber.Router) {
		router.Post("", controller.add)
		router.Get("list", controller.list)
		router.Delete(":id", controller.delete)
	})
}

// @Summary Add workflow step
// @Tags Workflow
// @Description Add a step to a policy workflow. Requests created earlier keep their own step snapshot
// @Param   Authorization		header		string	true	"Authorization token"
// @Param	body body	 policyapimodels.WorkflowStepData	true	"request body"
// @Success 200 {object} apimodels.Response{data=string}
// @Failure 400 {object} apimodels.Response
// @Failure 401
// @Failure 404 {object} apimodels.Response
// @Failure 422 {object} apimodels.Response
// @Failure 500 {object} apimodels.Response
// @router /api/v1/workflow_step [post]
func (c *workflowStepApiController) add(ctx *fiber.Ctx) error {
	var payload policyapimodels.WorkflowStepData
	if err := c.BodyParser(ctx, &payload); err != nil {
		return ctx.Status(fiber.StatusBadRequest).JSON(apimodels.NewError(err.Error()))
	}

	if err := payload.Validate(); err != nil {
		return ctx.Status(fiber.StatusBadRequest).JSON(apimodels.NewError(err.Error()))
	}
	id, err := workflowstephandler.Instance.Add(payload)
	if err != nil {
		return c.SendError(ctx, c.GetLogger(ctx), err, "Error adding workflow step")
	}
	return ctx.Status(fiber.StatusOK).JSON(apimodels.NewResponse(id))
}

// @Summary Workflow step list
// @Tags Workflow
// @Description All workflow steps of all policies
// @Param   Authorization		header		string	true	"Authorization token"
// @Success 200 {object} apimodels.Response{data=[]policyapimodels.WorkflowStepView}
// @Failure 401
// @Failure 500 {object} apimodels.Response
// @router /api/v1/workflow_step/list [get]
func (c *workflowStepApiController) list(ctx *fiber.Ctx) error {
	list, err := workflowstephandler.Instance.List()
	if err != nil {
		return c.SendError(ctx, c.GetLogger(ctx), err, "Error getting workflow steps")
	}
	return ctx.Status(fiber.StatusOK).JSON(apimodels.NewResponse(list))
}

// @Summary Delete workflow step
// @Tags Workflow
// @Description Delete workflow step
// @Param   Authorization		header		string	true	"Authorization token"
// @Param   id          		path    	string  true    "step ID"
// @Success 200 {object} apimodels.Response
// @Failure 400 {object} apimodels.Response
// @Failure 401
// @Failure 404 {object} apimodels.Response
// @Failure 422 {object} apimodels.Response
// @Failure 500 {object} apimodels.Response
// @router /api/v1/workflow_step/{id} [delete]
func (c *workflowStepApiController) delete(ctx *fiber.Ctx) error {
	id, err := c.GetID(ctx)
	if err != nil {
		return ctx.Status(fiber.StatusBadRequest).JSON(apimodels.NewError(err.Error()))
	}
	err = workflowstephandler.Instance.Delete(id)
	if err != nil {
		return c.SendError(ctx, c.GetLogger(ctx), err, "Error deleting workflow step")
	}
	return ctx.Status(fiber.StatusOK).JSON(apimodels.NewResponse(nil))
}
