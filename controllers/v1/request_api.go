package apiv1

import (
	"fmt"
	"io"
	"policy-portal-backend/controllers"
	pdfexport "policy-portal-backend/lib/export/pdf"
	xlsexport "policy-portal-backend/lib/export/xls"
	filestorage "policy-portal-backend/lib/file-storage"
	requesthandler "policy-portal-backend/lib/request"
	"policy-portal-backend/lib/utils/helpers"
	"policy-portal-backend/lib/utils/lock"
	"policy-portal-backend/middleware"
	apimodels "policy-portal-backend/models/api"
	requestapimodels "policy-portal-backend/models/api/request"
	"time"

	"github.com/gofiber/fiber/v2"
)

const exportRowLimit = 1000

type requestApiController struct {
	controllers.BaseAPIController
}

func InitRequestApiRouters(app *fiber.App) {
	controller := requestApiController{}
	app.Route("request", func(router fiber.Router) {
		router.Post("", controller.create)
		router.Post("list", controller.list)
		router.Get("awaiting", controller.awaiting)
		router.Put("export", controller.export)
		router.Route(":id", func(idRoute fiber.Router) {
			idRoute.Get("", controller.get)
			idRoute.Delete("", controller.delete)
			idRoute.Get("progress", controller.progress)
			idRoute.Post("decision", controller.decision)
			idRoute.Get("approval_sheet", controller.approvalSheet)
			idRoute.Post("attachment", controller.uploadAttachment)
			idRoute.Get("attachment/list", controller.attachmentList)
			idRoute.Get("attachment/:attachmentId", controller.downloadAttachment)
		})
	})
}

// @Summary Create request
// @Tags Request
// @Description Create an approval request for an active policy. A policy without steps approves the request at once
// @Param   Authorization		header		string	true	"Authorization token"
// @Param	body body	 requestapimodels.RequestCreateData	true	"request body"
// @Success 200 {object} apimodels.Response{data=requestapimodels.RequestView}
// @Failure 400 {object} apimodels.Response
// @Failure 401
// @Failure 404 {object} apimodels.Response
// @Failure 422 {object} apimodels.Response
// @Failure 500 {object} apimodels.Response
// @router /api/v1/request [post]
func (c *requestApiController) create(ctx *fiber.Ctx) error {
	var payload requestapimodels.RequestCreateData
	if err := c.BodyParser(ctx, &payload); err != nil {
		return ctx.Status(fiber.StatusBadRequest).JSON(apimodels.NewError(err.Error()))
	}

	if err := payload.Validate(); err != nil {
		return ctx.Status(fiber.StatusBadRequest).JSON(apimodels.NewError(err.Error()))
	}
	userID := middleware.GetUserID(ctx)
	result, err := requesthandler.Instance.Create(ctx.UserContext(), userID, payload)
	if err != nil {
		return c.SendError(ctx, c.GetLogger(ctx), err, "Error creating request")
	}
	return ctx.Status(fiber.StatusOK).JSON(apimodels.NewResponse(result))
}

// @Summary Request list
// @Tags Request
// @Description Request list
// @Param   Authorization		header		string	true	"Authorization token"
// @Param	body body	 requestapimodels.RequestFilter	true	"request body"
// @Success 200 {object} apimodels.ScrollerResponse{data=[]requestapimodels.RequestView}
// @Failure 400 {object} apimodels.Response
// @Failure 401
// @Failure 500 {object} apimodels.Response
// @router /api/v1/request/list [post]
func (c *requestApiController) list(ctx *fiber.Ctx) error {
	var payload requestapimodels.RequestFilter
	if err := c.BodyParser(ctx, &payload); err != nil {
		return ctx.Status(fiber.StatusBadRequest).JSON(apimodels.NewError(err.Error()))
	}

	if err := payload.Validate(); err != nil {
		return ctx.Status(fiber.StatusBadRequest).JSON(apimodels.NewError(err.Error()))
	}
	list, rowCount, err := requesthandler.Instance.List(payload)
	if err != nil {
		return c.SendError(ctx, c.GetLogger(ctx), err, "Error getting request list")
	}
	return ctx.Status(fiber.StatusOK).JSON(apimodels.NewScrollerResponse(list, rowCount))
}

// @Summary Awaiting my decision
// @Tags Request
// @Description Pending requests whose current step waits for the current user's role
// @Param   Authorization		header		string	true	"Authorization token"
// @Success 200 {object} apimodels.Response{data=[]requestapimodels.RequestView}
// @Failure 401
// @Failure 404 {object} apimodels.Response
// @Failure 500 {object} apimodels.Response
// @router /api/v1/request/awaiting [get]
func (c *requestApiController) awaiting(ctx *fiber.Ctx) error {
	list, err := requesthandler.Instance.ListAwaiting(middleware.GetUserID(ctx))
	if err != nil {
		return c.SendError(ctx, c.GetLogger(ctx), err, "Error getting awaiting requests")
	}
	return ctx.Status(fiber.StatusOK).JSON(apimodels.NewResponse(list))
}

// @Summary Export requests to Excel
// @Tags Request
// @Description Export requests matching the filter, at most 1000 rows
// @Param   Authorization		header	string	true	"Authorization token"
// @Param	body body	requestapimodels.RequestFilter	true	"request body"
// @Success 200
// @Failure 400 {object} apimodels.Response
// @Failure 401
// @Failure 500 {object} apimodels.Response
// @router /api/v1/request/export [put]
func (c *requestApiController) export(ctx *fiber.Ctx) error {
	var payload requestapimodels.RequestFilter
	if err := c.BodyParser(ctx, &payload); err != nil {
		return ctx.Status(fiber.StatusBadRequest).JSON(apimodels.NewError(err.Error()))
	}
	if err := payload.Validate(); err != nil {
		return ctx.Status(fiber.StatusBadRequest).JSON(apimodels.NewError(err.Error()))
	}

	if !lock.Resource.Acquire(ctx.UserContext(), "request_export") {
		return ctx.Status(fiber.StatusServiceUnavailable).JSON(apimodels.NewError("export is unavailable, try again later"))
	}
	defer lock.Resource.Release()

	payload.Page = 1
	payload.Limit = exportRowLimit
	list, _, err := requesthandler.Instance.List(payload)
	if err != nil {
		return c.SendError(ctx, c.GetLogger(ctx), err, "Error getting requests for export")
	}
	data, err := xlsexport.Instance.ExportRequestList(list)
	if err != nil {
		return c.SendError(ctx, c.GetLogger(ctx), err, "Error exporting requests to Excel")
	}
	fileName := fmt.Sprintf("requests-%v.xlsx", time.Now().Format("20060102-150405"))
	ctx.Set(fiber.HeaderContentType, "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet")
	ctx.Set(fiber.HeaderContentDisposition, `attachment; filename="`+fileName+`"`)
	return ctx.SendStream(data)
}

// @Summary Get request
// @Tags Request
// @Description Request with its decisions and step progress
// @Param   Authorization		header		string	true	"Authorization token"
// @Param   id          		path    	string  true    "request ID"
// @Success 200 {object} apimodels.Response{data=requestapimodels.RequestView}
// @Failure 400 {object} apimodels.Response
// @Failure 401
// @Failure 404 {object} apimodels.Response
// @Failure 500 {object} apimodels.Response
// @router /api/v1/request/{id} [get]
func (c *requestApiController) get(ctx *fiber.Ctx) error {
	id, err := c.GetID(ctx)
	if err != nil {
		return ctx.Status(fiber.StatusBadRequest).JSON(apimodels.NewError(err.Error()))
	}
	result, err := requesthandler.Instance.GetByID(id)
	if err != nil {
		return c.SendError(ctx, c.GetLogger(ctx), err, "Error getting request")
	}
	return ctx.Status(fiber.StatusOK).JSON(apimodels.NewResponse(result))
}

// @Summary Delete request
// @Tags Request
// @Description Requests that already carry decisions cannot be deleted
// @Param   Authorization		header		string	true	"Authorization token"
// @Param   id          		path    	string  true    "request ID"
// @Success 200 {object} apimodels.Response
// @Failure 400 {object} apimodels.Response
// @Failure 401
// @Failure 404 {object} apimodels.Response
// @Failure 500 {object} apimodels.Response
// @router /api/v1/request/{id} [delete]
func (c *requestApiController) delete(ctx *fiber.Ctx) error {
	id, err := c.GetID(ctx)
	if err != nil {
		return ctx.Status(fiber.StatusBadRequest).JSON(apimodels.NewError(err.Error()))
	}
	hMsg, err := requesthandler.Instance.Delete(id)
	if err != nil {
		return c.SendError(ctx, c.GetLogger(ctx), err, "Error deleting request")
	}
	if hMsg != "" {
		return ctx.Status(fiber.StatusBadRequest).JSON(apimodels.NewError(hMsg))
	}
	return ctx.Status(fiber.StatusOK).JSON(apimodels.NewResponse(nil))
}

// @Summary Request progress
// @Tags Request
// @Description Step timeline of the request
// @Param   Authorization		header		string	true	"Authorization token"
// @Param   id          		path    	string  true    "request ID"
// @Success 200 {object} apimodels.Response{data=requestapimodels.ProgressView}
// @Failure 400 {object} apimodels.Response
// @Failure 401
// @Failure 404 {object} apimodels.Response
// @Failure 500 {object} apimodels.Response
// @router /api/v1/request/{id}/progress [get]
func (c *requestApiController) progress(ctx *fiber.Ctx) error {
	id, err := c.GetID(ctx)
	if err != nil {
		return ctx.Status(fiber.StatusBadRequest).JSON(apimodels.NewError(err.Error()))
	}
	result, err := requesthandler.Instance.Progress(id)
	if err != nil {
		return c.SendError(ctx, c.GetLogger(ctx), err, "Error getting request progress")
	}
	return ctx.Status(fiber.StatusOK).JSON(apimodels.NewResponse(result))
}

// @Summary Submit decision
// @Tags Request
// @Description Approve or reject the current step. The approver must hold the role of the current step
// @Param   Authorization		header		string	true	"Authorization token"
// @Param   id          		path    	string  true    "request ID"
// @Param	body body	 requestapimodels.DecisionData	true	"request body"
// @Success 200 {object} apimodels.Response{data=requestapimodels.RequestView}
// @Failure 400 {object} apimodels.Response
// @Failure 401
// @Failure 403 {object} apimodels.Response
// @Failure 404 {object} apimodels.Response
// @Failure 409 {object} apimodels.Response
// @Failure 500 {object} apimodels.Response
// @router /api/v1/request/{id}/decision [post]
func (c *requestApiController) decision(ctx *fiber.Ctx) error {
	id, err := c.GetID(ctx)
	if err != nil {
		return ctx.Status(fiber.StatusBadRequest).JSON(apimodels.NewError(err.Error()))
	}
	var payload requestapimodels.DecisionData
	if err = c.BodyParser(ctx, &payload); err != nil {
		return ctx.Status(fiber.StatusBadRequest).JSON(apimodels.NewError(err.Error()))
	}

	if err = payload.Validate(); err != nil {
		return ctx.Status(fiber.StatusBadRequest).JSON(apimodels.NewError(err.Error()))
	}
	userID := middleware.GetUserID(ctx)
	result, err := requesthandler.Instance.SubmitDecision(ctx.UserContext(), id, userID, payload)
	if err != nil {
		return c.SendError(ctx, c.GetLogger(ctx), err, "Error submitting decision")
	}
	return ctx.Status(fiber.StatusOK).JSON(apimodels.NewResponse(result))
}

// @Summary Approval sheet
// @Tags Request
// @Description PDF with the request and its decision history
// @Param   Authorization		header		string	true	"Authorization token"
// @Param   id          		path    	string  true    "request ID"
// @Success 200
// @Failure 400 {object} apimodels.Response
// @Failure 401
// @Failure 404 {object} apimodels.Response
// @Failure 500 {object} apimodels.Response
// @router /api/v1/request/{id}/approval_sheet [get]
func (c *requestApiController) approvalSheet(ctx *fiber.Ctx) error {
	id, err := c.GetID(ctx)
	if err != nil {
		return ctx.Status(fiber.StatusBadRequest).JSON(apimodels.NewError(err.Error()))
	}
	view, err := requesthandler.Instance.GetByID(id)
	if err != nil {
		return c.SendError(ctx, c.GetLogger(ctx), err, "Error getting request")
	}
	if !lock.Resource.Acquire(ctx.UserContext(), "approval_sheet") {
		return ctx.Status(fiber.StatusServiceUnavailable).JSON(apimodels.NewError("export is unavailable, try again later"))
	}
	defer lock.Resource.Release()
	body, err := pdfexport.GenerateApprovalSheet(*view)
	if err != nil {
		return c.SendError(ctx, c.GetLogger(ctx), err, "Error generating approval sheet")
	}
	ctx.Set(fiber.HeaderContentType, "application/pdf")
	ctx.Set(fiber.HeaderContentDisposition, fmt.Sprintf(`attachment; filename="approval-sheet-%v.pdf"`, view.ID))
	return ctx.Send(body)
}

// @Summary Upload attachment
// @Tags Request
// @Description Upload a file for the request. Pass the returned path as attachment_path of a decision
// @Param   Authorization		header		string	true	"Authorization token"
// @Param   id          		path    	string  true    "request ID"
// @Param   file				formData	file 	true 	"attachment"
// @Success 200 {object} apimodels.Response{data=attachmentapimodels.AttachmentView}
// @Failure 400 {object} apimodels.Response
// @Failure 401
// @Failure 404 {object} apimodels.Response
// @Failure 500 {object} apimodels.Response
// @router /api/v1/request/{id}/attachment [post]
func (c *requestApiController) uploadAttachment(ctx *fiber.Ctx) error {
	id, err := c.GetID(ctx)
	if err != nil {
		return ctx.Status(fiber.StatusBadRequest).JSON(apimodels.NewError(err.Error()))
	}
	file, err := ctx.FormFile("file")
	if err != nil {
		return ctx.Status(fiber.StatusBadRequest).JSON(apimodels.NewError(err.Error()))
	}
	buffer, err := file.Open()
	if err != nil {
		return c.SendError(ctx, c.GetLogger(ctx), err, "Error opening attachment")
	}
	defer buffer.Close()
	fileBody, err := io.ReadAll(buffer)
	if err != nil {
		return c.SendError(ctx, c.GetLogger(ctx), err, "Error reading attachment")
	}

	userID := middleware.GetUserID(ctx)
	contentType := helpers.GetFileContentType(file, fileBody)
	result, err := filestorage.Instance.Upload(ctx.UserContext(), userID, id, file.Filename, contentType, fileBody)
	if err != nil {
		return c.SendError(ctx, c.GetLogger(ctx), err, "Error saving attachment")
	}
	return ctx.Status(fiber.StatusOK).JSON(apimodels.NewResponse(result))
}

// @Summary Attachment list
// @Tags Request
// @Description Files uploaded for the request
// @Param   Authorization		header		string	true	"Authorization token"
// @Param   id          		path    	string  true    "request ID"
// @Success 200 {object} apimodels.Response{data=[]attachmentapimodels.AttachmentView}
// @Failure 400 {object} apimodels.Response
// @Failure 401
// @Failure 500 {object} apimodels.Response
// @router /api/v1/request/{id}/attachment/list [get]
func (c *requestApiController) attachmentList(ctx *fiber.Ctx) error {
	id, err := c.GetID(ctx)
	if err != nil {
		return ctx.Status(fiber.StatusBadRequest).JSON(apimodels.NewError(err.Error()))
	}
	list, err := filestorage.Instance.ListByRequest(id)
	if err != nil {
		return c.SendError(ctx, c.GetLogger(ctx), err, "Error getting attachments")
	}
	return ctx.Status(fiber.StatusOK).JSON(apimodels.NewResponse(list))
}

// @Summary Download attachment
// @Tags Request
// @Description Download attachment
// @Param   Authorization		header		string	true	"Authorization token"
// @Param   id          		path    	string  true    "request ID"
// @Param   attachmentId        path    	string  true    "attachment ID"
// @Success 200
// @Failure 400 {object} apimodels.Response
// @Failure 401
// @Failure 404 {object} apimodels.Response
// @Failure 500 {object} apimodels.Response
// @router /api/v1/request/{id}/attachment/{attachmentId} [get]
func (c *requestApiController) downloadAttachment(ctx *fiber.Ctx) error {
	id, err := c.GetID(ctx)
	if err != nil {
		return ctx.Status(fiber.StatusBadRequest).JSON(apimodels.NewError(err.Error()))
	}
	attachmentID, err := c.GetIDByKey(ctx, "attachmentId")
	if err != nil {
		return ctx.Status(fiber.StatusBadRequest).JSON(apimodels.NewError(err.Error()))
	}
	rec, body, err := filestorage.Instance.Get(ctx.UserContext(), attachmentID)
	if err != nil {
		return c.SendError(ctx, c.GetLogger(ctx), err, "Error getting attachment")
	}
	if rec.RequestID != id {
		return ctx.Status(fiber.StatusNotFound).JSON(apimodels.NewError("attachment not found"))
	}
	ctx.Set(fiber.HeaderContentType, rec.ContentType)
	ctx.Set(fiber.HeaderContentDisposition, `attachment; filename="`+rec.FileName+`"`)
	return ctx.Send(body)
}
