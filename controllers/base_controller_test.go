package controllers

import (
	"encoding/json"
	"net/http/httptest"
	"testing"

	"github.com/gofiber/fiber/v2"
	"github.com/pkg/errors"
	"github.com/stretchr/testify/require"
	"policy-portal-backend/models"
	apimodels "policy-portal-backend/models/api"
)

func TestErrorStatus(t *testing.T) {
	cases := []struct {
		err    error
		status int
	}{
		{errors.Wrap(models.ErrNotFound, "request"), fiber.StatusNotFound},
		{errors.Wrap(models.ErrInvalidState, "submit decision"), fiber.StatusConflict},
		{models.ErrBusy, fiber.StatusConflict},
		{errors.Wrapf(models.ErrUnauthorizedApprover, "user %v", "u1"), fiber.StatusForbidden},
		{models.ErrInvalidWorkflow, fiber.StatusUnprocessableEntity},
		{models.ErrPolicyInactive, fiber.StatusUnprocessableEntity},
		{errors.New("connection refused"), fiber.StatusInternalServerError},
	}
	for _, tc := range cases {
		t.Run(tc.err.Error(), func(t *testing.T) {
			require.Equal(t, tc.status, ErrorStatus(tc.err))
		})
	}
}

func TestSendError(t *testing.T) {
	c := BaseAPIController{}
	app := fiber.New()
	app.Get("/domain", func(ctx *fiber.Ctx) error {
		return c.SendError(ctx, c.GetLogger(ctx), errors.Wrap(models.ErrInvalidState, "submit decision"), "decision failed")
	})
	app.Get("/internal", func(ctx *fiber.Ctx) error {
		return c.SendError(ctx, c.GetLogger(ctx), errors.New("pq: connection refused"), "decision failed")
	})

	t.Run("domain error keeps its message", func(t *testing.T) {
		resp, err := app.Test(httptest.NewRequest(fiber.MethodGet, "/domain", nil))
		require.NoError(t, err)
		require.Equal(t, fiber.StatusConflict, resp.StatusCode)
		var body apimodels.Response
		require.NoError(t, json.NewDecoder(resp.Body).Decode(&body))
		require.Equal(t, "fail", body.Status)
		require.Equal(t, "submit decision: request is not pending", body.Message)
	})
	t.Run("internal error is hidden", func(t *testing.T) {
		resp, err := app.Test(httptest.NewRequest(fiber.MethodGet, "/internal", nil))
		require.NoError(t, err)
		require.Equal(t, fiber.StatusInternalServerError, resp.StatusCode)
		var body apimodels.Response
		require.NoError(t, json.NewDecoder(resp.Body).Decode(&body))
		require.Equal(t, "decision failed", body.Message)
	})
}

func TestGetIDByKey(t *testing.T) {
	c := BaseAPIController{}
	app := fiber.New()
	app.Get("/requests/:id/attachments/:attachmentId?", func(ctx *fiber.Ctx) error {
		id, err := c.GetID(ctx)
		require.NoError(t, err)
		if _, err = c.GetIDByKey(ctx, "attachmentId"); err != nil {
			return ctx.Status(fiber.StatusBadRequest).SendString(id)
		}
		return ctx.Status(fiber.StatusOK).SendString(id)
	})

	resp, err := app.Test(httptest.NewRequest(fiber.MethodGet, "/requests/r1/attachments/a1", nil))
	require.NoError(t, err)
	require.Equal(t, fiber.StatusOK, resp.StatusCode)

	resp, err = app.Test(httptest.NewRequest(fiber.MethodGet, "/requests/r1/attachments", nil))
	require.NoError(t, err)
	require.Equal(t, fiber.StatusBadRequest, resp.StatusCode)
}
