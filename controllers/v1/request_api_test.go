package apiv1

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/pkg/errors"
	"github.com/stretchr/testify/require"
	requesthandler "policy-portal-backend/lib/request"
	authutils "policy-portal-backend/lib/utils/auth-utils"
	"policy-portal-backend/middleware"
	"policy-portal-backend/models"
	apimodels "policy-portal-backend/models/api"
	requestapimodels "policy-portal-backend/models/api/request"
)

const testSecret = "test-secret"

type fakeRequestHandler struct {
	requesthandler.Provider
	decisionErr  error
	approverSeen string
	decision     requestapimodels.DecisionData
	deleteMsg    string
}

func (f *fakeRequestHandler) Delete(id string) (string, error) {
	if id == "missing" {
		return "", errors.Wrapf(models.ErrNotFound, "request %v", id)
	}
	return f.deleteMsg, nil
}

func (f *fakeRequestHandler) SubmitDecision(_ context.Context, requestID, approverUserID string, data requestapimodels.DecisionData) (*requestapimodels.RequestView, error) {
	f.approverSeen = approverUserID
	f.decision = data
	if f.decisionErr != nil {
		return nil, f.decisionErr
	}
	return &requestapimodels.RequestView{ID: requestID, Status: models.RequestStatusApproved}, nil
}

func (f *fakeRequestHandler) GetByID(id string) (*requestapimodels.RequestView, error) {
	return nil, errors.Wrapf(models.ErrNotFound, "request %v", id)
}

func newRequestTestApp(t *testing.T, handler requesthandler.Provider) *fiber.App {
	prev := requesthandler.Instance
	requesthandler.Instance = handler
	t.Cleanup(func() { requesthandler.Instance = prev })

	app := fiber.New()
	app.Use(middleware.AuthorizationRequiredWithSecret(testSecret))
	InitRequestApiRouters(app)
	return app
}

func authorized(t *testing.T, method, target, body string) *http.Request {
	token, err := authutils.GetToken(testSecret, "approver-1", "Dana", time.Minute)
	require.NoError(t, err)
	req := httptest.NewRequest(method, target, strings.NewReader(body))
	req.Header.Set(fiber.HeaderAuthorization, "Bearer "+token)
	req.Header.Set(fiber.HeaderContentType, fiber.MIMEApplicationJSON)
	return req
}

func TestDecisionApi(t *testing.T) {
	cases := []struct {
		name   string
		body   string
		err    error
		status int
	}{
		{"approved", `{"decision":"Approve","comment":"ok"}`, nil, fiber.StatusOK},
		{"unknown decision", `{"decision":"Maybe"}`, nil, fiber.StatusBadRequest},
		{"reject without comment", `{"decision":"Reject"}`, nil, fiber.StatusBadRequest},
		{"terminal request", `{"decision":"Approve"}`, errors.Wrap(models.ErrInvalidState, "request r1"), fiber.StatusConflict},
		{"busy request", `{"decision":"Approve"}`, errors.Wrap(models.ErrBusy, "request r1"), fiber.StatusConflict},
		{"wrong role", `{"decision":"Approve"}`, errors.Wrap(models.ErrUnauthorizedApprover, "user approver-1"), fiber.StatusForbidden},
		{"unknown request", `{"decision":"Approve"}`, errors.Wrap(models.ErrNotFound, "request r1"), fiber.StatusNotFound},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			handler := &fakeRequestHandler{decisionErr: tc.err}
			app := newRequestTestApp(t, handler)

			resp, err := app.Test(authorized(t, fiber.MethodPost, "/request/r1/decision", tc.body))
			require.NoError(t, err)
			require.Equal(t, tc.status, resp.StatusCode)

			var body apimodels.Response
			require.NoError(t, json.NewDecoder(resp.Body).Decode(&body))
			if tc.status == fiber.StatusOK {
				require.Equal(t, "success", body.Status)
				require.Equal(t, "approver-1", handler.approverSeen)
				require.Equal(t, models.DecisionApprove, handler.decision.Decision)
			} else {
				require.Equal(t, "fail", body.Status)
				require.NotEmpty(t, body.Message)
			}
		})
	}
}

func TestApprovalSheetNotFound(t *testing.T) {
	app := newRequestTestApp(t, &fakeRequestHandler{})

	resp, err := app.Test(authorized(t, fiber.MethodGet, "/request/missing/approval_sheet", ""))
	require.NoError(t, err)
	require.Equal(t, fiber.StatusNotFound, resp.StatusCode)
}

func TestDeleteRequestApi(t *testing.T) {
	cases := []struct {
		name      string
		id        string
		deleteMsg string
		status    int
	}{
		{"no decisions", "r1", "", fiber.StatusOK},
		{"has decisions", "r1", "Request already has 1 decisions and cannot be deleted", fiber.StatusBadRequest},
		{"unknown request", "missing", "", fiber.StatusNotFound},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			app := newRequestTestApp(t, &fakeRequestHandler{deleteMsg: tc.deleteMsg})

			resp, err := app.Test(authorized(t, fiber.MethodDelete, "/request/"+tc.id, ""))
			require.NoError(t, err)
			require.Equal(t, tc.status, resp.StatusCode)
			if tc.deleteMsg != "" {
				var body apimodels.Response
				require.NoError(t, json.NewDecoder(resp.Body).Decode(&body))
				require.Equal(t, tc.deleteMsg, body.Message)
			}
		})
	}
}
