package middleware

import (
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/stretchr/testify/require"
	authutils "policy-portal-backend/lib/utils/auth-utils"
)

const testSecret = "test-secret"

func newAuthApp() *fiber.App {
	app := fiber.New()
	app.Use(AuthorizationRequiredWithSecret(testSecret))
	app.Get("/me", func(ctx *fiber.Ctx) error {
		return ctx.SendString(GetUserID(ctx) + "|" + GetUserName(ctx))
	})
	return app
}

func TestAuthorizationRequired(t *testing.T) {
	t.Run("valid token", func(t *testing.T) {
		token, err := authutils.GetToken(testSecret, "user-1", "Alice", time.Minute)
		require.NoError(t, err)
		req := httptest.NewRequest(fiber.MethodGet, "/me", nil)
		req.Header.Set(fiber.HeaderAuthorization, "Bearer "+token)

		resp, err := newAuthApp().Test(req)
		require.NoError(t, err)
		require.Equal(t, fiber.StatusOK, resp.StatusCode)
		body, err := io.ReadAll(resp.Body)
		require.NoError(t, err)
		require.Equal(t, "user-1|Alice", string(body))
	})
	t.Run("missing token", func(t *testing.T) {
		resp, err := newAuthApp().Test(httptest.NewRequest(fiber.MethodGet, "/me", nil))
		require.NoError(t, err)
		require.Equal(t, fiber.StatusUnauthorized, resp.StatusCode)
	})
	t.Run("wrong secret", func(t *testing.T) {
		token, err := authutils.GetToken("other-secret", "user-1", "Alice", time.Minute)
		require.NoError(t, err)
		req := httptest.NewRequest(fiber.MethodGet, "/me", nil)
		req.Header.Set(fiber.HeaderAuthorization, "Bearer "+token)

		resp, err := newAuthApp().Test(req)
		require.NoError(t, err)
		require.Equal(t, fiber.StatusUnauthorized, resp.StatusCode)
	})
	t.Run("empty subject", func(t *testing.T) {
		token, err := authutils.GetToken(testSecret, "", "Alice", time.Minute)
		require.NoError(t, err)
		req := httptest.NewRequest(fiber.MethodGet, "/me", nil)
		req.Header.Set(fiber.HeaderAuthorization, "Bearer "+token)

		resp, err := newAuthApp().Test(req)
		require.NoError(t, err)
		require.Equal(t, fiber.StatusUnauthorized, resp.StatusCode)
	})
}

func TestWithBodyLimit(t *testing.T) {
	app := fiber.New()
	app.Use(WithBodyLimit(8, "/attachments"))
	handler := func(ctx *fiber.Ctx) error { return ctx.SendStatus(fiber.StatusOK) }
	app.Post("/requests", handler)
	app.Post("/requests/:id/attachments", handler)

	t.Run("too large", func(t *testing.T) {
		resp, err := app.Test(httptest.NewRequest(fiber.MethodPost, "/requests", strings.NewReader("0123456789")))
		require.NoError(t, err)
		require.Equal(t, fiber.StatusRequestEntityTooLarge, resp.StatusCode)
	})
	t.Run("within limit", func(t *testing.T) {
		resp, err := app.Test(httptest.NewRequest(fiber.MethodPost, "/requests", strings.NewReader("0123")))
		require.NoError(t, err)
		require.Equal(t, fiber.StatusOK, resp.StatusCode)
	})
	t.Run("skipped path", func(t *testing.T) {
		resp, err := app.Test(httptest.NewRequest(fiber.MethodPost, "/requests/r1/attachments", strings.NewReader("0123456789")))
		require.NoError(t, err)
		require.Equal(t, fiber.StatusOK, resp.StatusCode)
	})
}

func TestErrNotify(t *testing.T) {
	received := make(chan errNotification, 1)
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		var payload errNotification
		_ = json.NewDecoder(r.Body).Decode(&payload)
		received <- payload
	}))
	defer server.Close()

	app := fiber.New()
	app.Use(ErrNotify(server.URL))
	app.Get("/requests/:id", func(ctx *fiber.Ctx) error {
		return ctx.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"status": "fail", "message": "store unavailable"})
	})
	app.Get("/ok", func(ctx *fiber.Ctx) error { return ctx.SendStatus(fiber.StatusOK) })

	resp, err := app.Test(httptest.NewRequest(fiber.MethodGet, "/ok", nil))
	require.NoError(t, err)
	require.Equal(t, fiber.StatusOK, resp.StatusCode)

	resp, err = app.Test(httptest.NewRequest(fiber.MethodGet, "/requests/r1", nil))
	require.NoError(t, err)
	require.Equal(t, fiber.StatusInternalServerError, resp.StatusCode)

	select {
	case payload := <-received:
		require.Equal(t, fiber.StatusInternalServerError, payload.Code)
		require.Equal(t, fiber.MethodGet, payload.Method)
		require.Equal(t, "/requests/:id", payload.Path)
		require.Equal(t, "store unavailable", payload.Error)
	case <-time.After(5 * time.Second):
		t.Fatal("error notification was not sent")
	}
	require.Len(t, received, 0)
}

func TestAuthorizationRequiredQueryToken(t *testing.T) {
	token, err := authutils.GetToken(testSecret, "user-2", "Bob", time.Minute)
	require.NoError(t, err)

	resp, err := newAuthApp().Test(httptest.NewRequest(fiber.MethodGet, "/me?token="+token, nil))
	require.NoError(t, err)
	require.Equal(t, fiber.StatusOK, resp.StatusCode)
}
