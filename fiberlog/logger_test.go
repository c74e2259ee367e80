package fiberlog

import (
	"bytes"
	"encoding/json"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/gofiber/fiber/v2"
	"github.com/sirupsen/logrus"
	"github.com/stretchr/testify/require"
)

func TestNew(t *testing.T) {
	buf := &bytes.Buffer{}
	logger := logrus.New()
	logger.SetOutput(buf)
	logger.SetFormatter(&logrus.JSONFormatter{})

	app := fiber.New()
	app.Use(New(Config{
		Logger:      logger,
		Tags:        []string{TagMethod, TagPath, TagStatus, TagBody, TagResBody, TagUserID},
		MaxBodySize: 8,
	}))
	app.Post("/api/v1/requests", func(c *fiber.Ctx) error {
		c.Locals("userID", "u1")
		return c.Status(fiber.StatusConflict).JSON(fiber.Map{"status": "fail"})
	})

	req := httptest.NewRequest(fiber.MethodPost, "/api/v1/requests", strings.NewReader(`{"policy_id":"p1"}`))
	req.Header.Set(fiber.HeaderContentType, fiber.MIMEApplicationJSON)
	resp, err := app.Test(req)
	require.NoError(t, err)
	require.Equal(t, fiber.StatusConflict, resp.StatusCode)

	entry := map[string]interface{}{}
	require.NoError(t, json.Unmarshal(buf.Bytes(), &entry))
	require.Equal(t, "warning", entry["level"])
	require.Equal(t, "POST", entry[TagMethod])
	require.Equal(t, "/api/v1/requests", entry[TagPath])
	require.Equal(t, float64(fiber.StatusConflict), entry[TagStatus])
	require.Equal(t, `{"policy...`, entry[TagBody])
	require.Equal(t, "u1", entry[TagUserID])
	require.NotEmpty(t, entry[TagResBody])
}
