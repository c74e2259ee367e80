package middleware

import (
	"bytes"
	"encoding/json"
	"net/http"
	"time"

	"github.com/gofiber/fiber/v2"
	log "github.com/sirupsen/logrus"
)

type errNotification struct {
	Code   int    `json:"code"`
	Method string `json:"method"`
	Path   string `json:"path"`
	UserID string `json:"user_id,omitempty"`
	Error  string `json:"error"`
}

var errNotifyClient = &http.Client{Timeout: 5 * time.Second}

// ErrNotify posts a short report to addr for every 5xx response.
func ErrNotify(addr string) fiber.Handler {
	return func(c *fiber.Ctx) error {
		err := c.Next()
		if addr == "" {
			return err
		}
		statusCode := c.Response().StatusCode()
		if statusCode < http.StatusInternalServerError {
			return err
		}

		var data struct {
			Status  string `json:"status"`
			Message string `json:"message"`
		}
		if unmErr := json.Unmarshal(c.Response().Body(), &data); unmErr != nil {
			log.WithError(unmErr).Warn("error unmarshalling response body in middleware")
		}
		notification := errNotification{
			Code:   statusCode,
			Method: c.Method(),
			Path:   c.OriginalURL(),
			UserID: GetUserID(c),
			Error:  data.Message,
		}
		if r := c.Route(); r != nil {
			notification.Path = r.Path
		}
		if notification.Error == "" {
			notification.Error = string(c.Response().Body())
		}

		go func() {
			payload, marshalErr := json.Marshal(notification)
			if marshalErr != nil {
				log.WithError(marshalErr).Warn("error marshalling error notification")
				return
			}
			resp, reqErr := errNotifyClient.Post(addr, fiber.MIMEApplicationJSON, bytes.NewReader(payload))
			if reqErr != nil {
				log.WithError(reqErr).Warn("error sending error notification")
				return
			}
			resp.Body.Close()
		}()

		return err
	}
}
