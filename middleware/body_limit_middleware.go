package middleware

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/gofiber/fiber/v2"
	apimodels "policy-portal-backend/models/api"
)

// WithBodyLimit rejects requests whose declared Content-Length exceeds limit.
// Paths ending with one of skipSuffixes are left to the app-wide limit.
func WithBodyLimit(limit int64, skipSuffixes ...string) fiber.Handler {
	return func(c *fiber.Ctx) error {
		for _, suffix := range skipSuffixes {
			if strings.HasSuffix(strings.TrimRight(c.Path(), "/"), suffix) {
				return c.Next()
			}
		}
		contentLength := c.Get(fiber.HeaderContentLength)
		if contentLength != "" && contentLength != "0" {
			size, err := strconv.ParseInt(contentLength, 10, 64)
			if err == nil && size > limit {
				return c.Status(fiber.StatusRequestEntityTooLarge).JSON(apimodels.NewError(
					fmt.Sprintf("Request body too large. Maximum allowed: %d bytes", limit)))
			}
		}

		return c.Next()
	}
}
