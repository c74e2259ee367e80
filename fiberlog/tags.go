package fiberlog

import (
	"time"

	"github.com/gofiber/fiber/v2"
)

const (
	TagPid     = "pid"
	TagStatus  = "status"
	TagLatency = "latency"
	TagMethod  = "method"
	TagPath    = "path"
	TagIP      = "ip"
	TagBody    = "body"
	TagResBody = "res_body"
	TagUserID  = "user_id"
	RequestID  = "request_id"
)

const defaultMaxBodySize = 2048

type data struct {
	pid   int
	start time.Time
	end   time.Time
}

// FuncTag returns the value logged under a tag.
type FuncTag func(c *fiber.Ctx, d *data) interface{}

func getFuncTagMap(cfg Config, d *data) map[string]FuncTag {
	maxBody := cfg.MaxBodySize
	if maxBody <= 0 {
		maxBody = defaultMaxBodySize
	}
	all := map[string]FuncTag{
		TagPid: func(c *fiber.Ctx, d *data) interface{} {
			return d.pid
		},
		TagStatus: func(c *fiber.Ctx, d *data) interface{} {
			return c.Response().StatusCode()
		},
		TagLatency: func(c *fiber.Ctx, d *data) interface{} {
			return d.end.Sub(d.start).String()
		},
		TagMethod: func(c *fiber.Ctx, d *data) interface{} {
			return c.Method()
		},
		TagPath: func(c *fiber.Ctx, d *data) interface{} {
			return c.Path()
		},
		TagIP: func(c *fiber.Ctx, d *data) interface{} {
			return c.IP()
		},
		TagBody: func(c *fiber.Ctx, d *data) interface{} {
			if isMultipart(c) {
				return ""
			}
			return truncate(string(c.Body()), maxBody)
		},
		TagResBody: func(c *fiber.Ctx, d *data) interface{} {
			if !isJSONResponse(c) {
				return ""
			}
			return truncate(string(c.Response().Body()), maxBody)
		},
		TagUserID: func(c *fiber.Ctx, d *data) interface{} {
			userID, _ := c.Locals("userID").(string)
			return userID
		},
		RequestID: func(c *fiber.Ctx, d *data) interface{} {
			return string(c.Response().Header.Peek(fiber.HeaderXRequestID))
		},
	}
	result := make(map[string]FuncTag, len(cfg.Tags))
	for _, tag := range cfg.Tags {
		if ft, ok := all[tag]; ok {
			result[tag] = ft
		}
	}
	return result
}

func isMultipart(c *fiber.Ctx) bool {
	return len(c.Request().Header.MultipartFormBoundary()) != 0
}

func isJSONResponse(c *fiber.Ctx) bool {
	contentType := string(c.Response().Header.ContentType())
	return len(contentType) >= len(fiber.MIMEApplicationJSON) && contentType[:len(fiber.MIMEApplicationJSON)] == fiber.MIMEApplicationJSON
}

func truncate(value string, size int) string {
	if len(value) <= size {
		return value
	}
	return value[:size] + "..."
}
