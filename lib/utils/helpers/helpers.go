package helpers

import (
	"context"
	"mime/multipart"
	"net/http"
	"strings"
)

func IsContextDone(ctx context.Context) bool {
	if ctx == nil {
		return true
	}
	select {
	case <-ctx.Done():
		return true
	default:
	}
	return false
}

// GetFileContentType prefers the declared part type and sniffs the content otherwise.
func GetFileContentType(file *multipart.FileHeader, body []byte) string {
	contentType := strings.TrimSpace(file.Header.Get("Content-Type"))
	if contentType != "" && contentType != "application/octet-stream" {
		return contentType
	}
	return http.DetectContentType(body)
}
