// README: HTTP helper utilities for JSON and validation.
package http

import "github.com/gin-gonic/gin"

type errorResponse struct {
	Error string `json:"error"`
}

// isValidID keeps conversation IDs boring: alphanumerics, dash and
// underscore, at most 64 chars.
func isValidID(v string) bool {
	if len(v) > 64 {
		return false
	}
	for _, c := range v {
		if (c >= '0' && c <= '9') || (c >= 'a' && c <= 'z') || (c >= 'A' && c <= 'Z') || c == '-' || c == '_' {
			continue
		}
		return false
	}
	return true
}

func writeJSON(c *gin.Context, status int, v any) {
	c.JSON(status, v)
}

func writeError(c *gin.Context, status int, msg string) {
	writeJSON(c, status, errorResponse{Error: msg})
}
