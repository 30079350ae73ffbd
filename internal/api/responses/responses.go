// internal/api/responses/responses.go
package responses

import (
	"sync/atomic"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
)

var logger atomic.Pointer[zap.Logger]

// InitLogger sets the logger used to record error responses.
func InitLogger(l *zap.Logger) {
	if l == nil {
		l = zap.NewNop()
	}
	logger.Store(l)
}

func current() *zap.Logger {
	if l := logger.Load(); l != nil {
		return l
	}
	return zap.NewNop()
}

// ErrorBody is the JSON body of every error response.
type ErrorBody struct {
	Error   string   `json:"error"`
	Details []string `json:"details,omitempty"`
}

// Error aborts the request with {"error": message} and the optional details.
func Error(c *gin.Context, status int, message string, details ...string) {
	fields := []zap.Field{
		zap.Int("status", status),
		zap.String("path", c.Request.URL.Path),
		zap.String("error", message),
	}
	if len(details) > 0 {
		fields = append(fields, zap.Strings("details", details))
	}

	if status >= 500 {
		current().Error("request failed", fields...)
	} else {
		current().Warn("request rejected", fields...)
	}

	c.AbortWithStatusJSON(status, ErrorBody{Error: message, Details: details})
}
