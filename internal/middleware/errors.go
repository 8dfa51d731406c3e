package middleware

import (
	"fmt"
	"io"
	"log/slog"

	"portal/internal/apperr"
	"portal/pkg/response"

	"github.com/gin-gonic/gin"
)

// ErrorResponder turns the last error attached with c.Error into a {"message"} response.
// The stack trace is included only for server errors outside production.
func ErrorResponder(logger *slog.Logger, production bool) gin.HandlerFunc {
	return func(c *gin.Context) {
		c.Next()
		if len(c.Errors) == 0 {
			return
		}
		respond(c, logger, production, c.Errors.Last().Err)
	}
}

// Recovery converts panics into internal errors answered by the same responder.
func Recovery(logger *slog.Logger, production bool) gin.HandlerFunc {
	return gin.CustomRecoveryWithWriter(io.Discard, func(c *gin.Context, recovered any) {
		respond(c, logger, production, apperr.Internal(fmt.Errorf("panic: %v", recovered)))
		c.Abort()
	})
}

func respond(c *gin.Context, logger *slog.Logger, production bool, err error) {
	appErr := apperr.From(err)
	status := appErr.Kind.Status()

	level := slog.LevelWarn
	if status >= 500 {
		level = slog.LevelError
	}
	logger.LogAttrs(c.Request.Context(), level, "request failed",
		slog.String("method", c.Request.Method),
		slog.String("path", c.Request.URL.Path),
		slog.Int("status", status),
		slog.String("kind", appErr.Kind.String()),
		slog.String("error", appErr.Error()),
	)

	if c.Writer.Written() {
		return
	}

	stack := ""
	if !production && status >= 500 {
		stack = appErr.Stack()
	}
	c.JSON(status, response.Error(appErr.Message, stack))
}
