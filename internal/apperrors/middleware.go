package apperrors

import (
	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"github.com/inna-tuzhikova/hasker/internal/metrics"
)

// Abort records err on the gin context and stops the handler chain.
// The response itself is written by Middleware.
func Abort(c *gin.Context, err error) {
	_ = c.Error(err)
	c.Abort()
}

// Middleware renders the last error recorded on the context as a JSON response.
func Middleware(logger *zap.Logger) gin.HandlerFunc {
	logger = logger.Named("http_errors")
	return func(c *gin.Context) {
		c.Next()

		last := c.Errors.Last()
		if last == nil {
			return
		}

		appErr := As(last.Err)
		metrics.HTTPErrorsTotal.WithLabelValues(string(appErr.Kind)).Inc()
		logError(logger, c, appErr)

		if c.Writer.Written() {
			return
		}
		c.JSON(appErr.HTTPStatus(), appErr.ToResponse())
	}
}

func logError(logger *zap.Logger, c *gin.Context, err *Error) {
	fields := []zap.Field{
		zap.String("error_type", string(err.Kind)),
		zap.String("message", err.Message),
		zap.String("method", c.Request.Method),
		zap.String("path", c.Request.URL.Path),
		zap.Int("status", err.HTTPStatus()),
	}
	for k, v := range err.Context {
		fields = append(fields, zap.Any(k, v))
	}
	if userID, ok := c.Get("user_id"); ok {
		fields = append(fields, zap.Any("user_id", userID))
	}

	switch err.Kind {
	case KindValidation, KindNotFound, KindUnauthorized, KindForbidden:
		logger.Info("Request rejected", fields...)
	case KindConflict, KindTooManyRequests:
		logger.Warn("Request rejected", fields...)
	default:
		if err.Cause != nil {
			fields = append(fields, zap.Error(err.Cause))
		}
		logger.Error("Request failed", fields...)
	}
}
