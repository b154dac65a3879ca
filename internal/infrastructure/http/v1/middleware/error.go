package middleware

import (
	"github.com/gin-gonic/gin"

	"confhub/internal/core/apperror"
	appctx "confhub/internal/core/context"
	"confhub/pkg/logger"
)

// ErrorHandler renders the last error a handler recorded as
// {code, message, details}. Errors that are not AppErrors become a 500
// carrying only the request id; their text is logged, never returned.
func ErrorHandler() gin.HandlerFunc {
	return func(c *gin.Context) {
		c.Next()

		if len(c.Errors) == 0 || c.Writer.Written() {
			return
		}

		ctx := c.Request.Context()
		err := c.Errors.Last().Err

		appErr, ok := apperror.AsAppError(err)
		if !ok {
			appErr = apperror.NewInternal(err)
		}
		if appErr.Code == apperror.CodeInternal {
			appErr.WithDetail("request_id", appctx.GetRequestID(ctx))
		}

		switch {
		case appErr.HTTPStatus >= 500:
			logger.Error(ctx, "request failed", "code", appErr.Code, "error", err)
		case appErr.Err != nil:
			logger.Warn(ctx, "request rejected", "code", appErr.Code, "cause", appErr.Err)
		}

		c.JSON(appErr.HTTPStatus, gin.H{
			"code":    appErr.Code,
			"message": appErr.Message,
			"details": appErr.Details,
		})
	}
}
