package middleware

import (
	"errors"

	"licensegate/pkg/errutil"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
)

// Error renders the last errutil.BaseError attached to the context.
func Error() gin.HandlerFunc {
	return func(c *gin.Context) {
		c.Next()

		last := c.Errors.Last()
		if last == nil || c.Writer.Written() {
			return
		}

		var v errutil.BaseError
		if errors.As(last.Err, &v) {
			zap.L().Warn("request failed",
				zap.String("path", c.FullPath()),
				zap.String("code", string(v.Code)),
				zap.Error(v.Unwrap()),
			)
			c.JSON(v.Code.HTTPStatus(), v.JSON())
			return
		}

		zap.L().Error("unhandled request error", zap.String("path", c.FullPath()), zap.Error(last.Err))
		c.JSON(errutil.StatusInternal.HTTPStatus(), errutil.BaseError{Code: errutil.StatusInternal, Message: "internal error"}.JSON())
	}
}
