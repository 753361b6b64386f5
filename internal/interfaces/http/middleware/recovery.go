package middleware

import (
	"fmt"
	"net/http"
	"runtime/debug"

	"github.com/gin-gonic/gin"

	apperrors "webgen-ai-api/pkg/errors"
	"webgen-ai-api/pkg/logger"
)

// Recovery Panic 恢复中间件，记录堆栈并返回 500
func Recovery() gin.HandlerFunc {
	return func(c *gin.Context) {
		defer func() {
			rec := recover()
			if rec == nil {
				return
			}
			logger.Error(c.Request.Context(), "panic recovered",
				fmt.Errorf("%v", rec),
				"stack", string(debug.Stack()),
				"method", c.Request.Method,
				"path", c.Request.URL.Path,
			)
			c.AbortWithStatusJSON(http.StatusInternalServerError, gin.H{
				"code":    apperrors.CodeInternalError,
				"message": "internal server error",
			})
		}()
		c.Next()
	}
}
