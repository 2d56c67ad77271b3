package middleware

import (
	"fmt"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/yungbote/bookgraph/internal/http/response"
	"github.com/yungbote/bookgraph/internal/platform/logger"
)

// Recover turns a handler panic into a 500 JSON error and logs it.
func Recover(log *logger.Logger) gin.HandlerFunc {
	return gin.CustomRecoveryWithWriter(nil, func(c *gin.Context, recovered any) {
		if log != nil {
			log.Error("panic recovered", "path", c.Request.URL.Path, "panic", fmt.Sprint(recovered))
		}
		response.RespondError(c, http.StatusInternalServerError, "internal_error", fmt.Errorf("internal error"))
		c.Abort()
	})
}
