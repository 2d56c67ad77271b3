package middleware

import (
	"time"

	"github.com/gin-gonic/gin"

	"github.com/yungbote/bookgraph/internal/observability"
)

// Metrics records request counts, latency and in-flight requests per matched route.
func Metrics(m *observability.Metrics) gin.HandlerFunc {
	if m == nil {
		return func(c *gin.Context) { c.Next() }
	}
	return func(c *gin.Context) {
		start := time.Now()
		m.APIInflightInc()
		defer m.APIInflightDec()

		c.Next()

		m.ObserveAPI(c.Request.Method, c.FullPath(), c.Writer.Status(), time.Since(start))
	}
}
