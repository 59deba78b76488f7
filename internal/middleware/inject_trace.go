// Package middleware contains the gin middleware shared by all routes.
package middleware

import (
	"github.com/gin-gonic/gin"

	"server-notes/internal/utils"
)

const traceHeader = "X-Trace-Id"

// InjectTrace tags every request with a trace id, which is logged with every message and returned to the client.
func InjectTrace() gin.HandlerFunc {
	return func(c *gin.Context) {
		traceId := utils.GenerateTraceId()
		c.Set(utils.TraceIdKey.String(), traceId)
		c.Header(traceHeader, traceId)
		c.Next()
	}
}
