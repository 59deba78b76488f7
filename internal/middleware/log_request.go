package middleware

import (
	"time"

	"github.com/gin-gonic/gin"
	log "github.com/sirupsen/logrus"

	"server-notes/internal/utils"
)

// LogRequest logs every request once it was handled, together with its status and latency.
func LogRequest() gin.HandlerFunc {
	return func(ctx *gin.Context) {
		start := time.Now()
		utils.LogMessageWithFields(ctx, "info", "Request received: "+ctx.Request.Method+" "+ctx.Request.URL.Path)

		ctx.Next()

		entry := log.WithFields(log.Fields{
			"traceId": ctx.GetString(utils.TraceIdKey.String()),
			"service": utils.ExtractServiceName(),
			"status":  ctx.Writer.Status(),
			"latency": time.Since(start).String(),
		})
		utils.LogEntry(entry, "info", "Request handled: "+ctx.Request.Method+" "+ctx.Request.URL.Path)
	}
}
