package sim

import (
	"time"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"github.com/sriram629/AI-ChatBot/client/internal/id"
	"github.com/sriram629/AI-ChatBot/client/internal/logging"
	"github.com/sriram629/AI-ChatBot/client/internal/protocol"
)

const traceKey = "trace_id"

// Trace propagates the caller's trace id, minting one when absent, and logs
// each request under it.
func Trace(logger *logging.Logger) gin.HandlerFunc {
	return func(c *gin.Context) {
		traceID := c.GetHeader(protocol.TraceHeader)
		if traceID == "" {
			traceID = id.NewTraceID()
		}
		c.Set(traceKey, traceID)
		c.Header(protocol.TraceHeader, traceID)

		start := time.Now()
		c.Next()

		logger.Debug("Request",
			zap.String(traceKey, traceID),
			zap.String("method", c.Request.Method),
			zap.String("path", c.FullPath()),
			zap.Int("status", c.Writer.Status()),
			zap.Duration("duration", time.Since(start)))
	}
}

// traceField returns the request's trace id as a log field
func traceField(c *gin.Context) zap.Field {
	return zap.String(traceKey, c.GetString(traceKey))
}
