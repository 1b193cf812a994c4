package api

import (
	"time"

	"github.com/gin-gonic/gin"

	"github.com/signalsfoundry/mission-designer/internal/logging"
)

// RequestIDHeader carries the request id in both directions.
const RequestIDHeader = "X-Request-ID"

// RequestLogger ensures every request has a request_id, taken from the
// inbound header when present, and stores a per-request logger on the
// request context. The id is echoed back in the response header.
func RequestLogger(base logging.Logger) gin.HandlerFunc {
	if base == nil {
		base = logging.Noop()
	}
	return func(c *gin.Context) {
		ctx := c.Request.Context()
		if incoming := c.GetHeader(RequestIDHeader); incoming != "" {
			ctx = logging.ContextWithRequestID(ctx, incoming)
		}
		ctx, reqLog := logging.WithRequestLogger(ctx, base.With(
			logging.String("http_method", c.Request.Method),
			logging.String("route", c.FullPath()),
		))
		ctx = logging.ContextWithLogger(ctx, reqLog)
		c.Request = c.Request.WithContext(ctx)
		c.Header(RequestIDHeader, logging.RequestIDFromContext(ctx))

		start := time.Now()
		c.Next()
		reqLog.Debug(ctx, "request handled",
			logging.Int("status", c.Writer.Status()),
			logging.Float("duration_ms", float64(time.Since(start).Microseconds())/1000),
		)
	}
}
