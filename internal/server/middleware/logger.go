package middleware

import (
	"log/slog"
	"time"

	"github.com/gin-gonic/gin"
)

// routeContextParams are the query parameters that identify what a request
// operates on. When present they are promoted to log fields so a batch or
// agreement can be grepped across requests.
var routeContextParams = []struct {
	query string
	field string
}{
	{"batchId", "batch_id"},
	{"jobId", "job_id"},
	{"agreementNumber", "agreement_number"},
}

// Logger emits one structured line per request after the handler runs,
// carrying the correlation ID and any batch, job, or agreement identifiers
// from the query string.
func Logger(logger *slog.Logger) gin.HandlerFunc {
	return func(c *gin.Context) {
		start := time.Now()
		path := c.Request.URL.Path
		query := c.Request.URL.RawQuery

		c.Next()

		attrs := []any{
			"method", c.Request.Method,
			"path", path,
			"status", c.Writer.Status(),
			"latency", time.Since(start),
			"client_ip", c.ClientIP(),
		}
		if query != "" {
			attrs = append(attrs, "query", query)
		}
		for _, p := range routeContextParams {
			if v := c.Query(p.query); v != "" {
				attrs = append(attrs, p.field, v)
			}
		}
		if id := GetCorrelationID(c); id != "" {
			attrs = append(attrs, "correlation_id", id)
		}

		logger.Info("HTTP request", attrs...)
	}
}
