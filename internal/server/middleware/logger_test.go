package middleware

import (
	"bytes"
	"log/slog"
	"net/http"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newCaptureLogger() (*slog.Logger, *bytes.Buffer) {
	buf := &bytes.Buffer{}
	return slog.New(slog.NewJSONHandler(buf, nil)), buf
}

func TestLogger(t *testing.T) {
	gin.SetMode(gin.TestMode)

	newRouter := func(logger *slog.Logger) *gin.Engine {
		router := gin.New()
		router.Use(CorrelationID(), Logger(logger))
		router.GET("/docuflow/jobs/stats", func(c *gin.Context) {
			c.Status(http.StatusOK)
		})
		router.POST("/docuflow/citi_data", func(c *gin.Context) {
			c.Status(http.StatusCreated)
		})
		return router
	}

	t.Run("PromotesRouteContextToFields", func(t *testing.T) {
		logger, buf := newCaptureLogger()
		router := newRouter(logger)

		req, _ := http.NewRequest(http.MethodGet,
			"/docuflow/jobs/stats?batchId=1714497600000&agreementNumber=5123456789", nil)
		rec := performRequest(router, req)

		require.Equal(t, http.StatusOK, rec.Code)

		line := buf.String()
		assert.Contains(t, line, `"msg":"HTTP request"`)
		assert.Contains(t, line, `"method":"GET"`)
		assert.Contains(t, line, `"path":"/docuflow/jobs/stats"`)
		assert.Contains(t, line, `"status":200`)
		assert.Contains(t, line, `"batch_id":"1714497600000"`)
		assert.Contains(t, line, `"agreement_number":"5123456789"`)
		assert.NotContains(t, line, `"job_id"`, "absent params must not appear")
	})

	t.Run("CarriesCorrelationID", func(t *testing.T) {
		logger, buf := newCaptureLogger()
		router := newRouter(logger)

		id := uuid.NewString()
		req, _ := http.NewRequest(http.MethodPost, "/docuflow/citi_data", nil)
		req.Header.Set(CorrelationIDHeader, id)
		rec := performRequest(router, req)

		require.Equal(t, http.StatusCreated, rec.Code)

		line := buf.String()
		assert.Contains(t, line, `"status":201`)
		assert.Contains(t, line, `"correlation_id":"`+id+`"`)
		assert.Contains(t, line, `"latency":`)
		assert.Contains(t, line, `"client_ip":`)
	})

	t.Run("PlainRequestLogsNoQueryField", func(t *testing.T) {
		logger, buf := newCaptureLogger()
		router := newRouter(logger)

		req, _ := http.NewRequest(http.MethodPost, "/docuflow/citi_data", nil)
		rec := performRequest(router, req)

		require.Equal(t, http.StatusCreated, rec.Code)
		assert.NotContains(t, buf.String(), `"query"`)
	})
}
