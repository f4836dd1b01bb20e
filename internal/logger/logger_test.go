package logger_test

import (
	"bytes"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"

	"github.com/Fooxyj/dacha/internal/logger"
)

func TestRequestIDAndMiddleware(t *testing.T) {
	gin.SetMode(gin.TestMode)

	var buf bytes.Buffer
	log := logger.New("debug", "json", &buf)

	r := gin.New()
	r.Use(logger.RequestID(), logger.Middleware(log))
	r.GET("/ping", func(c *gin.Context) { c.String(http.StatusOK, "pong") })

	t.Run("Generates a request ID when none is sent", func(t *testing.T) {
		buf.Reset()
		rec := httptest.NewRecorder()
		r.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/ping", nil))

		assert.Equal(t, http.StatusOK, rec.Code)
		assert.NotEmpty(t, rec.Header().Get(logger.RequestIDHeader))

		var line map[string]any
		assert.NoError(t, json.Unmarshal(buf.Bytes(), &line))
		assert.Equal(t, rec.Header().Get(logger.RequestIDHeader), line["request_id"])
		assert.Equal(t, "/ping", line["path"])
		assert.Equal(t, "dacha-api", line["service"])
	})

	t.Run("Keeps an inbound request ID", func(t *testing.T) {
		rec := httptest.NewRecorder()
		req := httptest.NewRequest(http.MethodGet, "/ping", nil)
		req.Header.Set(logger.RequestIDHeader, "abc-123")
		r.ServeHTTP(rec, req)

		assert.Equal(t, "abc-123", rec.Header().Get(logger.RequestIDHeader))
	})
}
