package middleware

import (
	"bytes"
	"encoding/json"
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/sirupsen/logrus"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRequestLogger(t *testing.T) {
	gin.SetMode(gin.TestMode)

	var buf bytes.Buffer
	logger := logrus.New()
	logger.SetOutput(&buf)
	logger.SetFormatter(&logrus.JSONFormatter{})

	router := gin.New()
	router.Use(RequestLogger(logger))
	router.GET("/missing", func(c *gin.Context) {
		c.Set(ContextUserIDKey, uint(7))
		c.Status(404)
	})

	router.ServeHTTP(httptest.NewRecorder(), httptest.NewRequest("GET", "/missing", nil))

	var entry map[string]interface{}
	require.NoError(t, json.Unmarshal(buf.Bytes(), &entry))
	assert.Equal(t, "warning", entry["level"])
	assert.Equal(t, "/missing", entry["path"])
	assert.Equal(t, float64(404), entry["status"])
	assert.Equal(t, float64(7), entry["user_id"])
}
