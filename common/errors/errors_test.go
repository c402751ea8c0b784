package errors

import (
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func init() {
	gin.SetMode(gin.TestMode)
}

func TestRespond(t *testing.T) {
	tests := []struct {
		name       string
		err        error
		wantStatus int
		wantBody   map[string]string
	}{
		{"bad request with detail", BadRequest("Invalid CSV file", errors.New("bare quote")), 400,
			map[string]string{"message": "Invalid CSV file", "error": "bare quote"}},
		{"not found", NotFound("Product not found"), 404, map[string]string{"message": "Product not found"}},
		{"internal hides cause", Internal("Bulk insert failed", errors.New("socket closed")), 500,
			map[string]string{"message": "Bulk insert failed"}},
		{"plain error", errors.New("boom"), 500, map[string]string{"message": "Internal server error"}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			w := httptest.NewRecorder()
			c, _ := gin.CreateTestContext(w)
			Respond(c, tt.err)

			assert.Equal(t, tt.wantStatus, w.Code)
			var body map[string]string
			require.NoError(t, json.Unmarshal(w.Body.Bytes(), &body))
			assert.Equal(t, tt.wantBody, body)
		})
	}
}

func TestErrorMiddleware(t *testing.T) {
	r := gin.New()
	r.Use(ErrorMiddleware())
	r.GET("/fail", func(c *gin.Context) {
		_ = c.Error(Conflict("Product already exists", nil))
	})

	w := httptest.NewRecorder()
	r.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/fail", nil))
	assert.Equal(t, http.StatusConflict, w.Code)
	assert.JSONEq(t, `{"message":"Product already exists"}`, w.Body.String())
}
