package response

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

func testContext() (*gin.Context, *httptest.ResponseRecorder) {
	gin.SetMode(gin.TestMode)
	w := httptest.NewRecorder()
	c, _ := gin.CreateTestContext(w)
	c.Request = httptest.NewRequest(http.MethodGet, "/", nil)
	return c, w
}

func decode(t *testing.T, w *httptest.ResponseRecorder) Response {
	t.Helper()
	var resp Response
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
	return resp
}

func TestSuccess(t *testing.T) {
	c, w := testContext()

	Success(c, map[string]string{"id": "order-1"})

	assert.Equal(t, http.StatusOK, w.Code)
	resp := decode(t, w)
	assert.True(t, resp.Success)
	assert.Nil(t, resp.Error)
	assert.Equal(t, "order-1", resp.Data.(map[string]interface{})["id"])
}

func TestCreated(t *testing.T) {
	c, w := testContext()

	Created(c, map[string]string{"id": "event-1"})

	assert.Equal(t, http.StatusCreated, w.Code)
	assert.True(t, decode(t, w).Success)
}

func TestSuccessWithMeta(t *testing.T) {
	c, w := testContext()

	SuccessWithMeta(c, []string{"a", "b"}, map[string]int{"page": 2, "page_size": 10})

	assert.Equal(t, http.StatusOK, w.Code)
	resp := decode(t, w)
	assert.True(t, resp.Success)
	require.NotNil(t, resp.Meta)
	meta := resp.Meta.(map[string]interface{})
	assert.Equal(t, float64(2), meta["page"])
}

func TestNoContent(t *testing.T) {
	c, w := testContext()

	NoContent(c)
	c.Writer.WriteHeaderNow()

	assert.Equal(t, http.StatusNoContent, w.Code)
	assert.Empty(t, w.Body.String())
}

func TestError(t *testing.T) {
	c, w := testContext()

	Error(c, http.StatusConflict, "CANCELLATION_WINDOW_EXPIRED", "cancellation window expired", "order is 45m old")

	assert.Equal(t, http.StatusConflict, w.Code)
	resp := decode(t, w)
	assert.False(t, resp.Success)
	require.NotNil(t, resp.Error)
	assert.Equal(t, "CANCELLATION_WINDOW_EXPIRED", resp.Error.Code)
	assert.Equal(t, "cancellation window expired", resp.Error.Message)
	assert.Equal(t, "order is 45m old", resp.Error.Details)
}

func TestErrorHelpers(t *testing.T) {
	tests := []struct {
		name       string
		call       func(c *gin.Context)
		wantStatus int
		wantCode   string
	}{
		{
			name:       "internal error",
			call:       func(c *gin.Context) { InternalError(c, errors.New("boom")) },
			wantStatus: http.StatusInternalServerError,
			wantCode:   "INTERNAL_ERROR",
		},
		{
			name:       "bad request",
			call:       func(c *gin.Context) { BadRequest(c, "invalid quantity") },
			wantStatus: http.StatusBadRequest,
			wantCode:   "BAD_REQUEST",
		},
		{
			name:       "not found",
			call:       func(c *gin.Context) { NotFound(c, "order not found") },
			wantStatus: http.StatusNotFound,
			wantCode:   "NOT_FOUND",
		},
		{
			name:       "unauthorized",
			call:       func(c *gin.Context) { Unauthorized(c, "missing user") },
			wantStatus: http.StatusUnauthorized,
			wantCode:   "UNAUTHORIZED",
		},
		{
			name:       "conflict",
			call:       func(c *gin.Context) { Conflict(c, "window expired") },
			wantStatus: http.StatusConflict,
			wantCode:   "CONFLICT",
		},
		{
			name:       "unprocessable entity",
			call:       func(c *gin.Context) { UnprocessableEntity(c, "not enough tickets") },
			wantStatus: http.StatusUnprocessableEntity,
			wantCode:   "UNPROCESSABLE_ENTITY",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			c, w := testContext()

			tt.call(c)

			assert.Equal(t, tt.wantStatus, w.Code)
			resp := decode(t, w)
			assert.False(t, resp.Success)
			require.NotNil(t, resp.Error)
			assert.Equal(t, tt.wantCode, resp.Error.Code)
		})
	}
}
