package response

import (
	"Rendezvous/internal/api/dto"
	"Rendezvous/internal/service"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/goccy/go-json"
	pkgerrors "github.com/pkg/errors"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func run(t *testing.T, fn func(c *gin.Context)) (*httptest.ResponseRecorder, *dto.Response) {
	t.Helper()
	gin.SetMode(gin.TestMode)
	w := httptest.NewRecorder()
	c, _ := gin.CreateTestContext(w)
	c.Request = httptest.NewRequest(http.MethodGet, "/", nil)
	fn(c)

	res := &dto.Response{}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), res))
	return w, res
}

func TestSuccess(t *testing.T) {
	w, res := run(t, func(c *gin.Context) { Success(c, map[string]int{"n": 1}) })
	assert.Equal(t, http.StatusOK, w.Code)
	assert.True(t, res.Success)
	assert.Equal(t, Ok, res.Code)
}

func TestError_BusinessError(t *testing.T) {
	w, res := run(t, func(c *gin.Context) {
		Error(c, pkgerrors.WithMessage(service.ErrMessageNotFound, "id=1"))
	})
	assert.Equal(t, http.StatusNotFound, w.Code)
	assert.False(t, res.Success)
	assert.Equal(t, NotFound, res.Code)
	assert.Equal(t, service.ErrMessageNotFound.Error(), res.Message)
	assert.Contains(t, res.Error, "id=1")
}

func TestError_UnknownErrorIsSanitized(t *testing.T) {
	w, res := run(t, func(c *gin.Context) {
		Error(c, errors.New("dial tcp 10.0.0.1:3306: connection refused"))
	})
	assert.Equal(t, http.StatusInternalServerError, w.Code)
	assert.Equal(t, service.UnExpectedError.Error(), res.Message)
	assert.Empty(t, res.Error)
}
