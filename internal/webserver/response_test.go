package webserver

import (
	"net/http"
	"net/http/httptest"
	"testing"

	jsoniter "github.com/json-iterator/go"
	"github.com/labstack/echo/v4"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestContext(t *testing.T, target string) (echo.Context, *httptest.ResponseRecorder) {
	t.Helper()
	e := echo.New()
	e.Validator = NewValidator()
	req := httptest.NewRequest(http.MethodGet, target, nil)
	rec := httptest.NewRecorder()
	return e.NewContext(req, rec), rec
}

func TestOKEnvelope(t *testing.T) {
	c, rec := newTestContext(t, "/")
	require.NoError(t, OK(c, map[string]string{"hello": "world"}))

	assert.Equal(t, http.StatusOK, rec.Code)
	var body map[string]interface{}
	require.NoError(t, jsoniter.Unmarshal(rec.Body.Bytes(), &body))
	assert.Equal(t, "OK", body["code"])
	assert.Equal(t, map[string]interface{}{"hello": "world"}, body["data"])
}

func TestFailEnvelope(t *testing.T) {
	c, rec := newTestContext(t, "/")
	require.NoError(t, Fail(c, http.StatusConflict, "STOCK_CONFLICT", "Not enough stock", nil))

	assert.Equal(t, http.StatusConflict, rec.Code)
	var body map[string]interface{}
	require.NoError(t, jsoniter.Unmarshal(rec.Body.Bytes(), &body))
	assert.Equal(t, "STOCK_CONFLICT", body["code"])
	assert.Equal(t, "Not enough stock", body["msg"])
}

func TestParsePagination(t *testing.T) {
	tests := []struct {
		query    string
		page     int
		pageSize int
	}{
		{"/", 1, 20},
		{"/?page=3&pageSize=50", 3, 50},
		{"/?page=0&pageSize=-1", 1, 20},
		{"/?pageSize=9999", 1, 20},
	}
	for _, tt := range tests {
		c, _ := newTestContext(t, tt.query)
		page, pageSize := ParsePagination(c)
		assert.Equal(t, tt.page, page, tt.query)
		assert.Equal(t, tt.pageSize, pageSize, tt.query)
	}
}

func TestValidatorReportsFields(t *testing.T) {
	type payload struct {
		Email string `json:"email" validate:"required,email"`
	}
	c, _ := newTestContext(t, "/")
	err := c.Echo().Validator.Validate(&payload{Email: "not-an-email"})
	assert.Error(t, err)
}
