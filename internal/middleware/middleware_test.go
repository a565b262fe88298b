package middleware

import (
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/labstack/echo/v4"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func callWithKey(t *testing.T, configured, sent string) *httptest.ResponseRecorder {
	t.Helper()
	e := echo.New()
	req := httptest.NewRequest(http.MethodPost, "/api/orders", nil)
	if sent != "" {
		req.Header.Set("X-API-Key", sent)
	}
	rec := httptest.NewRecorder()
	c := e.NewContext(req, rec)

	h := APIKeyAuth(configured)(func(c echo.Context) error {
		return c.String(http.StatusOK, "passed")
	})
	require.NoError(t, h(c))
	return rec
}

func TestAPIKeyAuthAccepts(t *testing.T) {
	rec := callWithKey(t, "secret-key", "secret-key")
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "passed", rec.Body.String())
}

func TestAPIKeyAuthRejects(t *testing.T) {
	for _, sent := range []string{"", "wrong", "secret-key2"} {
		rec := callWithKey(t, "secret-key", sent)
		assert.Equal(t, http.StatusUnauthorized, rec.Code, "sent=%q", sent)
	}
}

func TestAPIKeyAuthOpenWhenUnconfigured(t *testing.T) {
	rec := callWithKey(t, "", "anything")
	assert.Equal(t, http.StatusOK, rec.Code)
}
