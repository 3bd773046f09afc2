package loggingmw

import (
	"bytes"
	"encoding/json"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/labstack/echo/v4"
	"github.com/stretchr/testify/require"

	"github.com/skvortsov/shop-backend/internal/logging"
)

func TestRequestLoggerCompletionLine(t *testing.T) {
	var buf bytes.Buffer
	base := slog.New(slog.NewJSONHandler(&buf, nil))

	e := echo.New()
	req := httptest.NewRequest(http.MethodGet, "/cart", nil)
	rec := httptest.NewRecorder()
	c := e.NewContext(req, rec)

	handler := func(c echo.Context) error {
		// what the auth gate leaves behind
		c.Set("userID", uint(5))
		c.Set("role", "user")

		// downstream code sees the per-request logger
		l := logging.FromContext(c.Request().Context())
		require.NotNil(t, l)
		return c.NoContent(http.StatusOK)
	}

	require.NoError(t, RequestLogger(base)(handler)(c))

	var line map[string]any
	require.NoError(t, json.Unmarshal(buf.Bytes(), &line))
	require.Equal(t, "request completed", line["msg"])
	require.Equal(t, "GET", line["method"])
	require.EqualValues(t, http.StatusOK, line["status"])
	require.EqualValues(t, 5, line["user_id"])
	require.Equal(t, "user", line["role"])
}

func TestRequestLoggerErrorLine(t *testing.T) {
	var buf bytes.Buffer
	base := slog.New(slog.NewJSONHandler(&buf, nil))

	e := echo.New()
	req := httptest.NewRequest(http.MethodGet, "/orders", nil)
	rec := httptest.NewRecorder()
	c := e.NewContext(req, rec)

	handler := func(c echo.Context) error {
		return echo.NewHTTPError(http.StatusNotFound, "no orders found")
	}

	require.NoError(t, RequestLogger(base)(handler)(c))
	require.Equal(t, http.StatusNotFound, rec.Code)

	var line map[string]any
	require.NoError(t, json.Unmarshal(buf.Bytes(), &line))
	require.Equal(t, "request completed", line["msg"])
	require.EqualValues(t, http.StatusNotFound, line["status"])
	require.Equal(t, "ERROR", line["level"])
	require.Contains(t, line["error"], "no orders found")
}
