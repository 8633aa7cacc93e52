package middleware

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/labstack/echo/v4"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRequestTimeoutMiddleware(t *testing.T) {
	t.Run("attaches a deadline to the request context", func(t *testing.T) {
		e := echo.New()
		req := httptest.NewRequest(http.MethodGet, "/", nil)
		rec := httptest.NewRecorder()
		c := e.NewContext(req, rec)

		var deadline time.Time
		var hasDeadline bool
		handler := RequestTimeoutMiddleware(5 * time.Second)(func(c echo.Context) error {
			deadline, hasDeadline = c.Request().Context().Deadline()
			return c.NoContent(http.StatusOK)
		})

		require.NoError(t, handler(c))
		require.True(t, hasDeadline)
		remaining := time.Until(deadline)
		assert.Greater(t, remaining, time.Duration(0))
		assert.LessOrEqual(t, remaining, 5*time.Second)
	})

	t.Run("expired deadline surfaces through the request context", func(t *testing.T) {
		e := echo.New()
		req := httptest.NewRequest(http.MethodGet, "/", nil)
		rec := httptest.NewRecorder()
		c := e.NewContext(req, rec)

		handler := RequestTimeoutMiddleware(time.Nanosecond)(func(c echo.Context) error {
			<-c.Request().Context().Done()
			return c.Request().Context().Err()
		})

		err := handler(c)
		assert.ErrorIs(t, err, context.DeadlineExceeded)
	})

	t.Run("non-positive timeout leaves the context unbounded", func(t *testing.T) {
		e := echo.New()
		req := httptest.NewRequest(http.MethodGet, "/", nil)
		rec := httptest.NewRecorder()
		c := e.NewContext(req, rec)

		handler := RequestTimeoutMiddleware(0)(func(c echo.Context) error {
			_, hasDeadline := c.Request().Context().Deadline()
			assert.False(t, hasDeadline)
			return c.NoContent(http.StatusOK)
		})

		require.NoError(t, handler(c))
	})
}
