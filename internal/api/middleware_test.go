package api

import (
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/taskboard/taskboard/internal/testutil"
)

func Test_authMiddleware(t *testing.T) {
	app := &TaskboardApp{
		log:        testutil.TestLogger(t),
		signingKey: []byte("secret"),
	}

	t.Run("valid credential", func(t *testing.T) {
		token, err := app.createJwtForSession(42, time.Hour)
		assert.NoError(t, err, "expected no error creating token")

		var gotUserId int
		var gotOk bool
		handler := app.authMiddleware(func(w http.ResponseWriter, r *http.Request) {
			gotUserId, gotOk = UserId(r.Context())
			w.WriteHeader(http.StatusOK)
		})

		req := httptest.NewRequest(http.MethodGet, "/api/projects", nil)
		req.AddCookie(createJwtCookie(token, time.Hour))
		rr := httptest.NewRecorder()
		handler(rr, req)

		assert.Equal(t, http.StatusOK, rr.Code, "expected request to pass through")
		assert.True(t, gotOk, "expected user id in context")
		assert.Equal(t, 42, gotUserId, "expected resolved user id")
		assert.NotEmpty(t, rr.Header().Get("Cache-Control"), "expected cache control header")
	})

	t.Run("missing credential", func(t *testing.T) {
		handler := app.authMiddleware(func(w http.ResponseWriter, r *http.Request) {
			t.Error("expected handler not to be called")
		})

		req := httptest.NewRequest(http.MethodGet, "/api/projects", nil)
		rr := httptest.NewRecorder()
		handler(rr, req)

		assert.Equal(t, http.StatusUnauthorized, rr.Code, "expected unauthorized response")
	})

	t.Run("invalid credential", func(t *testing.T) {
		handler := app.authMiddleware(func(w http.ResponseWriter, r *http.Request) {
			t.Error("expected handler not to be called")
		})

		req := httptest.NewRequest(http.MethodGet, "/api/projects", nil)
		req.Header.Set("Authorization", "Bearer garbage")
		rr := httptest.NewRecorder()
		handler(rr, req)

		assert.Equal(t, http.StatusUnauthorized, rr.Code, "expected unauthorized response")
	})
}

func Test_errorHandler(t *testing.T) {
	app := &TaskboardApp{log: testutil.TestLogger(t)}

	t.Run("recovers from panic", func(t *testing.T) {
		handler := app.errorHandler(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			panic("boom")
		}))

		req := httptest.NewRequest(http.MethodGet, "/", nil)
		rr := httptest.NewRecorder()
		handler.ServeHTTP(rr, req)

		assert.Equal(t, http.StatusInternalServerError, rr.Code, "expected internal server error")
		assert.Equal(t, "close", rr.Header().Get("Connection"), "expected connection close header")
	})

	t.Run("passes through", func(t *testing.T) {
		handler := app.errorHandler(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			w.WriteHeader(http.StatusTeapot)
		}))

		req := httptest.NewRequest(http.MethodGet, "/", nil)
		rr := httptest.NewRecorder()
		handler.ServeHTTP(rr, req)

		assert.Equal(t, http.StatusTeapot, rr.Code, "expected handler status to pass through")
	})
}
