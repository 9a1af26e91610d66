package middleware

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/warbler-app/warbler/internal/models"
	"github.com/warbler-app/warbler/pkg/logger"
)

type stubSessions map[string]uint

func (s stubSessions) Resolve(_ context.Context, token string) (uint, bool, error) {
	if token == "broken" {
		return 0, false, errors.New("redis down")
	}
	id, ok := s[token]
	return id, ok, nil
}

type stubUsers map[uint]*models.User

func (u stubUsers) GetUser(_ context.Context, id uint) (*models.User, error) {
	if user, ok := u[id]; ok {
		return user, nil
	}
	return nil, models.NewNotFoundError("User", id)
}

func newTestRouter() *gin.Engine {
	gin.SetMode(gin.TestMode)
	sessions := stubSessions{"alice-token": 1, "ghost-token": 9}
	users := stubUsers{1: {ID: 1, Username: "alice"}}

	r := gin.New()
	r.Use(SessionAuth(sessions, users, logger.NewNopLogger()))
	r.GET("/whoami", func(c *gin.Context) {
		if user := GetCurrentUser(c); user != nil {
			c.String(http.StatusOK, user.Username)
			return
		}
		c.String(http.StatusOK, "anonymous")
	})
	r.GET("/private", RequireUser(), func(c *gin.Context) {
		c.String(http.StatusOK, GetToken(c))
	})
	return r
}

func TestSessionAuth(t *testing.T) {
	r := newTestRouter()

	tests := []struct {
		name   string
		setup  func(*http.Request)
		status int
		body   string
	}{
		{"no token", func(*http.Request) {}, http.StatusOK, "anonymous"},
		{"bearer", func(r *http.Request) { r.Header.Set("Authorization", "Bearer alice-token") }, http.StatusOK, "alice"},
		{"cookie", func(r *http.Request) { r.AddCookie(&http.Cookie{Name: SessionCookie, Value: "alice-token"}) }, http.StatusOK, "alice"},
		{"unknown token", func(r *http.Request) { r.Header.Set("Authorization", "Bearer nope") }, http.StatusOK, "anonymous"},
		{"bad scheme", func(r *http.Request) { r.Header.Set("Authorization", "Basic alice-token") }, http.StatusOK, "anonymous"},
		{"deleted user", func(r *http.Request) { r.Header.Set("Authorization", "Bearer ghost-token") }, http.StatusOK, "anonymous"},
		{"store failure", func(r *http.Request) { r.Header.Set("Authorization", "Bearer broken") }, http.StatusInternalServerError, ""},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			req := httptest.NewRequest(http.MethodGet, "/whoami", nil)
			tt.setup(req)
			w := httptest.NewRecorder()
			r.ServeHTTP(w, req)

			assert.Equal(t, tt.status, w.Code)
			if tt.body != "" {
				assert.Equal(t, tt.body, w.Body.String())
			}
		})
	}
}

func TestRequireUser(t *testing.T) {
	r := newTestRouter()

	w := httptest.NewRecorder()
	r.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/private", nil))
	assert.Equal(t, http.StatusUnauthorized, w.Code)
	assert.Contains(t, w.Body.String(), models.CodeUnauthorized)

	req := httptest.NewRequest(http.MethodGet, "/private", nil)
	req.Header.Set("Authorization", "Bearer alice-token")
	w = httptest.NewRecorder()
	r.ServeHTTP(w, req)
	assert.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, "alice-token", w.Body.String())
}

func TestCORSPreflight(t *testing.T) {
	gin.SetMode(gin.TestMode)
	r := gin.New()
	r.Use(CORS())
	r.GET("/x", func(c *gin.Context) { c.Status(http.StatusOK) })

	w := httptest.NewRecorder()
	r.ServeHTTP(w, httptest.NewRequest(http.MethodOptions, "/x", nil))
	assert.Equal(t, http.StatusNoContent, w.Code)
	assert.Equal(t, "*", w.Header().Get("Access-Control-Allow-Origin"))
}
