package middleware

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"go.uber.org/zap/zaptest/observer"

	"smartstock/internal/auth"
	"smartstock/internal/logger"
	"smartstock/internal/models"
)

var secret = []byte("mw-secret")

// sessions stands in for the repository's current-user singleton.
type sessions struct {
	user *models.User
	err  error
}

func (s *sessions) CurrentUser(context.Context) (*models.User, error) { return s.user, s.err }

func (s *sessions) login(t *testing.T, id, role string) string {
	t.Helper()
	u := models.User{ID: id, Username: "sam", Role: role}
	s.user = &u
	tok, err := auth.GenerateToken(secret, u, time.Now())
	require.NoError(t, err)
	return tok
}

func router(log *logger.Logger, s Sessions) *gin.Engine {
	gin.SetMode(gin.TestMode)
	r := gin.New()
	api := r.Group("/api", RequestLogger(log), AuthMiddleware(secret, s))
	api.GET("/whoami", func(c *gin.Context) {
		u, _ := CurrentUser(c)
		c.JSON(http.StatusOK, u)
	})
	api.DELETE("/thing", RequireRole(models.RoleAdmin), func(c *gin.Context) {
		c.Status(http.StatusNoContent)
	})
	return r
}

func do(r http.Handler, method, path, token string) *httptest.ResponseRecorder {
	req := httptest.NewRequest(method, path, nil)
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)
	return w
}

func TestAuthMiddleware(t *testing.T) {
	s := &sessions{}
	r := router(logger.Nop(), s)
	tok := s.login(t, "u1", models.RoleStaff)

	require.Equal(t, http.StatusUnauthorized, do(r, http.MethodGet, "/api/whoami", "").Code)

	req := httptest.NewRequest(http.MethodGet, "/api/whoami", nil)
	req.Header.Set("Authorization", tok)
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)
	require.Equal(t, http.StatusUnauthorized, w.Code, "missing Bearer prefix")

	require.Equal(t, http.StatusUnauthorized, do(r, http.MethodGet, "/api/whoami", "garbage").Code)

	w = do(r, http.MethodGet, "/api/whoami", tok)
	require.Equal(t, http.StatusOK, w.Code)
	require.JSONEq(t, `{"id":"u1","username":"sam","role":"staff"}`, w.Body.String())
}

func TestAuthMiddleware_TokenFollowsStoredSession(t *testing.T) {
	s := &sessions{}
	r := router(logger.Nop(), s)

	adminTok := s.login(t, "u1", models.RoleAdmin)
	require.Equal(t, http.StatusNoContent, do(r, http.MethodDelete, "/api/thing", adminTok).Code)

	t.Run("another login revokes the old token", func(t *testing.T) {
		staffTok := s.login(t, "u2", models.RoleStaff)
		require.Equal(t, http.StatusUnauthorized, do(r, http.MethodDelete, "/api/thing", adminTok).Code)
		require.Equal(t, http.StatusForbidden, do(r, http.MethodDelete, "/api/thing", staffTok).Code)
	})

	t.Run("logout revokes the token", func(t *testing.T) {
		s.user = nil
		require.Equal(t, http.StatusUnauthorized, do(r, http.MethodGet, "/api/whoami", adminTok).Code)
	})

	t.Run("role comes from the stored user", func(t *testing.T) {
		tok := s.login(t, "u3", models.RoleAdmin)
		s.user.Role = models.RoleStaff
		require.Equal(t, http.StatusForbidden, do(r, http.MethodDelete, "/api/thing", tok).Code)
	})

	t.Run("session read failure", func(t *testing.T) {
		tok := s.login(t, "u4", models.RoleAdmin)
		s.err = errors.New("store offline")
		defer func() { s.err = nil }()
		require.Equal(t, http.StatusInternalServerError, do(r, http.MethodGet, "/api/whoami", tok).Code)
	})
}

func TestRequireRole(t *testing.T) {
	s := &sessions{}
	r := router(logger.Nop(), s)
	require.Equal(t, http.StatusForbidden, do(r, http.MethodDelete, "/api/thing", s.login(t, "u1", models.RoleStaff)).Code)
	require.Equal(t, http.StatusNoContent, do(r, http.MethodDelete, "/api/thing", s.login(t, "u2", models.RoleAdmin)).Code)
}

func TestRequestLogger_LevelByStatus(t *testing.T) {
	core, logs := observer.New(zap.DebugLevel)
	log := &logger.Logger{SugaredLogger: zap.New(core).Sugar()}
	s := &sessions{}
	r := router(log, s)

	do(r, http.MethodGet, "/api/whoami", s.login(t, "u1", models.RoleAdmin))
	do(r, http.MethodGet, "/api/whoami", "")

	entries := logs.FilterMessage("HTTP request").All()
	require.Len(t, entries, 2)
	require.Equal(t, zap.InfoLevel, entries[0].Level)
	require.Equal(t, "/api/whoami", entries[0].ContextMap()["path"])
	require.Equal(t, "sam", entries[0].ContextMap()["user"])
	require.Equal(t, zap.WarnLevel, entries[1].Level)
}
