package middleware

import (
	"context"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/A7maad1/LSA/internal/models"
	"github.com/A7maad1/LSA/internal/repository"
	"github.com/A7maad1/LSA/internal/service"
)

type staticAuth struct {
	role string
}

func (a staticAuth) Authenticate(_ context.Context, email, _ string) (*models.AuthResult, error) {
	return &models.AuthResult{Success: true, UserID: "u-1", Email: email, Role: a.role}, nil
}

func newFactory(role string) *service.SessionFactory {
	return service.NewSessionFactory(staticAuth{role: role}, repository.NewMemoryKV(time.Hour),
		service.NewJWTSigner("secret", time.Hour, "lsa"), nil, nil)
}

func newRouter(factory *service.SessionFactory, extra ...gin.HandlerFunc) *gin.Engine {
	gin.SetMode(gin.TestMode)
	r := gin.New()
	r.Use(Session(factory, SessionConfig{}))
	handlers := append([]gin.HandlerFunc{RequireSession()}, extra...)
	handlers = append(handlers, func(c *gin.Context) { c.String(http.StatusOK, SessionFrom(c).User().Email) })
	r.GET("/admin", handlers...)
	r.GET("/api/v1/admin/me", handlers...)
	return r
}

func signedInSID(t *testing.T, factory *service.SessionFactory) string {
	sid := uuid.NewString()
	_, err := factory.For(sid).SignIn(context.Background(), "admin@lsa.ma", "pw")
	require.NoError(t, err)
	return sid
}

func TestRequireSessionRedirectsPages(t *testing.T) {
	r := newRouter(newFactory(models.RoleAdmin))

	w := httptest.NewRecorder()
	r.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/admin", nil))
	assert.Equal(t, http.StatusSeeOther, w.Code)
	assert.Equal(t, "/admin/login?next=%2Fadmin", w.Header().Get("Location"))
	assert.Contains(t, w.Header().Get("Set-Cookie"), "lsa_sid=")
}

func TestRequireSessionRejectsAPI(t *testing.T) {
	r := newRouter(newFactory(models.RoleAdmin))

	w := httptest.NewRecorder()
	r.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/api/v1/admin/me", nil))
	assert.Equal(t, http.StatusUnauthorized, w.Code)
	assert.Contains(t, w.Body.String(), "UNAUTHORIZED")
}

func TestSessionRestoresFromHeaderAndCookie(t *testing.T) {
	factory := newFactory(models.RoleAdmin)
	sid := signedInSID(t, factory)
	r := newRouter(factory)

	w := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodGet, "/api/v1/admin/me", nil)
	req.Header.Set(SessionHeader, sid)
	r.ServeHTTP(w, req)
	assert.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, "admin@lsa.ma", w.Body.String())

	w = httptest.NewRecorder()
	req = httptest.NewRequest(http.MethodGet, "/admin", nil)
	req.AddCookie(&http.Cookie{Name: "lsa_sid", Value: sid})
	r.ServeHTTP(w, req)
	assert.Equal(t, http.StatusOK, w.Code)
	assert.True(t, strings.Contains(w.Header().Get("Set-Cookie"), sid))
}

func TestRequireRoles(t *testing.T) {
	factory := newFactory(models.RoleUser)
	sid := signedInSID(t, factory)
	r := newRouter(factory, RequireRoles(models.RoleAdmin))

	w := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodGet, "/api/v1/admin/me", nil)
	req.Header.Set(SessionHeader, sid)
	r.ServeHTTP(w, req)
	assert.Equal(t, http.StatusForbidden, w.Code)
}
