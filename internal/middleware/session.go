package middleware

import (
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	"github.com/A7maad1/LSA/internal/service"
	appErrors "github.com/A7maad1/LSA/pkg/errors"
	"github.com/A7maad1/LSA/pkg/response"
)

// ContextSessionKey is the gin context key storing the *service.SessionManager.
const ContextSessionKey = "session"

// SessionHeader lets API clients pass the session id without cookies.
const SessionHeader = "X-Session-ID"

// LoginPath is where HTML requests without a session are sent.
const LoginPath = "/admin/login"

// SessionConfig configures the session cookie.
type SessionConfig struct {
	CookieName string
	TTL        time.Duration
	Secure     bool
}

// Session binds a session manager to the request. A missing or malformed id
// gets a fresh one and a new cookie.
func Session(factory *service.SessionFactory, cfg SessionConfig) gin.HandlerFunc {
	if cfg.CookieName == "" {
		cfg.CookieName = "lsa_sid"
	}
	if cfg.TTL <= 0 {
		cfg.TTL = 24 * time.Hour
	}
	return func(c *gin.Context) {
		sid := c.GetHeader(SessionHeader)
		if sid == "" {
			sid, _ = c.Cookie(cfg.CookieName)
		}
		if _, err := uuid.Parse(sid); err != nil {
			sid = uuid.NewString()
		}
		c.SetSameSite(http.SameSiteLaxMode)
		c.SetCookie(cfg.CookieName, sid, int(cfg.TTL.Seconds()), "/", "", cfg.Secure, true)

		manager := factory.For(sid)
		manager.Restore(c.Request.Context())
		c.Set(ContextSessionKey, manager)
		c.Next()
	}
}

// SessionFrom returns the manager bound by Session, or nil.
func SessionFrom(c *gin.Context) *service.SessionManager {
	value, exists := c.Get(ContextSessionKey)
	if !exists {
		return nil
	}
	manager, _ := value.(*service.SessionManager)
	return manager
}

// RequireSession rejects requests without a signed-in user. Page requests
// are redirected to the login form; API requests get a 401 envelope.
func RequireSession() gin.HandlerFunc {
	return func(c *gin.Context) {
		manager := SessionFrom(c)
		if manager != nil && manager.IsAuthenticated() {
			c.Next()
			return
		}
		if wantsHTML(c) {
			target := LoginPath + "?next=" + url.QueryEscape(c.Request.URL.RequestURI())
			c.Redirect(http.StatusSeeOther, target)
			c.Abort()
			return
		}
		response.Error(c, appErrors.ErrUnauthorized)
		c.Abort()
	}
}

func wantsHTML(c *gin.Context) bool {
	if strings.HasPrefix(c.Request.URL.Path, "/api/") {
		return false
	}
	return strings.Contains(c.GetHeader("Accept"), "text/html") || c.Request.Method == http.MethodGet
}
