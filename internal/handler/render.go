package handler

import (
	"bytes"
	"embed"
	"fmt"
	"html/template"
	"net/http"
	"net/url"
	"strconv"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/microcosm-cc/bluemonday"
	"github.com/yuin/goldmark"
	goldmarkHTML "github.com/yuin/goldmark/renderer/html"
	"go.uber.org/zap"

	"github.com/A7maad1/LSA/internal/models"
	"github.com/A7maad1/LSA/internal/ui"
)

//go:embed templates/*.html
var templateFS embed.FS

//go:embed static
var staticFS embed.FS

var (
	markdown  = goldmark.New(goldmark.WithRendererOptions(goldmarkHTML.WithHardWraps()))
	sanitizer = bluemonday.UGCPolicy()
)

// Page templates.
const (
	pageHome           = "home.html"
	pageActivities     = "activities.html"
	pageAnnouncements  = "announcements.html"
	pageMeetings       = "meetings.html"
	pageGallery        = "gallery.html"
	pageContact        = "contact.html"
	pageCertificates   = "certificates.html"
	pageAdminLogin     = "admin_login.html"
	pageAdminDashboard = "admin_dashboard.html"
	pageAdminConfirm   = "admin_confirm.html"
)

var pageNames = []string{
	pageHome, pageActivities, pageAnnouncements, pageMeetings, pageGallery,
	pageContact, pageCertificates, pageAdminLogin, pageAdminDashboard, pageAdminConfirm,
}

// PageData is the model handed to every page template.
type PageData struct {
	Site   string
	Title  string
	Active string
	User   *models.SessionUser
	Toasts []ui.Notification
	Data   interface{}
}

// Renderer executes the embedded page templates inside the shared layout.
type Renderer struct {
	site   string
	pages  map[string]*template.Template
	logger *zap.Logger
}

// NewRenderer parses every page once.
func NewRenderer(site string, logger *zap.Logger) (*Renderer, error) {
	if logger == nil {
		logger = zap.NewNop()
	}
	r := &Renderer{site: site, pages: map[string]*template.Template{}, logger: logger}
	for _, name := range pageNames {
		tpl, err := template.New("layout.html").Funcs(templateFuncs()).
			ParseFS(templateFS, "templates/layout.html", "templates/"+name)
		if err != nil {
			return nil, fmt.Errorf("parse %s: %w", name, err)
		}
		r.pages[name] = tpl
	}
	return r, nil
}

// HTML renders page with status. Toasts still pending in center are attached.
func (r *Renderer) HTML(c *gin.Context, status int, page string, data PageData, center *ui.NotificationCenter) {
	tpl, ok := r.pages[page]
	if !ok {
		c.String(http.StatusInternalServerError, "unknown page %s", page)
		return
	}
	data.Site = r.site
	if center != nil {
		data.Toasts = center.Active(time.Now())
	}

	var buf bytes.Buffer
	if err := tpl.Execute(&buf, data); err != nil {
		r.logger.Error("render failed", zap.String("page", page), zap.Error(err))
		c.String(http.StatusInternalServerError, "render error")
		return
	}
	c.Data(status, "text/html; charset=utf-8", buf.Bytes())
}

// RenderMarkdown converts admin-authored markdown into sanitized HTML.
func RenderMarkdown(md string) template.HTML {
	var buf bytes.Buffer
	if err := markdown.Convert([]byte(md), &buf); err != nil {
		return template.HTML(template.HTMLEscapeString(md))
	}
	return template.HTML(sanitizer.SanitizeBytes(buf.Bytes()))
}

func templateFuncs() template.FuncMap {
	return template.FuncMap{
		"markdown": RenderMarkdown,
		"excerpt": func(s string, n int) string {
			runes := []rune(s)
			if len(runes) <= n {
				return s
			}
			return string(runes[:n]) + "…"
		},
		"date": func(t time.Time) string {
			if t.IsZero() {
				return ""
			}
			return t.Format("2006-01-02")
		},
		"deref": func(s *string) string {
			if s == nil {
				return ""
			}
			return *s
		},
		"add": func(a, b int) int { return a + b },
		"query": func(base url.Values, key string, value interface{}) template.URL {
			q := url.Values{}
			for k, v := range base {
				q[k] = append([]string(nil), v...)
			}
			switch v := value.(type) {
			case int:
				q.Set(key, strconv.Itoa(v))
			default:
				q.Set(key, fmt.Sprint(v))
			}
			return template.URL("?" + q.Encode())
		},
	}
}
