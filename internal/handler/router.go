package handler

import (
	"io/fs"
	"net/http"

	"github.com/gin-gonic/gin"
	swaggerFiles "github.com/swaggo/files"
	ginSwagger "github.com/swaggo/gin-swagger"

	"github.com/A7maad1/LSA/internal/middleware"
	"github.com/A7maad1/LSA/internal/models"
)

// Handlers bundles every route handler.
type Handlers struct {
	Public        *PublicHandler
	Admin         *AdminPageHandler
	Session       *SessionHandler
	Activities    *ActivityHandler
	Announcements *AnnouncementHandler
	Gallery       *GalleryHandler
	Certificates  *CertificateHandler
	Contacts      *ContactHandler
	Meetings      *MeetingHandler
	Uploads       *UploadHandler
	Export        *ExportHandler
	Metrics       *MetricsHandler
}

// RouteOptions toggles optional surfaces.
type RouteOptions struct {
	Docs bool
}

// Register mounts the site pages, the JSON API and the ops endpoints on r.
// session must restore the session manager into the context.
func Register(r *gin.Engine, h Handlers, session gin.HandlerFunc, opts RouteOptions) {
	if h.Metrics != nil {
		r.GET("/health", h.Metrics.Health)
		r.GET("/ready", h.Metrics.Ready)
		r.GET("/metrics", h.Metrics.Prometheus)
	}
	if opts.Docs {
		r.GET("/docs/*any", ginSwagger.WrapHandler(swaggerFiles.Handler))
	}

	static, _ := fs.Sub(staticFS, "static")
	r.StaticFS("/static", http.FS(static))

	site := r.Group("/", session)
	site.GET("/", h.Public.Home)
	site.GET("/activities", h.Public.Activities)
	site.GET("/announcements", h.Public.Announcements)
	site.GET("/meetings", h.Public.Meetings)
	site.GET("/gallery", h.Public.Gallery)
	site.GET("/contact", h.Public.ContactForm)
	site.POST("/contact", h.Public.SubmitContact)
	site.GET("/certificates", h.Public.CertificateForm)
	site.POST("/certificates", h.Public.SubmitCertificate)

	site.GET(middleware.LoginPath, h.Admin.LoginForm)
	site.POST(middleware.LoginPath, h.Admin.Login)
	site.POST("/admin/logout", h.Admin.Logout)

	pages := site.Group("/admin", middleware.RequireSession())
	pages.GET("", h.Admin.Dashboard)
	pages.GET("/:resource/:id/delete", middleware.RequireRoles(models.RoleAdmin), h.Admin.ConfirmDelete)
	pages.POST("/:resource/:id/delete", middleware.RequireRoles(models.RoleAdmin), h.Admin.Delete)

	api := r.Group("/api/v1", session)
	api.POST("/contacts", h.Contacts.Create)
	api.POST("/certificates", h.Certificates.Create)
	api.POST("/session/login", h.Session.Login)
	api.POST("/session/logout", h.Session.Logout)

	admin := api.Group("/admin", middleware.RequireSession())
	admin.GET("/session", h.Session.Me)
	admin.POST("/session/refresh", h.Session.Refresh)

	admin.Use(middleware.RequireRoles(models.RoleAdmin))
	admin.GET("/metrics", h.Metrics.Snapshot)

	activities := admin.Group("/activities")
	activities.GET("", h.Activities.List)
	activities.GET("/:id", h.Activities.Get)
	activities.POST("", h.Activities.Create)
	activities.PATCH("/:id", h.Activities.Update)
	activities.POST("/:id/image", h.Activities.UpdateImage)
	activities.DELETE("/:id", h.Activities.Delete)

	announcements := admin.Group("/announcements")
	announcements.GET("", h.Announcements.List)
	announcements.POST("", h.Announcements.Create)
	announcements.DELETE("/:id", h.Announcements.Delete)

	gallery := admin.Group("/gallery")
	gallery.GET("", h.Gallery.List)
	gallery.POST("", h.Gallery.Create)
	gallery.PUT("/order", h.Gallery.Reorder)
	gallery.DELETE("/:id", h.Gallery.Delete)

	certificates := admin.Group("/certificates")
	certificates.GET("", h.Certificates.List)
	certificates.PATCH("/:id/status", h.Certificates.UpdateStatus)
	certificates.DELETE("/:id", h.Certificates.Delete)

	contacts := admin.Group("/contacts")
	contacts.GET("", h.Contacts.List)
	contacts.GET("/unread-count", h.Contacts.UnreadCount)
	contacts.PATCH("/:id/read", h.Contacts.MarkAsRead)
	contacts.DELETE("/:id", h.Contacts.Delete)

	meetings := admin.Group("/meetings")
	meetings.GET("", h.Meetings.List)
	meetings.GET("/schedule", h.Meetings.Schedule)
	meetings.POST("", h.Meetings.Create)
	meetings.DELETE("/:id", h.Meetings.Delete)

	admin.POST("/uploads/:bucket", h.Uploads.Upload)
	admin.DELETE("/uploads", h.Uploads.Delete)

	admin.GET("/export", h.Export.Resources)
	admin.GET("/export/:resource", h.Export.Export)
}
