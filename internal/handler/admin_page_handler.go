package handler

import (
	"context"
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"github.com/A7maad1/LSA/internal/middleware"
	"github.com/A7maad1/LSA/internal/models"
	"github.com/A7maad1/LSA/internal/service"
	"github.com/A7maad1/LSA/internal/ui"
	appErrors "github.com/A7maad1/LSA/pkg/errors"
)

// Deleter removes one record by id.
type Deleter interface {
	Delete(ctx context.Context, id string) error
}

type certificateReader interface {
	List(ctx context.Context) ([]models.CertificateRequest, error)
}

type contactReader interface {
	List(ctx context.Context) ([]models.ContactMessage, error)
}

// Dashboard tabs, in display order. They double as resource names.
const (
	tabActivities    = "activities"
	tabAnnouncements = "announcements"
	tabGallery       = "gallery"
	tabCertificates  = "certificates"
	tabContacts      = "contacts"
	tabMeetings      = "meetings"
)

var dashboardTabs = []string{tabActivities, tabAnnouncements, tabGallery, tabCertificates, tabContacts, tabMeetings}

// AdminDeps groups the services behind the dashboard pages.
type AdminDeps struct {
	Activities    activityReader
	Announcements announcementReader
	Gallery       galleryReader
	Certificates  certificateReader
	Contacts      contactReader
	Meetings      meetingReader
	// Deleters maps a resource name to the service deleting it.
	Deleters map[string]Deleter
}

// AdminPageHandler serves the dashboard HTML pages.
type AdminPageHandler struct {
	deps   AdminDeps
	render *Renderer
	logger *zap.Logger
}

// NewAdminPageHandler constructs the handler.
func NewAdminPageHandler(deps AdminDeps, render *Renderer, logger *zap.Logger) *AdminPageHandler {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &AdminPageHandler{deps: deps, render: render, logger: logger}
}

type loginView struct {
	Email string
	Next  string
}

type dashboardCounts struct {
	Activities    int
	Announcements int
	Gallery       int
	Unread        int
	Upcoming      int
}

type dashboardView struct {
	Tabs            *ui.Tabs
	Counts          dashboardCounts
	Progress        *ui.ProgressTracker
	Certificates    service.CertificateStats
	Activities      []models.Activity
	Announcements   []models.Announcement
	Gallery         []models.GalleryItem
	CertificateRows []models.CertificateRequest
	Contacts        []models.ContactMessage
	Meetings        *service.MeetingSchedule
}

type confirmView struct {
	Dialog *ui.Dialog
	Action string
	Back   string
}

// LoginForm renders the sign-in form, or skips it when already signed in.
func (h *AdminPageHandler) LoginForm(c *gin.Context) {
	if session := middleware.SessionFrom(c); session != nil && session.IsAuthenticated() {
		c.Redirect(http.StatusSeeOther, "/admin")
		return
	}
	view := loginView{Next: safeNext(c.Query("next"))}
	h.render.HTML(c, http.StatusOK, pageAdminLogin, PageData{Title: "تسجيل الدخول", Data: view}, nil)
}

// Login signs the browser session in.
func (h *AdminPageHandler) Login(c *gin.Context) {
	session := middleware.SessionFrom(c)
	email := strings.TrimSpace(c.PostForm("email"))
	next := safeNext(c.PostForm("next"))
	if session == nil {
		c.String(http.StatusInternalServerError, "session unavailable")
		return
	}

	if _, err := session.SignIn(c.Request.Context(), email, c.PostForm("password")); err != nil {
		center := ui.NewNotificationCenter()
		status := appErrors.FromError(err).Status
		switch {
		case appErrors.HasCode(err, appErrors.ErrValidation.Code):
			center.Error("بيانات غير صالحة", "يرجى إدخال بريد إلكتروني صحيح وكلمة المرور")
		case appErrors.HasCode(err, appErrors.ErrInvalidCredentials.Code):
			center.Error("فشل تسجيل الدخول", "البريد الإلكتروني أو كلمة المرور غير صحيحة")
		default:
			h.logger.Error("sign in failed", zap.Error(err))
			center.Error("خطأ", "تعذر تسجيل الدخول حالياً")
		}
		h.render.HTML(c, status, pageAdminLogin, PageData{Title: "تسجيل الدخول", Data: loginView{Email: email, Next: next}}, center)
		return
	}
	c.Redirect(http.StatusSeeOther, next)
}

// Logout signs the browser session out.
func (h *AdminPageHandler) Logout(c *gin.Context) {
	if session := middleware.SessionFrom(c); session != nil {
		session.SignOut(c.Request.Context())
	}
	c.Redirect(http.StatusSeeOther, middleware.LoginPath)
}

// Dashboard renders counts, certificate progress and the active tab's rows.
func (h *AdminPageHandler) Dashboard(c *gin.Context) {
	ctx := c.Request.Context()
	center := ui.NewNotificationCenter()
	tabs := ui.NewTabs(dashboardTabs...)
	tabs.Switch(c.Query("tab"))

	view := dashboardView{Tabs: tabs, Meetings: &service.MeetingSchedule{}}
	warn := func(what string, err error) {
		h.logger.Warn("dashboard load failed", zap.String("resource", what), zap.Error(err))
		center.Notify("خطأ في التحميل", what, ui.NotifyError, 0)
	}

	if items, err := h.deps.Activities.List(ctx); err != nil {
		warn(tabActivities, err)
	} else {
		view.Activities = items
	}
	if items, err := h.deps.Announcements.List(ctx); err != nil {
		warn(tabAnnouncements, err)
	} else {
		view.Announcements = items
	}
	if items, err := h.deps.Gallery.List(ctx); err != nil {
		warn(tabGallery, err)
	} else {
		view.Gallery = items
	}
	if items, err := h.deps.Certificates.List(ctx); err != nil {
		warn(tabCertificates, err)
	} else {
		view.CertificateRows = items
	}
	if items, err := h.deps.Contacts.List(ctx); err != nil {
		warn(tabContacts, err)
	} else {
		view.Contacts = items
	}
	if schedule, err := h.deps.Meetings.Schedule(ctx); err != nil {
		warn(tabMeetings, err)
	} else if schedule != nil {
		view.Meetings = schedule
	}

	view.Certificates = service.SummarizeCertificates(view.CertificateRows)
	view.Progress = ui.NewProgressTracker(float64(view.Certificates.Completed), float64(max(view.Certificates.Total, 1)))
	view.Counts = dashboardCounts{
		Activities:    len(view.Activities),
		Announcements: len(view.Announcements),
		Gallery:       len(view.Gallery),
		Upcoming:      len(view.Meetings.Upcoming),
	}
	for _, m := range view.Contacts {
		if !m.IsRead {
			view.Counts.Unread++
		}
	}

	h.render.HTML(c, http.StatusOK, pageAdminDashboard, PageData{Title: "لوحة التحكم", User: sessionUser(c), Data: view}, center)
}

// ConfirmDelete renders the delete confirmation dialog.
func (h *AdminPageHandler) ConfirmDelete(c *gin.Context) {
	resource := c.Param("resource")
	if _, ok := h.deps.Deleters[resource]; !ok {
		c.String(http.StatusNotFound, "unknown resource")
		return
	}
	view := confirmView{
		Dialog: ui.Confirm("تأكيد الحذف", "هل أنت متأكد من الحذف؟ لا يمكن التراجع عن هذا الإجراء."),
		Action: c.Request.URL.Path,
		Back:   "/admin?tab=" + resource,
	}
	h.render.HTML(c, http.StatusOK, pageAdminConfirm, PageData{Title: "تأكيد الحذف", User: sessionUser(c), Data: view}, nil)
}

// Delete applies the dialog answer. Anything but confirm returns to the dashboard untouched.
func (h *AdminPageHandler) Delete(c *gin.Context) {
	resource := c.Param("resource")
	del, ok := h.deps.Deleters[resource]
	if !ok {
		c.String(http.StatusNotFound, "unknown resource")
		return
	}
	back := "/admin?tab=" + resource

	dialog := ui.Confirm("", "")
	if !dialog.Resolve(c.PostForm("action")) {
		dialog.DismissBackdrop()
	}
	if !dialog.Confirmed() {
		c.Redirect(http.StatusSeeOther, back)
		return
	}

	if err := del.Delete(c.Request.Context(), c.Param("id")); err != nil {
		h.logger.Error("delete failed", zap.String("resource", resource), zap.String("id", c.Param("id")), zap.Error(err))
		center := ui.NewNotificationCenter()
		center.Error("تعذر الحذف", appErrors.FromError(err).Message)
		view := confirmView{
			Dialog: ui.Confirm("تأكيد الحذف", "تعذر الحذف. هل تريد المحاولة مرة أخرى؟"),
			Action: c.Request.URL.Path,
			Back:   back,
		}
		h.render.HTML(c, appErrors.FromError(err).Status, pageAdminConfirm, PageData{Title: "تأكيد الحذف", User: sessionUser(c), Data: view}, center)
		return
	}
	h.logger.Info("deleted", zap.String("resource", resource), zap.String("id", c.Param("id")))
	c.Redirect(http.StatusSeeOther, back)
}

func safeNext(next string) string {
	if !strings.HasPrefix(next, "/") || strings.HasPrefix(next, "//") || strings.HasPrefix(next, middleware.LoginPath) {
		return "/admin"
	}
	return next
}
