package handler

import (
	"context"
	"net/http"
	"net/url"
	"strconv"
	"time"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"github.com/A7maad1/LSA/internal/models"
	"github.com/A7maad1/LSA/internal/service"
	"github.com/A7maad1/LSA/internal/ui"
	appErrors "github.com/A7maad1/LSA/pkg/errors"
)

type activityReader interface {
	List(ctx context.Context) ([]models.Activity, error)
}

type announcementReader interface {
	List(ctx context.Context) ([]models.Announcement, error)
	Categories() []string
}

type galleryReader interface {
	List(ctx context.Context) ([]models.GalleryItem, error)
}

type meetingReader interface {
	Schedule(ctx context.Context) (*service.MeetingSchedule, error)
}

type contactSubmitter interface {
	Create(ctx context.Context, input models.ContactInput) (*models.ContactMessage, error)
}

type certificateSubmitter interface {
	Create(ctx context.Context, input models.CertificateInput) (*models.CertificateRequest, error)
}

const (
	homeActivities    = 3
	homeAnnouncements = 3
	homeGallery       = 6
)

// PublicHandler serves the public site pages. Backend failures never break a
// page: the list renders empty and an error toast explains why.
type PublicHandler struct {
	activities    activityReader
	announcements announcementReader
	gallery       galleryReader
	meetings      meetingReader
	contacts      contactSubmitter
	certificates  certificateSubmitter
	render        *Renderer
	pageSize      int
	logger        *zap.Logger
	now           func() time.Time
}

// PublicDeps groups the services behind the public pages.
type PublicDeps struct {
	Activities    activityReader
	Announcements announcementReader
	Gallery       galleryReader
	Meetings      meetingReader
	Contacts      contactSubmitter
	Certificates  certificateSubmitter
}

// NewPublicHandler constructs the handler.
func NewPublicHandler(deps PublicDeps, render *Renderer, pageSize int, logger *zap.Logger) *PublicHandler {
	if logger == nil {
		logger = zap.NewNop()
	}
	if pageSize <= 0 {
		pageSize = 9
	}
	return &PublicHandler{
		activities:    deps.Activities,
		announcements: deps.Announcements,
		gallery:       deps.Gallery,
		meetings:      deps.Meetings,
		contacts:      deps.Contacts,
		certificates:  deps.Certificates,
		render:        render,
		pageSize:      pageSize,
		logger:        logger,
		now:           time.Now,
	}
}

type homeView struct {
	Activities    []models.Activity
	Announcements []models.Announcement
	Gallery       []models.GalleryItem
	Upcoming      []service.MeetingView
}

type sortOption struct {
	Value    ui.SortOrder
	Label    string
	Selected bool
}

type pagerView struct {
	Visible    bool
	HasPrev    bool
	HasNext    bool
	Current    int
	TotalPages int
	Links      []ui.PageLink
	Params     url.Values
}

type activitiesView struct {
	Items []models.Activity
	Query string
	Sorts []sortOption
	Total int
	Pager pagerView
}

type announcementsView struct {
	Items      []models.Announcement
	Query      string
	Category   string
	Categories []string
	Pager      pagerView
}

type meetingsView struct {
	Upcoming      []service.MeetingView
	Past          []service.MeetingView
	PastCollapsed bool
}

type galleryView struct {
	Items       []models.GalleryItem
	Query       string
	Sorts       []sortOption
	Params      url.Values
	Open        bool
	Current     models.GalleryItem
	Counter     string
	HasPrevious bool
	HasNext     bool
	Prev        int
	Next        int
}

type contactView struct {
	Form models.ContactInput
}

type certificateView struct {
	Form models.CertificateInput
}

// Home renders the landing page.
func (h *PublicHandler) Home(c *gin.Context) {
	ctx := c.Request.Context()
	center := ui.NewNotificationCenter()
	view := homeView{}

	activities := h.loadActivities(ctx, center)
	view.Activities = activities[:min(len(activities), homeActivities)]
	announcements := h.loadAnnouncements(ctx, center)
	view.Announcements = announcements[:min(len(announcements), homeAnnouncements)]
	gallery := h.loadGallery(ctx, center)
	view.Gallery = gallery[:min(len(gallery), homeGallery)]
	view.Upcoming = h.loadSchedule(ctx, center).Upcoming

	h.render.HTML(c, http.StatusOK, pageHome, PageData{Active: "home", Data: view}, center)
}

// Activities renders the searchable, sortable and paginated activity list.
func (h *PublicHandler) Activities(c *gin.Context) {
	ctx := c.Request.Context()
	center := ui.NewNotificationCenter()
	items := h.loadActivities(ctx, center)

	query := c.Query("q")
	order := ui.ParseSortOrder(c.Query("sort"))
	filter := ui.NewSearchFilter(items, []ui.FieldFunc[models.Activity]{
		func(a models.Activity) string { return a.Title },
		func(a models.Activity) string { return a.Description },
	}, nil)
	matched := filter.Apply(query, nil)
	ui.SortBy(matched, order,
		func(a models.Activity) time.Time { return a.CreatedAt },
		func(a models.Activity) string { return a.Title })

	pager := ui.NewPagination(len(matched), h.pageSize)
	pager.GoToPage(c.DefaultQuery("page", "1"))

	view := activitiesView{
		Items: ui.Paginate(pager, matched),
		Query: query,
		Sorts: sortOptions(order, activitySorts),
		Total: len(matched),
		Pager: newPagerView(pager, c.Request.URL.Query()),
	}
	h.render.HTML(c, http.StatusOK, pageActivities, PageData{Title: "الأنشطة", Active: "activities", Data: view}, center)
}

// Announcements renders announcements filtered by category and search.
func (h *PublicHandler) Announcements(c *gin.Context) {
	ctx := c.Request.Context()
	center := ui.NewNotificationCenter()
	items := h.loadAnnouncements(ctx, center)

	query := c.Query("q")
	category := c.Query("category")
	filter := ui.NewSearchFilter(items,
		[]ui.FieldFunc[models.Announcement]{
			func(a models.Announcement) string { return a.Title },
			func(a models.Announcement) string { return a.Content },
		},
		map[string]ui.FieldFunc[models.Announcement]{
			"category": func(a models.Announcement) string { return a.Category },
		},
	)
	matched := filter.Apply(query, map[string]string{"category": category})

	pager := ui.NewPagination(len(matched), h.pageSize)
	pager.GoToPage(c.DefaultQuery("page", "1"))

	view := announcementsView{
		Items:      ui.Paginate(pager, matched),
		Query:      query,
		Category:   category,
		Categories: h.announcements.Categories(),
		Pager:      newPagerView(pager, c.Request.URL.Query()),
	}
	h.render.HTML(c, http.StatusOK, pageAnnouncements, PageData{Title: "الإعلانات", Active: "announcements", Data: view}, center)
}

// Meetings renders upcoming meetings and a collapsible list of past ones.
func (h *PublicHandler) Meetings(c *gin.Context) {
	center := ui.NewNotificationCenter()
	schedule := h.loadSchedule(c.Request.Context(), center)

	sections := ui.NewCollapsible("upcoming")
	if c.Query("past") == "open" {
		sections.Toggle("past")
	}
	view := meetingsView{
		Upcoming:      schedule.Upcoming,
		Past:          schedule.Past,
		PastCollapsed: sections.Collapsed("past"),
	}
	h.render.HTML(c, http.StatusOK, pageMeetings, PageData{Title: "الاجتماعات", Active: "meetings", Data: view}, center)
}

// Gallery renders the gallery grid and, with ?view=i, the lightbox.
func (h *PublicHandler) Gallery(c *gin.Context) {
	center := ui.NewNotificationCenter()
	gallery := ui.NewGallery(h.loadGallery(c.Request.Context(), center))

	query := c.Query("q")
	gallery.Search(query)
	var order ui.SortOrder
	if raw := c.Query("sort"); raw != "" {
		order = ui.ParseSortOrder(raw)
		gallery.Sort(order)
	}

	params := c.Request.URL.Query()
	params.Del("view")
	view := galleryView{
		Items:  gallery.Items(),
		Query:  query,
		Sorts:  sortOptions(order, gallerySorts),
		Params: params,
	}
	if raw := c.Query("view"); raw != "" {
		if i, err := strconv.Atoi(raw); err == nil && gallery.Open(i) {
			if key := c.Query("key"); key != "" {
				gallery.HandleKey(key)
			}
			if current, ok := gallery.Current(); ok {
				view.Open = true
				view.Current = current
				view.Counter = gallery.Counter()
				view.HasPrevious = gallery.HasPrevious()
				view.HasNext = gallery.HasNext()
				view.Prev = gallery.Index() - 1
				view.Next = gallery.Index() + 1
			}
		}
	}
	h.render.HTML(c, http.StatusOK, pageGallery, PageData{Title: "المعرض", Active: "gallery", Data: view}, center)
}

// ContactForm renders the empty contact form.
func (h *PublicHandler) ContactForm(c *gin.Context) {
	h.render.HTML(c, http.StatusOK, pageContact, PageData{Title: "اتصل بنا", Active: "contact", Data: contactView{}}, nil)
}

// SubmitContact stores a contact message.
func (h *PublicHandler) SubmitContact(c *gin.Context) {
	center := ui.NewNotificationCenter()
	var form models.ContactInput
	if err := c.ShouldBind(&form); err != nil {
		center.Error("خطأ", "تعذر قراءة النموذج")
		h.render.HTML(c, http.StatusBadRequest, pageContact, PageData{Title: "اتصل بنا", Active: "contact", Data: contactView{Form: form}}, center)
		return
	}
	if _, err := h.contacts.Create(c.Request.Context(), form); err != nil {
		status := h.submissionFailed(center, err)
		h.render.HTML(c, status, pageContact, PageData{Title: "اتصل بنا", Active: "contact", Data: contactView{Form: form}}, center)
		return
	}
	center.Success("تم الإرسال", "شكراً لتواصلك معنا، سنرد عليك قريباً")
	h.render.HTML(c, http.StatusOK, pageContact, PageData{Title: "اتصل بنا", Active: "contact", Data: contactView{}}, center)
}

// CertificateForm renders the empty certificate request form.
func (h *PublicHandler) CertificateForm(c *gin.Context) {
	h.render.HTML(c, http.StatusOK, pageCertificates, PageData{Title: "الشهادات", Active: "certificates", Data: certificateView{}}, nil)
}

// SubmitCertificate stores a certificate request dated today.
func (h *PublicHandler) SubmitCertificate(c *gin.Context) {
	center := ui.NewNotificationCenter()
	var form models.CertificateInput
	if err := c.ShouldBind(&form); err != nil {
		center.Error("خطأ", "تعذر قراءة النموذج")
		h.render.HTML(c, http.StatusBadRequest, pageCertificates, PageData{Title: "الشهادات", Active: "certificates", Data: certificateView{Form: form}}, center)
		return
	}
	if form.SubmissionDate == "" {
		form.SubmissionDate = h.now().Format("2006-01-02")
	}
	if _, err := h.certificates.Create(c.Request.Context(), form); err != nil {
		status := h.submissionFailed(center, err)
		h.render.HTML(c, status, pageCertificates, PageData{Title: "الشهادات", Active: "certificates", Data: certificateView{Form: form}}, center)
		return
	}
	center.Success("تم استلام الطلب", "سيتم معالجة طلبك في أقرب الآجال")
	h.render.HTML(c, http.StatusOK, pageCertificates, PageData{Title: "الشهادات", Active: "certificates", Data: certificateView{}}, center)
}

func (h *PublicHandler) submissionFailed(center *ui.NotificationCenter, err error) int {
	appErr := appErrors.FromError(err)
	if appErrors.HasCode(err, appErrors.ErrValidation.Code) {
		center.Error("بيانات غير صالحة", appErr.Message)
		return http.StatusBadRequest
	}
	h.logger.Error("submission failed", zap.Error(err))
	center.Error("خطأ", "تعذر الإرسال، يرجى المحاولة لاحقاً")
	return appErr.Status
}

func (h *PublicHandler) loadActivities(ctx context.Context, center *ui.NotificationCenter) []models.Activity {
	items, err := h.activities.List(ctx)
	return fallback(h, center, "activities", items, err)
}

func (h *PublicHandler) loadAnnouncements(ctx context.Context, center *ui.NotificationCenter) []models.Announcement {
	items, err := h.announcements.List(ctx)
	return fallback(h, center, "announcements", items, err)
}

func (h *PublicHandler) loadGallery(ctx context.Context, center *ui.NotificationCenter) []models.GalleryItem {
	items, err := h.gallery.List(ctx)
	return fallback(h, center, "gallery", items, err)
}

func (h *PublicHandler) loadSchedule(ctx context.Context, center *ui.NotificationCenter) *service.MeetingSchedule {
	schedule, err := h.meetings.Schedule(ctx)
	if err != nil || schedule == nil {
		fallback[service.MeetingView](h, center, "meetings", nil, err)
		return &service.MeetingSchedule{}
	}
	return schedule
}

// fallback turns a failed list read into an empty list and an error toast.
func fallback[T any](h *PublicHandler, center *ui.NotificationCenter, what string, items []T, err error) []T {
	if err == nil {
		if items == nil {
			return []T{}
		}
		return items
	}
	h.logger.Warn("list failed", zap.String("resource", what), zap.Error(err))
	center.Notify("خطأ في التحميل", "تعذر تحميل البيانات، يرجى المحاولة لاحقاً", ui.NotifyError, 0)
	return []T{}
}

var activitySorts = []sortOption{
	{Value: ui.SortNewest, Label: "الأحدث"},
	{Value: ui.SortOldest, Label: "الأقدم"},
	{Value: ui.SortNameAsc, Label: "الاسم (أ-ي)"},
	{Value: ui.SortNameDesc, Label: "الاسم (ي-أ)"},
}

var gallerySorts = []sortOption{
	{Value: ui.SortNewest, Label: "الأحدث"},
	{Value: ui.SortOldest, Label: "الأقدم"},
	{Value: ui.SortAlpha, Label: "أبجدياً"},
}

func sortOptions(selected ui.SortOrder, options []sortOption) []sortOption {
	out := make([]sortOption, len(options))
	for i, o := range options {
		o.Selected = ui.ParseSortOrder(string(o.Value)) == selected
		out[i] = o
	}
	return out
}

func newPagerView(p *ui.Pagination, params url.Values) pagerView {
	params.Del("page")
	return pagerView{
		Visible:    p.Visible(),
		HasPrev:    p.HasPrev(),
		HasNext:    p.HasNext(),
		Current:    p.Current,
		TotalPages: p.TotalPages(),
		Links:      p.Pages(),
		Params:     params,
	}
}
