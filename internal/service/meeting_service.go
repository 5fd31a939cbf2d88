package service

import (
	"context"
	"sort"
	"strings"
	"time"

	"github.com/go-playground/validator/v10"
	"go.uber.org/zap"

	"github.com/A7maad1/LSA/internal/models"
	"github.com/A7maad1/LSA/internal/repository"
	appErrors "github.com/A7maad1/LSA/pkg/errors"
)

// Day labels attached to upcoming meetings.
const (
	MeetingToday    = "today"
	MeetingTomorrow = "tomorrow"
)

var meetingLayouts = []string{
	time.RFC3339,
	"2006-01-02T15:04:05",
	"2006-01-02T15:04",
	"2006-01-02 15:04:05",
	"2006-01-02 15:04",
	"2006-01-02",
}

// MeetingView is a meeting prepared for display.
type MeetingView struct {
	models.Meeting
	At    time.Time `json:"at"`
	Label string    `json:"label,omitempty"`
	Past  bool      `json:"past"`
}

// MeetingSchedule splits meetings around a reference time.
type MeetingSchedule struct {
	Upcoming []MeetingView `json:"upcoming"`
	Past     []MeetingView `json:"past"`
}

// MeetingService manages meetings.
type MeetingService struct {
	table     tableGateway[models.Meeting]
	cache     *CacheService
	validator *validator.Validate
	logger    *zap.Logger
	location  *time.Location
	now       func() time.Time
}

// NewMeetingService constructs the service. Meeting dates without a zone are
// read in loc; nil means UTC.
func NewMeetingService(table tableGateway[models.Meeting], cache *CacheService, validate *validator.Validate, logger *zap.Logger, loc *time.Location) *MeetingService {
	if validate == nil {
		validate = NewValidator()
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	if loc == nil {
		loc = time.UTC
	}
	return &MeetingService{table: table, cache: cache, validator: validate, logger: logger, location: loc, now: time.Now}
}

// List returns every meeting by descending meeting date.
func (s *MeetingService) List(ctx context.Context) ([]models.Meeting, error) {
	rows, err := cachedList(ctx, s.cache, s.table.Name(), s.table.List)
	if err != nil {
		return nil, gatewayError(err, "failed to list meetings")
	}
	return rows, nil
}

// Schedule lists meetings split into upcoming and past relative to now.
func (s *MeetingService) Schedule(ctx context.Context) (*MeetingSchedule, error) {
	rows, err := s.List(ctx)
	if err != nil {
		return nil, err
	}
	schedule := SplitMeetings(rows, s.now().In(s.location), s.location)
	return &schedule, nil
}

// Upcoming returns meetings at or after now, soonest first.
func (s *MeetingService) Upcoming(ctx context.Context) ([]MeetingView, error) {
	schedule, err := s.Schedule(ctx)
	if err != nil {
		return nil, err
	}
	return schedule.Upcoming, nil
}

// Past returns meetings before now, most recent first.
func (s *MeetingService) Past(ctx context.Context) ([]MeetingView, error) {
	schedule, err := s.Schedule(ctx)
	if err != nil {
		return nil, err
	}
	return schedule.Past, nil
}

// Create schedules a meeting.
func (s *MeetingService) Create(ctx context.Context, input models.MeetingInput) (*models.Meeting, error) {
	if err := s.validator.Struct(input); err != nil {
		return nil, validationError(err)
	}
	if _, ok := ParseMeetingDate(input.MeetingDate, s.location); !ok {
		return nil, appErrors.Clone(appErrors.ErrValidation, "invalid fields: meeting_date (datetime)")
	}
	meeting, err := s.table.Create(ctx, repository.Fields{
		"subject":      input.Subject,
		"meeting_date": input.MeetingDate,
		"location":     input.Location,
		"description":  optional(input.Description),
	})
	if err != nil {
		return nil, gatewayError(err, "failed to create meeting")
	}
	s.cache.InvalidateTable(ctx, s.table.Name())
	s.logger.Info("meeting scheduled", zap.String("id", meeting.ID.String()), zap.String("date", meeting.MeetingDate))
	return meeting, nil
}

// Delete removes a meeting.
func (s *MeetingService) Delete(ctx context.Context, id string) error {
	if err := s.table.Delete(ctx, id); err != nil {
		return gatewayError(err, "failed to delete meeting")
	}
	s.cache.InvalidateTable(ctx, s.table.Name())
	return nil
}

// SplitMeetings puts meetings at or after now in Upcoming (soonest first,
// labelled today or tomorrow by calendar day) and the rest in Past (most
// recent first). Meetings with an unreadable date are treated as past.
func SplitMeetings(meetings []models.Meeting, now time.Time, loc *time.Location) MeetingSchedule {
	schedule := MeetingSchedule{Upcoming: []MeetingView{}, Past: []MeetingView{}}
	today := dayStart(now)
	for _, m := range meetings {
		at, ok := ParseMeetingDate(m.MeetingDate, loc)
		view := MeetingView{Meeting: m, At: at}
		if !ok || at.Before(now) {
			view.Past = true
			schedule.Past = append(schedule.Past, view)
			continue
		}
		switch day := dayStart(at.In(now.Location())); {
		case day.Equal(today):
			view.Label = MeetingToday
		case day.Equal(today.AddDate(0, 0, 1)):
			view.Label = MeetingTomorrow
		}
		schedule.Upcoming = append(schedule.Upcoming, view)
	}
	sort.SliceStable(schedule.Upcoming, func(i, j int) bool {
		return schedule.Upcoming[i].At.Before(schedule.Upcoming[j].At)
	})
	sort.SliceStable(schedule.Past, func(i, j int) bool {
		return schedule.Past[i].At.After(schedule.Past[j].At)
	})
	return schedule
}

// ParseMeetingDate reads an ISO date or date-time.
func ParseMeetingDate(raw string, loc *time.Location) (time.Time, bool) {
	raw = strings.TrimSpace(raw)
	if loc == nil {
		loc = time.UTC
	}
	for _, layout := range meetingLayouts {
		if t, err := time.ParseInLocation(layout, raw, loc); err == nil {
			return t, true
		}
	}
	return time.Time{}, false
}

func dayStart(t time.Time) time.Time {
	y, m, d := t.Date()
	return time.Date(y, m, d, 0, 0, 0, 0, t.Location())
}
