package service

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/A7maad1/LSA/internal/models"
	"github.com/A7maad1/LSA/internal/repository"
	appErrors "github.com/A7maad1/LSA/pkg/errors"
)

func TestSplitMeetings(t *testing.T) {
	now := time.Date(2026, 3, 10, 9, 0, 0, 0, time.UTC)
	meetings := []models.Meeting{
		{ID: "1", Subject: "next week", MeetingDate: "2026-03-17T10:00:00"},
		{ID: "2", Subject: "later today", MeetingDate: "2026-03-10T15:00"},
		{ID: "3", Subject: "tomorrow", MeetingDate: "2026-03-11T08:30:00Z"},
		{ID: "4", Subject: "last month", MeetingDate: "2026-02-10"},
		{ID: "5", Subject: "earlier today", MeetingDate: "2026-03-10T08:00:00"},
		{ID: "6", Subject: "garbage", MeetingDate: "soon"},
	}

	schedule := SplitMeetings(meetings, now, time.UTC)

	require.Len(t, schedule.Upcoming, 3)
	assert.Equal(t, "later today", schedule.Upcoming[0].Subject)
	assert.Equal(t, MeetingToday, schedule.Upcoming[0].Label)
	assert.Equal(t, MeetingTomorrow, schedule.Upcoming[1].Label)
	assert.Equal(t, "", schedule.Upcoming[2].Label)

	require.Len(t, schedule.Past, 3)
	assert.Equal(t, "earlier today", schedule.Past[0].Subject)
	assert.Equal(t, "last month", schedule.Past[1].Subject)
	assert.True(t, schedule.Past[2].Past)
}

func TestMeetingServiceScheduleAndCreate(t *testing.T) {
	backend, tables := newTestTables()
	backend.Seed(repository.TableMeetings,
		map[string]interface{}{"id": 1, "subject": "parents", "meeting_date": "2026-05-01T10:00:00"},
		map[string]interface{}{"id": 2, "subject": "staff", "meeting_date": "2026-01-01T10:00:00"},
	)
	svc := NewMeetingService(tables.Meetings, nil, nil, nil, nil)
	svc.now = func() time.Time { return time.Date(2026, 3, 1, 0, 0, 0, 0, time.UTC) }

	upcoming, err := svc.Upcoming(context.Background())
	require.NoError(t, err)
	require.Len(t, upcoming, 1)
	assert.Equal(t, "parents", upcoming[0].Subject)

	past, err := svc.Past(context.Background())
	require.NoError(t, err)
	require.Len(t, past, 1)

	_, err = svc.Create(context.Background(), models.MeetingInput{Subject: "x", MeetingDate: "next tuesday"})
	assert.True(t, errors.Is(err, appErrors.ErrValidation))

	created, err := svc.Create(context.Background(), models.MeetingInput{Subject: "conseil", MeetingDate: "2026-04-02T14:00", Location: "Salle 3"})
	require.NoError(t, err)
	assert.Equal(t, "Salle 3", created.Location)
}

func TestParseMeetingDate(t *testing.T) {
	at, ok := ParseMeetingDate("2026-04-02", nil)
	require.True(t, ok)
	assert.Equal(t, 2, at.Day())

	_, ok = ParseMeetingDate("", nil)
	assert.False(t, ok)
}
