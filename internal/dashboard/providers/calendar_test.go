package providers

import (
	"context"
	"encoding/json"
	"errors"
	"testing"
	"time"

	"github.com/i474232898/home-dashboard-aggregation/internal/dashboard"
)

func newTestCalendar(t *testing.T, body string) (*fakeHub, *CalendarProvider) {
	t.Helper()

	hub, client := newFakeHub(t)
	hub.calendar = body

	p := NewCalendarProvider(client, "calendar.family", 0)
	p.now = func() time.Time { return time.Date(2024, 1, 1, 23, 30, 0, 0, time.FixedZone("CET", 3600)) }
	return hub, p
}

func TestCalendarAllDayEvent(t *testing.T) {
	hub, p := newTestCalendar(t, `[{"summary":"A","start":{"date":"2024-01-05"},"end":{"date":"2024-01-06"}}]`)

	events, err := p.Events(context.Background())
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	// The window is computed in UTC: 23:30 CET is 22:30Z on Jan 1.
	if got, want := hub.lastRequest(), "/api/calendars/calendar.family?end=2024-01-15&start=2024-01-01"; got != want {
		t.Errorf("request = %q, want %q", got, want)
	}

	b, err := json.Marshal(events)
	if err != nil {
		t.Fatalf("marshal: %v", err)
	}
	if want := `[{"title":"A","start":"2024-01-05","end":"2024-01-06"}]`; string(b) != want {
		t.Fatalf("events = %s, want %s", b, want)
	}
}

func TestCalendarSortsMixedEvents(t *testing.T) {
	_, p := newTestCalendar(t, `[
		{"summary":"dentist","start":{"dateTime":"2024-01-05T14:00:00+01:00"},"end":{"dateTime":"2024-01-05T15:00:00+01:00"}},
		{"summary":"holiday","start":{"date":"2024-01-05"},"end":{"date":"2024-01-08"}},
		{"summary":"breakfast","start":{"dateTime":"2024-01-02T08:00:00+01:00"},"end":{"dateTime":"2024-01-02T09:00:00+01:00"}}
	]`)

	events, err := p.Events(context.Background())
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	want := []string{"breakfast", "holiday", "dentist"}
	if len(events) != len(want) {
		t.Fatalf("got %d events, want %d", len(events), len(want))
	}
	for i := range want {
		if events[i].Title != want[i] {
			t.Errorf("events[%d] = %q, want %q", i, events[i].Title, want[i])
		}
	}
	for i := 1; i < len(events); i++ {
		if events[i].Start.Instant().Before(events[i-1].Start.Instant()) {
			t.Errorf("events not sorted at %d", i)
		}
	}
	if events[1].Start.AllDay() != true || events[0].Start.AllDay() != false {
		t.Errorf("all-day flags wrong: %+v", events)
	}
}

func TestCalendarEmpty(t *testing.T) {
	_, p := newTestCalendar(t, `[]`)

	events, err := p.Events(context.Background())
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if events == nil || len(events) != 0 {
		t.Fatalf("events = %#v, want empty", events)
	}
}

func TestCalendarMalformedEvent(t *testing.T) {
	_, p := newTestCalendar(t, `[{"summary":"broken","start":{},"end":{"date":"2024-01-06"}}]`)

	if _, err := p.Events(context.Background()); !errors.Is(err, dashboard.ErrMalformedEvent) {
		t.Fatalf("error = %v, want %v", err, dashboard.ErrMalformedEvent)
	}
}

// calendarBody mirrors GET /api/calendars/<id> from a hub backed by a
// CalDAV or Google calendar, nullable fields included.
const calendarBody = `[
	{
		"start": {"dateTime": "2024-01-05T10:00:00+01:00"},
		"end": {"dateTime": "2024-01-05T11:00:00+01:00"},
		"summary": "Dentist",
		"description": null,
		"location": "12 Rue du Dôme",
		"uid": "7f1c2b9e-0a4d-4a55-9d0f-1d2f3e4a5b6c",
		"recurrence_id": null,
		"rrule": null
	},
	{
		"start": {"date": "2024-01-05"},
		"end": {"date": "2024-01-06"},
		"summary": "School holiday",
		"description": "",
		"location": null,
		"uid": "holiday-2024-01-05@calendar",
		"recurrence_id": null,
		"rrule": null
	},
	{
		"start": {"dateTime": "2024-01-04T23:30:00+01:00"},
		"end": {"dateTime": "2024-01-05T00:30:00+01:00"},
		"summary": "Late call",
		"description": null,
		"location": null,
		"uid": "a1b2c3",
		"recurrence_id": "20240104T223000Z",
		"rrule": "FREQ=WEEKLY;BYDAY=TH"
	}
]`

func TestCalendarHubResponse(t *testing.T) {
	_, p := newTestCalendar(t, calendarBody)

	events, err := p.Events(context.Background())
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	b, err := json.Marshal(events)
	if err != nil {
		t.Fatalf("marshal: %v", err)
	}
	// 23:30+01:00 on Jan 4 is before the all-day midnight, 10:00+01:00 after it.
	// Timed values keep their offset exactly as delivered.
	want := `[` +
		`{"title":"Late call","start":"2024-01-04T23:30:00+01:00","end":"2024-01-05T00:30:00+01:00"},` +
		`{"title":"School holiday","start":"2024-01-05","end":"2024-01-06"},` +
		`{"title":"Dentist","start":"2024-01-05T10:00:00+01:00","end":"2024-01-05T11:00:00+01:00"}` +
		`]`
	if string(b) != want {
		t.Fatalf("events = %s\nwant     %s", b, want)
	}
}
