package providers

import (
	"context"
	"fmt"
	"time"

	"github.com/i474232898/home-dashboard-aggregation/internal/dashboard"
	"github.com/i474232898/home-dashboard-aggregation/internal/homeassistant"
)

// DefaultCalendarWindow is how far ahead events are listed.
const DefaultCalendarWindow = 14 * 24 * time.Hour

// CalendarProvider implements dashboard.CalendarSource for a hub calendar.
type CalendarProvider struct {
	hub        *homeassistant.Client
	calendarID string
	window     time.Duration
	now        func() time.Time
}

func NewCalendarProvider(hub *homeassistant.Client, calendarID string, window time.Duration) *CalendarProvider {
	if window <= 0 {
		window = DefaultCalendarWindow
	}
	return &CalendarProvider{
		hub:        hub,
		calendarID: calendarID,
		window:     window,
		now:        time.Now,
	}
}

// Events lists events from today (UTC) through the window, sorted by start.
func (p *CalendarProvider) Events(ctx context.Context) ([]dashboard.CalendarEvent, error) {
	start := p.now().UTC()
	end := start.Add(p.window)

	raw, err := p.hub.CalendarEvents(ctx, p.calendarID, start, end)
	if err != nil {
		return nil, err
	}

	events := make([]dashboard.CalendarEvent, 0, len(raw))
	for i, e := range raw {
		startTime, err := dashboard.NewEventTime(e.Start.Date, e.Start.DateTime)
		if err != nil {
			return nil, fmt.Errorf("event %d (%q) start: %w", i, e.Summary, err)
		}
		endTime, err := dashboard.NewEventTime(e.End.Date, e.End.DateTime)
		if err != nil {
			return nil, fmt.Errorf("event %d (%q) end: %w", i, e.Summary, err)
		}
		events = append(events, dashboard.CalendarEvent{
			Title: e.Summary,
			Start: startTime,
			End:   endTime,
		})
	}

	dashboard.SortEvents(events)
	return events, nil
}
