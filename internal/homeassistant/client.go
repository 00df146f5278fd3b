package homeassistant

import (
	"context"
	"fmt"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/i474232898/home-dashboard-aggregation/internal/fetch"
)

// EntityState is the subset of a hub entity the dashboard reads.
type EntityState struct {
	EntityID    string           `json:"entity_id"`
	State       string           `json:"state"`
	Attributes  EntityAttributes `json:"attributes"`
	LastUpdated string           `json:"last_updated"`
}

type EntityAttributes struct {
	FriendlyName      string `json:"friendly_name"`
	UnitOfMeasurement string `json:"unit_of_measurement"`
	DeviceClass       string `json:"device_class"`
}

// CalendarEvent is an event as returned by the calendar endpoint.
// Exactly one of Date and DateTime is expected on each EventDate.
type CalendarEvent struct {
	Summary string    `json:"summary"`
	Start   EventDate `json:"start"`
	End     EventDate `json:"end"`
}

type EventDate struct {
	Date     string `json:"date,omitempty"`
	DateTime string `json:"dateTime,omitempty"`
}

// Client talks to the hub REST API. Every request carries the configured
// token in the authorization header.
type Client struct {
	baseURL string
	token   string
	fetcher *fetch.Client
}

// NewClient creates a hub client rooted at baseURL (e.g. http://hub:8123/api).
func NewClient(baseURL, token string, fetcher *fetch.Client) *Client {
	return &Client{
		baseURL: strings.TrimRight(baseURL, "/"),
		token:   token,
		fetcher: fetcher,
	}
}

func (c *Client) Name() string {
	return c.fetcher.Name()
}

// Get fetches baseURL/path and decodes the JSON body into dest. The path is
// used as given; callers escape segments and query values themselves.
func (c *Client) Get(ctx context.Context, path string, dest any) error {
	headers := http.Header{}
	headers.Set("authorization", c.token)
	return c.fetcher.GetJSON(ctx, c.baseURL+"/"+path, headers, dest)
}

// EntityState returns the current state of one entity.
func (c *Client) EntityState(ctx context.Context, entityID string) (EntityState, error) {
	var state EntityState
	if err := c.Get(ctx, "states/"+url.PathEscape(entityID), &state); err != nil {
		return EntityState{}, fmt.Errorf("entity %s: %w", entityID, err)
	}
	return state, nil
}

// CalendarEvents lists the events of a calendar between two calendar dates.
// Only the date part of start and end is sent.
func (c *Client) CalendarEvents(ctx context.Context, calendarID string, start, end time.Time) ([]CalendarEvent, error) {
	query := url.Values{}
	query.Set("start", start.Format(time.DateOnly))
	query.Set("end", end.Format(time.DateOnly))

	var events []CalendarEvent
	path := "calendars/" + url.PathEscape(calendarID) + "?" + query.Encode()
	if err := c.Get(ctx, path, &events); err != nil {
		return nil, fmt.Errorf("calendar %s: %w", calendarID, err)
	}
	return events, nil
}

// Probe checks that the API root answers.
func (c *Client) Probe(ctx context.Context) error {
	var resp struct {
		Message string `json:"message"`
	}
	return c.Get(ctx, "", &resp)
}
