package dashboard

import (
	"encoding/json"
	"fmt"
	"time"
)

// Variant selects which payload shape the dashboard serves.
type Variant string

const (
	// VariantRooms serves full weather, a capture timestamp and per-room readings.
	VariantRooms Variant = "rooms"
	// VariantBasic serves temperature-only weather and a flat sensor list.
	VariantBasic Variant = "basic"
)

// WeatherSummary holds unit-suffixed current conditions.
// Humidity and FeelsLike are only filled for VariantRooms.
type WeatherSummary struct {
	Temperature string `json:"temperature"`
	Humidity    string `json:"humidity,omitempty"`
	FeelsLike   string `json:"feelsLike,omitempty"`
}

// EventTime is either an all-day calendar date or a timed instant, never both.
type EventTime struct {
	allDay  bool
	raw     string
	instant time.Time
}

// NewEventTime builds an EventTime from the two shapes a calendar can
// deliver. The date wins when both are set, as it does upstream.
func NewEventTime(date, dateTime string) (EventTime, error) {
	switch {
	case date != "":
		t, err := time.Parse(time.DateOnly, date)
		if err != nil {
			return EventTime{}, fmt.Errorf("%w: date %q: %v", ErrMalformedEvent, date, err)
		}
		return EventTime{allDay: true, raw: date, instant: t}, nil
	case dateTime != "":
		t, err := time.Parse(time.RFC3339, dateTime)
		if err != nil {
			return EventTime{}, fmt.Errorf("%w: dateTime %q: %v", ErrMalformedEvent, dateTime, err)
		}
		return EventTime{raw: dateTime, instant: t}, nil
	default:
		return EventTime{}, fmt.Errorf("%w: neither date nor dateTime set", ErrMalformedEvent)
	}
}

// AllDay reports whether the value is a bare calendar date.
func (t EventTime) AllDay() bool { return t.allDay }

// Instant is the point in time used for ordering; all-day dates are UTC midnight.
func (t EventTime) Instant() time.Time { return t.instant }

// String returns the value exactly as the calendar delivered it.
func (t EventTime) String() string { return t.raw }

func (t EventTime) MarshalJSON() ([]byte, error) {
	return json.Marshal(t.raw)
}

// CalendarEvent is one normalized event.
type CalendarEvent struct {
	Title string    `json:"title"`
	Start EventTime `json:"start"`
	End   EventTime `json:"end"`
}

// SensorReading is a named value such as "21.4°C".
type SensorReading struct {
	Name  string `json:"name"`
	Value string `json:"value"`
}

// RoomReading joins a room's temperature and humidity.
type RoomReading struct {
	Name        string `json:"name"`
	Temperature string `json:"temperature"`
	Humidity    string `json:"humidity"`
}

// Snapshot is the aggregate payload served to the dashboard client.
type Snapshot struct {
	Now            string          `json:"now,omitempty"`
	Weather        WeatherSummary  `json:"weather"`
	CalendarEvents []CalendarEvent `json:"calendarEvents"`
	Rooms          []RoomReading   `json:"rooms,omitempty"`
	Temperatures   []SensorReading `json:"temperatures,omitempty"`
}
