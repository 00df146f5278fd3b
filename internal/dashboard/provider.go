package dashboard

import (
	"context"
	"errors"
)

var (
	// ErrMalformedEvent is returned for calendar events without a usable start or end.
	ErrMalformedEvent = errors.New("malformed calendar event")
	// ErrMalformedReading is returned when a sensor state is not numeric.
	ErrMalformedReading = errors.New("malformed sensor reading")
	// ErrMissingField is returned when an upstream payload lacks a requested field.
	ErrMissingField = errors.New("missing field")
	// ErrRoomMismatch is returned when temperature and humidity sensors do not
	// describe the same set of rooms.
	ErrRoomMismatch = errors.New("temperature and humidity rooms do not match")
)

// WeatherSource provides current outdoor conditions.
type WeatherSource interface {
	Weather(ctx context.Context) (WeatherSummary, error)
}

// CalendarSource provides upcoming events sorted by start.
type CalendarSource interface {
	Events(ctx context.Context) ([]CalendarEvent, error)
}

// SensorSource provides indoor readings.
type SensorSource interface {
	Temperatures(ctx context.Context) ([]SensorReading, error)
	Rooms(ctx context.Context) ([]RoomReading, error)
}
