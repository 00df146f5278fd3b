package dashboard

import (
	"context"
	"fmt"
	"time"

	"golang.org/x/sync/errgroup"
)

// nowLayout matches the millisecond UTC timestamps dashboard clients parse.
const nowLayout = "2006-01-02T15:04:05.000Z"

// Service assembles snapshots from the weather, calendar and sensor sources.
type Service struct {
	variant  Variant
	weather  WeatherSource
	calendar CalendarSource
	sensors  SensorSource
	now      func() time.Time
}

// NewService creates a new Service.
func NewService(variant Variant, weather WeatherSource, calendar CalendarSource, sensors SensorSource) *Service {
	return &Service{
		variant:  variant,
		weather:  weather,
		calendar: calendar,
		sensors:  sensors,
		now:      time.Now,
	}
}

// Variant reports the payload shape this service produces.
func (s *Service) Variant() Variant {
	return s.variant
}

// Snapshot fetches all sources concurrently and assembles one payload.
// It is all-or-nothing: the first failure cancels the remaining fetches and
// is returned without any partial data.
func (s *Service) Snapshot(ctx context.Context) (Snapshot, error) {
	var (
		weather      WeatherSummary
		events       []CalendarEvent
		rooms        []RoomReading
		temperatures []SensorReading
	)

	g, ctx := errgroup.WithContext(ctx)

	g.Go(func() error {
		w, err := s.weather.Weather(ctx)
		if err != nil {
			return fmt.Errorf("weather: %w", err)
		}
		weather = w
		return nil
	})

	g.Go(func() error {
		e, err := s.calendar.Events(ctx)
		if err != nil {
			return fmt.Errorf("calendar: %w", err)
		}
		events = e
		return nil
	})

	g.Go(func() error {
		var err error
		if s.variant == VariantRooms {
			rooms, err = s.sensors.Rooms(ctx)
		} else {
			temperatures, err = s.sensors.Temperatures(ctx)
		}
		if err != nil {
			return fmt.Errorf("sensors: %w", err)
		}
		return nil
	})

	if err := g.Wait(); err != nil {
		return Snapshot{}, err
	}

	if events == nil {
		events = []CalendarEvent{}
	}

	snapshot := Snapshot{
		Weather:        weather,
		CalendarEvents: events,
	}
	if s.variant == VariantRooms {
		// Taken after the fetches so it marks when the snapshot was assembled.
		snapshot.Now = s.now().UTC().Format(nowLayout)
		snapshot.Rooms = rooms
	} else {
		snapshot.Temperatures = temperatures
	}
	return snapshot, nil
}
