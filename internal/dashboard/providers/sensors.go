package providers

import (
	"context"
	"fmt"

	"golang.org/x/sync/errgroup"

	"github.com/i474232898/home-dashboard-aggregation/internal/dashboard"
	"github.com/i474232898/home-dashboard-aggregation/internal/homeassistant"
)

// SensorProvider implements dashboard.SensorSource from hub entity states.
type SensorProvider struct {
	hub            *homeassistant.Client
	temperatureIDs []string
	humidityIDs    []string
}

func NewSensorProvider(hub *homeassistant.Client, temperatureIDs, humidityIDs []string) *SensorProvider {
	return &SensorProvider{
		hub:            hub,
		temperatureIDs: temperatureIDs,
		humidityIDs:    humidityIDs,
	}
}

// Temperatures returns one reading per temperature entity, in configured order.
func (p *SensorProvider) Temperatures(ctx context.Context) ([]dashboard.SensorReading, error) {
	return p.readAll(ctx, p.temperatureIDs)
}

// Rooms reads temperature and humidity entities in one concurrent batch and
// joins them per room.
func (p *SensorProvider) Rooms(ctx context.Context) ([]dashboard.RoomReading, error) {
	ids := make([]string, 0, len(p.temperatureIDs)+len(p.humidityIDs))
	ids = append(ids, p.temperatureIDs...)
	ids = append(ids, p.humidityIDs...)

	readings, err := p.readAll(ctx, ids)
	if err != nil {
		return nil, err
	}

	n := len(p.temperatureIDs)
	return dashboard.JoinRooms(readings[:n], readings[n:])
}

// readAll fetches every entity concurrently. Output order matches ids; any
// failure discards the whole batch.
func (p *SensorProvider) readAll(ctx context.Context, ids []string) ([]dashboard.SensorReading, error) {
	readings := make([]dashboard.SensorReading, len(ids))

	g, ctx := errgroup.WithContext(ctx)
	for i, id := range ids {
		g.Go(func() error {
			state, err := p.hub.EntityState(ctx, id)
			if err != nil {
				return err
			}
			value, err := dashboard.FormatReading(state.State, state.Attributes.UnitOfMeasurement)
			if err != nil {
				return fmt.Errorf("entity %s: %w", id, err)
			}
			readings[i] = dashboard.SensorReading{
				Name:  state.Attributes.FriendlyName,
				Value: value,
			}
			return nil
		})
	}

	if err := g.Wait(); err != nil {
		return nil, err
	}
	return readings, nil
}
