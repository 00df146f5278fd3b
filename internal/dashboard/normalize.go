package dashboard

import (
	"fmt"
	"math"
	"sort"
	"strconv"
	"strings"
)

// SortEvents orders events by start instant. Ties keep their upstream order.
func SortEvents(events []CalendarEvent) {
	sort.SliceStable(events, func(i, j int) bool {
		return events[i].Start.Instant().Before(events[j].Start.Instant())
	})
}

// FormatRounded renders v rounded half away from zero, followed by unit.
func FormatRounded(v float64, unit string) string {
	r := math.Round(v)
	if r == 0 {
		// no "-0"
		r = 0
	}
	return strconv.FormatFloat(r, 'f', 0, 64) + unit
}

// FormatPlain renders v with the shortest exact representation, followed by unit.
func FormatPlain(v float64, unit string) string {
	return strconv.FormatFloat(v, 'f', -1, 64) + unit
}

// FormatReading parses a numeric sensor state and renders it with one decimal.
func FormatReading(state, unit string) (string, error) {
	v, err := strconv.ParseFloat(strings.TrimSpace(state), 64)
	if err != nil || math.IsNaN(v) || math.IsInf(v, 0) {
		return "", fmt.Errorf("%w: state %q", ErrMalformedReading, state)
	}
	return strconv.FormatFloat(v, 'f', 1, 64) + unit, nil
}

// RoomName derives a room from a sensor's display label by taking its first
// word, so "Kitchen Temperature" belongs to "Kitchen".
func RoomName(friendlyName string) string {
	fields := strings.Fields(friendlyName)
	if len(fields) == 0 {
		return ""
	}
	return fields[0]
}

// JoinRooms pairs temperature and humidity readings that belong to the same
// room. Both sides are keyed by RoomName; the result follows the order of
// temps. Differing or duplicated room keys fail with ErrRoomMismatch.
func JoinRooms(temps, humidities []SensorReading) ([]RoomReading, error) {
	humidityByRoom := make(map[string]string, len(humidities))
	for _, h := range humidities {
		room := RoomName(h.Name)
		if room == "" {
			return nil, fmt.Errorf("%w: humidity sensor without name", ErrRoomMismatch)
		}
		if _, dup := humidityByRoom[room]; dup {
			return nil, fmt.Errorf("%w: duplicate humidity room %q", ErrRoomMismatch, room)
		}
		humidityByRoom[room] = h.Value
	}

	rooms := make([]RoomReading, 0, len(temps))
	seen := make(map[string]struct{}, len(temps))
	for _, t := range temps {
		room := RoomName(t.Name)
		if room == "" {
			return nil, fmt.Errorf("%w: temperature sensor without name", ErrRoomMismatch)
		}
		if _, dup := seen[room]; dup {
			return nil, fmt.Errorf("%w: duplicate temperature room %q", ErrRoomMismatch, room)
		}
		seen[room] = struct{}{}

		humidity, ok := humidityByRoom[room]
		if !ok {
			return nil, fmt.Errorf("%w: no humidity sensor for room %q", ErrRoomMismatch, room)
		}
		rooms = append(rooms, RoomReading{
			Name:        room,
			Temperature: t.Value,
			Humidity:    humidity,
		})
	}

	if len(humidityByRoom) != len(rooms) {
		for room := range humidityByRoom {
			if _, ok := seen[room]; !ok {
				return nil, fmt.Errorf("%w: no temperature sensor for room %q", ErrRoomMismatch, room)
			}
		}
	}
	return rooms, nil
}
