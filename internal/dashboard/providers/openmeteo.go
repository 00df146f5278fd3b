package providers

import (
	"context"
	"encoding/json"
	"fmt"
	"net/url"
	"strconv"
	"strings"

	"github.com/i474232898/home-dashboard-aggregation/internal/dashboard"
	"github.com/i474232898/home-dashboard-aggregation/internal/fetch"
)

const (
	fieldTemperature = "temperature_2m"
	fieldHumidity    = "relative_humidity_2m"
	fieldFeelsLike   = "apparent_temperature"
)

// OpenMeteoProvider implements dashboard.WeatherSource for Open-Meteo's
// per-model endpoints (e.g. /v1/metno, /v1/dwd-icon). No API key is needed.
type OpenMeteoProvider struct {
	baseURL   string
	model     string
	latitude  float64
	longitude float64
	fields    []string
	fetcher   *fetch.Client
}

// NewOpenMeteoProvider creates a provider for the given model and location.
// VariantRooms requests humidity and apparent temperature on top of the
// air temperature.
func NewOpenMeteoProvider(fetcher *fetch.Client, baseURL, model string, lat, lon float64, variant dashboard.Variant) *OpenMeteoProvider {
	fields := []string{fieldTemperature}
	if variant == dashboard.VariantRooms {
		fields = append(fields, fieldHumidity, fieldFeelsLike)
	}

	return &OpenMeteoProvider{
		baseURL:   strings.TrimRight(baseURL, "/"),
		model:     model,
		latitude:  lat,
		longitude: lon,
		fields:    fields,
		fetcher:   fetcher,
	}
}

func (p *OpenMeteoProvider) Name() string {
	return p.fetcher.Name()
}

// openMeteoCurrent keeps the current block raw: besides the requested
// fields it carries "time" (a string) and "interval".
type openMeteoCurrent struct {
	Current      map[string]json.RawMessage `json:"current"`
	CurrentUnits map[string]string          `json:"current_units"`
}

func (r openMeteoCurrent) value(field string) (float64, string, error) {
	raw, ok := r.Current[field]
	if !ok || string(raw) == "null" {
		return 0, "", fmt.Errorf("%w: current.%s", dashboard.ErrMissingField, field)
	}
	var v float64
	if err := json.Unmarshal(raw, &v); err != nil {
		return 0, "", fmt.Errorf("current.%s: %w", field, err)
	}
	unit, ok := r.CurrentUnits[field]
	if !ok {
		return 0, "", fmt.Errorf("%w: current_units.%s", dashboard.ErrMissingField, field)
	}
	return v, unit, nil
}

// Weather fetches current conditions. Temperatures are rounded to whole
// units, humidity is passed through as reported.
func (p *OpenMeteoProvider) Weather(ctx context.Context) (dashboard.WeatherSummary, error) {
	var payload openMeteoCurrent
	if err := p.fetcher.GetJSON(ctx, p.requestURL(), nil, &payload); err != nil {
		return dashboard.WeatherSummary{}, err
	}

	temp, unit, err := payload.value(fieldTemperature)
	if err != nil {
		return dashboard.WeatherSummary{}, err
	}
	summary := dashboard.WeatherSummary{
		Temperature: dashboard.FormatRounded(temp, unit),
	}

	if len(p.fields) == 1 {
		return summary, nil
	}

	humidity, unit, err := payload.value(fieldHumidity)
	if err != nil {
		return dashboard.WeatherSummary{}, err
	}
	summary.Humidity = dashboard.FormatPlain(humidity, unit)

	feelsLike, unit, err := payload.value(fieldFeelsLike)
	if err != nil {
		return dashboard.WeatherSummary{}, err
	}
	summary.FeelsLike = dashboard.FormatRounded(feelsLike, unit)

	return summary, nil
}

// Probe performs the same query Weather does and discards the result.
func (p *OpenMeteoProvider) Probe(ctx context.Context) error {
	_, err := p.Weather(ctx)
	return err
}

func (p *OpenMeteoProvider) requestURL() string {
	values := url.Values{}
	values.Set("latitude", strconv.FormatFloat(p.latitude, 'f', -1, 64))
	values.Set("longitude", strconv.FormatFloat(p.longitude, 'f', -1, 64))
	values.Set("current", strings.Join(p.fields, ","))
	values.Set("timezone", "auto")

	return fmt.Sprintf("%s/%s?%s", p.baseURL, p.model, values.Encode())
}
