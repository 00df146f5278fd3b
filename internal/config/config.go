package config

import (
	"errors"
	"fmt"
	"log/slog"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/kelvins/geocoder"

	"github.com/i474232898/home-dashboard-aggregation/internal/common"
	"github.com/i474232898/home-dashboard-aggregation/internal/dashboard"
)

var validate = validator.New()

// AppConfig is loaded once at startup and read-only afterwards.
type AppConfig struct {
	AppEnv   string `validate:"oneof=dev prod"`
	LogLevel slog.Level
	Port     string `validate:"required,numeric"`

	Variant dashboard.Variant `validate:"oneof=rooms basic"`

	// Hub connection.
	HomeAssistantAPI   string        `validate:"required,url"`
	HomeAssistantToken string        `validate:"required"`
	CalendarID         string        `validate:"required"`
	CalendarWindow     time.Duration `validate:"gt=0"`

	// Entity ids; humidity sensors are only read by the rooms variant.
	TempSensors     []string `validate:"required,dive,required"`
	HumiditySensors []string `validate:"required_if=Variant rooms,dive,required"`

	// Forecast API.
	WeatherAPIURL string  `validate:"required,url"`
	WeatherModel  string  `validate:"required"`
	Latitude      float64 `validate:"latitude"`
	Longitude     float64 `validate:"longitude"`

	// Outbound HTTP. A zero timeout means requests wait as long as the upstream does.
	HTTPTimeout     time.Duration `validate:"gte=0"`
	UpstreamBreaker bool

	// Upstream probing backing /health/upstreams.
	ProbeInterval   time.Duration `validate:"gte=0"`
	ProbeMaxHistory int           `validate:"gte=0"`
	ProbeMaxAge     time.Duration `validate:"gte=0"`
}

// geocode resolves a city to coordinates. Replaced in tests.
var geocode = func(apiKey, city, country string) (float64, float64, error) {
	geocoder.ApiKey = apiKey
	loc, err := geocoder.Geocoding(geocoder.Address{
		City:    city,
		Country: country,
	})
	if err != nil {
		return 0, 0, err
	}
	return loc.Latitude, loc.Longitude, nil
}

// Load reads configuration from environment with sensible defaults.
func Load() (*AppConfig, error) {
	cfg := &AppConfig{}

	cfg.AppEnv = getenvDefault("APP_ENV", "dev")
	level, err := parseLogLevel(getenvDefault("LOG_LEVEL", "info"))
	if err != nil {
		return nil, err
	}
	cfg.LogLevel = level
	cfg.Port = getenvDefault("PORT", "3000")

	cfg.Variant = dashboard.Variant(strings.ToLower(getenvDefault("DASHBOARD_VARIANT", string(dashboard.VariantRooms))))

	cfg.HomeAssistantAPI = strings.TrimSpace(os.Getenv("HOME_ASSISTANT_API"))
	cfg.HomeAssistantToken = strings.TrimSpace(os.Getenv("HOME_ASSISTANT_TOKEN"))
	cfg.CalendarID = strings.TrimSpace(os.Getenv("CALENDAR_ID"))
	if cfg.CalendarWindow, err = getenvDuration("CALENDAR_WINDOW", "336h"); err != nil {
		return nil, err
	}

	cfg.TempSensors = common.SplitList(os.Getenv("TEMP_SENSORS"))
	cfg.HumiditySensors = common.SplitList(os.Getenv("HUMIDITY_SENSORS"))

	cfg.WeatherAPIURL = getenvDefault("WEATHER_API_URL", "https://api.open-meteo.com/v1")
	cfg.WeatherModel = getenvDefault("WEATHER_MODEL", defaultWeatherModel(cfg.Variant))

	if cfg.HTTPTimeout, err = getenvDuration("HTTP_TIMEOUT", "0s"); err != nil {
		return nil, err
	}
	breaker, err := strconv.ParseBool(getenvDefault("UPSTREAM_BREAKER", "true"))
	if err != nil {
		return nil, fmt.Errorf("invalid UPSTREAM_BREAKER: %w", err)
	}
	cfg.UpstreamBreaker = breaker

	if cfg.ProbeInterval, err = getenvDuration("PROBE_INTERVAL", "5m"); err != nil {
		return nil, err
	}
	// 12 results is one hour at the default interval.
	if cfg.ProbeMaxHistory, err = getenvInt("PROBE_MAX_HISTORY", 12); err != nil {
		return nil, err
	}
	if cfg.ProbeMaxAge, err = getenvDuration("PROBE_MAX_AGE", "1h"); err != nil {
		return nil, err
	}

	lat, lon, err := loadCoordinates()
	if err != nil {
		return nil, err
	}
	cfg.Latitude = lat
	cfg.Longitude = lon

	if err := validate.Struct(cfg); err != nil {
		return nil, fmt.Errorf("invalid configuration: %w", err)
	}
	return cfg, nil
}

func defaultWeatherModel(v dashboard.Variant) string {
	if v == dashboard.VariantBasic {
		return "dwd-icon"
	}
	return "metno"
}

// loadCoordinates prefers explicit LATITUDE/LONGITUDE and falls back to
// geocoding WEATHER_LOCATION_CITY/COUNTRY.
func loadCoordinates() (float64, float64, error) {
	latStr := strings.TrimSpace(os.Getenv("LATITUDE"))
	lonStr := strings.TrimSpace(os.Getenv("LONGITUDE"))

	switch {
	case latStr != "" && lonStr != "":
		lat, err := strconv.ParseFloat(latStr, 64)
		if err != nil {
			return 0, 0, fmt.Errorf("invalid LATITUDE: %w", err)
		}
		lon, err := strconv.ParseFloat(lonStr, 64)
		if err != nil {
			return 0, 0, fmt.Errorf("invalid LONGITUDE: %w", err)
		}
		return lat, lon, nil
	case latStr != "" || lonStr != "":
		return 0, 0, errors.New("LATITUDE and LONGITUDE must be set together")
	}

	city := strings.TrimSpace(os.Getenv("WEATHER_LOCATION_CITY"))
	country := strings.TrimSpace(os.Getenv("WEATHER_LOCATION_COUNTRY"))
	apiKey := strings.TrimSpace(os.Getenv("GEOCODER_API_KEY"))
	if city == "" || apiKey == "" {
		return 0, 0, errors.New("LATITUDE and LONGITUDE are required unless WEATHER_LOCATION_CITY and GEOCODER_API_KEY are set")
	}

	lat, lon, err := geocode(apiKey, city, country)
	if err != nil {
		return 0, 0, fmt.Errorf("geocode %s,%s: %w", city, country, err)
	}
	return lat, lon, nil
}

func parseLogLevel(s string) (slog.Level, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "debug":
		return slog.LevelDebug, nil
	case "info":
		return slog.LevelInfo, nil
	case "warn", "warning":
		return slog.LevelWarn, nil
	case "error":
		return slog.LevelError, nil
	default:
		return slog.LevelInfo, fmt.Errorf("invalid LOG_LEVEL %q (allowed: debug, info, warn, error)", s)
	}
}

func getenvDefault(key, def string) string {
	if v := strings.TrimSpace(os.Getenv(key)); v != "" {
		return v
	}
	return def
}

func getenvInt(key string, def int) (int, error) {
	v := strings.TrimSpace(os.Getenv(key))
	if v == "" {
		return def, nil
	}
	n, err := strconv.Atoi(v)
	if err != nil {
		return 0, fmt.Errorf("invalid %s: %w", key, err)
	}
	return n, nil
}

func getenvDuration(key, def string) (time.Duration, error) {
	d, err := time.ParseDuration(getenvDefault(key, def))
	if err != nil {
		return 0, fmt.Errorf("invalid %s: %w", key, err)
	}
	return d, nil
}
