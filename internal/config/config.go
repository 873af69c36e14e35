package config

import (
	"errors"
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/couchcryptid/bristol-crime-etl/internal/adapter/openmeteo"
	"github.com/couchcryptid/bristol-crime-etl/internal/adapter/police"
	"github.com/couchcryptid/bristol-crime-etl/internal/domain"
	sharedcfg "github.com/couchcryptid/storm-data-shared/config"
)

// Config holds the settings shared by the fetch and clean jobs, populated from
// an optional YAML file and environment variables.
type Config struct {
	// Area and window.
	CenterLatitude  float64
	CenterLongitude float64
	RadiusMiles     float64
	StartMonth      domain.Month
	EndMonth        domain.Month
	OutputDirectory string
	AreaName        string

	// Remote APIs.
	CrimeAPIURL     string
	WeatherAPIURL   string
	WeatherTimezone string
	RequestTimeout  time.Duration
	RequestDelay    time.Duration

	LogLevel        string
	LogFormat       string
	MetricsAddr     string
	ShutdownTimeout time.Duration

	// Optional publication of cleaned rows. Disabled when KafkaBrokers is empty.
	KafkaBrokers    []string
	KafkaCleanTopic string
}

// Center returns the configured center point.
func (c *Config) Center() domain.Point {
	return domain.Point{Lat: c.CenterLatitude, Lon: c.CenterLongitude}
}

// Area returns the center point and radius used when cleaning crime rows.
func (c *Config) Area() domain.Area {
	return domain.Area{Center: c.Center(), RadiusMiles: c.RadiusMiles}
}

// KafkaEnabled reports whether cleaned rows should be published.
func (c *Config) KafkaEnabled() bool {
	return len(c.KafkaBrokers) > 0
}

// Load reads configuration, applying in order: defaults, the YAML file named
// by CONFIG_FILE (if set), then environment variables.
func Load() (*Config, error) {
	var file fileConfig
	if path := os.Getenv("CONFIG_FILE"); path != "" {
		var err error
		file, err = loadFile(path)
		if err != nil {
			return nil, err
		}
	}

	shutdownTimeout, err := sharedcfg.ParseShutdownTimeout()
	if err != nil {
		return nil, err
	}

	lat, err := floatSetting("CENTER_LATITUDE", file.CenterLatitude, 51.4545)
	if err != nil {
		return nil, err
	}
	lon, err := floatSetting("CENTER_LONGITUDE", file.CenterLongitude, -2.5879)
	if err != nil {
		return nil, err
	}
	radius, err := floatSetting("RADIUS_MILES", file.Radius, 10)
	if err != nil {
		return nil, err
	}

	start, err := monthSetting("START_MONTH", file.StartMonth, "2010-01")
	if err != nil {
		return nil, err
	}
	end, err := monthSetting("END_MONTH", file.EndMonth, domain.CurrentMonth().String())
	if err != nil {
		return nil, err
	}

	timeout, err := durationSetting("REQUEST_TIMEOUT", "30s")
	if err != nil {
		return nil, err
	}
	if timeout <= 0 {
		return nil, errors.New("invalid REQUEST_TIMEOUT: must be positive")
	}
	delay, err := durationSetting("REQUEST_DELAY", "1s")
	if err != nil {
		return nil, err
	}
	if delay < 0 {
		return nil, errors.New("invalid REQUEST_DELAY: must not be negative")
	}

	outputDir := file.OutputDirectory
	if outputDir == "" {
		outputDir = "Data"
	}

	cfg := &Config{
		CenterLatitude:  lat,
		CenterLongitude: lon,
		RadiusMiles:     radius,
		StartMonth:      start,
		EndMonth:        end,
		OutputDirectory: sharedcfg.EnvOrDefault("OUTPUT_DIRECTORY", outputDir),
		AreaName:        sharedcfg.EnvOrDefault("AREA_NAME", "bristol"),

		CrimeAPIURL:     sharedcfg.EnvOrDefault("CRIME_API_URL", police.DefaultBaseURL),
		WeatherAPIURL:   sharedcfg.EnvOrDefault("WEATHER_API_URL", openmeteo.DefaultBaseURL),
		WeatherTimezone: sharedcfg.EnvOrDefault("WEATHER_TIMEZONE", "Europe/London"),
		RequestTimeout:  timeout,
		RequestDelay:    delay,

		LogLevel:        sharedcfg.EnvOrDefault("LOG_LEVEL", "info"),
		LogFormat:       sharedcfg.EnvOrDefault("LOG_FORMAT", "text"),
		MetricsAddr:     os.Getenv("METRICS_ADDR"),
		ShutdownTimeout: shutdownTimeout,

		KafkaBrokers:    parseBrokers(os.Getenv("KAFKA_BROKERS")),
		KafkaCleanTopic: sharedcfg.EnvOrDefault("KAFKA_CLEAN_TOPIC", "bristol-crime-cleaned"),
	}

	if err := cfg.validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

func (c *Config) validate() error {
	if c.CenterLatitude < -90 || c.CenterLatitude > 90 {
		return errors.New("CENTER_LATITUDE must be within [-90, 90]")
	}
	if c.CenterLongitude < -180 || c.CenterLongitude > 180 {
		return errors.New("CENTER_LONGITUDE must be within [-180, 180]")
	}
	if c.RadiusMiles <= 0 {
		return errors.New("RADIUS_MILES must be positive")
	}
	if c.StartMonth.After(c.EndMonth) {
		return fmt.Errorf("START_MONTH %s is after END_MONTH %s", c.StartMonth, c.EndMonth)
	}
	if c.OutputDirectory == "" {
		return errors.New("OUTPUT_DIRECTORY is required")
	}
	if c.AreaName == "" || strings.ContainsAny(c.AreaName, `/\`) {
		return errors.New("AREA_NAME must be a non-empty file name prefix")
	}
	if c.KafkaEnabled() && c.KafkaCleanTopic == "" {
		return errors.New("KAFKA_CLEAN_TOPIC is required when KAFKA_BROKERS is set")
	}
	return nil
}

func floatSetting(key string, fileValue *float64, def float64) (float64, error) {
	if s := os.Getenv(key); s != "" {
		v, err := strconv.ParseFloat(strings.TrimSpace(s), 64)
		if err != nil {
			return 0, fmt.Errorf("invalid %s: %w", key, err)
		}
		return v, nil
	}
	if fileValue != nil {
		return *fileValue, nil
	}
	return def, nil
}

func monthSetting(key, fileValue, def string) (domain.Month, error) {
	s := def
	if fileValue != "" {
		s = fileValue
	}
	s = sharedcfg.EnvOrDefault(key, s)
	m, err := domain.ParseMonth(strings.TrimSpace(s))
	if err != nil {
		return domain.Month{}, fmt.Errorf("invalid %s: %w", key, err)
	}
	return m, nil
}

func durationSetting(key, def string) (time.Duration, error) {
	d, err := time.ParseDuration(sharedcfg.EnvOrDefault(key, def))
	if err != nil {
		return 0, fmt.Errorf("invalid %s: %w", key, err)
	}
	return d, nil
}

func parseBrokers(s string) []string {
	if strings.TrimSpace(s) == "" {
		return nil
	}
	return sharedcfg.ParseBrokers(s)
}
