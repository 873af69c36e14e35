package openmeteo

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"

	"github.com/couchcryptid/bristol-crime-etl/internal/domain"
)

// DefaultBaseURL is the Open-Meteo historical archive endpoint.
const DefaultBaseURL = "https://archive-api.open-meteo.com/v1/archive"

const maxErrorBody = 512

// dailyFields are the daily variables requested from the archive.
var dailyFields = []string{
	"temperature_2m_max",
	"temperature_2m_min",
	"precipitation_sum",
	"windspeed_10m_max",
	"weathercode",
}

// Client fetches daily archived weather for a fixed point.
type Client struct {
	httpClient *http.Client
	baseURL    string
	center     domain.Point
	timezone   string
	logger     *slog.Logger
}

// NewClient creates an archive client. Dates are interpreted in timezone.
func NewClient(baseURL string, center domain.Point, timezone string, timeout time.Duration, logger *slog.Logger) *Client {
	return &Client{
		httpClient: &http.Client{
			Timeout: timeout,
		},
		baseURL:  baseURL,
		center:   center,
		timezone: timezone,
		logger:   logger,
	}
}

// FetchMonth returns one record per day of month.
func (c *Client) FetchMonth(ctx context.Context, month domain.Month) ([]domain.WeatherRecord, error) {
	params := url.Values{
		"latitude":   {strconv.FormatFloat(c.center.Lat, 'f', -1, 64)},
		"longitude":  {strconv.FormatFloat(c.center.Lon, 'f', -1, 64)},
		"start_date": {month.FirstDay().Format(time.DateOnly)},
		"end_date":   {month.LastDay().Format(time.DateOnly)},
		"daily":      {strings.Join(dailyFields, ",")},
		"timezone":   {c.timezone},
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.baseURL+"?"+params.Encode(), nil)
	if err != nil {
		return nil, fmt.Errorf("create request: %w", err)
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, &domain.TransportError{Err: err}
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		body, _ := io.ReadAll(io.LimitReader(resp.Body, maxErrorBody))
		return nil, &domain.HTTPError{StatusCode: resp.StatusCode, Body: string(body)}
	}

	var archive response
	if err := json.NewDecoder(resp.Body).Decode(&archive); err != nil {
		return nil, &domain.DecodeError{Err: fmt.Errorf("decode archive response: %w", err)}
	}
	if archive.Daily == nil {
		return nil, &domain.DecodeError{Err: fmt.Errorf("archive response has no daily block")}
	}

	records, err := archive.Daily.records()
	if err != nil {
		return nil, &domain.DecodeError{Err: err}
	}
	c.logger.Debug("weather response decoded", "month", month.String(), "days", len(records))
	return records, nil
}

// Open-Meteo archive response types.

type response struct {
	Latitude  float64 `json:"latitude"`
	Longitude float64 `json:"longitude"`
	Timezone  string  `json:"timezone"`
	Daily     *daily  `json:"daily"`
}

// daily holds parallel arrays indexed by day offset. Null entries are days
// with no value.
type daily struct {
	Time             []string   `json:"time"`
	Temperature2mMax []*float64 `json:"temperature_2m_max"`
	Temperature2mMin []*float64 `json:"temperature_2m_min"`
	PrecipitationSum []*float64 `json:"precipitation_sum"`
	Windspeed10mMax  []*float64 `json:"windspeed_10m_max"`
	Weathercode      []*float64 `json:"weathercode"`
}

func (d *daily) records() ([]domain.WeatherRecord, error) {
	n := len(d.Time)
	for name, length := range map[string]int{
		"temperature_2m_max": len(d.Temperature2mMax),
		"temperature_2m_min": len(d.Temperature2mMin),
		"precipitation_sum":  len(d.PrecipitationSum),
		"windspeed_10m_max":  len(d.Windspeed10mMax),
		"weathercode":        len(d.Weathercode),
	} {
		if length < n {
			return nil, fmt.Errorf("daily %s has %d values for %d days", name, length, n)
		}
	}

	records := make([]domain.WeatherRecord, n)
	for i, date := range d.Time {
		records[i] = domain.WeatherRecord{
			Date:             date,
			TemperatureMax:   d.Temperature2mMax[i],
			TemperatureMin:   d.Temperature2mMin[i],
			PrecipitationSum: d.PrecipitationSum[i],
			WindspeedMax:     d.Windspeed10mMax[i],
			WeatherCode:      weatherCodeAt(d.Weathercode, i),
		}
	}
	return records, nil
}

// weatherCodeAt converts a WMO code to an int. Codes are whole numbers but
// the archive may encode them as floats.
func weatherCodeAt(codes []*float64, i int) *int {
	if codes[i] == nil {
		return nil
	}
	code := int(*codes[i])
	return &code
}
