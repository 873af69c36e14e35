package police

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"net/url"
	"strconv"
	"time"

	"github.com/couchcryptid/bristol-crime-etl/internal/domain"
)

// DefaultBaseURL is the street-level all-crime endpoint of data.police.uk.
const DefaultBaseURL = "https://data.police.uk/api/crimes-street/all-crime"

// maxErrorBody bounds how much of a failed response is kept in the error.
const maxErrorBody = 512

// Client fetches street-level crimes around a fixed center point.
type Client struct {
	httpClient *http.Client
	baseURL    string
	center     domain.Point
	logger     *slog.Logger
}

// NewClient creates a crime API client. Each request is bounded by timeout.
func NewClient(baseURL string, center domain.Point, timeout time.Duration, logger *slog.Logger) *Client {
	return &Client{
		httpClient: &http.Client{
			Timeout: timeout,
		},
		baseURL: baseURL,
		center:  center,
		logger:  logger,
	}
}

// FetchMonth returns every crime recorded around the center point in month.
// An empty slice with a nil error means the API had no records.
func (c *Client) FetchMonth(ctx context.Context, month domain.Month) ([]domain.CrimeRecord, error) {
	params := url.Values{
		"lat":  {strconv.FormatFloat(c.center.Lat, 'f', -1, 64)},
		"lng":  {strconv.FormatFloat(c.center.Lon, 'f', -1, 64)},
		"date": {month.String()},
	}

	body, err := c.doRequest(ctx, c.baseURL+"?"+params.Encode())
	if err != nil {
		return nil, err
	}

	records, err := domain.DecodeCrimeRecords(body)
	if err != nil {
		return nil, &domain.DecodeError{Err: err}
	}
	c.logger.Debug("crime response decoded", "month", month.String(), "records", len(records))
	return records, nil
}

func (c *Client) doRequest(ctx context.Context, fullURL string) ([]byte, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, fullURL, nil)
	if err != nil {
		return nil, fmt.Errorf("create request: %w", err)
	}
	req.Header.Set("Accept", "application/json")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, &domain.TransportError{Err: err}
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		body, _ := io.ReadAll(io.LimitReader(resp.Body, maxErrorBody))
		return nil, &domain.HTTPError{StatusCode: resp.StatusCode, Body: string(body)}
	}

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, &domain.TransportError{Err: fmt.Errorf("read body: %w", err)}
	}
	return body, nil
}
