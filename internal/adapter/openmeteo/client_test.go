package openmeteo

import (
	"context"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/couchcryptid/bristol-crime-etl/internal/domain"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const headerContentType = "Content-Type"

func testClient(baseURL string, timeout time.Duration) *Client {
	return NewClient(baseURL, domain.Point{Lat: 51.4545, Lon: -2.5879}, "Europe/London", timeout,
		slog.New(slog.NewTextHandler(io.Discard, nil)))
}

func TestClient_FetchMonth_Success(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		q := r.URL.Query()
		assert.Equal(t, "51.4545", q.Get("latitude"))
		assert.Equal(t, "-2.5879", q.Get("longitude"))
		assert.Equal(t, "2012-02-01", q.Get("start_date"))
		assert.Equal(t, "2012-02-29", q.Get("end_date"))
		assert.Equal(t, "temperature_2m_max,temperature_2m_min,precipitation_sum,windspeed_10m_max,weathercode", q.Get("daily"))
		assert.Equal(t, "Europe/London", q.Get("timezone"))

		w.Header().Set(headerContentType, "application/json")
		_, _ = w.Write([]byte(`{
			"latitude": 51.45, "longitude": -2.59, "timezone": "Europe/London",
			"daily": {
				"time": ["2012-02-01", "2012-02-02"],
				"temperature_2m_max": [3.1, null],
				"temperature_2m_min": [-2.4, -3.0],
				"precipitation_sum": [0.0, 1.2],
				"windspeed_10m_max": [14.5, 9.8],
				"weathercode": [3, 61]
			}
		}`))
	}))
	defer srv.Close()

	records, err := testClient(srv.URL, 5*time.Second).FetchMonth(context.Background(), domain.Month{Year: 2012, Month: time.February})
	require.NoError(t, err)
	require.Len(t, records, 2)

	assert.Equal(t, []string{"2012-02-01", "3.1", "-2.4", "0", "14.5", "3"}, records[0].Cells())
	assert.Equal(t, []string{"2012-02-02", "", "-3", "1.2", "9.8", "61"}, records[1].Cells())
}

func TestClient_FetchMonth_MisalignedArrays(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		_, _ = w.Write([]byte(`{"daily": {
			"time": ["2012-02-01", "2012-02-02"],
			"temperature_2m_max": [3.1],
			"temperature_2m_min": [1, 2],
			"precipitation_sum": [1, 2],
			"windspeed_10m_max": [1, 2],
			"weathercode": [1, 2]
		}}`))
	}))
	defer srv.Close()

	_, err := testClient(srv.URL, 5*time.Second).FetchMonth(context.Background(), domain.Month{Year: 2012, Month: time.February})
	require.Error(t, err)
	assert.Equal(t, "decode", domain.ErrorKind(err))
	assert.Contains(t, err.Error(), "temperature_2m_max")
}

func TestClient_FetchMonth_MissingDaily(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		_, _ = w.Write([]byte(`{"latitude": 51.45}`))
	}))
	defer srv.Close()

	_, err := testClient(srv.URL, 5*time.Second).FetchMonth(context.Background(), domain.Month{Year: 2012, Month: time.March})
	require.Error(t, err)
	assert.Equal(t, "decode", domain.ErrorKind(err))
}

func TestClient_FetchMonth_APIError(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusBadRequest)
		_, _ = w.Write([]byte(`{"error":true,"reason":"Parameter 'start_date' is out of allowed range"}`))
	}))
	defer srv.Close()

	_, err := testClient(srv.URL, 5*time.Second).FetchMonth(context.Background(), domain.Month{Year: 1900, Month: time.January})
	require.Error(t, err)
	assert.Equal(t, "http", domain.ErrorKind(err))
	assert.Contains(t, err.Error(), "400")
}

func TestClient_FetchMonth_Timeout(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		time.Sleep(200 * time.Millisecond)
		w.WriteHeader(http.StatusOK)
	}))
	defer srv.Close()

	_, err := testClient(srv.URL, 50*time.Millisecond).FetchMonth(context.Background(), domain.Month{Year: 2012, Month: time.March})
	require.Error(t, err)
	assert.Equal(t, "transport", domain.ErrorKind(err))
}
