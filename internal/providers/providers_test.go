package providers

import (
	"context"
	"net/http"
	"net/http/httptest"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/tidwall/gjson"

	"navigator/internal/apperr"
)

type memCache struct {
	mu   sync.Mutex
	data map[string][]byte
}

func newMemCache() *memCache { return &memCache{data: map[string][]byte{}} }

func (c *memCache) Get(_ context.Context, key string) ([]byte, bool) {
	c.mu.Lock()
	defer c.mu.Unlock()
	v, ok := c.data[key]
	return v, ok
}

func (c *memCache) Set(_ context.Context, key string, value []byte, _ time.Duration) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.data[key] = value
}

const forecastPayload = `{
  "location": {"name": "Tallahassee", "localtime_epoch": 1700003600},
  "current": {"temp_c": 20},
  "forecast": {"forecastday": [
    {"hour": [
      {"time_epoch": 1700000000, "time": "2023-11-14 22:00", "temp_c": 18.5, "temp_f": 65.3, "is_day": 0, "condition": {"text": "Clear"}, "wind_mph": 3.1, "wind_kph": 5.0, "wind_degree": 90, "wind_dir": "E"},
      {"time_epoch": 1700003600, "time": "2023-11-14 23:00", "temp_c": 17.0, "temp_f": 62.6, "is_day": 0, "condition": {"text": "Clear"}, "wind_mph": 2.5, "wind_kph": 4.0, "wind_degree": 80, "wind_dir": "E"}
    ]},
    {"hour": [
      {"time_epoch": 1700007200, "time": "2023-11-15 00:00", "temp_c": 16.0, "temp_f": 60.8, "is_day": 0, "condition": {"text": "Cloudy"}, "wind_mph": 2.0, "wind_kph": 3.2, "wind_degree": 70, "wind_dir": "ENE"},
      {"time_epoch": 1700010800, "time": "2023-11-15 01:00", "temp_c": 15.0, "temp_f": 59.0, "is_day": 0, "wind_mph": 1.0, "wind_kph": 1.6, "wind_degree": 60, "wind_dir": "ENE"}
    ]}
  ]}
}`

func TestReshapeForecastSkipsPastHours(t *testing.T) {
	forecast, ok := ReshapeForecast([]byte(forecastPayload), 2)
	require.True(t, ok)

	assert.Len(t, forecast.Forecast, 2)
	assert.Equal(t, "2023-11-14 23:00", forecast.Forecast["forecast_hour_1"].Time)
	assert.Equal(t, "2023-11-15 00:00", forecast.Forecast["forecast_hour_2"].Time)
	assert.Equal(t, 16.0, forecast.Forecast["forecast_hour_2"].TempC)
	assert.JSONEq(t, `{"text":"Cloudy"}`, string(forecast.Forecast["forecast_hour_2"].Condition))
	assert.Equal(t, "Tallahassee", gjson.GetBytes(forecast.Location, "name").String())
}

func TestReshapeForecastShortProviderData(t *testing.T) {
	forecast, ok := ReshapeForecast([]byte(forecastPayload), 48)
	require.True(t, ok)

	assert.Len(t, forecast.Forecast, 3)
	assert.Equal(t, "null", string(forecast.Forecast["forecast_hour_3"].Condition))
}

func TestReshapeForecastUnexpectedShape(t *testing.T) {
	_, ok := ReshapeForecast([]byte(`{"error":{"code":1006,"message":"No matching location found."}}`), 3)
	assert.False(t, ok)
}

func TestWeatherCurrentUsesCache(t *testing.T) {
	var calls int
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		calls++
		assert.Equal(t, "/v1/current.json", r.URL.Path)
		assert.Equal(t, "test-key", r.URL.Query().Get("key"))
		assert.Equal(t, "30.4383,-84.2807", r.URL.Query().Get("q"))
		assert.Equal(t, "yes", r.URL.Query().Get("aqi"))
		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(`{"current":{"temp_c":21.5}}`))
	}))
	defer srv.Close()

	client := NewWeatherClient(WeatherConfig{
		BaseURL:  srv.URL + "/v1",
		APIKey:   "test-key",
		CacheTTL: time.Minute,
		Cache:    newMemCache(),
	})

	for i := 0; i < 2; i++ {
		payload, err := client.Current(context.Background(), "30.4383,-84.2807", "yes")
		require.NoError(t, err)
		assert.Equal(t, 21.5, gjson.GetBytes(payload, "current.temp_c").Float())
	}
	assert.Equal(t, 1, calls)
}

func TestWeatherErrorPayloadPassesThroughUncached(t *testing.T) {
	var calls int
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		calls++
		w.WriteHeader(http.StatusBadRequest)
		_, _ = w.Write([]byte(`{"error":{"code":1006,"message":"No matching location found."}}`))
	}))
	defer srv.Close()

	client := NewWeatherClient(WeatherConfig{BaseURL: srv.URL + "/", APIKey: "k", CacheTTL: time.Minute, Cache: newMemCache()})

	for i := 0; i < 2; i++ {
		payload, err := client.Forecast(context.Background(), "0,0", 2)
		require.NoError(t, err)
		assert.Equal(t, int64(1006), gjson.GetBytes(payload, "error.code").Int())
	}
	assert.Equal(t, 2, calls)
}

func TestWeatherMissingKey(t *testing.T) {
	client := NewWeatherClient(WeatherConfig{BaseURL: "http://unused/"})
	_, err := client.Current(context.Background(), "1,2", "no")
	require.Error(t, err)
	assert.Equal(t, "WEATHER_API_KEY not configured", err.Error())
}

func TestWeatherTimeout(t *testing.T) {
	release := make(chan struct{})
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		select {
		case <-release:
		case <-r.Context().Done():
		}
	}))
	defer srv.Close()
	defer close(release)

	client := NewWeatherClient(WeatherConfig{BaseURL: srv.URL + "/", APIKey: "k", Timeout: 50 * time.Millisecond})
	_, err := client.Current(context.Background(), "1,2", "no")
	require.Error(t, err)
	assert.True(t, apperr.Is(err, apperr.KindProviderTimeout))
}

func TestWeatherServerErrorIsProviderFailure(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusBadGateway)
	}))
	defer srv.Close()

	client := NewWeatherClient(WeatherConfig{BaseURL: srv.URL + "/", APIKey: "k"})
	_, err := client.Current(context.Background(), "1,2", "no")
	require.Error(t, err)
	assert.True(t, apperr.Is(err, apperr.KindProvider))
}

func TestBreakerOpensAfterConsecutiveFailures(t *testing.T) {
	var calls int
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		calls++
		w.WriteHeader(http.StatusInternalServerError)
	}))
	defer srv.Close()

	client := NewWeatherClient(WeatherConfig{BaseURL: srv.URL + "/", APIKey: "k"})
	for i := 0; i < 8; i++ {
		_, err := client.Current(context.Background(), "1,2", "no")
		require.Error(t, err)
		assert.True(t, apperr.Is(err, apperr.KindProvider))
	}
	assert.Equal(t, 5, calls)
}

const directionsPayload = `{
  "status": "OK",
  "routes": [{
    "overview_polyline": {"points": "a~l~Fjk~uOwHJy@P"},
    "bounds": {"northeast": {"lat": 30.45, "lng": -84.27}, "southwest": {"lat": 30.43, "lng": -84.29}},
    "legs": [{
      "distance": {"text": "2.1 mi", "value": 3380},
      "duration": {"text": "7 mins", "value": 420},
      "start_location": {"lat": 30.4383, "lng": -84.2807},
      "end_location": {"lat": 30.4518, "lng": -84.2727},
      "start_address": "A St",
      "end_address": "B Ave"
    }]
  }]
}`

func TestDirectionsRoute(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "30.4383,-84.2807", r.URL.Query().Get("origin"))
		assert.Equal(t, "30.4518,-84.2727", r.URL.Query().Get("destination"))
		assert.Equal(t, "maps-key", r.URL.Query().Get("key"))
		_, _ = w.Write([]byte(directionsPayload))
	}))
	defer srv.Close()

	client := NewDirectionsClient(DirectionsConfig{BaseURL: srv.URL + "/directions/json", APIKey: "maps-key"})
	route, err := client.Route(context.Background(), LatLng{30.4383, -84.2807}, LatLng{30.4518, -84.2727})
	require.NoError(t, err)

	assert.Equal(t, "a~l~Fjk~uOwHJy@P", route.OverviewPolyline)
	assert.Equal(t, "A St", route.StartAddress)
	assert.Equal(t, "B Ave", route.EndAddress)
	assert.JSONEq(t, `{"text":"2.1 mi","value":3380}`, string(route.Distance))
	assert.JSONEq(t, `{"lat":30.4518,"lng":-84.2727}`, string(route.EndLocation))
}

func TestDirectionsRouteNotFound(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write([]byte(`{"status":"ZERO_RESULTS","routes":[]}`))
	}))
	defer srv.Close()

	cache := newMemCache()
	client := NewDirectionsClient(DirectionsConfig{BaseURL: srv.URL, APIKey: "k", CacheTTL: time.Minute, Cache: cache})
	_, err := client.Route(context.Background(), LatLng{0, 0}, LatLng{1, 1})

	var notFound *RouteNotFoundError
	require.ErrorAs(t, err, &notFound)
	assert.Equal(t, "ZERO_RESULTS", notFound.Status)
	assert.Equal(t, "Could not calculate route", notFound.Message)
	assert.Empty(t, cache.data)
}

func TestDirectionsDeniedCarriesProviderMessage(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write([]byte(`{"status":"REQUEST_DENIED","error_message":"The provided API key is invalid.","routes":[]}`))
	}))
	defer srv.Close()

	client := NewDirectionsClient(DirectionsConfig{BaseURL: srv.URL, APIKey: "bad"})
	_, err := client.Route(context.Background(), LatLng{0, 0}, LatLng{1, 1})

	var notFound *RouteNotFoundError
	require.ErrorAs(t, err, &notFound)
	assert.Equal(t, "REQUEST_DENIED", notFound.Status)
	assert.Equal(t, "The provided API key is invalid.", notFound.Message)
}

func TestLatLngString(t *testing.T) {
	assert.Equal(t, "30.4383,-84.2807", LatLng{30.4383, -84.2807}.String())
	assert.Equal(t, "0,0", LatLng{}.String())
}
