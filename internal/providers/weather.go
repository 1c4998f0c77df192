package providers

import (
	"context"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"

	"github.com/goccy/go-json"

	"navigator/internal/apperr"
	"navigator/internal/logging"
	"navigator/internal/metrics"
)

const weatherProvider = "weatherapi"

// WeatherConfig configures a WeatherClient. BaseURL ends with the API version
// path, e.g. http://api.weatherapi.com/v1/.
type WeatherConfig struct {
	BaseURL    string
	APIKey     string
	Timeout    time.Duration
	CacheTTL   time.Duration
	Cache      Cache
	HTTPClient *http.Client
}

// WeatherClient fetches current conditions and forecasts from WeatherAPI.com.
type WeatherClient struct {
	baseURL  string
	apiKey   string
	cacheTTL time.Duration
	cache    Cache
	fetch    *fetcher
}

func NewWeatherClient(cfg WeatherConfig) *WeatherClient {
	base := cfg.BaseURL
	if !strings.HasSuffix(base, "/") {
		base += "/"
	}
	cache := cfg.Cache
	if cache == nil {
		cache = NopCache{}
	}
	return &WeatherClient{
		baseURL:  base,
		apiKey:   cfg.APIKey,
		cacheTTL: cfg.CacheTTL,
		cache:    cache,
		fetch:    newFetcher(weatherProvider, cfg.HTTPClient, cfg.Timeout),
	}
}

type weatherAPIError struct {
	Error struct {
		Code    int    `json:"code"`
		Message string `json:"message"`
	} `json:"error"`
}

// Current returns the provider's current-conditions payload for "lat,lon".
// aqi is passed through as the provider's aqi flag ("yes" or "no").
func (c *WeatherClient) Current(ctx context.Context, latLon, aqi string) (json.RawMessage, error) {
	params := url.Values{}
	params.Set("q", latLon)
	params.Set("aqi", aqi)
	return c.call(ctx, "current", params)
}

// Forecast returns the provider's forecast payload covering the given number
// of days.
func (c *WeatherClient) Forecast(ctx context.Context, latLon string, days int) (json.RawMessage, error) {
	params := url.Values{}
	params.Set("q", latLon)
	params.Set("days", strconv.Itoa(days))
	return c.call(ctx, "forecast", params)
}

func (c *WeatherClient) call(ctx context.Context, kind string, params url.Values) (json.RawMessage, error) {
	if c.apiKey == "" {
		return nil, apperr.New(apperr.KindInternal, "WEATHER_API_KEY not configured")
	}

	cacheKey := "weather:" + kind + ":" + params.Encode()
	if cached, ok := c.cache.Get(ctx, cacheKey); ok {
		metrics.ProviderRequests.WithLabelValues(weatherProvider, "cache_hit").Inc()
		return cached, nil
	}

	params.Set("key", c.apiKey)
	resp, err := c.fetch.get(ctx, c.baseURL+kind+".json?"+params.Encode())
	if err != nil {
		logging.Ctx(ctx).Error().Err(err).Str("kind", kind).Msg("[WEATHER] request failed")
		return nil, err
	}
	if !json.Valid(resp.body) {
		return nil, apperr.New(apperr.KindProvider, "Weather provider returned an invalid response")
	}

	if resp.status != http.StatusOK {
		// Error payloads are passed through to the caller but never cached.
		var apiErr weatherAPIError
		if err := json.Unmarshal(resp.body, &apiErr); err == nil && apiErr.Error.Message != "" {
			logging.Ctx(ctx).Warn().Int("status", resp.status).Int("code", apiErr.Error.Code).
				Str("message", apiErr.Error.Message).Msg("[WEATHER] provider returned an error")
		}
		return resp.body, nil
	}

	c.cache.Set(ctx, cacheKey, resp.body, c.cacheTTL)
	return resp.body, nil
}
