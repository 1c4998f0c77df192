package providers

import (
	"context"
	"fmt"
	"net/http"
	"net/url"
	"strconv"
	"time"

	"github.com/goccy/go-json"
	"github.com/tidwall/gjson"

	"navigator/internal/apperr"
	"navigator/internal/logging"
	"navigator/internal/metrics"
)

const directionsProvider = "google_directions"

type DirectionsConfig struct {
	BaseURL    string
	APIKey     string
	Timeout    time.Duration
	CacheTTL   time.Duration
	Cache      Cache
	HTTPClient *http.Client
}

// DirectionsClient requests driving routes from the Google Directions API.
type DirectionsClient struct {
	baseURL  string
	apiKey   string
	cacheTTL time.Duration
	cache    Cache
	fetch    *fetcher
}

func NewDirectionsClient(cfg DirectionsConfig) *DirectionsClient {
	cache := cfg.Cache
	if cache == nil {
		cache = NopCache{}
	}
	return &DirectionsClient{
		baseURL:  cfg.BaseURL,
		apiKey:   cfg.APIKey,
		cacheTTL: cfg.CacheTTL,
		cache:    cache,
		fetch:    newFetcher(directionsProvider, cfg.HTTPClient, cfg.Timeout),
	}
}

type LatLng struct {
	Lat float64
	Lng float64
}

func (p LatLng) String() string {
	return strconv.FormatFloat(p.Lat, 'f', -1, 64) + "," + strconv.FormatFloat(p.Lng, 'f', -1, 64)
}

// Route is the first route's overview and first leg.
type Route struct {
	OverviewPolyline string          `json:"overview_polyline"`
	Bounds           json.RawMessage `json:"bounds"`
	Distance         json.RawMessage `json:"distance"`
	Duration         json.RawMessage `json:"duration"`
	StartLocation    json.RawMessage `json:"start_location"`
	EndLocation      json.RawMessage `json:"end_location"`
	StartAddress     string          `json:"start_address"`
	EndAddress       string          `json:"end_address"`
}

// RouteNotFoundError reports a provider response without a usable route.
type RouteNotFoundError struct {
	Status  string
	Message string
}

func (e *RouteNotFoundError) Error() string {
	return fmt.Sprintf("route not found: %s: %s", e.Status, e.Message)
}

func (c *DirectionsClient) Route(ctx context.Context, origin, destination LatLng) (*Route, error) {
	if c.apiKey == "" {
		return nil, apperr.New(apperr.KindInternal, "GOOGLE_MAPS_API_KEY not configured")
	}

	cacheKey := "route:" + origin.String() + ":" + destination.String()
	if cached, ok := c.cache.Get(ctx, cacheKey); ok {
		if route, err := parseRoute(cached); err == nil {
			metrics.ProviderRequests.WithLabelValues(directionsProvider, "cache_hit").Inc()
			return route, nil
		}
	}

	params := url.Values{}
	params.Set("origin", origin.String())
	params.Set("destination", destination.String())
	params.Set("key", c.apiKey)

	resp, err := c.fetch.get(ctx, c.baseURL+"?"+params.Encode())
	if err != nil {
		logging.Ctx(ctx).Error().Err(err).Msg("[ROUTES] directions request failed")
		return nil, err
	}
	if !gjson.ValidBytes(resp.body) {
		return nil, apperr.New(apperr.KindProvider, "Directions provider returned an invalid response")
	}

	route, err := parseRoute(resp.body)
	if err != nil {
		logging.Ctx(ctx).Warn().Err(err).Msg("[ROUTES] no route returned")
		return nil, err
	}
	c.cache.Set(ctx, cacheKey, resp.body, c.cacheTTL)
	return route, nil
}

func parseRoute(body []byte) (*Route, error) {
	doc := gjson.ParseBytes(body)
	status := doc.Get("status").String()
	first := doc.Get("routes.0")
	if status != "OK" || !first.Exists() {
		msg := doc.Get("error_message").String()
		if msg == "" {
			msg = "Could not calculate route"
		}
		return nil, &RouteNotFoundError{Status: status, Message: msg}
	}

	leg := first.Get("legs.0")
	return &Route{
		OverviewPolyline: first.Get("overview_polyline.points").String(),
		Bounds:           rawOrNull(first.Get("bounds")),
		Distance:         rawOrNull(leg.Get("distance")),
		Duration:         rawOrNull(leg.Get("duration")),
		StartLocation:    rawOrNull(leg.Get("start_location")),
		EndLocation:      rawOrNull(leg.Get("end_location")),
		StartAddress:     leg.Get("start_address").String(),
		EndAddress:       leg.Get("end_address").String(),
	}, nil
}
