package handlers

import (
	"context"
	"net/http"
	"strconv"
	"strings"

	"github.com/gin-gonic/gin"
	"github.com/goccy/go-json"

	"navigator/internal/providers"
)

const (
	defaultForecastHours = 3
	maxForecastHours     = 48
	forecastDays         = 2
)

type WeatherService interface {
	Current(ctx context.Context, latLon, aqi string) (json.RawMessage, error)
	Forecast(ctx context.Context, latLon string, days int) (json.RawMessage, error)
}

// parseLatLon validates a "lat,lon" pair and returns it in canonical form.
func parseLatLon(raw string) (string, bool) {
	parts := strings.Split(strings.TrimSpace(raw), ",")
	if len(parts) != 2 {
		return "", false
	}
	lat, err := strconv.ParseFloat(strings.TrimSpace(parts[0]), 64)
	if err != nil || lat < -90 || lat > 90 {
		return "", false
	}
	lon, err := strconv.ParseFloat(strings.TrimSpace(parts[1]), 64)
	if err != nil || lon < -180 || lon > 180 {
		return "", false
	}
	return providers.LatLng{Lat: lat, Lng: lon}.String(), true
}

func latLonQuery(c *gin.Context, route string) (string, bool) {
	raw := c.Query("lat_lon")
	if strings.TrimSpace(raw) == "" {
		respondWithError(c, http.StatusBadRequest, route, "User coordinates not provided")
		return "", false
	}
	latLon, ok := parseLatLon(raw)
	if !ok {
		respondWithError(c, http.StatusBadRequest, route, "lat_lon must be formatted as <lat>,<lon>")
		return "", false
	}
	return latLon, true
}

// CurrentWeather proxies the provider's current conditions unchanged.
func CurrentWeather(weather WeatherService) gin.HandlerFunc {
	return func(c *gin.Context) {
		const route = "GET /api/weather/current"
		defer handlePanic(c, route)

		latLon, ok := latLonQuery(c, route)
		if !ok {
			return
		}

		aqi := strings.ToLower(c.DefaultQuery("aqi_option", "yes"))
		if aqi != "yes" && aqi != "no" {
			respondWithError(c, http.StatusBadRequest, route, "aqi_option must be yes or no")
			return
		}

		payload, err := weather.Current(c.Request.Context(), latLon, aqi)
		if err != nil {
			respondError(c, route, err)
			return
		}
		c.JSON(http.StatusOK, gin.H{"data": payload})
	}
}

// ForecastWeather returns the next hours of forecast starting at the
// location's local time.
func ForecastWeather(weather WeatherService) gin.HandlerFunc {
	return func(c *gin.Context) {
		const route = "GET /api/weather/forecast"
		defer handlePanic(c, route)

		latLon, ok := latLonQuery(c, route)
		if !ok {
			return
		}

		hours := defaultForecastHours
		if raw := c.Query("hours"); raw != "" {
			n, err := strconv.Atoi(raw)
			if err != nil || n < 1 || n > maxForecastHours {
				respondWithError(c, http.StatusBadRequest, route, "hours must be an integer between 1 and 48")
				return
			}
			hours = n
		}

		payload, err := weather.Forecast(c.Request.Context(), latLon, forecastDays)
		if err != nil {
			respondError(c, route, err)
			return
		}

		forecast, ok := providers.ReshapeForecast(payload, hours)
		if !ok {
			c.JSON(http.StatusOK, gin.H{"data": payload})
			return
		}
		c.JSON(http.StatusOK, gin.H{"data": forecast})
	}
}
