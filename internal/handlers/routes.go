package handlers

import (
	"context"
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"

	"navigator/internal/logging"
	"navigator/internal/providers"
)

type DirectionsService interface {
	Route(ctx context.Context, origin, destination providers.LatLng) (*providers.Route, error)
}

type routeRequest struct {
	OriginLat      *float64 `json:"origin_lat" binding:"required,gte=-90,lte=90"`
	OriginLon      *float64 `json:"origin_lon" binding:"required,gte=-180,lte=180"`
	DestinationLat *float64 `json:"destination_lat" binding:"required,gte=-90,lte=90"`
	DestinationLon *float64 `json:"destination_lon" binding:"required,gte=-180,lte=180"`
}

// GenerateRoute returns the first driving route between two points. A zero
// coordinate is valid; only absent fields are rejected.
func GenerateRoute(directions DirectionsService) gin.HandlerFunc {
	return func(c *gin.Context) {
		const route = "POST /api/routes/generate"
		defer handlePanic(c, route)

		var req routeRequest
		if err := c.ShouldBindJSON(&req); err != nil {
			respondValidationError(c, "Missing required parameters: origin_lat, origin_lon, destination_lat, destination_lon", err)
			return
		}

		origin := providers.LatLng{Lat: *req.OriginLat, Lng: *req.OriginLon}
		destination := providers.LatLng{Lat: *req.DestinationLat, Lng: *req.DestinationLon}

		result, err := directions.Route(c.Request.Context(), origin, destination)
		if err != nil {
			var notFound *providers.RouteNotFoundError
			if errors.As(err, &notFound) {
				logging.Ctx(c.Request.Context()).Info().Str("status", notFound.Status).Msgf("[%s] no route", route)
				c.JSON(http.StatusNotFound, gin.H{
					"error":   "Route not found",
					"status":  notFound.Status,
					"message": notFound.Message,
				})
				return
			}
			respondError(c, route, err)
			return
		}

		c.JSON(http.StatusOK, gin.H{"status": "success", "route": result})
	}
}
