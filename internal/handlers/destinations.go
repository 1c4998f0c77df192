package handlers

import (
	"net/http"
	"strings"
	"time"

	"github.com/gin-gonic/gin"

	"navigator/internal/addresslist"
	"navigator/internal/models"
	"navigator/internal/store"
)

type destinationRequest struct {
	Label   string   `json:"label"`
	Address string   `json:"address"`
	Lat     *float64 `json:"lat" binding:"required,gte=-90,lte=90"`
	Lng     *float64 `json:"lng" binding:"required,gte=-180,lte=180"`
	PlaceID string   `json:"place_id"`
}

func ListDestinations(users store.UserStore, timeout time.Duration) gin.HandlerFunc {
	return func(c *gin.Context) {
		const route = "GET /api/users/destinations"
		defer handlePanic(c, route)

		subject, ok := currentSubject(c, route)
		if !ok {
			return
		}

		user, err := loadUser(c.Request.Context(), users, subject, timeout)
		if err != nil {
			respondError(c, route, err)
			return
		}
		c.JSON(http.StatusOK, gin.H{"destinations": user.Normalize().RecentDestinations})
	}
}

// AddDestination moves the destination to the front of the user's recent
// destinations, matching by place id when both sides have one. A blank label
// falls back to the address.
func AddDestination(users store.UserStore, now func() time.Time, max int, timeout time.Duration) gin.HandlerFunc {
	return func(c *gin.Context) {
		const route = "POST /api/users/destinations"
		defer handlePanic(c, route)

		subject, ok := currentSubject(c, route)
		if !ok {
			return
		}

		var req destinationRequest
		if err := c.ShouldBindJSON(&req); err != nil {
			respondValidationError(c, "validation failed", err)
			return
		}

		user, err := loadUser(c.Request.Context(), users, subject, timeout)
		if err != nil {
			respondError(c, route, err)
			return
		}

		address := strings.TrimSpace(req.Address)
		label := strings.TrimSpace(req.Label)
		if label == "" {
			label = address
		}

		addresslist.AddDestination(user, models.RecentDestination{
			Label:   label,
			Address: address,
			Lat:     *req.Lat,
			Lng:     *req.Lng,
			PlaceID: strings.TrimSpace(req.PlaceID),
		}, now(), max)

		saved, err := saveUser(c.Request.Context(), users, user, timeout)
		if err != nil {
			respondError(c, route, err)
			return
		}
		c.JSON(http.StatusOK, gin.H{"destinations": saved.Normalize().RecentDestinations})
	}
}
