package handlers

import (
	"net/http"
	"strings"
	"time"

	"github.com/gin-gonic/gin"

	"navigator/internal/addresslist"
	"navigator/internal/logging"
	"navigator/internal/models"
	"navigator/internal/store"
)

type addressRequest struct {
	Address   string   `json:"address"`
	Latitude  *float64 `json:"latitude" binding:"omitempty,gte=-90,lte=90"`
	Longitude *float64 `json:"longitude" binding:"omitempty,gte=-180,lte=180"`
	Label     string   `json:"label"`
}

type removeAddressRequest struct {
	Label     string   `json:"label"`
	Latitude  *float64 `json:"latitude"`
	Longitude *float64 `json:"longitude"`
}

// toAddress rejects an address that carries only one coordinate, and a
// placeholder without a label since it could never be told apart.
func (r addressRequest) toAddress() (models.Address, string) {
	if (r.Latitude == nil) != (r.Longitude == nil) {
		return models.Address{}, "latitude and longitude must be provided together"
	}
	addr := models.Address{
		Address:   strings.TrimSpace(r.Address),
		Latitude:  r.Latitude,
		Longitude: r.Longitude,
		Label:     strings.TrimSpace(r.Label),
	}
	if addr.IsPlaceholder() && addr.Label == "" {
		return models.Address{}, "label is required when coordinates are absent"
	}
	return addr, ""
}

// addressList describes one of the user's address lists for the shared
// handlers below.
type addressList struct {
	name     string
	key      string
	notFound string
	get      func(u *models.User) []models.Address
	add      func(u *models.User, a models.Address, now time.Time)
	remove   func(u *models.User, label string, lat, lng *float64, now time.Time) bool
	clear    func(u *models.User, now time.Time)
}

func favoritesList() addressList {
	return addressList{
		name:     "favorites",
		key:      "favorites",
		notFound: "Favorite address not found",
		get:      func(u *models.User) []models.Address { return u.FavoriteAddresses },
		add: func(u *models.User, a models.Address, now time.Time) {
			addresslist.AddFavorite(u, a, now)
		},
		remove: addresslist.RemoveFavorite,
		clear:  addresslist.ClearFavorites,
	}
}

func recentList(max int) addressList {
	return addressList{
		name:     "recent",
		key:      "recent",
		notFound: "Recent address not found",
		get:      func(u *models.User) []models.Address { return u.RecentAddresses },
		add: func(u *models.User, a models.Address, now time.Time) {
			addresslist.AddRecent(u, a, now, max)
		},
		remove: addresslist.RemoveRecent,
		clear:  addresslist.ClearRecent,
	}
}

func ListAddresses(list addressList, users store.UserStore, timeout time.Duration) gin.HandlerFunc {
	return func(c *gin.Context) {
		route := "GET /api/users/" + list.name
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
		c.JSON(http.StatusOK, gin.H{list.key: nonNil(list.get(user))})
	}
}

func AddAddress(list addressList, users store.UserStore, now func() time.Time, timeout time.Duration) gin.HandlerFunc {
	return func(c *gin.Context) {
		route := "POST /api/users/" + list.name
		defer handlePanic(c, route)

		subject, ok := currentSubject(c, route)
		if !ok {
			return
		}

		var req addressRequest
		if err := c.ShouldBindJSON(&req); err != nil {
			respondValidationError(c, "validation failed", err)
			return
		}
		addr, problem := req.toAddress()
		if problem != "" {
			respondWithError(c, http.StatusBadRequest, route, problem)
			return
		}

		user, err := loadUser(c.Request.Context(), users, subject, timeout)
		if err != nil {
			respondError(c, route, err)
			return
		}

		list.add(user, addr, now().UTC())
		saved, err := saveUser(c.Request.Context(), users, user, timeout)
		if err != nil {
			respondError(c, route, err)
			return
		}

		logging.Ctx(c.Request.Context()).Debug().Str("user_id", saved.ID).Str("label", addr.Label).Msgf("[USERS] %s address added", list.name)
		c.JSON(http.StatusOK, gin.H{list.key: nonNil(list.get(saved))})
	}
}

// RemoveAddress deletes the entry matching label and coordinates exactly.
// Omitted coordinates match placeholders only.
func RemoveAddress(list addressList, users store.UserStore, now func() time.Time, timeout time.Duration) gin.HandlerFunc {
	return func(c *gin.Context) {
		route := "DELETE /api/users/" + list.name
		defer handlePanic(c, route)

		subject, ok := currentSubject(c, route)
		if !ok {
			return
		}

		var req removeAddressRequest
		if err := c.ShouldBindJSON(&req); err != nil {
			respondValidationError(c, "validation failed", err)
			return
		}
		if (req.Latitude == nil) != (req.Longitude == nil) {
			respondWithError(c, http.StatusBadRequest, route, "latitude and longitude must be provided together")
			return
		}
		if strings.TrimSpace(req.Label) == "" && req.Latitude == nil {
			respondWithError(c, http.StatusBadRequest, route, "label is required when coordinates are absent")
			return
		}

		user, err := loadUser(c.Request.Context(), users, subject, timeout)
		if err != nil {
			respondError(c, route, err)
			return
		}

		if !list.remove(user, strings.TrimSpace(req.Label), req.Latitude, req.Longitude, now().UTC()) {
			respondWithError(c, http.StatusNotFound, route, list.notFound)
			return
		}

		saved, err := saveUser(c.Request.Context(), users, user, timeout)
		if err != nil {
			respondError(c, route, err)
			return
		}
		c.JSON(http.StatusOK, gin.H{list.key: nonNil(list.get(saved))})
	}
}

func ClearAddresses(list addressList, users store.UserStore, now func() time.Time, timeout time.Duration) gin.HandlerFunc {
	return func(c *gin.Context) {
		route := "DELETE /api/users/" + list.name + "/all"
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

		list.clear(user, now().UTC())
		if _, err := saveUser(c.Request.Context(), users, user, timeout); err != nil {
			respondError(c, route, err)
			return
		}
		c.JSON(http.StatusOK, gin.H{list.key: []models.Address{}})
	}
}

func nonNil(list []models.Address) []models.Address {
	if list == nil {
		return []models.Address{}
	}
	return list
}
