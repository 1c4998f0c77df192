package addresslist

import (
	"time"

	"navigator/internal/models"
)

// AddFavorite applies InsertFavorite to the user's favorites.
func AddFavorite(u *models.User, next models.Address, now time.Time) bool {
	list, changed := InsertFavorite(u.FavoriteAddresses, next)
	if changed {
		u.FavoriteAddresses = list
		u.UpdatedAt = now
	}
	return changed
}

// RemoveFavorite reports false, leaving the user untouched, when no favorite matched.
func RemoveFavorite(u *models.User, label string, lat, lng *float64, now time.Time) bool {
	list, removed := Remove(u.FavoriteAddresses, label, lat, lng)
	if removed {
		u.FavoriteAddresses = list
		u.UpdatedAt = now
	}
	return removed
}

func ClearFavorites(u *models.User, now time.Time) {
	u.FavoriteAddresses = []models.Address{}
	u.UpdatedAt = now
}

// AddRecent always advances UpdatedAt, even when the address was already first.
func AddRecent(u *models.User, next models.Address, now time.Time, max int) {
	u.RecentAddresses = PushRecent(u.RecentAddresses, next, now, max)
	u.UpdatedAt = now
}

func RemoveRecent(u *models.User, label string, lat, lng *float64, now time.Time) bool {
	list, removed := Remove(u.RecentAddresses, label, lat, lng)
	if removed {
		u.RecentAddresses = list
		u.UpdatedAt = now
	}
	return removed
}

func ClearRecent(u *models.User, now time.Time) {
	u.RecentAddresses = []models.Address{}
	u.UpdatedAt = now
}

func AddDestination(u *models.User, next models.RecentDestination, now time.Time, max int) {
	u.RecentDestinations = UpsertDestination(u.RecentDestinations, next, now, max)
	u.UpdatedAt = now
}
