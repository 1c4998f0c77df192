// Package addresslist maintains the favorite, recent and destination lists
// stored on a user. List functions are pure and take the clock as an argument;
// the User helpers apply them and keep UpdatedAt current.
package addresslist

import (
	"math"
	"time"

	"navigator/internal/models"
)

// DefaultMaxRecent bounds the recent address and destination lists.
const DefaultMaxRecent = 10

// coordinateTolerance is the max per-axis delta for two destinations
// without place ids to be considered the same place.
const coordinateTolerance = 1e-6

// InsertFavorite adds a favorite. A coordinate-bearing address replaces the
// placeholder with the same label in place, is ignored when its coordinates are
// already saved, and is appended otherwise. A placeholder is appended unless a
// placeholder with its label exists. The bool reports whether the list changed.
func InsertFavorite(list []models.Address, next models.Address) ([]models.Address, bool) {
	if next.HasCoordinates() {
		for i, existing := range list {
			if existing.IsPlaceholder() && existing.Label == next.Label {
				out := append([]models.Address(nil), list...)
				out[i] = next
				return out, true
			}
		}
		for _, existing := range list {
			if existing.SameCoordinates(next) {
				return list, false
			}
		}
		return append(append([]models.Address(nil), list...), next), true
	}

	for _, existing := range list {
		if existing.IsPlaceholder() && existing.Label == next.Label {
			return list, false
		}
	}
	return append(append([]models.Address(nil), list...), next), true
}

// Remove drops every entry that is exactly (label, lat, lng). Nil coordinates
// match placeholders. The bool reports whether anything was removed.
func Remove(list []models.Address, label string, lat, lng *float64) ([]models.Address, bool) {
	out := make([]models.Address, 0, len(list))
	removed := false
	for _, existing := range list {
		if existing.Matches(label, lat, lng) {
			removed = true
			continue
		}
		out = append(out, existing)
	}
	if !removed {
		return list, false
	}
	return out, true
}

// PushRecent stamps next with now, drops older entries at the same
// coordinates, puts next first and truncates the list to max entries.
func PushRecent(list []models.Address, next models.Address, now time.Time, max int) []models.Address {
	if max <= 0 {
		max = DefaultMaxRecent
	}
	stamped := now.UTC()
	next.Timestamp = &stamped

	out := make([]models.Address, 0, len(list)+1)
	out = append(out, next)
	for _, existing := range list {
		if next.HasCoordinates() && existing.SameCoordinates(next) {
			continue
		}
		out = append(out, existing)
	}
	if len(out) > max {
		out = out[:max]
	}
	return out
}

// UpsertDestination moves next to the front of the list with LastUsed set to
// now, replacing any entry for the same place, and truncates to max entries.
func UpsertDestination(list []models.RecentDestination, next models.RecentDestination, now time.Time, max int) []models.RecentDestination {
	if max <= 0 {
		max = DefaultMaxRecent
	}
	next.LastUsed = float64(now.UnixNano()) / float64(time.Second)

	out := make([]models.RecentDestination, 0, len(list)+1)
	out = append(out, next)
	for _, existing := range list {
		if samePlace(existing, next) {
			continue
		}
		out = append(out, existing)
	}
	if len(out) > max {
		out = out[:max]
	}
	return out
}

func samePlace(a, b models.RecentDestination) bool {
	if a.PlaceID != "" && b.PlaceID != "" {
		return a.PlaceID == b.PlaceID
	}
	return math.Abs(a.Lat-b.Lat) <= coordinateTolerance && math.Abs(a.Lng-b.Lng) <= coordinateTolerance
}
