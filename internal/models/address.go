package models

import "time"

// Address is a saved place on a user's favorite or recent list. Every field is
// optional; an address without coordinates is a placeholder that reserves a
// labelled slot such as "Home" until the user picks a location.
type Address struct {
	Address   string     `json:"address,omitempty" firestore:"address,omitempty" bson:"address,omitempty"`
	Latitude  *float64   `json:"latitude,omitempty" firestore:"latitude,omitempty" bson:"latitude,omitempty"`
	Longitude *float64   `json:"longitude,omitempty" firestore:"longitude,omitempty" bson:"longitude,omitempty"`
	Label     string     `json:"label,omitempty" firestore:"label,omitempty" bson:"label,omitempty"`
	Timestamp *time.Time `json:"timestamp,omitempty" firestore:"timestamp,omitempty" bson:"timestamp,omitempty"`
}

// Placeholder returns a coordinate-less address reserving the given label.
func Placeholder(label string) Address {
	return Address{Label: label}
}

// HasCoordinates reports whether both latitude and longitude are set.
func (a Address) HasCoordinates() bool {
	return a.Latitude != nil && a.Longitude != nil
}

func (a Address) IsPlaceholder() bool {
	return !a.HasCoordinates()
}

// SameCoordinates reports exact coordinate equality. Placeholders never match.
func (a Address) SameCoordinates(other Address) bool {
	if !a.HasCoordinates() || !other.HasCoordinates() {
		return false
	}
	return *a.Latitude == *other.Latitude && *a.Longitude == *other.Longitude
}

// Matches reports whether the address is exactly (label, lat, lng). Nil
// coordinates only match an address whose corresponding coordinate is absent.
func (a Address) Matches(label string, lat, lng *float64) bool {
	return a.Label == label && sameOptional(a.Latitude, lat) && sameOptional(a.Longitude, lng)
}

func sameOptional(a, b *float64) bool {
	if a == nil || b == nil {
		return a == nil && b == nil
	}
	return *a == *b
}
