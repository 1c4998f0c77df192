package models

import (
	"time"
)

// Auth providers recorded on a user.
const (
	ProviderPassword = "password"
	ProviderFirebase = "firebase"
)

// DefaultFavoriteLabels are reserved as placeholders on every new user.
var DefaultFavoriteLabels = []string{"Home", "Work"}

// User represents the application user account and its saved places.
type User struct {
	ID                 string              `json:"id" firestore:"-" bson:"_id"`
	Email              string              `json:"email" firestore:"email" bson:"email"`
	DisplayName        string              `json:"display_name,omitempty" firestore:"display_name,omitempty" bson:"display_name,omitempty"`
	PasswordHash       string              `json:"-" firestore:"password_hash,omitempty" bson:"password_hash,omitempty"`
	AuthProvider       string              `json:"auth_provider" firestore:"auth_provider" bson:"auth_provider"`
	CreatedAt          time.Time           `json:"created_at" firestore:"created_at" bson:"created_at"`
	UpdatedAt          time.Time           `json:"updated_at" firestore:"updated_at" bson:"updated_at"`
	FavoriteAddresses  []Address           `json:"favorite_addresses" firestore:"favorite_addresses" bson:"favorite_addresses"`
	RecentAddresses    []Address           `json:"recent_addresses" firestore:"recent_addresses" bson:"recent_addresses"`
	RecentDestinations []RecentDestination `json:"recent_destinations" firestore:"recent_destinations" bson:"recent_destinations"`
}

// NewUser builds a user with the default placeholder favorites and empty
// recent lists. The id may be empty when the store assigns it.
func NewUser(id, email, provider string, now time.Time) *User {
	favorites := make([]Address, 0, len(DefaultFavoriteLabels))
	for _, label := range DefaultFavoriteLabels {
		favorites = append(favorites, Placeholder(label))
	}

	return &User{
		ID:                 id,
		Email:              email,
		AuthProvider:       provider,
		CreatedAt:          now,
		UpdatedAt:          now,
		FavoriteAddresses:  favorites,
		RecentAddresses:    []Address{},
		RecentDestinations: []RecentDestination{},
	}
}

// Normalize replaces nil lists with empty ones so they encode as [] and
// returns the user for chaining.
func (u *User) Normalize() *User {
	if u.FavoriteAddresses == nil {
		u.FavoriteAddresses = []Address{}
	}
	if u.RecentAddresses == nil {
		u.RecentAddresses = []Address{}
	}
	if u.RecentDestinations == nil {
		u.RecentDestinations = []RecentDestination{}
	}
	return u
}

// Clone returns a deep copy so stores never share list backing arrays with callers.
func (u *User) Clone() *User {
	if u == nil {
		return nil
	}
	c := *u
	c.FavoriteAddresses = cloneAddresses(u.FavoriteAddresses)
	c.RecentAddresses = cloneAddresses(u.RecentAddresses)
	if u.RecentDestinations != nil {
		c.RecentDestinations = make([]RecentDestination, len(u.RecentDestinations))
		copy(c.RecentDestinations, u.RecentDestinations)
	}
	return &c
}

func cloneAddresses(in []Address) []Address {
	if in == nil {
		return nil
	}
	out := make([]Address, len(in))
	for i, a := range in {
		out[i] = a
		if a.Latitude != nil {
			v := *a.Latitude
			out[i].Latitude = &v
		}
		if a.Longitude != nil {
			v := *a.Longitude
			out[i].Longitude = &v
		}
		if a.Timestamp != nil {
			v := *a.Timestamp
			out[i].Timestamp = &v
		}
	}
	return out
}
