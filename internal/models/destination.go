package models

// RecentDestination is a navigation target the user recently routed to.
// LastUsed is seconds since the Unix epoch.
type RecentDestination struct {
	Label    string  `json:"label" firestore:"label" bson:"label"`
	Address  string  `json:"address" firestore:"address" bson:"address"`
	Lat      float64 `json:"lat" firestore:"lat" bson:"lat"`
	Lng      float64 `json:"lng" firestore:"lng" bson:"lng"`
	PlaceID  string  `json:"place_id,omitempty" firestore:"place_id,omitempty" bson:"place_id,omitempty"`
	LastUsed float64 `json:"last_used" firestore:"last_used" bson:"last_used"`
}
