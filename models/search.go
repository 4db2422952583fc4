package models

import (
	"time"

	"github.com/google/uuid"
)

// SearchRecord is an append-only audit entry, one per search request
type SearchRecord struct {
	ID          uuid.UUID `json:"id"`
	Origin      string    `json:"origin"`
	Destination string    `json:"destination"`
	TravelDate  string    `json:"travel_date"`
	SearchedAt  time.Time `json:"searched_at"`
	Requester   string    `json:"requester"`
}

// PopularRoute is a suggested route shown to users
type PopularRoute struct {
	Origin          string `json:"origin" csv:"origin"`
	Destination     string `json:"destination" csv:"destination"`
	OriginCity      string `json:"origin_city" csv:"origin_city"`
	DestinationCity string `json:"destination_city" csv:"destination_city"`
}
