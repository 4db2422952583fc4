package models

// Hotel is a single property card scraped from a hotel search page
type Hotel struct {
	Name   string `json:"name"`
	Price  string `json:"price"`
	Rating string `json:"rating"`
	Link   string `json:"link"`
}

// Attraction is a tourist attraction extracted from a city list page
type Attraction struct {
	Name        string  `json:"name"`
	Description string  `json:"description"`
	Link        *string `json:"link"`
	ImageURL    *string `json:"image_url"`
	City        string  `json:"city"`
}
