package handlers

import (
	"github.com/gofiber/fiber/v2"
)

// Router bundles the handlers mounted on the app
type Router struct {
	Flights *FlightHandler
	Places  *PlaceHandler
	System  *SystemHandler
}

// Register mounts every route on app
func (r *Router) Register(app *fiber.App) {
	app.Get("/health", r.System.Health)

	api := app.Group("/api")

	api.Get("/analyze", r.Flights.Analyze)
	api.Get("/historical", r.Flights.Historical)
	api.Get("/routes/popular", r.Flights.PopularRoutes)
	api.Get("/searches/recent", r.Flights.RecentSearches)

	if r.Places != nil {
		api.Get("/hotels", r.Places.GetHotels)
		api.Get("/attractions", r.Places.GetAttractions)
	}

	api.Get("/metrics", r.System.Metrics)
}
