package services

import (
	_ "embed"
	"fmt"
	"math/rand"
	"sync"
	"time"

	"github.com/fenilmodi00/flightme-backend/models"
	"github.com/jszwec/csvutil"
)

//go:embed data/popular_routes.csv
var popularRoutesCSV []byte

const popularRouteSuggestions = 5

// PopularRouteService suggests a random handful of well-known routes
type PopularRouteService struct {
	routes []models.PopularRoute
	rng    *rand.Rand
	mutex  sync.Mutex
}

// NewPopularRouteService loads the embedded route list
func NewPopularRouteService() (*PopularRouteService, error) {
	routes, err := ParsePopularRoutes(popularRoutesCSV)
	if err != nil {
		return nil, err
	}
	return &PopularRouteService{
		routes: routes,
		rng:    rand.New(rand.NewSource(time.Now().UnixNano())),
	}, nil
}

// ParsePopularRoutes decodes a CSV with origin, destination, origin_city and destination_city columns
func ParsePopularRoutes(data []byte) ([]models.PopularRoute, error) {
	var routes []models.PopularRoute
	if err := csvutil.Unmarshal(data, &routes); err != nil {
		return nil, fmt.Errorf("failed to decode popular routes: %w", err)
	}
	for _, route := range routes {
		if !IsValidAirportCode(route.Origin) || !IsValidAirportCode(route.Destination) {
			return nil, fmt.Errorf("popular route %s-%s has an invalid airport code", route.Origin, route.Destination)
		}
	}
	return routes, nil
}

// All returns every known route
func (s *PopularRouteService) All() []models.PopularRoute {
	out := make([]models.PopularRoute, len(s.routes))
	copy(out, s.routes)
	return out
}

// Suggest returns up to five distinct routes in random order
func (s *PopularRouteService) Suggest() []models.PopularRoute {
	s.mutex.Lock()
	order := s.rng.Perm(len(s.routes))
	s.mutex.Unlock()

	count := popularRouteSuggestions
	if count > len(order) {
		count = len(order)
	}

	suggestions := make([]models.PopularRoute, 0, count)
	for _, index := range order[:count] {
		suggestions = append(suggestions, s.routes[index])
	}
	return suggestions
}
