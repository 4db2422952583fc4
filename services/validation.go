package services

import (
	"strings"
	"time"

	"github.com/fenilmodi00/flightme-backend/models"
	"github.com/fenilmodi00/flightme-backend/shared"
)

const (
	MessageInvalidAirport = "Invalid airport code. Please use 3-letter IATA codes (e.g., JFK, LAX)"
	MessageSameAirports   = "Origin and destination cannot be the same"
	MessageInvalidDate    = "Invalid date format. Please use YYYY-MM-DD"
	MessageDateInPast     = "Date must be in the future"
	MessageDateTooFar     = "Date cannot be more than 1 year in the future"
)

const maximumBookingHorizonDays = 365

// SearchValidator checks route search parameters before any fetching happens
type SearchValidator struct {
	now func() time.Time
}

// NewSearchValidator creates a validator using the wall clock
func NewSearchValidator() *SearchValidator {
	return &SearchValidator{now: time.Now}
}

// WithClock replaces the validator clock
func (v *SearchValidator) WithClock(now func() time.Time) *SearchValidator {
	v.now = now
	return v
}

// IsValidAirportCode reports whether code is exactly three uppercase ASCII letters
func IsValidAirportCode(code string) bool {
	if len(code) != 3 {
		return false
	}
	for i := 0; i < len(code); i++ {
		if code[i] < 'A' || code[i] > 'Z' {
			return false
		}
	}
	return true
}

// Validate returns a RouteQuery or an invalid_input ServiceError with a user-facing message.
// Surrounding whitespace is trimmed; case is not changed.
func (v *SearchValidator) Validate(origin, destination, date string) (models.RouteQuery, error) {
	origin = strings.TrimSpace(origin)
	destination = strings.TrimSpace(destination)
	date = strings.TrimSpace(date)

	if !IsValidAirportCode(origin) || !IsValidAirportCode(destination) {
		return models.RouteQuery{}, shared.NewInvalidInputError("INVALID_AIRPORT", MessageInvalidAirport)
	}
	if origin == destination {
		return models.RouteQuery{}, shared.NewInvalidInputError("SAME_AIRPORTS", MessageSameAirports)
	}

	now := v.now()
	travelDate, err := time.ParseInLocation("2006-01-02", date, now.Location())
	if err != nil {
		return models.RouteQuery{}, shared.NewInvalidInputError("INVALID_DATE", MessageInvalidDate)
	}

	today := time.Date(now.Year(), now.Month(), now.Day(), 0, 0, 0, 0, now.Location())
	if travelDate.Before(today) {
		return models.RouteQuery{}, shared.NewInvalidInputError("DATE_IN_PAST", MessageDateInPast)
	}
	if travelDate.After(today.AddDate(0, 0, maximumBookingHorizonDays)) {
		return models.RouteQuery{}, shared.NewInvalidInputError("DATE_TOO_FAR", MessageDateTooFar)
	}

	return models.RouteQuery{
		Origin:      origin,
		Destination: destination,
		TravelDate:  travelDate,
	}, nil
}
