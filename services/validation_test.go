package services

import (
	"testing"
	"time"

	"github.com/fenilmodi00/flightme-backend/shared"
	"github.com/leanovate/gopter"
	"github.com/leanovate/gopter/gen"
	"github.com/leanovate/gopter/prop"
)

var validationNow = time.Date(2026, time.October, 15, 12, 0, 0, 0, time.UTC)

func newTestValidator() *SearchValidator {
	return NewSearchValidator().WithClock(func() time.Time { return validationNow })
}

func TestValidateAcceptsRoute(t *testing.T) {
	query, err := newTestValidator().Validate("JFK", "LAX", "2026-12-01")
	if err != nil {
		t.Fatalf("expected valid route, got %v", err)
	}
	if query.Origin != "JFK" || query.Destination != "LAX" {
		t.Errorf("unexpected route %s-%s", query.Origin, query.Destination)
	}
	if query.DateString() != "2026-12-01" {
		t.Errorf("expected 2026-12-01, got %s", query.DateString())
	}
}

func TestValidateRejections(t *testing.T) {
	testCases := []struct {
		name        string
		origin      string
		destination string
		date        string
		code        string
		message     string
	}{
		{"same airports", "JFK", "JFK", "2026-12-01", "SAME_AIRPORTS", MessageSameAirports},
		{"lowercase origin", "jfk", "LAX", "2026-12-01", "INVALID_AIRPORT", MessageInvalidAirport},
		{"four letters", "JFKX", "LAX", "2026-12-01", "INVALID_AIRPORT", MessageInvalidAirport},
		{"two letters", "JF", "LAX", "2026-12-01", "INVALID_AIRPORT", MessageInvalidAirport},
		{"digits", "JF1", "LAX", "2026-12-01", "INVALID_AIRPORT", MessageInvalidAirport},
		{"empty destination", "JFK", "", "2026-12-01", "INVALID_AIRPORT", MessageInvalidAirport},
		{"bad format", "JFK", "LAX", "12/01/2026", "INVALID_DATE", MessageInvalidDate},
		{"impossible month", "JFK", "LAX", "2026-13-01", "INVALID_DATE", MessageInvalidDate},
		{"yesterday", "JFK", "LAX", "2026-10-14", "DATE_IN_PAST", MessageDateInPast},
		{"beyond a year", "JFK", "LAX", "2027-10-16", "DATE_TOO_FAR", MessageDateTooFar},
	}

	validator := newTestValidator()
	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			_, err := validator.Validate(tc.origin, tc.destination, tc.date)
			if err == nil {
				t.Fatal("expected validation error")
			}
			serviceErr, ok := shared.AsServiceError(err)
			if !ok {
				t.Fatalf("expected ServiceError, got %T", err)
			}
			if serviceErr.Category != shared.ErrorCategoryInvalidInput {
				t.Errorf("expected invalid_input, got %s", serviceErr.Category)
			}
			if serviceErr.Code != tc.code {
				t.Errorf("expected code %s, got %s", tc.code, serviceErr.Code)
			}
			if serviceErr.Message != tc.message {
				t.Errorf("expected message %q, got %q", tc.message, serviceErr.Message)
			}
			if serviceErr.HTTPStatus() != 400 {
				t.Errorf("expected status 400, got %d", serviceErr.HTTPStatus())
			}
		})
	}
}

func TestValidateDateBoundaries(t *testing.T) {
	validator := newTestValidator()

	for _, date := range []string{"2026-10-15", "2027-10-15"} {
		if _, err := validator.Validate("JFK", "LAX", date); err != nil {
			t.Errorf("expected %s to be accepted, got %v", date, err)
		}
	}
}

func TestValidateTrimsWhitespace(t *testing.T) {
	query, err := newTestValidator().Validate("  JFK ", "LAX\t", " 2026-12-01 ")
	if err != nil {
		t.Fatalf("expected trimmed input to be accepted, got %v", err)
	}
	if query.Origin != "JFK" || query.Destination != "LAX" {
		t.Errorf("expected trimmed codes, got %q %q", query.Origin, query.Destination)
	}
}

func TestAirportCodeProperties(t *testing.T) {
	properties := gopter.NewProperties(nil)

	runesToString := func(r []rune) string { return string(r) }

	properties.Property("three uppercase letters are always a valid code", prop.ForAll(
		func(code string) bool {
			return IsValidAirportCode(code)
		},
		gen.SliceOfN(3, gen.AlphaUpperChar()).Map(runesToString),
	))

	properties.Property("lowercase codes are never valid", prop.ForAll(
		func(code string) bool {
			return !IsValidAirportCode(code)
		},
		gen.SliceOfN(3, gen.AlphaLowerChar()).Map(runesToString),
	))

	properties.Property("codes of any other length are never valid", prop.ForAll(
		func(length int) bool {
			code := ""
			for i := 0; i < length; i++ {
				code += "A"
			}
			return !IsValidAirportCode(code)
		},
		gen.IntRange(0, 10).SuchThat(func(n int) bool { return n != 3 }),
	))

	properties.TestingRun(t, gopter.ConsoleReporter(false))
}
