package services

import (
	"context"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/PuerkitoBio/goquery"
	"github.com/fenilmodi00/flightme-backend/models"
	"github.com/fenilmodi00/flightme-backend/shared"
	"github.com/gocolly/colly/v2"
	"github.com/sirupsen/logrus"
)

const defaultHotelSearchURL = "https://www.booking.com/searchresults.html"

var hotelPriceSelectors = []string{
	`span[data-testid="price-and-discounted-price"]`,
	`span[data-testid="price-and-discounted-price"] span`,
	`div[data-testid="price-for-x-nights"]`,
	`span[data-testid="price-and-discounted-price"] div`,
}

// HotelService looks up hotel listings for a location on Booking search results
type HotelService struct {
	searchURL string
	timeout   time.Duration
	transport http.RoundTripper
}

// NewHotelService creates a service against the public search page
func NewHotelService() *HotelService {
	return &HotelService{
		searchURL: defaultHotelSearchURL,
		timeout:   30 * time.Second,
		transport: defaultScraperTransport,
	}
}

// WithSearchURL points the service at another search endpoint
func (s *HotelService) WithSearchURL(searchURL string) *HotelService {
	s.searchURL = searchURL
	return s
}

// WithTransport replaces the transport used for search requests
func (s *HotelService) WithTransport(transport http.RoundTripper) *HotelService {
	s.transport = transport
	return s
}

// SearchHotels returns up to ten properties for location
func (s *HotelService) SearchHotels(ctx context.Context, location string) ([]models.Hotel, error) {
	location = strings.TrimSpace(location)
	if location == "" {
		return nil, shared.NewInvalidInputError("MISSING_LOCATION", "location is required")
	}

	params := url.Values{}
	params.Set("ss", location)
	params.Set("rows", "10")
	params.Set("group_adults", "1")
	params.Set("no_rooms", "1")
	params.Set("selected_currency", "USD")
	target := s.searchURL + "?" + params.Encode()

	logger := logrus.WithFields(logrus.Fields{
		"component": "HotelService",
		"location":  location,
	})

	c := newCollector(ctx, s.timeout, s.transport)

	hotels := []models.Hotel{}
	var fetchErr error

	c.OnHTML("html", func(e *colly.HTMLElement) {
		hotels = ParseHotels(e.DOM, e.Request.AbsoluteURL)
	})
	c.OnError(func(r *colly.Response, err error) {
		fetchErr = err
	})

	logger.Info("Fetching hotels")
	if err := c.Visit(target); err != nil && fetchErr == nil {
		fetchErr = err
	}
	if fetchErr != nil {
		return nil, shared.NewServiceError(shared.ErrorCategorySourceUnavailable, "HOTEL_FETCH_FAILED",
			"Failed to fetch hotel data: "+fetchErr.Error(), "HotelService", "search_hotels", true, fetchErr)
	}

	if len(hotels) == 0 {
		logger.Warn("No hotels found in the search results")
	} else {
		logger.WithField("count", len(hotels)).Info("Found hotels")
	}
	return hotels, nil
}

// ParseHotels extracts property cards; cards without a name or link are skipped
func ParseHotels(root *goquery.Selection, absoluteURL func(string) string) []models.Hotel {
	hotels := []models.Hotel{}

	root.Find(`div[data-testid="property-card"]`).Each(func(_ int, card *goquery.Selection) {
		name := strings.TrimSpace(card.Find(`div[data-testid="title"]`).First().Text())
		href, hasLink := card.Find(`a[data-testid="title-link"]`).First().Attr("href")
		if name == "" || !hasLink || href == "" {
			return
		}

		price := "N/A"
		for _, selector := range hotelPriceSelectors {
			element := card.Find(selector).First()
			if element.Length() > 0 {
				price = strings.TrimSpace(strings.NewReplacer("$", "", ",", "").Replace(element.Text()))
				break
			}
		}

		rating := strings.TrimSpace(card.Find(`div[data-testid="review-score"]`).First().Text())
		if rating == "" {
			rating = "N/A"
		}

		hotels = append(hotels, models.Hotel{
			Name:   name,
			Price:  price,
			Rating: rating,
			Link:   absoluteURL(href),
		})
	})

	return hotels
}
