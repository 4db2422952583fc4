package services

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"os"
	"path/filepath"
	"regexp"
	"strings"
	"sync"
	"time"

	"github.com/PuerkitoBio/goquery"
	"github.com/fenilmodi00/flightme-backend/models"
	"github.com/fenilmodi00/flightme-backend/shared"
	"github.com/gocolly/colly/v2"
	"github.com/sirupsen/logrus"
)

const defaultWikipediaBaseURL = "https://en.wikipedia.org"

var attractionPagePatterns = []string{
	"/wiki/List_of_tourist_attractions_in_%s",
	"/wiki/Tourist_attractions_in_%s",
	"/wiki/List_of_landmarks_in_%s",
	"/wiki/List_of_attractions_in_%s",
	"/wiki/List_of_places_of_interest_in_%s",
	"/wiki/List_of_visitor_attractions_in_%s",
	"/wiki/List_of_points_of_interest_in_%s",
	"/wiki/List_of_tourist_attractions_in_the_%s_area",
	"/wiki/List_of_tourist_attractions_in_%s_metropolitan_area",
	"/wiki/List_of_tourist_attractions_in_%s_region",
}

// article titles for cities whose list pages use the metro-area name
var wikipediaCityTitles = map[string]string{
	"san_francisco": "San_Francisco_Bay_Area",
	"new_york":      "New_York_City",
	"los_angeles":   "Los_Angeles_metropolitan_area",
	"chicago":       "Chicago_metropolitan_area",
	"miami":         "Miami_metropolitan_area",
	"houston":       "Houston_metropolitan_area",
	"philadelphia":  "Philadelphia_metropolitan_area",
	"phoenix":       "Phoenix_metropolitan_area",
	"seattle":       "Seattle_metropolitan_area",
	"denver":        "Denver_metropolitan_area",
	"boston":        "Boston_metropolitan_area",
	"atlanta":       "Atlanta_metropolitan_area",
	"dallas":        "Dallas-Fort_Worth_metropolitan_area",
	"washington_dc": "Washington,_D.C.",
	"las_vegas":     "Las_Vegas_Valley",
	"orlando":       "Orlando_metropolitan_area",
	"san_diego":     "San_Diego_metropolitan_area",
	"portland":      "Portland_metropolitan_area",
	"nashville":     "Nashville_metropolitan_area",
	"austin":        "Austin_metropolitan_area",
}

var nonWordCharacters = regexp.MustCompile(`[^\w\s-]`)

// AttractionService finds tourist attractions for a city on Wikipedia list pages.
// Results are kept as one JSON file per city under the data directory.
type AttractionService struct {
	baseURL   string
	dataDir   string
	timeout   time.Duration
	transport http.RoundTripper

	// one lock per cache file; a slow scrape only blocks lookups of the same city
	mutex     sync.Mutex
	cityLocks map[string]*sync.Mutex
}

// NewAttractionService creates a service caching into dataDir
func NewAttractionService(dataDir string) *AttractionService {
	return &AttractionService{
		baseURL:   defaultWikipediaBaseURL,
		dataDir:   dataDir,
		timeout:   20 * time.Second,
		transport: defaultScraperTransport,
		cityLocks: make(map[string]*sync.Mutex),
	}
}

// WithBaseURL points the service at another wiki host
func (s *AttractionService) WithBaseURL(baseURL string) *AttractionService {
	s.baseURL = strings.TrimSuffix(baseURL, "/")
	return s
}

// WithTransport replaces the transport used for page requests
func (s *AttractionService) WithTransport(transport http.RoundTripper) *AttractionService {
	s.transport = transport
	return s
}

// FormatCityTitle turns a city name into the article title fragment used in list page URLs
func FormatCityTitle(city string) string {
	formatted := strings.ToLower(city)
	formatted = nonWordCharacters.ReplaceAllString(formatted, "")
	formatted = strings.ReplaceAll(strings.TrimSpace(formatted), " ", "_")
	if title, ok := wikipediaCityTitles[formatted]; ok {
		return title
	}
	return formatted
}

// GetAttractions returns cached attractions for city, scraping them on first request
func (s *AttractionService) GetAttractions(ctx context.Context, city string) ([]models.Attraction, error) {
	city = strings.TrimSpace(city)
	if city == "" {
		return nil, shared.NewInvalidInputError("MISSING_CITY", "city is required")
	}

	lock := s.cityLock(s.cachePath(city))
	lock.Lock()
	defer lock.Unlock()

	cached, err := s.readCache(city)
	if err == nil {
		return cached, nil
	}
	if !errors.Is(err, os.ErrNotExist) {
		logrus.WithFields(logrus.Fields{
			"component": "AttractionService",
			"city":      city,
			"error":     err.Error(),
		}).Warn("Ignoring unreadable attractions cache")
	}

	attractions, err := s.scrape(ctx, city)
	if err != nil {
		return nil, err
	}

	if err := s.writeCache(city, attractions); err != nil {
		logrus.WithFields(logrus.Fields{
			"component": "AttractionService",
			"city":      city,
			"error":     err.Error(),
		}).Warn("Failed to cache attractions")
	}
	return attractions, nil
}

func (s *AttractionService) scrape(ctx context.Context, city string) ([]models.Attraction, error) {
	title := FormatCityTitle(city)
	logger := logrus.WithFields(logrus.Fields{
		"component": "AttractionService",
		"city":      city,
		"title":     title,
	})

	for _, pattern := range attractionPagePatterns {
		if err := ctx.Err(); err != nil {
			return nil, err
		}

		pageURL := s.baseURL + fmt.Sprintf(pattern, title)
		attractions, found := s.scrapePage(ctx, pageURL, city)
		if found {
			logger.WithFields(logrus.Fields{
				"url":   pageURL,
				"count": len(attractions),
			}).Info("Scraped attractions")
			return attractions, nil
		}
	}

	logger.Warn("No valid Wikipedia page found")
	return []models.Attraction{}, nil
}

// scrapePage reports found=false when the page does not exist or cannot be fetched
func (s *AttractionService) scrapePage(ctx context.Context, pageURL, city string) ([]models.Attraction, bool) {
	c := newCollector(ctx, s.timeout, s.transport)

	var attractions []models.Attraction
	found := false

	c.OnResponse(func(r *colly.Response) {
		found = r.StatusCode == 200
	})
	c.OnHTML("html", func(e *colly.HTMLElement) {
		attractions = ParseAttractions(e.DOM, city, s.baseURL)
	})

	if err := c.Visit(pageURL); err != nil {
		return nil, false
	}
	if attractions == nil {
		attractions = []models.Attraction{}
	}
	return attractions, found
}

// ParseAttractions reads list items from the article body
func ParseAttractions(root *goquery.Selection, city, baseURL string) []models.Attraction {
	attractions := []models.Attraction{}

	content := root.Find("div#mw-content-text").First()
	if content.Length() == 0 {
		return attractions
	}

	content.Find("ul li, ol li").Each(func(_ int, item *goquery.Selection) {
		text := strings.TrimSpace(item.Text())
		if text == "" {
			return
		}

		name := strings.TrimSpace(item.Find("b").First().Text())
		if item.Find("b").Length() == 0 {
			name = strings.TrimSpace(strings.SplitN(text, ".", 2)[0])
		}

		description := text
		if name != "" {
			description = strings.TrimSpace(strings.ReplaceAll(text, name, ""))
		}
		description = strings.TrimSpace(strings.TrimPrefix(description, "."))

		attraction := models.Attraction{
			Name:        name,
			Description: description,
			City:        city,
		}

		if href, ok := item.Find("a").First().Attr("href"); ok && href != "" {
			link := href
			if strings.HasPrefix(href, "/") && !strings.HasPrefix(href, "//") {
				link = baseURL + href
			}
			attraction.Link = &link
		}
		if src, ok := item.Find("img").First().Attr("src"); ok && src != "" {
			imageURL := src
			if strings.HasPrefix(src, "//") {
				imageURL = "https:" + src
			}
			attraction.ImageURL = &imageURL
		}

		attractions = append(attractions, attraction)
	})

	return attractions
}

func (s *AttractionService) cityLock(path string) *sync.Mutex {
	s.mutex.Lock()
	defer s.mutex.Unlock()

	lock, ok := s.cityLocks[path]
	if !ok {
		lock = &sync.Mutex{}
		s.cityLocks[path] = lock
	}
	return lock
}

func (s *AttractionService) cachePath(city string) string {
	key := strings.ReplaceAll(strings.ToLower(city), " ", "_")
	key = nonWordCharacters.ReplaceAllString(key, "")
	return filepath.Join(s.dataDir, "attractions_"+key+".json")
}

func (s *AttractionService) readCache(city string) ([]models.Attraction, error) {
	data, err := os.ReadFile(s.cachePath(city))
	if err != nil {
		return nil, err
	}
	var attractions []models.Attraction
	if err := json.Unmarshal(data, &attractions); err != nil {
		return nil, fmt.Errorf("corrupt attractions cache: %w", err)
	}
	return attractions, nil
}

func (s *AttractionService) writeCache(city string, attractions []models.Attraction) error {
	if len(attractions) == 0 {
		return nil
	}
	if err := os.MkdirAll(s.dataDir, 0o755); err != nil {
		return err
	}
	data, err := json.MarshalIndent(attractions, "", "  ")
	if err != nil {
		return err
	}

	// write then rename so readers never see a partial file
	tmp := s.cachePath(city) + ".tmp"
	if err := os.WriteFile(tmp, data, 0o644); err != nil {
		return err
	}
	return os.Rename(tmp, s.cachePath(city))
}
