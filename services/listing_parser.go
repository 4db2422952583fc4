package services

import (
	"fmt"
	"strings"

	"github.com/PuerkitoBio/goquery"
	"github.com/fenilmodi00/flightme-backend/config"
	"github.com/fenilmodi00/flightme-backend/models"
	"github.com/shopspring/decimal"
	"github.com/sirupsen/logrus"
)

var currencySymbols = []struct {
	symbol   string
	currency string
}{
	{"US$", "USD"},
	{"$", "USD"},
	{"€", "EUR"},
	{"£", "GBP"},
	{"₹", "INR"},
}

// ParsePrice turns displayed price text such as "$1,234" into a decimal and a currency code
func ParsePrice(text, defaultCurrency string) (decimal.Decimal, string, error) {
	cleaned := strings.TrimSpace(text)
	currency := defaultCurrency

	for _, entry := range currencySymbols {
		if strings.Contains(cleaned, entry.symbol) {
			currency = entry.currency
			cleaned = strings.ReplaceAll(cleaned, entry.symbol, "")
			break
		}
	}

	var digits strings.Builder
scan:
	for _, r := range cleaned {
		switch {
		case r >= '0' && r <= '9', r == '.':
			digits.WriteRune(r)
		case r == ',' || r == ' ' || r == '\u00a0':
		default:
			// stop at the first trailing annotation, e.g. "$120 total"
			if digits.Len() > 0 {
				break scan
			}
		}
	}
	if digits.Len() == 0 {
		return decimal.Zero, "", fmt.Errorf("no price in %q", text)
	}

	price, err := decimal.NewFromString(digits.String())
	if err != nil {
		return decimal.Zero, "", fmt.Errorf("invalid price %q: %w", text, err)
	}
	if !price.IsPositive() {
		return decimal.Zero, "", fmt.Errorf("non-positive price %q", text)
	}

	return price, currency, nil
}

// ListingParser extracts listings from a captured results page
type ListingParser struct {
	definition      config.SourceDefinition
	defaultCurrency string
}

// NewListingParser creates a parser for one source definition
func NewListingParser(definition config.SourceDefinition, defaultCurrency string) *ListingParser {
	return &ListingParser{definition: definition, defaultCurrency: defaultCurrency}
}

// ParseHTML parses a full page and extracts listings
func (p *ListingParser) ParseHTML(html string) ([]models.Listing, error) {
	document, err := goquery.NewDocumentFromReader(strings.NewReader(html))
	if err != nil {
		return nil, fmt.Errorf("failed to parse %s page: %w", p.definition.Name, err)
	}
	return p.ParseSelection(document.Selection), nil
}

// ParseSelection extracts at most MaxResults listings below root.
// Items missing an airline or a readable price are skipped.
func (p *ListingParser) ParseSelection(root *goquery.Selection) []models.Listing {
	selectors := p.definition.Selectors
	listings := make([]models.Listing, 0, p.definition.MaxResults)
	skipped := 0

	root.Find(selectors.Item).EachWithBreak(func(i int, item *goquery.Selection) bool {
		if i >= p.definition.MaxResults {
			return false
		}

		airline := firstText(item, selectors.Airline)
		priceText := firstText(item, selectors.Price)
		if airline == "" || priceText == "" {
			skipped++
			return true
		}

		price, currency, err := ParsePrice(priceText, p.defaultCurrency)
		if err != nil {
			logrus.WithFields(logrus.Fields{
				"component": "ListingParser",
				"source":    p.definition.Name,
				"error":     err.Error(),
			}).Debug("Skipping listing with unreadable price")
			skipped++
			return true
		}

		listings = append(listings, models.Listing{
			Source:        p.definition.Name,
			Airline:       airline,
			Price:         price,
			Currency:      currency,
			DepartureTime: firstText(item, selectors.DepartureTime),
			Duration:      firstText(item, selectors.Duration),
		})
		return true
	})

	if skipped > 0 {
		logrus.WithFields(logrus.Fields{
			"component": "ListingParser",
			"source":    p.definition.Name,
			"skipped":   skipped,
			"parsed":    len(listings),
		}).Warn("Some listings could not be extracted")
	}

	return listings
}

func firstText(item *goquery.Selection, selector string) string {
	if selector == "" {
		return ""
	}
	return strings.Join(strings.Fields(item.Find(selector).First().Text()), " ")
}
