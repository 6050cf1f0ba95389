package scraper

import (
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"os"
	"strconv"
	"time"

	"github.com/sirupsen/logrus"

	"rentwatch/server/config"
	"rentwatch/server/internal/models"
)

// Transport downloads the raw body of one search URL. It is pluggable so
// tests can feed canned responses instead of hitting the network.
type Transport func(url string) ([]byte, error)

// EmitFunc receives one page worth of normalized listings.
type EmitFunc func(listings []models.Listing) error

// Options configures a Scraper. Zero values fall back to the upstream
// defaults (page size 50, 30s timeout, no delay, no page ceiling).
type Options struct {
	BaseURL   string
	PageSize  int
	Timeout   time.Duration
	Delay     time.Duration
	MaxPages  int
	Transport Transport
}

// Scraper collects rental listings from the paginated search API, one
// neighborhood at a time. Pages within a walk and neighborhoods within a
// run are fetched strictly sequentially; the inter-request delay is a
// politeness requirement, not incidental serialization.
type Scraper struct {
	neighborhoods []config.Neighborhood
	baseURL       string
	pageSize      int
	delay         time.Duration
	maxPages      int
	transport     Transport
	logger        *logrus.Logger
}

const defaultBaseURL = "https://glue-api.zapimoveis.com.br/v3/listings"

func NewScraper(neighborhoods []config.Neighborhood, opts Options, logger *logrus.Logger) *Scraper {
	if logger == nil {
		logger = logrus.New()
		logger.SetFormatter(&logrus.JSONFormatter{})
		logger.SetOutput(os.Stdout)
	}
	if opts.BaseURL == "" {
		opts.BaseURL = defaultBaseURL
	}
	if opts.PageSize <= 0 {
		opts.PageSize = 50
	}
	if opts.Timeout <= 0 {
		opts.Timeout = 30 * time.Second
	}

	s := &Scraper{
		neighborhoods: neighborhoods,
		baseURL:       opts.BaseURL,
		pageSize:      opts.PageSize,
		delay:         opts.Delay,
		maxPages:      opts.MaxPages,
		transport:     opts.Transport,
		logger:        logger,
	}
	if s.transport == nil {
		client := &http.Client{Timeout: opts.Timeout}
		s.transport = func(pageURL string) ([]byte, error) {
			return fetchURL(client, pageURL)
		}
	}
	return s
}

func fetchURL(client *http.Client, rawURL string) ([]byte, error) {
	req, err := http.NewRequest(http.MethodGet, rawURL, nil)
	if err != nil {
		return nil, err
	}
	req.Header.Set("User-Agent", "Mozilla/5.0 (compatible; RentwatchBot/1.0)")
	req.Header.Set("Accept", "application/json, text/plain, */*")
	req.Header.Set("Accept-Language", "pt-BR,pt;q=0.9")

	resp, err := client.Do(req)
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("unexpected status code %d for %s", resp.StatusCode, rawURL)
	}
	return io.ReadAll(resp.Body)
}

func (s *Scraper) buildURL(n config.Neighborhood, page int) string {
	params := url.Values{}
	params.Set("addressCity", "Sao Paulo")
	params.Set("addressState", "SP")
	params.Set("addressNeighborhood", n.Query)
	params.Set("business", "RENTAL")
	params.Set("category", "APARTMENT")
	params.Set("listingType", "USED")
	params.Set("page", strconv.Itoa(page))
	params.Set("size", strconv.Itoa(s.pageSize))
	params.Set("order", "update")
	params.Set("direction", "desc")
	return s.baseURL + "?" + params.Encode()
}

func (s *Scraper) fetchPage(n config.Neighborhood, page int) (map[string]interface{}, error) {
	pageURL := s.buildURL(n, page)
	s.logger.WithField("url", pageURL).Debug("Fetching page")

	body, err := s.transport(pageURL)
	if err != nil {
		return nil, fmt.Errorf("failed to fetch %s: %w", pageURL, err)
	}

	var payload map[string]interface{}
	if err := json.Unmarshal(body, &payload); err != nil {
		return nil, fmt.Errorf("failed to parse JSON from %s: %w", pageURL, err)
	}
	return payload, nil
}

// extractRawListings pulls the record collection out of a page payload.
// Elements may be the listing object directly or wrap it under a "listing"
// key. A missing or wrongly typed "listings" field reads as an empty page.
func extractRawListings(payload map[string]interface{}) []map[string]interface{} {
	listings, ok := payload["listings"].([]interface{})
	if !ok {
		return nil
	}
	results := make([]map[string]interface{}, 0, len(listings))
	for _, item := range listings {
		record, ok := item.(map[string]interface{})
		if !ok {
			continue
		}
		if wrapped, ok := record["listing"].(map[string]interface{}); ok {
			results = append(results, wrapped)
		} else {
			results = append(results, record)
		}
	}
	return results
}

// IterateListings walks every result page for one neighborhood, emitting
// each page's normalized listings in array order. Identifiers already
// emitted during this walk are skipped, so records repeated across pages
// appear once. The walk ends on an empty page or on a page shorter than
// the configured page size; a transport or decode failure aborts it.
func (s *Scraper) IterateListings(n config.Neighborhood, capturedAt time.Time, emit EmitFunc) error {
	page := 1
	seen := make(map[string]bool)
	for {
		if s.maxPages > 0 && page > s.maxPages {
			return nil
		}

		payload, err := s.fetchPage(n, page)
		if err != nil {
			return err
		}

		rawListings := extractRawListings(payload)
		if len(rawListings) == 0 {
			s.logger.WithFields(logrus.Fields{
				"neighborhood": n.Name,
				"page":         page,
			}).Debug("No listings returned")
			return nil
		}

		batch := make([]models.Listing, 0, len(rawListings))
		for _, raw := range rawListings {
			listing := normalizeListing(raw)
			if listing == nil {
				continue
			}
			if seen[listing.ListingID] {
				continue
			}
			seen[listing.ListingID] = true
			listing.CapturedAt = capturedAt
			batch = append(batch, *listing)
		}
		if len(batch) > 0 {
			if err := emit(batch); err != nil {
				return err
			}
		}

		if len(rawListings) < s.pageSize {
			return nil
		}
		page++
		if s.delay > 0 {
			time.Sleep(s.delay)
		}
	}
}

// Scrape walks all configured neighborhoods in input order. Every listing
// emitted during the run carries the same capture timestamp.
func (s *Scraper) Scrape(capturedAt time.Time, emit EmitFunc) error {
	for _, n := range s.neighborhoods {
		s.logger.WithField("neighborhood", n.Name).Info("Scraping neighborhood")
		if err := s.IterateListings(n, capturedAt, emit); err != nil {
			return err
		}
	}
	return nil
}

// CollectAll runs a full scrape and gathers the listings in memory. The
// ingest manager persists per page instead; this is for one-shot use and
// tests.
func (s *Scraper) CollectAll(capturedAt time.Time) ([]models.Listing, error) {
	var all []models.Listing
	err := s.Scrape(capturedAt, func(batch []models.Listing) error {
		all = append(all, batch...)
		return nil
	})
	return all, err
}
