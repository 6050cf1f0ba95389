package ingest

import (
	"errors"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"rentwatch/server/config"
	"rentwatch/server/internal/database"
	"rentwatch/server/internal/queue"
	"rentwatch/server/internal/scraper"
)

const onePageResponse = `{
	"listings": [
		{"id": "12345", "usableAreas": [80], "amenities": ["FURNISHED"],
		 "address": {"neighborhood": "Pinheiros"},
		 "pricingInfos": {"businessType": "RENTAL", "price": 4800}},
		{"id": "67890", "usableAreas": [100],
		 "address": {"neighborhood": "Pinheiros"},
		 "pricingInfos": {"businessType": "RENTAL", "price": 6000}}
	]
}`

func newTestStore(t *testing.T) *database.Database {
	t.Helper()
	store, err := database.NewDatabase(filepath.Join(t.TempDir(), "rentals.sqlite"))
	require.NoError(t, err)
	require.NoError(t, store.RunMigrations())
	t.Cleanup(func() { store.Close() })
	return store
}

func newFixtureScraper(responses []string) *scraper.Scraper {
	i := 0
	return scraper.NewScraper(
		[]config.Neighborhood{{Name: "Pinheiros", Query: "Pinheiros"}},
		scraper.Options{
			PageSize: 50,
			Transport: func(url string) ([]byte, error) {
				if i >= len(responses) {
					return nil, errors.New("no more canned responses")
				}
				body := responses[i]
				i++
				return []byte(body), nil
			},
		}, nil)
}

func TestRunOncePersistsSynchronously(t *testing.T) {
	store := newTestStore(t)
	s := newFixtureScraper([]string{onePageResponse})

	m := NewManager(s, store, nil, nil)
	total, err := m.RunOnce()
	require.NoError(t, err)
	assert.Equal(t, 2, total)

	listings, err := store.ListListings("Pinheiros")
	require.NoError(t, err)
	require.Len(t, listings, 2)

	// All listings of one run share one capture timestamp
	assert.Equal(t, listings[0].FirstSeen, listings[1].FirstSeen)

	history, err := store.GetListingHistory("12345")
	require.NoError(t, err)
	require.Len(t, history, 1)
	assert.Equal(t, 4800.0, *history[0].RentPrice)
	assert.Equal(t, 60.0, *history[0].PricePerM2)
}

func TestRunOnceFallsBackWhenQueueFull(t *testing.T) {
	store := newTestStore(t)
	s := newFixtureScraper([]string{onePageResponse})

	// Zero-capacity queue rejects every push, forcing the synchronous path
	q := queue.NewListingQueue(0, nil)
	defer q.Close()

	m := NewManager(s, store, q, nil)
	total, err := m.RunOnce()
	require.NoError(t, err)
	assert.Equal(t, 2, total)

	listings, err := store.ListListings("")
	require.NoError(t, err)
	assert.Len(t, listings, 2)
}

func TestRunOncePropagatesTransportFailure(t *testing.T) {
	store := newTestStore(t)
	s := newFixtureScraper(nil)

	m := NewManager(s, store, nil, nil)
	_, err := m.RunOnce()
	require.Error(t, err)
	assert.Contains(t, err.Error(), "no more canned responses")
}
