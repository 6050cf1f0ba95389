package database

import (
	"database/sql"
	"fmt"
	"os"
	"path/filepath"
	"time"

	_ "github.com/mattn/go-sqlite3"

	"rentwatch/server/internal/models"
)

// Database owns the listings and price_history tables. Each persisted
// listing produces one snapshot upsert and one history upsert inside one
// transaction, so re-ingesting the same capture batch is idempotent.
type Database struct {
	db *sql.DB
}

func NewDatabase(dbPath string) (*Database, error) {
	if dir := filepath.Dir(dbPath); dir != "" && dir != "." {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return nil, fmt.Errorf("failed to create database directory: %v", err)
		}
	}

	db, err := sql.Open("sqlite3", dbPath)
	if err != nil {
		return nil, err
	}

	// Enable foreign keys
	_, err = db.Exec("PRAGMA foreign_keys = ON")
	if err != nil {
		return nil, err
	}

	return &Database{db: db}, nil
}

// PersistListing writes one listing: the snapshot row keyed by listing_id
// (first_seen preserved, last_seen advanced) and the history row keyed by
// (listing_id, captured_at). Both writes share one transaction.
func (d *Database) PersistListing(listing models.Listing) error {
	tx, err := d.db.Begin()
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer tx.Rollback()

	if err := persistListingTx(tx, listing); err != nil {
		return err
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("failed to commit transaction: %w", err)
	}
	return nil
}

func persistListingTx(tx *sql.Tx, listing models.Listing) error {
	capturedAt := listing.CapturedAt.UTC().Format(time.RFC3339)

	_, err := tx.Exec(`
		INSERT INTO listings (
			listing_id, title, neighborhood, street, city, state,
			area_m2, bedrooms, bathrooms, parking_spaces, furnished,
			url, first_seen, last_seen
		) VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
		ON CONFLICT(listing_id) DO UPDATE SET
			title=excluded.title,
			neighborhood=excluded.neighborhood,
			street=excluded.street,
			city=excluded.city,
			state=excluded.state,
			area_m2=excluded.area_m2,
			bedrooms=excluded.bedrooms,
			bathrooms=excluded.bathrooms,
			parking_spaces=excluded.parking_spaces,
			furnished=excluded.furnished,
			url=excluded.url,
			last_seen=excluded.last_seen
	`,
		listing.ListingID, listing.Title, listing.Neighborhood, listing.Street,
		listing.City, listing.State, listing.AreaM2, listing.Bedrooms,
		listing.Bathrooms, listing.ParkingSpaces, boolToInt(listing.Furnished),
		listing.URL, capturedAt, capturedAt,
	)
	if err != nil {
		return fmt.Errorf("failed to upsert listing %s: %w", listing.ListingID, err)
	}

	_, err = tx.Exec(`
		INSERT INTO price_history (
			listing_id, captured_at, rent_price, price_per_m2, condo_fee, furnished
		) VALUES (?, ?, ?, ?, ?, ?)
		ON CONFLICT(listing_id, captured_at) DO UPDATE SET
			rent_price=excluded.rent_price,
			price_per_m2=excluded.price_per_m2,
			condo_fee=excluded.condo_fee,
			furnished=excluded.furnished
	`,
		listing.ListingID, capturedAt, listing.RentPrice, listing.PricePerM2,
		listing.CondoFee, boolToInt(listing.Furnished),
	)
	if err != nil {
		return fmt.Errorf("failed to record price history for %s: %w", listing.ListingID, err)
	}
	return nil
}

// PersistResult reports the outcome of a batch persist.
type PersistResult struct {
	Processed int
	FailedIDs []string
}

// PersistMany persists each listing in its own transaction so one bad
// record cannot abort the rest of the batch. The returned error wraps the
// first failure; the result reports how many succeeded and which
// identifiers failed.
func (d *Database) PersistMany(listings []models.Listing) (PersistResult, error) {
	var result PersistResult
	var firstErr error
	for _, listing := range listings {
		if err := d.PersistListing(listing); err != nil {
			result.FailedIDs = append(result.FailedIDs, listing.ListingID)
			if firstErr == nil {
				firstErr = err
			}
			continue
		}
		result.Processed++
	}
	if firstErr != nil {
		return result, fmt.Errorf("failed to persist %d of %d listings: %w",
			len(result.FailedIDs), len(listings), firstErr)
	}
	return result, nil
}

// GetListingHistory returns all price observations for one listing ordered
// by capture time ascending, each joined with the listing's current
// descriptive fields.
func (d *Database) GetListingHistory(listingID string) ([]models.HistoryPoint, error) {
	rows, err := d.db.Query(`
		SELECT
			l.listing_id,
			l.title,
			l.neighborhood,
			l.street,
			ph.captured_at,
			ph.rent_price,
			ph.price_per_m2,
			ph.condo_fee,
			ph.furnished
		FROM price_history AS ph
		JOIN listings AS l ON l.listing_id = ph.listing_id
		WHERE l.listing_id = ?
		ORDER BY ph.captured_at ASC
	`, listingID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var points []models.HistoryPoint
	for rows.Next() {
		var point models.HistoryPoint
		var capturedAt string
		var rentPrice, pricePerM2, condoFee sql.NullFloat64
		var furnished int

		err := rows.Scan(
			&point.ListingID,
			&point.Title,
			&point.Neighborhood,
			&point.Street,
			&capturedAt,
			&rentPrice,
			&pricePerM2,
			&condoFee,
			&furnished,
		)
		if err != nil {
			return nil, err
		}

		if t, err := time.Parse(time.RFC3339, capturedAt); err == nil {
			point.CapturedAt = t
		}
		if rentPrice.Valid {
			v := rentPrice.Float64
			point.RentPrice = &v
		}
		if pricePerM2.Valid {
			v := pricePerM2.Float64
			point.PricePerM2 = &v
		}
		if condoFee.Valid {
			v := condoFee.Float64
			point.CondoFee = &v
		}
		point.Furnished = furnished != 0

		points = append(points, point)
	}
	return points, rows.Err()
}

// GetNeighborhoodDailyAverage groups a neighborhood's price observations by
// calendar date (UTC), and by furnished flag when the filter is non-nil.
// Rows without a price_per_m2 are excluded from that average by SQL AVG
// semantics but still counted.
func (d *Database) GetNeighborhoodDailyAverage(neighborhood string, furnished *bool) ([]models.DailyAverage, error) {
	query := `
		SELECT
			date(ph.captured_at) AS captured_date,
			AVG(ph.rent_price) AS avg_rent_price,
			AVG(ph.price_per_m2) AS avg_price_per_m2,
			COUNT(*) AS listings
		FROM price_history AS ph
		JOIN listings AS l ON l.listing_id = ph.listing_id
		WHERE l.neighborhood = ?
	`
	args := []interface{}{neighborhood}
	if furnished != nil {
		query += " AND ph.furnished = ?"
		args = append(args, boolToInt(*furnished))
	}
	query += " GROUP BY captured_date ORDER BY captured_date ASC"

	rows, err := d.db.Query(query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var averages []models.DailyAverage
	for rows.Next() {
		var avg models.DailyAverage
		var avgRent, avgPpm2 sql.NullFloat64

		if err := rows.Scan(&avg.CapturedDate, &avgRent, &avgPpm2, &avg.Listings); err != nil {
			return nil, err
		}
		if avgRent.Valid {
			v := avgRent.Float64
			avg.AvgRentPrice = &v
		}
		if avgPpm2.Valid {
			v := avgPpm2.Float64
			avg.AvgPricePerM2 = &v
		}
		averages = append(averages, avg)
	}
	return averages, rows.Err()
}

// ListListings returns the current snapshot rows, optionally filtered by
// neighborhood, ordered by neighborhood then title.
func (d *Database) ListListings(neighborhood string) ([]models.Listing, error) {
	query := `
		SELECT
			listing_id, title, neighborhood, street, city, state,
			area_m2, bedrooms, bathrooms, parking_spaces, furnished,
			url, first_seen, last_seen
		FROM listings
	`
	var args []interface{}
	if neighborhood != "" {
		query += " WHERE neighborhood = ?"
		args = append(args, neighborhood)
	}
	query += " ORDER BY neighborhood, title"

	rows, err := d.db.Query(query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var listings []models.Listing
	for rows.Next() {
		var l models.Listing
		var areaM2 sql.NullFloat64
		var bedrooms, bathrooms, parking sql.NullInt64
		var furnished int
		var firstSeen, lastSeen sql.NullString

		err := rows.Scan(
			&l.ListingID,
			&l.Title,
			&l.Neighborhood,
			&l.Street,
			&l.City,
			&l.State,
			&areaM2,
			&bedrooms,
			&bathrooms,
			&parking,
			&furnished,
			&l.URL,
			&firstSeen,
			&lastSeen,
		)
		if err != nil {
			return nil, err
		}

		if areaM2.Valid {
			v := areaM2.Float64
			l.AreaM2 = &v
		}
		if bedrooms.Valid {
			v := int(bedrooms.Int64)
			l.Bedrooms = &v
		}
		if bathrooms.Valid {
			v := int(bathrooms.Int64)
			l.Bathrooms = &v
		}
		if parking.Valid {
			v := int(parking.Int64)
			l.ParkingSpaces = &v
		}
		l.Furnished = furnished != 0

		if firstSeen.Valid && firstSeen.String != "" {
			if t, err := time.Parse(time.RFC3339, firstSeen.String); err == nil {
				l.FirstSeen = t
			}
		}
		if lastSeen.Valid && lastSeen.String != "" {
			if t, err := time.Parse(time.RFC3339, lastSeen.String); err == nil {
				l.LastSeen = t
			}
		}

		listings = append(listings, l)
	}
	return listings, rows.Err()
}

func (d *Database) Close() error {
	return d.db.Close()
}

func (d *Database) GetDB() *sql.DB {
	return d.db
}

func boolToInt(b bool) int {
	if b {
		return 1
	}
	return 0
}
