package database

import "fmt"

// RunMigrations creates the schema. The uniqueness constraint on
// (listing_id, captured_at) is what makes re-ingesting the same capture
// batch safe; the upserts rely on it instead of pre-query existence checks.
func (d *Database) RunMigrations() error {
	_, err := d.db.Exec(`
		CREATE TABLE IF NOT EXISTS listings (
			listing_id TEXT PRIMARY KEY,
			title TEXT,
			neighborhood TEXT,
			street TEXT,
			city TEXT,
			state TEXT,
			area_m2 REAL,
			bedrooms INTEGER,
			bathrooms INTEGER,
			parking_spaces INTEGER,
			furnished INTEGER,
			url TEXT,
			first_seen TEXT,
			last_seen TEXT
		);
	`)
	if err != nil {
		return fmt.Errorf("failed to create listings table: %v", err)
	}

	_, err = d.db.Exec(`
		CREATE TABLE IF NOT EXISTS price_history (
			id INTEGER PRIMARY KEY AUTOINCREMENT,
			listing_id TEXT NOT NULL,
			captured_at TEXT NOT NULL,
			rent_price REAL,
			price_per_m2 REAL,
			condo_fee REAL,
			furnished INTEGER NOT NULL,
			UNIQUE(listing_id, captured_at),
			FOREIGN KEY(listing_id) REFERENCES listings(listing_id) ON DELETE CASCADE
		);
	`)
	if err != nil {
		return fmt.Errorf("failed to create price_history table: %v", err)
	}

	_, err = d.db.Exec(`
		CREATE INDEX IF NOT EXISTS idx_listings_neighborhood
		ON listings(neighborhood);
	`)
	if err != nil {
		return err
	}

	_, err = d.db.Exec(`
		CREATE INDEX IF NOT EXISTS idx_price_history_listing
		ON price_history(listing_id, captured_at);
	`)
	if err != nil {
		return err
	}

	return nil
}
