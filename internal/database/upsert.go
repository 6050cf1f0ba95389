package database

import (
	"time"

	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
	"gorm.io/gorm/logger"

	"rentwatch/server/internal/models"
)

// listingRow and priceHistoryRow map the store's tables for the gorm batch
// write path used by the processor. Column names must stay in sync with
// the schema created in migrations.go.
type listingRow struct {
	ListingID     string   `gorm:"column:listing_id;primaryKey"`
	Title         string   `gorm:"column:title"`
	Neighborhood  string   `gorm:"column:neighborhood"`
	Street        string   `gorm:"column:street"`
	City          string   `gorm:"column:city"`
	State         string   `gorm:"column:state"`
	AreaM2        *float64 `gorm:"column:area_m2"`
	Bedrooms      *int     `gorm:"column:bedrooms"`
	Bathrooms     *int     `gorm:"column:bathrooms"`
	ParkingSpaces *int     `gorm:"column:parking_spaces"`
	Furnished     int      `gorm:"column:furnished"`
	URL           string   `gorm:"column:url"`
	FirstSeen     string   `gorm:"column:first_seen"`
	LastSeen      string   `gorm:"column:last_seen"`
}

func (listingRow) TableName() string { return "listings" }

type priceHistoryRow struct {
	ID         int64    `gorm:"column:id;primaryKey;autoIncrement"`
	ListingID  string   `gorm:"column:listing_id"`
	CapturedAt string   `gorm:"column:captured_at"`
	RentPrice  *float64 `gorm:"column:rent_price"`
	PricePerM2 *float64 `gorm:"column:price_per_m2"`
	CondoFee   *float64 `gorm:"column:condo_fee"`
	Furnished  int      `gorm:"column:furnished"`
}

func (priceHistoryRow) TableName() string { return "price_history" }

// OpenGorm opens the gorm handle used by the batch-processing write path.
// The schema itself is owned by Database.RunMigrations.
func OpenGorm(dbPath string) (*gorm.DB, error) {
	return gorm.Open(sqlite.Open(dbPath+"?_foreign_keys=on"), &gorm.Config{
		Logger: logger.Default.LogMode(logger.Silent),
	})
}

// UpsertListings writes a batch of listings inside the supplied gorm
// transaction: the snapshot upsert keyed by listing_id and the history
// upsert keyed by (listing_id, captured_at). It honors the same conflict
// targets as Database.PersistListing, so replaying a batch after a retry
// only overwrites identical values.
func UpsertListings(tx *gorm.DB, batch []models.Listing) error {
	if len(batch) == 0 {
		return nil
	}

	snapshots := make([]listingRow, 0, len(batch))
	history := make([]priceHistoryRow, 0, len(batch))
	for _, listing := range batch {
		capturedAt := listing.CapturedAt.UTC().Format(time.RFC3339)
		snapshots = append(snapshots, listingRow{
			ListingID:     listing.ListingID,
			Title:         listing.Title,
			Neighborhood:  listing.Neighborhood,
			Street:        listing.Street,
			City:          listing.City,
			State:         listing.State,
			AreaM2:        listing.AreaM2,
			Bedrooms:      listing.Bedrooms,
			Bathrooms:     listing.Bathrooms,
			ParkingSpaces: listing.ParkingSpaces,
			Furnished:     boolToInt(listing.Furnished),
			URL:           listing.URL,
			FirstSeen:     capturedAt,
			LastSeen:      capturedAt,
		})
		history = append(history, priceHistoryRow{
			ListingID:  listing.ListingID,
			CapturedAt: capturedAt,
			RentPrice:  listing.RentPrice,
			PricePerM2: listing.PricePerM2,
			CondoFee:   listing.CondoFee,
			Furnished:  boolToInt(listing.Furnished),
		})
	}

	err := tx.Clauses(clause.OnConflict{
		Columns: []clause.Column{{Name: "listing_id"}},
		DoUpdates: clause.AssignmentColumns([]string{
			"title", "neighborhood", "street", "city", "state", "area_m2",
			"bedrooms", "bathrooms", "parking_spaces", "furnished", "url",
			"last_seen",
		}),
	}).Create(&snapshots).Error
	if err != nil {
		return err
	}

	return tx.Clauses(clause.OnConflict{
		Columns: []clause.Column{{Name: "listing_id"}, {Name: "captured_at"}},
		DoUpdates: clause.AssignmentColumns([]string{
			"rent_price", "price_per_m2", "condo_fee", "furnished",
		}),
	}).Create(&history).Error
}
