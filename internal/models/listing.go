package models

import "time"

// Listing is the canonical rental listing produced by the scraper. The same
// type doubles as a snapshot row when read back from the store, in which
// case FirstSeen and LastSeen are populated.
//
// ListingID is the upstream-stable identifier of a physical unit; every
// other field describes the latest known state of that unit.
type Listing struct {
	ListingID     string    `json:"listing_id"`
	Title         string    `json:"title"`
	Neighborhood  string    `json:"neighborhood"`
	Street        string    `json:"street"`
	City          string    `json:"city"`
	State         string    `json:"state"`
	AreaM2        *float64  `json:"area_m2"`
	Bedrooms      *int      `json:"bedrooms"`
	Bathrooms     *int      `json:"bathrooms"`
	ParkingSpaces *int      `json:"parking_spaces"`
	RentPrice     *float64  `json:"rent_price"`
	CondoFee      *float64  `json:"condo_fee"`
	PricePerM2    *float64  `json:"price_per_m2"`
	Furnished     bool      `json:"furnished"`
	URL           string    `json:"url"`
	CapturedAt    time.Time `json:"captured_at"`
	FirstSeen     time.Time `json:"first_seen,omitempty"`
	LastSeen      time.Time `json:"last_seen,omitempty"`
}

// HistoryPoint is one timestamped price observation for a listing, joined
// with the listing's current descriptive fields.
type HistoryPoint struct {
	ListingID    string    `json:"listing_id"`
	Title        string    `json:"title"`
	Neighborhood string    `json:"neighborhood"`
	Street       string    `json:"street"`
	CapturedAt   time.Time `json:"captured_at"`
	RentPrice    *float64  `json:"rent_price"`
	PricePerM2   *float64  `json:"price_per_m2"`
	CondoFee     *float64  `json:"condo_fee"`
	Furnished    bool      `json:"furnished"`
}

// DailyAverage aggregates the price observations of one neighborhood for a
// single calendar date (UTC).
type DailyAverage struct {
	CapturedDate  string   `json:"captured_date"`
	AvgRentPrice  *float64 `json:"avg_rent_price"`
	AvgPricePerM2 *float64 `json:"avg_price_per_m2"`
	Listings      int      `json:"listings"`
}
