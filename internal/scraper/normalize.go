package scraper

import (
	"fmt"

	"rentwatch/server/internal/models"
)

// normalizeListing converts one raw API record into a canonical Listing.
// Records without a usable identifier are rejected with nil; the feed
// routinely contains such entries and dropping them is the expected
// outcome, not an error.
//
// CapturedAt is left unset here. The ingestion run stamps it so that every
// listing captured in one run shares a single timestamp.
func normalizeListing(raw map[string]interface{}) *models.Listing {
	listingID := extractListingID(raw)
	if listingID == "" {
		return nil
	}

	address, _ := raw["address"].(map[string]interface{})
	neighborhood := extractString(address["neighborhood"])
	city := extractString(address["city"])
	state := extractString(address["state"])
	street := extractString(address["street"])

	area := extractFirstNumber(raw["usableAreas"])
	bedrooms := extractInteger(raw["bedrooms"])
	if bedrooms == nil {
		bedrooms = extractInteger(raw["rooms"])
	}
	bathrooms := extractInteger(raw["bathrooms"])
	parking := extractInteger(raw["parkingSpaces"])
	furnished := extractFurnishedFlag(raw)

	pricing := selectPricingBlock(raw["pricingInfos"])
	rentPrice := extractRentPrice(pricing)
	condoFee := extractCondoFee(pricing)

	var pricePerM2 *float64
	if rentPrice != nil && area != nil && *area > 0 {
		ppm2 := *rentPrice / *area
		pricePerM2 = &ppm2
	}

	title := extractString(raw["title"])
	if title == "" {
		title = extractString(raw["advertiseTitle"])
	}
	if title == "" {
		if neighborhood != "" {
			title = fmt.Sprintf("Apartamento em %s", neighborhood)
		} else {
			title = "Apartamento"
		}
	}

	return &models.Listing{
		ListingID:     listingID,
		Title:         title,
		Neighborhood:  neighborhood,
		Street:        street,
		City:          city,
		State:         state,
		AreaM2:        area,
		Bedrooms:      bedrooms,
		Bathrooms:     bathrooms,
		ParkingSpaces: parking,
		RentPrice:     rentPrice,
		CondoFee:      condoFee,
		PricePerM2:    pricePerM2,
		Furnished:     furnished,
		URL:           extractURL(raw),
	}
}
