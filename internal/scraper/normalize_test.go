package scraper

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNormalizeListingRejectsMissingIdentity(t *testing.T) {
	records := []map[string]interface{}{
		{},
		{"title": "Sem identificador"},
		{"id": ""},
		{"id": "   "},
		{"id": 12345.0},
		{"listingId": nil, "detailId": ""},
	}
	for _, raw := range records {
		assert.Nil(t, normalizeListing(raw))
	}
}

func TestNormalizeListingFullRecord(t *testing.T) {
	raw := map[string]interface{}{
		"id":    "12345",
		"title": "Apartamento mobiliado perto do metrô",
		"address": map[string]interface{}{
			"neighborhood": "Pinheiros",
			"city":         "São Paulo",
			"state":        "SP",
			"street":       "Rua dos Pinheiros",
		},
		"usableAreas":   []interface{}{"80"},
		"bedrooms":      2.0,
		"bathrooms":     "2",
		"parkingSpaces": 1.0,
		"amenities":     []interface{}{"FURNISHED", "POOL"},
		"pricingInfos": []interface{}{
			map[string]interface{}{
				"businessType": "SALE",
				"price":        "900.000",
			},
			map[string]interface{}{
				"businessType":     "RENTAL",
				"rentalTotalPrice": "4.800",
				"monthlyCondoFee":  "550",
			},
		},
		"url": "https://www.zapimoveis.com.br/imovel/12345",
	}

	listing := normalizeListing(raw)
	require.NotNil(t, listing)

	assert.Equal(t, "12345", listing.ListingID)
	assert.Equal(t, "Apartamento mobiliado perto do metrô", listing.Title)
	assert.Equal(t, "Pinheiros", listing.Neighborhood)
	assert.Equal(t, "São Paulo", listing.City)
	assert.Equal(t, "SP", listing.State)
	assert.Equal(t, "Rua dos Pinheiros", listing.Street)
	assert.Equal(t, 80.0, *listing.AreaM2)
	assert.Equal(t, 2, *listing.Bedrooms)
	assert.Equal(t, 2, *listing.Bathrooms)
	assert.Equal(t, 1, *listing.ParkingSpaces)
	assert.True(t, listing.Furnished)
	assert.Equal(t, 4800.0, *listing.RentPrice)
	assert.Equal(t, 550.0, *listing.CondoFee)
	assert.Equal(t, 60.0, *listing.PricePerM2)
	assert.Equal(t, "https://www.zapimoveis.com.br/imovel/12345", listing.URL)
	assert.True(t, listing.CapturedAt.IsZero())
}

func TestNormalizeListingBedroomsFallsBackToRooms(t *testing.T) {
	listing := normalizeListing(map[string]interface{}{"id": "1", "rooms": 3.0})
	require.NotNil(t, listing)
	assert.Equal(t, 3, *listing.Bedrooms)
}

func TestNormalizeListingPricePerM2Rules(t *testing.T) {
	// Missing area
	listing := normalizeListing(map[string]interface{}{
		"id":           "1",
		"pricingInfos": map[string]interface{}{"price": 4000.0},
	})
	require.NotNil(t, listing)
	assert.Nil(t, listing.PricePerM2)

	// Zero area never divides
	listing = normalizeListing(map[string]interface{}{
		"id":           "2",
		"usableAreas":  []interface{}{0.0},
		"pricingInfos": map[string]interface{}{"price": 4000.0},
	})
	require.NotNil(t, listing)
	assert.Nil(t, listing.PricePerM2)

	// Missing rent
	listing = normalizeListing(map[string]interface{}{
		"id":          "3",
		"usableAreas": []interface{}{80.0},
	})
	require.NotNil(t, listing)
	assert.Nil(t, listing.PricePerM2)

	// Both present
	listing = normalizeListing(map[string]interface{}{
		"id":           "4",
		"usableAreas":  []interface{}{80.0},
		"pricingInfos": map[string]interface{}{"price": 4000.0},
	})
	require.NotNil(t, listing)
	assert.Equal(t, 50.0, *listing.PricePerM2)
}

func TestNormalizeListingTitleFallback(t *testing.T) {
	listing := normalizeListing(map[string]interface{}{
		"id": "1",
		"address": map[string]interface{}{
			"neighborhood": "Moema",
		},
	})
	require.NotNil(t, listing)
	assert.Equal(t, "Apartamento em Moema", listing.Title)

	listing = normalizeListing(map[string]interface{}{"id": "2"})
	require.NotNil(t, listing)
	assert.Equal(t, "Apartamento", listing.Title)

	listing = normalizeListing(map[string]interface{}{
		"id":             "3",
		"advertiseTitle": "Anúncio secundário",
	})
	require.NotNil(t, listing)
	assert.Equal(t, "Anúncio secundário", listing.Title)
}

func TestNormalizeListingSynthesizesURL(t *testing.T) {
	listing := normalizeListing(map[string]interface{}{"id": "98765"})
	require.NotNil(t, listing)
	assert.Equal(t, "https://www.zapimoveis.com.br/imovel/98765", listing.URL)
}
