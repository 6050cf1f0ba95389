package scraper

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestExtractNumber(t *testing.T) {
	tests := []struct {
		name  string
		value interface{}
		want  *float64
	}{
		{"float passthrough", 4800.0, floatPtr(4800)},
		{"int passthrough", 80, floatPtr(80)},
		{"plain numeric string", "80", floatPtr(80)},
		{"grouped thousands", "4.800", floatPtr(4800)},
		{"comma grouped", "60,00", floatPtr(6000)},
		{"mixed grouping", "1.234,56", floatPtr(123456)},
		{"garbage string", "abc", nil},
		{"empty string", "", nil},
		{"bool", true, nil},
		{"nil", nil, nil},
		{"list", []interface{}{80.0}, nil},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := extractNumber(tt.value)
			if tt.want == nil {
				assert.Nil(t, got)
				return
			}
			require.NotNil(t, got)
			assert.Equal(t, *tt.want, *got)
		})
	}
}

func TestExtractInteger(t *testing.T) {
	assert.Equal(t, 3, *extractInteger(3))
	assert.Equal(t, 3, *extractInteger(3.9))
	assert.Equal(t, 4, *extractInteger(" 4 "))
	assert.Nil(t, extractInteger("4.5"))
	assert.Nil(t, extractInteger("x"))
	assert.Nil(t, extractInteger(nil))
	assert.Nil(t, extractInteger(true))
}

func TestExtractFirstNumber(t *testing.T) {
	assert.Equal(t, 80.0, *extractFirstNumber([]interface{}{nil, "junk", "80", "90"}))
	assert.Equal(t, 65.5, *extractFirstNumber(65.5))
	assert.Nil(t, extractFirstNumber([]interface{}{}))
	assert.Nil(t, extractFirstNumber([]interface{}{nil, "junk"}))
	assert.Nil(t, extractFirstNumber(nil))
}

func TestExtractString(t *testing.T) {
	assert.Equal(t, "Pinheiros", extractString("  Pinheiros "))
	assert.Equal(t, "", extractString(nil))
	assert.Equal(t, "", extractString(42.0))
	assert.Equal(t, "", extractString([]interface{}{"x"}))
}

func TestExtractFurnishedFlag(t *testing.T) {
	// Explicit boolean wins, including an explicit false over amenities
	assert.True(t, extractFurnishedFlag(map[string]interface{}{"furnished": true}))
	assert.False(t, extractFurnishedFlag(map[string]interface{}{
		"furnished": false,
		"amenities": []interface{}{"FURNISHED"},
	}))

	assert.True(t, extractFurnishedFlag(map[string]interface{}{
		"amenities": []interface{}{"pool", " mobiliado "},
	}))
	assert.True(t, extractFurnishedFlag(map[string]interface{}{
		"features": []interface{}{"FURNISHED"},
	}))
	assert.False(t, extractFurnishedFlag(map[string]interface{}{
		"amenities": []interface{}{"pool", "gym"},
	}))
	assert.False(t, extractFurnishedFlag(map[string]interface{}{}))
}

func TestSelectPricingBlock(t *testing.T) {
	direct := map[string]interface{}{"price": 100.0}
	assert.Equal(t, direct, selectPricingBlock(direct))

	rental := map[string]interface{}{"businessType": "RENTAL", "price": 200.0}
	sale := map[string]interface{}{"businessType": "SALE", "price": 900.0}
	assert.Equal(t, rental, selectPricingBlock([]interface{}{sale, rental}))

	// No rental element falls back to the first object
	assert.Equal(t, sale, selectPricingBlock([]interface{}{"noise", sale}))

	assert.Empty(t, selectPricingBlock(nil))
	assert.Empty(t, selectPricingBlock("weird"))
	assert.Empty(t, selectPricingBlock([]interface{}{"only", "strings"}))
}

func TestExtractRentPrice(t *testing.T) {
	assert.Equal(t, 4800.0, *extractRentPrice(map[string]interface{}{
		"rentalTotalPrice": "4.800",
		"price":            1.0,
	}))
	assert.Equal(t, 3500.0, *extractRentPrice(map[string]interface{}{"price": 3500.0}))
	assert.Equal(t, 2000.0, *extractRentPrice(map[string]interface{}{"value": "2000"}))
	assert.Nil(t, extractRentPrice(map[string]interface{}{}))
}

func TestExtractCondoFee(t *testing.T) {
	assert.Equal(t, 550.0, *extractCondoFee(map[string]interface{}{"monthlyCondoFee": "550"}))
	assert.Equal(t, 600.0, *extractCondoFee(map[string]interface{}{"condominium": 600.0}))
	assert.Nil(t, extractCondoFee(map[string]interface{}{}))
}

func TestExtractURL(t *testing.T) {
	assert.Equal(t, "https://example.com/a",
		extractURL(map[string]interface{}{"url": "https://example.com/a"}))
	assert.Equal(t, "https://example.com/b",
		extractURL(map[string]interface{}{"link": map[string]interface{}{"href": "https://example.com/b"}}))
	assert.Equal(t, "https://example.com/c",
		extractURL(map[string]interface{}{"detailUrl": "https://example.com/c"}))

	// Relative URLs are rejected, identity fallback kicks in
	assert.Equal(t, listingSiteURL+"/imovel/12345",
		extractURL(map[string]interface{}{"url": "/imovel/12345", "id": "12345"}))
	assert.Equal(t, listingSiteURL, extractURL(map[string]interface{}{}))
}

func floatPtr(v float64) *float64 { return &v }
