package scraper

import (
	"strconv"
	"strings"
)

// Coercions from the loosely typed values returned by the search API into
// typed optional fields. The API mixes numbers, numeric strings and lists
// for the same logical field, so all shape sniffing lives in this file and
// the pagination logic stays shape-agnostic.

const listingSiteURL = "https://www.zapimoveis.com.br"

// extractNumber accepts numeric values directly and parses numeric strings
// after stripping "." and ",". The stripping rule matches how the upstream
// formats grouped values ("4.800" parses to 4800, "60,00" to 6000); it is a
// documented approximation, not locale-aware parsing.
func extractNumber(value interface{}) *float64 {
	switch v := value.(type) {
	case float64:
		return &v
	case int:
		f := float64(v)
		return &f
	case string:
		cleaned := strings.ReplaceAll(strings.ReplaceAll(v, ".", ""), ",", "")
		parsed, err := strconv.ParseFloat(strings.TrimSpace(cleaned), 64)
		if err != nil {
			return nil
		}
		return &parsed
	}
	return nil
}

// extractInteger truncates floats and parses trimmed strings.
func extractInteger(value interface{}) *int {
	switch v := value.(type) {
	case int:
		return &v
	case float64:
		n := int(v)
		return &n
	case string:
		n, err := strconv.Atoi(strings.TrimSpace(v))
		if err != nil {
			return nil
		}
		return &n
	}
	return nil
}

// extractFirstNumber handles fields that may hold a single number or a list
// of numbers, returning the first parseable element.
func extractFirstNumber(value interface{}) *float64 {
	if list, ok := value.([]interface{}); ok {
		for _, element := range list {
			if number := extractNumber(element); number != nil {
				return number
			}
		}
		return nil
	}
	return extractNumber(value)
}

// extractString returns the trimmed string, or "" for anything that is not
// a string. Callers treat "" as unknown.
func extractString(value interface{}) string {
	if s, ok := value.(string); ok {
		return strings.TrimSpace(s)
	}
	return ""
}

// extractFurnishedFlag prefers an explicit boolean field; otherwise it scans
// the amenities and features lists for a furnished marker.
func extractFurnishedFlag(raw map[string]interface{}) bool {
	if furnished, ok := raw["furnished"].(bool); ok {
		return furnished
	}
	for _, key := range []string{"amenities", "features"} {
		list, ok := raw[key].([]interface{})
		if !ok {
			continue
		}
		for _, item := range list {
			marker := strings.ToUpper(extractString(item))
			if marker == "FURNISHED" || marker == "MOBILIADO" {
				return true
			}
		}
	}
	return false
}

// selectPricingBlock resolves the pricing info, which may be one object or
// a list of objects. The element marked as rental wins, then the first
// object, then an empty block.
func selectPricingBlock(value interface{}) map[string]interface{} {
	switch v := value.(type) {
	case map[string]interface{}:
		return v
	case []interface{}:
		for _, item := range v {
			if block, ok := item.(map[string]interface{}); ok {
				if businessType, _ := block["businessType"].(string); businessType == "RENTAL" {
					return block
				}
			}
		}
		for _, item := range v {
			if block, ok := item.(map[string]interface{}); ok {
				return block
			}
		}
	}
	return map[string]interface{}{}
}

func extractRentPrice(pricing map[string]interface{}) *float64 {
	for _, key := range []string{"rentalTotalPrice", "price", "value"} {
		if price := extractNumber(pricing[key]); price != nil {
			return price
		}
	}
	return nil
}

func extractCondoFee(pricing map[string]interface{}) *float64 {
	if fee := extractNumber(pricing["monthlyCondoFee"]); fee != nil {
		return fee
	}
	return extractNumber(pricing["condominium"])
}

// extractListingID resolves the identity of a raw record. The first
// non-empty trimmed string among the candidate keys wins.
func extractListingID(raw map[string]interface{}) string {
	for _, key := range []string{"id", "listingId", "detailId"} {
		if value, ok := raw[key].(string); ok {
			if trimmed := strings.TrimSpace(value); trimmed != "" {
				return trimmed
			}
		}
	}
	return ""
}

// extractURL accepts a direct absolute URL string or an object with an href
// field, falling back to a canonical URL synthesized from the identifier.
func extractURL(raw map[string]interface{}) string {
	for _, key := range []string{"url", "link", "detailUrl"} {
		switch v := raw[key].(type) {
		case string:
			if strings.HasPrefix(v, "http") {
				return v
			}
		case map[string]interface{}:
			if href, ok := v["href"].(string); ok && strings.HasPrefix(href, "http") {
				return href
			}
		}
	}
	if listingID := extractListingID(raw); listingID != "" {
		return listingSiteURL + "/imovel/" + listingID
	}
	return listingSiteURL
}
