package enums

import (
	"fmt"
	"strings"
)

// SortKey names the orderings the in-page sale view supports.
type SortKey string

const (
	SortKeyDateNewest   SortKey = "date_newest"
	SortKeyDateOldest   SortKey = "date_oldest"
	SortKeyPriceHighest SortKey = "price_highest"
	SortKeyPriceLowest  SortKey = "price_lowest"
)

var validSortKeys = []SortKey{
	SortKeyDateNewest,
	SortKeyDateOldest,
	SortKeyPriceHighest,
	SortKeyPriceLowest,
}

// String implements fmt.Stringer.
func (s SortKey) String() string {
	return string(s)
}

// IsValid reports whether the value is a known SortKey.
func (s SortKey) IsValid() bool {
	for _, candidate := range validSortKeys {
		if candidate == s {
			return true
		}
	}
	return false
}

// ParseSortKey converts raw input into a SortKey.
func ParseSortKey(value string) (SortKey, error) {
	normalized := strings.ToLower(strings.TrimSpace(value))
	for _, candidate := range validSortKeys {
		if string(candidate) == normalized {
			return candidate, nil
		}
	}
	return "", fmt.Errorf("invalid sort key %q", value)
}
