package enums

import (
	"fmt"
	"strings"
)

// SaleType distinguishes standard report-uploaded sales from manually
// submitted TV sales.
type SaleType string

const (
	SaleTypeStandard SaleType = "STANDARD"
	SaleTypeTV       SaleType = "TV"
)

var validSaleTypes = []SaleType{
	SaleTypeStandard,
	SaleTypeTV,
}

// String implements fmt.Stringer.
func (s SaleType) String() string {
	return string(s)
}

// IsValid reports whether the value is a known SaleType.
func (s SaleType) IsValid() bool {
	for _, candidate := range validSaleTypes {
		if candidate == s {
			return true
		}
	}
	return false
}

// ParseSaleType converts raw input into a SaleType.
func ParseSaleType(value string) (SaleType, error) {
	normalized := strings.ToUpper(strings.TrimSpace(value))
	for _, candidate := range validSaleTypes {
		if string(candidate) == normalized {
			return candidate, nil
		}
	}
	return "", fmt.Errorf("invalid sale type %q", value)
}
