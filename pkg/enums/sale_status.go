package enums

import (
	"fmt"
	"strings"
)

// SaleStatus tracks the administrative lifecycle of a sale.
type SaleStatus string

const (
	SaleStatusPending     SaleStatus = "PENDING"
	SaleStatusUnderReview SaleStatus = "UNDER_REVIEW"
	SaleStatusApproved    SaleStatus = "APPROVED"
	SaleStatusRejected    SaleStatus = "REJECTED"
)

var validSaleStatuses = []SaleStatus{
	SaleStatusPending,
	SaleStatusUnderReview,
	SaleStatusApproved,
	SaleStatusRejected,
}

// Upstream systems emit several spellings for the review state.
var saleStatusAliases = map[string]SaleStatus{
	"IN_REVIEW":   SaleStatusUnderReview,
	"EN_REVISION": SaleStatusUnderReview,
}

// String implements fmt.Stringer.
func (s SaleStatus) String() string {
	return string(s)
}

// IsValid reports whether the value is a known SaleStatus.
func (s SaleStatus) IsValid() bool {
	for _, candidate := range validSaleStatuses {
		if candidate == s {
			return true
		}
	}
	return false
}

// ParseSaleStatus canonicalizes raw input into a SaleStatus. Matching is
// case-insensitive and folds known aliases into the canonical state.
func ParseSaleStatus(value string) (SaleStatus, error) {
	normalized := strings.ToUpper(strings.TrimSpace(value))
	if alias, ok := saleStatusAliases[normalized]; ok {
		return alias, nil
	}
	for _, candidate := range validSaleStatuses {
		if string(candidate) == normalized {
			return candidate, nil
		}
	}
	return "", fmt.Errorf("invalid sale status %q", value)
}
