package salesquery

import (
	"sort"
	"strings"
	"time"

	"github.com/shopspring/decimal"

	"github.com/sellerdesk/sellerdesk-backend/pkg/db/models"
	"github.com/sellerdesk/sellerdesk-backend/pkg/enums"
)

// Criteria narrows a loaded page of sales. Filtering is deliberately
// page-local: it shapes what the current page displays and never reaches
// back into the database.
type Criteria struct {
	Status   *enums.SaleStatus
	Search   string
	DateFrom *time.Time
	DateTo   *time.Time
	PriceMin *decimal.Decimal
	PriceMax *decimal.Decimal
}

// Empty reports whether the criteria would pass every sale through.
func (c Criteria) Empty() bool {
	return c.Status == nil && c.Search == "" &&
		c.DateFrom == nil && c.DateTo == nil &&
		c.PriceMin == nil && c.PriceMax == nil
}

// Filter returns the sales matching every populated criterion. Absent bounds
// are unbounded and both date and price ranges are inclusive.
func Filter(sales []models.Sale, c Criteria) []models.Sale {
	if c.Empty() {
		return sales
	}
	out := make([]models.Sale, 0, len(sales))
	for i := range sales {
		if matches(&sales[i], c) {
			out = append(out, sales[i])
		}
	}
	return out
}

func matches(sale *models.Sale, c Criteria) bool {
	if c.Status != nil && sale.Status != *c.Status {
		return false
	}
	if c.Search != "" && !matchesSearch(sale, c.Search) {
		return false
	}
	// Bounds are day-granular while sale dates carry time of day, so both
	// ends compare calendar days to keep the whole bound day inside the
	// range.
	day := dayOf(SaleDate(sale))
	if c.DateFrom != nil && day.Before(dayOf(*c.DateFrom)) {
		return false
	}
	if c.DateTo != nil && day.After(dayOf(*c.DateTo)) {
		return false
	}
	if c.PriceMin != nil && sale.Total.LessThan(*c.PriceMin) {
		return false
	}
	if c.PriceMax != nil && sale.Total.GreaterThan(*c.PriceMax) {
		return false
	}
	return true
}

func matchesSearch(sale *models.Sale, term string) bool {
	needle := strings.ToLower(strings.TrimSpace(term))
	if needle == "" {
		return true
	}
	haystacks := []string{sale.ID.String()}
	if sale.OrderNumber != nil {
		haystacks = append(haystacks, *sale.OrderNumber)
	}
	if sale.CustomerName != nil {
		haystacks = append(haystacks, *sale.CustomerName)
	}
	for _, h := range haystacks {
		if strings.Contains(strings.ToLower(h), needle) {
			return true
		}
	}
	return false
}

func dayOf(t time.Time) time.Time {
	year, month, day := t.UTC().Date()
	return time.Date(year, month, day, 0, 0, 0, 0, time.UTC)
}

// SaleDate picks the date used for range filtering and chronological sorts:
// the order date when present, the record creation time otherwise, and the
// zero time when neither is usable.
func SaleDate(sale *models.Sale) time.Time {
	if sale == nil {
		return time.Time{}
	}
	if sale.OrderDate != nil && !sale.OrderDate.IsZero() {
		return *sale.OrderDate
	}
	if !sale.CreatedAt.IsZero() {
		return sale.CreatedAt
	}
	return time.Time{}
}

// Sort orders the page in place. All sorts are stable so ties keep their
// repository order.
func Sort(sales []models.Sale, key enums.SortKey) {
	switch key {
	case enums.SortKeyDateOldest:
		sort.SliceStable(sales, func(i, j int) bool {
			return SaleDate(&sales[i]).Before(SaleDate(&sales[j]))
		})
	case enums.SortKeyPriceHighest:
		sort.SliceStable(sales, func(i, j int) bool {
			return sales[i].Total.GreaterThan(sales[j].Total)
		})
	case enums.SortKeyPriceLowest:
		sort.SliceStable(sales, func(i, j int) bool {
			return sales[i].Total.LessThan(sales[j].Total)
		})
	default: // date_newest
		sort.SliceStable(sales, func(i, j int) bool {
			return SaleDate(&sales[i]).After(SaleDate(&sales[j]))
		})
	}
}
