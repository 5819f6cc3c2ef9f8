package commission

import (
	"github.com/shopspring/decimal"

	"github.com/sellerdesk/sellerdesk-backend/pkg/db/models"
	"github.com/sellerdesk/sellerdesk-backend/pkg/enums"
	"github.com/sellerdesk/sellerdesk-backend/pkg/money"
)

// Stats aggregates commission owed across a seller's sales, bucketed by the
// sale's review status.
type Stats struct {
	Earned         decimal.Decimal `json:"earned"`
	PendingReview  decimal.Decimal `json:"pending_review"`
	PendingPayment decimal.Decimal `json:"pending_payment"`
}

// Total returns the sum of all three buckets.
func (s Stats) Total() decimal.Decimal {
	return money.Sum(s.Earned, s.PendingReview, s.PendingPayment)
}

// For returns the commission owed for a single sale. A stored positive
// commission amount wins; otherwise the amount is computed from the sale's
// own percentage, falling back to the seller default.
func For(sale *models.Sale, defaultPct decimal.Decimal) decimal.Decimal {
	if sale == nil {
		return decimal.Zero
	}
	if sale.CommissionAmount.GreaterThan(decimal.Zero) {
		return sale.CommissionAmount
	}
	pct := defaultPct
	if sale.CommissionPercentage != nil {
		pct = *sale.CommissionPercentage
	}
	return money.Percent(sale.Total, pct)
}

// Aggregate buckets every sale's commission by status. APPROVED counts as
// earned, UNDER_REVIEW as pending review, and PENDING or REJECTED as pending
// payment. Sales whose status is missing or unrecognized are excluded.
func Aggregate(sales []models.Sale, defaultPct decimal.Decimal) Stats {
	stats := Stats{
		Earned:         decimal.Zero,
		PendingReview:  decimal.Zero,
		PendingPayment: decimal.Zero,
	}
	for i := range sales {
		amount := For(&sales[i], defaultPct)
		switch sales[i].Status {
		case enums.SaleStatusApproved:
			stats.Earned = stats.Earned.Add(amount)
		case enums.SaleStatusUnderReview:
			stats.PendingReview = stats.PendingReview.Add(amount)
		case enums.SaleStatusPending, enums.SaleStatusRejected:
			stats.PendingPayment = stats.PendingPayment.Add(amount)
		}
	}
	return stats
}
