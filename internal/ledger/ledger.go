package ledger

import (
	"github.com/shopspring/decimal"

	"github.com/sellerdesk/sellerdesk-backend/pkg/db/models"
	"github.com/sellerdesk/sellerdesk-backend/pkg/enums"
	"github.com/sellerdesk/sellerdesk-backend/pkg/errors"
	"github.com/sellerdesk/sellerdesk-backend/pkg/money"
)

// Balance is the derived payment position of a sale.
type Balance struct {
	Total     decimal.Decimal
	TotalPaid decimal.Decimal
	Remaining decimal.Decimal
	Status    enums.PaymentStatus
}

// IsPaid reports whether nothing remains to be collected.
func (b Balance) IsPaid() bool {
	return b.Status == enums.PaymentStatusPaid
}

// Compute derives a balance from the sale total and its payment rows.
// Remaining never goes below zero even when payments overshoot the total.
func Compute(total decimal.Decimal, payments []models.Payment) Balance {
	paid := decimal.Zero
	for _, p := range payments {
		paid = paid.Add(p.Amount)
	}
	return FromCached(total, paid)
}

// FromCached derives a balance from the sale's cached paid amount, used when
// payment rows were not loaded alongside the sale.
func FromCached(total, totalPaid decimal.Decimal) Balance {
	return Balance{
		Total:     total,
		TotalPaid: totalPaid,
		Remaining: money.ClampZero(total.Sub(totalPaid)),
		Status:    StatusFor(total, totalPaid),
	}
}

// ForSale computes the balance for a sale, preferring loaded payment rows
// over the cached columns. A nil Payments slice means the rows were not
// fetched; an empty non-nil slice means the sale genuinely has no payments.
func ForSale(sale *models.Sale) Balance {
	if sale == nil {
		return Balance{Status: enums.PaymentStatusUnpaid}
	}
	if sale.Payments == nil {
		return FromCached(sale.Total, sale.TotalPaid)
	}
	return Compute(sale.Total, sale.Payments)
}

// StatusFor maps a paid amount against the total onto a payment status.
// The status is always derived, never stored as an independent fact.
func StatusFor(total, paid decimal.Decimal) enums.PaymentStatus {
	switch {
	case paid.GreaterThanOrEqual(total) && total.GreaterThan(decimal.Zero):
		return enums.PaymentStatusPaid
	case paid.GreaterThan(decimal.Zero):
		return enums.PaymentStatusPartiallyPaid
	default:
		return enums.PaymentStatusUnpaid
	}
}

// ValidateAmount rejects payment amounts that are non-positive or exceed the
// remaining balance. Overpayments are rejected outright rather than clamped.
func ValidateAmount(remaining, requested decimal.Decimal) error {
	if requested.LessThanOrEqual(decimal.Zero) {
		return errors.New(errors.CodeInvalidAmount, "payment amount must be greater than zero")
	}
	if requested.GreaterThan(remaining) {
		return errors.New(errors.CodeInvalidAmount, "payment amount exceeds the remaining balance").
			WithDetails(map[string]any{
				"remaining": money.Format(remaining),
				"requested": money.Format(requested),
			})
	}
	return nil
}
