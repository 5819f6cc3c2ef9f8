package sales

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/sellerdesk/sellerdesk-backend/pkg/db/models"
	"github.com/sellerdesk/sellerdesk-backend/pkg/enums"
	"github.com/sellerdesk/sellerdesk-backend/pkg/pagination"
	"github.com/sellerdesk/sellerdesk-backend/pkg/types"
)

// ListInput captures everything the sale list endpoint accepts: the page to
// load plus the in-memory criteria applied to that page.
type ListInput struct {
	SellerID uuid.UUID
	Page     pagination.Params
	Status   *enums.SaleStatus
	Search   string
	DateFrom *time.Time
	DateTo   *time.Time
	PriceMin *decimal.Decimal
	PriceMax *decimal.Decimal
	SortKey  enums.SortKey
}

// SaleSummary is a list row. Money fields come from the cached ledger
// columns; the formatted variants are display-ready.
type SaleSummary struct {
	ID                 uuid.UUID           `json:"id"`
	Reference          string              `json:"reference"`
	OrderNumber        *string             `json:"order_number,omitempty"`
	CustomerName       *string             `json:"customer_name,omitempty"`
	Type               enums.SaleType      `json:"type"`
	Status             enums.SaleStatus    `json:"status"`
	PaymentStatus      enums.PaymentStatus `json:"payment_status"`
	Total              decimal.Decimal     `json:"total"`
	TotalPaid          decimal.Decimal     `json:"total_paid"`
	RemainingAmount    decimal.Decimal     `json:"remaining_amount"`
	TotalFormatted     string              `json:"total_formatted"`
	RemainingFormatted string              `json:"remaining_formatted"`
	SaleDate           *time.Time          `json:"sale_date,omitempty"`
	CreatedAt          time.Time           `json:"created_at"`
}

// SaleList wraps one shaped page plus its pagination envelope. TotalElements
// counts the seller's whole collection, not the filtered subset.
type SaleList struct {
	Sales []SaleSummary  `json:"sales"`
	Page  types.PageInfo `json:"page"`
}

// SaleDetail is the full sale view with its payment rows and a balance
// recomputed from them.
type SaleDetail struct {
	SaleSummary
	Subtotal         decimal.Decimal  `json:"subtotal"`
	ShippingCost     decimal.Decimal  `json:"shipping_cost"`
	CommissionPct    *decimal.Decimal `json:"commission_percentage,omitempty"`
	CommissionAmount decimal.Decimal  `json:"commission_amount"`
	RejectionReason  *string          `json:"rejection_reason,omitempty"`
	TVSerialNumber   *string          `json:"tv_serial_number,omitempty"`
	TVModel          *string          `json:"tv_model,omitempty"`
	Payments         []models.Payment `json:"payments"`
	CanRegister      bool             `json:"can_register_payment"`
	CanDelete        bool             `json:"can_delete"`
}

// CreateTVSaleInput carries the fields for a manually recorded TV sale.
type CreateTVSaleInput struct {
	SellerID       uuid.UUID
	TVSerialNumber string
	TVModel        string
	Price          decimal.Decimal
	Shipping       decimal.Decimal
	CustomerName   *string
	OrderNumber    *string
	OrderDate      *time.Time
}
