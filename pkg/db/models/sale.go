package models

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/sellerdesk/sellerdesk-backend/pkg/enums"
)

// Sale is a recorded transaction awaiting administrative approval and
// commission settlement. TotalPaid/RemainingAmount/PaymentStatus are cached
// ledger values maintained alongside the payments they are derived from;
// the ledger package remains the source of truth whenever payments are
// loaded.
type Sale struct {
	ID                   uuid.UUID           `gorm:"column:id;type:uuid;default:gen_random_uuid();primaryKey" json:"id"`
	SellerID             uuid.UUID           `gorm:"column:seller_id;type:uuid;not null;index" json:"seller_id"`
	OrderNumber          *string             `gorm:"column:order_number" json:"order_number,omitempty"`
	CustomerName         *string             `gorm:"column:customer_name" json:"customer_name,omitempty"`
	Type                 enums.SaleType      `gorm:"column:type;type:text;not null;default:'STANDARD'" json:"type"`
	Status               enums.SaleStatus    `gorm:"column:status;type:text;not null;default:'PENDING'" json:"status"`
	PaymentStatus        enums.PaymentStatus `gorm:"column:payment_status;type:text;not null;default:'UNPAID'" json:"payment_status"`
	Subtotal             decimal.Decimal     `gorm:"column:subtotal;type:decimal(12,2);not null;default:0" json:"subtotal"`
	ShippingCost         decimal.Decimal     `gorm:"column:shipping_cost;type:decimal(12,2);not null;default:0" json:"shipping_cost"`
	Total                decimal.Decimal     `gorm:"column:total;type:decimal(12,2);not null" json:"total"`
	TotalPaid            decimal.Decimal     `gorm:"column:total_paid;type:decimal(12,2);not null;default:0" json:"total_paid"`
	RemainingAmount      decimal.Decimal     `gorm:"column:remaining_amount;type:decimal(12,2);not null;default:0" json:"remaining_amount"`
	CommissionPercentage *decimal.Decimal    `gorm:"column:commission_percentage;type:decimal(5,2)" json:"commission_percentage,omitempty"`
	CommissionAmount     decimal.Decimal     `gorm:"column:commission_amount;type:decimal(12,2);not null;default:0" json:"commission_amount"`
	RejectionReason      *string             `gorm:"column:rejection_reason" json:"rejection_reason,omitempty"`
	TVSerialNumber       *string             `gorm:"column:tv_serial_number" json:"tv_serial_number,omitempty"`
	TVModel              *string             `gorm:"column:tv_model" json:"tv_model,omitempty"`
	OrderDate            *time.Time          `gorm:"column:order_date" json:"order_date,omitempty"`
	Payments             []Payment           `gorm:"foreignKey:SaleID;constraint:OnDelete:CASCADE" json:"payments,omitempty"`
	CreatedAt            time.Time           `gorm:"column:created_at;autoCreateTime" json:"created_at"`
	UpdatedAt            time.Time           `gorm:"column:updated_at;autoUpdateTime" json:"updated_at"`
}

// Reference returns the human-facing identifier, falling back to the
// opaque id when no order number was recorded.
func (s *Sale) Reference() string {
	if s.OrderNumber != nil && *s.OrderNumber != "" {
		return *s.OrderNumber
	}
	return s.ID.String()
}
