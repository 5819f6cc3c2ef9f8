package models

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/sellerdesk/sellerdesk-backend/pkg/enums"
)

// Payment is a partial or full money receipt registered against a sale's
// outstanding balance. PaymentDate is assigned server-side at registration.
type Payment struct {
	ID          uuid.UUID           `gorm:"column:id;type:uuid;default:gen_random_uuid();primaryKey" json:"id"`
	SaleID      uuid.UUID           `gorm:"column:sale_id;type:uuid;not null;index" json:"sale_id"`
	Amount      decimal.Decimal     `gorm:"column:amount;type:decimal(12,2);not null" json:"amount"`
	Method      enums.PaymentMethod `gorm:"column:method;type:text;not null" json:"method"`
	Notes       *string             `gorm:"column:notes" json:"notes,omitempty"`
	ReceiptURL  *string             `gorm:"column:receipt_url" json:"receipt_url,omitempty"`
	PaymentDate time.Time           `gorm:"column:payment_date;not null" json:"payment_date"`
	CreatedAt   time.Time           `gorm:"column:created_at;autoCreateTime" json:"created_at"`
	UpdatedAt   time.Time           `gorm:"column:updated_at;autoUpdateTime" json:"updated_at"`
}
