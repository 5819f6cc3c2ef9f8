package models

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// SellerProfile carries the per-seller commission percentage used as the
// fallback when a sale does not record its own.
type SellerProfile struct {
	ID                   uuid.UUID       `gorm:"column:id;type:uuid;primaryKey" json:"id"`
	DisplayName          string          `gorm:"column:display_name;not null" json:"display_name"`
	CommissionPercentage decimal.Decimal `gorm:"column:commission_percentage;type:decimal(5,2);not null" json:"commission_percentage"`
	CreatedAt            time.Time       `gorm:"column:created_at;autoCreateTime" json:"created_at"`
	UpdatedAt            time.Time       `gorm:"column:updated_at;autoUpdateTime" json:"updated_at"`
}
