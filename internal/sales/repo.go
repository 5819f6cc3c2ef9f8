package sales

import (
	"context"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"github.com/sellerdesk/sellerdesk-backend/pkg/db/models"
	"github.com/sellerdesk/sellerdesk-backend/pkg/enums"
	"github.com/sellerdesk/sellerdesk-backend/pkg/pagination"
)

// Repository manages persistence for sales and their cached ledger columns.
type Repository interface {
	WithTx(tx *gorm.DB) Repository
	Create(ctx context.Context, sale *models.Sale) (*models.Sale, error)
	FindByID(ctx context.Context, sellerID, saleID uuid.UUID) (*models.Sale, error)
	FindByIDForUpdate(ctx context.Context, sellerID, saleID uuid.UUID) (*models.Sale, error)
	ListBySeller(ctx context.Context, sellerID uuid.UUID, page pagination.Params) ([]models.Sale, int64, error)
	ListAllBySeller(ctx context.Context, sellerID uuid.UUID) ([]models.Sale, error)
	ExistsByOrderNumber(ctx context.Context, sellerID uuid.UUID, orderNumber string) (bool, error)
	UpdateLedger(ctx context.Context, saleID uuid.UUID, update LedgerUpdate) error
	Delete(ctx context.Context, saleID uuid.UUID) error
}

// LedgerUpdate carries the recomputed cached columns written after every
// payment mutation. Status is only touched when the mutation transitions it.
type LedgerUpdate struct {
	TotalPaid       decimal.Decimal
	RemainingAmount decimal.Decimal
	PaymentStatus   enums.PaymentStatus
	Status          *enums.SaleStatus
}

type repository struct {
	db *gorm.DB
}

// NewRepository builds a sales repository bound to the provided DB.
func NewRepository(db *gorm.DB) Repository {
	return &repository{db: db}
}

func (r *repository) WithTx(tx *gorm.DB) Repository {
	if tx == nil {
		return r
	}
	return &repository{db: tx}
}

func (r *repository) Create(ctx context.Context, sale *models.Sale) (*models.Sale, error) {
	if err := r.db.WithContext(ctx).Create(sale).Error; err != nil {
		return nil, err
	}
	return sale, nil
}

// FindByID loads a sale with its payments. Scoping by seller keeps one
// seller's rows invisible to another even with a guessed id.
func (r *repository) FindByID(ctx context.Context, sellerID, saleID uuid.UUID) (*models.Sale, error) {
	var sale models.Sale
	err := r.db.WithContext(ctx).
		Preload("Payments", func(db *gorm.DB) *gorm.DB {
			return db.Order("payment_date ASC")
		}).
		Where("id = ? AND seller_id = ?", saleID, sellerID).
		First(&sale).Error
	if err != nil {
		return nil, err
	}
	return &sale, nil
}

// FindByIDForUpdate loads a sale like FindByID but locks the sale row for the
// rest of the transaction. Concurrent payment mutations on the same sale
// queue on this lock, so the gate and amount checks always see the latest
// committed ledger.
func (r *repository) FindByIDForUpdate(ctx context.Context, sellerID, saleID uuid.UUID) (*models.Sale, error) {
	q := r.db.WithContext(ctx)
	// sqlite has no FOR UPDATE; its single writer serializes anyway.
	if r.db.Dialector.Name() != "sqlite" {
		q = q.Clauses(clause.Locking{Strength: "UPDATE"})
	}

	var sale models.Sale
	err := q.
		Preload("Payments", func(db *gorm.DB) *gorm.DB {
			return db.Order("payment_date ASC")
		}).
		Where("id = ? AND seller_id = ?", saleID, sellerID).
		First(&sale).Error
	if err != nil {
		return nil, err
	}
	return &sale, nil
}

// ListBySeller returns one page of the seller's sales, newest first, without
// preloading payments. List rows rely on the cached ledger columns.
func (r *repository) ListBySeller(ctx context.Context, sellerID uuid.UUID, page pagination.Params) ([]models.Sale, int64, error) {
	page = page.Normalize()

	var total int64
	base := r.db.WithContext(ctx).Model(&models.Sale{}).Where("seller_id = ?", sellerID)
	if err := base.Count(&total).Error; err != nil {
		return nil, 0, err
	}

	var sales []models.Sale
	err := r.db.WithContext(ctx).
		Where("seller_id = ?", sellerID).
		Order("COALESCE(order_date, created_at) DESC, id ASC").
		Offset(page.Offset()).
		Limit(page.Size).
		Find(&sales).Error
	if err != nil {
		return nil, 0, err
	}
	return sales, total, nil
}

// ListAllBySeller loads the seller's full portfolio for commission
// aggregation. Payments are not needed; commission reads cached columns.
func (r *repository) ListAllBySeller(ctx context.Context, sellerID uuid.UUID) ([]models.Sale, error) {
	var sales []models.Sale
	err := r.db.WithContext(ctx).
		Where("seller_id = ?", sellerID).
		Order("created_at ASC").
		Find(&sales).Error
	if err != nil {
		return nil, err
	}
	return sales, nil
}

func (r *repository) ExistsByOrderNumber(ctx context.Context, sellerID uuid.UUID, orderNumber string) (bool, error) {
	var count int64
	err := r.db.WithContext(ctx).Model(&models.Sale{}).
		Where("seller_id = ? AND order_number = ?", sellerID, orderNumber).
		Count(&count).Error
	if err != nil {
		return false, err
	}
	return count > 0, nil
}

func (r *repository) UpdateLedger(ctx context.Context, saleID uuid.UUID, update LedgerUpdate) error {
	columns := map[string]any{
		"total_paid":       update.TotalPaid,
		"remaining_amount": update.RemainingAmount,
		"payment_status":   update.PaymentStatus,
	}
	if update.Status != nil {
		columns["status"] = *update.Status
	}
	return r.db.WithContext(ctx).Model(&models.Sale{}).
		Where("id = ?", saleID).
		Updates(columns).Error
}

func (r *repository) Delete(ctx context.Context, saleID uuid.UUID) error {
	return r.db.WithContext(ctx).
		Select("Payments").
		Delete(&models.Sale{ID: saleID}).Error
}
