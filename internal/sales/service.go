package sales

import (
	"context"
	stdErrors "errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"

	"github.com/sellerdesk/sellerdesk-backend/internal/commission"
	"github.com/sellerdesk/sellerdesk-backend/internal/ledger"
	"github.com/sellerdesk/sellerdesk-backend/internal/salesquery"
	"github.com/sellerdesk/sellerdesk-backend/pkg/db"
	"github.com/sellerdesk/sellerdesk-backend/pkg/db/models"
	"github.com/sellerdesk/sellerdesk-backend/pkg/enums"
	pkgerrors "github.com/sellerdesk/sellerdesk-backend/pkg/errors"
	"github.com/sellerdesk/sellerdesk-backend/pkg/logger"
	"github.com/sellerdesk/sellerdesk-backend/pkg/metrics"
	"github.com/sellerdesk/sellerdesk-backend/pkg/money"
	"github.com/sellerdesk/sellerdesk-backend/pkg/pagination"
	"github.com/sellerdesk/sellerdesk-backend/pkg/types"
)

type txRunner interface {
	WithTx(ctx context.Context, fn func(tx *gorm.DB) error) error
}

// Service exposes the seller-facing sale operations.
type Service interface {
	List(ctx context.Context, input ListInput) (*SaleList, error)
	Detail(ctx context.Context, sellerID, saleID uuid.UUID) (*SaleDetail, error)
	CreateTVSale(ctx context.Context, input CreateTVSaleInput) (*SaleDetail, error)
	Delete(ctx context.Context, sellerID, saleID uuid.UUID) error
	CommissionStats(ctx context.Context, sellerID uuid.UUID, defaultPct decimal.Decimal) (*commission.Stats, error)
}

type service struct {
	repo    Repository
	tx      txRunner
	logg    *logger.Logger
	metrics *metrics.MutationMetrics
}

// NewService builds a sales service with the required dependencies.
func NewService(repo Repository, tx txRunner, logg *logger.Logger, m *metrics.MutationMetrics) (Service, error) {
	if repo == nil {
		return nil, fmt.Errorf("sales repository required")
	}
	if tx == nil {
		return nil, fmt.Errorf("transaction runner required")
	}
	if logg == nil {
		return nil, fmt.Errorf("logger required")
	}
	if m == nil {
		return nil, fmt.Errorf("mutation metrics required")
	}
	return &service{repo: repo, tx: tx, logg: logg, metrics: m}, nil
}

func (s *service) List(ctx context.Context, input ListInput) (*SaleList, error) {
	if input.SellerID == uuid.Nil {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "seller id required")
	}

	page := input.Page.Normalize()
	rows, total, err := s.repo.ListBySeller(ctx, input.SellerID, page)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "list sales")
	}

	// Filtering and sorting are page-local: they shape what the loaded page
	// displays and never change which rows the page contains upstream.
	rows = salesquery.Filter(rows, salesquery.Criteria{
		Status:   input.Status,
		Search:   input.Search,
		DateFrom: input.DateFrom,
		DateTo:   input.DateTo,
		PriceMin: input.PriceMin,
		PriceMax: input.PriceMax,
	})
	salesquery.Sort(rows, input.SortKey)

	summaries := make([]SaleSummary, 0, len(rows))
	for i := range rows {
		summaries = append(summaries, summarize(&rows[i]))
	}

	return &SaleList{
		Sales: summaries,
		Page: types.PageInfo{
			Page:          page.Page,
			Size:          page.Size,
			TotalPages:    pagination.TotalPages(total, page.Size),
			TotalElements: total,
		},
	}, nil
}

func (s *service) Detail(ctx context.Context, sellerID, saleID uuid.UUID) (*SaleDetail, error) {
	if sellerID == uuid.Nil || saleID == uuid.Nil {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "seller id and sale id required")
	}

	sale, err := s.repo.FindByID(ctx, sellerID, saleID)
	if err != nil {
		if stdErrors.Is(err, gorm.ErrRecordNotFound) {
			return nil, pkgerrors.New(pkgerrors.CodeNotFound, "sale not found")
		}
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "load sale")
	}
	return NewDetail(sale), nil
}

func (s *service) CreateTVSale(ctx context.Context, input CreateTVSaleInput) (*SaleDetail, error) {
	start := time.Now()
	detailOut, err := s.createTVSale(ctx, input)
	s.metrics.Observe("create_tv_sale", start, err)
	return detailOut, err
}

func (s *service) createTVSale(ctx context.Context, input CreateTVSaleInput) (*SaleDetail, error) {
	if input.SellerID == uuid.Nil {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "seller id required")
	}
	if input.TVSerialNumber == "" {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "tv serial number required")
	}
	if input.Price.LessThanOrEqual(decimal.Zero) {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "price must be greater than zero")
	}
	if input.Shipping.LessThan(decimal.Zero) {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "shipping cost cannot be negative")
	}

	total := money.Sum(input.Price, input.Shipping)
	sale := &models.Sale{
		SellerID:        input.SellerID,
		OrderNumber:     input.OrderNumber,
		CustomerName:    input.CustomerName,
		Type:            enums.SaleTypeTV,
		Status:          enums.SaleStatusPending,
		PaymentStatus:   enums.PaymentStatusUnpaid,
		Subtotal:        input.Price,
		ShippingCost:    input.Shipping,
		Total:           total,
		TotalPaid:       decimal.Zero,
		RemainingAmount: total,
		TVSerialNumber:  &input.TVSerialNumber,
		OrderDate:       input.OrderDate,
	}
	if input.TVModel != "" {
		sale.TVModel = &input.TVModel
	}

	created, err := s.repo.Create(ctx, sale)
	if err != nil {
		if db.IsUniqueViolation(err, "idx_sales_seller_order_number") {
			return nil, pkgerrors.New(pkgerrors.CodeDuplicateSale, "a sale with this order number already exists")
		}
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "create tv sale")
	}
	created.Payments = []models.Payment{}

	ctx = s.logg.WithSaleID(ctx, created.ID.String())
	s.logg.Info(ctx, "tv sale recorded")
	return NewDetail(created), nil
}

func (s *service) Delete(ctx context.Context, sellerID, saleID uuid.UUID) error {
	start := time.Now()
	err := s.delete(ctx, sellerID, saleID)
	s.metrics.Observe("delete_sale", start, err)
	return err
}

func (s *service) delete(ctx context.Context, sellerID, saleID uuid.UUID) error {
	if sellerID == uuid.Nil || saleID == uuid.Nil {
		return pkgerrors.New(pkgerrors.CodeValidation, "seller id and sale id required")
	}

	return s.tx.WithTx(ctx, func(tx *gorm.DB) error {
		repo := s.repo.WithTx(tx)

		// Gate against fresh row state inside the transaction, holding the
		// row lock so a concurrent payment cannot move the sale into review
		// between the check and the delete.
		sale, err := repo.FindByIDForUpdate(ctx, sellerID, saleID)
		if err != nil {
			if stdErrors.Is(err, gorm.ErrRecordNotFound) {
				return pkgerrors.New(pkgerrors.CodeNotFound, "sale not found")
			}
			return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "load sale")
		}
		if err := CanDeleteSale(sale); err != nil {
			return err
		}
		if err := repo.Delete(ctx, sale.ID); err != nil {
			return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "delete sale")
		}

		s.logg.Info(s.logg.WithSaleID(ctx, sale.ID.String()), "sale deleted")
		return nil
	})
}

func (s *service) CommissionStats(ctx context.Context, sellerID uuid.UUID, defaultPct decimal.Decimal) (*commission.Stats, error) {
	if sellerID == uuid.Nil {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "seller id required")
	}
	rows, err := s.repo.ListAllBySeller(ctx, sellerID)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "load seller portfolio")
	}
	stats := commission.Aggregate(rows, defaultPct)
	return &stats, nil
}

func summarize(sale *models.Sale) SaleSummary {
	balance := ledger.ForSale(sale)
	summary := SaleSummary{
		ID:                 sale.ID,
		Reference:          sale.Reference(),
		OrderNumber:        sale.OrderNumber,
		CustomerName:       sale.CustomerName,
		Type:               sale.Type,
		Status:             sale.Status,
		PaymentStatus:      balance.Status,
		Total:              sale.Total,
		TotalPaid:          balance.TotalPaid,
		RemainingAmount:    balance.Remaining,
		TotalFormatted:     money.Format(sale.Total),
		RemainingFormatted: money.Format(balance.Remaining),
		CreatedAt:          sale.CreatedAt,
	}
	if date := salesquery.SaleDate(sale); !date.IsZero() {
		summary.SaleDate = &date
	}
	return summary
}

// NewDetail shapes a loaded sale into its full view.
func NewDetail(sale *models.Sale) *SaleDetail {
	payments := sale.Payments
	if payments == nil {
		payments = []models.Payment{}
	}
	return &SaleDetail{
		SaleSummary:      summarize(sale),
		Subtotal:         sale.Subtotal,
		ShippingCost:     sale.ShippingCost,
		CommissionPct:    sale.CommissionPercentage,
		CommissionAmount: sale.CommissionAmount,
		RejectionReason:  sale.RejectionReason,
		TVSerialNumber:   sale.TVSerialNumber,
		TVModel:          sale.TVModel,
		Payments:         payments,
		CanRegister:      CanRegisterPayment(sale) == nil,
		CanDelete:        CanDeleteSale(sale) == nil,
	}
}
