package reports

import (
	"context"
	"fmt"
	"io"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/sellerdesk/sellerdesk-backend/internal/sales"
	"github.com/sellerdesk/sellerdesk-backend/pkg/db"
	"github.com/sellerdesk/sellerdesk-backend/pkg/db/models"
	"github.com/sellerdesk/sellerdesk-backend/pkg/enums"
	pkgerrors "github.com/sellerdesk/sellerdesk-backend/pkg/errors"
	"github.com/sellerdesk/sellerdesk-backend/pkg/logger"
	"github.com/sellerdesk/sellerdesk-backend/pkg/metrics"
	"github.com/sellerdesk/sellerdesk-backend/pkg/money"
	"github.com/sellerdesk/sellerdesk-backend/pkg/reportparser"
)

// Parser extracts structured sale data from an uploaded PDF report.
type Parser interface {
	Parse(ctx context.Context, filename string, file io.Reader) (*reportparser.ParsedReport, error)
}

// UploadInput carries an uploaded sale report.
type UploadInput struct {
	SellerID    uuid.UUID
	Filename    string
	ContentType string
	File        io.Reader
}

// Service turns uploaded sale reports into pending sales.
type Service interface {
	Upload(ctx context.Context, input UploadInput) (*sales.SaleDetail, error)
}

type service struct {
	parser    Parser
	salesRepo sales.Repository
	logg      *logger.Logger
	metrics   *metrics.MutationMetrics
}

// NewService builds a report upload service.
func NewService(parser Parser, salesRepo sales.Repository, logg *logger.Logger, m *metrics.MutationMetrics) (Service, error) {
	if parser == nil {
		return nil, fmt.Errorf("report parser required")
	}
	if salesRepo == nil {
		return nil, fmt.Errorf("sales repository required")
	}
	if logg == nil {
		return nil, fmt.Errorf("logger required")
	}
	if m == nil {
		return nil, fmt.Errorf("mutation metrics required")
	}
	return &service{parser: parser, salesRepo: salesRepo, logg: logg, metrics: m}, nil
}

func (s *service) Upload(ctx context.Context, input UploadInput) (*sales.SaleDetail, error) {
	start := time.Now()
	detail, err := s.upload(ctx, input)
	s.metrics.Observe("upload_report", start, err)
	return detail, err
}

func (s *service) upload(ctx context.Context, input UploadInput) (*sales.SaleDetail, error) {
	if input.SellerID == uuid.Nil {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "seller id required")
	}
	if input.File == nil {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "report file required")
	}
	if input.ContentType != "application/pdf" {
		return nil, pkgerrors.New(pkgerrors.CodeInvalidFile, "sale reports must be PDF documents").
			WithDetails(map[string]any{"content_type": input.ContentType})
	}

	parsed, err := s.parser.Parse(ctx, input.Filename, input.File)
	if err != nil {
		return nil, err
	}

	exists, err := s.salesRepo.ExistsByOrderNumber(ctx, input.SellerID, parsed.OrderNumber)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "check order number")
	}
	if exists {
		return nil, pkgerrors.New(pkgerrors.CodeDuplicateSale, "a sale with this order number already exists").
			WithDetails(map[string]any{"order_number": parsed.OrderNumber})
	}
	if parsed.Total.LessThanOrEqual(decimal.Zero) {
		return nil, pkgerrors.New(pkgerrors.CodeInvalidFile, "report total must be greater than zero")
	}

	sale := saleFromReport(input.SellerID, parsed)
	created, err := s.salesRepo.Create(ctx, sale)
	if err != nil {
		// The unique index backs up the pre-check against concurrent uploads.
		if db.IsUniqueViolation(err, "idx_sales_seller_order_number") {
			return nil, pkgerrors.New(pkgerrors.CodeDuplicateSale, "a sale with this order number already exists").
				WithDetails(map[string]any{"order_number": parsed.OrderNumber})
		}
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "create sale")
	}
	created.Payments = []models.Payment{}

	ctx = s.logg.WithSaleID(s.logg.WithSellerID(ctx, input.SellerID.String()), created.ID.String())
	s.logg.Info(ctx, "sale created from report")
	return sales.NewDetail(created), nil
}

func saleFromReport(sellerID uuid.UUID, parsed *reportparser.ParsedReport) *models.Sale {
	sale := &models.Sale{
		SellerID:        sellerID,
		Type:            enums.SaleTypeStandard,
		Status:          enums.SaleStatusPending,
		PaymentStatus:   enums.PaymentStatusUnpaid,
		Subtotal:        parsed.Subtotal,
		ShippingCost:    parsed.ShippingCost,
		Total:           parsed.Total,
		TotalPaid:       decimal.Zero,
		RemainingAmount: parsed.Total,
		OrderDate:       parsed.OrderDate,
	}
	if parsed.OrderNumber != "" {
		orderNumber := parsed.OrderNumber
		sale.OrderNumber = &orderNumber
	}
	if parsed.CustomerName != "" {
		customer := parsed.CustomerName
		sale.CustomerName = &customer
	}
	if parsed.Commission != nil && money.ValidPercentage(*parsed.Commission) {
		pct := *parsed.Commission
		sale.CommissionPercentage = &pct
	}
	return sale
}
