package payments

import (
	"context"
	stdErrors "errors"
	"fmt"
	"io"
	"path"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"

	"github.com/sellerdesk/sellerdesk-backend/internal/ledger"
	"github.com/sellerdesk/sellerdesk-backend/internal/sales"
	"github.com/sellerdesk/sellerdesk-backend/pkg/db/models"
	"github.com/sellerdesk/sellerdesk-backend/pkg/enums"
	pkgerrors "github.com/sellerdesk/sellerdesk-backend/pkg/errors"
	"github.com/sellerdesk/sellerdesk-backend/pkg/logger"
	"github.com/sellerdesk/sellerdesk-backend/pkg/metrics"
)

type txRunner interface {
	WithTx(ctx context.Context, fn func(tx *gorm.DB) error) error
}

// ReceiptStore uploads receipt files and returns their canonical URL.
type ReceiptStore interface {
	Upload(ctx context.Context, objectName, contentType string, body io.Reader) (string, error)
}

// receiptContentTypes are the only MIME types accepted for receipts.
var receiptContentTypes = map[string]string{
	"application/pdf": ".pdf",
	"image/jpeg":      ".jpg",
	"image/png":       ".png",
}

// ReceiptUpload carries an optional receipt file attached to a payment.
type ReceiptUpload struct {
	Filename    string
	ContentType string
	Body        io.Reader
}

// RegisterInput captures a payment registration request.
type RegisterInput struct {
	SellerID uuid.UUID
	SaleID   uuid.UUID
	Amount   decimal.Decimal
	Method   enums.PaymentMethod
	Notes    *string
	Receipt  *ReceiptUpload
}

// Service registers and removes payments against a sale's ledger.
type Service interface {
	Register(ctx context.Context, input RegisterInput) (*models.Payment, error)
	Delete(ctx context.Context, sellerID, saleID, paymentID uuid.UUID) error
}

type service struct {
	repo      Repository
	salesRepo sales.Repository
	tx        txRunner
	receipts  ReceiptStore
	logg      *logger.Logger
	metrics   *metrics.MutationMetrics
}

// NewService builds a payments service. The receipt store may be nil when
// receipt storage is not configured; registrations with a receipt then fail
// with a dependency error instead of silently dropping the file.
func NewService(repo Repository, salesRepo sales.Repository, tx txRunner, receipts ReceiptStore, logg *logger.Logger, m *metrics.MutationMetrics) (Service, error) {
	if repo == nil {
		return nil, fmt.Errorf("payments repository required")
	}
	if salesRepo == nil {
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
	return &service{
		repo:      repo,
		salesRepo: salesRepo,
		tx:        tx,
		receipts:  receipts,
		logg:      logg,
		metrics:   m,
	}, nil
}

func (s *service) Register(ctx context.Context, input RegisterInput) (*models.Payment, error) {
	start := time.Now()
	payment, err := s.register(ctx, input)
	s.metrics.Observe("register_payment", start, err)
	return payment, err
}

func (s *service) register(ctx context.Context, input RegisterInput) (*models.Payment, error) {
	if input.SellerID == uuid.Nil || input.SaleID == uuid.Nil {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "seller id and sale id required")
	}
	if !input.Method.IsValid() {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "unknown payment method")
	}

	ctx = s.logg.WithSaleID(ctx, input.SaleID.String())

	// Cheap pre-check before paying the cost of a receipt upload. The
	// authoritative gate runs again inside the transaction.
	sale, err := s.loadSale(ctx, s.salesRepo, input.SellerID, input.SaleID)
	if err != nil {
		return nil, err
	}
	if err := sales.CanRegisterPayment(sale); err != nil {
		return nil, err
	}
	if err := ledger.ValidateAmount(ledger.ForSale(sale).Remaining, input.Amount); err != nil {
		return nil, err
	}

	receiptURL, err := s.uploadReceipt(ctx, input.SaleID, input.Receipt)
	if err != nil {
		return nil, err
	}

	var payment *models.Payment
	err = s.tx.WithTx(ctx, func(tx *gorm.DB) error {
		salesRepo := s.salesRepo.WithTx(tx)
		repo := s.repo.WithTx(tx)

		// Re-validate against fresh row state: a payment registered since
		// the pre-check shrinks the remaining balance and must be honored.
		// The row lock keeps a concurrent Register from validating against
		// the same balance and overpaying the sale.
		sale, err := s.loadSaleLocked(ctx, salesRepo, input.SellerID, input.SaleID)
		if err != nil {
			return err
		}
		if err := sales.CanRegisterPayment(sale); err != nil {
			return err
		}
		balance := ledger.ForSale(sale)
		if err := ledger.ValidateAmount(balance.Remaining, input.Amount); err != nil {
			return err
		}

		payment = &models.Payment{
			SaleID:      sale.ID,
			Amount:      input.Amount,
			Method:      input.Method,
			Notes:       input.Notes,
			PaymentDate: time.Now().UTC(),
		}
		if receiptURL != "" {
			payment.ReceiptURL = &receiptURL
		}
		if _, err := repo.Create(ctx, payment); err != nil {
			return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "create payment")
		}

		next := ledger.Compute(sale.Total, append(sale.Payments, *payment))
		update := sales.LedgerUpdate{
			TotalPaid:       next.TotalPaid,
			RemainingAmount: next.Remaining,
			PaymentStatus:   next.Status,
		}
		if next.IsPaid() {
			// Full payment hands the sale over to review.
			status := enums.SaleStatusUnderReview
			update.Status = &status
		}
		if err := salesRepo.UpdateLedger(ctx, sale.ID, update); err != nil {
			return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "update sale ledger")
		}

		if next.IsPaid() {
			s.logg.Info(ctx, "sale fully paid, moved to review")
		} else {
			s.logg.Info(ctx, "payment registered")
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	return payment, nil
}

func (s *service) Delete(ctx context.Context, sellerID, saleID, paymentID uuid.UUID) error {
	start := time.Now()
	err := s.delete(ctx, sellerID, saleID, paymentID)
	s.metrics.Observe("delete_payment", start, err)
	return err
}

func (s *service) delete(ctx context.Context, sellerID, saleID, paymentID uuid.UUID) error {
	if sellerID == uuid.Nil || saleID == uuid.Nil || paymentID == uuid.Nil {
		return pkgerrors.New(pkgerrors.CodeValidation, "seller id, sale id and payment id required")
	}

	ctx = s.logg.WithSaleID(ctx, saleID.String())

	return s.tx.WithTx(ctx, func(tx *gorm.DB) error {
		salesRepo := s.salesRepo.WithTx(tx)
		repo := s.repo.WithTx(tx)

		sale, err := s.loadSaleLocked(ctx, salesRepo, sellerID, saleID)
		if err != nil {
			return err
		}
		if err := sales.CanDeletePayment(sale); err != nil {
			return err
		}

		payment, err := repo.FindByID(ctx, sale.ID, paymentID)
		if err != nil {
			if stdErrors.Is(err, gorm.ErrRecordNotFound) {
				return pkgerrors.New(pkgerrors.CodeNotFound, "payment not found")
			}
			return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "load payment")
		}
		if err := repo.Delete(ctx, payment.ID); err != nil {
			return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "delete payment")
		}

		remaining := make([]models.Payment, 0, len(sale.Payments))
		for _, p := range sale.Payments {
			if p.ID != payment.ID {
				remaining = append(remaining, p)
			}
		}
		next := ledger.Compute(sale.Total, remaining)
		update := sales.LedgerUpdate{
			TotalPaid:       next.TotalPaid,
			RemainingAmount: next.Remaining,
			PaymentStatus:   next.Status,
		}
		if err := salesRepo.UpdateLedger(ctx, sale.ID, update); err != nil {
			return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "update sale ledger")
		}

		s.logg.Info(ctx, "payment deleted")
		return nil
	})
}

func (s *service) loadSale(ctx context.Context, repo sales.Repository, sellerID, saleID uuid.UUID) (*models.Sale, error) {
	return wrapSaleLoad(repo.FindByID(ctx, sellerID, saleID))
}

// loadSaleLocked takes the sale's row lock so concurrent mutations on the
// same sale run one at a time and each gate sees the latest committed
// ledger. Only meaningful inside a transaction.
func (s *service) loadSaleLocked(ctx context.Context, repo sales.Repository, sellerID, saleID uuid.UUID) (*models.Sale, error) {
	return wrapSaleLoad(repo.FindByIDForUpdate(ctx, sellerID, saleID))
}

func wrapSaleLoad(sale *models.Sale, err error) (*models.Sale, error) {
	if err != nil {
		if stdErrors.Is(err, gorm.ErrRecordNotFound) {
			return nil, pkgerrors.New(pkgerrors.CodeNotFound, "sale not found")
		}
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "load sale")
	}
	return sale, nil
}

func (s *service) uploadReceipt(ctx context.Context, saleID uuid.UUID, receipt *ReceiptUpload) (string, error) {
	if receipt == nil {
		return "", nil
	}
	ext, ok := receiptContentTypes[receipt.ContentType]
	if !ok {
		return "", pkgerrors.New(pkgerrors.CodeInvalidFile, "receipts must be PDF, JPEG or PNG").
			WithDetails(map[string]any{"content_type": receipt.ContentType})
	}
	if s.receipts == nil {
		return "", pkgerrors.New(pkgerrors.CodeDependency, "receipt storage not configured")
	}

	objectName := path.Join("receipts", saleID.String(), uuid.NewString()+ext)
	url, err := s.receipts.Upload(ctx, objectName, receipt.ContentType, receipt.Body)
	if err != nil {
		return "", pkgerrors.Wrap(pkgerrors.CodeDependency, err, "upload receipt")
	}
	return url, nil
}
