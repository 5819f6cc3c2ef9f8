package payments

import (
	"context"
	"io"
	"strings"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"

	"github.com/sellerdesk/sellerdesk-backend/internal/sales"
	"github.com/sellerdesk/sellerdesk-backend/pkg/db/models"
	"github.com/sellerdesk/sellerdesk-backend/pkg/enums"
	pkgerrors "github.com/sellerdesk/sellerdesk-backend/pkg/errors"
	"github.com/sellerdesk/sellerdesk-backend/pkg/logger"
	"github.com/sellerdesk/sellerdesk-backend/pkg/metrics"
	"github.com/sellerdesk/sellerdesk-backend/pkg/pagination"
)

type stubPaymentsRepo struct {
	created   *models.Payment
	deletedID uuid.UUID
	payment   *models.Payment
}

func (s *stubPaymentsRepo) WithTx(tx *gorm.DB) Repository { return s }

func (s *stubPaymentsRepo) Create(ctx context.Context, payment *models.Payment) (*models.Payment, error) {
	if payment.ID == uuid.Nil {
		payment.ID = uuid.New()
	}
	s.created = payment
	return payment, nil
}

func (s *stubPaymentsRepo) FindByID(ctx context.Context, saleID, paymentID uuid.UUID) (*models.Payment, error) {
	if s.payment == nil || s.payment.ID != paymentID || s.payment.SaleID != saleID {
		return nil, gorm.ErrRecordNotFound
	}
	return s.payment, nil
}

func (s *stubPaymentsRepo) ListBySale(ctx context.Context, saleID uuid.UUID) ([]models.Payment, error) {
	if s.payment == nil {
		return []models.Payment{}, nil
	}
	return []models.Payment{*s.payment}, nil
}

func (s *stubPaymentsRepo) Delete(ctx context.Context, paymentID uuid.UUID) error {
	s.deletedID = paymentID
	return nil
}

type stubSalesRepo struct {
	sale        *models.Sale
	lockedSale  *models.Sale
	lockedFinds int
	lastUpdate  *sales.LedgerUpdate
}

func (s *stubSalesRepo) WithTx(tx *gorm.DB) sales.Repository { return s }

func (s *stubSalesRepo) Create(ctx context.Context, sale *models.Sale) (*models.Sale, error) {
	return sale, nil
}

func (s *stubSalesRepo) FindByID(ctx context.Context, sellerID, saleID uuid.UUID) (*models.Sale, error) {
	if s.sale == nil || s.sale.ID != saleID || s.sale.SellerID != sellerID {
		return nil, gorm.ErrRecordNotFound
	}
	return s.sale, nil
}

// FindByIDForUpdate serves lockedSale when set so tests can model a payment
// committed between the unlocked pre-check and the transactional load.
func (s *stubSalesRepo) FindByIDForUpdate(ctx context.Context, sellerID, saleID uuid.UUID) (*models.Sale, error) {
	s.lockedFinds++
	if s.lockedSale != nil {
		if s.lockedSale.ID != saleID || s.lockedSale.SellerID != sellerID {
			return nil, gorm.ErrRecordNotFound
		}
		return s.lockedSale, nil
	}
	return s.FindByID(ctx, sellerID, saleID)
}

func (s *stubSalesRepo) ListBySeller(ctx context.Context, sellerID uuid.UUID, page pagination.Params) ([]models.Sale, int64, error) {
	return nil, 0, nil
}

func (s *stubSalesRepo) ListAllBySeller(ctx context.Context, sellerID uuid.UUID) ([]models.Sale, error) {
	return nil, nil
}

func (s *stubSalesRepo) ExistsByOrderNumber(ctx context.Context, sellerID uuid.UUID, orderNumber string) (bool, error) {
	return false, nil
}

func (s *stubSalesRepo) UpdateLedger(ctx context.Context, saleID uuid.UUID, update sales.LedgerUpdate) error {
	s.lastUpdate = &update
	return nil
}

func (s *stubSalesRepo) Delete(ctx context.Context, saleID uuid.UUID) error { return nil }

type stubTx struct{}

func (stubTx) WithTx(ctx context.Context, fn func(tx *gorm.DB) error) error {
	return fn(nil)
}

type stubReceiptStore struct {
	uploads     int
	lastObject  string
	lastType    string
	returnedURL string
}

func (s *stubReceiptStore) Upload(ctx context.Context, objectName, contentType string, body io.Reader) (string, error) {
	s.uploads++
	s.lastObject = objectName
	s.lastType = contentType
	return s.returnedURL, nil
}

func newTestService(t *testing.T, salesRepo *stubSalesRepo, repo *stubPaymentsRepo, receipts ReceiptStore) Service {
	t.Helper()
	logg := logger.New(logger.Options{ServiceName: "test", Output: io.Discard})
	svc, err := NewService(repo, salesRepo, stubTx{}, receipts, logg, metrics.NewMutationMetrics(prometheus.NewRegistry()))
	if err != nil {
		t.Fatalf("NewService returned error: %v", err)
	}
	return svc
}

func pendingSale(sellerID uuid.UUID, total string, payments ...string) *models.Sale {
	sale := &models.Sale{
		ID:       uuid.New(),
		SellerID: sellerID,
		Status:   enums.SaleStatusPending,
		Total:    decimal.RequireFromString(total),
		Payments: []models.Payment{},
	}
	paid := decimal.Zero
	for _, amount := range payments {
		p := models.Payment{
			ID:          uuid.New(),
			SaleID:      sale.ID,
			Amount:      decimal.RequireFromString(amount),
			Method:      enums.PaymentMethodCash,
			PaymentDate: time.Now().UTC(),
		}
		sale.Payments = append(sale.Payments, p)
		paid = paid.Add(p.Amount)
	}
	sale.TotalPaid = paid
	sale.RemainingAmount = sale.Total.Sub(paid)
	return sale
}

func TestRegisterPartialPayment(t *testing.T) {
	sellerID := uuid.New()
	sale := pendingSale(sellerID, "100")
	salesRepo := &stubSalesRepo{sale: sale}
	repo := &stubPaymentsRepo{}
	svc := newTestService(t, salesRepo, repo, nil)

	payment, err := svc.Register(context.Background(), RegisterInput{
		SellerID: sellerID,
		SaleID:   sale.ID,
		Amount:   decimal.RequireFromString("40"),
		Method:   enums.PaymentMethodBankTransfer,
	})
	if err != nil {
		t.Fatalf("Register returned error: %v", err)
	}
	if payment.PaymentDate.IsZero() {
		t.Fatal("payment date must be assigned server-side")
	}
	if repo.created == nil {
		t.Fatal("expected payment persisted")
	}

	update := salesRepo.lastUpdate
	if update == nil {
		t.Fatal("expected ledger update")
	}
	if !update.TotalPaid.Equal(decimal.RequireFromString("40")) {
		t.Fatalf("expected paid 40, got %s", update.TotalPaid)
	}
	if !update.RemainingAmount.Equal(decimal.RequireFromString("60")) {
		t.Fatalf("expected remaining 60, got %s", update.RemainingAmount)
	}
	if update.PaymentStatus != enums.PaymentStatusPartiallyPaid {
		t.Fatalf("expected PARTIALLY_PAID, got %s", update.PaymentStatus)
	}
	if update.Status != nil {
		t.Fatal("partial payment must not transition the sale status")
	}
}

func TestRegisterFullPaymentMovesSaleToReview(t *testing.T) {
	sellerID := uuid.New()
	sale := pendingSale(sellerID, "100", "40")
	salesRepo := &stubSalesRepo{sale: sale}
	svc := newTestService(t, salesRepo, &stubPaymentsRepo{}, nil)

	_, err := svc.Register(context.Background(), RegisterInput{
		SellerID: sellerID,
		SaleID:   sale.ID,
		Amount:   decimal.RequireFromString("60"),
		Method:   enums.PaymentMethodCash,
	})
	if err != nil {
		t.Fatalf("Register returned error: %v", err)
	}

	update := salesRepo.lastUpdate
	if update == nil {
		t.Fatal("expected ledger update")
	}
	if update.PaymentStatus != enums.PaymentStatusPaid {
		t.Fatalf("expected PAID, got %s", update.PaymentStatus)
	}
	if update.Status == nil || *update.Status != enums.SaleStatusUnderReview {
		t.Fatal("full payment must move the sale to UNDER_REVIEW")
	}
	if !update.RemainingAmount.IsZero() {
		t.Fatalf("expected remaining 0, got %s", update.RemainingAmount)
	}
}

func TestRegisterRejectsOverpayment(t *testing.T) {
	sellerID := uuid.New()
	sale := pendingSale(sellerID, "100", "40")
	repo := &stubPaymentsRepo{}
	svc := newTestService(t, &stubSalesRepo{sale: sale}, repo, nil)

	_, err := svc.Register(context.Background(), RegisterInput{
		SellerID: sellerID,
		SaleID:   sale.ID,
		Amount:   decimal.RequireFromString("60.01"),
		Method:   enums.PaymentMethodCash,
	})
	appErr := pkgerrors.As(err)
	if appErr == nil || appErr.Code() != pkgerrors.CodeInvalidAmount {
		t.Fatalf("expected INVALID_AMOUNT, got %v", err)
	}
	if repo.created != nil {
		t.Fatal("overpayment must never be clamped or stored")
	}
}

func TestRegisterValidatesAgainstRowLockedState(t *testing.T) {
	sellerID := uuid.New()
	stale := pendingSale(sellerID, "100")

	// A concurrent registration commits 70 between the unlocked pre-check
	// and the transactional load. The amount must be validated against the
	// state seen under the row lock, never the pre-check snapshot.
	fresh := pendingSale(sellerID, "100", "70")
	fresh.ID = stale.ID
	for i := range fresh.Payments {
		fresh.Payments[i].SaleID = stale.ID
	}

	repo := &stubPaymentsRepo{}
	salesRepo := &stubSalesRepo{sale: stale, lockedSale: fresh}
	svc := newTestService(t, salesRepo, repo, nil)

	_, err := svc.Register(context.Background(), RegisterInput{
		SellerID: sellerID,
		SaleID:   stale.ID,
		Amount:   decimal.RequireFromString("50"),
		Method:   enums.PaymentMethodCash,
	})
	appErr := pkgerrors.As(err)
	if appErr == nil || appErr.Code() != pkgerrors.CodeInvalidAmount {
		t.Fatalf("expected INVALID_AMOUNT against locked state, got %v", err)
	}
	if salesRepo.lockedFinds != 1 {
		t.Fatalf("expected one locked load inside the transaction, got %d", salesRepo.lockedFinds)
	}
	if repo.created != nil {
		t.Fatal("payment exceeding the locked remaining balance must not be stored")
	}
}

func TestRegisterBlockedStatuses(t *testing.T) {
	sellerID := uuid.New()

	for _, status := range []enums.SaleStatus{enums.SaleStatusUnderReview, enums.SaleStatusApproved} {
		sale := pendingSale(sellerID, "100")
		sale.Status = status
		svc := newTestService(t, &stubSalesRepo{sale: sale}, &stubPaymentsRepo{}, nil)

		_, err := svc.Register(context.Background(), RegisterInput{
			SellerID: sellerID,
			SaleID:   sale.ID,
			Amount:   decimal.RequireFromString("10"),
			Method:   enums.PaymentMethodCash,
		})
		appErr := pkgerrors.As(err)
		if appErr == nil || appErr.Code() != pkgerrors.CodeStateConflict {
			t.Fatalf("expected STATE_CONFLICT for %s, got %v", status, err)
		}
	}
}

func TestRegisterBlockedWhenPaid(t *testing.T) {
	sellerID := uuid.New()
	sale := pendingSale(sellerID, "100", "100")
	svc := newTestService(t, &stubSalesRepo{sale: sale}, &stubPaymentsRepo{}, nil)

	_, err := svc.Register(context.Background(), RegisterInput{
		SellerID: sellerID,
		SaleID:   sale.ID,
		Amount:   decimal.RequireFromString("10"),
		Method:   enums.PaymentMethodCash,
	})
	appErr := pkgerrors.As(err)
	if appErr == nil || appErr.Code() != pkgerrors.CodeStateConflict {
		t.Fatalf("expected STATE_CONFLICT for paid sale, got %v", err)
	}
}

func TestRegisterStoresReceipt(t *testing.T) {
	sellerID := uuid.New()
	sale := pendingSale(sellerID, "100")
	repo := &stubPaymentsRepo{}
	store := &stubReceiptStore{returnedURL: "https://storage.example/receipts/x.pdf"}
	svc := newTestService(t, &stubSalesRepo{sale: sale}, repo, store)

	payment, err := svc.Register(context.Background(), RegisterInput{
		SellerID: sellerID,
		SaleID:   sale.ID,
		Amount:   decimal.RequireFromString("40"),
		Method:   enums.PaymentMethodBankTransfer,
		Receipt: &ReceiptUpload{
			Filename:    "receipt.pdf",
			ContentType: "application/pdf",
			Body:        strings.NewReader("%PDF-1.7"),
		},
	})
	if err != nil {
		t.Fatalf("Register returned error: %v", err)
	}
	if store.uploads != 1 {
		t.Fatalf("expected one upload, got %d", store.uploads)
	}
	if !strings.HasSuffix(store.lastObject, ".pdf") || !strings.Contains(store.lastObject, sale.ID.String()) {
		t.Fatalf("unexpected object name %s", store.lastObject)
	}
	if payment.ReceiptURL == nil || *payment.ReceiptURL != store.returnedURL {
		t.Fatal("expected receipt url stored on payment")
	}
}

func TestRegisterRejectsUnsupportedReceiptType(t *testing.T) {
	sellerID := uuid.New()
	sale := pendingSale(sellerID, "100")
	store := &stubReceiptStore{}
	svc := newTestService(t, &stubSalesRepo{sale: sale}, &stubPaymentsRepo{}, store)

	_, err := svc.Register(context.Background(), RegisterInput{
		SellerID: sellerID,
		SaleID:   sale.ID,
		Amount:   decimal.RequireFromString("40"),
		Method:   enums.PaymentMethodCash,
		Receipt: &ReceiptUpload{
			Filename:    "receipt.gif",
			ContentType: "image/gif",
			Body:        strings.NewReader("GIF89a"),
		},
	})
	appErr := pkgerrors.As(err)
	if appErr == nil || appErr.Code() != pkgerrors.CodeInvalidFile {
		t.Fatalf("expected INVALID_FILE, got %v", err)
	}
	if store.uploads != 0 {
		t.Fatal("rejected receipt must not be uploaded")
	}
}

func TestDeletePaymentRecomputesLedger(t *testing.T) {
	sellerID := uuid.New()
	sale := pendingSale(sellerID, "100", "40", "20")
	salesRepo := &stubSalesRepo{sale: sale}
	repo := &stubPaymentsRepo{payment: &sale.Payments[0]}
	svc := newTestService(t, salesRepo, repo, nil)

	err := svc.Delete(context.Background(), sellerID, sale.ID, sale.Payments[0].ID)
	if err != nil {
		t.Fatalf("Delete returned error: %v", err)
	}
	if repo.deletedID != sale.Payments[0].ID {
		t.Fatal("expected payment deleted")
	}

	update := salesRepo.lastUpdate
	if update == nil {
		t.Fatal("expected ledger update")
	}
	if !update.TotalPaid.Equal(decimal.RequireFromString("20")) {
		t.Fatalf("expected paid 20 after delete, got %s", update.TotalPaid)
	}
	if !update.RemainingAmount.Equal(decimal.RequireFromString("80")) {
		t.Fatalf("expected remaining 80, got %s", update.RemainingAmount)
	}
	if update.PaymentStatus != enums.PaymentStatusPartiallyPaid {
		t.Fatalf("expected PARTIALLY_PAID, got %s", update.PaymentStatus)
	}
	if salesRepo.lockedFinds != 1 {
		t.Fatalf("expected the gate to load the sale under the row lock, got %d locked loads", salesRepo.lockedFinds)
	}
}

func TestDeletePaymentBlockedInReview(t *testing.T) {
	sellerID := uuid.New()
	sale := pendingSale(sellerID, "100", "100")
	sale.Status = enums.SaleStatusUnderReview
	repo := &stubPaymentsRepo{payment: &sale.Payments[0]}
	svc := newTestService(t, &stubSalesRepo{sale: sale}, repo, nil)

	err := svc.Delete(context.Background(), sellerID, sale.ID, sale.Payments[0].ID)
	appErr := pkgerrors.As(err)
	if appErr == nil || appErr.Code() != pkgerrors.CodeStateConflict {
		t.Fatalf("expected STATE_CONFLICT, got %v", err)
	}
	if repo.deletedID != uuid.Nil {
		t.Fatal("gate must run before the delete")
	}
}

func TestDeletePaymentNotFound(t *testing.T) {
	sellerID := uuid.New()
	sale := pendingSale(sellerID, "100", "40")
	svc := newTestService(t, &stubSalesRepo{sale: sale}, &stubPaymentsRepo{}, nil)

	err := svc.Delete(context.Background(), sellerID, sale.ID, uuid.New())
	appErr := pkgerrors.As(err)
	if appErr == nil || appErr.Code() != pkgerrors.CodeNotFound {
		t.Fatalf("expected NOT_FOUND, got %v", err)
	}
}
