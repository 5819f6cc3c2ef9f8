package profile

import (
	"context"
	stdErrors "errors"
	"io"
	"testing"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"

	"github.com/sellerdesk/sellerdesk-backend/pkg/db/models"
	pkgerrors "github.com/sellerdesk/sellerdesk-backend/pkg/errors"
	"github.com/sellerdesk/sellerdesk-backend/pkg/logger"
)

type stubProfileRepo struct {
	profile *models.SellerProfile
	findErr error
}

func (s *stubProfileRepo) WithTx(tx *gorm.DB) Repository { return s }

func (s *stubProfileRepo) FindByID(ctx context.Context, sellerID uuid.UUID) (*models.SellerProfile, error) {
	if s.findErr != nil {
		return nil, s.findErr
	}
	if s.profile == nil || s.profile.ID != sellerID {
		return nil, gorm.ErrRecordNotFound
	}
	return s.profile, nil
}

func (s *stubProfileRepo) Upsert(ctx context.Context, profile *models.SellerProfile) error {
	s.profile = profile
	return nil
}

func newTestService(t *testing.T, repo Repository) Service {
	t.Helper()
	logg := logger.New(logger.Options{ServiceName: "test", Output: io.Discard})
	svc, err := NewService(repo, decimal.RequireFromString("10"), logg)
	if err != nil {
		t.Fatalf("NewService returned error: %v", err)
	}
	return svc
}

func TestGetProfile(t *testing.T) {
	sellerID := uuid.New()
	repo := &stubProfileRepo{profile: &models.SellerProfile{
		ID:                   sellerID,
		DisplayName:          "Acme Wholesale",
		CommissionPercentage: decimal.RequireFromString("7.5"),
	}}
	svc := newTestService(t, repo)

	view, err := svc.Get(context.Background(), sellerID)
	if err != nil {
		t.Fatalf("Get returned error: %v", err)
	}
	if view.DisplayName != "Acme Wholesale" {
		t.Fatalf("unexpected display name %s", view.DisplayName)
	}
	if !view.CommissionPercentage.Equal(decimal.RequireFromString("7.5")) {
		t.Fatalf("unexpected percentage %s", view.CommissionPercentage)
	}
}

func TestGetProfileNotFound(t *testing.T) {
	svc := newTestService(t, &stubProfileRepo{})

	_, err := svc.Get(context.Background(), uuid.New())
	appErr := pkgerrors.As(err)
	if appErr == nil || appErr.Code() != pkgerrors.CodeNotFound {
		t.Fatalf("expected NOT_FOUND, got %v", err)
	}
}

func TestCommissionPercentageFromProfile(t *testing.T) {
	sellerID := uuid.New()
	repo := &stubProfileRepo{profile: &models.SellerProfile{
		ID:                   sellerID,
		CommissionPercentage: decimal.RequireFromString("12"),
	}}
	svc := newTestService(t, repo)

	got := svc.CommissionPercentage(context.Background(), sellerID)
	if !got.Equal(decimal.RequireFromString("12")) {
		t.Fatalf("expected 12, got %s", got)
	}
}

func TestCommissionPercentageFallsBackOnMissingProfile(t *testing.T) {
	svc := newTestService(t, &stubProfileRepo{})

	got := svc.CommissionPercentage(context.Background(), uuid.New())
	if !got.Equal(decimal.RequireFromString("10")) {
		t.Fatalf("expected default 10, got %s", got)
	}
}

func TestCommissionPercentageFallsBackOnReadFailure(t *testing.T) {
	repo := &stubProfileRepo{findErr: stdErrors.New("connection reset")}
	svc := newTestService(t, repo)

	// Read failures must not break commission aggregation.
	got := svc.CommissionPercentage(context.Background(), uuid.New())
	if !got.Equal(decimal.RequireFromString("10")) {
		t.Fatalf("expected default 10, got %s", got)
	}
}

func TestCommissionPercentageRejectsOutOfRangeProfile(t *testing.T) {
	sellerID := uuid.New()
	repo := &stubProfileRepo{profile: &models.SellerProfile{
		ID:                   sellerID,
		CommissionPercentage: decimal.RequireFromString("250"),
	}}
	svc := newTestService(t, repo)

	got := svc.CommissionPercentage(context.Background(), sellerID)
	if !got.Equal(decimal.RequireFromString("10")) {
		t.Fatalf("expected default 10 for out-of-range profile, got %s", got)
	}
}
