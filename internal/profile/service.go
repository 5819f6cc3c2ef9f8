package profile

import (
	"context"
	stdErrors "errors"
	"fmt"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"

	pkgerrors "github.com/sellerdesk/sellerdesk-backend/pkg/errors"
	"github.com/sellerdesk/sellerdesk-backend/pkg/logger"
	"github.com/sellerdesk/sellerdesk-backend/pkg/money"
)

// View is the public shape of a seller profile.
type View struct {
	ID                   uuid.UUID       `json:"id"`
	DisplayName          string          `json:"display_name"`
	CommissionPercentage decimal.Decimal `json:"commission_percentage"`
}

// Service reads seller profiles and resolves the commission percentage the
// calculator should fall back to.
type Service interface {
	Get(ctx context.Context, sellerID uuid.UUID) (*View, error)
	CommissionPercentage(ctx context.Context, sellerID uuid.UUID) decimal.Decimal
}

type service struct {
	repo       Repository
	defaultPct decimal.Decimal
	logg       *logger.Logger
}

// NewService builds a profile service. defaultPct is the platform-wide
// commission percentage applied when a seller has no profile row.
func NewService(repo Repository, defaultPct decimal.Decimal, logg *logger.Logger) (Service, error) {
	if repo == nil {
		return nil, fmt.Errorf("profile repository required")
	}
	if logg == nil {
		return nil, fmt.Errorf("logger required")
	}
	if !money.ValidPercentage(defaultPct) {
		return nil, fmt.Errorf("default commission percentage out of range")
	}
	return &service{repo: repo, defaultPct: defaultPct, logg: logg}, nil
}

func (s *service) Get(ctx context.Context, sellerID uuid.UUID) (*View, error) {
	if sellerID == uuid.Nil {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "seller id required")
	}
	row, err := s.repo.FindByID(ctx, sellerID)
	if err != nil {
		if stdErrors.Is(err, gorm.ErrRecordNotFound) {
			return nil, pkgerrors.New(pkgerrors.CodeNotFound, "seller profile not found")
		}
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "load seller profile")
	}
	return &View{
		ID:                   row.ID,
		DisplayName:          row.DisplayName,
		CommissionPercentage: row.CommissionPercentage,
	}, nil
}

// CommissionPercentage never fails: a missing or unreadable profile falls
// back to the platform default so commission aggregation stays available.
func (s *service) CommissionPercentage(ctx context.Context, sellerID uuid.UUID) decimal.Decimal {
	if sellerID == uuid.Nil {
		return s.defaultPct
	}
	row, err := s.repo.FindByID(ctx, sellerID)
	if err != nil {
		if !stdErrors.Is(err, gorm.ErrRecordNotFound) {
			s.logg.Error(ctx, "profile read failed, using default commission", err)
		}
		return s.defaultPct
	}
	if !money.ValidPercentage(row.CommissionPercentage) {
		s.logg.Warn(ctx, "profile commission percentage out of range, using default")
		return s.defaultPct
	}
	return row.CommissionPercentage
}
