package settings

import (
	"context"
	"fmt"

	"github.com/go-playground/validator/v10"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/haythemsaa/boxibox-backend/pkg/db/models"
	pkgerrors "github.com/haythemsaa/boxibox-backend/pkg/errors"
)

// Service validates and serves tenant auction settings.
type Service interface {
	GetForTenant(ctx context.Context, tenantID uuid.UUID, siteID *uuid.UUID) (*models.AuctionSettings, error)
	ListEnabled(ctx context.Context) ([]models.AuctionSettings, error)
	Save(ctx context.Context, settings *models.AuctionSettings) error
	Validate(settings *models.AuctionSettings) error
}

type service struct {
	repo     Repository
	validate *validator.Validate
}

// NewService wires a settings service with the provided repository.
func NewService(repo Repository) (Service, error) {
	if repo == nil {
		return nil, fmt.Errorf("settings repository required")
	}
	return &service{
		repo:     repo,
		validate: validator.New(),
	}, nil
}

func (s *service) GetForTenant(ctx context.Context, tenantID uuid.UUID, siteID *uuid.UUID) (*models.AuctionSettings, error) {
	return s.repo.GetForTenant(ctx, tenantID, siteID)
}

func (s *service) ListEnabled(ctx context.Context) ([]models.AuctionSettings, error) {
	return s.repo.ListEnabled(ctx)
}

func (s *service) Save(ctx context.Context, settings *models.AuctionSettings) error {
	if err := s.Validate(settings); err != nil {
		return err
	}
	return s.repo.Save(ctx, settings)
}

// Validate checks structural constraints plus the escalation ordering the
// notice scheduler depends on: each day offset must be strictly later than the
// previous one.
func (s *service) Validate(settings *models.AuctionSettings) error {
	if settings == nil {
		return pkgerrors.New(pkgerrors.CodeValidation, "settings are required")
	}
	if settings.TenantID == uuid.Nil {
		return pkgerrors.New(pkgerrors.CodeValidation, "tenant id is required")
	}
	if err := s.validate.Struct(settings); err != nil {
		return pkgerrors.Wrap(pkgerrors.CodeValidation, err, "invalid auction settings")
	}
	if settings.DaysBeforeSecondNotice <= settings.DaysBeforeFirstNotice {
		return pkgerrors.New(pkgerrors.CodeValidation, "second notice offset must be after first notice offset")
	}
	if settings.DaysBeforeFinalNotice <= settings.DaysBeforeSecondNotice {
		return pkgerrors.New(pkgerrors.CodeValidation, "final notice offset must be after second notice offset")
	}
	if settings.DaysBeforeAuction <= settings.DaysBeforeFinalNotice {
		return pkgerrors.New(pkgerrors.CodeValidation, "auction offset must be after final notice offset")
	}
	if settings.StartingBidPercentage.IsNegative() || settings.StartingBidPercentage.GreaterThan(decimal.NewFromInt(100)) {
		return pkgerrors.New(pkgerrors.CodeValidation, "starting bid percentage must be between 0 and 100")
	}
	if settings.MinimumDebtAmount.IsNegative() {
		return pkgerrors.New(pkgerrors.CodeValidation, "minimum debt amount cannot be negative")
	}
	return nil
}

// Defaults returns the tenant-level settings used before an operator tunes
// them, mirroring the platform's legal defaults for France.
func Defaults(tenantID uuid.UUID) *models.AuctionSettings {
	return &models.AuctionSettings{
		TenantID:               tenantID,
		IsEnabled:              true,
		DaysBeforeFirstNotice:  30,
		DaysBeforeSecondNotice: 45,
		DaysBeforeFinalNotice:  60,
		DaysBeforeAuction:      75,
		MinimumDebtAmount:      decimal.NewFromInt(100),
		AuctionDurationDays:    7,
		StartingBidPercentage:  decimal.NewFromInt(10),
		LegalJurisdiction:      "FR",
		PlatformFeePercentage:  decimal.NewFromInt(10),
		AdminFee:               decimal.NewFromInt(50),
	}
}
