package sweep

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
	"go.uber.org/multierr"

	"github.com/haythemsaa/boxibox-backend/internal/auctions"
	"github.com/haythemsaa/boxibox-backend/internal/debt"
	"github.com/haythemsaa/boxibox-backend/internal/notices"
	"github.com/haythemsaa/boxibox-backend/pkg/db/models"
	"github.com/haythemsaa/boxibox-backend/pkg/enums"
	"github.com/haythemsaa/boxibox-backend/pkg/logger"
	"github.com/haythemsaa/boxibox-backend/pkg/types"
)

// DelinquencyJobParams configures the scheduled delinquency evaluation.
type DelinquencyJobParams struct {
	Logger    *logger.Logger
	Settings  enabledSettingsLister
	Contracts auctions.ContractProvider
	Invoices  auctions.InvoiceProvider
	Auctions  delinquencyEngine
}

type enabledSettingsLister interface {
	ListEnabled(ctx context.Context) ([]models.AuctionSettings, error)
}

type delinquencyEngine interface {
	EnsureCase(ctx context.Context, contract types.Contract, snapshot debt.Snapshot, cfg models.AuctionSettings) (*models.Auction, error)
	ProcessNotices(ctx context.Context, auctionID uuid.UUID, contract types.Contract, cfg models.AuctionSettings) (notices.Gate, error)
}

// NewDelinquencyJob constructs the delinquency sweep job.
func NewDelinquencyJob(params DelinquencyJobParams) (Job, error) {
	if params.Logger == nil {
		return nil, fmt.Errorf("logger required")
	}
	if params.Settings == nil {
		return nil, fmt.Errorf("settings lister required")
	}
	if params.Contracts == nil {
		return nil, fmt.Errorf("contract provider required")
	}
	if params.Invoices == nil {
		return nil, fmt.Errorf("invoice provider required")
	}
	if params.Auctions == nil {
		return nil, fmt.Errorf("auction service required")
	}
	return &delinquencyJob{
		logg:      params.Logger,
		settings:  params.Settings,
		contracts: params.Contracts,
		invoices:  params.Invoices,
		auctions:  params.Auctions,
		now:       time.Now,
	}, nil
}

type delinquencyJob struct {
	logg      *logger.Logger
	settings  enabledSettingsLister
	contracts auctions.ContractProvider
	invoices  auctions.InvoiceProvider
	auctions  delinquencyEngine
	now       func() time.Time
}

func (j *delinquencyJob) Name() string { return "delinquency" }

// Run walks every enabled tenant's overdue contracts: compute the debt
// snapshot, ensure a lien case exists, and fire the next escalation gate.
// Tenants and contracts are isolated; one failure never blocks the rest.
func (j *delinquencyJob) Run(ctx context.Context) error {
	tenants, err := j.settings.ListEnabled(ctx)
	if err != nil {
		return fmt.Errorf("listing enabled tenants: %w", err)
	}

	var errs []error
	for _, cfg := range tenants {
		if err := j.sweepTenant(ctx, cfg); err != nil {
			errs = append(errs, fmt.Errorf("tenant %s: %w", cfg.TenantID, err))
		}
	}
	return multierr.Combine(errs...)
}

func (j *delinquencyJob) sweepTenant(ctx context.Context, cfg models.AuctionSettings) error {
	ctx = j.logg.WithTenantID(ctx, cfg.TenantID.String())

	contracts, err := j.contracts.ListOverdueContracts(ctx, cfg.TenantID)
	if err != nil {
		return fmt.Errorf("listing overdue contracts: %w", err)
	}

	var errs []error
	evaluated, gatesFired := 0, 0
	for _, contract := range contracts {
		fired, err := j.sweepContract(ctx, contract, cfg)
		if err != nil {
			errs = append(errs, fmt.Errorf("contract %s: %w", contract.ID, err))
			continue
		}
		evaluated++
		if fired {
			gatesFired++
		}
	}

	j.logg.Info(j.logg.WithFields(ctx, map[string]any{
		"contracts": evaluated,
		"gates":     gatesFired,
	}), "tenant delinquency sweep complete")
	return multierr.Combine(errs...)
}

func (j *delinquencyJob) sweepContract(ctx context.Context, contract types.Contract, cfg models.AuctionSettings) (bool, error) {
	invoices, err := j.invoices.ListOverdueInvoices(ctx, contract.ID)
	if err != nil {
		return false, fmt.Errorf("listing overdue invoices: %w", err)
	}

	snapshot := debt.Calculate(invoices, j.now())
	auction, err := j.auctions.EnsureCase(ctx, contract, snapshot, cfg)
	if err != nil {
		return false, err
	}
	if auction == nil || auction.Status != enums.AuctionStatusPending {
		return false, nil
	}

	gate, err := j.auctions.ProcessNotices(ctx, auction.ID, contract, cfg)
	if err != nil {
		return false, err
	}
	return gate != notices.GateNone, nil
}
