package auctions

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"go.uber.org/multierr"
	"gorm.io/gorm"

	"github.com/haythemsaa/boxibox-backend/internal/debt"
	"github.com/haythemsaa/boxibox-backend/internal/marketplace"
	"github.com/haythemsaa/boxibox-backend/internal/notices"
	"github.com/haythemsaa/boxibox-backend/internal/settings"
	"github.com/haythemsaa/boxibox-backend/internal/settlement"
	"github.com/haythemsaa/boxibox-backend/pkg/db"
	"github.com/haythemsaa/boxibox-backend/pkg/db/models"
	"github.com/haythemsaa/boxibox-backend/pkg/enums"
	pkgerrors "github.com/haythemsaa/boxibox-backend/pkg/errors"
	"github.com/haythemsaa/boxibox-backend/pkg/logger"
	"github.com/haythemsaa/boxibox-backend/pkg/types"
)

const (
	// coolingOffDays is the legally mandated gap between scheduling a sale
	// and opening it to bids.
	coolingOffDays = 7

	// reminderWindow bounds how far ahead the closing reminder looks.
	reminderWindow = 24 * time.Hour

	createAttempts = 3
)

// SettingsProvider resolves the effective auction settings for a tenant.
type SettingsProvider interface {
	GetForTenant(ctx context.Context, tenantID uuid.UUID, siteID *uuid.UUID) (*models.AuctionSettings, error)
}

// Service drives a lien case through its lifecycle: case creation, notice
// escalation, scheduling, activation, closing, redemption, and cancellation.
type Service interface {
	EnsureCase(ctx context.Context, contract types.Contract, snapshot debt.Snapshot, cfg models.AuctionSettings) (*models.Auction, error)
	ProcessNotices(ctx context.Context, auctionID uuid.UUID, contract types.Contract, cfg models.AuctionSettings) (notices.Gate, error)
	Begin(ctx context.Context, auctionID uuid.UUID) (*models.Auction, error)
	End(ctx context.Context, auctionID uuid.UUID) (*models.Auction, error)
	Redeem(ctx context.Context, auctionID uuid.UUID) (*models.Auction, error)
	Cancel(ctx context.Context, auctionID uuid.UUID, reason string) (*models.Auction, error)
	BeginDue(ctx context.Context, now time.Time) (int, error)
	EndExpired(ctx context.Context, now time.Time) (int, error)
	RemindEndingSoon(ctx context.Context, now time.Time) (int, error)
	Get(ctx context.Context, auctionID uuid.UUID) (*models.Auction, error)
	Stats(ctx context.Context, tenantID uuid.UUID) (*Stats, error)
}

// ServiceParams configure the auction service.
type ServiceParams struct {
	Logger      *logger.Logger
	DB          txRunner
	Repo        Repository
	NoticeRepo  notices.Repository
	Notices     notices.Dispatcher
	Bids        BidStoreFactory
	Settlement  settlement.Processor
	Contracts   ContractProvider
	Settings    SettingsProvider
	Marketplace *marketplace.Selector
	Now         func() time.Time
}

type service struct {
	logg        *logger.Logger
	tx          txRunner
	repo        Repository
	noticeRepo  notices.Repository
	notices     notices.Dispatcher
	bids        BidStoreFactory
	settlement  settlement.Processor
	contracts   ContractProvider
	settings    SettingsProvider
	marketplace *marketplace.Selector
	now         func() time.Time
}

// NewService wires the auction lifecycle service.
func NewService(params ServiceParams) (Service, error) {
	if params.Logger == nil {
		return nil, fmt.Errorf("logger required")
	}
	if params.DB == nil {
		return nil, fmt.Errorf("db client required")
	}
	if params.Repo == nil {
		return nil, fmt.Errorf("auction repository required")
	}
	if params.NoticeRepo == nil {
		return nil, fmt.Errorf("notice repository required")
	}
	if params.Notices == nil {
		return nil, fmt.Errorf("notice dispatcher required")
	}
	if params.Bids == nil {
		return nil, fmt.Errorf("bid store factory required")
	}
	if params.Settlement == nil {
		return nil, fmt.Errorf("settlement processor required")
	}
	if params.Contracts == nil {
		return nil, fmt.Errorf("contract provider required")
	}
	if params.Settings == nil {
		return nil, fmt.Errorf("settings provider required")
	}
	now := params.Now
	if now == nil {
		now = time.Now
	}
	return &service{
		logg:        params.Logger,
		tx:          params.DB,
		repo:        params.Repo,
		noticeRepo:  params.NoticeRepo,
		notices:     params.Notices,
		bids:        params.Bids,
		settlement:  params.Settlement,
		contracts:   params.Contracts,
		settings:    params.Settings,
		marketplace: params.Marketplace,
		now:         now,
	}, nil
}

// EnsureCase opens a lien case for an overdue contract, or refreshes the debt
// figures and starting bid of an existing pending one. Contracts below the
// tenant's minimum debt threshold yield (nil, nil), including pending cases
// whose refreshed debt has dropped under it, so the sweep stops escalating
// them. At most one open case exists per contract; the partial unique index
// backs this up under concurrency.
func (s *service) EnsureCase(ctx context.Context, contract types.Contract, snapshot debt.Snapshot, cfg models.AuctionSettings) (*models.Auction, error) {
	ctx = s.logg.WithContractID(ctx, contract.ID.String())

	existing, err := s.repo.FindOpenByContract(ctx, contract.ID)
	if err != nil {
		return nil, err
	}
	if existing != nil {
		if existing.Status == enums.AuctionStatusPending {
			if err := s.repo.Update(ctx, existing.ID, map[string]any{
				"total_debt":   snapshot.Total,
				"storage_fees": snapshot.StorageFees,
				"late_fees":    snapshot.LateFees,
				"legal_fees":   snapshot.LegalFees,
				"days_overdue": snapshot.DaysOverdue,
				"starting_bid": cfg.StartingBidFor(snapshot.Total),
			}); err != nil {
				return nil, err
			}
			existing.TotalDebt = snapshot.Total
			existing.StorageFees = snapshot.StorageFees
			existing.LateFees = snapshot.LateFees
			existing.LegalFees = snapshot.LegalFees
			existing.DaysOverdue = snapshot.DaysOverdue
			existing.StartingBid = cfg.StartingBidFor(snapshot.Total)
			if snapshot.IsZero() || snapshot.Total.LessThan(cfg.MinimumDebtAmount) {
				return nil, nil
			}
		}
		return existing, nil
	}

	if snapshot.IsZero() || snapshot.Total.LessThan(cfg.MinimumDebtAmount) {
		return nil, nil
	}

	customerID := contract.CustomerID
	for attempt := 0; attempt < createAttempts; attempt++ {
		number, err := s.nextAuctionNumber(ctx)
		if err != nil {
			return nil, err
		}
		auction := &models.Auction{
			TenantID:          contract.TenantID,
			SiteID:            contract.SiteID,
			BoxID:             contract.BoxID,
			ContractID:        contract.ID,
			CustomerID:        &customerID,
			AuctionNumber:     number,
			TotalDebt:         snapshot.Total,
			StorageFees:       snapshot.StorageFees,
			LateFees:          snapshot.LateFees,
			LegalFees:         snapshot.LegalFees,
			DaysOverdue:       snapshot.DaysOverdue,
			StartingBid:       cfg.StartingBidFor(snapshot.Total),
			CurrentBid:        decimal.Zero,
			Status:            enums.AuctionStatusPending,
			LegalJurisdiction: cfg.LegalJurisdiction,
		}
		err = s.repo.Create(ctx, auction)
		if err == nil {
			s.logg.Info(s.logg.WithAuctionID(ctx, auction.ID.String()), "lien case opened")
			return auction, nil
		}
		if !db.IsUniqueViolation(err) {
			return nil, err
		}
		// Either a concurrent worker opened the case first, or the
		// auction number collided. Re-check before retrying.
		winner, findErr := s.repo.FindOpenByContract(ctx, contract.ID)
		if findErr != nil {
			return nil, findErr
		}
		if winner != nil {
			return winner, nil
		}
	}
	return nil, pkgerrors.New(pkgerrors.CodeConflict, "could not allocate a unique auction number")
}

func (s *service) nextAuctionNumber(ctx context.Context) (string, error) {
	year := s.now().Year()
	count, err := s.repo.CountCreatedInYear(ctx, year)
	if err != nil {
		return "", err
	}
	return fmt.Sprintf("AUC%d%05d", year, count+1), nil
}

// ProcessNotices fires at most one escalation gate per call. The gate is
// re-evaluated under the row lock so concurrent sweeps cannot double-send, and
// the corresponding notice date advances only when the dispatcher reports
// progression.
func (s *service) ProcessNotices(ctx context.Context, auctionID uuid.UUID, contract types.Contract, cfg models.AuctionSettings) (notices.Gate, error) {
	auction, err := s.repo.FindByID(ctx, auctionID)
	if err != nil {
		return notices.GateNone, err
	}
	if auction.Status != enums.AuctionStatusPending {
		return notices.GateNone, nil
	}

	gate, ok := notices.NextGate(auction, cfg)
	if !ok {
		return notices.GateNone, nil
	}
	ctx = s.logg.WithAuctionID(ctx, auction.ID.String())

	if gate == notices.GateScheduleAuction {
		if _, err := s.schedule(ctx, auction.ID, contract, cfg); err != nil {
			return notices.GateNone, err
		}
		return gate, nil
	}

	performed := notices.GateNone
	err = s.tx.WithTx(ctx, func(tx *gorm.DB) error {
		repo := s.repo.WithTx(tx)
		locked, err := repo.FindByIDForUpdate(ctx, auction.ID)
		if err != nil {
			return err
		}
		if locked.Status != enums.AuctionStatusPending {
			return nil
		}
		current, ok := notices.NextGate(locked, cfg)
		if !ok || current != gate {
			return nil
		}

		_, progressed, err := s.notices.Dispatch(ctx, tx, locked, contract, cfg, noticeTypeForGate(gate))
		if err != nil {
			return err
		}
		if !progressed {
			return nil
		}
		if err := repo.Update(ctx, locked.ID, map[string]any{dateColumnForGate(gate): s.now()}); err != nil {
			return err
		}
		performed = gate
		return nil
	})
	if err != nil {
		return notices.GateNone, err
	}
	if performed != notices.GateNone {
		s.logg.Info(s.logg.WithField(ctx, "gate", performed.String()), "escalation gate fired")
	}
	return performed, nil
}

func noticeTypeForGate(gate notices.Gate) enums.NoticeType {
	switch gate {
	case notices.GateFirstNotice:
		return enums.NoticeTypeFirstWarning
	case notices.GateSecondNotice:
		return enums.NoticeTypeSecondWarning
	default:
		return enums.NoticeTypeFinalNotice
	}
}

func dateColumnForGate(gate notices.Gate) string {
	switch gate {
	case notices.GateFirstNotice:
		return "first_notice_date"
	case notices.GateSecondNotice:
		return "second_notice_date"
	default:
		return "final_notice_date"
	}
}

// schedule transitions a pending case to scheduled, fixing the bidding window
// after the cooling-off period and announcing the sale to the occupant. The
// marketplace listing happens after commit and never fails the transition.
func (s *service) schedule(ctx context.Context, auctionID uuid.UUID, contract types.Contract, cfg models.AuctionSettings) (*models.Auction, error) {
	var scheduled *models.Auction
	err := s.tx.WithTx(ctx, func(tx *gorm.DB) error {
		repo := s.repo.WithTx(tx)
		locked, err := repo.FindByIDForUpdate(ctx, auctionID)
		if err != nil {
			return err
		}
		if locked.Status != enums.AuctionStatusPending || locked.AuctionStartDate != nil {
			return nil
		}

		start := s.now().AddDate(0, 0, coolingOffDays)
		end := start.AddDate(0, 0, cfg.AuctionDurationDays)
		updates := map[string]any{
			"status":             enums.AuctionStatusScheduled,
			"auction_start_date": start,
			"auction_end_date":   end,
		}
		if cfg.RequireReservePrice && locked.ReservePrice == nil {
			reserve := locked.TotalDebt
			updates["reserve_price"] = reserve
			locked.ReservePrice = &reserve
		}
		if err := repo.Update(ctx, locked.ID, updates); err != nil {
			return err
		}
		locked.Status = enums.AuctionStatusScheduled
		locked.AuctionStartDate = &start
		locked.AuctionEndDate = &end

		if _, _, err := s.notices.Dispatch(ctx, tx, locked, contract, cfg, enums.NoticeTypeAuctionScheduled); err != nil {
			return err
		}
		scheduled = locked
		return nil
	})
	if err != nil {
		return nil, err
	}
	if scheduled == nil {
		return s.repo.FindByID(ctx, auctionID)
	}

	s.logg.Info(ctx, "auction scheduled")
	s.autoList(ctx, scheduled, contract, cfg)
	return scheduled, nil
}

func (s *service) autoList(ctx context.Context, auction *models.Auction, contract types.Contract, cfg models.AuctionSettings) {
	if !cfg.AutoListOnPlatform || auction.ExternalListingID != nil {
		return
	}
	if auction.AuctionStartDate == nil || auction.AuctionEndDate == nil {
		return
	}

	lister := s.marketplace.For(cfg.PreferredPlatform)
	ref, err := lister.CreateListing(ctx, marketplace.Listing{
		AuctionNumber: auction.AuctionNumber,
		Title:         fmt.Sprintf("Storage unit %s - %s", contract.BoxNumber, contract.SiteName),
		Description:   fmt.Sprintf("Contents of delinquent storage unit %s, sold under lien %s.", contract.BoxNumber, auction.AuctionNumber),
		StartingBid:   auction.StartingBid,
		ReservePrice:  auction.ReservePrice,
		StartAt:       *auction.AuctionStartDate,
		EndAt:         *auction.AuctionEndDate,
		SiteName:      contract.SiteName,
		BoxNumber:     contract.BoxNumber,
	})
	if err != nil {
		s.logg.Warn(s.logg.WithField(ctx, "platform", cfg.PreferredPlatform), "marketplace listing failed")
		return
	}
	if ref == nil {
		return
	}
	if err := s.repo.Update(ctx, auction.ID, map[string]any{
		"external_platform":    ref.Platform,
		"external_listing_id":  ref.ListingID,
		"external_listing_url": ref.ListingURL,
	}); err != nil {
		s.logg.Error(ctx, "failed to record marketplace listing", err)
	}
}

// Begin opens a scheduled auction to bids once its start date is reached.
func (s *service) Begin(ctx context.Context, auctionID uuid.UUID) (*models.Auction, error) {
	var opened *models.Auction
	err := s.tx.WithTx(ctx, func(tx *gorm.DB) error {
		repo := s.repo.WithTx(tx)
		locked, err := repo.FindByIDForUpdate(ctx, auctionID)
		if err != nil {
			return err
		}
		if locked.Status != enums.AuctionStatusScheduled {
			return pkgerrors.New(pkgerrors.CodeStateConflict, "only a scheduled auction can begin")
		}
		if locked.AuctionStartDate == nil || s.now().Before(*locked.AuctionStartDate) {
			return pkgerrors.New(pkgerrors.CodeStateConflict, "auction start date not reached")
		}
		if err := repo.Update(ctx, locked.ID, map[string]any{"status": enums.AuctionStatusActive}); err != nil {
			return err
		}
		locked.Status = enums.AuctionStatusActive
		opened = locked
		return nil
	})
	if err != nil {
		return nil, err
	}
	s.logg.Info(s.logg.WithAuctionID(ctx, opened.ID.String()), "auction opened for bidding")
	return opened, nil
}

// End closes an active auction. With a qualifying highest bid the case settles
// as sold inside the same transaction; otherwise it closes unsold. A reserve
// price, when set, must be met for the sale to stand.
func (s *service) End(ctx context.Context, auctionID uuid.UUID) (*models.Auction, error) {
	auction, err := s.repo.FindByID(ctx, auctionID)
	if err != nil {
		return nil, err
	}
	contract, err := s.contracts.GetContract(ctx, auction.ContractID)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "loading contract")
	}
	cfg, err := s.resolveSettings(ctx, auction.TenantID, auction.SiteID)
	if err != nil {
		return nil, err
	}

	ctx = s.logg.WithAuctionID(ctx, auction.ID.String())
	var closed *models.Auction
	err = s.tx.WithTx(ctx, func(tx *gorm.DB) error {
		repo := s.repo.WithTx(tx)
		locked, err := repo.FindByIDForUpdate(ctx, auctionID)
		if err != nil {
			return err
		}
		if locked.Status != enums.AuctionStatusActive {
			return pkgerrors.New(pkgerrors.CodeInvalidEndState, "only an active auction can end")
		}

		highest, err := s.bids(tx).HighestForAuction(ctx, locked.ID)
		if err != nil {
			return err
		}
		now := s.now()
		sold := highest != nil &&
			(locked.ReservePrice == nil || highest.Amount.GreaterThanOrEqual(*locked.ReservePrice))

		if sold {
			if err := repo.Update(ctx, locked.ID, map[string]any{
				"status":            enums.AuctionStatusSold,
				"winning_bid":       highest.Amount,
				"winning_bidder_id": highest.BidderID,
				"sold_at":           now,
			}); err != nil {
				return err
			}
			locked.Status = enums.AuctionStatusSold
			locked.WinningBid = &highest.Amount
			locked.WinningBidderID = &highest.BidderID
			locked.SoldAt = &now

			if err := s.settlement.Process(ctx, tx, locked, cfg); err != nil {
				return err
			}
		} else {
			if err := repo.Update(ctx, locked.ID, map[string]any{"status": enums.AuctionStatusUnsold}); err != nil {
				return err
			}
			locked.Status = enums.AuctionStatusUnsold
		}

		if err := s.notices.DispatchResult(ctx, tx, locked, contract, sold); err != nil {
			return err
		}
		closed = locked
		return nil
	})
	if err != nil {
		return nil, err
	}
	s.logg.Info(s.logg.WithField(ctx, "status", closed.Status.String()), "auction closed")
	return closed, nil
}

// Redeem closes a case because the occupant paid in full. Redemption is only
// possible before bidding opens; pending notices are cancelled in the same
// transaction.
func (s *service) Redeem(ctx context.Context, auctionID uuid.UUID) (*models.Auction, error) {
	var redeemed *models.Auction
	err := s.tx.WithTx(ctx, func(tx *gorm.DB) error {
		repo := s.repo.WithTx(tx)
		locked, err := repo.FindByIDForUpdate(ctx, auctionID)
		if err != nil {
			return err
		}
		switch locked.Status {
		case enums.AuctionStatusPending, enums.AuctionStatusScheduled:
		default:
			return pkgerrors.New(pkgerrors.CodeInvalidRedemption,
				fmt.Sprintf("auction in status %s can no longer be redeemed", locked.Status))
		}
		if err := repo.Update(ctx, locked.ID, map[string]any{"status": enums.AuctionStatusRedeemed}); err != nil {
			return err
		}
		if _, err := s.noticeRepo.WithTx(tx).CancelPending(ctx, locked.ID); err != nil {
			return err
		}
		locked.Status = enums.AuctionStatusRedeemed
		redeemed = locked
		return nil
	})
	if err != nil {
		return nil, err
	}
	s.logg.Info(s.logg.WithAuctionID(ctx, redeemed.ID.String()), "auction redeemed")
	s.cancelListing(ctx, redeemed)
	return redeemed, nil
}

// Cancel aborts a case from any non-terminal state, recording the operator's
// reason.
func (s *service) Cancel(ctx context.Context, auctionID uuid.UUID, reason string) (*models.Auction, error) {
	if reason == "" {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "cancel reason is required")
	}
	var cancelled *models.Auction
	err := s.tx.WithTx(ctx, func(tx *gorm.DB) error {
		repo := s.repo.WithTx(tx)
		locked, err := repo.FindByIDForUpdate(ctx, auctionID)
		if err != nil {
			return err
		}
		if locked.Status.IsTerminal() {
			return pkgerrors.New(pkgerrors.CodeStateConflict,
				fmt.Sprintf("auction in status %s cannot be cancelled", locked.Status))
		}
		if err := repo.Update(ctx, locked.ID, map[string]any{
			"status":        enums.AuctionStatusCancelled,
			"cancel_reason": reason,
		}); err != nil {
			return err
		}
		if _, err := s.noticeRepo.WithTx(tx).CancelPending(ctx, locked.ID); err != nil {
			return err
		}
		locked.Status = enums.AuctionStatusCancelled
		locked.CancelReason = &reason
		cancelled = locked
		return nil
	})
	if err != nil {
		return nil, err
	}
	s.logg.Info(s.logg.WithAuctionID(ctx, cancelled.ID.String()), "auction cancelled")
	s.cancelListing(ctx, cancelled)
	return cancelled, nil
}

func (s *service) cancelListing(ctx context.Context, auction *models.Auction) {
	if auction.ExternalListingID == nil {
		return
	}
	lister := s.marketplace.For(auction.ExternalPlatform)
	if err := lister.CancelListing(ctx, *auction.ExternalListingID); err != nil {
		s.logg.Warn(s.logg.WithAuctionID(ctx, auction.ID.String()), "failed to withdraw marketplace listing")
	}
}

// BeginDue activates every scheduled auction whose start date has passed.
func (s *service) BeginDue(ctx context.Context, now time.Time) (int, error) {
	rows, err := s.repo.ListScheduledDue(ctx, now)
	if err != nil {
		return 0, err
	}
	var errs error
	opened := 0
	for i := range rows {
		if _, err := s.Begin(ctx, rows[i].ID); err != nil {
			errs = multierr.Append(errs, fmt.Errorf("beginning auction %s: %w", rows[i].AuctionNumber, err))
			continue
		}
		opened++
	}
	return opened, errs
}

// EndExpired closes every active auction whose end date has passed.
func (s *service) EndExpired(ctx context.Context, now time.Time) (int, error) {
	rows, err := s.repo.ListActiveExpired(ctx, now)
	if err != nil {
		return 0, err
	}
	var errs error
	closed := 0
	for i := range rows {
		if _, err := s.End(ctx, rows[i].ID); err != nil {
			errs = multierr.Append(errs, fmt.Errorf("ending auction %s: %w", rows[i].AuctionNumber, err))
			continue
		}
		closed++
	}
	return closed, errs
}

// RemindEndingSoon sends the occupant one last reminder for auctions closing
// within the next day. The reminder timestamp advances only when the email
// actually went out, so failed sends retry on the next sweep.
func (s *service) RemindEndingSoon(ctx context.Context, now time.Time) (int, error) {
	rows, err := s.repo.ListEndingSoon(ctx, now, now.Add(reminderWindow))
	if err != nil {
		return 0, err
	}
	var errs error
	sent := 0
	for i := range rows {
		row := rows[i]
		contract, err := s.contracts.GetContract(ctx, row.ContractID)
		if err != nil {
			errs = multierr.Append(errs, fmt.Errorf("loading contract for auction %s: %w", row.AuctionNumber, err))
			continue
		}
		cfg, err := s.resolveSettings(ctx, row.TenantID, row.SiteID)
		if err != nil {
			errs = multierr.Append(errs, err)
			continue
		}

		reminded := false
		err = s.tx.WithTx(ctx, func(tx *gorm.DB) error {
			repo := s.repo.WithTx(tx)
			locked, err := repo.FindByIDForUpdate(ctx, row.ID)
			if err != nil {
				return err
			}
			if locked.Status != enums.AuctionStatusActive || locked.ReminderSentAt != nil {
				return nil
			}
			_, progressed, err := s.notices.Dispatch(ctx, tx, locked, contract, cfg, enums.NoticeTypeAuctionReminder)
			if err != nil {
				return err
			}
			if !progressed {
				return nil
			}
			if err := repo.Update(ctx, locked.ID, map[string]any{"reminder_sent_at": s.now()}); err != nil {
				return err
			}
			reminded = true
			return nil
		})
		if err != nil {
			errs = multierr.Append(errs, fmt.Errorf("reminding auction %s: %w", row.AuctionNumber, err))
			continue
		}
		if reminded {
			sent++
		}
	}
	return sent, errs
}

func (s *service) Get(ctx context.Context, auctionID uuid.UUID) (*models.Auction, error) {
	return s.repo.FindByID(ctx, auctionID)
}

func (s *service) Stats(ctx context.Context, tenantID uuid.UUID) (*Stats, error) {
	return s.repo.TenantStats(ctx, tenantID)
}

func (s *service) resolveSettings(ctx context.Context, tenantID, siteID uuid.UUID) (models.AuctionSettings, error) {
	cfg, err := s.settings.GetForTenant(ctx, tenantID, &siteID)
	if err != nil {
		return models.AuctionSettings{}, err
	}
	if cfg == nil {
		return *settings.Defaults(tenantID), nil
	}
	return *cfg, nil
}
