package settlement

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"

	"github.com/haythemsaa/boxibox-backend/internal/notices"
	"github.com/haythemsaa/boxibox-backend/pkg/db/models"
	"github.com/haythemsaa/boxibox-backend/pkg/enums"
	pkgerrors "github.com/haythemsaa/boxibox-backend/pkg/errors"
	"github.com/haythemsaa/boxibox-backend/pkg/logger"
)

// UnitReleaser returns the storage unit to rentable inventory within the
// caller's transaction.
type UnitReleaser interface {
	ReleaseBox(ctx context.Context, tx *gorm.DB, boxID uuid.UUID) error
}

// ContractCloser terminates the delinquent storage contract within the
// caller's transaction.
type ContractCloser interface {
	CloseContract(ctx context.Context, tx *gorm.DB, contractID uuid.UUID, reason string) error
}

// Processor finalizes a sold auction inside the caller's transaction: fee
// split, ledger entries, unit release, contract closure, and the winner's
// payment instructions. Any failure aborts the whole closing transaction.
type Processor interface {
	Process(ctx context.Context, tx *gorm.DB, auction *models.Auction, settings models.AuctionSettings) error
}

// ServiceParams configure the settlement processor.
type ServiceParams struct {
	Repo     Repository
	Releaser UnitReleaser
	Closer   ContractCloser
	Notices  notices.Dispatcher
	Logger   *logger.Logger
	Now      func() time.Time
}

type service struct {
	repo     Repository
	releaser UnitReleaser
	closer   ContractCloser
	notices  notices.Dispatcher
	logg     *logger.Logger
	now      func() time.Time
}

// NewService wires a settlement processor.
func NewService(params ServiceParams) (Processor, error) {
	if params.Repo == nil {
		return nil, fmt.Errorf("ledger repository required")
	}
	if params.Releaser == nil {
		return nil, fmt.Errorf("unit releaser required")
	}
	if params.Closer == nil {
		return nil, fmt.Errorf("contract closer required")
	}
	if params.Notices == nil {
		return nil, fmt.Errorf("notice dispatcher required")
	}
	if params.Logger == nil {
		return nil, fmt.Errorf("logger required")
	}
	now := params.Now
	if now == nil {
		now = time.Now
	}
	return &service{
		repo:     params.Repo,
		releaser: params.Releaser,
		closer:   params.Closer,
		notices:  params.Notices,
		logg:     params.Logger,
		now:      now,
	}, nil
}

func (s *service) Process(ctx context.Context, tx *gorm.DB, auction *models.Auction, settings models.AuctionSettings) error {
	if auction.WinningBid == nil || auction.WinningBidderID == nil {
		return pkgerrors.New(pkgerrors.CodeStateConflict, "cannot settle an auction without a winning bid")
	}

	gross := *auction.WinningBid
	platformFee := gross.Mul(settings.PlatformFeePercentage).Div(decimal.NewFromInt(100)).Round(2)
	adminFee := settings.AdminFee
	net := gross.Sub(platformFee).Sub(adminFee)
	if net.IsNegative() {
		net = decimal.Zero
	}

	appliedToDebt := decimal.Min(net, auction.TotalDebt)
	surplus := net.Sub(appliedToDebt)

	repo := s.repo.WithTx(tx)

	proceedsMeta, err := json.Marshal(map[string]any{
		"gross_amount":    gross.StringFixed(2),
		"applied_to_debt": appliedToDebt.StringFixed(2),
		"surplus":         surplus.StringFixed(2),
	})
	if err != nil {
		return fmt.Errorf("marshaling proceeds metadata: %w", err)
	}

	entries := []*models.AuctionLedgerEntry{
		{
			AuctionID:  auction.ID,
			ContractID: auction.ContractID,
			Type:       enums.LedgerEntryTypeSaleProceeds,
			Amount:     net,
			Metadata:   proceedsMeta,
		},
		{
			AuctionID:  auction.ID,
			ContractID: auction.ContractID,
			Type:       enums.LedgerEntryTypePlatformFee,
			Amount:     platformFee,
		},
		{
			AuctionID:  auction.ID,
			ContractID: auction.ContractID,
			Type:       enums.LedgerEntryTypeAdminFee,
			Amount:     adminFee,
		},
	}
	for _, entry := range entries {
		if err := repo.Create(ctx, entry); err != nil {
			return fmt.Errorf("recording %s ledger entry: %w", entry.Type, err)
		}
	}

	if err := s.releaser.ReleaseBox(ctx, tx, auction.BoxID); err != nil {
		return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "releasing storage unit")
	}
	if err := s.closer.CloseContract(ctx, tx, auction.ContractID, "auction_sold"); err != nil {
		return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "closing contract")
	}

	if err := s.notices.DispatchWinnerInstructions(ctx, tx, auction); err != nil {
		return fmt.Errorf("queueing winner instructions: %w", err)
	}

	s.logg.Info(s.logg.WithAuctionID(ctx, auction.ID.String()), "auction settled")
	return nil
}
