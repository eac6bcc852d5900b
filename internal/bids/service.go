package bids

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"

	"github.com/haythemsaa/boxibox-backend/internal/auctions"
	"github.com/haythemsaa/boxibox-backend/pkg/db/models"
	"github.com/haythemsaa/boxibox-backend/pkg/enums"
	pkgerrors "github.com/haythemsaa/boxibox-backend/pkg/errors"
	"github.com/haythemsaa/boxibox-backend/pkg/logger"
)

var bidIncrement = decimal.NewFromInt(1)

// PlaceParams describe one bid attempt.
type PlaceParams struct {
	AuctionID uuid.UUID
	BidderID  uuid.UUID
	Amount    decimal.Decimal
}

// Service arbitrates concurrent bids on an auction.
type Service interface {
	Place(ctx context.Context, params PlaceParams) (*models.AuctionBid, error)
	ListByAuction(ctx context.Context, auctionID uuid.UUID) ([]models.AuctionBid, error)
}

type txRunner interface {
	WithTx(ctx context.Context, fn func(tx *gorm.DB) error) error
}

type service struct {
	logg     *logger.Logger
	tx       txRunner
	auctions auctions.Repository
	repo     Repository
	now      func() time.Time
}

// NewService wires the bid arbitration service.
func NewService(logg *logger.Logger, tx txRunner, auctionRepo auctions.Repository, repo Repository, now func() time.Time) (Service, error) {
	if logg == nil {
		return nil, fmt.Errorf("logger required")
	}
	if tx == nil {
		return nil, fmt.Errorf("transaction runner required")
	}
	if auctionRepo == nil {
		return nil, fmt.Errorf("auction repository required")
	}
	if repo == nil {
		return nil, fmt.Errorf("bid repository required")
	}
	if now == nil {
		now = time.Now
	}
	return &service{
		logg:     logg,
		tx:       tx,
		auctions: auctionRepo,
		repo:     repo,
		now:      now,
	}, nil
}

// Place validates and records a bid. The auction row lock serializes
// concurrent attempts, so the minimum-bid check always runs against the
// freshest accepted bid: of two racing bids above the same baseline, the
// second sees the first and must beat it. A scheduled auction whose bidding
// window has opened is promoted to active by the first bid that reaches it.
func (s *service) Place(ctx context.Context, params PlaceParams) (*models.AuctionBid, error) {
	if params.BidderID == uuid.Nil {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "bidder id is required")
	}
	if !params.Amount.IsPositive() {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "bid amount must be positive")
	}

	var placed *models.AuctionBid
	err := s.tx.WithTx(ctx, func(tx *gorm.DB) error {
		auctionRepo := s.auctions.WithTx(tx)
		locked, err := auctionRepo.FindByIDForUpdate(ctx, params.AuctionID)
		if err != nil {
			return err
		}

		now := s.now()
		if locked.Status == enums.AuctionStatusScheduled && windowOpen(locked, now) {
			if err := auctionRepo.Update(ctx, locked.ID, map[string]any{"status": enums.AuctionStatusActive}); err != nil {
				return err
			}
			locked.Status = enums.AuctionStatusActive
		}
		if !locked.BiddingOpen(now) {
			return pkgerrors.New(pkgerrors.CodeAuctionNotActive,
				fmt.Sprintf("auction %s is not accepting bids", locked.AuctionNumber))
		}

		minimum := MinimumBid(locked)
		if params.Amount.LessThan(minimum) {
			return pkgerrors.New(pkgerrors.CodeBidTooLow, "bid below minimum").
				WithDetails(map[string]string{"minimum_bid": minimum.StringFixed(2)})
		}

		bid := &models.AuctionBid{
			AuctionID: locked.ID,
			BidderID:  params.BidderID,
			Amount:    params.Amount,
			PlacedAt:  now,
		}
		if locked.ReservePrice != nil && params.Amount.LessThan(*locked.ReservePrice) {
			// The bid stands, but the sale will not unless the reserve
			// is met by closing time.
			meta, err := json.Marshal(map[string]any{"reserve_not_met": true})
			if err != nil {
				return fmt.Errorf("marshaling bid metadata: %w", err)
			}
			bid.Metadata = meta
		}

		if err := s.repo.WithTx(tx).Create(ctx, bid); err != nil {
			return err
		}
		if err := auctionRepo.Update(ctx, locked.ID, map[string]any{"current_bid": params.Amount}); err != nil {
			return err
		}
		placed = bid
		return nil
	})
	if err != nil {
		return nil, err
	}

	s.logg.Info(s.logg.WithFields(ctx, map[string]any{
		"auction_id": params.AuctionID.String(),
		"amount":     params.Amount.StringFixed(2),
	}), "bid accepted")
	return placed, nil
}

func (s *service) ListByAuction(ctx context.Context, auctionID uuid.UUID) ([]models.AuctionBid, error) {
	return s.repo.ListByAuction(ctx, auctionID)
}

// MinimumBid computes the lowest acceptable bid: one increment above the
// current bid, or the starting bid when none has been placed.
func MinimumBid(auction *models.Auction) decimal.Decimal {
	if auction.CurrentBid.IsPositive() {
		return auction.CurrentBid.Add(bidIncrement)
	}
	return auction.StartingBid
}

func windowOpen(auction *models.Auction, now time.Time) bool {
	return auction.AuctionStartDate != nil && auction.AuctionEndDate != nil &&
		!now.Before(*auction.AuctionStartDate) && now.Before(*auction.AuctionEndDate)
}
