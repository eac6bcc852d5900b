package bids

import (
	"context"
	"errors"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/haythemsaa/boxibox-backend/pkg/db/models"
)

// Repository manages persistence for accepted bids. Bid rows are immutable.
type Repository interface {
	WithTx(tx *gorm.DB) Repository
	Create(ctx context.Context, bid *models.AuctionBid) error
	HighestForAuction(ctx context.Context, auctionID uuid.UUID) (*models.AuctionBid, error)
	ListByAuction(ctx context.Context, auctionID uuid.UUID) ([]models.AuctionBid, error)
	CountForAuction(ctx context.Context, auctionID uuid.UUID) (int64, error)
}

type repository struct {
	db *gorm.DB
}

// NewRepository returns a bid repository bound to the provided database.
func NewRepository(db *gorm.DB) Repository {
	return &repository{db: db}
}

func (r *repository) WithTx(tx *gorm.DB) Repository {
	if tx == nil {
		return r
	}
	return &repository{db: tx}
}

func (r *repository) Create(ctx context.Context, bid *models.AuctionBid) error {
	return r.db.WithContext(ctx).Create(bid).Error
}

// HighestForAuction returns the winning candidate: highest amount, earliest
// placement on ties. Returns (nil, nil) when the auction drew no bids.
func (r *repository) HighestForAuction(ctx context.Context, auctionID uuid.UUID) (*models.AuctionBid, error) {
	var row models.AuctionBid
	err := r.db.WithContext(ctx).
		Where("auction_id = ?", auctionID).
		Order("amount DESC, placed_at ASC").
		First(&row).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &row, nil
}

func (r *repository) ListByAuction(ctx context.Context, auctionID uuid.UUID) ([]models.AuctionBid, error) {
	var rows []models.AuctionBid
	if err := r.db.WithContext(ctx).
		Where("auction_id = ?", auctionID).
		Order("placed_at ASC").
		Find(&rows).Error; err != nil {
		return nil, err
	}
	return rows, nil
}

func (r *repository) CountForAuction(ctx context.Context, auctionID uuid.UUID) (int64, error) {
	var count int64
	err := r.db.WithContext(ctx).
		Model(&models.AuctionBid{}).
		Where("auction_id = ?", auctionID).
		Count(&count).Error
	return count, err
}
