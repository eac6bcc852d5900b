package notices

import (
	"context"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/haythemsaa/boxibox-backend/pkg/db/models"
	"github.com/haythemsaa/boxibox-backend/pkg/enums"
)

// Repository manages persistence for auction notices. Rows are append-only:
// status transitions are the only permitted update.
type Repository interface {
	WithTx(tx *gorm.DB) Repository
	Create(ctx context.Context, notice *models.AuctionNotice) error
	MarkSent(ctx context.Context, noticeID uuid.UUID, sentAt time.Time) error
	MarkFailed(ctx context.Context, noticeID uuid.UUID) error
	CancelPending(ctx context.Context, auctionID uuid.UUID) (int64, error)
	ListByAuction(ctx context.Context, auctionID uuid.UUID) ([]models.AuctionNotice, error)
}

type repository struct {
	db *gorm.DB
}

// NewRepository returns a notice repository bound to the provided database.
func NewRepository(db *gorm.DB) Repository {
	return &repository{db: db}
}

func (r *repository) WithTx(tx *gorm.DB) Repository {
	if tx == nil {
		return r
	}
	return &repository{db: tx}
}

func (r *repository) Create(ctx context.Context, notice *models.AuctionNotice) error {
	return r.db.WithContext(ctx).Create(notice).Error
}

func (r *repository) MarkSent(ctx context.Context, noticeID uuid.UUID, sentAt time.Time) error {
	return r.db.WithContext(ctx).
		Model(&models.AuctionNotice{}).
		Where("id = ?", noticeID).
		Updates(map[string]any{
			"status":  enums.NoticeStatusSent,
			"sent_at": sentAt,
		}).Error
}

func (r *repository) MarkFailed(ctx context.Context, noticeID uuid.UUID) error {
	return r.db.WithContext(ctx).
		Model(&models.AuctionNotice{}).
		Where("id = ?", noticeID).
		Update("status", enums.NoticeStatusFailed).Error
}

// CancelPending flips every pending notice of an auction to cancelled, keeping
// the rendered content for audit.
func (r *repository) CancelPending(ctx context.Context, auctionID uuid.UUID) (int64, error) {
	result := r.db.WithContext(ctx).
		Model(&models.AuctionNotice{}).
		Where("auction_id = ? AND status = ?", auctionID, enums.NoticeStatusPending).
		Update("status", enums.NoticeStatusCancelled)
	return result.RowsAffected, result.Error
}

func (r *repository) ListByAuction(ctx context.Context, auctionID uuid.UUID) ([]models.AuctionNotice, error) {
	var rows []models.AuctionNotice
	if err := r.db.WithContext(ctx).
		Where("auction_id = ?", auctionID).
		Order("created_at ASC").
		Find(&rows).Error; err != nil {
		return nil, err
	}
	return rows, nil
}
