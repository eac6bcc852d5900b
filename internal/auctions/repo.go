package auctions

import (
	"context"
	"errors"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"github.com/haythemsaa/boxibox-backend/pkg/db/models"
	"github.com/haythemsaa/boxibox-backend/pkg/enums"
	pkgerrors "github.com/haythemsaa/boxibox-backend/pkg/errors"
)

// Repository manages persistence for lien cases.
type Repository interface {
	WithTx(tx *gorm.DB) Repository
	Create(ctx context.Context, auction *models.Auction) error
	Update(ctx context.Context, auctionID uuid.UUID, updates map[string]any) error
	FindByID(ctx context.Context, auctionID uuid.UUID) (*models.Auction, error)
	FindByIDForUpdate(ctx context.Context, auctionID uuid.UUID) (*models.Auction, error)
	FindOpenByContract(ctx context.Context, contractID uuid.UUID) (*models.Auction, error)
	CountCreatedInYear(ctx context.Context, year int) (int64, error)
	ListOpenByTenant(ctx context.Context, tenantID uuid.UUID) ([]models.Auction, error)
	ListScheduledDue(ctx context.Context, now time.Time) ([]models.Auction, error)
	ListActiveExpired(ctx context.Context, now time.Time) ([]models.Auction, error)
	ListEndingSoon(ctx context.Context, from, to time.Time) ([]models.Auction, error)
	TenantStats(ctx context.Context, tenantID uuid.UUID) (*Stats, error)
}

// Stats aggregates a tenant's lien activity for reporting.
type Stats struct {
	CountByStatus   map[enums.AuctionStatus]int64
	OpenDebt        decimal.Decimal
	RecoveredAmount decimal.Decimal
}

type repository struct {
	db *gorm.DB
}

// NewRepository returns an auction repository bound to the provided database.
func NewRepository(db *gorm.DB) Repository {
	return &repository{db: db}
}

func (r *repository) WithTx(tx *gorm.DB) Repository {
	if tx == nil {
		return r
	}
	return &repository{db: tx}
}

func (r *repository) Create(ctx context.Context, auction *models.Auction) error {
	return r.db.WithContext(ctx).Create(auction).Error
}

func (r *repository) Update(ctx context.Context, auctionID uuid.UUID, updates map[string]any) error {
	result := r.db.WithContext(ctx).
		Model(&models.Auction{}).
		Where("id = ?", auctionID).
		Updates(updates)
	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		return pkgerrors.New(pkgerrors.CodeNotFound, "auction not found")
	}
	return nil
}

func (r *repository) FindByID(ctx context.Context, auctionID uuid.UUID) (*models.Auction, error) {
	var row models.Auction
	err := r.db.WithContext(ctx).Where("id = ?", auctionID).First(&row).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, pkgerrors.New(pkgerrors.CodeNotFound, "auction not found")
	}
	if err != nil {
		return nil, err
	}
	return &row, nil
}

// FindByIDForUpdate loads the auction under a row lock. Callers must hold an
// open transaction; concurrent writers serialize on this row.
func (r *repository) FindByIDForUpdate(ctx context.Context, auctionID uuid.UUID) (*models.Auction, error) {
	var row models.Auction
	err := r.db.WithContext(ctx).
		Clauses(clause.Locking{Strength: "UPDATE"}).
		Where("id = ?", auctionID).
		First(&row).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, pkgerrors.New(pkgerrors.CodeNotFound, "auction not found")
	}
	if err != nil {
		return nil, err
	}
	return &row, nil
}

// FindOpenByContract returns the non-terminal case for a contract, or
// (nil, nil) when none exists.
func (r *repository) FindOpenByContract(ctx context.Context, contractID uuid.UUID) (*models.Auction, error) {
	var row models.Auction
	err := r.db.WithContext(ctx).
		Where("contract_id = ? AND status NOT IN ?", contractID, terminalStatuses()).
		First(&row).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &row, nil
}

func (r *repository) CountCreatedInYear(ctx context.Context, year int) (int64, error) {
	start := time.Date(year, time.January, 1, 0, 0, 0, 0, time.UTC)
	end := start.AddDate(1, 0, 0)
	var count int64
	err := r.db.WithContext(ctx).
		Model(&models.Auction{}).
		Where("created_at >= ? AND created_at < ?", start, end).
		Count(&count).Error
	return count, err
}

func (r *repository) ListOpenByTenant(ctx context.Context, tenantID uuid.UUID) ([]models.Auction, error) {
	var rows []models.Auction
	if err := r.db.WithContext(ctx).
		Where("tenant_id = ? AND status NOT IN ?", tenantID, terminalStatuses()).
		Order("created_at ASC").
		Find(&rows).Error; err != nil {
		return nil, err
	}
	return rows, nil
}

func (r *repository) ListScheduledDue(ctx context.Context, now time.Time) ([]models.Auction, error) {
	var rows []models.Auction
	if err := r.db.WithContext(ctx).
		Where("status = ? AND auction_start_date <= ?", enums.AuctionStatusScheduled, now).
		Order("auction_start_date ASC").
		Find(&rows).Error; err != nil {
		return nil, err
	}
	return rows, nil
}

func (r *repository) ListActiveExpired(ctx context.Context, now time.Time) ([]models.Auction, error) {
	var rows []models.Auction
	if err := r.db.WithContext(ctx).
		Where("status = ? AND auction_end_date <= ?", enums.AuctionStatusActive, now).
		Order("auction_end_date ASC").
		Find(&rows).Error; err != nil {
		return nil, err
	}
	return rows, nil
}

// ListEndingSoon returns active auctions closing inside the window whose
// closing reminder has not been sent yet.
func (r *repository) ListEndingSoon(ctx context.Context, from, to time.Time) ([]models.Auction, error) {
	var rows []models.Auction
	if err := r.db.WithContext(ctx).
		Where("status = ? AND reminder_sent_at IS NULL AND auction_end_date > ? AND auction_end_date <= ?",
			enums.AuctionStatusActive, from, to).
		Order("auction_end_date ASC").
		Find(&rows).Error; err != nil {
		return nil, err
	}
	return rows, nil
}

func (r *repository) TenantStats(ctx context.Context, tenantID uuid.UUID) (*Stats, error) {
	var statusRows []struct {
		Status enums.AuctionStatus
		Total  int64
	}
	if err := r.db.WithContext(ctx).
		Model(&models.Auction{}).
		Select("status, COUNT(*) AS total").
		Where("tenant_id = ?", tenantID).
		Group("status").
		Scan(&statusRows).Error; err != nil {
		return nil, err
	}

	stats := &Stats{
		CountByStatus:   make(map[enums.AuctionStatus]int64, len(statusRows)),
		OpenDebt:        decimal.Zero,
		RecoveredAmount: decimal.Zero,
	}
	for _, row := range statusRows {
		stats.CountByStatus[row.Status] = row.Total
	}

	var openDebt decimal.NullDecimal
	if err := r.db.WithContext(ctx).
		Model(&models.Auction{}).
		Select("SUM(total_debt)").
		Where("tenant_id = ? AND status NOT IN ?", tenantID, terminalStatuses()).
		Scan(&openDebt).Error; err != nil {
		return nil, err
	}
	if openDebt.Valid {
		stats.OpenDebt = openDebt.Decimal
	}

	var recovered decimal.NullDecimal
	if err := r.db.WithContext(ctx).
		Model(&models.Auction{}).
		Select("SUM(winning_bid)").
		Where("tenant_id = ? AND status = ?", tenantID, enums.AuctionStatusSold).
		Scan(&recovered).Error; err != nil {
		return nil, err
	}
	if recovered.Valid {
		stats.RecoveredAmount = recovered.Decimal
	}
	return stats, nil
}

func terminalStatuses() []enums.AuctionStatus {
	return []enums.AuctionStatus{
		enums.AuctionStatusSold,
		enums.AuctionStatusUnsold,
		enums.AuctionStatusRedeemed,
		enums.AuctionStatusCancelled,
	}
}
