package settings

import (
	"context"
	"errors"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/haythemsaa/boxibox-backend/pkg/db/models"
)

// Repository manages per-tenant auction settings.
type Repository interface {
	WithTx(tx *gorm.DB) Repository
	GetForTenant(ctx context.Context, tenantID uuid.UUID, siteID *uuid.UUID) (*models.AuctionSettings, error)
	ListEnabled(ctx context.Context) ([]models.AuctionSettings, error)
	Save(ctx context.Context, settings *models.AuctionSettings) error
}

type repository struct {
	db *gorm.DB
}

// NewRepository returns a settings repository bound to the provided database.
func NewRepository(db *gorm.DB) Repository {
	return &repository{db: db}
}

func (r *repository) WithTx(tx *gorm.DB) Repository {
	if tx == nil {
		return r
	}
	return &repository{db: tx}
}

// GetForTenant resolves the settings row for a tenant, preferring a site-level
// override when one exists. Returns (nil, nil) when the tenant has none.
func (r *repository) GetForTenant(ctx context.Context, tenantID uuid.UUID, siteID *uuid.UUID) (*models.AuctionSettings, error) {
	if siteID != nil {
		var row models.AuctionSettings
		err := r.db.WithContext(ctx).
			Where("tenant_id = ? AND site_id = ?", tenantID, *siteID).
			First(&row).Error
		if err == nil {
			return &row, nil
		}
		if !errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, err
		}
	}

	var row models.AuctionSettings
	err := r.db.WithContext(ctx).
		Where("tenant_id = ? AND site_id IS NULL", tenantID).
		First(&row).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &row, nil
}

func (r *repository) ListEnabled(ctx context.Context) ([]models.AuctionSettings, error) {
	var rows []models.AuctionSettings
	if err := r.db.WithContext(ctx).
		Where("is_enabled = ? AND site_id IS NULL", true).
		Order("tenant_id ASC").
		Find(&rows).Error; err != nil {
		return nil, err
	}
	return rows, nil
}

func (r *repository) Save(ctx context.Context, settings *models.AuctionSettings) error {
	return r.db.WithContext(ctx).Save(settings).Error
}
