package models

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// AuctionSettings configures the lien process for a tenant, optionally narrowed
// to a single site. Read-only input during an engine run.
type AuctionSettings struct {
	ID       uuid.UUID  `gorm:"column:id;type:uuid;default:gen_random_uuid();primaryKey"`
	TenantID uuid.UUID  `gorm:"column:tenant_id;type:uuid;not null;uniqueIndex:idx_auction_settings_tenant_site"`
	SiteID   *uuid.UUID `gorm:"column:site_id;type:uuid;uniqueIndex:idx_auction_settings_tenant_site"`

	IsEnabled bool `gorm:"column:is_enabled;not null;default:true"`

	DaysBeforeFirstNotice  int             `gorm:"column:days_before_first_notice;not null;default:30" validate:"gte=0"`
	DaysBeforeSecondNotice int             `gorm:"column:days_before_second_notice;not null;default:45" validate:"gte=0"`
	DaysBeforeFinalNotice  int             `gorm:"column:days_before_final_notice;not null;default:60" validate:"gte=0"`
	DaysBeforeAuction      int             `gorm:"column:days_before_auction;not null;default:75" validate:"gte=0"`
	MinimumDebtAmount      decimal.Decimal `gorm:"column:minimum_debt_amount;type:numeric(10,2);not null"`

	AuctionDurationDays   int             `gorm:"column:auction_duration_days;not null;default:7" validate:"gte=1"`
	StartingBidPercentage decimal.Decimal `gorm:"column:starting_bid_percentage;type:numeric(5,2);not null"`
	RequireReservePrice   bool            `gorm:"column:require_reserve_price;not null;default:false"`

	PreferredPlatform  *string `gorm:"column:preferred_platform"`
	AutoListOnPlatform bool    `gorm:"column:auto_list_on_platform;not null;default:false"`

	LegalJurisdiction    string  `gorm:"column:legal_jurisdiction;not null;default:'FR'" validate:"required"`
	FirstNoticeTemplate  *string `gorm:"column:first_notice_template"`
	SecondNoticeTemplate *string `gorm:"column:second_notice_template"`
	FinalNoticeTemplate  *string `gorm:"column:final_notice_template"`

	PlatformFeePercentage decimal.Decimal `gorm:"column:platform_fee_percentage;type:numeric(5,2);not null"`
	AdminFee              decimal.Decimal `gorm:"column:admin_fee;type:numeric(10,2);not null"`

	CreatedAt time.Time `gorm:"column:created_at;autoCreateTime"`
	UpdatedAt time.Time `gorm:"column:updated_at;autoUpdateTime"`
}

// TableName overrides GORM's default pluralization.
func (AuctionSettings) TableName() string {
	return "auction_settings"
}

// StartingBidFor derives the opening bid from the total debt.
func (s AuctionSettings) StartingBidFor(totalDebt decimal.Decimal) decimal.Decimal {
	return totalDebt.Mul(s.StartingBidPercentage).Div(decimal.NewFromInt(100)).Round(2)
}
