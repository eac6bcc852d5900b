package models

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/haythemsaa/boxibox-backend/pkg/enums"
)

// Auction is the lien case tracking an overdue storage unit through notice
// escalation, sale, redemption, or cancellation. Rows become immutable once the
// status is terminal.
type Auction struct {
	ID         uuid.UUID  `gorm:"column:id;type:uuid;default:gen_random_uuid();primaryKey"`
	TenantID   uuid.UUID  `gorm:"column:tenant_id;type:uuid;not null;index:idx_auctions_tenant_status"`
	SiteID     uuid.UUID  `gorm:"column:site_id;type:uuid;not null"`
	BoxID      uuid.UUID  `gorm:"column:box_id;type:uuid;not null"`
	ContractID uuid.UUID  `gorm:"column:contract_id;type:uuid;not null"`
	CustomerID *uuid.UUID `gorm:"column:customer_id;type:uuid"`

	AuctionNumber string `gorm:"column:auction_number;not null;unique"`

	TotalDebt   decimal.Decimal `gorm:"column:total_debt;type:numeric(10,2);not null"`
	StorageFees decimal.Decimal `gorm:"column:storage_fees;type:numeric(10,2);not null"`
	LateFees    decimal.Decimal `gorm:"column:late_fees;type:numeric(10,2);not null"`
	LegalFees   decimal.Decimal `gorm:"column:legal_fees;type:numeric(10,2);not null"`
	DaysOverdue int             `gorm:"column:days_overdue;not null;default:0"`

	StartingBid     decimal.Decimal  `gorm:"column:starting_bid;type:numeric(10,2);not null"`
	ReservePrice    *decimal.Decimal `gorm:"column:reserve_price;type:numeric(10,2)"`
	CurrentBid      decimal.Decimal  `gorm:"column:current_bid;type:numeric(10,2);not null"`
	WinningBid      *decimal.Decimal `gorm:"column:winning_bid;type:numeric(10,2)"`
	WinningBidderID *uuid.UUID       `gorm:"column:winning_bidder_id;type:uuid"`

	Status enums.AuctionStatus `gorm:"column:status;type:auction_status;not null;default:'pending';index:idx_auctions_tenant_status"`

	FirstNoticeDate  *time.Time `gorm:"column:first_notice_date"`
	SecondNoticeDate *time.Time `gorm:"column:second_notice_date"`
	FinalNoticeDate  *time.Time `gorm:"column:final_notice_date"`
	AuctionStartDate *time.Time `gorm:"column:auction_start_date"`
	AuctionEndDate   *time.Time `gorm:"column:auction_end_date;index"`
	SoldAt           *time.Time `gorm:"column:sold_at"`
	ReminderSentAt   *time.Time `gorm:"column:reminder_sent_at"`

	LegalJurisdiction string  `gorm:"column:legal_jurisdiction;not null;default:'FR'"`
	CancelReason      *string `gorm:"column:cancel_reason"`

	ExternalPlatform   *string `gorm:"column:external_platform"`
	ExternalListingID  *string `gorm:"column:external_listing_id"`
	ExternalListingURL *string `gorm:"column:external_listing_url"`

	CreatedAt time.Time `gorm:"column:created_at;autoCreateTime"`
	UpdatedAt time.Time `gorm:"column:updated_at;autoUpdateTime"`
}

// IsOpen reports whether the lien case still blocks a new one for the same contract.
func (a *Auction) IsOpen() bool {
	return !a.Status.IsTerminal()
}

// BiddingOpen reports whether the auction accepts bids at the given instant.
func (a *Auction) BiddingOpen(now time.Time) bool {
	if a.Status != enums.AuctionStatusActive {
		return false
	}
	if a.AuctionStartDate == nil || a.AuctionEndDate == nil {
		return false
	}
	return !now.Before(*a.AuctionStartDate) && now.Before(*a.AuctionEndDate)
}
