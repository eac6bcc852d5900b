package marketplace

import (
	"context"
	"time"

	"github.com/shopspring/decimal"
)

// Platform identifiers accepted in tenant settings.
const (
	PlatformStorageTreasures = "storage_treasures"
	PlatformLockerFox        = "lockerfox"
)

// Listing is the marketplace-neutral payload describing a unit sale.
type Listing struct {
	AuctionNumber string
	Title         string
	Description   string
	StartingBid   decimal.Decimal
	ReservePrice  *decimal.Decimal
	StartAt       time.Time
	EndAt         time.Time
	SiteName      string
	BoxNumber     string
}

// ListingRef identifies a listing created on an external platform.
type ListingRef struct {
	Platform   string
	ListingID  string
	ListingURL string
}

// Lister publishes auction listings on an external marketplace. Listing is
// best-effort advertising: callers must never fail a lien operation because a
// marketplace call failed.
type Lister interface {
	CreateListing(ctx context.Context, listing Listing) (*ListingRef, error)
	CancelListing(ctx context.Context, listingID string) error
}

// NopLister satisfies Lister without any external calls. Used when a tenant
// has no platform configured.
type NopLister struct{}

func (NopLister) CreateListing(context.Context, Listing) (*ListingRef, error) {
	return nil, nil
}

func (NopLister) CancelListing(context.Context, string) error {
	return nil
}
