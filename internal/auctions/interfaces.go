package auctions

import (
	"context"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/haythemsaa/boxibox-backend/pkg/db/models"
	"github.com/haythemsaa/boxibox-backend/pkg/types"
)

// ContractProvider is the billing subsystem's read surface. The engine never
// mutates contract rows directly; closure goes through the settlement
// processor's collaborators.
type ContractProvider interface {
	ListOverdueContracts(ctx context.Context, tenantID uuid.UUID) ([]types.Contract, error)
	GetContract(ctx context.Context, contractID uuid.UUID) (types.Contract, error)
}

// InvoiceProvider surfaces a contract's invoices for debt evaluation.
type InvoiceProvider interface {
	ListOverdueInvoices(ctx context.Context, contractID uuid.UUID) ([]types.Invoice, error)
}

// BidStore is the read surface onto accepted bids used when closing an auction.
type BidStore interface {
	HighestForAuction(ctx context.Context, auctionID uuid.UUID) (*models.AuctionBid, error)
}

// BidStoreFactory binds a BidStore to the closing transaction.
type BidStoreFactory func(tx *gorm.DB) BidStore

type txRunner interface {
	WithTx(ctx context.Context, fn func(tx *gorm.DB) error) error
}
