package enums

import "fmt"

// AuctionStatus maps to the auction_status enum in Postgres.
type AuctionStatus string

const (
	AuctionStatusPending   AuctionStatus = "pending"
	AuctionStatusScheduled AuctionStatus = "scheduled"
	AuctionStatusActive    AuctionStatus = "active"
	AuctionStatusSold      AuctionStatus = "sold"
	AuctionStatusUnsold    AuctionStatus = "unsold"
	AuctionStatusRedeemed  AuctionStatus = "redeemed"
	AuctionStatusCancelled AuctionStatus = "cancelled"
)

var validAuctionStatuses = []AuctionStatus{
	AuctionStatusPending,
	AuctionStatusScheduled,
	AuctionStatusActive,
	AuctionStatusSold,
	AuctionStatusUnsold,
	AuctionStatusRedeemed,
	AuctionStatusCancelled,
}

// String implements fmt.Stringer.
func (s AuctionStatus) String() string {
	return string(s)
}

// IsValid reports whether the value is known.
func (s AuctionStatus) IsValid() bool {
	for _, candidate := range validAuctionStatuses {
		if candidate == s {
			return true
		}
	}
	return false
}

// IsTerminal reports whether the status permits no further mutation.
func (s AuctionStatus) IsTerminal() bool {
	switch s {
	case AuctionStatusSold, AuctionStatusUnsold, AuctionStatusRedeemed, AuctionStatusCancelled:
		return true
	}
	return false
}

// ParseAuctionStatus converts raw input into an AuctionStatus.
func ParseAuctionStatus(value string) (AuctionStatus, error) {
	for _, candidate := range validAuctionStatuses {
		if string(candidate) == value {
			return candidate, nil
		}
	}
	return "", fmt.Errorf("invalid auction status %q", value)
}
