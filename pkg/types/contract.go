package types

import "github.com/google/uuid"

// Contract is the external billing subsystem's view of a storage contract, as
// surfaced to the auction engine by the contract provider. The engine never
// writes these fields directly.
type Contract struct {
	ID         uuid.UUID
	TenantID   uuid.UUID
	SiteID     uuid.UUID
	BoxID      uuid.UUID
	CustomerID uuid.UUID

	CustomerName    string
	CustomerEmail   string
	CustomerAddress string
	BoxNumber       string
	SiteName        string
	CompanyName     string
}
