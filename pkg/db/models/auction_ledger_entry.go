package models

import (
	"encoding/json"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/haythemsaa/boxibox-backend/pkg/enums"
)

// AuctionLedgerEntry records an immutable financial outcome of a closed lien case.
type AuctionLedgerEntry struct {
	ID         uuid.UUID             `gorm:"column:id;type:uuid;default:gen_random_uuid();primaryKey"`
	AuctionID  uuid.UUID             `gorm:"column:auction_id;type:uuid;not null;index"`
	ContractID uuid.UUID             `gorm:"column:contract_id;type:uuid;not null"`
	Type       enums.LedgerEntryType `gorm:"column:type;type:auction_ledger_entry_type;not null"`
	Amount     decimal.Decimal       `gorm:"column:amount;type:numeric(10,2);not null"`
	Metadata   json.RawMessage       `gorm:"column:metadata;type:jsonb"`
	CreatedAt  time.Time             `gorm:"column:created_at;autoCreateTime"`
}
