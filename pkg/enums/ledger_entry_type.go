package enums

import "fmt"

// LedgerEntryType maps to the auction_ledger_entry_type enum in Postgres.
type LedgerEntryType string

const (
	LedgerEntryTypeSaleProceeds LedgerEntryType = "sale_proceeds"
	LedgerEntryTypePlatformFee  LedgerEntryType = "platform_fee"
	LedgerEntryTypeAdminFee     LedgerEntryType = "admin_fee"
)

var validLedgerEntryTypes = []LedgerEntryType{
	LedgerEntryTypeSaleProceeds,
	LedgerEntryTypePlatformFee,
	LedgerEntryTypeAdminFee,
}

// IsValid reports whether the value is known.
func (t LedgerEntryType) IsValid() bool {
	for _, candidate := range validLedgerEntryTypes {
		if candidate == t {
			return true
		}
	}
	return false
}

// ParseLedgerEntryType converts raw input into a LedgerEntryType.
func ParseLedgerEntryType(value string) (LedgerEntryType, error) {
	for _, candidate := range validLedgerEntryTypes {
		if string(candidate) == value {
			return candidate, nil
		}
	}
	return "", fmt.Errorf("invalid ledger entry type %q", value)
}
