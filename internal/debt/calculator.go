package debt

import (
	"time"

	"github.com/shopspring/decimal"

	"github.com/haythemsaa/boxibox-backend/pkg/types"
)

// Snapshot is the outstanding-debt view of a contract at evaluation time.
// Legal fees start at zero; they are populated later by the legal workflow.
type Snapshot struct {
	StorageFees  decimal.Decimal
	LateFees     decimal.Decimal
	LegalFees    decimal.Decimal
	Total        decimal.Decimal
	DaysOverdue  int
	InvoiceCount int
}

// IsZero reports whether the contract carries no overdue debt.
func (s Snapshot) IsZero() bool {
	return s.InvoiceCount == 0
}

// Calculate derives the debt snapshot from a contract's invoices. Only overdue
// invoices count; the oldest one drives the overdue clock. A contract with no
// overdue invoices yields a zero snapshot, never an error.
func Calculate(invoices []types.Invoice, now time.Time) Snapshot {
	snapshot := Snapshot{
		StorageFees: decimal.Zero,
		LateFees:    decimal.Zero,
		LegalFees:   decimal.Zero,
		Total:       decimal.Zero,
	}

	var oldest *time.Time
	for _, invoice := range invoices {
		if !invoice.IsOverdue() {
			continue
		}
		snapshot.InvoiceCount++
		snapshot.StorageFees = snapshot.StorageFees.Add(invoice.Total)
		snapshot.LateFees = snapshot.LateFees.Add(invoice.LateFees)
		due := invoice.DueDate
		if oldest == nil || due.Before(*oldest) {
			oldest = &due
		}
	}

	snapshot.Total = snapshot.StorageFees.Add(snapshot.LateFees)
	if oldest != nil && now.After(*oldest) {
		snapshot.DaysOverdue = int(now.Sub(*oldest).Hours() / 24)
	}
	return snapshot
}
