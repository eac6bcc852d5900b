package types

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// InvoiceStatusOverdue is the only invoice status the engine acts on.
const InvoiceStatusOverdue = "overdue"

// Invoice is the external billing subsystem's view of an invoice.
type Invoice struct {
	ID       uuid.UUID
	Total    decimal.Decimal
	LateFees decimal.Decimal
	DueDate  time.Time
	Status   string
}

// IsOverdue reports whether the invoice counts toward outstanding debt.
func (i Invoice) IsOverdue() bool {
	return i.Status == InvoiceStatusOverdue
}
