package billing

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"

	pkgerrors "github.com/haythemsaa/boxibox-backend/pkg/errors"
	"github.com/haythemsaa/boxibox-backend/pkg/types"
)

// Provider reads contract and invoice data from the platform database and
// performs the billing-side writes of settlement. The auction engine only
// knows the interfaces; this is the platform's own implementation of them.
type Provider struct {
	db *gorm.DB
}

// NewProvider binds the provider to the shared database connection.
func NewProvider(db *gorm.DB) (*Provider, error) {
	if db == nil {
		return nil, fmt.Errorf("db connection required")
	}
	return &Provider{db: db}, nil
}

type contractRow struct {
	ID              uuid.UUID
	TenantID        uuid.UUID
	SiteID          uuid.UUID
	BoxID           uuid.UUID
	CustomerID      uuid.UUID
	CustomerName    string
	CustomerEmail   string
	CustomerAddress string
	BoxNumber       string
	SiteName        string
	CompanyName     string
}

func (r contractRow) toContract() types.Contract {
	return types.Contract{
		ID:              r.ID,
		TenantID:        r.TenantID,
		SiteID:          r.SiteID,
		BoxID:           r.BoxID,
		CustomerID:      r.CustomerID,
		CustomerName:    r.CustomerName,
		CustomerEmail:   r.CustomerEmail,
		CustomerAddress: r.CustomerAddress,
		BoxNumber:       r.BoxNumber,
		SiteName:        r.SiteName,
		CompanyName:     r.CompanyName,
	}
}

const contractSelect = `
SELECT c.id, c.tenant_id, c.site_id, c.box_id, c.customer_id,
       cu.full_name AS customer_name, cu.email AS customer_email, cu.address AS customer_address,
       b.box_number, s.name AS site_name, t.company_name
FROM contracts c
JOIN customers cu ON cu.id = c.customer_id
JOIN boxes b ON b.id = c.box_id
JOIN sites s ON s.id = c.site_id
JOIN tenants t ON t.id = c.tenant_id`

// ListOverdueContracts returns the tenant's active contracts carrying at
// least one overdue invoice.
func (p *Provider) ListOverdueContracts(ctx context.Context, tenantID uuid.UUID) ([]types.Contract, error) {
	var rows []contractRow
	query := contractSelect + `
WHERE c.tenant_id = ? AND c.status = 'active'
  AND EXISTS (SELECT 1 FROM invoices i WHERE i.contract_id = c.id AND i.status = 'overdue')
ORDER BY c.created_at ASC`
	if err := p.db.WithContext(ctx).Raw(query, tenantID).Scan(&rows).Error; err != nil {
		return nil, err
	}
	contracts := make([]types.Contract, 0, len(rows))
	for _, row := range rows {
		contracts = append(contracts, row.toContract())
	}
	return contracts, nil
}

// GetContract loads a single contract with its customer and unit details.
func (p *Provider) GetContract(ctx context.Context, contractID uuid.UUID) (types.Contract, error) {
	var row contractRow
	query := contractSelect + ` WHERE c.id = ?`
	err := p.db.WithContext(ctx).Raw(query, contractID).First(&row).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return types.Contract{}, pkgerrors.New(pkgerrors.CodeNotFound, "contract not found")
	}
	if err != nil {
		return types.Contract{}, err
	}
	return row.toContract(), nil
}

type invoiceRow struct {
	ID       uuid.UUID
	Total    decimal.Decimal
	LateFees decimal.Decimal
	DueDate  time.Time
	Status   string
}

// ListOverdueInvoices returns the contract's overdue invoices.
func (p *Provider) ListOverdueInvoices(ctx context.Context, contractID uuid.UUID) ([]types.Invoice, error) {
	var rows []invoiceRow
	query := `
SELECT id, total, late_fees, due_date, status
FROM invoices
WHERE contract_id = ? AND status = 'overdue'
ORDER BY due_date ASC`
	if err := p.db.WithContext(ctx).Raw(query, contractID).Scan(&rows).Error; err != nil {
		return nil, err
	}
	invoices := make([]types.Invoice, 0, len(rows))
	for _, row := range rows {
		invoices = append(invoices, types.Invoice{
			ID:       row.ID,
			Total:    row.Total,
			LateFees: row.LateFees,
			DueDate:  row.DueDate,
			Status:   row.Status,
		})
	}
	return invoices, nil
}

// ReleaseBox returns the unit to rentable inventory inside the settlement
// transaction.
func (p *Provider) ReleaseBox(ctx context.Context, tx *gorm.DB, boxID uuid.UUID) error {
	conn := p.conn(tx)
	result := conn.WithContext(ctx).Exec(
		`UPDATE boxes SET status = 'available', updated_at = NOW() WHERE id = ?`, boxID)
	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		return pkgerrors.New(pkgerrors.CodeNotFound, "box not found")
	}
	return nil
}

// CloseContract terminates the contract inside the settlement transaction.
func (p *Provider) CloseContract(ctx context.Context, tx *gorm.DB, contractID uuid.UUID, reason string) error {
	conn := p.conn(tx)
	result := conn.WithContext(ctx).Exec(
		`UPDATE contracts SET status = 'closed', close_reason = ?, closed_at = NOW(), updated_at = NOW() WHERE id = ?`,
		reason, contractID)
	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		return pkgerrors.New(pkgerrors.CodeNotFound, "contract not found")
	}
	return nil
}

func (p *Provider) conn(tx *gorm.DB) *gorm.DB {
	if tx != nil {
		return tx
	}
	return p.db
}
