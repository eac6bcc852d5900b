package settlement

import (
	"context"
	"encoding/json"
	"errors"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"

	"github.com/haythemsaa/boxibox-backend/pkg/db/models"
	"github.com/haythemsaa/boxibox-backend/pkg/enums"
	pkgerrors "github.com/haythemsaa/boxibox-backend/pkg/errors"
	"github.com/haythemsaa/boxibox-backend/pkg/logger"
	"github.com/haythemsaa/boxibox-backend/pkg/types"
)

type fakeLedgerRepo struct {
	entries []*models.AuctionLedgerEntry
}

func (f *fakeLedgerRepo) WithTx(tx *gorm.DB) Repository { return f }

func (f *fakeLedgerRepo) Create(ctx context.Context, entry *models.AuctionLedgerEntry) error {
	entry.ID = uuid.New()
	f.entries = append(f.entries, entry)
	return nil
}

func (f *fakeLedgerRepo) ListByAuction(ctx context.Context, auctionID uuid.UUID) ([]models.AuctionLedgerEntry, error) {
	return nil, nil
}

func (f *fakeLedgerRepo) byType(entryType enums.LedgerEntryType) *models.AuctionLedgerEntry {
	for _, entry := range f.entries {
		if entry.Type == entryType {
			return entry
		}
	}
	return nil
}

type fakeReleaser struct {
	released []uuid.UUID
}

func (f *fakeReleaser) ReleaseBox(ctx context.Context, tx *gorm.DB, boxID uuid.UUID) error {
	f.released = append(f.released, boxID)
	return nil
}

type fakeCloser struct {
	closed  []uuid.UUID
	reasons []string
	err     error
}

func (f *fakeCloser) CloseContract(ctx context.Context, tx *gorm.DB, contractID uuid.UUID, reason string) error {
	if f.err != nil {
		return f.err
	}
	f.closed = append(f.closed, contractID)
	f.reasons = append(f.reasons, reason)
	return nil
}

type fakeWinnerNotifier struct {
	notified int
}

func (f *fakeWinnerNotifier) Dispatch(ctx context.Context, tx *gorm.DB, auction *models.Auction, contract types.Contract, settings models.AuctionSettings, noticeType enums.NoticeType) (*models.AuctionNotice, bool, error) {
	return nil, true, nil
}

func (f *fakeWinnerNotifier) DispatchResult(ctx context.Context, tx *gorm.DB, auction *models.Auction, contract types.Contract, sold bool) error {
	return nil
}

func (f *fakeWinnerNotifier) DispatchWinnerInstructions(ctx context.Context, tx *gorm.DB, auction *models.Auction) error {
	f.notified++
	return nil
}

type settlementTest struct {
	svc      Processor
	repo     *fakeLedgerRepo
	releaser *fakeReleaser
	closer   *fakeCloser
	notifier *fakeWinnerNotifier
}

func newSettlementTest(t *testing.T) *settlementTest {
	t.Helper()
	h := &settlementTest{
		repo:     &fakeLedgerRepo{},
		releaser: &fakeReleaser{},
		closer:   &fakeCloser{},
		notifier: &fakeWinnerNotifier{},
	}
	svc, err := NewService(ServiceParams{
		Repo:     h.repo,
		Releaser: h.releaser,
		Closer:   h.closer,
		Notices:  h.notifier,
		Logger:   logger.New(logger.Options{ServiceName: "test"}),
		Now:      func() time.Time { return time.Date(2026, 5, 17, 18, 0, 0, 0, time.UTC) },
	})
	if err != nil {
		t.Fatalf("NewService: %v", err)
	}
	h.svc = svc
	return h
}

func soldAuction(winningBid, totalDebt int64) *models.Auction {
	bid := decimal.NewFromInt(winningBid)
	bidder := uuid.New()
	return &models.Auction{
		ID:              uuid.New(),
		ContractID:      uuid.New(),
		BoxID:           uuid.New(),
		Status:          enums.AuctionStatusSold,
		TotalDebt:       decimal.NewFromInt(totalDebt),
		WinningBid:      &bid,
		WinningBidderID: &bidder,
	}
}

func settlementCfg() models.AuctionSettings {
	return models.AuctionSettings{
		PlatformFeePercentage: decimal.NewFromInt(10),
		AdminFee:              decimal.NewFromInt(50),
	}
}

func TestProcess_splitsProceeds(t *testing.T) {
	h := newSettlementTest(t)
	auction := soldAuction(500, 300)

	if err := h.svc.Process(context.Background(), nil, auction, settlementCfg()); err != nil {
		t.Fatalf("Process: %v", err)
	}
	if len(h.repo.entries) != 3 {
		t.Fatalf("expected 3 ledger entries, got %d", len(h.repo.entries))
	}

	proceeds := h.repo.byType(enums.LedgerEntryTypeSaleProceeds)
	if proceeds == nil || !proceeds.Amount.Equal(decimal.NewFromInt(400)) {
		t.Fatalf("expected net proceeds 400, got %+v", proceeds)
	}
	var meta map[string]string
	if err := json.Unmarshal(proceeds.Metadata, &meta); err != nil {
		t.Fatalf("unmarshal proceeds metadata: %v", err)
	}
	if meta["gross_amount"] != "500.00" || meta["applied_to_debt"] != "300.00" || meta["surplus"] != "100.00" {
		t.Fatalf("unexpected proceeds metadata: %v", meta)
	}

	if fee := h.repo.byType(enums.LedgerEntryTypePlatformFee); fee == nil || !fee.Amount.Equal(decimal.NewFromInt(50)) {
		t.Fatalf("expected platform fee 50, got %+v", fee)
	}
	if fee := h.repo.byType(enums.LedgerEntryTypeAdminFee); fee == nil || !fee.Amount.Equal(decimal.NewFromInt(50)) {
		t.Fatalf("expected admin fee 50, got %+v", fee)
	}

	if len(h.releaser.released) != 1 || h.releaser.released[0] != auction.BoxID {
		t.Fatal("expected the storage unit released")
	}
	if len(h.closer.closed) != 1 || h.closer.reasons[0] != "auction_sold" {
		t.Fatalf("expected contract closed with auction_sold, got %v", h.closer.reasons)
	}
	if h.notifier.notified != 1 {
		t.Fatal("expected winner instructions queued")
	}
}

func TestProcess_netFlooredAtZero(t *testing.T) {
	h := newSettlementTest(t)
	auction := soldAuction(40, 300)

	if err := h.svc.Process(context.Background(), nil, auction, settlementCfg()); err != nil {
		t.Fatalf("Process: %v", err)
	}
	proceeds := h.repo.byType(enums.LedgerEntryTypeSaleProceeds)
	if proceeds == nil || !proceeds.Amount.IsZero() {
		t.Fatalf("expected zero net proceeds, got %+v", proceeds)
	}
	var meta map[string]string
	if err := json.Unmarshal(proceeds.Metadata, &meta); err != nil {
		t.Fatalf("unmarshal proceeds metadata: %v", err)
	}
	if meta["applied_to_debt"] != "0.00" || meta["surplus"] != "0.00" {
		t.Fatalf("unexpected metadata: %v", meta)
	}
}

func TestProcess_debtLargerThanNetLeavesNoSurplus(t *testing.T) {
	h := newSettlementTest(t)
	auction := soldAuction(500, 1000)

	if err := h.svc.Process(context.Background(), nil, auction, settlementCfg()); err != nil {
		t.Fatalf("Process: %v", err)
	}
	var meta map[string]string
	if err := json.Unmarshal(h.repo.byType(enums.LedgerEntryTypeSaleProceeds).Metadata, &meta); err != nil {
		t.Fatalf("unmarshal proceeds metadata: %v", err)
	}
	if meta["applied_to_debt"] != "400.00" || meta["surplus"] != "0.00" {
		t.Fatalf("unexpected metadata: %v", meta)
	}
}

func TestProcess_requiresWinningBid(t *testing.T) {
	h := newSettlementTest(t)
	auction := soldAuction(500, 300)
	auction.WinningBid = nil

	err := h.svc.Process(context.Background(), nil, auction, settlementCfg())
	if !pkgerrors.HasCode(err, pkgerrors.CodeStateConflict) {
		t.Fatalf("expected state conflict, got %v", err)
	}
	if len(h.repo.entries) != 0 {
		t.Fatal("no ledger entries without a winning bid")
	}
}

func TestProcess_closerFailureAborts(t *testing.T) {
	h := newSettlementTest(t)
	h.closer.err = errors.New("billing unavailable")
	auction := soldAuction(500, 300)

	err := h.svc.Process(context.Background(), nil, auction, settlementCfg())
	if !pkgerrors.HasCode(err, pkgerrors.CodeDependency) {
		t.Fatalf("expected dependency error, got %v", err)
	}
	if h.notifier.notified != 0 {
		t.Fatal("winner instructions must not be queued when closure fails")
	}
}
