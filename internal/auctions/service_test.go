package auctions

import (
	"context"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"

	"github.com/haythemsaa/boxibox-backend/internal/debt"
	"github.com/haythemsaa/boxibox-backend/internal/notices"
	"github.com/haythemsaa/boxibox-backend/pkg/db/models"
	"github.com/haythemsaa/boxibox-backend/pkg/enums"
	pkgerrors "github.com/haythemsaa/boxibox-backend/pkg/errors"
	"github.com/haythemsaa/boxibox-backend/pkg/logger"
	"github.com/haythemsaa/boxibox-backend/pkg/types"
)

type fakeTxRunner struct{}

func (fakeTxRunner) WithTx(ctx context.Context, fn func(tx *gorm.DB) error) error {
	return fn(nil)
}

type fakeAuctionRepo struct {
	rows    map[uuid.UUID]*models.Auction
	created int
}

func newFakeAuctionRepo(rows ...*models.Auction) *fakeAuctionRepo {
	repo := &fakeAuctionRepo{rows: map[uuid.UUID]*models.Auction{}}
	for _, row := range rows {
		repo.rows[row.ID] = row
	}
	return repo
}

func (f *fakeAuctionRepo) WithTx(tx *gorm.DB) Repository { return f }

func (f *fakeAuctionRepo) Create(ctx context.Context, auction *models.Auction) error {
	auction.ID = uuid.New()
	f.rows[auction.ID] = auction
	f.created++
	return nil
}

func (f *fakeAuctionRepo) Update(ctx context.Context, auctionID uuid.UUID, updates map[string]any) error {
	row, ok := f.rows[auctionID]
	if !ok {
		return pkgerrors.New(pkgerrors.CodeNotFound, "auction not found")
	}
	for column, value := range updates {
		applyUpdate(row, column, value)
	}
	return nil
}

func applyUpdate(row *models.Auction, column string, value any) {
	switch column {
	case "status":
		row.Status = value.(enums.AuctionStatus)
	case "total_debt":
		row.TotalDebt = value.(decimal.Decimal)
	case "storage_fees":
		row.StorageFees = value.(decimal.Decimal)
	case "late_fees":
		row.LateFees = value.(decimal.Decimal)
	case "legal_fees":
		row.LegalFees = value.(decimal.Decimal)
	case "days_overdue":
		row.DaysOverdue = value.(int)
	case "first_notice_date":
		stamp := value.(time.Time)
		row.FirstNoticeDate = &stamp
	case "second_notice_date":
		stamp := value.(time.Time)
		row.SecondNoticeDate = &stamp
	case "final_notice_date":
		stamp := value.(time.Time)
		row.FinalNoticeDate = &stamp
	case "auction_start_date":
		stamp := value.(time.Time)
		row.AuctionStartDate = &stamp
	case "auction_end_date":
		stamp := value.(time.Time)
		row.AuctionEndDate = &stamp
	case "sold_at":
		stamp := value.(time.Time)
		row.SoldAt = &stamp
	case "reminder_sent_at":
		stamp := value.(time.Time)
		row.ReminderSentAt = &stamp
	case "reserve_price":
		amount := value.(decimal.Decimal)
		row.ReservePrice = &amount
	case "winning_bid":
		amount := value.(decimal.Decimal)
		row.WinningBid = &amount
	case "winning_bidder_id":
		id := value.(uuid.UUID)
		row.WinningBidderID = &id
	case "cancel_reason":
		reason := value.(string)
		row.CancelReason = &reason
	case "current_bid":
		row.CurrentBid = value.(decimal.Decimal)
	case "starting_bid":
		row.StartingBid = value.(decimal.Decimal)
	}
}

func (f *fakeAuctionRepo) FindByID(ctx context.Context, auctionID uuid.UUID) (*models.Auction, error) {
	row, ok := f.rows[auctionID]
	if !ok {
		return nil, pkgerrors.New(pkgerrors.CodeNotFound, "auction not found")
	}
	return row, nil
}

func (f *fakeAuctionRepo) FindByIDForUpdate(ctx context.Context, auctionID uuid.UUID) (*models.Auction, error) {
	return f.FindByID(ctx, auctionID)
}

func (f *fakeAuctionRepo) FindOpenByContract(ctx context.Context, contractID uuid.UUID) (*models.Auction, error) {
	for _, row := range f.rows {
		if row.ContractID == contractID && row.IsOpen() {
			return row, nil
		}
	}
	return nil, nil
}

func (f *fakeAuctionRepo) CountCreatedInYear(ctx context.Context, year int) (int64, error) {
	return int64(len(f.rows)), nil
}

func (f *fakeAuctionRepo) ListOpenByTenant(ctx context.Context, tenantID uuid.UUID) ([]models.Auction, error) {
	return nil, nil
}

func (f *fakeAuctionRepo) ListScheduledDue(ctx context.Context, now time.Time) ([]models.Auction, error) {
	var due []models.Auction
	for _, row := range f.rows {
		if row.Status == enums.AuctionStatusScheduled && row.AuctionStartDate != nil && !now.Before(*row.AuctionStartDate) {
			due = append(due, *row)
		}
	}
	return due, nil
}

func (f *fakeAuctionRepo) ListActiveExpired(ctx context.Context, now time.Time) ([]models.Auction, error) {
	var expired []models.Auction
	for _, row := range f.rows {
		if row.Status == enums.AuctionStatusActive && row.AuctionEndDate != nil && !now.Before(*row.AuctionEndDate) {
			expired = append(expired, *row)
		}
	}
	return expired, nil
}

func (f *fakeAuctionRepo) ListEndingSoon(ctx context.Context, from, to time.Time) ([]models.Auction, error) {
	var soon []models.Auction
	for _, row := range f.rows {
		if row.Status != enums.AuctionStatusActive || row.ReminderSentAt != nil || row.AuctionEndDate == nil {
			continue
		}
		if row.AuctionEndDate.After(from) && !row.AuctionEndDate.After(to) {
			soon = append(soon, *row)
		}
	}
	return soon, nil
}

func (f *fakeAuctionRepo) TenantStats(ctx context.Context, tenantID uuid.UUID) (*Stats, error) {
	return &Stats{CountByStatus: map[enums.AuctionStatus]int64{}}, nil
}

type fakeDispatcher struct {
	dispatched     []enums.NoticeType
	progressed     bool
	results        []bool
	winnerNotified int
}

func (f *fakeDispatcher) Dispatch(ctx context.Context, tx *gorm.DB, auction *models.Auction, contract types.Contract, settings models.AuctionSettings, noticeType enums.NoticeType) (*models.AuctionNotice, bool, error) {
	f.dispatched = append(f.dispatched, noticeType)
	return &models.AuctionNotice{ID: uuid.New(), NoticeType: noticeType}, f.progressed, nil
}

func (f *fakeDispatcher) DispatchResult(ctx context.Context, tx *gorm.DB, auction *models.Auction, contract types.Contract, sold bool) error {
	f.results = append(f.results, sold)
	return nil
}

func (f *fakeDispatcher) DispatchWinnerInstructions(ctx context.Context, tx *gorm.DB, auction *models.Auction) error {
	f.winnerNotified++
	return nil
}

type fakeNoticeStore struct {
	cancelled []uuid.UUID
}

func (f *fakeNoticeStore) WithTx(tx *gorm.DB) notices.Repository { return f }

func (f *fakeNoticeStore) Create(ctx context.Context, notice *models.AuctionNotice) error {
	return nil
}

func (f *fakeNoticeStore) MarkSent(ctx context.Context, noticeID uuid.UUID, sentAt time.Time) error {
	return nil
}

func (f *fakeNoticeStore) MarkFailed(ctx context.Context, noticeID uuid.UUID) error {
	return nil
}

func (f *fakeNoticeStore) CancelPending(ctx context.Context, auctionID uuid.UUID) (int64, error) {
	f.cancelled = append(f.cancelled, auctionID)
	return 1, nil
}

func (f *fakeNoticeStore) ListByAuction(ctx context.Context, auctionID uuid.UUID) ([]models.AuctionNotice, error) {
	return nil, nil
}

type fakeBidStore struct {
	highest *models.AuctionBid
}

func (f *fakeBidStore) HighestForAuction(ctx context.Context, auctionID uuid.UUID) (*models.AuctionBid, error) {
	return f.highest, nil
}

type fakeSettlement struct {
	processed []uuid.UUID
}

func (f *fakeSettlement) Process(ctx context.Context, tx *gorm.DB, auction *models.Auction, settings models.AuctionSettings) error {
	f.processed = append(f.processed, auction.ID)
	return nil
}

type fakeContracts struct {
	contract types.Contract
}

func (f *fakeContracts) ListOverdueContracts(ctx context.Context, tenantID uuid.UUID) ([]types.Contract, error) {
	return []types.Contract{f.contract}, nil
}

func (f *fakeContracts) GetContract(ctx context.Context, contractID uuid.UUID) (types.Contract, error) {
	return f.contract, nil
}

type fakeSettings struct {
	cfg models.AuctionSettings
}

func (f *fakeSettings) GetForTenant(ctx context.Context, tenantID uuid.UUID, siteID *uuid.UUID) (*models.AuctionSettings, error) {
	cfg := f.cfg
	return &cfg, nil
}

type auctionServiceTest struct {
	svc        Service
	repo       *fakeAuctionRepo
	dispatcher *fakeDispatcher
	notices    *fakeNoticeStore
	bids       *fakeBidStore
	settlement *fakeSettlement
	now        time.Time
	cfg        models.AuctionSettings
}

func testCfg() models.AuctionSettings {
	return models.AuctionSettings{
		IsEnabled:              true,
		DaysBeforeFirstNotice:  30,
		DaysBeforeSecondNotice: 45,
		DaysBeforeFinalNotice:  60,
		DaysBeforeAuction:      75,
		MinimumDebtAmount:      decimal.NewFromInt(100),
		AuctionDurationDays:    7,
		StartingBidPercentage:  decimal.NewFromInt(10),
		LegalJurisdiction:      "FR",
		PlatformFeePercentage:  decimal.NewFromInt(10),
		AdminFee:               decimal.NewFromInt(50),
	}
}

func newAuctionServiceTest(t *testing.T, rows ...*models.Auction) *auctionServiceTest {
	t.Helper()
	h := &auctionServiceTest{
		repo:       newFakeAuctionRepo(rows...),
		dispatcher: &fakeDispatcher{progressed: true},
		notices:    &fakeNoticeStore{},
		bids:       &fakeBidStore{},
		settlement: &fakeSettlement{},
		now:        time.Date(2026, 5, 10, 12, 0, 0, 0, time.UTC),
		cfg:        testCfg(),
	}
	svc, err := NewService(ServiceParams{
		Logger:     logger.New(logger.Options{ServiceName: "test"}),
		DB:         fakeTxRunner{},
		Repo:       h.repo,
		NoticeRepo: h.notices,
		Notices:    h.dispatcher,
		Bids:       func(tx *gorm.DB) BidStore { return h.bids },
		Settlement: h.settlement,
		Contracts:  &fakeContracts{contract: types.Contract{ID: uuid.New(), CustomerEmail: "c@example.com"}},
		Settings:   &fakeSettings{cfg: h.cfg},
		Now:        func() time.Time { return h.now },
	})
	if err != nil {
		t.Fatalf("NewService: %v", err)
	}
	h.svc = svc
	return h
}

func overdueContract() types.Contract {
	return types.Contract{
		ID:         uuid.New(),
		TenantID:   uuid.New(),
		SiteID:     uuid.New(),
		BoxID:      uuid.New(),
		CustomerID: uuid.New(),
		BoxNumber:  "B-007",
		SiteName:   "Lyon Sud",
	}
}

func overdueSnapshot(total int64, days int) debt.Snapshot {
	return debt.Snapshot{
		Total:        decimal.NewFromInt(total),
		StorageFees:  decimal.NewFromInt(total),
		LateFees:     decimal.Zero,
		LegalFees:    decimal.Zero,
		DaysOverdue:  days,
		InvoiceCount: 1,
	}
}

func TestEnsureCase_belowThresholdYieldsNothing(t *testing.T) {
	h := newAuctionServiceTest(t)

	auction, err := h.svc.EnsureCase(context.Background(), overdueContract(), overdueSnapshot(50, 35), h.cfg)
	if err != nil {
		t.Fatalf("EnsureCase: %v", err)
	}
	if auction != nil {
		t.Fatalf("expected no case below minimum debt, got %+v", auction)
	}
	if h.repo.created != 0 {
		t.Fatal("expected no auction rows")
	}
}

func TestEnsureCase_opensCase(t *testing.T) {
	h := newAuctionServiceTest(t)

	auction, err := h.svc.EnsureCase(context.Background(), overdueContract(), overdueSnapshot(500, 35), h.cfg)
	if err != nil {
		t.Fatalf("EnsureCase: %v", err)
	}
	if auction == nil {
		t.Fatal("expected a case")
	}
	if auction.AuctionNumber != "AUC202600001" {
		t.Fatalf("unexpected auction number: %s", auction.AuctionNumber)
	}
	if !auction.StartingBid.Equal(decimal.NewFromInt(50)) {
		t.Fatalf("expected starting bid 50, got %s", auction.StartingBid)
	}
	if auction.Status != enums.AuctionStatusPending {
		t.Fatalf("expected pending status, got %s", auction.Status)
	}
}

func TestEnsureCase_refreshesExistingPendingDebt(t *testing.T) {
	contract := overdueContract()
	existing := &models.Auction{
		ID:         uuid.New(),
		ContractID: contract.ID,
		Status:     enums.AuctionStatusPending,
		TotalDebt:  decimal.NewFromInt(200),
	}
	h := newAuctionServiceTest(t, existing)

	auction, err := h.svc.EnsureCase(context.Background(), contract, overdueSnapshot(320, 50), h.cfg)
	if err != nil {
		t.Fatalf("EnsureCase: %v", err)
	}
	if auction.ID != existing.ID {
		t.Fatal("expected the existing case back")
	}
	if !auction.TotalDebt.Equal(decimal.NewFromInt(320)) {
		t.Fatalf("expected refreshed debt, got %s", auction.TotalDebt)
	}
	if auction.DaysOverdue != 50 {
		t.Fatalf("expected refreshed days overdue, got %d", auction.DaysOverdue)
	}
	if h.repo.created != 0 {
		t.Fatal("must not open a second case for the same contract")
	}
}

func TestEnsureCase_refreshRecomputesStartingBid(t *testing.T) {
	contract := overdueContract()
	existing := &models.Auction{
		ID:          uuid.New(),
		ContractID:  contract.ID,
		Status:      enums.AuctionStatusPending,
		TotalDebt:   decimal.NewFromInt(200),
		StartingBid: decimal.NewFromInt(20),
	}
	h := newAuctionServiceTest(t, existing)

	auction, err := h.svc.EnsureCase(context.Background(), contract, overdueSnapshot(600, 70), h.cfg)
	if err != nil {
		t.Fatalf("EnsureCase: %v", err)
	}
	if !auction.StartingBid.Equal(decimal.NewFromInt(60)) {
		t.Fatalf("expected starting bid to track the refreshed debt, got %s", auction.StartingBid)
	}
	if !h.repo.rows[existing.ID].StartingBid.Equal(decimal.NewFromInt(60)) {
		t.Fatal("expected the persisted row to carry the recomputed starting bid")
	}
}

func TestEnsureCase_refreshedDebtBelowThresholdStopsEscalation(t *testing.T) {
	contract := overdueContract()
	existing := &models.Auction{
		ID:         uuid.New(),
		ContractID: contract.ID,
		Status:     enums.AuctionStatusPending,
		TotalDebt:  decimal.NewFromInt(200),
	}
	h := newAuctionServiceTest(t, existing)

	auction, err := h.svc.EnsureCase(context.Background(), contract, overdueSnapshot(60, 40), h.cfg)
	if err != nil {
		t.Fatalf("EnsureCase: %v", err)
	}
	if auction != nil {
		t.Fatalf("expected no case back once debt fell under the minimum, got %+v", auction)
	}
	if !h.repo.rows[existing.ID].TotalDebt.Equal(decimal.NewFromInt(60)) {
		t.Fatal("expected the debt figures to stay refreshed on the pending row")
	}
}

func TestEnsureCase_leavesScheduledCaseUntouched(t *testing.T) {
	contract := overdueContract()
	existing := &models.Auction{
		ID:         uuid.New(),
		ContractID: contract.ID,
		Status:     enums.AuctionStatusScheduled,
		TotalDebt:  decimal.NewFromInt(200),
	}
	h := newAuctionServiceTest(t, existing)

	auction, err := h.svc.EnsureCase(context.Background(), contract, overdueSnapshot(320, 50), h.cfg)
	if err != nil {
		t.Fatalf("EnsureCase: %v", err)
	}
	if !auction.TotalDebt.Equal(decimal.NewFromInt(200)) {
		t.Fatal("debt figures are frozen once the sale is scheduled")
	}
}

func TestProcessNotices_firesFirstGate(t *testing.T) {
	auction := &models.Auction{ID: uuid.New(), Status: enums.AuctionStatusPending, DaysOverdue: 35}
	h := newAuctionServiceTest(t, auction)

	gate, err := h.svc.ProcessNotices(context.Background(), auction.ID, overdueContract(), h.cfg)
	if err != nil {
		t.Fatalf("ProcessNotices: %v", err)
	}
	if gate != notices.GateFirstNotice {
		t.Fatalf("expected first notice gate, got %s", gate)
	}
	if auction.FirstNoticeDate == nil {
		t.Fatal("expected first notice date set")
	}
	if len(h.dispatcher.dispatched) != 1 || h.dispatcher.dispatched[0] != enums.NoticeTypeFirstWarning {
		t.Fatalf("unexpected dispatches: %v", h.dispatcher.dispatched)
	}
}

func TestProcessNotices_failedSendLeavesGateOpen(t *testing.T) {
	auction := &models.Auction{ID: uuid.New(), Status: enums.AuctionStatusPending, DaysOverdue: 35}
	h := newAuctionServiceTest(t, auction)
	h.dispatcher.progressed = false

	gate, err := h.svc.ProcessNotices(context.Background(), auction.ID, overdueContract(), h.cfg)
	if err != nil {
		t.Fatalf("ProcessNotices: %v", err)
	}
	if gate != notices.GateNone {
		t.Fatalf("expected no gate performed, got %s", gate)
	}
	if auction.FirstNoticeDate != nil {
		t.Fatal("failed send must not advance the escalation date")
	}
}

func TestProcessNotices_schedulesAuction(t *testing.T) {
	stamp := time.Date(2026, 4, 1, 0, 0, 0, 0, time.UTC)
	auction := &models.Auction{
		ID:               uuid.New(),
		Status:           enums.AuctionStatusPending,
		DaysOverdue:      80,
		TotalDebt:        decimal.NewFromInt(400),
		FirstNoticeDate:  &stamp,
		SecondNoticeDate: &stamp,
		FinalNoticeDate:  &stamp,
	}
	h := newAuctionServiceTest(t, auction)
	h.cfg.RequireReservePrice = true

	gate, err := h.svc.ProcessNotices(context.Background(), auction.ID, overdueContract(), h.cfg)
	if err != nil {
		t.Fatalf("ProcessNotices: %v", err)
	}
	if gate != notices.GateScheduleAuction {
		t.Fatalf("expected schedule gate, got %s", gate)
	}
	if auction.Status != enums.AuctionStatusScheduled {
		t.Fatalf("expected scheduled status, got %s", auction.Status)
	}
	wantStart := h.now.AddDate(0, 0, 7)
	if auction.AuctionStartDate == nil || !auction.AuctionStartDate.Equal(wantStart) {
		t.Fatalf("expected start %s, got %v", wantStart, auction.AuctionStartDate)
	}
	wantEnd := wantStart.AddDate(0, 0, 7)
	if auction.AuctionEndDate == nil || !auction.AuctionEndDate.Equal(wantEnd) {
		t.Fatalf("expected end %s, got %v", wantEnd, auction.AuctionEndDate)
	}
	if auction.ReservePrice == nil || !auction.ReservePrice.Equal(auction.TotalDebt) {
		t.Fatalf("expected reserve pinned to total debt, got %v", auction.ReservePrice)
	}
	if len(h.dispatcher.dispatched) != 1 || h.dispatcher.dispatched[0] != enums.NoticeTypeAuctionScheduled {
		t.Fatalf("unexpected dispatches: %v", h.dispatcher.dispatched)
	}
}

func TestProcessNotices_skipsNonPending(t *testing.T) {
	auction := &models.Auction{ID: uuid.New(), Status: enums.AuctionStatusActive, DaysOverdue: 90}
	h := newAuctionServiceTest(t, auction)

	gate, err := h.svc.ProcessNotices(context.Background(), auction.ID, overdueContract(), h.cfg)
	if err != nil {
		t.Fatalf("ProcessNotices: %v", err)
	}
	if gate != notices.GateNone {
		t.Fatalf("expected no gate, got %s", gate)
	}
}

func TestBegin_requiresStartDateReached(t *testing.T) {
	start := time.Date(2026, 5, 12, 12, 0, 0, 0, time.UTC)
	auction := &models.Auction{ID: uuid.New(), Status: enums.AuctionStatusScheduled, AuctionStartDate: &start}
	h := newAuctionServiceTest(t, auction)

	if _, err := h.svc.Begin(context.Background(), auction.ID); !pkgerrors.HasCode(err, pkgerrors.CodeStateConflict) {
		t.Fatalf("expected state conflict before start date, got %v", err)
	}

	h.now = start.Add(time.Minute)
	opened, err := h.svc.Begin(context.Background(), auction.ID)
	if err != nil {
		t.Fatalf("Begin: %v", err)
	}
	if opened.Status != enums.AuctionStatusActive {
		t.Fatalf("expected active status, got %s", opened.Status)
	}
}

func TestBegin_rejectsNonScheduled(t *testing.T) {
	auction := &models.Auction{ID: uuid.New(), Status: enums.AuctionStatusPending}
	h := newAuctionServiceTest(t, auction)

	if _, err := h.svc.Begin(context.Background(), auction.ID); !pkgerrors.HasCode(err, pkgerrors.CodeStateConflict) {
		t.Fatalf("expected state conflict, got %v", err)
	}
}

func activeAuction(reserve *decimal.Decimal) *models.Auction {
	start := time.Date(2026, 5, 1, 12, 0, 0, 0, time.UTC)
	end := start.AddDate(0, 0, 7)
	return &models.Auction{
		ID:               uuid.New(),
		ContractID:       uuid.New(),
		BoxID:            uuid.New(),
		Status:           enums.AuctionStatusActive,
		TotalDebt:        decimal.NewFromInt(400),
		StartingBid:      decimal.NewFromInt(40),
		CurrentBid:       decimal.Zero,
		ReservePrice:     reserve,
		AuctionStartDate: &start,
		AuctionEndDate:   &end,
	}
}

func TestEnd_soldWhenReserveMet(t *testing.T) {
	reserve := decimal.NewFromInt(300)
	auction := activeAuction(&reserve)
	h := newAuctionServiceTest(t, auction)
	h.bids.highest = &models.AuctionBid{AuctionID: auction.ID, BidderID: uuid.New(), Amount: decimal.NewFromInt(350)}

	closed, err := h.svc.End(context.Background(), auction.ID)
	if err != nil {
		t.Fatalf("End: %v", err)
	}
	if closed.Status != enums.AuctionStatusSold {
		t.Fatalf("expected sold, got %s", closed.Status)
	}
	if closed.WinningBid == nil || !closed.WinningBid.Equal(decimal.NewFromInt(350)) {
		t.Fatalf("unexpected winning bid: %v", closed.WinningBid)
	}
	if len(h.settlement.processed) != 1 {
		t.Fatal("expected settlement to run")
	}
	if len(h.dispatcher.results) != 1 || !h.dispatcher.results[0] {
		t.Fatalf("expected sold result notice, got %v", h.dispatcher.results)
	}
}

func TestEnd_unsoldWhenReserveNotMet(t *testing.T) {
	reserve := decimal.NewFromInt(500)
	auction := activeAuction(&reserve)
	h := newAuctionServiceTest(t, auction)
	h.bids.highest = &models.AuctionBid{AuctionID: auction.ID, BidderID: uuid.New(), Amount: decimal.NewFromInt(350)}

	closed, err := h.svc.End(context.Background(), auction.ID)
	if err != nil {
		t.Fatalf("End: %v", err)
	}
	if closed.Status != enums.AuctionStatusUnsold {
		t.Fatalf("expected unsold, got %s", closed.Status)
	}
	if len(h.settlement.processed) != 0 {
		t.Fatal("settlement must not run below reserve")
	}
	if len(h.dispatcher.results) != 1 || h.dispatcher.results[0] {
		t.Fatalf("expected unsold result notice, got %v", h.dispatcher.results)
	}
}

func TestEnd_unsoldWithoutBids(t *testing.T) {
	auction := activeAuction(nil)
	h := newAuctionServiceTest(t, auction)

	closed, err := h.svc.End(context.Background(), auction.ID)
	if err != nil {
		t.Fatalf("End: %v", err)
	}
	if closed.Status != enums.AuctionStatusUnsold {
		t.Fatalf("expected unsold, got %s", closed.Status)
	}
	if len(h.settlement.processed) != 0 {
		t.Fatal("settlement must not run without bids")
	}
}

func TestEnd_rejectsNonActive(t *testing.T) {
	auction := &models.Auction{ID: uuid.New(), ContractID: uuid.New(), Status: enums.AuctionStatusScheduled}
	h := newAuctionServiceTest(t, auction)

	if _, err := h.svc.End(context.Background(), auction.ID); !pkgerrors.HasCode(err, pkgerrors.CodeInvalidEndState) {
		t.Fatalf("expected invalid end state, got %v", err)
	}
}

func TestRedeem_beforeBiddingOpens(t *testing.T) {
	auction := &models.Auction{ID: uuid.New(), Status: enums.AuctionStatusScheduled}
	h := newAuctionServiceTest(t, auction)

	redeemed, err := h.svc.Redeem(context.Background(), auction.ID)
	if err != nil {
		t.Fatalf("Redeem: %v", err)
	}
	if redeemed.Status != enums.AuctionStatusRedeemed {
		t.Fatalf("expected redeemed, got %s", redeemed.Status)
	}
	if len(h.notices.cancelled) != 1 {
		t.Fatal("expected pending notices cancelled")
	}
}

func TestRedeem_rejectedOnceActive(t *testing.T) {
	auction := activeAuction(nil)
	h := newAuctionServiceTest(t, auction)

	if _, err := h.svc.Redeem(context.Background(), auction.ID); !pkgerrors.HasCode(err, pkgerrors.CodeInvalidRedemption) {
		t.Fatalf("expected invalid redemption, got %v", err)
	}
}

func TestCancel_requiresReason(t *testing.T) {
	auction := &models.Auction{ID: uuid.New(), Status: enums.AuctionStatusPending}
	h := newAuctionServiceTest(t, auction)

	if _, err := h.svc.Cancel(context.Background(), auction.ID, ""); !pkgerrors.HasCode(err, pkgerrors.CodeValidation) {
		t.Fatalf("expected validation error, got %v", err)
	}
}

func TestCancel_fromActiveState(t *testing.T) {
	auction := activeAuction(nil)
	h := newAuctionServiceTest(t, auction)

	cancelled, err := h.svc.Cancel(context.Background(), auction.ID, "legal hold")
	if err != nil {
		t.Fatalf("Cancel: %v", err)
	}
	if cancelled.Status != enums.AuctionStatusCancelled {
		t.Fatalf("expected cancelled, got %s", cancelled.Status)
	}
	if cancelled.CancelReason == nil || *cancelled.CancelReason != "legal hold" {
		t.Fatalf("expected reason recorded, got %v", cancelled.CancelReason)
	}
	if len(h.notices.cancelled) != 1 {
		t.Fatal("expected pending notices cancelled")
	}
}

func TestCancel_rejectsTerminalState(t *testing.T) {
	auction := &models.Auction{ID: uuid.New(), Status: enums.AuctionStatusSold}
	h := newAuctionServiceTest(t, auction)

	if _, err := h.svc.Cancel(context.Background(), auction.ID, "too late"); !pkgerrors.HasCode(err, pkgerrors.CodeStateConflict) {
		t.Fatalf("expected state conflict, got %v", err)
	}
}

func TestBeginDue_opensEveryDueAuction(t *testing.T) {
	start := time.Date(2026, 5, 9, 12, 0, 0, 0, time.UTC)
	first := &models.Auction{ID: uuid.New(), AuctionNumber: "AUC202600001", Status: enums.AuctionStatusScheduled, AuctionStartDate: &start}
	second := &models.Auction{ID: uuid.New(), AuctionNumber: "AUC202600002", Status: enums.AuctionStatusScheduled, AuctionStartDate: &start}
	h := newAuctionServiceTest(t, first, second)

	opened, err := h.svc.BeginDue(context.Background(), h.now)
	if err != nil {
		t.Fatalf("BeginDue: %v", err)
	}
	if opened != 2 {
		t.Fatalf("expected 2 opened, got %d", opened)
	}
	if first.Status != enums.AuctionStatusActive || second.Status != enums.AuctionStatusActive {
		t.Fatal("expected both auctions active")
	}
}

func TestRemindEndingSoon_marksOnlyOnProgress(t *testing.T) {
	end := time.Date(2026, 5, 10, 20, 0, 0, 0, time.UTC)
	start := end.AddDate(0, 0, -7)
	auction := &models.Auction{
		ID:               uuid.New(),
		ContractID:       uuid.New(),
		AuctionNumber:    "AUC202600003",
		Status:           enums.AuctionStatusActive,
		AuctionStartDate: &start,
		AuctionEndDate:   &end,
	}
	h := newAuctionServiceTest(t, auction)

	sent, err := h.svc.RemindEndingSoon(context.Background(), h.now)
	if err != nil {
		t.Fatalf("RemindEndingSoon: %v", err)
	}
	if sent != 1 {
		t.Fatalf("expected 1 reminder, got %d", sent)
	}
	if auction.ReminderSentAt == nil {
		t.Fatal("expected reminder timestamp set")
	}

	// Second sweep inside the window must not send again.
	sent, err = h.svc.RemindEndingSoon(context.Background(), h.now)
	if err != nil {
		t.Fatalf("RemindEndingSoon: %v", err)
	}
	if sent != 0 {
		t.Fatalf("expected no repeat reminder, got %d", sent)
	}
}

func TestRemindEndingSoon_failedSendRetriesNextSweep(t *testing.T) {
	end := time.Date(2026, 5, 10, 20, 0, 0, 0, time.UTC)
	start := end.AddDate(0, 0, -7)
	auction := &models.Auction{
		ID:               uuid.New(),
		ContractID:       uuid.New(),
		AuctionNumber:    "AUC202600004",
		Status:           enums.AuctionStatusActive,
		AuctionStartDate: &start,
		AuctionEndDate:   &end,
	}
	h := newAuctionServiceTest(t, auction)
	h.dispatcher.progressed = false

	sent, err := h.svc.RemindEndingSoon(context.Background(), h.now)
	if err != nil {
		t.Fatalf("RemindEndingSoon: %v", err)
	}
	if sent != 0 {
		t.Fatalf("expected no reminder counted, got %d", sent)
	}
	if auction.ReminderSentAt != nil {
		t.Fatal("failed send must leave the reminder timestamp unset")
	}
}
