package bids

import (
	"context"
	"fmt"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"

	"github.com/haythemsaa/boxibox-backend/pkg/db/models"
)

func setupBidsTestDB(t *testing.T) *gorm.DB {
	t.Helper()

	dsn := fmt.Sprintf("file:%s?mode=memory&cache=shared", t.Name())
	db, err := gorm.Open(sqlite.Open(dsn), &gorm.Config{})
	require.NoError(t, err)

	ddl := `
CREATE TABLE IF NOT EXISTS auction_bids (
  id TEXT PRIMARY KEY,
  auction_id TEXT NOT NULL,
  bidder_id TEXT NOT NULL,
  amount NUMERIC NOT NULL,
  placed_at DATETIME NOT NULL,
  metadata TEXT,
  created_at DATETIME
);`
	require.NoError(t, db.Exec(ddl).Error)
	return db
}

func seedBid(t *testing.T, db *gorm.DB, auctionID uuid.UUID, amount int64, placedAt time.Time) *models.AuctionBid {
	t.Helper()
	bid := &models.AuctionBid{
		ID:        uuid.New(),
		AuctionID: auctionID,
		BidderID:  uuid.New(),
		Amount:    decimal.NewFromInt(amount),
		PlacedAt:  placedAt,
	}
	require.NoError(t, db.Create(bid).Error)
	return bid
}

func TestBidRepo_highestForAuction(t *testing.T) {
	db := setupBidsTestDB(t)
	repo := NewRepository(db)
	ctx := context.Background()

	auctionID := uuid.New()
	base := time.Date(2026, 5, 10, 12, 0, 0, 0, time.UTC)

	seedBid(t, db, auctionID, 50, base)
	top := seedBid(t, db, auctionID, 80, base.Add(time.Minute))
	seedBid(t, db, uuid.New(), 500, base) // other auction

	highest, err := repo.HighestForAuction(ctx, auctionID)
	require.NoError(t, err)
	require.NotNil(t, highest)
	assert.Equal(t, top.ID, highest.ID)
	assert.True(t, highest.Amount.Equal(decimal.NewFromInt(80)))
}

func TestBidRepo_highestTieGoesToEarliest(t *testing.T) {
	db := setupBidsTestDB(t)
	repo := NewRepository(db)
	ctx := context.Background()

	auctionID := uuid.New()
	base := time.Date(2026, 5, 10, 12, 0, 0, 0, time.UTC)

	earliest := seedBid(t, db, auctionID, 80, base)
	seedBid(t, db, auctionID, 80, base.Add(time.Second))

	highest, err := repo.HighestForAuction(ctx, auctionID)
	require.NoError(t, err)
	require.NotNil(t, highest)
	assert.Equal(t, earliest.ID, highest.ID)
}

func TestBidRepo_highestWithoutBids(t *testing.T) {
	db := setupBidsTestDB(t)
	repo := NewRepository(db)

	highest, err := repo.HighestForAuction(context.Background(), uuid.New())
	require.NoError(t, err)
	assert.Nil(t, highest)
}

func TestBidRepo_listAndCount(t *testing.T) {
	db := setupBidsTestDB(t)
	repo := NewRepository(db)
	ctx := context.Background()

	auctionID := uuid.New()
	base := time.Date(2026, 5, 10, 12, 0, 0, 0, time.UTC)

	second := seedBid(t, db, auctionID, 60, base.Add(time.Minute))
	first := seedBid(t, db, auctionID, 50, base)

	rows, err := repo.ListByAuction(ctx, auctionID)
	require.NoError(t, err)
	require.Len(t, rows, 2)
	assert.Equal(t, first.ID, rows[0].ID, "bids list in placement order")
	assert.Equal(t, second.ID, rows[1].ID)

	count, err := repo.CountForAuction(ctx, auctionID)
	require.NoError(t, err)
	assert.Equal(t, int64(2), count)
}
