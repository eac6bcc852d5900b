package models

import (
	"encoding/json"
	"time"

	"github.com/google/uuid"

	"github.com/haythemsaa/boxibox-backend/pkg/enums"
)

// AuctionNotice is one legally-paced notice attempt. History is append-only:
// rows are never deleted, only status-updated.
type AuctionNotice struct {
	ID         uuid.UUID           `gorm:"column:id;type:uuid;default:gen_random_uuid();primaryKey"`
	AuctionID  uuid.UUID           `gorm:"column:auction_id;type:uuid;not null;index"`
	NoticeType enums.NoticeType    `gorm:"column:notice_type;type:auction_notice_type;not null"`
	Channel    enums.NoticeChannel `gorm:"column:channel;type:auction_notice_channel;not null;default:'email'"`
	Status     enums.NoticeStatus  `gorm:"column:status;type:auction_notice_status;not null;default:'pending'"`
	Content    string              `gorm:"column:content"`
	SentAt     *time.Time          `gorm:"column:sent_at"`
	Metadata   json.RawMessage     `gorm:"column:metadata;type:jsonb"`
	CreatedAt  time.Time           `gorm:"column:created_at;autoCreateTime"`
	UpdatedAt  time.Time           `gorm:"column:updated_at;autoUpdateTime"`
}
