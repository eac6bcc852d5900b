package enums

import "fmt"

// NoticeType maps to the auction_notice_type enum in Postgres.
type NoticeType string

const (
	NoticeTypeFirstWarning     NoticeType = "first_warning"
	NoticeTypeSecondWarning    NoticeType = "second_warning"
	NoticeTypeFinalNotice      NoticeType = "final_notice"
	NoticeTypeAuctionScheduled NoticeType = "auction_scheduled"
	NoticeTypeAuctionReminder  NoticeType = "auction_reminder"
	NoticeTypeAuctionResult    NoticeType = "auction_result"
)

var validNoticeTypes = []NoticeType{
	NoticeTypeFirstWarning,
	NoticeTypeSecondWarning,
	NoticeTypeFinalNotice,
	NoticeTypeAuctionScheduled,
	NoticeTypeAuctionReminder,
	NoticeTypeAuctionResult,
}

// String implements fmt.Stringer.
func (t NoticeType) String() string {
	return string(t)
}

// IsValid reports whether the value is known.
func (t NoticeType) IsValid() bool {
	for _, candidate := range validNoticeTypes {
		if candidate == t {
			return true
		}
	}
	return false
}

// ParseNoticeType converts raw input into a NoticeType.
func ParseNoticeType(value string) (NoticeType, error) {
	for _, candidate := range validNoticeTypes {
		if string(candidate) == value {
			return candidate, nil
		}
	}
	return "", fmt.Errorf("invalid notice type %q", value)
}
