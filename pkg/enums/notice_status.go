package enums

import "fmt"

// NoticeStatus maps to the auction_notice_status enum in Postgres.
type NoticeStatus string

const (
	NoticeStatusPending   NoticeStatus = "pending"
	NoticeStatusSent      NoticeStatus = "sent"
	NoticeStatusFailed    NoticeStatus = "failed"
	NoticeStatusCancelled NoticeStatus = "cancelled"
)

var validNoticeStatuses = []NoticeStatus{
	NoticeStatusPending,
	NoticeStatusSent,
	NoticeStatusFailed,
	NoticeStatusCancelled,
}

// String implements fmt.Stringer.
func (s NoticeStatus) String() string {
	return string(s)
}

// IsValid reports whether the value is known.
func (s NoticeStatus) IsValid() bool {
	for _, candidate := range validNoticeStatuses {
		if candidate == s {
			return true
		}
	}
	return false
}

// ParseNoticeStatus converts raw input into a NoticeStatus.
func ParseNoticeStatus(value string) (NoticeStatus, error) {
	for _, candidate := range validNoticeStatuses {
		if string(candidate) == value {
			return candidate, nil
		}
	}
	return "", fmt.Errorf("invalid notice status %q", value)
}
