package notices

import (
	"github.com/haythemsaa/boxibox-backend/pkg/db/models"
)

// Progress is the notice escalation sub-state of a lien case, derived
// deterministically from the auction's notice timestamps.
type Progress int

const (
	ProgressNone Progress = iota
	ProgressFirst
	ProgressSecond
	ProgressFinal
)

// String implements fmt.Stringer.
func (p Progress) String() string {
	switch p {
	case ProgressFirst:
		return "first"
	case ProgressSecond:
		return "second"
	case ProgressFinal:
		return "final"
	default:
		return "none"
	}
}

// ProgressOf computes the escalation sub-state from the persisted notice dates.
func ProgressOf(auction *models.Auction) Progress {
	switch {
	case auction.FinalNoticeDate != nil:
		return ProgressFinal
	case auction.SecondNoticeDate != nil:
		return ProgressSecond
	case auction.FirstNoticeDate != nil:
		return ProgressFirst
	default:
		return ProgressNone
	}
}

// Gate identifies the single escalation step that is due for an auction.
type Gate int

const (
	GateNone Gate = iota
	GateFirstNotice
	GateSecondNotice
	GateFinalNotice
	GateScheduleAuction
)

// String implements fmt.Stringer.
func (g Gate) String() string {
	switch g {
	case GateFirstNotice:
		return "first_notice"
	case GateSecondNotice:
		return "second_notice"
	case GateFinalNotice:
		return "final_notice"
	case GateScheduleAuction:
		return "schedule_auction"
	default:
		return "none"
	}
}

// NextGate evaluates the escalation policy in strict order and returns the
// first gate whose day threshold is met. At most one gate fires per run; an
// auction that already has a start date, or whose overdue clock has not reached
// the next threshold, yields GateNone.
func NextGate(auction *models.Auction, settings models.AuctionSettings) (Gate, bool) {
	days := auction.DaysOverdue

	switch ProgressOf(auction) {
	case ProgressNone:
		if days >= settings.DaysBeforeFirstNotice {
			return GateFirstNotice, true
		}
	case ProgressFirst:
		if days >= settings.DaysBeforeSecondNotice {
			return GateSecondNotice, true
		}
	case ProgressSecond:
		if days >= settings.DaysBeforeFinalNotice {
			return GateFinalNotice, true
		}
	case ProgressFinal:
		if auction.AuctionStartDate == nil && days >= settings.DaysBeforeAuction {
			return GateScheduleAuction, true
		}
	}
	return GateNone, false
}
