package voting

import (
	"time"

	"github.com/alex-pricope/online-voting-system/storage"
)

// StatusAt derives a poll status from its window: not started before start,
// in progress in [start, end), ended from end on.
func StatusAt(start, end, now time.Time) storage.PollStatus {
	switch {
	case now.Before(start):
		return storage.PollStatusNotStarted
	case now.Before(end):
		return storage.PollStatusInProgress
	default:
		return storage.PollStatusEnded
	}
}

// DisplayStatus is the status label the frontend renders.
func DisplayStatus(status storage.PollStatus) string {
	switch status {
	case storage.PollStatusNotStarted:
		return "upcoming"
	case storage.PollStatusInProgress:
		return "active"
	default:
		return "ended"
	}
}
