package domain

import "strings"

// PlayStatus is the state of a game in a user's library.
type PlayStatus string

const (
	StatusPlaying    PlayStatus = "playing"
	StatusCompleted  PlayStatus = "completed"
	StatusDropped    PlayStatus = "dropped"
	StatusBacklog    PlayStatus = "backlog"
	StatusWishlist   PlayStatus = "wishlist"
	StatusOnHold     PlayStatus = "on_hold"
	StatusNotStarted PlayStatus = "not_started"
)

// playStatusLabels is the fixed status -> facet label table.
var playStatusLabels = map[PlayStatus]string{
	StatusPlaying:    "Playing",
	StatusCompleted:  "Completed",
	StatusDropped:    "Dropped",
	StatusBacklog:    "Backlog",
	StatusWishlist:   "Wishlist",
	StatusOnHold:     "On Hold",
	StatusNotStarted: "Not Started",
}

// PlayStatuses lists every status in display order.
func PlayStatuses() []PlayStatus {
	return []PlayStatus{
		StatusPlaying,
		StatusCompleted,
		StatusDropped,
		StatusBacklog,
		StatusWishlist,
		StatusOnHold,
		StatusNotStarted,
	}
}

// ParsePlayStatus accepts a status value case-insensitively.
func ParsePlayStatus(s string) (PlayStatus, bool) {
	st := PlayStatus(strings.ToLower(strings.TrimSpace(s)))
	_, ok := playStatusLabels[st]
	return st, ok
}

// Label is the human-readable facet name. Unknown statuses echo their value.
func (s PlayStatus) Label() string {
	if l, ok := playStatusLabels[s]; ok {
		return l
	}
	return string(s)
}
