package models

import "time"

// JobSiteQuery filters and pages job-site listings.
type JobSiteQuery struct {
	ActiveOnly bool
	Offset     int
	Limit      int
}

// EntryQuery filters time entries; zero values mean "no filter".
// From/To bound ClockInAt as [From, To).
type EntryQuery struct {
	UserID    string
	JobSiteID string
	From      *time.Time
	To        *time.Time
	Offset    int
	Limit     int // 0 means no limit
}

// EntryState guards a time-entry update on the entry's current state.
type EntryState int

const (
	EntryOpen EntryState = iota + 1
	EntryClosed
)
