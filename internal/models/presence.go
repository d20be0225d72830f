package models

import "time"

// PresenceAction selects which bound of the presence window a call rewrites.
type PresenceAction string

const (
	ActionSetPresentFrom  PresenceAction = "set_present_from"
	ActionSetPresentUntil PresenceAction = "set_present_until"
	ActionSetAbsent       PresenceAction = "set_absent"
)

// Valid returns true when the action is a supported value.
func (a PresenceAction) Valid() bool {
	switch a {
	case ActionSetPresentFrom, ActionSetPresentUntil, ActionSetAbsent:
		return true
	default:
		return false
	}
}

// PresenceRecord stores a student's presence window for one period on one
// date. Uniquely keyed by (student_id, date, period_id); later writes adjust
// the window instead of inserting duplicates. The room is fixed when the
// record is created.
type PresenceRecord struct {
	ID           string    `db:"id" json:"id"`
	StudentID    int64     `db:"student_id" json:"student_id"`
	Date         time.Time `db:"date" json:"date"`
	PeriodID     int       `db:"period_id" json:"period_id"`
	PresentFrom  int       `db:"present_from" json:"present_from"`
	PresentUntil int       `db:"present_until" json:"present_until"`
	RoomID       int64     `db:"room_id" json:"room_id"`
	CreatedAt    time.Time `db:"created_at" json:"created_at"`
	UpdatedAt    time.Time `db:"updated_at" json:"updated_at"`
}

// ActiveAt reports whether the window still covers the given minute-of-day.
// A record whose window has elapsed reads as absent even though it remains
// in storage.
func (r *PresenceRecord) ActiveAt(minute int) bool {
	return r != nil && r.PresentUntil > minute
}

// PresenceStatus is the is-present answer for a student, carrying the
// record when one exists.
type PresenceStatus struct {
	Present bool            `json:"present"`
	Record  *PresenceRecord `json:"record,omitempty"`
}

// StudentPresence pairs a roster student with their presence window for the
// class snapshot views pushed to teacher dashboards.
type StudentPresence struct {
	StudentID    int64     `json:"user"`
	PresentFrom  *int      `json:"present_from"`
	PresentUntil *int      `json:"present_until"`
	Date         time.Time `json:"date"`
}
