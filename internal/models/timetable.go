package models

import "time"

// Period is a fixed daily time slot: an id plus a start offset in minutes
// since midnight. Its end offset is derived from the period length.
type Period struct {
	ID          int `db:"id" json:"id"`
	StartMinute int `db:"start_minute" json:"start_minute"`
}

// TimetableEntry is one recurring slot of the default weekly schedule.
// DayOfWeek follows time.Weekday numbering (0 = Sunday).
type TimetableEntry struct {
	ID           string    `db:"id" json:"id"`
	ClassID      int64     `db:"class_id" json:"class_id"`
	RoomID       int64     `db:"room_id" json:"room_id"`
	PeriodID     int       `db:"period_id" json:"period_id"`
	TeacherID    int64     `db:"teacher_id" json:"teacher_id"`
	Subject      string    `db:"subject" json:"subject"`
	DayOfWeek    int       `db:"day_of_week" json:"day_of_week"`
	DoubleLesson bool      `db:"double_lesson" json:"double_lesson"`
	CreatedAt    time.Time `db:"created_at" json:"created_at"`
	UpdatedAt    time.Time `db:"updated_at" json:"updated_at"`
}

// Substitution overrides the recurring timetable for one calendar date. A
// substitution sharing a period id with a recurring entry shadows it; one
// with a new period id adds a slot the base timetable does not have.
type Substitution struct {
	ID           string    `db:"id" json:"id"`
	ClassID      int64     `db:"class_id" json:"class_id"`
	RoomID       int64     `db:"room_id" json:"room_id"`
	PeriodID     int       `db:"period_id" json:"period_id"`
	TeacherID    int64     `db:"teacher_id" json:"teacher_id"`
	Subject      string    `db:"subject" json:"subject"`
	DayOfWeek    int       `db:"day_of_week" json:"day_of_week"`
	DoubleLesson bool      `db:"double_lesson" json:"double_lesson"`
	Date         time.Time `db:"date" json:"date"`
	CreatedAt    time.Time `db:"created_at" json:"created_at"`
	UpdatedAt    time.Time `db:"updated_at" json:"updated_at"`
}

// ResolvedEntry is one slot of an effective schedule after merging the
// recurring timetable with date-specific substitutions.
type ResolvedEntry struct {
	ClassID      int64  `json:"class_id"`
	RoomID       int64  `json:"room_id"`
	PeriodID     int    `json:"period_id"`
	TeacherID    int64  `json:"teacher_id"`
	Subject      string `json:"subject"`
	DoubleLesson bool   `json:"double_lesson"`
	StartMinute  int    `json:"start_minute"`
	EndMinute    int    `json:"end_minute"`
	Substituted  bool   `json:"substituted"`
}

// Contains reports whether the minute-of-day offset falls inside the
// entry's [start, end) interval.
func (e ResolvedEntry) Contains(minute int) bool {
	return minute >= e.StartMinute && minute < e.EndMinute
}
