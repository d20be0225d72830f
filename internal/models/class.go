package models

import "time"

// Class groups students under exactly one primary teacher, with an optional
// secondary teacher. Enrollment is tracked separately.
type Class struct {
	ID                 int64     `db:"id" json:"id"`
	Short              string    `db:"short" json:"short"`
	Description        string    `db:"description" json:"description"`
	TeacherID          int64     `db:"teacher_id" json:"teacher_id"`
	SecondaryTeacherID *int64    `db:"secondary_teacher_id" json:"secondary_teacher_id,omitempty"`
	CreatedAt          time.Time `db:"created_at" json:"created_at"`
	UpdatedAt          time.Time `db:"updated_at" json:"updated_at"`
}

// Enrollment assigns a student to their one current class. Re-enrolling
// moves the student (upsert on student_id).
type Enrollment struct {
	StudentID int64     `db:"student_id" json:"student_id"`
	ClassID   int64     `db:"class_id" json:"class_id"`
	UpdatedAt time.Time `db:"updated_at" json:"updated_at"`
}
