package models

import "time"

// Level is the integer permission tier gating operations.
type Level int

const (
	LevelStudent Level = 1
	LevelTeacher Level = 2
	LevelAdmin   Level = 3
)

// Valid returns true when the level is a supported tier.
func (l Level) Valid() bool {
	return l >= LevelStudent && l <= LevelAdmin
}

// User represents an identity stored in the users table. PasswordHash is
// nullable: NULL means the account still has to set its first password.
type User struct {
	ID           int64     `db:"id" json:"id"`
	FirstName    string    `db:"first_name" json:"first_name"`
	MiddleName   *string   `db:"middle_name" json:"middle_name,omitempty"`
	LastName     string    `db:"last_name" json:"last_name"`
	ShortCode    string    `db:"short_code" json:"short_code"`
	Role         Level     `db:"role" json:"role"`
	PasswordHash *string   `db:"password_hash" json:"-"`
	CreatedAt    time.Time `db:"created_at" json:"created_at"`
	UpdatedAt    time.Time `db:"updated_at" json:"updated_at"`
}

// HasPassword reports whether the account completed the bootstrap flow.
func (u *User) HasPassword() bool {
	return u.PasswordHash != nil && *u.PasswordHash != ""
}

// UserFilter captures filtering criteria for listing users.
type UserFilter struct {
	Role      *Level
	Search    string
	Page      int
	PageSize  int
	SortBy    string
	SortOrder string
}
