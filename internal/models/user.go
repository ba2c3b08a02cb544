package models

import "time"

// User represents a user row.
type User struct {
	UserID       string `db:"user_id"`
	Username     string `db:"username"`
	Email        string `db:"email"`
	PasswordHash string `db:"password_hash"`
	Provider     string `db:"provider"`
	AuditFields
	DeletedAt *time.Time `db:"deleted_at"`
}
