// Package models defines server-side data models persisted in the database.
package models

import "time"

// User is an account holder. PasswordHash is a bcrypt hash and never leaves
// the server.
type User struct {
	ID           string    `json:"id"`
	UserName     string    `json:"username"`
	PasswordHash string    `json:"-"`
	CreatedAt    time.Time `json:"createdAt"`
}
