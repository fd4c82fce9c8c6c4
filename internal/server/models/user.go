// Package models defines server-side data models persisted by the
// repositories.
package models

import "time"

// User is an account of the identity endpoints. Email is stored lower-case.
type User struct {
	ID            string
	Email         string
	Name          string
	PasswordHash  []byte
	EmailVerified bool
	CreatedAt     time.Time
}
