package models

import (
	"strings"
	"time"
)

type Role string

const (
	RoleParticipant Role = "participant"
	RoleAdmin       Role = "admin"
)

// Person is a registered participant. Records are immutable once created.
type Person struct {
	ID           int       `json:"id" db:"id"`
	Name         string    `json:"name" db:"name"`
	Email        string    `json:"email" db:"email"`
	Role         Role      `json:"role" db:"role"`
	PasswordHash string    `json:"-" db:"password_hash"`
	CreatedAt    time.Time `json:"created_at" db:"created_at"`
}

// DisplayName falls back to the e-mail address when no name was given.
func (p Person) DisplayName() string {
	if strings.TrimSpace(p.Name) == "" {
		return p.Email
	}
	return p.Name
}

// Matches reports whether the lower-cased query is a substring of the name or e-mail.
func (p Person) Matches(q string) bool {
	if q == "" {
		return true
	}
	return strings.Contains(strings.ToLower(p.Name), q) ||
		strings.Contains(strings.ToLower(p.Email), q)
}

// NormalizeQuery trims and lower-cases a free-text search query.
func NormalizeQuery(q string) string {
	return strings.ToLower(strings.TrimSpace(q))
}
