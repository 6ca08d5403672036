package models

import (
	"strings"
	"time"
)

// Judge can be assigned to any number of teams.
type Judge struct {
	ID        int       `json:"id" db:"id"`
	Name      string    `json:"name" db:"name"`
	Email     string    `json:"email" db:"email"`
	CreatedAt time.Time `json:"created_at" db:"created_at"`
}

func (j Judge) Matches(q string) bool {
	if q == "" {
		return true
	}
	return strings.Contains(strings.ToLower(j.Name), q) ||
		strings.Contains(strings.ToLower(j.Email), q)
}
