package models

import (
	"strings"
	"time"
	"unicode"

	"github.com/google/uuid"
)

// Project is an isolated wiki namespace with its own page store
type Project struct {
	ID          string  `json:"id" db:"id"`
	Name        string  `json:"name" db:"name"` // slug, unique
	DisplayName string  `json:"display_name" db:"display_name"`
	CreatedAt   float64 `json:"created_at" db:"created_at"`
	UpdatedAt   float64 `json:"updated_at" db:"updated_at"`
}

// NewProject creates a new project from a display name
func NewProject(displayName string) *Project {
	now := Now()
	displayName = strings.TrimSpace(displayName)
	return &Project{
		ID:          uuid.New().String(),
		Name:        Slugify(displayName),
		DisplayName: displayName,
		CreatedAt:   now,
		UpdatedAt:   now,
	}
}

// Now returns the current time as unix seconds with millisecond precision
func Now() float64 {
	return float64(time.Now().UnixMilli()) / 1000.0
}

// Slugify lower-cases a name and joins its letter/digit runs with dashes.
// "Quantum Physics!" becomes "quantum-physics".
func Slugify(name string) string {
	var b strings.Builder
	pendingDash := false
	for _, r := range strings.ToLower(name) {
		if unicode.IsLetter(r) || unicode.IsDigit(r) {
			if pendingDash && b.Len() > 0 {
				b.WriteByte('-')
			}
			pendingDash = false
			b.WriteRune(r)
			continue
		}
		pendingDash = true
	}
	return b.String()
}
