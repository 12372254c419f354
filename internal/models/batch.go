package models

import "time"

// Batch represents a student cohort (year + section).
type Batch struct {
	ID           string    `db:"id" json:"id"`
	Name         string    `db:"name" json:"name"`
	Year         int       `db:"year" json:"year"`
	Section      *string   `db:"section" json:"section,omitempty"`
	Semester     int       `db:"semester" json:"semester"`
	StudentCount int       `db:"student_count" json:"student_count"`
	DepartmentID *string   `db:"department_id" json:"department_id,omitempty"`
	Active       bool      `db:"active" json:"active"`
	CreatedAt    time.Time `db:"created_at" json:"created_at"`
}

// BatchFilter defines filter criteria for listing batches.
type BatchFilter struct {
	DepartmentID string
	Semester     int
	Active       *bool
	Search       string
	Page         int
	PageSize     int
	SortBy       string
	SortOrder    string
}
