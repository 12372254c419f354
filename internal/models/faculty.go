package models

import "time"

// Faculty represents an instructor record.
type Faculty struct {
	ID              string    `db:"id" json:"id"`
	EmployeeID      string    `db:"employee_id" json:"employee_id"`
	FullName        string    `db:"full_name" json:"full_name"`
	Email           string    `db:"email" json:"email"`
	Designation     *string   `db:"designation" json:"designation,omitempty"`
	DepartmentID    *string   `db:"department_id" json:"department_id,omitempty"`
	MaxHoursPerWeek *int      `db:"max_hours_per_week" json:"max_hours_per_week,omitempty"`
	Active          bool      `db:"active" json:"active"`
	CreatedAt       time.Time `db:"created_at" json:"created_at"`
	UpdatedAt       time.Time `db:"updated_at" json:"updated_at"`
}

// FacultyFilter captures filtering options for listing faculty.
type FacultyFilter struct {
	DepartmentID string
	Active       *bool
	Search       string
	Page         int
	PageSize     int
	SortBy       string
	SortOrder    string
}
