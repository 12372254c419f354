package models

import "time"

// CourseType categorises how a course is delivered.
type CourseType string

const (
	CourseTheory    CourseType = "theory"
	CourseLab       CourseType = "lab"
	CoursePractical CourseType = "practical"
	CourseProject   CourseType = "project"
)

// Course represents a taught course owned by a department.
type Course struct {
	ID           string     `db:"id" json:"id"`
	Name         string     `db:"name" json:"name"`
	Code         string     `db:"code" json:"code"`
	Credits      int        `db:"credits" json:"credits"`
	CourseType   CourseType `db:"course_type" json:"course_type"`
	DepartmentID *string    `db:"department_id" json:"department_id,omitempty"`
	Semester     int        `db:"semester" json:"semester"`
	Active       bool       `db:"active" json:"active"`
	CreatedAt    time.Time  `db:"created_at" json:"created_at"`
}

// CourseFilter defines filter criteria for listing courses.
type CourseFilter struct {
	DepartmentID string
	Semester     int
	Search       string
	Active       *bool
	Page         int
	PageSize     int
	SortBy       string
	SortOrder    string
}
