package models

import "time"

// CourseAssignment links a course, faculty member and batch for one
// academic year and semester, with the weekly teaching hours to schedule.
type CourseAssignment struct {
	ID           string    `db:"id" json:"id"`
	CourseID     string    `db:"course_id" json:"course_id"`
	FacultyID    string    `db:"faculty_id" json:"faculty_id"`
	BatchID      string    `db:"batch_id" json:"batch_id"`
	AcademicYear string    `db:"academic_year" json:"academic_year"`
	Semester     int       `db:"semester" json:"semester"`
	HoursPerWeek int       `db:"hours_per_week" json:"hours_per_week"`
	CreatedAt    time.Time `db:"created_at" json:"created_at"`
}

// CourseAssignmentDetail enriches assignments with descriptive fields used
// by list views and the reassignment engine's department matching.
type CourseAssignmentDetail struct {
	CourseAssignment
	CourseName         string  `db:"course_name" json:"course_name"`
	CourseCode         string  `db:"course_code" json:"course_code"`
	CourseDepartmentID *string `db:"course_department_id" json:"course_department_id,omitempty"`
	FacultyName        string  `db:"faculty_name" json:"faculty_name"`
	BatchName          string  `db:"batch_name" json:"batch_name"`
	BatchStudentCount  int     `db:"batch_student_count" json:"batch_student_count"`
}

// CourseAssignmentFilter defines filter criteria for listing assignments.
type CourseAssignmentFilter struct {
	AcademicYear string
	Semester     int
	FacultyID    string
	BatchID      string
	CourseID     string
	Page         int
	PageSize     int
	SortBy       string
	SortOrder    string
}
