package models

import "time"

// RunStatus tracks the timetable generation lifecycle.
type RunStatus string

const (
	RunGenerating RunStatus = "generating"
	RunCompleted  RunStatus = "completed"
	RunPublished  RunStatus = "published"
	RunFailed     RunStatus = "failed"
)

// TimetableRun groups the placements of one generation invocation.
type TimetableRun struct {
	ID            string     `db:"id" json:"id"`
	Name          string     `db:"name" json:"name"`
	AcademicYear  string     `db:"academic_year" json:"academic_year"`
	Semester      int        `db:"semester" json:"semester"`
	Status        RunStatus  `db:"status" json:"status"`
	GenerationLog *string    `db:"generation_log" json:"generation_log,omitempty"`
	GeneratedBy   *string    `db:"generated_by" json:"generated_by,omitempty"`
	StartedAt     *time.Time `db:"started_at" json:"started_at,omitempty"`
	CompletedAt   *time.Time `db:"completed_at" json:"completed_at,omitempty"`
	PublishedAt   *time.Time `db:"published_at" json:"published_at,omitempty"`
	CreatedAt     time.Time  `db:"created_at" json:"created_at"`
}

// Placement is one scheduled teaching hour inside a run. Immutable once
// created; reassignment overlays supersede rather than mutate it.
type Placement struct {
	ID                 string    `db:"id" json:"id"`
	RunID              string    `db:"run_id" json:"run_id"`
	CourseAssignmentID string    `db:"course_assignment_id" json:"course_assignment_id"`
	FacultyID          string    `db:"faculty_id" json:"faculty_id"`
	BatchID            string    `db:"batch_id" json:"batch_id"`
	RoomID             string    `db:"room_id" json:"room_id"`
	DayOfWeek          int       `db:"day_of_week" json:"day_of_week"`
	StartTime          string    `db:"start_time" json:"start_time"`
	EndTime            string    `db:"end_time" json:"end_time"`
	Filler             bool      `db:"filler" json:"filler"`
	CreatedAt          time.Time `db:"created_at" json:"created_at"`
}

// PlacementDetail enriches a placement with display fields.
type PlacementDetail struct {
	Placement
	CourseName  string `db:"course_name" json:"course_name"`
	CourseCode  string `db:"course_code" json:"course_code"`
	FacultyName string `db:"faculty_name" json:"faculty_name"`
	BatchName   string `db:"batch_name" json:"batch_name"`
	RoomCode    string `db:"room_code" json:"room_code"`
}

// Term identifies one scheduling horizon.
type Term struct {
	AcademicYear string `db:"academic_year" json:"academic_year"`
	Semester     int    `db:"semester" json:"semester"`
}

// RunStatistics summarises one generation run.
type RunStatistics struct {
	TotalAssignments   int `json:"total_assignments"`
	FullyScheduled     int `json:"fully_scheduled"`
	PartiallyScheduled int `json:"partially_scheduled"`
	TotalSlotsCreated  int `json:"total_slots_created"`
	Conflicts          int `json:"conflicts"`
	FillerSlots        int `json:"filler_slots"`
}
