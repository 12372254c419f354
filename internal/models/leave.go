package models

import "time"

// LeaveStatus tracks the leave request lifecycle.
type LeaveStatus string

const (
	LeavePending  LeaveStatus = "pending"
	LeaveApproved LeaveStatus = "approved"
	LeaveRejected LeaveStatus = "rejected"
)

// Leave represents a faculty leave request. An approved leave may carry a
// substitute faculty member used by the reassignment engine.
type Leave struct {
	ID                  string      `db:"id" json:"id"`
	FacultyID           string      `db:"faculty_id" json:"faculty_id"`
	LeaveType           string      `db:"leave_type" json:"leave_type"`
	StartDate           time.Time   `db:"start_date" json:"start_date"`
	EndDate             time.Time   `db:"end_date" json:"end_date"`
	Reason              *string     `db:"reason" json:"reason,omitempty"`
	Status              LeaveStatus `db:"status" json:"status"`
	SubstituteFacultyID *string     `db:"substitute_faculty_id" json:"substitute_faculty_id,omitempty"`
	ApprovedBy          *string     `db:"approved_by" json:"approved_by,omitempty"`
	CreatedAt           time.Time   `db:"created_at" json:"created_at"`
	UpdatedAt           time.Time   `db:"updated_at" json:"updated_at"`
}

// LeaveFilter defines filter criteria for listing leave requests.
type LeaveFilter struct {
	FacultyID string
	Status    string
	Page      int
	PageSize  int
	SortBy    string
	SortOrder string
}

// ReassignmentOverlay records a substitute-faculty schedule layered on top
// of a timetable run without mutating the original placement records.
type ReassignmentOverlay struct {
	ID                    string    `db:"id" json:"id"`
	LeaveID               string    `db:"leave_id" json:"leave_id"`
	OriginalFacultyID     string    `db:"original_faculty_id" json:"original_faculty_id"`
	SubstituteFacultyID   string    `db:"substitute_faculty_id" json:"substitute_faculty_id"`
	AffectedAssignmentIDs []string  `db:"-" json:"affected_assignment_ids"`
	CreatedAt             time.Time `db:"created_at" json:"created_at"`
}
