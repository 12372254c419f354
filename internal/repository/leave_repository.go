package repository

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"
	"github.com/lib/pq"

	"github.com/acadsync/acadsync-api/internal/models"
)

// LeaveRepository persists leave requests and reassignment overlays.
type LeaveRepository struct {
	db *sqlx.DB
}

// NewLeaveRepository creates a new leave repository.
func NewLeaveRepository(db *sqlx.DB) *LeaveRepository {
	return &LeaveRepository{db: db}
}

const leaveColumns = "id, faculty_id, leave_type, start_date, end_date, reason, status, substitute_faculty_id, approved_by, created_at, updated_at"

// List returns leave requests with optional filtering and pagination.
func (r *LeaveRepository) List(ctx context.Context, filter models.LeaveFilter) ([]models.Leave, int, error) {
	base := "FROM leaves WHERE 1=1"
	var conditions []string
	var args []interface{}

	if filter.FacultyID != "" {
		conditions = append(conditions, fmt.Sprintf("faculty_id = $%d", len(args)+1))
		args = append(args, filter.FacultyID)
	}
	if filter.Status != "" {
		conditions = append(conditions, fmt.Sprintf("status = $%d", len(args)+1))
		args = append(args, filter.Status)
	}
	if len(conditions) > 0 {
		base += " AND " + strings.Join(conditions, " AND ")
	}

	page := filter.Page
	if page < 1 {
		page = 1
	}
	size := filter.PageSize
	if size <= 0 || size > 100 {
		size = 20
	}

	query := fmt.Sprintf("SELECT %s %s ORDER BY created_at DESC LIMIT %d OFFSET %d", leaveColumns, base, size, (page-1)*size)
	var leaves []models.Leave
	if err := r.db.SelectContext(ctx, &leaves, query, args...); err != nil {
		return nil, 0, fmt.Errorf("list leaves: %w", err)
	}

	var total int
	if err := r.db.GetContext(ctx, &total, fmt.Sprintf("SELECT COUNT(*) %s", base), args...); err != nil {
		return nil, 0, fmt.Errorf("count leaves: %w", err)
	}
	return leaves, total, nil
}

// FindByID loads a leave request by id.
func (r *LeaveRepository) FindByID(ctx context.Context, id string) (*models.Leave, error) {
	query := fmt.Sprintf("SELECT %s FROM leaves WHERE id = $1", leaveColumns)
	var leave models.Leave
	if err := r.db.GetContext(ctx, &leave, query, id); err != nil {
		return nil, err
	}
	return &leave, nil
}

// Create inserts a leave request in pending state.
func (r *LeaveRepository) Create(ctx context.Context, leave *models.Leave) error {
	if leave.ID == "" {
		leave.ID = uuid.NewString()
	}
	now := time.Now().UTC()
	leave.CreatedAt = now
	leave.UpdatedAt = now
	leave.Status = models.LeavePending
	const query = `INSERT INTO leaves (id, faculty_id, leave_type, start_date, end_date, reason, status, substitute_faculty_id, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10)`
	if _, err := r.db.ExecContext(ctx, query, leave.ID, leave.FacultyID, leave.LeaveType, leave.StartDate, leave.EndDate, leave.Reason, leave.Status, leave.SubstituteFacultyID, leave.CreatedAt, leave.UpdatedAt); err != nil {
		return fmt.Errorf("create leave: %w", err)
	}
	return nil
}

// UpdateStatus transitions a leave request, recording the approver. A nil
// exec runs against the pool; approvals pass their transaction instead.
func (r *LeaveRepository) UpdateStatus(ctx context.Context, exec sqlx.ExtContext, id string, status models.LeaveStatus, approvedBy string) error {
	if exec == nil {
		exec = r.db
	}
	const query = `UPDATE leaves SET status = $2, approved_by = $3, updated_at = $4 WHERE id = $1`
	if _, err := exec.ExecContext(ctx, query, id, status, approvedBy, time.Now().UTC()); err != nil {
		return fmt.Errorf("update leave status: %w", err)
	}
	return nil
}

// FindOverlayByLeave loads the overlay recorded for a leave, if any.
// Its existence is the idempotency guard against double reassignment.
func (r *LeaveRepository) FindOverlayByLeave(ctx context.Context, leaveID string) (*models.ReassignmentOverlay, error) {
	const query = `SELECT id, leave_id, original_faculty_id, substitute_faculty_id, affected_assignment_ids, created_at
		FROM reassignment_overlays WHERE leave_id = $1`
	row := r.db.QueryRowxContext(ctx, query, leaveID)
	var overlay models.ReassignmentOverlay
	var affected pq.StringArray
	if err := row.Scan(&overlay.ID, &overlay.LeaveID, &overlay.OriginalFacultyID, &overlay.SubstituteFacultyID, &affected, &overlay.CreatedAt); err != nil {
		return nil, err
	}
	overlay.AffectedAssignmentIDs = []string(affected)
	return &overlay, nil
}

// ListOverlays returns every recorded overlay, oldest first. The display
// layer merges these over the base run's placements.
func (r *LeaveRepository) ListOverlays(ctx context.Context) ([]models.ReassignmentOverlay, error) {
	const query = `SELECT id, leave_id, original_faculty_id, substitute_faculty_id, affected_assignment_ids, created_at
		FROM reassignment_overlays ORDER BY created_at`
	rows, err := r.db.QueryxContext(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("list overlays: %w", err)
	}
	defer rows.Close()

	var overlays []models.ReassignmentOverlay
	for rows.Next() {
		var overlay models.ReassignmentOverlay
		var affected pq.StringArray
		if err := rows.Scan(&overlay.ID, &overlay.LeaveID, &overlay.OriginalFacultyID, &overlay.SubstituteFacultyID, &affected, &overlay.CreatedAt); err != nil {
			return nil, fmt.Errorf("scan overlay: %w", err)
		}
		overlay.AffectedAssignmentIDs = []string(affected)
		overlays = append(overlays, overlay)
	}
	return overlays, rows.Err()
}

// CreateOverlayWithTx records a reassignment overlay inside the same
// transaction that duplicates the affected assignments.
func (r *LeaveRepository) CreateOverlayWithTx(ctx context.Context, tx *sqlx.Tx, overlay *models.ReassignmentOverlay) error {
	if overlay.ID == "" {
		overlay.ID = uuid.NewString()
	}
	overlay.CreatedAt = time.Now().UTC()
	const query = `INSERT INTO reassignment_overlays (id, leave_id, original_faculty_id, substitute_faculty_id, affected_assignment_ids, created_at)
		VALUES ($1, $2, $3, $4, $5, $6)`
	if _, err := tx.ExecContext(ctx, query, overlay.ID, overlay.LeaveID, overlay.OriginalFacultyID, overlay.SubstituteFacultyID, pq.Array(overlay.AffectedAssignmentIDs), overlay.CreatedAt); err != nil {
		return fmt.Errorf("create overlay: %w", err)
	}
	return nil
}

// BeginTxx starts a transaction for the approval flow.
func (r *LeaveRepository) BeginTxx(ctx context.Context) (*sqlx.Tx, error) {
	return r.db.BeginTxx(ctx, nil)
}
