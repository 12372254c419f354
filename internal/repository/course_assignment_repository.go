package repository

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"

	"github.com/acadsync/acadsync-api/internal/models"
)

// CourseAssignmentRepository persists course/faculty/batch assignments.
type CourseAssignmentRepository struct {
	db *sqlx.DB
}

// NewCourseAssignmentRepository creates a new assignment repository.
func NewCourseAssignmentRepository(db *sqlx.DB) *CourseAssignmentRepository {
	return &CourseAssignmentRepository{db: db}
}

const assignmentDetailColumns = `ca.id, ca.course_id, ca.faculty_id, ca.batch_id, ca.academic_year, ca.semester, ca.hours_per_week, ca.created_at,
		c.name AS course_name, c.code AS course_code, c.department_id AS course_department_id,
		f.full_name AS faculty_name, b.name AS batch_name, b.student_count AS batch_student_count`

const assignmentDetailJoins = `FROM course_assignments ca
		JOIN courses c ON c.id = ca.course_id
		JOIN faculty f ON f.id = ca.faculty_id
		JOIN batches b ON b.id = ca.batch_id`

// ListByTerm returns the detailed assignments for one academic year and
// semester, in stable creation order. This is the scheduler's demand input.
func (r *CourseAssignmentRepository) ListByTerm(ctx context.Context, academicYear string, semester int) ([]models.CourseAssignmentDetail, error) {
	query := fmt.Sprintf("SELECT %s %s WHERE ca.academic_year = $1 AND ca.semester = $2 ORDER BY ca.created_at, ca.id", assignmentDetailColumns, assignmentDetailJoins)
	var list []models.CourseAssignmentDetail
	if err := r.db.SelectContext(ctx, &list, query, academicYear, semester); err != nil {
		return nil, fmt.Errorf("list assignments by term: %w", err)
	}
	return list, nil
}

// ListTerms returns every (academic year, semester) pair that has at
// least one assignment. The refresh watcher polls these horizons.
func (r *CourseAssignmentRepository) ListTerms(ctx context.Context) ([]models.Term, error) {
	const query = `SELECT DISTINCT academic_year, semester FROM course_assignments ORDER BY academic_year, semester`
	var terms []models.Term
	if err := r.db.SelectContext(ctx, &terms, query); err != nil {
		return nil, fmt.Errorf("list assignment terms: %w", err)
	}
	return terms, nil
}

// ListByFacultyAndTerm returns the detailed assignments a faculty member
// teaches in one term. Used by the reassignment engine.
func (r *CourseAssignmentRepository) ListByFacultyAndTerm(ctx context.Context, facultyID, academicYear string, semester int) ([]models.CourseAssignmentDetail, error) {
	query := fmt.Sprintf("SELECT %s %s WHERE ca.faculty_id = $1 AND ca.academic_year = $2 AND ca.semester = $3 ORDER BY ca.created_at, ca.id", assignmentDetailColumns, assignmentDetailJoins)
	var list []models.CourseAssignmentDetail
	if err := r.db.SelectContext(ctx, &list, query, facultyID, academicYear, semester); err != nil {
		return nil, fmt.Errorf("list assignments by faculty: %w", err)
	}
	return list, nil
}

// List returns assignments with filtering and pagination for the admin UI.
func (r *CourseAssignmentRepository) List(ctx context.Context, filter models.CourseAssignmentFilter) ([]models.CourseAssignmentDetail, int, error) {
	base := assignmentDetailJoins + " WHERE 1=1"
	var conditions []string
	var args []interface{}

	if filter.AcademicYear != "" {
		conditions = append(conditions, fmt.Sprintf("ca.academic_year = $%d", len(args)+1))
		args = append(args, filter.AcademicYear)
	}
	if filter.Semester > 0 {
		conditions = append(conditions, fmt.Sprintf("ca.semester = $%d", len(args)+1))
		args = append(args, filter.Semester)
	}
	if filter.FacultyID != "" {
		conditions = append(conditions, fmt.Sprintf("ca.faculty_id = $%d", len(args)+1))
		args = append(args, filter.FacultyID)
	}
	if filter.BatchID != "" {
		conditions = append(conditions, fmt.Sprintf("ca.batch_id = $%d", len(args)+1))
		args = append(args, filter.BatchID)
	}
	if filter.CourseID != "" {
		conditions = append(conditions, fmt.Sprintf("ca.course_id = $%d", len(args)+1))
		args = append(args, filter.CourseID)
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

	query := fmt.Sprintf("SELECT %s %s ORDER BY ca.created_at DESC LIMIT %d OFFSET %d", assignmentDetailColumns, base, size, (page-1)*size)
	var list []models.CourseAssignmentDetail
	if err := r.db.SelectContext(ctx, &list, query, args...); err != nil {
		return nil, 0, fmt.Errorf("list assignments: %w", err)
	}

	var total int
	if err := r.db.GetContext(ctx, &total, fmt.Sprintf("SELECT COUNT(*) %s", base), args...); err != nil {
		return nil, 0, fmt.Errorf("count assignments: %w", err)
	}
	return list, total, nil
}

// FindByID loads an assignment by id.
func (r *CourseAssignmentRepository) FindByID(ctx context.Context, id string) (*models.CourseAssignment, error) {
	const query = `SELECT id, course_id, faculty_id, batch_id, academic_year, semester, hours_per_week, created_at FROM course_assignments WHERE id = $1`
	var a models.CourseAssignment
	if err := r.db.GetContext(ctx, &a, query, id); err != nil {
		return nil, err
	}
	return &a, nil
}

// Create inserts an assignment record.
func (r *CourseAssignmentRepository) Create(ctx context.Context, a *models.CourseAssignment) error {
	if a.ID == "" {
		a.ID = uuid.NewString()
	}
	a.CreatedAt = time.Now().UTC()
	const query = `INSERT INTO course_assignments (id, course_id, faculty_id, batch_id, academic_year, semester, hours_per_week, created_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8)`
	if _, err := r.db.ExecContext(ctx, query, a.ID, a.CourseID, a.FacultyID, a.BatchID, a.AcademicYear, a.Semester, a.HoursPerWeek, a.CreatedAt); err != nil {
		return fmt.Errorf("create assignment: %w", err)
	}
	return nil
}

// CreateWithTx inserts an assignment inside an existing transaction.
// The reassignment engine duplicates assignments this way so the overlay
// and its assignments commit together.
func (r *CourseAssignmentRepository) CreateWithTx(ctx context.Context, tx *sqlx.Tx, a *models.CourseAssignment) error {
	if a.ID == "" {
		a.ID = uuid.NewString()
	}
	a.CreatedAt = time.Now().UTC()
	const query = `INSERT INTO course_assignments (id, course_id, faculty_id, batch_id, academic_year, semester, hours_per_week, created_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8)`
	if _, err := tx.ExecContext(ctx, query, a.ID, a.CourseID, a.FacultyID, a.BatchID, a.AcademicYear, a.Semester, a.HoursPerWeek, a.CreatedAt); err != nil {
		return fmt.Errorf("create assignment in tx: %w", err)
	}
	return nil
}

// Delete removes an assignment.
func (r *CourseAssignmentRepository) Delete(ctx context.Context, id string) error {
	if _, err := r.db.ExecContext(ctx, "DELETE FROM course_assignments WHERE id = $1", id); err != nil {
		return fmt.Errorf("delete assignment: %w", err)
	}
	return nil
}
