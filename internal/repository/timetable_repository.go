package repository

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"

	"github.com/acadsync/acadsync-api/internal/models"
)

// TimetableRepository persists timetable runs and their placements.
type TimetableRepository struct {
	db *sqlx.DB
}

// NewTimetableRepository creates a new timetable repository.
func NewTimetableRepository(db *sqlx.DB) *TimetableRepository {
	return &TimetableRepository{db: db}
}

// BeginTxx starts a transaction for batch placement persistence.
func (r *TimetableRepository) BeginTxx(ctx context.Context) (*sqlx.Tx, error) {
	return r.db.BeginTxx(ctx, nil)
}

const runColumns = "id, name, academic_year, semester, status, generation_log, generated_by, started_at, completed_at, published_at, created_at"

// CreateRun inserts a run in `generating` state.
func (r *TimetableRepository) CreateRun(ctx context.Context, run *models.TimetableRun) error {
	if run.ID == "" {
		run.ID = uuid.NewString()
	}
	now := time.Now().UTC()
	run.CreatedAt = now
	run.StartedAt = &now
	run.Status = models.RunGenerating
	const query = `INSERT INTO timetable_runs (id, name, academic_year, semester, status, generated_by, started_at, created_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8)`
	if _, err := r.db.ExecContext(ctx, query, run.ID, run.Name, run.AcademicYear, run.Semester, run.Status, run.GeneratedBy, run.StartedAt, run.CreatedAt); err != nil {
		return fmt.Errorf("create timetable run: %w", err)
	}
	return nil
}

// FindRun loads a run by id.
func (r *TimetableRepository) FindRun(ctx context.Context, id string) (*models.TimetableRun, error) {
	query := fmt.Sprintf("SELECT %s FROM timetable_runs WHERE id = $1", runColumns)
	var run models.TimetableRun
	if err := r.db.GetContext(ctx, &run, query, id); err != nil {
		return nil, err
	}
	return &run, nil
}

// ListRuns returns the runs for a term, newest first.
func (r *TimetableRepository) ListRuns(ctx context.Context, academicYear string, semester int) ([]models.TimetableRun, error) {
	query := fmt.Sprintf("SELECT %s FROM timetable_runs WHERE academic_year = $1 AND semester = $2 ORDER BY created_at DESC", runColumns)
	var runs []models.TimetableRun
	if err := r.db.SelectContext(ctx, &runs, query, academicYear, semester); err != nil {
		return nil, fmt.Errorf("list timetable runs: %w", err)
	}
	return runs, nil
}

// CompleteRun transitions a run to `completed` with its generation log.
func (r *TimetableRepository) CompleteRun(ctx context.Context, exec sqlx.ExtContext, id, generationLog string) error {
	const query = `UPDATE timetable_runs SET status = $2, generation_log = $3, completed_at = $4 WHERE id = $1`
	if _, err := exec.ExecContext(ctx, query, id, models.RunCompleted, generationLog, time.Now().UTC()); err != nil {
		return fmt.Errorf("complete timetable run: %w", err)
	}
	return nil
}

// FailRun transitions a run to `failed`, keeping whatever log is available.
func (r *TimetableRepository) FailRun(ctx context.Context, id, generationLog string) error {
	const query = `UPDATE timetable_runs SET status = $2, generation_log = $3, completed_at = $4 WHERE id = $1`
	if _, err := r.db.ExecContext(ctx, query, id, models.RunFailed, generationLog, time.Now().UTC()); err != nil {
		return fmt.Errorf("fail timetable run: %w", err)
	}
	return nil
}

// PublishRun marks a completed run as the one shown to end users.
func (r *TimetableRepository) PublishRun(ctx context.Context, id string) error {
	const query = `UPDATE timetable_runs SET status = $2, published_at = $3 WHERE id = $1`
	if _, err := r.db.ExecContext(ctx, query, id, models.RunPublished, time.Now().UTC()); err != nil {
		return fmt.Errorf("publish timetable run: %w", err)
	}
	return nil
}

// ActiveRun selects the display run for a term: the latest published, else
// the latest completed, else the most recent run of any status.
func (r *TimetableRepository) ActiveRun(ctx context.Context, academicYear string, semester int) (*models.TimetableRun, error) {
	query := fmt.Sprintf(`SELECT %s FROM timetable_runs WHERE academic_year = $1 AND semester = $2
		ORDER BY CASE status WHEN 'published' THEN 0 WHEN 'completed' THEN 1 ELSE 2 END, created_at DESC
		LIMIT 1`, runColumns)
	var run models.TimetableRun
	if err := r.db.GetContext(ctx, &run, query, academicYear, semester); err != nil {
		return nil, err
	}
	return &run, nil
}

// BulkCreatePlacements inserts a run's placements inside the transaction.
// A failure here leaves the run to be marked failed by the caller.
func (r *TimetableRepository) BulkCreatePlacements(ctx context.Context, tx *sqlx.Tx, placements []models.Placement) error {
	const query = `INSERT INTO timetables (id, run_id, course_assignment_id, faculty_id, batch_id, room_id, day_of_week, start_time, end_time, filler, created_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11)`
	now := time.Now().UTC()
	for i := range placements {
		p := &placements[i]
		if p.ID == "" {
			p.ID = uuid.NewString()
		}
		p.CreatedAt = now
		if _, err := tx.ExecContext(ctx, query, p.ID, p.RunID, p.CourseAssignmentID, p.FacultyID, p.BatchID, p.RoomID, p.DayOfWeek, p.StartTime, p.EndTime, p.Filler, p.CreatedAt); err != nil {
			return fmt.Errorf("insert placement: %w", err)
		}
	}
	return nil
}

// ListPlacements returns the detailed placements of a run in grid order.
func (r *TimetableRepository) ListPlacements(ctx context.Context, runID string) ([]models.PlacementDetail, error) {
	const query = `SELECT t.id, t.run_id, t.course_assignment_id, t.faculty_id, t.batch_id, t.room_id, t.day_of_week, t.start_time, t.end_time, t.filler, t.created_at,
			c.name AS course_name, c.code AS course_code, f.full_name AS faculty_name, b.name AS batch_name, rm.code AS room_code
		FROM timetables t
		JOIN course_assignments ca ON ca.id = t.course_assignment_id
		JOIN courses c ON c.id = ca.course_id
		JOIN faculty f ON f.id = t.faculty_id
		JOIN batches b ON b.id = t.batch_id
		JOIN rooms rm ON rm.id = t.room_id
		WHERE t.run_id = $1
		ORDER BY t.day_of_week, t.start_time, b.name`
	var placements []models.PlacementDetail
	if err := r.db.SelectContext(ctx, &placements, query, runID); err != nil {
		return nil, fmt.Errorf("list placements: %w", err)
	}
	return placements, nil
}
