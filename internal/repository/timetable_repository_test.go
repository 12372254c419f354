package repository

import (
	"context"
	"errors"
	"testing"
	"time"

	sqlmock "github.com/DATA-DOG/go-sqlmock"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/acadsync/acadsync-api/internal/models"
)

func runRows() *sqlmock.Rows {
	return sqlmock.NewRows([]string{"id", "name", "academic_year", "semester", "status", "generation_log", "generated_by", "started_at", "completed_at", "published_at", "created_at"})
}

func TestTimetableRepositoryCreateRun(t *testing.T) {
	db, mock, cleanup := newRepoMock(t)
	defer cleanup()
	repo := NewTimetableRepository(db)

	mock.ExpectExec("INSERT INTO timetable_runs").
		WithArgs(sqlmock.AnyArg(), "Fall draft", "2026-2027", 1, models.RunGenerating, nil, sqlmock.AnyArg(), sqlmock.AnyArg()).
		WillReturnResult(sqlmock.NewResult(1, 1))

	run := &models.TimetableRun{Name: "Fall draft", AcademicYear: "2026-2027", Semester: 1}
	require.NoError(t, repo.CreateRun(context.Background(), run))
	assert.NotEmpty(t, run.ID)
	assert.Equal(t, models.RunGenerating, run.Status)
	assert.NotNil(t, run.StartedAt)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestTimetableRepositoryActiveRunPrefersPublished(t *testing.T) {
	db, mock, cleanup := newRepoMock(t)
	defer cleanup()
	repo := NewTimetableRepository(db)

	now := time.Now()
	mock.ExpectQuery("SELECT (.+) FROM timetable_runs WHERE academic_year = \\$1 AND semester = \\$2").
		WithArgs("2026-2027", 1).
		WillReturnRows(runRows().AddRow("run-2", "published", "2026-2027", 1, models.RunPublished, nil, nil, &now, &now, &now, now))

	run, err := repo.ActiveRun(context.Background(), "2026-2027", 1)
	require.NoError(t, err)
	assert.Equal(t, "run-2", run.ID)
	assert.Equal(t, models.RunPublished, run.Status)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestTimetableRepositoryBulkCreatePlacementsCommit(t *testing.T) {
	db, mock, cleanup := newRepoMock(t)
	defer cleanup()
	repo := NewTimetableRepository(db)

	mock.ExpectBegin()
	mock.ExpectExec("INSERT INTO timetables").
		WithArgs(sqlmock.AnyArg(), "run-1", "a1", "f1", "b1", "r1", 1, "09:00", "10:00", false, sqlmock.AnyArg()).
		WillReturnResult(sqlmock.NewResult(1, 1))
	mock.ExpectExec("INSERT INTO timetables").
		WithArgs(sqlmock.AnyArg(), "run-1", "a1", "f1", "b1", "r1", 2, "09:00", "10:00", true, sqlmock.AnyArg()).
		WillReturnResult(sqlmock.NewResult(1, 1))
	mock.ExpectExec("UPDATE timetable_runs SET status =").
		WithArgs("run-1", models.RunCompleted, "2 slots", sqlmock.AnyArg()).
		WillReturnResult(sqlmock.NewResult(1, 1))
	mock.ExpectCommit()

	tx, err := repo.BeginTxx(context.Background())
	require.NoError(t, err)

	placements := []models.Placement{
		{RunID: "run-1", CourseAssignmentID: "a1", FacultyID: "f1", BatchID: "b1", RoomID: "r1", DayOfWeek: 1, StartTime: "09:00", EndTime: "10:00"},
		{RunID: "run-1", CourseAssignmentID: "a1", FacultyID: "f1", BatchID: "b1", RoomID: "r1", DayOfWeek: 2, StartTime: "09:00", EndTime: "10:00", Filler: true},
	}
	require.NoError(t, repo.BulkCreatePlacements(context.Background(), tx, placements))
	assert.NotEmpty(t, placements[0].ID)

	require.NoError(t, repo.CompleteRun(context.Background(), tx, "run-1", "2 slots"))
	require.NoError(t, tx.Commit())
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestTimetableRepositoryBulkCreatePlacementsRollback(t *testing.T) {
	db, mock, cleanup := newRepoMock(t)
	defer cleanup()
	repo := NewTimetableRepository(db)

	mock.ExpectBegin()
	mock.ExpectExec("INSERT INTO timetables").
		WillReturnError(errors.New("constraint violation"))
	mock.ExpectRollback()

	tx, err := repo.BeginTxx(context.Background())
	require.NoError(t, err)

	err = repo.BulkCreatePlacements(context.Background(), tx, []models.Placement{
		{RunID: "run-1", CourseAssignmentID: "a1", FacultyID: "f1", BatchID: "b1", RoomID: "r1", DayOfWeek: 1, StartTime: "09:00", EndTime: "10:00"},
	})
	require.Error(t, err)
	require.NoError(t, tx.Rollback())
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestTimetableRepositoryPublishRun(t *testing.T) {
	db, mock, cleanup := newRepoMock(t)
	defer cleanup()
	repo := NewTimetableRepository(db)

	mock.ExpectExec("UPDATE timetable_runs SET status =").
		WithArgs("run-1", models.RunPublished, sqlmock.AnyArg()).
		WillReturnResult(sqlmock.NewResult(1, 1))

	require.NoError(t, repo.PublishRun(context.Background(), "run-1"))
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestTimetableRepositoryListPlacements(t *testing.T) {
	db, mock, cleanup := newRepoMock(t)
	defer cleanup()
	repo := NewTimetableRepository(db)

	rows := sqlmock.NewRows([]string{"id", "run_id", "course_assignment_id", "faculty_id", "batch_id", "room_id", "day_of_week", "start_time", "end_time", "filler", "created_at", "course_name", "course_code", "faculty_name", "batch_name", "room_code"}).
		AddRow("p1", "run-1", "a1", "f1", "b1", "r1", 1, "09:00", "10:00", false, time.Now(), "Algorithms", "CS201", "Dr. Chen", "CS-2026-A", "LH-1")
	mock.ExpectQuery("SELECT t.id, t.run_id, (.+) FROM timetables t").
		WithArgs("run-1").
		WillReturnRows(rows)

	placements, err := repo.ListPlacements(context.Background(), "run-1")
	require.NoError(t, err)
	require.Len(t, placements, 1)
	assert.Equal(t, "Algorithms", placements[0].CourseName)
	assert.Equal(t, "LH-1", placements[0].RoomCode)
	assert.NoError(t, mock.ExpectationsWereMet())
}
