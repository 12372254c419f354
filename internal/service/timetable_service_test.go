package service

import (
	"context"
	"errors"
	"testing"
	"time"

	sqlmock "github.com/DATA-DOG/go-sqlmock"
	"github.com/go-playground/validator/v10"
	"github.com/jmoiron/sqlx"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/acadsync/acadsync-api/internal/models"
	"github.com/acadsync/acadsync-api/internal/repository"
	"github.com/acadsync/acadsync-api/internal/scheduler"
	appErrors "github.com/acadsync/acadsync-api/pkg/errors"
)

type mockAssignmentReader struct {
	assignments []models.CourseAssignmentDetail
	err         error
}

func (m *mockAssignmentReader) ListByTerm(ctx context.Context, academicYear string, semester int) ([]models.CourseAssignmentDetail, error) {
	return m.assignments, m.err
}

type mockRoomReader struct {
	rooms []models.Room
	err   error
}

func (m *mockRoomReader) ListActive(ctx context.Context) ([]models.Room, error) {
	return m.rooms, m.err
}

type mockOverlayReader struct {
	overlays []models.ReassignmentOverlay
}

func (m *mockOverlayReader) ListOverlays(ctx context.Context) ([]models.ReassignmentOverlay, error) {
	return m.overlays, nil
}

type mockFacultyNames struct {
	names map[string]string
}

func (m *mockFacultyNames) FindByID(ctx context.Context, id string) (*models.Faculty, error) {
	if name, ok := m.names[id]; ok {
		return &models.Faculty{ID: id, FullName: name}, nil
	}
	return nil, errors.New("not found")
}

type stubNotifier struct {
	completed []string
	published []string
}

func (s *stubNotifier) RunCompleted(ctx context.Context, run *models.TimetableRun, stats models.RunStatistics) {
	s.completed = append(s.completed, run.ID)
}

func (s *stubNotifier) RunPublished(ctx context.Context, run *models.TimetableRun) {
	s.published = append(s.published, run.ID)
}

func assignment(id, course, faculty, batch string, hours, students int) models.CourseAssignmentDetail {
	return models.CourseAssignmentDetail{
		CourseAssignment: models.CourseAssignment{
			ID:           id,
			CourseID:     course,
			FacultyID:    faculty,
			BatchID:      batch,
			AcademicYear: "2026-2027",
			Semester:     1,
			HoursPerWeek: hours,
		},
		BatchStudentCount: students,
	}
}

// tinyGrid has exactly three class cells so three weekly hours saturate
// it and no filler demand is synthesized.
func tinyGrid() *scheduler.Grid {
	return scheduler.NewGrid([]scheduler.Slot{
		{Day: 1, Start: "09:00", End: "10:00", Kind: scheduler.SlotClass},
		{Day: 1, Start: "10:00", End: "11:00", Kind: scheduler.SlotClass},
		{Day: 2, Start: "09:00", End: "10:00", Kind: scheduler.SlotClass},
	})
}

func newTimetableServiceMock(t *testing.T, assignments *mockAssignmentReader, rooms *mockRoomReader, notifier *stubNotifier) (*TimetableService, sqlmock.Sqlmock, func()) {
	db, mock, err := sqlmock.New(sqlmock.QueryMatcherOption(sqlmock.QueryMatcherRegexp))
	require.NoError(t, err)
	repo := repository.NewTimetableRepository(sqlx.NewDb(db, "sqlmock"))
	svc := NewTimetableService(repo, assignments, rooms, nil, nil, nil, notifier, nil, tinyGrid(), scheduler.Config{}, validator.New(), zap.NewNop())
	return svc, mock, func() { db.Close() }
}

func TestTimetableServiceGenerateRejectsInvalidRequest(t *testing.T) {
	svc, _, cleanup := newTimetableServiceMock(t, &mockAssignmentReader{}, &mockRoomReader{}, nil)
	defer cleanup()

	_, err := svc.Generate(context.Background(), GenerateRequest{Semester: 1}, "u1")
	require.Error(t, err)
	assert.Equal(t, appErrors.ErrValidation.Code, appErrors.FromError(err).Code)

	_, err = svc.Generate(context.Background(), GenerateRequest{AcademicYear: "2026-2027", Semester: 13}, "u1")
	require.Error(t, err)
}

func TestTimetableServiceGenerateRequiresAssignments(t *testing.T) {
	svc, _, cleanup := newTimetableServiceMock(t, &mockAssignmentReader{}, &mockRoomReader{rooms: []models.Room{{ID: "r1", Capacity: 60}}}, nil)
	defer cleanup()

	_, err := svc.Generate(context.Background(), GenerateRequest{AcademicYear: "2026-2027", Semester: 1}, "u1")
	assert.ErrorIs(t, err, appErrors.ErrNoAssignments)
}

func TestTimetableServiceGenerateRequiresRooms(t *testing.T) {
	assignments := &mockAssignmentReader{assignments: []models.CourseAssignmentDetail{assignment("a1", "c1", "f1", "b1", 3, 30)}}
	svc, _, cleanup := newTimetableServiceMock(t, assignments, &mockRoomReader{}, nil)
	defer cleanup()

	_, err := svc.Generate(context.Background(), GenerateRequest{AcademicYear: "2026-2027", Semester: 1}, "u1")
	assert.ErrorIs(t, err, appErrors.ErrNoRooms)
}

func TestTimetableServiceGeneratePersistsRun(t *testing.T) {
	assignments := &mockAssignmentReader{assignments: []models.CourseAssignmentDetail{assignment("a1", "c1", "f1", "b1", 3, 30)}}
	rooms := &mockRoomReader{rooms: []models.Room{{ID: "r1", Capacity: 60, Active: true}}}
	notifier := &stubNotifier{}
	svc, mock, cleanup := newTimetableServiceMock(t, assignments, rooms, notifier)
	defer cleanup()

	mock.ExpectExec("INSERT INTO timetable_runs").WillReturnResult(sqlmock.NewResult(1, 1))
	mock.ExpectBegin()
	for i := 0; i < 3; i++ {
		mock.ExpectExec("INSERT INTO timetables").WillReturnResult(sqlmock.NewResult(1, 1))
	}
	mock.ExpectExec("UPDATE timetable_runs SET status =").WillReturnResult(sqlmock.NewResult(1, 1))
	mock.ExpectCommit()

	result, err := svc.Generate(context.Background(), GenerateRequest{AcademicYear: "2026-2027", Semester: 1}, "u1")
	require.NoError(t, err)
	require.NotNil(t, result.Run)
	assert.False(t, result.Skipped)
	assert.Equal(t, models.RunCompleted, result.Run.Status)
	assert.Equal(t, 1, result.Stats.FullyScheduled)
	assert.Equal(t, 3, result.Stats.TotalSlotsCreated)
	assert.Empty(t, result.Conflicts)
	assert.Equal(t, []string{result.Run.ID}, notifier.completed)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestTimetableServiceGenerateMarksRunFailedOnPersistError(t *testing.T) {
	assignments := &mockAssignmentReader{assignments: []models.CourseAssignmentDetail{assignment("a1", "c1", "f1", "b1", 3, 30)}}
	rooms := &mockRoomReader{rooms: []models.Room{{ID: "r1", Capacity: 60, Active: true}}}
	svc, mock, cleanup := newTimetableServiceMock(t, assignments, rooms, nil)
	defer cleanup()

	mock.ExpectExec("INSERT INTO timetable_runs").WillReturnResult(sqlmock.NewResult(1, 1))
	mock.ExpectBegin()
	mock.ExpectExec("INSERT INTO timetables").WillReturnError(errors.New("disk full"))
	mock.ExpectRollback()
	// The run is flipped to failed outside the aborted transaction.
	mock.ExpectExec("UPDATE timetable_runs SET status =").WillReturnResult(sqlmock.NewResult(1, 1))

	_, err := svc.Generate(context.Background(), GenerateRequest{AcademicYear: "2026-2027", Semester: 1}, "u1")
	require.Error(t, err)
	assert.Equal(t, appErrors.ErrPersistence.Code, appErrors.FromError(err).Code)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func timetableRunRow(id string, status models.RunStatus) *sqlmock.Rows {
	now := time.Now()
	return sqlmock.NewRows([]string{"id", "name", "academic_year", "semester", "status", "generation_log", "generated_by", "started_at", "completed_at", "published_at", "created_at"}).
		AddRow(id, "run", "2026-2027", 1, status, nil, nil, &now, nil, nil, now)
}

func TestTimetableServicePublishRequiresCompletedRun(t *testing.T) {
	svc, mock, cleanup := newTimetableServiceMock(t, &mockAssignmentReader{}, &mockRoomReader{}, nil)
	defer cleanup()

	mock.ExpectQuery("SELECT (.+) FROM timetable_runs WHERE id =").
		WithArgs("run-1").
		WillReturnRows(timetableRunRow("run-1", models.RunGenerating))

	_, err := svc.Publish(context.Background(), "run-1")
	require.Error(t, err)
	assert.Equal(t, appErrors.ErrPreconditionFailed.Code, appErrors.FromError(err).Code)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestTimetableServicePublishIsIdempotent(t *testing.T) {
	notifier := &stubNotifier{}
	svc, mock, cleanup := newTimetableServiceMock(t, &mockAssignmentReader{}, &mockRoomReader{}, notifier)
	defer cleanup()

	mock.ExpectQuery("SELECT (.+) FROM timetable_runs WHERE id =").
		WithArgs("run-1").
		WillReturnRows(timetableRunRow("run-1", models.RunPublished))

	run, err := svc.Publish(context.Background(), "run-1")
	require.NoError(t, err)
	assert.Equal(t, models.RunPublished, run.Status)
	assert.Empty(t, notifier.published)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestTimetableServicePublishCompletedRun(t *testing.T) {
	notifier := &stubNotifier{}
	svc, mock, cleanup := newTimetableServiceMock(t, &mockAssignmentReader{}, &mockRoomReader{}, notifier)
	defer cleanup()

	mock.ExpectQuery("SELECT (.+) FROM timetable_runs WHERE id =").
		WithArgs("run-1").
		WillReturnRows(timetableRunRow("run-1", models.RunCompleted))
	mock.ExpectExec("UPDATE timetable_runs SET status =").
		WillReturnResult(sqlmock.NewResult(1, 1))

	run, err := svc.Publish(context.Background(), "run-1")
	require.NoError(t, err)
	assert.Equal(t, models.RunPublished, run.Status)
	assert.NotNil(t, run.PublishedAt)
	assert.Equal(t, []string{"run-1"}, notifier.published)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestTimetableServicePlacementsAppliesOverlays(t *testing.T) {
	db, mock, err := sqlmock.New(sqlmock.QueryMatcherOption(sqlmock.QueryMatcherRegexp))
	require.NoError(t, err)
	defer db.Close()
	repo := repository.NewTimetableRepository(sqlx.NewDb(db, "sqlmock"))

	overlays := &mockOverlayReader{overlays: []models.ReassignmentOverlay{{
		LeaveID:               "l1",
		OriginalFacultyID:     "f1",
		SubstituteFacultyID:   "f2",
		AffectedAssignmentIDs: []string{"a1"},
	}}}
	faculty := &mockFacultyNames{names: map[string]string{"f2": "Dr. Rao"}}
	svc := NewTimetableService(repo, &mockAssignmentReader{}, &mockRoomReader{}, overlays, faculty, nil, nil, nil, tinyGrid(), scheduler.Config{}, validator.New(), zap.NewNop())

	mock.ExpectQuery("SELECT (.+) FROM timetable_runs WHERE id =").
		WithArgs("run-1").
		WillReturnRows(timetableRunRow("run-1", models.RunPublished))

	placementRows := sqlmock.NewRows([]string{"id", "run_id", "course_assignment_id", "faculty_id", "batch_id", "room_id", "day_of_week", "start_time", "end_time", "filler", "created_at", "course_name", "course_code", "faculty_name", "batch_name", "room_code"}).
		AddRow("p1", "run-1", "a1", "f1", "b1", "r1", 1, "09:00", "10:00", false, time.Now(), "Algorithms", "CS201", "Dr. Chen", "CS-2026-A", "LH-1").
		AddRow("p2", "run-1", "a2", "f1", "b1", "r1", 1, "10:00", "11:00", false, time.Now(), "Databases", "CS202", "Dr. Chen", "CS-2026-A", "LH-1")
	mock.ExpectQuery("SELECT t.id, t.run_id, (.+) FROM timetables t").
		WithArgs("run-1").
		WillReturnRows(placementRows)

	placements, err := svc.Placements(context.Background(), "run-1")
	require.NoError(t, err)
	require.Len(t, placements, 2)

	// a1 belongs to the overlay and is shown under the substitute.
	assert.Equal(t, "f2", placements[0].FacultyID)
	assert.Equal(t, "Dr. Rao", placements[0].FacultyName)
	// a2 is untouched even though the original faculty matches.
	assert.Equal(t, "f1", placements[1].FacultyID)
	assert.Equal(t, "Dr. Chen", placements[1].FacultyName)
	assert.NoError(t, mock.ExpectationsWereMet())
}
