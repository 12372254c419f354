package repository

import (
	"context"
	"testing"
	"time"

	sqlmock "github.com/DATA-DOG/go-sqlmock"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/acadsync/acadsync-api/internal/models"
)

func assignmentDetailRows() *sqlmock.Rows {
	return sqlmock.NewRows([]string{
		"id", "course_id", "faculty_id", "batch_id", "academic_year", "semester", "hours_per_week", "created_at",
		"course_name", "course_code", "course_department_id", "faculty_name", "batch_name", "batch_student_count",
	})
}

func TestCourseAssignmentRepositoryListByTerm(t *testing.T) {
	db, mock, cleanup := newRepoMock(t)
	defer cleanup()
	repo := NewCourseAssignmentRepository(db)

	dept := "d1"
	rows := assignmentDetailRows().
		AddRow("a1", "c1", "f1", "b1", "2026-2027", 1, 3, time.Now(), "Algorithms", "CS201", &dept, "Dr. Chen", "CS-2026-A", 38).
		AddRow("a2", "c2", "f2", "b1", "2026-2027", 1, 4, time.Now(), "Databases", "CS202", &dept, "Dr. Rao", "CS-2026-A", 38)
	mock.ExpectQuery("SELECT ca.id, ca.course_id, (.+) FROM course_assignments ca").
		WithArgs("2026-2027", 1).
		WillReturnRows(rows)

	list, err := repo.ListByTerm(context.Background(), "2026-2027", 1)
	require.NoError(t, err)
	require.Len(t, list, 2)
	assert.Equal(t, "Algorithms", list[0].CourseName)
	assert.Equal(t, 38, list[0].BatchStudentCount)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestCourseAssignmentRepositoryListTerms(t *testing.T) {
	db, mock, cleanup := newRepoMock(t)
	defer cleanup()
	repo := NewCourseAssignmentRepository(db)

	rows := sqlmock.NewRows([]string{"academic_year", "semester"}).
		AddRow("2025-2026", 2).
		AddRow("2026-2027", 1)
	mock.ExpectQuery("SELECT DISTINCT academic_year, semester FROM course_assignments").
		WillReturnRows(rows)

	terms, err := repo.ListTerms(context.Background())
	require.NoError(t, err)
	require.Len(t, terms, 2)
	assert.Equal(t, models.Term{AcademicYear: "2025-2026", Semester: 2}, terms[0])
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestCourseAssignmentRepositoryListByFacultyAndTerm(t *testing.T) {
	db, mock, cleanup := newRepoMock(t)
	defer cleanup()
	repo := NewCourseAssignmentRepository(db)

	mock.ExpectQuery("SELECT ca.id, ca.course_id, (.+) FROM course_assignments ca").
		WithArgs("f1", "2026-2027", 1).
		WillReturnRows(assignmentDetailRows().
			AddRow("a1", "c1", "f1", "b1", "2026-2027", 1, 3, time.Now(), "Algorithms", "CS201", nil, "Dr. Chen", "CS-2026-A", 38))

	list, err := repo.ListByFacultyAndTerm(context.Background(), "f1", "2026-2027", 1)
	require.NoError(t, err)
	require.Len(t, list, 1)
	assert.Equal(t, "f1", list[0].FacultyID)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestCourseAssignmentRepositoryCreateWithTx(t *testing.T) {
	db, mock, cleanup := newRepoMock(t)
	defer cleanup()
	repo := NewCourseAssignmentRepository(db)

	mock.ExpectBegin()
	mock.ExpectExec("INSERT INTO course_assignments").
		WithArgs(sqlmock.AnyArg(), "c1", "f2", "b1", "2026-2027", 1, 3, sqlmock.AnyArg()).
		WillReturnResult(sqlmock.NewResult(1, 1))
	mock.ExpectCommit()

	tx, err := db.BeginTxx(context.Background(), nil)
	require.NoError(t, err)

	a := &models.CourseAssignment{CourseID: "c1", FacultyID: "f2", BatchID: "b1", AcademicYear: "2026-2027", Semester: 1, HoursPerWeek: 3}
	require.NoError(t, repo.CreateWithTx(context.Background(), tx, a))
	assert.NotEmpty(t, a.ID)
	require.NoError(t, tx.Commit())
	assert.NoError(t, mock.ExpectationsWereMet())
}
