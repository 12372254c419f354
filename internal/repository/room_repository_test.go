package repository

import (
	"context"
	"regexp"
	"testing"
	"time"

	sqlmock "github.com/DATA-DOG/go-sqlmock"
	"github.com/jmoiron/sqlx"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/acadsync/acadsync-api/internal/models"
)

func newRepoMock(t *testing.T) (*sqlx.DB, sqlmock.Sqlmock, func()) {
	db, mock, err := sqlmock.New(sqlmock.QueryMatcherOption(sqlmock.QueryMatcherRegexp))
	require.NoError(t, err)
	return sqlx.NewDb(db, "sqlmock"), mock, func() { db.Close() }
}

func roomRows() *sqlmock.Rows {
	return sqlmock.NewRows([]string{"id", "name", "code", "capacity", "room_type", "department_id", "active", "created_at"})
}

func TestRoomRepositoryList(t *testing.T) {
	db, mock, cleanup := newRepoMock(t)
	defer cleanup()
	repo := NewRoomRepository(db)

	mock.ExpectQuery(regexp.QuoteMeta("SELECT id, name, code, capacity, room_type, department_id, active, created_at FROM rooms WHERE 1=1 ORDER BY code ASC LIMIT 20 OFFSET 0")).
		WillReturnRows(roomRows().AddRow("r1", "Lecture Hall 1", "LH-1", 120, "lecture", nil, true, time.Now()))
	mock.ExpectQuery(regexp.QuoteMeta("SELECT COUNT(*) FROM rooms WHERE 1=1")).
		WillReturnRows(sqlmock.NewRows([]string{"count"}).AddRow(1))

	rooms, total, err := repo.List(context.Background(), models.RoomFilter{})
	require.NoError(t, err)
	assert.Len(t, rooms, 1)
	assert.Equal(t, 1, total)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestRoomRepositoryListWithFilters(t *testing.T) {
	db, mock, cleanup := newRepoMock(t)
	defer cleanup()
	repo := NewRoomRepository(db)

	active := true
	mock.ExpectQuery(regexp.QuoteMeta("SELECT id, name, code, capacity, room_type, department_id, active, created_at FROM rooms WHERE 1=1 AND room_type = $1 AND capacity >= $2 AND active = $3 ORDER BY capacity DESC LIMIT 10 OFFSET 10")).
		WithArgs("lab", 40, true).
		WillReturnRows(roomRows())
	mock.ExpectQuery(regexp.QuoteMeta("SELECT COUNT(*) FROM rooms WHERE 1=1 AND room_type = $1 AND capacity >= $2 AND active = $3")).
		WithArgs("lab", 40, true).
		WillReturnRows(sqlmock.NewRows([]string{"count"}).AddRow(0))

	_, total, err := repo.List(context.Background(), models.RoomFilter{
		RoomType:    "lab",
		MinCapacity: 40,
		Active:      &active,
		Page:        2,
		PageSize:    10,
		SortBy:      "capacity",
		SortOrder:   "desc",
	})
	require.NoError(t, err)
	assert.Equal(t, 0, total)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestRoomRepositoryListActive(t *testing.T) {
	db, mock, cleanup := newRepoMock(t)
	defer cleanup()
	repo := NewRoomRepository(db)

	mock.ExpectQuery(regexp.QuoteMeta("SELECT id, name, code, capacity, room_type, department_id, active, created_at FROM rooms WHERE active = TRUE ORDER BY code")).
		WillReturnRows(roomRows().
			AddRow("r1", "Lecture Hall 1", "LH-1", 120, "lecture", nil, true, time.Now()).
			AddRow("r2", "Lab 2", "LB-2", 40, "lab", nil, true, time.Now()))

	rooms, err := repo.ListActive(context.Background())
	require.NoError(t, err)
	require.Len(t, rooms, 2)
	assert.Equal(t, "LH-1", rooms[0].Code)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestRoomRepositoryCreateAndDeactivate(t *testing.T) {
	db, mock, cleanup := newRepoMock(t)
	defer cleanup()
	repo := NewRoomRepository(db)

	mock.ExpectExec("INSERT INTO rooms").
		WithArgs(sqlmock.AnyArg(), "Lecture Hall 1", "LH-1", 120, "lecture", nil, true, sqlmock.AnyArg()).
		WillReturnResult(sqlmock.NewResult(1, 1))

	room := &models.Room{Name: "Lecture Hall 1", Code: "LH-1", Capacity: 120, RoomType: "lecture", Active: true}
	require.NoError(t, repo.Create(context.Background(), room))
	assert.NotEmpty(t, room.ID)

	mock.ExpectExec("UPDATE rooms SET active = FALSE").
		WithArgs("r1").
		WillReturnResult(sqlmock.NewResult(1, 1))

	require.NoError(t, repo.Deactivate(context.Background(), "r1"))
	assert.NoError(t, mock.ExpectationsWereMet())
}
