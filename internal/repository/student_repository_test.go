package repository

import (
	"context"
	"testing"
	"time"

	sqlmock "github.com/DATA-DOG/go-sqlmock"
	"github.com/jmoiron/sqlx"
	"github.com/lib/pq"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/noah-isme/course-backoffice-api/internal/models"
	appErrors "github.com/noah-isme/course-backoffice-api/pkg/errors"
)

func newMockDB(t *testing.T) (*sqlx.DB, sqlmock.Sqlmock, func()) {
	t.Helper()
	db, mock, err := sqlmock.New(sqlmock.QueryMatcherOption(sqlmock.QueryMatcherRegexp))
	require.NoError(t, err)
	return sqlx.NewDb(db, "sqlmock"), mock, func() { db.Close() }
}

func studentRows(now time.Time) *sqlmock.Rows {
	return sqlmock.NewRows([]string{"id", "vk_id", "first_name", "last_name", "created_at", "updated_at"}).
		AddRow(7, 111, "Ivan", "Ivanov", now, now)
}

func TestStudentRepositoryFindByVKID(t *testing.T) {
	db, mock, cleanup := newMockDB(t)
	defer cleanup()
	repo := NewStudentRepository(db)

	mock.ExpectQuery(`SELECT id, vk_id, first_name, last_name, created_at, updated_at FROM students WHERE vk_id = \$1`).
		WithArgs(int64(111)).
		WillReturnRows(studentRows(time.Now()))

	student, err := repo.FindByVKID(context.Background(), 111)
	require.NoError(t, err)
	assert.Equal(t, int64(7), student.ID)
	assert.Equal(t, "Ivan", student.FirstName)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestStudentRepositoryCreate(t *testing.T) {
	db, mock, cleanup := newMockDB(t)
	defer cleanup()
	repo := NewStudentRepository(db)

	mock.ExpectQuery("INSERT INTO students").
		WithArgs(int64(111), "Ivan", "Ivanov", sqlmock.AnyArg(), sqlmock.AnyArg()).
		WillReturnRows(sqlmock.NewRows([]string{"id"}).AddRow(7))

	student := &models.Student{VKID: 111, FirstName: "Ivan", LastName: "Ivanov"}
	require.NoError(t, repo.Create(context.Background(), student))
	assert.Equal(t, int64(7), student.ID)
	assert.False(t, student.CreatedAt.IsZero())
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestStudentRepositoryCreateVKIDConflict(t *testing.T) {
	db, mock, cleanup := newMockDB(t)
	defer cleanup()
	repo := NewStudentRepository(db)

	mock.ExpectQuery("INSERT INTO students").
		WillReturnError(&pq.Error{Code: "23505", Constraint: "students_vk_id_key"})

	err := repo.Create(context.Background(), &models.Student{VKID: 111})
	assert.ErrorIs(t, err, appErrors.ErrStudentVKIDAlreadyUsed)
}

func TestStudentRepositoryUpdateVKID(t *testing.T) {
	db, mock, cleanup := newMockDB(t)
	defer cleanup()
	repo := NewStudentRepository(db)

	now := time.Now()
	rows := sqlmock.NewRows([]string{"id", "vk_id", "first_name", "last_name", "created_at", "updated_at"}).
		AddRow(7, 333, "Ivan", "Ivanov", now, now)
	mock.ExpectQuery("UPDATE students SET vk_id").
		WithArgs(int64(7), int64(333), sqlmock.AnyArg()).
		WillReturnRows(rows)

	student, err := repo.UpdateVKID(context.Background(), 7, 333)
	require.NoError(t, err)
	assert.Equal(t, int64(333), student.VKID)
	assert.NoError(t, mock.ExpectationsWereMet())
}
