package repository

import (
	"context"
	"database/sql"
	"testing"

	sqlmock "github.com/DATA-DOG/go-sqlmock"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/noah-isme/course-backoffice-api/internal/models"
	appErrors "github.com/noah-isme/course-backoffice-api/pkg/errors"
)

func TestTeacherAssignmentRepositoryCreate(t *testing.T) {
	db, mock, cleanup := newMockDB(t)
	defer cleanup()
	repo := NewTeacherAssignmentRepository(db)

	mock.ExpectQuery("INSERT INTO teacher_assignments").
		WithArgs(int64(70), int64(50), sqlmock.AnyArg(), nil, sqlmock.AnyArg(), sqlmock.AnyArg()).
		WillReturnRows(sqlmock.NewRows([]string{"id"}).AddRow(9))

	assignment := &models.TeacherAssignment{StudentProductID: 70, TeacherProductID: 50}
	require.NoError(t, repo.Create(context.Background(), assignment))
	assert.Equal(t, int64(9), assignment.ID)
	assert.False(t, assignment.AssignmentAt.IsZero())
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestTeacherAssignmentRepositoryExpulseStudentMissing(t *testing.T) {
	db, mock, cleanup := newMockDB(t)
	defer cleanup()
	repo := NewTeacherAssignmentRepository(db)

	mock.ExpectExec("UPDATE teacher_assignments SET removed_at").
		WithArgs(int64(70), int64(50), sqlmock.AnyArg()).
		WillReturnResult(sqlmock.NewResult(0, 0))

	err := repo.ExpulseStudent(context.Background(), 70, 50)
	assert.ErrorIs(t, err, appErrors.ErrTeacherAssignmentNotFound)
}

func TestTeacherAssignmentRepositoryExpulseStudentSafelyMissing(t *testing.T) {
	db, mock, cleanup := newMockDB(t)
	defer cleanup()
	repo := NewTeacherAssignmentRepository(db)

	mock.ExpectExec("UPDATE teacher_assignments SET removed_at").
		WithArgs(int64(70), int64(50), sqlmock.AnyArg()).
		WillReturnResult(sqlmock.NewResult(0, 0))

	assert.NoError(t, repo.ExpulseStudentSafely(context.Background(), 70, 50))
}

func TestTeacherAssignmentRepositoryFindLastTeacherProductID(t *testing.T) {
	db, mock, cleanup := newMockDB(t)
	defer cleanup()
	repo := NewTeacherAssignmentRepository(db)

	mock.ExpectQuery("SELECT teacher_product_id FROM teacher_assignments").
		WithArgs(int64(70)).
		WillReturnRows(sqlmock.NewRows([]string{"teacher_product_id"}).AddRow(50))

	id, err := repo.FindLastTeacherProductID(context.Background(), 70)
	require.NoError(t, err)
	require.NotNil(t, id)
	assert.Equal(t, int64(50), *id)
}

func TestTeacherAssignmentRepositoryFindLastTeacherProductIDEmpty(t *testing.T) {
	db, mock, cleanup := newMockDB(t)
	defer cleanup()
	repo := NewTeacherAssignmentRepository(db)

	mock.ExpectQuery("SELECT teacher_product_id FROM teacher_assignments").
		WithArgs(int64(70)).
		WillReturnError(sql.ErrNoRows)

	id, err := repo.FindLastTeacherProductID(context.Background(), 70)
	require.NoError(t, err)
	assert.Nil(t, id)
}
