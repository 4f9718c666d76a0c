package repository

import (
	"context"
	"database/sql"
	"testing"
	"time"

	sqlmock "github.com/DATA-DOG/go-sqlmock"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/noah-isme/course-backoffice-api/internal/models"
)

func teacherProductRows(now time.Time) *sqlmock.Rows {
	return sqlmock.NewRows([]string{
		"id", "teacher_id", "product_id", "type", "is_active",
		"max_students", "average_grade", "grade_counter", "created_at", "updated_at",
	}).AddRow(50, 5, 10, "CURATOR", true, 10, 4.9, 12, now, now)
}

// The flow-constrained pick falls back to the unconstrained query when no
// teacher product is linked to the flow.
func TestTeacherProductRepositoryGetForEnrollFlowFallback(t *testing.T) {
	db, mock, cleanup := newMockDB(t)
	defer cleanup()
	repo := NewTeacherProductRepository(db)

	mock.ExpectQuery("teacher_product_flows").
		WithArgs(int64(10), models.TeacherTypeCurator, int64(33)).
		WillReturnError(sql.ErrNoRows)
	mock.ExpectQuery(`ORDER BY average_grade DESC, id ASC`).
		WithArgs(int64(10), models.TeacherTypeCurator).
		WillReturnRows(teacherProductRows(time.Now()))

	tp, err := repo.GetForEnroll(context.Background(), 10, models.TeacherTypeCurator, 33)
	require.NoError(t, err)
	assert.Equal(t, int64(50), tp.ID)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestTeacherProductRepositoryGetForEnrollWithoutFlow(t *testing.T) {
	db, mock, cleanup := newMockDB(t)
	defer cleanup()
	repo := NewTeacherProductRepository(db)

	mock.ExpectQuery(`ORDER BY average_grade DESC, id ASC`).
		WithArgs(int64(10), models.TeacherTypeMentor).
		WillReturnRows(teacherProductRows(time.Now()))

	tp, err := repo.GetForEnroll(context.Background(), 10, models.TeacherTypeMentor, 0)
	require.NoError(t, err)
	assert.Equal(t, int64(5), tp.TeacherID)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestTeacherProductRepositoryCountLiveAssignments(t *testing.T) {
	db, mock, cleanup := newMockDB(t)
	defer cleanup()
	repo := NewTeacherProductRepository(db)

	mock.ExpectQuery(`SELECT COUNT\(\*\) FROM teacher_assignments`).
		WithArgs(int64(50)).
		WillReturnRows(sqlmock.NewRows([]string{"count"}).AddRow(3))

	count, err := repo.CountLiveAssignments(context.Background(), 50)
	require.NoError(t, err)
	assert.Equal(t, 3, count)
}

func TestTeacherProductRepositoryUpdateGrade(t *testing.T) {
	db, mock, cleanup := newMockDB(t)
	defer cleanup()
	repo := NewTeacherProductRepository(db)

	mock.ExpectExec("UPDATE teacher_products SET average_grade").
		WithArgs(int64(50), 4.0, 3, sqlmock.AnyArg()).
		WillReturnResult(sqlmock.NewResult(0, 1))

	require.NoError(t, repo.UpdateGrade(context.Background(), 50, 4.0, 3))
	assert.NoError(t, mock.ExpectationsWereMet())
}

// Stats counts removals over the trailing month only.
func TestTeacherProductRepositoryStats(t *testing.T) {
	db, mock, cleanup := newMockDB(t)
	defer cleanup()
	repo := NewTeacherProductRepository(db)

	now := time.Now()
	rows := sqlmock.NewRows([]string{
		"id", "teacher_id", "product_id", "type", "is_active",
		"max_students", "average_grade", "grade_counter", "created_at", "updated_at",
		"actual_students", "total_students", "removal_students",
	}).AddRow(50, 5, 10, "CURATOR", true, 10, 4.0, 12, now, now, 5, 10, 2)

	mock.ExpectQuery(`removed_at > NOW\(\) - INTERVAL '1 month'`).
		WithArgs(int64(50)).
		WillReturnRows(rows)

	stats, err := repo.Stats(context.Background(), 50)
	require.NoError(t, err)
	assert.Equal(t, 5, stats.ActualStudents)
	assert.Equal(t, 10, stats.TotalStudents)
	assert.Equal(t, 2, stats.RemovalStudents)
	assert.InDelta(t, 0.5, stats.Fullness(), 1e-9)
	assert.InDelta(t, 0.8, stats.Removability(), 1e-9)
	assert.InDelta(t, 1.6, stats.RatingCoef(), 1e-9)
	assert.NoError(t, mock.ExpectationsWereMet())
}
