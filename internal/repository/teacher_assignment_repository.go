package repository

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/jmoiron/sqlx"

	"github.com/noah-isme/course-backoffice-api/internal/models"
	appErrors "github.com/noah-isme/course-backoffice-api/pkg/errors"
)

// TeacherAssignmentStore is the persistence contract for the append-only
// assignment history.
type TeacherAssignmentStore interface {
	Create(ctx context.Context, assignment *models.TeacherAssignment) error
	ExpulseStudent(ctx context.Context, studentProductID, teacherProductID int64) error
	ExpulseStudentSafely(ctx context.Context, studentProductID, teacherProductID int64) error
	FindLastTeacherProductID(ctx context.Context, studentProductID int64) (*int64, error)
}

// TeacherAssignmentRepository manages the assignment history. Rows are only
// appended or closed, never deleted.
type TeacherAssignmentRepository struct {
	db sqlx.ExtContext
}

// NewTeacherAssignmentRepository constructs a TeacherAssignmentRepository.
func NewTeacherAssignmentRepository(db sqlx.ExtContext) *TeacherAssignmentRepository {
	return &TeacherAssignmentRepository{db: db}
}

// Create appends a history row. AssignmentAt defaults to now.
func (r *TeacherAssignmentRepository) Create(ctx context.Context, assignment *models.TeacherAssignment) error {
	now := time.Now().UTC()
	if assignment.AssignmentAt.IsZero() {
		assignment.AssignmentAt = now
	}
	assignment.CreatedAt = now
	assignment.UpdatedAt = now
	const query = `INSERT INTO teacher_assignments
        (student_product_id, teacher_product_id, assignment_at, removed_at, created_at, updated_at)
        VALUES ($1, $2, $3, $4, $5, $6) RETURNING id`
	err := r.db.QueryRowxContext(ctx, query,
		assignment.StudentProductID, assignment.TeacherProductID,
		assignment.AssignmentAt, assignment.RemovedAt, assignment.CreatedAt, assignment.UpdatedAt,
	).Scan(&assignment.ID)
	if err != nil {
		return fmt.Errorf("create teacher assignment: %w", err)
	}
	return nil
}

// ExpulseStudent closes the live row for the pair, failing when none exists.
func (r *TeacherAssignmentRepository) ExpulseStudent(ctx context.Context, studentProductID, teacherProductID int64) error {
	closed, err := r.closeLive(ctx, studentProductID, teacherProductID)
	if err != nil {
		return err
	}
	if !closed {
		return appErrors.Clone(appErrors.ErrTeacherAssignmentNotFound, "")
	}
	return nil
}

// ExpulseStudentSafely closes the live row for the pair when one exists.
// Used where a live link cannot be assumed.
func (r *TeacherAssignmentRepository) ExpulseStudentSafely(ctx context.Context, studentProductID, teacherProductID int64) error {
	_, err := r.closeLive(ctx, studentProductID, teacherProductID)
	return err
}

func (r *TeacherAssignmentRepository) closeLive(ctx context.Context, studentProductID, teacherProductID int64) (bool, error) {
	now := time.Now().UTC()
	const query = `UPDATE teacher_assignments SET removed_at = $3, updated_at = $3
        WHERE student_product_id = $1 AND teacher_product_id = $2 AND removed_at IS NULL`
	res, err := r.db.ExecContext(ctx, query, studentProductID, teacherProductID, now)
	if err != nil {
		return false, fmt.Errorf("close teacher assignment: %w", err)
	}
	affected, err := res.RowsAffected()
	if err != nil {
		return false, fmt.Errorf("close teacher assignment: %w", err)
	}
	return affected > 0, nil
}

// FindLastTeacherProductID returns the teacher product of the most recent
// assignment, nil when the student product has no history.
func (r *TeacherAssignmentRepository) FindLastTeacherProductID(ctx context.Context, studentProductID int64) (*int64, error) {
	const query = `SELECT teacher_product_id FROM teacher_assignments
        WHERE student_product_id = $1 ORDER BY assignment_at DESC, id DESC LIMIT 1`
	var teacherProductID int64
	if err := sqlx.GetContext(ctx, r.db, &teacherProductID, query, studentProductID); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, nil
		}
		return nil, fmt.Errorf("find last teacher product: %w", err)
	}
	return &teacherProductID, nil
}
