package repository

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/jmoiron/sqlx"

	"github.com/noah-isme/course-backoffice-api/internal/models"
)

// TeacherProductStore is the persistence contract for teacher products.
type TeacherProductStore interface {
	FindByID(ctx context.Context, id int64) (*models.TeacherProduct, error)
	FindByTeacherAndProduct(ctx context.Context, teacherID, productID int64) (*models.TeacherProduct, error)
	GetForEnroll(ctx context.Context, productID int64, teacherType models.TeacherType, flowID int64) (*models.TeacherProduct, error)
	CountLiveAssignments(ctx context.Context, id int64) (int, error)
	UpdateGrade(ctx context.Context, id int64, averageGrade float64, gradeCounter int) error
	Stats(ctx context.Context, id int64) (*models.TeacherProductStats, error)
}

// TeacherProductRepository manages persistence for teacher products.
type TeacherProductRepository struct {
	db sqlx.ExtContext
}

// NewTeacherProductRepository constructs a TeacherProductRepository.
func NewTeacherProductRepository(db sqlx.ExtContext) *TeacherProductRepository {
	return &TeacherProductRepository{db: db}
}

const teacherProductColumns = `id, teacher_id, product_id, type, is_active, max_students, average_grade, grade_counter, created_at, updated_at`

// FindByID fetches a teacher product by id.
func (r *TeacherProductRepository) FindByID(ctx context.Context, id int64) (*models.TeacherProduct, error) {
	query := fmt.Sprintf(`SELECT %s FROM teacher_products WHERE id = $1`, teacherProductColumns)
	var tp models.TeacherProduct
	if err := sqlx.GetContext(ctx, r.db, &tp, query, id); err != nil {
		return nil, err
	}
	return &tp, nil
}

// FindByTeacherAndProduct fetches the teacher's instance on a product.
func (r *TeacherProductRepository) FindByTeacherAndProduct(ctx context.Context, teacherID, productID int64) (*models.TeacherProduct, error) {
	query := fmt.Sprintf(`SELECT %s FROM teacher_products WHERE teacher_id = $1 AND product_id = $2`, teacherProductColumns)
	var tp models.TeacherProduct
	if err := sqlx.GetContext(ctx, r.db, &tp, query, teacherID, productID); err != nil {
		return nil, err
	}
	return &tp, nil
}

// GetForEnroll picks the teacher product for a new enrollment: the active
// candidate with capacity and the highest average grade, ties broken by
// lower id. With a flow the candidate must also be linked to it; when the
// flow-constrained query yields nothing the constraint is dropped.
func (r *TeacherProductRepository) GetForEnroll(ctx context.Context, productID int64, teacherType models.TeacherType, flowID int64) (*models.TeacherProduct, error) {
	if flowID != 0 {
		query := fmt.Sprintf(`SELECT %s FROM teacher_products tp
            JOIN teacher_product_flows tpf ON tpf.teacher_product_id = tp.id
            WHERE tp.product_id = $1 AND tp.type = $2 AND tp.is_active = TRUE AND tp.max_students > 0 AND tpf.flow_id = $3
            ORDER BY tp.average_grade DESC, tp.id ASC LIMIT 1`,
			prefixColumns("tp", teacherProductColumns))
		var tp models.TeacherProduct
		err := sqlx.GetContext(ctx, r.db, &tp, query, productID, teacherType, flowID)
		if err == nil {
			return &tp, nil
		}
		if !errors.Is(err, sql.ErrNoRows) {
			return nil, fmt.Errorf("get teacher product for enroll: %w", err)
		}
	}

	query := fmt.Sprintf(`SELECT %s FROM teacher_products
        WHERE product_id = $1 AND type = $2 AND is_active = TRUE AND max_students > 0
        ORDER BY average_grade DESC, id ASC LIMIT 1`, teacherProductColumns)
	var tp models.TeacherProduct
	if err := sqlx.GetContext(ctx, r.db, &tp, query, productID, teacherType); err != nil {
		return nil, err
	}
	return &tp, nil
}

// CountLiveAssignments counts open assignment rows for the teacher product.
func (r *TeacherProductRepository) CountLiveAssignments(ctx context.Context, id int64) (int, error) {
	const query = `SELECT COUNT(*) FROM teacher_assignments WHERE teacher_product_id = $1 AND removed_at IS NULL`
	var count int
	if err := sqlx.GetContext(ctx, r.db, &count, query, id); err != nil {
		return 0, fmt.Errorf("count live assignments: %w", err)
	}
	return count, nil
}

// UpdateGrade persists a recomputed running grade average.
func (r *TeacherProductRepository) UpdateGrade(ctx context.Context, id int64, averageGrade float64, gradeCounter int) error {
	const query = `UPDATE teacher_products SET average_grade = $2, grade_counter = $3, updated_at = $4 WHERE id = $1`
	if _, err := r.db.ExecContext(ctx, query, id, averageGrade, gradeCounter, time.Now().UTC()); err != nil {
		return fmt.Errorf("update teacher product grade: %w", err)
	}
	return nil
}

// Stats loads a teacher product together with its assignment aggregates.
// Removals are counted over the trailing month.
func (r *TeacherProductRepository) Stats(ctx context.Context, id int64) (*models.TeacherProductStats, error) {
	query := fmt.Sprintf(`SELECT %s,
        COALESCE((SELECT COUNT(*) FROM teacher_assignments ta WHERE ta.teacher_product_id = tp.id AND ta.removed_at IS NULL), 0) AS actual_students,
        COALESCE((SELECT COUNT(*) FROM teacher_assignments ta WHERE ta.teacher_product_id = tp.id), 0) AS total_students,
        COALESCE((SELECT COUNT(*) FROM teacher_assignments ta WHERE ta.teacher_product_id = tp.id AND ta.removed_at > NOW() - INTERVAL '1 month'), 0) AS removal_students
        FROM teacher_products tp WHERE tp.id = $1`, prefixColumns("tp", teacherProductColumns))
	var stats models.TeacherProductStats
	if err := sqlx.GetContext(ctx, r.db, &stats, query, id); err != nil {
		return nil, err
	}
	return &stats, nil
}
