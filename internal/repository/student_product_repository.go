package repository

import (
	"context"
	"fmt"
	"time"

	"github.com/jmoiron/sqlx"
	"github.com/lib/pq"

	"github.com/noah-isme/course-backoffice-api/internal/models"
)

// StudentProductStore is the persistence contract for student products.
type StudentProductStore interface {
	FindByID(ctx context.Context, id int64) (*models.StudentProduct, error)
	FindByStudentAndProduct(ctx context.Context, studentID, productID int64) (*models.StudentProduct, error)
	Create(ctx context.Context, sp *models.StudentProduct) error
	Update(ctx context.Context, sp *models.StudentProduct) error
	LoadDirectory(ctx context.Context, subjectID int64, vkIDs []int64) (map[int64]models.StudentDirectoryEntry, error)
}

// StudentProductRepository manages persistence for student products.
type StudentProductRepository struct {
	db sqlx.ExtContext
}

// NewStudentProductRepository constructs a StudentProductRepository.
func NewStudentProductRepository(db sqlx.ExtContext) *StudentProductRepository {
	return &StudentProductRepository{db: db}
}

const studentProductColumns = `id, student_id, product_id, offer_id, teacher_product_id, teacher_type, flow_id, cohort, teacher_grade, teacher_graded_at, expulsion_at, created_at, updated_at`

// FindByID fetches a student product by id.
func (r *StudentProductRepository) FindByID(ctx context.Context, id int64) (*models.StudentProduct, error) {
	query := fmt.Sprintf(`SELECT %s FROM student_products WHERE id = $1`, studentProductColumns)
	var sp models.StudentProduct
	if err := sqlx.GetContext(ctx, r.db, &sp, query, id); err != nil {
		return nil, err
	}
	return &sp, nil
}

// FindByStudentAndProduct fetches the unique row for (student, product).
func (r *StudentProductRepository) FindByStudentAndProduct(ctx context.Context, studentID, productID int64) (*models.StudentProduct, error) {
	query := fmt.Sprintf(`SELECT %s FROM student_products WHERE student_id = $1 AND product_id = $2`, studentProductColumns)
	var sp models.StudentProduct
	if err := sqlx.GetContext(ctx, r.db, &sp, query, studentID, productID); err != nil {
		return nil, err
	}
	return &sp, nil
}

// Create inserts a new student product, translating duplicates on
// (student_id, product_id) into the typed state error.
func (r *StudentProductRepository) Create(ctx context.Context, sp *models.StudentProduct) error {
	now := time.Now().UTC()
	sp.CreatedAt = now
	sp.UpdatedAt = now
	const query = `INSERT INTO student_products
        (student_id, product_id, offer_id, teacher_product_id, teacher_type, flow_id, cohort, teacher_grade, teacher_graded_at, expulsion_at, created_at, updated_at)
        VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12) RETURNING id`
	err := r.db.QueryRowxContext(ctx, query,
		sp.StudentID, sp.ProductID, sp.OfferID, sp.TeacherProductID, sp.TeacherType, sp.FlowID,
		sp.Cohort, sp.TeacherGrade, sp.TeacherGradedAt, sp.ExpulsionAt, sp.CreatedAt, sp.UpdatedAt,
	).Scan(&sp.ID)
	if err != nil {
		return fmt.Errorf("create student product: %w", translateConstraint(err))
	}
	return nil
}

// Update persists the whole mutable part of the row.
func (r *StudentProductRepository) Update(ctx context.Context, sp *models.StudentProduct) error {
	sp.UpdatedAt = time.Now().UTC()
	const query = `UPDATE student_products SET
        offer_id = :offer_id, teacher_product_id = :teacher_product_id, teacher_type = :teacher_type,
        flow_id = :flow_id, cohort = :cohort, teacher_grade = :teacher_grade, teacher_graded_at = :teacher_graded_at,
        expulsion_at = :expulsion_at, updated_at = :updated_at
        WHERE id = :id`
	if _, err := sqlx.NamedExecContext(ctx, r.db, query, sp); err != nil {
		return fmt.Errorf("update student product: %w", translateConstraint(err))
	}
	return nil
}

// LoadDirectory builds the validation view of students for a subject,
// keyed by vk id. When a student holds several products in the subject the
// most recently updated row wins.
func (r *StudentProductRepository) LoadDirectory(ctx context.Context, subjectID int64, vkIDs []int64) (map[int64]models.StudentDirectoryEntry, error) {
	if len(vkIDs) == 0 {
		return map[int64]models.StudentDirectoryEntry{}, nil
	}
	const query = `SELECT s.vk_id, TRIM(s.first_name || ' ' || s.last_name) AS name,
        sp.teacher_product_id, (sp.expulsion_at IS NOT NULL) AS expulsed
        FROM student_products sp
        JOIN students s ON s.id = sp.student_id
        JOIN products p ON p.id = sp.product_id
        WHERE p.subject_id = $1 AND s.vk_id = ANY($2)
        ORDER BY sp.updated_at ASC`
	var entries []models.StudentDirectoryEntry
	if err := sqlx.SelectContext(ctx, r.db, &entries, query, subjectID, pq.Array(vkIDs)); err != nil {
		return nil, fmt.Errorf("load student directory: %w", err)
	}
	directory := make(map[int64]models.StudentDirectoryEntry, len(entries))
	for _, entry := range entries {
		directory[entry.VKID] = entry
	}
	return directory, nil
}
