package repository

import (
	"context"
	"fmt"
	"time"

	"github.com/jmoiron/sqlx"

	"github.com/noah-isme/course-backoffice-api/internal/models"
)

// StudentStore is the persistence contract for students.
type StudentStore interface {
	FindByID(ctx context.Context, id int64) (*models.Student, error)
	FindByVKID(ctx context.Context, vkID int64) (*models.Student, error)
	Create(ctx context.Context, student *models.Student) error
	UpdateVKID(ctx context.Context, id, vkID int64) (*models.Student, error)
}

// StudentRepository manages persistence for student records.
type StudentRepository struct {
	db sqlx.ExtContext
}

// NewStudentRepository constructs a StudentRepository bound to a pool or
// transaction handle.
func NewStudentRepository(db sqlx.ExtContext) *StudentRepository {
	return &StudentRepository{db: db}
}

// FindByID fetches a student by id.
func (r *StudentRepository) FindByID(ctx context.Context, id int64) (*models.Student, error) {
	const query = `SELECT id, vk_id, first_name, last_name, created_at, updated_at FROM students WHERE id = $1`
	var student models.Student
	if err := sqlx.GetContext(ctx, r.db, &student, query, id); err != nil {
		return nil, err
	}
	return &student, nil
}

// FindByVKID fetches a student by their external vk id.
func (r *StudentRepository) FindByVKID(ctx context.Context, vkID int64) (*models.Student, error) {
	const query = `SELECT id, vk_id, first_name, last_name, created_at, updated_at FROM students WHERE vk_id = $1`
	var student models.Student
	if err := sqlx.GetContext(ctx, r.db, &student, query, vkID); err != nil {
		return nil, err
	}
	return &student, nil
}

// Create inserts a new student, translating vk-id collisions into the
// typed conflict error.
func (r *StudentRepository) Create(ctx context.Context, student *models.Student) error {
	now := time.Now().UTC()
	student.CreatedAt = now
	student.UpdatedAt = now
	const query = `INSERT INTO students (vk_id, first_name, last_name, created_at, updated_at)
        VALUES ($1, $2, $3, $4, $5) RETURNING id`
	if err := r.db.QueryRowxContext(ctx, query, student.VKID, student.FirstName, student.LastName, student.CreatedAt, student.UpdatedAt).Scan(&student.ID); err != nil {
		return fmt.Errorf("create student: %w", translateConstraint(err))
	}
	return nil
}

// UpdateVKID rebinds a student to a new vk id.
func (r *StudentRepository) UpdateVKID(ctx context.Context, id, vkID int64) (*models.Student, error) {
	const query = `UPDATE students SET vk_id = $2, updated_at = $3 WHERE id = $1
        RETURNING id, vk_id, first_name, last_name, created_at, updated_at`
	var student models.Student
	if err := r.db.QueryRowxContext(ctx, query, id, vkID, time.Now().UTC()).StructScan(&student); err != nil {
		return nil, fmt.Errorf("update student vk id: %w", translateConstraint(err))
	}
	return &student, nil
}
