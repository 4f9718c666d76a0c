package repository

import (
	"context"

	"github.com/jmoiron/sqlx"

	"github.com/noah-isme/course-backoffice-api/internal/models"
)

// TeacherStore is the persistence contract for teachers.
type TeacherStore interface {
	FindByID(ctx context.Context, id int64) (*models.Teacher, error)
	FindByVKID(ctx context.Context, vkID int64) (*models.Teacher, error)
}

// TeacherRepository manages persistence for teachers.
type TeacherRepository struct {
	db sqlx.ExtContext
}

// NewTeacherRepository constructs a TeacherRepository.
func NewTeacherRepository(db sqlx.ExtContext) *TeacherRepository {
	return &TeacherRepository{db: db}
}

// FindByID fetches a teacher by id.
func (r *TeacherRepository) FindByID(ctx context.Context, id int64) (*models.Teacher, error) {
	const query = `SELECT id, vk_id, first_name, last_name, created_at, updated_at FROM teachers WHERE id = $1`
	var teacher models.Teacher
	if err := sqlx.GetContext(ctx, r.db, &teacher, query, id); err != nil {
		return nil, err
	}
	return &teacher, nil
}

// FindByVKID fetches a teacher by their external vk id.
func (r *TeacherRepository) FindByVKID(ctx context.Context, vkID int64) (*models.Teacher, error) {
	const query = `SELECT id, vk_id, first_name, last_name, created_at, updated_at FROM teachers WHERE vk_id = $1`
	var teacher models.Teacher
	if err := sqlx.GetContext(ctx, r.db, &teacher, query, vkID); err != nil {
		return nil, err
	}
	return &teacher, nil
}
