package repository

import (
	"context"
	"fmt"
	"time"

	"github.com/jmoiron/sqlx"

	"github.com/noah-isme/course-backoffice-api/internal/models"
)

// SubjectStore is the persistence contract for subjects.
type SubjectStore interface {
	FindByID(ctx context.Context, id int64) (*models.Subject, error)
	List(ctx context.Context) ([]models.Subject, error)
	UpdateProperties(ctx context.Context, id int64, props models.SubjectProperties) error
}

// SubjectRepository manages persistence for subjects.
type SubjectRepository struct {
	db sqlx.ExtContext
}

// NewSubjectRepository constructs a SubjectRepository.
func NewSubjectRepository(db sqlx.ExtContext) *SubjectRepository {
	return &SubjectRepository{db: db}
}

// FindByID fetches a subject by id.
func (r *SubjectRepository) FindByID(ctx context.Context, id int64) (*models.Subject, error) {
	const query = `SELECT id, name, eng_name, properties, created_at, updated_at FROM subjects WHERE id = $1`
	var subject models.Subject
	if err := sqlx.GetContext(ctx, r.db, &subject, query, id); err != nil {
		return nil, err
	}
	return &subject, nil
}

// List returns all subjects ordered by id.
func (r *SubjectRepository) List(ctx context.Context) ([]models.Subject, error) {
	const query = `SELECT id, name, eng_name, properties, created_at, updated_at FROM subjects ORDER BY id`
	var subjects []models.Subject
	if err := sqlx.SelectContext(ctx, r.db, &subjects, query); err != nil {
		return nil, fmt.Errorf("list subjects: %w", err)
	}
	return subjects, nil
}

// UpdateProperties replaces the subject's JSON properties bag.
func (r *SubjectRepository) UpdateProperties(ctx context.Context, id int64, props models.SubjectProperties) error {
	const query = `UPDATE subjects SET properties = $2, updated_at = $3 WHERE id = $1`
	res, err := r.db.ExecContext(ctx, query, id, props, time.Now().UTC())
	if err != nil {
		return fmt.Errorf("update subject properties: %w", err)
	}
	if affected, err := res.RowsAffected(); err == nil && affected == 0 {
		return fmt.Errorf("update subject properties: subject %d missing", id)
	}
	return nil
}
