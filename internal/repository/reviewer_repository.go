package repository

import (
	"context"
	"fmt"

	"github.com/jmoiron/sqlx"

	"github.com/noah-isme/course-backoffice-api/internal/models"
)

// ReviewerStore is the persistence contract for homework reviewers.
type ReviewerStore interface {
	ListActiveBySubject(ctx context.Context, subjectID int64) ([]models.Reviewer, error)
}

// ReviewerRepository manages persistence for reviewers.
type ReviewerRepository struct {
	db sqlx.ExtContext
}

// NewReviewerRepository constructs a ReviewerRepository.
func NewReviewerRepository(db sqlx.ExtContext) *ReviewerRepository {
	return &ReviewerRepository{db: db}
}

// ListActiveBySubject returns the active reviewer pool of a subject.
func (r *ReviewerRepository) ListActiveBySubject(ctx context.Context, subjectID int64) ([]models.Reviewer, error) {
	const query = `SELECT id, subject_id, first_name, last_name, email, desired, max_homeworks, min_homeworks, abs_max, is_active, created_at, updated_at
        FROM reviewers WHERE subject_id = $1 AND is_active = TRUE ORDER BY id`
	var reviewers []models.Reviewer
	if err := sqlx.SelectContext(ctx, r.db, &reviewers, query, subjectID); err != nil {
		return nil, fmt.Errorf("list active reviewers: %w", err)
	}
	return reviewers, nil
}
