package repository

import (
	"context"
	"fmt"
	"time"

	"github.com/jmoiron/sqlx"

	"github.com/noah-isme/course-backoffice-api/internal/models"
)

// DistributionStore is the persistence contract for distribution snapshots.
type DistributionStore interface {
	Create(ctx context.Context, distribution *models.Distribution) error
	FindByID(ctx context.Context, id int64) (*models.Distribution, error)
}

// DistributionRepository manages persistence for distribution snapshots.
type DistributionRepository struct {
	db sqlx.ExtContext
}

// NewDistributionRepository constructs a DistributionRepository.
func NewDistributionRepository(db sqlx.ExtContext) *DistributionRepository {
	return &DistributionRepository{db: db}
}

// Create stores the snapshot of one distribution run.
func (r *DistributionRepository) Create(ctx context.Context, distribution *models.Distribution) error {
	now := time.Now().UTC()
	distribution.CreatedAt = now
	distribution.UpdatedAt = now
	const query = `INSERT INTO distributions (subject_id, data, created_at, updated_at)
        VALUES ($1, $2, $3, $4) RETURNING id`
	err := r.db.QueryRowxContext(ctx, query,
		distribution.SubjectID, distribution.Data, distribution.CreatedAt, distribution.UpdatedAt,
	).Scan(&distribution.ID)
	if err != nil {
		return fmt.Errorf("create distribution: %w", err)
	}
	return nil
}

// FindByID fetches a distribution snapshot by id.
func (r *DistributionRepository) FindByID(ctx context.Context, id int64) (*models.Distribution, error) {
	const query = `SELECT id, subject_id, data, created_at, updated_at FROM distributions WHERE id = $1`
	var distribution models.Distribution
	if err := sqlx.GetContext(ctx, r.db, &distribution, query, id); err != nil {
		return nil, err
	}
	return &distribution, nil
}
