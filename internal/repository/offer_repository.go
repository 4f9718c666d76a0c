package repository

import (
	"context"

	"github.com/jmoiron/sqlx"

	"github.com/noah-isme/course-backoffice-api/internal/models"
)

// OfferStore is the persistence contract for offers.
type OfferStore interface {
	FindByID(ctx context.Context, id int64) (*models.Offer, error)
}

// OfferRepository manages persistence for offers.
type OfferRepository struct {
	db sqlx.ExtContext
}

// NewOfferRepository constructs an OfferRepository.
func NewOfferRepository(db sqlx.ExtContext) *OfferRepository {
	return &OfferRepository{db: db}
}

// FindByID fetches an offer by id.
func (r *OfferRepository) FindByID(ctx context.Context, id int64) (*models.Offer, error) {
	const query = `SELECT id, name, product_id, cohort, teacher_type, created_at, updated_at FROM offers WHERE id = $1`
	var offer models.Offer
	if err := sqlx.GetContext(ctx, r.db, &offer, query, id); err != nil {
		return nil, err
	}
	return &offer, nil
}
