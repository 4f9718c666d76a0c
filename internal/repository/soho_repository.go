package repository

import (
	"context"
	"fmt"
	"time"

	"github.com/jmoiron/sqlx"

	"github.com/noah-isme/course-backoffice-api/internal/models"
)

// SohoAccountStore is the persistence contract for external soho accounts.
type SohoAccountStore interface {
	FindByID(ctx context.Context, id int64) (*models.SohoAccount, error)
	Create(ctx context.Context, account *models.SohoAccount) error
}

// SohoAccountRepository manages persistence for soho accounts.
type SohoAccountRepository struct {
	db sqlx.ExtContext
}

// NewSohoAccountRepository constructs a SohoAccountRepository.
func NewSohoAccountRepository(db sqlx.ExtContext) *SohoAccountRepository {
	return &SohoAccountRepository{db: db}
}

// FindByID fetches an account by its soho-side id.
func (r *SohoAccountRepository) FindByID(ctx context.Context, id int64) (*models.SohoAccount, error) {
	const query = `SELECT id, email, student_id, created_at, updated_at FROM soho_accounts WHERE id = $1`
	var account models.SohoAccount
	if err := sqlx.GetContext(ctx, r.db, &account, query, id); err != nil {
		return nil, err
	}
	return &account, nil
}

// Create inserts a new account. The id comes from the external system and
// is never generated here.
func (r *SohoAccountRepository) Create(ctx context.Context, account *models.SohoAccount) error {
	now := time.Now().UTC()
	account.CreatedAt = now
	account.UpdatedAt = now
	const query = `INSERT INTO soho_accounts (id, email, student_id, created_at, updated_at)
        VALUES (:id, :email, :student_id, :created_at, :updated_at)`
	if _, err := sqlx.NamedExecContext(ctx, r.db, query, account); err != nil {
		return fmt.Errorf("create soho account: %w", translateConstraint(err))
	}
	return nil
}
