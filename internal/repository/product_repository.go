package repository

import (
	"context"
	"fmt"

	"github.com/jmoiron/sqlx"

	"github.com/noah-isme/course-backoffice-api/internal/models"
)

// ProductStore is the persistence contract for products.
type ProductStore interface {
	FindByID(ctx context.Context, id int64) (*models.Product, error)
	List(ctx context.Context) ([]models.Product, error)
}

// ProductRepository manages persistence for products.
type ProductRepository struct {
	db sqlx.ExtContext
}

// NewProductRepository constructs a ProductRepository.
func NewProductRepository(db sqlx.ExtContext) *ProductRepository {
	return &ProductRepository{db: db}
}

// FindByID fetches a product by id.
func (r *ProductRepository) FindByID(ctx context.Context, id int64) (*models.Product, error) {
	const query = `SELECT id, name, subject_id, product_group_id, start_date, end_date, created_at, updated_at
        FROM products WHERE id = $1`
	var product models.Product
	if err := sqlx.GetContext(ctx, r.db, &product, query, id); err != nil {
		return nil, err
	}
	return &product, nil
}

// List returns all products ordered by id.
func (r *ProductRepository) List(ctx context.Context) ([]models.Product, error) {
	const query = `SELECT id, name, subject_id, product_group_id, start_date, end_date, created_at, updated_at
        FROM products ORDER BY id`
	var products []models.Product
	if err := sqlx.SelectContext(ctx, r.db, &products, query); err != nil {
		return nil, fmt.Errorf("list products: %w", err)
	}
	return products, nil
}
