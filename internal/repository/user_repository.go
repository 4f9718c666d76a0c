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

// UserStore is the persistence contract for admin users.
type UserStore interface {
	FindByUsername(ctx context.Context, username string) (*models.User, error)
	Create(ctx context.Context, user *models.User) error
}

// UserRepository manages persistence for admin users.
type UserRepository struct {
	db sqlx.ExtContext
}

// NewUserRepository constructs a UserRepository.
func NewUserRepository(db sqlx.ExtContext) *UserRepository {
	return &UserRepository{db: db}
}

// FindByUsername fetches a user by unique username.
func (r *UserRepository) FindByUsername(ctx context.Context, username string) (*models.User, error) {
	const query = `SELECT id, username, password_hash, created_at, updated_at FROM users WHERE username = $1`
	var user models.User
	if err := sqlx.GetContext(ctx, r.db, &user, query, username); err != nil {
		return nil, err
	}
	return &user, nil
}

// Create inserts a new user, translating username collisions into the
// typed conflict error.
func (r *UserRepository) Create(ctx context.Context, user *models.User) error {
	now := time.Now().UTC()
	user.CreatedAt = now
	user.UpdatedAt = now
	const query = `INSERT INTO users (username, password_hash, created_at, updated_at)
        VALUES ($1, $2, $3, $4) RETURNING id`
	err := r.db.QueryRowxContext(ctx, query, user.Username, user.PasswordHash, user.CreatedAt, user.UpdatedAt).Scan(&user.ID)
	if err != nil {
		return fmt.Errorf("create user: %w", translateConstraint(err))
	}
	return nil
}

// SettingStore is the key/value configuration contract used by the
// notification cron.
type SettingStore interface {
	Get(ctx context.Context, key string) (string, error)
	Set(ctx context.Context, key, value string) error
}

// SettingRepository manages the settings table.
type SettingRepository struct {
	db sqlx.ExtContext
}

// NewSettingRepository constructs a SettingRepository.
func NewSettingRepository(db sqlx.ExtContext) *SettingRepository {
	return &SettingRepository{db: db}
}

// Get returns the value stored for key, empty when absent.
func (r *SettingRepository) Get(ctx context.Context, key string) (string, error) {
	const query = `SELECT value FROM settings WHERE key = $1`
	var value string
	if err := sqlx.GetContext(ctx, r.db, &value, query, key); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return "", nil
		}
		return "", fmt.Errorf("get setting: %w", err)
	}
	return value, nil
}

// Set upserts a key/value pair.
func (r *SettingRepository) Set(ctx context.Context, key, value string) error {
	now := time.Now().UTC()
	const query = `INSERT INTO settings (key, value, created_at, updated_at) VALUES ($1, $2, $3, $3)
        ON CONFLICT (key) DO UPDATE SET value = EXCLUDED.value, updated_at = EXCLUDED.updated_at`
	if _, err := r.db.ExecContext(ctx, query, key, value, now); err != nil {
		return fmt.Errorf("set setting: %w", err)
	}
	return nil
}

// VerifiedWorkFileStore records homework files already processed by the
// folder-scanner cron.
type VerifiedWorkFileStore interface {
	Exists(ctx context.Context, id string) (bool, error)
	Create(ctx context.Context, file *models.VerifiedWorkFile) error
}

// VerifiedWorkFileRepository manages processed homework-file records.
type VerifiedWorkFileRepository struct {
	db sqlx.ExtContext
}

// NewVerifiedWorkFileRepository constructs a VerifiedWorkFileRepository.
func NewVerifiedWorkFileRepository(db sqlx.ExtContext) *VerifiedWorkFileRepository {
	return &VerifiedWorkFileRepository{db: db}
}

// Exists checks whether the drive file was already processed.
func (r *VerifiedWorkFileRepository) Exists(ctx context.Context, id string) (bool, error) {
	const query = `SELECT 1 FROM verified_work_files WHERE id = $1 LIMIT 1`
	var one int
	if err := sqlx.GetContext(ctx, r.db, &one, query, id); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return false, nil
		}
		return false, fmt.Errorf("check verified work file: %w", err)
	}
	return true, nil
}

// Create records a processed homework file.
func (r *VerifiedWorkFileRepository) Create(ctx context.Context, file *models.VerifiedWorkFile) error {
	file.CreatedAt = time.Now().UTC()
	const query = `INSERT INTO verified_work_files (id, student_id, subject_id, name, url, created_at)
        VALUES (:id, :student_id, :subject_id, :name, :url, :created_at)`
	if _, err := sqlx.NamedExecContext(ctx, r.db, query, file); err != nil {
		return fmt.Errorf("create verified work file: %w", err)
	}
	return nil
}
