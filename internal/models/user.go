package models

import "time"

// User is an admin credential for the back office.
type User struct {
	ID           int64     `db:"id" json:"id"`
	Username     string    `db:"username" json:"username"`
	PasswordHash string    `db:"password_hash" json:"-"`
	CreatedAt    time.Time `db:"created_at" json:"created_at"`
	UpdatedAt    time.Time `db:"updated_at" json:"updated_at"`
}

// Setting is one key/value configuration entry used by the notification cron.
type Setting struct {
	Key       string    `db:"key" json:"key"`
	Value     string    `db:"value" json:"value"`
	CreatedAt time.Time `db:"created_at" json:"created_at"`
	UpdatedAt time.Time `db:"updated_at" json:"updated_at"`
}

// VerifiedWorkFile is a processed homework file discovered by the
// folder-scanner cron; the id is the drive file id.
type VerifiedWorkFile struct {
	ID        string    `db:"id" json:"id"`
	StudentID *int64    `db:"student_id" json:"student_id,omitempty"`
	SubjectID int64     `db:"subject_id" json:"subject_id"`
	Name      string    `db:"name" json:"name"`
	URL       string    `db:"url" json:"url"`
	CreatedAt time.Time `db:"created_at" json:"created_at"`
}
