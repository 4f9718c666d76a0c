package models

import "time"

// Student is a person enrolled into products, identified externally by vk id.
type Student struct {
	ID        int64     `db:"id" json:"id"`
	VKID      int64     `db:"vk_id" json:"vk_id"`
	FirstName string    `db:"first_name" json:"first_name"`
	LastName  string    `db:"last_name" json:"last_name"`
	CreatedAt time.Time `db:"created_at" json:"created_at"`
	UpdatedAt time.Time `db:"updated_at" json:"updated_at"`
}

// FullName joins the name parts, tolerating empty components.
func (s Student) FullName() string {
	switch {
	case s.FirstName == "":
		return s.LastName
	case s.LastName == "":
		return s.FirstName
	default:
		return s.FirstName + " " + s.LastName
	}
}

// SohoAccount links a student to their account in the external soho system.
// The primary key is the soho-side id.
type SohoAccount struct {
	ID        int64     `db:"id" json:"id"`
	Email     string    `db:"email" json:"email"`
	StudentID int64     `db:"student_id" json:"student_id"`
	CreatedAt time.Time `db:"created_at" json:"created_at"`
	UpdatedAt time.Time `db:"updated_at" json:"updated_at"`
}
