package models

import "time"

// Reviewer is a homework grader scoped by subject with a capacity envelope:
// min homeworks they must get, desired target, soft max and absolute max.
type Reviewer struct {
	ID        int64     `db:"id" json:"id"`
	SubjectID int64     `db:"subject_id" json:"subject_id"`
	FirstName string    `db:"first_name" json:"first_name"`
	LastName  string    `db:"last_name" json:"last_name"`
	Email     string    `db:"email" json:"email"`
	Desired   int       `db:"desired" json:"desired"`
	Max       int       `db:"max_homeworks" json:"max"`
	Min       int       `db:"min_homeworks" json:"min"`
	AbsMax    int       `db:"abs_max" json:"abs_max"`
	IsActive  bool      `db:"is_active" json:"is_active"`
	CreatedAt time.Time `db:"created_at" json:"created_at"`
	UpdatedAt time.Time `db:"updated_at" json:"updated_at"`
}

// FullName joins the name parts, tolerating empty components.
func (r Reviewer) FullName() string {
	switch {
	case r.FirstName == "":
		return r.LastName
	case r.LastName == "":
		return r.FirstName
	default:
		return r.FirstName + " " + r.LastName
	}
}

// OptimalDesired is the desired target clamped to the absolute maximum.
func (r Reviewer) OptimalDesired() int {
	if r.Desired > r.AbsMax {
		return r.AbsMax
	}
	return r.Desired
}

// OptimalMax is the soft maximum clamped to the absolute maximum.
func (r Reviewer) OptimalMax() int {
	if r.Max > r.AbsMax {
		return r.AbsMax
	}
	return r.Max
}
