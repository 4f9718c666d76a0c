package models

import "time"

// TeacherAssignment is one row of the append-only history of
// (student_product, teacher_product) links. A row with a null removed_at is
// live; at most one live row may exist per pair.
type TeacherAssignment struct {
	ID               int64      `db:"id" json:"id"`
	StudentProductID int64      `db:"student_product_id" json:"student_product_id"`
	TeacherProductID int64      `db:"teacher_product_id" json:"teacher_product_id"`
	AssignmentAt     time.Time  `db:"assignment_at" json:"assignment_at"`
	RemovedAt        *time.Time `db:"removed_at" json:"removed_at,omitempty"`
	CreatedAt        time.Time  `db:"created_at" json:"created_at"`
	UpdatedAt        time.Time  `db:"updated_at" json:"updated_at"`
}

// IsLive reports whether the link has not been closed yet.
func (a TeacherAssignment) IsLive() bool {
	return a.RemovedAt == nil
}
