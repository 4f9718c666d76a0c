package models

import "time"

// TeacherProduct is a teacher instantiated on a product in one of the two
// roles. Capacity and grading live here, not on the teacher.
type TeacherProduct struct {
	ID           int64       `db:"id" json:"id"`
	TeacherID    int64       `db:"teacher_id" json:"teacher_id"`
	ProductID    int64       `db:"product_id" json:"product_id"`
	Type         TeacherType `db:"type" json:"type"`
	IsActive     bool        `db:"is_active" json:"is_active"`
	MaxStudents  int         `db:"max_students" json:"max_students"`
	AverageGrade float64     `db:"average_grade" json:"average_grade"`
	GradeCounter int         `db:"grade_counter" json:"grade_counter"`
	CreatedAt    time.Time   `db:"created_at" json:"created_at"`
	UpdatedAt    time.Time   `db:"updated_at" json:"updated_at"`
}

// TeacherProductStats extends a teacher product with assignment aggregates
// computed from the assignment history.
type TeacherProductStats struct {
	TeacherProduct
	ActualStudents  int `db:"actual_students" json:"actual_students"`
	TotalStudents   int `db:"total_students" json:"total_students"`
	RemovalStudents int `db:"removal_students" json:"removal_students"`
}

// Fullness is the live-assignment share of capacity, 1 for zero capacity.
func (s TeacherProductStats) Fullness() float64 {
	if s.MaxStudents <= 0 {
		return 1
	}
	return float64(s.ActualStudents) / float64(s.MaxStudents)
}

// Removability is the share of assignments not removed within the last
// month, 1 when there is no history.
func (s TeacherProductStats) Removability() float64 {
	if s.TotalStudents <= 0 {
		return 1
	}
	return float64(s.TotalStudents-s.RemovalStudents) / float64(s.TotalStudents)
}

// RatingCoef is the composite selection score. An ungraded teacher counts
// as a full five so newcomers are not starved of students.
func (s TeacherProductStats) RatingCoef() float64 {
	grade := s.AverageGrade
	if grade == 0 {
		grade = 5
	}
	return grade * (1 - s.Fullness()) * s.Removability()
}
