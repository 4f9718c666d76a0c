package models

import "time"

// TeacherType distinguishes the two teacher roles on a product.
type TeacherType string

const (
	TeacherTypeCurator TeacherType = "CURATOR"
	TeacherTypeMentor  TeacherType = "MENTOR"
)

// AutopilotOption maps the teacher type to the webhook option code.
func (t TeacherType) AutopilotOption() int {
	if t == TeacherTypeMentor {
		return 3
	}
	return 2
}

// Offer is a sellable SKU attached to one product. A nil TeacherType marks
// an "alone" offer: enrollments through it get no teacher.
type Offer struct {
	ID          int64        `db:"id" json:"id"`
	Name        string       `db:"name" json:"name"`
	ProductID   int64        `db:"product_id" json:"product_id"`
	Cohort      int          `db:"cohort" json:"cohort"`
	TeacherType *TeacherType `db:"teacher_type" json:"teacher_type,omitempty"`
	CreatedAt   time.Time    `db:"created_at" json:"created_at"`
	UpdatedAt   time.Time    `db:"updated_at" json:"updated_at"`
}

// IsAlone reports whether enrollments through this offer carry no teacher.
func (o Offer) IsAlone() bool {
	return o.TeacherType == nil
}
