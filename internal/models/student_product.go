package models

import (
	"encoding/json"
	"time"
)

// TeacherState is the application-layer view of the nullable
// (teacher_type, teacher_product_id) pair: either alone or attached.
type TeacherState struct {
	teacherProductID int64
	teacherType      TeacherType
	attached         bool
}

// Alone is the teacher state of an assignment without a teacher.
func Alone() TeacherState {
	return TeacherState{}
}

// Attached builds the teacher state pointing at a teacher product.
func Attached(teacherProductID int64, teacherType TeacherType) TeacherState {
	return TeacherState{teacherProductID: teacherProductID, teacherType: teacherType, attached: true}
}

// IsAttached reports whether a teacher product is bound.
func (s TeacherState) IsAttached() bool {
	return s.attached
}

// TeacherProductID returns the bound teacher product id; valid only when attached.
func (s TeacherState) TeacherProductID() int64 {
	return s.teacherProductID
}

// TeacherType returns the bound teacher type; valid only when attached.
func (s TeacherState) TeacherType() TeacherType {
	return s.teacherType
}

// MarshalJSON renders the state as the string "alone" or an attachment
// object carrying the teacher product id and role.
func (s TeacherState) MarshalJSON() ([]byte, error) {
	if !s.attached {
		return json.Marshal("alone")
	}
	return json.Marshal(struct {
		TeacherProductID int64       `json:"teacher_product_id"`
		TeacherType      TeacherType `json:"teacher_type"`
	}{s.teacherProductID, s.teacherType})
}

// StudentProduct binds a student to a product through an offer. Unique on
// (student_id, product_id); the teacher columns are both set or both null.
type StudentProduct struct {
	ID               int64        `db:"id" json:"id"`
	StudentID        int64        `db:"student_id" json:"student_id"`
	ProductID        int64        `db:"product_id" json:"product_id"`
	OfferID          int64        `db:"offer_id" json:"offer_id"`
	TeacherProductID *int64       `db:"teacher_product_id" json:"teacher_product_id,omitempty"`
	TeacherType      *TeacherType `db:"teacher_type" json:"teacher_type,omitempty"`
	FlowID           *int64       `db:"flow_id" json:"flow_id,omitempty"`
	Cohort           int          `db:"cohort" json:"cohort"`
	TeacherGrade     *int         `db:"teacher_grade" json:"teacher_grade,omitempty"`
	TeacherGradedAt  *time.Time   `db:"teacher_graded_at" json:"teacher_graded_at,omitempty"`
	ExpulsionAt      *time.Time   `db:"expulsion_at" json:"expulsion_at,omitempty"`
	CreatedAt        time.Time    `db:"created_at" json:"created_at"`
	UpdatedAt        time.Time    `db:"updated_at" json:"updated_at"`
}

// IsActive reports whether the student has not been expulsed.
func (sp StudentProduct) IsActive() bool {
	return sp.ExpulsionAt == nil
}

// IsAlone reports whether the assignment carries no teacher.
func (sp StudentProduct) IsAlone() bool {
	return !sp.TeacherState().IsAttached()
}

// TeacherState projects the nullable column pair into the sum form.
func (sp StudentProduct) TeacherState() TeacherState {
	if sp.TeacherProductID == nil || sp.TeacherType == nil {
		return Alone()
	}
	return Attached(*sp.TeacherProductID, *sp.TeacherType)
}

// SetTeacherState writes the sum form back onto the column pair, keeping
// both either set or null.
func (sp *StudentProduct) SetTeacherState(state TeacherState) {
	if !state.IsAttached() {
		sp.TeacherProductID = nil
		sp.TeacherType = nil
		return
	}
	id := state.TeacherProductID()
	teacherType := state.TeacherType()
	sp.TeacherProductID = &id
	sp.TeacherType = &teacherType
}
