package models

import "time"

// Flow is an optional cohort/stream an assignment may be scoped by.
type Flow struct {
	ID        int64     `db:"id" json:"id"`
	Name      string    `db:"name" json:"name"`
	CreatedAt time.Time `db:"created_at" json:"created_at"`
	UpdatedAt time.Time `db:"updated_at" json:"updated_at"`
}

// FlowProduct links a flow to a product and carries the external soho id
// used to resolve a flow from incoming payloads.
type FlowProduct struct {
	ID        int64     `db:"id" json:"id"`
	FlowID    int64     `db:"flow_id" json:"flow_id"`
	ProductID int64     `db:"product_id" json:"product_id"`
	SohoID    int64     `db:"soho_id" json:"soho_id"`
	CreatedAt time.Time `db:"created_at" json:"created_at"`
	UpdatedAt time.Time `db:"updated_at" json:"updated_at"`
}

// TeacherProductFlow restricts teacher selection to specific flows.
type TeacherProductFlow struct {
	ID               int64     `db:"id" json:"id"`
	TeacherProductID int64     `db:"teacher_product_id" json:"teacher_product_id"`
	FlowID           int64     `db:"flow_id" json:"flow_id"`
	CreatedAt        time.Time `db:"created_at" json:"created_at"`
}
