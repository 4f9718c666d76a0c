package models

import "time"

// ProductGroup is a category grouping products.
type ProductGroup struct {
	ID        int64     `db:"id" json:"id"`
	Name      string    `db:"name" json:"name"`
	CreatedAt time.Time `db:"created_at" json:"created_at"`
	UpdatedAt time.Time `db:"updated_at" json:"updated_at"`
}

// Product is a single course-run belonging to one subject and one group.
type Product struct {
	ID             int64      `db:"id" json:"id"`
	Name           string     `db:"name" json:"name"`
	SubjectID      int64      `db:"subject_id" json:"subject_id"`
	ProductGroupID int64      `db:"product_group_id" json:"product_group_id"`
	StartDate      *time.Time `db:"start_date" json:"start_date,omitempty"`
	EndDate        *time.Time `db:"end_date" json:"end_date,omitempty"`
	CreatedAt      time.Time  `db:"created_at" json:"created_at"`
	UpdatedAt      time.Time  `db:"updated_at" json:"updated_at"`
}
