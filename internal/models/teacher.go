package models

import "time"

// Teacher is a person teaching on products, identified externally by vk id.
type Teacher struct {
	ID        int64     `db:"id" json:"id"`
	VKID      int64     `db:"vk_id" json:"vk_id"`
	FirstName string    `db:"first_name" json:"first_name"`
	LastName  string    `db:"last_name" json:"last_name"`
	CreatedAt time.Time `db:"created_at" json:"created_at"`
	UpdatedAt time.Time `db:"updated_at" json:"updated_at"`
}

// FullName joins the name parts, tolerating empty components.
func (t Teacher) FullName() string {
	switch {
	case t.FirstName == "":
		return t.LastName
	case t.LastName == "":
		return t.FirstName
	default:
		return t.FirstName + " " + t.LastName
	}
}
