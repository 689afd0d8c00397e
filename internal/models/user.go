package models

import (
	"time"
)

// User is an opaque authenticated identity. Rows are provisioned by the
// external identity provider; this service only reads the id for ownership
// scoping and never mutates users.
type User struct {
	ID        string    `gorm:"type:varchar(255);primarykey" json:"id"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`

	// Relations
	Projects []Project `gorm:"foreignKey:UserID" json:"-"`
	Tasks    []Task    `gorm:"foreignKey:UserID" json:"-"`
}
