package model

import (
	"time"

	"github.com/google/uuid"
)

// Farmer is the identity anchor for farms and notes.
type Farmer struct {
	ID        int64     `gorm:"primaryKey" json:"-"`
	UUID      string    `gorm:"uniqueIndex;size:36;not null" json:"uuid"`
	Name      string    `gorm:"index;size:255;not null" json:"name"`
	Phone     string    `gorm:"size:32" json:"phone,omitempty"`
	Email     string    `gorm:"size:255" json:"email,omitempty"`
	District  string    `gorm:"size:255" json:"district,omitempty"`
	Village   string    `gorm:"size:255" json:"village,omitempty"`
	CreatedAt time.Time `gorm:"not null" json:"created_at"`
	UpdatedAt time.Time `gorm:"not null" json:"updated_at"`

	// Associations
	Farms []Farm `gorm:"foreignKey:FarmerID" json:"-"`
}

// NewFarmer builds an unsaved farmer with a freshly assigned UUID.
// The UUID is never reassigned after this point.
func NewFarmer(name string) Farmer {
	return Farmer{
		UUID: uuid.NewString(),
		Name: name,
	}
}
