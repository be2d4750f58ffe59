package model

import "time"

// Season is the advisory content for one month of the 12-month cycle.
type Season struct {
	ID               int64     `gorm:"primaryKey" json:"-"`
	Month            int       `gorm:"uniqueIndex;not null" json:"month"`
	Title            string    `gorm:"size:255;not null" json:"title"`
	ShortDescription string    `gorm:"size:255;not null" json:"short_description"`
	FullInstructions string    `gorm:"type:text;not null" json:"full_instructions"`
	Activities       []string  `gorm:"serializer:json;type:text" json:"activities"`
	CreatedAt        time.Time `json:"-"`
	UpdatedAt        time.Time `json:"-"`
}
