package model

import (
	"strings"
	"time"
)

// Farm is a mango plot owned by exactly one farmer.
type Farm struct {
	ID                 int64      `gorm:"primaryKey"`
	FarmerID           int64      `gorm:"index;not null"`
	Name               string     `gorm:"size:255;not null"`
	Size               float64    `gorm:"not null"`
	District           string     `gorm:"size:255;not null"`
	Village            string     `gorm:"size:255;not null"`
	PlantingDate       time.Time  `gorm:"type:date;not null"`
	CurrentSeasonMonth int        `gorm:"not null;default:1"`
	LastSyncedAt       *time.Time
	CreatedAt          time.Time `gorm:"not null"`
	UpdatedAt          time.Time `gorm:"not null"`

	// Associations
	Farmer Farmer `gorm:"constraint:OnDelete:CASCADE"`
	Notes  []Note `gorm:"foreignKey:FarmID"`
}

// FullLocation joins village and district for display.
func (f Farm) FullLocation() string {
	parts := make([]string, 0, 2)
	for _, p := range []string{f.Village, f.District} {
		if p = strings.TrimSpace(p); p != "" {
			parts = append(parts, p)
		}
	}
	return strings.Join(parts, ", ")
}

// OwnedBy reports whether the farm belongs to the given farmer.
func (f Farm) OwnedBy(farmerID int64) bool {
	return f.FarmerID == farmerID
}
