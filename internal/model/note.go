package model

import (
	"time"
	"unicode/utf8"
)

const excerptLength = 50

// Note is a field observation authored offline on a device.
// CreatedAt and UpdatedAt are supplied by the client and are authoritative
// for sync comparison, so GORM must never overwrite them.
type Note struct {
	ID        int64     `gorm:"primaryKey"`
	ClientID  string    `gorm:"size:64;not null;uniqueIndex:idx_notes_farmer_client"`
	FarmerID  int64     `gorm:"not null;index;uniqueIndex:idx_notes_farmer_client"`
	FarmID    int64     `gorm:"not null;index"`
	Title     string    `gorm:"size:255;not null"`
	Content   string    `gorm:"type:text;not null"`
	IsDeleted bool      `gorm:"not null;default:false"`
	CreatedAt time.Time `gorm:"not null;index;autoCreateTime:false"`
	UpdatedAt time.Time `gorm:"not null;autoUpdateTime:false"`
	SyncedAt  time.Time `gorm:"not null"`

	// Associations
	Farm Farm `gorm:"constraint:OnDelete:CASCADE"`
}

// NoteFields are the client-authored values of a note.
type NoteFields struct {
	ClientID  string
	FarmID    int64
	Title     string
	Content   string
	IsDeleted bool
	CreatedAt time.Time
	UpdatedAt time.Time
}

// NewNote builds an unsaved note for the given farmer.
func NewNote(farmerID int64, f NoteFields, syncedAt time.Time) Note {
	return Note{
		ClientID:  f.ClientID,
		FarmerID:  farmerID,
		FarmID:    f.FarmID,
		Title:     f.Title,
		Content:   f.Content,
		IsDeleted: f.IsDeleted,
		CreatedAt: f.CreatedAt.UTC(),
		UpdatedAt: f.UpdatedAt.UTC(),
		SyncedAt:  syncedAt.UTC(),
	}
}

// Excerpt returns the first 50 characters of the content.
func (n Note) Excerpt() string {
	if utf8.RuneCountInString(n.Content) <= excerptLength {
		return n.Content
	}
	runes := []rune(n.Content)
	return string(runes[:excerptLength]) + "..."
}
