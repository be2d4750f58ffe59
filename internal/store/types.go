package store

import (
	"mango-sync-backend/internal/model"
	"mango-sync-backend/internal/parse"
)

// FarmerFields are the editable profile fields of a farmer.
type FarmerFields struct {
	Name     string
	Phone    string
	Email    string
	District string
	Village  string
}

// FarmerTotals aggregates a farmer's farms.
type FarmerTotals struct {
	TotalFarms int64
	TotalSize  float64
}

// DefaultPerPage is the page size used when a query does not set one.
const DefaultPerPage = 50

// NoteQuery selects a page of a farmer's notes.
type NoteQuery struct {
	FarmerID       int64
	FarmID         int64 // 0 means all farms
	Search         string
	Sort           parse.Sort
	Page           int
	PerPage        int
	IncludeDeleted bool
}

// NotePage is one page of notes plus the unpaged total.
type NotePage struct {
	Notes   []model.Note
	Total   int64
	Page    int
	PerPage int
}

// LastPage is the number of the final page, at least 1.
func (p NotePage) LastPage() int {
	if p.PerPage <= 0 || p.Total == 0 {
		return 1
	}
	return int((p.Total + int64(p.PerPage) - 1) / int64(p.PerPage))
}

// FarmNoteCount is the number of notes on one farm.
type FarmNoteCount struct {
	FarmID   int64
	FarmName string
	Count    int64
}

// NoteStats summarizes a farmer's note activity.
type NoteStats struct {
	Total     int64
	ThisMonth int64
	ThisWeek  int64
	ByFarm    []FarmNoteCount
	Recent    []model.Note
}
