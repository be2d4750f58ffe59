package api

import (
	"fmt"
	"time"

	"github.com/jinzhu/copier"

	"mango-sync-backend/internal/model"
	"mango-sync-backend/internal/parse"
	"mango-sync-backend/internal/season"
)

// dateOnly renders time.Time fields as YYYY-MM-DD when the DTO field is a string.
var dateOnly = copier.Option{
	Converters: []copier.TypeConverter{{
		SrcType: time.Time{},
		DstType: copier.String,
		Fn: func(src interface{}) (interface{}, error) {
			t, ok := src.(time.Time)
			if !ok {
				return nil, fmt.Errorf("expected time.Time, got %T", src)
			}
			return parse.FormatDate(t), nil
		},
	}},
}

type farmResponse struct {
	ID                 int64          `json:"id"`
	FarmerID           int64          `json:"farmer_id"`
	Name               string         `json:"name"`
	Size               float64        `json:"size"`
	District           string         `json:"district"`
	Village            string         `json:"village"`
	FullLocation       string         `json:"full_location"`
	PlantingDate       string         `json:"planting_date"`
	CurrentSeasonMonth int            `json:"current_season_month"`
	AgeInMonths        int            `json:"age_in_months"`
	LastSyncedAt       *time.Time     `json:"last_synced_at"`
	CreatedAt          time.Time      `json:"created_at"`
	UpdatedAt          time.Time      `json:"updated_at"`
	RecentNotes        []noteResponse `json:"recent_notes,omitempty"`
	NotesCount         *int64         `json:"notes_count,omitempty"`
}

func toFarmResponse(f *model.Farm, now time.Time) (farmResponse, error) {
	var resp farmResponse
	if err := copier.CopyWithOption(&resp, f, dateOnly); err != nil {
		return farmResponse{}, fmt.Errorf("copy farm %d: %w", f.ID, err)
	}
	if age, err := season.ElapsedMonths(f.PlantingDate, now); err == nil {
		resp.AgeInMonths = age
	}
	return resp, nil
}

type farmSummary struct {
	ID       int64  `json:"id"`
	Name     string `json:"name"`
	District string `json:"district,omitempty"`
	Village  string `json:"village,omitempty"`
}

type noteResponse struct {
	ID        int64        `json:"id"`
	ClientID  string       `json:"client_id"`
	FarmID    int64        `json:"farm_id"`
	Title     string       `json:"title"`
	Content   string       `json:"content"`
	Excerpt   string       `json:"excerpt"`
	IsDeleted bool         `json:"is_deleted"`
	CreatedAt time.Time    `json:"created_at"`
	UpdatedAt time.Time    `json:"updated_at"`
	SyncedAt  time.Time    `json:"synced_at"`
	FarmInfo  *farmSummary `json:"farm,omitempty"`
}

func toNoteResponses(notes []model.Note) ([]noteResponse, error) {
	out := make([]noteResponse, len(notes))
	for i := range notes {
		n := &notes[i]
		if err := copier.Copy(&out[i], n); err != nil {
			return nil, fmt.Errorf("copy note %d: %w", n.ID, err)
		}
		if n.Farm.ID != 0 {
			out[i].FarmInfo = &farmSummary{ID: n.Farm.ID, Name: n.Farm.Name, District: n.Farm.District, Village: n.Farm.Village}
		}
	}
	return out, nil
}

type farmerResponse struct {
	UUID       string    `json:"uuid"`
	Name       string    `json:"name"`
	Phone      string    `json:"phone"`
	Email      string    `json:"email"`
	District   string    `json:"district"`
	Village    string    `json:"village"`
	CreatedAt  time.Time `json:"created_at"`
	TotalFarms *int64    `json:"total_farms,omitempty"`
	TotalSize  *float64  `json:"total_size,omitempty"`
}

func toFarmerResponse(f *model.Farmer) (farmerResponse, error) {
	var resp farmerResponse
	if err := copier.Copy(&resp, f); err != nil {
		return farmerResponse{}, fmt.Errorf("copy farmer: %w", err)
	}
	return resp, nil
}

type seasonLink struct {
	Month int    `json:"month"`
	Title string `json:"title"`
}

type pagination struct {
	CurrentPage int   `json:"current_page"`
	LastPage    int   `json:"last_page"`
	PerPage     int   `json:"per_page"`
	Total       int64 `json:"total"`
	From        int   `json:"from"`
	To          int   `json:"to"`
}

func paginate(page, perPage, count int, total int64, lastPage int) pagination {
	p := pagination{CurrentPage: page, LastPage: lastPage, PerPage: perPage, Total: total}
	if count > 0 {
		p.From = (page-1)*perPage + 1
		p.To = p.From + count - 1
	}
	return p
}
