package notesync

import "time"

// Kind tags the outcome of one uploaded note.
type Kind string

const (
	Created Kind = "created"
	Updated Kind = "updated"
	Skipped Kind = "skipped"
	Failed  Kind = "error"
)

// SkipReason explains a Skipped outcome.
type SkipReason string

const (
	ReasonOwnership SkipReason = "ownership violation"
	ReasonDuplicate SkipReason = "duplicate, unchanged"
	ReasonStale     SkipReason = "stale"
)

// Outcome is the result of reconciling one uploaded note.
type Outcome struct {
	Index    int        `json:"index"`
	ClientID string     `json:"client_id"`
	FarmID   int64      `json:"farm_id,omitempty"`
	Kind     Kind       `json:"outcome"`
	Reason   SkipReason `json:"reason,omitempty"`
	Message  string     `json:"message,omitempty"`
	NoteID   int64      `json:"note_id,omitempty"`
}

func (o Outcome) created(noteID int64) Outcome {
	o.Kind, o.NoteID = Created, noteID
	return o
}

func (o Outcome) updated(noteID int64) Outcome {
	o.Kind, o.NoteID = Updated, noteID
	return o
}

func (o Outcome) skipped(reason SkipReason, noteID int64) Outcome {
	o.Kind, o.Reason, o.NoteID = Skipped, reason, noteID
	return o
}

func (o Outcome) failed(msg string) Outcome {
	o.Kind, o.Message, o.NoteID = Failed, msg, 0
	return o
}

// ItemError describes a Failed outcome in the report's error list.
type ItemError struct {
	Index   int    `json:"index"`
	FarmID  *int64 `json:"farm_id,omitempty"`
	Message string `json:"message"`
}

// Report summarizes one sync call. The four counts always add up to TotalReceived.
type Report struct {
	TotalReceived int         `json:"total_received"`
	CreatedCount  int         `json:"created_count"`
	UpdatedCount  int         `json:"updated_count"`
	SkippedCount  int         `json:"skipped_count"`
	ErrorCount    int         `json:"error_count"`
	Errors        []ItemError `json:"errors"`
	Items         []Outcome   `json:"items"`
	SyncedAt      time.Time   `json:"synced_at"`
}

func newReport(total int, syncedAt time.Time) *Report {
	return &Report{
		TotalReceived: total,
		Errors:        []ItemError{},
		Items:         make([]Outcome, 0, total),
		SyncedAt:      syncedAt,
	}
}

func (r *Report) add(o Outcome) {
	r.Items = append(r.Items, o)
	switch o.Kind {
	case Created:
		r.CreatedCount++
	case Updated:
		r.UpdatedCount++
	case Skipped:
		r.SkippedCount++
	default:
		r.ErrorCount++
		e := ItemError{Index: o.Index, Message: o.Message}
		if o.FarmID != 0 {
			farmID := o.FarmID
			e.FarmID = &farmID
		}
		r.Errors = append(r.Errors, e)
	}
}

// Balanced reports whether the counts add up to TotalReceived.
func (r *Report) Balanced() bool {
	return r.CreatedCount+r.UpdatedCount+r.SkippedCount+r.ErrorCount == r.TotalReceived
}
