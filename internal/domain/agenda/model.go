package agenda

import (
	"time"

	"github.com/google/uuid"
)

// WeeklyTemplate maps to the weekly_template table. It is a recurring
// day-of-week availability rule for a professional. A professional may have
// several templates on the same day (split shifts).
type WeeklyTemplate struct {
	ID             uuid.UUID  `db:"id" json:"id"`
	ProfessionalID uuid.UUID  `db:"professional_id" json:"professional_id"`
	DayOfWeek      int        `db:"day_of_week" json:"day_of_week"` // 0=Sunday .. 6=Saturday
	StartTime      string     `db:"start_time" json:"start_time"`   // "HH:mm"
	EndTime        string     `db:"end_time" json:"end_time"`       // "HH:mm"
	SlotMinutes    int        `db:"slot_minutes" json:"slot_minutes"`
	Active         bool       `db:"active" json:"active"`
	ValidFrom      *time.Time `db:"valid_from" json:"valid_from,omitempty"`
	ValidTo        *time.Time `db:"valid_to" json:"valid_to,omitempty"`
	CreatedAt      time.Time  `db:"created_at" json:"created_at"`
	UpdatedAt      time.Time  `db:"updated_at" json:"updated_at"`
}

// DateException maps to the date_exception table. When one or more exceptions
// exist for a date they fully replace the weekly templates for that date.
type DateException struct {
	ID             uuid.UUID `db:"id" json:"id"`
	ProfessionalID uuid.UUID `db:"professional_id" json:"professional_id"`
	Date           time.Time `db:"date" json:"date"`
	StartTime      string    `db:"start_time" json:"start_time"` // "HH:mm"
	EndTime        string    `db:"end_time" json:"end_time"`     // "HH:mm"
	SlotMinutes    int       `db:"slot_minutes" json:"slot_minutes"`
	Notes          *string   `db:"notes" json:"notes,omitempty"`
	CreatedAt      time.Time `db:"created_at" json:"created_at"`
	UpdatedAt      time.Time `db:"updated_at" json:"updated_at"`
}

// Block maps to the unavailability_block table. A block removes bookable time
// regardless of templates or exceptions; full-day or partial.
type Block struct {
	ID             uuid.UUID `db:"id" json:"id"`
	ProfessionalID uuid.UUID `db:"professional_id" json:"professional_id"`
	StartAt        time.Time `db:"start_at" json:"start_at"`
	EndAt          time.Time `db:"end_at" json:"end_at"`
	Reason         *string   `db:"reason" json:"reason,omitempty"`
	CreatedAt      time.Time `db:"created_at" json:"created_at"`
	UpdatedAt      time.Time `db:"updated_at" json:"updated_at"`
}

// BookedSlot is the resolver's view of an existing appointment. The
// appointment domain converts its rows into this shape so the resolver does
// not depend on that package.
type BookedSlot struct {
	PatientID uuid.UUID
	Start     time.Time
	End       time.Time
	Status    string
}

// Active reports whether the booking still occupies its time range.
// Cancelled and completed appointments never count toward occupancy.
func (b BookedSlot) Active() bool {
	return b.Status != "cancelled" && b.Status != "completed"
}

// ScheduleWindow is one derived {start, end, duration} window of a resolved
// day schedule. Never persisted.
type ScheduleWindow struct {
	StartTime   string `json:"start_time"` // "HH:mm"
	EndTime     string `json:"end_time"`   // "HH:mm"
	SlotMinutes int    `json:"slot_minutes"`
}

// SlotOption is a single candidate start (or end) time. Blocked and Occupied
// are independent: a blocked slot is still selectable in the UI, an occupied
// one is informational only (overbooking is a supported action).
type SlotOption struct {
	Time     string `json:"time"` // "HH:mm"
	Blocked  bool   `json:"blocked"`
	Occupied bool   `json:"occupied"`
}

// DayAvailability is the full derived view for one professional + date,
// recomputed per request and never cached.
type DayAvailability struct {
	Date         string           `json:"date"`
	Bookable     bool             `json:"bookable"`
	FullyBlocked bool             `json:"fully_blocked"`
	BlockReason  string           `json:"block_reason,omitempty"`
	Windows      []ScheduleWindow `json:"windows"`
	StartOptions []SlotOption     `json:"start_options"`
	EndOptions   []SlotOption     `json:"end_options,omitempty"`
	DefaultStart string           `json:"default_start,omitempty"`
	DefaultEnd   string           `json:"default_end,omitempty"`
}
