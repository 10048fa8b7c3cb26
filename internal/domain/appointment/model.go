package appointment

import (
	"time"

	"github.com/google/uuid"
)

// Appointment statuses.
const (
	StatusPending   = "pending"
	StatusConfirmed = "confirmed"
	StatusCompleted = "completed"
	StatusCancelled = "cancelled"
	StatusAbsent    = "absent"
)

var validStatuses = map[string]bool{
	StatusPending:   true,
	StatusConfirmed: true,
	StatusCompleted: true,
	StatusCancelled: true,
	StatusAbsent:    true,
}

// validTransitions lists the allowed status moves. Completed, cancelled and
// absent are terminal.
var validTransitions = map[string][]string{
	StatusPending:   {StatusConfirmed, StatusCancelled, StatusAbsent},
	StatusConfirmed: {StatusCompleted, StatusCancelled, StatusAbsent},
}

func canTransition(from, to string) bool {
	for _, s := range validTransitions[from] {
		if s == to {
			return true
		}
	}
	return false
}

// Appointment maps to the appointment table. Overbooking records that the
// booking was knowingly placed over another patient's appointment.
type Appointment struct {
	ID             uuid.UUID `db:"id" json:"id"`
	ProfessionalID uuid.UUID `db:"professional_id" json:"professional_id"`
	PatientID      uuid.UUID `db:"patient_id" json:"patient_id"`
	StartAt        time.Time `db:"start_at" json:"start_at"`
	EndAt          time.Time `db:"end_at" json:"end_at"`
	Status         string    `db:"status" json:"status"`
	Overbooking    bool      `db:"overbooking" json:"overbooking"`
	Notes          *string   `db:"notes" json:"notes,omitempty"`
	CreatedAt      time.Time `db:"created_at" json:"created_at"`
	UpdatedAt      time.Time `db:"updated_at" json:"updated_at"`
}

// Active reports whether the appointment still occupies its time range.
func (a *Appointment) Active() bool {
	return a.Status != StatusCancelled && a.Status != StatusCompleted
}

// Terminal reports whether the appointment reached a final status. Absent
// appointments still occupy their slot but can no longer be changed.
func (a *Appointment) Terminal() bool {
	return a.Status == StatusCompleted || a.Status == StatusCancelled || a.Status == StatusAbsent
}

// BookingRequest is the create payload. ConfirmOverbooking acknowledges an
// overlap with another patient's appointment; without it such a booking is
// rejected with a conflict.
type BookingRequest struct {
	ProfessionalID     uuid.UUID `json:"professional_id"`
	PatientID          uuid.UUID `json:"patient_id"`
	StartAt            time.Time `json:"start_at"`
	EndAt              time.Time `json:"end_at"`
	Notes              *string   `json:"notes,omitempty"`
	ConfirmOverbooking bool      `json:"confirm_overbooking"`
}

// StatusChange is the payload for a status transition.
type StatusChange struct {
	Status string `json:"status"`
}
