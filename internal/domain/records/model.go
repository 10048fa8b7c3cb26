package records

import (
	"time"

	"github.com/google/uuid"
)

// Entry types.
const (
	TypeEvolution    = "evolution"
	TypeNote         = "note"
	TypeAnamnesis    = "anamnesis"
	TypePrescription = "prescription"
)

var validTypes = map[string]bool{
	TypeEvolution:    true,
	TypeNote:         true,
	TypeAnamnesis:    true,
	TypePrescription: true,
}

// Entry maps to the record_entry table. One dated entry in a patient's
// clinical record, written by a professional, optionally tied to an
// appointment.
type Entry struct {
	ID             uuid.UUID  `db:"id" json:"id"`
	PatientID      uuid.UUID  `db:"patient_id" json:"patient_id"`
	ProfessionalID uuid.UUID  `db:"professional_id" json:"professional_id"`
	AppointmentID  *uuid.UUID `db:"appointment_id" json:"appointment_id,omitempty"`
	EntryType      string     `db:"entry_type" json:"entry_type"`
	Content        string     `db:"content" json:"content"`
	CreatedAt      time.Time  `db:"created_at" json:"created_at"`
	UpdatedAt      time.Time  `db:"updated_at" json:"updated_at"`
}
