package identity

import (
	"time"

	"github.com/google/uuid"
)

// Patient maps to the patient table.
type Patient struct {
	ID            uuid.UUID  `db:"id" json:"id"`
	Active        bool       `db:"active" json:"active"`
	FirstName     string     `db:"first_name" json:"first_name"`
	LastName      string     `db:"last_name" json:"last_name"`
	BirthDate     *time.Time `db:"birth_date" json:"birth_date,omitempty"`
	Gender        *string    `db:"gender" json:"gender,omitempty"`
	Document      *string    `db:"document" json:"document,omitempty"`
	PhoneMobile   *string    `db:"phone_mobile" json:"phone_mobile,omitempty"`
	Email         *string    `db:"email" json:"email,omitempty"`
	AddressLine1  *string    `db:"address_line1" json:"address_line1,omitempty"`
	AddressLine2  *string    `db:"address_line2" json:"address_line2,omitempty"`
	City          *string    `db:"city" json:"city,omitempty"`
	State         *string    `db:"state" json:"state,omitempty"`
	PostalCode    *string    `db:"postal_code" json:"postal_code,omitempty"`
	InsurancePlan *string    `db:"insurance_plan" json:"insurance_plan,omitempty"`
	Notes         *string    `db:"notes" json:"notes,omitempty"`
	CreatedAt     time.Time  `db:"created_at" json:"created_at"`
	UpdatedAt     time.Time  `db:"updated_at" json:"updated_at"`
}

// Professional maps to the professional table. RegistrationNo holds the
// professional-council number (CRM, CRP and the like).
type Professional struct {
	ID             uuid.UUID `db:"id" json:"id"`
	Active         bool      `db:"active" json:"active"`
	FirstName      string    `db:"first_name" json:"first_name"`
	LastName       string    `db:"last_name" json:"last_name"`
	Specialty      *string   `db:"specialty" json:"specialty,omitempty"`
	RegistrationNo *string   `db:"registration_no" json:"registration_no,omitempty"`
	PhoneMobile    *string   `db:"phone_mobile" json:"phone_mobile,omitempty"`
	Email          *string   `db:"email" json:"email,omitempty"`
	Color          *string   `db:"color" json:"color,omitempty"` // agenda display color
	CreatedAt      time.Time `db:"created_at" json:"created_at"`
	UpdatedAt      time.Time `db:"updated_at" json:"updated_at"`
}
