package appointment

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"

	"github.com/clinica/clinica/internal/domain/agenda"
)

var (
	ErrInvalidStatus     = errors.New("invalid appointment status")
	ErrInvalidTransition = errors.New("status transition not allowed")
)

type Service struct {
	repo Repository
}

func NewService(repo Repository) *Service {
	return &Service{repo: repo}
}

func dayStart(t time.Time) time.Time {
	lt := t.In(time.Local)
	return time.Date(lt.Year(), lt.Month(), lt.Day(), 0, 0, 0, 0, time.Local)
}

func bookedSlots(appts []*Appointment, exclude uuid.UUID) []agenda.BookedSlot {
	out := make([]agenda.BookedSlot, 0, len(appts))
	for _, a := range appts {
		if a.ID == exclude {
			continue
		}
		out = append(out, agenda.BookedSlot{
			PatientID: a.PatientID,
			Start:     a.StartAt,
			End:       a.EndAt,
			Status:    a.Status,
		})
	}
	return out
}

// Book creates an appointment after checking the requested range against the
// professional's existing appointments. A same-patient overlap always fails
// with agenda.ErrPatientOverlap. An overlap with another patient fails with
// agenda.ErrOverbookingRequired unless the request confirms the overbooking,
// in which case the appointment is created flagged as an overbooking.
func (s *Service) Book(ctx context.Context, req *BookingRequest) (*Appointment, error) {
	if req.ProfessionalID == uuid.Nil {
		return nil, fmt.Errorf("professional_id is required")
	}
	if req.PatientID == uuid.Nil {
		return nil, fmt.Errorf("patient_id is required")
	}
	if req.StartAt.IsZero() || req.EndAt.IsZero() {
		return nil, fmt.Errorf("start_at and end_at are required")
	}
	if !req.StartAt.Before(req.EndAt) {
		return nil, fmt.Errorf("start_at must be before end_at")
	}

	existing, err := s.repo.ListByProfessionalDay(ctx, req.ProfessionalID, dayStart(req.StartAt))
	if err != nil {
		return nil, err
	}

	overbooking := false
	err = agenda.DetectBookingConflict(req.StartAt, req.EndAt, req.PatientID, bookedSlots(existing, uuid.Nil))
	switch {
	case errors.Is(err, agenda.ErrOverbookingRequired):
		if !req.ConfirmOverbooking {
			return nil, err
		}
		overbooking = true
	case err != nil:
		return nil, err
	}

	a := &Appointment{
		ProfessionalID: req.ProfessionalID,
		PatientID:      req.PatientID,
		StartAt:        req.StartAt,
		EndAt:          req.EndAt,
		Status:         StatusPending,
		Overbooking:    overbooking,
		Notes:          req.Notes,
	}
	if err := s.repo.Create(ctx, a); err != nil {
		return nil, err
	}
	return a, nil
}

func (s *Service) Get(ctx context.Context, id uuid.UUID) (*Appointment, error) {
	return s.repo.GetByID(ctx, id)
}

// Reschedule moves an appointment to a new range, re-running conflict
// detection against the target day with the appointment itself excluded.
// Terminal appointments cannot be moved.
func (s *Service) Reschedule(ctx context.Context, id uuid.UUID, startAt, endAt time.Time, confirmOverbooking bool) (*Appointment, error) {
	a, err := s.repo.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if a.Terminal() {
		return nil, fmt.Errorf("cannot reschedule a %s appointment", a.Status)
	}
	if !startAt.Before(endAt) {
		return nil, fmt.Errorf("start_at must be before end_at")
	}

	existing, err := s.repo.ListByProfessionalDay(ctx, a.ProfessionalID, dayStart(startAt))
	if err != nil {
		return nil, err
	}
	err = agenda.DetectBookingConflict(startAt, endAt, a.PatientID, bookedSlots(existing, a.ID))
	switch {
	case errors.Is(err, agenda.ErrOverbookingRequired):
		if !confirmOverbooking {
			return nil, err
		}
		a.Overbooking = true
	case err != nil:
		return nil, err
	}

	a.StartAt = startAt
	a.EndAt = endAt
	if err := s.repo.Update(ctx, a); err != nil {
		return nil, err
	}
	return a, nil
}

// ChangeStatus applies one step of the status machine.
func (s *Service) ChangeStatus(ctx context.Context, id uuid.UUID, status string) (*Appointment, error) {
	if !validStatuses[status] {
		return nil, ErrInvalidStatus
	}
	a, err := s.repo.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if !canTransition(a.Status, status) {
		return nil, fmt.Errorf("%w: %s -> %s", ErrInvalidTransition, a.Status, status)
	}
	a.Status = status
	if err := s.repo.Update(ctx, a); err != nil {
		return nil, err
	}
	return a, nil
}

func (s *Service) UpdateNotes(ctx context.Context, id uuid.UUID, notes *string) (*Appointment, error) {
	a, err := s.repo.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	a.Notes = notes
	if err := s.repo.Update(ctx, a); err != nil {
		return nil, err
	}
	return a, nil
}

func (s *Service) Delete(ctx context.Context, id uuid.UUID) error {
	return s.repo.Delete(ctx, id)
}

func (s *Service) ListByProfessional(ctx context.Context, professionalID uuid.UUID, limit, offset int) ([]*Appointment, int, error) {
	return s.repo.ListByProfessional(ctx, professionalID, limit, offset)
}

func (s *Service) ListByPatient(ctx context.Context, patientID uuid.UUID, limit, offset int) ([]*Appointment, int, error) {
	return s.repo.ListByPatient(ctx, patientID, limit, offset)
}

func (s *Service) ListDay(ctx context.Context, professionalID uuid.UUID, day time.Time) ([]*Appointment, error) {
	return s.repo.ListByProfessionalDay(ctx, professionalID, dayStart(day))
}
