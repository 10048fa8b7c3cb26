package agenda

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
)

type Service struct {
	templates    TemplateRepository
	exceptions   ExceptionRepository
	blocks       BlockRepository
	appointments AppointmentFeed
}

func NewService(templates TemplateRepository, exceptions ExceptionRepository, blocks BlockRepository) *Service {
	return &Service{templates: templates, exceptions: exceptions, blocks: blocks}
}

// SetAppointmentFeed wires the appointment domain in after construction; the
// resolver degrades to "no bookings" while the feed is absent.
func (s *Service) SetAppointmentFeed(feed AppointmentFeed) { s.appointments = feed }

// -- Weekly templates --

func validateClockRange(start, end string) error {
	sMin, okS := parseClock(start)
	eMin, okE := parseClock(end)
	if !okS {
		return fmt.Errorf("invalid start_time %q, want HH:mm", start)
	}
	if !okE {
		return fmt.Errorf("invalid end_time %q, want HH:mm", end)
	}
	if sMin >= eMin {
		return fmt.Errorf("start_time must be before end_time")
	}
	return nil
}

func (s *Service) CreateTemplate(ctx context.Context, t *WeeklyTemplate) error {
	if t.ProfessionalID == uuid.Nil {
		return fmt.Errorf("professional_id is required")
	}
	if t.DayOfWeek < 0 || t.DayOfWeek > 6 {
		return fmt.Errorf("day_of_week must be between 0 and 6")
	}
	if t.SlotMinutes <= 0 {
		return fmt.Errorf("slot_minutes must be positive")
	}
	if err := validateClockRange(t.StartTime, t.EndTime); err != nil {
		return err
	}
	if t.ValidFrom != nil && t.ValidTo != nil && t.ValidTo.Before(*t.ValidFrom) {
		return fmt.Errorf("valid_to must not precede valid_from")
	}
	return s.templates.Create(ctx, t)
}

func (s *Service) GetTemplate(ctx context.Context, id uuid.UUID) (*WeeklyTemplate, error) {
	return s.templates.GetByID(ctx, id)
}

func (s *Service) UpdateTemplate(ctx context.Context, t *WeeklyTemplate) error {
	if t.DayOfWeek < 0 || t.DayOfWeek > 6 {
		return fmt.Errorf("day_of_week must be between 0 and 6")
	}
	if t.SlotMinutes <= 0 {
		return fmt.Errorf("slot_minutes must be positive")
	}
	if err := validateClockRange(t.StartTime, t.EndTime); err != nil {
		return err
	}
	return s.templates.Update(ctx, t)
}

func (s *Service) DeleteTemplate(ctx context.Context, id uuid.UUID) error {
	return s.templates.Delete(ctx, id)
}

func (s *Service) ListTemplates(ctx context.Context, professionalID uuid.UUID, limit, offset int) ([]*WeeklyTemplate, int, error) {
	return s.templates.ListByProfessional(ctx, professionalID, limit, offset)
}

// -- Date exceptions --

func (s *Service) CreateException(ctx context.Context, e *DateException) error {
	if e.ProfessionalID == uuid.Nil {
		return fmt.Errorf("professional_id is required")
	}
	if e.Date.IsZero() {
		return fmt.Errorf("date is required")
	}
	if e.SlotMinutes <= 0 {
		return fmt.Errorf("slot_minutes must be positive")
	}
	if err := validateClockRange(e.StartTime, e.EndTime); err != nil {
		return err
	}
	return s.exceptions.Create(ctx, e)
}

func (s *Service) GetException(ctx context.Context, id uuid.UUID) (*DateException, error) {
	return s.exceptions.GetByID(ctx, id)
}

func (s *Service) UpdateException(ctx context.Context, e *DateException) error {
	if e.SlotMinutes <= 0 {
		return fmt.Errorf("slot_minutes must be positive")
	}
	if err := validateClockRange(e.StartTime, e.EndTime); err != nil {
		return err
	}
	return s.exceptions.Update(ctx, e)
}

func (s *Service) DeleteException(ctx context.Context, id uuid.UUID) error {
	return s.exceptions.Delete(ctx, id)
}

func (s *Service) ListExceptions(ctx context.Context, professionalID uuid.UUID, limit, offset int) ([]*DateException, int, error) {
	return s.exceptions.ListByProfessional(ctx, professionalID, limit, offset)
}

// -- Unavailability blocks --

func (s *Service) CreateBlock(ctx context.Context, b *Block) error {
	if b.ProfessionalID == uuid.Nil {
		return fmt.Errorf("professional_id is required")
	}
	if b.StartAt.IsZero() || b.EndAt.IsZero() {
		return fmt.Errorf("start_at and end_at are required")
	}
	if !b.StartAt.Before(b.EndAt) {
		return fmt.Errorf("start_at must be before end_at")
	}
	return s.blocks.Create(ctx, b)
}

func (s *Service) GetBlock(ctx context.Context, id uuid.UUID) (*Block, error) {
	return s.blocks.GetByID(ctx, id)
}

func (s *Service) UpdateBlock(ctx context.Context, b *Block) error {
	if !b.StartAt.Before(b.EndAt) {
		return fmt.Errorf("start_at must be before end_at")
	}
	return s.blocks.Update(ctx, b)
}

func (s *Service) DeleteBlock(ctx context.Context, id uuid.UUID) error {
	return s.blocks.Delete(ctx, id)
}

func (s *Service) ListBlocks(ctx context.Context, professionalID uuid.UUID, limit, offset int) ([]*Block, int, error) {
	return s.blocks.ListByProfessional(ctx, professionalID, limit, offset)
}

// -- Availability --

// DayAvailability loads the four input feeds and derives the bookable state
// for one professional + date. Feed failures degrade to empty input: a day
// whose data cannot be loaded simply resolves as not configured. When anchor
// is non-empty the end-time options for an appointment starting there are
// included; an anchor that is missing or blocked snaps to the first
// non-blocked start.
func (s *Service) DayAvailability(ctx context.Context, professionalID uuid.UUID, date, anchor string) (*DayAvailability, error) {
	day, ok := parseDate(date)
	if !ok {
		return nil, fmt.Errorf("invalid date %q, want YYYY-MM-DD", date)
	}
	dayEnd := day.AddDate(0, 0, 1)
	// date_exception.date is a DATE column and round-trips at UTC midnight,
	// so its range bounds are built in UTC; blocks and bookings carry real
	// instants and keep the local-midnight bounds.
	exDay := time.Date(day.Year(), day.Month(), day.Day(), 0, 0, 0, 0, time.UTC)

	templates, err := s.templates.ListAllByProfessional(ctx, professionalID)
	if err != nil {
		templates = nil
	}
	exceptions, err := s.exceptions.ListInRange(ctx, professionalID, exDay, exDay.AddDate(0, 0, 1))
	if err != nil {
		exceptions = nil
	}
	blocks, err := s.blocks.ListInRange(ctx, professionalID, day, dayEnd)
	if err != nil {
		blocks = nil
	}
	var booked []BookedSlot
	if s.appointments != nil {
		if bs, err := s.appointments.ListBookedSlots(ctx, professionalID, day); err == nil {
			booked = bs
		}
	}

	out := &DayAvailability{Date: date}
	out.Windows = ResolveDaySchedule(date, templates, exceptions)
	if len(out.Windows) == 0 {
		return out, nil
	}
	out.Bookable = true
	out.FullyBlocked, out.BlockReason = FullyBlocked(date, out.Windows, blocks)
	out.StartOptions = SlotOptions(date, out.Windows, blocks, booked)
	out.DefaultStart = correctedStart(out.StartOptions, anchor)
	if out.DefaultStart != "" {
		out.EndOptions = EndOptions(date, out.Windows, out.DefaultStart, blocks, booked)
		out.DefaultEnd = DefaultEnd(out.EndOptions, out.DefaultStart)
	}
	return out, nil
}

// correctedStart keeps the requested anchor when it is still a non-blocked
// candidate, otherwise falls back to the first non-blocked option.
func correctedStart(options []SlotOption, requested string) string {
	if requested != "" {
		for _, o := range options {
			if o.Time == requested && !o.Blocked {
				return requested
			}
		}
	}
	return DefaultStart(options)
}
