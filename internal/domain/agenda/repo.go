package agenda

import (
	"context"
	"time"

	"github.com/google/uuid"
)

type TemplateRepository interface {
	Create(ctx context.Context, t *WeeklyTemplate) error
	GetByID(ctx context.Context, id uuid.UUID) (*WeeklyTemplate, error)
	Update(ctx context.Context, t *WeeklyTemplate) error
	Delete(ctx context.Context, id uuid.UUID) error
	ListByProfessional(ctx context.Context, professionalID uuid.UUID, limit, offset int) ([]*WeeklyTemplate, int, error)
	// ListAllByProfessional returns the full template set; the resolver needs
	// every row, not a page.
	ListAllByProfessional(ctx context.Context, professionalID uuid.UUID) ([]*WeeklyTemplate, error)
}

type ExceptionRepository interface {
	Create(ctx context.Context, e *DateException) error
	GetByID(ctx context.Context, id uuid.UUID) (*DateException, error)
	Update(ctx context.Context, e *DateException) error
	Delete(ctx context.Context, id uuid.UUID) error
	ListByProfessional(ctx context.Context, professionalID uuid.UUID, limit, offset int) ([]*DateException, int, error)
	ListInRange(ctx context.Context, professionalID uuid.UUID, from, to time.Time) ([]*DateException, error)
}

type BlockRepository interface {
	Create(ctx context.Context, b *Block) error
	GetByID(ctx context.Context, id uuid.UUID) (*Block, error)
	Update(ctx context.Context, b *Block) error
	Delete(ctx context.Context, id uuid.UUID) error
	ListByProfessional(ctx context.Context, professionalID uuid.UUID, limit, offset int) ([]*Block, int, error)
	ListInRange(ctx context.Context, professionalID uuid.UUID, from, to time.Time) ([]*Block, error)
}

// AppointmentFeed supplies the booked slots of one professional for one local
// day. Implemented by the appointment domain and wired in at startup; keeping
// it an interface here avoids a package cycle.
type AppointmentFeed interface {
	ListBookedSlots(ctx context.Context, professionalID uuid.UUID, day time.Time) ([]BookedSlot, error)
}
