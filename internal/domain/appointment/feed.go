package appointment

import (
	"context"
	"time"

	"github.com/google/uuid"

	"github.com/clinica/clinica/internal/domain/agenda"
)

// Feed adapts the appointment store to the agenda resolver's read-only view.
// Wired in at startup so the agenda package never imports this one.
type Feed struct {
	repo Repository
}

func NewFeed(repo Repository) *Feed {
	return &Feed{repo: repo}
}

func (f *Feed) ListBookedSlots(ctx context.Context, professionalID uuid.UUID, day time.Time) ([]agenda.BookedSlot, error) {
	appts, err := f.repo.ListByProfessionalDay(ctx, professionalID, dayStart(day))
	if err != nil {
		return nil, err
	}
	return bookedSlots(appts, uuid.Nil), nil
}
