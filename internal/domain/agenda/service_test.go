package agenda

import (
	"context"
	"fmt"
	"testing"
	"time"

	"github.com/google/uuid"
)

// -- Mock Repositories --

type mockTemplateRepo struct {
	templates map[uuid.UUID]*WeeklyTemplate
}

func newMockTemplateRepo() *mockTemplateRepo {
	return &mockTemplateRepo{templates: make(map[uuid.UUID]*WeeklyTemplate)}
}

func (m *mockTemplateRepo) Create(_ context.Context, t *WeeklyTemplate) error {
	t.ID = uuid.New()
	t.CreatedAt = time.Now()
	t.UpdatedAt = time.Now()
	m.templates[t.ID] = t
	return nil
}

func (m *mockTemplateRepo) GetByID(_ context.Context, id uuid.UUID) (*WeeklyTemplate, error) {
	t, ok := m.templates[id]
	if !ok {
		return nil, fmt.Errorf("not found")
	}
	return t, nil
}

func (m *mockTemplateRepo) Update(_ context.Context, t *WeeklyTemplate) error {
	if _, ok := m.templates[t.ID]; !ok {
		return fmt.Errorf("not found")
	}
	m.templates[t.ID] = t
	return nil
}

func (m *mockTemplateRepo) Delete(_ context.Context, id uuid.UUID) error {
	delete(m.templates, id)
	return nil
}

func (m *mockTemplateRepo) ListByProfessional(_ context.Context, pid uuid.UUID, limit, offset int) ([]*WeeklyTemplate, int, error) {
	var result []*WeeklyTemplate
	for _, t := range m.templates {
		if t.ProfessionalID == pid {
			result = append(result, t)
		}
	}
	total := len(result)
	if offset >= len(result) {
		return nil, total, nil
	}
	end := offset + limit
	if end > len(result) {
		end = len(result)
	}
	return result[offset:end], total, nil
}

func (m *mockTemplateRepo) ListAllByProfessional(_ context.Context, pid uuid.UUID) ([]*WeeklyTemplate, error) {
	var result []*WeeklyTemplate
	for _, t := range m.templates {
		if t.ProfessionalID == pid {
			result = append(result, t)
		}
	}
	return result, nil
}

type mockExceptionRepo struct {
	exceptions map[uuid.UUID]*DateException
}

func newMockExceptionRepo() *mockExceptionRepo {
	return &mockExceptionRepo{exceptions: make(map[uuid.UUID]*DateException)}
}

func (m *mockExceptionRepo) Create(_ context.Context, e *DateException) error {
	e.ID = uuid.New()
	m.exceptions[e.ID] = e
	return nil
}

func (m *mockExceptionRepo) GetByID(_ context.Context, id uuid.UUID) (*DateException, error) {
	e, ok := m.exceptions[id]
	if !ok {
		return nil, fmt.Errorf("not found")
	}
	return e, nil
}

func (m *mockExceptionRepo) Update(_ context.Context, e *DateException) error {
	m.exceptions[e.ID] = e
	return nil
}

func (m *mockExceptionRepo) Delete(_ context.Context, id uuid.UUID) error {
	delete(m.exceptions, id)
	return nil
}

func (m *mockExceptionRepo) ListByProfessional(_ context.Context, pid uuid.UUID, limit, offset int) ([]*DateException, int, error) {
	var result []*DateException
	for _, e := range m.exceptions {
		if e.ProfessionalID == pid {
			result = append(result, e)
		}
	}
	return result, len(result), nil
}

// dateKey reduces a timestamp to its own calendar day, mirroring how the
// DATE column compares in SQL.
func dateKey(t time.Time) int {
	return t.Year()*10000 + int(t.Month())*100 + t.Day()
}

func (m *mockExceptionRepo) ListInRange(_ context.Context, pid uuid.UUID, from, to time.Time) ([]*DateException, error) {
	var result []*DateException
	for _, e := range m.exceptions {
		if e.ProfessionalID == pid && dateKey(e.Date) >= dateKey(from) && dateKey(e.Date) < dateKey(to) {
			result = append(result, e)
		}
	}
	return result, nil
}

type mockBlockRepo struct {
	blocks map[uuid.UUID]*Block
}

func newMockBlockRepo() *mockBlockRepo {
	return &mockBlockRepo{blocks: make(map[uuid.UUID]*Block)}
}

func (m *mockBlockRepo) Create(_ context.Context, b *Block) error {
	b.ID = uuid.New()
	m.blocks[b.ID] = b
	return nil
}

func (m *mockBlockRepo) GetByID(_ context.Context, id uuid.UUID) (*Block, error) {
	b, ok := m.blocks[id]
	if !ok {
		return nil, fmt.Errorf("not found")
	}
	return b, nil
}

func (m *mockBlockRepo) Update(_ context.Context, b *Block) error {
	m.blocks[b.ID] = b
	return nil
}

func (m *mockBlockRepo) Delete(_ context.Context, id uuid.UUID) error {
	delete(m.blocks, id)
	return nil
}

func (m *mockBlockRepo) ListByProfessional(_ context.Context, pid uuid.UUID, limit, offset int) ([]*Block, int, error) {
	var result []*Block
	for _, b := range m.blocks {
		if b.ProfessionalID == pid {
			result = append(result, b)
		}
	}
	return result, len(result), nil
}

func (m *mockBlockRepo) ListInRange(_ context.Context, pid uuid.UUID, from, to time.Time) ([]*Block, error) {
	var result []*Block
	for _, b := range m.blocks {
		if b.ProfessionalID == pid && b.StartAt.Before(to) && b.EndAt.After(from) {
			result = append(result, b)
		}
	}
	return result, nil
}

type mockFeed struct {
	slots []BookedSlot
}

func (m *mockFeed) ListBookedSlots(_ context.Context, _ uuid.UUID, _ time.Time) ([]BookedSlot, error) {
	return m.slots, nil
}

func newTestService() *Service {
	return NewService(newMockTemplateRepo(), newMockExceptionRepo(), newMockBlockRepo())
}

// -- Template validation --

func TestService_CreateTemplate(t *testing.T) {
	svc := newTestService()
	tpl := &WeeklyTemplate{
		ProfessionalID: uuid.New(),
		DayOfWeek:      1,
		StartTime:      "09:00",
		EndTime:        "12:00",
		SlotMinutes:    30,
		Active:         true,
	}
	if err := svc.CreateTemplate(context.Background(), tpl); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if tpl.ID == uuid.Nil {
		t.Error("expected generated id")
	}
}

func TestService_CreateTemplate_Validation(t *testing.T) {
	svc := newTestService()
	pid := uuid.New()

	cases := []struct {
		name string
		tpl  WeeklyTemplate
	}{
		{"missing professional", WeeklyTemplate{DayOfWeek: 1, StartTime: "09:00", EndTime: "12:00", SlotMinutes: 30}},
		{"day of week too high", WeeklyTemplate{ProfessionalID: pid, DayOfWeek: 7, StartTime: "09:00", EndTime: "12:00", SlotMinutes: 30}},
		{"negative day of week", WeeklyTemplate{ProfessionalID: pid, DayOfWeek: -1, StartTime: "09:00", EndTime: "12:00", SlotMinutes: 30}},
		{"zero slot", WeeklyTemplate{ProfessionalID: pid, DayOfWeek: 1, StartTime: "09:00", EndTime: "12:00"}},
		{"bad start time", WeeklyTemplate{ProfessionalID: pid, DayOfWeek: 1, StartTime: "9am", EndTime: "12:00", SlotMinutes: 30}},
		{"inverted range", WeeklyTemplate{ProfessionalID: pid, DayOfWeek: 1, StartTime: "12:00", EndTime: "09:00", SlotMinutes: 30}},
	}
	for _, tc := range cases {
		tpl := tc.tpl
		if err := svc.CreateTemplate(context.Background(), &tpl); err == nil {
			t.Errorf("%s: expected error", tc.name)
		}
	}
}

func TestService_CreateTemplate_InvertedValidity(t *testing.T) {
	svc := newTestService()
	from := time.Now()
	to := from.AddDate(0, 0, -1)
	tpl := &WeeklyTemplate{
		ProfessionalID: uuid.New(),
		DayOfWeek:      1,
		StartTime:      "09:00",
		EndTime:        "12:00",
		SlotMinutes:    30,
		ValidFrom:      &from,
		ValidTo:        &to,
	}
	if err := svc.CreateTemplate(context.Background(), tpl); err == nil {
		t.Error("expected error for valid_to before valid_from")
	}
}

func TestService_CreateBlock_Validation(t *testing.T) {
	svc := newTestService()
	b := &Block{
		ProfessionalID: uuid.New(),
		StartAt:        at(t, monday, "12:00"),
		EndAt:          at(t, monday, "10:00"),
	}
	if err := svc.CreateBlock(context.Background(), b); err == nil {
		t.Error("expected error for start_at after end_at")
	}
}

func TestService_CreateException_Validation(t *testing.T) {
	svc := newTestService()
	e := &DateException{
		ProfessionalID: uuid.New(),
		Date:           at(t, monday, "00:00"),
		StartTime:      "10:00",
		EndTime:        "11:00",
	}
	if err := svc.CreateException(context.Background(), e); err == nil {
		t.Error("expected error for missing slot_minutes")
	}
}

// -- DayAvailability --

func seedMonday(t *testing.T, svc *Service, pid uuid.UUID) {
	t.Helper()
	tpl := &WeeklyTemplate{
		ProfessionalID: pid,
		DayOfWeek:      1,
		StartTime:      "09:00",
		EndTime:        "11:00",
		SlotMinutes:    30,
		Active:         true,
	}
	if err := svc.CreateTemplate(context.Background(), tpl); err != nil {
		t.Fatalf("seed template: %v", err)
	}
}

func TestService_DayAvailability(t *testing.T) {
	svc := newTestService()
	pid := uuid.New()
	seedMonday(t, svc, pid)

	reason := "lunch"
	if err := svc.CreateBlock(context.Background(), &Block{
		ProfessionalID: pid,
		StartAt:        at(t, monday, "10:00"),
		EndAt:          at(t, monday, "10:30"),
		Reason:         &reason,
	}); err != nil {
		t.Fatalf("seed block: %v", err)
	}
	svc.SetAppointmentFeed(&mockFeed{slots: []BookedSlot{{
		PatientID: uuid.New(),
		Start:     at(t, monday, "09:00"),
		End:       at(t, monday, "09:30"),
		Status:    "confirmed",
	}}})

	day, err := svc.DayAvailability(context.Background(), pid, monday, "")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if !day.Bookable {
		t.Fatal("expected bookable day")
	}
	if day.FullyBlocked {
		t.Error("partial block must not mark the day fully blocked")
	}
	wantTimes(t, day.StartOptions, "09:00", "09:30", "10:00", "10:30")
	if !day.StartOptions[0].Occupied || day.StartOptions[1].Occupied {
		t.Errorf("occupied flags wrong: %+v", day.StartOptions)
	}
	if day.StartOptions[2].Blocked != true {
		t.Errorf("10:00 should be blocked: %+v", day.StartOptions[2])
	}
	if day.DefaultStart != "09:00" {
		t.Errorf("DefaultStart = %q, want 09:00", day.DefaultStart)
	}
	if day.DefaultEnd != "09:30" {
		t.Errorf("DefaultEnd = %q, want 09:30", day.DefaultEnd)
	}
}

func TestService_DayAvailability_NotConfigured(t *testing.T) {
	svc := newTestService()
	day, err := svc.DayAvailability(context.Background(), uuid.New(), monday, "")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if day.Bookable {
		t.Error("day without templates must not be bookable")
	}
	if len(day.StartOptions) != 0 {
		t.Errorf("expected no options, got %v", day.StartOptions)
	}
}

func TestService_DayAvailability_FullyBlocked(t *testing.T) {
	svc := newTestService()
	pid := uuid.New()
	seedMonday(t, svc, pid)

	reason := "vacation"
	if err := svc.CreateBlock(context.Background(), &Block{
		ProfessionalID: pid,
		StartAt:        at(t, monday, "00:00"),
		EndAt:          at(t, monday, "23:59"),
		Reason:         &reason,
	}); err != nil {
		t.Fatalf("seed block: %v", err)
	}

	day, err := svc.DayAvailability(context.Background(), pid, monday, "")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if !day.FullyBlocked {
		t.Error("expected fully blocked day")
	}
	if day.BlockReason != "vacation" {
		t.Errorf("BlockReason = %q, want vacation", day.BlockReason)
	}
	if day.DefaultStart != "" {
		t.Errorf("DefaultStart = %q, want empty on a fully blocked day", day.DefaultStart)
	}
}

func TestService_DayAvailability_AnchorKeptAndCorrected(t *testing.T) {
	svc := newTestService()
	pid := uuid.New()
	seedMonday(t, svc, pid)

	// A valid anchor is kept.
	day, err := svc.DayAvailability(context.Background(), pid, monday, "10:00")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if day.DefaultStart != "10:00" {
		t.Errorf("DefaultStart = %q, want requested 10:00", day.DefaultStart)
	}
	wantTimes(t, day.EndOptions, "10:30", "11:00")

	// An anchor that is not a candidate snaps to the first option.
	day, err = svc.DayAvailability(context.Background(), pid, monday, "10:17")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if day.DefaultStart != "09:00" {
		t.Errorf("DefaultStart = %q, want corrected 09:00", day.DefaultStart)
	}
}

func TestService_DayAvailability_ExceptionOverrides(t *testing.T) {
	svc := newTestService()
	pid := uuid.New()
	seedMonday(t, svc, pid)

	if err := svc.CreateException(context.Background(), &DateException{
		ProfessionalID: pid,
		Date:           at(t, monday, "00:00"),
		StartTime:      "14:00",
		EndTime:        "15:00",
		SlotMinutes:    30,
	}); err != nil {
		t.Fatalf("seed exception: %v", err)
	}

	day, err := svc.DayAvailability(context.Background(), pid, monday, "")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	wantTimes(t, day.StartOptions, "14:00", "14:30")
}

func TestService_DayAvailability_StoredExceptionDateWestOfUTC(t *testing.T) {
	prev := time.Local
	time.Local = time.FixedZone("UTC-3", -3*60*60)
	defer func() { time.Local = prev }()

	svc := newTestService()
	pid := uuid.New()
	seedMonday(t, svc, pid)

	// The DATE column hands exception dates back as UTC midnight.
	if err := svc.CreateException(context.Background(), &DateException{
		ProfessionalID: pid,
		Date:           time.Date(2026, 3, 2, 0, 0, 0, 0, time.UTC),
		StartTime:      "14:00",
		EndTime:        "15:00",
		SlotMinutes:    30,
	}); err != nil {
		t.Fatalf("seed exception: %v", err)
	}

	day, err := svc.DayAvailability(context.Background(), pid, monday, "")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	wantTimes(t, day.StartOptions, "14:00", "14:30")
}

func TestService_DayAvailability_BadDate(t *testing.T) {
	svc := newTestService()
	if _, err := svc.DayAvailability(context.Background(), uuid.New(), "not-a-date", ""); err == nil {
		t.Error("expected error for malformed date")
	}
}
