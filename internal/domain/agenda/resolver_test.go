package agenda

import (
	"errors"
	"testing"
	"time"

	"github.com/google/uuid"
)

// 2026-03-02 is a Monday.
const monday = "2026-03-02"

func at(t *testing.T, date, clock string) time.Time {
	t.Helper()
	ts, err := time.ParseInLocation("2006-01-02 15:04", date+" "+clock, time.Local)
	if err != nil {
		t.Fatalf("bad test time %s %s: %v", date, clock, err)
	}
	return ts
}

func mkTemplate(day int, start, end string, slot int) *WeeklyTemplate {
	return &WeeklyTemplate{
		ID:             uuid.New(),
		ProfessionalID: uuid.New(),
		DayOfWeek:      day,
		StartTime:      start,
		EndTime:        end,
		SlotMinutes:    slot,
		Active:         true,
	}
}

func mkException(t *testing.T, date, start, end string, slot int) *DateException {
	t.Helper()
	return &DateException{
		ID:          uuid.New(),
		Date:        at(t, date, "00:00"),
		StartTime:   start,
		EndTime:     end,
		SlotMinutes: slot,
	}
}

func mkBlock(t *testing.T, date, start, end, reason string) *Block {
	t.Helper()
	b := &Block{ID: uuid.New(), StartAt: at(t, date, start), EndAt: at(t, date, end)}
	if reason != "" {
		b.Reason = &reason
	}
	return b
}

func startTimes(opts []SlotOption) []string {
	out := make([]string, len(opts))
	for i, o := range opts {
		out[i] = o.Time
	}
	return out
}

func wantTimes(t *testing.T, got []SlotOption, want ...string) {
	t.Helper()
	if len(got) != len(want) {
		t.Fatalf("got %d options %v, want %d %v", len(got), startTimes(got), len(want), want)
	}
	for i, w := range want {
		if got[i].Time != w {
			t.Errorf("option[%d] = %s, want %s", i, got[i].Time, w)
		}
	}
}

// -- ResolveDaySchedule --

func TestResolveDayScheduleMatchesWeekday(t *testing.T) {
	templates := []*WeeklyTemplate{
		mkTemplate(1, "09:00", "12:00", 30), // Monday
		mkTemplate(2, "14:00", "18:00", 30), // Tuesday, must not apply
	}
	ws := ResolveDaySchedule(monday, templates, nil)
	if len(ws) != 1 {
		t.Fatalf("got %d windows, want 1", len(ws))
	}
	if ws[0].StartTime != "09:00" || ws[0].EndTime != "12:00" {
		t.Errorf("got window %+v", ws[0])
	}
}

func TestResolveDayScheduleNoTemplates(t *testing.T) {
	if ws := ResolveDaySchedule(monday, nil, nil); len(ws) != 0 {
		t.Errorf("got %d windows, want 0", len(ws))
	}
}

func TestResolveDayScheduleExceptionOverridesTemplates(t *testing.T) {
	templates := []*WeeklyTemplate{
		mkTemplate(1, "09:00", "12:00", 30),
		mkTemplate(1, "14:00", "18:00", 30),
	}
	exceptions := []*DateException{mkException(t, monday, "10:00", "11:00", 20)}

	ws := ResolveDaySchedule(monday, templates, exceptions)
	if len(ws) != 1 {
		t.Fatalf("got %d windows, want 1 (exception replaces templates)", len(ws))
	}
	if ws[0].StartTime != "10:00" || ws[0].EndTime != "11:00" || ws[0].SlotMinutes != 20 {
		t.Errorf("got window %+v", ws[0])
	}
}

func TestResolveDayScheduleExceptionOtherDateIgnored(t *testing.T) {
	templates := []*WeeklyTemplate{mkTemplate(1, "09:00", "12:00", 30)}
	exceptions := []*DateException{mkException(t, "2026-03-03", "10:00", "11:00", 20)}

	ws := ResolveDaySchedule(monday, templates, exceptions)
	if len(ws) != 1 || ws[0].StartTime != "09:00" {
		t.Errorf("got %+v, want the Monday template", ws)
	}
}

func TestResolveDayScheduleValidityBounds(t *testing.T) {
	day := at(t, monday, "00:00")

	expired := mkTemplate(1, "09:00", "12:00", 30)
	to := day.AddDate(0, 0, -7)
	expired.ValidTo = &to

	future := mkTemplate(1, "14:00", "18:00", 30)
	from := day.AddDate(0, 0, 7)
	future.ValidFrom = &from

	current := mkTemplate(1, "08:00", "10:00", 30)
	cf, ct := day.AddDate(0, 0, -1), day
	current.ValidFrom = &cf
	current.ValidTo = &ct

	ws := ResolveDaySchedule(monday, []*WeeklyTemplate{expired, future, current}, nil)
	if len(ws) != 1 || ws[0].StartTime != "08:00" {
		t.Errorf("got %+v, want only the in-range template", ws)
	}
}

// Exception dates and validity bounds come out of the DATE columns as UTC
// midnight; resolution must stay on the same calendar day in any zone.
func TestResolveDayScheduleDateColumnsWestOfUTC(t *testing.T) {
	prev := time.Local
	time.Local = time.FixedZone("UTC-3", -3*60*60)
	defer func() { time.Local = prev }()

	utcMonday := time.Date(2026, 3, 2, 0, 0, 0, 0, time.UTC)

	ex := &DateException{
		ID:             uuid.New(),
		ProfessionalID: uuid.New(),
		Date:           utcMonday,
		StartTime:      "14:00",
		EndTime:        "15:00",
		SlotMinutes:    30,
	}
	tpl := mkTemplate(1, "09:00", "12:00", 30)
	ws := ResolveDaySchedule(monday, []*WeeklyTemplate{tpl}, []*DateException{ex})
	if len(ws) != 1 || ws[0].StartTime != "14:00" {
		t.Errorf("got %+v, want the exception to win on its own date", ws)
	}

	fromMonday := mkTemplate(1, "09:00", "12:00", 30)
	fromMonday.ValidFrom = &utcMonday
	if ws := ResolveDaySchedule(monday, []*WeeklyTemplate{fromMonday}, nil); len(ws) != 1 {
		t.Errorf("template with valid_from on the date itself must apply, got %+v", ws)
	}

	// 2026-03-01 is the Sunday before; a Sunday template that only becomes
	// valid on Monday must not leak back a day.
	sunday := mkTemplate(0, "09:00", "12:00", 30)
	sunday.ValidFrom = &utcMonday
	if ws := ResolveDaySchedule("2026-03-01", []*WeeklyTemplate{sunday}, nil); len(ws) != 0 {
		t.Errorf("template must not apply before valid_from, got %+v", ws)
	}

	toMonday := mkTemplate(1, "09:00", "12:00", 30)
	toMonday.ValidTo = &utcMonday
	if ws := ResolveDaySchedule(monday, []*WeeklyTemplate{toMonday}, nil); len(ws) != 1 {
		t.Errorf("template with valid_to on the date itself must apply, got %+v", ws)
	}
}

func TestResolveDayScheduleSkipsInactiveAndMalformed(t *testing.T) {
	inactive := mkTemplate(1, "09:00", "12:00", 30)
	inactive.Active = false
	bad := mkTemplate(1, "9am", "12:00", 30)
	inverted := mkTemplate(1, "12:00", "09:00", 30)
	zeroSlot := mkTemplate(1, "09:00", "12:00", 0)

	ws := ResolveDaySchedule(monday, []*WeeklyTemplate{inactive, bad, inverted, zeroSlot}, nil)
	if len(ws) != 0 {
		t.Errorf("got %d windows, want 0", len(ws))
	}
}

func TestResolveDayScheduleSortsWindows(t *testing.T) {
	templates := []*WeeklyTemplate{
		mkTemplate(1, "14:00", "18:00", 30),
		mkTemplate(1, "09:00", "12:00", 30),
	}
	ws := ResolveDaySchedule(monday, templates, nil)
	if len(ws) != 2 || ws[0].StartTime != "09:00" || ws[1].StartTime != "14:00" {
		t.Errorf("windows not sorted: %+v", ws)
	}
}

func TestResolveDayScheduleBadDate(t *testing.T) {
	templates := []*WeeklyTemplate{mkTemplate(1, "09:00", "12:00", 30)}
	if ws := ResolveDaySchedule("02/03/2026", templates, nil); ws != nil {
		t.Errorf("got %+v, want nil for malformed date", ws)
	}
}

// -- SlotOptions --

func TestSlotOptionsExactSteps(t *testing.T) {
	// A 09:00-10:00 window with 30-minute slots yields exactly 09:00 and
	// 09:30; 10:00 would end past the window and is excluded.
	windows := []ScheduleWindow{{StartTime: "09:00", EndTime: "10:00", SlotMinutes: 30}}
	opts := SlotOptions(monday, windows, nil, nil)
	wantTimes(t, opts, "09:00", "09:30")
}

func TestSlotOptionsMergesWindows(t *testing.T) {
	windows := []ScheduleWindow{
		{StartTime: "14:00", EndTime: "15:00", SlotMinutes: 30},
		{StartTime: "09:00", EndTime: "10:00", SlotMinutes: 30},
	}
	opts := SlotOptions(monday, windows, nil, nil)
	wantTimes(t, opts, "09:00", "09:30", "14:00", "14:30")
}

func TestSlotOptionsBlockedAndOccupiedFlags(t *testing.T) {
	// Monday 09:00-11:00 every 30 min, lunch block 10:00-10:30, one
	// appointment 09:00-09:30.
	windows := []ScheduleWindow{{StartTime: "09:00", EndTime: "11:00", SlotMinutes: 30}}
	blocks := []*Block{mkBlock(t, monday, "10:00", "10:30", "lunch")}
	booked := []BookedSlot{{
		PatientID: uuid.New(),
		Start:     at(t, monday, "09:00"),
		End:       at(t, monday, "09:30"),
		Status:    "confirmed",
	}}

	opts := SlotOptions(monday, windows, blocks, booked)
	wantTimes(t, opts, "09:00", "09:30", "10:00", "10:30")

	want := []SlotOption{
		{Time: "09:00", Blocked: false, Occupied: true},
		{Time: "09:30", Blocked: false, Occupied: false},
		{Time: "10:00", Blocked: true, Occupied: false},
		{Time: "10:30", Blocked: false, Occupied: false},
	}
	for i, w := range want {
		if opts[i] != w {
			t.Errorf("option[%d] = %+v, want %+v", i, opts[i], w)
		}
	}
}

func TestSlotOptionsCancelledNotOccupied(t *testing.T) {
	windows := []ScheduleWindow{{StartTime: "09:00", EndTime: "10:00", SlotMinutes: 30}}
	booked := []BookedSlot{
		{PatientID: uuid.New(), Start: at(t, monday, "09:00"), End: at(t, monday, "09:30"), Status: "cancelled"},
		{PatientID: uuid.New(), Start: at(t, monday, "09:30"), End: at(t, monday, "10:00"), Status: "completed"},
	}
	opts := SlotOptions(monday, windows, nil, booked)
	for _, o := range opts {
		if o.Occupied {
			t.Errorf("slot %s marked occupied by a terminal appointment", o.Time)
		}
	}
}

func TestSlotOptionsUnknownStatusCountsAsActive(t *testing.T) {
	windows := []ScheduleWindow{{StartTime: "09:00", EndTime: "10:00", SlotMinutes: 30}}
	booked := []BookedSlot{{PatientID: uuid.New(), Start: at(t, monday, "09:00"), End: at(t, monday, "09:30")}}
	opts := SlotOptions(monday, windows, nil, booked)
	if !opts[0].Occupied {
		t.Errorf("slot with empty-status appointment should be occupied")
	}
}

// -- FullyBlocked --

func TestFullyBlockedWholeDay(t *testing.T) {
	windows := []ScheduleWindow{{StartTime: "09:00", EndTime: "11:00", SlotMinutes: 30}}
	blocks := []*Block{mkBlock(t, monday, "08:00", "12:00", "conference")}

	blocked, reason := FullyBlocked(monday, windows, blocks)
	if !blocked {
		t.Fatal("day covered by a block should be fully blocked")
	}
	if reason != "conference" {
		t.Errorf("reason = %q, want %q", reason, "conference")
	}
}

func TestFullyBlockedPartialBlock(t *testing.T) {
	windows := []ScheduleWindow{{StartTime: "09:00", EndTime: "11:00", SlotMinutes: 30}}
	blocks := []*Block{mkBlock(t, monday, "10:00", "10:30", "lunch")}

	if blocked, _ := FullyBlocked(monday, windows, blocks); blocked {
		t.Error("a partial block must not mark the day fully blocked")
	}
}

func TestFullyBlockedNoBlocks(t *testing.T) {
	windows := []ScheduleWindow{{StartTime: "09:00", EndTime: "11:00", SlotMinutes: 30}}
	if blocked, _ := FullyBlocked(monday, windows, nil); blocked {
		t.Error("no blocks, day must not be blocked")
	}
}

func TestFullyBlockedTwoBlocksCoverAllSlots(t *testing.T) {
	windows := []ScheduleWindow{{StartTime: "09:00", EndTime: "10:00", SlotMinutes: 30}}
	blocks := []*Block{
		mkBlock(t, monday, "09:00", "09:30", ""),
		mkBlock(t, monday, "09:30", "10:00", "meeting"),
	}
	blocked, reason := FullyBlocked(monday, windows, blocks)
	if !blocked {
		t.Fatal("every slot overlaps a block, want fully blocked")
	}
	if reason != "meeting" {
		t.Errorf("reason = %q, want first non-empty %q", reason, "meeting")
	}
}

// -- EndOptions --

func TestEndOptionsStepToWindowEnd(t *testing.T) {
	windows := []ScheduleWindow{{StartTime: "09:00", EndTime: "11:00", SlotMinutes: 30}}
	opts := EndOptions(monday, windows, "09:00", nil, nil)
	wantTimes(t, opts, "09:30", "10:00", "10:30", "11:00")
}

func TestEndOptionsBlockedWhenRangeTouchesBlock(t *testing.T) {
	windows := []ScheduleWindow{{StartTime: "09:00", EndTime: "11:00", SlotMinutes: 30}}
	blocks := []*Block{mkBlock(t, monday, "10:00", "10:30", "lunch")}

	opts := EndOptions(monday, windows, "09:00", blocks, nil)
	wantTimes(t, opts, "09:30", "10:00", "10:30", "11:00")

	// Ending at 09:30 or 10:00 keeps the range short of the block; any later
	// end makes [09:00,end) cross it.
	wantBlocked := []bool{false, false, true, true}
	for i, b := range wantBlocked {
		if opts[i].Blocked != b {
			t.Errorf("end %s blocked = %v, want %v", opts[i].Time, opts[i].Blocked, b)
		}
	}
}

func TestEndOptionsOccupiedIsEndInclusive(t *testing.T) {
	windows := []ScheduleWindow{{StartTime: "09:00", EndTime: "11:00", SlotMinutes: 30}}
	booked := []BookedSlot{{
		PatientID: uuid.New(),
		Start:     at(t, monday, "10:00"),
		End:       at(t, monday, "10:30"),
		Status:    "pending",
	}}

	opts := EndOptions(monday, windows, "09:00", nil, booked)
	// 10:30 lands exactly on the appointment's end and still counts as
	// occupied; 10:00 lands on its start and does not.
	wantOccupied := map[string]bool{"09:30": false, "10:00": false, "10:30": true, "11:00": false}
	for _, o := range opts {
		if o.Occupied != wantOccupied[o.Time] {
			t.Errorf("end %s occupied = %v, want %v", o.Time, o.Occupied, wantOccupied[o.Time])
		}
	}
}

func TestEndOptionsAnchorOutsideWindows(t *testing.T) {
	windows := []ScheduleWindow{{StartTime: "09:00", EndTime: "11:00", SlotMinutes: 30}}
	if opts := EndOptions(monday, windows, "12:00", nil, nil); opts != nil {
		t.Errorf("got %+v, want nil for anchor outside every window", opts)
	}
}

// -- Defaults --

func TestDefaultStartSkipsBlocked(t *testing.T) {
	opts := []SlotOption{
		{Time: "09:00", Blocked: true},
		{Time: "09:30", Blocked: false},
	}
	if got := DefaultStart(opts); got != "09:30" {
		t.Errorf("DefaultStart = %q, want 09:30", got)
	}
}

func TestDefaultStartAllBlocked(t *testing.T) {
	opts := []SlotOption{{Time: "09:00", Blocked: true}}
	if got := DefaultStart(opts); got != "" {
		t.Errorf("DefaultStart = %q, want empty", got)
	}
}

func TestDefaultEndAfterStart(t *testing.T) {
	opts := []SlotOption{
		{Time: "09:30", Blocked: true},
		{Time: "10:00"},
		{Time: "10:30"},
	}
	if got := DefaultEnd(opts, "09:00"); got != "10:00" {
		t.Errorf("DefaultEnd = %q, want 10:00", got)
	}
}

// -- DetectBookingConflict --

func TestDetectBookingConflictSamePatient(t *testing.T) {
	patient := uuid.New()
	booked := []BookedSlot{{
		PatientID: patient,
		Start:     at(t, monday, "09:00"),
		End:       at(t, monday, "10:00"),
		Status:    "confirmed",
	}}

	err := DetectBookingConflict(at(t, monday, "09:30"), at(t, monday, "10:30"), patient, booked)
	if !errors.Is(err, ErrPatientOverlap) {
		t.Errorf("got %v, want ErrPatientOverlap", err)
	}
}

func TestDetectBookingConflictOtherPatient(t *testing.T) {
	booked := []BookedSlot{{
		PatientID: uuid.New(),
		Start:     at(t, monday, "09:00"),
		End:       at(t, monday, "10:00"),
		Status:    "confirmed",
	}}

	err := DetectBookingConflict(at(t, monday, "09:30"), at(t, monday, "10:30"), uuid.New(), booked)
	if !errors.Is(err, ErrOverbookingRequired) {
		t.Errorf("got %v, want ErrOverbookingRequired", err)
	}
}

func TestDetectBookingConflictSamePatientWinsOverOther(t *testing.T) {
	patient := uuid.New()
	booked := []BookedSlot{
		{PatientID: uuid.New(), Start: at(t, monday, "09:00"), End: at(t, monday, "10:00"), Status: "confirmed"},
		{PatientID: patient, Start: at(t, monday, "09:00"), End: at(t, monday, "10:00"), Status: "pending"},
	}

	err := DetectBookingConflict(at(t, monday, "09:30"), at(t, monday, "10:30"), patient, booked)
	if !errors.Is(err, ErrPatientOverlap) {
		t.Errorf("got %v, want the hard rejection to win", err)
	}
}

func TestDetectBookingConflictAdjacentDoesNotConflict(t *testing.T) {
	patient := uuid.New()
	booked := []BookedSlot{{
		PatientID: patient,
		Start:     at(t, monday, "09:00"),
		End:       at(t, monday, "10:00"),
		Status:    "confirmed",
	}}

	if err := DetectBookingConflict(at(t, monday, "10:00"), at(t, monday, "11:00"), patient, booked); err != nil {
		t.Errorf("back-to-back booking rejected: %v", err)
	}
	if err := DetectBookingConflict(at(t, monday, "08:00"), at(t, monday, "09:00"), patient, booked); err != nil {
		t.Errorf("booking ending at existing start rejected: %v", err)
	}
}

func TestDetectBookingConflictIgnoresTerminalStatuses(t *testing.T) {
	patient := uuid.New()
	booked := []BookedSlot{
		{PatientID: patient, Start: at(t, monday, "09:00"), End: at(t, monday, "10:00"), Status: "cancelled"},
		{PatientID: patient, Start: at(t, monday, "09:00"), End: at(t, monday, "10:00"), Status: "completed"},
	}

	if err := DetectBookingConflict(at(t, monday, "09:00"), at(t, monday, "10:00"), patient, booked); err != nil {
		t.Errorf("terminal appointments must not conflict: %v", err)
	}
}

func TestDetectBookingConflictContainment(t *testing.T) {
	patient := uuid.New()
	booked := []BookedSlot{{
		PatientID: patient,
		Start:     at(t, monday, "09:00"),
		End:       at(t, monday, "11:00"),
		Status:    "confirmed",
	}}

	// Candidate fully inside the existing appointment.
	if err := DetectBookingConflict(at(t, monday, "09:30"), at(t, monday, "10:00"), patient, booked); !errors.Is(err, ErrPatientOverlap) {
		t.Errorf("contained interval: got %v, want ErrPatientOverlap", err)
	}
	// Candidate fully containing the existing appointment.
	if err := DetectBookingConflict(at(t, monday, "08:00"), at(t, monday, "12:00"), patient, booked); !errors.Is(err, ErrPatientOverlap) {
		t.Errorf("containing interval: got %v, want ErrPatientOverlap", err)
	}
}
