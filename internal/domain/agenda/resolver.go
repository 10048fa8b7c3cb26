package agenda

import (
	"errors"
	"sort"
	"time"

	"github.com/google/uuid"
)

// Booking conflict errors.
var (
	// ErrPatientOverlap means the same patient already holds an active
	// appointment overlapping the requested range. Not overridable.
	ErrPatientOverlap = errors.New("patient already has an appointment in this time range")
	// ErrOverbookingRequired means a different patient holds an overlapping
	// active appointment; the booking needs an explicit overbooking
	// confirmation to proceed.
	ErrOverbookingRequired = errors.New("time range overlaps another patient's appointment")
)

const (
	dateLayout = "2006-01-02"
	timeLayout = "15:04"
)

// parseClock converts an "HH:mm" string to minutes since midnight.
// Malformed values report ok=false so one bad record never breaks the day.
func parseClock(s string) (int, bool) {
	t, err := time.Parse(timeLayout, s)
	if err != nil {
		return 0, false
	}
	return t.Hour()*60 + t.Minute(), true
}

func formatClock(minutes int) string {
	return time.Date(0, 1, 1, 0, minutes, 0, 0, time.UTC).Format(timeLayout)
}

// parseDate interprets a "YYYY-MM-DD" string in local time. Local, not UTC:
// day-of-week must not shift at timezone boundaries.
func parseDate(s string) (time.Time, bool) {
	t, err := time.ParseInLocation(dateLayout, s, time.Local)
	if err != nil {
		return time.Time{}, false
	}
	return t, true
}

// sameDate compares calendar components only, each value in its own
// location. Date-valued columns scan as UTC midnight; converting such a
// value to another zone first would shift the calendar day.
func sameDate(a, b time.Time) bool {
	ay, am, ad := a.Year(), a.Month(), a.Day()
	by, bm, bd := b.Year(), b.Month(), b.Day()
	return ay == by && am == bm && ad == bd
}

// minutesInto returns the offset of instant t relative to midnight of day,
// in minutes. May be negative or beyond 24h for blocks spanning midnight;
// the interval arithmetic stays valid either way.
func minutesInto(day, t time.Time) int {
	midnight := time.Date(day.Year(), day.Month(), day.Day(), 0, 0, 0, 0, time.Local)
	return int(t.In(time.Local).Sub(midnight) / time.Minute)
}

// overlaps is the half-open interval intersection test used everywhere:
// [aStart,aEnd) intersects [bStart,bEnd).
func overlaps(aStart, aEnd, bStart, bEnd int) bool {
	return aStart < bEnd && aEnd > bStart
}

// window is the parsed, minute-based form of a ScheduleWindow.
type window struct {
	start, end, dur int
}

func parseWindows(ws []ScheduleWindow) []window {
	out := make([]window, 0, len(ws))
	for _, w := range ws {
		s, okS := parseClock(w.StartTime)
		e, okE := parseClock(w.EndTime)
		if !okS || !okE || s >= e || w.SlotMinutes <= 0 {
			continue
		}
		out = append(out, window{start: s, end: e, dur: w.SlotMinutes})
	}
	return out
}

// ResolveDaySchedule computes the windows in effect for a professional on one
// date. Any exception matching the date wins outright and the weekly
// templates are ignored; otherwise the active templates for that local
// day-of-week whose validity range (if any) contains the date apply.
// An empty result means the professional does not work that day.
func ResolveDaySchedule(date string, templates []*WeeklyTemplate, exceptions []*DateException) []ScheduleWindow {
	day, ok := parseDate(date)
	if !ok {
		return nil
	}

	var out []ScheduleWindow
	for _, e := range exceptions {
		if e == nil || !sameDate(e.Date, day) {
			continue
		}
		if s, okS := parseClock(e.StartTime); okS {
			if eMin, okE := parseClock(e.EndTime); okE && s < eMin && e.SlotMinutes > 0 {
				out = append(out, ScheduleWindow{StartTime: e.StartTime, EndTime: e.EndTime, SlotMinutes: e.SlotMinutes})
			}
		}
	}
	if len(out) > 0 {
		sortWindows(out)
		return out
	}

	weekday := int(day.Weekday())
	for _, t := range templates {
		if t == nil || !t.Active || t.DayOfWeek != weekday {
			continue
		}
		if t.ValidFrom != nil && day.Before(truncateDay(*t.ValidFrom)) {
			continue
		}
		if t.ValidTo != nil && day.After(truncateDay(*t.ValidTo)) {
			continue
		}
		s, okS := parseClock(t.StartTime)
		e, okE := parseClock(t.EndTime)
		if !okS || !okE || s >= e || t.SlotMinutes <= 0 {
			continue
		}
		out = append(out, ScheduleWindow{StartTime: t.StartTime, EndTime: t.EndTime, SlotMinutes: t.SlotMinutes})
	}
	sortWindows(out)
	return out
}

// truncateDay rebuilds a date-valued timestamp at local midnight from its own
// calendar components, without converting the instant between zones.
func truncateDay(t time.Time) time.Time {
	return time.Date(t.Year(), t.Month(), t.Day(), 0, 0, 0, 0, time.Local)
}

func sortWindows(ws []ScheduleWindow) {
	sort.SliceStable(ws, func(i, j int) bool {
		a, _ := parseClock(ws[i].StartTime)
		b, _ := parseClock(ws[j].StartTime)
		return a < b
	})
}

// FullyBlocked reports whether every candidate slot of the day overlaps at
// least one unavailability block, plus a representative reason when so.
// Candidates step by the minimum slot duration from the earliest window start
// up to the latest window end minus one duration. A day whose windows cannot
// fit a single slot counts as blocked as soon as any block exists.
func FullyBlocked(date string, windows []ScheduleWindow, blocks []*Block) (bool, string) {
	ws := parseWindows(windows)
	if len(ws) == 0 {
		return false, ""
	}
	day, ok := parseDate(date)
	if !ok {
		return false, ""
	}

	minStart, maxEnd, dur := ws[0].start, ws[0].end, ws[0].dur
	for _, w := range ws[1:] {
		if w.start < minStart {
			minStart = w.start
		}
		if w.end > maxEnd {
			maxEnd = w.end
		}
		if w.dur < dur {
			dur = w.dur
		}
	}

	reason := blockReason(blocks)
	candidates := 0
	for s := minStart; s+dur <= maxEnd; s += dur {
		candidates++
		if !slotBlocked(day, s, s+dur, blocks) {
			return false, ""
		}
	}
	if candidates == 0 {
		return len(blocks) > 0, reason
	}
	return true, reason
}

func blockReason(blocks []*Block) string {
	for _, b := range blocks {
		if b != nil && b.Reason != nil && *b.Reason != "" {
			return *b.Reason
		}
	}
	return ""
}

func slotBlocked(day time.Time, start, end int, blocks []*Block) bool {
	for _, b := range blocks {
		if b == nil {
			continue
		}
		if overlaps(start, end, minutesInto(day, b.StartAt), minutesInto(day, b.EndAt)) {
			return true
		}
	}
	return false
}

func slotOccupied(day time.Time, start, end int, booked []BookedSlot) bool {
	for _, a := range booked {
		if !a.Active() {
			continue
		}
		if overlaps(start, end, minutesInto(day, a.Start), minutesInto(day, a.End)) {
			return true
		}
	}
	return false
}

// SlotOptions enumerates the candidate start times across all windows, each
// window stepped by its own slot duration, merged chronologically and
// de-duplicated. Each option carries independent blocked/occupied flags.
func SlotOptions(date string, windows []ScheduleWindow, blocks []*Block, booked []BookedSlot) []SlotOption {
	ws := parseWindows(windows)
	day, ok := parseDate(date)
	if len(ws) == 0 || !ok {
		return nil
	}

	type candidate struct{ start, end int }
	seen := make(map[int]bool)
	var cands []candidate
	for _, w := range ws {
		for s := w.start; s+w.dur <= w.end; s += w.dur {
			if seen[s] {
				continue
			}
			seen[s] = true
			cands = append(cands, candidate{start: s, end: s + w.dur})
		}
	}
	sort.Slice(cands, func(i, j int) bool { return cands[i].start < cands[j].start })

	out := make([]SlotOption, 0, len(cands))
	for _, c := range cands {
		out = append(out, SlotOption{
			Time:     formatClock(c.start),
			Blocked:  slotBlocked(day, c.start, c.end, blocks),
			Occupied: slotOccupied(day, c.start, c.end, booked),
		})
	}
	return out
}

// EndOptions enumerates the valid end times for an appointment anchored at
// the given start time: strictly greater than the anchor, stepping by the
// anchor window's slot duration, up to the window's end inclusive. The
// occupancy test for an end candidate is whether the end instant itself falls
// inside an active appointment's span (end-inclusive).
func EndOptions(date string, windows []ScheduleWindow, anchor string, blocks []*Block, booked []BookedSlot) []SlotOption {
	ws := parseWindows(windows)
	day, okDay := parseDate(date)
	a, okA := parseClock(anchor)
	if len(ws) == 0 || !okDay || !okA {
		return nil
	}

	// The window holding the anchor governs the step and the upper bound.
	var w *window
	for i := range ws {
		if ws[i].start <= a && a < ws[i].end {
			w = &ws[i]
			break
		}
	}
	if w == nil {
		return nil
	}

	var out []SlotOption
	for t := a + w.dur; t <= w.end; t += w.dur {
		out = append(out, SlotOption{
			Time:     formatClock(t),
			Blocked:  slotBlocked(day, a, t, blocks),
			Occupied: endOccupied(day, t, booked),
		})
	}
	return out
}

func endOccupied(day time.Time, end int, booked []BookedSlot) bool {
	for _, a := range booked {
		if !a.Active() {
			continue
		}
		s, e := minutesInto(day, a.Start), minutesInto(day, a.End)
		if end > s && end <= e {
			return true
		}
	}
	return false
}

// DefaultStart returns the first non-blocked start option, or "" when every
// option is blocked (or none exist). Consumers reassign this whenever the
// previously selected start disappears or becomes blocked after an input
// change.
func DefaultStart(options []SlotOption) string {
	for _, o := range options {
		if !o.Blocked {
			return o.Time
		}
	}
	return ""
}

// DefaultEnd returns the first non-blocked end option later than the start.
func DefaultEnd(options []SlotOption, start string) string {
	s, ok := parseClock(start)
	if !ok {
		return ""
	}
	for _, o := range options {
		t, okT := parseClock(o.Time)
		if !okT || t <= s || o.Blocked {
			continue
		}
		return o.Time
	}
	return ""
}

// DetectBookingConflict checks a candidate interval against the day's active
// appointments. A same-patient overlap is a hard rejection; an overlap with a
// different patient requires an explicit overbooking confirmation and is
// reported as ErrOverbookingRequired. Adjacent intervals do not conflict.
func DetectBookingConflict(start, end time.Time, patientID uuid.UUID, booked []BookedSlot) error {
	other := false
	for _, a := range booked {
		if !a.Active() {
			continue
		}
		if !start.Before(a.End) || !end.After(a.Start) {
			continue
		}
		if a.PatientID == patientID {
			return ErrPatientOverlap
		}
		other = true
	}
	if other {
		return ErrOverbookingRequired
	}
	return nil
}
