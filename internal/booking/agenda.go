package booking

import "time"

// Slot is one fixed-width candidate window within a working day.
type Slot struct {
	Start time.Time `json:"start"`
	End   time.Time `json:"end"`
	Free  bool      `json:"free"`
}

// DayAgenda is the slot-by-slot view of a practitioner's day.
type DayAgenda struct {
	PractitionerID string    `json:"practitioner_id"`
	Date           string    `json:"date"`
	Slots          []Slot    `json:"slots"`
	TotalBooked    int       `json:"total_booked"`
	FreeCount      int       `json:"free_count"`
	GeneratedAt    time.Time `json:"generated_at"`
}

// clinicDate pins the calendar date carried by t to midnight in the
// clinic timezone, regardless of t's own location. A date parsed from
// "2026-03-02" names March 2nd at the clinic, not the UTC instant.
func (s Settings) clinicDate(t time.Time) time.Time {
	y, m, d := t.Date()
	return time.Date(y, m, d, 0, 0, 0, 0, s.Location)
}

// dayWindow returns the working window for the calendar date in the
// clinic timezone. ok is false when the weekday has no working hours.
func (s Settings) dayWindow(date time.Time) (start, end time.Time, ok bool) {
	local := date.In(s.Location)
	midnight := time.Date(local.Year(), local.Month(), local.Day(), 0, 0, 0, 0, s.Location)
	if !s.WorkDays[midnight.Weekday()] {
		return time.Time{}, time.Time{}, false
	}
	return midnight.Add(s.DayStart), midnight.Add(s.DayEnd), true
}

// buildDayAgenda enumerates fixed-width slots across the working window
// and marks each occupied when any booking's buffered interval overlaps
// it. Pure over an already-fetched booking list, so one store query
// serves the whole day. A weekday without working hours yields an empty
// slot list, not an error.
func buildDayAgenda(s Settings, practitionerID string, date time.Time, bookings []*Booking, now time.Time) DayAgenda {
	agenda := DayAgenda{
		PractitionerID: practitionerID,
		Date:           date.In(s.Location).Format("2006-01-02"),
		GeneratedAt:    now,
	}

	dayStart, dayEnd, ok := s.dayWindow(date)
	if !ok {
		return agenda
	}

	for cur := dayStart; !cur.Add(s.SlotWidth).After(dayEnd); cur = cur.Add(s.SlotWidth) {
		slot := Slot{Start: cur, End: cur.Add(s.SlotWidth), Free: true}
		for _, b := range bookings {
			bStart, bEnd := WithBuffer(b.ScheduledAt, b.End(), s.Buffer)
			if Overlaps(slot.Start, slot.End, bStart, bEnd) {
				slot.Free = false
				break
			}
		}
		if slot.Free {
			agenda.FreeCount++
		} else {
			agenda.TotalBooked++
		}
		agenda.Slots = append(agenda.Slots, slot)
	}

	return agenda
}

// freeSlots projects the free subset of a day agenda.
func freeSlots(agenda DayAgenda) []Slot {
	out := make([]Slot, 0, agenda.FreeCount)
	for _, s := range agenda.Slots {
		if s.Free {
			out = append(out, s)
		}
	}
	return out
}
