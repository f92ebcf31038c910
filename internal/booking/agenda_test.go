package booking

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func workdaySettings(buffer time.Duration) Settings {
	s := DefaultSettings()
	s.Buffer = buffer
	return s
}

func TestBuildDayAgendaFullDay(t *testing.T) {
	// Monday, 08:00-18:00, 30-minute slots: 20 slots.
	monday := time.Date(2026, 3, 2, 0, 0, 0, 0, time.UTC)
	now := monday.Add(7 * time.Hour)

	existing := &Booking{
		ID:              "b-1",
		PractitionerID:  "pr-1",
		ScheduledAt:     monday.Add(9 * time.Hour),
		DurationMinutes: 30,
		Status:          StatusConfirmed,
	}

	agenda := buildDayAgenda(workdaySettings(0), "pr-1", monday, []*Booking{existing}, now)

	require.Len(t, agenda.Slots, 20)
	assert.Equal(t, 1, agenda.TotalBooked)
	assert.Equal(t, 19, agenda.FreeCount)
	assert.Equal(t, "2026-03-02", agenda.Date)
	assert.Equal(t, now, agenda.GeneratedAt)

	assert.Equal(t, monday.Add(8*time.Hour), agenda.Slots[0].Start)
	assert.Equal(t, monday.Add(18*time.Hour), agenda.Slots[19].End)

	// Only the 09:00-09:30 slot is taken.
	for i, slot := range agenda.Slots {
		if slot.Start.Equal(monday.Add(9 * time.Hour)) {
			assert.False(t, slot.Free, "slot %d should be occupied", i)
		} else {
			assert.True(t, slot.Free, "slot %d should be free", i)
		}
	}
}

func TestBuildDayAgendaBufferSpillsIntoNeighbors(t *testing.T) {
	monday := time.Date(2026, 3, 2, 0, 0, 0, 0, time.UTC)
	existing := &Booking{
		ID:              "b-1",
		ScheduledAt:     monday.Add(9 * time.Hour),
		DurationMinutes: 30,
		Status:          StatusConfirmed,
	}

	agenda := buildDayAgenda(workdaySettings(30*time.Minute), "pr-1", monday, []*Booking{existing}, monday)

	// The buffered interval 08:30-10:00 shades three slots.
	assert.Equal(t, 3, agenda.TotalBooked)
	assert.Equal(t, 17, agenda.FreeCount)
}

func TestBuildDayAgendaOffDay(t *testing.T) {
	sunday := time.Date(2026, 3, 1, 0, 0, 0, 0, time.UTC)

	agenda := buildDayAgenda(workdaySettings(0), "pr-1", sunday, nil, sunday)

	assert.Empty(t, agenda.Slots)
	assert.Zero(t, agenda.TotalBooked)
	assert.Zero(t, agenda.FreeCount)
}

func TestBuildDayAgendaClinicTimezone(t *testing.T) {
	saoPaulo, err := time.LoadLocation("America/Sao_Paulo")
	require.NoError(t, err)

	s := workdaySettings(0)
	s.Location = saoPaulo

	// Midnight UTC on a Monday is still Sunday evening in Sao Paulo.
	mondayUTC := time.Date(2026, 3, 2, 0, 0, 0, 0, time.UTC)
	agenda := buildDayAgenda(s, "pr-1", mondayUTC, nil, mondayUTC)
	assert.Empty(t, agenda.Slots)

	// Noon UTC resolves to Monday morning locally.
	mondayNoon := time.Date(2026, 3, 2, 12, 0, 0, 0, time.UTC)
	agenda = buildDayAgenda(s, "pr-1", mondayNoon, nil, mondayNoon)
	require.Len(t, agenda.Slots, 20)
	assert.Equal(t, "2026-03-02", agenda.Date)
	assert.Equal(t, saoPaulo, agenda.Slots[0].Start.Location())
}

func TestFreeSlots(t *testing.T) {
	monday := time.Date(2026, 3, 2, 0, 0, 0, 0, time.UTC)
	existing := &Booking{
		ID:              "b-1",
		ScheduledAt:     monday.Add(8 * time.Hour),
		DurationMinutes: 60,
		Status:          StatusScheduled,
	}

	agenda := buildDayAgenda(workdaySettings(0), "pr-1", monday, []*Booking{existing}, monday)
	free := freeSlots(agenda)

	require.Len(t, free, 18)
	assert.Equal(t, monday.Add(9*time.Hour), free[0].Start)
	for _, slot := range free {
		assert.True(t, slot.Free)
	}
}
