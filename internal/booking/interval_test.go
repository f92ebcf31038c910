package booking

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestOverlaps(t *testing.T) {
	at := func(h, m int) time.Time {
		return time.Date(2026, 3, 2, h, m, 0, 0, time.UTC)
	}

	tests := []struct {
		name                       string
		aStart, aEnd, bStart, bEnd time.Time
		want                       bool
	}{
		{"identical intervals", at(10, 0), at(10, 30), at(10, 0), at(10, 30), true},
		{"partial overlap", at(10, 0), at(11, 0), at(10, 30), at(11, 30), true},
		{"contained interval", at(10, 0), at(12, 0), at(10, 30), at(11, 0), true},
		{"touching endpoints do not overlap", at(10, 0), at(10, 30), at(10, 30), at(11, 0), false},
		{"touching endpoints reversed", at(10, 30), at(11, 0), at(10, 0), at(10, 30), false},
		{"disjoint", at(8, 0), at(9, 0), at(14, 0), at(15, 0), false},
		{"one minute of overlap", at(10, 0), at(10, 31), at(10, 30), at(11, 0), true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, Overlaps(tt.aStart, tt.aEnd, tt.bStart, tt.bEnd))
			// Overlap is symmetric.
			assert.Equal(t, tt.want, Overlaps(tt.bStart, tt.bEnd, tt.aStart, tt.aEnd))
		})
	}
}

func TestWithBuffer(t *testing.T) {
	start := time.Date(2026, 3, 2, 10, 0, 0, 0, time.UTC)
	end := time.Date(2026, 3, 2, 10, 30, 0, 0, time.UTC)

	bufStart, bufEnd := WithBuffer(start, end, 30*time.Minute)
	assert.Equal(t, start.Add(-30*time.Minute), bufStart)
	assert.Equal(t, end.Add(30*time.Minute), bufEnd)

	bufStart, bufEnd = WithBuffer(start, end, 0)
	assert.Equal(t, start, bufStart)
	assert.Equal(t, end, bufEnd)
}

func TestWithBufferSeparation(t *testing.T) {
	buffer := 30 * time.Minute
	first := time.Date(2026, 3, 2, 10, 0, 0, 0, time.UTC)
	firstEnd := first.Add(30 * time.Minute)

	// Back to back: buffered interval bleeds into the neighbor.
	nextStart := firstEnd
	bufStart, bufEnd := WithBuffer(nextStart, nextStart.Add(30*time.Minute), buffer)
	assert.True(t, Overlaps(bufStart, bufEnd, first, firstEnd))

	// A gap equal to the buffer is enough.
	nextStart = firstEnd.Add(buffer)
	bufStart, bufEnd = WithBuffer(nextStart, nextStart.Add(30*time.Minute), buffer)
	assert.False(t, Overlaps(bufStart, bufEnd, first, firstEnd))
}
