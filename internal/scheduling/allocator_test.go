package scheduling

import (
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestAllocateSlots(t *testing.T) {
	providerID := uuid.New()
	base := time.Date(2026, 3, 2, 9, 0, 0, 0, time.UTC)

	tests := []struct {
		name        string
		windowStart time.Time
		windowEnd   time.Time
		span        time.Duration
		wantCount   int
		wantLastEnd time.Time
	}{
		{
			name:        "even partition",
			windowStart: base,
			windowEnd:   base.Add(time.Hour),
			span:        30 * time.Minute,
			wantCount:   2,
			wantLastEnd: base.Add(time.Hour),
		},
		{
			name:        "truncated final slot",
			windowStart: base,
			windowEnd:   base.Add(70 * time.Minute),
			span:        30 * time.Minute,
			wantCount:   3,
			wantLastEnd: base.Add(70 * time.Minute),
		},
		{
			name:        "window shorter than span",
			windowStart: base,
			windowEnd:   base.Add(10 * time.Minute),
			span:        30 * time.Minute,
			wantCount:   1,
			wantLastEnd: base.Add(10 * time.Minute),
		},
		{
			name:        "full day",
			windowStart: base,
			windowEnd:   base.Add(8 * time.Hour),
			span:        30 * time.Minute,
			wantCount:   16,
			wantLastEnd: base.Add(8 * time.Hour),
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			slots, err := AllocateSlots(providerID, tt.windowStart, tt.windowEnd, tt.span)
			require.NoError(t, err)
			require.Len(t, slots, tt.wantCount)

			assert.Equal(t, tt.windowStart, slots[0].StartTime)
			assert.Equal(t, tt.wantLastEnd, slots[len(slots)-1].EndTime)

			seen := make(map[uuid.UUID]bool)
			for i, slot := range slots {
				assert.Equal(t, providerID, slot.ProviderID)
				assert.Equal(t, SlotAvailable, slot.Status)
				assert.True(t, slot.StartTime.Before(slot.EndTime), "slot %d is empty or inverted", i)
				assert.False(t, seen[slot.ID], "slot %d reuses an id", i)
				seen[slot.ID] = true

				if i > 0 {
					assert.Equal(t, slots[i-1].EndTime, slot.StartTime, "gap before slot %d", i)
				}
				if i < len(slots)-1 {
					assert.Equal(t, tt.span, slot.EndTime.Sub(slot.StartTime), "slot %d has wrong span", i)
				}
			}
		})
	}
}

func TestAllocateSlotsInvalidRange(t *testing.T) {
	providerID := uuid.New()
	base := time.Date(2026, 3, 2, 9, 0, 0, 0, time.UTC)

	_, err := AllocateSlots(providerID, base, base, 30*time.Minute)
	assert.ErrorIs(t, err, ErrValidation)

	_, err = AllocateSlots(providerID, base, base.Add(-time.Hour), 30*time.Minute)
	assert.ErrorIs(t, err, ErrValidation)

	_, err = AllocateSlots(providerID, base, base.Add(time.Hour), 0)
	assert.ErrorIs(t, err, ErrValidation)
}
