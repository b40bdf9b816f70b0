package scheduling

import (
	"time"

	"github.com/google/uuid"
)

// AllocateSlots partitions a provider's open window into consecutive
// slots of the given span. The final slot is truncated so the produced
// slots cover exactly [windowStart, windowEnd). All slots come back
// available with fresh ids; persisting them is the caller's job.
func AllocateSlots(providerID uuid.UUID, windowStart, windowEnd time.Time, span time.Duration) ([]Slot, error) {
	if !windowEnd.After(windowStart) {
		return nil, ErrInvalidRange
	}
	if span <= 0 {
		return nil, validationErrorf("span must be positive, got %s", span)
	}

	now := time.Now().UTC()

	var slots []Slot
	for start := windowStart; start.Before(windowEnd); start = start.Add(span) {
		end := start.Add(span)
		if end.After(windowEnd) {
			end = windowEnd
		}
		slots = append(slots, Slot{
			ID:         uuid.New(),
			ProviderID: providerID,
			StartTime:  start,
			EndTime:    end,
			Status:     SlotAvailable,
			CreatedAt:  now,
			UpdatedAt:  now,
		})
	}

	return slots, nil
}
