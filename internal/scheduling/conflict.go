package scheduling

import (
	"time"

	"clinic-ops-backend/internal/models"
)

// Overlaps reports whether two half-open intervals share any non-zero
// span. Touching boundaries is not an overlap.
func Overlaps(aStart, aEnd, bStart, bEnd time.Time) bool {
	return aStart.Before(bEnd) && aEnd.After(bStart)
}

// Conflicts reports whether the candidate interval overlaps any active
// appointment in existing. Cancelled and completed appointments are
// ignored regardless of when they were scheduled.
func Conflicts(candidateStart, candidateEnd time.Time, existing []models.Appointment) bool {
	for i := range existing {
		a := &existing[i]
		if !a.IsActive() {
			continue
		}
		if Overlaps(candidateStart, candidateEnd, a.ScheduledAt, a.EndsAt()) {
			return true
		}
	}
	return false
}
