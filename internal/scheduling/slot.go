package scheduling

import (
	"errors"
	"fmt"
	"time"

	"clinic-ops-backend/internal/models"
)

// Slot is a discrete bookable interval derived from a schedule template.
// The interval is half-open: [Start, End).
type Slot struct {
	Start time.Time `json:"start"`
	End   time.Time `json:"end"`
}

// DateFormat is the wire format for calendar dates.
const DateFormat = "2006-01-02"

// ParseWallClock parses an HH:MM wall-clock string into minutes after
// midnight.
func ParseWallClock(s string) (int, error) {
	var h, m int
	if _, err := fmt.Sscanf(s, "%d:%d", &h, &m); err != nil {
		return 0, fmt.Errorf("invalid time %q: %w", s, err)
	}
	if h < 0 || h > 23 || m < 0 || m > 59 {
		return 0, fmt.Errorf("invalid time %q: out of range", s)
	}
	return h*60 + m, nil
}

// ValidateWindow checks that start and end are well-formed HH:MM values
// with start strictly before end.
func ValidateWindow(start, end string) error {
	s, err := ParseWallClock(start)
	if err != nil {
		return err
	}
	e, err := ParseWallClock(end)
	if err != nil {
		return err
	}
	if s >= e {
		return errors.New("template start time must be before end time")
	}
	return nil
}

// ExpandTemplate turns a template window on a target date into discrete
// candidate slots of exactly slotMinutes each. The cursor advances from
// the window start by slotMinutes; a slot is emitted only if it fits
// entirely inside the window, so no short trailing slot is produced.
// Non-working templates expand to nothing.
//
// Pure: same inputs always yield the same slots.
func ExpandTemplate(tmpl *models.ScheduleTemplate, date time.Time, slotMinutes int) []Slot {
	if tmpl == nil || tmpl.Status != models.TemplateStatusWorking || slotMinutes <= 0 {
		return nil
	}

	startMin, err := ParseWallClock(tmpl.StartTime)
	if err != nil {
		return nil
	}
	endMin, err := ParseWallClock(tmpl.EndTime)
	if err != nil || startMin >= endMin {
		return nil
	}

	midnight := time.Date(date.Year(), date.Month(), date.Day(), 0, 0, 0, 0, date.Location())

	var slots []Slot
	for cursor := startMin; cursor+slotMinutes <= endMin; cursor += slotMinutes {
		slots = append(slots, Slot{
			Start: midnight.Add(time.Duration(cursor) * time.Minute),
			End:   midnight.Add(time.Duration(cursor+slotMinutes) * time.Minute),
		})
	}
	return slots
}

// ISOWeekday returns the day of week as ISO 1 (Monday) through 7 (Sunday).
func ISOWeekday(t time.Time) int {
	wd := int(t.Weekday())
	if wd == 0 {
		return 7
	}
	return wd
}

// PickTemplate selects the template applicable to date: a date-specific
// override wins over the weekly template for that weekday. Returns nil
// when neither exists.
func PickTemplate(templates []models.ScheduleTemplate, date time.Time) *models.ScheduleTemplate {
	dateStr := date.Format(DateFormat)
	weekday := ISOWeekday(date)

	var weekly *models.ScheduleTemplate
	for i := range templates {
		t := &templates[i]
		if t.Date != nil {
			if *t.Date == dateStr {
				return t
			}
			continue
		}
		if t.Weekday != nil && *t.Weekday == weekday && weekly == nil {
			weekly = t
		}
	}
	return weekly
}

// FindCoveringTemplate locates the template whose window contains the
// given instant, honoring override-over-weekly precedence. Used by
// revenue attribution to recover the billing terms a slot was offered
// under.
func FindCoveringTemplate(templates []models.ScheduleTemplate, at time.Time) *models.ScheduleTemplate {
	tmpl := PickTemplate(templates, at)
	if tmpl == nil {
		return nil
	}

	startMin, err := ParseWallClock(tmpl.StartTime)
	if err != nil {
		return nil
	}
	endMin, err := ParseWallClock(tmpl.EndTime)
	if err != nil {
		return nil
	}

	minuteOfDay := at.Hour()*60 + at.Minute()
	if minuteOfDay < startMin || minuteOfDay >= endMin {
		return nil
	}
	return tmpl
}
