package itinerary

import (
	"errors"
	"fmt"
	"time"
)

// ErrInvalidSchedule is returned when a schedule input cannot be parsed.
var ErrInvalidSchedule = errors.New("invalid schedule")

// InputLayout is the datetime-local form used by schedule pickers.
const InputLayout = "2006-01-02T15:04:05"

var inputLayouts = []string{InputLayout, "2006-01-02T15:04", time.RFC3339}

// FormatScheduleInput renders schedule for a datetime-local input. Nil yields "".
func FormatScheduleInput(schedule *time.Time, loc *time.Location) string {
	if schedule == nil {
		return ""
	}

	return schedule.In(loc).Format(InputLayout)
}

// ParseScheduleInput reads a datetime-local value in loc. An empty value clears the schedule.
func ParseScheduleInput(value string, loc *time.Location) (*time.Time, error) {
	if value == "" {
		return nil, nil //nolint:nilnil // empty input means unscheduled
	}

	for _, layout := range inputLayouts {
		schedule, err := time.ParseInLocation(layout, value, loc)
		if err == nil {
			return &schedule, nil
		}
	}

	return nil, fmt.Errorf("%w: %q", ErrInvalidSchedule, value)
}
