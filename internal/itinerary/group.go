package itinerary

import (
	"slices"
	"time"

	"github.com/UnknownOlympus/itinera/internal/models"
)

// Group is one month of an itinerary. Unscheduled places share a group with an empty Month.
// Months are not split by year: March 2024 and March 2025 share a group.
type Group struct {
	Month  string  `json:"month"`
	Places []Entry `json:"places"`
}

// Entry is a place as shown in the itinerary list.
type Entry struct {
	models.Place

	Label *DayLabel `json:"label,omitempty"`
}

// DayLabel is the short calendar badge of a scheduled place.
type DayLabel struct {
	Day     string `json:"day"`            // Day of month, two digits.
	Weekday string `json:"weekday"`        // Abbreviated weekday.
	Time    string `json:"time,omitempty"` // Time is "15:04", empty at midnight.
}

// SortBySchedule returns a copy of places ordered by schedule, unscheduled places
// first. Places with equal schedules keep their relative order.
func SortBySchedule(places []models.Place) []models.Place {
	sorted := slices.Clone(places)
	slices.SortStableFunc(sorted, func(a, b models.Place) int {
		switch {
		case a.Schedule == nil && b.Schedule == nil:
			return 0
		case a.Schedule == nil:
			return -1
		case b.Schedule == nil:
			return 1
		default:
			return a.Schedule.Compare(*b.Schedule)
		}
	})

	return sorted
}

// GroupByMonth buckets places by the calendar month of their schedule in loc,
// ignoring the year. Buckets follow the order in which their month first
// appears, so places are expected to be sorted already.
func GroupByMonth(places []models.Place, locale Locale, loc *time.Location) []Group {
	groups := make([]Group, 0)
	index := make(map[int]int)

	for _, place := range places {
		key := -1
		group := Group{Places: []Entry{}}

		if place.Schedule != nil {
			local := place.Schedule.In(loc)
			key = int(local.Month())
			group.Month = locale.Month(local.Month())
		}

		pos, ok := index[key]
		if !ok {
			pos = len(groups)
			index[key] = pos
			groups = append(groups, group)
		}

		groups[pos].Places = append(groups[pos].Places, Entry{Place: place, Label: Label(place.Schedule, locale, loc)})
	}

	return groups
}

// Label returns the day badge for schedule, or nil when unscheduled.
func Label(schedule *time.Time, locale Locale, loc *time.Location) *DayLabel {
	if schedule == nil {
		return nil
	}

	local := schedule.In(loc)
	label := &DayLabel{
		Day:     local.Format("02"),
		Weekday: locale.Weekday(local.Weekday()),
	}
	if local.Hour() != 0 || local.Minute() != 0 {
		label.Time = local.Format("15:04")
	}

	return label
}

// Grouper turns the stored places into the itinerary list.
type Grouper struct {
	locale Locale
	loc    *time.Location
}

// NewGrouper returns a grouper labelling months in locale and bucketing in loc.
// A nil loc means UTC.
func NewGrouper(locale Locale, loc *time.Location) *Grouper {
	if loc == nil {
		loc = time.UTC
	}

	return &Grouper{locale: locale, loc: loc}
}

// Group sorts and groups places.
func (g *Grouper) Group(places []models.Place) []Group {
	return GroupByMonth(SortBySchedule(places), g.locale, g.loc)
}

// Location returns the time zone schedules are shown in.
func (g *Grouper) Location() *time.Location {
	return g.loc
}
