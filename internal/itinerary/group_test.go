package itinerary_test

import (
	"testing"
	"time"

	"github.com/UnknownOlympus/itinera/internal/itinerary"
	"github.com/UnknownOlympus/itinera/internal/models"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func at(year int, month time.Month, day, hour, minute int) *time.Time {
	t := time.Date(year, month, day, hour, minute, 0, 0, time.UTC)
	return &t
}

func names(entries []itinerary.Entry) []string {
	result := make([]string, 0, len(entries))
	for _, entry := range entries {
		result = append(result, entry.Name)
	}

	return result
}

func TestGroupByMonth(t *testing.T) {
	t.Parallel()

	places := []models.Place{
		{PlaceID: "1", Name: "late march", Schedule: at(2024, time.March, 20, 0, 0)},
		{PlaceID: "2", Name: "april", Schedule: at(2024, time.April, 1, 9, 30)},
		{PlaceID: "3", Name: "someday"},
		{PlaceID: "4", Name: "early march", Schedule: at(2024, time.March, 5, 0, 0)},
	}

	t.Run("english", func(t *testing.T) {
		t.Parallel()

		groups := itinerary.NewGrouper(itinerary.ResolveLocale("en"), time.UTC).Group(places)

		require.Len(t, groups, 3)
		assert.Empty(t, groups[0].Month)
		assert.Equal(t, []string{"someday"}, names(groups[0].Places))
		assert.Equal(t, "March", groups[1].Month)
		assert.Equal(t, []string{"early march", "late march"}, names(groups[1].Places))
		assert.Equal(t, "April", groups[2].Month)
		assert.Equal(t, []string{"april"}, names(groups[2].Places))
	})

	t.Run("brazilian portuguese", func(t *testing.T) {
		t.Parallel()

		groups := itinerary.NewGrouper(itinerary.ResolveLocale("pt-BR"), time.UTC).Group(places)

		require.Len(t, groups, 3)
		assert.Equal(t, "março", groups[1].Month)
		assert.Equal(t, "abril", groups[2].Month)
	})

	t.Run("same month of different years shares a group", func(t *testing.T) {
		t.Parallel()

		groups := itinerary.NewGrouper(itinerary.ResolveLocale("en"), time.UTC).Group([]models.Place{
			{Name: "mar 2025", Schedule: at(2025, time.March, 1, 0, 0)},
			{Name: "apr 2024", Schedule: at(2024, time.April, 1, 0, 0)},
			{Name: "mar 2024", Schedule: at(2024, time.March, 1, 0, 0)},
		})

		require.Len(t, groups, 2)
		assert.Equal(t, "March", groups[0].Month)
		assert.Equal(t, []string{"mar 2024", "mar 2025"}, names(groups[0].Places))
		assert.Equal(t, "April", groups[1].Month)
		assert.Equal(t, []string{"apr 2024"}, names(groups[1].Places))
	})

	t.Run("time zone decides the month", func(t *testing.T) {
		t.Parallel()
		saoPaulo := time.FixedZone("BRT", -3*60*60)

		groups := itinerary.GroupByMonth([]models.Place{
			{Name: "new year", Schedule: at(2025, time.January, 1, 1, 0)},
		}, itinerary.ResolveLocale("en"), saoPaulo)

		require.Len(t, groups, 1)
		assert.Equal(t, "December", groups[0].Month)
	})

	t.Run("empty", func(t *testing.T) {
		t.Parallel()

		groups := itinerary.GroupByMonth(nil, itinerary.ResolveLocale("en"), time.UTC)

		assert.NotNil(t, groups)
		assert.Empty(t, groups)
	})
}

func TestSortBySchedule(t *testing.T) {
	t.Parallel()

	input := []models.Place{
		{Name: "b", Schedule: at(2024, time.June, 2, 0, 0)},
		{Name: "x"},
		{Name: "a", Schedule: at(2024, time.June, 1, 0, 0)},
		{Name: "y"},
	}

	sorted := itinerary.SortBySchedule(input)

	got := make([]string, 0, len(sorted))
	for _, place := range sorted {
		got = append(got, place.Name)
	}
	assert.Equal(t, []string{"x", "y", "a", "b"}, got)
	assert.Equal(t, "b", input[0].Name, "input must not be reordered")
}

func TestLabel(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name     string
		schedule *time.Time
		locale   string
		want     *itinerary.DayLabel
	}{
		{name: "unscheduled", locale: "en"},
		{
			name:     "midnight hides time",
			schedule: at(2024, time.March, 5, 0, 0),
			locale:   "en",
			want:     &itinerary.DayLabel{Day: "05", Weekday: "Tue"},
		},
		{
			name:     "with time",
			schedule: at(2024, time.March, 5, 14, 5),
			locale:   "pt-BR",
			want:     &itinerary.DayLabel{Day: "05", Weekday: "ter.", Time: "14:05"},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			got := itinerary.Label(tt.schedule, itinerary.ResolveLocale(tt.locale), time.UTC)

			assert.Equal(t, tt.want, got)
		})
	}
}

func TestResolveLocale(t *testing.T) {
	t.Parallel()

	assert.Equal(t, "March", itinerary.ResolveLocale("en-US").Month(time.March))
	assert.Equal(t, "março", itinerary.ResolveLocale("pt").Month(time.March))
	assert.Equal(t, "March", itinerary.ResolveLocale("fr").Month(time.March))
	assert.Equal(t, "March", itinerary.ResolveLocale("not a tag!").Month(time.March))
}
