package calendar

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/noah-isme/weather-events-bff/internal/models"
)

func TestBucketMonthPlacesMultiDayEvents(t *testing.T) {
	now := time.Date(2024, time.March, 12, 9, 0, 0, 0, time.UTC)
	events := []models.Event{
		event("span", day(2024, time.February, 28), ptr(day(2024, time.March, 2))),
		event("single", day(2024, time.March, 12), nil),
		event("outside", day(2024, time.June, 1), nil),
	}

	buckets := BucketMonth(events, now, now, time.UTC)
	require.Len(t, buckets, MonthCells)

	// March 2024 starts on a Friday, so the grid opens on Sunday Feb 25.
	assert.Equal(t, day(2024, time.February, 25), buckets[0].Date)
	assert.False(t, buckets[0].InMonth)

	counts := map[string]int{}
	for _, b := range buckets {
		for _, e := range b.Events {
			counts[string(e.ID)]++
		}
		if b.Date.Equal(day(2024, time.March, 12)) {
			assert.True(t, b.IsToday)
			assert.True(t, b.InMonth)
		} else {
			assert.False(t, b.IsToday)
		}
	}
	assert.Equal(t, 4, counts["span"])
	assert.Equal(t, 1, counts["single"])
	assert.Zero(t, counts["outside"])
}

func TestBucketWeekClampsLongEvents(t *testing.T) {
	events := []models.Event{
		event("year", day(2024, time.January, 1), ptr(day(2024, time.December, 31))),
	}
	buckets := BucketWeek(events, day(2024, time.March, 12), day(2000, time.January, 1), time.UTC)
	require.Len(t, buckets, WeekCells)
	for _, b := range buckets {
		assert.Len(t, b.Events, 1)
		assert.True(t, b.InMonth)
	}
}

func TestBucketDayMatchesEventsOnDate(t *testing.T) {
	events := []models.Event{
		event("a", day(2024, time.March, 10), nil),
		event("b", day(2024, time.March, 15), nil),
	}
	b := BucketDay(events, time.Date(2024, time.March, 15, 17, 0, 0, 0, time.UTC), day(2024, time.March, 15), time.UTC)
	assert.Equal(t, day(2024, time.March, 15), b.Date)
	assert.True(t, b.IsToday)
	require.Len(t, b.Events, 1)
	assert.Equal(t, models.ID("b"), b.Events[0].ID)
}

func TestSummarize(t *testing.T) {
	now := time.Date(2024, time.March, 12, 8, 0, 0, 0, time.UTC)
	events := []models.Event{
		event("earlier-today", now.Add(-2*time.Hour), nil),
		event("tomorrow", now.Add(24*time.Hour), nil),
	}
	s := Summarize(events, now, time.UTC)
	assert.Len(t, s.Today, 1)
	assert.Len(t, s.ThisWeek, 1)
	assert.Len(t, s.Upcoming, 1)
}
