package calendar

import (
	"time"

	"github.com/noah-isme/weather-events-bff/internal/models"
)

// DayBucket is one grid cell with the events that span it.
type DayBucket struct {
	Date    time.Time      `json:"date"`
	InMonth bool           `json:"inMonth"`
	IsToday bool           `json:"isToday"`
	Events  []models.Event `json:"events"`
}

// Summary groups events for the dashboard-style overview.
type Summary struct {
	Today    []models.Event `json:"today"`
	ThisWeek []models.Event `json:"thisWeek"`
	Upcoming []models.Event `json:"upcoming"`
}

// BucketMonth fills the 42-cell month grid of ref. Cells outside ref's month
// are kept with InMonth=false so the grid always has whole weeks.
func BucketMonth(events []models.Event, ref, now time.Time, loc *time.Location) []DayBucket {
	loc = orUTC(loc)
	month := ref.In(loc).Month()
	buckets := fill(MonthGrid(ref, loc), events, now, loc)
	for i := range buckets {
		buckets[i].InMonth = buckets[i].Date.Month() == month
	}
	return buckets
}

// BucketWeek fills the seven-cell week grid containing ref.
func BucketWeek(events []models.Event, ref, now time.Time, loc *time.Location) []DayBucket {
	buckets := fill(WeekGrid(ref, loc), events, now, loc)
	for i := range buckets {
		buckets[i].InMonth = true
	}
	return buckets
}

// BucketDay returns the single cell for date.
func BucketDay(events []models.Event, date, now time.Time, loc *time.Location) DayBucket {
	day := StartOfDay(date, loc)
	return DayBucket{
		Date:    day,
		InMonth: true,
		IsToday: IsToday(day, now, loc),
		Events:  EventsOnDate(events, day, loc),
	}
}

// Summarize splits events into today, this week and upcoming.
func Summarize(events []models.Event, now time.Time, loc *time.Location) Summary {
	now = now.In(orUTC(loc))
	return Summary{
		Today:    EventsOnDate(events, now, loc),
		ThisWeek: ThisWeek(events, now),
		Upcoming: Upcoming(events, now),
	}
}

// fill places each event into every grid cell its range spans. The grid is
// assumed to be consecutive days.
func fill(grid []time.Time, events []models.Event, now time.Time, loc *time.Location) []DayBucket {
	buckets := make([]DayBucket, len(grid))
	index := make(map[int]int, len(grid))
	for i, day := range grid {
		buckets[i] = DayBucket{Date: day, IsToday: IsToday(day, now, loc), Events: make([]models.Event, 0)}
		index[dayKey(day, loc)] = i
	}
	if len(grid) == 0 {
		return buckets
	}

	first, last := grid[0], grid[len(grid)-1]
	for _, e := range events {
		if !e.HasValidRange() {
			continue
		}
		start := StartOfDay(e.StartIn(loc), loc)
		end := StartOfDay(e.EndIn(loc), loc)
		if end.Before(first) || start.After(last) {
			continue
		}
		if start.Before(first) {
			start = first
		}
		if end.After(last) {
			end = last
		}
		for day := start; !day.After(end); day = addDays(day, 1) {
			if i, ok := index[dayKey(day, loc)]; ok {
				buckets[i].Events = append(buckets[i].Events, e)
			}
		}
	}
	return buckets
}
