// Package calendar places events onto month, week and day grids.
//
// Every operation takes an explicit *time.Location; a nil location means UTC.
// Day membership is decided on calendar dates in that location, so time of day
// never affects which cell an event lands in. Floating event timestamps (sent
// without an offset) are read as wall clock time in that location.
package calendar

import (
	"time"

	"github.com/noah-isme/weather-events-bff/internal/models"
)

const (
	// MonthCells is the fixed size of a month grid: six rows of seven days.
	MonthCells = 42
	// WeekCells is the size of a week grid.
	WeekCells = 7

	week = 7 * 24 * time.Hour
)

// MonthGrid returns 42 consecutive midnights starting from the Sunday on or
// before the first day of ref's month.
func MonthGrid(ref time.Time, loc *time.Location) []time.Time {
	loc = orUTC(loc)
	r := ref.In(loc)
	first := time.Date(r.Year(), r.Month(), 1, 0, 0, 0, 0, loc)
	return consecutiveDays(addDays(first, -int(first.Weekday())), MonthCells)
}

// WeekGrid returns the seven midnights of the Sunday-first week containing ref.
func WeekGrid(ref time.Time, loc *time.Location) []time.Time {
	day := StartOfDay(ref, loc)
	return consecutiveDays(addDays(day, -int(day.Weekday())), WeekCells)
}

// StartOfDay truncates t to midnight in loc.
func StartOfDay(t time.Time, loc *time.Location) time.Time {
	loc = orUTC(loc)
	y, m, d := t.In(loc).Date()
	return time.Date(y, m, d, 0, 0, 0, 0, loc)
}

// IsSameDay reports whether a and b fall on the same calendar date in loc.
func IsSameDay(a, b time.Time, loc *time.Location) bool {
	return dayKey(a, loc) == dayKey(b, loc)
}

// IsToday reports whether date falls on the same calendar date as now in loc.
func IsToday(date, now time.Time, loc *time.Location) bool {
	return IsSameDay(date, now, loc)
}

// Covers reports whether event spans date, inclusive at day granularity. An
// event without an end date covers its start day only. Events with a missing
// start or an end before the start cover nothing.
func Covers(event models.Event, date time.Time, loc *time.Location) bool {
	if !event.HasValidRange() {
		return false
	}
	day := dayKey(date, loc)
	return dayKey(event.StartIn(loc), loc) <= day && day <= dayKey(event.EndIn(loc), loc)
}

// EventsOnDate returns the events covering date, in input order.
func EventsOnDate(events []models.Event, date time.Time, loc *time.Location) []models.Event {
	out := make([]models.Event, 0)
	for _, e := range events {
		if Covers(e, date, loc) {
			out = append(out, e)
		}
	}
	return out
}

// Upcoming returns events starting strictly after now. Floating starts are
// read in now's location.
func Upcoming(events []models.Event, now time.Time) []models.Event {
	out := make([]models.Event, 0)
	for _, e := range events {
		if e.HasValidRange() && e.StartIn(now.Location()).After(now) {
			out = append(out, e)
		}
	}
	return out
}

// ThisWeek returns events starting within [now, now+7 days].
func ThisWeek(events []models.Event, now time.Time) []models.Event {
	limit := now.Add(week)
	out := make([]models.Event, 0)
	for _, e := range events {
		if !e.HasValidRange() {
			continue
		}
		start := e.StartIn(now.Location())
		if !start.Before(now) && !start.After(limit) {
			out = append(out, e)
		}
	}
	return out
}

func orUTC(loc *time.Location) *time.Location {
	if loc == nil {
		return time.UTC
	}
	return loc
}

// addDays moves by calendar days, which keeps midnights aligned across DST shifts.
func addDays(t time.Time, n int) time.Time {
	y, m, d := t.Date()
	return time.Date(y, m, d+n, 0, 0, 0, 0, t.Location())
}

func consecutiveDays(start time.Time, n int) []time.Time {
	days := make([]time.Time, n)
	for i := range days {
		days[i] = addDays(start, i)
	}
	return days
}

// dayKey maps t to an ordinal that increases with the calendar date in loc.
func dayKey(t time.Time, loc *time.Location) int {
	y, m, d := t.In(orUTC(loc)).Date()
	return y*10000 + int(m)*100 + d
}
