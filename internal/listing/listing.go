// Package listing turns a raw event list into the rows a user sees:
// status filter, then stable sort, then page.
package listing

import (
	"sort"
	"strings"

	"github.com/noah-isme/weather-events-bff/internal/models"
)

// StatusAll disables status filtering.
const StatusAll = "all"

// SortKey names a sortable event field.
type SortKey string

const (
	SortByStartDate   SortKey = "startDate"
	SortByEventName   SortKey = "eventName"
	SortByEventType   SortKey = "eventType"
	SortByEventStatus SortKey = "eventStatus"
)

// SortOrder is the sort direction.
type SortOrder string

const (
	Asc  SortOrder = "asc"
	Desc SortOrder = "desc"
)

// Query describes one list view.
type Query struct {
	Status string
	Key    SortKey
	Order  SortOrder
	Page   int
	Size   int
}

// Result is a page of the transformed list.
type Result struct {
	Items      []models.Event
	Total      int
	TotalPages int
	Page       int
	Size       int
}

// ParseSortKey maps a query value onto a known key, defaulting to startDate.
func ParseSortKey(raw string) SortKey {
	switch SortKey(strings.TrimSpace(raw)) {
	case SortByEventName:
		return SortByEventName
	case SortByEventType:
		return SortByEventType
	case SortByEventStatus:
		return SortByEventStatus
	default:
		return SortByStartDate
	}
}

// ParseSortOrder maps a query value onto a direction, defaulting to asc.
func ParseSortOrder(raw string) SortOrder {
	if strings.EqualFold(strings.TrimSpace(raw), string(Desc)) {
		return Desc
	}
	return Asc
}

// FilterByStatus keeps events whose status equals status exactly. "all" and
// the empty string return a copy of events unchanged.
func FilterByStatus(events []models.Event, status string) []models.Event {
	if status == "" || status == StatusAll {
		out := make([]models.Event, len(events))
		copy(out, events)
		return out
	}
	out := make([]models.Event, 0, len(events))
	for _, e := range events {
		if string(e.EventStatus) == status {
			out = append(out, e)
		}
	}
	return out
}

// SortEvents returns a new slice ordered by key and order. Ties keep their
// input order. Events missing the key value sort last in either direction.
func SortEvents(events []models.Event, key SortKey, order SortOrder) []models.Event {
	out := make([]models.Event, len(events))
	copy(out, events)

	less := comparator(key)
	desc := order == Desc
	sort.SliceStable(out, func(i, j int) bool {
		a, b := out[i], out[j]
		aMissing, bMissing := missing(a, key), missing(b, key)
		if aMissing || bMissing {
			return !aMissing
		}
		if desc {
			return less(b, a)
		}
		return less(a, b)
	})
	return out
}

// Paginate slices events into the 0-based page. totalPages is
// ceil(len/size); a page outside [0, totalPages) is empty. A non-positive
// size yields a single page holding everything.
func Paginate(events []models.Event, page, size int) ([]models.Event, int) {
	total := len(events)
	if size <= 0 {
		switch {
		case total == 0:
			return []models.Event{}, 0
		case page != 0:
			return []models.Event{}, 1
		}
		out := make([]models.Event, total)
		copy(out, events)
		return out, 1
	}

	totalPages := (total + size - 1) / size
	if page < 0 || page >= totalPages {
		return []models.Event{}, totalPages
	}
	start := page * size
	end := start + size
	if end > total {
		end = total
	}
	out := make([]models.Event, end-start)
	copy(out, events[start:end])
	return out, totalPages
}

// Apply runs filter, sort and paginate in that order.
func Apply(events []models.Event, q Query) Result {
	filtered := FilterByStatus(events, q.Status)
	sorted := SortEvents(filtered, ParseSortKey(string(q.Key)), ParseSortOrder(string(q.Order)))
	items, totalPages := Paginate(sorted, q.Page, q.Size)
	return Result{
		Items:      items,
		Total:      len(filtered),
		TotalPages: totalPages,
		Page:       q.Page,
		Size:       q.Size,
	}
}

func missing(e models.Event, key SortKey) bool {
	switch key {
	case SortByEventName:
		return strings.TrimSpace(e.EventName) == ""
	case SortByEventType:
		return e.EventType == ""
	case SortByEventStatus:
		return e.EventStatus == ""
	default:
		return e.StartDate.IsZero()
	}
}

func comparator(key SortKey) func(a, b models.Event) bool {
	switch key {
	case SortByEventName:
		return func(a, b models.Event) bool { return foldLess(a.EventName, b.EventName) }
	case SortByEventType:
		return func(a, b models.Event) bool { return foldLess(string(a.EventType), string(b.EventType)) }
	case SortByEventStatus:
		return func(a, b models.Event) bool { return foldLess(string(a.EventStatus), string(b.EventStatus)) }
	default:
		return func(a, b models.Event) bool { return a.StartDate.Before(b.StartDate) }
	}
}

func foldLess(a, b string) bool {
	return strings.ToLower(a) < strings.ToLower(b)
}
