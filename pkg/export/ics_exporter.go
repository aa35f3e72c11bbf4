package export

import (
	"fmt"
	"strings"
	"time"

	ical "github.com/arran4/golang-ical"
)

// ICSContentType is the MIME type of ICSExporter output.
const ICSContentType = "text/calendar; charset=utf-8"

// CalendarEntry is one VEVENT.
type CalendarEntry struct {
	UID         string
	Summary     string
	Description string
	Start       time.Time
	End         time.Time
	Status      string
	Categories  []string
	Modified    time.Time
}

// CalendarFeed is a named set of entries.
type CalendarFeed struct {
	Name    string
	Entries []CalendarEntry
}

// ICSExporter renders feeds as iCalendar documents.
type ICSExporter struct {
	productID string
	now       func() time.Time
}

// NewICSExporter constructs an exporter stamping productID on every document.
func NewICSExporter(productID string) *ICSExporter {
	if productID == "" {
		productID = "-//weather-events-bff//events//EN"
	}
	return &ICSExporter{productID: productID, now: time.Now}
}

// Render serializes feed. Entries without a start are skipped; an entry
// without an end lasts one hour.
func (e *ICSExporter) Render(feed CalendarFeed) ([]byte, error) {
	cal := ical.NewCalendar()
	cal.SetMethod(ical.MethodPublish)
	cal.SetProductId(e.productID)
	if feed.Name != "" {
		cal.SetXWRCalName(feed.Name)
	}

	stamp := e.now().UTC()
	for _, entry := range feed.Entries {
		if entry.UID == "" {
			return nil, fmt.Errorf("ics entry %q has no uid", entry.Summary)
		}
		if entry.Start.IsZero() {
			continue
		}
		end := entry.End
		if end.IsZero() || end.Before(entry.Start) {
			end = entry.Start.Add(time.Hour)
		}

		ev := cal.AddEvent(entry.UID)
		ev.SetDtStampTime(stamp)
		ev.SetStartAt(entry.Start.UTC())
		ev.SetEndAt(end.UTC())
		ev.SetSummary(entry.Summary)
		if entry.Description != "" {
			ev.SetDescription(entry.Description)
		}
		if !entry.Modified.IsZero() {
			ev.SetModifiedAt(entry.Modified.UTC())
		}
		if status := icsStatus(entry.Status); status != "" {
			ev.SetProperty(ical.ComponentPropertyStatus, string(status))
		}
		if len(entry.Categories) > 0 {
			ev.SetProperty(ical.ComponentPropertyCategories, strings.Join(entry.Categories, ","))
		}
	}
	return []byte(cal.Serialize()), nil
}

func icsStatus(status string) ical.ObjectStatus {
	switch strings.ToUpper(status) {
	case "SCHEDULED", "IN_PROGRESS":
		return ical.ObjectStatusConfirmed
	case "CANCELLED":
		return ical.ObjectStatusCancelled
	case "COMPLETED":
		return ical.ObjectStatusConfirmed
	default:
		return ""
	}
}
