package models

import (
	"encoding/json"
	"strings"
	"time"
)

// EventType enumerates supported event categories.
type EventType string

const (
	EventTypeConcert    EventType = "CONCERT"
	EventTypeConference EventType = "CONFERENCE"
	EventTypeMeeting    EventType = "MEETING"
	EventTypeWorkshop   EventType = "WORKSHOP"
	EventTypeSports     EventType = "SPORTS"
	EventTypeFestival   EventType = "FESTIVAL"
	EventTypeOther      EventType = "OTHER"
)

// EventTypes lists every valid event type in display order.
var EventTypes = []EventType{
	EventTypeConcert,
	EventTypeConference,
	EventTypeMeeting,
	EventTypeWorkshop,
	EventTypeSports,
	EventTypeFestival,
	EventTypeOther,
}

// Valid reports whether t is one of the known event types.
func (t EventType) Valid() bool {
	for _, known := range EventTypes {
		if t == known {
			return true
		}
	}
	return false
}

// EventStatus captures the lifecycle state of an event.
type EventStatus string

const (
	EventStatusScheduled  EventStatus = "SCHEDULED"
	EventStatusInProgress EventStatus = "IN_PROGRESS"
	EventStatusCompleted  EventStatus = "COMPLETED"
	EventStatusCancelled  EventStatus = "CANCELLED"
)

// EventStatuses lists every valid event status.
var EventStatuses = []EventStatus{
	EventStatusScheduled,
	EventStatusInProgress,
	EventStatusCompleted,
	EventStatusCancelled,
}

// Valid reports whether s is one of the known statuses.
func (s EventStatus) Valid() bool {
	for _, known := range EventStatuses {
		if s == known {
			return true
		}
	}
	return false
}

// Participant references a user attending an event.
type Participant struct {
	ID        ID      `json:"id"`
	Username  string  `json:"username"`
	FirstName *string `json:"firstName,omitempty"`
	LastName  *string `json:"lastName,omitempty"`
}

// DisplayName prefers the full name and falls back to the username.
func (p Participant) DisplayName() string {
	parts := make([]string, 0, 2)
	if p.FirstName != nil && *p.FirstName != "" {
		parts = append(parts, *p.FirstName)
	}
	if p.LastName != nil && *p.LastName != "" {
		parts = append(parts, *p.LastName)
	}
	if len(parts) == 0 {
		return p.Username
	}
	return strings.Join(parts, " ")
}

// Event is a scheduled record owned by the backend. Timestamps sent without
// an offset are floating: they hold the wall clock in UTC and are read in the
// viewer's location (see StartIn and EndIn).
type Event struct {
	ID               ID            `json:"id"`
	EventName        string        `json:"eventName"`
	EventDescription string        `json:"eventDescription"`
	EventType        EventType     `json:"eventType"`
	EventStatus      EventStatus   `json:"eventStatus"`
	StartDate        time.Time     `json:"startDate"`
	EndDate          *time.Time    `json:"endDate,omitempty"`
	IsOutdoor        bool          `json:"isOutdoor"`
	Users            []Participant `json:"users"`
	CreatedAt        time.Time     `json:"createdAt"`
	UpdatedAt        time.Time     `json:"updatedAt"`
	StartFloating    bool          `json:"-"`
	EndFloating      bool          `json:"-"`
}

// HasValidRange reports whether the event can be placed on a calendar:
// a non-zero start and, when present, an end that is not before it.
func (e Event) HasValidRange() bool {
	if e.StartDate.IsZero() {
		return false
	}
	if e.EndDate != nil && !e.EndDate.IsZero() && e.EndDate.Before(e.StartDate) {
		return false
	}
	return true
}

// EffectiveEnd returns the end date, treating a missing end as zero duration.
func (e Event) EffectiveEnd() time.Time {
	if e.EndDate == nil || e.EndDate.IsZero() {
		return e.StartDate
	}
	return *e.EndDate
}

// StartIn returns the start as seen from loc.
func (e Event) StartIn(loc *time.Location) time.Time {
	return inZone(e.StartDate, e.StartFloating, loc)
}

// EndIn returns the effective end as seen from loc.
func (e Event) EndIn(loc *time.Location) time.Time {
	if e.EndDate == nil || e.EndDate.IsZero() {
		return e.StartIn(loc)
	}
	return inZone(*e.EndDate, e.EndFloating, loc)
}

// inZone converts an instant to loc, or rebuilds a floating wall clock in loc.
func inZone(t time.Time, floating bool, loc *time.Location) time.Time {
	if loc == nil {
		loc = time.UTC
	}
	if t.IsZero() {
		return t
	}
	if !floating {
		return t.In(loc)
	}
	y, m, d := t.Date()
	hh, mm, ss := t.Clock()
	return time.Date(y, m, d, hh, mm, ss, t.Nanosecond(), loc)
}

type eventWire struct {
	ID               ID            `json:"id"`
	EventName        string        `json:"eventName"`
	EventDescription string        `json:"eventDescription"`
	EventType        EventType     `json:"eventType"`
	EventStatus      EventStatus   `json:"eventStatus"`
	StartDate        *string       `json:"startDate"`
	EndDate          *string       `json:"endDate,omitempty"`
	IsOutdoor        bool          `json:"isOutdoor"`
	Users            []Participant `json:"users"`
	CreatedAt        *string       `json:"createdAt"`
	UpdatedAt        *string       `json:"updatedAt"`
}

// UnmarshalJSON decodes an event leniently on timestamps: an unparseable date
// leaves the field zero so the record is skipped by calendar bucketing instead
// of failing the whole list.
func (e *Event) UnmarshalJSON(data []byte) error {
	var wire eventWire
	if err := json.Unmarshal(data, &wire); err != nil {
		return err
	}
	*e = Event{
		ID:               wire.ID,
		EventName:        wire.EventName,
		EventDescription: wire.EventDescription,
		EventType:        wire.EventType,
		EventStatus:      wire.EventStatus,
		IsOutdoor:        wire.IsOutdoor,
		Users:            wire.Users,
	}
	if wire.StartDate != nil {
		e.StartDate, e.StartFloating, _ = parseTimestamp(*wire.StartDate)
	}
	if wire.EndDate != nil {
		if end, floating, ok := parseTimestamp(*wire.EndDate); ok {
			e.EndDate = &end
			e.EndFloating = floating
		}
	}
	if wire.CreatedAt != nil {
		e.CreatedAt, _ = ParseTimestamp(*wire.CreatedAt)
	}
	if wire.UpdatedAt != nil {
		e.UpdatedAt, _ = ParseTimestamp(*wire.UpdatedAt)
	}
	return nil
}

// MarshalJSON writes floating timestamps back without an offset so they keep
// their wall clock through caches and clients.
func (e Event) MarshalJSON() ([]byte, error) {
	return json.Marshal(eventWire{
		ID:               e.ID,
		EventName:        e.EventName,
		EventDescription: e.EventDescription,
		EventType:        e.EventType,
		EventStatus:      e.EventStatus,
		StartDate:        formatTimestamp(e.StartDate, e.StartFloating),
		EndDate:          formatOptionalTimestamp(e.EndDate, e.EndFloating),
		IsOutdoor:        e.IsOutdoor,
		Users:            e.Users,
		CreatedAt:        formatTimestamp(e.CreatedAt, false),
		UpdatedAt:        formatTimestamp(e.UpdatedAt, false),
	})
}

const floatingLayout = "2006-01-02T15:04:05.999999999"

var floatingLayouts = []string{
	floatingLayout,
	"2006-01-02T15:04:05",
	"2006-01-02T15:04",
	"2006-01-02",
}

// ParseTimestamp parses the timestamp formats emitted by the backend. Values
// without an offset carry their wall clock in UTC.
func ParseTimestamp(raw string) (time.Time, bool) {
	t, _, ok := parseTimestamp(raw)
	return t, ok
}

func parseTimestamp(raw string) (t time.Time, floating, ok bool) {
	raw = strings.TrimSpace(raw)
	if raw == "" {
		return time.Time{}, false, false
	}
	if t, err := time.Parse(time.RFC3339Nano, raw); err == nil {
		return t, false, true
	}
	for _, layout := range floatingLayouts {
		if t, err := time.ParseInLocation(layout, raw, time.UTC); err == nil {
			return t, true, true
		}
	}
	return time.Time{}, false, false
}

func formatTimestamp(t time.Time, floating bool) *string {
	if t.IsZero() {
		return nil
	}
	layout := time.RFC3339Nano
	if floating {
		layout = floatingLayout
	}
	out := t.Format(layout)
	return &out
}

func formatOptionalTimestamp(t *time.Time, floating bool) *string {
	if t == nil {
		return nil
	}
	return formatTimestamp(*t, floating)
}

// EventDraft is the form payload for creating or updating an event. Pointer
// fields distinguish "absent" from a zero value.
type EventDraft struct {
	EventName        string     `json:"eventName" validate:"required,max=255"`
	EventDescription string     `json:"eventDescription" validate:"required,max=1000"`
	EventType        string     `json:"eventType" validate:"required,eventtype"`
	EventStatus      string     `json:"eventStatus,omitempty" validate:"omitempty,eventstatus"`
	StartDate        *time.Time `json:"startDate" validate:"required"`
	EndDate          *time.Time `json:"endDate,omitempty"`
	IsOutdoor        *bool      `json:"isOutdoor" validate:"required"`
	UserIDs          []ID       `json:"userIds,omitempty"`
}

// EventPayload is the body sent to the backend for create/update.
type EventPayload struct {
	EventName        string      `json:"eventName"`
	EventDescription string      `json:"eventDescription"`
	EventType        EventType   `json:"eventType"`
	EventStatus      EventStatus `json:"eventStatus,omitempty"`
	StartDate        time.Time   `json:"startDate"`
	EndDate          *time.Time  `json:"endDate,omitempty"`
	IsOutdoor        bool        `json:"isOutdoor"`
	UserIDs          []ID        `json:"userIds,omitempty"`
}

// ToPayload converts a validated draft into the backend payload. An absent
// status stays absent so an update keeps the stored one.
func (d EventDraft) ToPayload() EventPayload {
	payload := EventPayload{
		EventName:        strings.TrimSpace(d.EventName),
		EventDescription: strings.TrimSpace(d.EventDescription),
		EventType:        EventType(strings.ToUpper(d.EventType)),
		EventStatus:      EventStatus(strings.ToUpper(d.EventStatus)),
		EndDate:          d.EndDate,
		UserIDs:          d.UserIDs,
	}
	if d.StartDate != nil {
		payload.StartDate = *d.StartDate
	}
	if d.IsOutdoor != nil {
		payload.IsOutdoor = *d.IsOutdoor
	}
	return payload
}

// EventSearchRequest is the body of POST /events/search.
type EventSearchRequest struct {
	Keyword     string      `json:"keyword,omitempty"`
	EventType   EventType   `json:"eventType,omitempty"`
	EventStatus EventStatus `json:"eventStatus,omitempty"`
	StartDate   *time.Time  `json:"startDate,omitempty"`
	EndDate     *time.Time  `json:"endDate,omitempty"`
	IsOutdoor   *bool       `json:"isOutdoor,omitempty"`
	Page        int         `json:"page"`
	Size        int         `json:"size"`
}

// EventStats aggregates counts per status and type.
type EventStats struct {
	TotalEvents      int            `json:"totalEvents"`
	UpcomingEvents   int            `json:"upcomingEvents"`
	InProgressEvents int            `json:"inProgressEvents"`
	CompletedEvents  int            `json:"completedEvents"`
	CancelledEvents  int            `json:"cancelledEvents"`
	OutdoorEvents    int            `json:"outdoorEvents"`
	IndoorEvents     int            `json:"indoorEvents"`
	EventsByType     map[string]int `json:"eventsByType,omitempty"`
}

// NameAvailability is the result of an event-name uniqueness lookup.
type NameAvailability struct {
	EventName string `json:"eventName"`
	Available bool   `json:"available"`
}
