package validation

import (
	"strings"
	"time"

	"github.com/go-playground/validator/v10"

	"github.com/noah-isme/weather-events-bff/internal/models"
)

// Mode selects which cross-field rules apply to an event form.
type Mode int

const (
	// ModeCreate rejects start dates in the past.
	ModeCreate Mode = iota
	// ModeEdit allows past start dates so old events stay editable.
	ModeEdit
)

// ParseMode maps "edit" to ModeEdit and anything else to ModeCreate.
func ParseMode(raw string) Mode {
	if raw == "edit" {
		return ModeEdit
	}
	return ModeCreate
}

const (
	MsgEventNameRequired        = "Event name is required"
	MsgEventNameTooLong         = "Event name must be at most 255 characters"
	MsgEventNameTaken           = "Event name is already taken"
	MsgEventDescriptionRequired = "Event description is required"
	MsgEventDescriptionTooLong  = "Event description must be at most 1000 characters"
	MsgEventTypeRequired        = "Event type is required"
	MsgEventTypeInvalid         = "Invalid event type"
	MsgEventStatusInvalid       = "Invalid event status"
	MsgStartDateRequired        = "Start date is required"
	MsgStartDateInPast          = "Start date cannot be in the past"
	MsgEndDateBeforeStart       = "End date must be after start date"
	MsgIsOutdoorRequired        = "Please specify if the event is outdoor"
)

var eventMessages = map[string]map[string]string{
	"eventName":        {"required": MsgEventNameRequired, "max": MsgEventNameTooLong},
	"eventDescription": {"required": MsgEventDescriptionRequired, "max": MsgEventDescriptionTooLong},
	"eventType":        {"required": MsgEventTypeRequired, "eventtype": MsgEventTypeInvalid},
	"eventStatus":      {"eventstatus": MsgEventStatusInvalid},
	"startDate":        {"required": MsgStartDateRequired},
	"isOutdoor":        {"required": MsgIsOutdoorRequired},
}

// ValidateEvent checks draft with the shared Validator.
func ValidateEvent(draft models.EventDraft, mode Mode, now time.Time) Result {
	return defaultValidator.ValidateEvent(draft, mode, now)
}

// ValidateEvent checks the field rules, then the date rules. The past-start
// rule applies only in ModeCreate.
func (v *Validator) ValidateEvent(draft models.EventDraft, mode Mode, now time.Time) Result {
	r := newResult()
	trimmed := draft
	trimmed.EventName = strings.TrimSpace(draft.EventName)
	trimmed.EventDescription = strings.TrimSpace(draft.EventDescription)

	v.collect(&r, trimmed, func(fe validator.FieldError) string {
		return lookup(eventMessages, fe)
	})

	if draft.StartDate != nil {
		if mode == ModeCreate && draft.StartDate.Before(now) {
			r.add("startDate", MsgStartDateInPast)
		}
		if draft.EndDate != nil && !draft.EndDate.After(*draft.StartDate) {
			r.add("endDate", MsgEndDateBeforeStart)
		}
	}
	return r
}

func lookup(table map[string]map[string]string, fe validator.FieldError) string {
	if byTag, ok := table[fe.Field()]; ok {
		if msg, ok := byTag[fe.Tag()]; ok {
			return msg
		}
	}
	return genericMessage(fe)
}
