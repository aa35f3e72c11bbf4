package validation

import (
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"

	"github.com/noah-isme/weather-events-bff/internal/models"
)

var now = time.Date(2024, time.March, 12, 10, 0, 0, 0, time.UTC)

func boolPtr(b bool) *bool { return &b }

func timePtr(t time.Time) *time.Time { return &t }

func validDraft() models.EventDraft {
	return models.EventDraft{
		EventName:        "Team sync",
		EventDescription: "x",
		EventType:        "MEETING",
		StartDate:        timePtr(now.Add(24 * time.Hour)),
		IsOutdoor:        boolPtr(true),
	}
}

func TestValidateEventValid(t *testing.T) {
	res := ValidateEvent(validDraft(), ModeCreate, now)
	assert.True(t, res.Valid)
	assert.Empty(t, res.Errors)
}

func TestValidateEventMissingNameOnly(t *testing.T) {
	draft := validDraft()
	draft.EventName = ""

	res := ValidateEvent(draft, ModeCreate, now)
	assert.False(t, res.Valid)
	assert.Equal(t, map[string]string{"eventName": MsgEventNameRequired}, res.Errors)
}

func TestValidateEventWhitespaceNameIsMissing(t *testing.T) {
	draft := validDraft()
	draft.EventName = "   "
	res := ValidateEvent(draft, ModeCreate, now)
	assert.Equal(t, MsgEventNameRequired, res.Errors["eventName"])
}

func TestValidateEventEditSkipsPastStart(t *testing.T) {
	draft := validDraft()
	draft.StartDate = timePtr(time.Date(2020, 1, 1, 0, 0, 0, 0, time.UTC))
	draft.EndDate = timePtr(time.Date(2019, 1, 1, 0, 0, 0, 0, time.UTC))

	edit := ValidateEvent(draft, ModeEdit, now)
	assert.Equal(t, map[string]string{"endDate": MsgEndDateBeforeStart}, edit.Errors)

	create := ValidateEvent(draft, ModeCreate, now)
	assert.Equal(t, MsgStartDateInPast, create.Errors["startDate"])
	assert.Equal(t, MsgEndDateBeforeStart, create.Errors["endDate"])
}

func TestValidateEventEndEqualToStartRejected(t *testing.T) {
	draft := validDraft()
	draft.EndDate = timePtr(*draft.StartDate)
	res := ValidateEvent(draft, ModeCreate, now)
	assert.Equal(t, MsgEndDateBeforeStart, res.Errors["endDate"])
}

func TestValidateEventFieldRules(t *testing.T) {
	cases := []struct {
		name   string
		mutate func(*models.EventDraft)
		field  string
		msg    string
	}{
		{"name too long", func(d *models.EventDraft) { d.EventName = strings.Repeat("a", 256) }, "eventName", MsgEventNameTooLong},
		{"description missing", func(d *models.EventDraft) { d.EventDescription = "" }, "eventDescription", MsgEventDescriptionRequired},
		{"description too long", func(d *models.EventDraft) { d.EventDescription = strings.Repeat("d", 1001) }, "eventDescription", MsgEventDescriptionTooLong},
		{"type missing", func(d *models.EventDraft) { d.EventType = "" }, "eventType", MsgEventTypeRequired},
		{"type unknown", func(d *models.EventDraft) { d.EventType = "PARTY" }, "eventType", MsgEventTypeInvalid},
		{"status unknown", func(d *models.EventDraft) { d.EventStatus = "DONE" }, "eventStatus", MsgEventStatusInvalid},
		{"start missing", func(d *models.EventDraft) { d.StartDate = nil }, "startDate", MsgStartDateRequired},
		{"outdoor missing", func(d *models.EventDraft) { d.IsOutdoor = nil }, "isOutdoor", MsgIsOutdoorRequired},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			draft := validDraft()
			tc.mutate(&draft)
			res := ValidateEvent(draft, ModeCreate, now)
			assert.False(t, res.Valid)
			assert.Equal(t, map[string]string{tc.field: tc.msg}, res.Errors)
		})
	}
}

func TestValidateEventOutdoorFalseIsPresent(t *testing.T) {
	draft := validDraft()
	draft.IsOutdoor = boolPtr(false)
	assert.True(t, ValidateEvent(draft, ModeCreate, now).Valid)
}

func TestValidateEventIsPure(t *testing.T) {
	draft := validDraft()
	draft.EventType = ""
	first := ValidateEvent(draft, ModeCreate, now)
	second := ValidateEvent(draft, ModeCreate, now)
	assert.Equal(t, first, second)
}

func TestMergeErrors(t *testing.T) {
	base := ValidateEvent(validDraft(), ModeCreate, now)
	merged := MergeErrors(base, "eventName", MsgEventNameTaken)
	assert.False(t, merged.Valid)
	assert.Equal(t, MsgEventNameTaken, merged.Errors["eventName"])
	assert.True(t, base.Valid)
	assert.Empty(t, base.Errors)

	unchanged := MergeErrors(base, "eventName", "")
	assert.True(t, unchanged.Valid)

	draft := validDraft()
	draft.EventName = ""
	kept := MergeErrors(ValidateEvent(draft, ModeCreate, now), "eventName", MsgEventNameTaken)
	assert.Equal(t, MsgEventNameRequired, kept.Errors["eventName"])
}

func TestParseMode(t *testing.T) {
	assert.Equal(t, ModeEdit, ParseMode("edit"))
	assert.Equal(t, ModeCreate, ParseMode(""))
}
