package listing

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/noah-isme/weather-events-bff/internal/models"
)

func sample() []models.Event {
	base := time.Date(2024, time.April, 1, 9, 0, 0, 0, time.UTC)
	return []models.Event{
		{ID: "1", EventName: "beta", EventType: models.EventTypeMeeting, EventStatus: models.EventStatusScheduled, StartDate: base.Add(48 * time.Hour)},
		{ID: "2", EventName: "Alpha", EventType: models.EventTypeConcert, EventStatus: models.EventStatusCompleted, StartDate: base},
		{ID: "3", EventName: "", EventType: models.EventTypeMeeting, EventStatus: models.EventStatusScheduled, StartDate: time.Time{}},
		{ID: "4", EventName: "gamma", EventType: models.EventTypeWorkshop, EventStatus: models.EventStatusCancelled, StartDate: base.Add(24 * time.Hour)},
		{ID: "5", EventName: "ALPHA", EventType: models.EventTypeConcert, EventStatus: models.EventStatusScheduled, StartDate: base.Add(24 * time.Hour)},
	}
}

func ids(events []models.Event) []models.ID {
	out := make([]models.ID, 0, len(events))
	for _, e := range events {
		out = append(out, e.ID)
	}
	return out
}

func TestFilterByStatus(t *testing.T) {
	events := sample()
	assert.Equal(t, events, FilterByStatus(events, StatusAll))
	assert.Equal(t, events, FilterByStatus(events, ""))
	assert.Equal(t, []models.ID{"1", "3", "5"}, ids(FilterByStatus(events, "SCHEDULED")))
	assert.Empty(t, FilterByStatus(events, "scheduled"))
}

func TestSortEventsByStartDate(t *testing.T) {
	events := sample()
	assert.Equal(t, []models.ID{"2", "4", "5", "1", "3"}, ids(SortEvents(events, SortByStartDate, Asc)))
	assert.Equal(t, []models.ID{"1", "4", "5", "2", "3"}, ids(SortEvents(events, SortByStartDate, Desc)))
}

func TestSortEventsByNameCaseInsensitiveAndStable(t *testing.T) {
	events := sample()
	asc := SortEvents(events, SortByEventName, Asc)
	assert.Equal(t, []models.ID{"2", "5", "1", "4", "3"}, ids(asc))

	desc := SortEvents(events, SortByEventName, Desc)
	assert.Equal(t, []models.ID{"4", "1", "2", "5", "3"}, ids(desc))
}

func TestSortEventsIsIdempotent(t *testing.T) {
	for _, key := range []SortKey{SortByStartDate, SortByEventName, SortByEventType, SortByEventStatus} {
		for _, order := range []SortOrder{Asc, Desc} {
			once := SortEvents(sample(), key, order)
			twice := SortEvents(once, key, order)
			assert.Equal(t, ids(once), ids(twice), "%s %s", key, order)
		}
	}
}

func TestSortEventsDoesNotMutateInput(t *testing.T) {
	events := sample()
	_ = SortEvents(events, SortByEventName, Desc)
	assert.Equal(t, []models.ID{"1", "2", "3", "4", "5"}, ids(events))
}

func TestPaginate(t *testing.T) {
	events := sample()

	page, total := Paginate(events, 0, 2)
	assert.Equal(t, 3, total)
	assert.Equal(t, []models.ID{"1", "2"}, ids(page))

	page, _ = Paginate(events, 2, 2)
	assert.Equal(t, []models.ID{"5"}, ids(page))

	page, total = Paginate(events, 3, 2)
	assert.Equal(t, 3, total)
	assert.Empty(t, page)
	assert.NotNil(t, page)

	page, _ = Paginate(events, -1, 2)
	assert.Empty(t, page)

	page, total = Paginate(events, 0, 0)
	assert.Equal(t, 1, total)
	assert.Len(t, page, 5)

	page, total = Paginate(nil, 0, 10)
	assert.Equal(t, 0, total)
	assert.Empty(t, page)
}

func TestPaginateReconstructsInput(t *testing.T) {
	events := sample()
	for size := 1; size <= 6; size++ {
		_, totalPages := Paginate(events, 0, size)
		var joined []models.Event
		for p := 0; p < totalPages; p++ {
			items, _ := Paginate(events, p, size)
			require.LessOrEqual(t, len(items), size)
			joined = append(joined, items...)
		}
		assert.Equal(t, ids(events), ids(joined), "size %d", size)
	}
}

func TestApplyComposesFilterSortPaginate(t *testing.T) {
	res := Apply(sample(), Query{Status: "SCHEDULED", Key: SortByStartDate, Order: Asc, Page: 0, Size: 2})
	assert.Equal(t, 3, res.Total)
	assert.Equal(t, 2, res.TotalPages)
	assert.Equal(t, []models.ID{"5", "1"}, ids(res.Items))

	res = Apply(sample(), Query{Status: "SCHEDULED", Key: SortByStartDate, Order: Asc, Page: 1, Size: 2})
	assert.Equal(t, []models.ID{"3"}, ids(res.Items))
}

func TestParseSortDefaults(t *testing.T) {
	assert.Equal(t, SortByStartDate, ParseSortKey(""))
	assert.Equal(t, SortByStartDate, ParseSortKey("bogus"))
	assert.Equal(t, SortByEventType, ParseSortKey("eventType"))
	assert.Equal(t, Asc, ParseSortOrder(""))
	assert.Equal(t, Desc, ParseSortOrder("DESC"))
}
