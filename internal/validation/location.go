package validation

import (
	"github.com/go-playground/validator/v10"

	"github.com/noah-isme/weather-events-bff/internal/models"
)

var locationMessages = map[string]map[string]string{
	"name":      {"required": "Location name is required", "max": "Location name must be at most 255 characters"},
	"latitude":  {"required": "Latitude is required", "min": "Latitude must be between -90 and 90", "max": "Latitude must be between -90 and 90"},
	"longitude": {"required": "Longitude is required", "min": "Longitude must be between -180 and 180", "max": "Longitude must be between -180 and 180"},
	"country":   {"max": "Country must be at most 100 characters"},
	"state":     {"max": "State must be at most 100 characters"},
	"city":      {"max": "City must be at most 100 characters"},
	"address":   {"max": "Address must be at most 1000 characters"},
	"timezone":  {"max": "Timezone must be at most 50 characters"},
	"elevation": {"min": "Elevation must be between -500 and 10000", "max": "Elevation must be between -500 and 10000"},
}

// NormalizeLocation trims the name and turns blank optional fields into nil.
func NormalizeLocation(draft models.LocationDraft) models.LocationDraft {
	return draft.Normalized()
}

// ValidateLocation checks draft with the shared Validator.
func ValidateLocation(draft models.LocationDraft) Result {
	return defaultValidator.ValidateLocation(draft)
}

// ValidateLocation normalizes draft and checks it.
func (v *Validator) ValidateLocation(draft models.LocationDraft) Result {
	r := newResult()
	v.collect(&r, NormalizeLocation(draft), func(fe validator.FieldError) string {
		return lookup(locationMessages, fe)
	})
	return r
}
