package validation

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/noah-isme/weather-events-bff/internal/models"
)

func floatPtr(f float64) *float64 { return &f }

func intPtr(i int) *int { return &i }

func strPtr(s string) *string { return &s }

func TestValidateLocationValid(t *testing.T) {
	res := ValidateLocation(models.LocationDraft{
		Name:      "Office",
		Latitude:  floatPtr(0),
		Longitude: floatPtr(0),
		Elevation: intPtr(-500),
	})
	assert.True(t, res.Valid)
	assert.Empty(t, res.Errors)
}

func TestValidateLocationRequired(t *testing.T) {
	res := ValidateLocation(models.LocationDraft{Name: " "})
	assert.Equal(t, map[string]string{
		"name":      "Location name is required",
		"latitude":  "Latitude is required",
		"longitude": "Longitude is required",
	}, res.Errors)
}

func TestValidateLocationRanges(t *testing.T) {
	res := ValidateLocation(models.LocationDraft{
		Name:      "Summit",
		Latitude:  floatPtr(90.5),
		Longitude: floatPtr(-181),
		Elevation: intPtr(10001),
		Country:   strPtr(strings.Repeat("c", 101)),
		Timezone:  strPtr(strings.Repeat("z", 51)),
	})
	assert.Equal(t, "Latitude must be between -90 and 90", res.Errors["latitude"])
	assert.Equal(t, "Longitude must be between -180 and 180", res.Errors["longitude"])
	assert.Equal(t, "Elevation must be between -500 and 10000", res.Errors["elevation"])
	assert.Equal(t, "Country must be at most 100 characters", res.Errors["country"])
	assert.Equal(t, "Timezone must be at most 50 characters", res.Errors["timezone"])
}

func TestNormalizeLocationDropsBlankOptionals(t *testing.T) {
	out := NormalizeLocation(models.LocationDraft{
		Name:    "  Park ",
		City:    strPtr(""),
		State:   strPtr("   "),
		Address: strPtr(" Main St "),
	})
	assert.Equal(t, "Park", out.Name)
	assert.Nil(t, out.City)
	assert.Nil(t, out.State)
	require.NotNil(t, out.Address)
	assert.Equal(t, "Main St", *out.Address)
}
