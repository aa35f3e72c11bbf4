package models

import (
	"strings"
	"time"
)

// Location is a named coordinate owned by the backend.
type Location struct {
	ID        ID        `json:"id"`
	Name      string    `json:"name"`
	Latitude  float64   `json:"latitude"`
	Longitude float64   `json:"longitude"`
	Country   *string   `json:"country,omitempty"`
	State     *string   `json:"state,omitempty"`
	City      *string   `json:"city,omitempty"`
	Address   *string   `json:"address,omitempty"`
	Timezone  *string   `json:"timezone,omitempty"`
	Elevation *int      `json:"elevation,omitempty"`
	CreatedAt time.Time `json:"createdAt,omitempty"`
	UpdatedAt time.Time `json:"updatedAt,omitempty"`
}

// LocationDraft is the form payload for creating or updating a location.
type LocationDraft struct {
	Name      string   `json:"name" validate:"required,max=255"`
	Latitude  *float64 `json:"latitude" validate:"required,min=-90,max=90"`
	Longitude *float64 `json:"longitude" validate:"required,min=-180,max=180"`
	Country   *string  `json:"country,omitempty" validate:"omitempty,max=100"`
	State     *string  `json:"state,omitempty" validate:"omitempty,max=100"`
	City      *string  `json:"city,omitempty" validate:"omitempty,max=100"`
	Address   *string  `json:"address,omitempty" validate:"omitempty,max=1000"`
	Timezone  *string  `json:"timezone,omitempty" validate:"omitempty,max=50"`
	Elevation *int     `json:"elevation,omitempty" validate:"omitempty,min=-500,max=10000"`
}

// Normalized returns a copy whose blank optional fields are absent rather
// than empty strings.
func (d LocationDraft) Normalized() LocationDraft {
	out := d
	out.Name = strings.TrimSpace(d.Name)
	out.Country = blankToNil(d.Country)
	out.State = blankToNil(d.State)
	out.City = blankToNil(d.City)
	out.Address = blankToNil(d.Address)
	out.Timezone = blankToNil(d.Timezone)
	return out
}

func blankToNil(v *string) *string {
	if v == nil {
		return nil
	}
	trimmed := strings.TrimSpace(*v)
	if trimmed == "" {
		return nil
	}
	return &trimmed
}

// SearchHistoryEntry is one remembered location search for a user.
type SearchHistoryEntry struct {
	ID         string    `db:"id" json:"id"`
	UserID     string    `db:"user_id" json:"-"`
	Query      string    `db:"query" json:"query"`
	SearchedAt time.Time `db:"searched_at" json:"searchedAt"`
}
