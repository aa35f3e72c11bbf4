package models

import "time"

// UserRole represents the roles the backend assigns.
type UserRole string

const (
	RoleAdmin UserRole = "ADMIN"
	RoleUser  UserRole = "USER"
)

// User is the authenticated account as returned by the backend.
type User struct {
	ID        ID        `json:"id"`
	Username  string    `json:"username"`
	Email     string    `json:"email"`
	FirstName *string   `json:"firstName,omitempty"`
	LastName  *string   `json:"lastName,omitempty"`
	Role      UserRole  `json:"role,omitempty"`
	Roles     []string  `json:"roles,omitempty"`
	CreatedAt time.Time `json:"createdAt,omitempty"`
}

// IsAdmin reports whether the user carries the admin role in either shape
// the backend uses.
func (u *User) IsAdmin() bool {
	if u == nil {
		return false
	}
	if u.Role == RoleAdmin {
		return true
	}
	for _, r := range u.Roles {
		if r == string(RoleAdmin) || r == "ROLE_ADMIN" {
			return true
		}
	}
	return false
}

// ProfileUpdate carries mutable profile fields.
type ProfileUpdate struct {
	FirstName *string `json:"firstName,omitempty" validate:"omitempty,max=100"`
	LastName  *string `json:"lastName,omitempty" validate:"omitempty,max=100"`
	Email     *string `json:"email,omitempty" validate:"omitempty,email"`
}

// Preferences are per-user display settings.
type Preferences struct {
	TemperatureUnit      string `json:"temperatureUnit,omitempty" validate:"omitempty,oneof=CELSIUS FAHRENHEIT"`
	Theme                string `json:"theme,omitempty" validate:"omitempty,oneof=light dark system"`
	Language             string `json:"language,omitempty" validate:"omitempty,max=10"`
	Timezone             string `json:"timezone,omitempty" validate:"omitempty,max=50"`
	DefaultLocationID    *ID    `json:"defaultLocationId,omitempty"`
	NotificationsEnabled bool   `json:"notificationsEnabled"`
}

// Pagination contains pagination metadata returned in list responses.
// Page is 0-based to match the backend.
type Pagination struct {
	Page       int `json:"page"`
	PageSize   int `json:"page_size"`
	TotalCount int `json:"total_count"`
	TotalPages int `json:"total_pages"`
}

// Page is the backend's paginated list envelope.
type Page[T any] struct {
	Content       []T   `json:"content"`
	TotalElements int64 `json:"totalElements"`
	TotalPages    int   `json:"totalPages"`
	Number        int   `json:"number"`
	Size          int   `json:"size"`
}

// Pagination converts the backend page metadata.
func (p Page[T]) Pagination() *Pagination {
	return &Pagination{
		Page:       p.Number,
		PageSize:   p.Size,
		TotalCount: int(p.TotalElements),
		TotalPages: p.TotalPages,
	}
}
