package models

// User is a row from the user directory. Read-only to this service.
type User struct {
	ID                   string  `json:"id"`
	Latitude             float64 `json:"latitude"`
	Longitude            float64 `json:"longitude"`
	DeviceToken          string  `json:"device_token,omitempty"`
	NotificationsEnabled bool    `json:"notifications_enabled"`
}

// Deliverable reports whether the directory attributes allow a push at all.
// Users failing this can never be a dispatch target.
func (u *User) Deliverable() bool {
	return u.NotificationsEnabled && u.DeviceToken != ""
}

// Candidate is a user that passed geospatial and directory selection,
// paired with their resolved (never nil) preference.
type Candidate struct {
	User       User
	Preference *Preference
}
