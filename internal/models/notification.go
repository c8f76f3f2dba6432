package models

import "time"

// Notification is a staff-authored notice shown on the public site.
// Attachment and link fields are nil when the notice has neither.
type Notification struct {
	ID              string
	Title           string
	Content         string
	IsActive        bool
	CreatedBy       string
	CreatedByUserID string // author's login name, joined on reads for the admin listing
	FileURL         *string
	FileName        *string
	FileType        *string
	FileSize        *int64
	DynamicURL      *string
	URLTitle        *string
	CreatedAt       time.Time
	UpdatedAt       time.Time
}
