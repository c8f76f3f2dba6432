package models

import "time"

// GalleryImage is a photo in the public gallery collection.
type GalleryImage struct {
	ID         string
	Filename   string // object key in storage
	URL        string
	AltText    string
	Category   string
	UploadedBy string
	FileSize   int64
	UploadedAt time.Time
}

// SlideshowImage is a photo in the homepage slideshow, ordered by
// DisplayOrder ascending.
type SlideshowImage struct {
	ID           string
	Filename     string
	URL          string
	Title        string
	Description  string
	DisplayOrder int
	IsActive     bool
	UploadedBy   string
	FileSize     int64
	UploadedAt   time.Time
}
