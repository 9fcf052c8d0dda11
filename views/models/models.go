package models

import "time"

// NotePage represents a note for template rendering
type NotePage struct {
	ID       string
	Title    string
	HTML     string // rendered markdown
	FolderID string
	Tags     []TagLabel
	Created  time.Time
	Updated  time.Time
}

// TagLabel is a tag shown on a note. Name is empty when the tag is gone.
type TagLabel struct {
	ID   string
	Name string
}
