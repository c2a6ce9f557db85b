package models

import "time"

// Post is one content item tracked from prompt to published Instagram media.
// ID is the opaque record identifier assigned by the store.
type Post struct {
	ID            string    `json:"id"`
	Prompt        string    `json:"prompt"`
	Caption       string    `json:"caption"`
	ImageURL      string    `json:"image_url"`
	Published     string    `json:"published"` // Yes, No
	MediaID       string    `json:"media_id"`
	ScheduledTime time.Time `json:"scheduled_time"`
	PublishDate   string    `json:"publish_date"`
	Status        string    `json:"status"` // Pending, Ready, Completed, Failed
}

const (
	PostStatusPending   = "Pending"
	PostStatusReady     = "Ready"
	PostStatusCompleted = "Completed"
	PostStatusFailed    = "Failed"
)

const (
	PublishedYes = "Yes"
	PublishedNo  = "No"
)
