// Package models defines client-side data models shared by the local stores,
// the layout engine and the CLI.
package models

import "time"

// DefaultVideoType is assumed when an upload carries no content type.
const DefaultVideoType = "video/mp4"

// Blob is binary content with its MIME type.
type Blob struct {
	Type string
	Data []byte
}

// VideoRecord is one locally stored upload. Records are never updated.
type VideoRecord struct {
	ID          string
	Title       string
	Description *string
	CreatedAt   time.Time

	Video Blob
	// Image is the optional poster; nil when none was uploaded.
	Image *Blob

	// Size is the video payload size in bytes.
	Size int64
}

// Summary strips the payloads from v.
func (v *VideoRecord) Summary() VideoSummary {
	return VideoSummary{
		ID:          v.ID,
		Title:       v.Title,
		Description: v.Description,
		CreatedAt:   v.CreatedAt,
		Size:        v.Size,
		HasImage:    v.Image != nil,
		VideoType:   v.Video.Type,
	}
}

// VideoSummary is the listing view of a VideoRecord.
type VideoSummary struct {
	ID          string    `json:"id"`
	Title       string    `json:"title"`
	Description *string   `json:"description,omitempty"`
	CreatedAt   time.Time `json:"createdAt"`
	Size        int64     `json:"size"`
	HasImage    bool      `json:"hasImage"`
	VideoType   string    `json:"videoType"`
}

// VideoURLs are ephemeral URLs derived from a stored record.
// ImageURL is nil when the record has no image.
type VideoURLs struct {
	VideoURL string
	ImageURL *string
}
