package model

import "time"

// Evidence is a file uploaded to support fighting a dispute.
// The content lives in object storage under StoragePath.
type Evidence struct {
	ID          string    `json:"id"`
	DisputeID   string    `json:"dispute_id"`
	Filename    string    `json:"filename"`
	StoragePath string    `json:"storage_path"`
	Size        int64     `json:"size"`
	ContentType string    `json:"content_type"`
	CreatedAt   time.Time `json:"created_at"`
}
