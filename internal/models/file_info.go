package models

import "time"

// File kinds held by the store.
const (
	FileKindUpload = "upload"
	FileKindOutput = "output"
)

// FileInfo represents metadata about a stored archive.
type FileInfo struct {
	ID         string    `json:"id"`
	Name       string    `json:"name"`
	Size       int64     `json:"size"`
	UploadedAt time.Time `json:"uploadedAt"`
	Kind       string    `json:"kind"`
	Status     string    `json:"status"` // "uploaded", "scaled"
	SourceID   string    `json:"sourceId,omitempty"`
	Scale      string    `json:"scale,omitempty"`
}

// FileOrigin records what a produced archive was made from.
type FileOrigin struct {
	SourceID string
	Scale    string
}
