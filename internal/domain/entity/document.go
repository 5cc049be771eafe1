package entity

import (
	"time"

	"github.com/garyjia/claims-portal/internal/domain/workflow"
)

// Document is one required evidence slot of a claim, possibly multi-file
type Document struct {
	ID           string         `json:"id"`
	ClaimID      string         `json:"claim_id"`
	DocumentType string         `json:"document_type"`
	DisplayName  string         `json:"display_name,omitempty"`
	Status       workflow.State `json:"status"`
	Comments     string         `json:"comments,omitempty"`
	Files        []DocumentFile `json:"files"`
	CreatedAt    time.Time      `json:"created_at"`
	UpdatedAt    time.Time      `json:"updated_at"`
	ReviewedBy   string         `json:"reviewed_by,omitempty"`
}

// DocumentFile is a single stored file of a document
type DocumentFile struct {
	ID          int64     `json:"id"`
	DocumentID  string    `json:"document_id"`
	Name        string    `json:"name"`
	StorageKey  string    `json:"storage_key"`
	URL         string    `json:"url"`
	Size        int64     `json:"size"`
	ContentType string    `json:"content_type"`
	UploadedAt  time.Time `json:"uploaded_at"`
}

// DocumentStatuses returns the status of each document in order
func DocumentStatuses(docs []*Document) []workflow.State {
	states := make([]workflow.State, len(docs))
	for i, d := range docs {
		states[i] = d.Status
	}
	return states
}
