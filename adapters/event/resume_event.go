package event

import (
	"github.com/google/uuid"
)

type ResumeEventType string

const (
	ResumeEventTypeUploaded ResumeEventType = "resume.uploaded"
)

type ResumeEventPayload struct {
	EventType   ResumeEventType `json:"event_type"`
	PortfolioID string          `json:"portfolio_id"`
	OwnerID     *uuid.UUID      `json:"owner_id,omitempty"`
	ResumeURL   string          `json:"resume_url"`
	StorageKey  string          `json:"storage_key"`
	MimeType    string          `json:"mime_type"`
	ResumeText  string          `json:"resume_text"`
}
