package service

import (
	"context"
	"io"

	"github.com/khoahotran/portfolio-ai/adapters/event"
	"github.com/khoahotran/portfolio-ai/internal/domain/portfolio"
)

// ResumeStorage keeps the raw uploaded file.
type ResumeStorage interface {
	Upload(ctx context.Context, file io.Reader, key string, contentType string) (string, error)
	Delete(ctx context.Context, key string) error
}

// ResumeParser turns extracted resume text into structured data.
type ResumeParser interface {
	ParseResume(ctx context.Context, text string) (*portfolio.Resume, error)
}

type TextExtractor interface {
	ExtractText(mimeType string, data []byte) (string, error)
}

type EventPublisher interface {
	PublishResumeEvent(ctx context.Context, payload event.ResumeEventPayload) error
}
