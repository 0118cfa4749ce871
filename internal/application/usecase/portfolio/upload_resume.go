package portfolio

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"io"
	"time"

	"github.com/google/uuid"
	"go.opentelemetry.io/otel/attribute"
	"go.uber.org/zap"

	"github.com/khoahotran/portfolio-ai/adapters/event"
	"github.com/khoahotran/portfolio-ai/internal/application/service"
	"github.com/khoahotran/portfolio-ai/internal/domain/portfolio"
	"github.com/khoahotran/portfolio-ai/internal/domain/resume"
	"github.com/khoahotran/portfolio-ai/pkg/apperror"
	"github.com/khoahotran/portfolio-ai/pkg/logger"
	"github.com/khoahotran/portfolio-ai/pkg/metrics"
)

// User facing upload messages.
const (
	MsgInvalidFileType    = "Invalid file type"
	DetailInvalidFileType = "Please upload a PDF or Word document."
	MsgFileTooLarge       = "File too large"
	MsgUploadFailed       = "Upload failed"
	DetailUploadFailed    = "An unexpected error occurred. Please try again."
)

type UploadStatus string

const (
	StatusReady      UploadStatus = "ready"
	StatusProcessing UploadStatus = "processing"
)

type UploadResumeUseCase struct {
	storage   service.ResumeStorage
	extractor service.TextExtractor
	processor *ProcessResumeUseCase
	publisher service.EventPublisher
	maxBytes  int64
	logger    logger.Logger
}

// NewUploadResumeUseCase wires the upload flow. A nil publisher means every
// upload is processed inline.
func NewUploadResumeUseCase(
	storage service.ResumeStorage,
	extractor service.TextExtractor,
	processor *ProcessResumeUseCase,
	publisher service.EventPublisher,
	maxBytes int64,
	log logger.Logger,
) *UploadResumeUseCase {
	if maxBytes <= 0 {
		maxBytes = resume.DefaultMaxBytes
	}
	return &UploadResumeUseCase{
		storage:   storage,
		extractor: extractor,
		processor: processor,
		publisher: publisher,
		maxBytes:  maxBytes,
		logger:    log,
	}
}

type UploadResumeInput struct {
	OwnerID     *uuid.UUID
	Filename    string
	ContentType string
	Size        int64
	File        io.Reader
}

type UploadResumeOutput struct {
	PortfolioID string
	Status      UploadStatus
	ResumeURL   string
}

func (uc *UploadResumeUseCase) MaxBytes() int64 {
	return uc.maxBytes
}

func (uc *UploadResumeUseCase) Execute(ctx context.Context, input UploadResumeInput) (*UploadResumeOutput, error) {
	ctx, span := tracer.Start(ctx, "UploadResume")
	defer span.End()

	// Every check up to the storage call is local.
	mimeType, err := resume.ValidateUpload(input.Filename, input.ContentType, input.Size, uc.maxBytes)
	if err != nil {
		return nil, uc.rejection(err)
	}

	data, err := io.ReadAll(io.LimitReader(input.File, uc.maxBytes+1))
	if err != nil {
		metrics.ResumeUploads.WithLabelValues(metrics.OutcomeError).Inc()
		return nil, apperror.NewInvalidInput("failed to read uploaded file", err)
	}
	if int64(len(data)) > uc.maxBytes {
		return nil, uc.rejection(resume.ErrFileTooLarge)
	}
	if len(data) == 0 {
		return nil, uc.rejection(resume.ErrInvalidFileType)
	}

	if resume.IsGeneric(input.ContentType) {
		sniffed := resume.SniffContentType(data)
		switch {
		case resume.IsAllowed(sniffed):
			mimeType = sniffed
		case mimeType == "" || !resume.IsContainer(sniffed):
			return nil, uc.rejection(fmt.Errorf("%w: content looks like %s", resume.ErrInvalidFileType, sniffed))
		}
	}

	now := time.Now().UTC()
	portfolioID := portfolio.NewSessionID(now)
	key := resume.StorageKey(portfolioID, mimeType, now)
	log := uc.logger.With(zap.String("portfolio_id", portfolioID), zap.String("mime_type", mimeType))
	span.SetAttributes(attribute.String("portfolio_id", portfolioID), attribute.String("mime_type", mimeType))

	resumeURL, err := uc.storage.Upload(ctx, bytes.NewReader(data), key, mimeType)
	if err != nil {
		log.Error("Failed to store resume", err, zap.String("key", key))
		span.RecordError(err)
		metrics.ResumeUploads.WithLabelValues(metrics.OutcomeStorageError).Inc()
		return nil, apperror.NewAppError(apperror.ErrInternal, MsgUploadFailed, DetailUploadFailed, err)
	}

	text, err := uc.extractor.ExtractText(mimeType, data)
	if err != nil {
		log.Warn("Text extraction failed, portfolio will use default data", zap.Error(err))
		text = ""
	}

	if uc.publisher != nil {
		payload := event.ResumeEventPayload{
			EventType:   event.ResumeEventTypeUploaded,
			PortfolioID: portfolioID,
			OwnerID:     input.OwnerID,
			ResumeURL:   resumeURL,
			StorageKey:  key,
			MimeType:    mimeType,
			ResumeText:  text,
		}
		pubErr := uc.publisher.PublishResumeEvent(ctx, payload)
		if pubErr == nil {
			metrics.ResumeUploads.WithLabelValues(metrics.OutcomeAccepted).Inc()
			log.Info("Resume queued for processing")
			return &UploadResumeOutput{PortfolioID: portfolioID, Status: StatusProcessing, ResumeURL: resumeURL}, nil
		}
		log.Error("Failed to publish 'resume.uploaded' event, processing inline", pubErr)
	}

	_, err = uc.processor.Execute(ctx, ProcessResumeInput{
		PortfolioID: portfolioID,
		OwnerID:     input.OwnerID,
		ResumeText:  text,
		ResumeURL:   resumeURL,
	})
	if err != nil {
		go func() {
			if delErr := uc.storage.Delete(context.Background(), key); delErr != nil {
				uc.logger.Error("Failed to delete orphaned resume", delErr, zap.String("key", key))
			}
		}()
		metrics.ResumeUploads.WithLabelValues(metrics.OutcomeError).Inc()
		return nil, apperror.NewAppError(apperror.ErrInternal, MsgUploadFailed, DetailUploadFailed, err)
	}

	metrics.ResumeUploads.WithLabelValues(metrics.OutcomeAccepted).Inc()
	return &UploadResumeOutput{PortfolioID: portfolioID, Status: StatusReady, ResumeURL: resumeURL}, nil
}

func (uc *UploadResumeUseCase) rejection(err error) error {
	switch {
	case errors.Is(err, resume.ErrFileTooLarge):
		metrics.ResumeUploads.WithLabelValues(metrics.OutcomeTooLarge).Inc()
		return apperror.NewPayloadTooLarge(MsgFileTooLarge, TooLargeDetail(uc.maxBytes))
	default:
		metrics.ResumeUploads.WithLabelValues(metrics.OutcomeInvalidType).Inc()
		return apperror.NewUnsupportedMediaType(MsgInvalidFileType, DetailInvalidFileType)
	}
}

// TooLargeDetail renders the size limit the way users read it.
func TooLargeDetail(maxBytes int64) string {
	return fmt.Sprintf("Please upload a file smaller than %s.", resume.SizeLabel(maxBytes))
}
