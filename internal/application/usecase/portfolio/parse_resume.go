package portfolio

import (
	"context"
	"errors"
	"strings"

	"go.uber.org/zap"

	"github.com/khoahotran/portfolio-ai/internal/application/service"
	"github.com/khoahotran/portfolio-ai/internal/domain/portfolio"
	"github.com/khoahotran/portfolio-ai/pkg/apperror"
	"github.com/khoahotran/portfolio-ai/pkg/logger"
)

const MsgInvalidModelOutput = "Invalid JSON response from AI"

// ParseResumeTextUseCase runs the parser on caller supplied text without
// storing anything. Unlike ProcessResume it reports parser failures instead
// of falling back to the default profile.
type ParseResumeTextUseCase struct {
	parser   service.ResumeParser
	maxChars int
	logger   logger.Logger
}

func NewParseResumeTextUseCase(parser service.ResumeParser, maxChars int, log logger.Logger) *ParseResumeTextUseCase {
	return &ParseResumeTextUseCase{parser: parser, maxChars: maxChars, logger: log}
}

type ParseResumeTextInput struct {
	ResumeText string
}

type ParseResumeTextOutput struct {
	Resume portfolio.Resume
}

func (uc *ParseResumeTextUseCase) Execute(ctx context.Context, input ParseResumeTextInput) (*ParseResumeTextOutput, error) {
	ctx, span := tracer.Start(ctx, "ParseResumeText")
	defer span.End()

	text := strings.TrimSpace(input.ResumeText)
	if text == "" {
		return nil, apperror.NewInvalidInput("'resumeText' is required", nil)
	}
	if uc.maxChars > 0 && len([]rune(text)) > uc.maxChars {
		text = string([]rune(text)[:uc.maxChars])
	}

	parsed, err := uc.parser.ParseResume(ctx, text)
	if err != nil || parsed == nil {
		span.RecordError(err)
		uc.logger.Warn("Resume text parsing failed", zap.Error(err))
		if errors.Is(err, portfolio.ErrMalformedResume) {
			return nil, apperror.NewAppError(apperror.ErrInternal, MsgInvalidModelOutput, "", err)
		}
		return nil, apperror.NewInternal("failed to parse resume", err)
	}

	parsed.Normalize()
	return &ParseResumeTextOutput{Resume: *parsed}, nil
}
