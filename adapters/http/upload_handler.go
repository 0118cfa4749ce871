package http

import (
	"errors"
	"mime/multipart"
	"net/http"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	portfolioUC "github.com/khoahotran/portfolio-ai/internal/application/usecase/portfolio"
	"github.com/khoahotran/portfolio-ai/internal/domain/resume"
	"github.com/khoahotran/portfolio-ai/pkg/apperror"
	"github.com/khoahotran/portfolio-ai/pkg/logger"
)

// room for multipart boundaries and the other form fields
const multipartOverhead = 1 << 20

// Notices for a form post that carried no usable file.
const (
	msgNoFile    = "No file selected"
	detailNoFile = "Please choose a PDF or Word document to upload."
)

type UploadHandler struct {
	uploadUC *portfolioUC.UploadResumeUseCase
	baseURL  string
	logger   logger.Logger
}

func NewUploadHandler(uploadUC *portfolioUC.UploadResumeUseCase, baseURL string, log logger.Logger) *UploadHandler {
	return &UploadHandler{uploadUC: uploadUC, baseURL: baseURL, logger: log}
}

// UploadResume is the API endpoint. 201 when the portfolio is ready, 202
// when it was queued.
func (h *UploadHandler) UploadResume(c *gin.Context) {
	out, err := h.upload(c)
	if err != nil {
		c.Error(err)
		return
	}

	status := http.StatusCreated
	if out.Status == portfolioUC.StatusProcessing {
		status = http.StatusAccepted
	}
	c.JSON(status, UploadResumeResponse{
		PortfolioID: out.PortfolioID,
		Status:      string(out.Status),
		PageURL:     h.baseURL + pagePath(out.PortfolioID),
		ResumeURL:   out.ResumeURL,
	})
}

// UploadResumeForm backs the landing page form. Success redirects to the
// portfolio page, failures are rendered by FormErrorPage.
func (h *UploadHandler) UploadResumeForm(c *gin.Context) {
	out, err := h.upload(c)
	if err != nil {
		c.Error(err)
		return
	}
	c.Redirect(http.StatusSeeOther, pagePath(out.PortfolioID))
}

// FormErrorPage renders any error raised further down the chain, the rate
// limiter included, as the upload form with a notice instead of JSON.
func (h *UploadHandler) FormErrorPage(c *gin.Context) {
	c.Next()

	if len(c.Errors) == 0 || c.Writer.Written() {
		return
	}
	err := c.Errors.Last().Err
	status, title, detail := formError(err)
	if status >= http.StatusInternalServerError {
		h.logger.Error("Form upload failed", err)
	} else {
		h.logger.Warn("Form upload rejected", zap.Error(err))
	}
	c.HTML(status, tmplIndex, indexView{
		MaxSize:     resume.SizeLabel(h.uploadUC.MaxBytes()),
		ErrorTitle:  title,
		ErrorDetail: detail,
	})
}

func (h *UploadHandler) upload(c *gin.Context) (*portfolioUC.UploadResumeOutput, error) {
	maxBytes := h.uploadUC.MaxBytes()
	c.Request.Body = http.MaxBytesReader(c.Writer, c.Request.Body, maxBytes+multipartOverhead)

	fileHeader, err := c.FormFile("file")
	if err != nil {
		var tooLarge *http.MaxBytesError
		if errors.As(err, &tooLarge) {
			return nil, apperror.NewPayloadTooLarge(portfolioUC.MsgFileTooLarge, portfolioUC.TooLargeDetail(maxBytes))
		}
		return nil, apperror.NewInvalidInput("'file' is required", err)
	}

	file, err := fileHeader.Open()
	if err != nil {
		return nil, apperror.NewInternal("failed to open file", err)
	}
	defer file.Close()

	input := portfolioUC.UploadResumeInput{
		Filename:    fileHeader.Filename,
		ContentType: declaredType(fileHeader),
		Size:        fileHeader.Size,
		File:        file,
	}
	if userID, ok := GetUserIDFromGinContext(c); ok {
		id := userID
		input.OwnerID = &id
	}

	out, err := h.uploadUC.Execute(c.Request.Context(), input)
	if err != nil {
		return nil, err
	}
	h.logger.Info("Resume uploaded",
		zap.String("portfolio_id", out.PortfolioID),
		zap.String("status", string(out.Status)),
		zap.Bool("authenticated", input.OwnerID != nil))
	return out, nil
}

func declaredType(fh *multipart.FileHeader) string {
	return fh.Header.Get("Content-Type")
}

// formError maps an upload error to the notice shown above the form. Only
// client errors keep their own wording. Invalid input on this route always
// means the post had no readable file part.
func formError(err error) (int, string, string) {
	var appErr *apperror.AppError
	if errors.As(err, &appErr) {
		status := apperror.ToHTTPStatus(appErr)
		if status < http.StatusInternalServerError {
			if errors.Is(appErr, apperror.ErrInvalidInput) {
				return status, msgNoFile, detailNoFile
			}
			return status, appErr.Message, appErr.Details
		}
	}
	return http.StatusInternalServerError, portfolioUC.MsgUploadFailed, portfolioUC.DetailUploadFailed
}
