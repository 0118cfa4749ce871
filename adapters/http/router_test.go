package http

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"mime/multipart"
	"net/http"
	"net/http/httptest"
	"net/textproto"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	portfolioUC "github.com/khoahotran/portfolio-ai/internal/application/usecase/portfolio"
	"github.com/khoahotran/portfolio-ai/internal/domain/portfolio"
	"github.com/khoahotran/portfolio-ai/internal/domain/resume"
	"github.com/khoahotran/portfolio-ai/pkg/apperror"
	"github.com/khoahotran/portfolio-ai/pkg/auth"
	"github.com/khoahotran/portfolio-ai/pkg/logger"
)

const testBaseURL = "https://portfolio.test"

var testPDF = []byte("%PDF-1.4\n1 0 obj\n<< /Type /Catalog >>\nendobj\ntrailer\n%%EOF\n")

type stubRepo struct {
	mu    sync.Mutex
	items map[string]*portfolio.Portfolio
}

func (r *stubRepo) Save(_ context.Context, p *portfolio.Portfolio) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if _, ok := r.items[p.ID]; ok {
		return apperror.NewConflict("portfolio", "id", p.ID)
	}
	r.items[p.ID] = p
	return nil
}

func (r *stubRepo) FindByID(_ context.Context, id string) (*portfolio.Portfolio, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	p, ok := r.items[id]
	if !ok {
		return nil, apperror.NewNotFound("portfolio", id)
	}
	return p, nil
}

func (r *stubRepo) ListByOwner(_ context.Context, ownerID uuid.UUID, _, _ int) ([]*portfolio.Portfolio, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	out := []*portfolio.Portfolio{}
	for _, p := range r.items {
		if p.OwnerID != nil && *p.OwnerID == ownerID {
			out = append(out, p)
		}
	}
	return out, nil
}

type stubStorage struct {
	mu      sync.Mutex
	uploads int
}

func (s *stubStorage) Upload(_ context.Context, file io.Reader, key string, _ string) (string, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.uploads++
	_, _ = io.Copy(io.Discard, file)
	return "https://storage.test/" + key, nil
}

func (s *stubStorage) Delete(context.Context, string) error { return nil }

type stubParser struct{ out string }

func (p stubParser) ParseResume(_ context.Context, _ string) (*portfolio.Resume, error) {
	return portfolio.DecodeResume(p.out)
}

type stubExtractor struct{}

func (stubExtractor) ExtractText(string, []byte) (string, error) {
	return "Jane Doe\nBackend Engineer", nil
}

type testApp struct {
	router  *gin.Engine
	repo    *stubRepo
	storage *stubStorage
	jwt     *auth.JWTService
	limiter *RateLimiter
}

func newTestApp(t *testing.T, parserOut string, maxBytes int64, perMin int, opts ...func(*RouterDeps)) *testApp {
	t.Helper()
	gin.SetMode(gin.TestMode)
	log := logger.NewNopLogger()

	app := &testApp{
		repo:    &stubRepo{items: map[string]*portfolio.Portfolio{}},
		storage: &stubStorage{},
		jwt:     auth.NewJWTService("test-secret", time.Hour),
		limiter: NewRateLimiter(perMin, 1, log),
	}
	t.Cleanup(app.limiter.Stop)

	processUC := portfolioUC.NewProcessResumeUseCase(app.repo, stubParser{out: parserOut}, log)
	uploadUC := portfolioUC.NewUploadResumeUseCase(app.storage, stubExtractor{}, processUC, nil, maxBytes, log)
	getUC := portfolioUC.NewGetPortfolioUseCase(app.repo, log)
	listUC := portfolioUC.NewListOwnerPortfoliosUseCase(app.repo, log)
	parseUC := portfolioUC.NewParseResumeTextUseCase(stubParser{out: parserOut}, 0, log)

	deps := RouterDeps{
		Upload:      NewUploadHandler(uploadUC, testBaseURL, log),
		Portfolio:   NewPortfolioHandler(getUC, listUC, testBaseURL, uploadUC.MaxBytes(), log),
		Parse:       NewParseHandler(parseUC, log),
		Auth:        NewAuthHandler(nil, log),
		JWT:         app.jwt,
		RateLimiter: app.limiter,
		Logger:      log,
	}
	for _, opt := range opts {
		opt(&deps)
	}
	router, err := NewRouter(deps)
	require.NoError(t, err)
	app.router = router
	return app
}

func multipartBody(t *testing.T, filename, contentType string, data []byte) (*bytes.Buffer, string) {
	t.Helper()
	body := &bytes.Buffer{}
	w := multipart.NewWriter(body)

	h := make(textproto.MIMEHeader)
	h.Set("Content-Disposition", fmt.Sprintf(`form-data; name="file"; filename="%s"`, filename))
	h.Set("Content-Type", contentType)
	part, err := w.CreatePart(h)
	require.NoError(t, err)
	_, err = part.Write(data)
	require.NoError(t, err)
	require.NoError(t, w.Close())
	return body, w.FormDataContentType()
}

func (a *testApp) upload(t *testing.T, path, filename, contentType string, data []byte, header http.Header) *httptest.ResponseRecorder {
	t.Helper()
	body, ct := multipartBody(t, filename, contentType, data)
	req := httptest.NewRequest(http.MethodPost, path, body)
	req.Header.Set("Content-Type", ct)
	for k, v := range header {
		req.Header[k] = v
	}
	rr := httptest.NewRecorder()
	a.router.ServeHTTP(rr, req)
	return rr
}

func (a *testApp) postJSON(path, body string) *httptest.ResponseRecorder {
	req := httptest.NewRequest(http.MethodPost, path, strings.NewReader(body))
	req.Header.Set("Content-Type", "application/json")
	rr := httptest.NewRecorder()
	a.router.ServeHTTP(rr, req)
	return rr
}

func (a *testApp) get(path string, header http.Header) *httptest.ResponseRecorder {
	req := httptest.NewRequest(http.MethodGet, path, nil)
	for k, v := range header {
		req.Header[k] = v
	}
	rr := httptest.NewRecorder()
	a.router.ServeHTTP(rr, req)
	return rr
}

const validResumeJSON = `{"name":"Jane Doe","title":"Backend Engineer","summary":"Builds services.","skills":["Go","SQL"],
"experience":[{"company":"Acme","role":"Engineer","years":"2020 - Present","details":"Payments."}],
"projects":[],"contactLinks":[{"type":"Email","url":"mailto:jane@example.com"},{"type":"GitHub","url":"https://github.com/jane"}]}`

func TestUploadThenFetch(t *testing.T) {
	app := newTestApp(t, validResumeJSON, 0, 0)

	rr := app.upload(t, "/api/resumes", "cv.pdf", resume.MimePDF, testPDF, nil)
	require.Equal(t, http.StatusCreated, rr.Code, rr.Body.String())

	var created UploadResumeResponse
	require.NoError(t, json.Unmarshal(rr.Body.Bytes(), &created))
	assert.Equal(t, "ready", created.Status)
	assert.Equal(t, testBaseURL+"/portfolio/"+created.PortfolioID, created.PageURL)
	assert.True(t, strings.HasPrefix(created.ResumeURL, "https://storage.test/"+created.PortfolioID+"/resume_"))

	rr = app.get("/api/portfolios/"+created.PortfolioID, nil)
	require.Equal(t, http.StatusOK, rr.Code)
	assert.NotContains(t, rr.Body.String(), "resume_url")
	assert.NotContains(t, rr.Body.String(), "storage.test")
	var dto PortfolioDTO
	require.NoError(t, json.Unmarshal(rr.Body.Bytes(), &dto))
	assert.Equal(t, "Jane Doe", dto.Name)
	assert.Equal(t, "parsed", dto.ParseStatus)
	assert.Len(t, dto.ContactLinks, 2)
	assert.NotNil(t, dto.Projects)

	rr = app.get("/portfolio/"+created.PortfolioID, nil)
	require.Equal(t, http.StatusOK, rr.Code)
	page := rr.Body.String()
	assert.Contains(t, page, "Jane Doe")
	assert.Contains(t, page, "Professional Experience")
	assert.Contains(t, page, "jane@example.com")
	assert.NotContains(t, page, "Featured Projects")
}

func TestUploadWithMalformedParserOutputShowsDefaultProfile(t *testing.T) {
	app := newTestApp(t, "I could not parse that resume.", 0, 0)

	rr := app.upload(t, "/api/resumes", "cv.pdf", resume.MimePDF, testPDF, nil)
	require.Equal(t, http.StatusCreated, rr.Code)
	var created UploadResumeResponse
	require.NoError(t, json.Unmarshal(rr.Body.Bytes(), &created))

	rr = app.get("/portfolio/"+created.PortfolioID, nil)
	require.Equal(t, http.StatusOK, rr.Code)
	assert.Contains(t, rr.Body.String(), "Professional User")
	assert.Contains(t, rr.Body.String(), "sample content")
}

func TestPortfolioPage_UnknownIDShowsPlaceholder(t *testing.T) {
	app := newTestApp(t, validResumeJSON, 0, 0)

	rr := app.get("/portfolio/session_1700000000000_unknown00", nil)
	assert.Equal(t, http.StatusNotFound, rr.Code)
	assert.Contains(t, rr.Body.String(), "Portfolio generation in progress")
	assert.Contains(t, rr.Body.String(), "Upload Another Resume")

	rr = app.get("/api/portfolios/session_1700000000000_unknown00", nil)
	assert.Equal(t, http.StatusNotFound, rr.Code)
}

func TestUploadRejectsWrongType(t *testing.T) {
	app := newTestApp(t, validResumeJSON, 0, 0)

	rr := app.upload(t, "/api/resumes", "photo.png", "image/png", []byte{0x89, 'P', 'N', 'G'}, nil)
	assert.Equal(t, http.StatusUnsupportedMediaType, rr.Code)

	var body map[string]string
	require.NoError(t, json.Unmarshal(rr.Body.Bytes(), &body))
	assert.Equal(t, portfolioUC.MsgInvalidFileType, body["message"])
	assert.Equal(t, portfolioUC.DetailInvalidFileType, body["details"])
	assert.Equal(t, 0, app.storage.uploads)
}

func TestUploadRejectsLargeFile(t *testing.T) {
	app := newTestApp(t, validResumeJSON, 1024, 0)

	data := append(append([]byte{}, testPDF...), bytes.Repeat([]byte("a"), 2048)...)
	rr := app.upload(t, "/api/resumes", "cv.pdf", resume.MimePDF, data, nil)
	assert.Equal(t, http.StatusRequestEntityTooLarge, rr.Code)
	assert.Equal(t, 0, app.storage.uploads)
}

func TestUploadRequiresFile(t *testing.T) {
	app := newTestApp(t, validResumeJSON, 0, 0)

	req := httptest.NewRequest(http.MethodPost, "/api/resumes", strings.NewReader("nothing"))
	req.Header.Set("Content-Type", "text/plain")
	rr := httptest.NewRecorder()
	app.router.ServeHTTP(rr, req)

	assert.Equal(t, http.StatusBadRequest, rr.Code)
}

func TestUploadForm(t *testing.T) {
	app := newTestApp(t, validResumeJSON, 0, 0)

	rr := app.upload(t, "/upload", "cv.pdf", resume.MimePDF, testPDF, nil)
	require.Equal(t, http.StatusSeeOther, rr.Code)
	assert.Regexp(t, `^/portfolio/session_\d+_[0-9a-z]{9}$`, rr.Header().Get("Location"))

	rr = app.upload(t, "/upload", "notes.txt", "text/plain", []byte("hello"), nil)
	assert.Equal(t, http.StatusUnsupportedMediaType, rr.Code)
	assert.Contains(t, rr.Body.String(), "Invalid file type")
	assert.Contains(t, rr.Body.String(), "Please upload a PDF or Word document.")
}

func TestUploadForm_MissingFile(t *testing.T) {
	app := newTestApp(t, validResumeJSON, 0, 0)

	body := &bytes.Buffer{}
	w := multipart.NewWriter(body)
	require.NoError(t, w.WriteField("note", "no file here"))
	require.NoError(t, w.Close())
	req := httptest.NewRequest(http.MethodPost, "/upload", body)
	req.Header.Set("Content-Type", w.FormDataContentType())
	rr := httptest.NewRecorder()
	app.router.ServeHTTP(rr, req)

	assert.Equal(t, http.StatusBadRequest, rr.Code)
	assert.Contains(t, rr.Header().Get("Content-Type"), "text/html")
	assert.Contains(t, rr.Body.String(), msgNoFile)
	assert.Contains(t, rr.Body.String(), detailNoFile)
	assert.NotContains(t, rr.Body.String(), "Invalid file type")
}

func TestUploadForm_RateLimitedRendersForm(t *testing.T) {
	app := newTestApp(t, validResumeJSON, 0, 1)

	rr := app.upload(t, "/upload", "cv.pdf", resume.MimePDF, testPDF, nil)
	require.Equal(t, http.StatusSeeOther, rr.Code)

	rr = app.upload(t, "/upload", "cv.pdf", resume.MimePDF, testPDF, nil)
	assert.Equal(t, http.StatusTooManyRequests, rr.Code)
	assert.Contains(t, rr.Header().Get("Content-Type"), "text/html")
	assert.Contains(t, rr.Body.String(), "Too many requests")
	assert.Contains(t, rr.Body.String(), `<form action="/upload"`)
	assert.Equal(t, 1, app.storage.uploads)
}

func TestUploadForm_SmallLimitIsReadable(t *testing.T) {
	app := newTestApp(t, validResumeJSON, 1024, 0)

	rr := app.get("/", nil)
	require.Equal(t, http.StatusOK, rr.Code)
	assert.Contains(t, rr.Body.String(), "up to 1KB")

	data := append(append([]byte{}, testPDF...), bytes.Repeat([]byte("a"), 2048)...)
	rr = app.upload(t, "/upload", "cv.pdf", resume.MimePDF, data, nil)
	assert.Equal(t, http.StatusRequestEntityTooLarge, rr.Code)
	assert.Contains(t, rr.Body.String(), "smaller than 1KB")
	assert.NotContains(t, rr.Body.String(), "0MB")
}

func TestIndexPage(t *testing.T) {
	app := newTestApp(t, validResumeJSON, 0, 0)

	rr := app.get("/", nil)
	require.Equal(t, http.StatusOK, rr.Code)
	assert.Contains(t, rr.Body.String(), "up to 5MB")
}

func TestUploadRateLimited(t *testing.T) {
	app := newTestApp(t, validResumeJSON, 0, 1)

	rr := app.upload(t, "/api/resumes", "cv.pdf", resume.MimePDF, testPDF, nil)
	require.Equal(t, http.StatusCreated, rr.Code)

	rr = app.upload(t, "/api/resumes", "cv.pdf", resume.MimePDF, testPDF, nil)
	assert.Equal(t, http.StatusTooManyRequests, rr.Code)
	assert.Equal(t, 1, app.storage.uploads)
}

func TestUploadRateLimit_IgnoresForwardedForFromUntrustedPeer(t *testing.T) {
	app := newTestApp(t, validResumeJSON, 0, 1)

	codes := make([]int, 0, 4)
	for i := range 4 {
		header := http.Header{"X-Forwarded-For": []string{fmt.Sprintf("203.0.113.%d", i+1)}}
		rr := app.upload(t, "/api/resumes", "cv.pdf", resume.MimePDF, testPDF, header)
		codes = append(codes, rr.Code)
	}

	assert.Equal(t, []int{http.StatusCreated, http.StatusTooManyRequests, http.StatusTooManyRequests, http.StatusTooManyRequests}, codes)
	assert.Equal(t, 1, app.storage.uploads)
}

func TestUploadRateLimit_TrustedProxyForwardsClientIP(t *testing.T) {
	// httptest requests come from 192.0.2.1
	app := newTestApp(t, validResumeJSON, 0, 1, func(d *RouterDeps) {
		d.TrustedProxies = []string{"192.0.2.0/24"}
	})

	for i := range 2 {
		header := http.Header{"X-Forwarded-For": []string{fmt.Sprintf("203.0.113.%d", i+1)}}
		rr := app.upload(t, "/api/resumes", "cv.pdf", resume.MimePDF, testPDF, header)
		assert.Equal(t, http.StatusCreated, rr.Code)
	}
	assert.Equal(t, 2, app.storage.uploads)
}

func TestNewRouter_InvalidTrustedProxy(t *testing.T) {
	_, err := NewRouter(RouterDeps{
		Logger:         logger.NewNopLogger(),
		TrustedProxies: []string{"not-an-address"},
	})
	assert.Error(t, err)
}

func TestParseResumeEndpoint(t *testing.T) {
	app := newTestApp(t, validResumeJSON, 0, 0)

	rr := app.postJSON("/api/parse-resume", `{"resumeText":"Jane Doe, Backend Engineer"}`)
	require.Equal(t, http.StatusOK, rr.Code, rr.Body.String())

	var parsed map[string]any
	require.NoError(t, json.Unmarshal(rr.Body.Bytes(), &parsed))
	assert.Equal(t, "Jane Doe", parsed["name"])
	assert.Contains(t, parsed, "contactLinks")
	assert.Len(t, parsed["contactLinks"], 2)
	assert.Equal(t, 0, app.storage.uploads)
	assert.Empty(t, app.repo.items)
}

func TestParseResumeEndpoint_MalformedOutput(t *testing.T) {
	app := newTestApp(t, "Sorry, I cannot help with that.", 0, 0)

	rr := app.postJSON("/api/parse-resume", `{"resumeText":"Jane Doe"}`)
	assert.Equal(t, http.StatusInternalServerError, rr.Code)

	var body map[string]string
	require.NoError(t, json.Unmarshal(rr.Body.Bytes(), &body))
	assert.NotEmpty(t, body["error"])
	assert.Equal(t, portfolioUC.MsgInvalidModelOutput, body["message"])
}

func TestParseResumeEndpoint_RequiresText(t *testing.T) {
	app := newTestApp(t, validResumeJSON, 0, 0)

	rr := app.postJSON("/api/parse-resume", `{}`)
	assert.Equal(t, http.StatusBadRequest, rr.Code)

	rr = app.postJSON("/api/parse-resume", `{"resumeText":"   "}`)
	assert.Equal(t, http.StatusBadRequest, rr.Code)
}

func TestAuthenticatedUploadIsListed(t *testing.T) {
	app := newTestApp(t, validResumeJSON, 0, 0)
	userID := uuid.New()
	token, err := app.jwt.GenerateToken(userID, "jane@example.com")
	require.NoError(t, err)
	authHeader := http.Header{"Authorization": []string{"Bearer " + token}}

	rr := app.upload(t, "/api/resumes", "cv.pdf", resume.MimePDF, testPDF, authHeader)
	require.Equal(t, http.StatusCreated, rr.Code)

	rr = app.get("/api/me/portfolios", authHeader)
	require.Equal(t, http.StatusOK, rr.Code)
	var list struct {
		Items []PortfolioSummaryDTO `json:"items"`
	}
	require.NoError(t, json.Unmarshal(rr.Body.Bytes(), &list))
	require.Len(t, list.Items, 1)
	assert.Equal(t, "Jane Doe", list.Items[0].Name)
	assert.True(t, strings.HasPrefix(list.Items[0].ResumeURL, "https://storage.test/"))
}

func TestProtectedRoutes(t *testing.T) {
	app := newTestApp(t, validResumeJSON, 0, 0)

	rr := app.get("/api/me/portfolios", nil)
	assert.Equal(t, http.StatusUnauthorized, rr.Code)

	rr = app.get("/api/me/portfolios", http.Header{"Authorization": []string{"Bearer not-a-token"}})
	assert.Equal(t, http.StatusUnauthorized, rr.Code)

	// an invalid token is rejected even where auth is optional
	rr = app.upload(t, "/api/resumes", "cv.pdf", resume.MimePDF, testPDF, http.Header{"Authorization": []string{"Token abc"}})
	assert.Equal(t, http.StatusUnauthorized, rr.Code)
}

func TestHealth(t *testing.T) {
	app := newTestApp(t, validResumeJSON, 0, 0)

	rr := app.get("/health", nil)
	assert.Equal(t, http.StatusOK, rr.Code)
	assert.JSONEq(t, `{"status":"UP"}`, rr.Body.String())
}
