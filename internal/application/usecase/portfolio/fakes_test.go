package portfolio

import (
	"context"
	"errors"
	"io"
	"sort"
	"sync"

	"github.com/google/uuid"

	"github.com/khoahotran/portfolio-ai/adapters/event"
	"github.com/khoahotran/portfolio-ai/internal/domain/portfolio"
	"github.com/khoahotran/portfolio-ai/pkg/apperror"
)

type memoryRepo struct {
	mu      sync.Mutex
	items   map[string]*portfolio.Portfolio
	saves   int
	saveErr error
	offsets []int
}

func newMemoryRepo() *memoryRepo {
	return &memoryRepo{items: map[string]*portfolio.Portfolio{}}
}

func (r *memoryRepo) Save(_ context.Context, p *portfolio.Portfolio) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.saveErr != nil {
		return r.saveErr
	}
	if _, ok := r.items[p.ID]; ok {
		return apperror.NewConflict("portfolio", "id", p.ID)
	}
	cp := *p
	r.items[p.ID] = &cp
	r.saves++
	return nil
}

func (r *memoryRepo) FindByID(_ context.Context, id string) (*portfolio.Portfolio, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	p, ok := r.items[id]
	if !ok {
		return nil, apperror.NewNotFound("portfolio", id)
	}
	cp := *p
	return &cp, nil
}

func (r *memoryRepo) ListByOwner(_ context.Context, ownerID uuid.UUID, limit, offset int) ([]*portfolio.Portfolio, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.offsets = append(r.offsets, offset)
	var out []*portfolio.Portfolio
	for _, p := range r.items {
		if p.OwnerID != nil && *p.OwnerID == ownerID {
			out = append(out, p)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].CreatedAt.After(out[j].CreatedAt) })
	if offset >= len(out) {
		return []*portfolio.Portfolio{}, nil
	}
	out = out[offset:]
	if len(out) > limit {
		out = out[:limit]
	}
	return out, nil
}

type fakeStorage struct {
	mu        sync.Mutex
	objects   map[string][]byte
	uploads   int
	deletes   []string
	uploadErr error
}

func newFakeStorage() *fakeStorage {
	return &fakeStorage{objects: map[string][]byte{}}
}

func (s *fakeStorage) Upload(_ context.Context, file io.Reader, key string, _ string) (string, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.uploads++
	if s.uploadErr != nil {
		return "", s.uploadErr
	}
	data, err := io.ReadAll(file)
	if err != nil {
		return "", err
	}
	s.objects[key] = data
	return "https://storage.test/" + key, nil
}

func (s *fakeStorage) Delete(_ context.Context, key string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.objects, key)
	s.deletes = append(s.deletes, key)
	return nil
}

func (s *fakeStorage) uploadCount() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.uploads
}

func (s *fakeStorage) deleteCount() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.deletes)
}

func (s *fakeStorage) keys() []string {
	s.mu.Lock()
	defer s.mu.Unlock()
	keys := make([]string, 0, len(s.objects))
	for k := range s.objects {
		keys = append(keys, k)
	}
	return keys
}

type fakeParser struct {
	mu     sync.Mutex
	result *portfolio.Resume
	err    error
	calls  int
	texts  []string
}

func (p *fakeParser) ParseResume(_ context.Context, text string) (*portfolio.Resume, error) {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.calls++
	p.texts = append(p.texts, text)
	if p.err != nil {
		return nil, p.err
	}
	if p.result == nil {
		return nil, nil
	}
	cp := *p.result
	return &cp, nil
}

type fakeExtractor struct {
	text string
	err  error
}

func (e fakeExtractor) ExtractText(_ string, _ []byte) (string, error) {
	return e.text, e.err
}

type fakePublisher struct {
	mu     sync.Mutex
	events []event.ResumeEventPayload
	err    error
}

func (p *fakePublisher) PublishResumeEvent(_ context.Context, payload event.ResumeEventPayload) error {
	p.mu.Lock()
	defer p.mu.Unlock()
	if p.err != nil {
		return p.err
	}
	p.events = append(p.events, payload)
	return nil
}

var errBoom = errors.New("boom")

func sampleResume() *portfolio.Resume {
	return &portfolio.Resume{
		Name:    "Jane Doe",
		Title:   "Backend Engineer",
		Summary: "Builds reliable services.",
		Skills:  []string{"Go", "PostgreSQL"},
		Experience: []portfolio.Experience{
			{Company: "Acme", Role: "Engineer", Years: "2020 - Present", Details: "Payments."},
		},
		Projects:     []portfolio.Project{},
		ContactLinks: []portfolio.ContactLink{{Type: "Email", URL: "mailto:jane@example.com"}},
		Education:    []portfolio.Education{},
	}
}
