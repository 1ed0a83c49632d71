//go:build !integration

package usecase_test

import (
	"context"
	"sync"
	"testing"
	"time"

	"parallel-muhit-webapp/internal/domain/model"
	"parallel-muhit-webapp/internal/infra/adapters/backend"
	"parallel-muhit-webapp/internal/infra/memory"
	"parallel-muhit-webapp/internal/usecase"
)

// pngBytes starts with the PNG signature so content sniffing sees an image.
var pngBytes = []byte("\x89PNG\r\n\x1a\n\x00\x00\x00\rIHDR fake receipt")

func newPNG(name string) *model.ReceiptFile {
	return &model.ReceiptFile{Name: name, ContentType: "image/png", Data: pngBytes}
}

type fixture struct {
	uc       *usecase.PageController
	backend  *backend.FakeBackend
	sessions *memory.SessionRepo
}

func newFixture(t *testing.T, be *backend.FakeBackend, opts ...usecase.Option) *fixture {
	t.Helper()
	if be == nil {
		be = backend.NewFakeBackend()
	}
	repo := memory.NewSessionRepo(time.Hour)
	uc := usecase.NewPageController(be, repo, memory.NewKeyedLocker(), nil, opts...)
	return &fixture{uc: uc, backend: be, sessions: repo}
}

// mountForUpload mounts a session whose profile offers renewal.
func (f *fixture) mountForUpload(t *testing.T) *model.Session {
	t.Helper()
	f.backend.Profile = model.UserProfile{IsSubscribed: false, RestOfDays: 2}
	s, err := f.uc.Mount(context.Background(), "key")
	if err != nil {
		t.Fatalf("Mount failed: %v", err)
	}
	if !s.Profile.NeedsRenewal() {
		t.Fatalf("expected renewal to be offered, got %+v", s.Profile)
	}
	return s
}

// gatedBackend holds chosen history pages until released, to force
// responses to complete out of order.
type gatedBackend struct {
	*backend.FakeBackend

	mu      sync.Mutex
	gates   map[int]chan struct{}
	entered chan int
}

func newGatedBackend(pages ...int) *gatedBackend {
	g := &gatedBackend{
		FakeBackend: backend.NewFakeBackend(),
		gates:       map[int]chan struct{}{},
		entered:     make(chan int, len(pages)),
	}
	for _, p := range pages {
		g.gates[p] = make(chan struct{})
	}
	return g
}

func (g *gatedBackend) release(page int) {
	g.mu.Lock()
	defer g.mu.Unlock()
	close(g.gates[page])
}

func (g *gatedBackend) GetTransactionHistory(ctx context.Context, apiKey string, page int) (*model.TransactionPage, error) {
	g.mu.Lock()
	gate, ok := g.gates[page]
	g.mu.Unlock()
	if ok {
		g.entered <- page
		select {
		case <-gate:
		case <-ctx.Done():
			return nil, ctx.Err()
		}
	}
	return g.FakeBackend.GetTransactionHistory(ctx, apiKey, page)
}
