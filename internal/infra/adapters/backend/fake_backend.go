package backend

import (
	"context"
	"sync"
	"time"

	"parallel-muhit-webapp/internal/domain"
	"parallel-muhit-webapp/internal/domain/model"
	"parallel-muhit-webapp/internal/domain/ports/adapter"

	"github.com/shopspring/decimal"
)

var _ adapter.BackendClient = (*FakeBackend)(nil)

// FakeBackend is an in-memory backend for dev mode and tests. Any key
// except RejectedKey is accepted.
type FakeBackend struct {
	mu sync.Mutex

	Profile      model.UserProfile
	FAQs         []model.FAQ
	Transactions []model.Transaction
	RejectedKey  string
	UploadErr    error
	FAQErr       error

	calls    map[string]int
	receipts []*model.ReceiptFile
}

func NewFakeBackend() *FakeBackend {
	base := time.Date(2025, 1, 5, 10, 0, 0, 0, time.UTC)
	txs := make([]model.Transaction, 0, 23)
	for i := 0; i < 23; i++ {
		txs = append(txs, model.Transaction{
			Amount:    decimal.NewFromInt(67000),
			CreatedAt: base.AddDate(0, -i, 0),
		})
	}
	return &FakeBackend{
		Profile: model.UserProfile{IsSubscribed: false, RestOfDays: 5},
		FAQs: []model.FAQ{
			{Question: "Obunani qanday yangilayman?", Answer: "To'lov chekini bosh sahifadan yuklang."},
			{Question: "Chek qachon tekshiriladi?", Answer: "Odatda 24 soat ichida."},
		},
		Transactions: txs,
		RejectedKey:  "invalid",
		calls:        map[string]int{},
	}
}

// Calls returns how many times endpoint was hit.
func (f *FakeBackend) Calls(endpoint string) int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.calls[endpoint]
}

// Receipts returns the files accepted so far.
func (f *FakeBackend) Receipts() []*model.ReceiptFile {
	f.mu.Lock()
	defer f.mu.Unlock()
	return append([]*model.ReceiptFile(nil), f.receipts...)
}

func (f *FakeBackend) hit(endpoint string) {
	if f.calls == nil {
		f.calls = map[string]int{}
	}
	f.calls[endpoint]++
}

func (f *FakeBackend) auth(apiKey string) error {
	if apiKey == "" {
		return domain.ErrMissingCredential
	}
	if f.RejectedKey != "" && apiKey == f.RejectedKey {
		return domain.ErrUnauthenticated
	}
	return nil
}

func (f *FakeBackend) GetProfile(ctx context.Context, apiKey string) (*model.UserProfile, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if apiKey == "" {
		return nil, domain.ErrMissingCredential
	}
	f.hit("profile")
	if err := f.auth(apiKey); err != nil {
		return nil, err
	}
	p := f.Profile
	return &p, nil
}

func (f *FakeBackend) GetFAQs(ctx context.Context) ([]model.FAQ, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.hit("faq")
	if f.FAQErr != nil {
		return nil, f.FAQErr
	}
	return append([]model.FAQ(nil), f.FAQs...), nil
}

func (f *FakeBackend) GetTransactionHistory(ctx context.Context, apiKey string, page int) (*model.TransactionPage, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if apiKey == "" {
		return nil, domain.ErrMissingCredential
	}
	f.hit("history")
	if err := f.auth(apiKey); err != nil {
		return nil, err
	}
	if page < 1 {
		page = 1
	}
	start := (page - 1) * model.HistoryPageSize
	end := start + model.HistoryPageSize
	if start > len(f.Transactions) {
		start = len(f.Transactions)
	}
	if end > len(f.Transactions) {
		end = len(f.Transactions)
	}
	return &model.TransactionPage{
		Count:   len(f.Transactions),
		Results: append([]model.Transaction(nil), f.Transactions[start:end]...),
	}, nil
}

func (f *FakeBackend) UploadPaymentReceipt(ctx context.Context, apiKey string, file *model.ReceiptFile) (*model.UploadResult, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if apiKey == "" {
		return nil, domain.ErrMissingCredential
	}
	f.hit("payment_check")
	if err := f.auth(apiKey); err != nil {
		return nil, err
	}
	if f.UploadErr != nil {
		return nil, f.UploadErr
	}
	f.receipts = append(f.receipts, file)
	return &model.UploadResult{OK: true}, nil
}
