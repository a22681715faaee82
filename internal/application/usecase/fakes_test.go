package usecase

import (
	"context"
	"sync"
	"testing"

	"github.com/rs/zerolog"

	"github.com/diillson/finance-dashboard-go/internal/domain/entity"
	"github.com/diillson/finance-dashboard-go/internal/shared/types"
)

type fakeAuth struct {
	mu        sync.Mutex
	cred      entity.Credential
	err       error
	calls     int
	registers int
	lastProof entity.IdentityProof
}

func (f *fakeAuth) Authenticate(ctx context.Context, proof entity.IdentityProof) (entity.Credential, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.calls++
	f.lastProof = proof
	return f.cred, f.err
}

func (f *fakeAuth) Register(ctx context.Context, proof entity.IdentityProof) (entity.Credential, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.registers++
	f.lastProof = proof
	return f.cred, f.err
}

type memStore struct {
	mu      sync.Mutex
	cred    entity.Credential
	loadErr error
	saveErr error
	saves   int
	clears  int
}

func (m *memStore) Load() (entity.Credential, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.cred, m.loadErr
}

func (m *memStore) Save(cred entity.Credential) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.saveErr != nil {
		return m.saveErr
	}
	m.saves++
	m.cred = cred
	return nil
}

func (m *memStore) Clear() error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.clears++
	m.cred = entity.Credential{}
	return nil
}

func (m *memStore) stored() entity.Credential {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.cred
}

// fakeFinance serves canned data. When gate is set, ListTransactions signals on
// started and then blocks until gate is closed.
type fakeFinance struct {
	mu sync.Mutex

	summary    entity.SummarySnapshot
	summaryErr error
	totals     []entity.CategoryTotal
	totalsErr  error
	daily      []entity.DailyAggregate
	dailyErr   error
	page       entity.TransactionPage
	listErr    error
	// tokenErrs overrides listErr for the credential holding that token.
	tokenErrs map[string]error

	createErr   error
	createGate  chan struct{}
	afterCreate func(f *fakeFinance)
	drafts      []entity.TransactionDraft

	extraction entity.ReceiptExtraction
	uploadErr  error

	gate    chan struct{}
	started chan struct{}

	calls       map[string]int
	lastFilter  entity.TransactionFilter
	lastPage    int
	lastToken   string
	startedOnce sync.Once
}

func newFakeFinance() *fakeFinance {
	return &fakeFinance{calls: map[string]int{}}
}

func (f *fakeFinance) count(name string) int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.calls[name]
}

func (f *fakeFinance) record(name string, cred entity.Credential) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.calls[name]++
	f.lastToken = cred.Token
}

func (f *fakeFinance) set(fn func(f *fakeFinance)) {
	f.mu.Lock()
	defer f.mu.Unlock()
	fn(f)
}

func (f *fakeFinance) GetSummary(ctx context.Context, cred entity.Credential) (entity.SummarySnapshot, error) {
	f.record("summary", cred)
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.summary, f.summaryErr
}

func (f *fakeFinance) GetSummaryByCategory(ctx context.Context, cred entity.Credential) ([]entity.CategoryTotal, error) {
	f.record("by-category", cred)
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.totals, f.totalsErr
}

func (f *fakeFinance) GetSummaryByDay(ctx context.Context, cred entity.Credential) ([]entity.DailyAggregate, error) {
	f.record("by-day", cred)
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.daily, f.dailyErr
}

func (f *fakeFinance) ListTransactions(ctx context.Context, cred entity.Credential, page, size int, filter entity.TransactionFilter) (entity.TransactionPage, error) {
	f.record("transactions", cred)
	f.mu.Lock()
	gate, started := f.gate, f.started
	f.lastFilter = filter
	f.lastPage = page
	f.mu.Unlock()

	if gate != nil {
		if started != nil {
			f.startedOnce.Do(func() { close(started) })
		}
		<-gate
	}

	f.mu.Lock()
	defer f.mu.Unlock()
	if err, ok := f.tokenErrs[cred.Token]; ok {
		return entity.TransactionPage{}, err
	}
	return f.page, f.listErr
}

func (f *fakeFinance) CreateTransaction(ctx context.Context, cred entity.Credential, draft entity.TransactionDraft) (entity.TransactionRecord, error) {
	f.record("create", cred)
	f.mu.Lock()
	gate := f.createGate
	f.mu.Unlock()
	if gate != nil {
		<-gate
	}

	f.mu.Lock()
	defer f.mu.Unlock()
	f.drafts = append(f.drafts, draft)
	if f.createErr != nil {
		return entity.TransactionRecord{}, f.createErr
	}
	if f.afterCreate != nil {
		f.afterCreate(f)
	}
	return entity.TransactionRecord{
		ID:          int64(len(f.drafts)),
		Type:        draft.Type,
		Description: draft.Description,
		Amount:      draft.Amount,
		Date:        draft.Date,
	}, nil
}

func (f *fakeFinance) UploadReceipt(ctx context.Context, cred entity.Credential, file entity.ReceiptFile) (entity.ReceiptExtraction, error) {
	f.record("upload", cred)
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.extraction, f.uploadErr
}

func (f *fakeFinance) ListCategories(ctx context.Context, cred entity.Credential) ([]entity.Category, error) {
	f.record("categories", cred)
	return []entity.Category{{ID: 1, Name: "Food"}}, nil
}

func (f *fakeFinance) CreateCategory(ctx context.Context, cred entity.Credential, name string) (entity.Category, error) {
	f.record("create-category", cred)
	return entity.Category{ID: 2, Name: name}, nil
}

func authExpired() error {
	return &types.AppError{Kind: types.KindAuthExpired, Status: 401, Message: "not authorized"}
}

func serverError(msg string) error {
	return &types.AppError{Kind: types.KindServerError, Status: 500, Message: msg}
}

// signedInSession returns a session already holding cred, as if restored at start-up.
func signedInSession(t *testing.T, cred entity.Credential) (*SessionStore, *memStore) {
	t.Helper()
	store := &memStore{cred: cred}
	s := NewSessionStore(&fakeAuth{}, store, zerolog.Nop())
	if _, ok := s.Restore(); !ok {
		t.Fatalf("expected session to restore %+v", cred)
	}
	return s, store
}
