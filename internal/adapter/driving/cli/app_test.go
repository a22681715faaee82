package cli

import (
	"errors"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"testing"

	"github.com/rs/zerolog"

	"github.com/diillson/finance-dashboard-go/internal/adapter/driven/api"
	"github.com/diillson/finance-dashboard-go/internal/adapter/driven/config"
	"github.com/diillson/finance-dashboard-go/internal/adapter/driven/export"
	"github.com/diillson/finance-dashboard-go/internal/adapter/driven/session"
	"github.com/diillson/finance-dashboard-go/internal/application/usecase"
	"github.com/diillson/finance-dashboard-go/internal/shared/types"
	"github.com/diillson/finance-dashboard-go/pkg/console"
)

// financeServer is a minimal stand-in for the finance service.
type financeServer struct {
	mu      sync.Mutex
	tokens  []string
	queries []string
}

func (s *financeServer) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	s.mu.Lock()
	s.tokens = append(s.tokens, r.Header.Get("Authorization"))
	if r.URL.Path == "/api/transactions" {
		s.queries = append(s.queries, r.URL.RawQuery)
	}
	s.mu.Unlock()

	w.Header().Set("Content-Type", "application/json")
	switch r.URL.Path {
	case "/api/auth/authenticate":
		w.Write([]byte(`{"token":"jwt-alice","username":"alice","message":"ok"}`))
	case "/api/summary":
		if r.Header.Get("Authorization") != "Bearer jwt-alice" {
			w.WriteHeader(http.StatusForbidden)
			return
		}
		w.Write([]byte(`{"totalIncome":5000,"totalExpense":150,"balance":4850,"username":"alice"}`))
	case "/api/summary/by-category":
		w.Write([]byte(`[{"categoryName":"Food","totalAmount":100,"type":"EXPENSE"}]`))
	case "/api/summary/by-day":
		w.Write([]byte(`[{"date":"2024-05-01","totalIncome":5000,"totalExpense":150}]`))
	case "/api/transactions":
		w.Write([]byte(`{"content":[
			{"id":1,"type":"EXPENSE","description":"Lunch","amount":100,"date":"2024-05-02","category":{"id":1,"name":"Food"}},
			{"id":2,"type":"EXPENSE","description":"Bus","amount":50,"date":"2024-05-03"}
		],"totalPages":2}`))
	case "/api/categories":
		w.Write([]byte(`[{"id":1,"name":"Food"}]`))
	default:
		w.WriteHeader(http.StatusNotFound)
		w.Write([]byte(`{"message":"no such endpoint"}`))
	}
}

func (s *financeServer) lastQuery() string {
	s.mu.Lock()
	defer s.mu.Unlock()
	if len(s.queries) == 0 {
		return ""
	}
	return s.queries[len(s.queries)-1]
}

func testBuilder(cfg types.Config, log zerolog.Logger) (*usecase.DashboardUseCase, func() error, error) {
	credentials, err := session.Open(cfg)
	if err != nil {
		return nil, nil, err
	}
	client := api.NewClient(cfg.APIBaseURL, cfg.Timeout(), log)
	uc := usecase.NewDashboardUseCase(
		api.NewAuthRepository(client),
		api.NewFinanceRepository(client),
		credentials,
		export.NewExportRepository(cfg.Currency),
		console.NewConsole(),
		cfg,
		zerolog.Nop(),
	)
	return uc, func() error { return nil }, nil
}

type harness struct {
	t           *testing.T
	apiURL      string
	sessionPath string
	server      *financeServer
}

func newHarness(t *testing.T) *harness {
	t.Helper()
	fs := &financeServer{}
	srv := httptest.NewServer(fs)
	t.Cleanup(srv.Close)
	return &harness{
		t:           t,
		apiURL:      srv.URL + "/api",
		sessionPath: filepath.Join(t.TempDir(), "session.json"),
		server:      fs,
	}
}

func (h *harness) run(args ...string) error {
	h.t.Helper()
	env := map[string]string{config.EnvSessionPath: h.sessionPath}
	repo := config.NewConfigRepositoryWithEnv("", func(key string) (string, bool) {
		v, ok := env[key]
		return v, ok
	})
	app := NewCLIApp("0.0.0-dev", repo, testBuilder)
	app.promptPassword = func(string) (string, error) { return "", errors.New("no terminal") }
	app.SetArgs(append(args, "--api-url", h.apiURL))
	err := app.rootCmd.Execute()
	if cerr := app.Close(); cerr != nil {
		h.t.Fatalf("Close: %v", cerr)
	}
	return err
}

func TestLoginPersistsSessionAcrossRuns(t *testing.T) {
	h := newHarness(t)

	if err := h.run("login", "--username", "alice", "--password", "secret"); err != nil {
		t.Fatalf("login: %v", err)
	}
	data, err := os.ReadFile(h.sessionPath)
	if err != nil {
		t.Fatalf("session not persisted: %v", err)
	}
	if !strings.Contains(string(data), `"jwtToken": "jwt-alice"`) && !strings.Contains(string(data), `"jwtToken":"jwt-alice"`) {
		t.Errorf("session file = %s", data)
	}

	if err := h.run("transactions", "--page", "2", "--from", "2024-05-01", "--to", "2024-05-31"); err != nil {
		t.Fatalf("transactions: %v", err)
	}
	q := h.server.lastQuery()
	for _, want := range []string{"page=1", "size=10", "startDate=2024-05-01", "endDate=2024-05-31"} {
		if !strings.Contains(q, want) {
			t.Errorf("query %q missing %q", q, want)
		}
	}

	if err := h.run("logout"); err != nil {
		t.Fatalf("logout: %v", err)
	}
	err = h.run("transactions")
	if !IsReported(err) || !errors.Is(err, types.ErrNotAuthenticated) {
		t.Fatalf("expected a reported ErrNotAuthenticated after logout, got %v", err)
	}
}

func TestDashboardExportsReport(t *testing.T) {
	h := newHarness(t)
	if err := h.run("login", "--username", "alice", "--password", "secret"); err != nil {
		t.Fatalf("login: %v", err)
	}

	dir := t.TempDir()
	if err := h.run("dashboard", "--report-name", "finance", "--report-type", "json,csv", "--dir", dir); err != nil {
		t.Fatalf("dashboard: %v", err)
	}
	for _, pattern := range []string{"finance_*.json", "finance_*.csv"} {
		matches, _ := filepath.Glob(filepath.Join(dir, pattern))
		if len(matches) != 1 {
			t.Errorf("%s: found %v", pattern, matches)
		}
	}
}

func TestRejectedTokenSignsOut(t *testing.T) {
	h := newHarness(t)
	if err := os.WriteFile(h.sessionPath, []byte(`{"jwtToken":"stale"}`), 0600); err != nil {
		t.Fatal(err)
	}

	err := h.run("dashboard")
	var appErr *types.AppError
	if !IsReported(err) || !errors.As(err, &appErr) || appErr.Kind != types.KindAuthExpired {
		t.Fatalf("expected reported AuthExpired, got %v", err)
	}
	if _, statErr := os.Stat(h.sessionPath); !os.IsNotExist(statErr) {
		t.Errorf("stale session should be removed, stat err = %v", statErr)
	}
}

func TestInvalidConfigurationIsNotReported(t *testing.T) {
	h := newHarness(t)
	h.apiURL = "ftp://example.com"
	err := h.run("status")
	if err == nil || IsReported(err) {
		t.Fatalf("expected a plain configuration error, got %v", err)
	}
	if !strings.Contains(err.Error(), "invalid api base url scheme") {
		t.Errorf("error = %v", err)
	}
}

func TestLoginWithoutPasswordUsesPrompt(t *testing.T) {
	h := newHarness(t)
	err := h.run("login", "--username", "alice")
	if err == nil || err.Error() != "no terminal" {
		t.Fatalf("expected prompt error, got %v", err)
	}
}

func TestBuildDraft(t *testing.T) {
	draft, err := buildDraft(" Rent ", "1200.50", "income", "2024-05-01", 7)
	if err != nil {
		t.Fatalf("buildDraft: %v", err)
	}
	if draft.Type != "INCOME" || draft.Amount.Decimal.String() != "1200.5" || draft.CategoryID == nil || *draft.CategoryID != 7 {
		t.Errorf("draft = %+v", draft)
	}

	draft, err = buildDraft("Taxi", "", "", "", 0)
	if err != nil || draft.Amount.Valid || draft.CategoryID != nil {
		t.Errorf("empty optional fields: draft=%+v err=%v", draft, err)
	}

	if _, err := buildDraft("Taxi", "ten", "EXPENSE", "", 0); types.KindOf(err) != types.KindValidation {
		t.Errorf("non-numeric amount: %v", err)
	}
}
