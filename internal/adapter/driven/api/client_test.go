package api

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"
	"unicode/utf8"

	"github.com/rs/zerolog"
	"github.com/shopspring/decimal"

	"github.com/diillson/finance-dashboard-go/internal/domain/entity"
	"github.com/diillson/finance-dashboard-go/internal/shared/types"
)

const testToken = "tok-123"

func newTestRepos(t *testing.T, h http.HandlerFunc) (*AuthRepository, *FinanceRepository) {
	t.Helper()
	srv := httptest.NewServer(h)
	t.Cleanup(srv.Close)
	c := NewClient(srv.URL+"/api", 5*time.Second, zerolog.Nop())
	return NewAuthRepository(c), NewFinanceRepository(c)
}

func writeJSON(w http.ResponseWriter, status int, body string) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_, _ = io.WriteString(w, body)
}

func TestStatusMapping(t *testing.T) {
	tests := []struct {
		name    string
		status  int
		body    string
		want    types.ErrorKind
		wantMsg string
	}{
		{"unauthorized", http.StatusUnauthorized, `{}`, types.KindAuthExpired, "not authorized"},
		{"forbidden", http.StatusForbidden, ``, types.KindAuthExpired, "not authorized"},
		{"server error with message", http.StatusInternalServerError, `{"message":"database down"}`, types.KindServerError, "database down"},
		{"bad request plain text", http.StatusBadRequest, `nope`, types.KindServerError, "nope"},
		{"not found empty", http.StatusNotFound, ``, types.KindServerError, "Not Found"},
		{"malformed body", http.StatusOK, `{"totalIncome":`, types.KindMalformedResponse, ""},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, fin := newTestRepos(t, func(w http.ResponseWriter, r *http.Request) {
				writeJSON(w, tt.status, tt.body)
			})
			_, err := fin.GetSummary(context.Background(), entity.Credential{Token: testToken})
			if err == nil {
				t.Fatal("expected error")
			}
			if got := types.KindOf(err); got != tt.want {
				t.Fatalf("kind = %v, want %v (err=%v)", got, tt.want, err)
			}
			var appErr *types.AppError
			if !errors.As(err, &appErr) {
				t.Fatalf("expected *types.AppError, got %T", err)
			}
			if tt.wantMsg != "" && appErr.Message != tt.wantMsg {
				t.Errorf("message = %q, want %q", appErr.Message, tt.wantMsg)
			}
		})
	}
}

func TestNetworkFailure(t *testing.T) {
	srv := httptest.NewServer(http.NotFoundHandler())
	url := srv.URL
	srv.Close()

	fin := NewFinanceRepository(NewClient(url, time.Second, zerolog.Nop()))
	_, err := fin.GetSummary(context.Background(), entity.Credential{Token: testToken})
	if types.KindOf(err) != types.KindNetworkFailure {
		t.Fatalf("kind = %v, want NetworkFailure (err=%v)", types.KindOf(err), err)
	}
}

func TestRequestHeaders(t *testing.T) {
	_, fin := newTestRepos(t, func(w http.ResponseWriter, r *http.Request) {
		if got := r.Header.Get("Authorization"); got != "Bearer "+testToken {
			t.Errorf("Authorization = %q", got)
		}
		if r.Header.Get(headerRequestID) == "" {
			t.Error("missing request id header")
		}
		if r.URL.Path != "/api/summary" {
			t.Errorf("path = %q", r.URL.Path)
		}
		writeJSON(w, http.StatusOK, `{"totalIncome":1000,"totalExpense":250.5,"balance":749.5,"username":"alice"}`)
	})

	s, err := fin.GetSummary(context.Background(), entity.Credential{Token: testToken})
	if err != nil {
		t.Fatalf("GetSummary: %v", err)
	}
	if s.Username != "alice" || !s.Balance.Valid || !s.Balance.Decimal.Equal(decimal.RequireFromString("749.5")) {
		t.Errorf("unexpected summary: %+v", s)
	}
}

func TestSummaryNullAmounts(t *testing.T) {
	_, fin := newTestRepos(t, func(w http.ResponseWriter, r *http.Request) {
		writeJSON(w, http.StatusOK, `{"totalIncome":null,"balance":0}`)
	})
	s, err := fin.GetSummary(context.Background(), entity.Credential{Token: testToken})
	if err != nil {
		t.Fatalf("GetSummary: %v", err)
	}
	if s.TotalIncome.Valid || s.TotalExpense.Valid {
		t.Errorf("expected null totals, got %+v", s)
	}
	if !entity.OrZero(s.TotalIncome).IsZero() {
		t.Error("missing amount should read as zero")
	}
}

func TestListTransactions(t *testing.T) {
	_, fin := newTestRepos(t, func(w http.ResponseWriter, r *http.Request) {
		q := r.URL.Query()
		if q.Get("page") != "2" || q.Get("size") != "10" {
			t.Errorf("query = %v", q)
		}
		if q.Get("startDate") != "2024-01-01" || q.Get("endDate") != "2024-01-31" {
			t.Errorf("date range = %v", q)
		}
		writeJSON(w, http.StatusOK, `{"content":[
			{"id":1,"type":"EXPENSE","description":"Lunch","amount":150,"date":"2024-01-15","category":{"id":3,"name":"Food"}},
			{"id":2,"type":"INCOME","description":"Salary","amount":5000,"date":"2024-01-01"}
		],"totalPages":3}`)
	})

	page, err := fin.ListTransactions(context.Background(), entity.Credential{Token: testToken}, 2, 10,
		entity.TransactionFilter{From: "2024-01-01", To: "2024-01-31"})
	if err != nil {
		t.Fatalf("ListTransactions: %v", err)
	}
	if !page.TotalKnown || page.TotalPages != 3 {
		t.Errorf("pagination = %d known=%v", page.TotalPages, page.TotalKnown)
	}
	if len(page.Content) != 2 || page.Content[0].CategoryName() != "Food" || page.Content[1].Category != nil {
		t.Errorf("unexpected content: %+v", page.Content)
	}
}

func TestListTransactionsShape(t *testing.T) {
	tests := []struct {
		name      string
		body      string
		wantErr   bool
		wantKnown bool
	}{
		{"missing content", `{"totalPages":1}`, true, false},
		{"array instead of page", `[]`, true, false},
		{"negative pages", `{"content":[],"totalPages":-1}`, true, false},
		{"missing total", `{"content":[]}`, false, false},
		{"empty", `{"content":[],"totalPages":0}`, false, true},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, fin := newTestRepos(t, func(w http.ResponseWriter, r *http.Request) {
				writeJSON(w, http.StatusOK, tt.body)
			})
			page, err := fin.ListTransactions(context.Background(), entity.Credential{Token: testToken}, 0, 10, entity.TransactionFilter{})
			if tt.wantErr {
				if types.KindOf(err) != types.KindMalformedResponse {
					t.Fatalf("expected MalformedResponse, got %v", err)
				}
				return
			}
			if err != nil {
				t.Fatalf("unexpected error: %v", err)
			}
			if page.TotalKnown != tt.wantKnown {
				t.Errorf("TotalKnown = %v, want %v", page.TotalKnown, tt.wantKnown)
			}
		})
	}
}

func TestCreateTransaction(t *testing.T) {
	catID := int64(7)
	_, fin := newTestRepos(t, func(w http.ResponseWriter, r *http.Request) {
		if r.Method != http.MethodPost || r.URL.Path != "/api/transactions" {
			t.Errorf("unexpected %s %s", r.Method, r.URL.Path)
		}
		var body map[string]any
		if err := json.NewDecoder(r.Body).Decode(&body); err != nil {
			t.Errorf("decode body: %v", err)
		}
		if body["amount"] != 42.5 {
			t.Errorf("amount should be sent as a JSON number, got %#v", body["amount"])
		}
		if body["type"] != "EXPENSE" || body["date"] != "2024-02-01" || body["categoryId"] != float64(7) {
			t.Errorf("unexpected body: %v", body)
		}
		writeJSON(w, http.StatusOK, `{"id":99,"type":"EXPENSE","description":"Taxi","amount":42.5,"date":"2024-02-01"}`)
	})

	draft := entity.TransactionDraft{
		Description: "Taxi",
		Amount:      decimal.NewNullDecimal(decimal.RequireFromString("42.5")),
		Type:        entity.Expense,
		Date:        "2024-02-01",
		CategoryID:  &catID,
	}
	rec, err := fin.CreateTransaction(context.Background(), entity.Credential{Token: testToken}, draft)
	if err != nil {
		t.Fatalf("CreateTransaction: %v", err)
	}
	if rec.ID != 99 {
		t.Errorf("ID = %d", rec.ID)
	}
}

func TestCreateTransactionValidationMessage(t *testing.T) {
	_, fin := newTestRepos(t, func(w http.ResponseWriter, r *http.Request) {
		writeJSON(w, http.StatusBadRequest, `{"message":"Amount must be positive"}`)
	})
	_, err := fin.CreateTransaction(context.Background(), entity.Credential{Token: testToken}, entity.TransactionDraft{})
	var appErr *types.AppError
	if !errors.As(err, &appErr) || appErr.Kind != types.KindServerError || appErr.Status != 400 {
		t.Fatalf("unexpected error: %v", err)
	}
	if appErr.Message != "Amount must be positive" {
		t.Errorf("message = %q", appErr.Message)
	}
}

func TestUploadReceipt(t *testing.T) {
	tests := []struct {
		name     string
		body     string
		wantKind types.ErrorKind
		wantDesc string
	}{
		{"flat shape", `{"description":"Coffee","amount":3.5,"date":"2024-03-01"}`, types.KindUnknown, "Coffee"},
		{"envelope", `{"success":true,"message":"ok","parsedTransactions":[{"description":"Books","amount":20,"date":"2024-03-02"},{"description":"Other"}]}`, types.KindUnknown, "Books"},
		{"envelope failure", `{"success":false,"errorMessage":"unreadable image"}`, types.KindExtraction, ""},
		{"nothing extracted", `{"success":true,"parsedTransactions":[]}`, types.KindExtraction, ""},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, fin := newTestRepos(t, func(w http.ResponseWriter, r *http.Request) {
				if !strings.HasPrefix(r.Header.Get("Content-Type"), "multipart/form-data") {
					t.Errorf("content type = %q", r.Header.Get("Content-Type"))
				}
				f, hdr, err := r.FormFile("file")
				if err != nil {
					t.Errorf("FormFile: %v", err)
					return
				}
				defer f.Close()
				data, _ := io.ReadAll(f)
				if hdr.Filename != "receipt.png" || string(data) != "img" {
					t.Errorf("unexpected upload %q %q", hdr.Filename, data)
				}
				writeJSON(w, http.StatusOK, tt.body)
			})

			ext, err := fin.UploadReceipt(context.Background(), entity.Credential{Token: testToken},
				entity.ReceiptFile{Name: "receipt.png", ContentType: "image/png", Data: []byte("img")})
			if tt.wantKind != types.KindUnknown {
				if types.KindOf(err) != tt.wantKind {
					t.Fatalf("kind = %v, want %v", types.KindOf(err), tt.wantKind)
				}
				return
			}
			if err != nil {
				t.Fatalf("UploadReceipt: %v", err)
			}
			if ext.Description != tt.wantDesc {
				t.Errorf("description = %q, want %q", ext.Description, tt.wantDesc)
			}
		})
	}
}

func TestAuthenticate(t *testing.T) {
	auth, _ := newTestRepos(t, func(w http.ResponseWriter, r *http.Request) {
		var body map[string]string
		_ = json.NewDecoder(r.Body).Decode(&body)
		switch r.URL.Path {
		case "/api/auth/authenticate":
			if body["username"] == "alice" && body["password"] == "secret" {
				writeJSON(w, http.StatusOK, `{"token":"jwt-a","username":"alice","email":"a@x.io"}`)
				return
			}
			writeJSON(w, http.StatusUnauthorized, `{"message":"Invalid username or password"}`)
		case "/api/auth/authenticate-google":
			if body["token"] != "mock-google-token" {
				t.Errorf("google token = %q", body["token"])
			}
			writeJSON(w, http.StatusOK, `{"token":"jwt-g","email":"g@x.io"}`)
		case "/api/auth/register":
			writeJSON(w, http.StatusOK, `{"token":"jwt-r"}`)
		default:
			t.Errorf("unexpected path %s", r.URL.Path)
		}
	})
	ctx := context.Background()

	cred, err := auth.Authenticate(ctx, entity.PasswordProof("alice", "secret"))
	if err != nil || cred.Token != "jwt-a" || cred.Username != "alice" {
		t.Fatalf("password sign-in: %+v %v", cred, err)
	}

	_, err = auth.Authenticate(ctx, entity.PasswordProof("alice", "wrong"))
	var appErr *types.AppError
	if !errors.As(err, &appErr) || appErr.Kind != types.KindAuthRejected || appErr.Message != "Invalid username or password" {
		t.Fatalf("rejected sign-in: %v", err)
	}

	cred, err = auth.Authenticate(ctx, entity.GoogleProof(""))
	if err != nil || cred.Token != "jwt-g" || cred.Identity() != "g@x.io" {
		t.Fatalf("google sign-in: %+v %v", cred, err)
	}

	cred, err = auth.Register(ctx, entity.RegistrationProof("bob", "b@x.io", "pw"))
	if err != nil || cred.Token != "jwt-r" || cred.Username != "bob" {
		t.Fatalf("register: %+v %v", cred, err)
	}
}

func TestAuthenticateWithoutToken(t *testing.T) {
	auth, _ := newTestRepos(t, func(w http.ResponseWriter, r *http.Request) {
		writeJSON(w, http.StatusOK, `{"message":"User already exists"}`)
	})
	_, err := auth.Register(context.Background(), entity.RegistrationProof("bob", "b@x.io", "pw"))
	if types.KindOf(err) != types.KindMalformedResponse || !strings.Contains(err.Error(), "User already exists") {
		t.Fatalf("unexpected error: %v", err)
	}
}

func TestCategories(t *testing.T) {
	_, fin := newTestRepos(t, func(w http.ResponseWriter, r *http.Request) {
		switch r.Method {
		case http.MethodGet:
			writeJSON(w, http.StatusOK, `[{"id":1,"name":"Food","user":{"id":4}},{"id":2,"name":"Rent"}]`)
		case http.MethodPost:
			var body categoryRequest
			_ = json.NewDecoder(r.Body).Decode(&body)
			writeJSON(w, http.StatusOK, `{"id":3,"name":"`+body.Name+`"}`)
		}
	})
	ctx := context.Background()
	cred := entity.Credential{Token: testToken}

	cats, err := fin.ListCategories(ctx, cred)
	if err != nil || len(cats) != 2 || cats[1].Name != "Rent" {
		t.Fatalf("ListCategories: %+v %v", cats, err)
	}
	cat, err := fin.CreateCategory(ctx, cred, "Travel")
	if err != nil || cat.ID != 3 || cat.Name != "Travel" {
		t.Fatalf("CreateCategory: %+v %v", cat, err)
	}
}

func TestServerMessagePlainText(t *testing.T) {
	body := "  " + strings.Repeat("é", 150) + strings.Repeat("x", 100) + "\n"
	msg := serverMessage([]byte(body))
	if !utf8.ValidString(msg) {
		t.Fatalf("truncated message is not valid UTF-8: %q", msg)
	}
	if n := utf8.RuneCountInString(msg); n != maxMessageRunes {
		t.Errorf("message has %d runes, want %d", n, maxMessageRunes)
	}
	if !strings.HasPrefix(msg, "é") || !strings.HasSuffix(msg, "x") {
		t.Errorf("unexpected message %q", msg)
	}

	if got := serverMessage([]byte("gateway timeout\n")); got != "gateway timeout" {
		t.Errorf("short body = %q", got)
	}
	if got := serverMessage([]byte(`{"message":"amount must be positive"}`)); got != "amount must be positive" {
		t.Errorf("json body = %q", got)
	}
}
