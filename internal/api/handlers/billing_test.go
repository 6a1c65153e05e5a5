package handlers

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/pawlink/pawlink-backend/internal/auth"
	"github.com/pawlink/pawlink-backend/internal/middleware"
	"github.com/pawlink/pawlink-backend/internal/models"
)

func authedGet(t *testing.T, h http.HandlerFunc, path, userID string) *httptest.ResponseRecorder {
	t.Helper()
	req := httptest.NewRequest(http.MethodGet, path, nil)
	if userID != "" {
		ctx := middleware.WithClaims(context.Background(), &auth.Claims{UserID: userID, Role: models.RoleSeeker})
		req = req.WithContext(ctx)
	}
	rec := httptest.NewRecorder()
	h(rec, req)
	return rec
}

func seedLedger(t *testing.T, store *stubTxStore) (t1, t2, t3 models.Transaction) {
	t.Helper()
	ctx := context.Background()
	t1, _ = store.Append(ctx, models.Transaction{Amount: 100, SeekerID: "user", BreederID: "b1", ProviderEventID: "e1", Status: models.TxnCompleted})
	t2, _ = store.Append(ctx, models.Transaction{Amount: 200, SeekerID: "s1", BreederID: "user", ProviderEventID: "e2", Status: models.TxnCompleted})
	t3, _ = store.Append(ctx, models.Transaction{Amount: 300, SeekerID: "user", BreederID: "b2", ProviderEventID: "e3", Status: models.TxnPending})
	return
}

func TestBillingUnauthorized(t *testing.T) {
	h := NewBillingHandler(newTestLedger(t, newStubTxStore()), testLogger())

	rec := authedGet(t, h.Billing, "/api/v1/billing", "")
	if rec.Code != http.StatusUnauthorized {
		t.Fatalf("expected 401, got %d", rec.Code)
	}
	var resp struct {
		Error string `json:"error"`
	}
	_ = json.Unmarshal(rec.Body.Bytes(), &resp)
	if resp.Error != "Unauthorized" {
		t.Fatalf("unexpected error message: %q", resp.Error)
	}
}

func TestBillingSplitsPaymentsAndEarnings(t *testing.T) {
	store := newStubTxStore()
	t1, t2, t3 := seedLedger(t, store)
	h := NewBillingHandler(newTestLedger(t, store), testLogger())

	rec := authedGet(t, h.Billing, "/api/v1/billing", "user")
	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d: %s", rec.Code, rec.Body.String())
	}

	var resp struct {
		Success bool `json:"success"`
		Data    struct {
			Payments []models.Transaction `json:"payments"`
			Earnings []models.Transaction `json:"earnings"`
		} `json:"data"`
	}
	if err := json.Unmarshal(rec.Body.Bytes(), &resp); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if !resp.Success {
		t.Fatal("expected success")
	}
	if len(resp.Data.Payments) != 2 || resp.Data.Payments[0].ID != t3.ID || resp.Data.Payments[1].ID != t1.ID {
		t.Fatalf("payments wrong or misordered: %+v", resp.Data.Payments)
	}
	if len(resp.Data.Earnings) != 1 || resp.Data.Earnings[0].ID != t2.ID {
		t.Fatalf("earnings wrong: %+v", resp.Data.Earnings)
	}
}

func TestBillingUpstreamFailureHasNoPartialData(t *testing.T) {
	store := newStubTxStore()
	seedLedger(t, store)
	store.listErr = errors.New("connection refused")
	h := NewBillingHandler(newTestLedger(t, store), testLogger())

	rec := authedGet(t, h.Billing, "/api/v1/billing", "user")
	if rec.Code != http.StatusInternalServerError {
		t.Fatalf("expected 500, got %d", rec.Code)
	}

	var resp map[string]any
	if err := json.Unmarshal(rec.Body.Bytes(), &resp); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if resp["error"] != "Internal server error" {
		t.Fatalf("unexpected error field: %v", resp["error"])
	}
	if _, ok := resp["data"]; ok {
		t.Fatal("partial data returned on upstream failure")
	}
}

func TestTransactionsFlatListDedupedAndOrdered(t *testing.T) {
	store := newStubTxStore()
	t1, t2, t3 := seedLedger(t, store)
	h := NewBillingHandler(newTestLedger(t, store), testLogger())

	rec := authedGet(t, h.Transactions, "/api/v1/transactions", "user")
	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", rec.Code)
	}

	var resp struct {
		Success bool                 `json:"success"`
		Data    []models.Transaction `json:"data"`
	}
	if err := json.Unmarshal(rec.Body.Bytes(), &resp); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if len(resp.Data) != 3 {
		t.Fatalf("expected 3 rows, got %d", len(resp.Data))
	}
	for i, want := range []string{t3.ID, t2.ID, t1.ID} {
		if resp.Data[i].ID != want {
			t.Fatalf("position %d: got %s, want %s", i, resp.Data[i].ID, want)
		}
	}
	seen := map[string]bool{}
	for _, tx := range resp.Data {
		if seen[tx.ID] {
			t.Fatalf("duplicate row %s", tx.ID)
		}
		seen[tx.ID] = true
	}
}

func TestTransactionsUnauthorized(t *testing.T) {
	h := NewBillingHandler(newTestLedger(t, newStubTxStore()), testLogger())
	rec := authedGet(t, h.Transactions, "/api/v1/transactions", "")
	if rec.Code != http.StatusUnauthorized {
		t.Fatalf("expected 401, got %d", rec.Code)
	}
}
