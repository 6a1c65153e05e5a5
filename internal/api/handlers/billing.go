package handlers

import (
	"log/slog"
	"net/http"

	"github.com/pawlink/pawlink-backend/internal/api/httpx"
	"github.com/pawlink/pawlink-backend/internal/middleware"
	"github.com/pawlink/pawlink-backend/internal/models"
	"github.com/pawlink/pawlink-backend/internal/services"
)

type BillingHandler struct {
	ledger *services.LedgerService
	log    *slog.Logger
}

func NewBillingHandler(ledger *services.LedgerService, log *slog.Logger) *BillingHandler {
	return &BillingHandler{ledger: ledger, log: log}
}

type billingResponse struct {
	Success bool             `json:"success"`
	Data    services.Billing `json:"data"`
}

type transactionsResponse struct {
	Success bool                 `json:"success"`
	Data    []models.Transaction `json:"data"`
}

// Billing returns the caller's two-sided view: payments made as a seeker and
// earnings received as a breeder.
func (h *BillingHandler) Billing(w http.ResponseWriter, r *http.Request) {
	uid, ok := middleware.UserID(r.Context())
	if !ok {
		httpx.WriteError(w, http.StatusUnauthorized, "Unauthorized")
		return
	}

	billing, err := h.ledger.ComputeBilling(r.Context(), uid)
	if err != nil {
		h.log.Error("billing projection failed", "user_id", uid, "err", err)
		httpx.WriteErrorDetail(w, http.StatusInternalServerError, "Internal server error", "failed to load billing data")
		return
	}
	httpx.WriteJSON(w, http.StatusOK, billingResponse{Success: true, Data: billing})
}

// Transactions returns the flat union of rows where the caller is either
// party, most recent first.
func (h *BillingHandler) Transactions(w http.ResponseWriter, r *http.Request) {
	uid, ok := middleware.UserID(r.Context())
	if !ok {
		httpx.WriteError(w, http.StatusUnauthorized, "Unauthorized")
		return
	}

	txs, err := h.ledger.ListByUser(r.Context(), uid)
	if err != nil {
		h.log.Error("transactions query failed", "user_id", uid, "err", err)
		httpx.WriteErrorDetail(w, http.StatusInternalServerError, "Internal server error", "failed to load transactions")
		return
	}
	httpx.WriteJSON(w, http.StatusOK, transactionsResponse{Success: true, Data: txs})
}
