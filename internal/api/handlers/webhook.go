package handlers

import (
	"encoding/json"
	"errors"
	"io"
	"log/slog"
	"net/http"

	"github.com/pawlink/pawlink-backend/internal/api/httpx"
	"github.com/pawlink/pawlink-backend/internal/metrics"
	"github.com/pawlink/pawlink-backend/internal/models"
	"github.com/pawlink/pawlink-backend/internal/services"
	"github.com/pawlink/pawlink-backend/internal/webhook"
)

type WebhookHandler struct {
	secret string
	ledger *services.LedgerService
	log    *slog.Logger
}

func NewWebhookHandler(secret string, ledger *services.LedgerService, log *slog.Logger) *WebhookHandler {
	return &WebhookHandler{secret: secret, ledger: ledger, log: log}
}

type verifyRequest struct {
	Payload   string `json:"payload"`
	Signature string `json:"signature"`
}

type verifyResponse struct {
	Success bool `json:"success"`
	Valid   bool `json:"valid"`
}

// Verify checks a signature without touching the ledger. An invalid signature
// is a normal 200 with valid=false; a 4xx/5xx here would make the processor
// retry-storm on every mismatch.
func (h *WebhookHandler) Verify(w http.ResponseWriter, r *http.Request) {
	var req verifyRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		httpx.WriteError(w, http.StatusBadRequest, "Missing required fields: payload, signature")
		return
	}

	valid, err := webhook.Verify([]byte(req.Payload), req.Signature, h.secret)
	switch {
	case errors.Is(err, webhook.ErrMissingField):
		httpx.WriteError(w, http.StatusBadRequest, "Missing required fields: payload, signature")
		return
	case errors.Is(err, webhook.ErrSecretNotConfigured):
		h.log.Error("webhook secret missing from deployment config")
		metrics.WebhookVerifications.WithLabelValues("error").Inc()
		httpx.WriteError(w, http.StatusInternalServerError, "Paystack secret key not configured")
		return
	case err != nil:
		metrics.WebhookVerifications.WithLabelValues("error").Inc()
		httpx.WriteErrorDetail(w, http.StatusInternalServerError, "Internal server error", "verification failed")
		return
	}

	if valid {
		metrics.WebhookVerifications.WithLabelValues("valid").Inc()
	} else {
		metrics.WebhookVerifications.WithLabelValues("invalid").Inc()
	}
	httpx.WriteJSON(w, http.StatusOK, verifyResponse{Success: true, Valid: valid})
}

type ingestResponse struct {
	Success bool `json:"success"`
}

// Ingest is the live delivery path: signature over the exact raw body, then
// the verified event mutates the ledger. Replays come back 200 so Paystack
// stops redelivering.
func (h *WebhookHandler) Ingest(w http.ResponseWriter, r *http.Request) {
	body, err := io.ReadAll(r.Body)
	if err != nil {
		httpx.WriteError(w, http.StatusBadRequest, "unreadable body")
		return
	}
	sig := r.Header.Get(webhook.SignatureHeader)

	valid, verr := webhook.Verify(body, sig, h.secret)
	switch {
	case errors.Is(verr, webhook.ErrMissingField):
		httpx.WriteError(w, http.StatusBadRequest, "Missing required fields: payload, signature")
		return
	case errors.Is(verr, webhook.ErrSecretNotConfigured):
		h.log.Error("webhook secret missing from deployment config")
		httpx.WriteError(w, http.StatusInternalServerError, "Paystack secret key not configured")
		return
	case verr != nil:
		httpx.WriteErrorDetail(w, http.StatusInternalServerError, "Internal server error", "verification failed")
		return
	}
	if !valid {
		metrics.WebhookVerifications.WithLabelValues("invalid").Inc()
		httpx.WriteError(w, http.StatusUnauthorized, "Invalid signature")
		return
	}
	metrics.WebhookVerifications.WithLabelValues("valid").Inc()

	var ev services.ProviderEvent
	if err := json.Unmarshal(body, &ev); err != nil || ev.ID == "" || ev.Type == "" {
		httpx.WriteError(w, http.StatusBadRequest, "malformed event")
		return
	}

	if err := h.ledger.HandleEvent(r.Context(), ev); err != nil {
		switch {
		case errors.Is(err, models.ErrValidation), errors.Is(err, models.ErrNotFound):
			httpx.WriteErrorDetail(w, http.StatusBadRequest, "invalid event", err.Error())
		case errors.Is(err, models.ErrInvalidTransition):
			httpx.WriteErrorDetail(w, http.StatusConflict, "invalid event", err.Error())
		default:
			h.log.Error("event ingest failed", "event_id", ev.ID, "type", ev.Type, "err", err)
			httpx.WriteErrorDetail(w, http.StatusInternalServerError, "Internal server error", "event processing failed")
		}
		return
	}
	httpx.WriteJSON(w, http.StatusOK, ingestResponse{Success: true})
}
