package services

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"golang.org/x/sync/errgroup"

	"github.com/pawlink/pawlink-backend/internal/metrics"
	"github.com/pawlink/pawlink-backend/internal/models"
	repo "github.com/pawlink/pawlink-backend/internal/repository"
	"github.com/pawlink/pawlink-backend/internal/worker"
)

// storeTimeout bounds every ledger store call; a deadline surfaces as
// models.ErrUpstreamQuery, never hangs the request.
const storeTimeout = 5 * time.Second

// Billing is the two-sided projection for one user: payments where they are
// the seeker, earnings where they are the breeder.
type Billing struct {
	Payments []models.Transaction `json:"payments"`
	Earnings []models.Transaction `json:"earnings"`
}

// ProviderEvent is one verified webhook delivery from the payment processor.
type ProviderEvent struct {
	ID   string            `json:"id"`
	Type string            `json:"type"`
	Data ProviderEventData `json:"data"`
}

type ProviderEventData struct {
	// Reference is the ledger transaction id, echoed back by the processor
	// on status events.
	Reference     string `json:"reference"`
	ApplicationID string `json:"application_id"`
	Amount        int64  `json:"amount"`
}

const (
	EventChargeCreated   = "charge.created"
	EventChargeCompleted = "charge.completed"
	EventChargeFailed    = "charge.failed"
	EventChargeRefunded  = "charge.refunded"
)

type LedgerService struct {
	trx  repo.Transactions
	apps repo.Applications
	log  repo.AuditLogs
	wp   *worker.Pool
}

func NewLedgerService(t repo.Transactions, a repo.Applications, l repo.AuditLogs, wp *worker.Pool) *LedgerService {
	return &LedgerService{trx: t, apps: a, log: l, wp: wp}
}

func (s *LedgerService) audit(entityID, action, details string) {
	s.wp.Submit(func() {
		ctx, cancel := context.WithTimeout(context.Background(), storeTimeout)
		defer cancel()
		id := entityID
		var det map[string]any
		if details != "" {
			det = map[string]any{"message": details}
		}
		if err := s.log.Create(ctx, models.AuditLog{
			EntityType: "transaction",
			EntityID:   &id,
			Action:     action,
			Details:    det,
		}); err != nil {
			slog.Warn("audit write failed", "action", action, "err", err)
		}
	})
	metrics.WorkerQueueDepth.Set(float64(s.wp.Depth()))
}

// Append records a new ledger row. A replayed provider event is a success
// no-op: the previously stored row comes back and no second row exists.
// Webhook deliveries retry as a matter of course, so the caller must be able
// to keep answering 2xx.
func (s *LedgerService) Append(ctx context.Context, tx models.Transaction) (models.Transaction, error) {
	if err := tx.Validate(); err != nil {
		return models.Transaction{}, err
	}
	ctx, cancel := context.WithTimeout(ctx, storeTimeout)
	defer cancel()

	stored, err := s.trx.Append(ctx, tx)
	if errors.Is(err, models.ErrDuplicateEvent) {
		metrics.LedgerDuplicates.Inc()
		return stored, nil
	}
	if err != nil {
		return models.Transaction{}, fmt.Errorf("%w: %v", models.ErrUpstreamQuery, err)
	}
	metrics.LedgerEvents.WithLabelValues("append").Inc()
	s.audit(stored.ID, "created", string(stored.Status))
	return stored, nil
}

// Transition applies one legal status change. Exactly one of two racing
// callers wins; the loser gets models.ErrInvalidTransition from the store's
// conditional update.
func (s *LedgerService) Transition(ctx context.Context, id string, from, to models.TransactionStatus) error {
	if !from.CanTransitionTo(to) {
		return fmt.Errorf("%w: %s -> %s", models.ErrInvalidTransition, from, to)
	}
	ctx, cancel := context.WithTimeout(ctx, storeTimeout)
	defer cancel()

	if err := s.trx.Transition(ctx, id, from, to); err != nil {
		if errors.Is(err, models.ErrInvalidTransition) || errors.Is(err, models.ErrNotFound) {
			return err
		}
		return fmt.Errorf("%w: %v", models.ErrUpstreamQuery, err)
	}
	metrics.LedgerEvents.WithLabelValues("transition").Inc()
	s.audit(id, "status_change", fmt.Sprintf("%s -> %s", from, to))
	return nil
}

// ComputeBilling runs the payments and earnings queries concurrently.
// Fail-fast: any query error fails the whole projection so financial data is
// never silently under-reported.
func (s *LedgerService) ComputeBilling(ctx context.Context, userID string) (Billing, error) {
	ctx, cancel := context.WithTimeout(ctx, storeTimeout)
	defer cancel()

	var b Billing
	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		payments, err := s.trx.ListBySeeker(gctx, userID)
		if err != nil {
			return err
		}
		b.Payments = payments
		return nil
	})
	g.Go(func() error {
		earnings, err := s.trx.ListByBreeder(gctx, userID)
		if err != nil {
			return err
		}
		b.Earnings = earnings
		return nil
	})
	if err := g.Wait(); err != nil {
		return Billing{}, fmt.Errorf("%w: %v", models.ErrUpstreamQuery, err)
	}
	if b.Payments == nil {
		b.Payments = []models.Transaction{}
	}
	if b.Earnings == nil {
		b.Earnings = []models.Transaction{}
	}
	return b, nil
}

// ListByUser returns every row where the user is seeker or breeder, most
// recent first. Rows are unique by id even when the user holds both roles
// across rows.
func (s *LedgerService) ListByUser(ctx context.Context, userID string) ([]models.Transaction, error) {
	ctx, cancel := context.WithTimeout(ctx, storeTimeout)
	defer cancel()

	txs, err := s.trx.ListByUser(ctx, userID)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", models.ErrUpstreamQuery, err)
	}
	if txs == nil {
		txs = []models.Transaction{}
	}
	return txs, nil
}

func (s *LedgerService) GetByID(ctx context.Context, id string) (models.Transaction, error) {
	ctx, cancel := context.WithTimeout(ctx, storeTimeout)
	defer cancel()
	return s.trx.GetByID(ctx, id)
}

// HandleEvent maps one verified provider event onto the ledger. Only callers
// that already checked the signature may call this.
func (s *LedgerService) HandleEvent(ctx context.Context, ev ProviderEvent) error {
	switch ev.Type {
	case EventChargeCreated:
		app, err := s.getApplication(ctx, ev.Data.ApplicationID)
		if err != nil {
			return err
		}
		_, err = s.Append(ctx, models.Transaction{
			Amount:          ev.Data.Amount,
			SeekerID:        app.SeekerID,
			BreederID:       app.BreederID,
			ApplicationID:   app.ID,
			Status:          models.TxnPending,
			ProviderEventID: ev.ID,
		})
		return err
	case EventChargeCompleted:
		return s.transitionIdem(ctx, ev.Data.Reference, models.TxnPending, models.TxnCompleted)
	case EventChargeFailed:
		return s.transitionIdem(ctx, ev.Data.Reference, models.TxnPending, models.TxnFailed)
	case EventChargeRefunded:
		return s.transitionIdem(ctx, ev.Data.Reference, models.TxnCompleted, models.TxnRefunded)
	default:
		// processors add event types; ignore what we do not ledger
		slog.Debug("ignoring provider event", "type", ev.Type, "id", ev.ID)
		return nil
	}
}

// transitionIdem treats a redelivered status event as a no-op when the row
// already carries the target status.
func (s *LedgerService) transitionIdem(ctx context.Context, id string, from, to models.TransactionStatus) error {
	err := s.Transition(ctx, id, from, to)
	if !errors.Is(err, models.ErrInvalidTransition) {
		return err
	}
	cur, gerr := s.GetByID(ctx, id)
	if gerr == nil && cur.Status == to {
		metrics.LedgerDuplicates.Inc()
		return nil
	}
	return err
}

func (s *LedgerService) getApplication(ctx context.Context, id string) (models.Application, error) {
	if id == "" {
		return models.Application{}, fmt.Errorf("%w: application id required", models.ErrValidation)
	}
	ctx, cancel := context.WithTimeout(ctx, storeTimeout)
	defer cancel()
	app, err := s.apps.GetByID(ctx, id)
	if errors.Is(err, models.ErrNotFound) {
		return models.Application{}, fmt.Errorf("%w: unknown application %s", models.ErrValidation, id)
	}
	if err != nil {
		return models.Application{}, fmt.Errorf("%w: %v", models.ErrUpstreamQuery, err)
	}
	return app, nil
}
