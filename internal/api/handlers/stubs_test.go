package handlers

import (
	"context"
	"io"
	"log/slog"
	"sort"
	"sync"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/pawlink/pawlink-backend/internal/models"
	"github.com/pawlink/pawlink-backend/internal/services"
	"github.com/pawlink/pawlink-backend/internal/worker"
)

type stubTxStore struct {
	mu      sync.Mutex
	rows    map[string]models.Transaction
	byEvent map[string]string
	listErr error
	clock   time.Time
}

func newStubTxStore() *stubTxStore {
	return &stubTxStore{
		rows:    map[string]models.Transaction{},
		byEvent: map[string]string{},
		clock:   time.Date(2026, 1, 1, 0, 0, 0, 0, time.UTC),
	}
}

func (s *stubTxStore) Append(ctx context.Context, tx models.Transaction) (models.Transaction, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if id, ok := s.byEvent[tx.ProviderEventID]; ok {
		return s.rows[id], models.ErrDuplicateEvent
	}
	if tx.ID == "" {
		tx.ID = uuid.NewString()
	}
	s.clock = s.clock.Add(time.Second)
	tx.CreatedAt = s.clock
	s.rows[tx.ID] = tx
	s.byEvent[tx.ProviderEventID] = tx.ID
	return tx, nil
}

func (s *stubTxStore) Transition(ctx context.Context, id string, from, to models.TransactionStatus) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	tx, ok := s.rows[id]
	if !ok {
		return models.ErrNotFound
	}
	if tx.Status != from {
		return models.ErrInvalidTransition
	}
	tx.Status = to
	s.rows[id] = tx
	return nil
}

func (s *stubTxStore) GetByID(ctx context.Context, id string) (models.Transaction, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	tx, ok := s.rows[id]
	if !ok {
		return models.Transaction{}, models.ErrNotFound
	}
	return tx, nil
}

func (s *stubTxStore) list(match func(models.Transaction) bool) ([]models.Transaction, error) {
	if s.listErr != nil {
		return nil, s.listErr
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	var out []models.Transaction
	for _, tx := range s.rows {
		if match(tx) {
			out = append(out, tx)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].CreatedAt.After(out[j].CreatedAt) })
	return out, nil
}

func (s *stubTxStore) ListBySeeker(ctx context.Context, id string) ([]models.Transaction, error) {
	return s.list(func(tx models.Transaction) bool { return tx.SeekerID == id })
}

func (s *stubTxStore) ListByBreeder(ctx context.Context, id string) ([]models.Transaction, error) {
	return s.list(func(tx models.Transaction) bool { return tx.BreederID == id })
}

func (s *stubTxStore) ListByUser(ctx context.Context, id string) ([]models.Transaction, error) {
	return s.list(func(tx models.Transaction) bool { return tx.SeekerID == id || tx.BreederID == id })
}

type stubAppStore struct {
	apps map[string]models.Application
}

func (s *stubAppStore) GetByID(ctx context.Context, id string) (models.Application, error) {
	app, ok := s.apps[id]
	if !ok {
		return models.Application{}, models.ErrNotFound
	}
	return app, nil
}

type stubAuditStore struct{}

func (s *stubAuditStore) Create(ctx context.Context, l models.AuditLog) error { return nil }

func newTestLedger(t *testing.T, store *stubTxStore) *services.LedgerService {
	t.Helper()
	apps := &stubAppStore{apps: map[string]models.Application{
		"app-1": {ID: "app-1", ListingID: "lst-1", SeekerID: "seeker-1", BreederID: "breeder-1", ListingTitle: "Siberian Husky pups"},
	}}
	wp := worker.NewPool(1)
	t.Cleanup(wp.Stop)
	return services.NewLedgerService(store, apps, &stubAuditStore{}, wp)
}

func testLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}
