package models

import (
	"fmt"
	"time"
)

type TransactionStatus string

const (
	TxnPending   TransactionStatus = "pending"
	TxnCompleted TransactionStatus = "completed"
	TxnFailed    TransactionStatus = "failed"
	TxnRefunded  TransactionStatus = "refunded"
)

// transitions is the full status machine. failed and refunded are terminal.
var transitions = map[TransactionStatus][]TransactionStatus{
	TxnPending:   {TxnCompleted, TxnFailed},
	TxnCompleted: {TxnRefunded},
}

func (s TransactionStatus) Valid() bool {
	switch s {
	case TxnPending, TxnCompleted, TxnFailed, TxnRefunded:
		return true
	}
	return false
}

func (s TransactionStatus) CanTransitionTo(to TransactionStatus) bool {
	for _, t := range transitions[s] {
		if t == to {
			return true
		}
	}
	return false
}

// Transaction is one ledger row. Amount is in minor currency units. Rows are
// created once and never deleted; only Status changes afterwards.
type Transaction struct {
	ID              string            `json:"id"`
	Amount          int64             `json:"amount"`
	SeekerID        string            `json:"seeker_id"`
	BreederID       string            `json:"breeder_id"`
	ApplicationID   string            `json:"application_id,omitempty"`
	Status          TransactionStatus `json:"status"`
	ProviderEventID string            `json:"provider_event_id"`
	ListingTitle    string            `json:"listing_title,omitempty"`
	CreatedAt       time.Time         `json:"created_at"`
}

func (t *Transaction) Validate() error {
	if t.Amount <= 0 {
		return fmt.Errorf("%w: amount must be > 0", ErrValidation)
	}
	if t.SeekerID == "" || t.BreederID == "" {
		return fmt.Errorf("%w: seeker and breeder required", ErrValidation)
	}
	if t.SeekerID == t.BreederID {
		return fmt.Errorf("%w: seeker and breeder must differ", ErrValidation)
	}
	if t.ProviderEventID == "" {
		return fmt.Errorf("%w: provider event id required", ErrValidation)
	}
	if t.Status == "" {
		t.Status = TxnPending
	}
	if !t.Status.Valid() {
		return fmt.Errorf("%w: unknown status %q", ErrValidation, t.Status)
	}
	return nil
}
