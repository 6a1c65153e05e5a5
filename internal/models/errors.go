package models

import "errors"

// Ledger error kinds. Matched with errors.Is; the HTTP layer maps each to a
// stable status code and message.
var (
	ErrValidation        = errors.New("transaction violates ledger invariants")
	ErrDuplicateEvent    = errors.New("provider event already recorded")
	ErrInvalidTransition = errors.New("illegal status transition")
	ErrNotFound          = errors.New("not found")
	ErrUpstreamQuery     = errors.New("upstream query failed")
)
