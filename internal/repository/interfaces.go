package repository

import (
	"context"

	"github.com/pawlink/pawlink-backend/internal/models"
)

type Users interface {
	Create(ctx context.Context, username, email, passwordHash, role string) (models.User, error)
	GetByID(ctx context.Context, id string) (models.User, error)
	GetByEmail(ctx context.Context, email string) (models.User, error)
	List(ctx context.Context) ([]models.User, error)
}

type Applications interface {
	// GetByID resolves an application together with its listing title and
	// the owning breeder.
	GetByID(ctx context.Context, id string) (models.Application, error)
}

// Transactions is the persistent ledger. Rows are appended once and never
// deleted; only status moves, and only through the legal transitions.
type Transactions interface {
	// Append inserts a ledger row. A replayed provider event returns the
	// previously stored row together with models.ErrDuplicateEvent; no
	// second row is ever created.
	Append(ctx context.Context, tx models.Transaction) (models.Transaction, error)

	// Transition applies from->to as an atomic conditional update. When the
	// row is not currently in from (including a lost race), it returns
	// models.ErrInvalidTransition and leaves the row untouched.
	Transition(ctx context.Context, id string, from, to models.TransactionStatus) error

	GetByID(ctx context.Context, id string) (models.Transaction, error)

	// Listings are ordered by created_at descending, enriched with the
	// referenced listing title where an application record exists.
	ListBySeeker(ctx context.Context, seekerID string) ([]models.Transaction, error)
	ListByBreeder(ctx context.Context, breederID string) ([]models.Transaction, error)
	ListByUser(ctx context.Context, userID string) ([]models.Transaction, error)
}

type AuditLogs interface {
	Create(ctx context.Context, l models.AuditLog) error
}
