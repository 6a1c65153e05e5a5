package postgres

import (
	"context"
	"errors"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/pawlink/pawlink-backend/internal/models"
)

type transactionsRepo struct{ pool *pgxpool.Pool }

const txColumns = `t.id, t.amount, t.seeker_id, t.breeder_id, t.application_id, t.status, t.provider_event_id, COALESCE(l.title, ''), t.created_at`

const txJoins = `
   FROM transactions t
   LEFT JOIN applications a ON a.id = t.application_id
   LEFT JOIN listings l ON l.id = a.listing_id`

func scanTx(row pgx.Row) (models.Transaction, error) {
	var (
		tx    models.Transaction
		appID *string
	)
	err := row.Scan(&tx.ID, &tx.Amount, &tx.SeekerID, &tx.BreederID, &appID, &tx.Status, &tx.ProviderEventID, &tx.ListingTitle, &tx.CreatedAt)
	if appID != nil {
		tx.ApplicationID = *appID
	}
	return tx, err
}

// Append relies on the unique index on provider_event_id: a replayed webhook
// delivery hits the conflict, inserts nothing, and the previously stored row
// is returned with models.ErrDuplicateEvent.
func (r *transactionsRepo) Append(ctx context.Context, tx models.Transaction) (models.Transaction, error) {
	if tx.ID == "" {
		tx.ID = uuid.NewString()
	}
	var appID *string
	if tx.ApplicationID != "" {
		appID = &tx.ApplicationID
	}
	const q = `
INSERT INTO transactions (id, amount, seeker_id, breeder_id, application_id, status, provider_event_id)
VALUES ($1,$2,$3,$4,$5,$6,$7)
ON CONFLICT (provider_event_id) DO NOTHING
RETURNING id, created_at;`
	err := r.pool.QueryRow(ctx, q,
		tx.ID, tx.Amount, tx.SeekerID, tx.BreederID, appID, tx.Status, tx.ProviderEventID,
	).Scan(&tx.ID, &tx.CreatedAt)
	if errors.Is(err, pgx.ErrNoRows) {
		stored, gerr := r.getByProviderEventID(ctx, tx.ProviderEventID)
		if gerr != nil {
			return models.Transaction{}, gerr
		}
		return stored, models.ErrDuplicateEvent
	}
	return tx, err
}

func (r *transactionsRepo) getByProviderEventID(ctx context.Context, eventID string) (models.Transaction, error) {
	return scanTx(r.pool.QueryRow(ctx,
		`SELECT `+txColumns+txJoins+` WHERE t.provider_event_id=$1`, eventID))
}

// Transition is a compare-and-set on status: the WHERE clause carries the
// expected current status, so two racing callers cannot both apply it.
func (r *transactionsRepo) Transition(ctx context.Context, id string, from, to models.TransactionStatus) error {
	tag, err := r.pool.Exec(ctx,
		`UPDATE transactions SET status=$3 WHERE id=$1 AND status=$2`,
		id, from, to,
	)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 1 {
		return nil
	}
	var exists bool
	if err := r.pool.QueryRow(ctx, `SELECT EXISTS(SELECT 1 FROM transactions WHERE id=$1)`, id).Scan(&exists); err != nil {
		return err
	}
	if !exists {
		return models.ErrNotFound
	}
	return models.ErrInvalidTransition
}

func (r *transactionsRepo) GetByID(ctx context.Context, id string) (models.Transaction, error) {
	tx, err := scanTx(r.pool.QueryRow(ctx,
		`SELECT `+txColumns+txJoins+` WHERE t.id=$1`, id))
	if errors.Is(err, pgx.ErrNoRows) {
		return models.Transaction{}, models.ErrNotFound
	}
	return tx, err
}

func (r *transactionsRepo) ListBySeeker(ctx context.Context, seekerID string) ([]models.Transaction, error) {
	return r.list(ctx, `WHERE t.seeker_id=$1`, seekerID)
}

func (r *transactionsRepo) ListByBreeder(ctx context.Context, breederID string) ([]models.Transaction, error) {
	return r.list(ctx, `WHERE t.breeder_id=$1`, breederID)
}

func (r *transactionsRepo) ListByUser(ctx context.Context, userID string) ([]models.Transaction, error) {
	return r.list(ctx, `WHERE t.seeker_id=$1 OR t.breeder_id=$1`, userID)
}

func (r *transactionsRepo) list(ctx context.Context, where string, arg any) ([]models.Transaction, error) {
	rows, err := r.pool.Query(ctx,
		`SELECT `+txColumns+txJoins+` `+where+` ORDER BY t.created_at DESC`, arg)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	out := make([]models.Transaction, 0)
	for rows.Next() {
		tx, err := scanTx(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, tx)
	}
	return out, rows.Err()
}
