package postgres

import (
	"context"
	"errors"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/pawlink/pawlink-backend/internal/models"
)

type applicationsRepo struct{ pool *pgxpool.Pool }

func (r *applicationsRepo) GetByID(ctx context.Context, id string) (models.Application, error) {
	var a models.Application
	err := r.pool.QueryRow(ctx,
		`SELECT a.id, a.listing_id, a.seeker_id, l.breeder_id, l.title, a.status, a.created_at
		   FROM applications a
		   JOIN listings l ON l.id = a.listing_id
		  WHERE a.id=$1`,
		id,
	).Scan(&a.ID, &a.ListingID, &a.SeekerID, &a.BreederID, &a.ListingTitle, &a.Status, &a.CreatedAt)
	if errors.Is(err, pgx.ErrNoRows) {
		return models.Application{}, models.ErrNotFound
	}
	return a, err
}
