package models

import "time"

// Application links a seeker to a listing. Owned by the marketplace CRUD
// surface; the ledger only reads it to resolve parties and display data.
type Application struct {
	ID           string    `json:"id"`
	ListingID    string    `json:"listing_id"`
	SeekerID     string    `json:"seeker_id"`
	BreederID    string    `json:"breeder_id"`
	ListingTitle string    `json:"listing_title"`
	Status       string    `json:"status"`
	CreatedAt    time.Time `json:"created_at"`
}
