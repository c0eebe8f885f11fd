package repository

import (
	"context"
	"database/sql"
	"time"
)

// Payout mirrors the 'payouts' table: an owed amount for a venue over a
// settlement period. Periods are calendar dates.
type Payout struct {
	ID          uint64    `json:"id"`
	VenueID     uint64    `json:"venue_id"`
	Amount      float64   `json:"amount"`
	PeriodStart time.Time `json:"period_start"`
	PeriodEnd   time.Time `json:"period_end"`
	PaidStatus  string    `json:"paid_status"`
}

// PayoutRepo manages persistence for payouts.
type PayoutRepo struct {
	db *sql.DB
}

// NewPayoutRepo constructs a PayoutRepo with the given DB handle.
func NewPayoutRepo(db *sql.DB) *PayoutRepo {
	return &PayoutRepo{db: db}
}

// Create inserts a payout row and assigns the generated ID back.
func (r *PayoutRepo) Create(ctx context.Context, p *Payout) error {
	res, err := r.db.ExecContext(ctx,
		"INSERT INTO payouts (venue_id, amount, period_start, period_end, paid_status) VALUES (?,?,?,?,?)",
		p.VenueID, p.Amount, p.PeriodStart, p.PeriodEnd, p.PaidStatus)
	if err != nil {
		return err
	}
	id, err := res.LastInsertId()
	if err != nil {
		return err
	}
	p.ID = uint64(id)
	return nil
}

// ListByVenue returns a venue's payouts, most recent period first.
func (r *PayoutRepo) ListByVenue(ctx context.Context, venueID uint64) ([]Payout, error) {
	const q = `SELECT id, venue_id, amount, period_start, period_end, paid_status
	           FROM payouts
	           WHERE venue_id = ?
	           ORDER BY period_start DESC`
	rows, err := r.db.QueryContext(ctx, q, venueID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	out := make([]Payout, 0)
	for rows.Next() {
		var p Payout
		if err := rows.Scan(&p.ID, &p.VenueID, &p.Amount, &p.PeriodStart, &p.PeriodEnd, &p.PaidStatus); err != nil {
			return nil, err
		}
		out = append(out, p)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return out, nil
}
