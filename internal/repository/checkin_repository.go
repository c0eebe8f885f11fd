package repository

import (
	"context"
	"database/sql"
	"time"
)

// Checkin is one row of the append-only check-in ledger. Rows are never
// updated or deleted by the application.
type Checkin struct {
	ID        uint64    `json:"id"`
	UserID    uint64    `json:"user_id"`
	VenueID   uint64    `json:"venue_id"`
	Timestamp time.Time `json:"timestamp"`
}

// CheckinWithVenue joins a ledger row with the visited venue's details for
// the per-user history listing.
type CheckinWithVenue struct {
	Checkin
	Venue Venue `json:"venue"`
}

// CheckinRepo manages the check-in ledger.
type CheckinRepo struct {
	db *sql.DB
}

// NewCheckinRepo constructs a CheckinRepo with the given DB handle.
func NewCheckinRepo(db *sql.DB) *CheckinRepo {
	return &CheckinRepo{db: db}
}

// Create appends a check-in for the given user and venue at the given
// server timestamp and returns the stored row.
func (r *CheckinRepo) Create(ctx context.Context, userID, venueID uint64, ts time.Time) (*Checkin, error) {
	res, err := r.db.ExecContext(ctx,
		"INSERT INTO checkins (user_id, venue_id, timestamp) VALUES (?,?,?)",
		userID, venueID, ts)
	if err != nil {
		return nil, err
	}
	id, err := res.LastInsertId()
	if err != nil {
		return nil, err
	}
	return &Checkin{ID: uint64(id), UserID: userID, VenueID: venueID, Timestamp: ts}, nil
}

// ListByUser returns all of a user's check-ins joined with venue details,
// most recent first.
func (r *CheckinRepo) ListByUser(ctx context.Context, userID uint64) ([]CheckinWithVenue, error) {
	const q = `SELECT c.id, c.user_id, c.venue_id, c.timestamp,
	                  v.id, v.name, v.address, v.type, v.city, v.owner_id, v.latitude, v.longitude
	           FROM checkins c
	           JOIN venues v ON v.id = c.venue_id
	           WHERE c.user_id = ?
	           ORDER BY c.timestamp DESC`
	rows, err := r.db.QueryContext(ctx, q, userID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	out := make([]CheckinWithVenue, 0)
	for rows.Next() {
		var (
			row  CheckinWithVenue
			typ  sql.NullString
			city sql.NullString
			own  sql.NullInt64
			lat  sql.NullFloat64
			lng  sql.NullFloat64
		)
		if err := rows.Scan(
			&row.ID, &row.UserID, &row.VenueID, &row.Timestamp,
			&row.Venue.ID, &row.Venue.Name, &row.Venue.Address, &typ, &city, &own, &lat, &lng,
		); err != nil {
			return nil, err
		}
		if typ.Valid {
			row.Venue.Type = &typ.String
		}
		if city.Valid {
			row.Venue.City = &city.String
		}
		if own.Valid {
			id := uint64(own.Int64)
			row.Venue.OwnerID = &id
		}
		if lat.Valid {
			row.Venue.Latitude = &lat.Float64
		}
		if lng.Valid {
			row.Venue.Longitude = &lng.Float64
		}
		out = append(out, row)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return out, nil
}
