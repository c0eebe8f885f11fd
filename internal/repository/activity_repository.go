package repository

import (
	"context"
	"database/sql"
	"errors"
	"time"
)

// Activity represents a scheduled session at a venue. EndTime and Capacity
// are optional; a nil capacity means unlimited. All times are stored UTC.
type Activity struct {
	ID          uint64     `json:"id"`
	VenueID     uint64     `json:"venue_id"`
	Title       string     `json:"title"`
	Description *string    `json:"description"`
	StartTime   time.Time  `json:"start_time"`
	EndTime     *time.Time `json:"end_time"`
	Capacity    *uint32    `json:"capacity"`
}

// ActivityWithVenue is an activity row joined with its venue's summary
// fields, as returned by the global listing and by creation.
type ActivityWithVenue struct {
	Activity
	Venue VenueSummary `json:"venue"`
}

// ErrActivityNotFound indicates that an activity was not located in the DB.
var ErrActivityNotFound = errors.New("activity not found")

// ActivityRepo manages persistence for activities.
type ActivityRepo struct {
	db *sql.DB
}

// NewActivityRepo constructs an ActivityRepo with the given DB handle.
func NewActivityRepo(db *sql.DB) *ActivityRepo {
	return &ActivityRepo{db: db}
}

func scanActivity(row interface{ Scan(dest ...any) error }, a *Activity) error {
	var (
		desc sql.NullString
		end  sql.NullTime
		cap_ sql.NullInt64
	)
	if err := row.Scan(&a.ID, &a.VenueID, &a.Title, &desc, &a.StartTime, &end, &cap_); err != nil {
		return err
	}
	if desc.Valid {
		a.Description = &desc.String
	}
	if end.Valid {
		t := end.Time
		a.EndTime = &t
	}
	if cap_.Valid {
		c := uint32(cap_.Int64)
		a.Capacity = &c
	}
	return nil
}

// Create inserts a new activity and assigns the generated ID back to the
// struct. Referential and range validation happens in the handler; the
// insert itself is a single row.
func (r *ActivityRepo) Create(ctx context.Context, a *Activity) error {
	res, err := r.db.ExecContext(ctx,
		"INSERT INTO activities (venue_id, title, description, start_time, end_time, capacity) VALUES (?,?,?,?,?,?)",
		a.VenueID, a.Title, a.Description, a.StartTime, a.EndTime, a.Capacity)
	if err != nil {
		return err
	}
	id, err := res.LastInsertId()
	if err != nil {
		return err
	}
	a.ID = uint64(id)
	return nil
}

// GetWithVenue fetches one activity joined with its venue summary. Used to
// build the creation response.
func (r *ActivityRepo) GetWithVenue(ctx context.Context, id uint64) (*ActivityWithVenue, error) {
	const q = `SELECT a.id, a.venue_id, a.title, a.description, a.start_time, a.end_time, a.capacity,
	                  v.id, v.name, v.address, v.city
	           FROM activities a
	           JOIN venues v ON v.id = a.venue_id
	           WHERE a.id = ?`
	var (
		out  ActivityWithVenue
		city sql.NullString
		desc sql.NullString
		end  sql.NullTime
		cap_ sql.NullInt64
	)
	err := r.db.QueryRowContext(ctx, q, id).Scan(
		&out.ID, &out.VenueID, &out.Title, &desc, &out.StartTime, &end, &cap_,
		&out.Venue.ID, &out.Venue.Name, &out.Venue.Address, &city,
	)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrActivityNotFound
		}
		return nil, err
	}
	if desc.Valid {
		out.Description = &desc.String
	}
	if end.Valid {
		t := end.Time
		out.EndTime = &t
	}
	if cap_.Valid {
		c := uint32(cap_.Int64)
		out.Capacity = &c
	}
	if city.Valid {
		out.Venue.City = &city.String
	}
	return &out, nil
}

// ListBetween returns all activities whose start time falls in [from, until)
// joined with their venue summaries, ordered by start time ascending. The
// caller supplies an exclusive upper bound (start of the day after the
// requested range) so 23:59:59 starts are still included.
func (r *ActivityRepo) ListBetween(ctx context.Context, from, until time.Time) ([]ActivityWithVenue, error) {
	const q = `SELECT a.id, a.venue_id, a.title, a.description, a.start_time, a.end_time, a.capacity,
	                  v.id, v.name, v.address, v.city
	           FROM activities a
	           JOIN venues v ON v.id = a.venue_id
	           WHERE a.start_time >= ? AND a.start_time < ?
	           ORDER BY a.start_time ASC`
	rows, err := r.db.QueryContext(ctx, q, from, until)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	out := make([]ActivityWithVenue, 0)
	for rows.Next() {
		var (
			row  ActivityWithVenue
			city sql.NullString
			desc sql.NullString
			end  sql.NullTime
			cap_ sql.NullInt64
		)
		if err := rows.Scan(
			&row.ID, &row.VenueID, &row.Title, &desc, &row.StartTime, &end, &cap_,
			&row.Venue.ID, &row.Venue.Name, &row.Venue.Address, &city,
		); err != nil {
			return nil, err
		}
		if desc.Valid {
			row.Description = &desc.String
		}
		if end.Valid {
			t := end.Time
			row.EndTime = &t
		}
		if cap_.Valid {
			c := uint32(cap_.Int64)
			row.Capacity = &c
		}
		if city.Valid {
			row.Venue.City = &city.String
		}
		out = append(out, row)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return out, nil
}

// ListByVenueBetween returns a venue's activities with start time in
// [from, until), ordered by start time ascending.
func (r *ActivityRepo) ListByVenueBetween(ctx context.Context, venueID uint64, from, until time.Time) ([]Activity, error) {
	const q = `SELECT id, venue_id, title, description, start_time, end_time, capacity
	           FROM activities
	           WHERE venue_id = ? AND start_time >= ? AND start_time < ?
	           ORDER BY start_time ASC`
	return r.listByVenue(ctx, q, venueID, from, until)
}

// ListByVenueUpcoming returns a venue's activities with start time at or
// after the given instant (start of today for the default view), ordered by
// start time ascending.
func (r *ActivityRepo) ListByVenueUpcoming(ctx context.Context, venueID uint64, from time.Time) ([]Activity, error) {
	const q = `SELECT id, venue_id, title, description, start_time, end_time, capacity
	           FROM activities
	           WHERE venue_id = ? AND start_time >= ?
	           ORDER BY start_time ASC`
	return r.listByVenue(ctx, q, venueID, from)
}

func (r *ActivityRepo) listByVenue(ctx context.Context, q string, args ...any) ([]Activity, error) {
	rows, err := r.db.QueryContext(ctx, q, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	out := make([]Activity, 0)
	for rows.Next() {
		var a Activity
		if err := scanActivity(rows, &a); err != nil {
			return nil, err
		}
		out = append(out, a)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return out, nil
}
