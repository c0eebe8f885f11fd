package repository

import (
	"context"
	"database/sql"
	"errors"
)

// Venue mirrors the 'venues' table. Type, city, coordinates and owner are
// optional; name and address are required at creation.
type Venue struct {
	ID        uint64   `json:"id"`
	Name      string   `json:"name"`
	Address   string   `json:"address"`
	Type      *string  `json:"type"`
	City      *string  `json:"city"`
	OwnerID   *uint64  `json:"owner_id,omitempty"`
	Latitude  *float64 `json:"latitude"`
	Longitude *float64 `json:"longitude"`
}

// VenueSummary is the fixed projection joined onto activity rows. It keeps
// response shapes stable instead of letting the full venue row leak in.
type VenueSummary struct {
	ID      uint64  `json:"id"`
	Name    string  `json:"name"`
	Address string  `json:"address"`
	City    *string `json:"city"`
}

// VenueRepo manages persistence for venues.
type VenueRepo struct {
	db *sql.DB
}

// NewVenueRepo constructs a VenueRepo with the given DB handle.
func NewVenueRepo(db *sql.DB) *VenueRepo {
	return &VenueRepo{db: db}
}

const venueCols = "id, name, address, type, city, owner_id, latitude, longitude"

func scanVenue(row interface{ Scan(dest ...any) error }) (Venue, error) {
	var (
		v    Venue
		typ  sql.NullString
		city sql.NullString
		own  sql.NullInt64
		lat  sql.NullFloat64
		lng  sql.NullFloat64
	)
	err := row.Scan(&v.ID, &v.Name, &v.Address, &typ, &city, &own, &lat, &lng)
	if err != nil {
		return v, err
	}
	if typ.Valid {
		v.Type = &typ.String
	}
	if city.Valid {
		v.City = &city.String
	}
	if own.Valid {
		id := uint64(own.Int64)
		v.OwnerID = &id
	}
	if lat.Valid {
		v.Latitude = &lat.Float64
	}
	if lng.Valid {
		v.Longitude = &lng.Float64
	}
	return v, nil
}

// Create inserts a new venue and assigns the generated ID back to the struct.
func (r *VenueRepo) Create(ctx context.Context, v *Venue) error {
	res, err := r.db.ExecContext(ctx,
		"INSERT INTO venues (name, address, type, city, owner_id, latitude, longitude) VALUES (?,?,?,?,?,?,?)",
		v.Name, v.Address, v.Type, v.City, v.OwnerID, v.Latitude, v.Longitude)
	if err != nil {
		return err
	}
	id, err := res.LastInsertId()
	if err != nil {
		return err
	}
	v.ID = uint64(id)
	return nil
}

// GetByID retrieves a venue by its ID. Returns ErrVenueNotFound when there
// is no matching row.
func (r *VenueRepo) GetByID(ctx context.Context, id uint64) (*Venue, error) {
	row := r.db.QueryRowContext(ctx, "SELECT "+venueCols+" FROM venues WHERE id = ?", id)
	v, err := scanVenue(row)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrVenueNotFound
		}
		return nil, err
	}
	return &v, nil
}

// List returns all venues ordered by name ascending. When city is non-empty
// only venues in that exact city are returned; an unknown city simply yields
// an empty slice, never an error.
func (r *VenueRepo) List(ctx context.Context, city string) ([]Venue, error) {
	q := "SELECT " + venueCols + " FROM venues"
	args := []any{}
	if city != "" {
		q += " WHERE city = ?"
		args = append(args, city)
	}
	q += " ORDER BY name ASC"

	rows, err := r.db.QueryContext(ctx, q, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	out := make([]Venue, 0)
	for rows.Next() {
		v, err := scanVenue(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, v)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return out, nil
}

// ListCities returns the distinct non-empty city names in alphabetical order.
func (r *VenueRepo) ListCities(ctx context.Context) ([]string, error) {
	rows, err := r.db.QueryContext(ctx,
		"SELECT DISTINCT city FROM venues WHERE city IS NOT NULL AND city <> '' ORDER BY city ASC")
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	out := make([]string, 0)
	for rows.Next() {
		var c string
		if err := rows.Scan(&c); err != nil {
			return nil, err
		}
		out = append(out, c)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return out, nil
}

// Exists reports whether a venue row with the given ID is present. Used for
// referential checks before inserting activities and check-ins.
func (r *VenueRepo) Exists(ctx context.Context, id uint64) (bool, error) {
	var one int
	err := r.db.QueryRowContext(ctx, "SELECT 1 FROM venues WHERE id = ? LIMIT 1", id).Scan(&one)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return false, nil
		}
		return false, err
	}
	return true, nil
}
