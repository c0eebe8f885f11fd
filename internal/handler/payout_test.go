package handler

import (
	"encoding/json"
	"net/http"
	"testing"
	"time"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"checkspot/internal/repository"
)

func payoutHandler(t *testing.T) (*PayoutHandler, sqlmock.Sqlmock, func()) {
	t.Helper()
	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	h := NewPayoutHandler(repository.NewPayoutRepo(db), repository.NewVenueRepo(db))
	return h, mock, func() { db.Close() }
}

func ownedVenueRow(id, owner uint64) *sqlmock.Rows {
	return sqlmock.NewRows([]string{"id", "name", "address", "type", "city", "owner_id", "latitude", "longitude"}).
		AddRow(id, "Aurora Climbing", "12 Rope St", nil, "Oslo", owner, nil, nil)
}

func TestPayoutListByVenueOwner(t *testing.T) {
	h, mock, closeDB := payoutHandler(t)
	defer closeDB()

	mock.ExpectQuery("FROM venues WHERE id").
		WithArgs(5).
		WillReturnRows(ownedVenueRow(5, 3))
	mock.ExpectQuery("FROM payouts").
		WithArgs(5).
		WillReturnRows(sqlmock.NewRows([]string{"id", "venue_id", "amount", "period_start", "period_end", "paid_status"}).
			AddRow(2, 5, 420.50, time.Date(2026, 8, 1, 0, 0, 0, 0, time.UTC), time.Date(2026, 8, 31, 0, 0, 0, 0, time.UTC), "pending").
			AddRow(1, 5, 310.00, time.Date(2026, 7, 1, 0, 0, 0, 0, time.UTC), time.Date(2026, 7, 31, 0, 0, 0, 0, time.UTC), "paid"))

	c, rec := newJSONContext(http.MethodGet, "/venues/5/payouts", "")
	c.SetParamNames("id")
	c.SetParamValues("5")
	c.Set("user_id", uint64(3))
	require.NoError(t, h.ListByVenue(c))
	require.Equal(t, http.StatusOK, rec.Code)

	var items []repository.Payout
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &items))
	require.Len(t, items, 2)
	assert.Equal(t, "pending", items[0].PaidStatus)
	assert.InDelta(t, 420.50, items[0].Amount, 0.001)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestPayoutListForbiddenForNonOwner(t *testing.T) {
	h, mock, closeDB := payoutHandler(t)
	defer closeDB()

	mock.ExpectQuery("FROM venues WHERE id").
		WithArgs(5).
		WillReturnRows(ownedVenueRow(5, 3))

	c, rec := newJSONContext(http.MethodGet, "/venues/5/payouts", "")
	c.SetParamNames("id")
	c.SetParamValues("5")
	c.Set("user_id", uint64(8))
	require.NoError(t, h.ListByVenue(c))
	assert.Equal(t, http.StatusForbidden, rec.Code)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestPayoutListForbiddenForUnownedVenue(t *testing.T) {
	h, mock, closeDB := payoutHandler(t)
	defer closeDB()

	// Venue with no owner on record: nobody may read its payouts.
	mock.ExpectQuery("FROM venues WHERE id").
		WithArgs(5).
		WillReturnRows(venueByIDRow(5, "Aurora Climbing"))

	c, rec := newJSONContext(http.MethodGet, "/venues/5/payouts", "")
	c.SetParamNames("id")
	c.SetParamValues("5")
	c.Set("user_id", uint64(3))
	require.NoError(t, h.ListByVenue(c))
	assert.Equal(t, http.StatusForbidden, rec.Code)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestPayoutListUnknownVenue(t *testing.T) {
	h, mock, closeDB := payoutHandler(t)
	defer closeDB()

	mock.ExpectQuery("FROM venues WHERE id").
		WithArgs(99).
		WillReturnRows(sqlmock.NewRows([]string{"id", "name", "address", "type", "city", "owner_id", "latitude", "longitude"}))

	c, rec := newJSONContext(http.MethodGet, "/venues/99/payouts", "")
	c.SetParamNames("id")
	c.SetParamValues("99")
	c.Set("user_id", uint64(3))
	require.NoError(t, h.ListByVenue(c))
	assert.Equal(t, http.StatusNotFound, rec.Code)
	assert.NoError(t, mock.ExpectationsWereMet())
}
