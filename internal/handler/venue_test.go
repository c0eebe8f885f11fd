package handler

import (
	"encoding/json"
	"net/http"
	"testing"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"checkspot/internal/repository"
)

func venueHandler(t *testing.T) (*VenueHandler, sqlmock.Sqlmock, func()) {
	t.Helper()
	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	h := NewVenueHandler(repository.NewVenueRepo(db))
	return h, mock, func() { db.Close() }
}

func TestVenueListPassesCityFilter(t *testing.T) {
	h, mock, closeDB := venueHandler(t)
	defer closeDB()

	mock.ExpectQuery("FROM venues WHERE city").
		WithArgs("Oslo").
		WillReturnRows(venueByIDRow(1, "Aurora Climbing"))

	c, rec := newJSONContext(http.MethodGet, "/venues?city=Oslo", "")
	require.NoError(t, h.List(c))
	require.Equal(t, http.StatusOK, rec.Code)

	var venues []repository.Venue
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &venues))
	require.Len(t, venues, 1)
	assert.Equal(t, "Aurora Climbing", venues[0].Name)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestVenueListUnknownCityIsEmptyArray(t *testing.T) {
	h, mock, closeDB := venueHandler(t)
	defer closeDB()

	mock.ExpectQuery("FROM venues WHERE city").
		WithArgs("Atlantis").
		WillReturnRows(sqlmock.NewRows([]string{"id", "name", "address", "type", "city", "owner_id", "latitude", "longitude"}))

	c, rec := newJSONContext(http.MethodGet, "/venues?city=Atlantis", "")
	require.NoError(t, h.List(c))
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.JSONEq(t, "[]", rec.Body.String())
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestVenueCities(t *testing.T) {
	h, mock, closeDB := venueHandler(t)
	defer closeDB()

	mock.ExpectQuery("SELECT DISTINCT city FROM venues").
		WillReturnRows(sqlmock.NewRows([]string{"city"}).AddRow("Bergen").AddRow("Oslo"))

	c, rec := newJSONContext(http.MethodGet, "/cities", "")
	require.NoError(t, h.Cities(c))
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.JSONEq(t, `["Bergen","Oslo"]`, rec.Body.String())
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestVenueCreateRecordsOwnerFromSession(t *testing.T) {
	h, mock, closeDB := venueHandler(t)
	defer closeDB()

	mock.ExpectExec("INSERT INTO venues").
		WithArgs("Aurora Climbing", "12 Rope St", nil, "Oslo", 3, nil, nil).
		WillReturnResult(sqlmock.NewResult(9, 1))

	c, rec := newJSONContext(http.MethodPost, "/venues",
		`{"name":"Aurora Climbing","address":"12 Rope St","city":"Oslo"}`)
	c.Set("user_id", uint64(3))
	require.NoError(t, h.Create(c))
	require.Equal(t, http.StatusCreated, rec.Code)

	var out repository.Venue
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &out))
	assert.Equal(t, uint64(9), out.ID)
	require.NotNil(t, out.OwnerID)
	assert.Equal(t, uint64(3), *out.OwnerID)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestVenueCreateValidation(t *testing.T) {
	h, mock, closeDB := venueHandler(t)
	defer closeDB()

	c, rec := newJSONContext(http.MethodPost, "/venues", `{"name":"No Address"}`)
	c.Set("user_id", uint64(3))
	require.NoError(t, h.Create(c))

	assert.Equal(t, http.StatusUnprocessableEntity, rec.Code)
	resp := decodeErrors(t, rec)
	assert.Contains(t, resp.Errors, "address")
	assert.NoError(t, mock.ExpectationsWereMet())
}
