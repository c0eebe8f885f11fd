package repository

import (
	"context"
	"regexp"
	"testing"
	"time"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const lookupQuery = "SELECT user_id, expires_at, revoked_at FROM api_tokens WHERE token_hash=? LIMIT 1"

func TestTokenRepoLookupLive(t *testing.T) {
	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	defer db.Close()

	mock.ExpectQuery(regexp.QuoteMeta(lookupQuery)).
		WithArgs("abc123").
		WillReturnRows(sqlmock.NewRows([]string{"user_id", "expires_at", "revoked_at"}).
			AddRow(7, time.Now().UTC().Add(time.Hour), nil))

	repo := NewTokenRepo(db)
	uid, err := repo.Lookup(context.Background(), "abc123")
	require.NoError(t, err)
	assert.Equal(t, uint64(7), uid)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestTokenRepoLookupUnknown(t *testing.T) {
	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	defer db.Close()

	mock.ExpectQuery(regexp.QuoteMeta(lookupQuery)).
		WithArgs("missing").
		WillReturnRows(sqlmock.NewRows([]string{"user_id", "expires_at", "revoked_at"}))

	repo := NewTokenRepo(db)
	_, err = repo.Lookup(context.Background(), "missing")
	assert.ErrorIs(t, err, ErrTokenNotFound)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestTokenRepoLookupRevoked(t *testing.T) {
	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	defer db.Close()

	mock.ExpectQuery(regexp.QuoteMeta(lookupQuery)).
		WithArgs("revoked").
		WillReturnRows(sqlmock.NewRows([]string{"user_id", "expires_at", "revoked_at"}).
			AddRow(7, time.Now().UTC().Add(time.Hour), time.Now().UTC().Add(-time.Minute)))

	repo := NewTokenRepo(db)
	_, err = repo.Lookup(context.Background(), "revoked")
	assert.ErrorIs(t, err, ErrTokenNotFound)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestTokenRepoLookupExpired(t *testing.T) {
	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	defer db.Close()

	mock.ExpectQuery(regexp.QuoteMeta(lookupQuery)).
		WithArgs("stale").
		WillReturnRows(sqlmock.NewRows([]string{"user_id", "expires_at", "revoked_at"}).
			AddRow(7, time.Now().UTC().Add(-time.Hour), nil))

	repo := NewTokenRepo(db)
	_, err = repo.Lookup(context.Background(), "stale")
	assert.ErrorIs(t, err, ErrTokenNotFound)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestTokenRepoStoreAndRevoke(t *testing.T) {
	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	defer db.Close()

	exp := time.Now().UTC().Add(30 * 24 * time.Hour)
	mock.ExpectExec(regexp.QuoteMeta(
		"INSERT INTO api_tokens (user_id, token_hash, expires_at) VALUES (?,?,?)")).
		WithArgs(7, "abc123", exp).
		WillReturnResult(sqlmock.NewResult(1, 1))
	mock.ExpectExec(regexp.QuoteMeta(
		"UPDATE api_tokens SET revoked_at=NOW() WHERE token_hash=? AND revoked_at IS NULL")).
		WithArgs("abc123").
		WillReturnResult(sqlmock.NewResult(0, 1))

	repo := NewTokenRepo(db)
	require.NoError(t, repo.Store(context.Background(), 7, "abc123", exp))
	require.NoError(t, repo.RevokeByHash(context.Background(), "abc123"))
	assert.NoError(t, mock.ExpectationsWereMet())
}
