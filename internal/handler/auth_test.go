package handler

import (
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"regexp"
	"strings"
	"testing"
	"time"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/labstack/echo/v4"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"checkspot/internal/config"
	"checkspot/internal/repository"
	"checkspot/internal/utils"
	"checkspot/internal/validation"
)

func testConfig() config.Config {
	return config.Config{TokenSecret: "test-secret", TokenTTLDays: 30, BcryptCost: 4}
}

// newJSONContext builds an Echo context around a JSON request, with the real
// request validator attached.
func newJSONContext(method, target, body string) (echo.Context, *httptest.ResponseRecorder) {
	e := echo.New()
	e.Validator = validation.New()
	req := httptest.NewRequest(method, target, strings.NewReader(body))
	if body != "" {
		req.Header.Set(echo.HeaderContentType, echo.MIMEApplicationJSON)
	}
	rec := httptest.NewRecorder()
	return e.NewContext(req, rec), rec
}

func decodeErrors(t *testing.T, rec *httptest.ResponseRecorder) validation.ErrorResponse {
	t.Helper()
	var out validation.ErrorResponse
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &out))
	return out
}

func TestSignupValidation(t *testing.T) {
	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	defer db.Close()

	h := NewAuthHandler(testConfig(), repository.NewUserRepo(db), repository.NewTokenRepo(db))

	c, rec := newJSONContext(http.MethodPost, "/signup",
		`{"name":"Jane Doe","email":"not-an-email","password":"short"}`)
	require.NoError(t, h.Signup(c))

	assert.Equal(t, http.StatusUnprocessableEntity, rec.Code)
	resp := decodeErrors(t, rec)
	assert.Contains(t, resp.Errors, "email")
	assert.Contains(t, resp.Errors, "password")
	assert.Contains(t, resp.Errors["password"][0], "at least 8")
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestSignupCreatesUserAndIssuesToken(t *testing.T) {
	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	defer db.Close()

	mock.ExpectExec(regexp.QuoteMeta("INSERT INTO users (name, email, password_hash) VALUES (?,?,?)")).
		WithArgs("Jane Doe", "jane@example.com", sqlmock.AnyArg()).
		WillReturnResult(sqlmock.NewResult(1, 1))
	mock.ExpectExec(regexp.QuoteMeta("INSERT INTO api_tokens (user_id, token_hash, expires_at) VALUES (?,?,?)")).
		WithArgs(1, sqlmock.AnyArg(), sqlmock.AnyArg()).
		WillReturnResult(sqlmock.NewResult(1, 1))

	h := NewAuthHandler(testConfig(), repository.NewUserRepo(db), repository.NewTokenRepo(db))

	c, rec := newJSONContext(http.MethodPost, "/signup",
		`{"name":"Jane Doe","email":"Jane@Example.com","password":"hunter2hunter2"}`)
	require.NoError(t, h.Signup(c))
	require.Equal(t, http.StatusCreated, rec.Code)

	var resp struct {
		User struct {
			ID    uint64 `json:"id"`
			Email string `json:"email"`
		} `json:"user"`
		Token string `json:"token"`
	}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
	assert.Equal(t, uint64(1), resp.User.ID)
	assert.Equal(t, "jane@example.com", resp.User.Email)
	require.NotEmpty(t, resp.Token)

	// The issued token must verify against the signing secret and carry the
	// new user's id.
	uid, err := utils.ParseBearerToken("test-secret", resp.Token)
	require.NoError(t, err)
	assert.Equal(t, uint64(1), uid)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestSignupDuplicateEmail(t *testing.T) {
	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	defer db.Close()

	mock.ExpectExec("INSERT INTO users").
		WillReturnError(errors.New("Error 1062: Duplicate entry 'jane@example.com' for key 'users.email'"))

	h := NewAuthHandler(testConfig(), repository.NewUserRepo(db), repository.NewTokenRepo(db))

	c, rec := newJSONContext(http.MethodPost, "/signup",
		`{"name":"Jane Doe","email":"jane@example.com","password":"hunter2hunter2"}`)
	require.NoError(t, h.Signup(c))

	assert.Equal(t, http.StatusUnprocessableEntity, rec.Code)
	resp := decodeErrors(t, rec)
	assert.Equal(t, []string{"The email has already been taken."}, resp.Errors["email"])
	assert.NoError(t, mock.ExpectationsWereMet())
}

func userRow(id uint64, name, email, hash string) *sqlmock.Rows {
	now := time.Now().UTC()
	return sqlmock.NewRows([]string{"id", "name", "email", "password_hash", "created_at", "updated_at"}).
		AddRow(id, name, email, hash, now, now)
}

func TestLoginFailureIsUniform(t *testing.T) {
	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	defer db.Close()

	hash, err := utils.HashPassword("correct-password", 4)
	require.NoError(t, err)

	// Unknown email.
	mock.ExpectQuery("FROM users WHERE email=").
		WithArgs("ghost@example.com").
		WillReturnRows(sqlmock.NewRows([]string{"id", "name", "email", "password_hash", "created_at", "updated_at"}))
	// Known email, wrong password.
	mock.ExpectQuery("FROM users WHERE email=").
		WithArgs("jane@example.com").
		WillReturnRows(userRow(1, "Jane Doe", "jane@example.com", hash))

	h := NewAuthHandler(testConfig(), repository.NewUserRepo(db), repository.NewTokenRepo(db))

	c1, rec1 := newJSONContext(http.MethodPost, "/login",
		`{"email":"ghost@example.com","password":"whatever123"}`)
	require.NoError(t, h.Login(c1))

	c2, rec2 := newJSONContext(http.MethodPost, "/login",
		`{"email":"jane@example.com","password":"wrong-password"}`)
	require.NoError(t, h.Login(c2))

	// Identical status and body: the endpoint must not reveal whether the
	// email is registered.
	assert.Equal(t, http.StatusUnprocessableEntity, rec1.Code)
	assert.Equal(t, rec1.Code, rec2.Code)
	assert.Equal(t, rec1.Body.String(), rec2.Body.String())
	assert.Contains(t, rec1.Body.String(), "The provided credentials are incorrect.")
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestLoginSuccess(t *testing.T) {
	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	defer db.Close()

	hash, err := utils.HashPassword("correct-password", 4)
	require.NoError(t, err)

	mock.ExpectQuery("FROM users WHERE email=").
		WithArgs("jane@example.com").
		WillReturnRows(userRow(1, "Jane Doe", "jane@example.com", hash))
	mock.ExpectExec("INSERT INTO api_tokens").
		WithArgs(1, sqlmock.AnyArg(), sqlmock.AnyArg()).
		WillReturnResult(sqlmock.NewResult(1, 1))

	h := NewAuthHandler(testConfig(), repository.NewUserRepo(db), repository.NewTokenRepo(db))

	c, rec := newJSONContext(http.MethodPost, "/login",
		`{"email":"jane@example.com","password":"correct-password"}`)
	require.NoError(t, h.Login(c))
	require.Equal(t, http.StatusOK, rec.Code)

	var resp struct {
		Token string `json:"token"`
	}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
	assert.NotEmpty(t, resp.Token)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestLogoutRevokesPresentedToken(t *testing.T) {
	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	defer db.Close()

	mock.ExpectExec(regexp.QuoteMeta(
		"UPDATE api_tokens SET revoked_at=NOW() WHERE token_hash=? AND revoked_at IS NULL")).
		WithArgs("deadbeef").
		WillReturnResult(sqlmock.NewResult(0, 1))

	h := NewAuthHandler(testConfig(), repository.NewUserRepo(db), repository.NewTokenRepo(db))

	c, rec := newJSONContext(http.MethodPost, "/logout", "")
	c.Set("token_hash", "deadbeef")
	require.NoError(t, h.Logout(c))
	assert.Equal(t, http.StatusNoContent, rec.Code)
	assert.NoError(t, mock.ExpectationsWereMet())
}
