package validation

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type sampleReq struct {
	Name     string `json:"name" validate:"required,max=10"`
	Email    string `json:"email" validate:"required,email"`
	Password string `json:"password" validate:"required,min=8"`
	Skipped  string `json:"-" validate:"omitempty,max=1"`
}

func TestValidateUsesJSONFieldNames(t *testing.T) {
	v := New()
	err := v.Validate(&sampleReq{Name: "", Email: "nope", Password: "short"})
	require.Error(t, err)

	resp := NewErrorResponse(err)
	assert.Contains(t, resp.Errors, "name")
	assert.Contains(t, resp.Errors, "email")
	assert.Contains(t, resp.Errors, "password")
	assert.NotEmpty(t, resp.Message)
}

func TestValidateMessages(t *testing.T) {
	v := New()
	err := v.Validate(&sampleReq{Name: "way too long a name", Email: "nope", Password: "short"})
	require.Error(t, err)

	resp := NewErrorResponse(err)
	assert.Equal(t, []string{"The name field must not exceed 10 characters."}, resp.Errors["name"])
	assert.Equal(t, []string{"The email field must be a valid email address."}, resp.Errors["email"])
	assert.Equal(t, []string{"The password field must be at least 8 characters."}, resp.Errors["password"])
}

func TestValidatePasses(t *testing.T) {
	v := New()
	err := v.Validate(&sampleReq{Name: "Jane", Email: "jane@example.com", Password: "hunter2hunter2"})
	assert.NoError(t, err)
}

func TestNewErrorResponseNonValidatorError(t *testing.T) {
	resp := NewErrorResponse(assert.AnError)
	assert.Equal(t, "The given data was invalid.", resp.Message)
	assert.Empty(t, resp.Errors)
}

func TestFieldError(t *testing.T) {
	resp := FieldError("venue_id", "The selected venue id is invalid.")
	assert.Equal(t, "The selected venue id is invalid.", resp.Message)
	assert.Equal(t, map[string][]string{"venue_id": {"The selected venue id is invalid."}}, resp.Errors)
}

func TestFieldMessageUnderscoresBecomeSpaces(t *testing.T) {
	type rangeReq struct {
		StartTime string `json:"start_time" validate:"required"`
	}
	v := New()
	err := v.Validate(&rangeReq{})
	require.Error(t, err)

	resp := NewErrorResponse(err)
	assert.Equal(t, []string{"The start time field is required."}, resp.Errors["start_time"])
}
