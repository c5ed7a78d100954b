package errors

import (
	"errors"
	"fmt"
	"net/http"
	"testing"

	"github.com/go-playground/validator/v10"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestAppError_Behavior(t *testing.T) {
	err := NewValidationError("invalid input").WithCode("VAL001").WithDetail("field", "week").WithComponent("academy")
	assert.Equal(t, ErrorTypeValidation, err.Type)
	assert.Equal(t, "invalid input", err.Message)
	assert.Equal(t, "VAL001", err.Code)
	assert.Equal(t, "academy", err.Component)
	assert.Equal(t, "week", err.Details["field"])
	assert.Equal(t, "invalid input", err.Error())
}

func TestAppError_WithCause_Unwrap(t *testing.T) {
	err := NewNotFoundError("submission").WithCause(ErrNotFound)
	assert.Equal(t, ErrNotFound, err.Unwrap())
	assert.Equal(t, "submission not found: resource not found", err.Error())
}

func TestValidationErrors(t *testing.T) {
	ve := NewValidationErrors()
	assert.Nil(t, ve.ToAppError())

	ve.Add("grade", "You don't have permission to update the grade field.", 90)
	assert.True(t, ve.HasErrors())
	appErr := ve.ToAppError()
	require.NotNil(t, appErr)
	assert.Equal(t, ErrorTypeValidation, appErr.Type)
	assert.Equal(t, http.StatusBadRequest, appErr.HTTPCode)
}

func TestPredicates(t *testing.T) {
	nf := NewNotFoundError("cohort")
	assert.True(t, IsNotFound(nf))
	assert.True(t, IsNotFound(fmt.Errorf("lookup: %w", nf)))
	assert.False(t, IsValidation(nf))

	assert.True(t, IsValidation(NewValidationError("bad")))
	assert.True(t, IsValidation(NewValidationErrors().Add("a", "b", nil)))
	assert.True(t, IsAuthentication(NewAuthenticationError("bad")))
	assert.True(t, IsAuthentication(ErrTokenExpired))
	assert.True(t, IsAuthorization(NewAuthorizationError("bad")))
	assert.True(t, IsConflict(fmt.Errorf("wrap: %w", ErrConflict)))
}

func TestHTTPStatus(t *testing.T) {
	cases := []struct {
		err  error
		want int
	}{
		{NewRateLimitedError("slow down"), http.StatusTooManyRequests},
		{fmt.Errorf("x: %w", ErrNotFound), http.StatusNotFound},
		{ErrForbidden, http.StatusForbidden},
		{ErrInvalidToken, http.StatusUnauthorized},
		{NewValidationErrors().Add("f", "m", nil), http.StatusBadRequest},
		{errors.New("boom"), http.StatusInternalServerError},
	}
	for _, tc := range cases {
		assert.Equal(t, tc.want, HTTPStatus(tc.err), tc.err.Error())
	}
}

func TestFromValidator(t *testing.T) {
	type request struct {
		Email string `validate:"required,email"`
		Week  int    `validate:"min=1,max=12"`
	}
	err := validator.New().Struct(request{Email: "nope", Week: 20})
	require.Error(t, err)

	converted := FromValidator(err)
	var ve *ValidationErrors
	require.True(t, errors.As(converted, &ve))
	require.Len(t, ve.Errors, 2)
	assert.Equal(t, "email", ve.Errors[0].Field)
	assert.Equal(t, "email must be a valid email address", ve.Errors[0].Message)
	assert.Equal(t, "week must be at most 12", ve.Errors[1].Message)

	plain := errors.New("plain")
	assert.Equal(t, plain, FromValidator(plain))
}
