package goerror

import (
	"errors"
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestExitCode(t *testing.T) {
	cause := errors.New("535 5.7.8 Username and Password not accepted")

	tests := []struct {
		name string
		err  error
		want int
	}{
		{"Nil", nil, ExitOK},
		{"ConfigNotFound", NewConfigNotFound(nil, "config file not found"), ExitConfigNotFound},
		{"ConfigInvalid", NewConfigInvalid(nil, "email.sender", "required"), ExitConfigNotFound},
		{"MailNotSent", NewMailNotSent(cause), ExitEmailNotSent},
		{"Internal", NewInternal(cause), ExitFailure},
		{"Plain", cause, ExitFailure},
		{"Wrapped", fmt.Errorf("run: %w", NewMailNotSent(cause)), ExitEmailNotSent},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, ExitCode(tt.err))
		})
	}
}

func TestNewConfigInvalid(t *testing.T) {
	err := NewConfigInvalid(nil, "email.receiver", "required", "email.sender", "required", "dangling")

	var e *Error
	assert.True(t, errors.As(err, &e))
	assert.Equal(t, CodeConfigInvalid, e.Code())
	assert.Equal(t, []string{"email.receiver", "email.sender"}, e.FieldNames())
	assert.Equal(t, "config is missing required fields: email.receiver, email.sender", err.Error())
}

func TestMailNotSentKeepsCause(t *testing.T) {
	cause := errors.New("dial tcp: connection refused")
	err := NewMailNotSent(cause)

	assert.ErrorIs(t, err, cause)
	assert.Contains(t, err.Error(), "connection refused")
	assert.Equal(t, CodeMailNotSent, CodeOf(err))
	assert.Equal(t, CodeInternal, CodeOf(cause))
}

func TestNewConfigInvalidFields(t *testing.T) {
	err := NewConfigInvalidFields(map[string]string{
		"email.sender":   "email.sender must be a valid email address",
		"email.receiver": "email.receiver is a required field",
	})

	assert.Equal(t, CodeConfigInvalid, CodeOf(err))
	assert.Equal(t, ExitConfigNotFound, ExitCode(err))
	assert.Equal(t,
		"config is invalid: email.receiver is a required field; email.sender must be a valid email address",
		err.Error())
}

func TestNewConfigInvalidField(t *testing.T) {
	cause := errors.New("illegal base64 data at input byte 4")
	err := NewConfigInvalidField(cause, "email.password")

	assert.ErrorIs(t, err, cause)
	assert.Equal(t, "config field email.password is invalid: illegal base64 data at input byte 4", err.Error())
	var e *Error
	assert.True(t, errors.As(err, &e))
	assert.Equal(t, []string{"email.password"}, e.FieldNames())
}
