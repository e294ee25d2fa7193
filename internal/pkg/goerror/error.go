package goerror

import (
	"errors"
	"fmt"
	"sort"
	"strings"
)

// ErrNotFound indicates that the requested resource could not be found.
var ErrNotFound = errors.New("resource not found")

// Code is a stable identifier used for mapping errors to process exit statuses.
type Code int

const (
	// CodeInternal represents an internal or unspecified error.
	CodeInternal Code = iota
	// CodeConfigNotFound indicates the configuration source is missing or unreadable.
	CodeConfigNotFound
	// CodeConfigInvalid indicates the configuration is present but incomplete.
	CodeConfigInvalid
	// CodeMailNotSent indicates the message could not be delivered.
	CodeMailNotSent
)

// Exit statuses reported by the process.
const (
	ExitOK             = 0
	ExitConfigNotFound = 1
	ExitEmailNotSent   = 2
	ExitFailure        = 3
)

// String returns the string representation of the error code.
func (c Code) String() string {
	switch c {
	case CodeConfigNotFound:
		return "ERROR_CODE_CONFIG_NOT_FOUND"
	case CodeConfigInvalid:
		return "ERROR_CODE_CONFIG_INVALID"
	case CodeMailNotSent:
		return "ERROR_CODE_MAIL_NOT_SENT"
	case CodeInternal:
		return "ERROR_CODE_INTERNAL"
	default:
		return "ERROR_CODE_INTERNAL"
	}
}

// Error is a structured error used across the application.
//
// It can wrap an underlying error while also carrying an operator-facing
// message, a stable error code and, for configuration problems, the offending
// fields.
type Error struct {
	err    error
	msg    string
	code   Code
	fields map[string]string
}

// Error implements the error interface.
func (e *Error) Error() string {
	switch {
	case e.msg != "" && e.err != nil:
		return e.msg + ": " + e.err.Error()
	case e.msg != "":
		return e.msg
	case e.err != nil:
		return e.err.Error()
	}

	switch e.code {
	case CodeConfigNotFound:
		return "config not found"
	case CodeConfigInvalid:
		return "config invalid"
	case CodeMailNotSent:
		return "email not sent"
	default:
		return "internal error"
	}
}

// String returns a verbose representation of the error for debugging/logging.
func (e *Error) String() string {
	return fmt.Sprintf(
		"Code: %s, Message: %s, Fields: %v, Underlying Error: %v",
		e.code.String(),
		e.msg,
		e.fields,
		e.err,
	)
}

// Msg returns the operator-facing message, if set.
func (e *Error) Msg() string {
	return e.msg
}

// Code returns the stable error code.
func (e *Error) Code() Code {
	return e.code
}

// Fields returns validation errors (field to message map), if any.
func (e *Error) Fields() map[string]string {
	return e.fields
}

// FieldNames returns the keys of Fields in sorted order.
func (e *Error) FieldNames() []string {
	names := make([]string, 0, len(e.fields))
	for k := range e.fields {
		names = append(names, k)
	}
	sort.Strings(names)
	return names
}

// Unwrap returns the underlying error.
func (e *Error) Unwrap() error {
	return e.err
}

// ExitCode maps the error code to a process exit status.
func (e *Error) ExitCode() int {
	switch e.code {
	case CodeConfigNotFound, CodeConfigInvalid:
		return ExitConfigNotFound
	case CodeMailNotSent:
		return ExitEmailNotSent
	default:
		return ExitFailure
	}
}

func new(err error, msg string, code Code) error {
	return &Error{err: err, msg: msg, code: code}
}

// NewInternal wraps an unexpected failure.
func NewInternal(err error) error {
	return new(err, "", CodeInternal)
}

// NewConfigNotFound reports a missing or unreadable configuration source.
func NewConfigNotFound(err error, msg string) error {
	return new(err, msg, CodeConfigNotFound)
}

// NewConfigInvalid reports a configuration with missing or malformed fields.
// kv is a flat list of field/message pairs; an odd trailing key is dropped.
func NewConfigInvalid(err error, kv ...string) error {
	e := &Error{err: err, code: CodeConfigInvalid}
	if len(kv) >= 2 {
		e.fields = make(map[string]string, len(kv)/2)
		for i := 0; i+1 < len(kv); i += 2 {
			e.fields[kv[i]] = kv[i+1]
		}
		e.msg = "config is missing required fields: " + strings.Join(e.FieldNames(), ", ")
	}
	return e
}

// NewConfigInvalidFields reports fields that are present but malformed.
// fields maps each field to an operator-facing message.
func NewConfigInvalidFields(fields map[string]string) error {
	e := &Error{code: CodeConfigInvalid, fields: fields}
	msgs := make([]string, 0, len(fields))
	for _, k := range e.FieldNames() {
		msgs = append(msgs, fields[k])
	}
	e.msg = "config is invalid: " + strings.Join(msgs, "; ")
	return e
}

// NewConfigInvalidField reports one malformed field and keeps the cause.
func NewConfigInvalidField(err error, field string) error {
	e := &Error{err: err, code: CodeConfigInvalid, msg: "config field " + field + " is invalid"}
	if err != nil {
		e.fields = map[string]string{field: err.Error()}
	}
	return e
}

// NewMailNotSent wraps a delivery failure.
func NewMailNotSent(err error) error {
	return new(err, "could not send email", CodeMailNotSent)
}

// ExitCode returns the exit status for err, ExitOK when err is nil.
func ExitCode(err error) int {
	if err == nil {
		return ExitOK
	}

	var e *Error
	if errors.As(err, &e) {
		return e.ExitCode()
	}

	return ExitFailure
}

// CodeOf returns the code carried by err, CodeInternal when there is none.
func CodeOf(err error) Code {
	var e *Error
	if errors.As(err, &e) {
		return e.code
	}
	return CodeInternal
}
