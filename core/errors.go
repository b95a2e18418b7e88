package core

import (
	"fmt"

	"github.com/pkg/errors"
)

// FieldError is used to indicate an error with a specific struct field.
type FieldError struct {
	Field string
	Error string
}

type ValidationError struct {
	Err    error
	Fields []FieldError
}

func NewValidationError(err error, flds ...FieldError) error {
	return &ValidationError{err, flds}
}

func (err ValidationError) Error() string {
	if err.Err == nil {
		if len(err.Fields) > 0 {
			return err.Fields[0].Field + ": " + err.Fields[0].Error
		}
		return ""
	}
	return err.Err.Error()
}

// ConfigError is fatal: nothing that needs the missing setting may run.
type ConfigError struct {
	Key     string
	Message string
}

func NewConfigError(key, msg string) error {
	return &ConfigError{Key: key, Message: msg}
}

func (err ConfigError) Error() string {
	return fmt.Sprintf("config %s: %s", err.Key, err.Message)
}

// RemoteError is any failed exchange with a remote service: a non-success response or a transport failure.
// StatusCode is 0 for transport failures.
type RemoteError struct {
	Service    string
	StatusCode int
	Code       string
	Message    string
	Err        error
}

func (err RemoteError) Error() string {
	switch {
	case err.StatusCode == 0 && err.Err != nil:
		return fmt.Sprintf("%s: %v", err.Service, err.Err)
	case err.Code != "":
		return fmt.Sprintf("%s: %d %s: %s", err.Service, err.StatusCode, err.Code, err.Message)
	default:
		return fmt.Sprintf("%s: %d: %s", err.Service, err.StatusCode, err.Message)
	}
}

func (err RemoteError) Unwrap() error { return err.Err }

func IsRemote(err error) bool {
	var rerr *RemoteError
	return errors.As(err, &rerr)
}

type shutdown struct {
	message string
}

func NewShutdownError(msg string) error {
	return &shutdown{message: msg}
}

func (s shutdown) Error() string {
	return s.message
}

func IsShutdown(err error) bool {
	_, ok := errors.Cause(err).(*shutdown)
	return ok
}
