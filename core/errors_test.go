package core

import (
	"testing"

	"github.com/pkg/errors"
	"github.com/stretchr/testify/assert"
)

func TestRemoteError(t *testing.T) {
	tests := []struct {
		name string
		err  *RemoteError
		want string
	}{
		{
			name: "transport failure",
			err:  &RemoteError{Service: "notion", Err: errors.New("connection refused")},
			want: "notion: connection refused",
		},
		{
			name: "coded response",
			err:  &RemoteError{Service: "notion", StatusCode: 400, Code: "validation_error", Message: "bad property"},
			want: "notion: 400 validation_error: bad property",
		},
		{
			name: "plain response",
			err:  &RemoteError{Service: "lead endpoint", StatusCode: 500, Message: "quota exceeded"},
			want: "lead endpoint: 500: quota exceeded",
		},
	}
	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			assert.EqualError(t, tc.err, tc.want)
			assert.True(t, IsRemote(errors.Wrap(tc.err, "wrapped")))
		})
	}

	assert.False(t, IsRemote(errors.New("local")))
}

func TestValidationError(t *testing.T) {
	assert.EqualError(t, NewValidationError(nil, FieldError{Field: "date", Error: "this field is required"}), "date: this field is required")
	assert.EqualError(t, NewValidationError(errors.New("bad input")), "bad input")
	assert.EqualError(t, NewValidationError(nil), "")
}

func TestIsShutdown(t *testing.T) {
	assert.True(t, IsShutdown(errors.Wrap(NewShutdownError("integrity issue"), "handling request")))
	assert.False(t, IsShutdown(errors.New("integrity issue")))
}

func TestConfigError(t *testing.T) {
	err := NewConfigError("NOTION_API_TOKEN", "the Notion API token is not set")
	assert.EqualError(t, err, "config NOTION_API_TOKEN: the Notion API token is not set")

	var cfgErr *ConfigError
	assert.True(t, errors.As(errors.Wrap(err, "starting"), &cfgErr))
	assert.Equal(t, "NOTION_API_TOKEN", cfgErr.Key)
}
