package leadsvc

import (
	"context"
	"encoding/json"
	"io/ioutil"
	"net/http"
	"net/http/httptest"
	"sync"
	"testing"
	"time"

	"github.com/pkg/errors"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/trezcool/absentee/core"
	"github.com/trezcool/absentee/core/lead"
)

type received struct {
	method      string
	contentType string
	body        map[string]string
}

type endpoint struct {
	*httptest.Server
	mu    sync.Mutex
	calls []received
}

func newEndpoint(t *testing.T, status int, respBody string) *endpoint {
	e := new(endpoint)
	e.Server = httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		data, _ := ioutil.ReadAll(r.Body)
		rcv := received{method: r.Method, contentType: r.Header.Get("Content-Type")}
		_ = json.Unmarshal(data, &rcv.body)
		e.mu.Lock()
		e.calls = append(e.calls, rcv)
		e.mu.Unlock()
		w.WriteHeader(status)
		_, _ = w.Write([]byte(respBody))
	}))
	t.Cleanup(e.Close)
	return e
}

func (e *endpoint) Calls() []received {
	e.mu.Lock()
	defer e.mu.Unlock()
	return append([]received(nil), e.calls...)
}

func payload() lead.Payload {
	return lead.Payload{
		FirstName:      "Ann",
		LastName:       "Lee",
		Email:          "ann@example.com",
		Phone:          "07946 095800",
		LessonType:     "Piano, Singing",
		StudentType:    "Adult",
		Level:          "Beginner",
		ReferralSource: "Google",
	}
}

func TestHTTPSender_Send(t *testing.T) {
	tests := []struct {
		name     string
		status   int
		respBody string
		wantErr  string
	}{
		{name: "200 is success", status: http.StatusOK, respBody: `{"ok":true}`},
		{name: "201 is not", status: http.StatusCreated, wantErr: "lead endpoint: 201: Created"},
		{name: "error body is surfaced", status: http.StatusBadRequest, respBody: "missing email", wantErr: "lead endpoint: 400: missing email"},
		{name: "server error", status: http.StatusInternalServerError, respBody: "internal", wantErr: "lead endpoint: 500: internal"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			srv := newEndpoint(t, tt.status, tt.respBody)
			sender, err := NewHTTPSender(srv.URL+"/submitLead", time.Second, srv.Client())
			require.NoError(t, err)

			err = sender.Send(context.Background(), payload())

			calls := srv.Calls()
			require.Len(t, calls, 1, "exactly one POST")
			call := calls[0]
			assert.Equal(t, http.MethodPost, call.method)
			assert.Equal(t, "application/json", call.contentType)
			assert.Equal(t, map[string]string{
				"firstName":      "Ann",
				"lastName":       "Lee",
				"email":          "ann@example.com",
				"phone":          "07946 095800",
				"lessonType":     "Piano, Singing",
				"studentType":    "Adult",
				"level":          "Beginner",
				"message":        "",
				"referralSource": "Google",
			}, call.body)

			if tt.wantErr == "" {
				assert.NoError(t, err)
				return
			}
			var rerr *core.RemoteError
			require.True(t, errors.As(err, &rerr))
			assert.Equal(t, tt.status, rerr.StatusCode)
			assert.EqualError(t, err, tt.wantErr)
		})
	}
}

func TestHTTPSender_transportFailure(t *testing.T) {
	sender, err := NewHTTPSender("http://127.0.0.1:1/submitLead", time.Second, nil)
	require.NoError(t, err)

	err = sender.Send(context.Background(), payload())

	var rerr *core.RemoteError
	require.True(t, errors.As(err, &rerr))
	assert.Zero(t, rerr.StatusCode)
}

func TestNewHTTPSender_requiresEndpoint(t *testing.T) {
	_, err := NewHTTPSender("", time.Second, nil)
	var cerr *core.ConfigError
	require.True(t, errors.As(err, &cerr))
	assert.Equal(t, "LEAD_ENDPOINT", cerr.Key)
}
