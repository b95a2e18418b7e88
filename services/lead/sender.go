// Package leadsvc posts leads to the hosted intake function.
package leadsvc

import (
	"context"
	"encoding/json"
	"net/http"
	"time"

	"github.com/pkg/errors"
	"github.com/sendgrid/rest"

	"github.com/trezcool/absentee/core"
	"github.com/trezcool/absentee/core/lead"
)

const serviceName = "lead endpoint"

type HTTPSender struct {
	rest     *rest.Client
	endpoint string
}

var _ lead.Sender = (*HTTPSender)(nil)

// NewHTTPSender needs an endpoint; httpClient is optional.
func NewHTTPSender(endpoint string, timeout time.Duration, httpClient *http.Client) (*HTTPSender, error) {
	if endpoint == "" {
		return nil, core.NewConfigError("LEAD_ENDPOINT", "the lead endpoint is not set")
	}
	if httpClient == nil {
		httpClient = &http.Client{Timeout: timeout}
	}
	return &HTTPSender{rest: &rest.Client{HTTPClient: httpClient}, endpoint: endpoint}, nil
}

func NewHTTPSenderFromConfig(conf *core.Config) (*HTTPSender, error) {
	return NewHTTPSender(conf.LeadEndpoint, conf.LeadTimeout, nil)
}

// Send issues a single POST. Only 200 counts as delivered; the body of any other response is the error message.
func (s *HTTPSender) Send(ctx context.Context, p lead.Payload) error {
	body, err := json.Marshal(p)
	if err != nil {
		return errors.Wrap(err, "encoding lead")
	}

	res, err := s.rest.SendWithContext(ctx, rest.Request{
		Method:  rest.Post,
		BaseURL: s.endpoint,
		Headers: map[string]string{"Content-Type": "application/json"},
		Body:    body,
	})
	if err != nil {
		return &core.RemoteError{Service: serviceName, Message: err.Error(), Err: err}
	}
	if res.StatusCode != http.StatusOK {
		msg := res.Body
		if msg == "" {
			msg = http.StatusText(res.StatusCode)
		}
		return &core.RemoteError{Service: serviceName, StatusCode: res.StatusCode, Message: msg}
	}
	return nil
}
