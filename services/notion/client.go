// Package notion is a minimal client for the Notion REST API: database queries and page writes.
package notion

import (
	"context"
	"encoding/json"
	"net/http"
	"time"

	"github.com/pkg/errors"
	"github.com/sendgrid/rest"

	"github.com/trezcool/absentee/core"
)

const (
	serviceName = "notion"

	DefaultBaseURL  = "https://api.notion.com/v1"
	DefaultVersion  = "2022-06-28"
	DefaultPageSize = 100
	maxPageSize     = 100
)

type Options struct {
	Token    string
	BaseURL  string
	Version  string
	PageSize int
	Timeout  time.Duration

	HTTPClient *http.Client // optional; tests point it at an httptest server
}

type Client struct {
	rest     *rest.Client
	token    string
	baseURL  string
	version  string
	pageSize int
}

// errorBody is what Notion returns on any non-2xx response.
type errorBody struct {
	Object  string `json:"object"`
	Status  int    `json:"status"`
	Code    string `json:"code"`
	Message string `json:"message"`
}

func NewClient(opts Options) (*Client, error) {
	if opts.Token == "" {
		return nil, core.NewConfigError("NOTION_API_TOKEN", "the Notion API token is not set")
	}
	if opts.BaseURL == "" {
		opts.BaseURL = DefaultBaseURL
	}
	if opts.Version == "" {
		opts.Version = DefaultVersion
	}
	if opts.PageSize <= 0 || opts.PageSize > maxPageSize {
		opts.PageSize = DefaultPageSize
	}
	httpClient := opts.HTTPClient
	if httpClient == nil {
		httpClient = &http.Client{Timeout: opts.Timeout}
	}
	return &Client{
		rest:     &rest.Client{HTTPClient: httpClient},
		token:    opts.Token,
		baseURL:  opts.BaseURL,
		version:  opts.Version,
		pageSize: opts.PageSize,
	}, nil
}

func NewClientFromConfig(conf *core.Config) (*Client, error) {
	return NewClient(Options{
		Token:    conf.Notion.Token,
		BaseURL:  conf.Notion.BaseURL,
		Version:  conf.Notion.Version,
		PageSize: conf.Notion.PageSize,
		Timeout:  conf.Notion.Timeout,
	})
}

func (c *Client) headers() map[string]string {
	return map[string]string{
		"Authorization":  "Bearer " + c.token,
		"Notion-Version": c.version,
		"Content-Type":   "application/json",
	}
}

// do sends one request and decodes a 2xx response into out.
// Every other outcome is a *core.RemoteError.
func (c *Client) do(ctx context.Context, method rest.Method, path string, in, out interface{}) error {
	req := rest.Request{
		Method:  method,
		BaseURL: c.baseURL + path,
		Headers: c.headers(),
	}
	if in != nil {
		body, err := json.Marshal(in)
		if err != nil {
			return errors.Wrap(err, "encoding request body")
		}
		req.Body = body
	}

	res, err := c.rest.SendWithContext(ctx, req)
	if err != nil {
		return &core.RemoteError{Service: serviceName, Message: err.Error(), Err: err}
	}
	if res.StatusCode < http.StatusOK || res.StatusCode >= http.StatusMultipleChoices {
		return newRemoteError(res)
	}
	if out == nil {
		return nil
	}
	if err := json.Unmarshal([]byte(res.Body), out); err != nil {
		return &core.RemoteError{
			Service:    serviceName,
			StatusCode: res.StatusCode,
			Message:    "malformed response body",
			Err:        err,
		}
	}
	return nil
}

func newRemoteError(res *rest.Response) error {
	rerr := &core.RemoteError{Service: serviceName, StatusCode: res.StatusCode, Message: res.Body}
	var body errorBody
	if err := json.Unmarshal([]byte(res.Body), &body); err == nil && body.Object == "error" {
		rerr.Code = body.Code
		rerr.Message = body.Message
	}
	if rerr.Message == "" {
		rerr.Message = http.StatusText(res.StatusCode)
	}
	return rerr
}
