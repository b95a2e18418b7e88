package notion

import (
	"context"

	"github.com/pkg/errors"
	"github.com/sendgrid/rest"
)

// ErrMissingCursor means a response claimed more results without saying where they are.
var ErrMissingCursor = errors.New("notion: has_more is set but next_cursor is empty")

type Querier interface {
	QueryDatabase(ctx context.Context, databaseID, cursor string) (QueryResult, error)
}

type queryRequest struct {
	StartCursor string `json:"start_cursor,omitempty"`
	PageSize    int    `json:"page_size,omitempty"`
}

// QueryDatabase fetches one batch of a database. An empty cursor starts from the beginning.
func (c *Client) QueryDatabase(ctx context.Context, databaseID, cursor string) (QueryResult, error) {
	var res QueryResult
	in := queryRequest{StartCursor: cursor, PageSize: c.pageSize}
	if err := c.do(ctx, rest.Post, "/databases/"+databaseID+"/query", in, &res); err != nil {
		return QueryResult{}, errors.Wrapf(err, "querying database %s", databaseID)
	}
	return res, nil
}

// QueryAll fetches every page of a database.
func (c *Client) QueryAll(ctx context.Context, databaseID string) ([]Page, error) {
	return FetchAll(ctx, c, databaseID)
}

// FetchAll follows next_cursor until has_more is false and returns the batches concatenated in response order.
// On failure it stops and returns what was fetched so far along with the error; nothing is retried.
func FetchAll(ctx context.Context, q Querier, databaseID string) ([]Page, error) {
	var (
		pages  []Page
		cursor string
	)
	for {
		res, err := q.QueryDatabase(ctx, databaseID, cursor)
		if err != nil {
			return pages, err
		}
		pages = append(pages, res.Results...)
		if !res.HasMore {
			return pages, nil
		}
		if res.NextCursor == nil || *res.NextCursor == "" {
			return pages, errors.Wrapf(ErrMissingCursor, "querying database %s", databaseID)
		}
		cursor = *res.NextCursor
	}
}
