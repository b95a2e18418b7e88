package notion

import (
	"context"

	"github.com/pkg/errors"
	"github.com/sendgrid/rest"
)

type createPageRequest struct {
	Parent     Parent     `json:"parent"`
	Properties Properties `json:"properties"`
}

type updatePageRequest struct {
	Properties Properties `json:"properties,omitempty"`
	Archived   *bool      `json:"archived,omitempty"`
}

func (c *Client) CreatePage(ctx context.Context, parent Parent, props Properties) (Page, error) {
	var page Page
	if err := c.do(ctx, rest.Post, "/pages", createPageRequest{Parent: parent, Properties: props}, &page); err != nil {
		return Page{}, errors.Wrap(err, "creating page")
	}
	return page, nil
}

// UpdatePage patches only the given properties; the others are left untouched.
func (c *Client) UpdatePage(ctx context.Context, id string, props Properties) (Page, error) {
	var page Page
	if err := c.do(ctx, rest.Patch, "/pages/"+id, updatePageRequest{Properties: props}, &page); err != nil {
		return Page{}, errors.Wrapf(err, "updating page %s", id)
	}
	return page, nil
}

// ArchivePage is Notion's delete: the page moves to the trash.
func (c *Client) ArchivePage(ctx context.Context, id string) error {
	archived := true
	if err := c.do(ctx, rest.Patch, "/pages/"+id, updatePageRequest{Archived: &archived}, nil); err != nil {
		return errors.Wrapf(err, "archiving page %s", id)
	}
	return nil
}
