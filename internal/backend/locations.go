package backend

import (
	"context"
	"net/http"
	"net/url"
)

func (c *Client) CreateLocation(ctx context.Context, in LocationInput) (Location, error) {
	var out Location
	err := c.do(ctx, http.MethodPost, "/locations/", nil, in, &out)
	return out, err
}

func (c *Client) GetLocation(ctx context.Context, id string) (Location, error) {
	var out Location
	err := c.do(ctx, http.MethodGet, "/locations/"+url.PathEscape(id)+"/", nil, nil, &out)
	return out, err
}

func (c *Client) UpdateLocation(ctx context.Context, id string, in LocationInput) (Location, error) {
	var out Location
	err := c.do(ctx, http.MethodPut, "/locations/"+url.PathEscape(id)+"/", nil, in, &out)
	return out, err
}

func (c *Client) DeleteLocation(ctx context.Context, id string) error {
	return c.do(ctx, http.MethodDelete, "/locations/"+url.PathEscape(id)+"/", nil, nil, nil)
}
