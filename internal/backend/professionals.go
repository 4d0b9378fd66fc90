package backend

import (
	"context"
	"net/http"
	"net/url"
	"strconv"
)

func (c *Client) CreateHealthProfessional(ctx context.Context, in HealthProfessionalInput) (HealthProfessional, error) {
	var out HealthProfessional
	err := c.do(ctx, http.MethodPost, "/health-professionals", nil, in, &out)
	return out, err
}

// ListHealthProfessionals pages are 1-based.
func (c *Client) ListHealthProfessionals(ctx context.Context, page, size int) (HealthProfessionalPage, error) {
	if page < 1 {
		page = 1
	}
	if size <= 0 {
		size = 100
	}
	q := url.Values{}
	q.Set("page", strconv.Itoa(page))
	q.Set("size", strconv.Itoa(size))

	var out HealthProfessionalPage
	err := c.do(ctx, http.MethodGet, "/health-professionals", q, nil, &out)
	return out, err
}

func (c *Client) GetHealthProfessional(ctx context.Context, id string) (HealthProfessional, error) {
	var out HealthProfessional
	err := c.do(ctx, http.MethodGet, "/health-professionals/"+url.PathEscape(id), nil, nil, &out)
	return out, err
}

func (c *Client) UpdateHealthProfessional(ctx context.Context, id string, in HealthProfessionalInput) (HealthProfessional, error) {
	var out HealthProfessional
	err := c.do(ctx, http.MethodPut, "/health-professionals/"+url.PathEscape(id), nil, in, &out)
	return out, err
}

func (c *Client) DeleteHealthProfessional(ctx context.Context, id string) error {
	return c.do(ctx, http.MethodDelete, "/health-professionals/"+url.PathEscape(id), nil, nil, nil)
}
