package backend

import (
	"context"
	"net/http"
	"net/url"
	"strconv"
)

// ClinicQuery filters the clinic listing. A zero Limit means 10.
type ClinicQuery struct {
	Skip  int
	Limit int
	Name  string
}

func (c *Client) ListClinics(ctx context.Context, q ClinicQuery) ([]Clinic, error) {
	if q.Limit <= 0 {
		q.Limit = 10
	}
	values := url.Values{}
	values.Set("skip", strconv.Itoa(q.Skip))
	values.Set("limit", strconv.Itoa(q.Limit))
	if q.Name != "" {
		values.Set("name", q.Name)
	}

	var out []Clinic
	err := c.do(ctx, http.MethodGet, "/clinics/", values, nil, &out)
	return out, err
}

func (c *Client) CreateClinic(ctx context.Context, in ClinicInput) (Clinic, error) {
	var out Clinic
	err := c.do(ctx, http.MethodPost, "/clinics/", nil, in, &out)
	return out, err
}

func (c *Client) GetClinic(ctx context.Context, id string) (Clinic, error) {
	var out Clinic
	err := c.do(ctx, http.MethodGet, "/clinics/"+url.PathEscape(id)+"/", nil, nil, &out)
	return out, err
}

func (c *Client) UpdateClinic(ctx context.Context, id string, in ClinicInput) (Clinic, error) {
	var out Clinic
	err := c.do(ctx, http.MethodPut, "/clinics/"+url.PathEscape(id)+"/", nil, in, &out)
	return out, err
}

func (c *Client) DeleteClinic(ctx context.Context, id string) error {
	return c.do(ctx, http.MethodDelete, "/clinics/"+url.PathEscape(id)+"/", nil, nil, nil)
}
