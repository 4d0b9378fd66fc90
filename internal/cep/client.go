// Package cep looks up Brazilian postal codes on ViaCEP.
package cep

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"strings"
	"time"

	"github.com/go-chi/chi/v5/middleware"
	"github.com/goccy/go-json"
	"go.uber.org/zap"

	"github.com/hackgods/clinidesk/internal/document"
)

var (
	ErrInvalidCEP   = errors.New("CEP deve ter 8 dígitos")
	ErrNotFound     = errors.New("CEP não encontrado")
	ErrLookupFailed = errors.New("Erro ao consultar o CEP")
)

// Address is the part of a ViaCEP answer a form autofills.
type Address struct {
	ZipCode      string `json:"zip_code"`
	Street       string `json:"street"`
	Neighborhood string `json:"neighborhood"`
	City         string `json:"city"`
	State        string `json:"state"`
}

type viaCEPResponse struct {
	CEP        string `json:"cep"`
	Logradouro string `json:"logradouro"`
	Bairro     string `json:"bairro"`
	Localidade string `json:"localidade"`
	UF         string `json:"uf"`
	Erro       any    `json:"erro"`
}

// notFound accepts both the boolean and the string form ViaCEP has used.
func (r viaCEPResponse) notFound() bool {
	switch v := r.Erro.(type) {
	case bool:
		return v
	case string:
		return v == "true"
	}
	return false
}

// Cache stores encoded addresses by CEP.
type Cache interface {
	Get(ctx context.Context, key string) ([]byte, bool, error)
	Set(ctx context.Context, key string, value []byte, ttl time.Duration) error
}

type Client struct {
	baseURL string
	http    *http.Client
	log     *zap.Logger
	cache   Cache
	ttl     time.Duration
}

type Option func(*Client)

func WithCache(c Cache, ttl time.Duration) Option {
	return func(cl *Client) {
		cl.cache = c
		cl.ttl = ttl
	}
}

func NewClient(baseURL string, httpClient *http.Client, log *zap.Logger, opts ...Option) *Client {
	if httpClient == nil {
		httpClient = &http.Client{Timeout: 10 * time.Second}
	}
	c := &Client{
		baseURL: strings.TrimRight(baseURL, "/"),
		http:    httpClient,
		log:     log,
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// Lookup strips formatting from code and resolves it. Anything other than 8
// digits fails with ErrInvalidCEP before any request is made.
func (c *Client) Lookup(ctx context.Context, code string) (Address, error) {
	digits := document.OnlyDigits(code)
	if !document.ValidCEP(digits) {
		return Address{}, ErrInvalidCEP
	}
	requestID := middleware.GetReqID(ctx)

	if addr, ok := c.cached(ctx, digits); ok {
		return addr, nil
	}

	url := fmt.Sprintf("%s/ws/%s/json/", c.baseURL, digits)
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return Address{}, fmt.Errorf("%w: %v", ErrLookupFailed, err)
	}
	req.Header.Set("Accept", "application/json")

	resp, err := c.http.Do(req)
	if err != nil {
		c.log.Error("cep.Lookup error sending request",
			zap.String("request_id", requestID),
			zap.String("cep", digits),
			zap.Error(err),
		)
		return Address{}, fmt.Errorf("%w: %v", ErrLookupFailed, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		c.log.Warn("cep.Lookup unexpected status",
			zap.String("request_id", requestID),
			zap.String("cep", digits),
			zap.Int("status", resp.StatusCode),
		)
		return Address{}, fmt.Errorf("%w: status %d", ErrLookupFailed, resp.StatusCode)
	}

	var body viaCEPResponse
	if err := json.NewDecoder(resp.Body).Decode(&body); err != nil {
		c.log.Error("cep.Lookup error decoding response",
			zap.String("request_id", requestID),
			zap.String("cep", digits),
			zap.Error(err),
		)
		return Address{}, fmt.Errorf("%w: %v", ErrLookupFailed, err)
	}
	if body.notFound() {
		return Address{}, ErrNotFound
	}

	addr := Address{
		ZipCode:      document.FormatCEP(digits),
		Street:       body.Logradouro,
		Neighborhood: body.Bairro,
		City:         body.Localidade,
		State:        body.UF,
	}
	c.store(ctx, digits, addr)

	c.log.Debug("cep.Lookup succeeded",
		zap.String("request_id", requestID),
		zap.String("cep", digits),
	)
	return addr, nil
}

func (c *Client) cached(ctx context.Context, digits string) (Address, bool) {
	if c.cache == nil {
		return Address{}, false
	}
	data, ok, err := c.cache.Get(ctx, digits)
	if err != nil {
		c.log.Warn("cep cache read failed", zap.String("cep", digits), zap.Error(err))
		return Address{}, false
	}
	if !ok {
		return Address{}, false
	}
	var addr Address
	if err := json.Unmarshal(data, &addr); err != nil {
		c.log.Warn("cep cache entry unreadable", zap.String("cep", digits), zap.Error(err))
		return Address{}, false
	}
	return addr, true
}

func (c *Client) store(ctx context.Context, digits string, addr Address) {
	if c.cache == nil {
		return
	}
	data, err := json.Marshal(addr)
	if err != nil {
		return
	}
	if err := c.cache.Set(ctx, digits, data, c.ttl); err != nil {
		c.log.Warn("cep cache write failed", zap.String("cep", digits), zap.Error(err))
	}
}
