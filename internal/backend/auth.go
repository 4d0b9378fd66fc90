package backend

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"net/url"
	"strings"

	"github.com/hackgods/clinidesk/internal/auth"
)

var _ auth.IdentityLookup = (*Client)(nil)

// Login exchanges credentials for an access token. The backend expects an
// OAuth2 password form, not JSON.
func (c *Client) Login(ctx context.Context, username, password string) (TokenResponse, error) {
	form := url.Values{}
	form.Set("username", username)
	form.Set("password", password)

	req, err := c.newRequest(ctx, http.MethodPost, "/auth/login/", nil, strings.NewReader(form.Encode()))
	if err != nil {
		return TokenResponse{}, err
	}
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")

	var out TokenResponse
	if err := c.send(req, &out); err != nil {
		return TokenResponse{}, err
	}
	return out, nil
}

// TestToken returns the user the client's token belongs to.
func (c *Client) TestToken(ctx context.Context) (UserData, error) {
	var out UserData
	err := c.do(ctx, http.MethodPost, "/auth/test-token/", nil, nil, &out)
	return out, err
}

// Identify asks the backend who token belongs to. A 401 or 403 means the
// backend refused the token; anything else leaves the question unanswered.
func (c *Client) Identify(ctx context.Context, token string) (auth.Identity, error) {
	user, err := c.WithToken(token).TestToken(ctx)
	if err != nil {
		var apiErr *APIError
		if errors.As(err, &apiErr) && (apiErr.StatusCode == http.StatusUnauthorized || apiErr.StatusCode == http.StatusForbidden) {
			return auth.Identity{}, fmt.Errorf("%w: %s", auth.ErrInvalidToken, apiErr.Detail)
		}
		return auth.Identity{}, fmt.Errorf("%w: %v", auth.ErrVerifierUnavailable, err)
	}
	return auth.Identity{UserID: user.UserID, UserType: auth.UserType(user.UserType)}, nil
}
