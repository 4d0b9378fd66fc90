// Package auth reads the identity carried by access tokens the backend
// issues. ParseToken only decodes; routes that act on a user's data take
// their identity from a Verifier.
package auth

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/golang-jwt/jwt/v5"
)

type UserType string

const (
	UserTypeClinic             UserType = "clinic"
	UserTypeHealthProfessional UserType = "health_professional"
)

var (
	ErrMalformedToken = errors.New("malformed access token")
	ErrUnknownSubject = errors.New("token subject must be user_id:user_type")
	ErrTokenExpired   = errors.New("access token expired")
)

func (t UserType) Valid() bool {
	return t == UserTypeClinic || t == UserTypeHealthProfessional
}

// HomePath is the dashboard a user of type t lands on after login.
func HomePath(t UserType) string {
	switch t {
	case UserTypeClinic:
		return "/dashboard/clinic"
	case UserTypeHealthProfessional:
		return "/dashboard/professional"
	}
	return "/login"
}

type Claims struct {
	UserID    string    `json:"user_id"`
	UserType  UserType  `json:"user_type"`
	ExpiresAt time.Time `json:"expires_at"`
	Token     string    `json:"-"`
}

// Expired treats a token without exp as never expiring.
func (c Claims) Expired(now time.Time) bool {
	return !c.ExpiresAt.IsZero() && !c.ExpiresAt.After(now)
}

// ParseToken decodes the subject ("<user_id>:<user_type>") and expiry without
// checking the signature.
func ParseToken(token string) (Claims, error) {
	parser := jwt.NewParser(jwt.WithoutClaimsValidation())
	unverified, _, err := parser.ParseUnverified(token, jwt.MapClaims{})
	if err != nil {
		return Claims{}, fmt.Errorf("%w: %v", ErrMalformedToken, err)
	}
	return claimsFrom(unverified, token)
}

func claimsFrom(parsed *jwt.Token, token string) (Claims, error) {
	claims, ok := parsed.Claims.(jwt.MapClaims)
	if !ok {
		return Claims{}, ErrMalformedToken
	}

	subject, err := claims.GetSubject()
	if err != nil {
		return Claims{}, fmt.Errorf("%w: %v", ErrMalformedToken, err)
	}
	userID, userType, ok := strings.Cut(subject, ":")
	if !ok || userID == "" || strings.Contains(userType, ":") || !UserType(userType).Valid() {
		return Claims{}, ErrUnknownSubject
	}

	out := Claims{UserID: userID, UserType: UserType(userType), Token: token}

	exp, err := claims.GetExpirationTime()
	if err != nil {
		return Claims{}, fmt.Errorf("%w: %v", ErrMalformedToken, err)
	}
	if exp != nil {
		out.ExpiresAt = exp.Time
	}
	return out, nil
}

type contextKey string

const claimsKey contextKey = "auth_claims"

func WithClaims(ctx context.Context, c Claims) context.Context {
	return context.WithValue(ctx, claimsKey, c)
}

func FromContext(ctx context.Context) (Claims, bool) {
	c, ok := ctx.Value(claimsKey).(Claims)
	return c, ok
}
