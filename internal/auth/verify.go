package auth

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"errors"
	"fmt"
	"time"

	"github.com/goccy/go-json"
	"github.com/golang-jwt/jwt/v5"
	"go.uber.org/zap"
)

var (
	ErrInvalidToken        = errors.New("access token rejected")
	ErrVerifierUnavailable = errors.New("token verification unavailable")
)

// Verifier turns a bearer token into claims that can be trusted as the
// caller's identity.
type Verifier interface {
	Verify(ctx context.Context, token string) (Claims, error)
}

type secretVerifier struct {
	key []byte
	now func() time.Time
}

// NewSecretVerifier checks HMAC signatures with the key shared with the
// token issuer.
func NewSecretVerifier(secret string, now func() time.Time) Verifier {
	return &secretVerifier{key: []byte(secret), now: now}
}

func (v *secretVerifier) Verify(_ context.Context, token string) (Claims, error) {
	parsed, err := jwt.Parse(token,
		func(*jwt.Token) (any, error) { return v.key, nil },
		jwt.WithValidMethods([]string{"HS256", "HS384", "HS512"}),
		jwt.WithTimeFunc(v.now),
	)
	if err != nil {
		if errors.Is(err, jwt.ErrTokenExpired) {
			return Claims{}, ErrTokenExpired
		}
		return Claims{}, fmt.Errorf("%w: %v", ErrInvalidToken, err)
	}
	return claimsFrom(parsed, token)
}

// Identity is the user the token issuer reports a token belongs to.
type Identity struct {
	UserID   string   `json:"user_id"`
	UserType UserType `json:"user_type"`
}

// IdentityLookup asks the token issuer who a token belongs to. A token it
// refuses must come back wrapped in ErrInvalidToken.
type IdentityLookup interface {
	Identify(ctx context.Context, token string) (Identity, error)
}

// Cache stores confirmed identities by token hash.
type Cache interface {
	Get(ctx context.Context, key string) ([]byte, bool, error)
	Set(ctx context.Context, key string, value []byte, ttl time.Duration) error
}

type remoteVerifier struct {
	lookup IdentityLookup
	now    func() time.Time
	log    *zap.Logger
	cache  Cache
	ttl    time.Duration
}

type RemoteOption func(*remoteVerifier)

// WithIdentityCache keeps confirmed identities for at most ttl, and never past
// the token's own expiry.
func WithIdentityCache(c Cache, ttl time.Duration) RemoteOption {
	return func(v *remoteVerifier) {
		v.cache = c
		v.ttl = ttl
	}
}

// NewRemoteVerifier trusts the identity the issuer returns for a token, not
// the token's own subject.
func NewRemoteVerifier(lookup IdentityLookup, now func() time.Time, log *zap.Logger, opts ...RemoteOption) Verifier {
	v := &remoteVerifier{lookup: lookup, now: now, log: log}
	for _, opt := range opts {
		opt(v)
	}
	return v
}

func (v *remoteVerifier) Verify(ctx context.Context, token string) (Claims, error) {
	decoded, err := ParseToken(token)
	if err != nil {
		return Claims{}, err
	}
	now := v.now()
	if decoded.Expired(now) {
		return Claims{}, ErrTokenExpired
	}

	key := tokenKey(token)
	if id, ok := v.cached(ctx, key); ok {
		return claimsFor(id, decoded), nil
	}

	id, err := v.lookup.Identify(ctx, token)
	if err != nil {
		return Claims{}, err
	}
	if id.UserID == "" || !id.UserType.Valid() {
		return Claims{}, fmt.Errorf("%w: issuer returned no usable identity", ErrInvalidToken)
	}

	if v.cache != nil {
		ttl := v.ttl
		if !decoded.ExpiresAt.IsZero() {
			ttl = min(ttl, decoded.ExpiresAt.Sub(now))
		}
		if data, err := json.Marshal(id); err == nil && ttl > 0 {
			if err := v.cache.Set(ctx, key, data, ttl); err != nil {
				v.log.Warn("identity cache write failed", zap.Error(err))
			}
		}
	}
	return claimsFor(id, decoded), nil
}

func (v *remoteVerifier) cached(ctx context.Context, key string) (Identity, bool) {
	if v.cache == nil {
		return Identity{}, false
	}
	data, ok, err := v.cache.Get(ctx, key)
	if err != nil {
		v.log.Warn("identity cache read failed", zap.Error(err))
		return Identity{}, false
	}
	if !ok {
		return Identity{}, false
	}
	var id Identity
	if err := json.Unmarshal(data, &id); err != nil {
		return Identity{}, false
	}
	return id, true
}

func claimsFor(id Identity, decoded Claims) Claims {
	return Claims{
		UserID:    id.UserID,
		UserType:  id.UserType,
		ExpiresAt: decoded.ExpiresAt,
		Token:     decoded.Token,
	}
}

// tokenKey keeps raw tokens out of the cache.
func tokenKey(token string) string {
	sum := sha256.Sum256([]byte(token))
	return hex.EncodeToString(sum[:])
}
