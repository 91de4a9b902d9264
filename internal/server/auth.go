package server

import (
	"context"
	"encoding/base64"
	"errors"
	"fmt"
	"net/http"
	"strings"
	"time"

	"github.com/gorilla/securecookie"
	"github.com/lestrrat-go/jwx/v3/jwa"
	"github.com/lestrrat-go/jwx/v3/jwk"
	"github.com/lestrrat-go/jwx/v3/jwt"

	"github.com/reparvservices/reparv-server-sub002/pkg/types"
)

const CookieAccessTokenName = "access_token"

var (
	ErrNoToken      = errors.New("no access token")
	ErrInvalidToken = errors.New("invalid access token")
)

// Authenticator verifies access tokens. Tokens come from the Authorization
// header or, for browser clients, the encrypted access_token cookie.
type Authenticator struct {
	secret []byte
	cookie *securecookie.SecureCookie

	jwksCache *jwk.Cache
	jwksURL   string

	now func() time.Time
}

// NewAuthenticator builds a verifier for HS256 tokens signed with secret.
// Cookie keys are base64 encoded; an empty hash key disables the cookie.
func NewAuthenticator(secret, cookieHashKey, cookieBlockKey string) (*Authenticator, error) {
	a := &Authenticator{secret: []byte(secret), now: time.Now}

	if cookieHashKey != "" {
		hashKey, err := base64.StdEncoding.DecodeString(cookieHashKey)
		if err != nil {
			return nil, fmt.Errorf("failed to decode cookie hash key: %w", err)
		}
		blockKey, err := base64.StdEncoding.DecodeString(cookieBlockKey)
		if err != nil {
			return nil, fmt.Errorf("failed to decode cookie block key: %w", err)
		}
		a.cookie = securecookie.New(hashKey, blockKey)
	}

	return a, nil
}

// WithJWKS verifies tokens against a registered JWKS endpoint instead of the
// shared secret.
func (a *Authenticator) WithJWKS(cache *jwk.Cache, url string) *Authenticator {
	a.jwksCache = cache
	a.jwksURL = url
	return a
}

// Sign issues an HS256 access token for id.
func (a *Authenticator) Sign(id types.Identity, ttl time.Duration) (string, error) {
	if len(a.secret) == 0 {
		return "", fmt.Errorf("JWT_SECRET is not set")
	}

	now := a.now()
	b := jwt.NewBuilder().
		Subject(id.Subject).
		IssuedAt(now).
		Expiration(now.Add(ttl)).
		Claim("role", string(id.Role))
	if id.Email != "" {
		b = b.Claim("email", id.Email)
	}
	if id.ProjectPartnerID != "" {
		b = b.Claim("projectpartnerid", id.ProjectPartnerID)
	}

	token, err := b.Build()
	if err != nil {
		return "", fmt.Errorf("failed to build token: %w", err)
	}

	signed, err := jwt.Sign(token, jwt.WithKey(jwa.HS256(), a.secret))
	if err != nil {
		return "", fmt.Errorf("failed to sign token: %w", err)
	}

	return string(signed), nil
}

// EncodeCookie encrypts an access token for the access_token cookie.
func (a *Authenticator) EncodeCookie(token string) (string, error) {
	if a.cookie == nil {
		return "", fmt.Errorf("cookie keys are not configured")
	}
	return a.cookie.Encode(CookieAccessTokenName, token)
}

func (a *Authenticator) tokenFrom(r *http.Request) (string, error) {
	if header := r.Header.Get("Authorization"); header != "" {
		token, ok := strings.CutPrefix(header, "Bearer ")
		if !ok || strings.TrimSpace(token) == "" {
			return "", ErrInvalidToken
		}
		return strings.TrimSpace(token), nil
	}

	if a.cookie == nil {
		return "", ErrNoToken
	}

	cookie, err := r.Cookie(CookieAccessTokenName)
	if err != nil {
		return "", ErrNoToken
	}

	var token string
	if err := a.cookie.Decode(CookieAccessTokenName, cookie.Value, &token); err != nil {
		return "", fmt.Errorf("%w: %w", ErrInvalidToken, err)
	}
	return token, nil
}

// Identify verifies the request's access token and returns its identity.
func (a *Authenticator) Identify(ctx context.Context, r *http.Request) (types.Identity, error) {
	raw, err := a.tokenFrom(r)
	if err != nil {
		return types.Identity{}, err
	}

	opts := []jwt.ParseOption{
		jwt.WithValidate(true),
		jwt.WithClock(jwt.ClockFunc(a.now)),
	}
	if a.jwksCache != nil {
		set, err := a.jwksCache.Lookup(ctx, a.jwksURL)
		if err != nil {
			return types.Identity{}, fmt.Errorf("failed to fetch JWKS: %w", err)
		}
		opts = append(opts, jwt.WithKeySet(set))
	} else {
		opts = append(opts, jwt.WithKey(jwa.HS256(), a.secret))
	}

	token, err := jwt.Parse([]byte(raw), opts...)
	if err != nil {
		return types.Identity{}, fmt.Errorf("%w: %w", ErrInvalidToken, err)
	}

	subject, ok := token.Subject()
	if !ok || subject == "" {
		return types.Identity{}, fmt.Errorf("%w: no subject claim", ErrInvalidToken)
	}

	var role string
	if err := token.Get("role", &role); err != nil {
		return types.Identity{}, fmt.Errorf("%w: no role claim", ErrInvalidToken)
	}

	id := types.Identity{Subject: subject, Role: types.AuthRole(role)}

	// optional claims
	_ = token.Get("email", &id.Email)
	_ = token.Get("projectpartnerid", &id.ProjectPartnerID)

	return id, nil
}
