package security

import (
	"crypto"
	"crypto/ecdsa"
	"crypto/rsa"
	"errors"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
)

var (
	// ErrInvalidTokenSignature is returned when a token is malformed, signed with another key,
	// or uses an unexpected algorithm, issuer, or audience.
	ErrInvalidTokenSignature = errors.New("invalid token signature")
	// ErrTokenExpired is returned by ValidateAccess for a well-signed token past its exp.
	ErrTokenExpired = errors.New("token expired")
	// ErrSigningKeyUnavailable is returned at construction when no signing key is configured.
	// No tokens can be issued without one, so callers treat it as fatal at startup.
	ErrSigningKeyUnavailable = errors.New("signing key unavailable")
)

// AccessToken is a signed, time-bounded token and the claims it carries.
type AccessToken struct {
	Token     string
	ExpiresAt time.Time
	Claims    Claims
}

// accessClaims is the JWT payload of an access token.
type accessClaims struct {
	jwt.RegisteredClaims
	Roles []string `json:"roles,omitempty"`
}

// CodecOption configures a TokenCodec.
type CodecOption func(*TokenCodec)

// WithClock sets the time source used for iat/exp and for expiry checks.
func WithClock(now func() time.Time) CodecOption {
	return func(c *TokenCodec) {
		if now != nil {
			c.now = now
		}
	}
}

// TokenCodec signs access tokens and decodes them back into claims using RS256 or ES256.
// The key pair is injected at construction; there is no process-wide key.
type TokenCodec struct {
	signer    crypto.Signer
	publicKey crypto.PublicKey
	method    jwt.SigningMethod
	issuer    string
	audience  string
	accessTTL time.Duration
	now       func() time.Time
}

// NewTokenCodec returns a codec signing with signer. If publicKey is nil the signer's public half is used.
// issuer and audience are set on every token and required when decoding.
func NewTokenCodec(signer crypto.Signer, publicKey crypto.PublicKey, issuer, audience string, accessTTL time.Duration, opts ...CodecOption) (*TokenCodec, error) {
	if signer == nil {
		return nil, ErrSigningKeyUnavailable
	}
	if publicKey == nil {
		publicKey = signer.Public()
	}
	method, err := signingMethod(signer.Public())
	if err != nil {
		return nil, err
	}
	if KeyAlg(publicKey) != method.Alg() {
		return nil, ErrInvalidKey
	}
	if accessTTL <= 0 {
		return nil, errors.New("security: access token ttl must be positive")
	}
	c := &TokenCodec{
		signer:    signer,
		publicKey: publicKey,
		method:    method,
		issuer:    issuer,
		audience:  audience,
		accessTTL: accessTTL,
		now:       func() time.Time { return time.Now().UTC() },
	}
	for _, opt := range opts {
		opt(c)
	}
	return c, nil
}

// AccessTTL returns the validity window applied to every access token.
func (c *TokenCodec) AccessTTL() time.Duration {
	return c.accessTTL
}

// IssueAccessToken signs claims into a new access token. A fresh jti is stamped on every call,
// so two tokens for the same subject and roles never serialize identically.
func (c *TokenCodec) IssueAccessToken(claims Claims) (AccessToken, error) {
	if claims.Subject == "" {
		return AccessToken{}, errors.New("security: claims subject is required")
	}
	claims.TokenID = uuid.New()
	claims.Roles = normalizeRoles(claims.Roles)

	now := c.now()
	expiresAt := now.Add(c.accessTTL)
	payload := accessClaims{
		RegisteredClaims: jwt.RegisteredClaims{
			ID:        claims.TokenID.String(),
			Subject:   claims.Subject,
			Issuer:    c.issuer,
			Audience:  jwt.ClaimStrings{c.audience},
			IssuedAt:  jwt.NewNumericDate(now),
			NotBefore: jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(expiresAt),
		},
		Roles: claims.Roles,
	}
	token, err := jwt.NewWithClaims(c.method, payload).SignedString(c.signer)
	if err != nil {
		return AccessToken{}, err
	}
	return AccessToken{Token: token, ExpiresAt: expiresAt, Claims: claims}, nil
}

// ValidateAccess fully validates tokenString (signature, algorithm, iss, aud, exp) and returns its claims.
// A correctly signed token past its expiry yields ErrTokenExpired.
func (c *TokenCodec) ValidateAccess(tokenString string) (Claims, error) {
	payload := &accessClaims{}
	_, err := jwt.ParseWithClaims(tokenString, payload, c.keyFunc,
		jwt.WithValidMethods([]string{c.method.Alg()}),
		jwt.WithIssuer(c.issuer),
		jwt.WithAudience(c.audience),
		jwt.WithExpirationRequired(),
		jwt.WithTimeFunc(c.now),
	)
	if err != nil {
		if errors.Is(err, jwt.ErrTokenExpired) {
			return Claims{}, ErrTokenExpired
		}
		return Claims{}, ErrInvalidTokenSignature
	}
	return payload.toClaims()
}

// DecodeExpired verifies the signature, algorithm, issuer, audience, and shape of tokenString
// but does not reject it for being past exp. Refresh relies on this to recover the identity
// from an access token that has already expired.
func (c *TokenCodec) DecodeExpired(tokenString string) (Claims, error) {
	payload := &accessClaims{}
	_, err := jwt.ParseWithClaims(tokenString, payload, c.keyFunc,
		jwt.WithValidMethods([]string{c.method.Alg()}),
		jwt.WithoutClaimsValidation(),
	)
	if err != nil {
		return Claims{}, ErrInvalidTokenSignature
	}
	if payload.Issuer != c.issuer {
		return Claims{}, ErrInvalidTokenSignature
	}
	audOK := false
	for _, a := range payload.Audience {
		if a == c.audience {
			audOK = true
			break
		}
	}
	if !audOK {
		return Claims{}, ErrInvalidTokenSignature
	}
	return payload.toClaims()
}

func (c *TokenCodec) keyFunc(*jwt.Token) (interface{}, error) {
	return c.publicKey, nil
}

func (p *accessClaims) toClaims() (Claims, error) {
	if p.Subject == "" {
		return Claims{}, ErrInvalidTokenSignature
	}
	id, err := uuid.Parse(p.ID)
	if err != nil {
		return Claims{}, ErrInvalidTokenSignature
	}
	return Claims{Subject: p.Subject, TokenID: id, Roles: normalizeRoles(p.Roles)}, nil
}

func signingMethod(pub crypto.PublicKey) (jwt.SigningMethod, error) {
	switch pub.(type) {
	case *rsa.PublicKey:
		return jwt.SigningMethodRS256, nil
	case *ecdsa.PublicKey:
		return jwt.SigningMethodES256, nil
	default:
		return nil, ErrInvalidKey
	}
}
