package credentials

import (
	"context"
	"crypto/ecdsa"
	"crypto/rsa"
	"fmt"
	"time"

	gojwt "github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"

	"github.com/kbukum/restpipe/errors"
	"github.com/kbukum/restpipe/validation"
)

// SigningMethod names a supported JWT signing algorithm.
type SigningMethod string

const (
	HS256 SigningMethod = "HS256"
	HS384 SigningMethod = "HS384"
	HS512 SigningMethod = "HS512"
	RS256 SigningMethod = "RS256"
	RS384 SigningMethod = "RS384"
	RS512 SigningMethod = "RS512"
	ES256 SigningMethod = "ES256"
	ES384 SigningMethod = "ES384"
	ES512 SigningMethod = "ES512"
)

var signingMethods = map[SigningMethod]gojwt.SigningMethod{
	HS256: gojwt.SigningMethodHS256,
	HS384: gojwt.SigningMethodHS384,
	HS512: gojwt.SigningMethodHS512,
	RS256: gojwt.SigningMethodRS256,
	RS384: gojwt.SigningMethodRS384,
	RS512: gojwt.SigningMethodRS512,
	ES256: gojwt.SigningMethodES256,
	ES384: gojwt.SigningMethodES384,
	ES512: gojwt.SigningMethodES512,
}

// JWTConfig configures self-signed JWT assertions, as used by service
// accounts that authenticate with a signed token instead of a secret.
type JWTConfig struct {
	// Method is the signing algorithm (default: HS256).
	Method SigningMethod
	// Secret is the HMAC key (HS* methods).
	Secret string
	// PrivateKey is the *rsa.PrivateKey or *ecdsa.PrivateKey (RS*/ES* methods).
	PrivateKey any
	// KeyID is sent as the "kid" header when set.
	KeyID string
	// Issuer is the "iss" claim.
	Issuer string
	// Subject is the "sub" claim (defaults to Issuer).
	Subject string
	// Audience is the "aud" claim.
	Audience []string
	// TTL is the token lifetime (default: 1h).
	TTL time.Duration
}

func (c *JWTConfig) applyDefaults() {
	if c.Method == "" {
		c.Method = HS256
	}
	if c.TTL <= 0 {
		c.TTL = time.Hour
	}
	if c.Subject == "" {
		c.Subject = c.Issuer
	}
}

func (c *JWTConfig) validate() error {
	v := validation.New().Required("JWT issuer", c.Issuer)

	switch c.Method {
	case HS256, HS384, HS512:
		v.Required("JWT secret", c.Secret)
	case RS256, RS384, RS512:
		_, ok := c.PrivateKey.(*rsa.PrivateKey)
		v.RequiredValue("JWT private key", c.PrivateKey).
			Custom(c.PrivateKey == nil || ok, "JWT private key", "must be *rsa.PrivateKey for "+string(c.Method))
	case ES256, ES384, ES512:
		_, ok := c.PrivateKey.(*ecdsa.PrivateKey)
		v.RequiredValue("JWT private key", c.PrivateKey).
			Custom(c.PrivateKey == nil || ok, "JWT private key", "must be *ecdsa.PrivateKey for "+string(c.Method))
	default:
		v.AddError("JWT signing method", "unsupported: "+string(c.Method))
	}

	if appErr := v.Validate(); appErr != nil {
		return appErr
	}
	return nil
}

func (c *JWTConfig) signKey() any {
	switch c.Method {
	case HS256, HS384, HS512:
		return []byte(c.Secret)
	default:
		return c.PrivateKey
	}
}

type jwtSource struct {
	cfg    JWTConfig
	method gojwt.SigningMethod
	now    func() time.Time
}

// NewJWTSource returns a TokenSource that signs a fresh assertion on every
// call. Wrap it with Cached to reuse tokens until they near expiry.
func NewJWTSource(cfg JWTConfig) (TokenSource, error) {
	cfg.applyDefaults()
	if err := cfg.validate(); err != nil {
		return nil, err
	}
	return &jwtSource{cfg: cfg, method: signingMethods[cfg.Method], now: time.Now}, nil
}

// JWT returns bearer credentials backed by a cached self-signed JWT source.
// Tokens are renewed one minute before they expire.
func JWT(cfg JWTConfig) (Credentials, error) {
	src, err := NewJWTSource(cfg)
	if err != nil {
		return nil, err
	}
	return BearerToken(Cached(src, time.Minute)), nil
}

func (s *jwtSource) Token(_ context.Context) (Token, error) {
	now := s.now()
	expires := now.Add(s.cfg.TTL)

	claims := gojwt.RegisteredClaims{
		ID:        uuid.NewString(),
		Issuer:    s.cfg.Issuer,
		Subject:   s.cfg.Subject,
		Audience:  s.cfg.Audience,
		IssuedAt:  gojwt.NewNumericDate(now),
		NotBefore: gojwt.NewNumericDate(now),
		ExpiresAt: gojwt.NewNumericDate(expires),
	}

	token := gojwt.NewWithClaims(s.method, claims)
	if s.cfg.KeyID != "" {
		token.Header["kid"] = s.cfg.KeyID
	}

	signed, err := token.SignedString(s.cfg.signKey())
	if err != nil {
		return Token{}, errors.InvalidToken(fmt.Sprintf("sign %s assertion: %v", s.cfg.Method, err)).WithCause(err)
	}
	return Token{Value: signed, ExpiresAt: expires}, nil
}
