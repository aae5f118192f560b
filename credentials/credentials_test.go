package credentials

import (
	"context"
	"crypto/ecdsa"
	"crypto/elliptic"
	"crypto/rand"
	"crypto/rsa"
	stderrors "errors"
	"net/http"
	"strings"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	gojwt "github.com/golang-jwt/jwt/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/kbukum/restpipe/errors"
	"github.com/kbukum/restpipe/pipeline"
)

func newRequest(t *testing.T) *pipeline.Request {
	t.Helper()
	req, err := pipeline.NewRequest(http.MethodGet, "https://example.com/items?page=2")
	require.NoError(t, err)
	return req
}

func TestStaticCredentials(t *testing.T) {
	tests := []struct {
		name   string
		creds  Credentials
		header string
		want   string
	}{
		{"bearer", Bearer("abc"), "Authorization", "Bearer abc"},
		{"basic", Basic("user", "pass"), "Authorization", "Basic dXNlcjpwYXNz"},
		{"api key default header", APIKey("", "k1"), "X-API-Key", "k1"},
		{"api key custom header", APIKey("Ocp-Apim-Subscription-Key", "k2"), "Ocp-Apim-Subscription-Key", "k2"},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			req := newRequest(t)
			require.NoError(t, tc.creds.Authorize(context.Background(), req))
			assert.Equal(t, tc.want, req.Header.Get(tc.header))
		})
	}
}

func TestStaticCredentials_Empty(t *testing.T) {
	for _, creds := range []Credentials{Bearer(""), Basic("", "x"), APIKey("", ""), APIKeyQuery("key", "")} {
		err := creds.Authorize(context.Background(), newRequest(t))
		assert.True(t, errors.IsAuthentication(err), "expected authentication error, got %v", err)
	}
}

func TestAPIKeyQuery(t *testing.T) {
	req := newRequest(t)
	require.NoError(t, APIKeyQuery("code", "secret").Authorize(context.Background(), req))
	assert.Equal(t, "secret", req.URL.Query().Get("code"))
	assert.Equal(t, "2", req.URL.Query().Get("page"))
}

func TestCached_ReusesUntilExpiry(t *testing.T) {
	var fetches int32
	now := time.Unix(1700000000, 0)
	src := TokenSourceFunc(func(context.Context) (Token, error) {
		n := atomic.AddInt32(&fetches, 1)
		return Token{Value: "t" + string(rune('0'+n)), ExpiresAt: now.Add(10 * time.Minute)}, nil
	})

	cached := Cached(src, time.Minute).(*cachedSource)
	cached.now = func() time.Time { return now }

	tok, err := cached.Token(context.Background())
	require.NoError(t, err)
	assert.Equal(t, "t1", tok.Value)

	tok, _ = cached.Token(context.Background())
	assert.Equal(t, "t1", tok.Value)
	assert.Equal(t, int32(1), atomic.LoadInt32(&fetches))

	now = now.Add(9 * time.Minute)
	tok, _ = cached.Token(context.Background())
	assert.Equal(t, "t2", tok.Value, "expected refresh inside the skew window")
}

func TestCached_ConcurrentCallersShareRefresh(t *testing.T) {
	var fetches int32
	src := TokenSourceFunc(func(context.Context) (Token, error) {
		atomic.AddInt32(&fetches, 1)
		time.Sleep(5 * time.Millisecond)
		return Token{Value: "shared", ExpiresAt: time.Now().Add(time.Hour)}, nil
	})
	cached := Cached(src, time.Minute)

	var wg sync.WaitGroup
	for i := 0; i < 20; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			tok, err := cached.Token(context.Background())
			assert.NoError(t, err)
			assert.Equal(t, "shared", tok.Value)
		}()
	}
	wg.Wait()
	assert.Equal(t, int32(1), atomic.LoadInt32(&fetches))
}

func TestCached_ErrorNotCached(t *testing.T) {
	calls := 0
	src := TokenSourceFunc(func(context.Context) (Token, error) {
		calls++
		if calls == 1 {
			return Token{}, stderrors.New("token endpoint down")
		}
		return Token{Value: "ok"}, nil
	})
	cached := Cached(src, 0)

	_, err := cached.Token(context.Background())
	require.Error(t, err)
	tok, err := cached.Token(context.Background())
	require.NoError(t, err)
	assert.Equal(t, "ok", tok.Value)
}

func TestBearerToken(t *testing.T) {
	t.Run("sets header", func(t *testing.T) {
		req := newRequest(t)
		creds := BearerToken(TokenSourceFunc(func(context.Context) (Token, error) {
			return Token{Value: "dyn"}, nil
		}))
		require.NoError(t, creds.Authorize(context.Background(), req))
		assert.Equal(t, "Bearer dyn", req.Header.Get("Authorization"))
	})

	t.Run("expired token", func(t *testing.T) {
		creds := BearerToken(TokenSourceFunc(func(context.Context) (Token, error) {
			return Token{Value: "old", ExpiresAt: time.Now().Add(-time.Minute)}, nil
		}))
		err := creds.Authorize(context.Background(), newRequest(t))
		assert.True(t, errors.HasCode(err, errors.ErrCodeTokenExpired))
	})

	t.Run("empty token", func(t *testing.T) {
		creds := BearerToken(TokenSourceFunc(func(context.Context) (Token, error) {
			return Token{}, nil
		}))
		err := creds.Authorize(context.Background(), newRequest(t))
		assert.True(t, errors.HasCode(err, errors.ErrCodeInvalidToken))
	})

	t.Run("source error passes through", func(t *testing.T) {
		boom := stderrors.New("boom")
		creds := BearerToken(TokenSourceFunc(func(context.Context) (Token, error) {
			return Token{}, boom
		}))
		assert.ErrorIs(t, creds.Authorize(context.Background(), newRequest(t)), boom)
	})
}

func TestJWT_HMAC(t *testing.T) {
	src, err := NewJWTSource(JWTConfig{
		Issuer:   "billing-worker",
		Secret:   "s3cret",
		Audience: []string{"https://api.example.com"},
		KeyID:    "key-1",
		TTL:      5 * time.Minute,
	})
	require.NoError(t, err)

	tok, err := src.Token(context.Background())
	require.NoError(t, err)
	assert.WithinDuration(t, time.Now().Add(5*time.Minute), tok.ExpiresAt, 5*time.Second)

	claims := &gojwt.RegisteredClaims{}
	parsed, err := gojwt.ParseWithClaims(tok.Value, claims, func(*gojwt.Token) (any, error) {
		return []byte("s3cret"), nil
	}, gojwt.WithValidMethods([]string{"HS256"}))
	require.NoError(t, err)
	assert.True(t, parsed.Valid)
	assert.Equal(t, "key-1", parsed.Header["kid"])
	assert.Equal(t, "billing-worker", claims.Issuer)
	assert.Equal(t, "billing-worker", claims.Subject)
	assert.NotEmpty(t, claims.ID)
}

func TestJWT_RSAAndECDSA(t *testing.T) {
	rsaKey, err := rsa.GenerateKey(rand.Reader, 2048)
	require.NoError(t, err)
	ecKey, err := ecdsa.GenerateKey(elliptic.P256(), rand.Reader)
	require.NoError(t, err)

	tests := []struct {
		method SigningMethod
		key    any
		verify any
	}{
		{RS256, rsaKey, &rsaKey.PublicKey},
		{ES256, ecKey, &ecKey.PublicKey},
	}

	for _, tc := range tests {
		t.Run(string(tc.method), func(t *testing.T) {
			src, err := NewJWTSource(JWTConfig{Method: tc.method, PrivateKey: tc.key, Issuer: "svc"})
			require.NoError(t, err)
			tok, err := src.Token(context.Background())
			require.NoError(t, err)

			_, err = gojwt.Parse(tok.Value, func(*gojwt.Token) (any, error) { return tc.verify, nil },
				gojwt.WithValidMethods([]string{string(tc.method)}))
			assert.NoError(t, err)
		})
	}
}

func TestJWT_ConfigValidation(t *testing.T) {
	rsaKey, err := rsa.GenerateKey(rand.Reader, 2048)
	require.NoError(t, err)

	tests := []struct {
		name  string
		cfg   JWTConfig
		code  errors.ErrorCode
		field string
	}{
		{"missing issuer", JWTConfig{Secret: "x"}, errors.ErrCodeMissingField, "JWT issuer"},
		{"missing secret", JWTConfig{Issuer: "svc"}, errors.ErrCodeMissingField, "JWT secret"},
		{"missing key", JWTConfig{Issuer: "svc", Method: RS256}, errors.ErrCodeMissingField, "JWT private key"},
		{"wrong key type", JWTConfig{Issuer: "svc", Method: ES256, PrivateKey: rsaKey}, errors.ErrCodeInvalidConfig, "JWT private key"},
		{"unknown method", JWTConfig{Issuer: "svc", Method: "none"}, errors.ErrCodeInvalidConfig, "JWT signing method"},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			_, err := JWT(tc.cfg)
			require.Error(t, err)
			assert.True(t, errors.HasCode(err, tc.code), "expected %s, got %v", tc.code, err)
			assert.True(t, strings.Contains(err.Error(), tc.field), "expected %q in %q", tc.field, err.Error())
		})
	}
}

func TestJWT_Credentials(t *testing.T) {
	creds, err := JWT(JWTConfig{Issuer: "svc", Secret: "k"})
	require.NoError(t, err)

	req := newRequest(t)
	require.NoError(t, creds.Authorize(context.Background(), req))
	assert.True(t, strings.HasPrefix(req.Header.Get("Authorization"), "Bearer ey"))
}
